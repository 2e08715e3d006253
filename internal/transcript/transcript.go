// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package transcript

import (
	"errors"
	"fmt"
	"sync"
)

// Errors returned by transcript mutations.
var (
	ErrNotFound     = errors.New("transcript: no such entry")
	ErrNotRemovable = errors.New("transcript: only placeholders can be removed")
	ErrNoRegion     = errors.New("transcript: entry has no such region")
)

// Transcript is the ordered, append-only list of composed entries.
// Placeholders are the only entries that can be removed.
type Transcript struct {
	mu      sync.RWMutex
	entries []*Entry
}

// New returns an empty transcript.
func New() *Transcript {
	return &Transcript{}
}

// Append adds e after every existing entry.
func (t *Transcript) Append(e *Entry) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.entries = append(t.entries, e)
}

// Remove deletes the placeholder with the given id.
func (t *Transcript) Remove(id string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	i := t.indexLocked(id)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if !t.entries[i].Removable() {
		return fmt.Errorf("%w: %s is a %s", ErrNotRemovable, id, t.entries[i].Kind)
	}
	t.entries = append(t.entries[:i], t.entries[i+1:]...)
	return nil
}

// Toggle flips a region of an entry and returns its new state.
func (t *Transcript) Toggle(id string, region Region, index int) (bool, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	i := t.indexLocked(id)
	if i < 0 {
		return false, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	cur, ok := t.entries[i].visible(region, index)
	if !ok {
		return false, fmt.Errorf("%w: %s %s[%d]", ErrNoRegion, id, region, index)
	}
	t.entries[i].setVisible(region, index, !cur)
	return !cur, nil
}

// Get returns a copy of the entry with the given id.
func (t *Transcript) Get(id string) (*Entry, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if i := t.indexLocked(id); i >= 0 {
		return t.entries[i].Clone(), true
	}
	return nil, false
}

// Entries returns copies of all entries in order.
func (t *Transcript) Entries() []*Entry {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]*Entry, len(t.entries))
	for i, e := range t.entries {
		out[i] = e.Clone()
	}
	return out
}

// Len returns the number of entries.
func (t *Transcript) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.entries)
}

// Last returns a copy of the newest entry matching keep, searching backwards.
// A nil keep matches any entry.
func (t *Transcript) Last(keep func(*Entry) bool) (*Entry, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	for i := len(t.entries) - 1; i >= 0; i-- {
		if keep == nil || keep(t.entries[i]) {
			return t.entries[i].Clone(), true
		}
	}
	return nil, false
}

func (t *Transcript) indexLocked(id string) int {
	for i, e := range t.entries {
		if e.ID == id {
			return i
		}
	}
	return -1
}
