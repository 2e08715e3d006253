// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package transcript

import "sync"

// =============================================================================
// RENDER SINK
// =============================================================================

// RenderSink is a display surface mirroring the transcript. Entries passed
// to a sink are copies and may be retained.
type RenderSink interface {
	// Append adds an entry after all existing ones.
	Append(e *Entry)
	// Remove takes an entry off the surface.
	Remove(id string)
	// SetVisible expands or collapses a region of an entry.
	SetVisible(id string, region Region, index int, visible bool)
	// Settle runs fn once pending layout from earlier calls is complete.
	Settle(fn func())
	// ScrollToAnchor brings the anchor after the newest entry into view.
	ScrollToAnchor()
}

// Discard is a sink that ignores everything.
var Discard RenderSink = discard{}

type discard struct{}

func (discard) Append(*Entry)                        {}
func (discard) Remove(string)                        {}
func (discard) SetVisible(string, Region, int, bool) {}
func (discard) Settle(fn func())                     { fn() }
func (discard) ScrollToAnchor()                      {}

// =============================================================================
// TEE
// =============================================================================

// Tee fans every call out to each sink in order.
func Tee(sinks ...RenderSink) RenderSink {
	return tee(sinks)
}

type tee []RenderSink

func (t tee) Append(e *Entry) {
	for _, s := range t {
		s.Append(e.Clone())
	}
}

func (t tee) Remove(id string) {
	for _, s := range t {
		s.Remove(id)
	}
}

func (t tee) SetVisible(id string, region Region, index int, visible bool) {
	for _, s := range t {
		s.SetVisible(id, region, index, visible)
	}
}

// Settle waits for every sink to settle before running fn once.
func (t tee) Settle(fn func()) {
	if len(t) == 0 {
		fn()
		return
	}
	var mu sync.Mutex
	remaining := len(t)
	for _, s := range t {
		s.Settle(func() {
			mu.Lock()
			remaining--
			done := remaining == 0
			mu.Unlock()
			if done {
				fn()
			}
		})
	}
}

func (t tee) ScrollToAnchor() {
	for _, s := range t {
		s.ScrollToAnchor()
	}
}

// =============================================================================
// RECORDER
// =============================================================================

// Op is one call recorded by a Recorder.
type Op struct {
	Name    string
	ID      string
	Region  Region
	Index   int
	Visible bool
	Entry   *Entry
}

// Recorder is a sink that keeps its own copy of the surface and a log of
// every call. It settles synchronously.
type Recorder struct {
	mu      sync.Mutex
	ops     []Op
	entries []*Entry
}

// NewRecorder returns an empty recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

func (r *Recorder) Append(e *Entry) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, e)
	r.ops = append(r.ops, Op{Name: "append", ID: e.ID, Entry: e})
}

func (r *Recorder) Remove(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, e := range r.entries {
		if e.ID == id {
			r.entries = append(r.entries[:i], r.entries[i+1:]...)
			break
		}
	}
	r.ops = append(r.ops, Op{Name: "remove", ID: id})
}

func (r *Recorder) SetVisible(id string, region Region, index int, visible bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.entries {
		if e.ID == id {
			e.setVisible(region, index, visible)
		}
	}
	r.ops = append(r.ops, Op{Name: "visible", ID: id, Region: region, Index: index, Visible: visible})
}

func (r *Recorder) Settle(fn func()) {
	r.mu.Lock()
	r.ops = append(r.ops, Op{Name: "settle"})
	r.mu.Unlock()
	fn()
}

func (r *Recorder) ScrollToAnchor() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ops = append(r.ops, Op{Name: "scroll"})
}

// Entries returns copies of the entries currently on the surface.
func (r *Recorder) Entries() []*Entry {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*Entry, len(r.entries))
	for i, e := range r.entries {
		out[i] = e.Clone()
	}
	return out
}

// Ops returns the call log.
func (r *Recorder) Ops() []Op {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Op(nil), r.ops...)
}

// OpNames returns the names of the recorded calls in order.
func (r *Recorder) OpNames() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	names := make([]string, len(r.ops))
	for i, op := range r.ops {
		names[i] = op.Name
	}
	return names
}
