// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"sync"

	"github.com/jeranaias/docchat-tui/internal/transcript"
)

// Document is a RenderSink that keeps an exportable copy of the transcript.
// It settles synchronously and has no viewport, so scrolling only marks
// that the anchor is current.
type Document struct {
	mu       sync.Mutex
	entries  []*transcript.Entry
	anchored bool
}

// NewDocument returns an empty document.
func NewDocument() *Document {
	return &Document{}
}

func (d *Document) Append(e *transcript.Entry) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.entries = append(d.entries, e)
	d.anchored = false
}

func (d *Document) Remove(id string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for i, e := range d.entries {
		if e.ID == id {
			d.entries = append(d.entries[:i], d.entries[i+1:]...)
			return
		}
	}
}

func (d *Document) SetVisible(id string, region transcript.Region, index int, visible bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, e := range d.entries {
		if e.ID != id {
			continue
		}
		switch region {
		case transcript.RegionTable:
			if index >= 0 && index < len(e.Tables) {
				e.Tables[index].Expanded = visible
			}
		case transcript.RegionCitations:
			if e.Meta != nil {
				e.Meta.CitationsVisible = visible
			}
		}
	}
}

func (d *Document) Settle(fn func()) { fn() }

func (d *Document) ScrollToAnchor() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.anchored = true
}

// Anchored reports whether the anchor was scrolled to after the last append.
func (d *Document) Anchored() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.anchored
}

// Entries returns copies of the document's entries.
func (d *Document) Entries() []*transcript.Entry {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]*transcript.Entry, len(d.entries))
	for i, e := range d.entries {
		out[i] = e.Clone()
	}
	return out
}

// Export renders the document with exporter.
func (d *Document) Export(exporter Exporter) ([]byte, error) {
	return exporter.Export(d.Entries())
}
