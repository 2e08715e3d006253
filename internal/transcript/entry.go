// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package transcript

import (
	"time"

	"github.com/jeranaias/docchat-tui/internal/model"
)

// Region identifies a collapsible part of an entry.
type Region int

const (
	// RegionTable is one of the entry's table regions, addressed by index.
	RegionTable Region = iota
	// RegionCitations is the citation list inside the metadata region.
	RegionCitations
)

// String returns the region name.
func (r Region) String() string {
	switch r {
	case RegionTable:
		return "table"
	case RegionCitations:
		return "citations"
	default:
		return "unknown"
	}
}

// TableRegion is a titled, independently collapsible table.
type TableRegion struct {
	Title    string
	Markup   string
	Expanded bool
}

// MetaRegion holds the intent label and the collapsible citation list.
type MetaRegion struct {
	Intent           string
	Mode             string
	Citations        []model.Citation
	CitationsVisible bool
}

// Entry is one composed message in the transcript.
type Entry struct {
	ID        string
	Role      model.Role
	Kind      model.Kind
	Avatar    string
	Timestamp time.Time

	// Text is sanitized markup, safe to hand to any renderer.
	Text   string
	Tables []TableRegion
	Meta   *MetaRegion

	// Degraded is set when content fell back to escaped text.
	Degraded bool
}

// Clone returns a deep copy of the entry.
func (e *Entry) Clone() *Entry {
	if e == nil {
		return nil
	}
	clone := *e
	if e.Tables != nil {
		clone.Tables = append([]TableRegion(nil), e.Tables...)
	}
	if e.Meta != nil {
		meta := *e.Meta
		meta.Citations = append([]model.Citation(nil), e.Meta.Citations...)
		clone.Meta = &meta
	}
	return &clone
}

// Removable reports whether the entry may be taken out of the transcript.
func (e *Entry) Removable() bool {
	return e.Kind == model.KindPlaceholder
}

// visible reports the current state of a region.
func (e *Entry) visible(region Region, index int) (bool, bool) {
	switch region {
	case RegionTable:
		if index < 0 || index >= len(e.Tables) {
			return false, false
		}
		return e.Tables[index].Expanded, true
	case RegionCitations:
		if e.Meta == nil {
			return false, false
		}
		return e.Meta.CitationsVisible, true
	}
	return false, false
}

// setVisible updates a region, reporting whether it exists.
func (e *Entry) setVisible(region Region, index int, v bool) bool {
	switch region {
	case RegionTable:
		if index < 0 || index >= len(e.Tables) {
			return false
		}
		e.Tables[index].Expanded = v
		return true
	case RegionCitations:
		if e.Meta == nil {
			return false
		}
		e.Meta.CitationsVisible = v
		return true
	}
	return false
}
