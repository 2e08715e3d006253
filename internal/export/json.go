// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"encoding/json"
	"time"

	"github.com/jeranaias/docchat-tui/internal/transcript"
)

// JSONExporter exports the composed entries as JSON.
type JSONExporter struct {
	options *Options
}

// NewJSONExporter creates a new JSON exporter.
func NewJSONExporter(opts *Options) *JSONExporter {
	return &JSONExporter{options: fillOptions(opts)}
}

type jsonDocument struct {
	Title      string      `json:"title"`
	ExportedAt time.Time   `json:"exported_at"`
	Entries    []jsonEntry `json:"entries"`
}

type jsonEntry struct {
	ID        string                   `json:"id"`
	Role      string                   `json:"role"`
	Kind      string                   `json:"kind"`
	Timestamp time.Time                `json:"timestamp"`
	Text      string                   `json:"text"`
	Tables    []transcript.TableRegion `json:"tables,omitempty"`
	Meta      *transcript.MetaRegion   `json:"meta,omitempty"`
}

// Export converts entries to indented JSON.
func (e *JSONExporter) Export(entries []*transcript.Entry) ([]byte, error) {
	doc := jsonDocument{Title: e.options.Title, ExportedAt: time.Now(), Entries: make([]jsonEntry, 0, len(entries))}
	for _, entry := range entries {
		doc.Entries = append(doc.Entries, jsonEntry{
			ID:        entry.ID,
			Role:      entry.Role.String(),
			Kind:      entry.Kind.String(),
			Timestamp: entry.Timestamp,
			Text:      entry.Text,
			Tables:    entry.Tables,
			Meta:      entry.Meta,
		})
	}
	return json.MarshalIndent(doc, "", "  ")
}

// FileExtension returns the file extension for JSON.
func (e *JSONExporter) FileExtension() string {
	return ".json"
}

// MimeType returns the MIME type for JSON.
func (e *JSONExporter) MimeType() string {
	return "application/json"
}
