// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package export writes transcripts to files.
//
// # Key Types
//
//   - Exporter: format interface (HTML, Markdown, JSON)
//   - Document: a RenderSink that mirrors a live transcript for export
//   - Options: export configuration
//
// # Supported Formats
//
//   - HTML: standalone page; tables and citations are <details> regions
//     that keep the expanded or collapsed state they had when exported
//   - Markdown: human-readable, tables as pipe tables
//   - JSON: the composed entries
//
// # Usage
//
//	path, err := export.ExportToFile(composer.Transcript().Entries(),
//	    export.NewHTMLExporter(nil), nil)
package export
