// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"fmt"
	"strings"

	"github.com/jeranaias/docchat-tui/internal/markup"
	"github.com/jeranaias/docchat-tui/internal/transcript"
)

// MarkdownExporter exports transcripts to Markdown.
type MarkdownExporter struct {
	options *Options
}

// NewMarkdownExporter creates a new Markdown exporter.
func NewMarkdownExporter(opts *Options) *MarkdownExporter {
	return &MarkdownExporter{options: fillOptions(opts)}
}

// Export converts entries to Markdown.
func (e *MarkdownExporter) Export(entries []*transcript.Entry) ([]byte, error) {
	var sb strings.Builder

	sb.WriteString("# " + e.options.Title + "\n\n")

	for _, entry := range entries {
		sb.WriteString(fmt.Sprintf("### %s %s", entry.Avatar, roleLabel(entry)))
		if e.options.IncludeTimestamps {
			if ts := formatTimestamp(entry.Timestamp); ts != "" {
				sb.WriteString(" · " + ts)
			}
		}
		sb.WriteString("\n\n")

		if text := markup.ToMarkdown(entry.Text); text != "" {
			sb.WriteString(text + "\n\n")
		}

		for _, t := range entry.Tables {
			sb.WriteString("**" + t.Title + "**\n\n")
			if table := markup.ToMarkdown(t.Markup); table != "" {
				sb.WriteString(table + "\n\n")
			}
		}

		if m := entry.Meta; m != nil {
			if m.Intent != "" {
				sb.WriteString("_Intent: " + m.Intent + "_\n\n")
			}
			for _, c := range m.Citations {
				sb.WriteString(fmt.Sprintf("- %s, p. %s (%s)\n", c.DocID, c.Page, c.SourceKind))
			}
			if len(m.Citations) > 0 {
				sb.WriteString("\n")
			}
		}

		sb.WriteString("---\n\n")
	}

	return []byte(sb.String()), nil
}

// FileExtension returns the file extension for Markdown.
func (e *MarkdownExporter) FileExtension() string {
	return ".md"
}

// MimeType returns the MIME type for Markdown.
func (e *MarkdownExporter) MimeType() string {
	return "text/markdown"
}
