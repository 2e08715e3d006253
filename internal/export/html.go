// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/jeranaias/docchat-tui/internal/model"
	"github.com/jeranaias/docchat-tui/internal/transcript"
)

// AnchorID is the id of the element that follows the last entry.
const AnchorID = "transcript-anchor"

// =============================================================================
// HTML EXPORTER
// =============================================================================

// HTMLExporter exports transcripts to a standalone HTML page with embedded CSS.
// Entry text is already sanitized and is written as is.
type HTMLExporter struct {
	options *Options
}

// NewHTMLExporter creates a new HTML exporter.
func NewHTMLExporter(opts *Options) *HTMLExporter {
	return &HTMLExporter{options: fillOptions(opts)}
}

// Export converts entries to HTML.
func (e *HTMLExporter) Export(entries []*transcript.Entry) ([]byte, error) {
	var sb strings.Builder

	sb.WriteString("<!DOCTYPE html>\n")
	sb.WriteString("<html lang=\"en\">\n")
	sb.WriteString("<head>\n")
	sb.WriteString("    <meta charset=\"UTF-8\">\n")
	sb.WriteString("    <meta name=\"viewport\" content=\"width=device-width, initial-scale=1.0\">\n")
	sb.WriteString(fmt.Sprintf("    <title>%s</title>\n", html.EscapeString(e.options.Title)))
	sb.WriteString("    <meta name=\"generator\" content=\"docchat\">\n")
	sb.WriteString(e.getCSS())
	sb.WriteString("</head>\n")
	sb.WriteString(fmt.Sprintf("<body class=\"%s-theme\">\n", e.options.Theme))
	sb.WriteString("    <div class=\"container\">\n")

	sb.WriteString("        <header class=\"header\">\n")
	sb.WriteString(fmt.Sprintf("            <h1>%s</h1>\n", html.EscapeString(e.options.Title)))
	sb.WriteString(fmt.Sprintf("            <div class=\"metadata\">%d entries</div>\n", len(entries)))
	sb.WriteString("        </header>\n")

	sb.WriteString("        <main class=\"transcript\">\n")
	for _, entry := range entries {
		sb.WriteString(e.renderEntry(entry))
	}
	sb.WriteString(fmt.Sprintf("            <div id=\"%s\"></div>\n", AnchorID))
	sb.WriteString("        </main>\n")

	sb.WriteString("        <footer class=\"footer\">\n")
	sb.WriteString(fmt.Sprintf("            <p>Exported from <strong>docchat</strong> on %s</p>\n",
		time.Now().Format("January 2, 2006 at 3:04 PM")))
	sb.WriteString("        </footer>\n")
	sb.WriteString("    </div>\n")
	sb.WriteString("</body>\n")
	sb.WriteString("</html>\n")

	return []byte(sb.String()), nil
}

// FileExtension returns the file extension for HTML.
func (e *HTMLExporter) FileExtension() string {
	return ".html"
}

// MimeType returns the MIME type for HTML.
func (e *HTMLExporter) MimeType() string {
	return "text/html"
}

// =============================================================================
// RENDERING FUNCTIONS
// =============================================================================

func (e *HTMLExporter) renderEntry(entry *transcript.Entry) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("            <article class=\"entry %s-entry %s\" id=\"entry-%s\">\n",
		entry.Role, entry.Kind, html.EscapeString(entry.ID)))

	sb.WriteString("                <div class=\"entry-header\">\n")
	sb.WriteString(fmt.Sprintf("                    <span class=\"avatar\">%s</span>\n", html.EscapeString(entry.Avatar)))
	sb.WriteString(fmt.Sprintf("                    <span class=\"role-label\">%s</span>\n", roleLabel(entry)))
	if e.options.IncludeTimestamps {
		if ts := formatTimestamp(entry.Timestamp); ts != "" {
			sb.WriteString(fmt.Sprintf("                    <span class=\"timestamp\">%s</span>\n", ts))
		}
	}
	sb.WriteString("                </div>\n")

	if entry.Text != "" {
		sb.WriteString("                <div class=\"entry-content\">")
		sb.WriteString(entry.Text)
		sb.WriteString("</div>\n")
	}

	for _, t := range entry.Tables {
		sb.WriteString(fmt.Sprintf("                <details class=\"table-region\"%s>\n", openAttr(t.Expanded)))
		sb.WriteString(fmt.Sprintf("                    <summary>%s</summary>\n", html.EscapeString(t.Title)))
		sb.WriteString("                    <div class=\"table-scroll\">")
		sb.WriteString(t.Markup)
		sb.WriteString("</div>\n")
		sb.WriteString("                </details>\n")
	}

	if entry.Meta != nil {
		sb.WriteString(renderMeta(entry.Meta))
	}

	sb.WriteString("            </article>\n")
	return sb.String()
}

func renderMeta(meta *transcript.MetaRegion) string {
	var sb strings.Builder
	sb.WriteString("                <div class=\"meta\">\n")
	if meta.Intent != "" {
		sb.WriteString(fmt.Sprintf("                    <span class=\"intent\">Intent: %s</span>\n", html.EscapeString(meta.Intent)))
	}
	if meta.Mode != "" {
		sb.WriteString(fmt.Sprintf("                    <span class=\"mode\">Mode: %s</span>\n", html.EscapeString(meta.Mode)))
	}
	if len(meta.Citations) > 0 {
		sb.WriteString(fmt.Sprintf("                    <details class=\"citations\"%s>\n", openAttr(meta.CitationsVisible)))
		sb.WriteString(fmt.Sprintf("                        <summary>Sources (%d)</summary>\n", len(meta.Citations)))
		sb.WriteString("                        <ul>\n")
		for _, c := range meta.Citations {
			sb.WriteString("                            <li>" + citationHTML(c) + "</li>\n")
		}
		sb.WriteString("                        </ul>\n")
		sb.WriteString("                    </details>\n")
	}
	sb.WriteString("                </div>\n")
	return sb.String()
}

func citationHTML(c model.Citation) string {
	return fmt.Sprintf("<span class=\"doc\">%s</span> <span class=\"page\">p. %s</span> <span class=\"kind\">%s</span>",
		html.EscapeString(c.DocID), html.EscapeString(c.Page), html.EscapeString(c.SourceKind))
}

func openAttr(open bool) string {
	if open {
		return " open"
	}
	return ""
}

// getCSS returns the embedded stylesheet.
func (e *HTMLExporter) getCSS() string {
	return `    <style>
        * {
            margin: 0;
            padding: 0;
            box-sizing: border-box;
        }

        :root {
            --font-sans: -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, "Helvetica Neue", Arial, sans-serif;
            --font-mono: "SF Mono", "Monaco", "Inconsolata", "Fira Code", monospace;
        }

        .dark-theme {
            --bg-primary: #1a1b26;
            --bg-secondary: #24283b;
            --bg-tertiary: #414868;
            --text-primary: #c0caf5;
            --text-muted: #565f89;
            --border-color: #414868;
            --user-bg: #1f2335;
            --assistant-bg: #24283b;
            --accent-blue: #7aa2f7;
            --accent-green: #9ece6a;
            --accent-red: #f7768e;
            --accent-amber: #e0af68;
        }

        .light-theme {
            --bg-primary: #ffffff;
            --bg-secondary: #f7f8fa;
            --bg-tertiary: #e1e4e8;
            --text-primary: #24292e;
            --text-muted: #6a737d;
            --border-color: #e1e4e8;
            --user-bg: #f6f8fa;
            --assistant-bg: #ffffff;
            --accent-blue: #0366d6;
            --accent-green: #22863a;
            --accent-red: #d73a49;
            --accent-amber: #b08800;
        }

        body {
            font-family: var(--font-sans);
            font-size: 16px;
            line-height: 1.6;
            color: var(--text-primary);
            background: var(--bg-primary);
            padding: 20px;
        }

        .container {
            max-width: 900px;
            margin: 0 auto;
            background: var(--bg-secondary);
            border-radius: 12px;
            overflow: hidden;
        }

        .header {
            padding: 32px;
            background: var(--bg-tertiary);
        }

        .header h1 {
            font-size: 28px;
            margin-bottom: 8px;
        }

        .metadata, .timestamp, .footer, .meta {
            color: var(--text-muted);
            font-size: 14px;
        }

        .transcript {
            padding: 24px 32px;
        }

        .entry {
            margin-bottom: 24px;
            padding: 20px;
            border-radius: 8px;
            border-left: 4px solid transparent;
        }

        .user-entry {
            background: var(--user-bg);
            border-left-color: var(--accent-blue);
        }

        .assistant-entry {
            background: var(--assistant-bg);
            border-left-color: var(--accent-green);
        }

        .entry.error {
            border-left-color: var(--accent-red);
        }

        .entry.notice {
            border-left-color: var(--accent-amber);
        }

        .entry-header {
            display: flex;
            gap: 8px;
            align-items: center;
            margin-bottom: 12px;
            font-size: 14px;
        }

        .role-label {
            font-weight: 600;
        }

        .timestamp {
            margin-left: auto;
            font-family: var(--font-mono);
        }

        .entry-content p {
            margin-bottom: 12px;
        }

        .answer-image img {
            max-width: 100%;
            border-radius: 6px;
            margin: 8px 0;
        }

        details {
            margin-top: 12px;
        }

        summary {
            cursor: pointer;
            font-weight: 600;
        }

        .table-scroll {
            overflow-x: auto;
            margin-top: 8px;
        }

        table {
            border-collapse: collapse;
            width: 100%;
        }

        th, td {
            border: 1px solid var(--border-color);
            padding: 6px 10px;
            text-align: left;
        }

        .meta {
            margin-top: 12px;
            padding-top: 12px;
            border-top: 1px solid var(--border-color);
            display: flex;
            flex-wrap: wrap;
            gap: 16px;
        }

        .citations ul {
            list-style: none;
            margin-top: 6px;
        }

        .citations .doc {
            font-family: var(--font-mono);
        }

        .footer {
            padding: 20px 32px;
            text-align: center;
            border-top: 1px solid var(--border-color);
        }
    </style>
`
}
