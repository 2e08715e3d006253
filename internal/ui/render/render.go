// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package render

import (
	"fmt"
	"strings"
	"sync"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/jeranaias/docchat-tui/internal/markup"
	"github.com/jeranaias/docchat-tui/internal/model"
	"github.com/jeranaias/docchat-tui/internal/transcript"
	"github.com/jeranaias/docchat-tui/internal/ui/styles"
	"github.com/jeranaias/docchat-tui/internal/util"
)

// Region indicators.
const (
	Collapsed = "▸"
	Expanded  = "▾"
)

// Options controls how entries are drawn.
type Options struct {
	// Width is the column budget for entry bodies.
	Width int

	// WordWrap wraps prose at Width.
	WordWrap bool

	// ShowTimestamps adds the entry time next to the role label.
	ShowTimestamps bool

	// Plain skips glamour and prints prose as Markdown.
	Plain bool
}

// DefaultOptions returns options for an 80 column terminal.
func DefaultOptions() Options {
	return Options{Width: 80, WordWrap: true, ShowTimestamps: true}
}

// Renderer draws entries. It is safe for concurrent use.
type Renderer struct {
	theme     *styles.Theme
	converter markup.Converter

	mu    sync.Mutex
	opts  Options
	glam  *glamour.TermRenderer
	glamW int
}

// New creates a renderer. A nil theme uses the auto-detected one.
func New(theme *styles.Theme, opts Options) *Renderer {
	if theme == nil {
		theme = styles.NewTheme(styles.ThemeAuto)
	}
	if opts.Width <= 0 {
		opts.Width = DefaultOptions().Width
	}
	return &Renderer{
		theme:     theme,
		converter: markup.Converter{CodeLanguage: GuessLanguage},
		opts:      opts,
	}
}

// SetWidth changes the column budget. The glamour renderer is rebuilt lazily.
func (r *Renderer) SetWidth(width int) {
	if width <= 0 {
		return
	}
	r.mu.Lock()
	r.opts.Width = width
	r.mu.Unlock()
}

// Width returns the current column budget.
func (r *Renderer) Width() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.opts.Width
}

// Entries renders entries separated by blank lines. frame is the spinner
// frame drawn on placeholder entries.
func (r *Renderer) Entries(entries []*transcript.Entry, frame string) string {
	parts := make([]string, 0, len(entries))
	for _, e := range entries {
		parts = append(parts, r.Entry(e, frame))
	}
	return strings.Join(parts, "\n\n")
}

// Entry renders one entry: a header line, the body, then any table and
// metadata regions.
func (r *Renderer) Entry(e *transcript.Entry, frame string) string {
	if e == nil {
		return ""
	}
	lines := []string{r.header(e)}

	switch e.Kind {
	case model.KindPlaceholder:
		text := markup.PlainText(e.Text)
		if frame != "" {
			text = frame + " " + text
		}
		lines = append(lines, r.theme.Placeholder.Render(text))
	case model.KindNotice:
		lines = append(lines, r.theme.Notice.Render(markup.PlainText(e.Text)))
	case model.KindError:
		lines = append(lines, r.theme.Error.Render(markup.PlainText(e.Text)))
	default:
		if e.Role == model.RoleUser {
			lines = append(lines, r.theme.Body.Render(markup.PlainText(e.Text)))
		} else if body := r.Prose(e.Text); body != "" {
			lines = append(lines, body)
		}
	}

	for i, t := range e.Tables {
		lines = append(lines, r.Table(t, i))
	}
	if e.Meta != nil {
		lines = append(lines, r.Meta(e.Meta))
	}
	if e.Degraded {
		lines = append(lines, r.theme.Degraded.Render("(shown as plain text)"))
	}
	return strings.Join(lines, "\n")
}

func (r *Renderer) header(e *transcript.Entry) string {
	label := r.theme.AssistantLabel
	if e.Role == model.RoleUser {
		label = r.theme.UserLabel
	}
	h := e.Avatar + " " + label.Render(e.Role.DisplayName())
	r.mu.Lock()
	show := r.opts.ShowTimestamps
	r.mu.Unlock()
	if show && !e.Timestamp.IsZero() {
		h += "  " + r.theme.Timestamp.Render(e.Timestamp.Local().Format("15:04"))
	}
	return h
}

// Prose renders sanitized markup as terminal text. Glamour failures fall
// back to the Markdown source.
func (r *Renderer) Prose(fragment string) string {
	md := strings.TrimSpace(r.converter.Markdown(fragment))
	if md == "" {
		return ""
	}
	glam := r.glamour()
	if glam == nil {
		return md
	}
	out, err := glam.Render(md)
	if err != nil {
		return md
	}
	return strings.Trim(out, "\n")
}

func (r *Renderer) glamour() *glamour.TermRenderer {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.opts.Plain {
		return nil
	}
	if r.glam != nil && r.glamW == r.opts.Width {
		return r.glam
	}
	wrap := 0
	if r.opts.WordWrap {
		wrap = r.opts.Width
	}
	glam, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(r.theme.GlamourStyle()),
		glamour.WithWordWrap(wrap),
	)
	if err != nil {
		return nil
	}
	r.glam, r.glamW = glam, r.opts.Width
	return glam
}

// Table renders a table region. A collapsed region is its indicator line.
func (r *Renderer) Table(t transcript.TableRegion, index int) string {
	width := r.Width()
	indicator := Collapsed
	hint := "ctrl+e expands"
	if t.Expanded {
		indicator, hint = Expanded, "ctrl+e collapses"
	}
	title := t.Title
	if title == "" {
		title = markup.FallbackTitle(index)
	}
	title = util.TruncateWidth(title, width-util.StringWidth(indicator)-1)
	line := r.theme.RegionTitle.Render(indicator+" "+title) + "  " + r.theme.RegionHint.Render(hint)
	if !t.Expanded {
		return line
	}
	return line + "\n" + r.grid(t.Markup, width)
}

func (r *Renderer) grid(fragment string, width int) string {
	header, rows := markup.TableRows(fragment)
	if len(header) == 0 && len(rows) == 0 {
		return markup.PlainText(fragment)
	}
	if len(header) == 0 {
		header, rows = rows[0], rows[1:]
	}

	headerStyle, cellStyle := r.theme.TableHeader, r.theme.TableCell
	tbl := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(r.theme.TableBorder).
		Headers(header...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})
	if lipgloss.Width(tbl.Render()) > width {
		tbl = tbl.Width(width)
	}
	return tbl.Render()
}

// Meta renders the intent/mode line and, when visible, the citation list.
func (r *Renderer) Meta(meta *transcript.MetaRegion) string {
	var parts []string
	if meta.Intent != "" {
		parts = append(parts, "intent: "+meta.Intent)
	}
	if meta.Mode != "" {
		parts = append(parts, "mode: "+meta.Mode)
	}
	if n := len(meta.Citations); n > 0 {
		indicator := Collapsed
		if meta.CitationsVisible {
			indicator = Expanded
		}
		parts = append(parts, fmt.Sprintf("%s Sources (%d)", indicator, n))
	}
	line := r.theme.MetaLine.Render(strings.Join(parts, " · "))
	if !meta.CitationsVisible || len(meta.Citations) == 0 {
		return line
	}

	docWidth := 0
	for _, c := range meta.Citations {
		if w := util.StringWidth(c.DocID); w > docWidth {
			docWidth = w
		}
	}
	if limit := r.Width() / 2; docWidth > limit {
		docWidth = limit
	}
	lines := []string{line}
	for _, c := range meta.Citations {
		doc := util.PadRight(util.TruncateWidth(c.DocID, docWidth), docWidth)
		lines = append(lines, r.theme.Citation.Render(fmt.Sprintf("- %s  p. %s  (%s)", doc, c.Page, c.SourceKind)))
	}
	return strings.Join(lines, "\n")
}
