// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package transcript

import (
	"html"
	"log"
	"strings"
	"sync"

	"github.com/jeranaias/docchat-tui/internal/markup"
	"github.com/jeranaias/docchat-tui/internal/model"
)

// =============================================================================
// COMPOSER
// =============================================================================

// Composer builds entries from messages and keeps the transcript and its
// sink in step.
type Composer struct {
	sanitizer  *markup.Sanitizer
	directives *markup.DirectiveExpander
	transcript *Transcript

	// mu orders transcript mutations with their sink calls.
	mu   sync.Mutex
	sink RenderSink
}

// NewComposer creates a composer writing to sink. A nil sink discards.
func NewComposer(sanitizer *markup.Sanitizer, directives *markup.DirectiveExpander, sink RenderSink) *Composer {
	if sink == nil {
		sink = Discard
	}
	if directives == nil {
		directives = markup.NewDirectiveExpander("")
	}
	return &Composer{
		sanitizer:  sanitizer,
		directives: directives,
		transcript: New(),
		sink:       sink,
	}
}

// Transcript returns the transcript the composer appends to.
func (c *Composer) Transcript() *Transcript {
	return c.transcript
}

// SetSink swaps the display surface. Existing entries are replayed onto it.
func (c *Composer) SetSink(sink RenderSink) {
	if sink == nil {
		sink = Discard
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sink = sink
	for _, e := range c.transcript.Entries() {
		sink.Append(e)
	}
	c.anchorLocked()
}

// Append composes msg, adds it to the transcript and scrolls to the anchor.
func (c *Composer) Append(msg *model.Message) *Entry {
	e := c.Compose(msg)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.transcript.Append(e)
	c.sink.Append(e.Clone())
	c.anchorLocked()
	return e.Clone()
}

// Remove takes a placeholder out of the transcript.
func (c *Composer) Remove(id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.transcript.Remove(id); err != nil {
		return err
	}
	c.sink.Remove(id)
	c.anchorLocked()
	return nil
}

// ToggleCitations flips the citation list of an answer and returns its new state.
func (c *Composer) ToggleCitations(id string) (bool, error) {
	return c.toggle(id, RegionCitations, 0)
}

// ToggleTable flips one table region of an entry and returns its new state.
func (c *Composer) ToggleTable(id string, index int) (bool, error) {
	return c.toggle(id, RegionTable, index)
}

func (c *Composer) toggle(id string, region Region, index int) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, err := c.transcript.Toggle(id, region, index)
	if err != nil {
		return false, err
	}
	c.sink.SetVisible(id, region, index, v)
	c.anchorLocked()
	return v, nil
}

// anchorLocked scrolls in two phases: layout from the preceding call settles
// first, then the view moves to the anchor.
func (c *Composer) anchorLocked() {
	sink := c.sink
	sink.Settle(sink.ScrollToAnchor)
}

// =============================================================================
// COMPOSITION
// =============================================================================

// Compose builds an entry from msg without touching the transcript.
func (c *Composer) Compose(msg *model.Message) *Entry {
	e := &Entry{
		ID:        msg.ID,
		Role:      msg.Role,
		Kind:      msg.Kind,
		Avatar:    msg.Role.Avatar(),
		Timestamp: msg.Timestamp,
	}
	if msg.Kind == model.KindError {
		e.Avatar = "⚠"
	}

	if msg.Kind.Plain(msg.Role) {
		e.Text = plainText(msg.Content)
		return e
	}

	c.composeAnswer(e, msg)

	if msg.HasMetadata() {
		citations := make([]model.Citation, len(msg.Sources))
		for i, src := range msg.Sources {
			citations[i] = src.WithDefaults()
		}
		e.Meta = &MetaRegion{
			Intent:    strings.TrimSpace(msg.Intent),
			Mode:      msg.Mode,
			Citations: citations,
		}
	}
	return e
}

func (c *Composer) composeAnswer(e *Entry, msg *model.Message) {
	raw := markup.DecodeBasicEntities(msg.Content)

	ext, err := markup.Extract(raw)
	if err != nil {
		log.Printf("COMPOSE | id=%s extract_failed=%v", msg.ID, err)
		ext = markup.Extraction{Prose: raw}
		e.Degraded = true
	}

	text, err := c.sanitizer.Sanitize(c.directives.Expand(ext.Prose))
	if err != nil {
		log.Printf("COMPOSE | id=%s sanitize_failed=%v", msg.ID, err)
		text = plainText(ext.Prose)
		e.Degraded = true
	}
	e.Text = strings.TrimSpace(text)

	blocks := append(ext.Tables, msg.Tables...)
	for i, tb := range blocks {
		title := strings.TrimSpace(tb.Title)
		if title == "" {
			title = markup.FallbackTitle(i)
		}
		safe, err := c.sanitizer.Sanitize(tb.Markup)
		if err != nil {
			safe = plainText(tb.Markup)
			e.Degraded = true
		}
		e.Tables = append(e.Tables, TableRegion{
			Title:    title,
			Markup:   safe,
			Expanded: i == 0,
		})
	}
}

// plainText escapes text for display and keeps its line breaks.
func plainText(text string) string {
	escaped := html.EscapeString(strings.TrimSpace(text))
	return strings.ReplaceAll(escaped, "\n", "<br>")
}
