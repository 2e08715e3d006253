// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// printer.go - A line-oriented render sink for ask and repl.

package cli

import (
	"fmt"
	"io"
	"sync"

	"github.com/jeranaias/docchat-tui/internal/config"
	"github.com/jeranaias/docchat-tui/internal/model"
	"github.com/jeranaias/docchat-tui/internal/transcript"
	"github.com/jeranaias/docchat-tui/internal/ui/render"
	"github.com/jeranaias/docchat-tui/internal/ui/styles"
)

// printOptions controls which regions start expanded in printed output.
type printOptions struct {
	Sources bool
	Tables  bool
}

// printer writes entries to a stream as they are appended. Placeholders
// are never printed. A region toggle prints the entry again in its new
// state, since printed text cannot be changed in place.
type printer struct {
	mu       sync.Mutex
	w        io.Writer
	renderer *render.Renderer
	opts     printOptions
	entries  map[string]*transcript.Entry
	skipEcho bool
}

var _ transcript.RenderSink = (*printer)(nil)

// newPrinter renders for w. Output that is not a terminal gets plain
// Markdown prose instead of glamour styling.
func newPrinter(w io.Writer, cfg *config.Config, opts printOptions) *printer {
	theme := styles.NewTheme(cfg.UI.Theme)
	return &printer{
		w: w,
		renderer: render.New(theme, render.Options{
			Width:          widthOf(w),
			WordWrap:       cfg.UI.WordWrap,
			ShowTimestamps: cfg.UI.ShowTimestamps,
			Plain:          !isTerminalWriter(w),
		}),
		opts:    opts,
		entries: make(map[string]*transcript.Entry),
	}
}

// expectEcho skips the next user query entry, for surfaces where the
// user's own line is already on screen.
func (p *printer) expectEcho() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.skipEcho = true
}

func (p *printer) Append(e *transcript.Entry) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if e.Kind == model.KindPlaceholder {
		return
	}
	if e.Role == model.RoleUser && e.Kind == model.KindAnswer && p.skipEcho {
		p.skipEcho = false
		return
	}
	if p.opts.Sources && e.Meta != nil {
		e.Meta.CitationsVisible = true
	}
	if p.opts.Tables {
		for i := range e.Tables {
			e.Tables[i].Expanded = true
		}
	}
	p.entries[e.ID] = e
	p.print(e)
}

func (p *printer) Remove(id string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.entries, id)
}

func (p *printer) SetVisible(id string, region transcript.Region, index int, visible bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	e, ok := p.entries[id]
	if !ok {
		return
	}
	switch region {
	case transcript.RegionCitations:
		if e.Meta == nil || e.Meta.CitationsVisible == visible {
			return
		}
		e.Meta.CitationsVisible = visible
	case transcript.RegionTable:
		if index < 0 || index >= len(e.Tables) || e.Tables[index].Expanded == visible {
			return
		}
		e.Tables[index].Expanded = visible
	default:
		return
	}
	p.print(e)
}

func (p *printer) Settle(fn func()) { fn() }

func (p *printer) ScrollToAnchor() {}

func (p *printer) print(e *transcript.Entry) {
	fmt.Fprintf(p.w, "%s\n\n", p.renderer.Entry(e, ""))
}
