// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/docchat-tui/internal/transcript"
)

// Sender delivers messages to a running program. *tea.Program satisfies it.
type Sender interface {
	Send(msg tea.Msg)
}

// ProgramSink is a transcript.RenderSink backed by a Bubble Tea program.
// Calls made before Attach are dropped; the composer replays its entries
// when the model installs the sink.
//
// Send blocks until the program's event loop takes the message, so sink
// methods must not be called from inside Update.
type ProgramSink struct {
	mu     sync.RWMutex
	sender Sender
}

// NewProgramSink creates an unattached sink.
func NewProgramSink() *ProgramSink {
	return &ProgramSink{}
}

// Attach routes future messages to s.
func (p *ProgramSink) Attach(s Sender) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.sender = s
}

// Send delivers an arbitrary message to the program.
func (p *ProgramSink) Send(msg tea.Msg) {
	p.mu.RLock()
	s := p.sender
	p.mu.RUnlock()
	if s != nil {
		s.Send(msg)
	}
}

func (p *ProgramSink) Append(e *transcript.Entry) {
	p.Send(entryAppendedMsg{entry: e})
}

func (p *ProgramSink) Remove(id string) {
	p.Send(entryRemovedMsg{id: id})
}

func (p *ProgramSink) SetVisible(id string, region transcript.Region, index int, visible bool) {
	p.Send(regionVisibleMsg{id: id, region: region, index: index, visible: visible})
}

// Settle queues fn behind every message already sent.
func (p *ProgramSink) Settle(fn func()) {
	p.Send(settleMsg{fn: fn})
}

func (p *ProgramSink) ScrollToAnchor() {
	p.Send(anchorMsg{})
}

var _ transcript.RenderSink = (*ProgramSink)(nil)
