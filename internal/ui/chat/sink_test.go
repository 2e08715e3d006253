// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"sync"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/docchat-tui/internal/transcript"
)

// loopback records messages in place of a running program.
type loopback struct {
	mu   sync.Mutex
	msgs []tea.Msg
}

func (l *loopback) Send(msg tea.Msg) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.msgs = append(l.msgs, msg)
}

func (l *loopback) drain() []tea.Msg {
	l.mu.Lock()
	defer l.mu.Unlock()
	msgs := l.msgs
	l.msgs = nil
	return msgs
}

func TestProgramSinkDropsUntilAttached(t *testing.T) {
	sink := NewProgramSink()
	sink.Append(&transcript.Entry{ID: "a"})

	lb := &loopback{}
	sink.Attach(lb)
	assert.Empty(t, lb.drain())

	sink.Append(&transcript.Entry{ID: "b"})
	msgs := lb.drain()
	require.Len(t, msgs, 1)
	assert.Equal(t, "b", msgs[0].(entryAppendedMsg).entry.ID)
}

func TestProgramSinkTranslatesCalls(t *testing.T) {
	lb := &loopback{}
	sink := NewProgramSink()
	sink.Attach(lb)

	sink.Remove("p1")
	sink.SetVisible("a1", transcript.RegionTable, 2, true)
	ran := false
	sink.Settle(func() { ran = true })
	sink.ScrollToAnchor()

	msgs := lb.drain()
	require.Len(t, msgs, 4)
	assert.Equal(t, entryRemovedMsg{id: "p1"}, msgs[0])
	assert.Equal(t, regionVisibleMsg{id: "a1", region: transcript.RegionTable, index: 2, visible: true}, msgs[1])
	settle, ok := msgs[2].(settleMsg)
	require.True(t, ok)
	assert.False(t, ran, "settle must not run the function itself")
	settle.fn()
	assert.True(t, ran)
	assert.Equal(t, anchorMsg{}, msgs[3])
}
