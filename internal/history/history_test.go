// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package history

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/docchat-tui/internal/markup"
	"github.com/jeranaias/docchat-tui/internal/model"
	"github.com/jeranaias/docchat-tui/internal/service"
	"github.com/jeranaias/docchat-tui/internal/service/servicetest"
	"github.com/jeranaias/docchat-tui/internal/transcript"
)

func TestRefreshNewestFirst(t *testing.T) {
	fake := servicetest.New(t)
	fake.SetHistory(
		service.HistoryItem{Timestamp: "2025-01-01T10:00:00", Query: "first"},
		service.HistoryItem{Timestamp: "2025-01-01T11:00:00", Query: "second"},
		service.HistoryItem{Timestamp: "2025-01-01T12:00:00", Query: "third"},
	)

	p := NewPanel(fake.Client(), 0)
	require.NoError(t, p.Refresh(context.Background()))

	items := p.Items()
	require.Len(t, items, 3)
	assert.Equal(t, "third", items[0].Query)
	assert.Equal(t, "first", items[2].Query)

	_, ok := p.Item(3)
	assert.False(t, ok)
}

func TestReplay(t *testing.T) {
	rec := transcript.NewRecorder()
	c := transcript.NewComposer(markup.MustSanitizer(markup.DefaultAllowList), nil, rec)

	Replay(c, service.HistoryItem{Query: "rates?", Answer: "<b>5%</b>", Intent: "lookup", Mode: "text"})

	entries := rec.Entries()
	require.Len(t, entries, 2)
	assert.Equal(t, model.RoleUser, entries[0].Role)
	assert.Equal(t, "<b>5%</b>", entries[1].Text)
	require.NotNil(t, entries[1].Meta)
	assert.Equal(t, "lookup", entries[1].Meta.Intent)
}

func TestSummary(t *testing.T) {
	s := Summary(service.HistoryItem{Timestamp: "2025-03-04T05:06:07", Query: "what\nis  this", Mode: "table", DocIDs: []string{"a"}})

	assert.True(t, strings.HasPrefix(s, "2025-03-04 05:06 · table · a"))
	assert.True(t, strings.HasSuffix(s, "what is this"))
}

func TestFormatTimestampUnknown(t *testing.T) {
	assert.Equal(t, "yesterday", FormatTimestamp("yesterday"))
}
