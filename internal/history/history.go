// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package history loads past queries from the service and replays them
// into a transcript.
package history

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/jeranaias/docchat-tui/internal/model"
	"github.com/jeranaias/docchat-tui/internal/service"
	"github.com/jeranaias/docchat-tui/internal/transcript"
)

// DefaultLimit is the number of items fetched when no limit is configured.
const DefaultLimit = 50

// Fetcher loads history, oldest first.
type Fetcher interface {
	History(ctx context.Context, limit int) ([]service.HistoryItem, error)
}

// Panel holds the most recent queries, newest first.
type Panel struct {
	fetcher Fetcher
	limit   int

	mu    sync.RWMutex
	items []service.HistoryItem
}

// NewPanel creates a panel fetching up to limit items.
func NewPanel(fetcher Fetcher, limit int) *Panel {
	if limit <= 0 {
		limit = DefaultLimit
	}
	return &Panel{fetcher: fetcher, limit: limit}
}

// Refresh reloads the panel.
func (p *Panel) Refresh(ctx context.Context) error {
	items, err := p.fetcher.History(ctx, p.limit)
	if err != nil {
		return fmt.Errorf("load history: %w", err)
	}
	for i, j := 0, len(items)-1; i < j; i, j = i+1, j-1 {
		items[i], items[j] = items[j], items[i]
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.items = items
	return nil
}

// Items returns the loaded items, newest first.
func (p *Panel) Items() []service.HistoryItem {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return append([]service.HistoryItem(nil), p.items...)
}

// Item returns the i-th item, newest first.
func (p *Panel) Item(i int) (service.HistoryItem, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if i < 0 || i >= len(p.items) {
		return service.HistoryItem{}, false
	}
	return p.items[i], true
}

// Replay appends item's query and answer to the transcript.
func Replay(c *transcript.Composer, item service.HistoryItem) {
	c.Append(model.NewUserMessage(item.Query))
	c.Append(model.NewAssistantMessage(item.Answer, item.Intent, item.Mode))
}

// Summary is the one-line label for an item.
func Summary(item service.HistoryItem) string {
	parts := []string{FormatTimestamp(item.Timestamp)}
	if item.Mode != "" {
		parts = append(parts, item.Mode)
	}
	if len(item.DocIDs) > 0 {
		parts = append(parts, strings.Join(item.DocIDs, ","))
	}
	return strings.Join(parts, " · ") + "  " + strings.Join(strings.Fields(item.Query), " ")
}

// FormatTimestamp renders an RFC 3339 or Unix-seconds timestamp as local
// time. Unrecognized values are returned as is.
func FormatTimestamp(ts string) string {
	if t, err := time.Parse(time.RFC3339Nano, ts); err == nil {
		return t.Local().Format("2006-01-02 15:04")
	}
	if t, err := time.Parse("2006-01-02T15:04:05.999999", ts); err == nil {
		return t.Format("2006-01-02 15:04")
	}
	var secs float64
	if _, err := fmt.Sscanf(ts, "%f", &secs); err == nil && secs > 0 {
		return time.Unix(int64(secs), 0).Local().Format("2006-01-02 15:04")
	}
	return ts
}
