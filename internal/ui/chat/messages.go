// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"github.com/jeranaias/docchat-tui/internal/commands"
	"github.com/jeranaias/docchat-tui/internal/config"
	"github.com/jeranaias/docchat-tui/internal/service"
	"github.com/jeranaias/docchat-tui/internal/submit"
	"github.com/jeranaias/docchat-tui/internal/transcript"
)

// =============================================================================
// RENDER SINK MESSAGES
// =============================================================================

// entryAppendedMsg mirrors RenderSink.Append.
type entryAppendedMsg struct {
	entry *transcript.Entry
}

// entryRemovedMsg mirrors RenderSink.Remove.
type entryRemovedMsg struct {
	id string
}

// regionVisibleMsg mirrors RenderSink.SetVisible.
type regionVisibleMsg struct {
	id      string
	region  transcript.Region
	index   int
	visible bool
}

// settleMsg carries a function to run once everything queued before it
// has been rendered.
type settleMsg struct {
	fn func()
}

// anchorMsg mirrors RenderSink.ScrollToAnchor.
type anchorMsg struct{}

// =============================================================================
// WORK RESULTS
// =============================================================================

// stateMsg reports a submission state change.
type stateMsg struct {
	id    string
	state submit.State
}

// submitDoneMsg ends a submission.
type submitDoneMsg struct {
	result *submit.Result
	err    error
}

// commandDoneMsg ends a slash command.
type commandDoneMsg struct {
	result commands.Result
	err    error
}

// healthMsg carries a health probe result.
type healthMsg struct {
	health *service.Health
	err    error
}

// healthTickMsg schedules the next probe.
type healthTickMsg struct{}

// historyLoadedMsg opens the history panel.
type historyLoadedMsg struct {
	items []service.HistoryItem
	err   error
}

// documentsMsg reports a catalog refresh.
type documentsMsg struct {
	docs []service.Document
}

// ConfigReloadedMsg delivers a configuration reloaded from disk. Err is
// set when the file no longer loads; the previous settings stay in effect.
type ConfigReloadedMsg struct {
	Config *config.Config
	Err    error
}
