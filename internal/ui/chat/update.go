// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/docchat-tui/internal/commands"
	"github.com/jeranaias/docchat-tui/internal/history"
	"github.com/jeranaias/docchat-tui/internal/model"
	"github.com/jeranaias/docchat-tui/internal/service"
	"github.com/jeranaias/docchat-tui/internal/submit"
	"github.com/jeranaias/docchat-tui/internal/transcript"
)

// busyNotice is shown when a question is sent while another is in flight.
const busyNotice = "Still working on the previous question."

// =============================================================================
// RESIZE
// =============================================================================

func (m Model) handleResize(msg tea.WindowSizeMsg) (tea.Model, tea.Cmd) {
	m.width = msg.Width
	m.height = msg.Height
	m.ready = true

	m.theme.SetSize(m.width, m.height)
	m.renderer.SetWidth(m.theme.ContentWidth())

	const promptLen = 2
	inputWidth := m.width - 6 - promptLen
	if inputWidth < 10 {
		inputWidth = 10
	}
	m.input.Width = inputWidth

	m.viewport.Width = max(m.width, 1)
	m.layout()

	// Glamour output depends on width.
	m.rendered = make(map[string]string)
	m.refresh()
	return m, nil
}

// layout sizes the viewport to what the chrome leaves.
func (m *Model) layout() {
	chrome := lipgloss.Height(m.renderHeader()) +
		lipgloss.Height(m.renderInput()) +
		lipgloss.Height(m.renderStatusBar())
	if m.completion.Visible {
		chrome++
	}
	m.viewport.Height = max(m.height-chrome, 1)
}

// refresh re-renders the mirror into the viewport. Placeholders are drawn
// with the current spinner frame; everything else is cached.
func (m *Model) refresh() {
	frame := ""
	if m.state != submit.Idle {
		frame = m.spinner.View()
	}
	parts := make([]string, 0, len(m.entries))
	for _, e := range m.entries {
		if e.Kind == model.KindPlaceholder {
			parts = append(parts, m.renderer.Entry(e, frame))
			continue
		}
		out, ok := m.rendered[e.ID]
		if !ok {
			out = m.renderer.Entry(e, "")
			m.rendered[e.ID] = out
		}
		parts = append(parts, out)
	}
	m.viewport.SetContent(strings.Join(parts, "\n\n"))
}

// =============================================================================
// KEYS
// =============================================================================

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Quit) {
		m.quitting = true
		return m, tea.Quit
	}
	if m.historyOpen {
		return m.handleHistoryKey(msg)
	}

	switch {
	case key.Matches(msg, m.keys.Complete):
		return m.complete()

	case key.Matches(msg, m.keys.Escape):
		if m.completion.Visible {
			m.input.SetValue(m.completion.OriginalInput)
			m.input.CursorEnd()
			m.clearCompletion()
		}
		return m, nil

	case key.Matches(msg, m.keys.Submit):
		if m.completion.Visible {
			m.clearCompletion()
			return m, nil
		}
		return m.submit()

	case key.Matches(msg, m.keys.ToggleSources):
		return m, m.toggleSources()

	case key.Matches(msg, m.keys.ToggleTables):
		return m, m.toggleTables()

	case key.Matches(msg, m.keys.History):
		return m, m.loadHistory()

	case key.Matches(msg, m.keys.Up):
		m.viewport.LineUp(1)
		return m, nil

	case key.Matches(msg, m.keys.Down):
		m.viewport.LineDown(1)
		return m, nil

	case key.Matches(msg, m.keys.PageUp):
		m.viewport.ViewUp()
		return m, nil

	case key.Matches(msg, m.keys.PageDown):
		m.viewport.ViewDown()
		return m, nil

	case key.Matches(msg, m.keys.Top):
		m.viewport.GotoTop()
		return m, nil

	case key.Matches(msg, m.keys.Bottom):
		m.viewport.GotoBottom()
		return m, nil
	}

	if m.completion.Visible {
		m.clearCompletion()
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) handleHistoryKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Escape), key.Matches(msg, m.keys.History):
		m.historyOpen = false

	case key.Matches(msg, m.keys.Up):
		if m.historySel > 0 {
			m.historySel--
		}

	case key.Matches(msg, m.keys.Down):
		if m.historySel < len(m.historyItems)-1 {
			m.historySel++
		}

	case key.Matches(msg, m.keys.Submit):
		m.historyOpen = false
		if m.historySel < len(m.historyItems) {
			return m, m.replay(m.historyItems[m.historySel])
		}
	}
	return m, nil
}

// =============================================================================
// COMPLETION
// =============================================================================

// complete fills the input from the completer. A single candidate is
// applied directly; several open a list that Tab cycles through.
func (m Model) complete() (tea.Model, tea.Cmd) {
	if m.completion.Visible && len(m.lines) > 0 {
		m.completion.Next()
		m.input.SetValue(m.lines[m.completion.Selected])
		m.input.CursorEnd()
		return m, nil
	}

	input := m.input.Value()
	lines := m.completer.Lines(input)
	switch len(lines) {
	case 0:
		return m, nil
	case 1:
		m.input.SetValue(lines[0])
		m.input.CursorEnd()
		return m, nil
	}

	m.completion.Update(input, m.completer.Complete(input))
	m.lines = lines
	m.input.SetValue(lines[0])
	m.input.CursorEnd()
	m.layout()
	return m, nil
}

func (m *Model) clearCompletion() {
	m.completion.Clear()
	m.lines = nil
	m.layout()
}

// =============================================================================
// SUBMISSION AND COMMANDS
// =============================================================================

func (m Model) submit() (tea.Model, tea.Cmd) {
	text := strings.TrimSpace(m.input.Value())
	if commands.IsCommand(text) {
		m.input.Reset()
		return m, m.runCommand(text)
	}
	if text == "" && m.deps.Session.Attachment() == nil {
		return m, nil
	}
	if m.state != submit.Idle {
		return m, m.notice(busyNotice)
	}
	m.input.Reset()
	return m, m.runSubmit(text)
}

func (m Model) runSubmit(text string) tea.Cmd {
	deps := m.deps
	return func() tea.Msg {
		res, err := deps.Machine.Submit(deps.Ctx, deps.Session, text)
		if errors.Is(err, submit.ErrBusy) {
			deps.Composer.Append(model.NewNotice(model.RoleAssistant, busyNotice))
		}
		return submitDoneMsg{result: res, err: err}
	}
}

func (m Model) runCommand(text string) tea.Cmd {
	deps := m.deps
	env := &commands.Env{
		Ctx:        deps.Ctx,
		Session:    deps.Session,
		Catalog:    deps.Catalog,
		History:    deps.History,
		Composer:   deps.Composer,
		Health:     deps.Health,
		ExportOpts: deps.ExportOpts,
	}
	return func() tea.Msg {
		deps.Composer.Append(model.NewNotice(model.RoleUser, text))
		res, err := deps.Registry.Execute(env, text)
		if err != nil {
			deps.Composer.Append(model.NewErrorMessage(err.Error()))
		} else if res.Output != "" && res.Action != commands.ActionShowHistory {
			deps.Composer.Append(model.NewNotice(model.RoleAssistant, res.Output))
		}
		return commandDoneMsg{result: res, err: err}
	}
}

func (m Model) handleCommandDone(msg commandDoneMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		return m, nil
	}
	switch msg.result.Action {
	case commands.ActionQuit:
		m.quitting = true
		return m, tea.Quit
	case commands.ActionShowHistory:
		if m.deps.History != nil {
			m.openHistory(m.deps.History.Items())
		}
	}
	return m, nil
}

// notice appends an assistant notice from a command goroutine.
func (m Model) notice(text string) tea.Cmd {
	composer := m.deps.Composer
	return func() tea.Msg {
		composer.Append(model.NewNotice(model.RoleAssistant, text))
		return nil
	}
}

// =============================================================================
// REGIONS
// =============================================================================

func (m Model) toggleSources() tea.Cmd {
	e := m.latest(func(e *transcript.Entry) bool {
		return e.Meta != nil && len(e.Meta.Citations) > 0
	})
	if e == nil {
		return m.notice("No sources to show yet.")
	}
	composer, id := m.deps.Composer, e.ID
	return func() tea.Msg {
		if _, err := composer.ToggleCitations(id); err != nil {
			log.Printf("CHAT | id=%s toggle_citations_failed=%v", id, err)
		}
		return nil
	}
}

// toggleTables flips every table of the latest answer to the opposite of
// its first table.
func (m Model) toggleTables() tea.Cmd {
	e := m.latest(func(e *transcript.Entry) bool { return len(e.Tables) > 0 })
	if e == nil {
		return m.notice("No tables to show yet.")
	}
	composer, id := m.deps.Composer, e.ID
	target := !e.Tables[0].Expanded
	var flip []int
	for i, t := range e.Tables {
		if t.Expanded != target {
			flip = append(flip, i)
		}
	}
	return func() tea.Msg {
		for _, i := range flip {
			if _, err := composer.ToggleTable(id, i); err != nil {
				log.Printf("CHAT | id=%s table=%d toggle_failed=%v", id, i, err)
			}
		}
		return nil
	}
}

// =============================================================================
// HISTORY PANEL
// =============================================================================

func (m Model) loadHistory() tea.Cmd {
	panel := m.deps.History
	if panel == nil {
		return m.notice("History is not available.")
	}
	ctx, composer := m.deps.Ctx, m.deps.Composer
	return func() tea.Msg {
		err := panel.Refresh(ctx)
		if err != nil {
			composer.Append(model.NewErrorMessage(fmt.Sprintf("Could not load history: %v", err)))
		}
		return historyLoadedMsg{items: panel.Items(), err: err}
	}
}

func (m *Model) openHistory(items []service.HistoryItem) {
	m.historyItems = items
	m.historySel = 0
	m.historyOpen = true
}

func (m Model) replay(item service.HistoryItem) tea.Cmd {
	composer := m.deps.Composer
	return func() tea.Msg {
		history.Replay(composer, item)
		return nil
	}
}

// =============================================================================
// BACKGROUND WORK
// =============================================================================

func (m Model) attachSink() tea.Cmd {
	composer, sink := m.deps.Composer, m.deps.Sink
	if sink == nil {
		return nil
	}
	return func() tea.Msg {
		composer.SetSink(sink)
		return nil
	}
}

func (m Model) refreshDocuments() tea.Cmd {
	cat, ctx := m.deps.Catalog, m.deps.Ctx
	return func() tea.Msg {
		if err := cat.Refresh(ctx); err != nil {
			log.Printf("CHAT | documents_unavailable=%v", err)
		}
		return nil
	}
}

func (m Model) checkHealth() tea.Cmd {
	checker, parent := m.deps.Health, m.deps.Ctx
	if checker == nil {
		return nil
	}
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(parent, healthTimeout)
		defer cancel()
		h, err := checker.Health(ctx)
		return healthMsg{health: h, err: err}
	}
}

func (m Model) healthTick() tea.Cmd {
	return tea.Tick(HealthInterval, func(time.Time) tea.Msg {
		return healthTickMsg{}
	})
}

func (m Model) handleState(msg stateMsg) (tea.Model, tea.Cmd) {
	m.state = msg.state
	if m.state != submit.Idle && !m.spinning {
		m.spinning = true
		return m, m.spinner.Tick
	}
	return m, nil
}

func (m Model) handleSpinner(msg spinner.TickMsg) (tea.Model, tea.Cmd) {
	if m.state == submit.Idle {
		m.spinning = false
		return m, nil
	}
	var cmd tea.Cmd
	m.spinner, cmd = m.spinner.Update(msg)
	if m.latest(func(e *transcript.Entry) bool { return e.Kind == model.KindPlaceholder }) != nil {
		m.refresh()
	}
	return m, cmd
}

func (m Model) handleConfigReloaded(msg ConfigReloadedMsg) (tea.Model, tea.Cmd) {
	if msg.Err != nil {
		return m, m.notice(fmt.Sprintf("Config reload failed, keeping current settings: %v", msg.Err))
	}
	cfg := msg.Config
	if m.deps.Machine != nil {
		m.deps.Machine.SetConfig(cfg.SubmitConfig())
	}
	if err := m.deps.Session.SetMode(cfg.Query.Mode); err != nil {
		log.Printf("CHAT | config_mode_rejected=%v", err)
	}
	return m, m.notice(fmt.Sprintf("Settings reloaded (mode %s, top_k %d).", cfg.Query.Mode, cfg.Query.TopK))
}
