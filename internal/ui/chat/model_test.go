// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"net/http"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/docchat-tui/internal/catalog"
	"github.com/jeranaias/docchat-tui/internal/commands"
	"github.com/jeranaias/docchat-tui/internal/config"
	"github.com/jeranaias/docchat-tui/internal/history"
	"github.com/jeranaias/docchat-tui/internal/markup"
	"github.com/jeranaias/docchat-tui/internal/model"
	"github.com/jeranaias/docchat-tui/internal/service"
	"github.com/jeranaias/docchat-tui/internal/service/servicetest"
	"github.com/jeranaias/docchat-tui/internal/submit"
	"github.com/jeranaias/docchat-tui/internal/transcript"
	"github.com/jeranaias/docchat-tui/internal/ui/render"
	"github.com/jeranaias/docchat-tui/internal/ui/styles"
)

// =============================================================================
// HARNESS
// =============================================================================

// harness runs the model without a program: sink messages collect in a
// loopback and are fed to Update by flush.
type harness struct {
	t        *testing.T
	m        Model
	lb       *loopback
	srv      *servicetest.Server
	composer *transcript.Composer
	machine  *submit.Machine
	session  *submit.Session
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	srv := servicetest.New(t)
	client := srv.Client()

	composer := transcript.NewComposer(markup.MustSanitizer(markup.DefaultAllowList), nil, nil)
	cat := catalog.New(client)
	machine := submit.NewMachine(composer, client, client, cat, submit.DefaultConfig())
	session := submit.NewSession(service.ModeAuto)

	lb := &loopback{}
	sink := NewProgramSink()
	sink.Attach(lb)

	m := New(Deps{
		Composer: composer,
		Machine:  machine,
		Session:  session,
		Catalog:  cat,
		History:  history.NewPanel(client, 10),
		Health:   client,
		Registry: commands.NewRegistry(),
		Sink:     sink,
		Theme:    styles.NewTheme(styles.ThemeDark),
		Render:   render.Options{Width: 80, WordWrap: true, Plain: true},
		Subtitle: srv.URL,
	})
	h := &harness{t: t, m: m, lb: lb, srv: srv, composer: composer, machine: machine, session: session}
	h.update(tea.WindowSizeMsg{Width: 100, Height: 30})
	composer.SetSink(sink)
	h.flush()
	return h
}

func (h *harness) update(msg tea.Msg) tea.Cmd {
	next, cmd := h.m.Update(msg)
	h.m = next.(Model)
	return cmd
}

// flush delivers queued sink messages, running settled functions so the
// anchor scroll arrives too.
func (h *harness) flush() {
	for {
		msgs := h.lb.drain()
		if len(msgs) == 0 {
			return
		}
		for _, msg := range msgs {
			cmd := h.update(msg)
			if _, ok := msg.(settleMsg); ok {
				require.NotNil(h.t, cmd)
				cmd()
			}
		}
	}
}

// exec runs a command the model returned and feeds its result back.
func (h *harness) exec(cmd tea.Cmd) tea.Cmd {
	h.t.Helper()
	require.NotNil(h.t, cmd)
	var next tea.Cmd
	if msg := cmd(); msg != nil {
		next = h.update(msg)
	}
	h.flush()
	return next
}

func (h *harness) typeText(s string) {
	h.update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)})
}

func (h *harness) press(k tea.KeyType) tea.Cmd {
	return h.update(tea.KeyMsg{Type: k})
}

func (h *harness) kinds() []model.Kind {
	var kinds []model.Kind
	for _, e := range h.m.Entries() {
		kinds = append(kinds, e.Kind)
	}
	return kinds
}

func (h *harness) last() *transcript.Entry {
	entries := h.m.Entries()
	require.NotEmpty(h.t, entries)
	return entries[len(entries)-1]
}

// =============================================================================
// TESTS
// =============================================================================

func TestSubmitRendersAnswer(t *testing.T) {
	h := newHarness(t)
	h.srv.OnAsk(func(req service.AskRequest) servicetest.Reply {
		return servicetest.Reply{Status: http.StatusOK, Body: service.AskResponse{
			Answer: "<p>The rate is <b>4%</b>.</p>",
			Intent: "lookup",
			Mode:   "text",
		}}
	})

	h.typeText("what is the rate?")
	h.exec(h.press(tea.KeyEnter))

	assert.Equal(t, "", h.m.input.Value())
	assert.Equal(t, []model.Kind{model.KindAnswer, model.KindAnswer}, h.kinds())
	assert.Equal(t, model.RoleAssistant, h.last().Role)
	assert.Equal(t, submit.Idle, h.m.State())
	assert.True(t, h.m.viewport.AtBottom())

	view := h.m.View()
	assert.Contains(t, view, "what is the rate?")
	assert.Contains(t, view, "The rate is")
	assert.Contains(t, view, "intent: lookup")
}

func TestSubmitFailureShowsError(t *testing.T) {
	h := newHarness(t)
	h.srv.OnAsk(func(service.AskRequest) servicetest.Reply {
		return servicetest.Reply{Status: http.StatusInternalServerError, Body: map[string]string{"detail": "index offline"}}
	})

	h.typeText("anything")
	h.exec(h.press(tea.KeyEnter))

	assert.Equal(t, []model.Kind{model.KindAnswer, model.KindError}, h.kinds())
	assert.Contains(t, h.m.View(), "index offline")
}

func TestSettleRunsAfterRender(t *testing.T) {
	h := newHarness(t)
	h.update(entryAppendedMsg{entry: &transcript.Entry{ID: "n1", Role: model.RoleAssistant, Kind: model.KindNotice, Text: "queued"}})

	ran := false
	cmd := h.update(settleMsg{fn: func() { ran = true }})
	require.NotNil(t, cmd)
	assert.False(t, ran)
	assert.Contains(t, h.m.View(), "queued")

	cmd()
	assert.True(t, ran)
}

func TestPlaceholderRemovedFromMirror(t *testing.T) {
	h := newHarness(t)
	ph := h.composer.Append(model.NewPlaceholder("Searching documents..."))
	h.flush()
	assert.Contains(t, h.m.View(), "Searching documents...")

	require.NoError(t, h.composer.Remove(ph.ID))
	h.flush()
	assert.Empty(t, h.m.Entries())
	assert.NotContains(t, h.m.View(), "Searching documents...")
}

func TestSubmitWhileBusyKeepsInput(t *testing.T) {
	h := newHarness(t)
	h.update(stateMsg{id: "s1", state: submit.QueryPending})

	h.typeText("next question")
	cmd := h.press(tea.KeyEnter)
	assert.Equal(t, "next question", h.m.input.Value())

	h.exec(cmd)
	assert.Equal(t, model.KindNotice, h.last().Kind)
	assert.Contains(t, h.m.View(), busyNotice)
}

func TestEmptySubmitIsIgnored(t *testing.T) {
	h := newHarness(t)
	assert.Nil(t, h.press(tea.KeyEnter))
	assert.Empty(t, h.m.Entries())
}

func TestSlashCommandRuns(t *testing.T) {
	h := newHarness(t)

	h.typeText("/mode table")
	h.exec(h.press(tea.KeyEnter))

	assert.Equal(t, "table", h.session.Mode())
	assert.Equal(t, []model.Kind{model.KindNotice, model.KindNotice}, h.kinds())
	assert.Contains(t, h.m.View(), "Mode: table")
}

func TestSlashCommandErrorShown(t *testing.T) {
	h := newHarness(t)

	h.typeText("/frobnicate")
	h.exec(h.press(tea.KeyEnter))

	assert.Equal(t, model.KindError, h.last().Kind)
	assert.Contains(t, h.m.View(), "/frobnicate")
}

func TestQuitCommand(t *testing.T) {
	h := newHarness(t)

	h.typeText("/quit")
	next := h.exec(h.press(tea.KeyEnter))
	require.NotNil(t, next)
	assert.Equal(t, tea.QuitMsg{}, next())
	assert.Equal(t, "", h.m.View())
}

func TestToggleSourcesKey(t *testing.T) {
	h := newHarness(t)
	h.srv.OnAsk(func(service.AskRequest) servicetest.Reply {
		return servicetest.Reply{Status: http.StatusOK, Body: service.AskResponse{
			Answer:  "See the schedule.",
			Intent:  "lookup",
			Sources: []model.Citation{{DocID: "rates_2024", Page: "3", SourceKind: "text"}},
		}}
	})
	h.typeText("rates?")
	h.exec(h.press(tea.KeyEnter))
	require.NotNil(t, h.last().Meta)
	assert.False(t, h.last().Meta.CitationsVisible)
	assert.NotContains(t, h.m.View(), "p. 3")

	h.exec(h.press(tea.KeyCtrlS))
	assert.True(t, h.last().Meta.CitationsVisible)
	assert.Contains(t, h.m.View(), "rates_2024")
	assert.Contains(t, h.m.View(), "p. 3")

	h.exec(h.press(tea.KeyCtrlS))
	assert.False(t, h.last().Meta.CitationsVisible)
}

func TestToggleWithoutAnswerExplains(t *testing.T) {
	h := newHarness(t)
	h.exec(h.press(tea.KeyCtrlS))
	assert.Contains(t, h.m.View(), "No sources to show yet.")

	h.exec(h.press(tea.KeyCtrlE))
	assert.Contains(t, h.m.View(), "No tables to show yet.")
}

func TestToggleTablesKey(t *testing.T) {
	h := newHarness(t)
	h.srv.OnAsk(func(service.AskRequest) servicetest.Reply {
		return servicetest.Reply{Status: http.StatusOK, Body: service.AskResponse{
			Answer: "<p>Two tables follow.</p>" +
				"<table><tr><th>Year</th><th>Rate</th></tr><tr><td>2024</td><td>4%</td></tr></table>" +
				"<table><tr><td>footnote</td></tr></table>",
		}}
	})
	h.typeText("rates by year")
	h.exec(h.press(tea.KeyEnter))

	tables := h.last().Tables
	require.Len(t, tables, 2)
	assert.True(t, tables[0].Expanded)
	assert.False(t, tables[1].Expanded)

	h.exec(h.press(tea.KeyCtrlE))
	tables = h.last().Tables
	assert.False(t, tables[0].Expanded)
	assert.False(t, tables[1].Expanded)

	h.exec(h.press(tea.KeyCtrlE))
	tables = h.last().Tables
	assert.True(t, tables[0].Expanded)
	assert.True(t, tables[1].Expanded)
	assert.Contains(t, h.m.View(), "footnote")
}

func TestHistoryPanelReplays(t *testing.T) {
	h := newHarness(t)
	h.srv.SetHistory(
		service.HistoryItem{Timestamp: "2024-05-01T10:00:00Z", Query: "older question", Answer: "older answer"},
		service.HistoryItem{Timestamp: "2024-05-02T10:00:00Z", Query: "newer question", Answer: "newer answer"},
	)

	h.exec(h.press(tea.KeyCtrlR))
	require.True(t, h.m.HistoryOpen())
	view := h.m.View()
	assert.Contains(t, view, "History (2)")
	assert.Contains(t, view, "newer question")

	h.press(tea.KeyDown)
	h.exec(h.press(tea.KeyEnter))
	assert.False(t, h.m.HistoryOpen())

	entries := h.m.Entries()
	require.Len(t, entries, 2)
	assert.Equal(t, model.RoleUser, entries[0].Role)
	assert.Contains(t, h.m.View(), "older question")
	assert.Contains(t, h.m.View(), "older answer")
}

func TestHistoryPanelEscapeCloses(t *testing.T) {
	h := newHarness(t)
	h.exec(h.press(tea.KeyCtrlR))
	require.True(t, h.m.HistoryOpen())
	assert.Contains(t, h.m.View(), "No history yet.")

	h.press(tea.KeyEsc)
	assert.False(t, h.m.HistoryOpen())
}

func TestTabCompletionCycles(t *testing.T) {
	h := newHarness(t)
	h.typeText("/d")

	h.press(tea.KeyTab)
	require.True(t, h.m.completion.Visible)
	require.Greater(t, len(h.m.lines), 1)
	assert.Equal(t, h.m.lines[0], h.m.input.Value())

	h.press(tea.KeyTab)
	assert.Equal(t, h.m.lines[1], h.m.input.Value())

	h.press(tea.KeyEsc)
	assert.False(t, h.m.completion.Visible)
	assert.Equal(t, "/d", h.m.input.Value())
}

func TestTabCompletionSingleCandidate(t *testing.T) {
	h := newHarness(t)
	h.typeText("/hel")
	h.press(tea.KeyTab)
	assert.Equal(t, "/help", h.m.input.Value())
	assert.False(t, h.m.completion.Visible)
}

func TestHealthShownInStatusBar(t *testing.T) {
	h := newHarness(t)
	assert.Contains(t, h.m.View(), "connecting")

	msg := h.m.checkHealth()()
	h.update(msg)
	assert.Contains(t, h.m.View(), "docchat-fake")
}

func TestConfigReloadApplies(t *testing.T) {
	h := newHarness(t)
	cfg := config.Default()
	cfg.Query.Mode = "table"
	cfg.Query.TopK = 9

	h.exec(h.update(ConfigReloadedMsg{Config: cfg}))
	assert.Equal(t, 9, h.machine.Config().TopK)
	assert.Equal(t, "table", h.session.Mode())
	assert.Contains(t, h.m.View(), "Settings reloaded")
}

func TestLayoutFitsWindow(t *testing.T) {
	h := newHarness(t)
	for i := 0; i < 20; i++ {
		h.composer.Append(model.NewNotice(model.RoleAssistant, "line"))
	}
	h.flush()

	assert.Greater(t, h.m.viewport.Height, 0)
	assert.LessOrEqual(t, lipgloss.Height(h.m.View()), 30)
	assert.True(t, h.m.viewport.AtBottom())
}
