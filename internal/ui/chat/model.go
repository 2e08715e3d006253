// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"log"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/docchat-tui/internal/catalog"
	"github.com/jeranaias/docchat-tui/internal/commands"
	"github.com/jeranaias/docchat-tui/internal/export"
	"github.com/jeranaias/docchat-tui/internal/history"
	"github.com/jeranaias/docchat-tui/internal/service"
	"github.com/jeranaias/docchat-tui/internal/submit"
	"github.com/jeranaias/docchat-tui/internal/transcript"
	"github.com/jeranaias/docchat-tui/internal/ui/render"
	"github.com/jeranaias/docchat-tui/internal/ui/styles"
)

// =============================================================================
// CONSTANTS
// =============================================================================

const (
	// HealthInterval is how often the status bar re-probes the service.
	HealthInterval = 30 * time.Second

	// healthTimeout bounds a single probe.
	healthTimeout = 5 * time.Second

	// inputCharLimit caps a single question.
	inputCharLimit = 4000
)

// =============================================================================
// MODEL
// =============================================================================

// Deps are the collaborators the chat surface drives. Composer, Machine,
// Session and Registry are required; the rest may be nil.
type Deps struct {
	Ctx        context.Context
	Composer   *transcript.Composer
	Machine    *submit.Machine
	Session    *submit.Session
	Catalog    *catalog.Catalog
	History    *history.Panel
	Health     commands.HealthChecker
	Registry   *commands.Registry
	Sink       *ProgramSink
	Theme      *styles.Theme
	Render     render.Options
	ExportOpts *export.Options

	// Title and Subtitle are shown in the header.
	Title    string
	Subtitle string
}

// Model is the chat surface. It holds a display mirror of the transcript
// fed by ProgramSink messages.
type Model struct {
	deps      Deps
	keys      KeyMap
	theme     *styles.Theme
	renderer  *render.Renderer
	completer *commands.Completer

	viewport   viewport.Model
	input      textinput.Model
	spinner    spinner.Model
	completion *commands.CompletionState
	lines      []string

	// Mirror of the transcript, plus rendered text by entry id.
	entries  []*transcript.Entry
	rendered map[string]string

	state     submit.State
	spinning  bool
	health    *service.Health
	healthErr error
	docCount  int

	historyOpen  bool
	historyItems []service.HistoryItem
	historySel   int

	width    int
	height   int
	ready    bool
	quitting bool
}

// New creates the chat model and registers it with the machine and catalog
// through deps.Sink.
func New(deps Deps) Model {
	if deps.Ctx == nil {
		deps.Ctx = context.Background()
	}
	if deps.Theme == nil {
		deps.Theme = styles.NewTheme(styles.ThemeAuto)
	}
	if deps.Render.Width == 0 {
		deps.Render = render.DefaultOptions()
	}
	if deps.Title == "" {
		deps.Title = "docchat"
	}

	input := textinput.New()
	input.Placeholder = "Ask about your documents, or type /help"
	input.Prompt = deps.Theme.InputPrompt.Render("> ")
	input.CharLimit = inputCharLimit
	input.Focus()

	spin := spinner.New()
	spin.Spinner = spinner.Dot
	spin.Style = deps.Theme.Placeholder

	completer := commands.NewCompleter(deps.Registry)
	if deps.Catalog != nil {
		cat := deps.Catalog
		completer.DocumentsFn = func() []string { return commands.DocumentIDs(cat) }
	}

	if sink := deps.Sink; sink != nil {
		if deps.Machine != nil {
			deps.Machine.OnTransition(func(id string, s submit.State) {
				sink.Send(stateMsg{id: id, state: s})
			})
		}
		if deps.Catalog != nil {
			deps.Catalog.OnChange(func(docs []service.Document) {
				sink.Send(documentsMsg{docs: docs})
			})
		}
	}

	return Model{
		deps:       deps,
		keys:       DefaultKeyMap(),
		theme:      deps.Theme,
		renderer:   render.New(deps.Theme, deps.Render),
		completer:  completer,
		viewport:   viewport.New(deps.Render.Width, 20),
		input:      input,
		spinner:    spin,
		completion: commands.NewCompletionState(),
		rendered:   make(map[string]string),
	}
}

// Init installs the sink, which replays existing entries, and starts the
// document and health probes.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{textinput.Blink, m.attachSink()}
	if m.deps.Catalog != nil {
		cmds = append(cmds, m.refreshDocuments())
	}
	if m.deps.Health != nil {
		cmds = append(cmds, m.checkHealth())
	}
	return tea.Batch(cmds...)
}

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		return m.handleResize(msg)

	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.MouseMsg:
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd

	// Render sink
	case entryAppendedMsg:
		m.entries = append(m.entries, msg.entry)
		m.refresh()
		return m, nil

	case entryRemovedMsg:
		m.removeEntry(msg.id)
		m.refresh()
		return m, nil

	case regionVisibleMsg:
		m.setVisible(msg)
		m.refresh()
		return m, nil

	case settleMsg:
		m.refresh()
		fn := msg.fn
		return m, func() tea.Msg {
			fn()
			return nil
		}

	case anchorMsg:
		m.viewport.GotoBottom()
		return m, nil

	// Work results
	case stateMsg:
		return m.handleState(msg)

	case spinner.TickMsg:
		return m.handleSpinner(msg)

	case submitDoneMsg:
		if msg.err != nil {
			log.Printf("CHAT | submit_error=%v", msg.err)
		}
		return m, nil

	case commandDoneMsg:
		return m.handleCommandDone(msg)

	case healthMsg:
		m.health, m.healthErr = msg.health, msg.err
		return m, m.healthTick()

	case healthTickMsg:
		return m, m.checkHealth()

	case historyLoadedMsg:
		if msg.err == nil {
			m.openHistory(msg.items)
		}
		return m, nil

	case documentsMsg:
		m.docCount = len(msg.docs)
		return m, nil

	case ConfigReloadedMsg:
		return m.handleConfigReloaded(msg)
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// View renders the model.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if !m.ready {
		return "Starting docchat..."
	}
	return m.renderChat()
}

// =============================================================================
// MIRROR
// =============================================================================

func (m *Model) removeEntry(id string) {
	for i, e := range m.entries {
		if e.ID == id {
			m.entries = append(m.entries[:i:i], m.entries[i+1:]...)
			break
		}
	}
	delete(m.rendered, id)
}

func (m *Model) setVisible(msg regionVisibleMsg) {
	e := m.entry(msg.id)
	if e == nil {
		return
	}
	switch msg.region {
	case transcript.RegionTable:
		if msg.index >= 0 && msg.index < len(e.Tables) {
			e.Tables[msg.index].Expanded = msg.visible
		}
	case transcript.RegionCitations:
		if e.Meta != nil {
			e.Meta.CitationsVisible = msg.visible
		}
	}
	delete(m.rendered, msg.id)
}

func (m *Model) entry(id string) *transcript.Entry {
	for _, e := range m.entries {
		if e.ID == id {
			return e
		}
	}
	return nil
}

// latest returns the newest entry keep accepts.
func (m *Model) latest(keep func(*transcript.Entry) bool) *transcript.Entry {
	for i := len(m.entries) - 1; i >= 0; i-- {
		if keep(m.entries[i]) {
			return m.entries[i]
		}
	}
	return nil
}

// Entries returns the mirrored entries.
func (m Model) Entries() []*transcript.Entry {
	return m.entries
}

// State returns the last submission state reported by the machine.
func (m Model) State() submit.State {
	return m.state
}

// HistoryOpen reports whether the history panel is showing.
func (m Model) HistoryOpen() bool {
	return m.historyOpen
}
