// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/docchat-tui/internal/history"
	"github.com/jeranaias/docchat-tui/internal/submit"
	"github.com/jeranaias/docchat-tui/internal/ui/styles"
	"github.com/jeranaias/docchat-tui/internal/util"
)

// =============================================================================
// LAYOUT
// =============================================================================

// renderChat stacks header, body, completion line, input and status bar.
func (m Model) renderChat() string {
	parts := []string{m.renderHeader()}
	if m.historyOpen {
		parts = append(parts, m.renderHistory())
	} else {
		parts = append(parts, m.viewport.View())
	}
	if m.completion.Visible {
		parts = append(parts, m.renderCompletion())
	}
	parts = append(parts, m.renderInput(), m.renderStatusBar())
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

// =============================================================================
// HEADER
// =============================================================================

func (m Model) renderHeader() string {
	title := m.theme.HeaderTitle.Render(m.deps.Title)
	if m.deps.Subtitle != "" {
		room := m.width - lipgloss.Width(title) - 5
		if room > 3 {
			title += "  " + m.theme.HeaderSubtitle.Render(util.TruncateWidth(m.deps.Subtitle, room))
		}
	}
	return m.theme.Header.Width(max(m.width, 1)).Render(title)
}

// =============================================================================
// INPUT
// =============================================================================

func (m Model) renderInput() string {
	return m.theme.InputContainer.Width(max(m.width-2, 1)).Render(m.input.View())
}

// renderCompletion draws candidates on one line, as many as fit.
func (m Model) renderCompletion() string {
	var b strings.Builder
	used := 0
	for i, c := range m.completion.Completions {
		label := c.Display
		if label == "" {
			label = c.Value
		}
		w := util.StringWidth(label) + 2
		if used+w > m.width && i > 0 {
			b.WriteString(m.theme.ShortcutDesc.Render(fmt.Sprintf("+%d", len(m.completion.Completions)-i)))
			break
		}
		style := m.theme.PanelItem
		if i == m.completion.Selected {
			style = m.theme.PanelItemSelected
		}
		b.WriteString(style.Render(label))
		b.WriteString("  ")
		used += w
	}
	return b.String()
}

// =============================================================================
// STATUS BAR
// =============================================================================

func (m Model) renderStatusBar() string {
	indicators := styles.StatusIndicators
	var left []string

	switch {
	case m.healthErr != nil:
		left = append(left, m.theme.StatusDown.Render(indicators.Error+" service down"))
	case m.health != nil:
		left = append(left, m.theme.StatusOK.Render(indicators.Success+" "+m.health.Service))
	default:
		left = append(left, m.theme.StatusBusy.Render(indicators.Pending+" connecting"))
	}

	if m.state != submit.Idle {
		left = append(left, m.theme.StatusBusy.Render(m.state.String()))
	}
	if sess := m.deps.Session; sess != nil {
		left = append(left, "mode: "+sess.Mode())
		if m.deps.Catalog != nil {
			left = append(left, fmt.Sprintf("docs: %s (%d)", m.deps.Catalog.Label(sess.Document()), m.docCount))
		}
		if att := sess.Attachment(); att != nil {
			left = append(left, "+ "+util.TruncateWidth(att.DisplayName, 24))
		}
	}
	leftText := strings.Join(left, " · ")

	var keys []string
	for _, k := range m.keys.ShortHelp() {
		h := k.Help()
		keys = append(keys, m.theme.ShortcutKey.Render(h.Key)+" "+m.theme.ShortcutDesc.Render(h.Desc))
	}
	rightText := strings.Join(keys, "  ")

	inner := max(m.width-2, 1)
	gap := inner - lipgloss.Width(leftText) - lipgloss.Width(rightText)
	line := leftText
	if gap >= 2 {
		line = leftText + strings.Repeat(" ", gap) + rightText
	}
	return m.theme.StatusBar.Width(max(m.width, 1)).MaxHeight(1).Render(line)
}

// =============================================================================
// HISTORY PANEL
// =============================================================================

// renderHistory draws the history list in place of the transcript, scrolled
// so the selection stays visible.
func (m Model) renderHistory() string {
	height := max(m.viewport.Height, 3)
	rows := max(height-3, 1)
	width := max(m.width-6, 10)

	lines := []string{m.theme.PanelTitle.Render(fmt.Sprintf("History (%d)  Enter replays · Esc closes", len(m.historyItems)))}
	if len(m.historyItems) == 0 {
		lines = append(lines, m.theme.PanelItem.Render("No history yet."))
	}

	start := 0
	if m.historySel >= rows {
		start = m.historySel - rows + 1
	}
	for i := start; i < len(m.historyItems) && i < start+rows; i++ {
		text := util.PadRight(util.TruncateWidth(fmt.Sprintf("%2d. %s", i+1, history.Summary(m.historyItems[i])), width), width)
		style := m.theme.PanelItem
		if i == m.historySel {
			style = m.theme.PanelItemSelected
		}
		lines = append(lines, style.Render(text))
	}

	return m.theme.PanelBox.
		Width(max(m.width-2, 1)).
		Height(max(height-2, 1)).
		Render(strings.Join(lines, "\n"))
}
