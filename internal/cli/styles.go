// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// styles.go - lipgloss styles for line-mode output.
//
// Colors come from the shared palette in ui/styles and are dropped for
// non-TTY output, NO_COLOR and FORCE_COLOR included (see terminal.go).

package cli

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/docchat-tui/internal/ui/styles"
)

func init() {
	lipgloss.SetColorProfile(GetColorProfile())
}

var (
	TitleStyle     = lipgloss.NewStyle().Bold(true).Foreground(styles.Cyan)
	SectionStyle   = lipgloss.NewStyle().Bold(true).Foreground(styles.TextPrimary)
	LabelStyle     = lipgloss.NewStyle().Foreground(styles.TextSecondary).Width(14)
	ValueStyle     = lipgloss.NewStyle().Foreground(styles.TextPrimary)
	SuccessStyle   = lipgloss.NewStyle().Bold(true).Foreground(styles.Emerald)
	ErrorStyle     = lipgloss.NewStyle().Bold(true).Foreground(styles.Rose)
	WarningStyle   = lipgloss.NewStyle().Foreground(styles.Amber)
	DimStyle       = lipgloss.NewStyle().Foreground(styles.TextMuted)
	SeparatorStyle = lipgloss.NewStyle().Foreground(styles.TextMuted)
)

// RenderStatus maps a service health string to a bracketed indicator.
func RenderStatus(status string) string {
	ind := styles.StatusIndicators
	switch strings.ToLower(status) {
	case "ok", "healthy", "up":
		return SuccessStyle.Render(ind.Success)
	case "error", "fail", "down", "unreachable":
		return ErrorStyle.Render(ind.Error)
	case "degraded", "warning":
		return WarningStyle.Render(ind.Warning)
	case "":
		return DimStyle.Render(ind.Pending)
	}
	return DimStyle.Render("[" + strings.ToUpper(status) + "]")
}

// RenderField renders a "label value" line.
func RenderField(label, value string) string {
	return LabelStyle.Render(label) + ValueStyle.Render(value)
}
