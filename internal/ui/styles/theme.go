// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Theme names accepted by NewTheme.
const (
	ThemeAuto  = "auto"
	ThemeDark  = "dark"
	ThemeLight = "light"
)

// Theme holds the styled components for the chat surface.
type Theme struct {
	Name         string
	IsDark       bool
	ColorProfile termenv.Profile

	Width  int
	Height int

	// ==========================================================================
	// HEADER
	// ==========================================================================

	Header         lipgloss.Style
	HeaderTitle    lipgloss.Style
	HeaderSubtitle lipgloss.Style

	// ==========================================================================
	// ENTRIES
	// ==========================================================================

	UserLabel      lipgloss.Style
	AssistantLabel lipgloss.Style
	Timestamp      lipgloss.Style
	Body           lipgloss.Style
	Notice         lipgloss.Style
	Error          lipgloss.Style
	Placeholder    lipgloss.Style
	Degraded       lipgloss.Style

	// ==========================================================================
	// REGIONS
	// ==========================================================================

	RegionTitle lipgloss.Style
	RegionHint  lipgloss.Style
	TableBorder lipgloss.Style
	TableHeader lipgloss.Style
	TableCell   lipgloss.Style
	MetaLine    lipgloss.Style
	Citation    lipgloss.Style

	// ==========================================================================
	// INPUT, STATUS BAR, PANELS
	// ==========================================================================

	InputContainer    lipgloss.Style
	InputPrompt       lipgloss.Style
	StatusBar         lipgloss.Style
	StatusOK          lipgloss.Style
	StatusDown        lipgloss.Style
	StatusBusy        lipgloss.Style
	ShortcutKey       lipgloss.Style
	ShortcutDesc      lipgloss.Style
	PanelBox          lipgloss.Style
	PanelTitle        lipgloss.Style
	PanelItem         lipgloss.Style
	PanelItemSelected lipgloss.Style
}

// NewTheme builds a theme. "dark" and "light" force the background; any
// other name asks the terminal.
func NewTheme(name string) *Theme {
	name = strings.ToLower(strings.TrimSpace(name))
	var isDark bool
	switch name {
	case ThemeDark:
		isDark = true
	case ThemeLight:
		isDark = false
	default:
		name = ThemeAuto
		isDark = termenv.HasDarkBackground()
	}

	t := &Theme{
		Name:         name,
		IsDark:       isDark,
		ColorProfile: termenv.ColorProfile(),
	}
	if name != ThemeAuto {
		lipgloss.SetHasDarkBackground(isDark)
	}
	t.initStyles()
	return t
}

// GlamourStyle names the glamour standard style matching the background.
func (t *Theme) GlamourStyle() string {
	if t.IsDark {
		return ThemeDark
	}
	return ThemeLight
}

func (t *Theme) initStyles() {
	t.Header = lipgloss.NewStyle().
		Bold(true).
		Foreground(Cyan).
		Background(SurfaceDim).
		Padding(0, 1)
	t.HeaderTitle = lipgloss.NewStyle().Bold(true).Foreground(Purple)
	t.HeaderSubtitle = lipgloss.NewStyle().Foreground(TextSecondary).Italic(true)

	t.UserLabel = lipgloss.NewStyle().Bold(true).Foreground(Cyan)
	t.AssistantLabel = lipgloss.NewStyle().Bold(true).Foreground(Purple)
	t.Timestamp = lipgloss.NewStyle().Foreground(TextMuted)
	t.Body = lipgloss.NewStyle().Foreground(TextPrimary)
	t.Notice = lipgloss.NewStyle().Foreground(Amber).Italic(true)
	t.Error = lipgloss.NewStyle().Foreground(Rose).Bold(true)
	t.Placeholder = lipgloss.NewStyle().Foreground(TextSecondary).Italic(true)
	t.Degraded = lipgloss.NewStyle().Foreground(TextMuted).Italic(true)

	t.RegionTitle = lipgloss.NewStyle().Bold(true).Foreground(Cyan)
	t.RegionHint = lipgloss.NewStyle().Foreground(TextMuted)
	t.TableBorder = lipgloss.NewStyle().Foreground(OverlayDim)
	t.TableHeader = lipgloss.NewStyle().Bold(true).Foreground(Purple).Padding(0, 1)
	t.TableCell = lipgloss.NewStyle().Foreground(TextPrimary).Padding(0, 1)
	t.MetaLine = lipgloss.NewStyle().Foreground(TextSecondary)
	t.Citation = lipgloss.NewStyle().Foreground(TextSecondary).PaddingLeft(2)

	t.InputContainer = lipgloss.NewStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderTop(true).
		BorderForeground(Overlay).
		Padding(0, 1)
	t.InputPrompt = lipgloss.NewStyle().Foreground(Cyan).Bold(true)

	t.StatusBar = lipgloss.NewStyle().
		Background(SurfaceDim).
		Foreground(TextSecondary).
		Padding(0, 1)
	t.StatusOK = lipgloss.NewStyle().Foreground(Emerald).Bold(true)
	t.StatusDown = lipgloss.NewStyle().Foreground(Rose).Bold(true)
	t.StatusBusy = lipgloss.NewStyle().Foreground(Amber).Bold(true)
	t.ShortcutKey = lipgloss.NewStyle().Foreground(Cyan).Bold(true)
	t.ShortcutDesc = lipgloss.NewStyle().Foreground(TextMuted)

	t.PanelBox = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(Purple).
		Padding(0, 1)
	t.PanelTitle = lipgloss.NewStyle().Bold(true).Foreground(Purple)
	t.PanelItem = lipgloss.NewStyle().Foreground(TextPrimary)
	t.PanelItemSelected = lipgloss.NewStyle().
		Foreground(TextPrimary).
		Background(SelectionBg).
		Bold(true)
}

// SetSize updates the layout dimensions.
func (t *Theme) SetSize(width, height int) {
	t.Width = width
	t.Height = height
}

// ContentWidth is the usable width for entry bodies.
func (t *Theme) ContentWidth() int {
	w := t.Width - 4
	if t.GetLayoutMode() == LayoutWide {
		w = t.Width * 4 / 5
	}
	if w < 20 {
		w = 20
	}
	return w
}

// GetLayoutMode returns the current layout mode based on width.
func (t *Theme) GetLayoutMode() LayoutMode {
	if t.Width < 60 {
		return LayoutNarrow
	}
	if t.Width < 100 {
		return LayoutMedium
	}
	return LayoutWide
}

// LayoutMode represents the current responsive layout mode.
type LayoutMode int

const (
	LayoutNarrow LayoutMode = iota // < 60 columns
	LayoutMedium                   // 60-100 columns
	LayoutWide                     // > 100 columns
)
