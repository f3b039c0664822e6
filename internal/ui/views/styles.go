package views

import (
	"github.com/Cyclone1070/greplace/internal/config"
	"github.com/charmbracelet/lipgloss"
)

var (
	ColorPrimary = lipgloss.Color("63")
	ColorMatch   = lipgloss.Color("214")
	ColorWarn    = lipgloss.Color("196")
	ColorDim     = lipgloss.Color("241")

	LabelStyle        = lipgloss.NewStyle().Foreground(ColorDim).Width(9)
	FocusedLabelStyle = lipgloss.NewStyle().Foreground(ColorPrimary).Bold(true).Width(9)

	GroupStyle    = lipgloss.NewStyle().Foreground(ColorPrimary).Bold(true)
	LineNumStyle  = lipgloss.NewStyle().Foreground(ColorDim)
	MatchStyle    = lipgloss.NewStyle().Foreground(ColorMatch).Bold(true)
	SelectedStyle = lipgloss.NewStyle().Reverse(true)

	StatusInfoStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("86"))
	StatusWarnStyle = lipgloss.NewStyle().Foreground(ColorWarn).Bold(true)
	ToggleOnStyle   = lipgloss.NewStyle().Foreground(ColorPrimary).Bold(true)
	ToggleOffStyle  = lipgloss.NewStyle().Foreground(ColorDim)

	PopupBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorPrimary).
			Padding(1, 2)

	PreviewBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.NormalBorder(), false, false, false, true).
			BorderForeground(ColorDim).
			PaddingLeft(1)
)

// ApplyTheme sets the configured colours.
func ApplyTheme(cfg config.UIConfig) {
	if cfg.ColorPrimary != "" {
		ColorPrimary = lipgloss.Color(cfg.ColorPrimary)
		FocusedLabelStyle = FocusedLabelStyle.Foreground(ColorPrimary)
		GroupStyle = GroupStyle.Foreground(ColorPrimary)
		ToggleOnStyle = ToggleOnStyle.Foreground(ColorPrimary)
		PopupBoxStyle = PopupBoxStyle.BorderForeground(ColorPrimary)
	}
	if cfg.ColorMatch != "" {
		ColorMatch = lipgloss.Color(cfg.ColorMatch)
		MatchStyle = MatchStyle.Foreground(ColorMatch)
	}
}
