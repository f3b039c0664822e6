package views

import (
	"fmt"

	"github.com/Cyclone1070/greplace/internal/ui/models"
	"github.com/Cyclone1070/greplace/internal/workflow"
	"github.com/charmbracelet/lipgloss"
)

// RenderStatus renders the status bar: activity and message on the left,
// settings and totals on the right.
func RenderStatus(s models.State) string {
	style := StatusInfoStyle
	if s.StatusLevel == workflow.LevelWarn {
		style = StatusWarnStyle
	}

	status := "Ready"
	if s.StatusMessage != "" {
		status = s.StatusMessage
	}
	left := style.Render(status)
	if s.Searching {
		left = s.Spinner.View() + " " + left
	}

	right := toggle("Aa", s.Options.CaseSensitive) + " " +
		toggle(".*", s.Options.UseRegex) + " " +
		toggle("ab", s.Options.WholeWord) + "  " +
		LineNumStyle.Render(fmt.Sprintf("%d matches in %d files", s.Matches, s.Files))

	gap := s.Width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 2 {
		gap = 2
	}
	return left + fmt.Sprintf("%*s", gap, "") + right
}

func toggle(label string, on bool) string {
	if on {
		return ToggleOnStyle.Render(label)
	}
	return ToggleOffStyle.Render(label)
}

// RenderHelp renders the key binding hints.
func RenderHelp() string {
	return LineNumStyle.Render("enter: search  ctrl+r: replace  ctrl+p: preview  alt+c/alt+r/alt+w: case/regex/word  ctrl+h: history  tab: focus  esc: close/cancel  ctrl+c: quit")
}
