package views

import (
	"fmt"
	"strings"

	"github.com/Cyclone1070/greplace/internal/ui/models"
	"github.com/charmbracelet/lipgloss"
)

// RenderPrompt renders the open question, or "" when there is none.
func RenderPrompt(p *models.Prompt) string {
	if p == nil {
		return ""
	}

	var lines []string
	lines = append(lines, lipgloss.NewStyle().Bold(true).Render(p.Question))
	lines = append(lines, "")

	switch p.Kind {
	case models.PromptConfirm:
		hint := "y: yes  n: no"
		if p.AllowPreview {
			hint += "  p: preview"
		}
		lines = append(lines, lipgloss.NewStyle().Faint(true).Render(hint))
	case models.PromptInput:
		lines = append(lines, p.Input.View())
		lines = append(lines, "")
		lines = append(lines, lipgloss.NewStyle().Faint(true).Render("Enter: OK  Esc: Cancel"))
	case models.PromptChoose:
		for i, item := range p.Items {
			if i == p.Index {
				lines = append(lines, lipgloss.NewStyle().
					Foreground(ColorPrimary).
					Bold(true).
					Render(fmt.Sprintf("▸ %s", item)))
			} else {
				lines = append(lines, fmt.Sprintf("  %s", item))
			}
		}
		lines = append(lines, "")
		lines = append(lines, lipgloss.NewStyle().Faint(true).Render("↑/↓: Navigate  Enter: Select  Esc: Cancel"))
	}

	return PopupBoxStyle.Render(strings.Join(lines, "\n"))
}
