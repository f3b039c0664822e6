package views

import (
	"github.com/Cyclone1070/greplace/internal/ui/models"
	"github.com/charmbracelet/lipgloss"
)

// formHeight is the form plus the blank line under it.
const formHeight = models.FieldCount + 1

// chromeHeight is everything except the result list: form, status, help.
const chromeHeight = formHeight + 2

// ResultsHeight is the number of result rows that fit the window.
func ResultsHeight(s models.State) int {
	return max(s.Height-chromeHeight, 1)
}

// RenderRoot renders the complete UI layout.
func RenderRoot(s models.State) string {
	if s.Prompt != nil {
		return lipgloss.Place(
			s.Width,
			s.Height,
			lipgloss.Center,
			lipgloss.Center,
			RenderPrompt(s.Prompt),
			lipgloss.WithWhitespaceChars(""),
			lipgloss.WithWhitespaceForeground(lipgloss.Color("0")),
		)
	}

	body := RenderResults(s, ResultsHeight(s))
	if s.ShowPreview {
		listWidth := s.Width / 2
		body = lipgloss.JoinHorizontal(lipgloss.Top,
			lipgloss.NewStyle().Width(listWidth).Render(body),
			PreviewBoxStyle.Render(GroupStyle.Render(s.PreviewTitle)+"\n"+s.Preview.View()),
		)
	}
	body = lipgloss.NewStyle().Height(ResultsHeight(s)).Render(body)

	return lipgloss.JoinVertical(lipgloss.Left,
		RenderForm(s)+"\n",
		body,
		RenderStatus(s),
		RenderHelp(),
	)
}
