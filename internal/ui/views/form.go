package views

import (
	"strings"

	"github.com/Cyclone1070/greplace/internal/ui/models"
)

var fieldLabels = [models.FieldCount]string{"Search", "Replace", "Include", "Exclude"}

// RenderForm renders the four inputs, one per line.
func RenderForm(s models.State) string {
	lines := make([]string, 0, models.FieldCount)
	for i := range models.FieldCount {
		label := LabelStyle.Render(fieldLabels[i])
		if s.Focus == models.Focus(i) {
			label = FocusedLabelStyle.Render(fieldLabels[i])
		}
		lines = append(lines, label+s.Inputs[i].View())
	}
	return strings.Join(lines, "\n")
}
