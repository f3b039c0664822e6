package views

import (
	"fmt"
	"strings"

	"github.com/Cyclone1070/greplace/internal/results"
	"github.com/Cyclone1070/greplace/internal/ui/models"
)

// RenderResults renders the visible window of result rows around the cursor.
func RenderResults(s models.State, height int) string {
	if len(s.Rows) == 0 {
		if s.Searching {
			return LineNumStyle.Render("Searching...")
		}
		return LineNumStyle.Render("No results. Type a query and press Enter.")
	}
	if height < 1 {
		height = 1
	}

	start := 0
	if s.Cursor >= height {
		start = s.Cursor - height + 1
	}
	end := min(start+height, len(s.Rows))

	lines := make([]string, 0, end-start)
	for i := start; i < end; i++ {
		line := FormatRow(s.Rows[i])
		if i == s.Cursor && s.Focus == models.FocusResults {
			line = SelectedStyle.Render(line)
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

// FormatRow renders one result row.
func FormatRow(r results.Row) string {
	if r.Kind == results.RowGroup {
		arrow := "▾"
		if r.Collapsed {
			arrow = "▸"
		}
		return GroupStyle.Render(fmt.Sprintf("%s %s", arrow, r.Key)) + LineNumStyle.Render(fmt.Sprintf(" (%d)", r.Count))
	}
	m := r.Match
	return "  " + LineNumStyle.Render(fmt.Sprintf("%4d:%-3d", m.Line, m.Column)) + " " + highlightMatch(m.Text, m.Column)
}

// highlightMatch styles the text from the 1-based byte column to the end
// of the word it starts.
func highlightMatch(text string, column int) string {
	start := column - 1
	if start < 0 || start >= len(text) {
		return text
	}
	end := start + 1
	for end < len(text) && isWordByte(text[end]) == isWordByte(text[start]) && text[end] != ' ' {
		end++
	}
	return text[:start] + MatchStyle.Render(text[start:end]) + text[end:]
}

func isWordByte(c byte) bool {
	return c == '_' || (c >= '0' && c <= '9') || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || c >= 0x80
}
