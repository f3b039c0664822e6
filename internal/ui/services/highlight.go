package services

import (
	"fmt"
	"strings"

	"github.com/Cyclone1070/greplace/internal/replace"
	"github.com/sergi/go-diff/diffmatchpatch"
)

// Marker decorates the changed parts of a line pair.
type Marker struct {
	Delete func(string) string
	Insert func(string) string
}

// PlainMarker marks changes the way git --word-diff=plain does.
var PlainMarker = Marker{
	Delete: func(s string) string { return "[-" + s + "-]" },
	Insert: func(s string) string { return "{+" + s + "+}" },
}

// HighlightChange returns old and new with the differing segments marked.
func HighlightChange(oldLine, newLine string, m Marker) (string, string) {
	dmp := diffmatchpatch.New()
	diffs := dmp.DiffMain(oldLine, newLine, false)
	diffs = dmp.DiffCleanupSemantic(diffs)

	var o, n strings.Builder
	for _, d := range diffs {
		switch d.Type {
		case diffmatchpatch.DiffEqual:
			o.WriteString(d.Text)
			n.WriteString(d.Text)
		case diffmatchpatch.DiffDelete:
			o.WriteString(m.Delete(d.Text))
		case diffmatchpatch.DiffInsert:
			n.WriteString(m.Insert(d.Text))
		}
	}
	return o.String(), n.String()
}

// FormatChanges lists every changed line of a file as a -old/+new pair.
func FormatChanges(lines []replace.PreviewLine, m Marker) string {
	var sb strings.Builder
	for _, l := range lines {
		o, n := HighlightChange(l.Old, l.New, m)
		fmt.Fprintf(&sb, "%d:\n-%s\n+%s\n", l.Line, o, n)
	}
	return sb.String()
}
