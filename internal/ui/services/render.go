// Package services renders match locations and replace previews for display.
package services

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/Cyclone1070/greplace/internal/replace"
	"github.com/Cyclone1070/greplace/internal/search/models"
	"github.com/charmbracelet/glamour"
)

// MarkdownRenderer renders markdown for the terminal.
type MarkdownRenderer interface {
	Render(content string, width int) (string, error)
}

// GlamourRenderer renders markdown with glamour.
type GlamourRenderer struct {
	style string
}

// NewGlamourRenderer creates a renderer using the named glamour style.
func NewGlamourRenderer(style string) *GlamourRenderer {
	if style == "" {
		style = "dark"
	}
	return &GlamourRenderer{style: style}
}

// Render renders content wrapped at width.
func (g *GlamourRenderer) Render(content string, width int) (string, error) {
	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(g.style),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return "", err
	}
	return r.Render(content)
}

// RenderMarkdown renders with renderer, falling back to the raw markdown.
func RenderMarkdown(content string, width int, renderer MarkdownRenderer) string {
	if renderer == nil {
		return content
	}
	out, err := renderer.Render(content, width)
	if err != nil {
		return content
	}
	return out
}

// LocationMarkdown formats a match and its context as a fenced code block,
// the match line marked with ">".
func LocationMarkdown(loc models.MatchRecord) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "**%s:%d:%d**\n\n", loc.Path, loc.Line, loc.Column)
	sb.WriteString("```" + language(loc.Path) + "\n")

	lines := loc.Context
	if len(lines) == 0 {
		lines = []models.ContextLine{{Line: loc.Line, Content: loc.Text, IsMatch: true}}
	}
	width := len(fmt.Sprint(lines[len(lines)-1].Line))
	for _, c := range lines {
		marker := " "
		if c.Line == loc.Line {
			marker = ">"
		}
		fmt.Fprintf(&sb, "%s%*d  %s\n", marker, width, c.Line, c.Content)
	}
	sb.WriteString("```\n")
	return sb.String()
}

// PreviewMarkdown formats a replace preview as one diff block per file.
func PreviewMarkdown(p *replace.Preview) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "## Replace `%s` with `%s`\n\n", p.Query, p.Replacement)
	if len(p.Files) == 0 {
		sb.WriteString("No changes.\n")
	}
	for _, f := range p.Files {
		fmt.Fprintf(&sb, "### %s (%d lines)\n\n", f.Path, len(f.Lines))
		sb.WriteString("```diff\n")
		sb.WriteString(f.Diff)
		if !strings.HasSuffix(f.Diff, "\n") {
			sb.WriteString("\n")
		}
		sb.WriteString("```\n\n")
	}
	if len(p.Skipped) > 0 {
		fmt.Fprintf(&sb, "Skipped (binary or unreadable): %s\n", strings.Join(p.Skipped, ", "))
	}
	return sb.String()
}

// language guesses the code fence language from the file extension.
func language(path string) string {
	return strings.TrimPrefix(filepath.Ext(path), ".")
}
