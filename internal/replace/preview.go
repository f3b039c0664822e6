package replace

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/Cyclone1070/greplace/internal/helper/content"
	"github.com/Cyclone1070/greplace/internal/search/models"
	"github.com/pmezard/go-difflib/difflib"
)

// PreviewLine is one changed line: "-Old" becomes "+New".
type PreviewLine struct {
	Line int
	Old  string
	New  string
}

// FilePreview is the would-be change to one file.
type FilePreview struct {
	Path  string
	Lines []PreviewLine
	// Diff is a unified diff of the whole file.
	Diff string
}

// Preview is the outcome of a dry run. Nothing on disk is modified.
type Preview struct {
	Query       string
	Replacement string
	Files       []FilePreview
	// Skipped lists binary or unreadable files.
	Skipped []string
}

// Changes returns the number of changed lines.
func (p *Preview) Changes() int {
	n := 0
	for _, f := range p.Files {
		n += len(f.Lines)
	}
	return n
}

// PreviewReplace computes, without writing, what a replace of opts would do
// to files. It replaces the first match on each line, using the same case,
// regex and whole-word semantics as the search.
func (e *Engine) PreviewReplace(ctx context.Context, opts models.Options, files []string) (*Preview, error) {
	re, err := opts.Compile()
	if err != nil {
		return nil, &ValidationError{Reason: "invalid search pattern: " + err.Error()}
	}

	preview := &Preview{Query: opts.Query, Replacement: opts.Replace}
	for _, path := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		data, err := e.fs.ReadFile(e.abs(path))
		if err != nil || content.IsBinary(data) {
			preview.Skipped = append(preview.Skipped, path)
			continue
		}

		oldLines := content.SplitLines(string(data))
		newLines := make([]string, len(oldLines))
		var changed []PreviewLine
		for i, line := range oldLines {
			newLines[i] = line
			loc := re.FindStringSubmatchIndex(line)
			if loc == nil {
				continue
			}
			replaced := line[:loc[0]] + opts.ExpandReplacement(re, line, loc) + line[loc[1]:]
			if replaced == line {
				continue
			}
			newLines[i] = replaced
			changed = append(changed, PreviewLine{Line: i + 1, Old: line, New: replaced})
		}
		if len(changed) == 0 {
			continue
		}
		preview.Files = append(preview.Files, FilePreview{
			Path:  path,
			Lines: changed,
			Diff:  unifiedDiff(path, oldLines, newLines),
		})
	}

	e.preview.ShowPreview(preview)
	return preview, nil
}

func unifiedDiff(path string, oldLines, newLines []string) string {
	name := filepath.ToSlash(path)
	ud := difflib.UnifiedDiff{
		A:        difflib.SplitLines(strings.Join(oldLines, "\n")),
		B:        difflib.SplitLines(strings.Join(newLines, "\n")),
		FromFile: "a/" + name,
		ToFile:   "b/" + name,
		Context:  1,
	}
	diff, _ := difflib.GetUnifiedDiffString(ud)
	return diff
}
