package search

import (
	iofs "io/fs"
	"os"
	"slices"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// ignoreMatcher reports whether a workspace-relative path is ignored.
type ignoreMatcher interface {
	ShouldIgnore(relativePath string) bool
}

// GlobLister expands the baseline include pattern into the file list handed
// to the baseline tool, without a shell. Patterns without a slash match at
// any depth, the way the enhanced tool reads --glob.
type GlobLister struct {
	fsys   iofs.FS
	ignore ignoreMatcher
}

// NewGlobLister lists files under root. ignore may be nil.
func NewGlobLister(root string, ignore ignoreMatcher) *GlobLister {
	if root == "" {
		panic("root is required")
	}
	return &GlobLister{fsys: os.DirFS(root), ignore: ignore}
}

// Expand returns the matching files, relative to root and sorted.
func (g *GlobLister) Expand(pattern string) ([]string, error) {
	if !doublestar.ValidatePattern(pattern) {
		return nil, &InvalidGlobError{Pattern: pattern, Cause: doublestar.ErrBadPattern}
	}
	expr := pattern
	if !strings.Contains(expr, "/") {
		expr = "**/" + expr
	}

	matches, err := doublestar.Glob(g.fsys, expr, doublestar.WithFilesOnly())
	if err != nil {
		return nil, &InvalidGlobError{Pattern: pattern, Cause: err}
	}

	files := matches[:0]
	for _, m := range matches {
		if inGitDir(m) {
			continue
		}
		if g.ignore != nil && g.ignore.ShouldIgnore(m) {
			continue
		}
		files = append(files, m)
	}
	slices.Sort(files)
	return files, nil
}

func inGitDir(path string) bool {
	return slices.Contains(strings.Split(path, "/"), ".git")
}
