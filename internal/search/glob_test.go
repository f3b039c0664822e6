package search

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type suffixIgnore string

func (s suffixIgnore) ShouldIgnore(p string) bool { return strings.HasSuffix(p, string(s)) }

func writeTree(t *testing.T, files ...string) string {
	t.Helper()
	root := t.TempDir()
	for _, f := range files {
		path := filepath.Join(root, filepath.FromSlash(f))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte("foo\n"), 0o644))
	}
	return root
}

func TestGlobLister_Expand(t *testing.T) {
	root := writeTree(t, "a.txt", "b.md", "sub/c.txt", "sub/deep/d.txt", ".git/HEAD", "x.log")

	t.Run("MatchAllIsRecursive", func(t *testing.T) {
		files, err := NewGlobLister(root, nil).Expand("*")
		require.NoError(t, err)
		assert.Equal(t, []string{"a.txt", "b.md", "sub/c.txt", "sub/deep/d.txt", "x.log"}, files)
	})

	t.Run("BasenamePatternAnyDepth", func(t *testing.T) {
		files, err := NewGlobLister(root, nil).Expand("*.txt")
		require.NoError(t, err)
		assert.Equal(t, []string{"a.txt", "sub/c.txt", "sub/deep/d.txt"}, files)
	})

	t.Run("PathPatternAnchored", func(t *testing.T) {
		files, err := NewGlobLister(root, nil).Expand("sub/*.txt")
		require.NoError(t, err)
		assert.Equal(t, []string{"sub/c.txt"}, files)
	})

	t.Run("IgnoredFilesDropped", func(t *testing.T) {
		files, err := NewGlobLister(root, suffixIgnore(".log")).Expand("*")
		require.NoError(t, err)
		assert.NotContains(t, files, "x.log")
	})

	t.Run("NoMatches", func(t *testing.T) {
		files, err := NewGlobLister(root, nil).Expand("*.rs")
		require.NoError(t, err)
		assert.Empty(t, files)
	})

	t.Run("BadPattern", func(t *testing.T) {
		_, err := NewGlobLister(root, nil).Expand("[a-")
		var globErr *InvalidGlobError
		require.True(t, errors.As(err, &globErr))
		assert.True(t, globErr.InvalidInput())
	})
}
