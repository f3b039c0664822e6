package parser

import (
	"strings"
	"testing"

	"github.com/Cyclone1070/greplace/internal/search/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const groupedOutput = "a.txt-1-alpha\n" +
	"a.txt:2:3:xxfoo\n" +
	"a.txt-3-gamma\n" +
	"--\n" +
	"b.txt:1:1:foo bar\n" +
	"b.txt-2-next\n"

type collector struct {
	groups  [][]models.MatchRecord
	records []models.MatchRecord
}

func (c *collector) emit(group []models.MatchRecord) {
	c.groups = append(c.groups, group)
	c.records = append(c.records, group...)
}

func parseChunks(opts Options, chunks ...string) (*collector, *Parser) {
	c := &collector{}
	p := New(opts, c.emit)
	for _, chunk := range chunks {
		p.Feed([]byte(chunk))
	}
	p.Finish()
	return c, p
}

func TestGrouped_TwoFiles(t *testing.T) {
	c, p := parseChunks(Options{Dialect: DialectGrouped, ContextLines: 3}, groupedOutput)

	require.Len(t, c.groups, 2)
	require.Len(t, c.records, 2)
	assert.Equal(t, 0, p.Skipped())
	assert.Equal(t, StateIdle, p.State())

	a := c.records[0]
	assert.Equal(t, "a.txt", a.Path)
	assert.Equal(t, 2, a.Line)
	assert.Equal(t, 3, a.Column)
	assert.Equal(t, "xxfoo", a.Text)
	assert.Equal(t, []models.ContextLine{
		{Line: 1, Content: "alpha"},
		{Line: 2, Content: "xxfoo", IsMatch: true},
		{Line: 3, Content: "gamma"},
	}, a.Context)

	b := c.records[1]
	assert.Equal(t, "b.txt", b.Path)
	assert.Equal(t, 1, b.Line)
	assert.Equal(t, 1, b.Column)
	assert.Equal(t, "foo bar", b.Text)
	assert.Equal(t, []models.ContextLine{
		{Line: 1, Content: "foo bar", IsMatch: true},
		{Line: 2, Content: "next"},
	}, b.Context)
}

func TestGrouped_SplitAtEveryByte(t *testing.T) {
	opts := Options{Dialect: DialectGrouped, ContextLines: 3}
	want, _ := parseChunks(opts, groupedOutput)

	for i := 0; i <= len(groupedOutput); i++ {
		got, _ := parseChunks(opts, groupedOutput[:i], groupedOutput[i:])
		require.Equal(t, want.records, got.records, "split at byte %d", i)
	}

	for i := 0; i <= len(groupedOutput); i++ {
		for j := i; j <= len(groupedOutput); j++ {
			got, _ := parseChunks(opts, groupedOutput[:i], groupedOutput[i:j], groupedOutput[j:])
			require.Equal(t, want.records, got.records, "split at bytes %d and %d", i, j)
		}
	}

	bytewise := make([]string, 0, len(groupedOutput))
	for i := range len(groupedOutput) {
		bytewise = append(bytewise, groupedOutput[i:i+1])
	}
	got, _ := parseChunks(opts, bytewise...)
	assert.Equal(t, want.records, got.records)
}

func TestGrouped_ContextWindow(t *testing.T) {
	out := "a.go-1-one\n" +
		"a.go:2:1:two\n" +
		"a.go-3-three\n" +
		"a.go:4:1:four\n" +
		"a.go-5-five\n" +
		"a.go-6-six\n"

	c, _ := parseChunks(Options{Dialect: DialectGrouped, ContextLines: 1}, out)

	require.Len(t, c.groups, 1)
	require.Len(t, c.records, 2)
	assert.Equal(t, []int{1, 2, 3}, contextLines(c.records[0]))
	assert.Equal(t, []int{3, 4, 5}, contextLines(c.records[1]))
}

func TestGrouped_PathChangeWithoutSeparatorFlushes(t *testing.T) {
	out := "a.go:1:1:x\nb.go:7:2:x\n"

	c, _ := parseChunks(Options{Dialect: DialectGrouped}, out)

	require.Len(t, c.groups, 2)
	assert.Equal(t, "a.go", c.groups[0][0].Path)
	assert.Equal(t, "b.go", c.groups[1][0].Path)
}

func TestGrouped_ContextTextResemblingMatch(t *testing.T) {
	out := "a.go:1:1:foo\na.go-2-x:3:4:y\n"

	c, _ := parseChunks(Options{Dialect: DialectGrouped, ContextLines: 1}, out)

	require.Len(t, c.records, 1)
	assert.Equal(t, []models.ContextLine{
		{Line: 1, Content: "foo", IsMatch: true},
		{Line: 2, Content: "x:3:4:y"},
	}, c.records[0].Context)
}

const leadingContextLikeMatch = "build.log-4-main.go:12:5: undefined: x\n" +
	"build.log:5:1:foo failed\n" +
	"build.log-6-done\n"

func TestGrouped_LeadingContextResemblingMatch(t *testing.T) {
	c, _ := parseChunks(Options{Dialect: DialectGrouped, ContextLines: 1}, leadingContextLikeMatch)

	require.Len(t, c.groups, 1)
	require.Len(t, c.records, 1)
	assert.Equal(t, "build.log", c.records[0].Path)
	assert.Equal(t, 5, c.records[0].Line)
	assert.Equal(t, []models.ContextLine{
		{Line: 4, Content: "main.go:12:5: undefined: x"},
		{Line: 5, Content: "foo failed", IsMatch: true},
		{Line: 6, Content: "done"},
	}, c.records[0].Context)
}

func TestGrouped_LeadingContextResemblingMatch_SplitAtEveryByte(t *testing.T) {
	opts := Options{Dialect: DialectGrouped, ContextLines: 1}
	want, _ := parseChunks(opts, leadingContextLikeMatch)
	require.Len(t, want.records, 1)

	for i := 0; i <= len(leadingContextLikeMatch); i++ {
		got, _ := parseChunks(opts, leadingContextLikeMatch[:i], leadingContextLikeMatch[i:])
		require.Equal(t, want.groups, got.groups, "split at byte %d", i)
	}
}

func TestGrouped_DashedFileNameIsStillAMatch(t *testing.T) {
	tests := []struct {
		name  string
		out   string
		paths []string
	}{
		{"FollowedByOtherFile", "v-1-x.go:3:1:foo\nb.go:1:1:foo\n", []string{"v-1-x.go", "b.go"}},
		{"FollowedBySameFile", "v-1-x.go:3:1:foo\nv-1-x.go:4:1:foo\n", []string{"v-1-x.go"}},
		{"FollowedBySeparator", "v-1-x.go:3:1:foo\n--\nb.go:1:1:foo\n", []string{"v-1-x.go", "b.go"}},
		{"LastLine", "a.go:1:1:foo\nv-1-x.go:3:1:foo\n", []string{"a.go", "v-1-x.go"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := parseChunks(Options{Dialect: DialectGrouped}, tt.out)

			var paths []string
			for _, g := range c.groups {
				paths = append(paths, g[0].Path)
			}
			assert.Equal(t, tt.paths, paths)
		})
	}
}

func TestGrouped_HeldMatchBeforeOtherFilesContext(t *testing.T) {
	out := "v-1-x.go:3:1:foo\n" +
		"b.go-1-before\n" +
		"b.go:2:1:foo\n"

	c, _ := parseChunks(Options{Dialect: DialectGrouped, ContextLines: 1}, out)

	require.Len(t, c.groups, 2)
	assert.Equal(t, "v-1-x.go", c.groups[0][0].Path)
	assert.Equal(t, 3, c.groups[0][0].Line)
	assert.Equal(t, "b.go", c.groups[1][0].Path)
	assert.Equal(t, []int{1, 2}, contextLines(c.groups[1][0]))
}

func TestGrouped_MalformedNumbersSkipLineOnly(t *testing.T) {
	out := "a.go:0:1:zero line\n" +
		"a.go:99999999999999999999999:1:overflow\n" +
		"a.go:3:2:good\n" +
		"garbage without structure\n"

	c, p := parseChunks(Options{Dialect: DialectGrouped}, out)

	require.Len(t, c.records, 1)
	assert.Equal(t, 3, c.records[0].Line)
	assert.Equal(t, 2, p.Skipped())
}

func TestGrouped_CRLF(t *testing.T) {
	c, _ := parseChunks(Options{Dialect: DialectGrouped}, "a.go:1:2:foo\r\n")

	require.Len(t, c.records, 1)
	assert.Equal(t, "foo", c.records[0].Text)
}

func TestGrouped_UnterminatedLastLine(t *testing.T) {
	c, _ := parseChunks(Options{Dialect: DialectGrouped}, "a.go:1:2:foo\na.go:2:1:bar")

	require.Len(t, c.records, 2)
	assert.Equal(t, "bar", c.records[1].Text)
}

func TestReset_DiscardsPendingGroup(t *testing.T) {
	c := &collector{}
	p := New(Options{Dialect: DialectGrouped}, c.emit)

	p.Feed([]byte("a.go:1:1:foo\na.go:2:1:par"))
	assert.Equal(t, StateInFile, p.State())

	p.Reset()
	p.Finish()

	assert.Empty(t, c.records)
	assert.Equal(t, StateIdle, p.State())
}

func TestPlain_BaselineHasNoContext(t *testing.T) {
	out := "a.txt:3:say foo\n" +
		"a.txt:9:foo again\n" +
		"b.txt:1:foo\n"
	locate := func(text string) int { return strings.Index(text, "foo") + 1 }

	c, _ := parseChunks(Options{Dialect: DialectPlain, ContextLines: 3, Locate: locate}, out)

	require.Len(t, c.groups, 2)
	require.Len(t, c.records, 3)
	assert.Len(t, c.groups[0], 2)
	assert.Len(t, c.groups[1], 1)
	for _, r := range c.records {
		assert.Empty(t, r.Context)
	}
	assert.Equal(t, 5, c.records[0].Column)
	assert.Equal(t, 1, c.records[1].Column)
	assert.Equal(t, "b.txt", c.records[2].Path)
}

func TestPlain_ColumnDefaultsToOne(t *testing.T) {
	c, p := parseChunks(Options{Dialect: DialectPlain}, "x.md:4:hello\nx.md:0:bad\n")

	require.Len(t, c.records, 1)
	assert.Equal(t, 1, c.records[0].Column)
	assert.Equal(t, 1, p.Skipped())
}

func TestPlain_SplitAtEveryByte(t *testing.T) {
	out := "a.txt:3:say foo\nb.txt:1:foo\n"
	opts := Options{Dialect: DialectPlain}
	want, _ := parseChunks(opts, out)

	for i := 0; i <= len(out); i++ {
		got, _ := parseChunks(opts, out[:i], out[i:])
		require.Equal(t, want.records, got.records, "split at byte %d", i)
	}
}

func TestTokenizeGrouped(t *testing.T) {
	tests := []struct {
		name        string
		line        string
		currentPath string
		kind        tokenKind
		path        string
		lineNum     int
	}{
		{"Separator", "--", "", tokSeparator, "", 0},
		{"Match", "dir/a.go:10:4:text", "", tokMatch, "dir/a.go", 10},
		{"MatchWithColonsInText", "a.go:1:1:x:2:3:y", "", tokMatch, "a.go", 1},
		{"PathContext", "dir/a-b.go-12-body", "dir/a-b.go", tokContext, "", 12},
		{"BareContext", "12-body", "", tokContext, "", 12},
		{"BareContextColon", "12:body", "", tokContext, "", 12},
		{"PathContextUnknownPath", "dir/a.go-12-body", "", tokUnknown, "", 0},
		{"PathContextFitsMatchForm", "build.log-4-main.go:12:5:x", "build.log", tokContext, "", 4},
		{"Empty", "", "", tokUnknown, "", 0},
		{"ZeroColumn", "a.go:1:0:x", "", tokMalformed, "", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tok := tokenizeGrouped(tt.line, tt.currentPath)
			assert.Equal(t, tt.kind, tok.kind)
			assert.Equal(t, tt.path, tok.path)
			assert.Equal(t, tt.lineNum, tok.line)
		})
	}
}

func TestHasContextPrefix(t *testing.T) {
	assert.True(t, hasContextPrefix("build.log-4-main.go:12:5:x"))
	assert.True(t, hasContextPrefix("v-1-x.go:3:1:foo"))
	assert.False(t, hasContextPrefix("a.go:3:1:x-1-y"))
	assert.False(t, hasContextPrefix("a.go:3:1:foo"))
}

func contextLines(r models.MatchRecord) []int {
	var out []int
	for _, c := range r.Context {
		out = append(out, c.Line)
	}
	return out
}
