package models

import "strings"

// Options are the user-controlled parameters of one search.
type Options struct {
	Query         string `json:"query"`
	Replace       string `json:"replace"`
	Include       string `json:"include"` // comma-separated globs
	Exclude       string `json:"exclude"` // comma-separated globs
	CaseSensitive bool   `json:"case_sensitive"`
	UseRegex      bool   `json:"use_regex"`
	WholeWord     bool   `json:"whole_word"`
}

// IncludeGlobs returns the trimmed, non-empty include patterns.
func (o Options) IncludeGlobs() []string {
	return SplitGlobs(o.Include)
}

// ExcludeGlobs returns the trimmed, non-empty exclude patterns.
func (o Options) ExcludeGlobs() []string {
	return SplitGlobs(o.Exclude)
}

// SameSearch reports whether o and other would run the same search.
// The replacement text does not affect search results.
func (o Options) SameSearch(other Options) bool {
	o.Replace, other.Replace = "", ""
	return o == other
}

// SplitGlobs splits a comma-separated glob list, dropping blank entries.
func SplitGlobs(list string) []string {
	var globs []string
	for _, part := range strings.Split(list, ",") {
		if p := strings.TrimSpace(part); p != "" {
			globs = append(globs, p)
		}
	}
	return globs
}

// ContextLine is one line shown around a match.
type ContextLine struct {
	Line    int    `json:"line"`
	Content string `json:"content"`
	IsMatch bool   `json:"is_match"`
}

// MatchRecord is one match reported by the search tool.
type MatchRecord struct {
	Path    string        `json:"path"`
	Line    int           `json:"line"`   // 1-based
	Column  int           `json:"column"` // 1-based
	Text    string        `json:"text"`
	Context []ContextLine `json:"context,omitempty"`
}

// Summary describes a finished search.
type Summary struct {
	Query    string
	Tool     string
	Matches  int
	Files    int
	ExitCode int
	// Incomplete is set when the tool exited outside its matches/no-matches
	// convention, so the results may be partial.
	Incomplete bool
	Cancelled  bool
}

// CountFiles returns the number of distinct paths in records.
func CountFiles(records []MatchRecord) int {
	return len(DistinctPaths(records))
}

// DistinctPaths returns each path once, in first-seen order.
func DistinctPaths(records []MatchRecord) []string {
	seen := make(map[string]struct{}, len(records))
	var paths []string
	for _, r := range records {
		if _, ok := seen[r.Path]; ok {
			continue
		}
		seen[r.Path] = struct{}{}
		paths = append(paths, r.Path)
	}
	return paths
}
