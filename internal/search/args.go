package search

import (
	"strconv"
	"strings"

	"github.com/Cyclone1070/greplace/internal/config"
	"github.com/Cyclone1070/greplace/internal/search/models"
)

// matchAll is the baseline include used when no include pattern is given.
const matchAll = "*"

// EnhancedArgs builds the enhanced tool's arguments. The query always comes
// last, after "--" when it would otherwise read as a flag.
func EnhancedArgs(opts models.Options, cfg config.SearchConfig) []string {
	args := []string{
		"--line-number",
		"--column",
		"--no-heading",
		"--color", "never",
		"--max-count", strconv.Itoa(cfg.MaxCount),
	}
	if !opts.CaseSensitive {
		args = append(args, "--ignore-case")
	}
	if opts.WholeWord {
		args = append(args, "--word-regexp")
	}
	if !opts.UseRegex {
		args = append(args, "--fixed-strings")
	}
	for _, g := range opts.IncludeGlobs() {
		args = append(args, "--glob", g)
	}
	for _, g := range opts.ExcludeGlobs() {
		args = append(args, "--glob", "!"+g)
	}
	args = append(args, "--context", strconv.Itoa(cfg.ContextLines))
	return appendQuery(args, opts.Query)
}

// BaselineArgs builds the baseline tool's arguments for an already expanded
// file list.
func BaselineArgs(opts models.Options, files []string) []string {
	args := []string{"-n", "-H", "--color=never"}
	if !opts.CaseSensitive {
		args = append(args, "-i")
	}
	if opts.WholeWord {
		args = append(args, "-w")
	}
	if !opts.UseRegex {
		args = append(args, "-F")
	}
	args = appendQuery(args, opts.Query)
	return append(args, files...)
}

// BaselineInclude returns the single include filter the baseline tool gets:
// the first include pattern, or a match-all wildcard.
func BaselineInclude(opts models.Options) string {
	if globs := opts.IncludeGlobs(); len(globs) > 0 {
		return globs[0]
	}
	return matchAll
}

func appendQuery(args []string, query string) []string {
	if strings.HasPrefix(query, "-") {
		args = append(args, "--")
	}
	return append(args, query)
}
