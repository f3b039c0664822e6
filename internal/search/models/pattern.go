package models

import (
	"regexp"
	"strings"
)

// Compile builds the matcher used wherever the search tool's semantics must
// be reproduced in-process: baseline column location and replace preview.
// Fixed strings are quoted unless UseRegex is set, case folds unless
// CaseSensitive, and WholeWord adds word boundaries.
func (o Options) Compile() (*regexp.Regexp, error) {
	expr := o.Query
	if !o.UseRegex {
		expr = regexp.QuoteMeta(expr)
	}
	if o.WholeWord {
		expr = `\b(?:` + expr + `)\b`
	}
	if !o.CaseSensitive {
		expr = "(?i)" + expr
	}
	return regexp.Compile(expr)
}

// ExpandReplacement returns the text that replaces the match at loc in line,
// where loc comes from re.FindStringSubmatchIndex.
// Literal mode inserts the replacement verbatim. Regex mode reads the
// replacement with sed conventions, the syntax handed to the substitution
// command: \N is group N, & is the whole match, \& and \\ are literals.
func (o Options) ExpandReplacement(re *regexp.Regexp, line string, loc []int) string {
	if !o.UseRegex {
		return o.Replace
	}
	return string(re.ExpandString(nil, SedToTemplate(o.Replace), line, loc))
}

// SedToTemplate converts a sed replacement into a regexp.Expand template.
func SedToTemplate(repl string) string {
	var b strings.Builder
	for i := 0; i < len(repl); i++ {
		c := repl[i]
		switch {
		case c == '\\' && i+1 < len(repl):
			i++
			next := repl[i]
			switch {
			case next >= '0' && next <= '9':
				b.WriteString("${")
				b.WriteByte(next)
				b.WriteByte('}')
			case next == 'n':
				b.WriteByte('\n')
			case next == '$':
				b.WriteString("$$")
			default:
				b.WriteByte(next)
			}
		case c == '&':
			b.WriteString("${0}")
		case c == '$':
			b.WriteString("$$")
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}
