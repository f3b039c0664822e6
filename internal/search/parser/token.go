package parser

import (
	"regexp"
	"strconv"
	"strings"
)

// Line grammar of the two output dialects:
//
//	separator := "--"
//	match     := path ":" line ":" column ":" text      (grouped dialect)
//	           | path ":" line ":" text                 (plain dialect)
//	context   := current-path "-" line "-" text
//	           | line ("-" | ":") text
//
// path is the shortest prefix that makes the rest of the line fit. A context
// line carrying a path is only recognised once that path is known.

type tokenKind int

const (
	tokUnknown tokenKind = iota
	tokSeparator
	tokMatch
	tokContext
	tokMalformed // right shape, unusable numbers
)

type token struct {
	kind   tokenKind
	path   string
	line   int
	column int
	text   string
}

var (
	groupedMatchRe = regexp.MustCompile(`^(.+?):([0-9]+):([0-9]+):(.*)$`)
	plainMatchRe   = regexp.MustCompile(`^(.+?):([0-9]+):(.*)$`)
	pathContextRe  = regexp.MustCompile(`^([0-9]+)-(.*)$`)
	contextRe      = regexp.MustCompile(`^([0-9]+)[-:](.*)$`)

	// A colon-free path followed by "-N-": the shape of a context line.
	contextPrefixRe = regexp.MustCompile(`^[^:]+-[0-9]+-`)
)

// tokenizeGrouped classifies one line of grouped, context-annotated output.
// currentPath is the file of the open group; a "path-N-" prefix on it wins
// over the match form so context text that looks like a match stays context.
func tokenizeGrouped(line, currentPath string) token {
	if line == "--" {
		return token{kind: tokSeparator}
	}
	if currentPath != "" && strings.HasPrefix(line, currentPath+"-") {
		if m := pathContextRe.FindStringSubmatch(line[len(currentPath)+1:]); m != nil {
			return contextToken(m[1], m[2])
		}
	}
	if m := groupedMatchRe.FindStringSubmatch(line); m != nil {
		lineNum, ok1 := positive(m[2])
		col, ok2 := positive(m[3])
		if !ok1 || !ok2 {
			return token{kind: tokMalformed}
		}
		return token{kind: tokMatch, path: m[1], line: lineNum, column: col, text: m[4]}
	}
	if m := contextRe.FindStringSubmatch(line); m != nil {
		return contextToken(m[1], m[2])
	}
	return token{kind: tokUnknown}
}

// hasContextPrefix reports whether line could be a path-prefixed context
// line even though it also fits the match form.
func hasContextPrefix(line string) bool {
	return contextPrefixRe.MatchString(line)
}

func contextToken(num, text string) token {
	lineNum, ok := positive(num)
	if !ok {
		return token{kind: tokMalformed}
	}
	return token{kind: tokContext, line: lineNum, text: text}
}

// tokenizePlain classifies one line of plain path:line:content output.
func tokenizePlain(line string) token {
	m := plainMatchRe.FindStringSubmatch(line)
	if m == nil {
		return token{kind: tokUnknown}
	}
	lineNum, ok := positive(m[2])
	if !ok {
		return token{kind: tokMalformed}
	}
	return token{kind: tokMatch, path: m[1], line: lineNum, text: m[3]}
}

// positive parses a 1-based number; overflow and zero are rejected.
func positive(s string) (int, bool) {
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return 0, false
	}
	return n, true
}
