package replace

import (
	"strings"

	"github.com/Cyclone1070/greplace/internal/search/models"
)

// SubstituteCommand returns the in-place global substitution command for
// path on goos. The replacement follows sed conventions on every platform:
// in regex mode \N is a group and & the whole match. Literal mode escapes
// both sides; regex mode only escapes the expression delimiter.
func SubstituteCommand(goos string, opts models.Options, path string) []string {
	switch goos {
	case "windows":
		return []string{"powershell", "-NoProfile", "-NonInteractive", "-Command", powershellScript(opts, path)}
	case "darwin":
		return []string{"perl", "-pi", "-e", perlExpr(opts), "--", path}
	default:
		return []string{"sed", "-i", "-E", "-e", sedExpr(opts), "--", path}
	}
}

// sedExpr builds a GNU sed ERE s command.
func sedExpr(opts models.Options) string {
	pat, rep := opts.Query, opts.Replace
	if opts.UseRegex {
		pat = escapeDelimiter(pat)
		rep = escapeDelimiter(rep)
	} else {
		pat = escapeERE(pat)
		rep = escapeSedReplacement(rep)
	}
	if opts.WholeWord {
		pat = `\b(` + pat + `)\b`
		if opts.UseRegex {
			rep = shiftGroups(rep)
		}
	}
	flags := "g"
	if !opts.CaseSensitive {
		flags += "I"
	}
	return "s/" + pat + "/" + rep + "/" + flags
}

// perlExpr builds a perl s operator with the same semantics as sedExpr.
func perlExpr(opts models.Options) string {
	pat := opts.Query
	if opts.UseRegex {
		pat = escapePerlPattern(pat)
	} else {
		pat = quotemeta(pat)
	}
	if opts.WholeWord {
		pat = `\b(?:` + pat + `)\b`
	}
	var rep string
	if opts.UseRegex {
		rep = sedToPerl(opts.Replace)
	} else {
		rep = quotemeta(opts.Replace)
	}
	flags := "g"
	if !opts.CaseSensitive {
		flags += "i"
	}
	return "s/" + pat + "/" + rep + "/" + flags
}

// powershellScript rewrites the file through .NET regex replace.
func powershellScript(opts models.Options, path string) string {
	pat := opts.Query
	if !opts.UseRegex {
		pat = escapeDotNet(pat)
	}
	if opts.WholeWord {
		pat = `\b(?:` + pat + `)\b`
	}
	var rep string
	if opts.UseRegex {
		// .NET substitutions use the same ${N} and $$ forms as Go templates.
		rep = models.SedToTemplate(opts.Replace)
	} else {
		rep = strings.ReplaceAll(opts.Replace, "$", "$$")
	}
	op := "-replace"
	if opts.CaseSensitive {
		op = "-creplace"
	}
	return "$p = " + psQuote(path) + "; " +
		"$c = [System.IO.File]::ReadAllText($p); " +
		"$c = $c " + op + " " + psQuote(pat) + ", " + psQuote(rep) + "; " +
		"[System.IO.File]::WriteAllText($p, $c)"
}

// escapeERE escapes POSIX extended regex metacharacters and the delimiter.
func escapeERE(s string) string {
	var b strings.Builder
	for _, r := range s {
		if strings.ContainsRune(`\.[]*+?(){}^$|/`, r) {
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}

// escapeSedReplacement makes a literal sed replacement.
func escapeSedReplacement(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch r {
		case '\\', '&', '/':
			b.WriteByte('\\')
			b.WriteRune(r)
		case '\n':
			b.WriteString(`\n`)
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// escapeDelimiter escapes unescaped slashes in a user-written expression.
func escapeDelimiter(s string) string {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c == '\\' && i+1 < len(s) {
			b.WriteByte(c)
			b.WriteByte(s[i+1])
			i++
			continue
		}
		if c == '/' {
			b.WriteByte('\\')
		}
		b.WriteByte(c)
	}
	return b.String()
}

// escapePerlPattern escapes the delimiter and anything perl would
// interpolate as a variable; a $ anchor is left alone.
func escapePerlPattern(s string) string {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c == '\\' && i+1 < len(s) {
			b.WriteByte(c)
			b.WriteByte(s[i+1])
			i++
			continue
		}
		switch {
		case c == '/' || c == '@':
			b.WriteByte('\\')
		case c == '$' && i+1 < len(s) && (isWord(s[i+1]) || s[i+1] == '{'):
			b.WriteByte('\\')
		}
		b.WriteByte(c)
	}
	return b.String()
}

// shiftGroups renumbers \N to \N+1 once the whole-word wrapper adds a group.
func shiftGroups(rep string) string {
	var b strings.Builder
	for i := 0; i < len(rep); i++ {
		c := rep[i]
		if c == '\\' && i+1 < len(rep) {
			next := rep[i+1]
			i++
			if next >= '0' && next <= '8' {
				b.WriteByte('\\')
				b.WriteByte(next + 1)
				continue
			}
			b.WriteByte(c)
			b.WriteByte(next)
			continue
		}
		b.WriteByte(c)
	}
	return b.String()
}

// referencesGroupNine reports whether rep uses \9, which has no shifted
// equivalent once the whole-word wrapper takes a group in sed ERE.
func referencesGroupNine(rep string) bool {
	for i := 0; i+1 < len(rep); i++ {
		if rep[i] != '\\' {
			continue
		}
		if rep[i+1] == '9' {
			return true
		}
		i++
	}
	return false
}

// quotemeta backslash-escapes every ASCII non-word character, as perl's
// quotemeta does, which also stops $ and @ interpolation.
func quotemeta(s string) string {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		writeQuoted(&b, s[i])
	}
	return b.String()
}

func writeQuoted(b *strings.Builder, c byte) {
	if c < 0x80 && !isWord(c) {
		b.WriteByte('\\')
	}
	b.WriteByte(c)
}

// sedToPerl converts a sed replacement to a perl one.
func sedToPerl(rep string) string {
	var b strings.Builder
	for i := 0; i < len(rep); i++ {
		c := rep[i]
		switch {
		case c == '\\' && i+1 < len(rep):
			i++
			next := rep[i]
			switch {
			case next >= '0' && next <= '9':
				b.WriteString("${")
				b.WriteByte(next)
				b.WriteByte('}')
			case next == 'n':
				b.WriteString(`\n`)
			default:
				writeQuoted(&b, next)
			}
		case c == '&':
			b.WriteString("$&")
		default:
			writeQuoted(&b, c)
		}
	}
	return b.String()
}

// escapeDotNet escapes .NET regex metacharacters.
func escapeDotNet(s string) string {
	var b strings.Builder
	for _, r := range s {
		if strings.ContainsRune(`\.[]*+?(){}^$|#`, r) {
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}

// psQuote single-quotes s for PowerShell.
func psQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

func isWord(c byte) bool {
	return c == '_' || (c >= '0' && c <= '9') || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}
