// Package parser turns the streamed stdout of a search tool into match
// records. It is a pure state machine with no I/O: feed it chunks as they
// arrive, in any sizes, and call Finish at end of stream.
package parser

import (
	"bytes"

	"github.com/Cyclone1070/greplace/internal/helper/content"
	"github.com/Cyclone1070/greplace/internal/search/models"
)

// Dialect selects the output format being parsed.
type Dialect int

const (
	// DialectGrouped is the enhanced tool's output: match lines with
	// columns, context lines and "--" separators.
	DialectGrouped Dialect = iota
	// DialectPlain is the baseline tool's path:line:content output.
	DialectPlain
)

// State is the parser's position in the current group.
type State int

const (
	StateIdle State = iota
	StateInFile
)

func (s State) String() string {
	if s == StateInFile {
		return "InFile"
	}
	return "Idle"
}

// Options configures a Parser.
type Options struct {
	Dialect Dialect
	// ContextLines is the window attached to each match in both directions.
	ContextLines int
	// Locate returns the 1-based column of the match within text, or 0.
	// Only used by the plain dialect, which carries no columns.
	Locate func(text string) int
}

// Parser is the stateful incremental parser. Not safe for concurrent use.
type Parser struct {
	opts Options
	emit func([]models.MatchRecord)

	state          State
	currentPath    string
	pendingContext []models.ContextLine
	pendingMatches []models.MatchRecord
	// deferred holds lines that could not be classified yet, typically
	// leading context whose path prefix is only known at the next match.
	deferred []string

	fragment []byte
	skipped  int
}

// New creates a Parser that hands each flushed group to emit.
func New(opts Options, emit func([]models.MatchRecord)) *Parser {
	if emit == nil {
		panic("emit is required")
	}
	if opts.ContextLines < 0 {
		opts.ContextLines = 0
	}
	return &Parser{opts: opts, emit: emit}
}

// Feed consumes one chunk of output. Only newline-terminated lines are
// processed; a trailing partial line is kept for the next call.
func (p *Parser) Feed(chunk []byte) {
	data := chunk
	if len(p.fragment) > 0 {
		data = append(p.fragment, chunk...)
		p.fragment = nil
	}
	for {
		i := bytes.IndexByte(data, '\n')
		if i < 0 {
			break
		}
		p.handleLine(content.TrimEOL(string(data[:i+1])))
		data = data[i+1:]
	}
	if len(data) > 0 {
		p.fragment = append([]byte(nil), data...)
	}
}

// Finish processes an unterminated final line and flushes the open group.
func (p *Parser) Finish() {
	if len(p.fragment) > 0 {
		line := string(p.fragment)
		p.fragment = nil
		p.handleLine(content.TrimEOL(line))
	}
	p.flush()
}

// Reset discards the fragment and any unflushed group without emitting it.
func (p *Parser) Reset() {
	p.fragment = nil
	p.pendingContext = nil
	p.pendingMatches = nil
	p.deferred = nil
	p.currentPath = ""
	p.state = StateIdle
}

// State returns the current state.
func (p *Parser) State() State {
	return p.state
}

// Skipped returns how many lines were dropped for malformed numbers.
func (p *Parser) Skipped() int {
	return p.skipped
}

func (p *Parser) handleLine(line string) {
	if p.opts.Dialect == DialectPlain {
		p.handlePlain(line)
		return
	}

	tok := tokenizeGrouped(line, p.currentPath)
	switch tok.kind {
	case tokSeparator:
		p.flush()
	case tokMatch:
		if tok.path != p.currentPath && hasContextPrefix(line) {
			// Leading context of a group whose path is not known yet, or a
			// match in a file named like one. The next match decides.
			p.deferred = append(p.deferred, line)
			return
		}
		if p.state == StateInFile && tok.path != p.currentPath {
			held := p.deferred
			p.deferred = nil
			p.emitPending()
			p.deferred = held
		}
		p.resolveDeferred(tok.path)
		p.addMatch(tok)
	case tokContext:
		if p.state == StateIdle {
			p.deferred = append(p.deferred, line)
			return
		}
		p.pendingContext = append(p.pendingContext, models.ContextLine{Line: tok.line, Content: tok.text})
	case tokMalformed:
		if p.state == StateIdle {
			p.deferred = append(p.deferred, line)
			return
		}
		p.skipped++
	default:
		// May be leading context of the next file's group.
		p.deferred = append(p.deferred, line)
	}
}

// resolveDeferred classifies held lines now that the path of the next match
// is known. A held line carrying that path as a context prefix is context;
// one that still reads as a match is replayed as a match of its own file.
func (p *Parser) resolveDeferred(path string) {
	held := p.deferred
	p.deferred = nil
	for _, line := range held {
		tok := tokenizeGrouped(line, path)
		switch tok.kind {
		case tokContext:
			if p.state == StateInFile && p.currentPath != path {
				p.emitPending()
			}
			p.enter(path)
			p.pendingContext = append(p.pendingContext, models.ContextLine{Line: tok.line, Content: tok.text})
		case tokMatch:
			p.addMatch(tok)
		case tokMalformed:
			p.skipped++
		}
	}
}

// addMatch records a match line, closing the open group first when the
// match belongs to another file.
func (p *Parser) addMatch(tok token) {
	if p.state == StateInFile && tok.path != p.currentPath {
		p.emitPending()
	}
	p.enter(tok.path)
	p.pendingContext = append(p.pendingContext, models.ContextLine{Line: tok.line, Content: tok.text, IsMatch: true})
	p.pendingMatches = append(p.pendingMatches, models.MatchRecord{
		Path:   tok.path,
		Line:   tok.line,
		Column: tok.column,
		Text:   tok.text,
	})
}

func (p *Parser) handlePlain(line string) {
	tok := tokenizePlain(line)
	switch tok.kind {
	case tokMatch:
		if p.state == StateInFile && tok.path != p.currentPath {
			p.flush()
		}
		p.enter(tok.path)
		col := 1
		if p.opts.Locate != nil {
			if c := p.opts.Locate(tok.text); c > 0 {
				col = c
			}
		}
		p.pendingMatches = append(p.pendingMatches, models.MatchRecord{
			Path:   tok.path,
			Line:   tok.line,
			Column: col,
			Text:   tok.text,
		})
	case tokMalformed:
		p.skipped++
	}
}

func (p *Parser) enter(path string) {
	p.state = StateInFile
	p.currentPath = path
}

// flush closes the open group and returns to Idle. Held lines no match
// claimed are either matches, emitted as groups of their own, or dropped.
func (p *Parser) flush() {
	p.emitPending()
	held := p.deferred
	p.deferred = nil
	for _, line := range held {
		tok := tokenizeGrouped(line, "")
		switch tok.kind {
		case tokMatch:
			p.addMatch(tok)
		case tokMalformed:
			p.skipped++
		}
	}
	p.emitPending()
}

// emitPending attaches context to the pending matches, emits them and
// returns to Idle. Held lines are left alone.
func (p *Parser) emitPending() {
	if len(p.pendingMatches) > 0 {
		if p.opts.Dialect == DialectGrouped {
			for i := range p.pendingMatches {
				p.pendingMatches[i].Context = p.window(p.pendingMatches[i].Line)
			}
		}
		p.emit(p.pendingMatches)
	}
	p.pendingMatches = nil
	p.pendingContext = nil
	p.currentPath = ""
	p.state = StateIdle
}

// window returns the pending lines within ContextLines of line, in order.
func (p *Parser) window(line int) []models.ContextLine {
	var out []models.ContextLine
	for _, c := range p.pendingContext {
		if c.Line >= line-p.opts.ContextLines && c.Line <= line+p.opts.ContextLines {
			out = append(out, c)
		}
	}
	return out
}
