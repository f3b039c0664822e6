package search

import (
	"github.com/Cyclone1070/greplace/internal/search/models"
	"github.com/Cyclone1070/greplace/internal/search/parser"
	"github.com/Cyclone1070/greplace/internal/service/executor"
	"github.com/Cyclone1070/greplace/internal/workflow/loop"
)

// Session is the mutable state of one search/replace interaction. It is
// owned by the integration layer and only touched on the control goroutine.
type Session struct {
	Options models.Options

	searching  bool
	generation uint64
	tool       string
	// running is the copy of Options the in-flight process was started
	// with. Options may be toggled while it runs.
	running models.Options

	proc       Process
	progress   loop.Timer
	drainTimer loop.Timer

	parser  *parser.Parser
	matches []models.MatchRecord
	stderr  *executor.Collector

	exited    bool
	drained   bool
	exit      executor.ExitStatus
	streamErr error
}

// NewSession creates an idle session.
func NewSession() *Session {
	return &Session{}
}

// Searching reports whether a search process is in flight.
func (s *Session) Searching() bool {
	return s.searching
}

// Generation identifies the current search. It advances on every start and
// cancel, so callbacks of an older process can be recognised and dropped.
func (s *Session) Generation() uint64 {
	return s.generation
}

// Matches returns the records accumulated by the current or last search.
func (s *Session) Matches() []models.MatchRecord {
	return s.matches
}

// current reports whether gen is the in-flight search.
func (s *Session) current(gen uint64) bool {
	return s.searching && s.generation == gen
}

func (s *Session) begin(tool string, p *parser.Parser, stderr *executor.Collector) uint64 {
	s.generation++
	s.searching = true
	s.running = s.Options
	s.tool = tool
	s.parser = p
	s.matches = nil
	s.stderr = stderr
	s.exited = false
	s.drained = false
	s.exit = executor.ExitStatus{}
	s.streamErr = nil
	return s.generation
}

// release stops and drops the timers and the process handle and clears the
// searching flag. Safe to call repeatedly.
func (s *Session) release() {
	if s.progress != nil {
		s.progress.Stop()
		s.progress = nil
	}
	if s.drainTimer != nil {
		s.drainTimer.Stop()
		s.drainTimer = nil
	}
	s.proc = nil
	s.searching = false
}
