// Package search runs project-wide searches through an external tool and
// turns its streamed output into grouped match records.
package search

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Cyclone1070/greplace/internal/config"
	"github.com/Cyclone1070/greplace/internal/results"
	"github.com/Cyclone1070/greplace/internal/search/models"
	"github.com/Cyclone1070/greplace/internal/search/parser"
	"github.com/Cyclone1070/greplace/internal/service/executor"
	"github.com/Cyclone1070/greplace/internal/workflow/loop"
)

type processRunner interface {
	Start(ctx context.Context, spec executor.Spec, h executor.Handlers) (Process, error)
}

type clock interface {
	Every(interval time.Duration, fn func()) loop.Timer
	After(d time.Duration, fn func()) loop.Timer
}

type resultStore interface {
	Clear()
	AddGroup(key string) bool
	SetItems(key string, items []models.MatchRecord, opts results.SetOptions) error
}

type notifier interface {
	Info(text string)
	Warn(text string)
}

type historyStore interface {
	Add(query string)
}

type toolLocator interface {
	LookPath(name string) (string, error)
}

type fileLister interface {
	Expand(pattern string) ([]string, error)
}

// Deps are the collaborators of a Controller. All are required.
type Deps struct {
	Runner   processRunner
	Clock    clock
	Results  resultStore
	Notifier notifier
	History  historyStore
	Locator  toolLocator
	Files    fileLister
}

// Controller drives searches for a Session. Every method, and every
// callback it registers, must run on the control goroutine.
type Controller struct {
	cfg  config.SearchConfig
	dir  string
	deps Deps

	onFinish []func(models.Summary)
}

// NewController creates a controller searching in dir.
func NewController(cfg config.SearchConfig, dir string, deps Deps) *Controller {
	if deps.Runner == nil {
		panic("runner is required")
	}
	if deps.Clock == nil {
		panic("clock is required")
	}
	if deps.Results == nil {
		panic("results is required")
	}
	if deps.Notifier == nil {
		panic("notifier is required")
	}
	if deps.History == nil {
		panic("history is required")
	}
	if deps.Locator == nil {
		panic("locator is required")
	}
	if deps.Files == nil {
		panic("files is required")
	}
	return &Controller{cfg: cfg, dir: dir, deps: deps}
}

// OnFinish registers fn to run after every completed or cancelled search.
func (c *Controller) OnFinish(fn func(models.Summary)) {
	c.onFinish = append(c.onFinish, fn)
}

// invocation is a resolved tool call.
type invocation struct {
	tool    string
	args    []string
	dialect parser.Dialect
	noFiles bool
}

// StartSearch runs opts in s. It is a no-op when the same search is already
// running; a different search in flight is cancelled first. It reports
// whether a process was started.
func (c *Controller) StartSearch(ctx context.Context, s *Session, opts models.Options) (bool, error) {
	if opts.Query == "" {
		return false, &ValidationError{Reason: "search query is empty"}
	}
	if s.searching {
		if opts.SameSearch(s.running) {
			return false, nil
		}
		c.Cancel(s)
	}

	s.Options = opts
	c.deps.History.Add(opts.Query)

	inv, err := c.resolve(opts)
	if err != nil {
		c.deps.Notifier.Warn(err.Error())
		return false, err
	}
	if inv.noFiles {
		c.deps.Notifier.Info(fmt.Sprintf("No files match %q", BaselineInclude(opts)))
		c.ProcessSearchResults(nil)
		return false, nil
	}

	return c.launch(ctx, s, inv)
}

// resolve picks the tool for this search. Availability is checked every time.
func (c *Controller) resolve(opts models.Options) (*invocation, error) {
	if path, err := c.deps.Locator.LookPath(c.cfg.EnhancedTool); err == nil {
		return &invocation{tool: path, args: EnhancedArgs(opts, c.cfg), dialect: parser.DialectGrouped}, nil
	}

	path, err := c.deps.Locator.LookPath(c.cfg.BaselineTool)
	if err != nil {
		return nil, &ToolNotFoundError{Tools: []string{c.cfg.EnhancedTool, c.cfg.BaselineTool}}
	}
	include := BaselineInclude(opts)
	files, err := c.deps.Files.Expand(include)
	if err != nil {
		return nil, err
	}
	slog.Debug("baseline search", "tool", path, "include", include, "files", len(files))
	return &invocation{
		tool:    path,
		args:    BaselineArgs(opts, files),
		dialect: parser.DialectPlain,
		noFiles: len(files) == 0,
	}, nil
}

func (c *Controller) launch(ctx context.Context, s *Session, inv *invocation) (bool, error) {
	var locate func(string) int
	if inv.dialect == parser.DialectPlain {
		// The baseline tool reports no columns. The pattern may not compile
		// in-process (its regex dialect differs); columns then default to 1.
		if re, err := s.Options.Compile(); err == nil {
			locate = func(text string) int {
				if loc := re.FindStringIndex(text); loc != nil {
					return loc[0] + 1
				}
				return 0
			}
		}
	}

	p := parser.New(parser.Options{
		Dialect:      inv.dialect,
		ContextLines: c.cfg.ContextLines,
		Locate:       locate,
	}, func(group []models.MatchRecord) {
		s.matches = append(s.matches, group...)
	})
	gen := s.begin(inv.tool, p, executor.NewCollector(c.cfg.MaxStderrBytes, 0))

	handlers := executor.Handlers{
		OnStdout: func(chunk []byte) {
			if s.current(gen) {
				s.parser.Feed(chunk)
			}
		},
		OnStderr: func(chunk []byte) {
			if s.current(gen) {
				_, _ = s.stderr.Write(chunk)
			}
		},
		OnDrained: func(err error) {
			if !s.current(gen) {
				return
			}
			s.drained = true
			s.streamErr = err
			if s.exited {
				c.finish(s)
			}
		},
		OnExit: func(status executor.ExitStatus) {
			if !s.current(gen) {
				return
			}
			s.exited = true
			s.exit = status
			if s.drained {
				c.finish(s)
				return
			}
			s.drainTimer = c.deps.Clock.After(c.drainGrace(), func() {
				if !s.current(gen) {
					return
				}
				slog.Warn("search output still open after exit", "tool", s.tool, "grace", c.drainGrace())
				s.drained = true
				c.finish(s)
			})
		},
	}

	slog.Info("search started", "tool", inv.tool, "query", s.Options.Query, "generation", gen)
	proc, err := c.deps.Runner.Start(ctx, executor.Spec{
		Command: inv.tool,
		Args:    inv.args,
		Dir:     c.dir,
		Env:     searchEnv(),
	}, handlers)
	if err != nil {
		s.release()
		c.deps.Notifier.Warn(fmt.Sprintf("Search failed: %v", err))
		return false, err
	}
	s.proc = proc

	s.progress = c.deps.Clock.Every(c.progressInterval(), func() {
		if s.current(gen) {
			c.deps.Notifier.Info(fmt.Sprintf("Searching... %d matches", len(s.matches)))
		}
	})
	return true, nil
}

// finish completes the in-flight search once the process exited and its
// output drained. It is the only path that ingests results.
func (c *Controller) finish(s *Session) {
	s.release()
	s.parser.Finish()

	summary := models.Summary{
		Query:    s.Options.Query,
		Tool:     s.tool,
		Matches:  len(s.matches),
		Files:    models.CountFiles(s.matches),
		ExitCode: s.exit.Code,
	}
	// 0 and 1 mean matches and no matches; anything else may have cut the
	// output short.
	summary.Incomplete = s.exit.Signaled || (s.exit.Code != 0 && s.exit.Code != 1)

	if s.streamErr != nil {
		c.deps.Notifier.Warn(fmt.Sprintf("Error reading search output: %v", s.streamErr))
	}
	if n := s.parser.Skipped(); n > 0 {
		slog.Debug("skipped malformed output lines", "count", n)
	}

	c.ProcessSearchResults(s.matches)

	switch {
	case summary.Incomplete:
		msg := fmt.Sprintf("Search incomplete (exit %d): showing %d matches in %d files", summary.ExitCode, summary.Matches, summary.Files)
		if line := s.stderr.FirstLine(); line != "" {
			msg += ": " + line
		}
		c.deps.Notifier.Warn(msg)
	case summary.Matches == 0:
		c.deps.Notifier.Info(fmt.Sprintf("No matches found for %q", summary.Query))
	default:
		c.deps.Notifier.Info(fmt.Sprintf("Found %d matches in %d files", summary.Matches, summary.Files))
	}

	slog.Info("search finished", "query", summary.Query, "matches", summary.Matches, "files", summary.Files, "exit", summary.ExitCode, "incomplete", summary.Incomplete)
	c.emitFinish(summary)
}

// Cancel stops the in-flight search. Unflushed output is discarded and
// late callbacks of the killed process are ignored. It reports false, and
// changes nothing, when no search is running.
func (c *Controller) Cancel(s *Session) bool {
	if !s.searching {
		return false
	}
	proc := s.proc
	s.generation++
	s.release()
	s.parser.Reset()
	if proc != nil {
		if err := proc.Kill(); err != nil {
			slog.Warn("failed to kill search process", "error", err)
		}
	}

	c.deps.Notifier.Info("Search cancelled")
	slog.Info("search cancelled", "query", s.Options.Query)
	c.emitFinish(models.Summary{
		Query:     s.Options.Query,
		Tool:      s.tool,
		Matches:   len(s.matches),
		Files:     models.CountFiles(s.matches),
		Cancelled: true,
	})
	return true
}

// ToggleSetting flips a boolean option by name and returns its new value.
func (c *Controller) ToggleSetting(s *Session, name string) (bool, error) {
	setting, err := models.ParseSetting(name)
	if err != nil {
		return false, err
	}
	return s.Options.Toggle(setting)
}

// ProcessSearchResults replaces the result store's content with matches,
// one group per file in emission order.
func (c *Controller) ProcessSearchResults(matches []models.MatchRecord) {
	c.deps.Results.Clear()
	for start := 0; start < len(matches); {
		end := start + 1
		for end < len(matches) && matches[end].Path == matches[start].Path {
			end++
		}
		key := matches[start].Path
		c.deps.Results.AddGroup(key)
		if err := c.deps.Results.SetItems(key, matches[start:end], results.SetOptions{Append: true}); err != nil {
			slog.Error("failed to store results", "path", key, "error", err)
		}
		start = end
	}
}

func (c *Controller) emitFinish(summary models.Summary) {
	for _, fn := range c.onFinish {
		fn(summary)
	}
}

func (c *Controller) progressInterval() time.Duration {
	return time.Duration(c.cfg.ProgressIntervalMs) * time.Millisecond
}

func (c *Controller) drainGrace() time.Duration {
	return time.Duration(c.cfg.DrainGraceMs) * time.Millisecond
}
