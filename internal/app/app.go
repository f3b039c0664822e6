// Package app is the integration layer between a host (the TUI or the
// headless CLI) and the search and replace core. It owns the session and
// exposes the user-level operations. Every App method must run on the
// control goroutine.
package app

import (
	"context"
	"errors"
	"log/slog"
	"runtime"

	"github.com/Cyclone1070/greplace/internal/audit"
	"github.com/Cyclone1070/greplace/internal/config"
	"github.com/Cyclone1070/greplace/internal/history"
	"github.com/Cyclone1070/greplace/internal/replace"
	"github.com/Cyclone1070/greplace/internal/results"
	"github.com/Cyclone1070/greplace/internal/search"
	"github.com/Cyclone1070/greplace/internal/search/models"
	"github.com/Cyclone1070/greplace/internal/workflow"
)

// Deps are the collaborators of an App. All are required except
// HistoryPath, which disables history persistence when empty.
type Deps struct {
	Runner   processRunner
	Commands commandRunner
	Clock    clock
	Locator  toolLocator
	Files    fileLister
	FS       fileSystem
	Events   EventSink
	Prompter Prompter

	HistoryPath string
	// GOOS selects the substitution command; defaults to runtime.GOOS.
	GOOS string
}

// App wires the session, the search controller and the replace engine.
type App struct {
	cfg *config.Config
	dir string

	session *search.Session
	search  *search.Controller
	replace *replace.Engine
	results *results.Store
	history *history.Store

	fs          fileSystem
	events      EventSink
	prompter    Prompter
	clock       clock
	historyPath string

	refreshPending bool

	// opCtx is the context of the replace in progress, reused by the
	// follow-up search.
	opCtx    context.Context
	finished []func(models.Summary)
}

// New creates an App working in dir.
func New(cfg *config.Config, dir string, deps Deps) *App {
	if cfg == nil {
		panic("config is required")
	}
	if deps.FS == nil {
		panic("fs is required")
	}
	if deps.Events == nil {
		panic("events is required")
	}
	if deps.Prompter == nil {
		panic("prompter is required")
	}
	if deps.Clock == nil {
		panic("clock is required")
	}
	goos := deps.GOOS
	if goos == "" {
		goos = runtime.GOOS
	}

	a := &App{
		cfg:         cfg,
		dir:         dir,
		session:     search.NewSession(),
		results:     results.NewStore(),
		history:     history.NewStore(cfg.History.MaxEntries),
		fs:          deps.FS,
		events:      deps.Events,
		prompter:    deps.Prompter,
		clock:       deps.Clock,
		historyPath: deps.HistoryPath,
	}
	notify := &eventNotifier{sink: deps.Events}

	a.search = search.NewController(cfg.Search, dir, search.Deps{
		Runner:   deps.Runner,
		Clock:    deps.Clock,
		Results:  a.results,
		Notifier: notify,
		History:  a.history,
		Locator:  deps.Locator,
		Files:    deps.Files,
	})
	a.search.OnFinish(a.searchFinished)

	a.replace = replace.NewEngine(cfg.Replace, dir, goos, replace.Deps{
		FS:       deps.FS,
		Runner:   deps.Commands,
		Prompter: deps.Prompter,
		Notifier: notify,
		Preview:  previewSink{sink: deps.Events},
		Searcher: researcher{app: a},
	})

	a.results.OnChange(a.scheduleRefresh)
	return a
}

// OnSearchFinished registers fn to run after every completed or cancelled search.
func (a *App) OnSearchFinished(fn func(models.Summary)) {
	a.finished = append(a.finished, fn)
}

// Options returns the session's current options.
func (a *App) Options() models.Options {
	return a.session.Options
}

// Searching reports whether a search is in flight.
func (a *App) Searching() bool {
	return a.session.Searching()
}

// Results returns the result store.
func (a *App) Results() *results.Store {
	return a.results
}

// History returns the query history, most recent first.
func (a *App) History() []string {
	return a.history.Entries()
}

// ExecuteSearch runs opts. With an empty query the user is asked for one;
// an empty answer does nothing.
func (a *App) ExecuteSearch(ctx context.Context, opts models.Options) error {
	if opts.Query == "" {
		q, err := a.prompter.Input(ctx, "Search for: ", "")
		if err != nil || q == "" {
			return err
		}
		opts.Query = q
	}

	started, err := a.search.StartSearch(ctx, a.session, opts)
	a.events.Emit(workflow.OptionsEvent{Options: a.session.Options})
	if err != nil {
		audit.Event("search", "run").Dir(a.dir).Detail("query", opts.Query).Write(err)
		return err
	}
	if started {
		a.events.Emit(workflow.SearchStartedEvent{Query: opts.Query})
	}
	return nil
}

// CancelSearch stops the in-flight search and reports whether there was one.
func (a *App) CancelSearch() bool {
	return a.search.Cancel(a.session)
}

// ToggleSetting flips a boolean search option by name.
func (a *App) ToggleSetting(name string) (bool, error) {
	v, err := a.search.ToggleSetting(a.session, name)
	if err != nil {
		a.events.Emit(workflow.MessageEvent{Level: workflow.LevelWarn, Text: err.Error()})
		return false, err
	}
	a.events.Emit(workflow.OptionsEvent{Options: a.session.Options})
	return v, nil
}

// ExecuteReplace replaces across every file in the current results.
func (a *App) ExecuteReplace(ctx context.Context, opts models.Options) (*replace.Report, error) {
	if a.session.Searching() {
		err := &replace.ValidationError{Reason: "a search is still running"}
		a.events.Emit(workflow.MessageEvent{Level: workflow.LevelWarn, Text: err.Error()})
		return nil, err
	}

	a.opCtx = ctx
	report, err := a.replace.ExecuteReplace(ctx, opts, a.results.AllLocations())
	a.opCtx = nil

	var vErr *replace.ValidationError
	if errors.As(err, &vErr) {
		return report, err
	}
	a.auditReplace(opts, report, err)
	if report != nil {
		a.events.Emit(workflow.ReplaceFinishedEvent{Report: report})
	}
	return report, err
}

// PreviewReplace shows what replacing opts would do, without writing.
func (a *App) PreviewReplace(ctx context.Context, opts models.Options) (*replace.Preview, error) {
	files := models.DistinctPaths(a.results.AllLocations())
	if len(files) == 0 {
		err := &replace.ValidationError{Reason: "no results to replace"}
		a.events.Emit(workflow.MessageEvent{Level: workflow.LevelWarn, Text: err.Error()})
		return nil, err
	}
	p, err := a.replace.PreviewReplace(ctx, opts, files)
	if err != nil {
		a.events.Emit(workflow.MessageEvent{Level: workflow.LevelWarn, Text: err.Error()})
	}
	return p, err
}

// BrowseHistory lets the user pick a past query and searches for it with
// the current options.
func (a *App) BrowseHistory(ctx context.Context) error {
	entries := a.history.Entries()
	if len(entries) == 0 {
		a.events.Emit(workflow.MessageEvent{Level: workflow.LevelInfo, Text: "No search history"})
		return nil
	}
	i, err := a.prompter.Choose(ctx, "Search history", entries)
	if err != nil || i < 0 || i >= len(entries) {
		return err
	}
	opts := a.session.Options
	opts.Query = entries[i]
	return a.ExecuteSearch(ctx, opts)
}

// ShowPreview shows the match on visible result row index. Header rows
// show nothing and report false.
func (a *App) ShowPreview(index int) bool {
	loc, ok := a.results.LocationAt(index)
	if !ok {
		return false
	}
	a.events.Emit(workflow.LocationEvent{Location: loc})
	return true
}

// ClosePreview closes the location or replace preview.
func (a *App) ClosePreview() {
	a.events.Emit(workflow.ClosePreviewEvent{})
}

// ToggleGroup collapses or expands the result group at visible row index.
func (a *App) ToggleGroup(index int) bool {
	return a.results.ToggleGroupAt(index)
}

// ProcessSearchResults replaces the displayed results with matches.
func (a *App) ProcessSearchResults(matches []models.MatchRecord) {
	a.search.ProcessSearchResults(matches)
}

// LoadHistory restores persisted history. Missing files are not an error.
func (a *App) LoadHistory() error {
	if !a.persistHistory() {
		return nil
	}
	return a.history.Load(a.fs, a.historyPath)
}

// SaveHistory persists history.
func (a *App) SaveHistory() error {
	if !a.persistHistory() {
		return nil
	}
	return a.history.Save(a.fs, a.historyPath)
}

func (a *App) persistHistory() bool {
	return a.cfg.History.Persist && a.historyPath != ""
}

// Shutdown cancels any search and saves history.
func (a *App) Shutdown() {
	a.search.Cancel(a.session)
	if err := a.SaveHistory(); err != nil {
		slog.Warn("failed to save history", "error", err)
	}
}

func (a *App) searchFinished(s models.Summary) {
	action := "run"
	if s.Cancelled {
		action = "cancel"
	}
	audit.Event("search", action).
		Dir(a.dir).
		Detail("query", s.Query).
		Detail("tool", s.Tool).
		Detail("matches", s.Matches).
		Detail("files", s.Files).
		Detail("exit", s.ExitCode).
		Detail("incomplete", s.Incomplete).
		Write(nil)

	a.events.Emit(workflow.SearchFinishedEvent{Summary: s})
	for _, fn := range a.finished {
		fn(s)
	}
}

func (a *App) auditReplace(opts models.Options, r *replace.Report, err error) {
	action := "run"
	if r != nil {
		action = r.Decision.String()
	}
	b := audit.Event("replace", action).
		Dir(a.dir).
		Detail("query", opts.Query).
		Detail("replacement", opts.Replace).
		Detail("regex", opts.UseRegex)
	if r != nil {
		b.Detail("files", len(r.Plan.Files)).
			Detail("replaced", r.Replaced).
			Detail("unchanged", len(r.Unchanged)).
			Detail("failed", len(r.Failed)).
			Detail("backups", r.Backups)
	}
	b.Write(err)
}

// scheduleRefresh coalesces result changes into one ResultsEvent per loop
// turn. The clock posts back, so the control goroutine never blocks on its
// own queue.
func (a *App) scheduleRefresh() {
	if a.refreshPending {
		return
	}
	a.refreshPending = true
	a.clock.After(0, func() {
		a.refreshPending = false
		a.events.Emit(workflow.ResultsEvent{
			Rows:    a.results.Rows(),
			Matches: a.results.Len(),
			Files:   a.results.Groups(),
		})
	})
}
