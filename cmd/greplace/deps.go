package main

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/Cyclone1070/greplace/internal/app"
	"github.com/Cyclone1070/greplace/internal/config"
	"github.com/Cyclone1070/greplace/internal/search"
	"github.com/Cyclone1070/greplace/internal/search/models"
	"github.com/Cyclone1070/greplace/internal/service/executor"
	"github.com/Cyclone1070/greplace/internal/service/fs"
	"github.com/Cyclone1070/greplace/internal/service/git"
	"github.com/Cyclone1070/greplace/internal/ui"
	"github.com/Cyclone1070/greplace/internal/ui/services"
	"github.com/Cyclone1070/greplace/internal/workflow/loop"
	"github.com/charmbracelet/bubbles/spinner"
)

const historyFile = "history.json"

type toolLocator interface {
	LookPath(name string) (string, error)
}

// userInterface is the interactive host.
type userInterface interface {
	app.EventSink
	app.Prompter
	Start() error
	Ready() <-chan struct{}
	Commands() <-chan ui.UICommand
}

// Dependencies holds the components required to run the application.
type Dependencies struct {
	Config      *config.Config
	Dir         string
	Events      app.EventSink
	Prompter    app.Prompter
	Locator     toolLocator
	HistoryPath string
	// UI is nil for headless commands.
	UI userInterface
}

func defaultDependencies(cfg *config.Config, f *flags, out, errOut io.Writer) (Dependencies, error) {
	deps := Dependencies{
		Config:  cfg,
		Dir:     f.dir,
		Locator: search.PathLocator{},
	}
	if dir, err := config.Dir(); err == nil {
		deps.HistoryPath = filepath.Join(dir, historyFile)
	}

	if f.interactive {
		u := createRealUI(cfg)
		deps.UI = u
		deps.Events = u
		deps.Prompter = u
		return deps, nil
	}
	deps.Events = newPrinter(out, errOut)
	deps.Prompter = newTermPrompter(os.Stdin, errOut, f.yes, f.preview)
	return deps, nil
}

func createRealUI(cfg *config.Config) *ui.UI {
	channels := ui.NewUIChannels()
	renderer := services.NewGlamourRenderer("dark")
	spinnerFactory := func() spinner.Model {
		return spinner.New(spinner.WithSpinner(spinner.Dot))
	}
	return ui.NewUI(cfg.UI, channels, renderer, spinnerFactory)
}

// host runs an App on its own control goroutine.
type host struct {
	loop     *loop.Loop
	app      *app.App
	finished chan models.Summary
	cancel   context.CancelFunc
}

func startHost(deps Dependencies) *host {
	cfg := deps.Config
	l := loop.New(256)
	fsys := fs.NewOSFileSystem()

	files := search.NewGlobLister(deps.Dir, nil)
	if cfg.Search.RespectGitignore {
		m, err := git.NewIgnoreMatcher(deps.Dir, fsys)
		if err != nil {
			slog.Warn("failed to load gitignore", "dir", deps.Dir, "error", err)
		} else {
			files = search.NewGlobLister(deps.Dir, m)
		}
	}

	a := app.New(cfg, deps.Dir, app.Deps{
		Runner:      search.NewExecRunner(executor.NewRunner(l)),
		Commands:    executor.NewOSCommandExecutor(cfg.Search.MaxStderrBytes),
		Clock:       loop.NewClock(l),
		Locator:     deps.Locator,
		Files:       files,
		FS:          fsys,
		Events:      deps.Events,
		Prompter:    deps.Prompter,
		HistoryPath: deps.HistoryPath,
	})

	ctx, cancel := context.WithCancel(context.Background())
	r := &host{
		loop:     l,
		app:      a,
		finished: make(chan models.Summary, 4),
		cancel:   cancel,
	}
	go func() { _ = l.Run(ctx) }()

	r.call(func() {
		a.OnSearchFinished(func(s models.Summary) {
			select {
			case r.finished <- s:
			default:
			}
		})
		if err := a.LoadHistory(); err != nil {
			slog.Warn("failed to load history", "path", deps.HistoryPath, "error", err)
		}
	})
	return r
}

// call runs fn on the control goroutine and waits for it. It reports false
// when the loop has stopped.
func (r *host) call(fn func()) bool {
	done := make(chan struct{})
	r.loop.Post(func() {
		defer close(done)
		fn()
	})
	select {
	case <-done:
		return true
	case <-r.loop.Done():
		return false
	}
}

// search starts opts and waits until it finishes. It reports false when no
// process was started.
func (r *host) search(ctx context.Context, opts models.Options) (models.Summary, bool, error) {
	var err error
	searching := false
	r.call(func() {
		err = r.app.ExecuteSearch(ctx, opts)
		searching = r.app.Searching()
	})
	if err != nil || !searching {
		return models.Summary{}, false, err
	}
	return r.wait()
}

// wait blocks until the running search reports its summary.
func (r *host) wait() (models.Summary, bool, error) {
	select {
	case s := <-r.finished:
		return s, true, nil
	case <-r.loop.Done():
		return models.Summary{}, false, loop.ErrStopped
	}
}

// close shuts the app down and stops the loop.
func (r *host) close() {
	r.call(r.app.Shutdown)
	r.cancel()
	<-r.loop.Done()
}
