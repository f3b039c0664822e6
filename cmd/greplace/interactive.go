package main

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/Cyclone1070/greplace/internal/app"
	"github.com/Cyclone1070/greplace/internal/search/models"
	"github.com/Cyclone1070/greplace/internal/ui"
)

// runInteractive runs the TUI until the user quits. The UI owns the main
// goroutine; the app runs on the host's control goroutine and a third
// goroutine forwards UI commands to it.
func runInteractive(ctx context.Context, deps Dependencies, initial models.Options) error {
	u := deps.UI
	rt := startHost(deps)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()

		select {
		case <-u.Ready():
		case <-ctx.Done():
			return
		}

		if initial.Query != "" {
			rt.loop.Post(func() { dispatch(ctx, rt.app, ui.UICommand{Type: ui.CommandSearch, Options: initial}) })
		}

		for {
			select {
			case <-ctx.Done():
				return
			case c := <-u.Commands():
				rt.loop.Post(func() { dispatch(ctx, rt.app, c) })
			}
		}
	}()

	err := u.Start()

	// Prompts in flight return once the UI has exited, so Shutdown can run.
	rt.close()
	cancel()
	wg.Wait()

	if err != nil {
		return fmt.Errorf("run UI: %w", err)
	}
	return nil
}

// dispatch runs one UI command. It must run on the control goroutine.
// Failures have already been reported to the UI by the app.
func dispatch(ctx context.Context, a *app.App, c ui.UICommand) {
	var err error
	switch c.Type {
	case ui.CommandSearch:
		err = a.ExecuteSearch(ctx, c.Options)
	case ui.CommandCancel:
		a.CancelSearch()
	case ui.CommandReplace:
		_, err = a.ExecuteReplace(ctx, c.Options)
	case ui.CommandPreviewReplace:
		_, err = a.PreviewReplace(ctx, c.Options)
	case ui.CommandToggleSetting:
		_, err = a.ToggleSetting(c.Setting)
	case ui.CommandHistory:
		err = a.BrowseHistory(ctx)
	case ui.CommandShowPreview:
		a.ShowPreview(c.Index)
	case ui.CommandClosePreview:
		a.ClosePreview()
	case ui.CommandToggleGroup:
		a.ToggleGroup(c.Index)
	default:
		slog.Warn("unknown command", "type", c.Type)
	}
	if err != nil {
		slog.Debug("command failed", "type", c.Type, "error", err)
	}
}
