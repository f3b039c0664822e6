package app

import (
	"context"
	"log/slog"

	"github.com/Cyclone1070/greplace/internal/replace"
	"github.com/Cyclone1070/greplace/internal/search/models"
	"github.com/Cyclone1070/greplace/internal/workflow"
)

// eventNotifier turns core notices into MessageEvents.
type eventNotifier struct {
	sink EventSink
}

func (n *eventNotifier) Info(text string) {
	n.sink.Emit(workflow.MessageEvent{Level: workflow.LevelInfo, Text: text})
}

func (n *eventNotifier) Warn(text string) {
	n.sink.Emit(workflow.MessageEvent{Level: workflow.LevelWarn, Text: text})
}

type previewSink struct {
	sink EventSink
}

func (p previewSink) ShowPreview(preview *replace.Preview) {
	p.sink.Emit(workflow.PreviewEvent{Preview: preview})
}

// researcher refreshes results after a replace by running the same search.
// It runs on the control goroutine already, inside ExecuteReplace.
type researcher struct {
	app *App
}

func (r researcher) Research(opts models.Options) {
	ctx := r.app.opCtx
	if ctx == nil {
		ctx = context.Background()
	}
	if err := r.app.ExecuteSearch(ctx, opts); err != nil {
		slog.Warn("failed to refresh results after replace", "error", err)
	}
}
