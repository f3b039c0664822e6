package workflow

import (
	"github.com/Cyclone1070/greplace/internal/replace"
	"github.com/Cyclone1070/greplace/internal/results"
	"github.com/Cyclone1070/greplace/internal/search/models"
)

// Event is the interface for all events sent from the application to its host.
// Hosts handle events via type switch.
type Event interface {
	isEvent()
}

// Level is the severity of a MessageEvent.
type Level int

const (
	LevelInfo Level = iota
	LevelWarn
)

// MessageEvent is a user-facing notice.
type MessageEvent struct {
	Level Level
	Text  string
}

func (MessageEvent) isEvent() {}

// OptionsEvent carries the session options after they changed.
type OptionsEvent struct {
	Options models.Options
}

func (OptionsEvent) isEvent() {}

// SearchStartedEvent is emitted when a search process was launched.
type SearchStartedEvent struct {
	Query string
}

func (SearchStartedEvent) isEvent() {}

// SearchFinishedEvent is emitted when a search completed or was cancelled.
type SearchFinishedEvent struct {
	Summary models.Summary
}

func (SearchFinishedEvent) isEvent() {}

// ResultsEvent carries the visible result rows after the list changed.
type ResultsEvent struct {
	Rows    []results.Row
	Matches int
	Files   int
}

func (ResultsEvent) isEvent() {}

// LocationEvent asks the host to show one match with its context.
type LocationEvent struct {
	Location models.MatchRecord
}

func (LocationEvent) isEvent() {}

// PreviewEvent asks the host to show a replace preview.
type PreviewEvent struct {
	Preview *replace.Preview
}

func (PreviewEvent) isEvent() {}

// ClosePreviewEvent asks the host to close whichever preview is open.
type ClosePreviewEvent struct{}

func (ClosePreviewEvent) isEvent() {}

// ReplaceFinishedEvent is emitted after a replace ran or was declined.
type ReplaceFinishedEvent struct {
	Report *replace.Report
}

func (ReplaceFinishedEvent) isEvent() {}
