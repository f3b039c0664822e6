// Package models holds the UI state rendered by the views.
package models

import (
	"github.com/Cyclone1070/greplace/internal/results"
	searchmodels "github.com/Cyclone1070/greplace/internal/search/models"
	"github.com/Cyclone1070/greplace/internal/workflow"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
)

// Field indexes the form inputs.
type Field int

const (
	FieldQuery Field = iota
	FieldReplace
	FieldInclude
	FieldExclude
	fieldCount
)

// FieldCount is the number of form inputs.
const FieldCount = int(fieldCount)

// Focus is the focused input, or FocusResults for the result list.
type Focus int

// FocusResults focuses the result list; lower values focus a Field.
const FocusResults Focus = Focus(fieldCount)

// PromptKind is the kind of question a popup asks.
type PromptKind int

const (
	PromptConfirm PromptKind = iota
	PromptInput
	PromptChoose
)

// Prompt is an open question. The app blocks until it is answered.
type Prompt struct {
	Kind         PromptKind
	Question     string
	AllowPreview bool
	Items        []string
	Index        int
	Input        textinput.Model
}

// State is the complete UI state.
type State struct {
	Width  int
	Height int

	Inputs [FieldCount]textinput.Model
	Focus  Focus

	// Options mirrors the session's boolean settings.
	Options searchmodels.Options

	Rows    []results.Row
	Cursor  int
	Matches int
	Files   int

	Searching     bool
	Spinner       spinner.Model
	StatusLevel   workflow.Level
	StatusMessage string

	ShowPreview  bool
	PreviewTitle string
	Preview      viewport.Model

	Prompt *Prompt
}

// CurrentOptions combines the form inputs with the mirrored settings.
func (s State) CurrentOptions() searchmodels.Options {
	opts := s.Options
	opts.Query = s.Inputs[FieldQuery].Value()
	opts.Replace = s.Inputs[FieldReplace].Value()
	opts.Include = s.Inputs[FieldInclude].Value()
	opts.Exclude = s.Inputs[FieldExclude].Value()
	return opts
}
