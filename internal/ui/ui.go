// Package ui is the Bubble Tea host. It renders application events and
// answers the application's prompts, and turns key presses into commands.
package ui

import (
	"context"
	"sync"
	"time"

	"github.com/Cyclone1070/greplace/internal/config"
	"github.com/Cyclone1070/greplace/internal/replace"
	"github.com/Cyclone1070/greplace/internal/ui/services"
	"github.com/Cyclone1070/greplace/internal/ui/views"
	"github.com/Cyclone1070/greplace/internal/workflow"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
)

// UI implements the application's event sink and prompter using Bubble Tea.
type UI struct {
	program *tea.Program

	// App -> UI
	eventChan   chan workflow.Event
	confirmReq  chan confirmRequest
	confirmResp chan replace.Decision
	inputReq    chan inputRequest
	inputResp   chan string
	chooseReq   chan chooseRequest
	chooseResp  chan int

	// UI -> App
	commandChan chan UICommand

	readyChan chan struct{}
	done      chan struct{}
	closeOnce sync.Once
}

// Internal request types
type confirmRequest struct {
	Question     string
	AllowPreview bool
}

type inputRequest struct {
	Prompt  string
	Initial string
}

type chooseRequest struct {
	Title string
	Items []string
}

// UIChannels holds the channels between the UI and the application.
type UIChannels struct {
	EventChan   chan workflow.Event
	ConfirmReq  chan confirmRequest
	ConfirmResp chan replace.Decision
	InputReq    chan inputRequest
	InputResp   chan string
	ChooseReq   chan chooseRequest
	ChooseResp  chan int
	CommandChan chan UICommand
	ReadyChan   chan struct{} // closed when the UI accepts requests
}

// NewUIChannels creates the channels with default buffers.
func NewUIChannels() *UIChannels {
	return &UIChannels{
		EventChan:   make(chan workflow.Event, 256),
		ConfirmReq:  make(chan confirmRequest),
		ConfirmResp: make(chan replace.Decision, 1),
		InputReq:    make(chan inputRequest),
		InputResp:   make(chan string, 1),
		ChooseReq:   make(chan chooseRequest),
		ChooseResp:  make(chan int, 1),
		CommandChan: make(chan UICommand, 16),
		ReadyChan:   make(chan struct{}),
	}
}

// SpinnerFactory creates a new spinner.
type SpinnerFactory func() spinner.Model

// NewUI creates a Bubble Tea UI.
func NewUI(
	cfg config.UIConfig,
	channels *UIChannels,
	renderer services.MarkdownRenderer,
	spinnerFactory SpinnerFactory,
) *UI {
	views.ApplyTheme(cfg)
	ui := &UI{
		eventChan:   channels.EventChan,
		confirmReq:  channels.ConfirmReq,
		confirmResp: channels.ConfirmResp,
		inputReq:    channels.InputReq,
		inputResp:   channels.InputResp,
		chooseReq:   channels.ChooseReq,
		chooseResp:  channels.ChooseResp,
		commandChan: channels.CommandChan,
		readyChan:   channels.ReadyChan,
		done:        make(chan struct{}),
	}

	model := newBubbleTeaModel(channels, renderer, spinnerFactory, modelOptions{
		tick:         time.Duration(cfg.TickIntervalMs) * time.Millisecond,
		previewWidth: cfg.PreviewWidth,
	})
	ui.program = tea.NewProgram(model, tea.WithAltScreen())
	return ui
}

// Start runs the UI program until the user quits.
func (u *UI) Start() error {
	defer u.close()
	_, err := u.program.Run()
	return err
}

func (u *UI) close() {
	u.closeOnce.Do(func() { close(u.done) })
}

// Emit delivers an application event. It blocks while the event buffer is
// full and returns immediately once the UI has exited.
func (u *UI) Emit(e workflow.Event) {
	select {
	case u.eventChan <- e:
	case <-u.done:
	}
}

// Confirm asks a yes/no question, optionally offering a preview.
func (u *UI) Confirm(ctx context.Context, question string, allowPreview bool) (replace.Decision, error) {
	select {
	case <-ctx.Done():
		return replace.DecisionCancel, ctx.Err()
	case <-u.done:
		return replace.DecisionCancel, context.Canceled
	case u.confirmReq <- confirmRequest{Question: question, AllowPreview: allowPreview}:
		select {
		case <-ctx.Done():
			return replace.DecisionCancel, ctx.Err()
		case <-u.done:
			return replace.DecisionCancel, context.Canceled
		case d := <-u.confirmResp:
			return d, nil
		}
	}
}

// Input asks for free text.
func (u *UI) Input(ctx context.Context, prompt, initial string) (string, error) {
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case <-u.done:
		return "", context.Canceled
	case u.inputReq <- inputRequest{Prompt: prompt, Initial: initial}:
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-u.done:
			return "", context.Canceled
		case s := <-u.inputResp:
			return s, nil
		}
	}
}

// Choose asks the user to pick one of items. It returns -1 when dismissed.
func (u *UI) Choose(ctx context.Context, title string, items []string) (int, error) {
	select {
	case <-ctx.Done():
		return -1, ctx.Err()
	case <-u.done:
		return -1, context.Canceled
	case u.chooseReq <- chooseRequest{Title: title, Items: items}:
		select {
		case <-ctx.Done():
			return -1, ctx.Err()
		case <-u.done:
			return -1, context.Canceled
		case i := <-u.chooseResp:
			return i, nil
		}
	}
}

// Commands returns the command channel.
func (u *UI) Commands() <-chan UICommand {
	return u.commandChan
}

// Ready returns a channel that is closed when the UI is ready to accept requests.
func (u *UI) Ready() <-chan struct{} {
	return u.readyChan
}
