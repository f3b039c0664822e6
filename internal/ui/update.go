package ui

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/Cyclone1070/greplace/internal/replace"
	"github.com/Cyclone1070/greplace/internal/results"
	"github.com/Cyclone1070/greplace/internal/search/models"
	uimodels "github.com/Cyclone1070/greplace/internal/ui/models"
	"github.com/Cyclone1070/greplace/internal/ui/services"
	"github.com/Cyclone1070/greplace/internal/ui/views"
	"github.com/Cyclone1070/greplace/internal/workflow"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
)

var fieldPlaceholders = [uimodels.FieldCount]string{
	uimodels.FieldQuery:   "search",
	uimodels.FieldReplace: "replace with",
	uimodels.FieldInclude: "*.go, src/**",
	uimodels.FieldExclude: "vendor/**",
}

type modelOptions struct {
	tick         time.Duration
	previewWidth int
}

// BubbleTeaModel implements tea.Model
type BubbleTeaModel struct {
	state uimodels.State
	opts  modelOptions

	renderer services.MarkdownRenderer

	// App -> UI
	eventChan   <-chan workflow.Event
	confirmReq  <-chan confirmRequest
	confirmResp chan<- replace.Decision
	inputReq    <-chan inputRequest
	inputResp   chan<- string
	chooseReq   <-chan chooseRequest
	chooseResp  chan<- int

	// UI -> App
	commandChan chan<- UICommand

	readyChan chan<- struct{}
}

// View renders the UI
func (m BubbleTeaModel) View() string {
	return views.RenderRoot(m.state)
}

func newBubbleTeaModel(
	channels *UIChannels,
	renderer services.MarkdownRenderer,
	spinnerFactory SpinnerFactory,
	opts modelOptions,
) BubbleTeaModel {
	if opts.tick <= 0 {
		opts.tick = 300 * time.Millisecond
	}

	var inputs [uimodels.FieldCount]textinput.Model
	for i := range inputs {
		ti := textinput.New()
		ti.Prompt = ""
		ti.Placeholder = fieldPlaceholders[i]
		inputs[i] = ti
	}
	inputs[uimodels.FieldQuery].Focus()

	return BubbleTeaModel{
		state: uimodels.State{
			Inputs:  inputs,
			Focus:   uimodels.Focus(uimodels.FieldQuery),
			Spinner: spinnerFactory(),
			Preview: viewport.New(opts.previewWidth, 20),
		},
		opts:        opts,
		renderer:    renderer,
		eventChan:   channels.EventChan,
		confirmReq:  channels.ConfirmReq,
		confirmResp: channels.ConfirmResp,
		inputReq:    channels.InputReq,
		inputResp:   channels.InputResp,
		chooseReq:   channels.ChooseReq,
		chooseResp:  channels.ChooseResp,
		commandChan: channels.CommandChan,
		readyChan:   channels.ReadyChan,
	}
}

// Internal messages
type tickMsg time.Time
type eventMsg struct{ event workflow.Event }
type confirmRequestMsg confirmRequest
type inputRequestMsg inputRequest
type chooseRequestMsg chooseRequest

// Init initializes the model
func (m BubbleTeaModel) Init() tea.Cmd {
	if m.readyChan != nil {
		close(m.readyChan)
	}

	return tea.Batch(
		textinput.Blink,
		m.state.Spinner.Tick,
		m.tick(),
		listenForEvents(m.eventChan),
		listenForConfirmRequests(m.confirmReq),
		listenForInputRequests(m.inputReq),
		listenForChooseRequests(m.chooseReq),
	)
}

// Update handles messages
func (m BubbleTeaModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyPress(msg)

	case tea.WindowSizeMsg:
		m.state.Width = msg.Width
		m.state.Height = msg.Height
		m.resizePreview()
		return m, nil

	case tickMsg:
		return m, m.tick()

	case spinner.TickMsg:
		if !m.state.Searching {
			return m, nil
		}
		var cmd tea.Cmd
		m.state.Spinner, cmd = m.state.Spinner.Update(msg)
		return m, cmd

	case eventMsg:
		cmd := m.handleEvent(msg.event)
		return m, tea.Batch(cmd, listenForEvents(m.eventChan))

	case confirmRequestMsg:
		m.state.Prompt = &uimodels.Prompt{
			Kind:         uimodels.PromptConfirm,
			Question:     msg.Question,
			AllowPreview: msg.AllowPreview,
		}
		return m, listenForConfirmRequests(m.confirmReq)

	case inputRequestMsg:
		ti := textinput.New()
		ti.SetValue(msg.Initial)
		ti.CursorEnd()
		ti.Focus()
		m.state.Prompt = &uimodels.Prompt{
			Kind:     uimodels.PromptInput,
			Question: msg.Prompt,
			Input:    ti,
		}
		return m, listenForInputRequests(m.inputReq)

	case chooseRequestMsg:
		m.state.Prompt = &uimodels.Prompt{
			Kind:     uimodels.PromptChoose,
			Question: msg.Title,
			Items:    msg.Items,
		}
		return m, listenForChooseRequests(m.chooseReq)
	}

	return m.updateFocused(msg)
}

// handleEvent applies one application event to the state.
func (m *BubbleTeaModel) handleEvent(e workflow.Event) tea.Cmd {
	switch e := e.(type) {
	case workflow.MessageEvent:
		m.state.StatusLevel = e.Level
		m.state.StatusMessage = e.Text

	case workflow.OptionsEvent:
		m.state.Options = e.Options
		m.setInputs(e.Options)

	case workflow.SearchStartedEvent:
		m.state.Searching = true
		m.state.StatusLevel = workflow.LevelInfo
		m.state.StatusMessage = ""
		return m.state.Spinner.Tick

	case workflow.SearchFinishedEvent:
		m.state.Searching = false
		if e.Summary.Cancelled {
			m.state.StatusLevel = workflow.LevelInfo
			m.state.StatusMessage = "Search cancelled"
		}

	case workflow.ResultsEvent:
		m.state.Rows = e.Rows
		m.state.Matches = e.Matches
		m.state.Files = e.Files
		m.state.Cursor = clamp(m.state.Cursor, 0, len(m.state.Rows)-1)

	case workflow.LocationEvent:
		loc := e.Location
		m.state.PreviewTitle = fmt.Sprintf("%s:%d", filepath.ToSlash(loc.Path), loc.Line)
		m.openPreview(services.LocationMarkdown(loc))

	case workflow.PreviewEvent:
		m.state.PreviewTitle = "Replace preview"
		m.openPreview(services.PreviewMarkdown(e.Preview))

	case workflow.ClosePreviewEvent:
		m.state.ShowPreview = false

	case workflow.ReplaceFinishedEvent:
		if e.Report != nil && e.Report.Decision == replace.DecisionConfirm {
			m.state.StatusLevel = workflow.LevelInfo
			if len(e.Report.Failed) > 0 {
				m.state.StatusLevel = workflow.LevelWarn
			}
			m.state.StatusMessage = fmt.Sprintf("Replaced in %d files, %d failed",
				len(e.Report.Replaced), len(e.Report.Failed))
		}
	}
	return nil
}

func (m *BubbleTeaModel) openPreview(markdown string) {
	m.state.ShowPreview = true
	m.resizePreview()
	m.state.Preview.SetContent(services.RenderMarkdown(markdown, m.state.Preview.Width, m.renderer))
	m.state.Preview.GotoTop()
}

// resizePreview fits the preview pane into the right half of the window.
func (m *BubbleTeaModel) resizePreview() {
	width := m.opts.previewWidth
	if m.state.Width > 0 {
		width = min(width, m.state.Width/2-2)
	}
	m.state.Preview.Width = max(width, 10)
	m.state.Preview.Height = max(views.ResultsHeight(m.state)-3, 1)
}

func (m *BubbleTeaModel) setInputs(opts models.Options) {
	values := [uimodels.FieldCount]string{
		uimodels.FieldQuery:   opts.Query,
		uimodels.FieldReplace: opts.Replace,
		uimodels.FieldInclude: opts.Include,
		uimodels.FieldExclude: opts.Exclude,
	}
	for i, v := range values {
		if m.state.Inputs[i].Value() != v {
			m.state.Inputs[i].SetValue(v)
		}
	}
}

// handleKeyPress handles keyboard input
func (m BubbleTeaModel) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}
	if m.state.Prompt != nil {
		return m.handlePromptKey(msg)
	}

	switch msg.String() {
	case "tab":
		m.setFocus((m.state.Focus + 1) % (uimodels.FocusResults + 1))
		return m, nil
	case "shift+tab":
		m.setFocus((m.state.Focus + uimodels.FocusResults) % (uimodels.FocusResults + 1))
		return m, nil
	case "ctrl+r":
		return m, m.send(UICommand{Type: CommandReplace, Options: m.state.CurrentOptions()})
	case "ctrl+p":
		return m, m.send(UICommand{Type: CommandPreviewReplace, Options: m.state.CurrentOptions()})
	case "alt+c":
		return m, m.send(UICommand{Type: CommandToggleSetting, Setting: "case_sensitive"})
	case "alt+r":
		return m, m.send(UICommand{Type: CommandToggleSetting, Setting: "use_regex"})
	case "alt+w":
		return m, m.send(UICommand{Type: CommandToggleSetting, Setting: "whole_word"})
	case "ctrl+h":
		return m, m.send(UICommand{Type: CommandHistory})
	case "esc":
		if m.state.ShowPreview {
			m.state.ShowPreview = false
			return m, m.send(UICommand{Type: CommandClosePreview})
		}
		if m.state.Searching {
			return m, m.send(UICommand{Type: CommandCancel})
		}
		return m, nil
	case "pgup", "pgdown":
		if m.state.ShowPreview {
			var cmd tea.Cmd
			m.state.Preview, cmd = m.state.Preview.Update(msg)
			return m, cmd
		}
	}

	if m.state.Focus == uimodels.FocusResults {
		return m.handleResultsKey(msg)
	}

	if msg.String() == "enter" {
		return m, m.send(UICommand{Type: CommandSearch, Options: m.state.CurrentOptions()})
	}
	return m.updateFocused(msg)
}

func (m BubbleTeaModel) handleResultsKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	last := len(m.state.Rows) - 1
	switch msg.String() {
	case "up", "k":
		m.state.Cursor = clamp(m.state.Cursor-1, 0, last)
	case "down", "j":
		m.state.Cursor = clamp(m.state.Cursor+1, 0, last)
	case "home", "g":
		m.state.Cursor = 0
	case "end", "G":
		m.state.Cursor = max(last, 0)
	case "enter":
		if m.state.Cursor > last {
			return m, nil
		}
		if m.state.Rows[m.state.Cursor].Kind == results.RowGroup {
			return m, m.send(UICommand{Type: CommandToggleGroup, Index: m.state.Cursor})
		}
		return m, m.send(UICommand{Type: CommandShowPreview, Index: m.state.Cursor})
	}
	return m, nil
}

func (m BubbleTeaModel) handlePromptKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	p := m.state.Prompt
	switch p.Kind {
	case uimodels.PromptConfirm:
		switch msg.String() {
		case "y", "Y", "enter":
			m.confirmResp <- replace.DecisionConfirm
			m.state.Prompt = nil
		case "n", "N", "esc":
			m.confirmResp <- replace.DecisionCancel
			m.state.Prompt = nil
		case "p", "P":
			if p.AllowPreview {
				m.confirmResp <- replace.DecisionPreview
				m.state.Prompt = nil
			}
		}
		return m, nil

	case uimodels.PromptInput:
		switch msg.String() {
		case "enter":
			m.inputResp <- p.Input.Value()
			m.state.Prompt = nil
			return m, nil
		case "esc":
			m.inputResp <- ""
			m.state.Prompt = nil
			return m, nil
		}
		var cmd tea.Cmd
		p.Input, cmd = p.Input.Update(msg)
		return m, cmd

	case uimodels.PromptChoose:
		switch msg.String() {
		case "up", "k":
			if p.Index > 0 {
				p.Index--
			}
		case "down", "j":
			if p.Index < len(p.Items)-1 {
				p.Index++
			}
		case "enter":
			if len(p.Items) == 0 {
				m.chooseResp <- -1
			} else {
				m.chooseResp <- p.Index
			}
			m.state.Prompt = nil
		case "esc":
			m.chooseResp <- -1
			m.state.Prompt = nil
		}
	}
	return m, nil
}

func (m *BubbleTeaModel) setFocus(f uimodels.Focus) {
	for i := range m.state.Inputs {
		if uimodels.Focus(i) == f {
			m.state.Inputs[i].Focus()
		} else {
			m.state.Inputs[i].Blur()
		}
	}
	m.state.Focus = f
}

// updateFocused forwards msg to the focused text input.
func (m BubbleTeaModel) updateFocused(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.state.Focus == uimodels.FocusResults {
		return m, nil
	}
	var cmd tea.Cmd
	i := int(m.state.Focus)
	m.state.Inputs[i], cmd = m.state.Inputs[i].Update(msg)
	return m, cmd
}

// send delivers a command without blocking Update.
func (m BubbleTeaModel) send(c UICommand) tea.Cmd {
	ch := m.commandChan
	return func() tea.Msg {
		ch <- c
		return nil
	}
}

func (m BubbleTeaModel) tick() tea.Cmd {
	return tea.Tick(m.opts.tick, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// Helper commands for listening to channels
func listenForEvents(ch <-chan workflow.Event) tea.Cmd {
	return func() tea.Msg {
		return eventMsg{event: <-ch}
	}
}

func listenForConfirmRequests(ch <-chan confirmRequest) tea.Cmd {
	return func() tea.Msg {
		return confirmRequestMsg(<-ch)
	}
}

func listenForInputRequests(ch <-chan inputRequest) tea.Cmd {
	return func() tea.Msg {
		return inputRequestMsg(<-ch)
	}
}

func listenForChooseRequests(ch <-chan chooseRequest) tea.Cmd {
	return func() tea.Msg {
		return chooseRequestMsg(<-ch)
	}
}

func clamp(v, lo, hi int) int {
	if hi < lo {
		return lo
	}
	return min(max(v, lo), hi)
}
