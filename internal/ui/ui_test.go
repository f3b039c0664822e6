package ui

import (
	"context"
	"testing"
	"time"

	"github.com/Cyclone1070/greplace/internal/config"
	"github.com/Cyclone1070/greplace/internal/replace"
	"github.com/Cyclone1070/greplace/internal/workflow"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Mock dependencies
type MockMarkdownRenderer struct {
	RenderFunc func(string, int) (string, error)
}

func (m *MockMarkdownRenderer) Render(content string, width int) (string, error) {
	if m.RenderFunc != nil {
		return m.RenderFunc(content, width)
	}
	return content, nil
}

func mockSpinnerFactory() spinner.Model {
	return spinner.New()
}

func newTestUI(channels *UIChannels) *UI {
	return NewUI(config.DefaultConfig().UI, channels, &MockMarkdownRenderer{}, mockSpinnerFactory)
}

func TestConfirm_ReturnsDecision(t *testing.T) {
	channels := NewUIChannels()
	ui := newTestUI(channels)

	go func() {
		select {
		case req := <-channels.ConfirmReq:
			if req.Question != "Replace?" || !req.AllowPreview {
				t.Errorf("unexpected request %+v", req)
			}
			channels.ConfirmResp <- replace.DecisionPreview
		case <-time.After(time.Second):
			t.Error("Timeout waiting for confirm request")
		}
	}()

	d, err := ui.Confirm(context.Background(), "Replace?", true)
	require.NoError(t, err)
	assert.Equal(t, replace.DecisionPreview, d)
}

func TestConfirm_ContextCancelled(t *testing.T) {
	ui := newTestUI(NewUIChannels())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	d, err := ui.Confirm(ctx, "Replace?", false)
	assert.Equal(t, context.Canceled, err)
	assert.Equal(t, replace.DecisionCancel, d)
}

func TestInput_ReturnsText(t *testing.T) {
	channels := NewUIChannels()
	ui := newTestUI(channels)

	go func() {
		select {
		case req := <-channels.InputReq:
			if req.Initial != "fo" {
				t.Errorf("expected initial 'fo', got %q", req.Initial)
			}
			channels.InputResp <- "foo"
		case <-time.After(time.Second):
			t.Error("Timeout waiting for input request")
		}
	}()

	s, err := ui.Input(context.Background(), "Search for:", "fo")
	require.NoError(t, err)
	assert.Equal(t, "foo", s)
}

func TestChoose_ReturnsIndex(t *testing.T) {
	channels := NewUIChannels()
	ui := newTestUI(channels)

	go func() {
		req := <-channels.ChooseReq
		assert.Equal(t, []string{"a", "b"}, req.Items)
		channels.ChooseResp <- 1
	}()

	i, err := ui.Choose(context.Background(), "History", []string{"a", "b"})
	require.NoError(t, err)
	assert.Equal(t, 1, i)
}

func TestPrompts_ReturnAfterUIExit(t *testing.T) {
	ui := newTestUI(NewUIChannels())
	ui.close()

	_, err := ui.Input(context.Background(), "x", "")
	assert.ErrorIs(t, err, context.Canceled)
	i, err := ui.Choose(context.Background(), "x", nil)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, -1, i)
}

func TestEmit_DoesNotBlockAfterExit(t *testing.T) {
	channels := NewUIChannels()
	channels.EventChan = make(chan workflow.Event)
	ui := newTestUI(channels)
	ui.close()

	done := make(chan struct{})
	go func() {
		ui.Emit(workflow.MessageEvent{Text: "late"})
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Emit blocked after exit")
	}
}

func TestEmit_DeliversEvent(t *testing.T) {
	channels := NewUIChannels()
	ui := newTestUI(channels)

	ui.Emit(workflow.MessageEvent{Text: "hi"})

	e := <-channels.EventChan
	assert.Equal(t, workflow.MessageEvent{Text: "hi"}, e)
}
