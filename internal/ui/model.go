// Package ui is the terminal presentation layer. It renders whatever state
// the chat controller hands it and translates key input into controller
// intents; it owns no chat state of its own.
package ui

import (
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"

	chatservice "github.com/sharondevs/echo-chat/internal/service/chat"
)

// stateMsg carries a controller snapshot into the bubbletea loop.
type stateMsg chatservice.State

// Model is the bubbletea model for the Echo chat screen.
type Model struct {
	svc    *chatservice.Service
	states <-chan chatservice.State

	state    chatservice.State
	input    textarea.Model
	viewport viewport.Model
	spin     spinner.Model
	renderer *glamour.TermRenderer

	width    int
	height   int
	ready    bool
	localErr string
}

// NewModel creates the chat screen bound to a controller. The states channel
// is fed by the controller's notifier.
func NewModel(svc *chatservice.Service, states <-chan chatservice.State) Model {
	input := textarea.New()
	input.Placeholder = "Ask Echo a question... (/help for commands)"
	input.ShowLineNumbers = false
	input.SetHeight(3)
	input.Focus()

	spin := spinner.New()
	spin.Spinner = spinner.Dot

	return Model{
		svc:    svc,
		states: states,
		state:  svc.Snapshot(),
		input:  input,
		spin:   spin,
	}
}

// Init starts the input blink, the spinner and the state pump.
func (m Model) Init() tea.Cmd {
	return tea.Batch(textarea.Blink, m.spin.Tick, waitForState(m.states))
}

// waitForState blocks on the next controller snapshot.
func waitForState(states <-chan chatservice.State) tea.Cmd {
	return func() tea.Msg {
		return stateMsg(<-states)
	}
}
