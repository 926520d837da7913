package ui

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"

	"github.com/sharondevs/echo-chat/internal/model/chat"
	chatservice "github.com/sharondevs/echo-chat/internal/service/chat"
)

// localErrMsg reports a purely local problem (an unreadable upload path)
// that never reached the controller.
type localErrMsg string

// Update routes terminal events: window sizing, controller snapshots, key
// input. Controller calls run as commands so the event loop never blocks on
// the network.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.input.SetWidth(msg.Width - 4)

		viewportHeight := msg.Height - m.input.Height() - 7
		if viewportHeight < 3 {
			viewportHeight = 3
		}
		if !m.ready {
			m.viewport = viewport.New(msg.Width, viewportHeight)
			m.ready = true
		} else {
			m.viewport.Width = msg.Width
			m.viewport.Height = viewportHeight
		}

		renderer, err := glamour.NewTermRenderer(
			glamour.WithAutoStyle(),
			glamour.WithWordWrap(msg.Width-6),
		)
		if err == nil {
			m.renderer = renderer
		}
		m.refreshTranscript()

	case stateMsg:
		m.state = chatservice.State(msg)
		m.localErr = ""
		m.refreshTranscript()
		cmds = append(cmds, waitForState(m.states))

	case localErrMsg:
		m.localErr = string(msg)

	case spinner.TickMsg:
		if m.state.Loading {
			var cmd tea.Cmd
			m.spin, cmd = m.spin.Update(msg)
			cmds = append(cmds, cmd)
		}

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit
		case tea.KeyEnter:
			text := strings.TrimSpace(m.input.Value())
			m.input.Reset()
			if cmd := m.dispatch(text); cmd != nil {
				cmds = append(cmds, cmd, m.spin.Tick)
			}
		default:
			var cmd tea.Cmd
			m.input, cmd = m.input.Update(msg)
			cmds = append(cmds, cmd)
		}

	default:
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		cmds = append(cmds, cmd)
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

// dispatch turns one submitted line into a controller intent.
func (m *Model) dispatch(text string) tea.Cmd {
	if text == "" {
		return nil
	}

	svc := m.svc
	switch {
	case text == "/quit":
		return tea.Quit

	case text == "/help":
		m.localErr = "commands: /mode resume|documents, /upload <paths>, /remove <n>, /quit"
		return nil

	case strings.HasPrefix(text, "/mode"):
		arg := strings.TrimSpace(strings.TrimPrefix(text, "/mode"))
		return func() tea.Msg {
			svc.SwitchMode(context.Background(), chat.Mode(arg))
			return nil
		}

	case strings.HasPrefix(text, "/upload"):
		paths := strings.Fields(strings.TrimPrefix(text, "/upload"))
		return func() tea.Msg {
			docs, err := readDocuments(paths)
			if err != nil {
				return localErrMsg(err.Error())
			}
			svc.SubmitFiles(context.Background(), docs)
			return nil
		}

	case strings.HasPrefix(text, "/remove"):
		arg := strings.TrimSpace(strings.TrimPrefix(text, "/remove"))
		index, err := strconv.Atoi(arg)
		if err != nil {
			return nil
		}
		return func() tea.Msg {
			svc.RemoveFile(context.Background(), index-1)
			return nil
		}

	default:
		return func() tea.Msg {
			svc.SubmitMessage(context.Background(), text)
			return nil
		}
	}
}

// readDocuments loads upload candidates fully into memory so the multipart
// writer can stream them without juggling open handles.
func readDocuments(paths []string) ([]chat.Document, error) {
	var docs []chat.Document
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", path, err)
		}
		docs = append(docs, chat.Document{
			Name:    filepath.Base(path),
			Size:    int64(len(data)),
			Content: bytes.NewReader(data),
		})
	}
	return docs, nil
}
