package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/sharondevs/echo-chat/internal/model/chat"
)

// View assembles the chat screen: header with mode tabs, transcript
// viewport, uploaded file chips, error line, input box, help footer.
func (m Model) View() string {
	if !m.ready {
		return "loading..."
	}

	var b strings.Builder
	b.WriteString(m.renderHeader())
	b.WriteString("\n")
	b.WriteString(m.viewport.View())
	b.WriteString("\n")

	if files := m.renderFiles(); files != "" {
		b.WriteString(files)
		b.WriteString("\n")
	}
	if errLine := m.renderError(); errLine != "" {
		b.WriteString(errLine)
		b.WriteString("\n")
	}

	b.WriteString(m.input.View())
	b.WriteString("\n")
	b.WriteString(helpStyle.Render("enter: send · /mode · /upload · /remove · /quit · esc: exit"))
	return b.String()
}

func (m Model) renderHeader() string {
	title := headerStyle.Render("Echo")

	resumeTab := tabStyle
	documentsTab := tabStyle
	if m.state.Mode == chat.ModeResume {
		resumeTab = activeTabStyle
	} else {
		documentsTab = activeTabStyle
	}

	tabs := lipgloss.JoinHorizontal(lipgloss.Top,
		resumeTab.Render("resume"),
		documentsTab.Render("documents"),
	)

	status := ""
	if m.state.Loading {
		status = m.spin.View() + " thinking"
	}

	return lipgloss.JoinHorizontal(lipgloss.Top, title, tabs, helpStyle.Render(status))
}

func (m Model) renderFiles() string {
	if len(m.state.UploadedFiles) == 0 {
		return ""
	}
	chips := make([]string, 0, len(m.state.UploadedFiles))
	for i, doc := range m.state.UploadedFiles {
		chips = append(chips, fileChipStyle.Render(fmt.Sprintf("%d:%s", i+1, doc.Name)))
	}
	return strings.Join(chips, " ")
}

func (m Model) renderError() string {
	switch {
	case m.localErr != "":
		return errorStyle.Render(m.localErr)
	case m.state.Err != "":
		return errorStyle.Render(m.state.Err)
	}
	return ""
}

// refreshTranscript rebuilds the viewport body from the current snapshot and
// pins the view to the newest message.
func (m *Model) refreshTranscript() {
	if !m.ready {
		return
	}

	var b strings.Builder
	if len(m.state.Messages) == 0 {
		b.WriteString(helpStyle.Render(welcomeLine(m.state.Mode)))
	}

	for _, msg := range m.state.Messages {
		switch msg.Role {
		case chat.RoleUser:
			b.WriteString(userLabelStyle.Render("you"))
			b.WriteString("  ")
			b.WriteString(msg.Content)
		case chat.RoleAssistant:
			b.WriteString(assistantLabelStyle.Render("echo"))
			b.WriteString("\n")
			b.WriteString(m.renderMarkdown(msg.Content))
			if len(msg.Sources) > 0 {
				b.WriteString(sourcesStyle.Render("sources: " + strings.Join(msg.Sources, ", ")))
				b.WriteString("\n")
			}
		}
		b.WriteString("\n")
	}

	m.viewport.SetContent(b.String())
	m.viewport.GotoBottom()
}

func (m Model) renderMarkdown(content string) string {
	if m.renderer == nil {
		return content + "\n"
	}
	rendered, err := m.renderer.Render(content)
	if err != nil {
		return content + "\n"
	}
	return rendered
}

func welcomeLine(mode chat.Mode) string {
	if mode == chat.ModeDocuments {
		return "Welcome to documents mode. Upload files with /upload and ask about their content."
	}
	return "Hi! I am Echo. Ask me anything about Sharon's engineering journey."
}
