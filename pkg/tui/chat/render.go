package chat

import (
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/killallgit/menudata/pkg/chat"
)

const (
	userLabel      = "You"
	assistantLabel = "Menudata Expert"
	timeLayout     = "15:04"
)

func (m *chatModel) renderMessages() string {
	availableWidth := m.viewport.Width
	if availableWidth <= 0 {
		availableWidth = 80
	}

	if len(m.state.Messages) == 0 {
		return m.styles.Empty.Width(availableWidth).Render(
			"Ask the Menudata Expert about restaurants, menus and recipes.")
	}

	rendered := make([]string, 0, len(m.state.Messages))
	for _, msg := range m.state.Messages {
		rendered = append(rendered, m.renderMessage(msg, availableWidth))
	}
	return strings.Join(rendered, "\n\n")
}

func (m *chatModel) renderMessage(msg chat.Message, width int) string {
	var header strings.Builder

	if m.focus == focusMessages && msg.ID == m.selectedID {
		header.WriteString(m.styles.Selected.Render("▶ "))
	}

	if msg.IsUser() {
		header.WriteString(m.styles.UserLabel.Render(userLabel))
	} else {
		header.WriteString(m.styles.AssistantLabel.Render(assistantLabel))
	}
	header.WriteString(" ")
	header.WriteString(m.styles.Timestamp.Render(msg.Timestamp.Format(timeLayout)))

	if marker := m.marker(msg); marker != "" {
		header.WriteString(" ")
		header.WriteString(marker)
	}

	var body string
	if msg.IsUser() {
		body = m.styles.UserMessage.Width(width).Render(msg.Content)
	} else {
		body = m.renderMarkdown(msg.Content, width)
	}

	return header.String() + "\n" + body
}

func (m *chatModel) marker(msg chat.Message) string {
	if msg.IsAssistant() {
		switch msg.Feedback {
		case chat.FeedbackGood:
			return "👍"
		case chat.FeedbackBad:
			return "👎"
		}
		return ""
	}

	switch msg.Status {
	case chat.StatusSending:
		return m.styles.Timestamp.Render("…")
	case chat.StatusSent:
		return m.styles.Timestamp.Render("✓")
	case chat.StatusDelivered, chat.StatusRead:
		return m.styles.Delivered.Render("✓✓")
	case chat.StatusError:
		return m.styles.Failed.Render("!")
	}
	return ""
}

// renderMarkdown renders assistant replies with glamour, rebuilding the
// renderer when the wrap width changes
func (m *chatModel) renderMarkdown(content string, width int) string {
	if m.renderer == nil || m.rendererWidth != width {
		r, err := glamour.NewTermRenderer(
			glamour.WithStandardStyle(m.markdownStyle),
			glamour.WithWordWrap(width),
		)
		if err != nil {
			m.log.Warn("markdown renderer unavailable: %v", err)
			return m.styles.AssistantMessage.Width(width).Render(content)
		}
		m.renderer = r
		m.rendererWidth = width
	}

	out, err := m.renderer.Render(content)
	if err != nil {
		m.log.Warn("markdown render failed: %v", err)
		return m.styles.AssistantMessage.Width(width).Render(content)
	}
	return strings.Trim(out, "\n")
}

func (m *chatModel) updateViewportContent() {
	m.viewport.SetContent(m.renderMessages())
	m.viewport.GotoBottom()
}
