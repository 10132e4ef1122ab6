package chat

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/killallgit/menudata/pkg/chat"
)

func handleKeyMsg(m chatModel, msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.ToggleSidebar):
		m.sidebarToggled = true
		m.showSidebar = !m.showSidebar
		m.layout()
		return m, nil

	case key.Matches(msg, keys.Focus):
		m.setFocus(m.focus.next())
		return m, nil
	}

	switch m.focus {
	case focusMessages:
		return handleMessagesKey(m, msg)
	case focusSuggestions:
		return handleSuggestionsKey(m, msg)
	default:
		return handleComposerKey(m, msg)
	}
}

func handleComposerKey(m chatModel, msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, keys.Clear) {
		m.numEscPress++
		if m.numEscPress == 2 {
			m.resetComposer()
			m.notice = ""
			m.numEscPress = 0
		}
		return m, nil
	}
	m.numEscPress = 0

	if key.Matches(msg, keys.Submit) {
		value := m.textarea.Value()
		if strings.TrimSpace(value) == "" {
			return m, nil
		}

		if updated, ok, err := expandAttach(value); ok {
			if err != nil {
				m.notice = err.Error()
				return m, nil
			}
			m.notice = ""
			m.textarea.SetValue(updated)
			m.layout()
			return m, nil
		}

		cmd := m.send(value)
		if m.notice == "" {
			m.resetComposer()
		}
		return m, cmd
	}

	var cmd tea.Cmd
	m.textarea, cmd = m.textarea.Update(msg)

	if newHeight := m.calculateTextAreaHeight(); m.textarea.Height() != newHeight {
		m.layout()
	}

	return m, cmd
}

func handleMessagesKey(m chatModel, msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Up):
		m.moveSelection(-1)
		m.updateViewportContent()
		return m, nil

	case key.Matches(msg, keys.Down):
		m.moveSelection(1)
		m.updateViewportContent()
		return m, nil

	case key.Matches(msg, keys.Good):
		return m, m.rate(chat.FeedbackGood)

	case key.Matches(msg, keys.Bad):
		return m, m.rate(chat.FeedbackBad)
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func handleSuggestionsKey(m chatModel, msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if len(m.suggestions) == 0 {
		return m, nil
	}

	switch {
	case key.Matches(msg, keys.Up):
		m.selectedSuggestion = (m.selectedSuggestion - 1 + len(m.suggestions)) % len(m.suggestions)
	case key.Matches(msg, keys.Down):
		m.selectedSuggestion = (m.selectedSuggestion + 1) % len(m.suggestions)
	case key.Matches(msg, keys.Submit):
		return m, m.send(m.suggestions[m.selectedSuggestion])
	}
	return m, nil
}

func (m *chatModel) setFocus(f focusArea) {
	m.focus = f
	m.numEscPress = 0
	if f == focusComposer {
		m.textarea.Focus()
	} else {
		m.textarea.Blur()
	}
	m.ensureSelection()
	m.updateViewportContent()
}

func (m *chatModel) resetComposer() {
	m.textarea.Reset()
	m.textarea.SetHeight(1)
	m.layout()
}

func (m *chatModel) rate(feedback chat.Feedback) tea.Cmd {
	if m.selectedID == "" {
		return nil
	}
	m.store.SetFeedback(m.selectedID, feedback)
	return m.refresh()
}

// ensureSelection keeps the selected message pointing at an assistant
// reply, defaulting to the latest one
func (m *chatModel) ensureSelection() {
	ids := m.assistantIDs()
	if len(ids) == 0 {
		m.selectedID = ""
		return
	}
	for _, id := range ids {
		if id == m.selectedID {
			return
		}
	}
	m.selectedID = ids[len(ids)-1]
}

func (m *chatModel) moveSelection(delta int) {
	ids := m.assistantIDs()
	if len(ids) == 0 {
		return
	}

	current := len(ids) - 1
	for i, id := range ids {
		if id == m.selectedID {
			current = i
			break
		}
	}

	next := current + delta
	if next < 0 {
		next = 0
	}
	if next >= len(ids) {
		next = len(ids) - 1
	}
	m.selectedID = ids[next]
}

func (m chatModel) assistantIDs() []string {
	var ids []string
	for _, msg := range m.state.Messages {
		if msg.IsAssistant() {
			ids = append(ids, msg.ID)
		}
	}
	return ids
}
