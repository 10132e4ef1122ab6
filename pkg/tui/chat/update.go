package chat

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/killallgit/menudata/pkg/tui/chat/status"
)

func (m chatModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.handleWindowResize(msg.Width, msg.Height)
		statusModel, _ := m.statusBar.Update(msg)
		m.statusBar = statusModel.(status.StatusModel)

	case tea.KeyMsg:
		return handleKeyMsg(m, msg)

	case storeUpdatedMsg:
		cmd := m.refresh()
		return m, tea.Batch(cmd, waitForUpdate(m.updates))

	case storeClosedMsg:
		return m, nil

	default:
		statusModel, statusCmd := m.statusBar.Update(msg)
		m.statusBar = statusModel.(status.StatusModel)
		cmds = append(cmds, statusCmd)

		var tiCmd tea.Cmd
		m.textarea, tiCmd = m.textarea.Update(msg)
		cmds = append(cmds, tiCmd)

		var vpCmd tea.Cmd
		m.viewport, vpCmd = m.viewport.Update(msg)
		cmds = append(cmds, vpCmd)
	}

	return m, tea.Batch(cmds...)
}

// refresh pulls a fresh snapshot from the store and re-renders the log.
// The typing indicator follows the store's flag.
func (m *chatModel) refresh() tea.Cmd {
	wasTyping := m.state.IsTyping
	m.state = m.store.Snapshot()
	m.ensureSelection()
	m.updateViewportContent()

	var msg tea.Msg
	switch {
	case m.state.IsTyping && !wasTyping:
		msg = status.StartTypingMsg{}
	case !m.state.IsTyping && (wasTyping || m.statusBar.IsActive()):
		msg = status.StopTypingMsg{}
	default:
		return nil
	}

	statusModel, cmd := m.statusBar.Update(msg)
	m.statusBar = statusModel.(status.StatusModel)
	return cmd
}

// send hands content to the store without touching the composer
func (m *chatModel) send(content string) tea.Cmd {
	id, err := m.store.Submit(content)
	if err != nil {
		m.log.Warn("submit rejected: %v", err)
		m.notice = err.Error()
		return nil
	}
	m.log.Debug("submitted message %s", id)
	m.notice = ""

	cmd := m.refresh()
	m.viewport.GotoBottom()
	return cmd
}
