package chat

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

const headerTitle = "Menudata Expert"

func (m chatModel) View() string {
	header := m.styles.Header.Width(m.width).Render(headerTitle)

	body := m.viewport.View()
	if m.showSidebar {
		body = lipgloss.JoinHorizontal(lipgloss.Top, body, m.renderSidebar(m.sidebarWidth(), m.viewport.Height))
	}

	errorLine := ""
	switch {
	case m.state.Error != "":
		errorLine = m.styles.ErrorLine.Render("Error: " + m.state.Error)
	case m.notice != "":
		errorLine = m.styles.Help.Render(m.notice)
	}

	composerStyle := m.styles.Unfocused
	if m.focus == focusComposer {
		composerStyle = m.styles.Focused
	}
	composer := composerStyle.Width(m.width - 2).Render(m.textarea.View())

	return strings.Join([]string{
		header,
		body,
		errorLine,
		m.statusBar.View(),
		composer,
		m.helpView(),
	}, "\n")
}

func (m chatModel) helpView() string {
	var parts []string
	for _, b := range keys.help(m.focus) {
		h := b.Help()
		parts = append(parts, h.Key+" "+h.Desc)
	}
	parts = append(parts, "ctrl+c quit")
	return m.styles.Help.Render(strings.Join(parts, " • "))
}
