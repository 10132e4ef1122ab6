package chat

import (
	"strings"

	"github.com/mattn/go-runewidth"
)

const (
	// below this terminal width the sidebar is hidden unless toggled
	narrowWidth     = 90
	minSidebarWidth = 28
	maxSidebarWidth = 48
	maxComposerRows = 10
)

// calculateTextAreaHeight determines the visual height of the textarea
// based on its content and wrapping
func (m *chatModel) calculateTextAreaHeight() int {
	content := m.textarea.Value()
	if content == "" {
		return 1
	}

	textWidth := m.textarea.Width()
	if textWidth <= 0 {
		textWidth = m.width - 4
		if textWidth <= 0 {
			textWidth = 80
		}
	}

	totalVisualLines := 0
	for _, line := range strings.Split(content, "\n") {
		lineWidth := runewidth.StringWidth(line)
		visualLines := (lineWidth + textWidth - 1) / textWidth
		if visualLines < 1 {
			visualLines = 1
		}
		totalVisualLines += visualLines
	}

	if totalVisualLines > maxComposerRows {
		return maxComposerRows
	}
	return totalVisualLines
}

func (m chatModel) sidebarWidth() int {
	w := m.width / 3
	if w < minSidebarWidth {
		w = minSidebarWidth
	}
	if w > maxSidebarWidth {
		w = maxSidebarWidth
	}
	return w
}

// handleWindowResize updates all dimensions when window size changes
func (m *chatModel) handleWindowResize(width, height int) {
	m.width = width
	m.height = height

	if !m.sidebarToggled {
		m.showSidebar = m.sidebarEnabled && width >= narrowWidth
	}

	m.layout()
}

// layout sizes the composer, the log and the sidebar. Besides the log and
// the composer box the screen holds the header, error, status and help lines.
func (m *chatModel) layout() {
	if m.width <= 0 {
		return
	}

	// composer border plus prompt
	m.textarea.SetWidth(m.width - 4)
	textAreaHeight := m.calculateTextAreaHeight()
	m.textarea.SetHeight(textAreaHeight)

	logWidth := m.width
	if m.showSidebar {
		logWidth -= m.sidebarWidth()
	}
	m.viewport.Width = logWidth

	logHeight := m.height - textAreaHeight - 6
	if logHeight < 3 {
		logHeight = 3
	}
	m.viewport.Height = logHeight

	m.statusBar = m.statusBar.SetWidth(m.width)
	m.updateViewportContent()
}
