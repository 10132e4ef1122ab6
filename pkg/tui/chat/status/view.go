package status

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/killallgit/menudata/pkg/tui/theme"
)

func (m StatusModel) View() string {
	if !m.isActive || m.width == 0 {
		return ""
	}

	line := m.spinner.View() + " " + lipgloss.NewStyle().Foreground(theme.ColorBase05).Render(m.label)

	minutes := int(m.timer.Minutes())
	seconds := int(m.timer.Seconds()) % 60
	line += lipgloss.NewStyle().
		Foreground(theme.ColorBase04).
		Render(fmt.Sprintf(" %02d:%02d", minutes, seconds))

	return lipgloss.NewStyle().
		Width(m.width).
		Padding(0, 1).
		Render(line)
}
