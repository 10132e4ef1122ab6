package status

import (
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/lipgloss"
	"github.com/killallgit/menudata/pkg/tui/theme"
)

const DefaultLabel = "Menudata Expert is typing"

// StatusModel is the typing indicator shown while a reply is pending
type StatusModel struct {
	spinner   spinner.Model
	label     string
	timer     time.Duration
	startTime time.Time
	isActive  bool
	width     int
	now       func() time.Time
}

// NewStatusModel creates a new status bar model
func NewStatusModel() StatusModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(theme.ColorViolet)

	return StatusModel{
		spinner: s,
		label:   DefaultLabel,
		now:     time.Now,
	}
}

func (m StatusModel) IsActive() bool {
	return m.isActive
}

func (m StatusModel) Elapsed() time.Duration {
	return m.timer
}

func (m StatusModel) SetWidth(width int) StatusModel {
	m.width = width
	return m
}
