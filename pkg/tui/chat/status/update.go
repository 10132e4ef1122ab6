package status

import (
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
)

// Init starts idle; StartTypingMsg kicks off the spinner
func (m StatusModel) Init() tea.Cmd {
	return nil
}

func (m StatusModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case spinner.TickMsg:
		if !m.isActive {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case StartTypingMsg:
		if m.isActive {
			return m, nil
		}
		m.isActive = true
		m.startTime = msg.Since
		if m.startTime.IsZero() {
			m.startTime = m.now()
		}
		m.timer = 0
		return m, tea.Batch(
			m.spinner.Tick,
			tickEvery(),
		)

	case StopTypingMsg:
		m.isActive = false
		m.timer = 0
		return m, nil

	case TickMsg:
		if m.isActive {
			m.timer = time.Time(msg).Sub(m.startTime)
			return m, tickEvery()
		}
		return m, nil
	}

	return m, nil
}

// tickEvery returns a command that sends a tick message every second
func tickEvery() tea.Cmd {
	return tea.Every(time.Second, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}
