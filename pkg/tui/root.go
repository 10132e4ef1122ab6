package tui

import (
	"context"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

type rootModel struct {
	ctx        context.Context
	activeView int
	views      []tea.Model
	onQuit     func()
	width      int
	height     int
}

func (m rootModel) Init() tea.Cmd {
	var cmds []tea.Cmd
	for _, view := range m.views {
		cmds = append(cmds, view.Init())
	}
	return tea.Batch(cmds...)
}

func (m rootModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if key.Matches(msg, keys.Quit) {
			if m.onQuit != nil {
				m.onQuit()
			}
			return m, tea.Quit
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
	}

	if m.activeView < len(m.views) {
		var cmd tea.Cmd
		m.views[m.activeView], cmd = m.views[m.activeView].Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

func (m rootModel) View() string {
	if m.activeView >= len(m.views) {
		return ""
	}
	return m.views[m.activeView].View()
}

// NewRootModel wraps the views; onQuit runs once before the program exits
func NewRootModel(ctx context.Context, onQuit func(), views ...tea.Model) *rootModel {
	return &rootModel{
		ctx:    ctx,
		views:  views,
		onQuit: onQuit,
	}
}
