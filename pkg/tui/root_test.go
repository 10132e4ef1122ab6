package tui

import (
	"context"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingView struct {
	msgs []tea.Msg
}

func (v *recordingView) Init() tea.Cmd { return nil }

func (v *recordingView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	v.msgs = append(v.msgs, msg)
	return v, nil
}

func (v *recordingView) View() string { return "recorded" }

func TestRootModelForwardsToActiveView(t *testing.T) {
	view := &recordingView{}
	root := NewRootModel(context.Background(), nil, view)

	updated, _ := root.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	rm := updated.(rootModel)

	assert.Equal(t, 100, rm.width)
	assert.Equal(t, "recorded", rm.View())
	require.Len(t, view.msgs, 1)

	rm.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	assert.Len(t, view.msgs, 2, "plain letters belong to the composer")
}

func TestRootModelQuit(t *testing.T) {
	view := &recordingView{}
	quits := 0
	root := NewRootModel(context.Background(), func() { quits++ }, view)

	_, cmd := root.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	require.NotNil(t, cmd)

	assert.Equal(t, tea.Quit(), cmd())
	assert.Equal(t, 1, quits)
	assert.Empty(t, view.msgs)
}
