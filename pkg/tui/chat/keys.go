package chat

import "github.com/charmbracelet/bubbles/key"

var newlineBinding = key.NewBinding(
	key.WithKeys("alt+enter"),
	key.WithHelp("alt+enter", "newline"),
)

type keyMap struct {
	Submit        key.Binding
	Clear         key.Binding
	Focus         key.Binding
	Up            key.Binding
	Down          key.Binding
	Good          key.Binding
	Bad           key.Binding
	ToggleSidebar key.Binding
}

var keys = keyMap{
	Submit: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("enter", "send"),
	),
	Clear: key.NewBinding(
		key.WithKeys("esc"),
		key.WithHelp("esc esc", "clear"),
	),
	Focus: key.NewBinding(
		key.WithKeys("tab"),
		key.WithHelp("tab", "focus"),
	),
	Up: key.NewBinding(
		key.WithKeys("up", "k"),
	),
	Down: key.NewBinding(
		key.WithKeys("down", "j"),
	),
	Good: key.NewBinding(
		key.WithKeys("+"),
		key.WithHelp("+", "good"),
	),
	Bad: key.NewBinding(
		key.WithKeys("-"),
		key.WithHelp("-", "bad"),
	),
	ToggleSidebar: key.NewBinding(
		key.WithKeys("ctrl+s"),
		key.WithHelp("ctrl+s", "sidebar"),
	),
}

func (k keyMap) help(f focusArea) []key.Binding {
	switch f {
	case focusMessages:
		return []key.Binding{k.Good, k.Bad, k.Focus, k.ToggleSidebar}
	case focusSuggestions:
		return []key.Binding{k.Submit, k.Focus, k.ToggleSidebar}
	default:
		return []key.Binding{k.Submit, newlineBinding, k.Clear, k.Focus, k.ToggleSidebar}
	}
}
