package chat

import (
	tea "github.com/charmbracelet/bubbletea"
)

// storeUpdatedMsg reports that the conversation store changed
type storeUpdatedMsg struct{}

// storeClosedMsg reports that the store released its subscribers
type storeClosedMsg struct{}

// waitForUpdate blocks on the store subscription and turns the next
// notification into a tea.Msg
func waitForUpdate(updates <-chan struct{}) tea.Cmd {
	return func() tea.Msg {
		if _, ok := <-updates; !ok {
			return storeClosedMsg{}
		}
		return storeUpdatedMsg{}
	}
}
