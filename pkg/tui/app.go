package tui

import (
	"context"
	"fmt"
	"sync"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/killallgit/menudata/pkg/chat"
	"github.com/killallgit/menudata/pkg/logger"
	chatview "github.com/killallgit/menudata/pkg/tui/chat"
)

// StartApp runs the full-screen chat until the user quits. The store is
// closed on the way out.
func StartApp(ctx context.Context, store *chat.Store, opts chatview.Options) error {
	log := logger.WithComponent("tui")

	var closeOnce sync.Once
	closeStore := func() {
		closeOnce.Do(store.Close)
	}
	defer closeStore()

	view := chatview.NewChatModel(store, opts)
	defer view.Close()

	root := NewRootModel(ctx, closeStore, view)
	p := tea.NewProgram(root, tea.WithContext(ctx), tea.WithAltScreen())

	log.Info("starting chat UI")
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("chat UI failed: %w", err)
	}
	log.Info("chat UI stopped")
	return nil
}
