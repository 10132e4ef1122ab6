package chat

import (
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/killallgit/menudata/pkg/chat"
	"github.com/killallgit/menudata/pkg/config"
	"github.com/killallgit/menudata/pkg/logger"
	"github.com/killallgit/menudata/pkg/tui/chat/status"
	"github.com/killallgit/menudata/pkg/tui/theme"
)

type focusArea int

const (
	focusComposer focusArea = iota
	focusMessages
	focusSuggestions
)

func (f focusArea) next() focusArea {
	return (f + 1) % 3
}

// Options configures the chat view
type Options struct {
	Suggestions   []string
	MarkdownStyle string
	ShowSidebar   bool
}

// OptionsFromConfig reads the ui section of the loaded configuration
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		Suggestions:   cfg.UI.SuggestedQuestions,
		MarkdownStyle: cfg.UI.MarkdownStyle,
		ShowSidebar:   cfg.UI.Sidebar,
	}
}

type chatModel struct {
	store       *chat.Store
	state       chat.State
	updates     <-chan struct{}
	unsubscribe func()

	viewport  viewport.Model
	textarea  textarea.Model
	statusBar status.StatusModel
	styles    *theme.Styles
	log       *logger.Logger

	markdownStyle string
	renderer      *glamour.TermRenderer
	rendererWidth int

	focus              focusArea
	selectedID         string
	suggestions        []string
	selectedSuggestion int

	sidebarEnabled bool
	sidebarToggled bool
	showSidebar    bool

	numEscPress int
	notice      string
	width       int
	height      int
}

// NewChatModel builds the chat view on top of a conversation store
func NewChatModel(store *chat.Store, opts Options) chatModel {
	ta := textarea.New()
	ta.Focus()
	ta.Placeholder = "Ask about restaurants, dishes or recipes..."
	ta.CharLimit = 0
	ta.SetHeight(1)
	ta.ShowLineNumbers = false
	ta.Prompt = "> "
	ta.FocusedStyle.CursorLine = lipgloss.NewStyle()
	ta.KeyMap.InsertNewline = newlineBinding

	if opts.MarkdownStyle == "" {
		opts.MarkdownStyle = "dark"
	}
	suggestions := opts.Suggestions
	if len(suggestions) == 0 {
		suggestions = config.DefaultSuggestedQuestions
	}

	updates, unsubscribe := store.Subscribe()

	return chatModel{
		store:          store,
		state:          store.Snapshot(),
		updates:        updates,
		unsubscribe:    unsubscribe,
		viewport:       viewport.New(80, 20),
		textarea:       ta,
		statusBar:      status.NewStatusModel(),
		styles:         theme.DefaultStyles(),
		log:            logger.WithComponent("tui_chat"),
		markdownStyle:  opts.MarkdownStyle,
		suggestions:    append([]string(nil), suggestions...),
		sidebarEnabled: opts.ShowSidebar,
		showSidebar:    opts.ShowSidebar,
	}
}

// Close releases the store subscription
func (m chatModel) Close() {
	if m.unsubscribe != nil {
		m.unsubscribe()
	}
}
