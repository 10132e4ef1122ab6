package theme

import (
	"github.com/charmbracelet/lipgloss"
)

// Warm base16 palette, tuned toward a menu-card look
var (
	ColorBase00 = lipgloss.Color("#1a1816") // Dark background
	ColorBase01 = lipgloss.Color("#282420") // Lighter background
	ColorBase02 = lipgloss.Color("#36302a") // Selection background
	ColorBase03 = lipgloss.Color("#5c5044") // Comments, invisibles
	ColorBase04 = lipgloss.Color("#83715f") // Dark foreground
	ColorBase05 = lipgloss.Color("#ab937b") // Default foreground
	ColorBase07 = lipgloss.Color("#f5d7b9") // Lightest foreground

	ColorRed    = lipgloss.Color("#d95f5f")
	ColorOrange = lipgloss.Color("#eb8755")
	ColorYellow = lipgloss.Color("#f5b761")
	ColorGreen  = lipgloss.Color("#93b56b")
	ColorCyan   = lipgloss.Color("#61afaf")
	ColorBlue   = lipgloss.Color("#6b93b5")
	ColorViolet = lipgloss.Color("#6c71c4")

	ColorBorder    = ColorBase03
	ColorSelection = ColorBase02
	ColorFocus     = ColorOrange
	ColorSuccess   = ColorGreen
	ColorError     = ColorRed
	ColorMuted     = ColorBase04
	ColorLink      = ColorCyan
)

// Styles defines the Lipgloss styles for the TUI components
type Styles struct {
	Header lipgloss.Style
	Help   lipgloss.Style

	// Message log
	UserLabel        lipgloss.Style
	AssistantLabel   lipgloss.Style
	UserMessage      lipgloss.Style
	AssistantMessage lipgloss.Style
	Timestamp        lipgloss.Style
	Delivered        lipgloss.Style
	Failed           lipgloss.Style
	Selected         lipgloss.Style
	ErrorLine        lipgloss.Style

	// Sidebar
	Sidebar            lipgloss.Style
	SidebarTitle       lipgloss.Style
	SourceText         lipgloss.Style
	SourceURL          lipgloss.Style
	Suggestion         lipgloss.Style
	SuggestionSelected lipgloss.Style
	Empty              lipgloss.Style

	// Composer
	Focused   lipgloss.Style
	Unfocused lipgloss.Style
}

// DefaultStyles returns the default Lipgloss styles
func DefaultStyles() *Styles {
	return &Styles{
		Header: lipgloss.NewStyle().
			Background(ColorBase01).
			Foreground(ColorBase07).
			Bold(true).
			Padding(0, 1),

		Help: lipgloss.NewStyle().
			Foreground(ColorMuted),

		UserLabel: lipgloss.NewStyle().
			Foreground(ColorGreen).
			Bold(true),

		AssistantLabel: lipgloss.NewStyle().
			Foreground(ColorBlue).
			Bold(true),

		UserMessage: lipgloss.NewStyle().
			Foreground(ColorBase07).
			PaddingLeft(2),

		AssistantMessage: lipgloss.NewStyle().
			Foreground(ColorBase05),

		Timestamp: lipgloss.NewStyle().
			Foreground(ColorMuted),

		Delivered: lipgloss.NewStyle().
			Foreground(ColorSuccess),

		Failed: lipgloss.NewStyle().
			Foreground(ColorError).
			Bold(true),

		Selected: lipgloss.NewStyle().
			Foreground(ColorFocus).
			Bold(true),

		ErrorLine: lipgloss.NewStyle().
			Foreground(ColorError).
			Bold(true).
			Padding(0, 1),

		Sidebar: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder(), false, false, false, true).
			BorderForeground(ColorBorder).
			PaddingLeft(1),

		SidebarTitle: lipgloss.NewStyle().
			Foreground(ColorYellow).
			Bold(true).
			Underline(true),

		SourceText: lipgloss.NewStyle().
			Foreground(ColorBase05),

		SourceURL: lipgloss.NewStyle().
			Foreground(ColorLink).
			Italic(true),

		Suggestion: lipgloss.NewStyle().
			Foreground(ColorBase05),

		SuggestionSelected: lipgloss.NewStyle().
			Foreground(ColorFocus).
			Background(ColorSelection).
			Bold(true),

		Empty: lipgloss.NewStyle().
			Foreground(ColorMuted).
			Italic(true),

		Focused: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorFocus),

		Unfocused: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorBorder),
	}
}
