package chat

import (
	"fmt"
	"strings"

	"github.com/mattn/go-runewidth"
)

const (
	sourcesTitle     = "Sources"
	suggestionsTitle = "Suggested Questions"
	noSourcesText    = "No sources yet"
)

func (m chatModel) renderSidebar(width, height int) string {
	// border and padding take two columns
	inner := width - 2
	if inner < 10 {
		inner = 10
	}

	var sections []string
	sections = append(sections, m.styles.SidebarTitle.Render(sourcesTitle))

	if len(m.state.Sources) == 0 {
		sections = append(sections, m.styles.Empty.Render(noSourcesText))
	}
	for i, src := range m.state.Sources {
		text := strings.Join(strings.Fields(src.Text), " ")
		text = runewidth.Truncate(text, inner*3, "…")
		sections = append(sections,
			m.styles.SourceText.Width(inner).Render(fmt.Sprintf("%d. %s", i+1, text)),
			m.styles.SourceURL.Width(inner).Render(src.URL),
		)
	}

	sections = append(sections, "", m.styles.SidebarTitle.Render(suggestionsTitle))
	for i, q := range m.suggestions {
		if m.focus == focusSuggestions && i == m.selectedSuggestion {
			sections = append(sections, m.styles.SuggestionSelected.Width(inner).Render("› "+q))
			continue
		}
		sections = append(sections, m.styles.Suggestion.Width(inner).Render("  "+q))
	}

	return m.styles.Sidebar.
		Width(width - 1).
		Height(height).
		MaxHeight(height).
		Render(strings.Join(sections, "\n"))
}
