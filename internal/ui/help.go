package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"
)

// HelpRenderer handles help content rendering
type HelpRenderer struct{}

// NewHelpRenderer creates a new help renderer
func NewHelpRenderer() *HelpRenderer {
	return &HelpRenderer{}
}

// RenderHelpContent generates help content with colors for the pager
func (r *HelpRenderer) RenderHelpContent(keys keyMap, minQueryLength int) string {
	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("99")).
		MarginBottom(1)

	sectionStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("39")).
		MarginTop(1)

	keyStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("220"))

	descStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("252"))

	var help strings.Builder

	help.WriteString(titleStyle.Render("conceptsearch Help"))
	help.WriteString("\n")

	section := func(name string, bindings ...key.Binding) {
		help.WriteString(sectionStyle.Render(name))
		help.WriteString("\n")
		for _, b := range bindings {
			h := b.Help()
			help.WriteString(fmt.Sprintf("  %s %s\n", keyStyle.Render(fmt.Sprintf("%-10s", h.Key)), descStyle.Render(h.Desc)))
		}
		help.WriteString("\n")
	}

	section("Navigation", keys.Up, keys.Down, keys.PageUp, keys.PageDown, keys.Home, keys.End)
	section("Profiles", keys.NextType, keys.PrevType, keys.Open)
	section("Requests", keys.Retry, keys.Reload)
	section("Other", keys.Help, keys.Quit)

	// Search notes
	noteStyle := lipgloss.NewStyle().Italic(true).Foreground(lipgloss.Color("241"))
	help.WriteString(sectionStyle.Render("Search"))
	help.WriteString("\n")
	help.WriteString(noteStyle.Render(fmt.Sprintf("  Typing filters profiles by label once the query has %d characters.", minQueryLength)))
	help.WriteString("\n")
	help.WriteString(noteStyle.Render("  An empty query lists every profile of the current type."))
	help.WriteString("\n")
	help.WriteString(noteStyle.Render("  Scrolling to the bottom of the list loads the next page."))

	return help.String()
}
