package views

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"conceptsearch/internal/domain"
)

// chromeLines is the number of lines around the profile list: title, input,
// blank separator, status and help
const chromeLines = 5

// StatusKind selects the colour of the status line
type StatusKind int

const (
	StatusNone StatusKind = iota
	StatusLoading
	StatusSuccess
	StatusWarning
	StatusError
)

// Status is the text shown under the profile list
type Status struct {
	Text string
	Kind StatusKind
}

// ViewState contains all the state needed for rendering
type ViewState struct {
	Width        int
	Height       int
	ProfileTypes []string
	TypeIndex    int
	Loading      bool
	Spinner      string
	Input        string // rendered query input
	List         string // rendered list viewport
	Empty        string // shown instead of List when nothing is loaded
	Status       Status
	Notice       string
	Help         string
}

// Renderer handles all view rendering
type Renderer struct {
	styles        *Styles
	profileRender *ProfileRenderer
}

// NewRenderer creates a new renderer
func NewRenderer() *Renderer {
	styles := NewStyles()
	return &Renderer{
		styles:        styles,
		profileRender: NewProfileRenderer(styles),
	}
}

// ListHeight returns the lines left for the profile list in a terminal of
// height lines
func ListHeight(height int) int {
	if h := height - chromeLines; h > 1 {
		return h
	}
	return 1
}

// ContentWidth returns the usable width inside the main container
func ContentWidth(width int) int {
	if width <= 0 {
		width = 80
	}
	if w := width - 2; w > 1 {
		return w
	}
	return 1
}

// RenderProfileList renders the loaded profiles for the list viewport
func (r *Renderer) RenderProfileList(profiles []domain.Profile, selected int, opts ListOptions) string {
	return r.profileRender.RenderList(profiles, selected, opts)
}

// RenderProfileDetail renders one profile for the pager
func (r *Renderer) RenderProfileDetail(p domain.Profile) string {
	return r.profileRender.RenderDetail(p)
}

// Render produces the complete view
func (r *Renderer) Render(state ViewState) string {
	content := &strings.Builder{}
	width := ContentWidth(state.Width)

	content.WriteString(r.renderTitleLine(state, width))
	content.WriteString("\n")
	content.WriteString(state.Input)
	content.WriteString("\n\n")

	listHeight := ListHeight(state.Height)
	if state.List == "" {
		empty := r.styles.Dim.Render(state.Empty)
		content.WriteString(empty)
		content.WriteString(strings.Repeat("\n", listHeight-1))
	} else {
		content.WriteString(state.List)
	}
	content.WriteString("\n")

	status := r.styles.ForStatus(state.Status.Kind).Render(state.Status.Text)
	if state.Notice != "" {
		if state.Status.Text != "" {
			status += r.styles.Dim.Render("  |  ")
		}
		status += r.styles.Scroll.Render(state.Notice)
	}
	content.WriteString(status)
	content.WriteString("\n")
	content.WriteString(r.styles.Help.Render(state.Help))

	mainStyle := r.styles.Main.MaxHeight(state.Height)
	if state.Height <= 0 {
		mainStyle = r.styles.Main
	}
	return mainStyle.Render(content.String())
}

// renderTitleLine renders the logo and type tabs with the loading indicator
// right-aligned
func (r *Renderer) renderTitleLine(state ViewState, width int) string {
	logo := r.styles.Title.Render("conceptsearch")

	tabs := make([]string, 0, len(state.ProfileTypes))
	for i, t := range state.ProfileTypes {
		if i == state.TypeIndex {
			tabs = append(tabs, r.styles.TabActive.Render(t))
		} else {
			tabs = append(tabs, r.styles.TabInactive.Render(t))
		}
	}
	left := logo
	if len(tabs) > 0 {
		left = fmt.Sprintf("%s  %s", logo, strings.Join(tabs, r.styles.Dim.Render(" | ")))
	}

	if !state.Loading {
		return left
	}

	right := r.styles.Dim.Render(fmt.Sprintf("%s Loading", state.Spinner))
	paddingWidth := width - lipgloss.Width(left) - lipgloss.Width(right)
	if paddingWidth > 0 {
		return fmt.Sprintf("%s%s%s", left, strings.Repeat(" ", paddingWidth), right)
	}
	return fmt.Sprintf("%s  %s", left, right)
}
