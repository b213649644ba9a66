package views

import (
	"github.com/charmbracelet/lipgloss"
)

// Styles contains all the style definitions for the UI
type Styles struct {
	Title         lipgloss.Style
	TabActive     lipgloss.Style
	TabInactive   lipgloss.Style
	Dim           lipgloss.Style
	Status        lipgloss.Style
	Help          lipgloss.Style
	Main          lipgloss.Style
	Scroll        lipgloss.Style
	Summary       lipgloss.Style
	Tag           lipgloss.Style
	Label         lipgloss.Style
	Section       lipgloss.Style
	StatusError   lipgloss.Style
	StatusWarning lipgloss.Style
	StatusLoading lipgloss.Style
	StatusSuccess lipgloss.Style
	SelectionBg   lipgloss.Style
}

// NewStyles creates a new Styles instance with default values
func NewStyles() *Styles {
	return &Styles{
		Title: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("99")),
		TabActive: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("226")).
			Underline(true),
		TabInactive:   lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
		Dim:           lipgloss.NewStyle().Faint(true),
		Status:        lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
		Help:          lipgloss.NewStyle().Faint(true),
		Main:          lipgloss.NewStyle().Padding(0, 1),
		Scroll:        lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Italic(true),
		Summary:       lipgloss.NewStyle().Foreground(lipgloss.Color("252")),
		Tag:           lipgloss.NewStyle().Foreground(lipgloss.Color("51")), // cyan
		Label:         lipgloss.NewStyle().Foreground(lipgloss.Color("220")),
		Section:       lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39")),
		StatusError:   lipgloss.NewStyle().Foreground(lipgloss.Color("203")), // red
		StatusWarning: lipgloss.NewStyle().Foreground(lipgloss.Color("214")), // yellow
		StatusLoading: lipgloss.NewStyle().Foreground(lipgloss.Color("241")), // gray
		StatusSuccess: lipgloss.NewStyle().Foreground(lipgloss.Color("78")),  // green
		SelectionBg:   lipgloss.NewStyle().Background(lipgloss.Color("238")),
	}
}

// ForStatus returns the style matching a status kind
func (s *Styles) ForStatus(kind StatusKind) lipgloss.Style {
	switch kind {
	case StatusError:
		return s.StatusError
	case StatusWarning:
		return s.StatusWarning
	case StatusLoading:
		return s.StatusLoading
	case StatusSuccess:
		return s.StatusSuccess
	default:
		return s.Status
	}
}
