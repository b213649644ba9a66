package viewmodels

import (
	"fmt"
	"unicode/utf8"

	"github.com/charmbracelet/bubbles/help"

	"conceptsearch/internal/config"
	"conceptsearch/internal/search"
	"conceptsearch/internal/ui/state"
	"conceptsearch/internal/ui/views"
)

// ViewModel transforms application state into view-ready data
type ViewModel struct {
	state  *state.AppState
	config *config.Config
	help   help.Model
}

// NewViewModel creates a new view model
func NewViewModel(appState *state.AppState, cfg *config.Config) *ViewModel {
	return &ViewModel{
		state:  appState,
		config: cfg,
		help:   help.New(),
	}
}

// SetHelp sets the help model
func (vm *ViewModel) SetHelp(helpModel help.Model) {
	vm.help = helpModel
}

// ListOptions returns how profile rows are rendered at the current width
func (vm *ViewModel) ListOptions(s search.State) views.ListOptions {
	return views.ListOptions{
		Width:         views.ContentWidth(vm.state.Width),
		Query:         s.ActiveQuery,
		ShowSummaries: vm.config.UISettings.ShowSummaries,
		ShowURIs:      vm.config.UISettings.ShowURIs,
	}
}

// BuildViewState creates a ViewState for rendering
func (vm *ViewModel) BuildViewState(s search.State, input, list, spinner string, keys help.KeyMap) views.ViewState {
	vs := views.ViewState{
		Width:        vm.state.Width,
		Height:       vm.state.Height,
		ProfileTypes: vm.state.ProfileTypes,
		TypeIndex:    vm.state.TypeIndex,
		Loading:      s.Loading(),
		Spinner:      spinner,
		Input:        input,
		Status:       BuildStatus(s),
		Notice:       vm.state.StatusMessage,
		Help:         vm.help.View(keys),
	}
	if len(s.Profiles) == 0 {
		vs.Empty = EmptyMessage(s)
	} else {
		vs.List = list
	}
	return vs
}

// BuildStatus describes the search state in one line. Errors win over loading,
// loading over hints, hints over counts.
func BuildStatus(s search.State) views.Status {
	switch {
	case s.Err != nil:
		return views.Status{
			Text: fmt.Sprintf("Error: %v (ctrl+r to retry)", s.Err),
			Kind: views.StatusError,
		}
	case s.Pending() == search.IntentSearch:
		text := fmt.Sprintf("Searching %s", s.ProfileType)
		if q := s.Query; q != "" && utf8.RuneCountInString(q) >= s.MinQueryLength {
			text = fmt.Sprintf("Searching %s for %q", s.ProfileType, q)
		}
		return views.Status{Text: text + "...", Kind: views.StatusLoading}
	case s.Pending() == search.IntentExtend:
		return views.Status{
			Text: fmt.Sprintf("Loading page %d of %s...", s.NextPage, s.ActiveType),
			Kind: views.StatusLoading,
		}
	case s.Query != "" && utf8.RuneCountInString(s.Query) < s.MinQueryLength:
		return views.Status{
			Text: fmt.Sprintf("Type at least %d characters to filter", s.MinQueryLength),
			Kind: views.StatusWarning,
		}
	case s.ActiveType == "":
		return views.Status{}
	}

	text := fmt.Sprintf("Showing %d of %d", s.ResultCount, s.MaxCount)
	if s.Page > 1 {
		text += fmt.Sprintf(" (page %d)", s.Page)
	}
	if s.HasNextPage() {
		text += ", scroll for more"
	}
	return views.Status{Text: text, Kind: views.StatusSuccess}
}

// EmptyMessage is shown in place of the list when nothing is loaded
func EmptyMessage(s search.State) string {
	switch {
	case s.Loading() && s.ActiveType == "":
		return "Loading profiles..."
	case s.ActiveType == "":
		return ""
	case s.ActiveQuery != "":
		return fmt.Sprintf("No %s match %q", s.ActiveType, s.ActiveQuery)
	default:
		return fmt.Sprintf("No %s found", s.ActiveType)
	}
}
