package state

// AppState holds UI state that is not part of the search itself
type AppState struct {
	ProfileTypes []string // categories offered as tabs
	TypeIndex    int      // active tab

	SelectedIndex int // cursor over the loaded profiles

	Width  int
	Height int

	StatusMessage string // transient notice shown next to the status line
}

// NewAppState creates state for the given tabs with current selected. An
// unknown current type is added as the last tab.
func NewAppState(profileTypes []string, current string) *AppState {
	types := append([]string(nil), profileTypes...)
	index := -1
	for i, t := range types {
		if t == current {
			index = i
			break
		}
	}
	if index < 0 && current != "" {
		types = append(types, current)
		index = len(types) - 1
	}
	if index < 0 {
		index = 0
	}
	return &AppState{
		ProfileTypes: types,
		TypeIndex:    index,
	}
}

// CurrentType returns the active profile type, "" when there are no tabs
func (s *AppState) CurrentType() string {
	if len(s.ProfileTypes) == 0 {
		return ""
	}
	return s.ProfileTypes[s.TypeIndex]
}

// CycleType moves the active tab by delta, wrapping around, and returns the
// new type
func (s *AppState) CycleType(delta int) string {
	n := len(s.ProfileTypes)
	if n == 0 {
		return ""
	}
	s.TypeIndex = ((s.TypeIndex+delta)%n + n) % n
	return s.ProfileTypes[s.TypeIndex]
}

// ClampSelection keeps the cursor inside a list of count items
func (s *AppState) ClampSelection(count int) {
	if s.SelectedIndex >= count {
		s.SelectedIndex = count - 1
	}
	if s.SelectedIndex < 0 {
		s.SelectedIndex = 0
	}
}
