package domain

// EventType represents the type of domain event
type EventType string

// Event types
const (
	EventSearchIssued       EventType = "SearchIssued"
	EventProfilesLoaded     EventType = "ProfilesLoaded"
	EventRequestFailed      EventType = "RequestFailed"
	EventResponseDiscarded  EventType = "ResponseDiscarded"
	EventProfileTypeChanged EventType = "ProfileTypeChanged"
	EventConfigLoaded       EventType = "ConfigLoaded"
	EventConfigSaved        EventType = "ConfigSaved"
	EventError              EventType = "Error"
)

// DomainEvent is the interface for all domain events
type DomainEvent interface {
	Type() EventType
}

// SearchIssuedEvent is emitted when a listing request is sent
type SearchIssuedEvent struct {
	Intent      string // "search" or "extend"
	Token       uint64
	ProfileType string
	Query       string
	Page        int // 0 for the first page
}

func (e SearchIssuedEvent) Type() EventType { return EventSearchIssued }

// ProfilesLoadedEvent is emitted when a response has been applied to the result list
type ProfilesLoadedEvent struct {
	Intent      string
	Token       uint64
	ProfileType string
	Received    int
	Loaded      int
	Total       int
	Page        int
	HasNext     bool
}

func (e ProfilesLoadedEvent) Type() EventType { return EventProfilesLoaded }

// RequestFailedEvent is emitted when the current request for an intent fails
type RequestFailedEvent struct {
	Intent string
	Token  uint64
	Err    error
}

func (e RequestFailedEvent) Type() EventType { return EventRequestFailed }

// ResponseDiscardedEvent is emitted when a superseded response arrives
type ResponseDiscardedEvent struct {
	Intent string
	Token  uint64
}

func (e ResponseDiscardedEvent) Type() EventType { return EventResponseDiscarded }

// ProfileTypeChangedEvent is emitted when the user switches profile category
// Seq increases with every change so handlers running out of order can tell
// which change came last.
type ProfileTypeChangedEvent struct {
	From string
	To   string
	Seq  uint64
}

func (e ProfileTypeChangedEvent) Type() EventType { return EventProfileTypeChanged }

// ConfigLoadedEvent is emitted when configuration is loaded
type ConfigLoadedEvent struct {
	Path    string
	BaseURL string
}

func (e ConfigLoadedEvent) Type() EventType { return EventConfigLoaded }

// ConfigSavedEvent is emitted when configuration is saved
type ConfigSavedEvent struct {
	Path string
}

func (e ConfigSavedEvent) Type() EventType { return EventConfigSaved }

// ErrorEvent is emitted when an error occurs
type ErrorEvent struct {
	Message string
	Err     error
}

func (e ErrorEvent) Type() EventType { return EventError }
