package search

import (
	"conceptsearch/internal/domain"
	"conceptsearch/internal/resource"
)

// Intent distinguishes a fresh search from loading the next page
type Intent int

const (
	IntentSearch Intent = iota + 1
	IntentExtend
)

func (i Intent) String() string {
	switch i {
	case IntentSearch:
		return "search"
	case IntentExtend:
		return "extend"
	default:
		return "unknown"
	}
}

// Outcome reports what Apply did with a response
type Outcome int

const (
	// Applied means the response replaced or extended the result list
	Applied Outcome = iota
	// Failed means the response carried an error and State.Err was set
	Failed
	// Stale means a newer request for the same intent was issued, nothing changed
	Stale
)

func (o Outcome) String() string {
	switch o {
	case Applied:
		return "applied"
	case Failed:
		return "failed"
	case Stale:
		return "stale"
	default:
		return "unknown"
	}
}

// Request is a listing request issued by Search, Extend or Retry. Token
// identifies it when its Response comes back.
type Request struct {
	Intent Intent
	Token  uint64
	Params resource.Params
}

// Response is the completion of a Request. Exactly one of Page and Err is set.
type Response struct {
	Request Request
	Page    *domain.ProfilePage
	Err     error
}

// State is the search view-model. It is a value: every transition takes a
// State and returns the next one.
type State struct {
	// Query is the text typed by the user
	Query string
	// ProfileType is the selected category
	ProfileType string
	// MinQueryLength is the shortest non-empty query that is searched
	MinQueryLength int

	// ActiveQuery and ActiveType describe the search the loaded list belongs to
	ActiveQuery string
	ActiveType  string

	// Page is the highest fetched page, 1-based
	Page int
	// NextPage is the page to fetch next, 0 when there is none
	NextPage int

	Profiles    []domain.Profile
	ResultCount int
	MaxCount    int

	// Err is the error of the most recent failed request, nil after a success
	Err error
	// LastFailed is the request Retry re-issues
	LastFailed *Request

	seq         uint64
	searchToken uint64
	extendToken uint64
}
