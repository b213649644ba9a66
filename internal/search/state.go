package search

import (
	"errors"
	"unicode/utf8"

	"conceptsearch/internal/domain"
	"conceptsearch/internal/resource"
)

// DefaultMinQueryLength is the shortest non-empty query searched by default
const DefaultMinQueryLength = 3

var errEmptyResponse = errors.New("response without a page")

// NewState creates an empty state for profileType
func NewState(profileType string, minQueryLength int) State {
	if minQueryLength < 1 {
		minQueryLength = DefaultMinQueryLength
	}
	return State{
		ProfileType:    profileType,
		MinQueryLength: minQueryLength,
		Page:           1,
		Profiles:       []domain.Profile{},
	}
}

// HasNextPage reports whether the server said more pages exist
func (s State) HasNextPage() bool {
	return s.NextPage > 0
}

// Loading reports whether any request is in flight
func (s State) Loading() bool {
	return s.searchToken != 0 || s.extendToken != 0
}

// Pending returns the intent currently in flight, 0 when idle. A search
// always wins over an extend since it supersedes it.
func (s State) Pending() Intent {
	switch {
	case s.searchToken != 0:
		return IntentSearch
	case s.extendToken != 0:
		return IntentExtend
	default:
		return 0
	}
}

// Search issues a request for the current Query and ProfileType. An empty query
// lists every profile of the type; a query shorter than MinQueryLength issues
// nothing and returns s unchanged.
func Search(s State) (State, *Request) {
	p := resource.Params{Type: s.ProfileType}
	switch n := utf8.RuneCountInString(s.Query); {
	case n == 0:
	case n >= s.MinQueryLength:
		p.Query = s.Query
	default:
		return s, nil
	}
	// The new search replaces whatever failed before it
	s.Err = nil
	s.LastFailed = nil
	return s.issue(IntentSearch, p)
}

// Extend issues a request for NextPage of the search the list belongs to. It
// does nothing when there is no next page or another request is in flight.
func Extend(s State) (State, *Request) {
	if !s.HasNextPage() || s.Loading() {
		return s, nil
	}
	return s.issue(IntentExtend, resource.Params{
		Type:  s.ActiveType,
		Query: s.ActiveQuery,
		Page:  s.NextPage,
	})
}

// Retry re-issues the last failed request with a fresh token. Nothing is retried
// while a search is in flight, and a failed extend waits for any pending extend.
func Retry(s State) (State, *Request) {
	if s.LastFailed == nil || s.Pending() == IntentSearch {
		return s, nil
	}
	failed := *s.LastFailed
	if failed.Intent == IntentExtend && s.Loading() {
		return s, nil
	}
	s.Err = nil
	s.LastFailed = nil
	return s.issue(failed.Intent, failed.Params)
}

// HandleNext sets NextPage from the server's "more pages" flag relative to the
// current Page
func HandleNext(s State, next bool) State {
	if next {
		s.NextPage = s.Page + 1
	} else {
		s.NextPage = 0
	}
	return s
}

// Apply folds a response into the state. Responses whose token is not the latest
// one issued for their intent are ignored.
func Apply(s State, r Response) (State, Outcome) {
	switch r.Request.Intent {
	case IntentSearch:
		if r.Request.Token == 0 || r.Request.Token != s.searchToken {
			return s, Stale
		}
		s.searchToken = 0
	case IntentExtend:
		if r.Request.Token == 0 || r.Request.Token != s.extendToken {
			return s, Stale
		}
		s.extendToken = 0
	default:
		return s, Stale
	}

	if r.Err == nil && r.Page == nil {
		r.Err = errEmptyResponse
	}
	if r.Err != nil {
		failed := r.Request
		s.Err = r.Err
		s.LastFailed = &failed
		return s, Failed
	}

	s.Err = nil
	s.LastFailed = nil

	if r.Request.Intent == IntentSearch {
		s.Profiles = append(make([]domain.Profile, 0, len(r.Page.Results)), r.Page.Results...)
		s.Page = 1
		s.ActiveQuery = r.Request.Params.Query
		s.ActiveType = r.Request.Params.Type
	} else {
		profiles := make([]domain.Profile, 0, len(s.Profiles)+len(r.Page.Results))
		profiles = append(profiles, s.Profiles...)
		s.Profiles = append(profiles, r.Page.Results...)
		s.Page++
	}

	s.ResultCount = len(s.Profiles)
	s.MaxCount = r.Page.Count
	return HandleNext(s, bool(r.Page.Next)), Applied
}

func (s State) issue(intent Intent, p resource.Params) (State, *Request) {
	s.seq++
	req := &Request{Intent: intent, Token: s.seq, Params: p}
	if intent == IntentSearch {
		s.searchToken = req.Token
		// A new search makes any outstanding page request meaningless
		s.extendToken = 0
	} else {
		s.extendToken = req.Token
	}
	return s, req
}
