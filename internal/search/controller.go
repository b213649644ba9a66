package search

import (
	"log/slog"

	"conceptsearch/internal/eventbus"
)

// Controller owns a State and reports its transitions on the event bus.
// It is not safe for concurrent use; the UI calls it from its update loop.
type Controller struct {
	state       State
	bus         eventbus.EventBus
	typeChanges uint64
}

// NewController creates a controller for profileType. bus may be nil.
func NewController(bus eventbus.EventBus, profileType string, minQueryLength int) *Controller {
	return &Controller{
		state: NewState(profileType, minQueryLength),
		bus:   bus,
	}
}

// State returns a snapshot of the current state
func (c *Controller) State() State {
	return c.state
}

// SetQuery replaces the query text without searching
func (c *Controller) SetQuery(q string) {
	c.state.Query = q
}

// SetProfileType switches category and searches it. Returns nil when the type
// is unchanged or the current query is too short to search.
func (c *Controller) SetProfileType(profileType string) *Request {
	if profileType == c.state.ProfileType {
		return nil
	}
	from := c.state.ProfileType
	c.state.ProfileType = profileType
	c.typeChanges++
	c.publish(eventbus.ProfileTypeChangedEvent{From: from, To: profileType, Seq: c.typeChanges})
	return c.Search()
}

// Search runs Search on the current state
func (c *Controller) Search() *Request {
	var req *Request
	c.state, req = Search(c.state)
	c.issued(req)
	return req
}

// Extend runs Extend on the current state
func (c *Controller) Extend() *Request {
	var req *Request
	c.state, req = Extend(c.state)
	c.issued(req)
	return req
}

// Retry runs Retry on the current state
func (c *Controller) Retry() *Request {
	var req *Request
	c.state, req = Retry(c.state)
	c.issued(req)
	return req
}

// Apply folds a response into the state
func (c *Controller) Apply(r Response) Outcome {
	var outcome Outcome
	c.state, outcome = Apply(c.state, r)

	intent := r.Request.Intent.String()
	switch outcome {
	case Applied:
		received := 0
		if r.Page != nil {
			received = len(r.Page.Results)
		}
		slog.Info("profiles loaded",
			"intent", intent,
			"token", r.Request.Token,
			"type", r.Request.Params.Type,
			"received", received,
			"loaded", c.state.ResultCount,
			"total", c.state.MaxCount,
			"page", c.state.Page,
			"next", c.state.NextPage)
		c.publish(eventbus.ProfilesLoadedEvent{
			Intent:      intent,
			Token:       r.Request.Token,
			ProfileType: r.Request.Params.Type,
			Received:    received,
			Loaded:      c.state.ResultCount,
			Total:       c.state.MaxCount,
			Page:        c.state.Page,
			HasNext:     c.state.HasNextPage(),
		})
	case Failed:
		slog.Warn("request failed", "intent", intent, "token", r.Request.Token, "error", r.Err)
		c.publish(eventbus.RequestFailedEvent{Intent: intent, Token: r.Request.Token, Err: c.state.Err})
	case Stale:
		slog.Debug("stale response discarded", "intent", intent, "token", r.Request.Token)
		c.publish(eventbus.ResponseDiscardedEvent{Intent: intent, Token: r.Request.Token})
	}
	return outcome
}

func (c *Controller) issued(req *Request) {
	if req == nil {
		return
	}
	slog.Info("request issued",
		"intent", req.Intent.String(),
		"token", req.Token,
		"type", req.Params.Type,
		"query", req.Params.Query,
		"page", req.Params.Page)
	c.publish(eventbus.SearchIssuedEvent{
		Intent:      req.Intent.String(),
		Token:       req.Token,
		ProfileType: req.Params.Type,
		Query:       req.Params.Query,
		Page:        req.Params.Page,
	})
}

func (c *Controller) publish(e eventbus.DomainEvent) {
	if c.bus != nil {
		c.bus.Publish(e)
	}
}
