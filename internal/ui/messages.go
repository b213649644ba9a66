package ui

import (
	"conceptsearch/internal/eventbus"
	"conceptsearch/internal/search"
)

// EventMsg wraps a domain event for the UI
type EventMsg struct {
	Event eventbus.DomainEvent
}

// profilesMsg carries the outcome of a profile request
type profilesMsg struct {
	resp search.Response
}

// pagerClosedMsg is sent when the ov pager returns control
type pagerClosedMsg struct {
	err error
}
