package resource

import (
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"conceptsearch/internal/domain"
)

// ResponseCache holds decoded listing pages keyed by request URL. Listing GETs are
// idempotent, so identical parameter sets are answered from memory until the
// entry expires or is evicted.
type ResponseCache struct {
	lru *expirable.LRU[string, *domain.ProfilePage]
}

// NewResponseCache creates a cache of at most size pages. A ttl of zero keeps
// entries until they are evicted.
func NewResponseCache(size int, ttl time.Duration) *ResponseCache {
	return &ResponseCache{
		lru: expirable.NewLRU[string, *domain.ProfilePage](size, nil, ttl),
	}
}

// Get returns a copy of the cached page so callers may append to its results
func (c *ResponseCache) Get(key string) (*domain.ProfilePage, bool) {
	page, ok := c.lru.Get(key)
	if !ok {
		return nil, false
	}
	return clonePage(page), true
}

// Add stores a copy of page
func (c *ResponseCache) Add(key string, page *domain.ProfilePage) {
	c.lru.Add(key, clonePage(page))
}

// Purge drops every entry
func (c *ResponseCache) Purge() {
	c.lru.Purge()
}

// Len returns the number of cached pages
func (c *ResponseCache) Len() int {
	return c.lru.Len()
}

func clonePage(page *domain.ProfilePage) *domain.ProfilePage {
	cp := *page
	cp.Results = append([]domain.Profile(nil), page.Results...)
	return &cp
}
