package resource

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"conceptsearch/internal/config"
)

const listingBody = `{
	"count": 50,
	"next": "http://example.org/concepts/person.json?page=2",
	"previous": null,
	"results": [
		{"id": 1, "concept": {"label": "Abcde"}},
		{"id": 2, "concept": {"label": "Abc Ltd"}}
	]
}`

func testSettings() config.ClientSettings {
	s := config.DefaultConfig().Client
	s.RequestsPerSecond = 0
	return s
}

func newTestClient(t *testing.T, handler http.HandlerFunc, settings config.ClientSettings) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c, err := NewClient(srv.URL+"/", settings)
	require.NoError(t, err)
	return c, srv
}

func TestParamsValues(t *testing.T) {
	tests := []struct {
		name   string
		params Params
		want   string
	}{
		{"filtered", Params{Type: "person", Query: "abc"}, "concept__label__icontains=abc&type=person"},
		{"unfiltered", Params{Type: "person"}, "type=person"},
		{"filtered page", Params{Type: "person", Query: "abc", Page: 2}, "concept__label__icontains=abc&page=2&type=person"},
		{"unfiltered page", Params{Type: "places", Page: 3}, "page=3&type=places"},
		{"escaped", Params{Type: "people", Query: "a&b c"}, "concept__label__icontains=a%26b+c&type=people"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.params.Values().Encode())
		})
	}
}

func TestQuerySendsTemplatedRequest(t *testing.T) {
	var gotPath, gotQuery, gotAccept, gotAgent string
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.RawQuery
		gotAccept = r.Header.Get("Accept")
		gotAgent = r.Header.Get("User-Agent")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(listingBody))
	}, testSettings())

	page, err := c.Query(context.Background(), Params{Type: "person", Query: "abc"})
	require.NoError(t, err)

	assert.Equal(t, "/concepts/person.json", gotPath)
	assert.Equal(t, "concept__label__icontains=abc&type=person", gotQuery)
	assert.Equal(t, "application/json", gotAccept)
	assert.Equal(t, "conceptsearch/1", gotAgent)

	assert.Equal(t, 50, page.Count)
	assert.True(t, bool(page.Next))
	require.Len(t, page.Results, 2)
	assert.Equal(t, "Abcde", page.Results[0].Title())
}

func TestQueryCachesIdenticalRequests(t *testing.T) {
	var hits atomic.Int32
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		_, _ = w.Write([]byte(listingBody))
	}, testSettings())

	ctx := context.Background()
	first, err := c.Query(ctx, Params{Type: "person", Query: "abc"})
	require.NoError(t, err)

	// Mutating a returned page must not leak into the cache
	first.Results = append(first.Results[:0], first.Results[1])

	second, err := c.Query(ctx, Params{Type: "person", Query: "abc"})
	require.NoError(t, err)
	assert.Equal(t, int32(1), hits.Load())
	require.Len(t, second.Results, 2)
	assert.Equal(t, 1, second.Results[0].ID)

	_, err = c.Query(ctx, Params{Type: "person", Query: "abc", Page: 2})
	require.NoError(t, err)
	assert.Equal(t, int32(2), hits.Load(), "different params are fetched")

	c.Purge()
	_, err = c.Query(ctx, Params{Type: "person", Query: "abc"})
	require.NoError(t, err)
	assert.Equal(t, int32(3), hits.Load(), "purge forces a refetch")
}

func TestQueryWithoutCache(t *testing.T) {
	var hits atomic.Int32
	settings := testSettings()
	settings.CacheSize = 0
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		_, _ = w.Write([]byte(listingBody))
	}, settings)

	for i := 0; i < 2; i++ {
		_, err := c.Query(context.Background(), Params{Type: "person"})
		require.NoError(t, err)
	}
	assert.Equal(t, int32(2), hits.Load())
}

func TestQueryStatusError(t *testing.T) {
	var hits atomic.Int32
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		http.Error(w, "nope", http.StatusServiceUnavailable)
	}, testSettings())

	_, err := c.Query(context.Background(), Params{Type: "person"})
	require.Error(t, err)

	var se *StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, http.StatusServiceUnavailable, se.Code)
	assert.True(t, IsStatus(err, http.StatusServiceUnavailable))

	_, err = c.Query(context.Background(), Params{Type: "person"})
	require.Error(t, err)
	assert.Equal(t, int32(2), hits.Load(), "failures are not cached")
}

func TestQueryMalformedBody(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"not json", `<html>oops</html>`},
		{"no results", `{"count": 3}`},
		{"results not a list", `{"results": {"id": 1}, "count": 1}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(tt.body))
			}, testSettings())

			_, err := c.Query(context.Background(), Params{Type: "person"})
			require.ErrorIs(t, err, ErrDecode)
		})
	}
}

func TestQueryEmptyResults(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"count": 0, "next": null, "results": null}`))
	}, testSettings())

	page, err := c.Query(context.Background(), Params{Type: "person"})
	require.NoError(t, err)
	assert.NotNil(t, page.Results)
	assert.Empty(t, page.Results)
	assert.False(t, bool(page.Next))
}

func TestQueryHonorsContext(t *testing.T) {
	settings := testSettings()
	settings.RequestsPerSecond = 1
	settings.BurstLimit = 1
	settings.CacheSize = 0
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(listingBody))
	}, settings)

	_, err := c.Query(context.Background(), Params{Type: "person"})
	require.NoError(t, err)

	// The burst is spent, so the next call waits on the limiter and sees the deadline
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, err = c.Query(ctx, Params{Type: "person"})
	require.Error(t, err)
}

func TestQueryWrapsLimiterError(t *testing.T) {
	settings := testSettings()
	settings.RequestsPerSecond = 1
	settings.BurstLimit = 1
	settings.CacheSize = 0
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(listingBody))
	}, settings)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := c.Query(ctx, Params{Type: "person"})
	require.ErrorIs(t, err, context.Canceled)
	assert.Contains(t, err.Error(), "rate limiter")
}

func TestQueryRequiresType(t *testing.T) {
	c, err := NewClient("http://localhost:1", testSettings())
	require.NoError(t, err)

	_, err = c.Query(context.Background(), Params{})
	require.Error(t, err)
}

func TestNewClientRejectsRelativeURL(t *testing.T) {
	_, err := NewClient("/concepts", testSettings())
	require.Error(t, err)
}

func TestURLEscapesType(t *testing.T) {
	c, err := NewClient("https://example.org/base/", testSettings())
	require.NoError(t, err)

	assert.Equal(t, "https://example.org/base/concepts/a%20b.json?type=a+b", c.URL(Params{Type: "a b"}))
}
