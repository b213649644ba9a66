package resource

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"conceptsearch/internal/config"
	"conceptsearch/internal/domain"
)

// Query parameter names understood by the listing endpoint
const (
	ParamLabelContains = "concept__label__icontains"
	ParamType          = "type"
	ParamPage          = "page"
)

// maxBodySize bounds how much of a listing response is read
const maxBodySize = 16 << 20

// Params selects one page of a profile listing
type Params struct {
	Type  string
	Query string // label filter, omitted when empty
	Page  int    // omitted when zero
}

// Values encodes the parameters as sent on the wire
func (p Params) Values() url.Values {
	v := url.Values{}
	if p.Query != "" {
		v.Set(ParamLabelContains, p.Query)
	}
	v.Set(ParamType, p.Type)
	if p.Page > 0 {
		v.Set(ParamPage, strconv.Itoa(p.Page))
	}
	return v
}

// ProfileResource fetches profile listings
type ProfileResource interface {
	Query(ctx context.Context, p Params) (*domain.ProfilePage, error)
}

// Client is an HTTP ProfileResource for /concepts/{type}.json
type Client struct {
	baseURL   string
	client    *http.Client
	limiter   *rate.Limiter
	cache     *ResponseCache
	userAgent string
}

// NewClient creates and configures a new Client
func NewClient(baseURL string, cfg config.ClientSettings) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid base url %q", baseURL)
	}

	limit := rate.Inf
	if cfg.RequestsPerSecond > 0 {
		limit = rate.Limit(cfg.RequestsPerSecond)
	}

	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		client: &http.Client{
			Timeout: time.Duration(cfg.TimeoutSeconds) * time.Second,
		},
		limiter:   rate.NewLimiter(limit, cfg.BurstLimit),
		userAgent: cfg.UserAgent,
	}
	if cfg.CacheSize > 0 {
		c.cache = NewResponseCache(cfg.CacheSize, time.Duration(cfg.CacheTTLSeconds)*time.Second)
	}
	return c, nil
}

// URL returns the request URL for p
func (c *Client) URL(p Params) string {
	return fmt.Sprintf("%s/concepts/%s.json?%s", c.baseURL, url.PathEscape(p.Type), p.Values().Encode())
}

// Query fetches a single page of profiles. Identical requests are served from
// the cache; only successful responses are cached.
func (c *Client) Query(ctx context.Context, p Params) (*domain.ProfilePage, error) {
	if p.Type == "" {
		return nil, fmt.Errorf("profile type is required")
	}

	target := c.URL(p)
	if c.cache != nil {
		if page, ok := c.cache.Get(target); ok {
			slog.Debug("listing served from cache", "url", target)
			return page, nil
		}
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	slog.Debug("listing fetched", "url", target, "status", resp.StatusCode, "elapsed", time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// Drain so the connection can be reused
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodySize))
		return nil, &StatusError{Code: resp.StatusCode, URL: target}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	page, err := decodePage(body)
	if err != nil {
		return nil, err
	}

	if c.cache != nil {
		c.cache.Add(target, page)
	}
	return page, nil
}

// Purge empties the response cache
func (c *Client) Purge() {
	if c.cache != nil {
		c.cache.Purge()
	}
}

// decodePage parses a listing body. "results" must be present; a listing
// without it is not something the client can display.
func decodePage(body []byte) (*domain.ProfilePage, error) {
	var probe map[string]json.RawMessage
	if err := json.Unmarshal(body, &probe); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	if _, ok := probe["results"]; !ok {
		return nil, fmt.Errorf("%w: missing results", ErrDecode)
	}

	var page domain.ProfilePage
	if err := json.Unmarshal(body, &page); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	if page.Results == nil {
		page.Results = []domain.Profile{}
	}
	return &page, nil
}
