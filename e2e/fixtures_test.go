//go:build e2e && unix

package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
)

const pageSize = 10

// CreateTestWorkspace creates a temporary directory used as $HOME
func (tf *TUITestFramework) CreateTestWorkspace() (string, error) {
	tmpDir := tf.t.TempDir()
	tf.workspace = tmpDir
	return tmpDir, nil
}

// StartAgainst launches the app against server with an isolated config and log
func (tf *TUITestFramework) StartAgainst(server *ProfileServer, args ...string) error {
	if tf.workspace == "" {
		if _, err := tf.CreateTestWorkspace(); err != nil {
			return err
		}
	}
	base := []string{
		"--config", filepath.Join(tf.workspace, "config.toml"),
		"--log-file", filepath.Join(tf.workspace, "conceptsearch.log"),
		"--base-url", server.URL,
	}
	return tf.StartApp(append(base, args...)...)
}

// ProfileServer serves paginated profile listings the way the concept service does
type ProfileServer struct {
	*httptest.Server

	mu       sync.Mutex
	labels   map[string][]string
	requests []string
}

// NewProfileServer starts a server listing labels per profile type
func NewProfileServer(labels map[string][]string) *ProfileServer {
	ps := &ProfileServer{labels: labels}
	ps.Server = httptest.NewServer(http.HandlerFunc(ps.serve))
	return ps
}

// Requests returns the query strings received so far
func (ps *ProfileServer) Requests() []string {
	ps.mu.Lock()
	defer ps.mu.Unlock()
	return append([]string(nil), ps.requests...)
}

func (ps *ProfileServer) serve(w http.ResponseWriter, r *http.Request) {
	ps.mu.Lock()
	ps.requests = append(ps.requests, r.URL.RawQuery)
	ps.mu.Unlock()

	profileType := strings.TrimSuffix(strings.TrimPrefix(r.URL.Path, "/concepts/"), ".json")
	all, ok := ps.labels[profileType]
	if !ok {
		http.NotFound(w, r)
		return
	}

	filter := strings.ToLower(r.URL.Query().Get("concept__label__icontains"))
	var matched []string
	for _, l := range all {
		if strings.Contains(strings.ToLower(l), filter) {
			matched = append(matched, l)
		}
	}

	page := 1
	if p := r.URL.Query().Get("page"); p != "" {
		page, _ = strconv.Atoi(p)
	}
	start := (page - 1) * pageSize
	if start > len(matched) {
		http.NotFound(w, r)
		return
	}
	end := min(start+pageSize, len(matched))

	results := make([]map[string]any, 0, end-start)
	for i, l := range matched[start:end] {
		results = append(results, map[string]any{
			"id":      start + i + 1,
			"url":     fmt.Sprintf("%s/profiles/%d/", ps.URL, start+i+1),
			"summary": "Summary of " + l,
			"concept": map[string]any{"label": l, "uri": fmt.Sprintf("http://concepts.example.org/%d", start+i+1)},
		})
	}

	var next any
	if end < len(matched) {
		next = fmt.Sprintf("%s%s?page=%d", ps.URL, r.URL.Path, page+1)
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"count":    len(matched),
		"next":     next,
		"previous": nil,
		"results":  results,
	})
}

// numbered returns n labels "prefix 1" .. "prefix n"
func numbered(prefix string, n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = fmt.Sprintf("%s %d", prefix, i+1)
	}
	return out
}
