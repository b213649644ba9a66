package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Profile is a concept profile as returned by the server. The record is opaque:
// Raw always holds the original JSON object, the other fields are decoded on a
// best-effort basis for display.
type Profile struct {
	ID      int      `json:"id"`
	URL     string   `json:"url"`
	Summary string   `json:"summary"`
	Concept Concept  `json:"concept"`
	Creator *Creator `json:"creator"`
	Tags    []Tag    `json:"tags"`

	Raw json.RawMessage `json:"-"`
}

// Concept is the concept a profile describes
type Concept struct {
	ID    int         `json:"id"`
	URI   string      `json:"uri"`
	Label string      `json:"label"`
	Typed ConceptType `json:"typed"`
}

// ConceptType is the type a concept is classified under
type ConceptType struct {
	URI   string `json:"uri"`
	Label string `json:"label"`
}

// Creator is the user who wrote the profile
type Creator struct {
	ID       int    `json:"id"`
	Username string `json:"username"`
	FullName string `json:"full_name"`
}

// Tag is a blog tag attached to a profile
type Tag struct {
	ID    int    `json:"id"`
	Slug  string `json:"slug"`
	Title string `json:"title"`
}

// profileFields is Profile without its methods, used to avoid recursion in UnmarshalJSON
type profileFields Profile

// UnmarshalJSON keeps the raw object and decodes whatever known fields it can.
// A profile is only rejected when it is not a JSON object at all.
func (p *Profile) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return fmt.Errorf("profile is not a JSON object: %.40s", trimmed)
	}

	raw := make(json.RawMessage, len(trimmed))
	copy(raw, trimmed)

	var fields profileFields
	if err := json.Unmarshal(raw, &fields); err != nil {
		// Unexpected shapes for the display fields are tolerated
		*p = Profile{Raw: raw}
		return nil
	}
	*p = Profile(fields)
	p.Raw = raw
	return nil
}

// MarshalJSON returns the original object untouched
func (p Profile) MarshalJSON() ([]byte, error) {
	if len(p.Raw) > 0 {
		return p.Raw, nil
	}
	return json.Marshal(profileFields(p))
}

// Title returns the best available display name for the profile
func (p Profile) Title() string {
	switch {
	case p.Concept.Label != "":
		return p.Concept.Label
	case p.URL != "":
		return p.URL
	case p.ID != 0:
		return fmt.Sprintf("profile %d", p.ID)
	default:
		return "(untitled profile)"
	}
}

// TagTitles returns the titles of all tags in order
func (p Profile) TagTitles() []string {
	titles := make([]string, 0, len(p.Tags))
	for _, t := range p.Tags {
		if t.Title != "" {
			titles = append(titles, t.Title)
		}
	}
	return titles
}

// ProfilePage is one page of a profile listing
type ProfilePage struct {
	Results  []Profile `json:"results"`
	Count    int       `json:"count"`
	Next     Truthy    `json:"next"`
	Previous Truthy    `json:"previous"`
}

// Truthy is a loosely typed flag. The listing API reports "next" as a URL or null,
// so any of bool, string, number or null is accepted and reduced to a bool.
type Truthy bool

// UnmarshalJSON implements the json.Unmarshaler interface for Truthy.
func (t *Truthy) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		*t = false
		return nil
	}

	var b bool
	if err := json.Unmarshal(trimmed, &b); err == nil {
		*t = Truthy(b)
		return nil
	}

	var s string
	if err := json.Unmarshal(trimmed, &s); err == nil {
		*t = Truthy(s != "")
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(trimmed, &n); err == nil {
		f, err := strconv.ParseFloat(n.String(), 64)
		if err != nil {
			return fmt.Errorf("truthy number %q: %w", n, err)
		}
		*t = Truthy(f != 0)
		return nil
	}

	// Objects and arrays count as true
	if strings.HasPrefix(string(trimmed), "{") || strings.HasPrefix(string(trimmed), "[") {
		*t = true
		return nil
	}

	return fmt.Errorf("value is not a recognizable truthy value: %s", trimmed)
}
