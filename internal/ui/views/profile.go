package views

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"conceptsearch/internal/domain"
)

// ListOptions controls how profile rows are laid out
type ListOptions struct {
	Width         int
	Query         string // highlighted in titles
	ShowSummaries bool
	ShowURIs      bool
}

// ItemHeight returns the number of lines every profile takes
func (o ListOptions) ItemHeight() int {
	h := 1
	if o.ShowSummaries {
		h++
	}
	if o.ShowURIs {
		h++
	}
	return h
}

// ProfileRenderer renders profile rows and details
type ProfileRenderer struct {
	styles *Styles
}

// NewProfileRenderer creates a new profile renderer
func NewProfileRenderer(styles *Styles) *ProfileRenderer {
	return &ProfileRenderer{styles: styles}
}

// RenderList renders every profile as ItemHeight lines, marking selected
func (r *ProfileRenderer) RenderList(profiles []domain.Profile, selected int, opts ListOptions) string {
	lines := make([]string, 0, len(profiles)*opts.ItemHeight())
	for i, p := range profiles {
		lines = append(lines, r.RenderProfile(p, i == selected, opts)...)
	}
	return strings.Join(lines, "\n")
}

// RenderProfile renders a single profile row. Every line is cut to opts.Width
// so rows never wrap.
func (r *ProfileRenderer) RenderProfile(p domain.Profile, isSelected bool, opts ListOptions) []string {
	width := opts.Width
	if width <= 0 {
		width = 80
	}

	base := lipgloss.NewStyle()
	if isSelected {
		base = r.styles.SelectionBg
	}

	cursor := "  "
	if isSelected {
		cursor = "> "
	}

	// Title line: cursor, title, tags
	tags := ""
	if titles := p.TagTitles(); len(titles) > 0 {
		tags = " [" + strings.Join(titles, ", ") + "]"
	}
	titleWidth := width - runewidth.StringWidth(cursor)
	title := truncate(p.Title(), titleWidth)
	tags = truncate(tags, titleWidth-runewidth.StringWidth(title))

	nameStyle := base.Bold(isSelected)
	parts := []string{
		base.Render(cursor),
		r.highlightMatch(title, opts.Query, nameStyle.Foreground(lipgloss.Color("226")), nameStyle),
	}
	if tags != "" {
		parts = append(parts, r.styles.Tag.Inherit(base).Render(tags))
	}
	lines := []string{r.pad(strings.Join(parts, ""), width, base)}

	if opts.ShowSummaries {
		summary := strings.Join(strings.Fields(p.Summary), " ")
		style := r.styles.Summary.Inherit(base)
		if summary == "" {
			summary = "no summary"
			style = r.styles.Dim.Inherit(base)
		}
		lines = append(lines, r.pad(base.Render("    ")+style.Render(truncate(summary, width-4)), width, base))
	}

	if opts.ShowURIs {
		uri := p.Concept.URI
		if uri == "" {
			uri = p.URL
		}
		lines = append(lines, r.pad(base.Render("    ")+r.styles.Dim.Inherit(base).Render(truncate(uri, width-4)), width, base))
	}

	return lines
}

// RenderDetail renders every known field of a profile followed by its raw
// document
func (r *ProfileRenderer) RenderDetail(p domain.Profile) string {
	var b strings.Builder

	b.WriteString(r.styles.Title.Render(p.Title()))
	b.WriteString("\n\n")

	field := func(label, value string) {
		if value == "" {
			return
		}
		b.WriteString(fmt.Sprintf("  %s %s\n", r.styles.Label.Render(fmt.Sprintf("%-10s", label)), value))
	}

	if p.ID != 0 {
		field("ID", fmt.Sprintf("%d", p.ID))
	}
	field("URL", p.URL)
	field("Concept", p.Concept.URI)
	field("Type", p.Concept.Typed.Label)
	if p.Creator != nil {
		creator := p.Creator.FullName
		if creator == "" {
			creator = p.Creator.Username
		}
		field("Creator", creator)
	}
	field("Tags", strings.Join(p.TagTitles(), ", "))

	if p.Summary != "" {
		b.WriteString("\n")
		b.WriteString(r.styles.Section.Render("Summary"))
		b.WriteString("\n")
		b.WriteString(p.Summary)
		b.WriteString("\n")
	}

	if len(p.Raw) > 0 {
		b.WriteString("\n")
		b.WriteString(r.styles.Section.Render("Document"))
		b.WriteString("\n")
		var out bytes.Buffer
		if err := json.Indent(&out, p.Raw, "", "  "); err != nil {
			b.Write(p.Raw)
		} else {
			b.Write(out.Bytes())
		}
		b.WriteString("\n")
	}

	return b.String()
}

// highlightMatch renders the first case-insensitive occurrence of query in text
// with highlightStyle
func (r *ProfileRenderer) highlightMatch(text, query string, highlightStyle, normalStyle lipgloss.Style) string {
	lowerText := strings.ToLower(text)
	lowerQuery := strings.ToLower(query)

	// Lowercasing may change byte lengths, in which case offsets don't line up
	if query == "" || len(lowerText) != len(text) || len(lowerQuery) != len(query) {
		return normalStyle.Render(text)
	}

	index := strings.Index(lowerText, lowerQuery)
	if index == -1 {
		return normalStyle.Render(text)
	}

	before := text[:index]
	match := text[index : index+len(query)]
	after := text[index+len(query):]

	var result []string
	if before != "" {
		result = append(result, normalStyle.Render(before))
	}
	result = append(result, highlightStyle.Render(match))
	if after != "" {
		result = append(result, normalStyle.Render(after))
	}

	return strings.Join(result, "")
}

// pad fills a rendered line up to width so the selection background spans the row
func (r *ProfileRenderer) pad(line string, width int, style lipgloss.Style) string {
	if gap := width - lipgloss.Width(line); gap > 0 {
		return line + style.Render(strings.Repeat(" ", gap))
	}
	return line
}

func truncate(s string, width int) string {
	if width <= 0 {
		return ""
	}
	return runewidth.Truncate(s, width, "…")
}
