package sanitize

import (
	"net/url"
	"strings"

	"bookshelf/src/internal/schema"
)

// CleanString trims and removes ASCII control characters except tab/newline/carriage
// return up to max runes (if max <= 0, no truncation).
func CleanString(s string, max int) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return s
	}
	var b strings.Builder
	n := 0
	for _, r := range s {
		if r == '\n' || r == '\t' || r == '\r' || (r >= 0x20 && r != 0x7f) {
			b.WriteRune(r)
			n++
			if max > 0 && n >= max {
				break
			}
		}
	}
	return strings.TrimSpace(b.String())
}

// CleanURL returns a validated http/https URL or empty string.
func CleanURL(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return ""
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return ""
	}
	return u.String()
}

// CleanList trims each item, drops blanks and exact duplicates, and keeps
// the original order.
func CleanList(items []string, max int) schema.Authors {
	if len(items) == 0 {
		return nil
	}
	seen := map[string]bool{}
	out := make(schema.Authors, 0, len(items))
	for _, it := range items {
		it = CleanString(it, max)
		if it == "" || seen[it] {
			continue
		}
		seen[it] = true
		out = append(out, it)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// CleanEntry applies conservative sanitization to every string in the entry.
func CleanEntry(e *schema.Entry) {
	if e == nil {
		return
	}
	e.ID = CleanString(e.ID, 64)
	e.Title = CleanString(e.Title, 512)
	e.Authors = CleanList(e.Authors, 256)
	e.Publisher = CleanString(e.Publisher, 512)
	e.PublishedDate = CleanString(e.PublishedDate, 32)
	e.Categories = CleanList(e.Categories, 128)
	e.ISBN10 = CleanString(e.ISBN10, 32)
	e.ISBN13 = CleanString(e.ISBN13, 32)
	e.Thumbnail = CleanURL(e.Thumbnail)
	e.Source = CleanString(e.Source, 32)
	e.DateRead = CleanString(e.DateRead, 32)
	e.Notes = CleanString(e.Notes, 12000)
}
