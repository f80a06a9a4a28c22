// Package bookmeta defines the catalog-independent book record produced by
// metadata lookups, the query forms accepted by lookups, and the error
// taxonomy shared by the lookup and normalize packages.
package bookmeta

import (
	"fmt"
	"strings"
	"unicode"
)

// Source identifies the external catalog that produced a record.
type Source string

const (
	// GoogleBooks is the primary catalog (volumes API, results under "items").
	GoogleBooks Source = "googlebooks"
	// OpenLibrary is the secondary catalog (search API, results under "docs").
	OpenLibrary Source = "openlibrary"
)

// Sources lists every known catalog in default preference order.
var Sources = []Source{GoogleBooks, OpenLibrary}

// Valid reports whether s names a known catalog.
func (s Source) Valid() bool {
	for _, k := range Sources {
		if s == k {
			return true
		}
	}
	return false
}

func (s Source) String() string { return string(s) }

// ParseSource maps a user-supplied name onto a Source. The empty string
// yields the empty Source, which lookups read as "use the configured primary".
func ParseSource(name string) (Source, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return "", nil
	}
	s := Source(name)
	if !s.Valid() {
		return "", fmt.Errorf("%w: unknown source %q", ErrInvalidQuery, name)
	}
	return s, nil
}

// BookRecord is the normalized shape of one catalog result. Nil pointers and
// nil slices mean the catalog did not provide the field; a pointer to "" means
// it was provided but empty.
type BookRecord struct {
	Source        Source   `json:"source" yaml:"source"`
	ExternalID    string   `json:"external_id" yaml:"external_id"`
	Title         *string  `json:"title" yaml:"title"`
	Subtitle      *string  `json:"subtitle" yaml:"subtitle"`
	Authors       []string `json:"authors" yaml:"authors"`
	Publisher     *string  `json:"publisher" yaml:"publisher"`
	PublishedDate *string  `json:"published_date" yaml:"published_date"`
	PageCount     *int     `json:"page_count" yaml:"page_count"`
	Categories    []string `json:"categories" yaml:"categories"`
	Language      *string  `json:"language" yaml:"language"`
	ISBN10        *string  `json:"isbn_10" yaml:"isbn_10"`
	ISBN13        *string  `json:"isbn_13" yaml:"isbn_13"`
	ThumbnailURL  *string  `json:"thumbnail_url" yaml:"thumbnail_url"`
	InfoLink      *string  `json:"info_link" yaml:"info_link"`
}

// Query is either a free-text search or an ISBN lookup.
type Query struct {
	value string
	isbn  bool
}

// TextQuery builds a free-text query. Surrounding whitespace is dropped.
func TextQuery(s string) Query { return Query{value: strings.TrimSpace(s)} }

// ISBNQuery builds an identifier query; hyphens and whitespace are stripped.
func ISBNQuery(s string) Query { return Query{value: CleanISBN(s), isbn: true} }

// IsISBN reports whether q is an identifier query.
func (q Query) IsISBN() bool { return q.isbn }

// Value returns the trimmed text or the cleaned identifier.
func (q Query) Value() string { return q.value }

// Validate fails with ErrInvalidQuery when nothing is left to search for.
func (q Query) Validate() error {
	if q.value == "" {
		if q.isbn {
			return fmt.Errorf("%w: empty isbn", ErrInvalidQuery)
		}
		return fmt.Errorf("%w: empty search text", ErrInvalidQuery)
	}
	return nil
}

// Key renders q for cache keys and logs: "isbn:<n>" or "q:<text>".
func (q Query) Key() string {
	if q.isbn {
		return "isbn:" + q.value
	}
	return "q:" + q.value
}

// CleanISBN removes hyphens and whitespace. It does not check length or
// checksum digits.
func CleanISBN(s string) string {
	return strings.Map(func(r rune) rune {
		if r == '-' || unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
}

// Str returns a pointer to s, for building records by hand.
func Str(s string) *string { return &s }

// Deref returns *p or "" when p is nil.
func Deref(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}
