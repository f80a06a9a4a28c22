package store

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"bookshelf/src/internal/schema"
)

// Columns is the export header. Import accepts any subset in any order.
var Columns = []string{
	"id", "title", "authors", "publisher", "publishedDate", "categories",
	"isbn_10", "isbn_13", "page_count", "date_read", "rating", "notes",
	"thumbnail", "source",
}

// ExportCSV writes every entry with the Columns header.
func (s *Store) ExportCSV(w io.Writer) error {
	entries, err := s.Load()
	if err != nil {
		return err
	}
	return WriteCSV(w, entries)
}

// WriteCSV encodes entries. Multi-valued cells are joined with ", ".
func WriteCSV(w io.Writer, entries []schema.Entry) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Columns); err != nil {
		return err
	}
	for _, e := range entries {
		pages := ""
		if e.PageCount != nil {
			pages = strconv.Itoa(*e.PageCount)
		}
		rating := ""
		if e.Rating > 0 {
			rating = strconv.Itoa(e.Rating)
		}
		row := []string{
			e.ID, e.Title, e.Authors.String(), e.Publisher, e.PublishedDate,
			e.Categories.String(), e.ISBN10, e.ISBN13, pages, e.DateRead, rating, e.Notes,
			e.Thumbnail, e.Source,
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// ImportCSV reads rows and either replaces the log or appends to it. It
// returns the number of rows imported. Nothing is written when any row fails.
func (s *Store) ImportCSV(r io.Reader, replace bool) (int, error) {
	rows, err := ReadCSV(r)
	if err != nil {
		return 0, err
	}
	n := len(rows)
	if !replace {
		existing, err := s.Load()
		if err != nil {
			return 0, err
		}
		rows = append(existing, rows...)
	}
	if err := s.Replace(rows); err != nil {
		return 0, err
	}
	return n, nil
}

// ReadCSV decodes rows by header name. Unknown columns are ignored and
// blank lines skipped.
func ReadCSV(r io.Reader) ([]schema.Entry, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, errors.New("empty CSV")
	}
	if err != nil {
		return nil, err
	}
	idx := map[string]int{}
	for i, h := range header {
		idx[normalizeHeader(h)] = i
	}
	if _, ok := idx["title"]; !ok {
		return nil, errors.New("CSV header has no title column")
	}
	var out []schema.Entry
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		cell := func(name string) string {
			if i, ok := idx[name]; ok && i < len(rec) {
				return strings.TrimSpace(rec[i])
			}
			return ""
		}
		if blank(rec) {
			continue
		}
		e := schema.Entry{
			ID:            cell("id"),
			Title:         cell("title"),
			Authors:       schema.SplitList(cell("authors")),
			Publisher:     cell("publisher"),
			PublishedDate: cell("publisheddate"),
			Categories:    schema.SplitList(cell("categories")),
			ISBN10:        cell("isbn10"),
			ISBN13:        cell("isbn13"),
			DateRead:      cell("dateread"),
			Notes:         cell("notes"),
			Thumbnail:     cell("thumbnail"),
			Source:        cell("source"),
		}
		if v := cell("pagecount"); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				return nil, fmt.Errorf("line %d: page_count %q is not a number", line, v)
			}
			e.PageCount = &n
		}
		if v := cell("rating"); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				return nil, fmt.Errorf("line %d: rating %q is not a number", line, v)
			}
			e.Rating = n
		}
		if err := e.Validate(); err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		out = append(out, e)
	}
	return out, nil
}

// normalizeHeader folds "publishedDate", "published_date" and "Published Date" together.
func normalizeHeader(h string) string {
	h = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
	return strings.NewReplacer("_", "", " ", "", "-", "").Replace(h)
}

func blank(rec []string) bool {
	for _, c := range rec {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
