package store

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"bookshelf/src/internal/schema"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	return New(filepath.Join(t.TempDir(), "data", "books.yaml"))
}

func TestAddListDelete(t *testing.T) {
	s := newTestStore(t)
	a, err := s.Add(schema.Entry{Title: "  Dune ", Authors: schema.Authors{"Frank Herbert"}, Rating: 5})
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if a.ID == "" || a.Title != "Dune" {
		t.Fatalf("add should assign id and clean title: %+v", a)
	}
	if _, err := os.Stat(s.Path()); err != nil {
		t.Fatalf("stat: %v", err)
	}
	if _, err := s.Add(schema.Entry{Title: "Emma"}); err != nil {
		t.Fatalf("add2: %v", err)
	}
	if _, err := s.Add(schema.Entry{Title: "Dune"}); err != nil {
		t.Fatalf("add3: %v", err)
	}
	list, err := s.List()
	if err != nil || len(list) != 3 {
		t.Fatalf("list: %v %d", err, len(list))
	}

	n, err := s.Delete("Dune")
	if err != nil || n != 2 {
		t.Fatalf("delete by title: n=%d err=%v", n, err)
	}
	list, _ = s.List()
	if len(list) != 1 || list[0].Title != "Emma" {
		t.Fatalf("after delete: %+v", list)
	}
	n, err = s.Delete(list[0].ID)
	if err != nil || n != 1 {
		t.Fatalf("delete by id: n=%d err=%v", n, err)
	}
	if _, err := s.Delete("missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestAddRejectsInvalid(t *testing.T) {
	s := newTestStore(t)
	_, err := s.Add(schema.Entry{Title: "X", Rating: 9})
	var verr *schema.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if _, err := os.Stat(s.Path()); !os.IsNotExist(err) {
		t.Fatalf("nothing should be written on failure")
	}
}

func TestLoadMissingFileIsEmpty(t *testing.T) {
	s := newTestStore(t)
	list, err := s.Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if list == nil || len(list) != 0 {
		t.Fatalf("expected empty non-nil list, got %#v", list)
	}
}

func TestLoadAuthorsAsString(t *testing.T) {
	s := newTestStore(t)
	if err := os.MkdirAll(filepath.Dir(s.Path()), 0o755); err != nil {
		t.Fatal(err)
	}
	doc := "- id: a\n  title: Good Omens\n  authors: Terry Pratchett, Neil Gaiman\n"
	if err := os.WriteFile(s.Path(), []byte(doc), 0o644); err != nil {
		t.Fatal(err)
	}
	list, err := s.Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(list[0].Authors) != 2 || list[0].Authors[1] != "Neil Gaiman" {
		t.Fatalf("authors: %+v", list[0].Authors)
	}
}

func TestLoadInvalidYAML(t *testing.T) {
	s := newTestStore(t)
	_ = os.MkdirAll(filepath.Dir(s.Path()), 0o755)
	_ = os.WriteFile(s.Path(), []byte("{not: [valid"), 0o644)
	if _, err := s.Load(); err == nil {
		t.Fatalf("expected YAML error")
	}
}

func TestCSVRoundTrip(t *testing.T) {
	s := newTestStore(t)
	pages := 412
	if _, err := s.Add(schema.Entry{
		Title: "Dune", Authors: schema.Authors{"Frank Herbert"}, Publisher: "Chilton",
		PublishedDate: "1965", Categories: schema.Authors{"Fiction", "Science Fiction"},
		ISBN13: "9780441013593", PageCount: &pages, DateRead: "2024-03-01", Rating: 4,
		Notes: "spice, \"sand\"", Thumbnail: "https://covers.openlibrary.org/b/id/1-M.jpg", Source: "openlibrary",
	}); err != nil {
		t.Fatalf("add: %v", err)
	}
	var buf bytes.Buffer
	if err := s.ExportCSV(&buf); err != nil {
		t.Fatalf("export: %v", err)
	}
	if !strings.HasPrefix(buf.String(), strings.Join(Columns, ",")+"\n") {
		t.Fatalf("header: %q", buf.String())
	}

	other := newTestStore(t)
	n, err := other.ImportCSV(&buf, true)
	if err != nil || n != 1 {
		t.Fatalf("import: n=%d err=%v", n, err)
	}
	got, _ := other.List()
	e := got[0]
	if e.Title != "Dune" || e.Categories.String() != "Fiction, Science Fiction" || e.Notes != "spice, \"sand\"" {
		t.Fatalf("round trip: %+v", e)
	}
	if e.PageCount == nil || *e.PageCount != 412 || e.Rating != 4 {
		t.Fatalf("numbers lost: %+v", e)
	}
	if e.Thumbnail != "https://covers.openlibrary.org/b/id/1-M.jpg" || e.Source != "openlibrary" {
		t.Fatalf("thumbnail/source lost: %+v", e)
	}
}

func TestImportRepeatedIDs(t *testing.T) {
	s := newTestStore(t)
	n, err := s.ImportCSV(strings.NewReader("id,title\nx1,A\nx1,B\n"), true)
	if err != nil || n != 2 {
		t.Fatalf("import: n=%d err=%v", n, err)
	}
	list, _ := s.List()
	if len(list) != 2 || list[0].ID != "x1" || list[1].ID == "x1" || list[1].ID == "" {
		t.Fatalf("repeated id should be re-issued: %+v", list)
	}
	removed, err := s.Delete("x1")
	if err != nil || removed != 1 {
		t.Fatalf("delete x1: removed=%d err=%v", removed, err)
	}

	if _, err := s.ImportCSV(strings.NewReader("id,title\n"+list[1].ID+",C\n"), false); err != nil {
		t.Fatalf("append: %v", err)
	}
	list, _ = s.List()
	if len(list) != 2 || list[0].ID == list[1].ID || list[0].Title != "B" {
		t.Fatalf("append collision should keep the existing row's id: %+v", list)
	}
}

func TestImportFiveColumnCSV(t *testing.T) {
	in := "title,authors,publisher,publishedDate,categories\n" +
		"Emma,Jane Austen,John Murray,1815,Fiction\n" +
		",,,,\n" +
		"\"Good Omens\",\"Terry Pratchett, Neil Gaiman\",Gollancz,1990,\"Fantasy, Comedy\"\n"
	s := newTestStore(t)
	if _, err := s.Add(schema.Entry{Title: "Kept"}); err != nil {
		t.Fatal(err)
	}
	n, err := s.ImportCSV(strings.NewReader(in), false)
	if err != nil || n != 2 {
		t.Fatalf("import: n=%d err=%v", n, err)
	}
	list, _ := s.List()
	if len(list) != 3 || list[0].Title != "Kept" {
		t.Fatalf("append mode should keep existing rows: %+v", list)
	}
	if len(list[2].Authors) != 2 || list[2].ID == "" {
		t.Fatalf("row not parsed: %+v", list[2])
	}

	n, err = s.ImportCSV(strings.NewReader(in), true)
	if err != nil || n != 2 {
		t.Fatalf("replace: n=%d err=%v", n, err)
	}
	list, _ = s.List()
	if len(list) != 2 {
		t.Fatalf("replace mode should drop existing rows: %d", len(list))
	}
}

func TestImportErrors(t *testing.T) {
	s := newTestStore(t)
	cases := map[string]string{
		"empty":     "",
		"no title":  "authors\nX\n",
		"bad page":  "title,page_count\nX,many\n",
		"bad row":   "title,rating\nX,7\n",
		"no titled": "title,authors\n,Someone\n",
	}
	for name, in := range cases {
		if _, err := s.ImportCSV(strings.NewReader(in), true); err == nil {
			t.Fatalf("%s: expected error", name)
		}
	}
	if _, err := os.Stat(s.Path()); !os.IsNotExist(err) {
		t.Fatalf("failed imports must not write")
	}
}
