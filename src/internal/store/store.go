package store

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"bookshelf/src/internal/sanitize"
	"bookshelf/src/internal/schema"
)

// DefaultPath is the reading log location relative to the working directory.
const DefaultPath = "data/books.yaml"

// ErrNotFound is returned by Delete when nothing matched.
var ErrNotFound = errors.New("no matching entry")

// Store is a reading log kept in a single YAML file. Methods are safe for
// concurrent use within one process.
type Store struct {
	path string
	mu   sync.Mutex
}

// New returns a store backed by path (DefaultPath when empty).
func New(path string) *Store {
	if strings.TrimSpace(path) == "" {
		path = DefaultPath
	}
	return &Store{path: path}
}

// Path returns the backing file.
func (s *Store) Path() string { return s.path }

// Load reads and validates every entry. A missing file is an empty log.
func (s *Store) Load() ([]schema.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load()
}

// List is Load under the name the CLI and API use.
func (s *Store) List() ([]schema.Entry, error) { return s.Load() }

// Add assigns an id when missing, cleans and validates the entry, and appends it.
func (s *Store) Add(e schema.Entry) (schema.Entry, error) {
	if strings.TrimSpace(e.ID) == "" {
		e.ID = schema.NewID()
	}
	sanitize.CleanEntry(&e)
	if err := e.Validate(); err != nil {
		return schema.Entry{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	entries, err := s.load()
	if err != nil {
		return schema.Entry{}, err
	}
	for _, x := range entries {
		if x.ID == e.ID {
			return schema.Entry{}, fmt.Errorf("duplicate id %q", e.ID)
		}
	}
	entries = append(entries, e)
	if err := s.save(entries); err != nil {
		return schema.Entry{}, err
	}
	return e, nil
}

// Delete removes every entry whose id or exact title equals idOrTitle and
// returns how many were removed.
func (s *Store) Delete(idOrTitle string) (int, error) {
	key := strings.TrimSpace(idOrTitle)
	if key == "" {
		return 0, errors.New("id or title required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	entries, err := s.load()
	if err != nil {
		return 0, err
	}
	kept := entries[:0]
	removed := 0
	for _, e := range entries {
		if e.ID == key || e.Title == key {
			removed++
			continue
		}
		kept = append(kept, e)
	}
	if removed == 0 {
		return 0, fmt.Errorf("%w: %s", ErrNotFound, key)
	}
	return removed, s.save(kept)
}

// Replace overwrites the log with entries after validating each one. A
// missing id, or one already used by an earlier entry, gets a fresh id.
func (s *Store) Replace(entries []schema.Entry) error {
	seen := make(map[string]bool, len(entries))
	for i := range entries {
		id := strings.TrimSpace(entries[i].ID)
		if id == "" || seen[id] {
			id = schema.NewID()
		}
		seen[id] = true
		entries[i].ID = id
		sanitize.CleanEntry(&entries[i])
		if err := entries[i].Validate(); err != nil {
			return fmt.Errorf("entry %d: %w", i+1, err)
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.save(entries)
}

func (s *Store) load() ([]schema.Entry, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return []schema.Entry{}, nil
	}
	if err != nil {
		return nil, err
	}
	var entries []schema.Entry
	if err := yaml.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("invalid YAML in %s: %w", s.path, err)
	}
	for i := range entries {
		if err := entries[i].Validate(); err != nil {
			return nil, fmt.Errorf("invalid entry %d in %s: %w", i+1, s.path, err)
		}
	}
	if entries == nil {
		entries = []schema.Entry{}
	}
	return entries, nil
}

// save writes through a temp file in the same directory and renames it into place.
func (s *Store) save(entries []schema.Entry) error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	buf, err := yaml.Marshal(entries)
	if err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, ".books-*.yaml")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(buf); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), s.path)
}
