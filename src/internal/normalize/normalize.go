// Package normalize maps catalog-specific result items onto bookmeta.BookRecord.
//
// Each catalog has one Extractor. Normalize is pure: it performs no I/O and
// returns the same record for the same input.
package normalize

import (
	"fmt"

	"bookshelf/src/internal/bookmeta"
)

// Extractor converts one decoded result item into a record. The item is
// already known to be a JSON object.
type Extractor func(item map[string]any) (bookmeta.BookRecord, error)

var extractors = map[bookmeta.Source]Extractor{
	bookmeta.GoogleBooks: googleBooksItem,
	bookmeta.OpenLibrary: openLibraryDoc,
}

// Normalize converts raw, a decoded JSON value from src's result list, into a
// BookRecord. A raw value that is not a JSON object fails with
// *bookmeta.MalformedError; missing fields become nil, never "".
func Normalize(src bookmeta.Source, raw any) (bookmeta.BookRecord, error) {
	ex, ok := extractors[src]
	if !ok {
		return bookmeta.BookRecord{}, &bookmeta.MalformedError{Source: src, Err: fmt.Errorf("no extractor for source %q", src)}
	}
	item, ok := raw.(map[string]any)
	if !ok {
		return bookmeta.BookRecord{}, &bookmeta.MalformedError{Source: src, Err: fmt.Errorf("result item is %T, want object", raw)}
	}
	rec, err := ex(item)
	if err != nil {
		return bookmeta.BookRecord{}, &bookmeta.MalformedError{Source: src, Err: err}
	}
	rec.Source = src
	return rec, nil
}

// All normalizes every item, stopping at the first failure.
func All(src bookmeta.Source, items []any) ([]bookmeta.BookRecord, error) {
	out := make([]bookmeta.BookRecord, 0, len(items))
	for i, it := range items {
		rec, err := Normalize(src, it)
		if err != nil {
			return nil, fmt.Errorf("item %d: %w", i, err)
		}
		out = append(out, rec)
	}
	return out, nil
}
