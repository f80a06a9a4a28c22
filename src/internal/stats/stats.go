package stats

import (
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"bookshelf/src/internal/dates"
	"bookshelf/src/internal/schema"
)

// YearCount is the number of entries published in Year.
type YearCount struct {
	Year  int `json:"year"`
	Count int `json:"count"`
}

// Count pairs a name or word with its frequency.
type Count struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// Summary bundles the figures shown by `shelf stats` and GET /v1/stats.
type Summary struct {
	Total      int         `json:"total"`
	ByYear     []YearCount `json:"by_year"`
	TopAuthors []Count     `json:"top_authors"`
	GenreWords []Count     `json:"genre_words"`
}

// Summarize computes every figure with the same limit for the ranked lists.
func Summarize(entries []schema.Entry, top int) Summary {
	return Summary{
		Total:      len(entries),
		ByYear:     ByYear(entries),
		TopAuthors: TopAuthors(entries, top),
		GenreWords: GenreWords(entries, top),
	}
}

// ByYear counts entries per publication year, ascending. Undated entries are skipped.
func ByYear(entries []schema.Entry) []YearCount {
	counts := map[int]int{}
	for _, e := range entries {
		if y := dates.ExtractYear(e.PublishedDate); y != 0 {
			counts[y]++
		}
	}
	out := make([]YearCount, 0, len(counts))
	for y, n := range counts {
		out = append(out, YearCount{Year: y, Count: n})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Year < out[j].Year })
	return out
}

// TopAuthors ranks author names by how many entries list them. n <= 0 returns all.
func TopAuthors(entries []schema.Entry, n int) []Count {
	counts := map[string]int{}
	for _, e := range entries {
		seen := map[string]bool{}
		for _, a := range e.Authors {
			for _, name := range schema.SplitList(a) {
				if seen[name] {
					continue
				}
				seen[name] = true
				counts[name]++
			}
		}
	}
	return ranked(counts, n)
}

// GenreWords counts lowercased words across categories for a word cloud.
// Words shorter than two letters are dropped. n <= 0 returns all.
func GenreWords(entries []schema.Entry, n int) []Count {
	counts := map[string]int{}
	for _, e := range entries {
		for _, c := range e.Categories {
			for _, w := range words(c) {
				counts[w]++
			}
		}
	}
	return ranked(counts, n)
}

func words(s string) []string {
	fields := strings.FieldsFunc(strings.ToLower(s), func(r rune) bool { return !unicode.IsLetter(r) })
	out := fields[:0]
	for _, f := range fields {
		if utf8.RuneCountInString(f) >= 2 {
			out = append(out, f)
		}
	}
	return out
}

// ranked orders by count descending, then name ascending.
func ranked(counts map[string]int, n int) []Count {
	out := make([]Count, 0, len(counts))
	for k, v := range counts {
		out = append(out, Count{Name: k, Count: v})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Name < out[j].Name
	})
	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out
}
