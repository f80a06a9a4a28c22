package stats

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"bookshelf/src/internal/schema"
)

func sample() []schema.Entry {
	return []schema.Entry{
		{Title: "A", Authors: schema.Authors{"Ursula K. Le Guin"}, PublishedDate: "1969-03-01", Categories: schema.Authors{"Science Fiction"}},
		{Title: "B", Authors: schema.Authors{"Ursula K. Le Guin"}, PublishedDate: "1974", Categories: schema.Authors{"Fiction"}},
		{Title: "C", Authors: schema.Authors{"Terry Pratchett, Neil Gaiman"}, PublishedDate: "1990", Categories: schema.Authors{"Fantasy & Fiction"}},
		{Title: "D", Authors: schema.Authors{"Neil Gaiman", "Neil Gaiman"}, PublishedDate: "Nov 1990"},
		{Title: "E"},
	}
}

func TestByYear(t *testing.T) {
	assert.Equal(t, []YearCount{{1969, 1}, {1974, 1}, {1990, 2}}, ByYear(sample()))
	assert.Empty(t, ByYear(nil))
}

func TestTopAuthors(t *testing.T) {
	got := TopAuthors(sample(), 0)
	assert.Equal(t, []Count{
		{"Neil Gaiman", 2},
		{"Ursula K. Le Guin", 2},
		{"Terry Pratchett", 1},
	}, got)
	assert.Len(t, TopAuthors(sample(), 1), 1)
}

func TestGenreWords(t *testing.T) {
	got := GenreWords(sample(), 0)
	assert.Equal(t, []Count{
		{"fiction", 3},
		{"fantasy", 1},
		{"science", 1},
	}, got)
}

func TestSummarize(t *testing.T) {
	s := Summarize(sample(), 2)
	assert.Equal(t, 5, s.Total)
	assert.Len(t, s.TopAuthors, 2)
	assert.Len(t, s.GenreWords, 2)
	assert.Len(t, s.ByYear, 3)
}
