package addcmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"bookshelf/src/cmd/shelf/lookupcmd"
	"bookshelf/src/internal/bookmeta"
	"bookshelf/src/internal/dates"
	"bookshelf/src/internal/schema"
	"bookshelf/src/internal/store"
)

// StoreFunc opens the reading log.
type StoreFunc func() (*store.Store, error)

type Builder struct {
	Search lookupcmd.SearchFunc
	Store  StoreFunc
}

func New(search lookupcmd.SearchFunc, st StoreFunc) Builder {
	return Builder{Search: search, Store: st}
}

type options struct {
	title, publisher, published string
	authors, categories         []string
	isbn, query                 string
	pick                        int
	read                        string
	rating                      int
	notes                       string
}

// Command returns the "add" command.
func (b Builder) Command() *cobra.Command {
	var o options
	c := &cobra.Command{
		Use:   "add",
		Short: "Add a book to the reading log (from a catalog lookup or manual fields)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := b.build(cmd, o)
			if err != nil {
				return err
			}
			st, err := b.Store()
			if err != nil {
				return err
			}
			saved, err := st.Add(e)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "added %s: %s\n", saved.ID, saved.Title)
			return err
		},
	}
	f := c.Flags()
	f.StringVar(&o.title, "title", "", "book title")
	f.StringArrayVar(&o.authors, "author", nil, "author name (repeatable or comma-delimited)")
	f.StringVar(&o.publisher, "publisher", "", "publisher")
	f.StringVar(&o.published, "published", "", "publication date (YYYY or YYYY-MM-DD)")
	f.StringArrayVar(&o.categories, "category", nil, "category (repeatable or comma-delimited)")
	f.StringVar(&o.isbn, "isbn", "", "look the book up by ISBN")
	f.StringVar(&o.query, "query", "", "look the book up by free text")
	f.IntVar(&o.pick, "pick", 1, "which lookup candidate to save (1-based)")
	f.StringVar(&o.read, "read", "", "date finished (YYYY-MM-DD, default today)")
	f.IntVar(&o.rating, "rating", 0, "rating 1-5 (0 = unrated)")
	f.StringVar(&o.notes, "notes", "", "free-form notes")
	c.MarkFlagsMutuallyExclusive("isbn", "query")
	return c
}

func (b Builder) build(cmd *cobra.Command, o options) (schema.Entry, error) {
	var e schema.Entry
	switch {
	case strings.TrimSpace(o.isbn) != "" || strings.TrimSpace(o.query) != "":
		q := bookmeta.TextQuery(o.query)
		if strings.TrimSpace(o.isbn) != "" {
			q = bookmeta.ISBNQuery(o.isbn)
		}
		rec, err := b.pick(cmd, q, o.pick)
		if err != nil {
			return e, err
		}
		e = schema.FromRecord(rec)
	case strings.TrimSpace(o.title) == "":
		return e, errors.New("add: --title, --isbn or --query is required")
	}
	overlay(&e, o)
	return e, nil
}

// pick looks q up and returns candidate n, echoing the choice.
func (b Builder) pick(cmd *cobra.Command, q bookmeta.Query, n int) (bookmeta.BookRecord, error) {
	if n < 1 {
		return bookmeta.BookRecord{}, fmt.Errorf("add: --pick must be at least 1")
	}
	recs, err := b.Search(cmd.Context(), q, max(n, 10), "")
	if err != nil {
		return bookmeta.BookRecord{}, err
	}
	if len(recs) == 0 {
		return bookmeta.BookRecord{}, fmt.Errorf("add: no catalog results for %q", q.Value())
	}
	if n > len(recs) {
		_ = lookupcmd.Print(cmd.ErrOrStderr(), recs)
		return bookmeta.BookRecord{}, fmt.Errorf("add: --pick %d but only %d candidates", n, len(recs))
	}
	_, _ = fmt.Fprintln(cmd.OutOrStdout(), lookupcmd.Format(n, recs[n-1]))
	return recs[n-1], nil
}

// overlay applies explicit flags on top of whatever the lookup produced.
func overlay(e *schema.Entry, o options) {
	set := func(dst *string, v string) {
		if v = strings.TrimSpace(v); v != "" {
			*dst = v
		}
	}
	set(&e.Title, o.title)
	set(&e.Publisher, o.publisher)
	set(&e.PublishedDate, o.published)
	set(&e.Notes, o.notes)
	if a := splitAll(o.authors); len(a) > 0 {
		e.Authors = a
	}
	if c := splitAll(o.categories); len(c) > 0 {
		e.Categories = c
	}
	e.DateRead = strings.TrimSpace(o.read)
	if e.DateRead == "" {
		e.DateRead = dates.NowISO()
	}
	e.Rating = o.rating
}

func splitAll(vals []string) schema.Authors {
	var out schema.Authors
	for _, v := range vals {
		out = append(out, schema.SplitList(v)...)
	}
	return out
}
