package lookupcmd

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"bookshelf/src/internal/bookmeta"
	"bookshelf/src/internal/stringsx"
)

// SearchFunc runs one catalog lookup; (*lookup.Client).Search fits.
type SearchFunc func(ctx context.Context, q bookmeta.Query, maxResults int, preferred bookmeta.Source) ([]bookmeta.BookRecord, error)

type Builder struct {
	Search SearchFunc
}

func New(search SearchFunc) Builder { return Builder{Search: search} }

// Command returns "lookup" with its "search" and "isbn" subcommands.
func (b Builder) Command() *cobra.Command {
	cmd := &cobra.Command{Use: "lookup", Short: "Look up book metadata in the online catalogs"}
	cmd.AddCommand(b.Text(), b.ISBN())
	return cmd
}

// Text returns the "lookup search" subcommand.
func (b Builder) Text() *cobra.Command {
	var maxResults int
	var source string
	c := &cobra.Command{
		Use:   "search <terms...>",
		Short: "Free-text search (title, author, keywords)",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			src, err := bookmeta.ParseSource(source)
			if err != nil {
				return err
			}
			q := bookmeta.TextQuery(strings.Join(args, " "))
			recs, err := b.Search(cmd.Context(), q, maxResults, src)
			if err != nil {
				return err
			}
			return Print(cmd.OutOrStdout(), recs)
		},
	}
	c.Flags().IntVar(&maxResults, "max", 10, "maximum number of candidates")
	c.Flags().StringVar(&source, "source", "", "catalog to ask (googlebooks|openlibrary; default: configured primary)")
	return c
}

// ISBN returns the "lookup isbn" subcommand.
func (b Builder) ISBN() *cobra.Command {
	var maxResults int
	c := &cobra.Command{
		Use:   "isbn <isbn>",
		Short: "Exact ISBN lookup with fallback to the secondary catalog",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			recs, err := b.Search(cmd.Context(), bookmeta.ISBNQuery(args[0]), maxResults, "")
			if err != nil {
				return err
			}
			return Print(cmd.OutOrStdout(), recs)
		},
	}
	c.Flags().IntVar(&maxResults, "max", 10, "maximum number of candidates")
	return c
}

// Print writes one numbered candidate per line, or "no results".
func Print(w io.Writer, recs []bookmeta.BookRecord) error {
	if len(recs) == 0 {
		_, err := fmt.Fprintln(w, "no results")
		return err
	}
	for i, r := range recs {
		if _, err := fmt.Fprintln(w, Format(i+1, r)); err != nil {
			return err
		}
	}
	return nil
}

// Format renders a candidate as "[n] title — authors (date) [source]".
func Format(n int, r bookmeta.BookRecord) string {
	title := stringsx.FirstNonEmpty(
		stringsx.JoinNonEmpty(": ", bookmeta.Deref(r.Title), bookmeta.Deref(r.Subtitle)),
		"(untitled)",
	)
	authors := stringsx.FirstNonEmpty(strings.Join(r.Authors, ", "), "unknown author")
	line := fmt.Sprintf("[%d] %s — %s", n, title, authors)
	if d := bookmeta.Deref(r.PublishedDate); d != "" {
		line += " (" + d + ")"
	}
	return line + " [" + r.Source.String() + "]"
}
