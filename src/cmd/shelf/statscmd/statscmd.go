package statscmd

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"bookshelf/src/internal/stats"
	"bookshelf/src/internal/store"
)

// New returns the "stats" command.
func New(open func() (*store.Store, error)) *cobra.Command {
	var top int
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show counts by year, top authors and genre words",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := open()
			if err != nil {
				return err
			}
			entries, err := st.List()
			if err != nil {
				return err
			}
			return Render(cmd.OutOrStdout(), stats.Summarize(entries, top))
		},
	}
	cmd.Flags().IntVar(&top, "top", 10, "how many authors and genre words to show (0 = all)")
	return cmd
}

// Render prints a summary as three aligned tables.
func Render(out io.Writer, s stats.Summary) error {
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintf(w, "Books\t%d\n", s.Total)
	fmt.Fprintln(w, "\nBy year")
	for _, y := range s.ByYear {
		fmt.Fprintf(w, "  %d\t%d\n", y.Year, y.Count)
	}
	fmt.Fprintln(w, "\nTop authors")
	for _, a := range s.TopAuthors {
		fmt.Fprintf(w, "  %s\t%d\n", a.Name, a.Count)
	}
	fmt.Fprintln(w, "\nGenre words")
	for _, g := range s.GenreWords {
		fmt.Fprintf(w, "  %s\t%d\n", g.Name, g.Count)
	}
	return w.Flush()
}
