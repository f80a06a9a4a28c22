package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"bookshelf/src/internal/store"
)

func newListCmd(open func() (*store.Store, error)) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the reading log",
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
			if len(entries) == 0 {
				_, err := fmt.Fprintln(cmd.OutOrStdout(), "reading log is empty")
				return err
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tTITLE\tAUTHORS\tREAD\tRATING")
			for _, e := range entries {
				rating := strings.Repeat("*", e.Rating)
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", e.ID, e.Title, e.Authors.String(), e.DateRead, rating)
			}
			return w.Flush()
		},
	}
}

func newDeleteCmd(open func() (*store.Store, error)) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id-or-title>",
		Short: "Delete every entry with the given id or exact title",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := open()
			if err != nil {
				return err
			}
			n, err := st.Delete(strings.Join(args, " "))
			if err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "deleted %d entries\n", n)
			return err
		},
	}
}
