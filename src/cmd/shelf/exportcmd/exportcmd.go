package exportcmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"bookshelf/src/internal/store"
)

// StoreFunc opens the reading log.
type StoreFunc func() (*store.Store, error)

// Export returns the "export" command. Without -o the CSV goes to stdout.
func Export(open StoreFunc) *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the reading log as CSV",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := open()
			if err != nil {
				return err
			}
			if out == "" {
				return st.ExportCSV(cmd.OutOrStdout())
			}
			if err := os.MkdirAll(filepath.Dir(out), 0o755); err != nil {
				return err
			}
			f, err := os.Create(out)
			if err != nil {
				return err
			}
			if err := st.ExportCSV(f); err != nil {
				f.Close()
				return err
			}
			if err := f.Close(); err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", out)
			return err
		},
	}
	cmd.Flags().StringVarP(&out, "output", "o", "", "output CSV path (default stdout)")
	return cmd
}

// Import returns the "import" command. "-" reads stdin.
func Import(open StoreFunc) *cobra.Command {
	var appendRows bool
	cmd := &cobra.Command{
		Use:   "import <file.csv>",
		Short: "Import a CSV file, replacing the reading log unless --append",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := open()
			if err != nil {
				return err
			}
			var r io.Reader = cmd.InOrStdin()
			if args[0] != "-" {
				f, err := os.Open(args[0])
				if err != nil {
					return err
				}
				defer f.Close()
				r = f
			}
			n, err := st.ImportCSV(r, !appendRows)
			if err != nil {
				return fmt.Errorf("import %s: %w", args[0], err)
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "imported %d entries into %s\n", n, st.Path())
			return err
		},
	}
	cmd.Flags().BoolVar(&appendRows, "append", false, "append to the existing log instead of replacing it")
	return cmd
}
