package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"bookshelf/src/cmd/shelf/addcmd"
	"bookshelf/src/cmd/shelf/exportcmd"
	"bookshelf/src/cmd/shelf/lookupcmd"
	"bookshelf/src/cmd/shelf/statscmd"
)

// newRootCmd builds the command tree around a.
func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:           "shelf",
		Short:         "Personal reading log with Google Books / OpenLibrary lookup",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init(cmd.ErrOrStderr())
		},
	}
	root.PersistentFlags().StringVar(&a.dataFile, "data", "", "reading log file (default $SHELF_DATA_FILE or data/books.yaml)")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "debug logging on stderr")

	root.AddCommand(lookupcmd.New(a.search).Command())
	root.AddCommand(addcmd.New(a.search, a.store).Command())
	root.AddCommand(newListCmd(a.store))
	root.AddCommand(newDeleteCmd(a.store))
	root.AddCommand(exportcmd.Export(a.store))
	root.AddCommand(exportcmd.Import(a.store))
	root.AddCommand(statscmd.New(a.store))
	root.AddCommand(newServeCmd(a))
	return root
}

func execute() error {
	a := newApp()
	defer a.close()
	return newRootCmd(a).Execute()
}

func main() {
	if err := execute(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
