package cli

import (
	"context"

	"github.com/spf13/cobra"
)

// NewRootCmd assembles the command tree. Services are constructed lazily so
// that --help and flag errors never touch the database or network.
func NewRootCmd() *cobra.Command {
	var (
		cfgPath string
		dbPath  string
		verbose bool
	)

	root := &cobra.Command{
		Use:           "linkvault",
		Short:         "Bookmark manager with encrypted multi-device sync",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	root.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "path to config file")
	root.PersistentFlags().StringVar(&dbPath, "db", "", "path to local database")
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	withApp := func(run func(ctx context.Context, app *App, cmd *cobra.Command, args []string) error) func(*cobra.Command, []string) error {
		return func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			app, err := newApp(ctx, cfgPath, dbPath, verbose)
			if err != nil {
				return err
			}
			defer app.Close()
			return run(ctx, app, cmd, args)
		}
	}

	root.AddCommand(
		newLoginCmd(withApp),
		newLogoutCmd(withApp),
		newSyncCmd(withApp),
		newDaemonCmd(withApp),
		newStatusCmd(withApp),
		newAddCmd(withApp),
		newListCmd(withApp),
		newRmCmd(withApp),
	)
	return root
}

// appRunner adapts a handler into a cobra RunE via the root's withApp
// closure.
type appRunner func(func(ctx context.Context, app *App, cmd *cobra.Command, args []string) error) func(*cobra.Command, []string) error
