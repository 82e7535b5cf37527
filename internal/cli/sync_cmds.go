package cli

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

func newSyncCmd(withApp appRunner) *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "Run one full sync pass (download, then upload)",
		RunE: withApp(func(ctx context.Context, app *App, cmd *cobra.Command, args []string) error {
			if err := app.Session.AwaitRestored(ctx); err != nil {
				return err
			}
			if err := app.Orch.FullSync(ctx); err != nil {
				return err
			}
			st := app.Orch.Status()
			fmt.Fprintf(cmd.OutOrStdout(), "Synced at %s\n", st.LastSyncedAt.Format("15:04:05"))
			return nil
		}),
	}
}

func newDaemonCmd(withApp appRunner) *cobra.Command {
	return &cobra.Command{
		Use:   "daemon",
		Short: "Sync now, then keep syncing periodically until interrupted",
		RunE: withApp(func(ctx context.Context, app *App, cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			if err := app.Session.AwaitRestored(ctx); err != nil {
				return err
			}
			if err := app.Orch.FullSync(ctx); err != nil {
				app.Log.Warn(ctx, "initial sync failed", "error", err)
			}

			app.Orch.StartAutoSync(ctx)
			defer app.Orch.StopAutoSync()

			for {
				select {
				case <-ctx.Done():
					return nil
				case e := <-app.Orch.Events():
					if e.Err != nil {
						fmt.Fprintf(cmd.OutOrStdout(), "%s %s: %v\n", e.At.Format("15:04:05"), e.Type, e.Err)
					} else {
						fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", e.At.Format("15:04:05"), e.Type)
					}
				}
			}
		}),
	}
}

func newStatusCmd(withApp appRunner) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show session and sync state",
		RunE: withApp(func(ctx context.Context, app *App, cmd *cobra.Command, args []string) error {
			if err := app.Session.AwaitRestored(ctx); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if userID, ok := app.Session.CurrentUserID(); ok {
				fmt.Fprintf(out, "Signed in as %s\n", userID)
			} else {
				fmt.Fprintln(out, "Not signed in")
			}

			st := app.Orch.Status()
			fmt.Fprintf(out, "Sync state: %s\n", st.State)

			last, err := app.Store.LastSyncedAt(ctx)
			if err != nil {
				return err
			}
			if last.IsZero() {
				fmt.Fprintln(out, "Last sync: never")
			} else {
				fmt.Fprintf(out, "Last sync: %s\n", last.Local().Format("2006-01-02 15:04:05"))
			}
			return nil
		}),
	}
}
