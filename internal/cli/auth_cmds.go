package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func newLoginCmd(withApp appRunner) *cobra.Command {
	return &cobra.Command{
		Use:   "login",
		Short: "Sign in to the sync backend",
		RunE: withApp(func(ctx context.Context, app *App, cmd *cobra.Command, args []string) error {
			if err := app.Session.AwaitRestored(ctx); err != nil {
				return err
			}
			if app.Session.IsAuthenticated() {
				fmt.Fprintln(cmd.OutOrStdout(), "Already signed in.")
				return nil
			}

			reader := bufio.NewReader(os.Stdin)
			email, err := getSimpleText(reader, "Email", cmd.OutOrStdout())
			if err != nil {
				return err
			}
			password, err := getPassword(cmd.OutOrStdout())
			if err != nil {
				return err
			}

			if err := app.Session.SignIn(ctx, email, string(password)); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Signed in.")
			return nil
		}),
	}
}

func newLogoutCmd(withApp appRunner) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Sign out and stop auto-sync",
		RunE: withApp(func(ctx context.Context, app *App, cmd *cobra.Command, args []string) error {
			if err := app.Session.AwaitRestored(ctx); err != nil {
				return err
			}
			app.Orch.StopAutoSync()
			if err := app.Session.SignOut(ctx); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Signed out.")
			return nil
		}),
	}
}
