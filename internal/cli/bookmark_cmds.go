package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/linkvault/linkvault/internal/models"
)

func newAddCmd(withApp appRunner) *cobra.Command {
	var (
		url      string
		note     string
		tags     []string
		favorite bool
	)

	cmd := &cobra.Command{
		Use:   "add <title>",
		Short: "Add a bookmark locally and push it best-effort",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(func(ctx context.Context, app *App, cmd *cobra.Command, args []string) error {
			b := models.NewBookmark(args[0])
			b.URL = url
			b.Note = note
			b.Tags = tags
			b.IsFavorite = favorite

			if err := app.Store.PutBookmark(ctx, b); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added %s\n", b.ID)

			// Remote propagation is best-effort; the local write already
			// succeeded and the next full pass will pick the record up.
			if err := app.Session.AwaitRestored(ctx); err != nil {
				return err
			}
			if err := app.Orch.SyncBookmark(ctx, *b); err != nil {
				app.Log.Warn(ctx, "bookmark push failed", "id", b.ID, "error", err)
			}
			return nil
		}),
	}
	cmd.Flags().StringVar(&url, "url", "", "bookmark URL")
	cmd.Flags().StringVar(&note, "note", "", "note text")
	cmd.Flags().StringArrayVar(&tags, "tag", nil, "tag (repeatable)")
	cmd.Flags().BoolVar(&favorite, "favorite", false, "mark as favorite")
	return cmd
}

func newListCmd(withApp appRunner) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List local bookmarks",
		RunE: withApp(func(ctx context.Context, app *App, cmd *cobra.Command, args []string) error {
			cats, err := app.Store.AllCategories(ctx)
			if err != nil {
				return err
			}
			catNames := make(map[string]string, len(cats))
			for _, c := range cats {
				catNames[c.ID] = c.Name
			}

			bms, err := app.Store.AllBookmarks(ctx)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, b := range bms {
				line := fmt.Sprintf("%s  %s", b.ID, b.Title)
				if b.URL != "" {
					line += "  " + b.URL
				}
				if name, ok := catNames[b.CategoryID]; ok {
					line += "  [" + name + "]"
				}
				fmt.Fprintln(out, line)
			}
			return nil
		}),
	}
}

func newRmCmd(withApp appRunner) *cobra.Command {
	return &cobra.Command{
		Use:   "rm <id>",
		Short: "Delete a bookmark locally and remotely",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(func(ctx context.Context, app *App, cmd *cobra.Command, args []string) error {
			id := args[0]
			if err := app.Store.DeleteBookmark(ctx, id); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", id)

			if err := app.Session.AwaitRestored(ctx); err != nil {
				return err
			}
			if err := app.Orch.DeleteBookmark(ctx, id); err != nil {
				app.Log.Warn(ctx, "remote delete failed", "id", id, "error", err)
			}
			return nil
		}),
	}
}
