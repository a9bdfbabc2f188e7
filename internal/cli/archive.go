package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/RevCBH/planrate/internal/archive"
)

// ArchiveOptions holds configuration for the archive commands.
type ArchiveOptions struct {
	// Path is the SQLite archive (default: server.archive_path)
	Path string

	// Limit caps the number of listed datasets; zero lists all
	Limit int

	// JSON prints raw datasets
	JSON bool
}

// NewArchiveCmd creates the archive command group.
func NewArchiveCmd(app *App) *cobra.Command {
	opts := ArchiveOptions{}

	cmd := &cobra.Command{
		Use:   "archive",
		Short: "Inspect datasets stored by 'planrate serve'",
		Long: `Archive reads the SQLite dataset archive written by the reference
submission service.`,
	}
	cmd.PersistentFlags().StringVar(&opts.Path, "archive", "", "Archive path (default from config)")

	list := &cobra.Command{
		Use:   "list",
		Short: "List stored datasets, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := app.openArchive(opts.Path)
			if err != nil {
				return err
			}
			defer a.Close()

			entries, err := a.List(cmd.Context(), opts.Limit)
			if err != nil {
				return err
			}
			if len(entries) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No datasets archived")
				return nil
			}
			displayEntries(cmd.OutOrStdout(), entries)
			return nil
		},
	}
	list.Flags().IntVarP(&opts.Limit, "limit", "n", 20, "Maximum datasets to list (0 for all)")

	show := &cobra.Command{
		Use:   "show SESSION_ID",
		Short: "Show the latest dataset stored for a session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := app.openArchive(opts.Path)
			if err != nil {
				return err
			}
			defer a.Close()

			return showArchived(cmd.Context(), cmd, a, args[0], app.jsonMode(opts.JSON))
		},
	}
	show.Flags().BoolVar(&opts.JSON, "json", false, "Print the dataset as JSON")

	cmd.AddCommand(list, show)
	return cmd
}

// openArchive opens an existing archive; it never creates one.
func (a *App) openArchive(path string) (*archive.Archive, error) {
	if path == "" {
		cfg, err := a.Config()
		if err != nil {
			return nil, err
		}
		path = cfg.Server.ArchivePath
	}
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("no archive at %s", path)
		}
		return nil, err
	}
	return archive.Open(path)
}

func showArchived(ctx context.Context, cmd *cobra.Command, a *archive.Archive, sessionID string, jsonOut bool) error {
	id, d, err := a.Latest(ctx, sessionID)
	if errors.Is(err, archive.ErrNotFound) {
		return fmt.Errorf("no dataset archived for session %s", sessionID)
	}
	if err != nil {
		return err
	}
	if jsonOut {
		return writeDatasetJSON(cmd.OutOrStdout(), d)
	}
	fmt.Fprint(cmd.OutOrStdout(), FormatDatasetSummary(d, a.Location(id)))
	return nil
}
