package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/RevCBH/planrate/internal/archive"
	"github.com/RevCBH/planrate/internal/config"
	"github.com/RevCBH/planrate/internal/web"
)

// ServeOptions overrides the server section of the config
type ServeOptions struct {
	Addr        string
	ArchivePath string
	Upstream    string
}

// NewServeCmd creates the serve command.
// Usage: planrate serve [--addr :8000] [--archive PATH] [--upstream URL]
func NewServeCmd(app *App) *cobra.Command {
	opts := ServeOptions{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the reference submission service",
		Long: `Serve starts an HTTP server that accepts feedback submissions, aggregates
them into datasets, stores them in a SQLite archive and exports them again.

Generate requests are forwarded to --upstream when set.

Press Ctrl+C to stop the server.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := app.Config()
			if err != nil {
				return err
			}
			return app.runServe(cmd, cfg, opts)
		},
	}

	cmd.Flags().StringVar(&opts.Addr, "addr", "", "Listen address (default from config)")
	cmd.Flags().StringVar(&opts.ArchivePath, "archive", "", "SQLite archive path (default from config)")
	cmd.Flags().StringVar(&opts.Upstream, "upstream", "", "Generation service to forward generate requests to")

	return cmd
}

func (a *App) runServe(cmd *cobra.Command, cfg *config.Config, opts ServeOptions) error {
	server := cfg.Server
	if opts.Addr != "" {
		server.Addr = opts.Addr
	}
	if opts.ArchivePath != "" {
		server.ArchivePath = opts.ArchivePath
	}
	if opts.Upstream != "" {
		server.UpstreamGenerateURL = opts.Upstream
	}

	logger := a.Logger(cmd.ErrOrStderr(), cfg)

	if err := config.EnsureDataDir(server.ArchivePath); err != nil {
		return fmt.Errorf("create archive directory: %w", err)
	}
	store, err := archive.Open(server.ArchivePath)
	if err != nil {
		return fmt.Errorf("open archive: %w", err)
	}
	defer store.Close()

	info := a.versionInfo.withDefaults()
	srv, err := web.New(web.Config{
		Addr:                server.Addr,
		Version:             info.Version,
		Store:               store,
		Model:               server.Model,
		UpstreamGenerateURL: server.UpstreamGenerateURL,
		AllowedOrigins:      server.AllowedOrigins,
		Logger:              logger,
	})
	if err != nil {
		return fmt.Errorf("create server: %w", err)
	}

	if err := srv.Start(); err != nil {
		return fmt.Errorf("start server: %w", err)
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()
	signals := NewSignalHandler(cancel, logger)
	signals.OnShutdown(func() {
		fmt.Fprintln(cmd.OutOrStdout(), "Shutting down")
	})
	signals.Start()
	defer signals.Stop()

	fmt.Fprintf(cmd.OutOrStdout(), "Listening on http://%s (archive %s)\n", srv.Addr(), server.ArchivePath)
	fmt.Fprintln(cmd.OutOrStdout(), "Press Ctrl+C to stop")

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- srv.Wait()
	}()

	select {
	case <-ctx.Done():
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("serve: %w", err)
		}
	}

	// Graceful shutdown with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Stop(shutdownCtx); err != nil {
		return fmt.Errorf("stop server: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), "Server stopped")
	return nil
}
