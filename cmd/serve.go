package cmd

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"github.com/storeforge/catalogen/internal/config"
	"github.com/storeforge/catalogen/internal/server"
)

func newServeCmd() *cobra.Command {
	var port string
	var catalogsDir string
	var settingsPath string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the catalog generation web interface",
		Long: `Starts an HTTP server exposing the generation pipeline.

POST /api/generate starts one background run (409 while one is in flight),
GET /api/progress streams progress as server-sent events, and produced
archives are downloadable under /catalogs/.`,
		Example: `  # Start server on default port 8000
  catalogen serve

  # Start server on custom port
  catalogen serve --port 3000`,
		RunE: func(cmd *cobra.Command, args []string) error {
			creds, err := config.LoadCredentials()
			if err != nil {
				return err
			}
			settings, err := config.LoadSettings(settingsPath)
			if err != nil {
				return err
			}
			builder, err := newBuilder(creds, settings)
			if err != nil {
				return err
			}

			svc, err := server.New(builder, catalogsDir)
			if err != nil {
				return err
			}

			addr := ":" + port
			srv := &http.Server{
				Addr:    addr,
				Handler: svc.Router(),
			}

			// Start server in goroutine
			serverErr := make(chan error, 1)
			go func() {
				slog.Info("Catalog generator interface available", "addr", addr, "url", "http://localhost"+addr)
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					serverErr <- err
				}
			}()

			// Wait for context cancellation (Ctrl+C) or server error
			select {
			case <-cmd.Context().Done():
				slog.Info("Shutting down server...")
				// Give server 5 seconds to shut down gracefully
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := srv.Shutdown(shutdownCtx); err != nil {
					slog.Error("Server shutdown failed", "err", err)
					return err
				}
				slog.Info("Server stopped")
				return nil
			case err := <-serverErr:
				return err
			}
		},
	}

	cmd.Flags().StringVarP(&port, "port", "p", "8000", "Port to listen on")
	cmd.Flags().StringVar(&catalogsDir, "catalogs-dir", "catalogs", "Directory to store generated catalogs")
	cmd.Flags().StringVar(&settingsPath, "settings", "", "Path to a YAML settings file")

	return cmd
}
