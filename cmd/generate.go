package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/storeforge/catalogen/internal/archive"
	"github.com/storeforge/catalogen/internal/catalog"
	"github.com/storeforge/catalogen/internal/config"
)

func newGenerateCmd() *cobra.Command {
	var outputDir string
	var archiveName string
	var settingsPath string
	var keepDir bool

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate a themed product catalog and package it as a ZIP",
		Long: `Runs the full generation pipeline: theme selection, image search,
batched content generation, image downloads, CSV serialization, and
archive packaging with validation.

Requires PEXELS_API_KEY and DEEPSEEK_API_KEY environment variables
(or GEMINI_API_KEY with CONTENT_PROVIDER=gemini).`,
		Example: `  # Generate into the default directory
  catalogen generate

  # Custom output location and archive name
  catalogen generate --output-dir ./my-catalog --archive-name shop.zip

  # Tune generation via a settings file
  catalogen generate --settings settings.yaml`,
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

			slog.Info("Building catalog", "output_dir", outputDir)
			catalogDir, err := builder.Build(cmd.Context(), outputDir, nil)
			if err != nil {
				return fmt.Errorf("catalog generation failed: %w", err)
			}

			slog.Info("Creating archive", "name", archiveName)
			archivePath, err := archive.Create(catalogDir, archiveName)
			if err != nil {
				return fmt.Errorf("archive creation failed: %w", err)
			}

			report := archive.Validate(archivePath)
			if !report.Valid {
				return fmt.Errorf("archive validation failed: %s", report.Error)
			}

			stats := catalog.Stats(catalogDir)
			if !keepDir {
				if err := os.RemoveAll(catalogDir); err != nil {
					slog.Warn("Failed to remove catalog directory", "dir", catalogDir, "error", err)
				}
			}

			fmt.Printf("Catalog generated: %d products, %d images\n", stats.TotalProducts, stats.TotalImages)
			fmt.Printf("Archive created: %s (%d files)\n", archivePath, report.TotalFiles)
			return nil
		},
	}

	cmd.Flags().StringVarP(&outputDir, "output-dir", "o", "catalog_output", "Directory to save catalog files")
	cmd.Flags().StringVarP(&archiveName, "archive-name", "a", "catalog.zip", "Name of the output archive file")
	cmd.Flags().StringVar(&settingsPath, "settings", "", "Path to a YAML settings file")
	cmd.Flags().BoolVar(&keepDir, "keep-dir", false, "Keep the catalog directory after archiving")

	return cmd
}
