package cmd

import (
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalogen",
		Short: "Themed product catalog generator with LLM-written content",
		Long: `Catalogen builds themed e-commerce product catalogs by combining a
stock-photo search API with a generative-text API.

A run picks a random shop theme, samples a pool of matching stock photos,
generates titles and descriptions in batched LLM calls, downloads the
images, and packages everything into a distributable ZIP archive.`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// Load .env file if present (ignore errors)
			_ = godotenv.Load()
		},
	}

	// Add subcommands
	cmd.AddCommand(newGenerateCmd())
	cmd.AddCommand(newServeCmd())
	cmd.AddCommand(newArchiveCmd())
	cmd.AddCommand(newExportCmd())
	cmd.AddCommand(newStatsCmd())

	return cmd
}
