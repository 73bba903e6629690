package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/storeforge/catalogen/internal/catalog"
)

func newStatsCmd() *cobra.Command {
	var catalogDir string

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show statistics for a generated catalog directory",
		RunE: func(cmd *cobra.Command, args []string) error {
			stats := catalog.Stats(catalogDir)
			fmt.Printf("Products: %d\n", stats.TotalProducts)
			fmt.Printf("Images: %d\n", stats.TotalImages)
			fmt.Printf("CSV present: %v\n", stats.CSVExists)
			fmt.Printf("Images dir present: %v\n", stats.ImagesDirExists)
			return nil
		},
	}

	cmd.Flags().StringVar(&catalogDir, "catalog-dir", "catalog_output", "Catalog directory to inspect")

	return cmd
}
