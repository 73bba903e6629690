package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/storeforge/catalogen/internal/export"
)

func newExportCmd() *cobra.Command {
	var catalogDir string
	var outPath string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export a generated catalog as a parquet dataset",
		Long: `Converts the catalog.csv of a generated catalog directory into a
parquet file for analytics tooling.`,
		Example: `  catalogen export --catalog-dir catalog_output --out catalog.parquet`,
		RunE: func(cmd *cobra.Command, args []string) error {
			rows, err := export.ToParquet(catalogDir, outPath)
			if err != nil {
				return err
			}
			fmt.Printf("Exported %d rows to %s\n", rows, outPath)
			return nil
		},
	}

	cmd.Flags().StringVar(&catalogDir, "catalog-dir", "catalog_output", "Catalog directory containing catalog.csv")
	cmd.Flags().StringVar(&outPath, "out", "catalog.parquet", "Output parquet file path")

	return cmd
}
