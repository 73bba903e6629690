package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/storeforge/catalogen/internal/archive"
)

func newArchiveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "archive",
		Short: "Inspect and extract catalog archives",
	}

	cmd.AddCommand(newArchiveValidateCmd())
	cmd.AddCommand(newArchiveExtractCmd())

	return cmd
}

func newArchiveValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <archive>",
		Short: "Validate the contents of a catalog archive",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			report := archive.Validate(args[0])
			if !report.Valid {
				if report.Error != "" {
					return fmt.Errorf("archive invalid: %s", report.Error)
				}
				return fmt.Errorf("archive invalid: has_csv=%v image_count=%d", report.HasCSV, report.ImageCount)
			}

			fmt.Printf("Archive valid: %d images, %d files total\n", report.ImageCount, report.TotalFiles)
			for _, name := range report.FileList {
				fmt.Printf("  %s\n", name)
			}
			if report.TotalFiles > len(report.FileList) {
				fmt.Printf("  ... and %d more\n", report.TotalFiles-len(report.FileList))
			}
			return nil
		},
	}
}

func newArchiveExtractCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "extract <archive> <dest-dir>",
		Short: "Extract a catalog archive into a directory",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			dest, err := archive.Extract(args[0], args[1])
			if err != nil {
				return err
			}
			fmt.Printf("Extracted to %s\n", dest)
			return nil
		},
	}
}
