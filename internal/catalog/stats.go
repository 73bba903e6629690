package catalog

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/storeforge/catalogen/internal/models"
)

// imageExtensions are the file extensions counted as catalog images.
var imageExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
}

// IsImageFile reports whether name has a known image extension.
func IsImageFile(name string) bool {
	return imageExtensions[strings.ToLower(filepath.Ext(name))]
}

// Stats inspects a catalog directory. It is read-only and never fails:
// missing artifacts yield zeroed counts.
func Stats(catalogDir string) models.CatalogStats {
	stats := models.CatalogStats{}

	csvPath := filepath.Join(catalogDir, CSVName)
	if entries, err := ReadCSV(csvPath); err == nil {
		stats.CSVExists = true
		stats.TotalProducts = len(entries)
	} else if _, statErr := os.Stat(csvPath); statErr == nil {
		// Present but unreadable still counts as existing.
		stats.CSVExists = true
	}

	imagesDir := filepath.Join(catalogDir, ImagesDirName)
	if dirEntries, err := os.ReadDir(imagesDir); err == nil {
		stats.ImagesDirExists = true
		for _, entry := range dirEntries {
			if !entry.IsDir() && IsImageFile(entry.Name()) {
				stats.TotalImages++
			}
		}
	}

	return stats
}
