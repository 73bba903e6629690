// Package export converts a generated catalog into a parquet dataset so
// downstream analytics tooling can consume it without CSV parsing.
package export

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/parquet-go/parquet-go"
	"github.com/storeforge/catalogen/internal/catalog"
	"github.com/storeforge/catalogen/internal/models"
)

// ToParquet reads the catalog CSV in catalogDir and writes its entries to
// outPath as parquet. Returns the number of exported rows.
func ToParquet(catalogDir, outPath string) (int, error) {
	entries, err := catalog.ReadCSV(filepath.Join(catalogDir, catalog.CSVName))
	if err != nil {
		return 0, fmt.Errorf("failed to load catalog: %w", err)
	}
	if len(entries) == 0 {
		return 0, fmt.Errorf("catalog has no entries to export")
	}

	f, err := os.Create(outPath)
	if err != nil {
		return 0, fmt.Errorf("failed to create parquet file: %w", err)
	}
	defer f.Close()

	writer := parquet.NewGenericWriter[models.CatalogEntry](f)
	if _, err := writer.Write(entries); err != nil {
		return 0, fmt.Errorf("failed to write parquet rows: %w", err)
	}
	if err := writer.Close(); err != nil {
		return 0, fmt.Errorf("failed to finalize parquet file: %w", err)
	}

	slog.Info("Exported catalog to parquet", "rows", len(entries), "path", outPath)
	return len(entries), nil
}

// Load reads catalog entries back from a parquet file.
func Load(path string) ([]models.CatalogEntry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open parquet file: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to stat parquet file: %w", err)
	}

	pf, err := parquet.OpenFile(f, info.Size())
	if err != nil {
		return nil, fmt.Errorf("failed to open parquet: %w", err)
	}

	reader := parquet.NewGenericReader[models.CatalogEntry](pf)
	defer reader.Close()

	entries := make([]models.CatalogEntry, 0, reader.NumRows())
	buf := make([]models.CatalogEntry, 64)
	for {
		n, err := reader.Read(buf)
		entries = append(entries, buf[:n]...)
		if err != nil {
			break
		}
	}
	return entries, nil
}
