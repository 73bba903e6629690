package catalog

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"strconv"

	"github.com/storeforge/catalogen/internal/models"
)

var csvHeader = []string{"id", "title_en", "description_en", "category", "old-price", "new-price"}

// WriteCSV serializes entries to path in the fixed column order. The file
// is produced by a single write so a failure leaves no partial catalog.
// An empty entry list writes no file at all.
func WriteCSV(path string, entries []models.CatalogEntry) error {
	if len(entries) == 0 {
		return nil
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(csvHeader); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}
	for _, e := range entries {
		record := []string{
			strconv.Itoa(e.ID),
			e.Title,
			e.Description,
			e.Category,
			strconv.FormatFloat(e.OldPrice, 'f', 2, 64),
			strconv.FormatFloat(e.NewPrice, 'f', 2, 64),
		}
		if err := w.Write(record); err != nil {
			return fmt.Errorf("failed to write CSV record: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("failed to flush CSV: %w", err)
	}

	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("failed to write CSV file: %w", err)
	}
	return nil
}

// ReadCSV loads catalog entries back from a CSV written by WriteCSV.
func ReadCSV(path string) ([]models.CatalogEntry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open catalog CSV: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse catalog CSV: %w", err)
	}
	if len(records) == 0 {
		return nil, nil
	}

	entries := make([]models.CatalogEntry, 0, len(records)-1)
	for i, record := range records[1:] {
		if len(record) != len(csvHeader) {
			return nil, fmt.Errorf("row %d has %d columns, expected %d", i+1, len(record), len(csvHeader))
		}
		id, err := strconv.Atoi(record[0])
		if err != nil {
			return nil, fmt.Errorf("row %d has invalid id %q: %w", i+1, record[0], err)
		}
		oldPrice, err := strconv.ParseFloat(record[4], 64)
		if err != nil {
			return nil, fmt.Errorf("row %d has invalid old-price %q: %w", i+1, record[4], err)
		}
		newPrice, err := strconv.ParseFloat(record[5], 64)
		if err != nil {
			return nil, fmt.Errorf("row %d has invalid new-price %q: %w", i+1, record[5], err)
		}
		entries = append(entries, models.CatalogEntry{
			ID:          id,
			Title:       record[1],
			Description: record[2],
			Category:    record[3],
			OldPrice:    oldPrice,
			NewPrice:    newPrice,
		})
	}
	return entries, nil
}
