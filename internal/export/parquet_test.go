package export

import (
	"path/filepath"
	"testing"

	"github.com/storeforge/catalogen/internal/catalog"
	"github.com/storeforge/catalogen/internal/models"
)

func TestToParquetRoundTrip(t *testing.T) {
	entries := []models.CatalogEntry{
		{ID: 1, Title: "Lamp", Description: "A desk lamp", Category: "home decor", OldPrice: 250.50, NewPrice: 225.45},
		{ID: 2, Title: "Rug", Description: "A wool rug", Category: "home decor", OldPrice: 900, NewPrice: 810},
	}

	catalogDir := t.TempDir()
	if err := catalog.WriteCSV(filepath.Join(catalogDir, catalog.CSVName), entries); err != nil {
		t.Fatal(err)
	}

	outPath := filepath.Join(t.TempDir(), "catalog.parquet")
	n, err := ToParquet(catalogDir, outPath)
	if err != nil {
		t.Fatalf("ToParquet returned error: %v", err)
	}
	if n != 2 {
		t.Errorf("Expected 2 exported rows, got %d", n)
	}

	got, err := Load(outPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if len(got) != len(entries) {
		t.Fatalf("Expected %d rows, got %d", len(entries), len(got))
	}
	for i := range entries {
		if got[i] != entries[i] {
			t.Errorf("Row %d: expected %+v, got %+v", i, entries[i], got[i])
		}
	}
}

func TestToParquetMissingCatalog(t *testing.T) {
	outPath := filepath.Join(t.TempDir(), "catalog.parquet")
	if _, err := ToParquet(t.TempDir(), outPath); err == nil {
		t.Error("Expected error for missing catalog CSV")
	}
}
