package catalog

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/storeforge/catalogen/internal/config"
	"github.com/storeforge/catalogen/internal/models"
	"github.com/storeforge/catalogen/internal/pexels"
	"github.com/storeforge/catalogen/internal/themes"
)

type fakeSource struct {
	pool     []pexels.Photo
	failURLs map[string]bool
}

func (f *fakeSource) FetchCandidatePool(ctx context.Context, theme string, minImages, maxImages int) []pexels.Photo {
	return f.pool
}

func (f *fakeSource) Download(ctx context.Context, imageURL, destPath string) error {
	if f.failURLs[imageURL] {
		return errors.New("download failed")
	}
	if err := os.MkdirAll(filepath.Dir(destPath), 0755); err != nil {
		return err
	}
	return os.WriteFile(destPath, []byte("jpeg-bytes"), 0644)
}

type fakeGenerator struct {
	chunkSizes []int
}

func (f *fakeGenerator) GenerateBatch(ctx context.Context, photos []pexels.Photo, category themes.Theme) []models.CatalogEntry {
	f.chunkSizes = append(f.chunkSizes, len(photos))
	entries := make([]models.CatalogEntry, len(photos))
	for i, p := range photos {
		entries[i] = models.CatalogEntry{
			ID:          i + 1, // batch-local, as the real generator numbers them
			Title:       p.Alt,
			Description: "generated description",
			Category:    string(category),
			OldPrice:    100.00,
			NewPrice:    90.00,
		}
	}
	return entries
}

type recordingProgress struct {
	NopProgress
	themeSelected    string
	batchesPlanned   int
	batchesCompleted int
	catalogWritten   int
}

func (r *recordingProgress) ThemeSelected(theme string) { r.themeSelected = theme }
func (r *recordingProgress) BatchesPlanned(total int)   { r.batchesPlanned = total }
func (r *recordingProgress) BatchCompleted(number, total int, elapsed time.Duration, produced int) {
	r.batchesCompleted++
}
func (r *recordingProgress) CatalogWritten(entries int) { r.catalogWritten = entries }

func makePool(n int) []pexels.Photo {
	pool := make([]pexels.Photo, n)
	for i := range pool {
		pool[i].ID = i + 1
		pool[i].Alt = fmt.Sprintf("item %d", i+1)
		pool[i].Src.Original = fmt.Sprintf("https://img.example/%d.jpg", i+1)
	}
	return pool
}

func testSettings() config.Settings {
	s := config.DefaultSettings()
	s.MinImages = 160
	s.MaxImages = 240
	s.BatchSize = 20
	return s
}

func TestBuildDegradedPool(t *testing.T) {
	// 50 images against min 160: the whole pool is used and chunked [20,20,10].
	source := &fakeSource{pool: makePool(50)}
	generator := &fakeGenerator{}
	builder := NewBuilder(source, generator, testSettings())
	builder.pickTheme = func() themes.Theme { return "electronics" }

	prog := &recordingProgress{}
	outputDir := filepath.Join(t.TempDir(), "catalog_output")
	got, err := builder.Build(context.Background(), outputDir, prog)
	if err != nil {
		t.Fatalf("Build returned error: %v", err)
	}
	if got != outputDir {
		t.Errorf("Expected output dir %q, got %q", outputDir, got)
	}

	expectedChunks := []int{20, 20, 10}
	if len(generator.chunkSizes) != len(expectedChunks) {
		t.Fatalf("Expected %d chunks, got %v", len(expectedChunks), generator.chunkSizes)
	}
	for i, size := range expectedChunks {
		if generator.chunkSizes[i] != size {
			t.Errorf("Chunk %d: expected size %d, got %d", i, size, generator.chunkSizes[i])
		}
	}

	entries, err := ReadCSV(filepath.Join(outputDir, CSVName))
	if err != nil {
		t.Fatalf("ReadCSV returned error: %v", err)
	}
	if len(entries) != 50 {
		t.Fatalf("Expected 50 CSV rows, got %d", len(entries))
	}
	for i, e := range entries {
		if e.ID != i+1 {
			t.Fatalf("Entry %d has id %d, ids must be globally sequential", i, e.ID)
		}
		if e.Category != "electronics" {
			t.Errorf("Entry %d has category %q", i, e.Category)
		}
	}

	for i := 1; i <= 50; i++ {
		path := filepath.Join(outputDir, ImagesDirName, fmt.Sprintf("%d-1.jpg", i))
		if _, err := os.Stat(path); err != nil {
			t.Errorf("Missing downloaded image %s", path)
		}
	}

	if prog.themeSelected != "electronics" {
		t.Errorf("Progress got theme %q", prog.themeSelected)
	}
	if prog.batchesPlanned != 3 || prog.batchesCompleted != 3 {
		t.Errorf("Progress batches planned %d completed %d", prog.batchesPlanned, prog.batchesCompleted)
	}
	if prog.catalogWritten != 50 {
		t.Errorf("Progress catalog written %d", prog.catalogWritten)
	}
}

func TestBuildNoImages(t *testing.T) {
	builder := NewBuilder(&fakeSource{}, &fakeGenerator{}, testSettings())
	if _, err := builder.Build(context.Background(), t.TempDir(), nil); !errors.Is(err, ErrNoImages) {
		t.Fatalf("Expected ErrNoImages, got %v", err)
	}
}

func TestBuildSkipsFailedDownloads(t *testing.T) {
	pool := makePool(10)
	source := &fakeSource{
		pool: pool,
		failURLs: map[string]bool{
			pool[2].Src.Original: true,
			pool[7].Src.Original: true,
		},
	}
	settings := testSettings()
	settings.MinImages = 5
	settings.MaxImages = 10
	builder := NewBuilder(source, &fakeGenerator{}, settings)
	builder.pickTheme = func() themes.Theme { return "books" }

	outputDir := t.TempDir()
	if _, err := builder.Build(context.Background(), outputDir, nil); err != nil {
		t.Fatalf("Build must tolerate download failures, got %v", err)
	}

	stats := Stats(outputDir)
	if stats.TotalProducts != 10 {
		t.Errorf("Expected 10 products, got %d", stats.TotalProducts)
	}
	if stats.TotalImages != 8 {
		t.Errorf("Expected 8 images after 2 failures, got %d", stats.TotalImages)
	}
}

func TestChunkPhotos(t *testing.T) {
	tests := []struct {
		total    int
		size     int
		expected []int
	}{
		{50, 20, []int{20, 20, 10}},
		{40, 20, []int{20, 20}},
		{5, 20, []int{5}},
		{0, 20, nil},
	}

	for _, tt := range tests {
		chunks := chunkPhotos(makePool(tt.total), tt.size)
		if len(chunks) != len(tt.expected) {
			t.Errorf("chunkPhotos(%d, %d): expected %d chunks, got %d", tt.total, tt.size, len(tt.expected), len(chunks))
			continue
		}
		for i, want := range tt.expected {
			if len(chunks[i]) != want {
				t.Errorf("chunkPhotos(%d, %d): chunk %d has %d, expected %d", tt.total, tt.size, i, len(chunks[i]), want)
			}
		}
	}
}
