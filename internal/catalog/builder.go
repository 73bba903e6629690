// Package catalog orchestrates the generation pipeline: theme selection,
// image fetching, batched content generation, image downloads and CSV
// serialization into a single catalog directory.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/storeforge/catalogen/internal/config"
	"github.com/storeforge/catalogen/internal/models"
	"github.com/storeforge/catalogen/internal/pexels"
	"github.com/storeforge/catalogen/internal/themes"
)

// ErrNoImages is the one hard failure the pipeline propagates: a catalog
// cannot exist without images.
var ErrNoImages = errors.New("no images found for the selected theme")

const (
	// CSVName is the fixed catalog file name inside a catalog directory.
	CSVName = "catalog.csv"
	// ImagesDirName is the fixed image subdirectory name.
	ImagesDirName = "images"
)

// ImageSource supplies candidate photos and downloads them.
type ImageSource interface {
	FetchCandidatePool(ctx context.Context, theme string, minImages, maxImages int) []pexels.Photo
	Download(ctx context.Context, imageURL, destPath string) error
}

// ContentGenerator turns a chunk of photos into catalog entries.
type ContentGenerator interface {
	GenerateBatch(ctx context.Context, photos []pexels.Photo, category themes.Theme) []models.CatalogEntry
}

// Progress receives stage-transition events from a running build. All
// implementations must tolerate calls from the pipeline goroutine while
// other goroutines read their state.
type Progress interface {
	ThemeSelected(theme string)
	PoolFetched(count int)
	BatchesPlanned(total int)
	BatchStarted(number, total, images int)
	BatchCompleted(number, total int, elapsed time.Duration, produced int)
	DownloadProgress(done, total int)
	CatalogWritten(entries int)
}

// NopProgress discards all events.
type NopProgress struct{}

func (NopProgress) ThemeSelected(string)                            {}
func (NopProgress) PoolFetched(int)                                 {}
func (NopProgress) BatchesPlanned(int)                              {}
func (NopProgress) BatchStarted(int, int, int)                      {}
func (NopProgress) BatchCompleted(int, int, time.Duration, int)     {}
func (NopProgress) DownloadProgress(int, int)                       {}
func (NopProgress) CatalogWritten(int)                              {}

// Builder drives the catalog generation pipeline.
type Builder struct {
	images    ImageSource
	generator ContentGenerator
	settings  config.Settings
	pickTheme func() themes.Theme
}

// NewBuilder creates a builder over the given collaborators.
func NewBuilder(images ImageSource, generator ContentGenerator, settings config.Settings) *Builder {
	return &Builder{
		images:    images,
		generator: generator,
		settings:  settings,
		pickTheme: themes.Random,
	}
}

// Build runs the full pipeline into outputDir and returns it. Stages run
// sequentially; only an empty candidate pool fails the run. Individual
// image download failures are logged and skipped. prog may be nil.
func (b *Builder) Build(ctx context.Context, outputDir string, prog Progress) (string, error) {
	if prog == nil {
		prog = NopProgress{}
	}

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	theme := b.pickTheme()
	slog.Info("Selected theme", "theme", theme)
	prog.ThemeSelected(string(theme))

	photos := b.images.FetchCandidatePool(ctx, string(theme), b.settings.MinImages, b.settings.MaxImages)
	slog.Info("Fetched candidate images", "count", len(photos), "theme", theme)
	prog.PoolFetched(len(photos))
	if len(photos) == 0 {
		return "", ErrNoImages
	}

	chunks := chunkPhotos(photos, b.settings.BatchSize)
	prog.BatchesPlanned(len(chunks))

	var entries []models.CatalogEntry
	for i, chunk := range chunks {
		prog.BatchStarted(i+1, len(chunks), len(chunk))
		start := time.Now()

		batch := b.generator.GenerateBatch(ctx, chunk, theme)

		elapsed := time.Since(start)
		prog.BatchCompleted(i+1, len(chunks), elapsed, len(batch))
		slog.Info("Completed batch", "batch", i+1, "total", len(chunks),
			"produced", len(batch), "elapsed", elapsed)
		entries = append(entries, batch...)
	}

	// Entry ids restart at 1 inside each batch; renumber globally so ids
	// line up with the {id}-1.jpg image files.
	for i := range entries {
		entries[i].ID = i + 1
	}

	imagesDir := filepath.Join(outputDir, ImagesDirName)
	downloaded := 0
	for i, photo := range photos {
		dest := filepath.Join(imagesDir, fmt.Sprintf("%d-1.jpg", i+1))
		if err := b.images.Download(ctx, photo.Src.Original, dest); err != nil {
			slog.Warn("Failed to download image, skipping", "index", i+1, "error", err)
			continue
		}
		downloaded++
		prog.DownloadProgress(downloaded, len(photos))
		if downloaded%10 == 0 || i+1 == len(photos) {
			slog.Info("Downloading images", "downloaded", downloaded, "total", len(photos))
		}
	}

	if err := WriteCSV(filepath.Join(outputDir, CSVName), entries); err != nil {
		return "", fmt.Errorf("failed to write catalog CSV: %w", err)
	}
	prog.CatalogWritten(len(entries))
	slog.Info("Catalog built", "products", len(entries), "images", downloaded, "dir", outputDir)

	return outputDir, nil
}

// chunkPhotos partitions photos into fixed-size chunks preserving order.
// The final chunk may be shorter.
func chunkPhotos(photos []pexels.Photo, size int) [][]pexels.Photo {
	if size < 1 {
		size = len(photos)
	}
	var chunks [][]pexels.Photo
	for start := 0; start < len(photos); start += size {
		end := start + size
		if end > len(photos) {
			end = len(photos)
		}
		chunks = append(chunks, photos[start:end])
	}
	return chunks
}
