// Package archive packages a finished catalog directory into a zip file
// and validates or extracts existing catalog archives.
package archive

import (
	"archive/zip"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/storeforge/catalogen/internal/catalog"
)

var (
	// ErrMissingArtifact means the source directory lacks the CSV or the
	// images subdirectory an archive must contain.
	ErrMissingArtifact = errors.New("missing catalog artifact")
	// ErrInvalidArchive means the file is not a well-formed zip.
	ErrInvalidArchive = errors.New("invalid archive")
)

// previewLimit caps the file list included in a validation report.
const previewLimit = 10

// Report is the structured result of validating an archive. Validation
// problems are reported here rather than as returned errors.
type Report struct {
	Valid      bool     `json:"valid"`
	HasCSV     bool     `json:"has_csv"`
	ImageCount int      `json:"image_count"`
	TotalFiles int      `json:"total_files"`
	FileList   []string `json:"file_list,omitempty"`
	Error      string   `json:"error,omitempty"`
}

// Create zips sourceDir's catalog.csv and image files into an archive named
// archiveName, written next to sourceDir. The CSV keeps its fixed top-level
// name and images go under an images/ prefix.
func Create(sourceDir, archiveName string) (string, error) {
	if _, err := os.Stat(sourceDir); err != nil {
		return "", fmt.Errorf("%w: source directory does not exist: %s", ErrMissingArtifact, sourceDir)
	}

	csvPath := filepath.Join(sourceDir, catalog.CSVName)
	if _, err := os.Stat(csvPath); err != nil {
		return "", fmt.Errorf("%w: %s not found in source directory", ErrMissingArtifact, catalog.CSVName)
	}

	imagesDir := filepath.Join(sourceDir, catalog.ImagesDirName)
	if _, err := os.Stat(imagesDir); err != nil {
		return "", fmt.Errorf("%w: %s directory not found in source directory", ErrMissingArtifact, catalog.ImagesDirName)
	}

	archivePath := filepath.Join(filepath.Dir(sourceDir), archiveName)
	out, err := os.Create(archivePath)
	if err != nil {
		return "", fmt.Errorf("failed to create archive file: %w", err)
	}
	defer out.Close()

	zw := zip.NewWriter(out)
	if err := addFile(zw, csvPath, catalog.CSVName); err != nil {
		return "", err
	}

	dirEntries, err := os.ReadDir(imagesDir)
	if err != nil {
		return "", fmt.Errorf("failed to read images directory: %w", err)
	}
	for _, entry := range dirEntries {
		if entry.IsDir() || !catalog.IsImageFile(entry.Name()) {
			continue
		}
		src := filepath.Join(imagesDir, entry.Name())
		arcName := catalog.ImagesDirName + "/" + entry.Name()
		if err := addFile(zw, src, arcName); err != nil {
			return "", err
		}
	}

	if err := zw.Close(); err != nil {
		return "", fmt.Errorf("failed to finalize archive: %w", err)
	}
	return archivePath, nil
}

func addFile(zw *zip.Writer, path, arcName string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	w, err := zw.Create(arcName)
	if err != nil {
		return fmt.Errorf("failed to add %s to archive: %w", arcName, err)
	}
	if _, err := io.Copy(w, f); err != nil {
		return fmt.Errorf("failed to write %s to archive: %w", arcName, err)
	}
	return nil
}

// Validate opens an archive read-only and reports its contents. A missing
// path or a malformed zip produce distinct error variants in the report,
// never a returned error.
func Validate(archivePath string) Report {
	if _, err := os.Stat(archivePath); err != nil {
		return Report{Valid: false, Error: "archive file does not exist"}
	}

	zr, err := zip.OpenReader(archivePath)
	if err != nil {
		return Report{Valid: false, Error: "invalid zip file"}
	}
	defer zr.Close()

	report := Report{TotalFiles: len(zr.File)}
	for _, f := range zr.File {
		if len(report.FileList) < previewLimit {
			report.FileList = append(report.FileList, f.Name)
		}
		if f.Name == catalog.CSVName {
			report.HasCSV = true
		}
		if strings.HasPrefix(f.Name, catalog.ImagesDirName+"/") && catalog.IsImageFile(f.Name) {
			report.ImageCount++
		}
	}

	report.Valid = report.HasCSV && report.ImageCount > 0
	return report
}

// Extract unpacks all archive members into destDir, creating it if absent.
func Extract(archivePath, destDir string) (string, error) {
	if err := os.MkdirAll(destDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create extraction directory: %w", err)
	}

	zr, err := zip.OpenReader(archivePath)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidArchive, err)
	}
	defer zr.Close()

	for _, f := range zr.File {
		if err := extractFile(f, destDir); err != nil {
			return "", err
		}
	}
	return destDir, nil
}

func extractFile(f *zip.File, destDir string) error {
	// Reject zip-slip paths.
	dest := filepath.Join(destDir, f.Name)
	if !strings.HasPrefix(dest, filepath.Clean(destDir)+string(os.PathSeparator)) {
		return fmt.Errorf("%w: illegal member path %q", ErrInvalidArchive, f.Name)
	}

	if f.FileInfo().IsDir() {
		return os.MkdirAll(dest, 0755)
	}

	if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", f.Name, err)
	}

	rc, err := f.Open()
	if err != nil {
		return fmt.Errorf("%w: failed to open member %s: %v", ErrInvalidArchive, f.Name, err)
	}
	defer rc.Close()

	out, err := os.Create(dest)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", dest, err)
	}
	defer out.Close()

	if _, err := io.Copy(out, rc); err != nil {
		return fmt.Errorf("failed to extract %s: %w", f.Name, err)
	}
	return nil
}
