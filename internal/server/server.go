// Package server exposes the catalog pipeline over HTTP: a trigger
// endpoint starting one background run, an SSE progress stream, and
// archive downloads.
package server

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/storeforge/catalogen/internal/archive"
	"github.com/storeforge/catalogen/internal/catalog"
	"github.com/storeforge/catalogen/internal/progress"
)

// Service wires the pipeline to HTTP handlers. At most one generation run
// is in flight at a time; concurrent trigger requests are rejected with
// 409 so readers never race on the progress record.
type Service struct {
	builder     *catalog.Builder
	tracker     *progress.Tracker
	catalogsDir string
	running     atomic.Bool
}

// New creates a service storing produced catalogs under catalogsDir.
func New(builder *catalog.Builder, catalogsDir string) (*Service, error) {
	if err := os.MkdirAll(catalogsDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create catalogs directory: %w", err)
	}
	return &Service{
		builder:     builder,
		tracker:     progress.NewTracker(),
		catalogsDir: catalogsDir,
	}, nil
}

// Router builds the gin engine with all routes configured.
func (s *Service) Router() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())

	// CORS for browser clients of the progress stream.
	r.Use(func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Accept")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	})

	r.POST("/api/generate", s.HandleGenerate)
	r.GET("/api/progress", s.HandleProgress)
	r.GET("/api/status", s.HandleStatus)
	r.GET("/api/health", s.HandleHealth)
	r.GET("/catalogs/:name", s.HandleDownload)

	return r
}

// HandleGenerate starts one background catalog generation and returns
// immediately. A second request while one is running gets 409.
func (s *Service) HandleGenerate(c *gin.Context) {
	if !s.running.CompareAndSwap(false, true) {
		c.JSON(http.StatusConflict, gin.H{"error": "a catalog generation is already in flight"})
		return
	}

	runID := uuid.NewString()
	outputDir := filepath.Join(s.catalogsDir, "catalog_"+runID)
	s.tracker.StartRun(runID)

	go s.runGeneration(runID, outputDir)

	c.JSON(http.StatusAccepted, gin.H{
		"run_id":     runID,
		"output_dir": outputDir,
		"message":    "Catalog generation started",
	})
}

func (s *Service) runGeneration(runID, outputDir string) {
	defer s.running.Store(false)

	dir, err := s.builder.Build(context.Background(), outputDir, s.tracker)
	if err != nil {
		slog.Error("Catalog generation failed", "run_id", runID, "error", err)
		s.tracker.Failed(err)
		return
	}

	s.tracker.CreatingArchive()
	archiveName := "catalog_" + runID + ".zip"
	archivePath, err := archive.Create(dir, archiveName)
	if err != nil {
		slog.Error("Archive creation failed", "run_id", runID, "error", err)
		s.tracker.Failed(err)
		return
	}

	if report := archive.Validate(archivePath); !report.Valid {
		err := fmt.Errorf("archive validation failed: %s", report.Error)
		slog.Error("Archive validation failed", "run_id", runID, "report", report)
		s.tracker.Failed(err)
		return
	}

	slog.Info("Catalog generation completed", "run_id", runID, "archive", archivePath)
	s.tracker.Completed(archiveName, "/catalogs/"+archiveName)
}

// HandleProgress streams tracker snapshots as server-sent events. Updates
// are pushed on every stage transition; no polling interval is involved.
func (s *Service) HandleProgress(c *gin.Context) {
	updates, cancel := s.tracker.Subscribe()
	defer cancel()

	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Stream(func(w io.Writer) bool {
		select {
		case snapshot, ok := <-updates:
			if !ok {
				return false
			}
			c.SSEvent("progress", snapshot)
			return true
		case <-c.Request.Context().Done():
			return false
		}
	})
}

// HandleStatus returns the current progress record for simple pollers.
func (s *Service) HandleStatus(c *gin.Context) {
	c.JSON(http.StatusOK, s.tracker.Snapshot())
}

func (s *Service) HandleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}

// HandleDownload serves a produced archive by name.
func (s *Service) HandleDownload(c *gin.Context) {
	name := c.Param("name")
	if name != filepath.Base(name) || !strings.HasSuffix(name, ".zip") {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid archive name"})
		return
	}

	path := filepath.Join(s.catalogsDir, name)
	if _, err := os.Stat(path); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "archive not found"})
		return
	}
	c.FileAttachment(path, name)
}
