// Package progress tracks the state of a catalog generation run for
// concurrent readers. There is one writer (the pipeline goroutine); readers
// either take point-in-time snapshots or subscribe for updates pushed on
// every transition, so nobody polls on a timer.
package progress

import (
	"fmt"
	"sync"
	"time"
)

// Status is the coarse stage of a run.
type Status string

const (
	StatusIdle              Status = "idle"
	StatusInitializing      Status = "initializing"
	StatusFetchingImages    Status = "fetching_images"
	StatusProcessingBatches Status = "processing_batches"
	StatusDownloadingImages Status = "downloading_images"
	StatusWritingCatalog    Status = "writing_catalog"
	StatusCreatingArchive   Status = "creating_archive"
	StatusCompleted         Status = "completed"
	StatusError             Status = "error"
)

// BatchState describes one content-generation batch.
type BatchState struct {
	Number  int     `json:"number"`
	Status  string  `json:"status"` // "pending", "processing", "completed"
	Images  int     `json:"images"`
	Seconds float64 `json:"time"`
}

// Snapshot is a copy of the run state at one moment.
type Snapshot struct {
	RunID            string       `json:"run_id,omitempty"`
	Status           Status       `json:"status"`
	Message          string       `json:"message"`
	Theme            string       `json:"theme,omitempty"`
	TotalImages      int          `json:"total_images"`
	Batches          []BatchState `json:"batches,omitempty"`
	CurrentBatch     int          `json:"current_batch"`
	TotalBatches     int          `json:"total_batches"`
	CompletedBatches int          `json:"completed_batches"`
	DownloadedImages int          `json:"downloaded_images"`
	ArchiveName      string       `json:"archive_name,omitempty"`
	ArchiveURL       string       `json:"archive_url,omitempty"`
	Error            string       `json:"error,omitempty"`
}

// subscriberBuffer sizes subscription channels. A reader that keeps up sees
// every update; a stalled one drops intermediates but always gets the next
// transition once it drains.
const subscriberBuffer = 16

// Tracker owns the mutable run record.
type Tracker struct {
	mu          sync.RWMutex
	current     Snapshot
	subscribers map[chan Snapshot]struct{}
}

// NewTracker returns an idle tracker.
func NewTracker() *Tracker {
	return &Tracker{
		current:     Snapshot{Status: StatusIdle},
		subscribers: make(map[chan Snapshot]struct{}),
	}
}

// Snapshot returns a copy of the current state.
func (t *Tracker) Snapshot() Snapshot {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return copySnapshot(t.current)
}

// Subscribe registers for update notifications. The returned cancel func
// must be called when done; it closes the channel.
func (t *Tracker) Subscribe() (<-chan Snapshot, func()) {
	ch := make(chan Snapshot, subscriberBuffer)

	t.mu.Lock()
	t.subscribers[ch] = struct{}{}
	ch <- copySnapshot(t.current)
	t.mu.Unlock()

	cancel := func() {
		t.mu.Lock()
		defer t.mu.Unlock()
		if _, ok := t.subscribers[ch]; ok {
			delete(t.subscribers, ch)
			close(ch)
		}
	}
	return ch, cancel
}

// update mutates the record under the lock and publishes a copy to every
// subscriber without blocking the writer.
func (t *Tracker) update(mutate func(*Snapshot)) {
	t.mu.Lock()
	defer t.mu.Unlock()

	mutate(&t.current)
	for ch := range t.subscribers {
		select {
		case ch <- copySnapshot(t.current):
		default:
		}
	}
}

func copySnapshot(s Snapshot) Snapshot {
	out := s
	if s.Batches != nil {
		out.Batches = make([]BatchState, len(s.Batches))
		copy(out.Batches, s.Batches)
	}
	return out
}

// StartRun resets the record for a new run.
func (t *Tracker) StartRun(runID string) {
	t.update(func(s *Snapshot) {
		*s = Snapshot{
			RunID:   runID,
			Status:  StatusInitializing,
			Message: "Starting catalog generation...",
		}
	})
}

// ThemeSelected records the chosen theme and moves to image fetching.
func (t *Tracker) ThemeSelected(theme string) {
	t.update(func(s *Snapshot) {
		s.Theme = theme
		s.Status = StatusFetchingImages
		s.Message = "Selected theme: " + theme
	})
}

// PoolFetched records the size of the sampled image pool.
func (t *Tracker) PoolFetched(count int) {
	t.update(func(s *Snapshot) {
		s.TotalImages = count
		s.Message = fmt.Sprintf("Fetched %d images for theme: %s", count, s.Theme)
	})
}

// BatchesPlanned initializes per-batch bookkeeping.
func (t *Tracker) BatchesPlanned(total int) {
	t.update(func(s *Snapshot) {
		s.Status = StatusProcessingBatches
		s.TotalBatches = total
		s.Batches = make([]BatchState, total)
		for i := range s.Batches {
			s.Batches[i] = BatchState{Number: i + 1, Status: "pending"}
		}
		s.Message = fmt.Sprintf("Generating catalog data in %d batches", total)
	})
}

// BatchStarted marks one batch as in flight.
func (t *Tracker) BatchStarted(number, total, images int) {
	t.update(func(s *Snapshot) {
		s.CurrentBatch = number
		if number-1 < len(s.Batches) {
			s.Batches[number-1].Status = "processing"
			s.Batches[number-1].Images = images
		}
		s.Message = fmt.Sprintf("Processing batch %d/%d (%d images)", number, total, images)
	})
}

// BatchCompleted marks one batch as done.
func (t *Tracker) BatchCompleted(number, total int, elapsed time.Duration, produced int) {
	t.update(func(s *Snapshot) {
		if number-1 < len(s.Batches) {
			s.Batches[number-1].Status = "completed"
			s.Batches[number-1].Seconds = elapsed.Seconds()
		}
		s.CompletedBatches = number
		s.Message = fmt.Sprintf("Completed batch %d/%d in %.1fs", number, total, elapsed.Seconds())
	})
}

// DownloadProgress records image download counts.
func (t *Tracker) DownloadProgress(done, total int) {
	t.update(func(s *Snapshot) {
		s.Status = StatusDownloadingImages
		s.DownloadedImages = done
		s.Message = fmt.Sprintf("Downloaded %d/%d images", done, total)
	})
}

// CatalogWritten records the CSV serialization step.
func (t *Tracker) CatalogWritten(entries int) {
	t.update(func(s *Snapshot) {
		s.Status = StatusWritingCatalog
		s.Message = fmt.Sprintf("Catalog built successfully. %d products created.", entries)
	})
}

// CreatingArchive marks the archive step.
func (t *Tracker) CreatingArchive() {
	t.update(func(s *Snapshot) {
		s.Status = StatusCreatingArchive
		s.Message = "Creating catalog archive..."
	})
}

// Completed records a successful run and its downloadable archive.
func (t *Tracker) Completed(archiveName, archiveURL string) {
	t.update(func(s *Snapshot) {
		s.Status = StatusCompleted
		s.ArchiveName = archiveName
		s.ArchiveURL = archiveURL
		s.Message = "Catalog generation completed"
	})
}

// Failed records a failed run.
func (t *Tracker) Failed(err error) {
	t.update(func(s *Snapshot) {
		s.Status = StatusError
		s.Error = err.Error()
		s.Message = "Error: " + err.Error()
	})
}
