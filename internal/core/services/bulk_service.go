package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"driverdesk/internal/core/domain"

	"github.com/google/uuid"
)

// Bulk service errors
var (
	ErrEmptySelection    = errors.New("no drivers selected for bulk processing")
	ErrJobAlreadyRunning = errors.New("a bulk job is already running")
	ErrJobNotFound       = errors.New("bulk job not found")
	ErrJobNotRunning     = errors.New("bulk job is not running")
	ErrJobNotPaused      = errors.New("bulk job is not paused")
	ErrJobFinished       = errors.New("bulk job has already finished")
)

// BulkJob tracks the progress of one sequential OCR run. DriverIDs
// holds the remaining queue, so len(DriverIDs) == Total - ProcessedCount
// while the job runs and cancelling empties it at once.
type BulkJob struct {
	ID              string                  `json:"id"`
	Status          domain.BulkJobStatus    `json:"status"`
	Type            domain.VerificationType `json:"verification_type"`
	DriverIDs       []uint                  `json:"driver_ids"`
	Total           int                     `json:"total"`
	ProcessedCount  int                     `json:"processed_count"`
	SucceededCount  int                     `json:"succeeded_count"`
	FailedCount     int                     `json:"failed_count"`
	CurrentDriverID uint                    `json:"current_driver_id,omitempty"`
	StartedAt       time.Time               `json:"started_at"`
	FinishedAt      *time.Time              `json:"finished_at,omitempty"`
	StartedBy       string                  `json:"started_by,omitempty"`
}

// snapshot returns a copy safe to serialize. Caller holds the manager lock.
func (j *BulkJob) snapshot() *BulkJob {
	clone := *j
	clone.DriverIDs = append([]uint(nil), j.DriverIDs...)
	return &clone
}

// BulkService runs strictly sequential OCR verification over a queue
// of drivers in a background goroutine. One item is in flight at a
// time, an inter-item delay throttles the run, and exactly one job may
// be running at once. Cancelling clears the remaining queue but lets
// the in-flight item finish.
type BulkService struct {
	verification *VerificationService
	cache        *DriverCacheService
	notifier     *NotificationService
	delay        time.Duration

	mu       sync.Mutex
	jobs     map[string]*BulkJob
	current  string
	resumeCh chan struct{}
	cancelCh chan struct{}
	doneCh   map[string]chan struct{}
}

// NewBulkService creates a new bulk service
func NewBulkService(verification *VerificationService, cache *DriverCacheService, notifier *NotificationService, delay time.Duration) *BulkService {
	return &BulkService{
		verification: verification,
		cache:        cache,
		notifier:     notifier,
		delay:        delay,
		jobs:         make(map[string]*BulkJob),
		doneCh:       make(map[string]chan struct{}),
	}
}

// Start seeds a new job with the given driver selection and launches
// the runner goroutine. Order of processing follows selection order.
func (s *BulkService) Start(driverIDs []uint, vt domain.VerificationType, actor string) (*BulkJob, error) {
	ids := dedupe(driverIDs)
	if len(ids) == 0 {
		return nil, ErrEmptySelection
	}
	if !vt.IsValid() {
		vt = domain.VerifyBoth
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current != "" {
		if job, ok := s.jobs[s.current]; ok && !job.Status.IsTerminal() {
			return nil, ErrJobAlreadyRunning
		}
	}

	job := &BulkJob{
		ID:        uuid.New().String(),
		Status:    domain.BulkRunning,
		Type:      vt,
		DriverIDs: ids,
		Total:     len(ids),
		StartedAt: time.Now(),
		StartedBy: actor,
	}
	s.jobs[job.ID] = job
	s.current = job.ID
	s.cancelCh = make(chan struct{})
	s.resumeCh = nil
	s.doneCh[job.ID] = make(chan struct{})

	go s.run(job.ID, ids, vt)

	log.Printf("🚀 Bulk OCR job %s started: %d drivers", job.ID, len(ids))
	return job.snapshot(), nil
}

// Get returns a snapshot of one job
func (s *BulkService) Get(jobID string) (*BulkJob, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	job, ok := s.jobs[jobID]
	if !ok {
		return nil, ErrJobNotFound
	}
	return job.snapshot(), nil
}

// Current returns the active job, or nil when none is running
func (s *BulkService) Current() *BulkJob {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current == "" {
		return nil
	}
	job, ok := s.jobs[s.current]
	if !ok || job.Status.IsTerminal() {
		return nil
	}
	return job.snapshot()
}

// Pause suspends the runner after the in-flight item completes
func (s *BulkService) Pause(jobID string) (*BulkJob, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	job, ok := s.jobs[jobID]
	if !ok {
		return nil, ErrJobNotFound
	}
	if job.Status != domain.BulkRunning {
		return nil, ErrJobNotRunning
	}

	job.Status = domain.BulkPaused
	s.resumeCh = make(chan struct{})
	log.Printf("⏸️ Bulk job %s paused at %d/%d", jobID, job.ProcessedCount, job.Total)
	return job.snapshot(), nil
}

// Resume continues a paused job from where it stopped
func (s *BulkService) Resume(jobID string) (*BulkJob, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	job, ok := s.jobs[jobID]
	if !ok {
		return nil, ErrJobNotFound
	}
	if job.Status != domain.BulkPaused {
		return nil, ErrJobNotPaused
	}

	job.Status = domain.BulkRunning
	if s.resumeCh != nil {
		close(s.resumeCh)
		s.resumeCh = nil
	}
	log.Printf("▶️ Bulk job %s resumed at %d/%d", jobID, job.ProcessedCount, job.Total)
	return job.snapshot(), nil
}

// Cancel stops a running or paused job. The item currently in flight
// is allowed to finish; everything still queued is dropped.
func (s *BulkService) Cancel(jobID string) (*BulkJob, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	job, ok := s.jobs[jobID]
	if !ok {
		return nil, ErrJobNotFound
	}
	if job.Status.IsTerminal() {
		return nil, ErrJobFinished
	}

	job.Status = domain.BulkCancelled
	job.DriverIDs = nil
	close(s.cancelCh)
	if s.resumeCh != nil {
		close(s.resumeCh)
		s.resumeCh = nil
	}
	log.Printf("🛑 Bulk job %s cancelled at %d/%d", jobID, job.ProcessedCount, job.Total)
	return job.snapshot(), nil
}

// Done exposes a channel closed when the job's runner goroutine exits.
// Progress polling does not need it; tests and shutdown do.
func (s *BulkService) Done(jobID string) <-chan struct{} {
	s.mu.Lock()
	defer s.mu.Unlock()

	ch, ok := s.doneCh[jobID]
	if !ok {
		closed := make(chan struct{})
		close(closed)
		return closed
	}
	return ch
}

// run is the job's only worker. Items are processed one at a time in
// selection order; the processed count advances for every attempted
// item no matter how it turned out.
func (s *BulkService) run(jobID string, ids []uint, vt domain.VerificationType) {
	defer s.finish(jobID)

	ctx := context.Background()

	for i, driverID := range ids {
		if !s.awaitRunnable(jobID) {
			return
		}

		s.mu.Lock()
		job := s.jobs[jobID]
		job.CurrentDriverID = driverID
		s.mu.Unlock()

		s.processOne(ctx, jobID, driverID, vt)

		s.mu.Lock()
		job.ProcessedCount++
		job.CurrentDriverID = 0
		if len(job.DriverIDs) > 0 {
			job.DriverIDs = job.DriverIDs[1:]
		}
		cancelled := job.Status == domain.BulkCancelled
		s.mu.Unlock()

		if cancelled {
			return
		}

		// Throttle between items, but never after the last one
		if i < len(ids)-1 && s.delay > 0 {
			select {
			case <-time.After(s.delay):
			case <-s.cancelCh:
				return
			}
		}
	}
}

// awaitRunnable blocks while the job is paused and reports whether the
// runner should pick up the next item.
func (s *BulkService) awaitRunnable(jobID string) bool {
	for {
		s.mu.Lock()
		job := s.jobs[jobID]
		status := job.Status
		resume := s.resumeCh
		s.mu.Unlock()

		switch status {
		case domain.BulkRunning:
			return true
		case domain.BulkPaused:
			select {
			case <-resume:
			case <-s.cancelCh:
				return false
			}
		default:
			return false
		}
	}
}

// processOne runs OCR verification for a single queued driver. The
// per-driver lock is taken the same way a manual dispatch takes it, so
// a manual action racing the queue loses cleanly.
func (s *BulkService) processOne(ctx context.Context, jobID string, driverID uint, vt domain.VerificationType) {
	if err := s.verification.acquire(driverID); err != nil {
		s.recordFailure(jobID)
		s.notifier.Error(fmt.Sprintf("Skipped driver %d: action already in progress", driverID))
		return
	}
	defer s.verification.release(driverID)

	_, result, err := s.verification.runOCR(ctx, driverID, vt, nil)
	if err != nil {
		s.recordFailure(jobID)
		return
	}

	s.mu.Lock()
	job := s.jobs[jobID]
	if result.Passed {
		job.SucceededCount++
	} else {
		job.FailedCount++
	}
	s.mu.Unlock()
}

func (s *BulkService) recordFailure(jobID string) {
	s.mu.Lock()
	if job, ok := s.jobs[jobID]; ok {
		job.FailedCount++
	}
	s.mu.Unlock()
}

// finish closes out the job and signals Done
func (s *BulkService) finish(jobID string) {
	s.mu.Lock()
	job := s.jobs[jobID]
	now := time.Now()
	job.FinishedAt = &now
	if job.Status != domain.BulkCancelled {
		job.Status = domain.BulkCompleted
	}
	completed := job.Status == domain.BulkCompleted
	if s.current == jobID {
		s.current = ""
	}
	done := s.doneCh[jobID]
	summary := fmt.Sprintf("Bulk OCR %s: %d processed, %d passed, %d failed",
		job.Status, job.ProcessedCount, job.SucceededCount, job.FailedCount)
	s.mu.Unlock()

	// A completed run refreshes the full cache snapshot so counts and
	// summaries reflect every write the queue made
	if completed {
		if err := s.cache.Load(context.Background()); err != nil {
			log.Printf("⚠️ Cache refresh after bulk job %s failed: %v", jobID, err)
		}
	}

	s.notifier.Info(summary)
	log.Printf("🏁 Bulk job %s finished [%s] %d/%d", jobID, job.Status, job.ProcessedCount, job.Total)
	close(done)
}

func dedupe(ids []uint) []uint {
	seen := make(map[uint]bool, len(ids))
	result := make([]uint, 0, len(ids))
	for _, id := range ids {
		if id == 0 || seen[id] {
			continue
		}
		seen[id] = true
		result = append(result, id)
	}
	return result
}
