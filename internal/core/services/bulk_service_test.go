package services

import (
	"errors"
	"testing"
	"time"

	"driverdesk/internal/core/domain"
)

// bulkFixture bundles the bulk service with the collaborators tests
// assert against.
type bulkFixture struct {
	svc      *BulkService
	repo     *fakeDriverRepo
	notifier *NotificationService
	cache    *DriverCacheService
	ids      []uint
}

// newTestBulk seeds three pending drivers and wires a bulk service with
// the given inter-item delay. Registry outcomes: driver 1 passes,
// driver 2 scores low, driver 3 errors out entirely.
func newTestBulk(t *testing.T, delay time.Duration) *bulkFixture {
	t.Helper()

	repo := newFakeDriverRepo()
	d1 := repo.add(pendingDriver("Adewale Okonkwo", "12345678901", "FRSC-AA123456"))
	d2 := repo.add(pendingDriver("Chidinma Eze", "98765432109", "FRSC-BB654321"))
	d3 := repo.add(pendingDriver("Ibrahim Musa", "11122233344", "FRSC-CC111222"))

	reg := &fakeRegistry{
		scores: map[string]int{
			"12345678901":   95,
			"FRSC-AA123456": 92,
			"98765432109":   90,
			"FRSC-BB654321": 35,
		},
		errs: map[string]error{
			"11122233344":   errors.New("registry timeout"),
			"FRSC-CC111222": errors.New("registry timeout"),
		},
	}

	verification, _, notifier, cache := newTestVerification(repo, reg)
	svc := NewBulkService(verification, cache, notifier, delay)
	return &bulkFixture{
		svc:      svc,
		repo:     repo,
		notifier: notifier,
		cache:    cache,
		ids:      []uint{d1.ID, d2.ID, d3.ID},
	}
}

// countToasts tallies active toasts by kind
func countToasts(notifier *NotificationService) map[domain.NotificationKind]int {
	counts := make(map[domain.NotificationKind]int)
	for _, toast := range notifier.Active() {
		counts[toast.Kind]++
	}
	return counts
}

func waitDone(t *testing.T, svc *BulkService, jobID string) {
	t.Helper()
	select {
	case <-svc.Done(jobID):
	case <-time.After(5 * time.Second):
		t.Fatal("bulk job did not finish in time")
	}
}

func TestBulkRunMixedOutcomes(t *testing.T) {
	fx := newTestBulk(t, 0)
	svc := fx.svc
	loadedBefore := fx.cache.LoadedAt()

	job, err := svc.Start(fx.ids, domain.VerifyBoth, "admin")
	if err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if job.Total != 3 || job.Status != domain.BulkRunning {
		t.Fatalf("unexpected initial job: %+v", job)
	}

	waitDone(t, svc, job.ID)

	final, err := svc.Get(job.ID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if final.Status != domain.BulkCompleted {
		t.Fatalf("expected completed, got %s", final.Status)
	}
	// Every attempted item counts, regardless of outcome
	if final.ProcessedCount != 3 {
		t.Fatalf("expected processed=3, got %d", final.ProcessedCount)
	}
	if final.SucceededCount != 1 || final.FailedCount != 2 {
		t.Fatalf("expected 1 pass / 2 fail, got %d/%d", final.SucceededCount, final.FailedCount)
	}
	if final.FinishedAt == nil {
		t.Fatal("FinishedAt not set")
	}
	if len(final.DriverIDs) != 0 {
		t.Fatalf("queue should be empty after the run, got %d remaining", len(final.DriverIDs))
	}
	if svc.Current() != nil {
		t.Fatal("finished job still reported as current")
	}

	// One toast per outcome plus the completion summary
	kinds := countToasts(fx.notifier)
	if kinds[domain.NotifySuccess] != 1 || kinds[domain.NotifyWarning] != 1 || kinds[domain.NotifyError] != 1 {
		t.Fatalf("unexpected toast kinds: %v", kinds)
	}
	if kinds[domain.NotifyInfo] != 1 {
		t.Fatalf("expected one summary toast, got %d", kinds[domain.NotifyInfo])
	}

	// Completion re-fetches the whole cache snapshot
	if !fx.cache.LoadedAt().After(loadedBefore) {
		t.Fatal("cache was not reloaded after the job completed")
	}

	// Only the passing driver was promoted
	d1, _ := fx.repo.GetByID(nil, fx.ids[0])
	if d1.VerificationStatus != string(domain.VerificationVerified) {
		t.Fatalf("driver 1 should be verified, got %s", d1.VerificationStatus)
	}
	d2, _ := fx.repo.GetByID(nil, fx.ids[1])
	if d2.VerificationStatus != string(domain.VerificationPending) {
		t.Fatalf("driver 2 should stay pending, got %s", d2.VerificationStatus)
	}
	d3, _ := fx.repo.GetByID(nil, fx.ids[2])
	if d3.VerificationStatus != string(domain.VerificationPending) {
		t.Fatalf("driver 3 should stay pending, got %s", d3.VerificationStatus)
	}
}

func TestBulkToastKindsPerOutcome(t *testing.T) {
	repo := newFakeDriverRepo()
	d1 := repo.add(pendingDriver("Adewale Okonkwo", "12345678901", "FRSC-AA123456"))
	d2 := repo.add(pendingDriver("Chidinma Eze", "98765432109", "FRSC-BB654321"))
	d3 := repo.add(pendingDriver("Ibrahim Musa", "11122233344", "FRSC-CC111222"))

	reg := &fakeRegistry{
		scores: map[string]int{
			"12345678901":   95,
			"FRSC-AA123456": 92,
			"98765432109":   90,
			"FRSC-BB654321": 88,
		},
		errs: map[string]error{
			"11122233344":   errors.New("registry timeout"),
			"FRSC-CC111222": errors.New("registry timeout"),
		},
	}

	verification, _, notifier, cache := newTestVerification(repo, reg)
	svc := NewBulkService(verification, cache, notifier, 0)

	job, err := svc.Start([]uint{d1.ID, d2.ID, d3.ID}, domain.VerifyBoth, "admin")
	if err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	waitDone(t, svc, job.ID)

	kinds := countToasts(notifier)
	if kinds[domain.NotifySuccess] != 2 {
		t.Fatalf("expected 2 success toasts, got %d", kinds[domain.NotifySuccess])
	}
	if kinds[domain.NotifyError] != 1 {
		t.Fatalf("expected 1 error toast, got %d", kinds[domain.NotifyError])
	}

	got, _ := repo.GetByID(nil, d3.ID)
	if got.VerificationStatus != string(domain.VerificationPending) {
		t.Fatalf("failed driver must stay pending, got %s", got.VerificationStatus)
	}
}

func TestBulkStartValidation(t *testing.T) {
	svc := newTestBulk(t, 0).svc

	if _, err := svc.Start(nil, domain.VerifyBoth, "admin"); !errors.Is(err, ErrEmptySelection) {
		t.Fatalf("expected ErrEmptySelection, got %v", err)
	}
	if _, err := svc.Start([]uint{0, 0}, domain.VerifyBoth, "admin"); !errors.Is(err, ErrEmptySelection) {
		t.Fatalf("expected ErrEmptySelection for zero ids, got %v", err)
	}

	// Duplicate selections collapse
	job, err := svc.Start([]uint{1, 1, 2, 2}, domain.VerifyBoth, "admin")
	if err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if job.Total != 2 {
		t.Fatalf("expected dedupe to 2, got %d", job.Total)
	}
	waitDone(t, svc, job.ID)
}

func TestBulkSingleJobAtATime(t *testing.T) {
	fx := newTestBulk(t, time.Hour)
	svc, ids := fx.svc, fx.ids

	job, err := svc.Start(ids, domain.VerifyBoth, "admin")
	if err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	if _, err := svc.Start(ids, domain.VerifyBoth, "admin"); !errors.Is(err, ErrJobAlreadyRunning) {
		t.Fatalf("expected ErrJobAlreadyRunning, got %v", err)
	}

	if _, err := svc.Cancel(job.ID); err != nil {
		t.Fatalf("Cancel failed: %v", err)
	}
	waitDone(t, svc, job.ID)

	// A terminal job no longer blocks new starts
	next, err := svc.Start(ids[:1], domain.VerifyBoth, "admin")
	if err != nil {
		t.Fatalf("Start after cancel failed: %v", err)
	}
	waitDone(t, svc, next.ID)
}

func TestBulkPauseResume(t *testing.T) {
	fx := newTestBulk(t, 50*time.Millisecond)
	svc, ids := fx.svc, fx.ids

	job, err := svc.Start(ids, domain.VerifyBoth, "admin")
	if err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	paused, err := svc.Pause(job.ID)
	if err != nil {
		t.Fatalf("Pause failed: %v", err)
	}
	if paused.Status != domain.BulkPaused {
		t.Fatalf("expected paused, got %s", paused.Status)
	}
	if len(paused.DriverIDs) != paused.Total-paused.ProcessedCount {
		t.Fatalf("queue length %d does not match %d remaining items",
			len(paused.DriverIDs), paused.Total-paused.ProcessedCount)
	}

	// Paused means no completion
	select {
	case <-svc.Done(job.ID):
		t.Fatal("paused job must not finish")
	case <-time.After(200 * time.Millisecond):
	}

	if _, err := svc.Pause(job.ID); !errors.Is(err, ErrJobNotRunning) {
		t.Fatalf("expected ErrJobNotRunning on double pause, got %v", err)
	}

	resumed, err := svc.Resume(job.ID)
	if err != nil {
		t.Fatalf("Resume failed: %v", err)
	}
	if resumed.Status != domain.BulkRunning {
		t.Fatalf("expected running, got %s", resumed.Status)
	}
	if _, err := svc.Resume(job.ID); !errors.Is(err, ErrJobNotPaused) {
		t.Fatalf("expected ErrJobNotPaused on double resume, got %v", err)
	}

	waitDone(t, svc, job.ID)

	final, _ := svc.Get(job.ID)
	if final.Status != domain.BulkCompleted || final.ProcessedCount != 3 {
		t.Fatalf("resumed job did not complete the queue: %+v", final)
	}
}

func TestBulkCancelDropsRemainingQueue(t *testing.T) {
	fx := newTestBulk(t, time.Hour)
	svc, ids := fx.svc, fx.ids

	job, err := svc.Start(ids, domain.VerifyBoth, "admin")
	if err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	// Wait until the first item has been attempted
	deadline := time.Now().Add(5 * time.Second)
	for {
		snap, err := svc.Get(job.ID)
		if err != nil {
			t.Fatalf("Get failed: %v", err)
		}
		if snap.ProcessedCount >= 1 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("first item never processed")
		}
		time.Sleep(5 * time.Millisecond)
	}

	cancelled, err := svc.Cancel(job.ID)
	if err != nil {
		t.Fatalf("Cancel failed: %v", err)
	}
	if len(cancelled.DriverIDs) != 0 {
		t.Fatalf("cancel must drop the remaining queue, got %d items", len(cancelled.DriverIDs))
	}
	waitDone(t, svc, job.ID)

	final, _ := svc.Get(job.ID)
	if final.Status != domain.BulkCancelled {
		t.Fatalf("expected cancelled, got %s", final.Status)
	}
	if final.ProcessedCount >= final.Total {
		t.Fatalf("cancel should leave queue unfinished, processed %d/%d", final.ProcessedCount, final.Total)
	}

	if _, err := svc.Cancel(job.ID); !errors.Is(err, ErrJobFinished) {
		t.Fatalf("expected ErrJobFinished on double cancel, got %v", err)
	}
}

func TestBulkJobLookup(t *testing.T) {
	svc := newTestBulk(t, 0).svc

	if _, err := svc.Get("nope"); !errors.Is(err, ErrJobNotFound) {
		t.Fatalf("expected ErrJobNotFound, got %v", err)
	}
	if svc.Current() != nil {
		t.Fatal("expected no current job")
	}

	// Done for an unknown job is already closed
	select {
	case <-svc.Done("nope"):
	case <-time.After(time.Second):
		t.Fatal("Done channel for unknown job should be closed")
	}
}
