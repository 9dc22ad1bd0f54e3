package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"driverdesk/internal/adapters/persistence/models"
	"driverdesk/internal/adapters/persistence/repositories"
	"driverdesk/internal/core/domain"
	"driverdesk/internal/pkg/password"
)

// Verification service errors
var (
	ErrConcurrentAction      = errors.New("another verification action is already running for this driver")
	ErrReasonRequired        = errors.New("rejection reason is required")
	ErrUndoExpired           = errors.New("undo window has expired for this decision")
	ErrNothingToUndo         = errors.New("driver has no decision to undo")
	ErrInvalidAdminPassword  = errors.New("invalid admin password")
	ErrOverrideRequiresAdmin = errors.New("override requires an admin account")
)

// VerificationService is the single dispatcher for all verification
// state changes. Every transition goes through one place so the
// pending/verified/rejected machine and the per-driver in-flight lock
// are enforced uniformly, no matter which handler triggered the action.
type VerificationService struct {
	driverRepo repositories.DriverRepository
	docRepo    repositories.DocumentRepository
	logRepo    repositories.VerificationLogRepository
	userRepo   repositories.UserRepository
	cache      *DriverCacheService
	notifier   *NotificationService
	ocr        *OCRService
	undoWindow time.Duration

	mu       sync.Mutex
	inFlight map[uint]bool
	// decidedAt remembers when the last verify/reject landed, keyed by
	// driver ID, to bound the undo window without a DB round trip
	decidedAt map[uint]time.Time
}

// NewVerificationService creates a new verification service
func NewVerificationService(
	driverRepo repositories.DriverRepository,
	docRepo repositories.DocumentRepository,
	logRepo repositories.VerificationLogRepository,
	userRepo repositories.UserRepository,
	cache *DriverCacheService,
	notifier *NotificationService,
	ocr *OCRService,
	undoWindow time.Duration,
) *VerificationService {
	if undoWindow <= 0 {
		undoWindow = 5 * time.Minute
	}
	return &VerificationService{
		driverRepo: driverRepo,
		docRepo:    docRepo,
		logRepo:    logRepo,
		userRepo:   userRepo,
		cache:      cache,
		notifier:   notifier,
		ocr:        ocr,
		undoWindow: undoWindow,
		inFlight:   make(map[uint]bool),
		decidedAt:  make(map[uint]time.Time),
	}
}

// acquire takes the per-driver action lock. While held, any second
// dispatch for the same driver fails fast instead of queueing.
func (s *VerificationService) acquire(driverID uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.inFlight[driverID] {
		return ErrConcurrentAction
	}
	s.inFlight[driverID] = true
	return nil
}

func (s *VerificationService) release(driverID uint) {
	s.mu.Lock()
	delete(s.inFlight, driverID)
	s.mu.Unlock()
}

// InFlight reports whether a driver currently has an action running
func (s *VerificationService) InFlight(driverID uint) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inFlight[driverID]
}

// Verify moves a pending driver to verified. Notes are optional and go
// into the audit trail.
func (s *VerificationService) Verify(ctx context.Context, driverID uint, notes string, actor *models.User) (*models.Driver, error) {
	if err := s.acquire(driverID); err != nil {
		return nil, err
	}
	defer s.release(driverID)

	return s.applyDecision(ctx, driverID, actor, domain.VerificationVerified, strings.TrimSpace(notes), models.ActionVerify)
}

// Reject moves a pending driver to rejected. The reason must be
// non-empty; this is checked before anything else runs.
func (s *VerificationService) Reject(ctx context.Context, driverID uint, reason string, actor *models.User) (*models.Driver, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, ErrReasonRequired
	}

	if err := s.acquire(driverID); err != nil {
		return nil, err
	}
	defer s.release(driverID)

	return s.applyDecision(ctx, driverID, actor, domain.VerificationRejected, reason, models.ActionReject)
}

// Undo reverts the latest verify or reject back to pending. Only
// allowed while the undo window is still open.
func (s *VerificationService) Undo(ctx context.Context, driverID uint, actor *models.User) (*models.Driver, error) {
	if err := s.acquire(driverID); err != nil {
		return nil, err
	}
	defer s.release(driverID)

	driver, err := s.driverRepo.GetByID(ctx, driverID)
	if err != nil {
		return nil, err
	}

	from := domain.VerificationStatus(driver.VerificationStatus)
	if from == domain.VerificationPending {
		return nil, ErrNothingToUndo
	}
	if !from.CanTransition(domain.VerificationPending) {
		return nil, domain.ErrIllegalTransition
	}

	s.mu.Lock()
	decided, ok := s.decidedAt[driverID]
	s.mu.Unlock()
	if !ok && driver.VerifiedAt != nil {
		decided = *driver.VerifiedAt
		ok = true
	}
	if !ok || time.Since(decided) > s.undoWindow {
		return nil, ErrUndoExpired
	}

	updates := map[string]interface{}{
		"verification_status": string(domain.VerificationPending),
		"rejection_reason":    "",
		"verified_by":         nil,
		"verified_at":         nil,
	}
	if err := s.driverRepo.UpdateFields(ctx, driverID, updates); err != nil {
		return nil, err
	}

	s.mu.Lock()
	delete(s.decidedAt, driverID)
	s.mu.Unlock()

	s.writeLog(ctx, driver, actor, models.ActionUndo, from, domain.VerificationPending, "decision undone")
	updated := s.refresh(ctx, driverID)

	s.notifier.Info(fmt.Sprintf("Undid %s decision for %s", from, driver.FullName))
	log.Printf("↩️ Undo: driver %s %s → pending", driver.DriverCode, from)
	return updated, nil
}

// OCRVerify runs the document checks for one driver and promotes them
// to verified when both scores pass. Low scores leave the driver
// pending with the scores recorded; extraction errors change nothing.
func (s *VerificationService) OCRVerify(ctx context.Context, driverID uint, vt domain.VerificationType, actor *models.User) (*models.Driver, *OCRResult, error) {
	if err := s.acquire(driverID); err != nil {
		return nil, nil, err
	}
	defer s.release(driverID)

	return s.runOCR(ctx, driverID, vt, actor)
}

// runOCR is the lock-free body of OCRVerify, shared with the bulk
// runner which manages the per-driver lock itself.
func (s *VerificationService) runOCR(ctx context.Context, driverID uint, vt domain.VerificationType, actor *models.User) (*models.Driver, *OCRResult, error) {
	driver, err := s.driverRepo.GetByID(ctx, driverID)
	if err != nil {
		return nil, nil, err
	}

	from := domain.VerificationStatus(driver.VerificationStatus)
	if from != domain.VerificationPending {
		return nil, nil, domain.ErrIllegalTransition
	}

	docs, err := s.docRepo.ListByDriver(ctx, driverID)
	if err != nil {
		return nil, nil, err
	}

	result, err := s.ocr.Process(ctx, driver, docs, vt)
	if err != nil {
		s.notifier.Error(fmt.Sprintf("OCR failed for %s: %v", driver.FullName, err))
		log.Printf("❌ OCR failed for driver %s: %v", driver.DriverCode, err)
		return nil, nil, err
	}

	// Only the fields the run actually checked are written back
	now := time.Now()
	updates := map[string]interface{}{
		"last_processed_at": now,
	}
	var ninScore, licScore *int
	if result.Type != domain.VerifyFRSC {
		updates["nin_score"] = result.NINScore
		ninScore = &result.NINScore
	}
	if result.Type != domain.VerifyNIN {
		updates["license_score"] = result.LicenseScore
		licScore = &result.LicenseScore
	}

	if result.Passed {
		updates["verification_status"] = string(domain.VerificationVerified)
		if actor != nil {
			updates["verified_by"] = actor.ID
		}
		updates["verified_at"] = now
	}

	if err := s.driverRepo.UpdateFields(ctx, driverID, updates); err != nil {
		return nil, nil, err
	}

	to := from
	if result.Passed {
		to = domain.VerificationVerified
		s.mu.Lock()
		s.decidedAt[driverID] = now
		s.mu.Unlock()
	}

	entry := &models.VerificationLog{
		DriverID:     driver.ID,
		Action:       models.ActionOCRVerify,
		FromStatus:   string(from),
		ToStatus:     string(to),
		NINScore:     ninScore,
		LicenseScore: licScore,
		Notes:        result.Detail,
	}
	if actor != nil {
		entry.PerformedBy = actor.ID
	}
	if err := s.logRepo.Create(ctx, entry); err != nil {
		log.Printf("⚠️ Failed to write verification log for driver %s: %v", driver.DriverCode, err)
	}

	if result.Passed {
		s.notifier.Success(fmt.Sprintf("%s verified (NIN %d, license %d)", driver.FullName, result.NINScore, result.LicenseScore))
		log.Printf("✅ OCR verified driver %s [nin=%d lic=%d]", driver.DriverCode, result.NINScore, result.LicenseScore)
	} else {
		s.notifier.Warning(fmt.Sprintf("%s still pending: %s", driver.FullName, result.Detail))
		log.Printf("⚠️ OCR below threshold for driver %s [nin=%d lic=%d]", driver.DriverCode, result.NINScore, result.LicenseScore)
	}

	updated := s.refresh(ctx, driverID)
	return updated, result, nil
}

// OCROverride lets an admin force a pending or rejected driver to
// verified regardless of scores. The admin's own password must be
// re-entered to confirm.
func (s *VerificationService) OCROverride(ctx context.Context, driverID uint, adminPassword, notes string, actor *models.User) (*models.Driver, error) {
	if actor == nil || actor.Role != string(domain.RoleAdmin) {
		return nil, ErrOverrideRequiresAdmin
	}
	if !password.Verify(adminPassword, actor.Password) {
		return nil, ErrInvalidAdminPassword
	}

	if err := s.acquire(driverID); err != nil {
		return nil, err
	}
	defer s.release(driverID)

	driver, err := s.driverRepo.GetByID(ctx, driverID)
	if err != nil {
		return nil, err
	}

	from := domain.VerificationStatus(driver.VerificationStatus)
	if from == domain.VerificationVerified {
		return nil, domain.ErrIllegalTransition
	}

	now := time.Now()
	updates := map[string]interface{}{
		"verification_status": string(domain.VerificationVerified),
		"rejection_reason":    "",
		"verified_by":         actor.ID,
		"verified_at":         now,
	}
	if err := s.driverRepo.UpdateFields(ctx, driverID, updates); err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.decidedAt[driverID] = now
	s.mu.Unlock()

	notes = strings.TrimSpace(notes)
	if notes == "" {
		notes = "manual override by admin"
	}
	s.writeLog(ctx, driver, actor, models.ActionOCROverride, from, domain.VerificationVerified, notes)
	updated := s.refresh(ctx, driverID)

	s.notifier.Warning(fmt.Sprintf("Manual override: %s marked verified by %s", driver.FullName, actor.Username))
	log.Printf("🔓 Override: driver %s forced to verified by %s", driver.DriverCode, actor.Username)
	return updated, nil
}

// BulkActionResult summarizes a synchronous batch action
type BulkActionResult struct {
	Requested int      `json:"requested"`
	Succeeded int      `json:"succeeded"`
	Failed    int      `json:"failed"`
	Errors    []string `json:"errors,omitempty"`
}

// BulkAction applies one manual action to a selection of drivers in
// order. Each driver is handled independently; one failure never stops
// the rest of the batch.
func (s *VerificationService) BulkAction(ctx context.Context, action string, driverIDs []uint, reason string, actor *models.User) (*BulkActionResult, error) {
	if len(driverIDs) == 0 {
		return nil, ErrEmptySelection
	}
	if action == "reject" && strings.TrimSpace(reason) == "" {
		return nil, ErrReasonRequired
	}

	result := &BulkActionResult{Requested: len(driverIDs)}
	for _, id := range driverIDs {
		var err error
		switch action {
		case "verify":
			_, err = s.Verify(ctx, id, "", actor)
		case "reject":
			_, err = s.Reject(ctx, id, reason, actor)
		case "activate":
			err = s.SetStatus(ctx, id, domain.DriverActive, actor)
		case "suspend":
			err = s.SetStatus(ctx, id, domain.DriverSuspended, actor)
		default:
			return nil, domain.ErrInvalidInput
		}

		if err != nil {
			result.Failed++
			result.Errors = append(result.Errors, fmt.Sprintf("driver %d: %v", id, err))
			continue
		}
		result.Succeeded++
	}

	s.notifier.Info(fmt.Sprintf("Bulk %s: %d succeeded, %d failed", action, result.Succeeded, result.Failed))
	log.Printf("📦 Bulk %s on %d drivers: %d ok, %d failed", action, result.Requested, result.Succeeded, result.Failed)
	return result, nil
}

// SetStatus changes a driver's operational status (active, suspended)
// and records the change in the audit trail.
func (s *VerificationService) SetStatus(ctx context.Context, driverID uint, status domain.DriverStatus, actor *models.User) error {
	if !status.IsValid() {
		return domain.ErrInvalidInput
	}

	if err := s.acquire(driverID); err != nil {
		return err
	}
	defer s.release(driverID)

	driver, err := s.driverRepo.GetByID(ctx, driverID)
	if err != nil {
		return err
	}
	if driver.Status == string(status) {
		return nil
	}

	if err := s.driverRepo.UpdateFields(ctx, driverID, map[string]interface{}{
		"status": string(status),
	}); err != nil {
		return err
	}

	from := domain.VerificationStatus(driver.VerificationStatus)
	s.writeLog(ctx, driver, actor, models.ActionStatusSet, from, from,
		fmt.Sprintf("status %s → %s", driver.Status, status))
	s.refresh(ctx, driverID)

	log.Printf("🔄 Driver %s status set to %s", driver.DriverCode, status)
	return nil
}

// History returns the audit trail for one driver, newest first
func (s *VerificationService) History(ctx context.Context, driverID uint) ([]*models.VerificationLog, error) {
	if _, err := s.driverRepo.GetByID(ctx, driverID); err != nil {
		return nil, err
	}
	return s.logRepo.ListByDriver(ctx, driverID)
}

// applyDecision performs a manual pending→verified or pending→rejected
// transition. Caller holds the per-driver lock.
func (s *VerificationService) applyDecision(ctx context.Context, driverID uint, actor *models.User, to domain.VerificationStatus, reason string, action string) (*models.Driver, error) {
	driver, err := s.driverRepo.GetByID(ctx, driverID)
	if err != nil {
		return nil, err
	}

	from := domain.VerificationStatus(driver.VerificationStatus)
	if !from.CanTransition(to) {
		return nil, domain.ErrIllegalTransition
	}

	now := time.Now()
	updates := map[string]interface{}{
		"verification_status": string(to),
	}
	switch to {
	case domain.VerificationVerified:
		if actor != nil {
			updates["verified_by"] = actor.ID
		}
		updates["verified_at"] = now
		updates["rejection_reason"] = ""
	case domain.VerificationRejected:
		updates["rejection_reason"] = reason
		updates["verified_by"] = nil
		updates["verified_at"] = nil
	}

	if err := s.driverRepo.UpdateFields(ctx, driverID, updates); err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.decidedAt[driverID] = now
	s.mu.Unlock()

	s.writeLog(ctx, driver, actor, action, from, to, reason)
	updated := s.refresh(ctx, driverID)

	if to == domain.VerificationVerified {
		s.notifier.Success(fmt.Sprintf("%s verified", driver.FullName))
		log.Printf("✅ Verified driver %s", driver.DriverCode)
	} else {
		s.notifier.Success(fmt.Sprintf("%s rejected: %s", driver.FullName, reason))
		log.Printf("🚫 Rejected driver %s: %s", driver.DriverCode, reason)
	}
	return updated, nil
}

// refresh re-reads the driver and patches the cache snapshot
func (s *VerificationService) refresh(ctx context.Context, driverID uint) *models.Driver {
	updated, err := s.driverRepo.GetByID(ctx, driverID)
	if err != nil {
		log.Printf("⚠️ Post-update reload failed for driver %d: %v", driverID, err)
		return nil
	}
	s.cache.Patch(updated)
	return updated
}

func (s *VerificationService) writeLog(ctx context.Context, driver *models.Driver, actor *models.User, action string, from, to domain.VerificationStatus, notes string) {
	entry := &models.VerificationLog{
		DriverID:   driver.ID,
		Action:     action,
		FromStatus: string(from),
		ToStatus:   string(to),
		Notes:      notes,
	}
	if actor != nil {
		entry.PerformedBy = actor.ID
	}
	if err := s.logRepo.Create(ctx, entry); err != nil {
		log.Printf("⚠️ Failed to write verification log for driver %s: %v", driver.DriverCode, err)
	}
}
