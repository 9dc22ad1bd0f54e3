package services

import (
	"context"

	"driverdesk/internal/adapters/persistence/models"
	"driverdesk/internal/core/domain"
)

// Note: AuthService implementation is in auth_service.go
// Note: UserService implementation is in user_service.go

// Verifier defines the dispatcher surface handlers depend on
type Verifier interface {
	Verify(ctx context.Context, driverID uint, notes string, actor *models.User) (*models.Driver, error)
	Reject(ctx context.Context, driverID uint, reason string, actor *models.User) (*models.Driver, error)
	Undo(ctx context.Context, driverID uint, actor *models.User) (*models.Driver, error)
	OCRVerify(ctx context.Context, driverID uint, vt domain.VerificationType, actor *models.User) (*models.Driver, *OCRResult, error)
	OCROverride(ctx context.Context, driverID uint, adminPassword, notes string, actor *models.User) (*models.Driver, error)
	BulkAction(ctx context.Context, action string, driverIDs []uint, reason string, actor *models.User) (*BulkActionResult, error)
	History(ctx context.Context, driverID uint) ([]*models.VerificationLog, error)
}

// BulkRunner defines the queue manager surface handlers depend on
type BulkRunner interface {
	Start(driverIDs []uint, vt domain.VerificationType, actor string) (*BulkJob, error)
	Get(jobID string) (*BulkJob, error)
	Current() *BulkJob
	Pause(jobID string) (*BulkJob, error)
	Resume(jobID string) (*BulkJob, error)
	Cancel(jobID string) (*BulkJob, error)
}

// DriverReader defines the cached read surface for listings
type DriverReader interface {
	GetByID(ctx context.Context, id uint) (*models.Driver, error)
	List(query string, status domain.VerificationStatus, offset, limit int) ([]models.Driver, int64)
	Counts() map[domain.VerificationStatus]int
}
