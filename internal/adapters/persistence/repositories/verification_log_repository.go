package repositories

import (
	"context"

	"driverdesk/internal/adapters/persistence/models"

	"gorm.io/gorm"
)

// verificationLogRepository implements VerificationLogRepository interface
type verificationLogRepository struct {
	db *gorm.DB
}

// NewVerificationLogRepository creates a new verification log repository
func NewVerificationLogRepository(db *gorm.DB) VerificationLogRepository {
	return &verificationLogRepository{db: db}
}

// Create appends an audit entry
func (r *verificationLogRepository) Create(ctx context.Context, entry *models.VerificationLog) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

// ListByDriver returns the audit trail of a driver, newest first
func (r *verificationLogRepository) ListByDriver(ctx context.Context, driverID uint) ([]*models.VerificationLog, error) {
	var entries []*models.VerificationLog
	err := r.db.WithContext(ctx).
		Preload("Performer").
		Where("driver_id = ?", driverID).
		Order("created_at DESC").
		Find(&entries).Error
	return entries, err
}
