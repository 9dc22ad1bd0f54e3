package repositories

import (
	"context"
	"fmt"

	"driverdesk/internal/adapters/persistence/models"
	"driverdesk/internal/core/domain"

	"gorm.io/gorm"
)

// driverRepository implements DriverRepository interface
type driverRepository struct {
	db *gorm.DB
}

// NewDriverRepository creates a new driver repository
func NewDriverRepository(db *gorm.DB) DriverRepository {
	return &driverRepository{db: db}
}

// Create creates a new driver
func (r *driverRepository) Create(ctx context.Context, driver *models.Driver) error {
	return r.db.WithContext(ctx).Create(driver).Error
}

// GetByID gets a driver by ID with documents preloaded
func (r *driverRepository) GetByID(ctx context.Context, id uint) (*models.Driver, error) {
	var driver models.Driver
	err := r.db.WithContext(ctx).
		Preload("Documents").
		Preload("Verifier").
		First(&driver, id).Error
	if err != nil {
		return nil, err
	}
	return &driver, nil
}

// GetByCode gets a driver by driver code
func (r *driverRepository) GetByCode(ctx context.Context, code string) (*models.Driver, error) {
	var driver models.Driver
	err := r.db.WithContext(ctx).
		Preload("Documents").
		Where("driver_code = ?", code).
		First(&driver).Error
	if err != nil {
		return nil, err
	}
	return &driver, nil
}

// Update saves the full driver record
func (r *driverRepository) Update(ctx context.Context, driver *models.Driver) error {
	return r.db.WithContext(ctx).Save(driver).Error
}

// UpdateFields applies a partial update
func (r *driverRepository) UpdateFields(ctx context.Context, id uint, updates map[string]interface{}) error {
	return r.db.WithContext(ctx).Model(&models.Driver{}).Where("id = ?", id).Updates(updates).Error
}

// Delete soft deletes a driver
func (r *driverRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&models.Driver{}, id).Error
}

// List lists drivers with filtering and pagination
func (r *driverRepository) List(ctx context.Context, filter DriverFilter, offset, limit int) ([]*models.Driver, int64, error) {
	var drivers []*models.Driver
	var total int64

	query := r.db.WithContext(ctx).Model(&models.Driver{})

	if filter.Search != "" {
		like := "%" + filter.Search + "%"
		query = query.Where(
			"full_name LIKE ? OR driver_code LIKE ? OR phone LIKE ? OR email LIKE ?",
			like, like, like, like,
		)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.VerificationStatus != "" {
		query = query.Where("verification_status = ?", filter.VerificationStatus)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.
		Preload("Documents").
		Order("id ASC").
		Offset(offset).
		Limit(limit).
		Find(&drivers).Error
	return drivers, total, err
}

// ListAll returns every driver with documents, for the record cache snapshot
func (r *driverRepository) ListAll(ctx context.Context) ([]*models.Driver, error) {
	var drivers []*models.Driver
	err := r.db.WithContext(ctx).
		Preload("Documents").
		Order("id ASC").
		Find(&drivers).Error
	return drivers, err
}

// NextDriverCode generates the next display code (DRV-0001, DRV-0002, ...)
func (r *driverRepository) NextDriverCode(ctx context.Context) (string, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Unscoped().
		Model(&models.Driver{}).
		Count(&count).Error; err != nil {
		return "", err
	}
	return fmt.Sprintf("DRV-%04d", count+1), nil
}

// CountByVerificationStatus returns driver counts per verification bucket
func (r *driverRepository) CountByVerificationStatus(ctx context.Context) (map[domain.VerificationStatus]int64, error) {
	type result struct {
		VerificationStatus domain.VerificationStatus
		Count              int64
	}
	var results []result

	err := r.db.WithContext(ctx).
		Model(&models.Driver{}).
		Select("verification_status, COUNT(*) as count").
		Group("verification_status").
		Find(&results).Error

	counts := map[domain.VerificationStatus]int64{
		domain.VerificationPending:  0,
		domain.VerificationVerified: 0,
		domain.VerificationRejected: 0,
	}
	for _, res := range results {
		counts[res.VerificationStatus] = res.Count
	}
	return counts, err
}

// OCRStats aggregates OCR processing results.
// "failed" means processed but still not verified (low match scores).
func (r *driverRepository) OCRStats(ctx context.Context) (*models.OCRStats, error) {
	stats := &models.OCRStats{}
	db := r.db.WithContext(ctx).Model(&models.Driver{})

	if err := db.Session(&gorm.Session{}).
		Where("last_processed_at IS NOT NULL").
		Count(&stats.TotalProcessed).Error; err != nil {
		return nil, err
	}
	if err := db.Session(&gorm.Session{}).
		Where("verification_status = ?", domain.VerificationVerified).
		Count(&stats.Passed).Error; err != nil {
		return nil, err
	}
	if err := db.Session(&gorm.Session{}).
		Where("verification_status = ?", domain.VerificationPending).
		Count(&stats.Pending).Error; err != nil {
		return nil, err
	}
	if err := db.Session(&gorm.Session{}).
		Where("last_processed_at IS NOT NULL AND verification_status <> ?", domain.VerificationVerified).
		Count(&stats.Failed).Error; err != nil {
		return nil, err
	}
	return stats, nil
}

// ExistsByPhone checks if a driver with the phone number already exists
func (r *driverRepository) ExistsByPhone(ctx context.Context, phone string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Driver{}).
		Where("phone = ?", phone).
		Count(&count).Error
	return count > 0, err
}
