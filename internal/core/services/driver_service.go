package services

import (
	"context"
	"errors"
	"log"
	"strings"

	"driverdesk/internal/adapters/persistence/models"
	"driverdesk/internal/adapters/persistence/repositories"
	"driverdesk/internal/core/domain"

	"gorm.io/gorm"
)

// CreateDriverInput for registering a new driver
type CreateDriverInput struct {
	FullName      string `json:"full_name" validate:"required"`
	Phone         string `json:"phone" validate:"required"`
	Email         string `json:"email"`
	NIN           string `json:"nin" validate:"required"`
	LicenseNumber string `json:"license_number" validate:"required"`
}

// UpdateDriverInput for editing driver contact details
type UpdateDriverInput struct {
	FullName      *string `json:"full_name"`
	Phone         *string `json:"phone"`
	Email         *string `json:"email"`
	NIN           *string `json:"nin"`
	LicenseNumber *string `json:"license_number"`
	Notes         *string `json:"notes"`
}

// DriverService handles driver record CRUD and dashboard reads. Reads
// are answered from the in-memory cache; writes go to the repository
// and then patch the cache.
type DriverService struct {
	driverRepo repositories.DriverRepository
	docRepo    repositories.DocumentRepository
	cache      *DriverCacheService
}

// NewDriverService creates a new driver service
func NewDriverService(driverRepo repositories.DriverRepository, docRepo repositories.DocumentRepository, cache *DriverCacheService) *DriverService {
	return &DriverService{
		driverRepo: driverRepo,
		docRepo:    docRepo,
		cache:      cache,
	}
}

// Create registers a new driver with a generated driver code, starting
// pending and active
func (s *DriverService) Create(ctx context.Context, input CreateDriverInput) (*models.Driver, error) {
	input.FullName = strings.TrimSpace(input.FullName)
	input.Phone = strings.TrimSpace(input.Phone)
	if input.FullName == "" || input.Phone == "" || input.NIN == "" || input.LicenseNumber == "" {
		return nil, domain.ErrInvalidInput
	}

	exists, err := s.driverRepo.ExistsByPhone(ctx, input.Phone)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, domain.ErrDriverAlreadyExists
	}

	code, err := s.driverRepo.NextDriverCode(ctx)
	if err != nil {
		return nil, err
	}

	driver := &models.Driver{
		DriverCode:         code,
		FullName:           input.FullName,
		Phone:              input.Phone,
		Email:              strings.TrimSpace(input.Email),
		NIN:                strings.TrimSpace(input.NIN),
		LicenseNumber:      strings.TrimSpace(input.LicenseNumber),
		Status:             string(domain.DriverActive),
		VerificationStatus: string(domain.VerificationPending),
	}

	if err := s.driverRepo.Create(ctx, driver); err != nil {
		return nil, err
	}

	s.cache.Insert(driver)
	log.Printf("✅ Driver created: %s (%s)", driver.DriverCode, driver.FullName)
	return driver, nil
}

// GetByID reads one driver, preferring the cache snapshot
func (s *DriverService) GetByID(ctx context.Context, id uint) (*models.Driver, error) {
	if cached := s.cache.Get(id); cached != nil {
		return cached, nil
	}

	driver, err := s.driverRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrDriverNotFound
		}
		return nil, err
	}
	return driver, nil
}

// List searches the cache snapshot and paginates in memory
func (s *DriverService) List(query string, status domain.VerificationStatus, offset, limit int) ([]models.Driver, int64) {
	matched := s.cache.Search(query, status)
	total := int64(len(matched))

	if offset >= len(matched) {
		return []models.Driver{}, total
	}
	end := offset + limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[offset:end], total
}

// Counts returns the per-tab totals from the cache
func (s *DriverService) Counts() map[domain.VerificationStatus]int {
	return s.cache.Counts()
}

// Update edits a driver's own details. Verification state is never
// touched here; that belongs to the verification service.
func (s *DriverService) Update(ctx context.Context, id uint, input UpdateDriverInput) (*models.Driver, error) {
	if _, err := s.GetByID(ctx, id); err != nil {
		return nil, err
	}

	updates := make(map[string]interface{})
	if input.FullName != nil {
		updates["full_name"] = strings.TrimSpace(*input.FullName)
	}
	if input.Phone != nil {
		updates["phone"] = strings.TrimSpace(*input.Phone)
	}
	if input.Email != nil {
		updates["email"] = strings.TrimSpace(*input.Email)
	}
	if input.NIN != nil {
		updates["nin"] = strings.TrimSpace(*input.NIN)
	}
	if input.LicenseNumber != nil {
		updates["license_number"] = strings.TrimSpace(*input.LicenseNumber)
	}
	if input.Notes != nil {
		updates["verification_notes"] = *input.Notes
	}
	if len(updates) == 0 {
		return nil, domain.ErrInvalidInput
	}

	if err := s.driverRepo.UpdateFields(ctx, id, updates); err != nil {
		return nil, err
	}

	updated, err := s.driverRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	s.cache.Patch(updated)

	log.Printf("✏️ Driver %s updated", updated.DriverCode)
	return updated, nil
}

// Delete soft-deletes a driver and drops it from the cache
func (s *DriverService) Delete(ctx context.Context, id uint) error {
	if _, err := s.GetByID(ctx, id); err != nil {
		return err
	}

	if err := s.driverRepo.Delete(ctx, id); err != nil {
		return err
	}

	s.cache.Remove(id)
	log.Printf("🗑️ Driver %d deleted", id)
	return nil
}

// Dashboard returns the OCR processing overview
func (s *DriverService) Dashboard(ctx context.Context) (*models.OCRStats, error) {
	return s.driverRepo.OCRStats(ctx)
}

// RefreshCache forces a full snapshot reload from the database
func (s *DriverService) RefreshCache(ctx context.Context) error {
	return s.cache.Load(ctx)
}
