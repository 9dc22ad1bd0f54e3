package repositories

import (
	"context"

	"driverdesk/internal/adapters/persistence/models"
	"driverdesk/internal/core/domain"
)

// UserRepository defines staff user repository interface
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id uint) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	Update(ctx context.Context, user *models.User) error
	Delete(ctx context.Context, id uint) error
	List(ctx context.Context, offset, limit int) ([]*models.User, int64, error)
	ExistsByUsername(ctx context.Context, username string) (bool, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
}

// RefreshTokenRepository defines refresh token repository interface
type RefreshTokenRepository interface {
	Create(ctx context.Context, token *models.RefreshToken) error
	GetByTokenHash(ctx context.Context, tokenHash string) (*models.RefreshToken, error)
	Revoke(ctx context.Context, id uint) error
	RevokeByTokenHash(ctx context.Context, tokenHash string) error
	RevokeAllByUserID(ctx context.Context, userID uint) error
	DeleteExpired(ctx context.Context) error
}

// DriverFilter narrows driver listing
type DriverFilter struct {
	Search             string
	Status             domain.DriverStatus
	VerificationStatus domain.VerificationStatus
}

// DriverRepository defines driver repository interface
type DriverRepository interface {
	Create(ctx context.Context, driver *models.Driver) error
	GetByID(ctx context.Context, id uint) (*models.Driver, error)
	GetByCode(ctx context.Context, code string) (*models.Driver, error)
	Update(ctx context.Context, driver *models.Driver) error
	UpdateFields(ctx context.Context, id uint, updates map[string]interface{}) error
	Delete(ctx context.Context, id uint) error
	List(ctx context.Context, filter DriverFilter, offset, limit int) ([]*models.Driver, int64, error)
	ListAll(ctx context.Context) ([]*models.Driver, error)
	NextDriverCode(ctx context.Context) (string, error)
	CountByVerificationStatus(ctx context.Context) (map[domain.VerificationStatus]int64, error)
	OCRStats(ctx context.Context) (*models.OCRStats, error)
	ExistsByPhone(ctx context.Context, phone string) (bool, error)
}

// DocumentRepository defines driver document repository interface
type DocumentRepository interface {
	Create(ctx context.Context, doc *models.DriverDocument) error
	GetByDocID(ctx context.Context, docID string) (*models.DriverDocument, error)
	ListByDriver(ctx context.Context, driverID uint) ([]*models.DriverDocument, error)
	ListByDriverAndType(ctx context.Context, driverID uint, docType domain.DocType) ([]*models.DriverDocument, error)
	Delete(ctx context.Context, id uint) error
}

// VerificationLogRepository defines audit log repository interface
type VerificationLogRepository interface {
	Create(ctx context.Context, entry *models.VerificationLog) error
	ListByDriver(ctx context.Context, driverID uint) ([]*models.VerificationLog, error)
}
