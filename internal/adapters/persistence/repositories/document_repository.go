package repositories

import (
	"context"

	"driverdesk/internal/adapters/persistence/models"
	"driverdesk/internal/core/domain"

	"gorm.io/gorm"
)

// documentRepository implements DocumentRepository interface
type documentRepository struct {
	db *gorm.DB
}

// NewDocumentRepository creates a new document repository
func NewDocumentRepository(db *gorm.DB) DocumentRepository {
	return &documentRepository{db: db}
}

// Create stores document metadata
func (r *documentRepository) Create(ctx context.Context, doc *models.DriverDocument) error {
	return r.db.WithContext(ctx).Create(doc).Error
}

// GetByDocID gets a document by its public uuid
func (r *documentRepository) GetByDocID(ctx context.Context, docID string) (*models.DriverDocument, error) {
	var doc models.DriverDocument
	err := r.db.WithContext(ctx).Where("doc_id = ?", docID).First(&doc).Error
	if err != nil {
		return nil, err
	}
	return &doc, nil
}

// ListByDriver returns all documents of a driver
func (r *documentRepository) ListByDriver(ctx context.Context, driverID uint) ([]*models.DriverDocument, error) {
	var docs []*models.DriverDocument
	err := r.db.WithContext(ctx).
		Where("driver_id = ?", driverID).
		Order("created_at DESC").
		Find(&docs).Error
	return docs, err
}

// ListByDriverAndType returns a driver's documents of one type
func (r *documentRepository) ListByDriverAndType(ctx context.Context, driverID uint, docType domain.DocType) ([]*models.DriverDocument, error) {
	var docs []*models.DriverDocument
	err := r.db.WithContext(ctx).
		Where("driver_id = ? AND doc_type = ?", driverID, docType).
		Order("created_at DESC").
		Find(&docs).Error
	return docs, err
}

// Delete removes document metadata
func (r *documentRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&models.DriverDocument{}, id).Error
}
