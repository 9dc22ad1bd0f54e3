package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"driverdesk/internal/adapters/persistence/models"
	"driverdesk/internal/adapters/persistence/repositories"
	"driverdesk/internal/core/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Document service errors
var (
	ErrFileTooLarge    = errors.New("file exceeds the maximum allowed size")
	ErrUnsupportedFile = errors.New("unsupported file type")
)

// maxUploadSize caps a single document at 10 MB
const maxUploadSize = 10 << 20

var allowedContentTypes = map[string]string{
	"application/pdf": ".pdf",
	"image/jpeg":      ".jpg",
	"image/png":       ".png",
	"image/tiff":      ".tiff",
}

// DocumentService stores uploaded identity documents on disk and
// tracks them in the database
type DocumentService struct {
	docRepo    repositories.DocumentRepository
	driverRepo repositories.DriverRepository
	uploadsDir string
}

// NewDocumentService creates a new document service. The uploads
// directory is created on first use if missing.
func NewDocumentService(docRepo repositories.DocumentRepository, driverRepo repositories.DriverRepository, uploadsDir string) *DocumentService {
	if uploadsDir == "" {
		uploadsDir = "./uploads"
	}
	return &DocumentService{
		docRepo:    docRepo,
		driverRepo: driverRepo,
		uploadsDir: uploadsDir,
	}
}

// Upload validates and stores one document for a driver
func (s *DocumentService) Upload(ctx context.Context, driverID uint, docType domain.DocType, header *multipart.FileHeader, uploadedBy uint) (*models.DriverDocument, error) {
	if !docType.IsValid() {
		return nil, domain.ErrUnsupportedDocType
	}
	if header.Size > maxUploadSize {
		return nil, ErrFileTooLarge
	}

	contentType := header.Header.Get("Content-Type")
	ext, ok := allowedContentTypes[contentType]
	if !ok {
		return nil, ErrUnsupportedFile
	}

	if _, err := s.driverRepo.GetByID(ctx, driverID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrDriverNotFound
		}
		return nil, err
	}

	docID := uuid.New().String()
	dir := filepath.Join(s.uploadsDir, fmt.Sprintf("driver_%d", driverID))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	dest := filepath.Join(dir, docID+ext)

	if err := saveFile(header, dest); err != nil {
		return nil, err
	}

	doc := &models.DriverDocument{
		DocID:       docID,
		DriverID:    driverID,
		DocType:     string(docType),
		FileName:    sanitizeFileName(header.Filename),
		FilePath:    dest,
		FileSize:    header.Size,
		ContentType: contentType,
		UploadedBy:  uploadedBy,
	}

	if err := s.docRepo.Create(ctx, doc); err != nil {
		os.Remove(dest)
		return nil, err
	}

	log.Printf("📄 Document uploaded for driver %d: %s (%s)", driverID, doc.FileName, docType)
	return doc, nil
}

// List returns all documents for one driver
func (s *DocumentService) List(ctx context.Context, driverID uint) ([]*models.DriverDocument, error) {
	if _, err := s.driverRepo.GetByID(ctx, driverID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrDriverNotFound
		}
		return nil, err
	}
	return s.docRepo.ListByDriver(ctx, driverID)
}

// Delete removes a document record and its file. The record is the
// source of truth; a missing file is logged and ignored.
func (s *DocumentService) Delete(ctx context.Context, driverID uint, docID string) error {
	doc, err := s.docRepo.GetByDocID(ctx, docID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.ErrDocumentNotFound
		}
		return err
	}
	if doc.DriverID != driverID {
		return domain.ErrDocumentNotFound
	}

	if err := s.docRepo.Delete(ctx, doc.ID); err != nil {
		return err
	}

	if err := os.Remove(doc.FilePath); err != nil && !os.IsNotExist(err) {
		log.Printf("⚠️ Could not remove document file %s: %v", doc.FilePath, err)
	}

	log.Printf("🗑️ Document %s deleted for driver %d", docID, driverID)
	return nil
}

func saveFile(header *multipart.FileHeader, dest string) error {
	src, err := header.Open()
	if err != nil {
		return err
	}
	defer src.Close()

	out, err := os.Create(dest)
	if err != nil {
		return err
	}
	defer out.Close()

	_, err = io.Copy(out, src)
	return err
}

// sanitizeFileName keeps only the base name so stored names never
// carry path fragments
func sanitizeFileName(name string) string {
	name = filepath.Base(name)
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '.', r == '-', r == '_', r == ' ':
			return r
		default:
			return '_'
		}
	}, name)
}
