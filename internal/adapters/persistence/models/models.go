package models

import (
	"time"

	"driverdesk/internal/core/domain"

	"gorm.io/gorm"
)

// ============================================================
// Auth & Staff Tables
// ============================================================

// User represents back-office staff (users table)
type User struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	StaffCode string         `gorm:"uniqueIndex;size:20;not null" json:"staff_code"`
	Username  string         `gorm:"uniqueIndex;size:50;not null" json:"username"`
	Email     string         `gorm:"uniqueIndex;size:100;not null" json:"email"`
	Password  string         `gorm:"size:255;not null" json:"-"`
	Role      string         `gorm:"size:20;default:'OFFICER'" json:"role"`
	IsActive  bool           `gorm:"default:true" json:"is_active"`
	CreatedAt time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (User) TableName() string {
	return "users"
}

// UserResponse DTO
type UserResponse struct {
	ID        uint      `json:"id"`
	StaffCode string    `json:"staff_code"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}

func (u *User) ToResponse() *UserResponse {
	return &UserResponse{
		ID:        u.ID,
		StaffCode: u.StaffCode,
		Username:  u.Username,
		Email:     u.Email,
		Role:      u.Role,
		IsActive:  u.IsActive,
		CreatedAt: u.CreatedAt,
	}
}

// RefreshToken represents refresh_tokens table
type RefreshToken struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	UserID    uint       `gorm:"index;not null" json:"user_id"`
	TokenHash string     `gorm:"size:255;not null;index" json:"-"`
	ExpiresAt time.Time  `gorm:"not null" json:"expires_at"`
	CreatedAt time.Time  `gorm:"autoCreateTime" json:"created_at"`
	RevokedAt *time.Time `gorm:"index" json:"revoked_at"`
	User      User       `gorm:"foreignKey:UserID" json:"-"`
}

func (RefreshToken) TableName() string {
	return "refresh_tokens"
}

func (rt *RefreshToken) IsRevoked() bool {
	return rt.RevokedAt != nil
}

func (rt *RefreshToken) IsExpired() bool {
	return time.Now().After(rt.ExpiresAt)
}

// ============================================================
// Driver Tables
// ============================================================

// Driver represents the drivers table
type Driver struct {
	ID                 uint           `gorm:"primaryKey" json:"id"`
	DriverCode         string         `gorm:"uniqueIndex;size:20;not null" json:"driver_code"`
	FullName           string         `gorm:"size:150;not null" json:"full_name"`
	Phone              string         `gorm:"size:30;index" json:"phone"`
	Email              string         `gorm:"size:100;index" json:"email"`
	NIN                string         `gorm:"size:30" json:"nin"`
	LicenseNumber      string         `gorm:"size:30" json:"license_number"`
	Status             string         `gorm:"size:20;default:'active';index" json:"status"`
	VerificationStatus string         `gorm:"size:20;default:'pending';index" json:"verification_status"`
	NINScore           *int           `json:"nin_score"`
	LicenseScore       *int           `json:"license_score"`
	LastProcessedAt    *time.Time     `json:"last_processed_at"`
	VerificationNotes  string         `gorm:"type:text" json:"verification_notes"`
	RejectionReason    string         `gorm:"type:text" json:"rejection_reason"`
	VerifiedBy         *uint          `json:"verified_by"`
	VerifiedAt         *time.Time     `json:"verified_at"`
	CreatedAt          time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt          time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt          gorm.DeletedAt `gorm:"index" json:"-"`

	// Relations
	Verifier  *User            `gorm:"foreignKey:VerifiedBy" json:"verifier,omitempty"`
	Documents []DriverDocument `gorm:"foreignKey:DriverID" json:"documents,omitempty"`
}

func (Driver) TableName() string {
	return "drivers"
}

// DriverSummary is the list/dashboard projection of a driver
type DriverSummary struct {
	ID                 uint          `json:"id"`
	DriverCode         string        `json:"driver_code"`
	FullName           string        `json:"full_name"`
	Phone              string        `json:"phone"`
	Email              string        `json:"email"`
	Status             string        `json:"status"`
	VerificationStatus string        `json:"verification_status"`
	VerificationBadge  domain.Badge  `json:"verification_badge"`
	NINScore           *int          `json:"nin_score,omitempty"`
	NINScoreBadge      *domain.Badge `json:"nin_score_badge,omitempty"`
	LicenseScore       *int          `json:"license_score,omitempty"`
	LicenseScoreBadge  *domain.Badge `json:"license_score_badge,omitempty"`
	LastProcessedAt    *time.Time    `json:"last_processed_at,omitempty"`
	DocumentCount      int           `json:"document_count"`
}

// ToSummary builds the list projection including resolved badges
func (d *Driver) ToSummary() DriverSummary {
	s := DriverSummary{
		ID:                 d.ID,
		DriverCode:         d.DriverCode,
		FullName:           d.FullName,
		Phone:              d.Phone,
		Email:              d.Email,
		Status:             d.Status,
		VerificationStatus: d.VerificationStatus,
		VerificationBadge:  domain.ResolveBadge(domain.VerificationStatus(d.VerificationStatus)),
		NINScore:           d.NINScore,
		LicenseScore:       d.LicenseScore,
		LastProcessedAt:    d.LastProcessedAt,
		DocumentCount:      len(d.Documents),
	}
	if d.NINScore != nil {
		b := domain.ResolveScoreBadge(*d.NINScore)
		s.NINScoreBadge = &b
	}
	if d.LicenseScore != nil {
		b := domain.ResolveScoreBadge(*d.LicenseScore)
		s.LicenseScoreBadge = &b
	}
	return s
}

// DriverDocument represents the driver_documents table
type DriverDocument struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	DocID       string    `gorm:"uniqueIndex;size:36;not null" json:"doc_id"`
	DriverID    uint      `gorm:"index;not null" json:"driver_id"`
	DocType     string    `gorm:"size:30;not null" json:"doc_type"`
	FileName    string    `gorm:"size:255;not null" json:"file_name"`
	FilePath    string    `gorm:"size:500;not null" json:"-"`
	FileSize    int64     `json:"file_size"`
	ContentType string    `gorm:"size:100" json:"content_type"`
	UploadedBy  uint      `json:"uploaded_by"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	Driver *Driver `gorm:"foreignKey:DriverID" json:"-"`
}

func (DriverDocument) TableName() string {
	return "driver_documents"
}

// ============================================================
// Verification Audit Trail
// ============================================================

// VerificationLog records every verification action against a driver
type VerificationLog struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	DriverID     uint      `gorm:"index;not null" json:"driver_id"`
	Action       string    `gorm:"size:30;not null" json:"action"`
	FromStatus   string    `gorm:"size:20" json:"from_status"`
	ToStatus     string    `gorm:"size:20" json:"to_status"`
	NINScore     *int      `json:"nin_score"`
	LicenseScore *int      `json:"license_score"`
	Notes        string    `gorm:"type:text" json:"notes"`
	PerformedBy  uint      `gorm:"not null" json:"performed_by"`
	IPAddress    string    `gorm:"size:50" json:"ip_address"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"created_at"`

	Driver    *Driver `gorm:"foreignKey:DriverID" json:"-"`
	Performer *User   `gorm:"foreignKey:PerformedBy" json:"performer,omitempty"`
}

func (VerificationLog) TableName() string {
	return "verification_logs"
}

// Verification actions
const (
	ActionVerify      = "VERIFY"
	ActionReject      = "REJECT"
	ActionUndo        = "UNDO"
	ActionOCRVerify   = "OCR_VERIFY"
	ActionOCROverride = "OCR_OVERRIDE"
	ActionBulk        = "BULK"
	ActionStatusSet   = "STATUS_SET"
)

// OCRStats aggregates processing results for the OCR dashboard
type OCRStats struct {
	TotalProcessed int64 `json:"total_processed"`
	Passed         int64 `json:"passed"`
	Pending        int64 `json:"pending"`
	Failed         int64 `json:"failed"`
}

// ============================================================
// Auto Migration
// ============================================================

// AutoMigrate runs auto migration for all tables
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&User{},
		&RefreshToken{},
		&Driver{},
		&DriverDocument{},
		&VerificationLog{},
	)
}
