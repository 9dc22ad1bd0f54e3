package domain

import "time"

// Role represents user role in the system
type Role string

const (
	RoleOfficer Role = "OFFICER"
	RoleAdmin   Role = "ADMIN"
)

// DriverStatus represents the operational status of a driver account
type DriverStatus string

const (
	DriverActive    DriverStatus = "active"
	DriverInactive  DriverStatus = "inactive"
	DriverSuspended DriverStatus = "suspended"
	DriverBlocked   DriverStatus = "blocked"
)

// IsValid checks whether the status is one of the known values
func (s DriverStatus) IsValid() bool {
	switch s {
	case DriverActive, DriverInactive, DriverSuspended, DriverBlocked:
		return true
	}
	return false
}

// VerificationStatus represents the KYC verification state of a driver
type VerificationStatus string

const (
	VerificationPending  VerificationStatus = "pending"
	VerificationVerified VerificationStatus = "verified"
	VerificationRejected VerificationStatus = "rejected"
)

// IsValid checks whether the status is one of the known values
func (s VerificationStatus) IsValid() bool {
	switch s {
	case VerificationPending, VerificationVerified, VerificationRejected:
		return true
	}
	return false
}

// CanTransition reports whether a direct verification state change is legal.
// verified and rejected are never reachable from each other directly;
// undo routes them back through pending first.
func (s VerificationStatus) CanTransition(to VerificationStatus) bool {
	switch s {
	case VerificationPending:
		return to == VerificationVerified || to == VerificationRejected
	case VerificationVerified, VerificationRejected:
		return to == VerificationPending
	}
	return false
}

// DocType classifies an uploaded driver document
type DocType string

const (
	DocNINSlip             DocType = "nin_slip"
	DocDriversLicense      DocType = "drivers_license"
	DocPassportPhoto       DocType = "passport_photo"
	DocVehicleRegistration DocType = "vehicle_registration"
	DocOther               DocType = "other"
)

// IsValid checks whether the doc type is one of the known values
func (d DocType) IsValid() bool {
	switch d {
	case DocNINSlip, DocDriversLicense, DocPassportPhoto, DocVehicleRegistration, DocOther:
		return true
	}
	return false
}

// VerificationType selects which registries an OCR run checks against
type VerificationType string

const (
	VerifyNIN  VerificationType = "nin"
	VerifyFRSC VerificationType = "frsc"
	VerifyBoth VerificationType = "both"
)

// IsValid checks whether the verification type is one of the known values
func (v VerificationType) IsValid() bool {
	switch v {
	case VerifyNIN, VerifyFRSC, VerifyBoth:
		return true
	}
	return false
}

// BulkJobStatus represents the lifecycle state of a bulk OCR job
type BulkJobStatus string

const (
	BulkIdle      BulkJobStatus = "idle"
	BulkRunning   BulkJobStatus = "running"
	BulkPaused    BulkJobStatus = "paused"
	BulkCancelled BulkJobStatus = "cancelled"
	BulkCompleted BulkJobStatus = "completed"
)

// IsTerminal reports whether no further queue activity may happen
func (s BulkJobStatus) IsTerminal() bool {
	return s == BulkCancelled || s == BulkCompleted
}

// NotificationKind classifies an ephemeral notification
type NotificationKind string

const (
	NotifySuccess NotificationKind = "success"
	NotifyError   NotificationKind = "error"
	NotifyWarning NotificationKind = "warning"
	NotifyInfo    NotificationKind = "info"
)

// TokenPair represents access and refresh tokens
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// RefreshToken represents a refresh token in the domain
type RefreshToken struct {
	ID        uint
	UserID    uint
	TokenHash string
	ExpiresAt time.Time
	CreatedAt time.Time
	RevokedAt *time.Time
}
