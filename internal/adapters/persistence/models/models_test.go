package models

import (
	"testing"
	"time"

	"driverdesk/internal/core/domain"
)

func TestDriverToSummary(t *testing.T) {
	nin := 95
	lic := 72
	now := time.Now()
	d := Driver{
		ID:                 7,
		DriverCode:         "DRV-0007",
		FullName:           "Adewale Johnson",
		Phone:              "08012345678",
		Status:             string(domain.DriverActive),
		VerificationStatus: string(domain.VerificationVerified),
		NINScore:           &nin,
		LicenseScore:       &lic,
		LastProcessedAt:    &now,
		Documents: []DriverDocument{
			{DocID: "a", DocType: string(domain.DocNINSlip)},
			{DocID: "b", DocType: string(domain.DocDriversLicense)},
		},
	}

	s := d.ToSummary()
	if s.Status != string(domain.DriverActive) {
		t.Fatalf("expected active status, got %s", s.Status)
	}
	if s.VerificationStatus != string(domain.VerificationVerified) {
		t.Fatalf("expected verified, got %s", s.VerificationStatus)
	}
	if s.VerificationBadge != domain.ResolveBadge(domain.VerificationVerified) {
		t.Fatalf("badge mismatch: %+v", s.VerificationBadge)
	}
	if s.NINScoreBadge == nil || s.LicenseScoreBadge == nil {
		t.Fatal("score badges must be resolved when scores are set")
	}
	if *s.NINScoreBadge != domain.ResolveScoreBadge(95) {
		t.Fatalf("nin score badge mismatch: %+v", *s.NINScoreBadge)
	}
	if s.DocumentCount != 2 {
		t.Fatalf("expected 2 documents, got %d", s.DocumentCount)
	}
}

func TestDriverToSummaryWithoutScores(t *testing.T) {
	d := Driver{
		ID:                 3,
		DriverCode:         "DRV-0003",
		FullName:           "Chioma Okafor",
		Status:             string(domain.DriverActive),
		VerificationStatus: string(domain.VerificationPending),
	}

	s := d.ToSummary()
	if s.NINScoreBadge != nil || s.LicenseScoreBadge != nil {
		t.Fatal("score badges must be omitted when no scores exist")
	}
	if s.VerificationBadge != domain.ResolveBadge(domain.VerificationPending) {
		t.Fatalf("badge mismatch: %+v", s.VerificationBadge)
	}
	if s.DocumentCount != 0 {
		t.Fatalf("expected 0 documents, got %d", s.DocumentCount)
	}
}
