package services

import (
	"context"
	"errors"
	"testing"

	"driverdesk/internal/adapters/registry"
	"driverdesk/internal/core/domain"
)

func TestScoreMatch(t *testing.T) {
	cases := []struct {
		name      string
		expected  string
		extracted string
		want      int
	}{
		{"exact substring", "12345678901", "NIN: 12345678901 Federal Republic of Nigeria", 100},
		{"punctuation and case ignored", "FRSC-AA123456", "License No. frsc aa 123456, Class C", 100},
		{"one character off", "ABCDE", "ABXDE", 80},
		{"no resemblance", "12345", "99999", 0},
		{"empty expected", "", "anything at all", 0},
		{"empty extracted", "12345678901", "", 0},
		{"expected longer than text", "12345678901", "123", 0},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := ScoreMatch(tc.expected, tc.extracted); got != tc.want {
				t.Fatalf("ScoreMatch(%q, %q) = %d, want %d", tc.expected, tc.extracted, got, tc.want)
			}
		})
	}
}

func TestScoreMatchNearMiss(t *testing.T) {
	// One digit misread by OCR in an otherwise clean scan scores high
	// but below a perfect hit
	got := ScoreMatch("12345678901", "NIN 123456789O1 issued 2021")
	if got >= 100 || got < 80 {
		t.Fatalf("near-miss should land between 80 and 99, got %d", got)
	}
}

func TestProcessWithRegistry(t *testing.T) {
	driver := pendingDriver("Adewale Okonkwo", "12345678901", "FRSC-AA123456")

	reg := &fakeRegistry{scores: map[string]int{
		"12345678901":   95,
		"FRSC-AA123456": 88,
	}}
	svc := NewOCRService(reg, 80)

	result, err := svc.Process(context.Background(), driver, nil, domain.VerifyBoth)
	if err != nil {
		t.Fatalf("Process failed: %v", err)
	}
	if !result.Passed || result.NINScore != 95 || result.LicenseScore != 88 {
		t.Fatalf("unexpected result: %+v", result)
	}
	if result.Detail != "identity checks passed" {
		t.Fatalf("unexpected detail: %q", result.Detail)
	}
}

func TestProcessBothFieldsMustPass(t *testing.T) {
	driver := pendingDriver("Chidinma Eze", "98765432109", "FRSC-BB654321")

	reg := &fakeRegistry{scores: map[string]int{
		"98765432109":   95,
		"FRSC-BB654321": 79,
	}}
	svc := NewOCRService(reg, 80)

	result, err := svc.Process(context.Background(), driver, nil, domain.VerifyBoth)
	if err != nil {
		t.Fatalf("Process failed: %v", err)
	}
	if result.Passed {
		t.Fatalf("79 is below the threshold, result must fail: %+v", result)
	}
	if result.Detail != "license check below threshold" {
		t.Fatalf("unexpected detail: %q", result.Detail)
	}

	// Exactly at the threshold counts as a pass
	reg.scores["FRSC-BB654321"] = 80
	result, err = svc.Process(context.Background(), driver, nil, domain.VerifyBoth)
	if err != nil {
		t.Fatalf("Process failed: %v", err)
	}
	if !result.Passed {
		t.Fatalf("threshold score must pass: %+v", result)
	}
}

func TestProcessSingleFieldType(t *testing.T) {
	driver := pendingDriver("Chidinma Eze", "98765432109", "FRSC-BB654321")

	// License would fail, but a NIN-only run never consults it
	reg := &fakeRegistry{scores: map[string]int{
		"98765432109":   95,
		"FRSC-BB654321": 10,
	}}
	svc := NewOCRService(reg, 80)

	result, err := svc.Process(context.Background(), driver, nil, domain.VerifyNIN)
	if err != nil {
		t.Fatalf("Process failed: %v", err)
	}
	if !result.Passed || result.NINScore != 95 {
		t.Fatalf("NIN-only run should pass: %+v", result)
	}
	if result.LicenseScore != 0 {
		t.Fatalf("license must not be scored on a NIN-only run: %+v", result)
	}

	result, err = svc.Process(context.Background(), driver, nil, domain.VerifyFRSC)
	if err != nil {
		t.Fatalf("Process failed: %v", err)
	}
	if result.Passed || result.LicenseScore != 10 {
		t.Fatalf("license-only run should fail: %+v", result)
	}
	if result.Detail != "license check below threshold" {
		t.Fatalf("unexpected detail: %q", result.Detail)
	}
}

func TestProcessNoDocumentsNoRegistry(t *testing.T) {
	driver := pendingDriver("Ibrahim Musa", "11122233344", "FRSC-CC111222")
	svc := NewOCRService(nil, 80)

	if _, err := svc.Process(context.Background(), driver, nil, domain.VerifyBoth); !errors.Is(err, ErrNoDocuments) {
		t.Fatalf("expected ErrNoDocuments, got %v", err)
	}
}

func TestProcessRegistryDownFallsBackToDocuments(t *testing.T) {
	driver := pendingDriver("Ibrahim Musa", "11122233344", "FRSC-CC111222")

	// Gateway is configured but unreachable; with no documents uploaded
	// either, the fallback has nothing to work with
	reg := &fakeRegistry{errs: map[string]error{
		"11122233344":   registry.ErrUnavailable,
		"FRSC-CC111222": registry.ErrUnavailable,
	}}
	svc := NewOCRService(reg, 80)

	if _, err := svc.Process(context.Background(), driver, nil, domain.VerifyBoth); !errors.Is(err, ErrNoDocuments) {
		t.Fatalf("expected ErrNoDocuments after fallback, got %v", err)
	}
}

func TestProcessRegistryHardErrorPropagates(t *testing.T) {
	driver := pendingDriver("Ibrahim Musa", "11122233344", "FRSC-CC111222")

	boom := errors.New("registry rejected the api key")
	reg := &fakeRegistry{errs: map[string]error{
		"11122233344":   boom,
		"FRSC-CC111222": boom,
	}}
	svc := NewOCRService(reg, 80)

	if _, err := svc.Process(context.Background(), driver, nil, domain.VerifyBoth); !errors.Is(err, boom) {
		t.Fatalf("expected the registry error back, got %v", err)
	}
}

func TestNewOCRServiceClampsThreshold(t *testing.T) {
	if got := NewOCRService(nil, 0).PassThreshold(); got != 80 {
		t.Fatalf("expected default threshold 80, got %d", got)
	}
	if got := NewOCRService(nil, 250).PassThreshold(); got != 80 {
		t.Fatalf("expected default threshold 80, got %d", got)
	}
	if got := NewOCRService(nil, 60).PassThreshold(); got != 60 {
		t.Fatalf("expected threshold 60, got %d", got)
	}
}
