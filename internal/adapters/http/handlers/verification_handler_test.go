package handlers

import (
	"encoding/json"
	"testing"
)

func TestRejectInputFieldName(t *testing.T) {
	var input RejectInput
	if err := json.Unmarshal([]byte(`{"rejection_reason":"expired license"}`), &input); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if input.reason() != "expired license" {
		t.Fatalf("expected rejection_reason to bind, got %q", input.reason())
	}
}

func TestRejectInputLegacyFallback(t *testing.T) {
	var input RejectInput
	if err := json.Unmarshal([]byte(`{"reason":"blurred documents"}`), &input); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if input.reason() != "blurred documents" {
		t.Fatalf("expected legacy reason to bind, got %q", input.reason())
	}

	// The documented key wins when both are present
	if err := json.Unmarshal([]byte(`{"rejection_reason":"expired license","reason":"other"}`), &input); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if input.reason() != "expired license" {
		t.Fatalf("expected rejection_reason to take precedence, got %q", input.reason())
	}
}
