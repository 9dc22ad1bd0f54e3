package domain

import "testing"

func TestResolveBadge(t *testing.T) {
	b := ResolveBadge(VerificationVerified)
	if b.Label != "Verified" || b.StyleClass != "success" {
		t.Fatalf("unexpected badge for verified: %+v", b)
	}

	b = ResolveBadge(VerificationRejected)
	if b.Label != "Rejected" || b.StyleClass != "danger" {
		t.Fatalf("unexpected badge for rejected: %+v", b)
	}

	b = ResolveBadge(VerificationPending)
	if b.Label != "Pending" || b.StyleClass != "warning" {
		t.Fatalf("unexpected badge for pending: %+v", b)
	}

	// unknown enum values fall back to a neutral tag, never an error
	b = ResolveBadge(VerificationStatus("bogus"))
	if b.Label != "Unknown" || b.StyleClass != "neutral" {
		t.Fatalf("unexpected badge for bogus status: %+v", b)
	}
}

func TestResolveScoreBadge(t *testing.T) {
	cases := []struct {
		score int
		label string
	}{
		{100, "excellent"},
		{95, "excellent"},
		{90, "excellent"},
		{89, "good"},
		{80, "good"},
		{79, "fair"},
		{60, "fair"},
		{59, "poor"},
		{1, "poor"},
		{0, "unknown"},
		{-5, "unknown"},
	}

	for _, c := range cases {
		if got := ResolveScoreBadge(c.score); got.Label != c.label {
			t.Fatalf("score %d: want %q, got %q", c.score, c.label, got.Label)
		}
	}
}

func TestVerificationTransitions(t *testing.T) {
	// verified and rejected must never reach each other directly
	if VerificationVerified.CanTransition(VerificationRejected) {
		t.Fatalf("verified -> rejected must not be allowed")
	}
	if VerificationRejected.CanTransition(VerificationVerified) {
		t.Fatalf("rejected -> verified must not be allowed")
	}

	// undo routes back through pending
	if !VerificationVerified.CanTransition(VerificationPending) {
		t.Fatalf("verified -> pending (undo) must be allowed")
	}
	if !VerificationRejected.CanTransition(VerificationPending) {
		t.Fatalf("rejected -> pending (undo) must be allowed")
	}

	if !VerificationPending.CanTransition(VerificationVerified) {
		t.Fatalf("pending -> verified must be allowed")
	}
	if !VerificationPending.CanTransition(VerificationRejected) {
		t.Fatalf("pending -> rejected must be allowed")
	}
	if VerificationPending.CanTransition(VerificationPending) {
		t.Fatalf("pending -> pending is not a transition")
	}
}
