package services

import (
	"fmt"
	"testing"
	"time"

	"driverdesk/internal/core/domain"
)

func TestToastsStack(t *testing.T) {
	svc := NewNotificationService()

	first := svc.Success("driver verified")
	time.Sleep(time.Millisecond)
	second := svc.Error("OCR failed")
	time.Sleep(time.Millisecond)
	third := svc.Warning("score below threshold")

	active := svc.Active()
	if len(active) != 3 {
		t.Fatalf("expected 3 stacked toasts, got %d", len(active))
	}
	// Oldest first
	if active[0].ID != first.ID || active[1].ID != second.ID || active[2].ID != third.ID {
		t.Fatal("toasts not ordered oldest first")
	}
	if active[0].Kind != domain.NotifySuccess || active[1].Kind != domain.NotifyError || active[2].Kind != domain.NotifyWarning {
		t.Fatal("toast kinds not preserved")
	}
}

func TestToastAutoDismiss(t *testing.T) {
	svc := NewNotificationService()

	svc.Show(domain.NotifyInfo, "short-lived", 20*time.Millisecond)
	keeper := svc.Show(domain.NotifyInfo, "long-lived", time.Minute)

	if len(svc.Active()) != 2 {
		t.Fatal("both toasts should be live initially")
	}

	time.Sleep(60 * time.Millisecond)

	active := svc.Active()
	if len(active) != 1 || active[0].ID != keeper.ID {
		t.Fatalf("expected only the long-lived toast, got %+v", active)
	}
}

func TestToastDismissAndClear(t *testing.T) {
	svc := NewNotificationService()

	a := svc.Info("one")
	svc.Info("two")

	svc.Dismiss(a.ID)
	if len(svc.Active()) != 1 {
		t.Fatal("dismiss did not remove the toast")
	}

	// Unknown ID is a no-op
	svc.Dismiss("not-a-toast")
	if len(svc.Active()) != 1 {
		t.Fatal("dismissing unknown id must change nothing")
	}

	svc.Info("three")
	svc.Clear()
	if len(svc.Active()) != 0 {
		t.Fatal("clear must empty the stack")
	}
}

func TestToastStackEvictsOldest(t *testing.T) {
	svc := NewNotificationService()

	oldest := svc.Info("the very first")
	time.Sleep(time.Millisecond)
	for i := 1; i < maxActiveToasts; i++ {
		svc.Info(fmt.Sprintf("toast %d", i))
	}
	if len(svc.Active()) != maxActiveToasts {
		t.Fatalf("expected a full stack, got %d", len(svc.Active()))
	}

	svc.Info("one past the cap")

	active := svc.Active()
	if len(active) != maxActiveToasts {
		t.Fatalf("stack must stay bounded, got %d", len(active))
	}
	for _, toast := range active {
		if toast.ID == oldest.ID {
			t.Fatal("oldest toast should have been evicted")
		}
	}
}

func TestToastDefaultDuration(t *testing.T) {
	svc := NewNotificationService()

	toast := svc.Show(domain.NotifySuccess, "defaulted", 0)
	got := toast.ExpiresAt.Sub(toast.CreatedAt)
	if got != DefaultToastDuration {
		t.Fatalf("expected default duration %v, got %v", DefaultToastDuration, got)
	}
}
