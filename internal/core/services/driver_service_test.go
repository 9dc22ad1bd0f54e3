package services

import (
	"context"
	"errors"
	"testing"

	"driverdesk/internal/core/domain"
)

func newTestDriverService() (*DriverService, *fakeDriverRepo) {
	repo := newFakeDriverRepo()
	cache := NewDriverCacheService(repo)
	cache.Load(context.Background())
	return NewDriverService(repo, &fakeDocRepo{}, cache), repo
}

func TestCreateDriver(t *testing.T) {
	svc, _ := newTestDriverService()

	driver, err := svc.Create(context.Background(), CreateDriverInput{
		FullName:      "Adewale Okonkwo",
		Phone:         "08012345678",
		NIN:           "12345678901",
		LicenseNumber: "FRSC-AA123456",
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if driver.DriverCode == "" {
		t.Fatal("driver code not assigned")
	}
	if driver.VerificationStatus != string(domain.VerificationPending) || driver.Status != string(domain.DriverActive) {
		t.Fatalf("new drivers start pending and active: %+v", driver)
	}

	// Fresh record is immediately visible in the cache
	if svc.cache.Get(driver.ID) == nil {
		t.Fatal("created driver not in cache")
	}

	// Same phone again is rejected
	_, err = svc.Create(context.Background(), CreateDriverInput{
		FullName:      "Someone Else",
		Phone:         "08012345678",
		NIN:           "99999999999",
		LicenseNumber: "FRSC-ZZ999999",
	})
	if !errors.Is(err, domain.ErrDriverAlreadyExists) {
		t.Fatalf("expected ErrDriverAlreadyExists, got %v", err)
	}
}

func TestCreateDriverValidation(t *testing.T) {
	svc, _ := newTestDriverService()

	_, err := svc.Create(context.Background(), CreateDriverInput{
		FullName: "   ",
		Phone:    "08012345678",
	})
	if !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestDriverListPaginates(t *testing.T) {
	svc, repo := newTestDriverService()
	for _, name := range []string{"Adewale Okonkwo", "Chidinma Eze", "Ibrahim Musa"} {
		repo.add(pendingDriver(name, "11111111111", "FRSC-XX000000"))
	}
	svc.cache.Load(context.Background())

	page, total := svc.List("", "", 0, 2)
	if total != 3 || len(page) != 2 {
		t.Fatalf("expected first page of 2/3, got %d/%d", len(page), total)
	}
	page, total = svc.List("", "", 2, 2)
	if total != 3 || len(page) != 1 {
		t.Fatalf("expected last page of 1/3, got %d/%d", len(page), total)
	}
	// Offset past the end is an empty page, not an error
	page, total = svc.List("", "", 10, 2)
	if total != 3 || len(page) != 0 {
		t.Fatalf("expected empty page, got %d/%d", len(page), total)
	}
}

func TestUpdateDriverNeverTouchesVerification(t *testing.T) {
	svc, repo := newTestDriverService()
	d := repo.add(pendingDriver("Adewale Okonkwo", "12345678901", "FRSC-AA123456"))
	svc.cache.Load(context.Background())

	name := "Adewale O. Okonkwo"
	updated, err := svc.Update(context.Background(), d.ID, UpdateDriverInput{FullName: &name})
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if updated.FullName != name {
		t.Fatalf("name not updated: %q", updated.FullName)
	}
	if updated.VerificationStatus != string(domain.VerificationPending) {
		t.Fatalf("edit must not change verification state: %s", updated.VerificationStatus)
	}

	// Empty patch is invalid
	if _, err := svc.Update(context.Background(), d.ID, UpdateDriverInput{}); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for empty patch, got %v", err)
	}
}

func TestDeleteDriverRemovesFromCache(t *testing.T) {
	svc, repo := newTestDriverService()
	d := repo.add(pendingDriver("Adewale Okonkwo", "12345678901", "FRSC-AA123456"))
	svc.cache.Load(context.Background())

	if err := svc.Delete(context.Background(), d.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if svc.cache.Get(d.ID) != nil {
		t.Fatal("deleted driver still cached")
	}
	if err := svc.Delete(context.Background(), d.ID); !errors.Is(err, domain.ErrDriverNotFound) {
		t.Fatalf("expected ErrDriverNotFound, got %v", err)
	}
}
