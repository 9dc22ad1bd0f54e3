package services

import (
	"context"
	"testing"

	"driverdesk/internal/core/domain"
)

func seededCache(t *testing.T) (*DriverCacheService, *fakeDriverRepo) {
	t.Helper()

	repo := newFakeDriverRepo()
	d1 := pendingDriver("Adewale Okonkwo", "12345678901", "FRSC-AA123456")
	d1.DriverCode = "DRV-0001"
	d1.Email = "adewale@example.com"
	repo.add(d1)

	d2 := pendingDriver("Chidinma Eze", "98765432109", "FRSC-BB654321")
	d2.DriverCode = "DRV-0002"
	d2.VerificationStatus = string(domain.VerificationVerified)
	repo.add(d2)

	d3 := pendingDriver("Ibrahim Musa", "11122233344", "FRSC-CC111222")
	d3.DriverCode = "DRV-0003"
	d3.VerificationStatus = string(domain.VerificationRejected)
	repo.add(d3)

	cache := NewDriverCacheService(repo)
	if err := cache.Load(context.Background()); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	return cache, repo
}

func TestCacheLoadAndGet(t *testing.T) {
	cache, _ := seededCache(t)

	if cache.Size() != 3 {
		t.Fatalf("expected 3 cached records, got %d", cache.Size())
	}
	if cache.LoadedAt().IsZero() {
		t.Fatal("LoadedAt not set after load")
	}

	d := cache.Get(1)
	if d == nil || d.FullName != "Adewale Okonkwo" {
		t.Fatalf("unexpected record: %+v", d)
	}
	if cache.Get(99) != nil {
		t.Fatal("expected nil for unknown id")
	}

	// Get returns a copy; mutating it must not leak into the snapshot
	d.FullName = "mangled"
	if cache.Get(1).FullName != "Adewale Okonkwo" {
		t.Fatal("snapshot mutated through Get copy")
	}
}

func TestCacheFailedReloadKeepsSnapshot(t *testing.T) {
	cache, repo := seededCache(t)
	before := cache.LoadedAt()

	repo.failAll = true
	if err := cache.Load(context.Background()); err == nil {
		t.Fatal("expected reload error")
	}

	if cache.Size() != 3 {
		t.Fatalf("failed reload must keep snapshot, got %d records", cache.Size())
	}
	if !cache.LoadedAt().Equal(before) {
		t.Fatal("LoadedAt must not advance on failed reload")
	}

	repo.failAll = false
	if err := cache.Load(context.Background()); err != nil {
		t.Fatalf("reload after recovery failed: %v", err)
	}
}

func TestCacheSearch(t *testing.T) {
	cache, _ := seededCache(t)

	// Empty query, no status filter: everything in load order
	all := cache.Search("", "")
	if len(all) != 3 || all[0].DriverCode != "DRV-0001" {
		t.Fatalf("unexpected full listing: %+v", all)
	}

	// Case-insensitive name match
	if got := cache.Search("CHIDINMA", ""); len(got) != 1 || got[0].FullName != "Chidinma Eze" {
		t.Fatalf("name search failed: %+v", got)
	}
	// Driver code and phone substring match
	if got := cache.Search("drv-0003", ""); len(got) != 1 || got[0].FullName != "Ibrahim Musa" {
		t.Fatalf("code search failed: %+v", got)
	}
	if got := cache.Search("08012345", ""); len(got) != 1 || got[0].FullName != "Adewale Okonkwo" {
		t.Fatalf("phone search failed: %+v", got)
	}
	// Email match
	if got := cache.Search("adewale@", ""); len(got) != 1 {
		t.Fatalf("email search failed: %+v", got)
	}

	// Status filter alone
	if got := cache.Search("", domain.VerificationVerified); len(got) != 1 || got[0].FullName != "Chidinma Eze" {
		t.Fatalf("status filter failed: %+v", got)
	}
	// Query and status combined: name matches but status doesn't
	if got := cache.Search("Adewale", domain.VerificationVerified); len(got) != 0 {
		t.Fatalf("combined filter should be empty, got %+v", got)
	}

	if got := cache.Search("no-such-driver", ""); len(got) != 0 {
		t.Fatalf("expected empty result, got %+v", got)
	}
}

func TestCacheCounts(t *testing.T) {
	cache, _ := seededCache(t)

	counts := cache.Counts()
	if counts[domain.VerificationPending] != 1 ||
		counts[domain.VerificationVerified] != 1 ||
		counts[domain.VerificationRejected] != 1 {
		t.Fatalf("unexpected counts: %+v", counts)
	}

	total := 0
	for _, n := range counts {
		total += n
	}
	if total != cache.Size() {
		t.Fatalf("buckets must partition the snapshot: %d vs %d", total, cache.Size())
	}
}

func TestCachePatchInsertRemove(t *testing.T) {
	cache, _ := seededCache(t)

	// Patch rewrites the cached record in place
	updated := cache.Get(1)
	updated.VerificationStatus = string(domain.VerificationVerified)
	cache.Patch(updated)
	if cache.Get(1).VerificationStatus != string(domain.VerificationVerified) {
		t.Fatal("patch did not apply")
	}
	if cache.Counts()[domain.VerificationVerified] != 2 {
		t.Fatal("counts not consistent after patch")
	}

	// Insert appends, duplicate inserts are ignored
	d4 := pendingDriver("Ngozi Adeyemi", "55566677788", "FRSC-DD555666")
	d4.ID = 4
	d4.DriverCode = "DRV-0004"
	cache.Insert(d4)
	cache.Insert(d4)
	if cache.Size() != 4 {
		t.Fatalf("expected 4 after insert, got %d", cache.Size())
	}
	if all := cache.All(); all[len(all)-1].DriverCode != "DRV-0004" {
		t.Fatal("insert must append in order")
	}

	// Remove drops from both index and order
	cache.Remove(2)
	if cache.Get(2) != nil || cache.Size() != 3 {
		t.Fatal("remove did not drop the record")
	}
	cache.Remove(2)
	if cache.Size() != 3 {
		t.Fatal("double remove must be a no-op")
	}
}
