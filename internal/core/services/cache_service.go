package services

import (
	"context"
	"log"
	"strings"
	"sync"
	"time"

	"driverdesk/internal/adapters/persistence/models"
	"driverdesk/internal/adapters/persistence/repositories"
	"driverdesk/internal/core/domain"
)

// DriverCacheService holds an in-memory snapshot of all driver records
// so list, search and tab-count reads never hit the database. The
// snapshot is replaced wholesale on Load; a failed reload keeps the
// previous snapshot intact.
type DriverCacheService struct {
	driverRepo repositories.DriverRepository

	mu       sync.RWMutex
	byID     map[uint]*models.Driver
	ordered  []*models.Driver
	loadedAt time.Time
}

// NewDriverCacheService creates a new driver cache service
func NewDriverCacheService(driverRepo repositories.DriverRepository) *DriverCacheService {
	return &DriverCacheService{
		driverRepo: driverRepo,
		byID:       make(map[uint]*models.Driver),
	}
}

// Load replaces the snapshot with the current database state.
// On error the existing snapshot is left untouched.
func (s *DriverCacheService) Load(ctx context.Context) error {
	drivers, err := s.driverRepo.ListAll(ctx)
	if err != nil {
		log.Printf("❌ Driver cache reload failed, keeping previous snapshot: %v", err)
		return err
	}

	byID := make(map[uint]*models.Driver, len(drivers))
	ordered := make([]*models.Driver, 0, len(drivers))
	for _, d := range drivers {
		clone := *d
		byID[clone.ID] = &clone
		ordered = append(ordered, &clone)
	}

	s.mu.Lock()
	s.byID = byID
	s.ordered = ordered
	s.loadedAt = time.Now()
	s.mu.Unlock()

	log.Printf("✅ Driver cache loaded: %d records", len(drivers))
	return nil
}

// LoadedAt reports when the snapshot was last replaced
func (s *DriverCacheService) LoadedAt() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loadedAt
}

// Size returns the number of cached records
func (s *DriverCacheService) Size() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.ordered)
}

// Get returns a copy of the cached driver, or nil if absent
func (s *DriverCacheService) Get(id uint) *models.Driver {
	s.mu.RLock()
	defer s.mu.RUnlock()

	d, ok := s.byID[id]
	if !ok {
		return nil
	}
	clone := *d
	return &clone
}

// All returns copies of every cached record in load order
func (s *DriverCacheService) All() []models.Driver {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]models.Driver, 0, len(s.ordered))
	for _, d := range s.ordered {
		result = append(result, *d)
	}
	return result
}

// Search filters the snapshot by case-insensitive substring match on
// name, driver code, phone and email, optionally narrowed to one
// verification status. Empty query with empty status returns everything.
func (s *DriverCacheService) Search(query string, status domain.VerificationStatus) []models.Driver {
	query = strings.ToLower(strings.TrimSpace(query))

	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]models.Driver, 0)
	for _, d := range s.ordered {
		if status != "" && d.VerificationStatus != string(status) {
			continue
		}
		if query != "" && !matchesQuery(d, query) {
			continue
		}
		result = append(result, *d)
	}
	return result
}

func matchesQuery(d *models.Driver, query string) bool {
	return strings.Contains(strings.ToLower(d.FullName), query) ||
		strings.Contains(strings.ToLower(d.DriverCode), query) ||
		strings.Contains(strings.ToLower(d.Phone), query) ||
		strings.Contains(strings.ToLower(d.Email), query)
}

// Counts returns how many cached drivers sit in each verification
// status tab. Every record lands in exactly one bucket.
func (s *DriverCacheService) Counts() map[domain.VerificationStatus]int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	counts := map[domain.VerificationStatus]int{
		domain.VerificationPending:  0,
		domain.VerificationVerified: 0,
		domain.VerificationRejected: 0,
	}
	for _, d := range s.ordered {
		counts[domain.VerificationStatus(d.VerificationStatus)]++
	}
	return counts
}

// Patch applies updated fields to one cached record in place, keeping
// the snapshot consistent with a write that already hit the database.
// Unknown IDs are ignored; the next full Load will pick the row up.
func (s *DriverCacheService) Patch(updated *models.Driver) {
	if updated == nil {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, ok := s.byID[updated.ID]; ok {
		*existing = *updated
	}
}

// Remove drops one record from the snapshot after a delete
func (s *DriverCacheService) Remove(id uint) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byID[id]; !ok {
		return
	}
	delete(s.byID, id)
	for i, d := range s.ordered {
		if d.ID == id {
			s.ordered = append(s.ordered[:i], s.ordered[i+1:]...)
			break
		}
	}
}

// Insert adds a freshly created record to the snapshot
func (s *DriverCacheService) Insert(created *models.Driver) {
	if created == nil {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byID[created.ID]; ok {
		return
	}
	clone := *created
	s.byID[clone.ID] = &clone
	s.ordered = append(s.ordered, &clone)
}
