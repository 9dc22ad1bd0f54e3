package services

import (
	"sort"
	"sync"
	"time"

	"driverdesk/internal/core/domain"

	"github.com/google/uuid"
)

// DefaultToastDuration is how long a toast stays visible unless overridden
const DefaultToastDuration = 5 * time.Second

// maxActiveToasts bounds the stack so a runaway bulk job cannot flood clients
const maxActiveToasts = 50

// Toast is a single transient notification in the center
type Toast struct {
	ID        string                  `json:"id"`
	Kind      domain.NotificationKind `json:"kind"`
	Message   string                  `json:"message"`
	CreatedAt time.Time               `json:"created_at"`
	ExpiresAt time.Time               `json:"expires_at"`
}

// NotificationService keeps an in-memory stack of auto-dismissing toasts.
// Toasts stack rather than replace each other, so a burst of outcomes
// from a bulk run is all visible at once.
type NotificationService struct {
	mu     sync.Mutex
	toasts map[string]*Toast
	timers map[string]*time.Timer
}

// NewNotificationService creates a new notification service
func NewNotificationService() *NotificationService {
	return &NotificationService{
		toasts: make(map[string]*Toast),
		timers: make(map[string]*time.Timer),
	}
}

// Show pushes a new toast onto the stack and schedules its auto-dismiss.
// A non-positive duration falls back to DefaultToastDuration.
func (s *NotificationService) Show(kind domain.NotificationKind, message string, duration time.Duration) *Toast {
	if duration <= 0 {
		duration = DefaultToastDuration
	}

	now := time.Now()
	toast := &Toast{
		ID:        uuid.New().String(),
		Kind:      kind,
		Message:   message,
		CreatedAt: now,
		ExpiresAt: now.Add(duration),
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.toasts) >= maxActiveToasts {
		s.evictOldestLocked()
	}

	s.toasts[toast.ID] = toast
	s.timers[toast.ID] = time.AfterFunc(duration, func() {
		s.Dismiss(toast.ID)
	})

	return toast
}

// Success shows a success toast with the default duration
func (s *NotificationService) Success(message string) *Toast {
	return s.Show(domain.NotifySuccess, message, 0)
}

// Error shows an error toast with the default duration
func (s *NotificationService) Error(message string) *Toast {
	return s.Show(domain.NotifyError, message, 0)
}

// Warning shows a warning toast with the default duration
func (s *NotificationService) Warning(message string) *Toast {
	return s.Show(domain.NotifyWarning, message, 0)
}

// Info shows an info toast with the default duration
func (s *NotificationService) Info(message string) *Toast {
	return s.Show(domain.NotifyInfo, message, 0)
}

// Dismiss removes a toast before its timer fires. Dismissing an
// unknown or already-expired ID is a no-op.
func (s *NotificationService) Dismiss(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if timer, ok := s.timers[id]; ok {
		timer.Stop()
		delete(s.timers, id)
	}
	delete(s.toasts, id)
}

// Active returns the live toasts ordered oldest first. Expired toasts
// are pruned here as well, in case a timer has not fired yet.
func (s *NotificationService) Active() []*Toast {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	result := make([]*Toast, 0, len(s.toasts))
	for id, toast := range s.toasts {
		if !toast.ExpiresAt.After(now) {
			if timer, ok := s.timers[id]; ok {
				timer.Stop()
				delete(s.timers, id)
			}
			delete(s.toasts, id)
			continue
		}
		result = append(result, toast)
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})
	return result
}

// Clear dismisses every toast at once
func (s *NotificationService) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, timer := range s.timers {
		timer.Stop()
		delete(s.timers, id)
	}
	s.toasts = make(map[string]*Toast)
}

// evictOldestLocked drops the oldest toast. Caller holds s.mu.
func (s *NotificationService) evictOldestLocked() {
	var oldestID string
	var oldestAt time.Time
	for id, toast := range s.toasts {
		if oldestID == "" || toast.CreatedAt.Before(oldestAt) {
			oldestID = id
			oldestAt = toast.CreatedAt
		}
	}
	if oldestID == "" {
		return
	}
	if timer, ok := s.timers[oldestID]; ok {
		timer.Stop()
		delete(s.timers, oldestID)
	}
	delete(s.toasts, oldestID)
}
