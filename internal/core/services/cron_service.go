package services

import (
	"context"
	"log"

	"driverdesk/internal/adapters/persistence/repositories"

	"github.com/robfig/cron/v3"
)

// CronService schedules the recurring maintenance jobs: expired
// refresh token cleanup, a nightly OCR stats snapshot in the log, and
// a periodic full cache reload to heal any drift from missed patches.
type CronService struct {
	cron       *cron.Cron
	tokenRepo  repositories.RefreshTokenRepository
	driverRepo repositories.DriverRepository
	cache      *DriverCacheService
}

// NewCronService creates a new cron service
func NewCronService(
	tokenRepo repositories.RefreshTokenRepository,
	driverRepo repositories.DriverRepository,
	cache *DriverCacheService,
) *CronService {
	return &CronService{
		cron:       cron.New(),
		tokenRepo:  tokenRepo,
		driverRepo: driverRepo,
		cache:      cache,
	}
}

// Start registers and launches the scheduled jobs
func (s *CronService) Start() error {
	// Expired token cleanup, daily at 03:00
	if _, err := s.cron.AddFunc("0 3 * * *", s.cleanupExpiredTokens); err != nil {
		return err
	}

	// Nightly stats snapshot at 23:55
	if _, err := s.cron.AddFunc("55 23 * * *", s.logDailyStats); err != nil {
		return err
	}

	// Cache reload every 15 minutes
	if _, err := s.cron.AddFunc("*/15 * * * *", s.reloadCache); err != nil {
		return err
	}

	s.cron.Start()
	log.Println("🚀 CronService started")
	return nil
}

// Stop halts the scheduler, waiting for running jobs
func (s *CronService) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	log.Println("🛑 CronService stopped")
}

func (s *CronService) cleanupExpiredTokens() {
	if err := s.tokenRepo.DeleteExpired(context.Background()); err != nil {
		log.Printf("❌ Expired token cleanup failed: %v", err)
		return
	}
	log.Println("🧹 Expired refresh tokens cleaned up")
}

func (s *CronService) logDailyStats() {
	stats, err := s.driverRepo.OCRStats(context.Background())
	if err != nil {
		log.Printf("❌ Daily stats query failed: %v", err)
		return
	}
	log.Printf("📊 Daily OCR stats: processed=%d passed=%d pending=%d failed=%d",
		stats.TotalProcessed, stats.Passed, stats.Pending, stats.Failed)
}

func (s *CronService) reloadCache() {
	if err := s.cache.Load(context.Background()); err != nil {
		log.Printf("⚠️ Scheduled cache reload failed: %v", err)
	}
}
