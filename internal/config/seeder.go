package config

import (
	"log"

	"driverdesk/internal/adapters/persistence/models"
	"driverdesk/internal/core/domain"
	"driverdesk/internal/pkg/password"

	"gorm.io/gorm"
)

// Seeder handles database seeding
type Seeder struct {
	db *gorm.DB
}

// NewSeeder creates a new seeder instance
func NewSeeder(db *gorm.DB) *Seeder {
	return &Seeder{db: db}
}

// Run executes all seeders
func (s *Seeder) Run() error {
	log.Println("🌱 Running database seeders...")

	if err := s.seedAdminUser(); err != nil {
		log.Printf("⚠️ Admin seeder skipped: %v", err)
	}

	if err := s.seedDemoDrivers(); err != nil {
		log.Printf("⚠️ Driver seeder skipped: %v", err)
	}

	log.Println("✅ Database seeding completed")
	return nil
}

// seedAdminUser seeds default admin user
// This is for development/testing only
// In production, create admin through secure process
func (s *Seeder) seedAdminUser() error {
	var count int64
	s.db.Model(&models.User{}).Where("role = ?", string(domain.RoleAdmin)).Count(&count)
	if count > 0 {
		return nil // Admin already exists
	}

	hashedPassword, err := password.Hash("admin123456")
	if err != nil {
		return err
	}

	admin := &models.User{
		StaffCode: "STF-0001",
		Username:  "admin",
		Email:     "admin@driverdesk.local",
		Password:  hashedPassword,
		Role:      string(domain.RoleAdmin),
		IsActive:  true,
	}

	if err := s.db.Create(admin).Error; err != nil {
		return err
	}

	log.Println("✅ Default admin user created (username: admin)")
	return nil
}

// seedDemoDrivers seeds a handful of pending drivers for development
func (s *Seeder) seedDemoDrivers() error {
	if AppConfig != nil && AppConfig.IsProd() {
		return nil // never seed demo data in production
	}

	var count int64
	s.db.Model(&models.Driver{}).Count(&count)
	if count > 0 {
		return nil
	}

	drivers := []models.Driver{
		{
			DriverCode:         "DRV-0001",
			FullName:           "Adewale Okonkwo",
			Phone:              "08031234567",
			Email:              "adewale.okonkwo@example.com",
			NIN:                "12345678901",
			LicenseNumber:      "FRSC-AA123456",
			Status:             string(domain.DriverActive),
			VerificationStatus: string(domain.VerificationPending),
		},
		{
			DriverCode:         "DRV-0002",
			FullName:           "Chidinma Eze",
			Phone:              "08087654321",
			Email:              "chidinma.eze@example.com",
			NIN:                "98765432109",
			LicenseNumber:      "FRSC-BB654321",
			Status:             string(domain.DriverActive),
			VerificationStatus: string(domain.VerificationPending),
		},
		{
			DriverCode:         "DRV-0003",
			FullName:           "Ibrahim Musa",
			Phone:              "08055550001",
			NIN:                "11122233344",
			LicenseNumber:      "FRSC-CC111222",
			Status:             string(domain.DriverInactive),
			VerificationStatus: string(domain.VerificationPending),
		},
	}

	if err := s.db.Create(&drivers).Error; err != nil {
		return err
	}

	log.Printf("✅ Seeded %d demo drivers", len(drivers))
	return nil
}
