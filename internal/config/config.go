package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	AppMode      string
	Port         string
	Database     DatabaseConfig
	JWT          JWTConfig
	Verification VerificationConfig
	Registry     RegistryConfig
	UploadsDir   string
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
}

// JWTConfig holds JWT configuration
type JWTConfig struct {
	Secret           string
	RefreshSecret    string
	AccessTokenMins  int
	RefreshTokenDays int
}

// VerificationConfig holds tunables for the verification pipeline
type VerificationConfig struct {
	// InterItemDelay throttles the bulk OCR queue between items
	InterItemDelay time.Duration
	// UndoWindow bounds how long a verify/reject can be undone
	UndoWindow time.Duration
	// PassThreshold is the minimum match score that counts as a pass
	PassThreshold int
}

// RegistryConfig holds the external identity registry gateway settings
type RegistryConfig struct {
	BaseURL string
	APIKey  string
}

// Global config instance
var AppConfig *Config

// Load reads configuration from .env file and environment variables
func Load() (*Config, error) {
	// Load .env file (ignore error if file doesn't exist in production)
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found, using environment variables")
	}

	appMode := strings.TrimSpace(getEnv("APP_MODE", "dev"))
	if appMode != "dev" && appMode != "prod" {
		return nil, fmt.Errorf("invalid APP_MODE: '%s' (must be 'dev' or 'prod')", appMode)
	}

	config := &Config{
		AppMode:      appMode,
		Port:         getEnv("PORT", "3000"),
		Database:     loadDatabaseConfig(appMode),
		JWT:          loadJWTConfig(appMode),
		Verification: loadVerificationConfig(),
		Registry: RegistryConfig{
			BaseURL: getEnv("REGISTRY_BASE_URL", ""),
			APIKey:  getEnv("REGISTRY_API_KEY", ""),
		},
		UploadsDir: getEnv("UPLOADS_DIR", "./uploads"),
	}

	// Set global config
	AppConfig = config

	log.Printf("✅ Configuration loaded successfully [MODE: %s]", appMode)
	return config, nil
}

// loadDatabaseConfig loads database config based on mode
func loadDatabaseConfig(mode string) DatabaseConfig {
	prefix := "DEV_"
	if mode == "prod" {
		prefix = "PROD_"
	}

	return DatabaseConfig{
		Host:     getEnv(prefix+"DB_HOST", "localhost"),
		Port:     getEnv(prefix+"DB_PORT", "3306"),
		User:     getEnv(prefix+"DB_USER", "root"),
		Password: getEnv(prefix+"DB_PASS", ""),
		DBName:   getEnv(prefix+"DB_NAME", "driverdesk"),
	}
}

// loadJWTConfig loads JWT config based on mode
func loadJWTConfig(mode string) JWTConfig {
	prefix := "DEV_"
	if mode == "prod" {
		prefix = "PROD_"
	}

	accessMins, _ := strconv.Atoi(getEnv("ACCESS_TOKEN_MINUTES", "15"))
	refreshDays, _ := strconv.Atoi(getEnv("REFRESH_TOKEN_DAYS", "7"))

	return JWTConfig{
		Secret:           getEnv(prefix+"JWT_SECRET", "default_secret"),
		RefreshSecret:    getEnv(prefix+"JWT_REFRESH_SECRET", "default_refresh_secret"),
		AccessTokenMins:  accessMins,
		RefreshTokenDays: refreshDays,
	}
}

// loadVerificationConfig loads verification pipeline tunables
func loadVerificationConfig() VerificationConfig {
	delayMs, _ := strconv.Atoi(getEnv("BULK_DELAY_MS", "1000"))
	if delayMs < 0 {
		delayMs = 0
	}
	undoMins, _ := strconv.Atoi(getEnv("UNDO_WINDOW_MINUTES", "5"))
	if undoMins < 1 {
		undoMins = 5
	}
	threshold, _ := strconv.Atoi(getEnv("OCR_PASS_THRESHOLD", "80"))
	if threshold < 1 || threshold > 100 {
		threshold = 80
	}

	return VerificationConfig{
		InterItemDelay: time.Duration(delayMs) * time.Millisecond,
		UndoWindow:     time.Duration(undoMins) * time.Minute,
		PassThreshold:  threshold,
	}
}

// getEnv gets environment variable with default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// IsDev returns true if running in development mode
func (c *Config) IsDev() bool {
	return c.AppMode == "dev"
}

// IsProd returns true if running in production mode
func (c *Config) IsProd() bool {
	return c.AppMode == "prod"
}

// GetAllowedOrigins returns allowed origins for CORS
func (c *Config) GetAllowedOrigins() string {
	origins := getEnv("ALLOWED_ORIGINS", "")
	if origins == "" {
		if c.IsDev() {
			return "*"
		}
		return "https://desk.example.com"
	}
	return origins
}
