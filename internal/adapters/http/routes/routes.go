package routes

import (
	"context"
	"log"

	"driverdesk/internal/adapters/http/handlers"
	"driverdesk/internal/adapters/http/middleware"
	"driverdesk/internal/adapters/persistence/repositories"
	"driverdesk/internal/adapters/registry"
	"driverdesk/internal/config"
	"driverdesk/internal/core/services"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/swagger"
	"gorm.io/gorm"
)

// App bundles the long-lived services the server wires at startup
type App struct {
	Cron *services.CronService
	Bulk *services.BulkService
}

// Setup configures all routes for the application and returns the
// background services main needs to start and stop.
func Setup(app *fiber.App, db *gorm.DB, cfg *config.Config) *App {
	// Initialize repositories
	userRepo := repositories.NewUserRepository(db)
	refreshTokenRepo := repositories.NewRefreshTokenRepository(db)
	driverRepo := repositories.NewDriverRepository(db)
	documentRepo := repositories.NewDocumentRepository(db)
	logRepo := repositories.NewVerificationLogRepository(db)

	// Initialize services
	authService := services.NewAuthService(userRepo, refreshTokenRepo, cfg)
	userService := services.NewUserService(userRepo)
	notifyService := services.NewNotificationService()

	cacheService := services.NewDriverCacheService(driverRepo)
	if err := cacheService.Load(context.Background()); err != nil {
		log.Printf("⚠️ Initial driver cache load failed: %v", err)
	}

	registryClient := registry.New(cfg.Registry.BaseURL, cfg.Registry.APIKey)
	ocrService := services.NewOCRService(registryClient, cfg.Verification.PassThreshold)

	driverService := services.NewDriverService(driverRepo, documentRepo, cacheService)
	documentService := services.NewDocumentService(documentRepo, driverRepo, cfg.UploadsDir)

	verificationService := services.NewVerificationService(
		driverRepo,
		documentRepo,
		logRepo,
		userRepo,
		cacheService,
		notifyService,
		ocrService,
		cfg.Verification.UndoWindow,
	)

	bulkService := services.NewBulkService(verificationService, cacheService, notifyService, cfg.Verification.InterItemDelay)

	cronService := services.NewCronService(refreshTokenRepo, driverRepo, cacheService)

	// Initialize handlers
	healthHandler := handlers.NewHealthHandler()
	authHandler := handlers.NewAuthHandler(authService, cfg)
	userHandler := handlers.NewUserHandler(userService)
	driverHandler := handlers.NewDriverHandler(driverService)
	verificationHandler := handlers.NewVerificationHandler(verificationService, authService)
	bulkHandler := handlers.NewBulkHandler(bulkService)
	documentHandler := handlers.NewDocumentHandler(documentService)
	notificationHandler := handlers.NewNotificationHandler(notifyService)

	// Health check & root routes
	app.Get("/", healthHandler.Root)
	app.Get("/health", healthHandler.HealthCheck)

	// Swagger documentation
	app.Get("/swagger/*", swagger.HandlerDefault)

	// API v1 group
	apiV1 := app.Group("/api/v1")
	setupAPIV1Routes(apiV1, healthHandler, authHandler, userHandler, driverHandler,
		verificationHandler, bulkHandler, documentHandler, notificationHandler, cfg)

	return &App{
		Cron: cronService,
		Bulk: bulkService,
	}
}

// setupAPIV1Routes configures API v1 routes
func setupAPIV1Routes(
	router fiber.Router,
	healthHandler *handlers.HealthHandler,
	authHandler *handlers.AuthHandler,
	userHandler *handlers.UserHandler,
	driverHandler *handlers.DriverHandler,
	verificationHandler *handlers.VerificationHandler,
	bulkHandler *handlers.BulkHandler,
	documentHandler *handlers.DocumentHandler,
	notificationHandler *handlers.NotificationHandler,
	cfg *config.Config,
) {
	// API Info
	router.Get("/", healthHandler.APIInfo)

	// Auth routes (public)
	authRoutes := router.Group("/auth")
	setupAuthRoutes(authRoutes, authHandler, cfg)

	// User management routes (Admin only)
	userRoutes := router.Group("/users")
	userRoutes.Use(middleware.AuthMiddleware(cfg))
	userRoutes.Use(middleware.AdminOnly())
	setupUserRoutes(userRoutes, userHandler)

	// Profile routes (Authenticated users)
	profileRoutes := router.Group("/profile")
	profileRoutes.Use(middleware.AuthMiddleware(cfg))
	setupProfileRoutes(profileRoutes, userHandler)

	// Driver routes (Officer/Admin)
	driverRoutes := router.Group("/drivers")
	driverRoutes.Use(middleware.AuthMiddleware(cfg))
	driverRoutes.Use(middleware.OfficerOrAdmin())
	setupDriverRoutes(driverRoutes, driverHandler, verificationHandler, bulkHandler, documentHandler)

	// Notification routes (Authenticated users)
	notificationRoutes := router.Group("/notifications")
	notificationRoutes.Use(middleware.AuthMiddleware(cfg))
	notificationRoutes.Use(middleware.NoCacheHeaders())
	setupNotificationRoutes(notificationRoutes, notificationHandler)
}

// setupAuthRoutes configures authentication routes
func setupAuthRoutes(router fiber.Router, handler *handlers.AuthHandler, cfg *config.Config) {
	// Public routes (rate limited)
	router.Post("/login", middleware.AuthRateLimiter(), handler.Login)
	router.Post("/refresh", handler.RefreshToken)
	router.Post("/logout", handler.Logout)

	// Protected routes
	router.Post("/register", middleware.AuthMiddleware(cfg), middleware.AdminOnly(), handler.Register)
	router.Get("/me", middleware.AuthMiddleware(cfg), handler.Me)
	router.Post("/logout-all", middleware.AuthMiddleware(cfg), handler.LogoutAll)
}

// setupUserRoutes configures user management routes (Admin only)
func setupUserRoutes(router fiber.Router, handler *handlers.UserHandler) {
	router.Get("/", handler.ListUsers)
	router.Get("/:id", handler.GetUser)
	router.Put("/:id", handler.UpdateUser)
	router.Delete("/:id", handler.DeleteUser)
}

// setupProfileRoutes configures profile routes (Authenticated)
func setupProfileRoutes(router fiber.Router, handler *handlers.UserHandler) {
	router.Get("/", handler.GetProfile)
	router.Put("/", handler.UpdateProfile)
	router.Put("/password", handler.ChangePassword)
}

// setupDriverRoutes configures driver, verification, bulk and document routes
func setupDriverRoutes(
	router fiber.Router,
	driverHandler *handlers.DriverHandler,
	verificationHandler *handlers.VerificationHandler,
	bulkHandler *handlers.BulkHandler,
	documentHandler *handlers.DocumentHandler,
) {
	// Listings and dashboard (always fresh)
	router.Get("/", middleware.NoCacheHeaders(), driverHandler.List)
	router.Get("/ocr-dashboard", middleware.NoCacheHeaders(), driverHandler.Dashboard)

	// Bulk endpoints before /:id so the router matches them first
	router.Post("/bulk-action", verificationHandler.BulkAction)
	router.Post("/bulk-update-ocr-status", bulkHandler.Start)
	router.Get("/bulk-jobs/current", middleware.NoCacheHeaders(), bulkHandler.Current)
	router.Get("/bulk-jobs/:id", middleware.NoCacheHeaders(), bulkHandler.Get)
	router.Post("/bulk-jobs/:id/pause", bulkHandler.Pause)
	router.Post("/bulk-jobs/:id/resume", bulkHandler.Resume)
	router.Post("/bulk-jobs/:id/cancel", bulkHandler.Cancel)

	// Admin-only maintenance
	router.Post("/refresh-cache", middleware.AdminOnly(), driverHandler.RefreshCache)

	// Record CRUD
	router.Post("/", driverHandler.Create)
	router.Get("/:id", driverHandler.Get)
	router.Put("/:id", driverHandler.Update)
	router.Delete("/:id", middleware.AdminOnly(), driverHandler.Delete)

	// Verification actions
	router.Post("/:id/verify", verificationHandler.Verify)
	router.Post("/:id/reject", verificationHandler.Reject)
	router.Post("/:id/undo-verification", verificationHandler.Undo)
	router.Post("/:id/ocr-verify", verificationHandler.OCRVerify)
	router.Post("/:id/ocr-override", middleware.AdminOnly(), verificationHandler.OCROverride)
	router.Get("/:id/history", verificationHandler.History)

	// Documents
	router.Post("/:id/files/upload", documentHandler.Upload)
	router.Get("/:id/files", documentHandler.List)
	router.Delete("/:id/files/:docId", documentHandler.Delete)
}

// setupNotificationRoutes configures the notification center routes
func setupNotificationRoutes(router fiber.Router, handler *handlers.NotificationHandler) {
	router.Get("/", handler.List)
	router.Delete("/", handler.Clear)
	router.Delete("/:id", handler.Dismiss)
}
