package routes

import (
	"time"

	"shamba-credit/internal/adapters/http/handlers"
	"shamba-credit/internal/adapters/http/middleware"
	"shamba-credit/internal/adapters/persistence/repositories"
	"shamba-credit/internal/config"
	"shamba-credit/internal/core/services"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// Setup configures all routes for the application
func Setup(app *fiber.App, db *gorm.DB, cfg *config.Config) {
	// Initialize repositories
	userRepo := repositories.NewUserRepository(db)
	refreshTokenRepo := repositories.NewRefreshTokenRepository(db)
	farmerRepo := repositories.NewFarmerRepository(db)
	orderRepo := repositories.NewOrderRepository(db)
	paymentRepo := repositories.NewPaymentRepository(db)

	// Initialize services
	authService := services.NewAuthService(userRepo, refreshTokenRepo, farmerRepo, cfg)
	farmerService := services.NewFarmerService(farmerRepo)
	notifyService := services.NewNotificationService()
	orderService := services.NewOrderService(orderRepo, farmerRepo, notifyService, cfg.PaymentDueDays)
	paymentService := services.NewPaymentService(paymentRepo, farmerRepo)
	dashboardService := services.NewDashboardService(db)

	// Initialize handlers
	healthHandler := handlers.NewHealthHandler(db)
	authHandler := handlers.NewAuthHandler(authService, cfg)
	farmerHandler := handlers.NewFarmerHandler(farmerService)
	orderHandler := handlers.NewOrderHandler(orderService, farmerService, paymentService)
	paymentHandler := handlers.NewPaymentHandler(paymentService)
	dashboardHandler := handlers.NewDashboardHandler(dashboardService)

	// Health check & root routes
	app.Get("/", healthHandler.Root)
	app.Get("/health", healthHandler.HealthCheck)

	// API v1 group
	apiV1 := app.Group("/api/v1")
	setupAPIV1Routes(apiV1, healthHandler, authHandler, farmerHandler,
		orderHandler, paymentHandler, dashboardHandler, cfg)
}

// setupAPIV1Routes configures API v1 routes
func setupAPIV1Routes(
	router fiber.Router,
	healthHandler *handlers.HealthHandler,
	authHandler *handlers.AuthHandler,
	farmerHandler *handlers.FarmerHandler,
	orderHandler *handlers.OrderHandler,
	paymentHandler *handlers.PaymentHandler,
	dashboardHandler *handlers.DashboardHandler,
	cfg *config.Config,
) {
	// API Info
	router.Get("/", healthHandler.APIInfo)

	// Auth routes (public)
	authRoutes := router.Group("/auth")
	setupAuthRoutes(authRoutes, authHandler, cfg)

	// Farmer registry routes
	farmerRoutes := router.Group("/farmers")
	farmerRoutes.Use(middleware.AuthMiddleware(cfg))
	setupFarmerRoutes(farmerRoutes, farmerHandler)

	// Order routes
	orderRoutes := router.Group("/orders")
	orderRoutes.Use(middleware.AuthMiddleware(cfg))
	setupOrderRoutes(orderRoutes, orderHandler)

	// Payment routes
	paymentRoutes := router.Group("/payments")
	paymentRoutes.Use(middleware.AuthMiddleware(cfg))
	setupPaymentRoutes(paymentRoutes, paymentHandler)

	// Dashboard routes
	dashboardRoutes := router.Group("/dashboard")
	dashboardRoutes.Use(middleware.AuthMiddleware(cfg))
	setupDashboardRoutes(dashboardRoutes, dashboardHandler)
}

// setupAuthRoutes configures authentication routes
func setupAuthRoutes(router fiber.Router, handler *handlers.AuthHandler, cfg *config.Config) {
	router.Use(middleware.NoCacheHeaders())

	// Public routes (rate limited)
	router.Post("/register", middleware.AuthRateLimiter(), handler.Register)
	router.Post("/login", middleware.AuthRateLimiter(), handler.Login)
	router.Post("/refresh", handler.RefreshToken)
	router.Post("/logout", handler.Logout)

	// Protected routes
	router.Get("/me", middleware.AuthMiddleware(cfg), handler.Me)
	router.Post("/logout-all", middleware.AuthMiddleware(cfg), handler.LogoutAll)
}

// setupFarmerRoutes configures farmer registry routes
func setupFarmerRoutes(router fiber.Router, handler *handlers.FarmerHandler) {
	// Farmer self-service
	router.Get("/me", middleware.FarmerOnly(), handler.Me)

	// Admin registry management
	router.Post("/", middleware.AdminOnly(), handler.Create)
	router.Post("/import", middleware.AdminOnly(), middleware.StrictRateLimiter(), handler.Import)

	// Agents browse and claim, admins browse
	router.Get("/", middleware.AgentOrAdmin(), handler.List)
	router.Get("/:id", middleware.AgentOrAdmin(), handler.Get)
	router.Post("/:id/link", middleware.AgentOnly(), handler.Link)
}

// setupOrderRoutes configures order routes
func setupOrderRoutes(router fiber.Router, handler *handlers.OrderHandler) {
	// Agents originate orders
	router.Post("/", middleware.AgentOnly(), handler.Create)

	// All roles list their own scope
	router.Get("/", handler.List)
	router.Get("/:id", handler.Get)

	// Admin review
	router.Post("/:id/approve", middleware.AdminOnly(), handler.Approve)
	router.Post("/:id/reject", middleware.AdminOnly(), handler.Reject)
}

// setupPaymentRoutes configures payment routes
func setupPaymentRoutes(router fiber.Router, handler *handlers.PaymentHandler) {
	// Farmer-facing schedule
	router.Get("/schedule", middleware.FarmerOnly(), handler.Schedule)

	// Admin repayment tracking
	router.Get("/", middleware.AdminOnly(), handler.List)
	router.Get("/overdue", middleware.AdminOnly(), handler.Overdue)
	router.Post("/:id/paid", middleware.AdminOnly(), handler.MarkPaid)
}

// setupDashboardRoutes configures dashboard routes
func setupDashboardRoutes(router fiber.Router, handler *handlers.DashboardHandler) {
	// Stats are per-user and cheap to recompute; short private cache only
	router.Use(middleware.PrivateCacheHeaders(30 * time.Second))

	router.Get("/admin", middleware.AdminOnly(), handler.GetAdminDashboard)
	router.Get("/agent", middleware.AgentOnly(), handler.GetAgentDashboard)
}
