package routes

import (
	"ambika-sandledger/internal/adapters/http/handlers"
	"ambika-sandledger/internal/adapters/http/middleware"
	"ambika-sandledger/internal/adapters/persistence/repositories"
	"ambika-sandledger/internal/config"
	"ambika-sandledger/internal/core/services"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// Setup wires repositories, services and handlers and registers every
// route. Auth gates run in order: session resolve, then RequireLogin,
// then RequireMaster where the operation is administrative.
func Setup(app *fiber.App, db *gorm.DB, cfg *config.Config) {
	// Repositories
	userRepo := repositories.NewUserRepository(db)
	sessionRepo := repositories.NewSessionRepository(db)
	txnRepo := repositories.NewTransactionRepository(db)
	settingRepo := repositories.NewSettingRepository(db)

	// Services
	authService := services.NewAuthService(userRepo, sessionRepo, cfg.Session.TTL)
	userService := services.NewUserService(userRepo)
	txnService := services.NewTransactionService(txnRepo)
	settingsService := services.NewSettingsService(settingRepo)

	// Handlers
	healthHandler := handlers.NewHealthHandler()
	authHandler := handlers.NewAuthHandler(authService, cfg)
	userHandler := handlers.NewUserHandler(userService)
	txnHandler := handlers.NewTransactionHandler(txnService)
	settingsHandler := handlers.NewSettingsHandler(settingsService)

	// Session resolution for every request
	app.Use(middleware.SessionMiddleware(authService))

	requireLogin := middleware.RequireLogin()
	requireMaster := middleware.RequireMaster()

	// Health
	app.Get("/", healthHandler.Root)
	app.Get("/health", healthHandler.HealthCheck)

	// Auth (root-level, matching the client)
	app.Post("/register", middleware.AuthRateLimiter(), authHandler.Register)
	app.Post("/login", middleware.AuthRateLimiter(), authHandler.Login)
	app.Post("/logout", authHandler.Logout)

	api := app.Group("/api")

	// Session identity; anonymous callers get {user: null}
	api.Get("/user", authHandler.GetCurrentUser)

	// Ledger
	api.Get("/transactions", requireLogin, txnHandler.ListTransactions)
	api.Post("/transactions", requireLogin, txnHandler.AddTransaction)
	api.Get("/export/csv", requireMaster, txnHandler.ExportCSV)

	// Settings
	api.Get("/settings/sandRate", requireLogin, settingsHandler.GetSandRate)
	api.Put("/settings/sandRate", requireMaster, settingsHandler.UpdateSandRate)

	// Self-service profile
	api.Put("/profile", requireLogin, userHandler.UpdateProfile)
	api.Put("/profile/password", requireLogin, userHandler.ChangePassword)
	api.Put("/profile/username", requireLogin, userHandler.ChangeUsername)

	// Master-only account administration
	api.Get("/users", requireMaster, userHandler.ListUsers)
	api.Post("/users", requireMaster, userHandler.AddUser)
	api.Delete("/users/:id", requireMaster, userHandler.DeleteUser)
	api.Put("/users/:id/password", requireMaster, userHandler.ResetPassword)
	api.Put("/users/:id/username", requireMaster, userHandler.RenameUser)
}
