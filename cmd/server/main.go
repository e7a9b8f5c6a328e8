package main

import (
	"os"
	"os/signal"
	"syscall"

	"ambika-sandledger/internal/adapters/http/middleware"
	"ambika-sandledger/internal/adapters/http/routes"
	"ambika-sandledger/internal/adapters/persistence/models"
	"ambika-sandledger/internal/adapters/persistence/repositories"
	"ambika-sandledger/internal/config"
	"ambika-sandledger/internal/core/services"
	"ambika-sandledger/internal/pkg/logger"

	"github.com/gofiber/fiber/v2"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Init(logger.Options{})
		logger.Get().Fatal().Err(err).Msg("failed to load configuration")
	}

	log := logger.Init(logger.Options{
		Level:  cfg.Log.Level,
		Pretty: cfg.Log.Pretty,
	})

	db, err := config.ConnectDatabase(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer config.CloseDatabase()

	if err := models.AutoMigrate(db); err != nil {
		log.Fatal().Err(err).Msg("failed to auto migrate")
	}
	log.Info().Msg("database migration completed")

	// Master account and initial sand rate
	if err := config.SeedBootstrapData(db, cfg); err != nil {
		log.Fatal().Err(err).Msg("failed to seed bootstrap data")
	}

	// Expired-session storage reclamation
	sweeper := services.NewSessionSweeper(repositories.NewSessionRepository(db))
	if err := sweeper.Start(); err != nil {
		log.Fatal().Err(err).Msg("failed to start session sweeper")
	}
	defer sweeper.Stop()

	app := fiber.New(fiber.Config{
		AppName:      "Ambika Sand Ledger API",
		ErrorHandler: middleware.CustomErrorHandler,
	})

	middleware.Setup(app, cfg)
	routes.Setup(app, db, cfg)

	go gracefulShutdown(app)

	log.Info().Str("port", cfg.Port).Str("mode", cfg.AppMode).Msg("server starting")
	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Fatal().Err(err).Msg("failed to start server")
	}
}

// gracefulShutdown stops accepting connections on SIGINT/SIGTERM and
// drains in-flight requests.
func gracefulShutdown(app *fiber.App) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log := logger.Get()
	log.Info().Msg("shutting down server")
	if err := app.Shutdown(); err != nil {
		log.Error().Err(err).Msg("error during shutdown")
	}
	log.Info().Msg("server stopped gracefully")
}
