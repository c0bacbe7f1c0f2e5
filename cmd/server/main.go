package main

import (
	"context"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/foliocms/folio/backend/internal/config"
	"github.com/foliocms/folio/backend/internal/handler"
	"github.com/foliocms/folio/backend/internal/repository"
	"github.com/foliocms/folio/backend/internal/service"
	"github.com/foliocms/folio/backend/pkg/database"
	"github.com/foliocms/folio/backend/pkg/i18n"
	"github.com/foliocms/folio/backend/pkg/logger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

func main() {
	cfg := config.Load()

	logger.Init(logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: os.Stdout,
	})

	if err := cfg.Validate(); err != nil {
		logger.Fatal().Err(err).Msg("Configuration error")
	}

	logger.Info().
		Str("bind_address", cfg.Server.BindAddress).
		Str("port", cfg.Server.Port).
		Str("log_level", cfg.Log.Level).
		Msg("Starting Folio server")

	db, err := database.Initialize(cfg.Database.Path)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to initialize database")
	}
	logger.Info().Str("path", cfg.Database.Path).Msg("Database initialized")

	if err := database.InitSchema(db); err != nil {
		logger.Fatal().Err(err).Msg("Failed to initialize schema")
	}
	logger.Info().Msg("Database schema initialized")

	tr, err := i18n.New(cfg.Locale.Language)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to load translations")
	}
	logger.Info().Str("language", tr.Lang()).Msg("Translations loaded")

	// Repositories
	configRepo := repository.NewConfigRepository(db)
	contentTypeRepo := repository.NewContentTypeRepository(db)
	roleRepo := repository.NewRoleRepository(db)
	accountRepo := repository.NewAccountRepository(db)

	// Services
	tokenSvc := service.NewTokenService(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL())
	bookSettingsSvc := service.NewBookSettingsService(configRepo, contentTypeRepo, tr)
	peopleSvc := service.NewPeopleListService(accountRepo, roleRepo, service.DefaultUsernameFormatter{}, tr)

	app := fiber.New(fiber.Config{
		Immutable:               true,
		ReadTimeout:             10 * time.Second,
		WriteTimeout:            30 * time.Second,
		IdleTimeout:             60 * time.Second,
		ProxyHeader:             fiber.HeaderXForwardedFor,
		EnableTrustedProxyCheck: true,
		TrustedProxies:          cfg.Server.TrustedProxies,
		EnableIPValidation:      true,
	})

	app.Use(recover.New())
	app.Use(compress.New(compress.Config{
		Level: compress.LevelDefault,
	}))
	app.Use(handler.SecurityHeadersMiddleware())
	app.Use(handler.RequestIDMiddleware())
	app.Use(handler.MetricsMiddleware())
	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.Server.AllowOrigins,
		AllowHeaders: "Origin, Content-Type, Accept, Authorization, X-Request-ID",
		AllowMethods: "GET, POST, OPTIONS",
		MaxAge:       3600,
	}))
	app.Use(logger.Middleware())

	metricsToken := ""
	if cfg.IsProduction {
		metricsToken = cfg.Observability.MetricsToken
	}
	if !cfg.Observability.MetricsEnabled {
		logger.Info().Msg("Metrics endpoint disabled")
	}

	handler.RegisterRoutes(app, handler.Routes{
		Tokens:         tokenSvc,
		Accounts:       accountRepo,
		BookSettings:   handler.NewBookSettingsHandler(bookSettingsSvc, tr),
		People:         handler.NewPeopleHandler(peopleSvc),
		Health:         handler.NewHealthHandler(db, configRepo),
		Metrics:        handler.NewMetricsHandler(),
		MetricsEnabled: cfg.Observability.MetricsEnabled,
		MetricsToken:   metricsToken,
	})

	go func() {
		addr := net.JoinHostPort(cfg.Server.BindAddress, cfg.Server.Port)
		logger.Info().
			Str("address", addr).
			Bool("metrics_enabled", cfg.Observability.MetricsEnabled).
			Msg("HTTP server listening")
		if err := app.Listen(addr); err != nil {
			logger.Error().Err(err).Msg("Server stopped")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	sig := <-quit
	logger.Info().Str("signal", sig.String()).Msg("Received shutdown signal")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	logger.Info().Msg("Shutting down HTTP server...")
	if err := app.ShutdownWithContext(ctx); err != nil {
		logger.Error().Err(err).Msg("Error during shutdown")
	}

	logger.Info().Msg("Closing database connection...")
	if err := db.Close(); err != nil {
		logger.Error().Err(err).Msg("Error closing database")
	}

	logger.Info().Msg("Server stopped gracefully")
}
