package main

import (
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	sentryfiber "github.com/getsentry/sentry-go/fiber"

	"github.com/ahmetcoskunkizilkaya/sphere-moderation/internal/classifier"
	"github.com/ahmetcoskunkizilkaya/sphere-moderation/internal/config"
	"github.com/ahmetcoskunkizilkaya/sphere-moderation/internal/database"
	"github.com/ahmetcoskunkizilkaya/sphere-moderation/internal/handlers"
	"github.com/ahmetcoskunkizilkaya/sphere-moderation/internal/identity"
	"github.com/ahmetcoskunkizilkaya/sphere-moderation/internal/logging"
	"github.com/ahmetcoskunkizilkaya/sphere-moderation/internal/middleware"
	"github.com/ahmetcoskunkizilkaya/sphere-moderation/internal/moderation"
	"github.com/ahmetcoskunkizilkaya/sphere-moderation/internal/routes"
	"github.com/ahmetcoskunkizilkaya/sphere-moderation/internal/store"
	"github.com/gofiber/fiber/v2"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
)

func main() {
	cfg := config.Load()

	// Structured logging (JSON to stdout)
	stdout := logging.Setup(cfg.LogLevel)

	if cfg.JWTSecret == "" {
		slog.Error("JWT_SECRET environment variable is required")
		os.Exit(1)
	}
	if _, isSqlite := cfg.SQLitePath(); !isSqlite && cfg.DatabaseURL == "" && cfg.DBPassword == "" {
		slog.Error("DB_PASSWORD or DATABASE_URL environment variable is required")
		os.Exit(1)
	}

	thresholds, err := cfg.Thresholds()
	if err != nil {
		slog.Error("invalid moderation thresholds", "error", err)
		os.Exit(1)
	}

	// Database
	db, err := database.Connect(cfg)
	if err != nil {
		slog.Error("database connection failed", "error", err)
		os.Exit(1)
	}
	if err := database.Migrate(db); err != nil {
		slog.Error("migration failed", "error", err)
		os.Exit(1)
	}

	// Database log handler (ERROR+ async batch)
	dbLogHandler := logging.NewDBHandler(db, 5*time.Second)
	slog.SetDefault(slog.New(logging.NewMultiHandler(stdout, dbLogHandler)))

	cleanupDone := make(chan struct{})
	logging.StartCleanup(db, cfg.LogRetentionDays, cleanupDone)

	// Sentry error tracking
	if cfg.SentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:              cfg.SentryDSN,
			EnableTracing:    true,
			TracesSampleRate: 0.2,
			Environment:      cfg.AppEnv,
		}); err != nil {
			slog.Error("sentry init failed", "error", err)
		} else {
			defer sentry.Flush(2 * time.Second)
		}
	}

	// Moderation engine
	contents := store.NewContents(db)
	heuristic := classifier.NewHeuristic()
	engine, err := moderation.NewEngine(moderation.Options{
		Reports:      store.NewReports(db),
		Contents:     contents,
		Classifier:   classifier.New(cfg),
		Identity:     identity.Provider{},
		Thresholds:   thresholds,
		Features:     cfg.Features(),
		CheckTimeout: cfg.AITimeout,
		Logger:       slog.Default().With("component", "moderation"),
	})
	if err != nil {
		slog.Error("moderation engine init failed", "error", err)
		os.Exit(1)
	}
	slog.Info("moderation engine ready",
		"min_votes", thresholds.MinVotesRequired,
		"removal_threshold", thresholds.RemovalThreshold,
		"ai_threshold", thresholds.AIConfidenceThreshold,
		"voting_period", thresholds.VotingPeriod.String(),
		"policy", thresholds.Policy,
	)

	sweepDone := make(chan struct{})
	moderation.StartExpirySweeper(engine, cfg.ExpirySweepInterval, sweepDone)

	// Handlers
	healthHandler := handlers.NewHealthHandler(db)
	moderationHandler := handlers.NewModerationHandler(engine)
	contentHandler := handlers.NewContentHandler(contents, heuristic)

	// Fiber app
	app := fiber.New(fiber.Config{
		BodyLimit:    1 * 1024 * 1024,
		ErrorHandler: customErrorHandler,
	})

	app.Use(sentryfiber.New(sentryfiber.Options{
		Repanic:         true,
		WaitForDelivery: false,
	}))

	// Global middleware
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(fiberlogger.New(fiberlogger.Config{
		Format: "${time} | ${status} | ${latency} | ${ip} | ${method} | ${path}\n",
	}))
	app.Use(middleware.CORS(cfg))
	app.Use(func(c *fiber.Ctx) error {
		c.Set("X-Content-Type-Options", "nosniff")
		c.Set("X-Frame-Options", "DENY")
		return c.Next()
	})

	routes.Setup(app, cfg, healthHandler, moderationHandler, contentHandler)

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		slog.Info("server starting", "port", cfg.Port)
		if err := app.Listen(":" + cfg.Port); err != nil {
			slog.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	<-quit
	slog.Info("shutting down server...")

	if err := app.Shutdown(); err != nil {
		slog.Error("server shutdown error", "error", err)
	}

	close(sweepDone)
	close(cleanupDone)
	// Content checks still in flight write their results before the DB closes
	engine.Wait()
	dbLogHandler.Stop()
	sentry.Flush(2 * time.Second)

	if sqlDB, err := db.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			slog.Error("database close error", "error", err)
		}
	}

	slog.Info("server stopped")
}

func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal server error"
	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
		message = e.Message
	}

	// Only expose error details for client errors (4xx), not server errors (5xx)
	if code >= 500 {
		slog.Error("unhandled server error", "method", c.Method(), "path", c.Path(), "error", err.Error())
		message = "Internal server error"
	}

	return c.Status(code).JSON(fiber.Map{
		"error":   true,
		"message": message,
	})
}
