package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/SomeLazyDayz/Backend-15-11/internal/adapters/geocode"
	"github.com/SomeLazyDayz/Backend-15-11/internal/adapters/http"
	natsadapter "github.com/SomeLazyDayz/Backend-15-11/internal/adapters/nats"
	"github.com/SomeLazyDayz/Backend-15-11/internal/adapters/postgres"
	"github.com/SomeLazyDayz/Backend-15-11/internal/adapters/valkey"
	"github.com/SomeLazyDayz/Backend-15-11/internal/core/matching"
	"github.com/SomeLazyDayz/Backend-15-11/internal/core/ports"
	"github.com/SomeLazyDayz/Backend-15-11/internal/core/usecases"
	"github.com/SomeLazyDayz/Backend-15-11/internal/pkg/config"
	"github.com/SomeLazyDayz/Backend-15-11/internal/pkg/logging"
	"github.com/SomeLazyDayz/Backend-15-11/internal/pkg/metrics"
	"github.com/SomeLazyDayz/Backend-15-11/internal/pkg/telemetry"
)

func main() {
	cfg, err := config.Load("bloodlink-api")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	// Structured logging
	logLevel := os.Getenv("LOG_LEVEL")
	if logLevel == "" {
		logLevel = "info"
	}
	logging.Setup(logLevel, "json")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Telemetry
	if cfg.Telemetry.Enabled {
		shutdown, err := telemetry.InitTracer(ctx, cfg.Telemetry.ServiceName, cfg.Telemetry.TempoAddr)
		if err != nil {
			slog.Warn("telemetry init failed", "error", err)
		} else {
			defer shutdown(ctx)
		}
	}

	// Database
	db, err := postgres.New(ctx, cfg.Database.DSN())
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	// Pool metrics
	go func() {
		ticker := time.NewTicker(15 * time.Second)
		defer ticker.Stop()
		for range ticker.C {
			metrics.UpdateDBPoolMetrics(db.Pool.Stat())
		}
	}()

	// Cache — optional, services degrade to uncached reads
	var cacheSvc ports.CacheService
	cache, err := valkey.New(cfg.Valkey.Addr)
	if err != nil {
		slog.Warn("valkey unavailable", "error", err)
		cache = nil
	} else {
		defer cache.Close()
		cacheSvc = cache
	}

	// NATS — events are best-effort, so the API runs without a broker too
	var publisher ports.EventPublisher
	nc, err := natsadapter.NewPublisher(cfg.NATS.URL)
	if err != nil {
		slog.Warn("nats unavailable", "error", err)
	} else {
		defer nc.Close()
		publisher = nc
	}

	// Raw NATS connection for WebSocket relay
	natsConn, err := natsadapter.RawConn(cfg.NATS.URL)
	if err != nil {
		slog.Warn("nats ws conn unavailable", "error", err)
	}

	// Geocoder — optional; registrations still work without one
	var geocoder ports.Geocoder
	if cfg.Geocoder.APIKey != "" {
		g, err := geocode.NewGoogleGeocoder(cfg.Geocoder.APIKey)
		if err != nil {
			slog.Warn("geocoder unavailable", "error", err)
		} else {
			geocoder = g
		}
	} else {
		slog.Warn("no geocoder API key configured; new donors will not be located")
	}

	// Repos
	donorRepo := postgres.NewDonorRepo(db)
	hospitalRepo := postgres.NewHospitalRepo(db)

	// Use cases
	scorer := matching.NewRecencyScorer(cfg.Matching.CooldownDays)
	donorSvc := usecases.NewDonorService(donorRepo, geocoder, cacheSvc, publisher)
	hospitalSvc := usecases.NewHospitalService(hospitalRepo, cacheSvc)
	alertSvc := usecases.NewAlertService(hospitalRepo, donorRepo, scorer, publisher,
		cfg.Matching.DefaultRadiusKm, cfg.Matching.MaxResults)

	deps := &http.Dependencies{
		Donors:    donorSvc,
		Hospitals: hospitalSvc,
		Alerts:    alertSvc,
		NATS:      natsConn,
		DB:        db,
		Cache:     cache,
	}

	// Fiber
	app := fiber.New(fiber.Config{
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		BodyLimit:    1024 * 1024, // 1 MB max request body
		AppName:      "BloodLink API",
	})
	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     "http://localhost:3000, http://localhost:5173",
		AllowMethods:     "GET,POST,PUT,PATCH,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: false,
		MaxAge:           3600,
	}))

	http.SetupRoutes(app, deps)

	// Graceful shutdown
	go func() {
		addr := fmt.Sprintf(":%d", cfg.Server.Port)
		slog.Info("API server starting", "addr", addr)
		if err := app.Listen(addr); err != nil {
			log.Fatalf("listen: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	slog.Info("shutdown signal received, draining connections...", "signal", sig.String())

	// Give in-flight requests up to 10s to complete
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		slog.Error("forced shutdown", "error", err)
	}

	slog.Info("server stopped")
}
