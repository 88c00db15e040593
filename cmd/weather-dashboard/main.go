package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	httpapi "github.com/i474232898/weather-dashboard/internal/api/http"
	"github.com/i474232898/weather-dashboard/internal/backend"
	"github.com/i474232898/weather-dashboard/internal/config"
	"github.com/i474232898/weather-dashboard/internal/geo"
	"github.com/i474232898/weather-dashboard/internal/observability"
	"github.com/i474232898/weather-dashboard/internal/pins"
	"github.com/i474232898/weather-dashboard/internal/query"
	"github.com/i474232898/weather-dashboard/internal/scheduler"
	"github.com/i474232898/weather-dashboard/internal/store"
	"github.com/i474232898/weather-dashboard/internal/weather"
)

func main() {
	// Load configuration (also reads .env when present).
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	metrics := observability.NewMetrics(prometheus.DefaultRegisterer)

	// Shared HTTP client for backend calls.
	httpClient := &http.Client{
		Timeout: cfg.HTTPTimeout,
	}

	// Durable client state.
	kv, err := store.Open(cfg.StorageDriver, cfg.StoragePath)
	if err != nil {
		log.Fatalf("failed to open %s storage: %v", cfg.StorageDriver, err)
	}
	defer kv.Close()

	pinStore := pins.Open(kv, cfg.Fallback)
	log.Printf("INFO: loaded %d pinned locations, active %s", pinStore.Len(), pinStore.Active().Label())

	breaker := backend.DefaultBreakerConfig()
	breaker.MaxFailures = uint32(cfg.BreakerMaxFailures)
	breaker.Timeout = cfg.BreakerTimeout
	client := backend.NewClient(httpClient, cfg.BackendBaseURL, breaker, metrics)

	// Core service orchestrating backend calls and panel state.
	service := weather.NewService(client, pinStore, weather.Defaults{
		Days:          cfg.DefaultDays,
		Units:         cfg.DefaultUnits,
		PredictedUnit: cfg.PredictedUnit,
		OfficialUnit:  cfg.OfficialUnit,
		DatasetID:     cfg.DatasetID,
		StationID:     cfg.StationID,
	}, weather.ServiceOptions{
		Geocoder: geo.NewResolver(cfg.GeocoderAPIKey),
		Describe: backend.UserMessage,
		OnRejected: func(res query.Result) {
			metrics.QueryRejections.WithLabelValues(string(res.Reason)).Inc()
		},
	})
	defer service.Close()

	// Scheduler that periodically refreshes alerts for the active location.
	sched := scheduler.New(cfg.AlertRefreshInterval, service, func(err error) {
		outcome := "success"
		if err != nil {
			outcome = "error"
		}
		metrics.AlertRefreshes.WithLabelValues(outcome).Inc()
	})
	if err := sched.Start(); err != nil {
		log.Fatalf("failed to start scheduler: %v", err)
	}
	defer sched.Stop()

	// Basic app configuration
	app := fiber.New(fiber.Config{
		AppName:               "weather-dashboard",
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          30 * time.Second,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			// Centralized error response
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"error":   true,
				"message": err.Error(),
			})
		},
	})

	// Global middleware
	app.Use(logger.New())
	app.Use(recover.New())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"service": "weather-dashboard",
		})
	})
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	// API routes.
	httpapi.RegisterRoutes(app, service, pinStore, metrics)

	go func() {
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Printf("fiber server stopped: %v", err)
		}
	}()
	log.Printf("INFO: listening on :%s, backend %s", cfg.Port, cfg.BackendBaseURL)

	// Wait for termination signal
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Printf("error during shutdown: %v", err)
	}
}
