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
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/samirrijal/vertexgen/internal/adapters/http"
	natsadapter "github.com/samirrijal/vertexgen/internal/adapters/nats"
	"github.com/samirrijal/vertexgen/internal/adapters/postgres"
	"github.com/samirrijal/vertexgen/internal/adapters/projection"
	"github.com/samirrijal/vertexgen/internal/adapters/valkey"
	"github.com/samirrijal/vertexgen/internal/core/ports"
	"github.com/samirrijal/vertexgen/internal/core/usecases"
	"github.com/samirrijal/vertexgen/internal/pkg/config"
	"github.com/samirrijal/vertexgen/internal/pkg/logging"
	"github.com/samirrijal/vertexgen/internal/pkg/telemetry"
)

func main() {
	cfg, err := config.Load("vertexgen-api")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	// Structured logging
	logging.Setup(cfg.Log.Level, cfg.Log.Format)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Telemetry
	if cfg.Telemetry.Enabled {
		shutdown, err := telemetry.InitTracer(ctx, cfg.Telemetry.ServiceName, cfg.Telemetry.OTLPEndpoint)
		if err != nil {
			slog.Warn("telemetry init failed", "error", err)
		} else {
			defer shutdown()
		}
	}

	// Coordinate transformer
	transformer, err := projection.New(cfg.Transform.Backend)
	if err != nil {
		log.Fatalf("transform backend: %v", err)
	}

	defaults, err := cfg.Pipeline.Options()
	if err != nil {
		log.Fatalf("pipeline defaults: %v", err)
	}

	deps := &http.Dependencies{Defaults: defaults}

	// Run history is optional; without a database runs are not stored.
	var runs ports.RunRepository
	db, err := postgres.New(ctx, cfg.Database.DSN(), cfg.Database.MaxConns)
	if err != nil {
		slog.Warn("database unavailable, run history disabled", "error", err)
	} else {
		defer db.Close()
		go db.ReportPoolStats(ctx, 15*time.Second)
		runs = postgres.NewRunRepo(db)
		deps.DB = db
	}

	// Cache
	var cache ports.CacheService
	vc, err := valkey.New(cfg.Valkey.Addr)
	if err != nil {
		slog.Warn("valkey unavailable", "error", err)
	} else {
		defer vc.Close()
		cache = vc
		deps.Cache = vc
	}

	// NATS
	var events ports.EventPublisher
	pub, err := natsadapter.NewPublisher(cfg.NATS.URL)
	if err != nil {
		slog.Warn("nats unavailable, run queue disabled", "error", err)
	} else {
		defer pub.Close()
		events = pub
		deps.Submitter = pub
	}

	// Raw NATS connection for WebSocket relay
	natsConn, err := natsadapter.RawConn(cfg.NATS.URL)
	if err != nil {
		slog.Warn("nats ws conn unavailable", "error", err)
	} else {
		defer natsConn.Close()
		deps.NATS = natsConn
	}

	deps.Vertices = usecases.NewVertexService(transformer, runs, events, cache).WithCacheTTL(cfg.Pipeline.CacheTTL)

	// Fiber
	app := fiber.New(fiber.Config{
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		BodyLimit:    cfg.Server.BodyLimitMB * 1024 * 1024,
		AppName:      "vertexgen API",
	})
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     "http://localhost:3000, http://localhost:5173",
		AllowMethods:     "GET,POST,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		ExposeHeaders:    "X-Run-ID, X-Sample-Region, Link, Location",
		AllowCredentials: false,
		MaxAge:           3600,
	}))

	http.SetupRoutes(app, deps)

	// Graceful shutdown
	go func() {
		addr := fmt.Sprintf(":%d", cfg.Server.Port)
		slog.Info("API server starting", "addr", addr, "transform_backend", cfg.Transform.Backend)
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
