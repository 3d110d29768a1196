package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"time"

	"go.temporal.io/sdk/client"
	"go.temporal.io/sdk/worker"

	natsadapter "github.com/samirrijal/vertexgen/internal/adapters/nats"
	"github.com/samirrijal/vertexgen/internal/adapters/postgres"
	"github.com/samirrijal/vertexgen/internal/adapters/projection"
	"github.com/samirrijal/vertexgen/internal/adapters/valkey"
	"github.com/samirrijal/vertexgen/internal/core/domain"
	"github.com/samirrijal/vertexgen/internal/core/ports"
	"github.com/samirrijal/vertexgen/internal/core/usecases"
	"github.com/samirrijal/vertexgen/internal/pkg/config"
	"github.com/samirrijal/vertexgen/internal/pkg/logging"
	"github.com/samirrijal/vertexgen/internal/workflows"
)

func main() {
	cfg, err := config.Load("vertexgen-worker")
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logging.Setup(cfg.Log.Level, cfg.Log.Format)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	transformer, err := projection.New(cfg.Transform.Backend)
	if err != nil {
		log.Fatalf("transform backend: %v", err)
	}
	defaults, err := cfg.Pipeline.Options()
	if err != nil {
		log.Fatalf("pipeline defaults: %v", err)
	}

	// Queued runs are only useful when they are stored.
	db, err := postgres.New(ctx, cfg.Database.DSN(), cfg.Database.MaxConns)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()
	go db.ReportPoolStats(ctx, 15*time.Second)

	var cache ports.CacheService
	if vc, err := valkey.New(cfg.Valkey.Addr); err != nil {
		slog.Warn("valkey unavailable", "error", err)
	} else {
		defer vc.Close()
		cache = vc
	}

	pub, err := natsadapter.NewPublisher(cfg.NATS.URL)
	if err != nil {
		log.Fatalf("nats publisher: %v", err)
	}
	defer pub.Close()

	svc := usecases.NewVertexService(transformer, postgres.NewRunRepo(db), pub, cache).WithCacheTTL(cfg.Pipeline.CacheTTL)

	// Connect to Temporal
	c, err := client.Dial(client.Options{
		HostPort:  cfg.Temporal.HostPort,
		Namespace: cfg.Temporal.Namespace,
	})
	if err != nil {
		log.Fatalf("temporal client: %v", err)
	}
	defer c.Close()

	w := worker.New(c, cfg.Temporal.TaskQueue, worker.Options{})

	// Register workflow & activities
	w.RegisterWorkflow(workflows.SequencingWorkflow)
	w.RegisterActivity(&workflows.SequencingActivities{
		Service:  svc,
		Defaults: defaults,
	})

	// Hand queued requests to Temporal. The workflow id is derived from the
	// run id, so a redelivered request does not start a second run.
	sub, err := natsadapter.NewSubscriber(cfg.NATS.URL)
	if err != nil {
		log.Fatalf("nats subscriber: %v", err)
	}
	defer sub.Close()

	err = sub.SubscribeRunRequests(ctx, func(ctx context.Context, req *domain.RunRequest) error {
		run, err := workflows.Submit(ctx, c, cfg.Temporal.TaskQueue, *req)
		if err != nil {
			return fmt.Errorf("start workflow: %w", err)
		}
		slog.Info("run request accepted", "run_id", req.RunID, "workflow_id", run.GetID(), "temporal_run_id", run.GetRunID())
		return nil
	})
	if err != nil {
		log.Fatalf("subscribe run requests: %v", err)
	}

	slog.Info("sequencing worker started", "task_queue", cfg.Temporal.TaskQueue)
	if err := w.Run(worker.InterruptCh()); err != nil {
		log.Fatalf("worker: %v", err)
	}
}
