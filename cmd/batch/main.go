package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	natsadapter "github.com/samirrijal/vertexgen/internal/adapters/nats"
	"github.com/samirrijal/vertexgen/internal/adapters/projection"
	"github.com/samirrijal/vertexgen/internal/cli"
	"github.com/samirrijal/vertexgen/internal/core/domain"
	"github.com/samirrijal/vertexgen/internal/core/usecases"
	"github.com/samirrijal/vertexgen/internal/pkg/config"
	"github.com/samirrijal/vertexgen/internal/pkg/logging"
)

// ---------------------------------------------------------------------------
// Manifest types
// ---------------------------------------------------------------------------

// Manifest lists point files to sequence. Relative paths resolve against the
// manifest's directory.
type Manifest struct {
	Source string     `json:"source"`
	Submit bool       `json:"submit"` // queue runs for the worker instead of running locally
	Jobs   []JobEntry `json:"jobs"`
}

type JobEntry struct {
	Name       string `json:"name"`
	Input      string `json:"input"`
	CRS        string `json:"crs,omitempty"`
	Table      string `json:"table,omitempty"`
	Points     string `json:"points,omitempty"`
	Policy     string `json:"reference_policy,omitempty"`
	Algorithm  string `json:"algorithm,omitempty"`
	LabelWidth int    `json:"label_width,omitempty"`
}

// ---------------------------------------------------------------------------
// Main
// ---------------------------------------------------------------------------

func main() {
	cfg, err := config.Load("vertexgen-batch")
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logging.Setup(cfg.Log.Level, cfg.Log.Format)

	ctx := context.Background()

	// Load manifest
	manifestPath := "manifest.json"
	if len(os.Args) > 1 {
		manifestPath = os.Args[1]
	}

	data, err := os.ReadFile(manifestPath)
	if err != nil {
		log.Fatalf("read manifest: %v", err)
	}

	var manifest Manifest
	if err := json.Unmarshal(data, &manifest); err != nil {
		log.Fatalf("parse manifest: %v", err)
	}
	base := filepath.Dir(manifestPath)

	slog.Info("vertexgen batch", "jobs", len(manifest.Jobs), "source", manifest.Source, "submit", manifest.Submit)

	// Filter jobs (optional CLI arg: name list)
	nameFilter := map[string]bool{}
	if len(os.Args) > 2 {
		for _, s := range strings.Split(os.Args[2], ",") {
			nameFilter[strings.TrimSpace(s)] = true
		}
	}

	defaults, err := cfg.Pipeline.Options()
	if err != nil {
		log.Fatalf("pipeline defaults: %v", err)
	}

	var process func(ctx context.Context, job cli.FileJob, name string) error
	if manifest.Submit {
		pub, err := natsadapter.NewPublisher(cfg.NATS.URL)
		if err != nil {
			log.Fatalf("nats: %v", err)
		}
		defer pub.Close()
		process = func(ctx context.Context, job cli.FileJob, name string) error {
			return submitJob(ctx, pub, job, name)
		}
	} else {
		transformer, err := projection.New(cfg.Transform.Backend)
		if err != nil {
			log.Fatalf("transform backend: %v", err)
		}
		svc := usecases.NewVertexService(transformer, nil, nil, nil)
		process = func(ctx context.Context, job cli.FileJob, name string) error {
			return runJob(ctx, svc, job, name)
		}
	}

	var (
		wg     sync.WaitGroup
		failed atomic.Int32
	)
	sem := make(chan struct{}, 4) // max 4 concurrent runs

	for _, entry := range manifest.Jobs {
		if len(nameFilter) > 0 && !nameFilter[entry.Name] {
			continue
		}

		job, err := entry.fileJob(base, defaults)
		if err != nil {
			slog.Error("invalid job", "job", entry.Name, "error", err)
			failed.Add(1)
			continue
		}

		wg.Add(1)
		go func(job cli.FileJob, name string) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			if err := process(ctx, job, name); err != nil {
				slog.Error("job failed", "job", name, "error", err)
				failed.Add(1)
			}
		}(job, entry.Name)
	}

	wg.Wait()
	if n := failed.Load(); n > 0 {
		log.Fatalf("batch finished with %d failed job(s)", n)
	}
	slog.Info("batch complete")
}

// ---------------------------------------------------------------------------
// Per-job processing
// ---------------------------------------------------------------------------

func (e JobEntry) fileJob(base string, defaults domain.Options) (cli.FileJob, error) {
	if e.Input == "" {
		return cli.FileJob{}, fmt.Errorf("input is required")
	}
	opts, err := cli.ResolveOptions(defaults, e.Policy, e.Algorithm, e.LabelWidth)
	if err != nil {
		return cli.FileJob{}, err
	}

	table, points := e.Table, e.Points
	if table == "" {
		table = e.Name + "_VERTICES.xlsx"
	}
	if points == "" {
		points = e.Name + "_VERTICES.geojson"
	}
	return cli.FileJob{
		Input:      resolvePath(base, e.Input),
		CRS:        e.CRS,
		TablePath:  resolvePath(base, table),
		PointsPath: resolvePath(base, points),
		Options:    opts,
	}, nil
}

func runJob(ctx context.Context, svc *usecases.VertexService, job cli.FileJob, name string) error {
	start := time.Now()
	out, err := cli.ProcessFile(ctx, svc, job, nil)
	if err != nil {
		return err
	}
	slog.Info("job done",
		"job", name,
		"run_id", out.Result.RunID,
		"points", len(out.Result.Points),
		"table", out.TablePath,
		"collection", out.PointsPath,
		"duration", time.Since(start),
	)
	return nil
}

func submitJob(ctx context.Context, pub *natsadapter.Publisher, job cli.FileJob, name string) error {
	set, err := cli.ReadPointSet(ctx, job.Input, job.CRS)
	if err != nil {
		return err
	}
	if set.Name == "" {
		set.Name = name
	}
	if err := usecases.ValidatePointSet(*set); err != nil {
		return err
	}

	req := &domain.RunRequest{
		RunID:       uuid.NewString(),
		Set:         *set,
		Options:     job.Options,
		SubmittedAt: time.Now().UTC(),
	}
	if err := pub.PublishRunRequest(ctx, req); err != nil {
		return fmt.Errorf("queue run: %w", err)
	}
	slog.Info("job queued", "job", name, "run_id", req.RunID, "progress_subject", natsadapter.ProgressSubject(req.RunID))
	return nil
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

func resolvePath(base, p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(base, p)
}
