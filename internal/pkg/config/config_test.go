package config_test

import (
	"strings"
	"testing"

	"github.com/samirrijal/vertexgen/internal/core/domain"
	"github.com/samirrijal/vertexgen/internal/pkg/config"
)

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir()) // no config.yaml

	cfg, err := config.Load("vertexgen-test")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Server.Port != 8080 || cfg.Telemetry.ServiceName != "vertexgen-test" {
		t.Errorf("unexpected defaults %+v", cfg.Server)
	}
	opts, err := cfg.Pipeline.Options()
	if err != nil {
		t.Fatalf("default pipeline options: %v", err)
	}
	if opts != domain.DefaultOptions() {
		t.Errorf("expected %+v, got %+v", domain.DefaultOptions(), opts)
	}
	if cfg.Transform.Backend != "pure" {
		t.Errorf("expected pure backend, got %s", cfg.Transform.Backend)
	}
}

func TestLoad_Env(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("VERTEXGEN_PIPELINE_ALGORITHM", "greedy")
	t.Setenv("VERTEXGEN_PIPELINE_LABEL_WIDTH", "3")
	t.Setenv("VERTEXGEN_SERVER_PORT", "9090")

	cfg, err := config.Load("vertexgen-test")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	opts, _ := cfg.Pipeline.Options()
	if opts.Algorithm != domain.AlgorithmGreedyWalk || opts.LabelWidth != 3 {
		t.Errorf("env overrides not applied: %+v", opts)
	}
	if cfg.Server.Port != 9090 {
		t.Errorf("expected port 9090, got %d", cfg.Server.Port)
	}
}

func TestValidate_CollectsAllProblems(t *testing.T) {
	cfg := &config.Config{
		Server:    config.ServerConfig{Port: 0, ReadTimeout: 1, WriteTimeout: 1, BodyLimitMB: 1},
		Database:  config.DatabaseConfig{Host: "db", Port: 5432, User: "u", DBName: "d"},
		NATS:      config.NATSConfig{URL: "nats://x"},
		Valkey:    config.ValkeyConfig{Addr: "x:6379"},
		Temporal:  config.TemporalConfig{TaskQueue: "q"},
		Pipeline:  config.PipelineConfig{ReferencePolicy: "centroid", Algorithm: "spiral", LabelWidth: 2},
		Transform: config.TransformConfig{Backend: "gdal"},
	}

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected validation error")
	}
	for _, want := range []string{"server.port", "pipeline:", "transform.backend"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("expected %q in %v", want, err)
		}
	}
}
