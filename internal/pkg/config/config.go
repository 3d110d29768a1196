package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/samirrijal/vertexgen/internal/core/domain"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	NATS      NATSConfig      `mapstructure:"nats"`
	Valkey    ValkeyConfig    `mapstructure:"valkey"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
	Temporal  TemporalConfig  `mapstructure:"temporal"`
	Pipeline  PipelineConfig  `mapstructure:"pipeline"`
	Transform TransformConfig `mapstructure:"transform"`
	Log       LogConfig       `mapstructure:"log"`
}

type ServerConfig struct {
	Port         int `mapstructure:"port"`
	ReadTimeout  int `mapstructure:"read_timeout"`
	WriteTimeout int `mapstructure:"write_timeout"`
	BodyLimitMB  int `mapstructure:"body_limit_mb"`
}

type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
	SSLMode  string `mapstructure:"sslmode"`
	MaxConns int32  `mapstructure:"max_conns"`
}

func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.SSLMode,
	)
}

type NATSConfig struct {
	URL string `mapstructure:"url"`
}

type ValkeyConfig struct {
	Addr string `mapstructure:"addr"`
}

type TelemetryConfig struct {
	ServiceName  string `mapstructure:"service_name"`
	OTLPEndpoint string `mapstructure:"otlp_endpoint"`
	Enabled      bool   `mapstructure:"enabled"`
}

type TemporalConfig struct {
	HostPort  string `mapstructure:"host_port"`
	Namespace string `mapstructure:"namespace"`
	TaskQueue string `mapstructure:"task_queue"`
}

// PipelineConfig holds the defaults applied to runs that do not set their
// own options.
type PipelineConfig struct {
	ReferencePolicy string `mapstructure:"reference_policy"`
	Algorithm       string `mapstructure:"algorithm"`
	LabelWidth      int    `mapstructure:"label_width"`
	CacheTTL        int    `mapstructure:"cache_ttl"` // seconds
}

// Options converts the pipeline defaults to run options.
func (p PipelineConfig) Options() (domain.Options, error) {
	policy, err := domain.ParseReferencePolicy(p.ReferencePolicy)
	if err != nil {
		return domain.Options{}, err
	}
	algo, err := domain.ParseSequencingAlgorithm(p.Algorithm)
	if err != nil {
		return domain.Options{}, err
	}
	opts := domain.Options{ReferencePolicy: policy, Algorithm: algo, LabelWidth: p.LabelWidth}
	return opts, opts.Validate()
}

type TransformConfig struct {
	Backend string `mapstructure:"backend"` // "pure" or "proj"
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Load reads configuration from file and environment variables.
func Load(service string) (*Config, error) {
	v := viper.New()

	// Defaults
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 10)
	v.SetDefault("server.write_timeout", 10)
	v.SetDefault("server.body_limit_mb", 8)
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "vertexgen")
	v.SetDefault("database.password", "")
	v.SetDefault("database.dbname", "vertexgen")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_conns", 20)
	v.SetDefault("nats.url", "nats://localhost:4222")
	v.SetDefault("valkey.addr", "localhost:6379")
	v.SetDefault("telemetry.service_name", service)
	v.SetDefault("telemetry.otlp_endpoint", "localhost:4317")
	v.SetDefault("telemetry.enabled", false)
	v.SetDefault("temporal.host_port", "localhost:7233")
	v.SetDefault("temporal.namespace", "default")
	v.SetDefault("temporal.task_queue", "vertexgen-sequencing")
	v.SetDefault("pipeline.reference_policy", string(domain.PolicyExtremePoint))
	v.SetDefault("pipeline.algorithm", string(domain.AlgorithmSortByAzimuth))
	v.SetDefault("pipeline.label_width", domain.MinLabelWidth)
	v.SetDefault("pipeline.cache_ttl", 3600)
	v.SetDefault("transform.backend", "pure")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Config file (optional)
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./configs")
	_ = v.ReadInConfig() // OK if missing

	// Environment variables: VERTEXGEN_DATABASE_HOST → database.host
	v.SetEnvPrefix("VERTEXGEN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks that required configuration fields are present and sane.
func (c *Config) Validate() error {
	var errs []string

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Sprintf("server.port must be 1-65535, got %d", c.Server.Port))
	}
	if c.Database.Host == "" {
		errs = append(errs, "database.host is required")
	}
	if c.Database.Port <= 0 || c.Database.Port > 65535 {
		errs = append(errs, fmt.Sprintf("database.port must be 1-65535, got %d", c.Database.Port))
	}
	if c.Database.User == "" {
		errs = append(errs, "database.user is required")
	}
	if c.Database.DBName == "" {
		errs = append(errs, "database.dbname is required")
	}
	if c.NATS.URL == "" {
		errs = append(errs, "nats.url is required")
	}
	if c.Valkey.Addr == "" {
		errs = append(errs, "valkey.addr is required")
	}
	if c.Server.ReadTimeout <= 0 {
		errs = append(errs, "server.read_timeout must be positive")
	}
	if c.Server.WriteTimeout <= 0 {
		errs = append(errs, "server.write_timeout must be positive")
	}
	if c.Server.BodyLimitMB <= 0 {
		errs = append(errs, "server.body_limit_mb must be positive")
	}
	if c.Temporal.TaskQueue == "" {
		errs = append(errs, "temporal.task_queue is required")
	}
	if _, err := c.Pipeline.Options(); err != nil {
		errs = append(errs, fmt.Sprintf("pipeline: %v", err))
	}
	if c.Pipeline.CacheTTL < 0 {
		errs = append(errs, "pipeline.cache_ttl must not be negative")
	}
	switch c.Transform.Backend {
	case "pure", "proj":
	default:
		errs = append(errs, fmt.Sprintf("transform.backend must be pure or proj, got %q", c.Transform.Backend))
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}
