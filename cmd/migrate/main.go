package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"slices"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/samirrijal/vertexgen/internal/pkg/config"
	"github.com/samirrijal/vertexgen/internal/pkg/logging"
)

// migration is one schema step. Down is empty when the step cannot be undone.
type migration struct {
	File string
	Down string
}

var migrations = []migration{
	{File: "migrations/001_init_extensions.sql"},
	{File: "migrations/002_runs.sql", Down: "DROP TABLE IF EXISTS run_points, runs"},
}

func main() {
	if len(os.Args) < 2 {
		log.Fatal("usage: migrate <up|down|status>")
	}

	cfg, err := config.Load("vertexgen-migrate")
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logging.Setup(cfg.Log.Level, cfg.Log.Format)

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, cfg.Database.DSN())
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	defer pool.Close()

	if _, err := pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			file       TEXT PRIMARY KEY,
			applied_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`); err != nil {
		log.Fatalf("create schema_migrations: %v", err)
	}

	switch os.Args[1] {
	case "up":
		err = up(ctx, pool)
	case "down":
		err = down(ctx, pool)
	case "status":
		err = status(ctx, pool)
	default:
		log.Fatalf("unknown command: %s", os.Args[1])
	}
	if err != nil {
		log.Fatal(err)
	}
}

func applied(ctx context.Context, pool *pgxpool.Pool) (map[string]bool, error) {
	rows, err := pool.Query(ctx, `SELECT file FROM schema_migrations`)
	if err != nil {
		return nil, fmt.Errorf("read schema_migrations: %w", err)
	}
	files, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("read schema_migrations: %w", err)
	}
	done := make(map[string]bool, len(files))
	for _, f := range files {
		done[f] = true
	}
	return done, nil
}

func up(ctx context.Context, pool *pgxpool.Pool) error {
	done, err := applied(ctx, pool)
	if err != nil {
		return err
	}

	for _, m := range migrations {
		if done[m.File] {
			continue
		}
		data, err := os.ReadFile(m.File)
		if err != nil {
			return fmt.Errorf("read %s: %w", m.File, err)
		}

		err = pgx.BeginFunc(ctx, pool, func(tx pgx.Tx) error {
			if _, err := tx.Exec(ctx, string(data)); err != nil {
				return err
			}
			_, err := tx.Exec(ctx, `INSERT INTO schema_migrations (file) VALUES ($1)`, m.File)
			return err
		})
		if err != nil {
			return fmt.Errorf("exec %s: %w", m.File, err)
		}
		slog.Info("migration applied", "file", m.File)
	}

	slog.Info("all migrations applied")
	return nil
}

// down reverts the most recent applied migration that can be undone.
func down(ctx context.Context, pool *pgxpool.Pool) error {
	done, err := applied(ctx, pool)
	if err != nil {
		return err
	}

	for _, m := range slices.Backward(migrations) {
		if !done[m.File] {
			continue
		}
		if m.Down == "" {
			return fmt.Errorf("%s cannot be reverted", m.File)
		}
		err := pgx.BeginFunc(ctx, pool, func(tx pgx.Tx) error {
			if _, err := tx.Exec(ctx, m.Down); err != nil {
				return err
			}
			_, err := tx.Exec(ctx, `DELETE FROM schema_migrations WHERE file = $1`, m.File)
			return err
		})
		if err != nil {
			return fmt.Errorf("revert %s: %w", m.File, err)
		}
		slog.Info("migration reverted", "file", m.File)
		return nil
	}

	slog.Info("nothing to revert")
	return nil
}

func status(ctx context.Context, pool *pgxpool.Pool) error {
	done, err := applied(ctx, pool)
	if err != nil {
		return err
	}
	for _, m := range migrations {
		state := "pending"
		if done[m.File] {
			state = "applied"
		}
		fmt.Printf("%-8s %s\n", state, m.File)
	}
	return nil
}
