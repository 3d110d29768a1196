package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/samirrijal/vertexgen/internal/core/domain"
)

// invalidTextRepresentation is raised when a malformed uuid is compared
// against the id column.
const invalidTextRepresentation = "22P02"

// RunRepo implements ports.RunRepository with pgx.
type RunRepo struct {
	db *DB
}

// NewRunRepo creates a new RunRepo.
func NewRunRepo(db *DB) *RunRepo {
	return &RunRepo{db: db}
}

// Save writes the run header and its points in one transaction.
func (r *RunRepo) Save(ctx context.Context, rec *domain.RunRecord, points []domain.SequencedPoint) error {
	return pgx.BeginFunc(ctx, r.db.Pool, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `
			INSERT INTO runs (id, name, source_crs, reference_policy, algorithm, label_width,
			                  point_count, anchor_lat, anchor_lon, anchor_northing, anchor_member,
			                  perimeter_m, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
			ON CONFLICT (id) DO NOTHING
		`, rec.ID, rec.Name, rec.SourceCRS, string(rec.Options.ReferencePolicy), string(rec.Options.Algorithm),
			rec.Options.LabelWidth, rec.PointCount, rec.Anchor.Latitude, rec.Anchor.Longitude,
			rec.Anchor.UTMNorthing, rec.Anchor.MemberIndex, rec.Perimeter, rec.CreatedAt)
		if err != nil {
			return fmt.Errorf("insert run: %w", err)
		}

		batch := &pgx.Batch{}
		for _, p := range points {
			props, err := json.Marshal(p.Properties)
			if err != nil {
				return fmt.Errorf("encode properties of %s: %w", p.Label, err)
			}
			batch.Queue(`
				INSERT INTO run_points (run_id, seq, label, input_index, x, y, location,
				                        utm_zone, utm_easting, utm_northing, azimuth, properties)
				VALUES ($1, $2, $3, $4, $5, $6, ST_SetSRID(ST_MakePoint($7, $8), 4326)::geography,
				        $9, $10, $11, $12, $13)
				ON CONFLICT (run_id, seq) DO NOTHING
			`, rec.ID, p.SequenceIndex, p.Label, p.Index, p.X, p.Y, p.Longitude, p.Latitude,
				p.UTMZone, p.UTMEasting, p.UTMNorthing, p.Azimuth, props)
		}
		br := tx.SendBatch(ctx, batch)
		for range points {
			if _, err := br.Exec(); err != nil {
				_ = br.Close()
				return fmt.Errorf("batch exec: %w", err)
			}
		}
		return br.Close()
	})
}

// GetByID returns a run header and its points in sequence order.
func (r *RunRepo) GetByID(ctx context.Context, id string) (*domain.RunRecord, []domain.SequencedPoint, error) {
	var (
		rec    domain.RunRecord
		policy string
		algo   string
	)
	err := r.db.Pool.QueryRow(ctx, `
		SELECT id::text, name, source_crs, reference_policy, algorithm, label_width,
		       point_count, anchor_lat, anchor_lon, anchor_northing, anchor_member,
		       perimeter_m, created_at
		FROM runs WHERE id = $1
	`, id).Scan(
		&rec.ID, &rec.Name, &rec.SourceCRS, &policy, &algo, &rec.Options.LabelWidth,
		&rec.PointCount, &rec.Anchor.Latitude, &rec.Anchor.Longitude,
		&rec.Anchor.UTMNorthing, &rec.Anchor.MemberIndex, &rec.Perimeter, &rec.CreatedAt,
	)
	if err != nil {
		if isNotFound(err) {
			return nil, nil, domain.ErrRunNotFound
		}
		return nil, nil, err
	}
	rec.Options.ReferencePolicy = domain.ReferencePolicy(policy)
	rec.Options.Algorithm = domain.SequencingAlgorithm(algo)
	rec.Anchor.Policy = rec.Options.ReferencePolicy

	rows, err := r.db.Pool.Query(ctx, `
		SELECT seq, label, input_index, x, y,
		       ST_Y(location::geometry) AS lat,
		       ST_X(location::geometry) AS lon,
		       utm_zone, utm_easting, utm_northing, azimuth, COALESCE(properties, '{}')
		FROM run_points
		WHERE run_id = $1
		ORDER BY seq
	`, id)
	if err != nil {
		return nil, nil, err
	}
	defer rows.Close()

	points := make([]domain.SequencedPoint, 0, rec.PointCount)
	for rows.Next() {
		var (
			p     domain.SequencedPoint
			props []byte
		)
		if err := rows.Scan(
			&p.SequenceIndex, &p.Label, &p.Index, &p.X, &p.Y,
			&p.Latitude, &p.Longitude,
			&p.UTMZone, &p.UTMEasting, &p.UTMNorthing, &p.Azimuth, &props,
		); err != nil {
			return nil, nil, err
		}
		if err := json.Unmarshal(props, &p.Properties); err != nil {
			return nil, nil, fmt.Errorf("decode properties of %s: %w", p.Label, err)
		}
		p.SourceCRS = rec.SourceCRS
		p.GeometryType = "Point"
		points = append(points, p)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, err
	}
	return &rec, points, nil
}

// List returns run headers, newest first.
func (r *RunRepo) List(ctx context.Context, limit, offset int) ([]domain.RunRecord, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT id::text, name, source_crs, reference_policy, algorithm, label_width,
		       point_count, anchor_lat, anchor_lon, anchor_northing, anchor_member,
		       perimeter_m, created_at
		FROM runs
		ORDER BY created_at DESC, id
		LIMIT $1 OFFSET $2
	`, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []domain.RunRecord
	for rows.Next() {
		var (
			rec    domain.RunRecord
			policy string
			algo   string
		)
		if err := rows.Scan(
			&rec.ID, &rec.Name, &rec.SourceCRS, &policy, &algo, &rec.Options.LabelWidth,
			&rec.PointCount, &rec.Anchor.Latitude, &rec.Anchor.Longitude,
			&rec.Anchor.UTMNorthing, &rec.Anchor.MemberIndex, &rec.Perimeter, &rec.CreatedAt,
		); err != nil {
			return nil, err
		}
		rec.Options.ReferencePolicy = domain.ReferencePolicy(policy)
		rec.Options.Algorithm = domain.SequencingAlgorithm(algo)
		rec.Anchor.Policy = rec.Options.ReferencePolicy
		runs = append(runs, rec)
	}
	return runs, rows.Err()
}

// Count returns the number of stored runs.
func (r *RunRepo) Count(ctx context.Context) (int, error) {
	var n int
	err := r.db.Pool.QueryRow(ctx, `SELECT count(*) FROM runs`).Scan(&n)
	return n, err
}

func isNotFound(err error) bool {
	if errors.Is(err, pgx.ErrNoRows) {
		return true
	}
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == invalidTextRepresentation
}
