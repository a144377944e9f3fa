package results

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// RunRecord is one benchmark run's outcome, as persisted
type RunRecord struct {
	RunID            string
	Dataset          string
	Vertices         int
	Edges            int
	SampleSize       int
	Seed             int64
	Workers          int
	LocalDuration    time.Duration
	ClusterDuration  time.Duration
	VerificationPass bool
	MaxAbsDiff       float64
	CreatedAt        time.Time
}

// PGStore persists run history to PostgreSQL
type PGStore struct {
	pool *pgxpool.Pool
}

// NewPGStore opens a pooled connection to the run-history database and
// creates the schema if needed.
func NewPGStore(ctx context.Context, databaseURL string) (*PGStore, error) {
	config, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database URL: %w", err)
	}

	config.MaxConns = 5
	config.MaxConnLifetime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("database unreachable: %w", err)
	}

	s := &PGStore{pool: pool}
	if err := s.migrate(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("migration failed: %w", err)
	}
	return s, nil
}

func (s *PGStore) migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS benchmark_runs (
			run_id            TEXT PRIMARY KEY,
			dataset           TEXT NOT NULL,
			vertices          BIGINT NOT NULL,
			edges             BIGINT NOT NULL,
			sample_size       INT NOT NULL,
			seed              BIGINT NOT NULL,
			workers           INT NOT NULL,
			local_ms          BIGINT NOT NULL,
			cluster_ms        BIGINT NOT NULL,
			verification_pass BOOLEAN NOT NULL,
			max_abs_diff      DOUBLE PRECISION NOT NULL,
			created_at        TIMESTAMPTZ NOT NULL
		)
	`)
	return err
}

// RecordRun stores one run
func (s *PGStore) RecordRun(ctx context.Context, rec RunRecord) error {
	query := `
		INSERT INTO benchmark_runs (run_id, dataset, vertices, edges, sample_size, seed, workers,
			local_ms, cluster_ms, verification_pass, max_abs_diff, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`

	_, err := s.pool.Exec(ctx, query,
		rec.RunID,
		rec.Dataset,
		rec.Vertices,
		rec.Edges,
		rec.SampleSize,
		rec.Seed,
		rec.Workers,
		rec.LocalDuration.Milliseconds(),
		rec.ClusterDuration.Milliseconds(),
		rec.VerificationPass,
		rec.MaxAbsDiff,
		rec.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to record run: %w", err)
	}
	return nil
}

// RecentRuns returns the newest runs, most recent first
func (s *PGStore) RecentRuns(ctx context.Context, limit int) ([]RunRecord, error) {
	query := `
		SELECT run_id, dataset, vertices, edges, sample_size, seed, workers,
			local_ms, cluster_ms, verification_pass, max_abs_diff, created_at
		FROM benchmark_runs
		ORDER BY created_at DESC
		LIMIT $1
	`

	rows, err := s.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var records []RunRecord
	for rows.Next() {
		var rec RunRecord
		var localMS, clusterMS int64
		if err := rows.Scan(
			&rec.RunID,
			&rec.Dataset,
			&rec.Vertices,
			&rec.Edges,
			&rec.SampleSize,
			&rec.Seed,
			&rec.Workers,
			&localMS,
			&clusterMS,
			&rec.VerificationPass,
			&rec.MaxAbsDiff,
			&rec.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		rec.LocalDuration = time.Duration(localMS) * time.Millisecond
		rec.ClusterDuration = time.Duration(clusterMS) * time.Millisecond
		records = append(records, rec)
	}
	return records, rows.Err()
}

// Ping checks database connectivity
func (s *PGStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// Close closes the connection pool
func (s *PGStore) Close() error {
	s.pool.Close()
	return nil
}
