package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"github.com/Nhlanhla999/Epidemiologist-Data-Science-Tool/internal/domain/model"
)

const schema = `
	CREATE TABLE IF NOT EXISTS simulation_runs (
		id         UUID PRIMARY KEY,
		kind       TEXT NOT NULL,
		params     JSONB NOT NULL,
		result     JSONB NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`

type PostgresRepository struct {
	DB *sqlx.DB
}

func NewPostgresRepository(connStr string) (*PostgresRepository, error) {
	db, err := sqlx.Connect("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}
	return &PostgresRepository{DB: db}, nil
}

func NewPostgresRepositoryFromDB(db *sqlx.DB) *PostgresRepository {
	return &PostgresRepository{DB: db}
}

// EnsureSchema creates the run table when it does not exist yet.
func (r *PostgresRepository) EnsureSchema(ctx context.Context) error {
	if _, err := r.DB.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

func (r *PostgresRepository) GetRun(ctx context.Context, id string) (model.RunRecord, error) {
	const query = `
		SELECT id, kind, params, result, created_at
		FROM simulation_runs
		WHERE id = $1`

	var run model.RunRecord
	err := r.DB.GetContext(ctx, &run, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return model.RunRecord{}, model.ErrRunNotFound
	}
	if err != nil {
		return model.RunRecord{}, fmt.Errorf("failed to query run %s: %w", id, err)
	}
	return run, nil
}

// ListRuns returns the most recent runs of kind, newest first. An empty
// kind matches every run.
func (r *PostgresRepository) ListRuns(ctx context.Context, kind string, limit int) ([]model.RunRecord, error) {
	const query = `
		SELECT id, kind, params, result, created_at
		FROM simulation_runs
		WHERE $1 = '' OR kind = $1
		ORDER BY created_at DESC
		LIMIT $2`

	runs := []model.RunRecord{}
	if err := r.DB.SelectContext(ctx, &runs, query, kind, limit); err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	return runs, nil
}

func (r *PostgresRepository) Close() error {
	return r.DB.Close()
}
