package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/Nhlanhla999/Epidemiologist-Data-Science-Tool/internal/domain/model"
)

type RunRecorder interface {
	SaveRun(ctx context.Context, run model.RunRecord) error
}

type RunReader interface {
	GetRun(ctx context.Context, id string) (model.RunRecord, error)
	ListRuns(ctx context.Context, kind string, limit int) ([]model.RunRecord, error)
}

type PostgresRunRecorder struct {
	db *sqlx.DB
}

func NewPostgresRunRecorder(db *sqlx.DB) *PostgresRunRecorder {
	return &PostgresRunRecorder{db: db}
}

func (r *PostgresRunRecorder) SaveRun(ctx context.Context, run model.RunRecord) error {
	const query = `
		INSERT INTO simulation_runs (
			id, kind, params, result, created_at
		) VALUES (
			$1, $2, $3, $4, NOW()
		)`

	_, err := r.db.ExecContext(ctx, query,
		run.ID, run.Kind,
		[]byte(run.Params), []byte(run.Result),
	)
	if err != nil {
		return fmt.Errorf("failed to save run %s: %w", run.ID, err)
	}
	return nil
}
