package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Nhlanhla999/Epidemiologist-Data-Science-Tool/internal/domain/model"
)

var runColumns = []string{"id", "kind", "params", "result", "created_at"}

func newMockRepository(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewPostgresRepositoryFromDB(sqlx.NewDb(db, "postgres")), mock
}

func TestEnsureSchema(t *testing.T) {
	repo, mock := newMockRepository(t)
	mock.ExpectExec("CREATE TABLE IF NOT EXISTS simulation_runs").
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, repo.EnsureSchema(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSaveRun(t *testing.T) {
	repo, mock := newMockRepository(t)
	recorder := NewPostgresRunRecorder(repo.DB)

	run := model.RunRecord{
		ID:     "5b0e7c4e-8a57-4e0f-a4a1-1c9ad6f0a001",
		Kind:   model.RunKindSIR,
		Params: json.RawMessage(`{"population":1000}`),
		Result: json.RawMessage(`[]`),
	}
	mock.ExpectExec("INSERT INTO simulation_runs").
		WithArgs(run.ID, run.Kind, []byte(run.Params), []byte(run.Result)).
		WillReturnResult(sqlmock.NewResult(1, 1))

	require.NoError(t, recorder.SaveRun(context.Background(), run))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSaveRunError(t *testing.T) {
	repo, mock := newMockRepository(t)
	recorder := NewPostgresRunRecorder(repo.DB)

	mock.ExpectExec("INSERT INTO simulation_runs").
		WillReturnError(errors.New("connection refused"))

	err := recorder.SaveRun(context.Background(), model.RunRecord{ID: "x", Params: json.RawMessage(`{}`), Result: json.RawMessage(`{}`)})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to save run x")
}

func TestGetRun(t *testing.T) {
	repo, mock := newMockRepository(t)
	created := time.Date(2025, time.October, 2, 9, 0, 0, 0, time.UTC)

	mock.ExpectQuery("SELECT (.+) FROM simulation_runs WHERE id = \\$1").
		WithArgs("run-1").
		WillReturnRows(sqlmock.NewRows(runColumns).
			AddRow("run-1", model.RunKindCompare, []byte(`{"sir":{}}`), []byte(`{"baseline":[]}`), created))

	run, err := repo.GetRun(context.Background(), "run-1")
	require.NoError(t, err)
	assert.Equal(t, "run-1", run.ID)
	assert.Equal(t, model.RunKindCompare, run.Kind)
	assert.JSONEq(t, `{"sir":{}}`, string(run.Params))
	assert.JSONEq(t, `{"baseline":[]}`, string(run.Result))
	assert.Equal(t, created, run.CreatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetRunNotFound(t *testing.T) {
	repo, mock := newMockRepository(t)
	mock.ExpectQuery("SELECT (.+) FROM simulation_runs").
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetRun(context.Background(), "missing")
	assert.ErrorIs(t, err, model.ErrRunNotFound)
}

func TestListRuns(t *testing.T) {
	repo, mock := newMockRepository(t)
	now := time.Now().UTC()

	mock.ExpectQuery("SELECT (.+) FROM simulation_runs WHERE \\$1 = '' OR kind = \\$1 ORDER BY created_at DESC LIMIT \\$2").
		WithArgs(model.RunKindSIR, 2).
		WillReturnRows(sqlmock.NewRows(runColumns).
			AddRow("b", model.RunKindSIR, []byte(`{}`), []byte(`[]`), now).
			AddRow("a", model.RunKindSIR, []byte(`{}`), []byte(`[]`), now.Add(-time.Minute)))

	runs, err := repo.ListRuns(context.Background(), model.RunKindSIR, 2)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "b", runs[0].ID)
	assert.Equal(t, "a", runs[1].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListRunsEmpty(t *testing.T) {
	repo, mock := newMockRepository(t)
	mock.ExpectQuery("FROM simulation_runs").
		WithArgs("", 10).
		WillReturnRows(sqlmock.NewRows(runColumns))

	runs, err := repo.ListRuns(context.Background(), "", 10)
	require.NoError(t, err)
	assert.NotNil(t, runs)
	assert.Empty(t, runs)
}
