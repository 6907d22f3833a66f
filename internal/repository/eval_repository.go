package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"leadflow/internal/entities"
	"leadflow/internal/interfaces"
)

type EvalRepository struct {
	db *pgxpool.Pool
}

var _ interfaces.EvalStore = (*EvalRepository)(nil)

func NewEvalRepository(db *pgxpool.Pool) *EvalRepository {
	return &EvalRepository{db: db}
}

func (r *EvalRepository) CreateCase(ctx context.Context, c *entities.EvalCase) error {
	inputJSON, err := json.Marshal(c.Input)
	if err != nil {
		return fmt.Errorf("encode eval input: %w", err)
	}
	criteriaJSON, err := json.Marshal(c.Criteria)
	if err != nil {
		return fmt.Errorf("encode eval criteria: %w", err)
	}
	err = r.db.QueryRow(ctx, `
		INSERT INTO eval_cases (name, kind, input, criteria)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`,
		c.Name, c.Kind, inputJSON, criteriaJSON,
	).Scan(&c.ID, &c.CreatedAt)
	return wrapPgError(err)
}

func scanEvalCase(row pgx.Row) (*entities.EvalCase, error) {
	var (
		c            entities.EvalCase
		inputJSON    []byte
		criteriaJSON []byte
	)
	err := row.Scan(&c.ID, &c.Name, &c.Kind, &inputJSON, &criteriaJSON, &c.CreatedAt)
	if err != nil {
		return nil, wrapPgError(err)
	}
	if err := json.Unmarshal(inputJSON, &c.Input); err != nil {
		return nil, fmt.Errorf("decode eval input: %w", err)
	}
	if err := json.Unmarshal(criteriaJSON, &c.Criteria); err != nil {
		return nil, fmt.Errorf("decode eval criteria: %w", err)
	}
	return &c, nil
}

func (r *EvalRepository) GetCase(ctx context.Context, id int) (*entities.EvalCase, error) {
	return scanEvalCase(r.db.QueryRow(ctx,
		"SELECT id, name, kind, input, criteria, created_at FROM eval_cases WHERE id = $1", id))
}

// ListCases returns cases, optionally restricted to one kind.
func (r *EvalRepository) ListCases(ctx context.Context, kind string) ([]entities.EvalCase, error) {
	query := "SELECT id, name, kind, input, criteria, created_at FROM eval_cases"
	args := []any{}
	if kind != "" {
		query += " WHERE kind = $1"
		args = append(args, kind)
	}
	query += " ORDER BY id ASC"

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, wrapPgError(err)
	}
	defer rows.Close()

	cases := []entities.EvalCase{}
	for rows.Next() {
		c, err := scanEvalCase(rows)
		if err != nil {
			return nil, err
		}
		cases = append(cases, *c)
	}
	return cases, rows.Err()
}

func (r *EvalRepository) DeleteCase(ctx context.Context, id int) error {
	tag, err := r.db.Exec(ctx, "DELETE FROM eval_cases WHERE id = $1", id)
	if err != nil {
		return wrapPgError(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *EvalRepository) CreateRun(ctx context.Context, run *entities.EvalRun) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO eval_runs (id, status, model, kind, case_count, started_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		run.ID, run.Status, run.Model, run.Kind, run.CaseCount, run.StartedAt)
	return wrapPgError(err)
}

// FinishRun writes the final verdicts for a run started with CreateRun.
func (r *EvalRepository) FinishRun(ctx context.Context, run *entities.EvalRun) error {
	resultsJSON, err := json.Marshal(run.Results)
	if err != nil {
		return fmt.Errorf("encode eval results: %w", err)
	}
	tag, err := r.db.Exec(ctx, `
		UPDATE eval_runs
		SET status = $2, case_count = $3, passed = $4, failed = $5,
			avg_score = $6, results = $7, finished_at = $8
		WHERE id = $1`,
		run.ID, run.Status, run.CaseCount, run.Passed, run.Failed,
		run.AvgScore, resultsJSON, run.FinishedAt)
	if err != nil {
		return wrapPgError(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *EvalRepository) GetRun(ctx context.Context, id string) (*entities.EvalRun, error) {
	var (
		run         entities.EvalRun
		resultsJSON []byte
	)
	err := r.db.QueryRow(ctx, `
		SELECT id, status, model, kind, case_count, passed, failed, avg_score,
			results, started_at, finished_at
		FROM eval_runs WHERE id = $1`, id,
	).Scan(&run.ID, &run.Status, &run.Model, &run.Kind, &run.CaseCount,
		&run.Passed, &run.Failed, &run.AvgScore, &resultsJSON,
		&run.StartedAt, &run.FinishedAt)
	if err != nil {
		return nil, wrapPgError(err)
	}
	if err := json.Unmarshal(resultsJSON, &run.Results); err != nil {
		return nil, fmt.Errorf("decode eval results: %w", err)
	}
	return &run, nil
}

// ListRuns returns run summaries newest first, without per-case results.
func (r *EvalRepository) ListRuns(ctx context.Context, limit int) ([]entities.EvalRun, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	rows, err := r.db.Query(ctx, `
		SELECT id, status, model, kind, case_count, passed, failed, avg_score,
			started_at, finished_at
		FROM eval_runs ORDER BY started_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, wrapPgError(err)
	}
	defer rows.Close()

	runs := []entities.EvalRun{}
	for rows.Next() {
		var run entities.EvalRun
		if err := rows.Scan(&run.ID, &run.Status, &run.Model, &run.Kind,
			&run.CaseCount, &run.Passed, &run.Failed, &run.AvgScore,
			&run.StartedAt, &run.FinishedAt); err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}
