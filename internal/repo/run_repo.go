package repo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shaiso/apiforge/internal/domain"
)

// RunRepo — репозиторий runs и их отчётов.
//
// Схема:
//
//	runs(id uuid pk, pipeline text, status text, started_at timestamptz,
//	     finished_at timestamptz, error text, counters jsonb, created_at timestamptz)
//	run_stages(run_id uuid fk, position int, stage_id text, status text,
//	           skip_reason text, error text, duration_ms bigint, output jsonb,
//	           primary key (run_id, stage_id))
type RunRepo struct {
	pool *pgxpool.Pool
}

// NewRunRepo создаёт RunRepo.
func NewRunRepo(pool *pgxpool.Pool) *RunRepo {
	return &RunRepo{pool: pool}
}

// Create создаёт новый run.
func (r *RunRepo) Create(ctx context.Context, run *domain.Run) error {
	query := `
		INSERT INTO runs (id, pipeline, status, created_at)
		VALUES ($1, $2, $3, $4)
	`
	_, err := r.pool.Exec(ctx, query,
		run.ID,
		run.Pipeline,
		run.Status,
		run.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}
	return nil
}

// Update обновляет статус и тайминги run.
func (r *RunRepo) Update(ctx context.Context, run *domain.Run) error {
	query := `
		UPDATE runs
		SET status = $2, started_at = $3, finished_at = $4, error = $5
		WHERE id = $1
	`
	result, err := r.pool.Exec(ctx, query,
		run.ID,
		run.Status,
		run.StartedAt,
		run.FinishedAt,
		nullString(run.Error),
	)
	if err != nil {
		return fmt.Errorf("update run: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// GetByID возвращает run по ID.
func (r *RunRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Run, error) {
	query := `
		SELECT id, pipeline, status, started_at, finished_at, error, created_at
		FROM runs
		WHERE id = $1
	`
	run, err := scanRun(r.pool.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return run, err
}

// RunFilter — параметры фильтрации runs.
type RunFilter struct {
	Pipeline string
	Status   domain.RunStatus
	Limit    int
	Offset   int
}

// List возвращает runs с фильтрацией, новые первыми.
func (r *RunRepo) List(ctx context.Context, filter RunFilter) ([]domain.Run, error) {
	if filter.Limit <= 0 {
		filter.Limit = 50
	}

	query := `
		SELECT id, pipeline, status, started_at, finished_at, error, created_at
		FROM runs
		WHERE ($1::text IS NULL OR pipeline = $1)
		  AND ($2::text IS NULL OR status = $2)
		ORDER BY created_at DESC
		LIMIT $3 OFFSET $4
	`
	rows, err := r.pool.Query(ctx, query,
		nullString(filter.Pipeline),
		nullString(string(filter.Status)),
		filter.Limit,
		filter.Offset,
	)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []domain.Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, *run)
	}
	return runs, rows.Err()
}

// SaveReport сохраняет итоговый отчёт: счётчики в runs, стадии
// в run_stages. Повторное сохранение перезаписывает стадии.
func (r *RunRepo) SaveReport(ctx context.Context, rep *domain.RunReport) error {
	countersJSON, err := json.Marshal(rep.Counters)
	if err != nil {
		return fmt.Errorf("marshal counters: %w", err)
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	result, err := tx.Exec(ctx,
		`UPDATE runs SET counters = $2 WHERE id = $1`,
		rep.RunID, countersJSON,
	)
	if err != nil {
		return fmt.Errorf("update counters: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}

	if _, err := tx.Exec(ctx,
		`DELETE FROM run_stages WHERE run_id = $1`, rep.RunID,
	); err != nil {
		return fmt.Errorf("clear stages: %w", err)
	}

	insert := `
		INSERT INTO run_stages (run_id, position, stage_id, status, skip_reason, error, duration_ms, output)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	for i, stage := range rep.Stages {
		outputJSON, err := json.Marshal(stage.Output)
		if err != nil {
			return fmt.Errorf("marshal output of %s: %w", stage.StageID, err)
		}
		if _, err := tx.Exec(ctx, insert,
			rep.RunID,
			i,
			stage.StageID,
			stage.Status,
			nullString(stage.SkipReason),
			nullString(stage.Error),
			stage.DurationMS,
			outputJSON,
		); err != nil {
			return fmt.Errorf("insert stage %s: %w", stage.StageID, err)
		}
	}

	return tx.Commit(ctx)
}

// GetReport восстанавливает отчёт из runs и run_stages.
func (r *RunRepo) GetReport(ctx context.Context, runID uuid.UUID) (*domain.RunReport, error) {
	query := `
		SELECT id, pipeline, status, started_at, finished_at, counters
		FROM runs
		WHERE id = $1
	`
	var rep domain.RunReport
	var countersJSON []byte
	err := r.pool.QueryRow(ctx, query, runID).Scan(
		&rep.RunID,
		&rep.Pipeline,
		&rep.Status,
		&rep.StartedAt,
		&rep.FinishedAt,
		&countersJSON,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan report: %w", err)
	}

	if countersJSON != nil {
		if err := json.Unmarshal(countersJSON, &rep.Counters); err != nil {
			return nil, fmt.Errorf("unmarshal counters: %w", err)
		}
	}
	rep.ElapsedMS = rep.FinishedAt.Sub(rep.StartedAt).Milliseconds()

	rows, err := r.pool.Query(ctx, `
		SELECT stage_id, status, skip_reason, error, duration_ms, output
		FROM run_stages
		WHERE run_id = $1
		ORDER BY position ASC
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("list stages: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var stage domain.StageResult
		var skipReason, stageErr *string
		var outputJSON []byte

		if err := rows.Scan(
			&stage.StageID,
			&stage.Status,
			&skipReason,
			&stageErr,
			&stage.DurationMS,
			&outputJSON,
		); err != nil {
			return nil, fmt.Errorf("scan stage: %w", err)
		}
		if skipReason != nil {
			stage.SkipReason = *skipReason
		}
		if stageErr != nil {
			stage.Error = *stageErr
		}
		if len(outputJSON) > 0 && string(outputJSON) != "null" {
			var output any
			if err := json.Unmarshal(outputJSON, &output); err != nil {
				return nil, fmt.Errorf("unmarshal output of %s: %w", stage.StageID, err)
			}
			stage.Output = output
		}
		rep.Stages = append(rep.Stages, stage)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return &rep, nil
}

// scanRun сканирует строку в Run.
func scanRun(row pgx.Row) (*domain.Run, error) {
	var run domain.Run
	var runError *string

	err := row.Scan(
		&run.ID,
		&run.Pipeline,
		&run.Status,
		&run.StartedAt,
		&run.FinishedAt,
		&runError,
		&run.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan run: %w", err)
	}
	if runError != nil {
		run.Error = *runError
	}
	return &run, nil
}

// nullString возвращает nil для пустой строки (для NULL в БД).
func nullString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
