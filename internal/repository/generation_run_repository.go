package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/sma-timetable-api/internal/models"
)

const generationRunColumns = `id, academic_year, term, status, strategy, oracle_failure, scheduled, unscheduled,
unscheduled_class_ids, error_message, created_by, created_at, started_at, finished_at`

// GenerationRunRepository persists the audit trail of timetable generations.
type GenerationRunRepository struct {
	db *sqlx.DB
}

// NewGenerationRunRepository constructs the repository.
func NewGenerationRunRepository(db *sqlx.DB) *GenerationRunRepository {
	return &GenerationRunRepository{db: db}
}

// Create inserts a new run, assigning its id and creation time when absent.
func (r *GenerationRunRepository) Create(ctx context.Context, run *models.GenerationRun) error {
	if run == nil {
		return fmt.Errorf("generation run payload is nil")
	}
	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	if run.Status == "" {
		run.Status = models.GenerationRunQueued
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now().UTC()
	}
	if run.UnscheduledClassIDs == nil {
		run.UnscheduledClassIDs = []string{}
	}

	const query = `INSERT INTO generation_runs (` + generationRunColumns + `)
VALUES (:id, :academic_year, :term, :status, :strategy, :oracle_failure, :scheduled, :unscheduled,
:unscheduled_class_ids, :error_message, :created_by, :created_at, :started_at, :finished_at)`
	if _, err := sqlx.NamedExecContext(ctx, r.db, query, run); err != nil {
		return fmt.Errorf("insert generation run: %w", err)
	}
	return nil
}

// MarkRunning flags a run as started.
func (r *GenerationRunRepository) MarkRunning(ctx context.Context, id string, startedAt time.Time) error {
	const query = `UPDATE generation_runs SET status = $1, started_at = $2 WHERE id = $3`
	return r.update(ctx, "mark generation run running", query, models.GenerationRunRunning, startedAt, id)
}

// Finish stores the terminal state of a run.
func (r *GenerationRunRepository) Finish(ctx context.Context, run *models.GenerationRun) error {
	if run == nil {
		return fmt.Errorf("generation run payload is nil")
	}
	if run.UnscheduledClassIDs == nil {
		run.UnscheduledClassIDs = []string{}
	}
	const query = `UPDATE generation_runs SET status = :status, strategy = :strategy, oracle_failure = :oracle_failure,
scheduled = :scheduled, unscheduled = :unscheduled, unscheduled_class_ids = :unscheduled_class_ids,
error_message = :error_message, finished_at = :finished_at WHERE id = :id`
	result, err := sqlx.NamedExecContext(ctx, r.db, query, run)
	if err != nil {
		return fmt.Errorf("finish generation run: %w", err)
	}
	return requireAffected(result, "finish generation run")
}

// FindByID loads a run.
func (r *GenerationRunRepository) FindByID(ctx context.Context, id string) (*models.GenerationRun, error) {
	query := `SELECT ` + generationRunColumns + ` FROM generation_runs WHERE id = $1`
	var run models.GenerationRun
	if err := r.db.GetContext(ctx, &run, query, id); err != nil {
		return nil, err
	}
	return &run, nil
}

// ListByScope returns the most recent runs of an academic year and term.
func (r *GenerationRunRepository) ListByScope(ctx context.Context, academicYear, term string, limit int) ([]models.GenerationRun, error) {
	if limit <= 0 {
		limit = 20
	}
	query := `SELECT ` + generationRunColumns + ` FROM generation_runs
WHERE academic_year = $1 AND term = $2 ORDER BY created_at DESC LIMIT $3`
	var runs []models.GenerationRun
	if err := r.db.SelectContext(ctx, &runs, query, academicYear, term, limit); err != nil {
		return nil, fmt.Errorf("list generation runs: %w", err)
	}
	return runs, nil
}

// FailStale marks QUEUED and RUNNING runs created before cutoff as FAILED.
// A process that dies mid-run leaves such rows behind.
func (r *GenerationRunRepository) FailStale(ctx context.Context, cutoff time.Time, message string) (int64, error) {
	const query = `UPDATE generation_runs SET status = $1, error_message = $2, finished_at = $3
WHERE status IN ($4, $5) AND created_at < $6`
	result, err := r.db.ExecContext(ctx, query,
		models.GenerationRunFailed, message, time.Now().UTC(),
		models.GenerationRunQueued, models.GenerationRunRunning, cutoff)
	if err != nil {
		return 0, fmt.Errorf("fail stale generation runs: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("fail stale generation runs rows affected: %w", err)
	}
	return affected, nil
}

func (r *GenerationRunRepository) update(ctx context.Context, label, query string, args ...interface{}) error {
	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%s: %w", label, err)
	}
	return requireAffected(result, label)
}

func requireAffected(result sql.Result, label string) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s rows affected: %w", label, err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
