package repository

import (
	"context"
	"fmt"

	"github.com/byStayo/game-percentiles-sub001/internal/store"
)

// JobRunRepository handles the batch-job audit trail.
type JobRunRepository struct {
	db *store.Database
}

// NewJobRunRepository creates a job-run repository.
func NewJobRunRepository(db *store.Database) *JobRunRepository {
	return &JobRunRepository{db: db}
}

// Insert records a job start.
func (r *JobRunRepository) Insert(ctx context.Context, run *store.JobRun) error {
	query := `
		INSERT INTO job_runs (run_id, job_name, status, details, started_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err := r.db.DB.ExecContext(ctx, query, run.RunID, run.JobName, run.Status, run.Details, run.StartedAt)
	if err != nil {
		return fmt.Errorf("insert job run: %w", err)
	}

	return nil
}

// Finish records the terminal status and detail counters for a run.
func (r *JobRunRepository) Finish(ctx context.Context, runID, status, details string) error {
	query := `
		UPDATE job_runs
		SET status = $1, details = $2, finished_at = NOW()
		WHERE run_id = $3
	`

	_, err := r.db.DB.ExecContext(ctx, query, status, details, runID)
	if err != nil {
		return fmt.Errorf("finish job run: %w", err)
	}

	return nil
}

// ListRecent returns the most recent runs, optionally filtered by job name.
func (r *JobRunRepository) ListRecent(ctx context.Context, jobName string, limit int) ([]*store.JobRun, error) {
	if limit <= 0 {
		limit = 50
	}

	query := `
		SELECT run_id, job_name, status, details, started_at, finished_at
		FROM job_runs
		WHERE ($1 = '' OR job_name = $1)
		ORDER BY started_at DESC
		LIMIT $2
	`

	rows, err := r.db.DB.QueryContext(ctx, query, jobName, limit)
	if err != nil {
		return nil, fmt.Errorf("query job runs: %w", err)
	}
	defer rows.Close()

	var runs []*store.JobRun
	for rows.Next() {
		run := &store.JobRun{}
		if err := rows.Scan(&run.RunID, &run.JobName, &run.Status, &run.Details, &run.StartedAt, &run.FinishedAt); err != nil {
			return nil, fmt.Errorf("scan job run: %w", err)
		}
		runs = append(runs, run)
	}

	return runs, rows.Err()
}
