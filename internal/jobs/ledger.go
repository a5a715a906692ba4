package jobs

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/byStayo/game-percentiles-sub001/internal/store"
)

// Run statuses.
const (
	StatusRunning             = "running"
	StatusSuccess             = "success"
	StatusFail                = "fail"
	StatusCompletedWithErrors = "completed_with_errors"
)

// RunStore is the persistence the ledger needs. Implemented by
// repository.JobRunRepository; tests substitute an in-memory fake.
type RunStore interface {
	Insert(ctx context.Context, run *store.JobRun) error
	Finish(ctx context.Context, runID, status, details string) error
}

// Ledger brackets every batch job with exactly one start and one finish
// record, the only mechanism operators have for telling "never ran" from
// "still running" from "ran and partially failed".
type Ledger struct {
	runs RunStore
}

// NewLedger creates a ledger over the given run store.
func NewLedger(runs RunStore) *Ledger {
	return &Ledger{runs: runs}
}

// Start records a running job and returns its run id. Details may be nil.
func (l *Ledger) Start(ctx context.Context, jobName string, details map[string]interface{}) (string, error) {
	runID := uuid.NewString()

	run := &store.JobRun{
		RunID:     runID,
		JobName:   jobName,
		Status:    StatusRunning,
		Details:   marshalDetails(details),
		StartedAt: time.Now().UTC(),
	}

	if err := l.runs.Insert(ctx, run); err != nil {
		return "", fmt.Errorf("start job run: %w", err)
	}

	return runID, nil
}

// Finish records the terminal status and counters for a run. Errors are
// logged rather than returned: a job's outcome should not be masked by a
// ledger write failure.
func (l *Ledger) Finish(ctx context.Context, runID, status string, details map[string]interface{}) {
	payload := marshalDetails(details)
	detailsJSON := "{}"
	if payload.Valid {
		detailsJSON = payload.String
	}
	if err := l.runs.Finish(ctx, runID, status, detailsJSON); err != nil {
		log.Printf("[ledger] failed to finish run %s: %v", runID, err)
	}
}

func marshalDetails(details map[string]interface{}) sql.NullString {
	if len(details) == 0 {
		return sql.NullString{}
	}
	data, err := json.Marshal(details)
	if err != nil {
		return sql.NullString{String: fmt.Sprintf(`{"marshal_error":%q}`, err.Error()), Valid: true}
	}
	return sql.NullString{String: string(data), Valid: true}
}
