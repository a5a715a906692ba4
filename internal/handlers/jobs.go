package handlers

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/byStayo/game-percentiles-sub001/internal/ingest"
)

// asyncThreshold is the largest date range a trigger runs inline. Anything
// longer is started in the background and tracked through job runs.
const asyncThreshold = 14 * 24 * time.Hour

// asyncJobTimeout bounds a detached run so an abandoned job cannot hold a
// provider connection forever.
const asyncJobTimeout = 2 * time.Hour

// BackfillRunner runs a game backfill over a date range.
type BackfillRunner interface {
	Backfill(ctx context.Context, from, to time.Time) (*ingest.Counters, error)
}

// ReconcileRunner re-verifies final scores over a date range.
type ReconcileRunner interface {
	Reconcile(ctx context.Context, from, to time.Time) (*ingest.Counters, error)
}

// SyncRunner runs a rangeless sync job.
type SyncRunner interface {
	Sync(ctx context.Context) (*ingest.Counters, error)
}

// FranchiseBackfiller fills franchise links on old games.
type FranchiseBackfiller interface {
	BackfillFranchises(ctx context.Context) (int, error)
}

// JobHandler exposes the batch jobs as trigger endpoints.
type JobHandler struct {
	backfill     BackfillRunner
	reconcile    ReconcileRunner
	odds         SyncRunner
	participants SyncRunner
	franchises   FranchiseBackfiller
}

// NewJobHandler creates a job trigger handler.
func NewJobHandler(backfill BackfillRunner, reconcile ReconcileRunner, odds, participants SyncRunner, franchises FranchiseBackfiller) *JobHandler {
	return &JobHandler{
		backfill:     backfill,
		reconcile:    reconcile,
		odds:         odds,
		participants: participants,
		franchises:   franchises,
	}
}

// TriggerBackfill runs a backfill. Query params: from, to (YYYY-MM-DD).
// Ranges over two weeks detach into the background and return 202; the run
// record is the way to follow them.
func (h *JobHandler) TriggerBackfill(w http.ResponseWriter, r *http.Request) {
	from, to, ok := parseDateRange(w, r)
	if !ok {
		return
	}

	if to.Sub(from) > asyncThreshold {
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), asyncJobTimeout)
			defer cancel()
			if _, err := h.backfill.Backfill(ctx, from, to); err != nil {
				log.Printf("[jobs] background backfill failed: %v", err)
			}
		}()
		respondJSON(w, http.StatusAccepted, map[string]interface{}{
			"status": "started",
			"from":   from.Format("2006-01-02"),
			"to":     to.Format("2006-01-02"),
		})
		return
	}

	counters, err := h.backfill.Backfill(r.Context(), from, to)
	if err != nil {
		respondError(w, http.StatusBadGateway, "backfill failed", err)
		return
	}
	respondJSON(w, http.StatusOK, counters.Details())
}

// TriggerReconcile re-verifies finals. Query params: from, to (YYYY-MM-DD).
func (h *JobHandler) TriggerReconcile(w http.ResponseWriter, r *http.Request) {
	from, to, ok := parseDateRange(w, r)
	if !ok {
		return
	}

	if to.Sub(from) > asyncThreshold {
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), asyncJobTimeout)
			defer cancel()
			if _, err := h.reconcile.Reconcile(ctx, from, to); err != nil {
				log.Printf("[jobs] background reconcile failed: %v", err)
			}
		}()
		respondJSON(w, http.StatusAccepted, map[string]interface{}{
			"status": "started",
			"from":   from.Format("2006-01-02"),
			"to":     to.Format("2006-01-02"),
		})
		return
	}

	counters, err := h.reconcile.Reconcile(r.Context(), from, to)
	if err != nil {
		respondError(w, http.StatusBadGateway, "reconcile failed", err)
		return
	}
	respondJSON(w, http.StatusOK, counters.Details())
}

// TriggerOddsSync runs one odds sync pass.
func (h *JobHandler) TriggerOddsSync(w http.ResponseWriter, r *http.Request) {
	counters, err := h.odds.Sync(r.Context())
	if err != nil {
		respondError(w, http.StatusBadGateway, "odds sync failed", err)
		return
	}
	respondJSON(w, http.StatusOK, counters.Details())
}

// TriggerParticipantsSync runs one participants resolution pass.
func (h *JobHandler) TriggerParticipantsSync(w http.ResponseWriter, r *http.Request) {
	counters, err := h.participants.Sync(r.Context())
	if err != nil {
		respondError(w, http.StatusBadGateway, "participants sync failed", err)
		return
	}
	respondJSON(w, http.StatusOK, counters.Details())
}

// TriggerFranchiseBackfill fills franchise links on games missing them.
func (h *JobHandler) TriggerFranchiseBackfill(w http.ResponseWriter, r *http.Request) {
	updated, err := h.franchises.BackfillFranchises(r.Context())
	if err != nil {
		respondError(w, http.StatusBadGateway, "franchise backfill failed", err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"updated": updated})
}

func parseDateRange(w http.ResponseWriter, r *http.Request) (time.Time, time.Time, bool) {
	from, err := time.Parse("2006-01-02", r.URL.Query().Get("from"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "from must be YYYY-MM-DD", err)
		return time.Time{}, time.Time{}, false
	}
	to, err := time.Parse("2006-01-02", r.URL.Query().Get("to"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "to must be YYYY-MM-DD", err)
		return time.Time{}, time.Time{}, false
	}
	if to.Before(from) {
		respondError(w, http.StatusBadRequest, "to must not precede from", nil)
		return time.Time{}, time.Time{}, false
	}
	return from, to, true
}
