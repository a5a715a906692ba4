package jobs

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/byStayo/game-percentiles-sub001/internal/store"
)

type fakeRunStore struct {
	inserted []*store.JobRun
	finished map[string][2]string // runID -> (status, details)
}

func newFakeRunStore() *fakeRunStore {
	return &fakeRunStore{finished: make(map[string][2]string)}
}

func (f *fakeRunStore) Insert(ctx context.Context, run *store.JobRun) error {
	f.inserted = append(f.inserted, run)
	return nil
}

func (f *fakeRunStore) Finish(ctx context.Context, runID, status, details string) error {
	f.finished[runID] = [2]string{status, details}
	return nil
}

func TestLedgerStartFinish(t *testing.T) {
	runs := newFakeRunStore()
	ledger := NewLedger(runs)
	ctx := context.Background()

	runID, err := ledger.Start(ctx, "backfill", map[string]interface{}{"sport": "basketball_nba"})
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if runID == "" {
		t.Fatal("expected a run id")
	}

	if len(runs.inserted) != 1 {
		t.Fatalf("inserted %d runs, want 1", len(runs.inserted))
	}
	if runs.inserted[0].Status != StatusRunning {
		t.Errorf("start status = %s, want %s", runs.inserted[0].Status, StatusRunning)
	}
	if runs.inserted[0].JobName != "backfill" {
		t.Errorf("job name = %s, want backfill", runs.inserted[0].JobName)
	}

	ledger.Finish(ctx, runID, StatusSuccess, map[string]interface{}{"fetched": 12, "upserted": 12})

	got, ok := runs.finished[runID]
	if !ok {
		t.Fatal("run was never finished")
	}
	if got[0] != StatusSuccess {
		t.Errorf("finish status = %s, want %s", got[0], StatusSuccess)
	}

	var details map[string]interface{}
	if err := json.Unmarshal([]byte(got[1]), &details); err != nil {
		t.Fatalf("finish details are not valid JSON: %v", err)
	}
	if details["fetched"].(float64) != 12 {
		t.Errorf("details fetched = %v, want 12", details["fetched"])
	}
}

func TestLedgerFinishWithoutDetails(t *testing.T) {
	runs := newFakeRunStore()
	ledger := NewLedger(runs)
	ctx := context.Background()

	runID, err := ledger.Start(ctx, "reconcile", nil)
	if err != nil {
		t.Fatalf("start: %v", err)
	}

	ledger.Finish(ctx, runID, StatusFail, nil)

	got := runs.finished[runID]
	if got[0] != StatusFail {
		t.Errorf("finish status = %s, want %s", got[0], StatusFail)
	}
	if got[1] != "{}" {
		t.Errorf("empty details = %q, want {}", got[1])
	}
}
