package ingest

import (
	"fmt"
	"sync"

	"github.com/byStayo/game-percentiles-sub001/internal/jobs"
)

// maxErrorSample caps how many error strings a run keeps. The total count is
// always exact; only the sample is bounded, so one bad provider day cannot
// bloat a job_runs row.
const maxErrorSample = 10

// Counters accumulates per-run outcome counts. Safe for concurrent use.
type Counters struct {
	mu sync.Mutex

	Fetched   int
	Inserted  int
	Updated   int
	Skipped   int
	Checked   int
	Corrected int
	Matched   int
	Unmatched int

	errorCount  int
	errorSample []string
}

// RecordError counts an error and keeps it in the sample if there is room.
func (c *Counters) RecordError(context string, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.errorCount++
	if len(c.errorSample) < maxErrorSample {
		c.errorSample = append(c.errorSample, fmt.Sprintf("%s: %v", context, err))
	}
}

// RecordSkip counts a row that was intentionally not processed.
func (c *Counters) RecordSkip(reason string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.Skipped++
	if len(c.errorSample) < maxErrorSample {
		c.errorSample = append(c.errorSample, "skipped: "+reason)
	}
}

// ErrorCount returns the exact number of recorded errors.
func (c *Counters) ErrorCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.errorCount
}

// Add merges deltas under the lock, for concurrent batch workers.
func (c *Counters) Add(fn func(c *Counters)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fn(c)
}

// Status maps the run's outcome onto a ledger status: all rows failed is a
// failure, some failed is completed_with_errors, none is success.
func (c *Counters) Status(fatal bool) string {
	c.mu.Lock()
	defer c.mu.Unlock()

	if fatal {
		return jobs.StatusFail
	}
	if c.errorCount > 0 {
		return jobs.StatusCompletedWithErrors
	}
	return jobs.StatusSuccess
}

// Details renders the counters as a job_runs details payload.
func (c *Counters) Details() map[string]interface{} {
	c.mu.Lock()
	defer c.mu.Unlock()

	details := map[string]interface{}{
		"fetched":   c.Fetched,
		"inserted":  c.Inserted,
		"updated":   c.Updated,
		"skipped":   c.Skipped,
		"checked":   c.Checked,
		"corrected": c.Corrected,
		"matched":   c.Matched,
		"unmatched": c.Unmatched,
		"errors":    c.errorCount,
	}
	if len(c.errorSample) > 0 {
		details["error_sample"] = append([]string(nil), c.errorSample...)
	}
	return details
}
