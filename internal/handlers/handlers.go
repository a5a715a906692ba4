package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/byStayo/game-percentiles-sub001/internal/percentile"
	"github.com/byStayo/game-percentiles-sub001/internal/store"
)

// Read-side store interfaces, implemented by the repositories.

// EdgeReader lists computed edges.
type EdgeReader interface {
	ListByDate(ctx context.Context, sport string, date time.Time) ([]*store.DailyEdge, error)
}

// RunReader lists job run records.
type RunReader interface {
	ListRecent(ctx context.Context, jobName string, limit int) ([]*store.JobRun, error)
}

// UnmatchedReader lists participants the fuzzy matcher could not resolve.
type UnmatchedReader interface {
	ListUnmatchedParticipants(ctx context.Context, sport string) ([]*store.UnmatchedParticipant, error)
}

// MatchupReader serves head-to-head totals.
type MatchupReader interface {
	FilteredTotals(ctx context.Context, sport string, teamA, teamB int64, filter store.TotalsFilter) ([]int, error)
}

// Pinger is the health-check slice of the database client.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Handler contains dependencies for the read endpoints.
type Handler struct {
	sport     string
	db        Pinger
	edges     EdgeReader
	runs      RunReader
	unmatched UnmatchedReader
	matchups  MatchupReader
}

// NewHandler creates a new handler with dependencies.
func NewHandler(sport string, db Pinger, edges EdgeReader, runs RunReader, unmatched UnmatchedReader, matchups MatchupReader) *Handler {
	return &Handler{
		sport:     sport,
		db:        db,
		edges:     edges,
		runs:      runs,
		unmatched: unmatched,
		matchups:  matchups,
	}
}

// HealthCheck returns the health status of the service.
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := h.db.Ping(ctx); err != nil {
		respondError(w, http.StatusServiceUnavailable, "database unhealthy", err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":    "healthy",
		"timestamp": time.Now().UTC(),
		"service":   "game-percentiles",
	})
}

// GetEdges retrieves the edges computed for a date.
// Query params: date (YYYY-MM-DD, default today), sport.
func (h *Handler) GetEdges(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	date := time.Now().UTC().Truncate(24 * time.Hour)
	if raw := r.URL.Query().Get("date"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			respondError(w, http.StatusBadRequest, "date must be YYYY-MM-DD", err)
			return
		}
		date = parsed
	}

	sport := h.sport
	if s := r.URL.Query().Get("sport"); s != "" {
		sport = s
	}

	edges, err := h.edges.ListByDate(ctx, sport, date)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to retrieve edges", err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"edges": edges,
		"count": len(edges),
		"date":  date.Format("2006-01-02"),
		"sport": sport,
	})
}

// GetMatchupStats summarizes head-to-head totals history for a team pair.
// Query params: team_a, team_b (internal team ids); optional decade
// (e.g. 2010) and playoff (true/false) narrow the sample.
func (h *Handler) GetMatchupStats(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	teamA, errA := strconv.ParseInt(r.URL.Query().Get("team_a"), 10, 64)
	teamB, errB := strconv.ParseInt(r.URL.Query().Get("team_b"), 10, 64)
	if errA != nil || errB != nil {
		respondError(w, http.StatusBadRequest, "team_a and team_b are required numeric ids", nil)
		return
	}

	var filter store.TotalsFilter
	if raw := r.URL.Query().Get("decade"); raw != "" {
		decade, err := strconv.Atoi(raw)
		if err != nil {
			respondError(w, http.StatusBadRequest, "decade must be numeric", err)
			return
		}
		filter.Decade = decade
	}
	if raw := r.URL.Query().Get("playoff"); raw != "" {
		playoff, err := strconv.ParseBool(raw)
		if err != nil {
			respondError(w, http.StatusBadRequest, "playoff must be true or false", err)
			return
		}
		filter.Playoff = &playoff
	}

	totals, err := h.matchups.FilteredTotals(ctx, h.sport, teamA, teamB, filter)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to retrieve matchup totals", err)
		return
	}

	stats := percentile.Summarize(totals)

	resp := map[string]interface{}{
		"sport":  h.sport,
		"team_a": teamA,
		"team_b": teamB,
		"stats":  stats,
	}
	if line := r.URL.Query().Get("line"); line != "" {
		parsed, err := strconv.ParseFloat(line, 64)
		if err != nil {
			respondError(w, http.StatusBadRequest, "line must be numeric", err)
			return
		}
		pct := percentile.LinePercentile(totals, parsed)
		resp["line"] = parsed
		resp["line_percentile"] = pct
		if stats.Sufficient {
			resp["classification"] = percentile.Classify(pct)
		}
	}

	respondJSON(w, http.StatusOK, resp)
}

// GetJobRuns retrieves recent runs for a job.
// Query params: job (required), limit.
func (h *Handler) GetJobRuns(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	jobName := r.URL.Query().Get("job")
	if jobName == "" {
		respondError(w, http.StatusBadRequest, "job is required", nil)
		return
	}

	limit := parseIntParam(r, "limit", 20)
	if limit > 100 {
		limit = 100
	}

	runs, err := h.runs.ListRecent(ctx, jobName, limit)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to retrieve job runs", err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"runs":  runs,
		"count": len(runs),
	})
}

// GetUnmatchedParticipants lists names awaiting alias work.
func (h *Handler) GetUnmatchedParticipants(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	rows, err := h.unmatched.ListUnmatchedParticipants(ctx, h.sport)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to retrieve unmatched participants", err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"participants": rows,
		"count":        len(rows),
	})
}

func parseIntParam(r *http.Request, param string, defaultValue int) int {
	valueStr := r.URL.Query().Get(param)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Code    int    `json:"code"`
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		fmt.Printf("error encoding response: %v\n", err)
	}
}

func respondError(w http.ResponseWriter, status int, message string, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	errResp := errorResponse{
		Error:   http.StatusText(status),
		Message: message,
		Code:    status,
	}

	if err != nil {
		fmt.Printf("error: %s - %v\n", message, err)
	}

	if err := json.NewEncoder(w).Encode(errResp); err != nil {
		fmt.Printf("error encoding error response: %v\n", err)
	}
}
