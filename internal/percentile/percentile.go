package percentile

import "sort"

// MinSampleSize is the minimum head-to-head history required before the
// summary statistics are considered usable for display. The raw percentile
// still computes below it; callers check Sufficient separately.
const MinSampleSize = 5

// Edge classification thresholds: a line at or below the 30th percentile of
// historical totals predicts the over, at or above the 70th predicts the
// under.
const (
	OverThreshold  = 30.0
	UnderThreshold = 70.0
)

// Classification of an offered line against matchup history.
const (
	PredictOver  = "predict_over"
	PredictUnder = "predict_under"
	NoEdge       = "no_edge"
)

// Outcome of a settled line against the actual final total.
const (
	OutcomeOver  = "over"
	OutcomeUnder = "under"
	OutcomePush  = "push"
)

// Stats are order statistics over a matchup's historical totals.
type Stats struct {
	SampleSize int     `json:"sample_size"`
	Median     float64 `json:"median"`
	P05        float64 `json:"p05"`
	P95        float64 `json:"p95"`
	Min        int     `json:"min"`
	Max        int     `json:"max"`
	Sufficient bool    `json:"sufficient"`
}

// LinePercentile returns the inclusive rank-based percentile of line against
// the historical totals: (count of totals <= line) / count * 100. Ties count
// as at-or-below. Returns 0 for an empty history.
func LinePercentile(totals []int, line float64) float64 {
	if len(totals) == 0 {
		return 0
	}
	atOrBelow := 0
	for _, total := range totals {
		if float64(total) <= line {
			atOrBelow++
		}
	}
	return float64(atOrBelow) / float64(len(totals)) * 100
}

// Classify maps a line percentile to an edge prediction.
func Classify(pct float64) string {
	switch {
	case pct <= OverThreshold:
		return PredictOver
	case pct >= UnderThreshold:
		return PredictUnder
	default:
		return NoEdge
	}
}

// SettleLine grades a finished game's total against the offered line. Exact
// equality is a push and excluded from hit/miss tallies.
func SettleLine(finalTotal int, line float64) string {
	total := float64(finalTotal)
	switch {
	case total == line:
		return OutcomePush
	case total > line:
		return OutcomeOver
	default:
		return OutcomeUnder
	}
}

// Summarize computes median and P05/P95 bounds over the historical totals.
// Sufficient is set only at MinSampleSize or more samples; the numbers are
// still returned below that so callers can decide what to surface.
func Summarize(totals []int) Stats {
	n := len(totals)
	if n == 0 {
		return Stats{}
	}

	sorted := make([]int, n)
	copy(sorted, totals)
	sort.Ints(sorted)

	return Stats{
		SampleSize: n,
		Median:     median(sorted),
		P05:        quantile(sorted, 0.05),
		P95:        quantile(sorted, 0.95),
		Min:        sorted[0],
		Max:        sorted[n-1],
		Sufficient: n >= MinSampleSize,
	}
}

// median of a sorted slice; even counts average the middle pair.
func median(sorted []int) float64 {
	n := len(sorted)
	mid := n / 2
	if n%2 == 1 {
		return float64(sorted[mid])
	}
	return (float64(sorted[mid-1]) + float64(sorted[mid])) / 2
}

// quantile uses linear interpolation between closest ranks on a sorted
// slice, with q in [0,1].
func quantile(sorted []int, q float64) float64 {
	n := len(sorted)
	if n == 1 {
		return float64(sorted[0])
	}
	pos := q * float64(n-1)
	lo := int(pos)
	hi := lo + 1
	if hi >= n {
		return float64(sorted[n-1])
	}
	frac := pos - float64(lo)
	return float64(sorted[lo])*(1-frac) + float64(sorted[hi])*frac
}
