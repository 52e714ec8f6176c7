package evaluator

import "github.com/google/uuid"

// Metrics is the optional run-level telemetry analyze() can collect: per-file
// and per-rule timing, finding counts, and cache hit/miss tallies from the
// canonical-path and per-rule caches.
type Metrics struct {
	RunID string

	FilesParsed   int
	ParseErrors   int
	FindingsTotal int

	PerFileMillis map[string]int64
	PerRuleMillis map[string]int64

	CanonPathHits   int64
	CanonPathMisses int64
}

func newMetrics() *Metrics {
	return &Metrics{
		RunID:         uuid.NewString(),
		PerFileMillis: make(map[string]int64),
		PerRuleMillis: make(map[string]int64),
	}
}
