package common

import (
	"context"
	"sync"
)

// ---------------------------------------------------------------------------
// Interfaces
// ---------------------------------------------------------------------------

// MatchingMetrics is the telemetry API of the matching engine.  The
// extractor, catalog preparer and orchestrator record through it so the
// backend (Prometheus, in-memory, noop) can be swapped without touching them.
type MatchingMetrics interface {
	// RecordMatch records one finished Match call.
	RecordMatch(ctx context.Context, status string, durationMs float64)

	// RecordMatchFailure records a per-item failure that degraded to unmatched.
	RecordMatchFailure(ctx context.Context, reason string)

	// RecordBatch records a finished BatchMatch call.
	RecordBatch(ctx context.Context, params *BatchMetricParams)

	// RecordIndexBuild records one index build or enrichment pass.
	RecordIndexBuild(index string, entries, skipped int, durationMs float64)

	// RecordExtraction records whether an attribute was found.
	RecordExtraction(attribute string, found bool)
}

// BatchMetricParams carries the data for one batch.
type BatchMetricParams struct {
	RunID         string  `json:"run_id"`
	Total         int     `json:"total"`
	Matched       int     `json:"matched"`
	CandidateOnly int     `json:"candidate_only"`
	Unmatched     int     `json:"unmatched"`
	Failed        int     `json:"failed"`
	DurationMs    float64 `json:"duration_ms"`
}

// ---------------------------------------------------------------------------
// Noop implementation
// ---------------------------------------------------------------------------

type noopMatchingMetrics struct{}

// NewNoopMatchingMetrics returns a MatchingMetrics that discards everything.
func NewNoopMatchingMetrics() MatchingMetrics { return noopMatchingMetrics{} }

func (noopMatchingMetrics) RecordMatch(context.Context, string, float64)       {}
func (noopMatchingMetrics) RecordMatchFailure(context.Context, string)         {}
func (noopMatchingMetrics) RecordBatch(context.Context, *BatchMetricParams)    {}
func (noopMatchingMetrics) RecordIndexBuild(string, int, int, float64)         {}
func (noopMatchingMetrics) RecordExtraction(string, bool)                      {}

// OrNoopMetrics returns m, or the noop implementation when m is nil.
func OrNoopMetrics(m MatchingMetrics) MatchingMetrics {
	if m == nil {
		return noopMatchingMetrics{}
	}
	return m
}

// ---------------------------------------------------------------------------
// In-memory implementation
// ---------------------------------------------------------------------------

// InMemoryMatchingMetrics keeps counters in maps.  Used by tests and by
// callers that want a snapshot without a Prometheus registry.
type InMemoryMatchingMetrics struct {
	mu          sync.Mutex
	matches     map[string]int
	failures    map[string]int
	batches     []BatchMetricParams
	builds      map[string]int
	extractions map[string]int
	misses      map[string]int
}

func NewInMemoryMatchingMetrics() *InMemoryMatchingMetrics {
	return &InMemoryMatchingMetrics{
		matches:     make(map[string]int),
		failures:    make(map[string]int),
		builds:      make(map[string]int),
		extractions: make(map[string]int),
		misses:      make(map[string]int),
	}
}

func (m *InMemoryMatchingMetrics) RecordMatch(_ context.Context, status string, _ float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.matches[status]++
}

func (m *InMemoryMatchingMetrics) RecordMatchFailure(_ context.Context, reason string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failures[reason]++
}

func (m *InMemoryMatchingMetrics) RecordBatch(_ context.Context, params *BatchMetricParams) {
	if params == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.batches = append(m.batches, *params)
}

func (m *InMemoryMatchingMetrics) RecordIndexBuild(index string, _, _ int, _ float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.builds[index]++
}

func (m *InMemoryMatchingMetrics) RecordExtraction(attribute string, found bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if found {
		m.extractions[attribute]++
		return
	}
	m.misses[attribute]++
}

// Matches returns the number of Match calls recorded with status.
func (m *InMemoryMatchingMetrics) Matches(status string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.matches[status]
}

// Failures returns the number of failures recorded with reason.
func (m *InMemoryMatchingMetrics) Failures(reason string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.failures[reason]
}

// Batches returns a copy of every recorded batch.
func (m *InMemoryMatchingMetrics) Batches() []BatchMetricParams {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]BatchMetricParams, len(m.batches))
	copy(out, m.batches)
	return out
}

// Builds returns how often index was built.
func (m *InMemoryMatchingMetrics) Builds(index string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.builds[index]
}

// Extractions returns found and missed counts for attribute.
func (m *InMemoryMatchingMetrics) Extractions(attribute string) (found, missed int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.extractions[attribute], m.misses[attribute]
}

//Personal.AI order the ending
