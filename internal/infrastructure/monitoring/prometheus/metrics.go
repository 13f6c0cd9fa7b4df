package prometheus

import (
	"context"

	"github.com/turtacn/ProductMatch/internal/intelligence/common"
)

// MatchMetrics is the Prometheus-backed common.MatchingMetrics.
type MatchMetrics struct {
	MatchesTotal       CounterVec
	MatchDuration      HistogramVec
	MatchFailuresTotal CounterVec

	BatchesTotal    CounterVec
	BatchItemsTotal CounterVec
	BatchDuration   HistogramVec
	BatchMatchRate  GaugeVec

	IndexBuildDuration HistogramVec
	IndexEntries       GaugeVec
	IndexSkipped       GaugeVec

	ExtractionsTotal CounterVec
}

var (
	// DefaultMatchDurationBuckets are in seconds; a single match is sub-millisecond
	// to tens of milliseconds.
	DefaultMatchDurationBuckets = []float64{.0001, .0005, .001, .005, .01, .025, .05, .1, .25, 1}
	DefaultBatchDurationBuckets = []float64{.01, .1, .5, 1, 5, 10, 30, 60, 300}
	DefaultBuildDurationBuckets = []float64{.001, .01, .05, .1, .5, 1, 2.5, 5, 10}
)

// NewMatchMetrics registers every matching metric on collector.
func NewMatchMetrics(collector MetricsCollector) *MatchMetrics {
	return &MatchMetrics{
		MatchesTotal: collector.RegisterCounter("matches_total",
			"Match calls by outcome status.", "status"),
		MatchDuration: collector.RegisterHistogram("match_duration_seconds",
			"Latency of a single Match call.", DefaultMatchDurationBuckets, "status"),
		MatchFailuresTotal: collector.RegisterCounter("match_failures_total",
			"Per-item failures degraded to unmatched.", "reason"),

		BatchesTotal: collector.RegisterCounter("batches_total",
			"BatchMatch calls."),
		BatchItemsTotal: collector.RegisterCounter("batch_items_total",
			"Items processed by BatchMatch by outcome.", "outcome"),
		BatchDuration: collector.RegisterHistogram("batch_duration_seconds",
			"Wall time of a BatchMatch call.", DefaultBatchDurationBuckets),
		BatchMatchRate: collector.RegisterGauge("batch_match_rate",
			"Matched share of the most recent batch."),

		IndexBuildDuration: collector.RegisterHistogram("index_build_duration_seconds",
			"Duration of catalog index builds and enrichment passes.", DefaultBuildDurationBuckets, "index"),
		IndexEntries: collector.RegisterGauge("index_entries",
			"Entries indexed by the most recent build.", "index"),
		IndexSkipped: collector.RegisterGauge("index_skipped_entries",
			"Entries skipped by the most recent build.", "index"),

		ExtractionsTotal: collector.RegisterCounter("extractions_total",
			"Attribute extraction outcomes.", "attribute", "found"),
	}
}

func (m *MatchMetrics) RecordMatch(_ context.Context, status string, durationMs float64) {
	m.MatchesTotal.WithLabelValues(status).Inc()
	m.MatchDuration.WithLabelValues(status).Observe(durationMs / 1000)
}

func (m *MatchMetrics) RecordMatchFailure(_ context.Context, reason string) {
	m.MatchFailuresTotal.WithLabelValues(reason).Inc()
}

func (m *MatchMetrics) RecordBatch(_ context.Context, p *common.BatchMetricParams) {
	if p == nil {
		return
	}
	m.BatchesTotal.WithLabelValues().Inc()
	m.BatchItemsTotal.WithLabelValues("matched").Add(float64(p.Matched))
	m.BatchItemsTotal.WithLabelValues("spu_matched").Add(float64(p.CandidateOnly))
	m.BatchItemsTotal.WithLabelValues("unmatched").Add(float64(p.Unmatched))
	m.BatchItemsTotal.WithLabelValues("failed").Add(float64(p.Failed))
	m.BatchDuration.WithLabelValues().Observe(p.DurationMs / 1000)
	if p.Total > 0 {
		m.BatchMatchRate.WithLabelValues().Set(float64(p.Matched) / float64(p.Total))
	}
}

func (m *MatchMetrics) RecordIndexBuild(index string, entries, skipped int, durationMs float64) {
	m.IndexBuildDuration.WithLabelValues(index).Observe(durationMs / 1000)
	m.IndexEntries.WithLabelValues(index).Set(float64(entries))
	m.IndexSkipped.WithLabelValues(index).Set(float64(skipped))
}

func (m *MatchMetrics) RecordExtraction(attribute string, found bool) {
	label := "false"
	if found {
		label = "true"
	}
	m.ExtractionsTotal.WithLabelValues(attribute, label).Inc()
}

var _ common.MatchingMetrics = (*MatchMetrics)(nil)

//Personal.AI order the ending
