package config

import "time"

// ─────────────────────────────────────────────────────────────────────────────
// Default value constants
// ─────────────────────────────────────────────────────────────────────────────

const (
	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"

	DefaultBrandFailureThreshold = 0.05
	DefaultModelFailureThreshold = 0.10
	DefaultSlowPassThreshold     = 5 * time.Second

	DefaultNoVersionScore   = 1.0
	DefaultInputOnlyScore   = 0.7
	DefaultCatalogOnlyScore = 0.95
	DefaultExactScore       = 1.0
	DefaultCompatibleScore  = 0.95
	DefaultPriorityScore    = 0.83
	DefaultMismatchScore    = 0.6

	DefaultMinCandidateScore = 0.6
	DefaultMinVariantScore   = 0.5
	DefaultProgressEvery     = 100

	DefaultMetricsNamespace = "pmatch"
)

// ApplyDefaults fills zero-value fields in cfg.  Values the caller already set
// are left alone.  Must run after unmarshalling and before Validate.
func ApplyDefaults(cfg *Config) {
	if cfg == nil {
		return
	}

	// ── Log ───────────────────────────────────────────────────────────────────
	if cfg.Log.Level == "" {
		cfg.Log.Level = DefaultLogLevel
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = DefaultLogFormat
	}

	// ── Catalog ───────────────────────────────────────────────────────────────
	if cfg.Catalog.BrandFailureThreshold == 0 {
		cfg.Catalog.BrandFailureThreshold = DefaultBrandFailureThreshold
	}
	if cfg.Catalog.ModelFailureThreshold == 0 {
		cfg.Catalog.ModelFailureThreshold = DefaultModelFailureThreshold
	}
	if cfg.Catalog.SlowPassThreshold == 0 {
		cfg.Catalog.SlowPassThreshold = DefaultSlowPassThreshold
	}
	if cfg.Catalog.CapacityNormalizations == nil {
		cfg.Catalog.CapacityNormalizations = map[string]string{}
	}

	// ── Version ───────────────────────────────────────────────────────────────
	setScore(&cfg.Version.NoVersionScore, DefaultNoVersionScore)
	setScore(&cfg.Version.InputOnlyScore, DefaultInputOnlyScore)
	setScore(&cfg.Version.CatalogOnlyScore, DefaultCatalogOnlyScore)
	setScore(&cfg.Version.ExactScore, DefaultExactScore)
	setScore(&cfg.Version.CompatibleScore, DefaultCompatibleScore)
	setScore(&cfg.Version.PriorityScore, DefaultPriorityScore)
	setScore(&cfg.Version.MismatchScore, DefaultMismatchScore)

	// ── Matching ──────────────────────────────────────────────────────────────
	setScore(&cfg.Matching.MinCandidateScore, DefaultMinCandidateScore)
	setScore(&cfg.Matching.MinVariantScore, DefaultMinVariantScore)
	if cfg.Matching.ProgressEvery == 0 {
		cfg.Matching.ProgressEvery = DefaultProgressEvery
	}

	// ── Metrics ───────────────────────────────────────────────────────────────
	if cfg.Metrics.Namespace == "" {
		cfg.Metrics.Namespace = DefaultMetricsNamespace
	}
}

func setScore(dst *float64, def float64) {
	if *dst == 0 {
		*dst = def
	}
}

// Default returns a Config with every default applied.
func Default() *Config {
	cfg := &Config{}
	ApplyDefaults(cfg)
	return cfg
}

//Personal.AI order the ending
