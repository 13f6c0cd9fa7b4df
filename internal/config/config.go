// Package config defines the configuration tree for the ProductMatch engine.
// No I/O happens here: only plain data types and validation.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/turtacn/ProductMatch/internal/infrastructure/monitoring/logging"
)

// ─────────────────────────────────────────────────────────────────────────────
// Sub-configuration structs
// ─────────────────────────────────────────────────────────────────────────────

// ExtractorConfig seeds the attribute extractor's replaceable tables.  Every
// field is optional; the extractor ships built-in tables for the empty case.
type ExtractorConfig struct {
	// ColorVocabulary lists exact color names recognised at 0.95 confidence.
	ColorVocabulary []string `mapstructure:"color_vocabulary"`

	// ColorClusters maps a primary label to its alternate spellings.
	ColorClusters map[string][]string `mapstructure:"color_clusters"`

	// BasicColors maps a single glyph to its family label, e.g. 黑 → 黑色.
	BasicColors map[string]string `mapstructure:"basic_colors"`

	// LearnCatalogColors feeds distinct catalog colors into the vocabulary on
	// every Initialize/Reindex.
	LearnCatalogColors bool `mapstructure:"learn_catalog_colors"`
}

// CatalogConfig tunes the catalog preparer.
type CatalogConfig struct {
	// CapacityNormalizations is the capacity-synonym table.  Load decodes it
	// from the raw YAML so keys keep their case.
	CapacityNormalizations map[string]string `mapstructure:"capacityNormalizations"`

	// CapacityNormalizationsFile optionally points at a separate YAML file
	// holding a top-level capacityNormalizations map.
	CapacityNormalizationsFile string `mapstructure:"capacity_normalizations_file"`

	BrandFailureThreshold float64       `mapstructure:"brand_failure_threshold"`
	ModelFailureThreshold float64       `mapstructure:"model_failure_threshold"`
	SlowPassThreshold     time.Duration `mapstructure:"slow_pass_threshold"`
}

// VersionConfig carries the version matcher's score table.
type VersionConfig struct {
	NoVersionScore   float64 `mapstructure:"no_version_score"`
	InputOnlyScore   float64 `mapstructure:"input_only_score"`
	CatalogOnlyScore float64 `mapstructure:"catalog_only_score"`
	ExactScore       float64 `mapstructure:"exact_score"`
	CompatibleScore  float64 `mapstructure:"compatible_score"`
	PriorityScore    float64 `mapstructure:"priority_score"`
	MismatchScore    float64 `mapstructure:"mismatch_score"`
}

// MatchingConfig tunes the orchestrator and the reference selectors.
type MatchingConfig struct {
	// MinCandidateScore is the lowest SPU score the reference selector accepts.
	MinCandidateScore float64 `mapstructure:"min_candidate_score"`

	// MinVariantScore is the lowest SKU score the reference selector accepts.
	MinVariantScore float64 `mapstructure:"min_variant_score"`

	// ProgressEvery logs batch progress every N items; 0 disables it.
	ProgressEvery int `mapstructure:"progress_every"`
}

// MetricsConfig controls the Prometheus collectors.
type MetricsConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	Namespace string `mapstructure:"namespace"`
	Subsystem string `mapstructure:"subsystem"`

	// ConstLabels are attached to every matching metric.
	ConstLabels map[string]string `mapstructure:"const_labels"`

	// GoMetrics and ProcessMetrics add the runtime and process collectors to
	// the engine's registry.
	GoMetrics      bool `mapstructure:"go_metrics"`
	ProcessMetrics bool `mapstructure:"process_metrics"`
}

// ─────────────────────────────────────────────────────────────────────────────
// Root
// ─────────────────────────────────────────────────────────────────────────────

// Config is the root configuration object.
type Config struct {
	Log       logging.LogConfig `mapstructure:"log"`
	Extractor ExtractorConfig   `mapstructure:"extractor"`
	Catalog   CatalogConfig     `mapstructure:"catalog"`
	Version   VersionConfig     `mapstructure:"version"`
	Matching  MatchingConfig    `mapstructure:"matching"`
	Metrics   MetricsConfig     `mapstructure:"metrics"`
}

// ─────────────────────────────────────────────────────────────────────────────
// Validation
// ─────────────────────────────────────────────────────────────────────────────

// Validate checks the populated Config and returns the first problem found.
func (c *Config) Validate() error {
	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("config: log.level %q is invalid; expected debug|info|warn|error", c.Log.Level)
	}
	switch strings.ToLower(c.Log.Format) {
	case "json", "console":
	default:
		return fmt.Errorf("config: log.format %q is invalid; expected json|console", c.Log.Format)
	}

	scores := []struct {
		key string
		val float64
	}{
		{"version.no_version_score", c.Version.NoVersionScore},
		{"version.input_only_score", c.Version.InputOnlyScore},
		{"version.catalog_only_score", c.Version.CatalogOnlyScore},
		{"version.exact_score", c.Version.ExactScore},
		{"version.compatible_score", c.Version.CompatibleScore},
		{"version.priority_score", c.Version.PriorityScore},
		{"version.mismatch_score", c.Version.MismatchScore},
		{"catalog.brand_failure_threshold", c.Catalog.BrandFailureThreshold},
		{"catalog.model_failure_threshold", c.Catalog.ModelFailureThreshold},
		{"matching.min_candidate_score", c.Matching.MinCandidateScore},
		{"matching.min_variant_score", c.Matching.MinVariantScore},
	}
	for _, s := range scores {
		if s.val < 0 || s.val > 1 {
			return fmt.Errorf("config: %s %.3f is out of range [0, 1]", s.key, s.val)
		}
	}

	if c.Catalog.SlowPassThreshold <= 0 {
		return fmt.Errorf("config: catalog.slow_pass_threshold must be positive, got %s", c.Catalog.SlowPassThreshold)
	}
	if c.Matching.ProgressEvery < 0 {
		return fmt.Errorf("config: matching.progress_every must be ≥ 0, got %d", c.Matching.ProgressEvery)
	}
	if c.Metrics.Enabled && c.Metrics.Namespace == "" {
		return fmt.Errorf("config: metrics.namespace is required when metrics are enabled")
	}
	return nil
}

//Personal.AI order the ending
