// Package bootstrap assembles a ready-to-use matching engine from a Config.
package bootstrap

import (
	"sort"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/turtacn/ProductMatch/internal/application/matching"
	"github.com/turtacn/ProductMatch/internal/config"
	"github.com/turtacn/ProductMatch/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/ProductMatch/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/ProductMatch/internal/intelligence/attr_extractor"
	"github.com/turtacn/ProductMatch/internal/intelligence/catalog_indexer"
	"github.com/turtacn/ProductMatch/internal/intelligence/common"
	"github.com/turtacn/ProductMatch/internal/intelligence/version_matcher"
	"github.com/turtacn/ProductMatch/pkg/errors"
)

// Engine bundles the orchestrator with the collaborators a host may need to
// reach directly.
type Engine struct {
	Orchestrator matching.Orchestrator
	Extractor    attr_extractor.AttributeExtractor
	Preparer     catalog_indexer.CatalogPreparer
	Versions     version_matcher.VersionMatcher
	Logger       logging.Logger

	// Gatherer is nil when metrics are disabled.
	Gatherer prom.Gatherer
}

type options struct {
	logger   logging.Logger
	spu      matching.SPUSelector
	sku      matching.SKUSelector
	orchOpts []matching.Option
}

// Option customises New.
type Option func(*options)

// WithLogger replaces the logger built from cfg.Log.
func WithLogger(l logging.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithSPUSelector replaces the reference candidate selector.
func WithSPUSelector(s matching.SPUSelector) Option {
	return func(o *options) { o.spu = s }
}

// WithSKUSelector replaces the reference variant selector.
func WithSKUSelector(s matching.SKUSelector) Option {
	return func(o *options) { o.sku = s }
}

// WithOrchestratorOptions passes options through to the orchestrator.
func WithOrchestratorOptions(opts ...matching.Option) Option {
	return func(o *options) { o.orchOpts = append(o.orchOpts, opts...) }
}

// New validates cfg and wires every component.  A nil cfg means defaults.
func New(cfg *config.Config, opts ...Option) (*Engine, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, errors.CodeConfigLoad, "invalid configuration")
	}

	o := &options{}
	for _, opt := range opts {
		opt(o)
	}

	log := o.logger
	if log == nil {
		built, err := logging.NewLogger(cfg.Log)
		if err != nil {
			return nil, errors.Wrap(err, errors.CodeConfigLoad, "build logger")
		}
		log = built
	}

	eng := &Engine{Logger: log}

	var metrics common.MatchingMetrics = common.NewNoopMatchingMetrics()
	if cfg.Metrics.Enabled {
		collector, err := prometheus.NewMetricsCollector(prometheus.CollectorConfig{
			Namespace:       cfg.Metrics.Namespace,
			Subsystem:       cfg.Metrics.Subsystem,
			ConstLabels:     cfg.Metrics.ConstLabels,
			EnableGoMetrics: cfg.Metrics.GoMetrics,
		}, log)
		if err != nil {
			return nil, errors.Wrap(err, errors.CodeConfigLoad, "build metrics collector")
		}
		if cfg.Metrics.ProcessMetrics {
			collector.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		}
		metrics = prometheus.NewMatchMetrics(collector)
		eng.Gatherer = collector.Gatherer()
	}

	eng.Extractor = attr_extractor.NewAttributeExtractor(extractorConfig(cfg.Extractor), log, metrics)
	eng.Preparer = catalog_indexer.NewCatalogPreparer(catalog_indexer.PreparerConfig{
		CapacityNormalizations: config.ResolveCapacityNormalizations(cfg, log),
		BrandFailureThreshold:  cfg.Catalog.BrandFailureThreshold,
		ModelFailureThreshold:  cfg.Catalog.ModelFailureThreshold,
		SlowPassThreshold:      cfg.Catalog.SlowPassThreshold,
	}, log, metrics)
	eng.Versions = version_matcher.NewVersionMatcher(versionConfig(cfg.Version))

	spu := o.spu
	if spu == nil {
		spu = matching.NewAttributeSPUSelector(cfg.Matching.MinCandidateScore)
	}
	sku := o.sku
	if sku == nil {
		sku = matching.NewAttributeSKUSelector(cfg.Matching.MinVariantScore)
	}

	orch, err := matching.NewOrchestrator(matching.OrchestratorConfig{
		ProgressEvery:      cfg.Matching.ProgressEvery,
		LearnCatalogColors: cfg.Extractor.LearnCatalogColors,
		ColorVocabulary:    cfg.Extractor.ColorVocabulary,
	}, matching.OrchestratorDeps{
		Extractor:    eng.Extractor,
		Preparer:     eng.Preparer,
		Versions:     eng.Versions,
		Preprocessor: matching.NewTextPreprocessor(),
		SPUSelector:  spu,
		SKUSelector:  sku,
		Logger:       log,
		Metrics:      metrics,
	}, o.orchOpts...)
	if err != nil {
		return nil, err
	}
	eng.Orchestrator = orch

	log.Info("matching engine assembled",
		logging.Bool("metrics", cfg.Metrics.Enabled),
		logging.Bool("learn_catalog_colors", cfg.Extractor.LearnCatalogColors),
		logging.Float64("min_candidate_score", cfg.Matching.MinCandidateScore),
		logging.Float64("min_variant_score", cfg.Matching.MinVariantScore))
	return eng, nil
}

// ApplyConfig pushes the hot-reloadable parts of cfg into the running
// components: the capacity-synonym table and the color tables.  Index and
// scoring settings need a rebuild and are ignored here.
func (e *Engine) ApplyConfig(cfg *config.Config) {
	if cfg == nil {
		return
	}
	e.Preparer.SetCapacityNormalizations(config.ResolveCapacityNormalizations(cfg, e.Logger))
	if cfg.Extractor.ColorClusters != nil {
		e.Extractor.SetColorClusters(cfg.Extractor.ColorClusters)
	}
	if cfg.Extractor.BasicColors != nil {
		e.Extractor.SetBasicColors(basicColors(cfg.Extractor.BasicColors))
	}
	e.Logger.Info("configuration applied")
}

// Watch hot-reloads configPath into e until the returned watcher is dropped.
func (e *Engine) Watch(configPath string) (*config.Watcher, error) {
	return config.Watch(configPath, e.Logger, e.ApplyConfig)
}

func extractorConfig(c config.ExtractorConfig) attr_extractor.ExtractorConfig {
	out := attr_extractor.ExtractorConfig{
		ColorVocabulary: c.ColorVocabulary,
		ColorClusters:   c.ColorClusters,
	}
	if c.BasicColors != nil {
		out.BasicColors = basicColors(c.BasicColors)
	}
	return out
}

// basicColors orders the glyph table by glyph so lookups are deterministic.
func basicColors(m map[string]string) []common.BasicColor {
	out := make([]common.BasicColor, 0, len(m))
	for glyph, family := range m {
		out = append(out, common.BasicColor{Glyph: glyph, Family: family})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Glyph < out[j].Glyph })
	return out
}

func versionConfig(c config.VersionConfig) version_matcher.VersionMatcherConfig {
	vc := version_matcher.DefaultVersionMatcherConfig()
	vc.NoVersionScore = c.NoVersionScore
	vc.InputOnlyScore = c.InputOnlyScore
	vc.CatalogOnlyScore = c.CatalogOnlyScore
	vc.ExactScore = c.ExactScore
	vc.CompatibleScore = c.CompatibleScore
	vc.PriorityScore = c.PriorityScore
	vc.MismatchScore = c.MismatchScore
	return vc
}

//Personal.AI order the ending
