// Package catalog_indexer prepares a catalog snapshot for matching: it builds
// the brand, model and spec indexes and runs the enrichment pass.
//
// Each Build* call clears and repopulates its own index.  Indexes are read-only
// once a build returns; callers serialize builds against lookups.
package catalog_indexer

import (
	"strings"
	"sync"
	"time"

	"github.com/turtacn/ProductMatch/internal/domain/catalog"
	"github.com/turtacn/ProductMatch/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/ProductMatch/internal/intelligence/attr_extractor"
	"github.com/turtacn/ProductMatch/internal/intelligence/common"
)

// ---------------------------------------------------------------------------
// Interface
// ---------------------------------------------------------------------------

// CatalogPreparer indexes and enriches one catalog snapshot.
type CatalogPreparer interface {
	SetBrands(brands []catalog.Brand)
	SetCapacityNormalizations(table map[string]string)

	NormalizeSpec(raw string) string

	BuildBrandIndex(entries []catalog.Entry) BrandIndexStats
	BuildModelIndex(entries []catalog.Entry) ModelIndexStats
	BuildSpecIndex(entries []catalog.Entry) SpecIndexStats
	PreprocessCatalog(entries []catalog.Entry) ([]*catalog.EnrichedEntry, PreprocessReport)

	LookupBrand(brand string) []catalog.Entry
	LookupModel(model string) []catalog.Entry
	EntriesWithColor(color string) []string
	EntriesWithSpec(spec string) []string
	EntriesWithCombo(combo string) []string
	Frequency(kind SpecKind) []ValueCount

	Stats() IndexStats
	MatchableCount() int
}

// ---------------------------------------------------------------------------
// Config
// ---------------------------------------------------------------------------

// PreparerConfig holds the quality thresholds and the synonym table.
type PreparerConfig struct {
	CapacityNormalizations map[string]string
	BrandFailureThreshold  float64
	ModelFailureThreshold  float64
	SlowPassThreshold      time.Duration
}

// DefaultPreparerConfig returns the built-in thresholds and an empty table.
func DefaultPreparerConfig() PreparerConfig {
	return PreparerConfig{
		CapacityNormalizations: map[string]string{},
		BrandFailureThreshold:  0.05,
		ModelFailureThreshold:  0.10,
		SlowPassThreshold:      5 * time.Second,
	}
}

// Option customises a preparer.
type Option func(*preparerImpl)

// WithClock replaces time.Now for durations and EnrichedAt stamps.
func WithClock(now func() time.Time) Option {
	return func(p *preparerImpl) {
		if now != nil {
			p.now = now
		}
	}
}

// ---------------------------------------------------------------------------
// Implementation
// ---------------------------------------------------------------------------

type preparerImpl struct {
	mu sync.RWMutex

	cfg      PreparerConfig
	brands   []catalog.Brand
	synonyms map[string]string
	synLower map[string]string

	brandIndex map[string][]catalog.Entry
	modelIndex map[string][]catalog.Entry
	specs      map[SpecKind]*specIndex

	stats     IndexStats
	matchable int

	query *common.CatalogTextNormalizer
	index *common.CatalogTextNormalizer

	now     func() time.Time
	logger  logging.Logger
	metrics common.MatchingMetrics
}

// NewCatalogPreparer builds a preparer with empty indexes.
func NewCatalogPreparer(cfg PreparerConfig, logger logging.Logger, metrics common.MatchingMetrics, opts ...Option) CatalogPreparer {
	def := DefaultPreparerConfig()
	if cfg.BrandFailureThreshold <= 0 {
		cfg.BrandFailureThreshold = def.BrandFailureThreshold
	}
	if cfg.ModelFailureThreshold <= 0 {
		cfg.ModelFailureThreshold = def.ModelFailureThreshold
	}
	if cfg.SlowPassThreshold <= 0 {
		cfg.SlowPassThreshold = def.SlowPassThreshold
	}

	p := &preparerImpl{
		cfg:        cfg,
		brandIndex: map[string][]catalog.Entry{},
		modelIndex: map[string][]catalog.Entry{},
		specs:      newSpecIndexes(),
		query:      common.NewCatalogTextNormalizer(common.QueryPolicy),
		index:      common.NewCatalogTextNormalizer(common.IndexPolicy),
		now:        time.Now,
		logger:     logging.OrNop(logger).Named("catalog"),
		metrics:    common.OrNoopMetrics(metrics),
	}
	for _, o := range opts {
		o(p)
	}
	p.SetCapacityNormalizations(cfg.CapacityNormalizations)
	return p
}

func (p *preparerImpl) SetBrands(brands []catalog.Brand) {
	sorted := attr_extractor.SortBrands(brands)
	p.mu.Lock()
	p.brands = sorted
	p.mu.Unlock()
}

// SetCapacityNormalizations replaces the synonym table.  It is safe to call
// while lookups are running.
func (p *preparerImpl) SetCapacityNormalizations(table map[string]string) {
	exact := make(map[string]string, len(table))
	lower := make(map[string]string, len(table))
	for k, v := range table {
		k = strings.TrimSpace(k)
		if k == "" {
			continue
		}
		exact[k] = v
		lk := strings.ToLower(k)
		if _, taken := lower[lk]; !taken || lk == k {
			lower[lk] = v
		}
	}
	p.mu.Lock()
	p.synonyms, p.synLower = exact, lower
	p.mu.Unlock()
}

// ---------------------------------------------------------------------------
// Brand resolution
// ---------------------------------------------------------------------------

// resolveBrand returns the brand row for e: the explicit field looked up in
// the table, else the longest brand found in the display name.  An explicit
// brand missing from the table becomes a row of its own.
func resolveBrand(brands []catalog.Brand, e catalog.Entry) (catalog.Brand, bool) {
	if explicit := strings.TrimSpace(e.Brand); explicit != "" {
		if row, ok := findBrandRow(brands, explicit); ok {
			return row, true
		}
		return catalog.Brand{Name: explicit}, true
	}
	hit := attr_extractor.MatchBrand(brands, e.Name)
	if !hit.Found() {
		return catalog.Brand{}, false
	}
	return findBrandRow(brands, hit.Get())
}

func findBrandRow(brands []catalog.Brand, name string) (catalog.Brand, bool) {
	for _, b := range brands {
		if strings.EqualFold(b.Name, name) || (b.Spell != "" && strings.EqualFold(b.Spell, name)) {
			return b, true
		}
	}
	return catalog.Brand{}, false
}

// ---------------------------------------------------------------------------
// Brand index
// ---------------------------------------------------------------------------

// BrandIndexStats summarises one BuildBrandIndex call.
type BrandIndexStats struct {
	Keys        int            `json:"keys"`
	Indexed     int            `json:"indexed"`
	Skipped     int            `json:"skipped"`
	PerBrand    map[string]int `json:"per_brand"`
	Duration    time.Duration  `json:"duration"`
	MemoryBytes int            `json:"memory_bytes"`
}

// entryRefBytes is the rough per-reference cost used by the memory estimate.
const entryRefBytes = 64

func (p *preparerImpl) BuildBrandIndex(entries []catalog.Entry) BrandIndexStats {
	p.mu.Lock()
	defer p.mu.Unlock()

	start := p.now()
	p.brandIndex = make(map[string][]catalog.Entry)
	stats := BrandIndexStats{PerBrand: make(map[string]int)}

	for _, e := range entries {
		row, ok := resolveBrand(p.brands, e)
		if !ok {
			stats.Skipped++
			p.logger.Debug("brand not resolved", logging.String("entry_id", e.ID), logging.String("name", e.Name))
			continue
		}
		for _, form := range row.Forms() {
			key := strings.ToLower(form)
			p.brandIndex[key] = append(p.brandIndex[key], e)
			stats.MemoryBytes += len(key) + entryRefBytes
		}
		stats.PerBrand[row.Name]++
		stats.Indexed++
	}

	stats.Keys = len(p.brandIndex)
	stats.Duration = p.now().Sub(start)
	p.stats.Brand = stats
	p.metrics.RecordIndexBuild("brand", stats.Indexed, stats.Skipped, float64(stats.Duration.Microseconds())/1000)
	p.logger.Info("brand index built",
		logging.Int("keys", stats.Keys),
		logging.Int("indexed", stats.Indexed),
		logging.Int("skipped", stats.Skipped),
		logging.Int("memory_bytes", stats.MemoryBytes),
		logging.Duration("duration", stats.Duration))
	return stats
}

func (p *preparerImpl) LookupBrand(brand string) []catalog.Entry {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.brandIndex[strings.ToLower(strings.TrimSpace(brand))]
}

// ---------------------------------------------------------------------------
// Model index
// ---------------------------------------------------------------------------

// ModelIndexStats summarises one BuildModelIndex call.
type ModelIndexStats struct {
	Keys     int           `json:"keys"`
	Indexed  int           `json:"indexed"`
	Skipped  int           `json:"skipped"`
	Duration time.Duration `json:"duration"`
}

func (p *preparerImpl) BuildModelIndex(entries []catalog.Entry) ModelIndexStats {
	p.mu.Lock()
	defer p.mu.Unlock()

	start := p.now()
	p.modelIndex = make(map[string][]catalog.Entry)
	var stats ModelIndexStats

	for _, e := range entries {
		row, _ := resolveBrand(p.brands, e)
		m, ok := p.query.ExtractModel(e.Name, row.Forms())
		key := ""
		if ok {
			key = common.NormalizeModelKey(m.Value)
		}
		if key == "" {
			stats.Skipped++
			continue
		}
		p.modelIndex[key] = append(p.modelIndex[key], e)
		stats.Indexed++
	}

	stats.Keys = len(p.modelIndex)
	stats.Duration = p.now().Sub(start)
	p.stats.Model = stats
	p.metrics.RecordIndexBuild("model", stats.Indexed, stats.Skipped, float64(stats.Duration.Microseconds())/1000)
	p.logger.Info("model index built",
		logging.Int("keys", stats.Keys),
		logging.Int("indexed", stats.Indexed),
		logging.Int("skipped", stats.Skipped),
		logging.Duration("duration", stats.Duration))
	return stats
}

func (p *preparerImpl) LookupModel(model string) []catalog.Entry {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.modelIndex[common.NormalizeModelKey(model)]
}

// ---------------------------------------------------------------------------
// Stats
// ---------------------------------------------------------------------------

// IndexStats aggregates the latest stats of every build.
type IndexStats struct {
	Brand      BrandIndexStats  `json:"brand"`
	Model      ModelIndexStats  `json:"model"`
	Spec       SpecIndexStats   `json:"spec"`
	Preprocess PreprocessReport `json:"preprocess"`
}

func (p *preparerImpl) Stats() IndexStats {
	p.mu.RLock()
	defer p.mu.RUnlock()
	s := p.stats
	s.Brand.PerBrand = make(map[string]int, len(p.stats.Brand.PerBrand))
	for k, v := range p.stats.Brand.PerBrand {
		s.Brand.PerBrand[k] = v
	}
	s.Preprocess.Warnings = append([]string(nil), p.stats.Preprocess.Warnings...)
	return s
}

// MatchableCount is the number of entries the last PreprocessCatalog enriched.
func (p *preparerImpl) MatchableCount() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.matchable
}

//Personal.AI order the ending
