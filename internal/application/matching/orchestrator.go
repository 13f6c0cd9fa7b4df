// Package matching sequences preprocessing, attribute extraction and
// candidate selection into per-input and batch match results.
package matching

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/turtacn/ProductMatch/internal/domain/attribute"
	"github.com/turtacn/ProductMatch/internal/domain/catalog"
	"github.com/turtacn/ProductMatch/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/ProductMatch/internal/intelligence/attr_extractor"
	"github.com/turtacn/ProductMatch/internal/intelligence/catalog_indexer"
	"github.com/turtacn/ProductMatch/internal/intelligence/common"
	"github.com/turtacn/ProductMatch/internal/intelligence/version_matcher"
	"github.com/turtacn/ProductMatch/pkg/errors"
)

// Orchestrator is the matching entry point.
type Orchestrator interface {
	// Initialize builds every index from the snapshot.  It may run once.
	Initialize(ctx context.Context, brands []catalog.Brand, entries []catalog.Entry) error

	// Reindex replaces the snapshot.  Matching waits until it returns.
	Reindex(ctx context.Context, brands []catalog.Brand, entries []catalog.Entry) error

	// Match resolves one input.  Only usage errors are returned; per-item
	// problems produce an unmatched result with Error set.
	Match(ctx context.Context, text string) (*MatchResult, error)

	// BatchMatch resolves texts one at a time.  Results are index-aligned
	// with texts; a failed item leaves an unmatched placeholder.
	BatchMatch(ctx context.Context, texts []string) (*BatchResult, error)

	// Catalog returns the enriched entries of the current snapshot.
	Catalog() []*catalog.EnrichedEntry
}

// OrchestratorConfig tunes the orchestrator.
type OrchestratorConfig struct {
	// ProgressEvery logs batch progress every N items; 0 disables it.
	ProgressEvery int

	// LearnCatalogColors adds every distinct catalog color to ColorVocabulary
	// on Initialize and Reindex.
	LearnCatalogColors bool

	// ColorVocabulary is the base vocabulary catalog colors are added to.
	ColorVocabulary []string
}

// OrchestratorDeps are the collaborators.  Extractor, Preparer and
// SPUSelector are required.
type OrchestratorDeps struct {
	Extractor    attr_extractor.AttributeExtractor
	Preparer     catalog_indexer.CatalogPreparer
	Versions     version_matcher.VersionMatcher
	Preprocessor Preprocessor
	SPUSelector  SPUSelector
	SKUSelector  SKUSelector
	Logger       logging.Logger
	Metrics      common.MatchingMetrics
}

// Option customises an orchestrator.
type Option func(*orchestratorImpl)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(o *orchestratorImpl) {
		if now != nil {
			o.now = now
		}
	}
}

type orchestratorImpl struct {
	mu          sync.RWMutex
	initialized bool

	entries      []*catalog.EnrichedEntry
	byID         map[string]*catalog.EnrichedEntry
	productTypes map[string]attribute.ProductType
	callbacks    *Callbacks

	cfg          OrchestratorConfig
	extractor    attr_extractor.AttributeExtractor
	preparer     catalog_indexer.CatalogPreparer
	versions     version_matcher.VersionMatcher
	preprocessor Preprocessor
	spu          SPUSelector
	sku          SKUSelector
	core         *common.CatalogTextNormalizer

	now     func() time.Time
	logger  logging.Logger
	metrics common.MatchingMetrics
}

// NewOrchestrator wires an orchestrator.  Missing optional collaborators get
// the in-package defaults.
func NewOrchestrator(cfg OrchestratorConfig, deps OrchestratorDeps, opts ...Option) (Orchestrator, error) {
	switch {
	case deps.Extractor == nil:
		return nil, errors.InvalidParam("orchestrator requires an attribute extractor")
	case deps.Preparer == nil:
		return nil, errors.InvalidParam("orchestrator requires a catalog preparer")
	case deps.SPUSelector == nil:
		return nil, errors.InvalidParam("orchestrator requires an SPU selector")
	}
	if deps.Versions == nil {
		deps.Versions = version_matcher.NewVersionMatcher(version_matcher.DefaultVersionMatcherConfig())
	}
	if deps.Preprocessor == nil {
		deps.Preprocessor = NewTextPreprocessor()
	}
	if deps.SKUSelector == nil {
		deps.SKUSelector = NewAttributeSKUSelector(0)
	}
	if cfg.ColorVocabulary == nil {
		cfg.ColorVocabulary = common.DefaultColorVocabulary
	}

	o := &orchestratorImpl{
		cfg:          cfg,
		extractor:    deps.Extractor,
		preparer:     deps.Preparer,
		versions:     deps.Versions,
		preprocessor: deps.Preprocessor,
		spu:          deps.SPUSelector,
		sku:          deps.SKUSelector,
		core:         common.NewCatalogTextNormalizer(common.QueryPolicy),
		now:          time.Now,
		logger:       logging.OrNop(deps.Logger).Named("matching"),
		metrics:      common.OrNoopMetrics(deps.Metrics),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Build
// ─────────────────────────────────────────────────────────────────────────────

func (o *orchestratorImpl) Initialize(ctx context.Context, brands []catalog.Brand, entries []catalog.Entry) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.initialized {
		return errors.New(errors.CodeAlreadyInitialized, "Initialize called twice; use Reindex")
	}
	if err := o.build(ctx, brands, entries); err != nil {
		return err
	}
	o.initialized = true
	return nil
}

func (o *orchestratorImpl) Reindex(ctx context.Context, brands []catalog.Brand, entries []catalog.Entry) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if !o.initialized {
		return errors.New(errors.CodeNotInitialized, "Reindex called before Initialize")
	}
	return o.build(ctx, brands, entries)
}

func (o *orchestratorImpl) build(_ context.Context, brands []catalog.Brand, entries []catalog.Entry) error {
	if len(entries) == 0 {
		return errors.New(errors.CodeCatalogEmpty, "catalog snapshot has no entries")
	}
	if len(brands) == 0 {
		o.logger.Warn("brand table is empty; brands resolve only from explicit entry fields",
			logging.Err(errors.New(errors.CodeBrandTableEmpty, "no brands supplied")))
	}

	start := o.now()
	o.extractor.SetBrands(brands)
	o.preparer.SetBrands(brands)

	o.preparer.BuildBrandIndex(entries)
	o.preparer.BuildModelIndex(entries)
	o.preparer.BuildSpecIndex(entries)
	enriched, report := o.preparer.PreprocessCatalog(entries)

	if o.cfg.LearnCatalogColors {
		vocab := append([]string(nil), o.cfg.ColorVocabulary...)
		for _, vc := range o.preparer.Frequency(catalog_indexer.SpecColor) {
			vocab = append(vocab, vc.Value)
		}
		o.extractor.SetColorVocabulary(vocab)
	}

	types := make(map[string]attribute.ProductType, len(enriched))
	byID := make(map[string]*catalog.EnrichedEntry, len(enriched))
	for _, e := range enriched {
		types[e.ID] = o.extractor.ClassifyProductType(e.Name, e.ExtractedModel)
		byID[e.ID] = e
	}

	o.entries = enriched
	o.byID = byID
	o.productTypes = types
	o.callbacks = o.newCallbacks()

	o.logger.Info("catalog indexed",
		logging.Int("entries", len(entries)),
		logging.Int("matchable", report.Enriched),
		logging.Int("brands", len(brands)),
		logging.Duration("duration", o.now().Sub(start)))
	return nil
}

func (o *orchestratorImpl) newCallbacks() *Callbacks {
	return &Callbacks{
		ExtractBrand:   o.extractor.ExtractBrand,
		ExtractModel:   o.extractor.ExtractModel,
		ExtractVersion: o.extractor.ExtractVersion,
		ExtractSPUCore: func(name string) string { return o.core.StripForModel(name, nil) },
		BrandsEqual:    o.brandsEqual,
		FilterSPU:      o.filterSPU,
		SPUPriority:    SPUPriority,
		EntriesByModel: func(model string) []*catalog.EnrichedEntry {
			return o.enrichedOf(o.preparer.LookupModel(model))
		},
		EntriesByBrand: func(brand string) []*catalog.EnrichedEntry {
			return o.enrichedOf(o.preparer.LookupBrand(brand))
		},
		VariantEvidence: o.variantEvidence,
		Tokenize:        Tokenize,
		NormalizeSpec:  o.preparer.NormalizeSpec,
		MatchVersion:   o.versions.Match,
	}
}

// enrichedOf maps index hits to this snapshot's enriched entries, dropping
// entries the enrichment pass skipped and duplicate IDs.
func (o *orchestratorImpl) enrichedOf(hits []catalog.Entry) []*catalog.EnrichedEntry {
	if len(hits) == 0 {
		return nil
	}
	out := make([]*catalog.EnrichedEntry, 0, len(hits))
	seen := make(map[string]struct{}, len(hits))
	for _, h := range hits {
		e, ok := o.byID[h.ID]
		if !ok {
			continue
		}
		if _, dup := seen[h.ID]; dup {
			continue
		}
		seen[h.ID] = struct{}{}
		out = append(out, e)
	}
	return out
}

func (o *orchestratorImpl) variantEvidence(attrs *attribute.Attributes, e *catalog.EnrichedEntry) int {
	if attrs == nil || e == nil {
		return 0
	}
	n := 0
	if c := attrs.Color.Get(); c != "" && hasID(o.preparer.EntriesWithColor(c), e.ID) {
		n++
	}
	if c := attrs.Capacity.Get(); c != "" && hasID(o.preparer.EntriesWithSpec(c), e.ID) {
		n++
	}
	if v := attrs.Version.Get(); v.Name != "" && hasID(o.preparer.EntriesWithCombo(v.Name), e.ID) {
		n++
	}
	return n
}

// hasID searches a sorted ID list.
func hasID(ids []string, id string) bool {
	i := sort.SearchStrings(ids, id)
	return i < len(ids) && ids[i] == id
}

func (o *orchestratorImpl) brandsEqual(a, b string) bool {
	a, b = strings.TrimSpace(a), strings.TrimSpace(b)
	if a == "" || b == "" {
		return false
	}
	for _, f := range o.extractor.BrandForms(a) {
		if strings.EqualFold(f, b) {
			return true
		}
	}
	return false
}

// filterSPU rejects entries whose brand or product type contradicts attrs.
// Unknown values on either side never reject.
func (o *orchestratorImpl) filterSPU(attrs *attribute.Attributes, e *catalog.EnrichedEntry) bool {
	if attrs == nil || e == nil {
		return false
	}
	if b := attrs.Brand.Get(); b != "" && e.ExtractedBrand != "" && !o.brandsEqual(b, e.ExtractedBrand) {
		return false
	}
	if t, ok := o.productTypes[e.ID]; ok && attrs.ProductType != "" && t != attrs.ProductType {
		return false
	}
	return true
}

func (o *orchestratorImpl) Catalog() []*catalog.EnrichedEntry {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.entries
}

// ─────────────────────────────────────────────────────────────────────────────
// Match
// ─────────────────────────────────────────────────────────────────────────────

func (o *orchestratorImpl) Match(ctx context.Context, text string) (*MatchResult, error) {
	o.mu.RLock()
	defer o.mu.RUnlock()

	if !o.initialized {
		return nil, errors.New(errors.CodeNotInitialized, "Match called before Initialize")
	}

	start := o.now()
	res, err := common.Invoke(ctx, text, o.process)
	if err != nil {
		o.logger.Warn("match failed", logging.String("input", text), logging.Err(err))
		res = degraded(text, err)
	}
	o.record(ctx, res, float64(o.now().Sub(start).Microseconds())/1000)
	return res, nil
}

// process runs one input through the pipeline.  Collaborator errors are
// returned so the caller decides how the item degrades.
func (o *orchestratorImpl) process(ctx context.Context, text string) (*MatchResult, error) {
	clean, err := o.preprocessor.Preprocess(ctx, text)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodePreprocessFailed, "preprocess input")
	}

	attrs := o.extractor.ExtractAll(clean)
	res := &MatchResult{
		InputText:           text,
		Status:              StatusUnmatched,
		Attributes:          attrs,
		ExtractedAttributes: summarize(attrs),
	}

	cand, err := o.spu.SelectSPU(ctx, attrs, o.entries, o.callbacks)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeSelectorFailed, "spu selector")
	}
	if cand == nil || cand.Entry == nil {
		return res, nil
	}
	res.CandidateMatch = cand
	res.Status = StatusSPUMatched
	res.Similarity = cand.Score
	res.MatchedIdentifiers = &MatchedIdentifiers{EntryName: cand.Entry.Name}

	variant, err := o.sku.SelectSKU(ctx, attrs, cand.Entry, o.callbacks)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeSelectorFailed, "sku selector")
	}
	if variant == nil {
		return res, nil
	}
	res.VariantMatch = variant
	res.Status = StatusMatched
	res.Similarity = variant.Score
	res.MatchedIdentifiers.VariantID = variant.Variant.ID
	res.MatchedIdentifiers.ExternalCodes = append([]string(nil), variant.Variant.Codes...)
	return res, nil
}

func degraded(text string, err error) *MatchResult {
	return &MatchResult{InputText: text, Status: StatusUnmatched, Error: describe(err)}
}

// describe renders err without the captured stack.
func describe(err error) string {
	if ae, ok := err.(*errors.AppError); ok {
		msg := "[" + ae.Code.String() + "] " + ae.Message
		if ae.Cause != nil {
			msg += ": " + ae.Cause.Error()
		}
		return msg
	}
	return err.Error()
}

func (o *orchestratorImpl) record(ctx context.Context, res *MatchResult, durationMs float64) {
	o.metrics.RecordMatch(ctx, string(res.Status), durationMs)
	if res.Error != "" {
		o.metrics.RecordMatchFailure(ctx, failureReason(res.Error))
	}
}

// failureReason extracts the error code prefix of a described error.
func failureReason(msg string) string {
	if strings.HasPrefix(msg, "[") {
		if end := strings.IndexByte(msg, ']'); end > 1 {
			return msg[1:end]
		}
	}
	return errors.CodeUnknown.String()
}

// ─────────────────────────────────────────────────────────────────────────────
// Batch
// ─────────────────────────────────────────────────────────────────────────────

func (o *orchestratorImpl) BatchMatch(ctx context.Context, texts []string) (*BatchResult, error) {
	o.mu.RLock()
	defer o.mu.RUnlock()

	if !o.initialized {
		return nil, errors.New(errors.CodeNotInitialized, "BatchMatch called before Initialize")
	}

	runID := uuid.NewString()
	log := o.logger.With(logging.String("run_id", runID))
	log.Info("batch started", logging.Int("items", len(texts)))

	summary := BatchSummary{Total: len(texts)}
	every := o.cfg.ProgressEvery

	br := common.RunSequential(ctx, texts, o.process,
		common.WithPlaceholder(func(i int, text string, err error) *MatchResult {
			log.Warn("batch item failed", logging.Int("index", i), logging.String("input", text), logging.Err(err))
			return degraded(text, err)
		}),
		common.WithItemHook[string, *MatchResult](func(ir *common.ItemResult[*MatchResult]) {
			o.record(ctx, ir.Result, ir.DurationMs)
			if ir.Status != common.ItemStatusSuccess {
				summary.Failed++
			}
			switch ir.Result.Status {
			case StatusMatched:
				summary.Matched++
			case StatusSPUMatched:
				summary.CandidateOnly++
			default:
				summary.Unmatched++
			}
			if every > 0 && (ir.Index+1)%every == 0 {
				log.Info("batch progress", logging.Int("processed", ir.Index+1), logging.Int("total", len(texts)))
			}
		}),
		common.WithClock[string, *MatchResult](o.now),
	)

	out := &BatchResult{RunID: runID, Results: make([]*MatchResult, len(br.Results))}
	for i, ir := range br.Results {
		out.Results[i] = ir.Result
	}
	summary.DurationMs = br.TotalDurationMs
	if summary.Total > 0 {
		summary.MatchRate = float64(summary.Matched) / float64(summary.Total)
	}
	out.Summary = summary

	o.metrics.RecordBatch(ctx, &common.BatchMetricParams{
		RunID:         runID,
		Total:         summary.Total,
		Matched:       summary.Matched,
		CandidateOnly: summary.CandidateOnly,
		Unmatched:     summary.Unmatched,
		Failed:        summary.Failed,
		DurationMs:    summary.DurationMs,
	})
	log.Info("batch finished",
		logging.Int("total", summary.Total),
		logging.Int("matched", summary.Matched),
		logging.Int("candidate_only", summary.CandidateOnly),
		logging.Int("unmatched", summary.Unmatched),
		logging.Int("failed", summary.Failed),
		logging.Float64("match_rate", summary.MatchRate),
		logging.Float64("duration_ms", summary.DurationMs))
	return out, nil
}

//Personal.AI order the ending
