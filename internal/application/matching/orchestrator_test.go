package matching

import (
	"context"
	stderrors "errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/ProductMatch/internal/domain/attribute"
	"github.com/turtacn/ProductMatch/internal/domain/catalog"
	"github.com/turtacn/ProductMatch/internal/intelligence/attr_extractor"
	"github.com/turtacn/ProductMatch/internal/intelligence/catalog_indexer"
	"github.com/turtacn/ProductMatch/internal/intelligence/common"
	"github.com/turtacn/ProductMatch/internal/testutil"
	"github.com/turtacn/ProductMatch/pkg/errors"
)

const mateInput = "华为Mate60Pro 12+512 雅川青"

// MockSPUSelector is a mock implementation of SPUSelector.
type MockSPUSelector struct {
	mock.Mock
}

func (m *MockSPUSelector) SelectSPU(ctx context.Context, attrs *attribute.Attributes, entries []*catalog.EnrichedEntry, cb *Callbacks) (*CandidateMatch, error) {
	args := m.Called(ctx, attrs, entries, cb)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*CandidateMatch), args.Error(1)
}

type spuSelectorFunc func(attrs *attribute.Attributes, entries []*catalog.EnrichedEntry) (*CandidateMatch, error)

func (f spuSelectorFunc) SelectSPU(_ context.Context, attrs *attribute.Attributes, entries []*catalog.EnrichedEntry, _ *Callbacks) (*CandidateMatch, error) {
	return f(attrs, entries)
}

type fixture struct {
	orch    Orchestrator
	metrics *common.InMemoryMatchingMetrics
	log     *testutil.MockLogger
}

func newFixture(t *testing.T, cfg OrchestratorConfig, spu SPUSelector) *fixture {
	t.Helper()
	metrics := common.NewInMemoryMatchingMetrics()
	log := testutil.NewMockLogger()
	ext := attr_extractor.NewAttributeExtractor(attr_extractor.DefaultExtractorConfig(), log, metrics)
	prep := catalog_indexer.NewCatalogPreparer(catalog_indexer.DefaultPreparerConfig(), log, metrics)
	if spu == nil {
		spu = NewAttributeSPUSelector(0.6)
	}
	orch, err := NewOrchestrator(cfg, OrchestratorDeps{
		Extractor:   ext,
		Preparer:    prep,
		SPUSelector: spu,
		SKUSelector: NewAttributeSKUSelector(0.5),
		Logger:      log,
		Metrics:     metrics,
	})
	require.NoError(t, err)
	return &fixture{orch: orch, metrics: metrics, log: log}
}

func mateCatalog() []catalog.Entry {
	return []catalog.Entry{{
		ID:    "spu-mate60pro",
		Name:  "华为 Mate 60 Pro 12GB+512GB 雅川青",
		Brand: "华为",
		Variants: []catalog.Variant{
			{ID: "sku-1", Color: "雅川青", Spec: "12GB+512GB", Codes: []string{"EAN-6941487303"}},
		},
	}}
}

// ─────────────────────────────────────────────────────────────────────────────
// Lifecycle
// ─────────────────────────────────────────────────────────────────────────────

func TestNewOrchestrator_RequiresCollaborators(t *testing.T) {
	_, err := NewOrchestrator(OrchestratorConfig{}, OrchestratorDeps{})
	assert.True(t, errors.IsCode(err, errors.CodeInvalidParam))
}

func TestMatch_BeforeInitialize(t *testing.T) {
	f := newFixture(t, OrchestratorConfig{}, nil)
	ctx := context.Background()

	_, err := f.orch.Match(ctx, mateInput)
	assert.True(t, errors.IsCode(err, errors.CodeNotInitialized))

	_, err = f.orch.BatchMatch(ctx, []string{mateInput})
	assert.True(t, errors.IsCode(err, errors.CodeNotInitialized))

	err = f.orch.Reindex(ctx, testutil.SampleBrands(), mateCatalog())
	assert.True(t, errors.IsCode(err, errors.CodeNotInitialized))
}

func TestInitialize_Twice(t *testing.T) {
	f := newFixture(t, OrchestratorConfig{}, nil)
	ctx := context.Background()

	require.NoError(t, f.orch.Initialize(ctx, testutil.SampleBrands(), mateCatalog()))
	err := f.orch.Initialize(ctx, testutil.SampleBrands(), mateCatalog())
	assert.True(t, errors.IsCode(err, errors.CodeAlreadyInitialized))
	assert.True(t, errors.IsUsageError(errors.GetCode(err)))
}

func TestInitialize_EmptyCatalog(t *testing.T) {
	f := newFixture(t, OrchestratorConfig{}, nil)
	ctx := context.Background()

	err := f.orch.Initialize(ctx, testutil.SampleBrands(), nil)
	assert.True(t, errors.IsCode(err, errors.CodeCatalogEmpty))

	_, err = f.orch.Match(ctx, mateInput)
	assert.True(t, errors.IsCode(err, errors.CodeNotInitialized), "a failed Initialize leaves the orchestrator uninitialized")
}

func TestInitialize_EmptyBrandTableWarns(t *testing.T) {
	f := newFixture(t, OrchestratorConfig{}, nil)
	ctx := context.Background()

	require.NoError(t, f.orch.Initialize(ctx, nil, mateCatalog()))
	msg := "brand table is empty; brands resolve only from explicit entry fields"
	assert.True(t, f.log.HasMessage("warn", msg))
	reason, ok := f.log.Field(msg, "error")
	require.True(t, ok)
	assert.Contains(t, reason, string(errors.CodeBrandTableEmpty))
}

// ─────────────────────────────────────────────────────────────────────────────
// Match
// ─────────────────────────────────────────────────────────────────────────────

func TestMatch_EndToEnd(t *testing.T) {
	f := newFixture(t, OrchestratorConfig{}, nil)
	ctx := context.Background()
	require.NoError(t, f.orch.Initialize(ctx, testutil.SampleBrands(), mateCatalog()))

	res, err := f.orch.Match(ctx, mateInput)
	require.NoError(t, err)

	assert.Equal(t, mateInput, res.InputText)
	assert.Equal(t, StatusMatched, res.Status)
	assert.Greater(t, res.Similarity, 0.9)
	assert.Empty(t, res.Error)

	assert.Equal(t, ExtractedAttributes{
		Brand:       "华为",
		Model:       "mate60pro",
		Capacity:    "12+512",
		Color:       "雅川青",
		ProductType: attribute.ProductPhone,
	}, res.ExtractedAttributes)
	for _, c := range []float64{
		res.Attributes.Brand.Confidence, res.Attributes.Model.Confidence,
		res.Attributes.Capacity.Confidence, res.Attributes.Color.Confidence,
	} {
		assert.Greater(t, c, 0.0)
	}

	require.NotNil(t, res.CandidateMatch)
	assert.Equal(t, "spu-mate60pro", res.CandidateMatch.Entry.ID)
	assert.NotEmpty(t, res.CandidateMatch.Explanation)
	require.NotNil(t, res.VariantMatch)
	assert.Equal(t, 1.0, res.VariantMatch.PerFieldScores["capacity"])
	assert.Equal(t, &MatchedIdentifiers{
		EntryName:     "华为 Mate 60 Pro 12GB+512GB 雅川青",
		VariantID:     "sku-1",
		ExternalCodes: []string{"EAN-6941487303"},
	}, res.MatchedIdentifiers)

	assert.Equal(t, 1, f.metrics.Matches(string(StatusMatched)))
}

func TestMatch_VersionAwareVariant(t *testing.T) {
	f := newFixture(t, OrchestratorConfig{}, nil)
	ctx := context.Background()
	require.NoError(t, f.orch.Initialize(ctx, testutil.SampleBrands(), testutil.SampleCatalog()))

	res, err := f.orch.Match(ctx, "vivo Y50 5G 8GB+256GB 星光色")
	require.NoError(t, err)

	assert.Equal(t, StatusMatched, res.Status)
	assert.Equal(t, "sku-4", res.MatchedIdentifiers.VariantID)
	assert.Equal(t, 1.0, res.VariantMatch.PerFieldScores["version"])
}

func TestMatch_Unmatched(t *testing.T) {
	f := newFixture(t, OrchestratorConfig{}, nil)
	ctx := context.Background()
	require.NoError(t, f.orch.Initialize(ctx, testutil.SampleBrands(), mateCatalog()))

	res, err := f.orch.Match(ctx, "Nokia 3310 经典款")
	require.NoError(t, err)
	assert.Equal(t, StatusUnmatched, res.Status)
	assert.Zero(t, res.Similarity)
	assert.Nil(t, res.MatchedIdentifiers)
	assert.Empty(t, res.Error)
}

func TestMatch_CandidateOnly(t *testing.T) {
	f := newFixture(t, OrchestratorConfig{}, nil)
	ctx := context.Background()
	require.NoError(t, f.orch.Initialize(ctx, testutil.SampleBrands(), mateCatalog()))

	res, err := f.orch.Match(ctx, "华为 Mate 60 Pro 16GB+1TB 白沙银")
	require.NoError(t, err)
	assert.Equal(t, StatusSPUMatched, res.Status)
	assert.Equal(t, res.CandidateMatch.Score, res.Similarity)
	assert.Nil(t, res.VariantMatch)
	assert.Empty(t, res.MatchedIdentifiers.VariantID)
}

func TestMatch_PerItemProblemsDegrade(t *testing.T) {
	ctx := context.Background()
	spu := spuSelectorFunc(func(attrs *attribute.Attributes, _ []*catalog.EnrichedEntry) (*CandidateMatch, error) {
		if attrs.Raw == "panic" {
			panic("selector bug")
		}
		return nil, stderrors.New("selector unavailable")
	})
	f := newFixture(t, OrchestratorConfig{}, spu)
	require.NoError(t, f.orch.Initialize(ctx, testutil.SampleBrands(), mateCatalog()))

	res, err := f.orch.Match(ctx, "panic")
	require.NoError(t, err)
	assert.Equal(t, StatusUnmatched, res.Status)
	assert.Contains(t, res.Error, errors.CodeSelectorPanic.String())
	assert.Contains(t, res.Error, "selector bug")

	res, err = f.orch.Match(ctx, mateInput)
	require.NoError(t, err)
	assert.Equal(t, StatusUnmatched, res.Status)
	assert.Contains(t, res.Error, "selector unavailable")

	res, err = f.orch.Match(ctx, "bad \xff input")
	require.NoError(t, err)
	assert.Contains(t, res.Error, errors.ErrCodePreprocessFailed.String())

	assert.Equal(t, 1, f.metrics.Failures(errors.CodeSelectorPanic.String()))
	assert.Equal(t, 1, f.metrics.Failures(errors.CodeSelectorFailed.String()))
	assert.Equal(t, 3, f.log.CountLevel("warn"))
}

// ─────────────────────────────────────────────────────────────────────────────
// Batch
// ─────────────────────────────────────────────────────────────────────────────

func TestBatchMatch_SelectorErrorDoesNotAbort(t *testing.T) {
	ctx := context.Background()
	spu := new(MockSPUSelector)
	f := newFixture(t, OrchestratorConfig{ProgressEvery: 1}, spu)
	require.NoError(t, f.orch.Initialize(ctx, testutil.SampleBrands(), mateCatalog()))
	entry := f.orch.Catalog()[0]

	rawIs := func(s string) interface{} {
		return mock.MatchedBy(func(a *attribute.Attributes) bool { return a.Raw == s })
	}
	spu.On("SelectSPU", mock.Anything, rawIs("boom"), mock.Anything, mock.Anything).
		Return(nil, stderrors.New("selector exploded"))
	spu.On("SelectSPU", mock.Anything, rawIs("vivo Y50 5G"), mock.Anything, mock.Anything).
		Return(nil, nil)
	spu.On("SelectSPU", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(&CandidateMatch{Entry: entry, Score: 0.97}, nil)

	texts := []string{mateInput, "boom", "vivo Y50 5G"}
	out, err := f.orch.BatchMatch(ctx, texts)
	require.NoError(t, err)

	require.Len(t, out.Results, len(texts))
	for i, r := range out.Results {
		assert.Equal(t, texts[i], r.InputText)
	}
	assert.Equal(t, StatusMatched, out.Results[0].Status)
	assert.Equal(t, StatusUnmatched, out.Results[1].Status)
	assert.Contains(t, out.Results[1].Error, errors.CodeSelectorFailed.String())
	assert.Equal(t, StatusUnmatched, out.Results[2].Status)
	assert.Empty(t, out.Results[2].Error)

	assert.Equal(t, 3, out.Summary.Total)
	assert.Equal(t, 1, out.Summary.Matched)
	assert.Equal(t, 0, out.Summary.CandidateOnly)
	assert.Equal(t, 2, out.Summary.Unmatched)
	assert.Equal(t, 1, out.Summary.Failed)
	assert.InDelta(t, 1.0/3.0, out.Summary.MatchRate, 1e-9)

	_, err = uuid.Parse(out.RunID)
	assert.NoError(t, err)
	require.Len(t, f.metrics.Batches(), 1)
	assert.Equal(t, out.RunID, f.metrics.Batches()[0].RunID)
	assert.True(t, f.log.HasMessage("warn", "batch item failed"))
	assert.True(t, f.log.HasMessage("info", "batch progress"))
	spu.AssertNumberOfCalls(t, "SelectSPU", 3)
}

func TestBatchMatch_PanicKeepsIndexAlignment(t *testing.T) {
	ctx := context.Background()
	var entries []*catalog.EnrichedEntry
	spu := spuSelectorFunc(func(attrs *attribute.Attributes, all []*catalog.EnrichedEntry) (*CandidateMatch, error) {
		if attrs.Raw == "panic" {
			panic("index out of range")
		}
		entries = all
		return &CandidateMatch{Entry: all[0], Score: 0.9}, nil
	})
	f := newFixture(t, OrchestratorConfig{}, spu)
	require.NoError(t, f.orch.Initialize(ctx, testutil.SampleBrands(), mateCatalog()))

	out, err := f.orch.BatchMatch(ctx, []string{"panic", mateInput})
	require.NoError(t, err)

	require.Len(t, out.Results, 2)
	assert.Equal(t, "panic", out.Results[0].InputText)
	assert.Contains(t, out.Results[0].Error, errors.CodeSelectorPanic.String())
	assert.Equal(t, StatusMatched, out.Results[1].Status)
	assert.Equal(t, 1, out.Summary.Failed)
	assert.Len(t, entries, 1)
}

func TestBatchMatch_Empty(t *testing.T) {
	f := newFixture(t, OrchestratorConfig{}, nil)
	ctx := context.Background()
	require.NoError(t, f.orch.Initialize(ctx, testutil.SampleBrands(), mateCatalog()))

	out, err := f.orch.BatchMatch(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, out.Results)
	assert.Zero(t, out.Summary.MatchRate)
}

// ─────────────────────────────────────────────────────────────────────────────
// Reindex and catalog colors
// ─────────────────────────────────────────────────────────────────────────────

func TestReindex_ReplacesSnapshot(t *testing.T) {
	f := newFixture(t, OrchestratorConfig{}, nil)
	ctx := context.Background()
	all := testutil.SampleCatalog()
	require.NoError(t, f.orch.Initialize(ctx, testutil.SampleBrands(), all))
	require.Len(t, f.orch.Catalog(), 4)

	require.NoError(t, f.orch.Reindex(ctx, testutil.SampleBrands(), all[1:2]))
	require.Len(t, f.orch.Catalog(), 1)

	res, err := f.orch.Match(ctx, mateInput)
	require.NoError(t, err)
	assert.Equal(t, StatusUnmatched, res.Status)
}

func TestInitialize_LearnsCatalogColors(t *testing.T) {
	ctx := context.Background()
	input := "Xiaomi 14 16GB+1TB 岩石灰"

	plain := newFixture(t, OrchestratorConfig{}, nil)
	require.NoError(t, plain.orch.Initialize(ctx, testutil.SampleBrands(), testutil.SampleCatalog()))
	res, err := plain.orch.Match(ctx, input)
	require.NoError(t, err)
	assert.Equal(t, 0.85, res.Attributes.Color.Confidence)

	learning := newFixture(t, OrchestratorConfig{LearnCatalogColors: true}, nil)
	require.NoError(t, learning.orch.Initialize(ctx, testutil.SampleBrands(), testutil.SampleCatalog()))
	res, err = learning.orch.Match(ctx, input)
	require.NoError(t, err)
	assert.Equal(t, "岩石灰", res.ExtractedAttributes.Color)
	assert.Equal(t, 0.95, res.Attributes.Color.Confidence)
	assert.Equal(t, StatusMatched, res.Status)
}

// indexSpy records what the catalog-index callbacks return while delegating
// selection to the reference selector.
type indexSpy struct {
	inner       SPUSelector
	modelHits   map[string][]string
	brandHits   map[string][]string
	evidence    map[string]int
	catalogSeen []*catalog.EnrichedEntry
}

func newIndexSpy() *indexSpy {
	return &indexSpy{
		inner:     NewAttributeSPUSelector(0.6),
		modelHits: map[string][]string{},
		brandHits: map[string][]string{},
		evidence:  map[string]int{},
	}
}

func ids(entries []*catalog.EnrichedEntry) []string {
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.ID)
	}
	return out
}

func (s *indexSpy) SelectSPU(ctx context.Context, attrs *attribute.Attributes, entries []*catalog.EnrichedEntry, cb *Callbacks) (*CandidateMatch, error) {
	s.catalogSeen = entries
	wrapped := *cb
	wrapped.EntriesByModel = func(model string) []*catalog.EnrichedEntry {
		hit := cb.EntriesByModel(model)
		s.modelHits[model] = ids(hit)
		return hit
	}
	wrapped.EntriesByBrand = func(brand string) []*catalog.EnrichedEntry {
		hit := cb.EntriesByBrand(brand)
		s.brandHits[brand] = ids(hit)
		return hit
	}
	for _, e := range entries {
		s.evidence[e.ID] = cb.VariantEvidence(attrs, e)
	}
	return s.inner.SelectSPU(ctx, attrs, entries, &wrapped)
}

func TestMatch_SelectorReadsCatalogIndexes(t *testing.T) {
	spy := newIndexSpy()
	f := newFixture(t, OrchestratorConfig{}, spy)
	ctx := context.Background()
	require.NoError(t, f.orch.Initialize(ctx, testutil.SampleBrands(), testutil.SampleCatalog()))

	res, err := f.orch.Match(ctx, mateInput)
	require.NoError(t, err)
	assert.Equal(t, StatusMatched, res.Status)

	require.Contains(t, spy.modelHits, "mate60pro")
	assert.Equal(t, []string{"spu-mate60pro"}, spy.modelHits["mate60pro"])
	assert.Empty(t, spy.brandHits, "a model hit needs no brand lookup")
	assert.Len(t, spy.catalogSeen, 4)

	assert.Equal(t, 2, spy.evidence["spu-mate60pro"], "color and capacity are both stocked")
	assert.Equal(t, 0, spy.evidence["spu-y50"])
}

func TestMatch_UnknownModelNarrowsByBrand(t *testing.T) {
	spy := newIndexSpy()
	f := newFixture(t, OrchestratorConfig{}, spy)
	ctx := context.Background()
	require.NoError(t, f.orch.Initialize(ctx, testutil.SampleBrands(), testutil.SampleCatalog()))

	res, err := f.orch.Match(ctx, "华为Mate70Pro 12+512 雅川青")
	require.NoError(t, err)
	assert.Equal(t, StatusUnmatched, res.Status)

	require.Contains(t, spy.modelHits, "mate70pro")
	assert.Empty(t, spy.modelHits["mate70pro"])
	require.Contains(t, spy.brandHits, "华为")
	assert.Contains(t, spy.brandHits["华为"], "spu-mate60pro")
}

//Personal.AI order the ending
