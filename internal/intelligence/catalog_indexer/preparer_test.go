package catalog_indexer

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/ProductMatch/internal/domain/catalog"
	"github.com/turtacn/ProductMatch/internal/intelligence/common"
	"github.com/turtacn/ProductMatch/internal/testutil"
)

func fixedClock() func() time.Time {
	t0 := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	return func() time.Time { return t0 }
}

func newTestPreparer(t *testing.T, opts ...Option) (CatalogPreparer, *common.InMemoryMatchingMetrics, *testutil.MockLogger) {
	t.Helper()
	metrics := common.NewInMemoryMatchingMetrics()
	log := testutil.NewMockLogger()
	p := NewCatalogPreparer(DefaultPreparerConfig(), log, metrics, append([]Option{WithClock(fixedClock())}, opts...)...)
	p.SetBrands(testutil.SampleBrands())
	return p, metrics, log
}

func entryIDs(entries []catalog.Entry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.ID
	}
	return out
}

// ─────────────────────────────────────────────────────────────────────────────
// NormalizeSpec
// ─────────────────────────────────────────────────────────────────────────────

func TestNormalizeSpec_Rewrite(t *testing.T) {
	t.Parallel()
	p, _, _ := newTestPreparer(t)

	cases := map[string]string{
		"12GB+512GB":  "12+512",
		"8GB+256GB":   "8+256",
		"8gb+256gb":   "8+256",
		"8GB + 256GB": "8+256",
		"16GB+1TB":    "16+1T",
		"1TB":         "1T",
		"8G+256G":     "8+256",
		"256g":        "256",
		"  星光色 ":      "星光色",
		"12+512":      "12+512",
		"":            "",
	}
	for in, want := range cases {
		assert.Equal(t, want, p.NormalizeSpec(in), in)
	}
}

func TestNormalizeSpec_Idempotent(t *testing.T) {
	t.Parallel()
	p, _, _ := newTestPreparer(t)
	p.SetCapacityNormalizations(map[string]string{"标准内存": "8+128"})

	for _, in := range []string{"12GB+512GB", "1TB", "8G+256G", "标准内存", "Gold", " 256 GB "} {
		once := p.NormalizeSpec(in)
		assert.Equal(t, once, p.NormalizeSpec(once), in)
	}
}

func TestNormalizeSpec_Synonyms(t *testing.T) {
	t.Parallel()
	p, _, _ := newTestPreparer(t)
	p.SetCapacityNormalizations(map[string]string{
		"Eight+256": "8+256",
		"eight+256": "8+256G",
	})

	assert.Equal(t, "8+256", p.NormalizeSpec("Eight+256"), "exact key wins")
	assert.Equal(t, "8+256G", p.NormalizeSpec("eight+256"))
	assert.Equal(t, "8+256G", p.NormalizeSpec("EIGHT+256"), "falls back to case-insensitive key")

	p.SetCapacityNormalizations(nil)
	assert.Equal(t, "Eight+256", p.NormalizeSpec("Eight+256"))
}

// ─────────────────────────────────────────────────────────────────────────────
// Brand index
// ─────────────────────────────────────────────────────────────────────────────

func TestBuildBrandIndex(t *testing.T) {
	t.Parallel()
	p, metrics, _ := newTestPreparer(t)

	stats := p.BuildBrandIndex(testutil.SampleCatalog())

	assert.Equal(t, 4, stats.Indexed)
	assert.Equal(t, 1, stats.Skipped)
	assert.Equal(t, 5, stats.Keys)
	assert.Equal(t, map[string]int{"华为": 2, "vivo": 1, "小米": 1}, stats.PerBrand)
	assert.Greater(t, stats.MemoryBytes, 0)

	assert.ElementsMatch(t, []string{"spu-mate60pro", "spu-watch4"}, entryIDs(p.LookupBrand("华为")))
	assert.ElementsMatch(t, []string{"spu-mate60pro", "spu-watch4"}, entryIDs(p.LookupBrand("HUAWEI")))
	assert.Equal(t, []string{"spu-y50"}, entryIDs(p.LookupBrand("vivo")))
	assert.Equal(t, []string{"spu-xiaomi14"}, entryIDs(p.LookupBrand("xiaomi")))
	assert.Empty(t, p.LookupBrand("苹果"))

	assert.Equal(t, 1, metrics.Builds("brand"))
}

func TestBuildBrandIndex_RebuildClears(t *testing.T) {
	t.Parallel()
	p, _, _ := newTestPreparer(t)
	all := testutil.SampleCatalog()

	p.BuildBrandIndex(all)
	require.NotEmpty(t, p.LookupBrand("华为"))

	p.BuildBrandIndex(all[1:2])
	assert.Empty(t, p.LookupBrand("华为"))
	assert.Len(t, p.LookupBrand("vivo"), 1)
	assert.Equal(t, 1, p.Stats().Brand.Indexed)
}

func TestBuildBrandIndex_UnknownExplicitBrand(t *testing.T) {
	p, _, _ := newTestPreparer(t)
	p.BuildBrandIndex([]catalog.Entry{{ID: "n1", Name: "Phone (2)", Brand: "Nothing"}})
	assert.Len(t, p.LookupBrand("nothing"), 1)
}

// ─────────────────────────────────────────────────────────────────────────────
// Model index
// ─────────────────────────────────────────────────────────────────────────────

func TestBuildModelIndex(t *testing.T) {
	t.Parallel()
	p, _, _ := newTestPreparer(t)

	stats := p.BuildModelIndex(testutil.SampleCatalog())

	assert.Equal(t, 4, stats.Indexed)
	assert.Equal(t, 1, stats.Skipped)
	assert.Equal(t, 4, stats.Keys)
	assert.Equal(t, []string{"spu-mate60pro"}, entryIDs(p.LookupModel("Mate60Pro")))
	assert.Equal(t, []string{"spu-y50"}, entryIDs(p.LookupModel("y50")))
	assert.Equal(t, []string{"spu-watch4"}, entryIDs(p.LookupModel("watch4pro")))
	assert.Equal(t, []string{"spu-xiaomi14"}, entryIDs(p.LookupModel("14")))
}

func TestBuildModelIndex_MergesIdenticalKeys(t *testing.T) {
	p, _, _ := newTestPreparer(t)
	p.BuildModelIndex([]catalog.Entry{
		{ID: "a", Name: "华为 Mate 60 Pro", Brand: "华为"},
		{ID: "b", Name: "HUAWEI Mate60 Pro 典藏"},
	})
	assert.Equal(t, []string{"a", "b"}, entryIDs(p.LookupModel("mate60pro")))
}

// ─────────────────────────────────────────────────────────────────────────────
// Spec index
// ─────────────────────────────────────────────────────────────────────────────

func TestBuildSpecIndex(t *testing.T) {
	t.Parallel()
	p, _, _ := newTestPreparer(t)

	stats := p.BuildSpecIndex(testutil.SampleCatalog())

	assert.Equal(t, 4, stats.Entries)
	assert.Equal(t, 5, stats.DistinctColors)
	assert.Equal(t, 5, stats.DistinctSpecs)
	assert.Equal(t, 3, stats.DistinctCombos)

	assert.Equal(t, []string{"spu-mate60pro"}, p.EntriesWithSpec("12GB+512GB"))
	assert.Equal(t, []string{"spu-xiaomi14"}, p.EntriesWithSpec("16+1T"))
	assert.Equal(t, []string{"spu-y50"}, p.EntriesWithCombo("5G版"))
	assert.Equal(t, []string{"spu-watch4"}, p.EntriesWithColor("黑色"))
	assert.Nil(t, p.EntriesWithColor("远峰蓝"))

	freq := p.Frequency(SpecColor)
	require.Len(t, freq, 5)
	assert.Equal(t, ValueCount{Value: "雅川青", Count: 1}, freq[0])
	assert.Equal(t, ValueCount{Value: "星光色", Count: 1}, freq[2], "duplicate variants of one entry count once")
}

func TestBuildSpecIndex_FrequencyOrder(t *testing.T) {
	p, _, _ := newTestPreparer(t)
	p.BuildSpecIndex([]catalog.Entry{
		{ID: "a", Variants: []catalog.Variant{{Color: "黑"}, {Color: "白"}}},
		{ID: "b", Variants: []catalog.Variant{{Color: "白"}}},
		{ID: "c", Variants: []catalog.Variant{{Color: "红"}, {Color: "黑"}}},
		{ID: "d", Variants: []catalog.Variant{{Color: "红"}, {Color: "红"}}},
		{ID: "e", Variants: []catalog.Variant{{Color: "绿"}}},
	})

	assert.Equal(t, []ValueCount{
		{Value: "黑", Count: 2},
		{Value: "白", Count: 2},
		{Value: "红", Count: 2},
		{Value: "绿", Count: 1},
	}, p.Frequency(SpecColor))
	assert.Equal(t, []string{"a", "c"}, p.EntriesWithColor("黑"))
	assert.Empty(t, p.Frequency(SpecCombo))
	assert.Nil(t, p.Frequency("unknown"))
}

// ─────────────────────────────────────────────────────────────────────────────
// PreprocessCatalog
// ─────────────────────────────────────────────────────────────────────────────

func TestPreprocessCatalog(t *testing.T) {
	t.Parallel()
	p, _, log := newTestPreparer(t)

	out, report := p.PreprocessCatalog(testutil.SampleCatalog())

	require.Len(t, out, 4)
	assert.Equal(t, 5, report.Total)
	assert.Equal(t, 4, report.Enriched)
	assert.Equal(t, 1, report.Skipped)
	assert.Zero(t, report.BrandFailures)
	assert.Zero(t, report.ModelFailures)
	assert.Empty(t, report.Warnings)
	assert.Equal(t, 4, p.MatchableCount())
	assert.True(t, log.HasMessage("warn", "catalog entry skipped: blank name"))
	reason, ok := log.Field("catalog entry skipped: blank name", "error")
	require.True(t, ok)
	assert.Equal(t, "[CAT_002] entry has no display name: spu-blank", reason)

	mate := out[0]
	assert.Equal(t, "spu-mate60pro", mate.ID)
	assert.Equal(t, "华为", mate.ExtractedBrand)
	assert.Equal(t, "mate60pro", mate.ExtractedModel)
	assert.Equal(t, "mate60pro", mate.NormalizedModel)
	assert.Equal(t, 1, mate.Simplicity)
	assert.Equal(t, fixedClock()(), mate.EnrichedAt)
	assert.Len(t, mate.Variants, 2)

	watch := out[2]
	assert.Equal(t, "华为", watch.ExtractedBrand, "brand resolved from the alternate spelling in the name")
	assert.Equal(t, "watch4pro", watch.ExtractedModel)

	xiaomi := out[3]
	assert.Equal(t, "14", xiaomi.ExtractedModel)
	assert.Zero(t, xiaomi.Simplicity)

	for _, e := range out {
		assert.GreaterOrEqual(t, e.Simplicity, 0)
	}
}

func TestPreprocessCatalog_Simplicity(t *testing.T) {
	p, _, _ := newTestPreparer(t)
	out, _ := p.PreprocessCatalog([]catalog.Entry{{ID: "a", Name: "vivo Y50", Brand: "vivo"}})
	require.Len(t, out, 1)
	assert.Equal(t, "y50", out[0].ExtractedModel)
	assert.Equal(t, 1, out[0].Simplicity)
}

func TestPreprocessCatalog_QualityWarnings(t *testing.T) {
	t.Parallel()
	p, _, log := newTestPreparer(t)

	_, report := p.PreprocessCatalog([]catalog.Entry{
		{ID: "a", Name: "Nokia 3310"},
		{ID: "b", Name: "vivo Y50"},
	})

	assert.Equal(t, 1, report.BrandFailures)
	assert.InDelta(t, 0.5, report.BrandFailureRate, 1e-9)
	require.Len(t, report.Warnings, 1)
	assert.Contains(t, report.Warnings[0], "brand failure rate")
	assert.Equal(t, 1, log.CountLevel("warn"))
	assert.Equal(t, report.Warnings, p.Stats().Preprocess.Warnings)
}

func TestPreprocessCatalog_SlowPassWarning(t *testing.T) {
	t0 := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	calls := 0
	clock := func() time.Time {
		calls++
		return t0.Add(time.Duration(calls-1) * 6 * time.Second)
	}
	p, _, _ := newTestPreparer(t, WithClock(clock))

	_, report := p.PreprocessCatalog([]catalog.Entry{{ID: "b", Name: "vivo Y50"}})

	assert.Equal(t, 6*time.Second, report.Duration)
	require.Len(t, report.Warnings, 1)
	assert.Contains(t, report.Warnings[0], "enrichment took")
}

func TestPreprocessCatalog_SubsetRebuild(t *testing.T) {
	p, _, _ := newTestPreparer(t)
	all := testutil.SampleCatalog()

	p.PreprocessCatalog(all)
	require.Equal(t, 4, p.MatchableCount())

	out, _ := p.PreprocessCatalog(all[:2])
	assert.Equal(t, 2, p.MatchableCount())
	assert.Equal(t, []string{"spu-mate60pro", "spu-y50"}, []string{out[0].ID, out[1].ID})
}

func TestPreprocessCatalog_Empty(t *testing.T) {
	p, _, _ := newTestPreparer(t)
	out, report := p.PreprocessCatalog(nil)
	assert.Empty(t, out)
	assert.Zero(t, report.BrandFailureRate)
	assert.Zero(t, p.MatchableCount())
}

//Personal.AI order the ending
