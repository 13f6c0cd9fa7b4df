package bootstrap

import (
	"context"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/ProductMatch/internal/application/matching"
	"github.com/turtacn/ProductMatch/internal/config"
	"github.com/turtacn/ProductMatch/internal/intelligence/common"
	"github.com/turtacn/ProductMatch/internal/testutil"
	"github.com/turtacn/ProductMatch/pkg/errors"
)

func newEngine(t *testing.T, mutate func(*config.Config)) (*Engine, *testutil.MockLogger) {
	t.Helper()
	cfg := config.Default()
	if mutate != nil {
		mutate(cfg)
	}
	log := testutil.NewMockLogger()
	eng, err := New(cfg, WithLogger(log))
	require.NoError(t, err)
	return eng, log
}

func TestNew_WiresEngine(t *testing.T) {
	eng, log := newEngine(t, func(c *config.Config) { c.Metrics.Enabled = true })
	ctx := context.Background()

	require.NotNil(t, eng.Gatherer)
	assert.True(t, log.HasMessage("info", "matching engine assembled"))

	require.NoError(t, eng.Orchestrator.Initialize(ctx, testutil.SampleBrands(), testutil.SampleCatalog()))
	res, err := eng.Orchestrator.Match(ctx, "vivo Y50 5G 8GB+256GB 星光色")
	require.NoError(t, err)
	assert.Equal(t, matching.StatusMatched, res.Status)
	assert.Equal(t, "sku-4", res.MatchedIdentifiers.VariantID)

	families, err := eng.Gatherer.Gather()
	require.NoError(t, err)
	var matched float64
	for _, mf := range families {
		if mf.GetName() != "pmatch_matches_total" {
			continue
		}
		for _, m := range mf.GetMetric() {
			for _, lp := range m.GetLabel() {
				if lp.GetName() == "status" && lp.GetValue() == string(matching.StatusMatched) {
					matched += m.GetCounter().GetValue()
				}
			}
		}
	}
	assert.Equal(t, 1.0, matched)
}

func TestNew_MetricsOptions(t *testing.T) {
	eng, _ := newEngine(t, func(c *config.Config) {
		c.Metrics.Enabled = true
		c.Metrics.Subsystem = "engine"
		c.Metrics.ConstLabels = map[string]string{"site": "east"}
		c.Metrics.GoMetrics = true
		c.Metrics.ProcessMetrics = true
	})
	ctx := context.Background()
	require.NoError(t, eng.Orchestrator.Initialize(ctx, testutil.SampleBrands(), testutil.SampleCatalog()))
	_, err := eng.Orchestrator.Match(ctx, "vivo Y50 5G 8GB+256GB 星光色")
	require.NoError(t, err)

	families, err := eng.Gatherer.Gather()
	require.NoError(t, err)
	byName := make(map[string]bool, len(families))
	site := ""
	for _, mf := range families {
		byName[mf.GetName()] = true
		if mf.GetName() != "pmatch_engine_matches_total" {
			continue
		}
		for _, lp := range mf.GetMetric()[0].GetLabel() {
			if lp.GetName() == "site" {
				site = lp.GetValue()
			}
		}
	}
	assert.True(t, byName["go_goroutines"])
	assert.True(t, byName["pmatch_engine_matches_total"])
	assert.False(t, byName["pmatch_matches_total"])
	assert.Equal(t, "east", site)
	if runtime.GOOS == "linux" {
		assert.True(t, byName["process_start_time_seconds"])
	}
}

func TestNew_MetricsDisabled(t *testing.T) {
	eng, _ := newEngine(t, nil)
	assert.Nil(t, eng.Gatherer)
}

func TestNew_NilConfigUsesDefaults(t *testing.T) {
	eng, err := New(nil, WithLogger(testutil.NewMockLogger()))
	require.NoError(t, err)
	assert.NotNil(t, eng.Orchestrator)
}

func TestNew_InvalidConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Log.Level = "verbose"
	_, err := New(cfg, WithLogger(testutil.NewMockLogger()))
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.CodeConfigLoad))
}

func TestNew_CustomSelector(t *testing.T) {
	cfg := config.Default()
	eng, err := New(cfg,
		WithLogger(testutil.NewMockLogger()),
		WithSPUSelector(matching.NewAttributeSPUSelector(1.0)))
	require.NoError(t, err)
	ctx := context.Background()
	require.NoError(t, eng.Orchestrator.Initialize(ctx, testutil.SampleBrands(), testutil.SampleCatalog()))

	res, err := eng.Orchestrator.Match(ctx, "vivo Y5")
	require.NoError(t, err)
	assert.Equal(t, matching.StatusUnmatched, res.Status)
}

func TestApplyConfig_ReloadsCapacitySynonyms(t *testing.T) {
	eng, log := newEngine(t, nil)
	assert.Equal(t, "大杯", eng.Preparer.NormalizeSpec("大杯"))

	cfg := config.Default()
	cfg.Catalog.CapacityNormalizations = map[string]string{"大杯": "8+128"}
	eng.ApplyConfig(cfg)

	assert.Equal(t, "8+128", eng.Preparer.NormalizeSpec("大杯"))
	assert.True(t, log.HasMessage("info", "configuration applied"))

	eng.ApplyConfig(nil)
	assert.Equal(t, "8+128", eng.Preparer.NormalizeSpec("大杯"))
}

func TestApplyConfig_BasicColors(t *testing.T) {
	eng, _ := newEngine(t, nil)
	cfg := config.Default()
	cfg.Extractor.BasicColors = map[string]string{"棕": "棕色"}

	assert.False(t, eng.Extractor.ExtractColor("Mate60 棕").Found())
	eng.ApplyConfig(cfg)
	assert.Equal(t, "棕色", eng.Extractor.ExtractColor("Mate60 棕").Get())
}

func TestWatch_MissingFile(t *testing.T) {
	eng, _ := newEngine(t, nil)
	_, err := eng.Watch(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestBasicColors_SortedByGlyph(t *testing.T) {
	got := basicColors(map[string]string{"黑": "黑色", "白": "白色", "红": "红色"})
	want := []common.BasicColor{
		{Glyph: "白", Family: "白色"},
		{Glyph: "红", Family: "红色"},
		{Glyph: "黑", Family: "黑色"},
	}
	assert.Equal(t, want, got)
}

func TestVersionConfig_CarriesScores(t *testing.T) {
	vc := versionConfig(config.VersionConfig{MismatchScore: 0.1, ExactScore: 0.9})
	assert.Equal(t, 0.1, vc.MismatchScore)
	assert.Equal(t, 0.9, vc.ExactScore)
	assert.NotEmpty(t, vc.Exclusive)
}

//Personal.AI order the ending
