package common

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStripForModel_QueryPolicy(t *testing.T) {
	t.Parallel()
	n := NewCatalogTextNormalizer(QueryPolicy)

	cases := []struct {
		name  string
		text  string
		forms []string
		want  string
	}{
		{"brand capacity color", "华为 Mate 60 Pro 12GB+512GB 雅川青", []string{"华为", "HUAWEI"}, "mate 60 pro"},
		{"every brand form", "HUAWEI Mate 60 Pro 华为", []string{"华为", "HUAWEI"}, "mate 60 pro"},
		{"network token", "vivo Y50 5G", []string{"vivo"}, "y50"},
		{"no brand", "Redmi Note 13 Pro 全网通 8+256", nil, "redmi note 13 pro"},
		{"single capacity", "OPPO Reno 11 256GB 手机", []string{"OPPO"}, "reno 11"},
		{"terabyte", "Mate X5 1TB", []string{"华为"}, "mate x5"},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.want, n.StripForModel(tc.text, tc.forms))
		})
	}
}

func TestStripForModel_IndexPolicyRemovesOnce(t *testing.T) {
	t.Parallel()
	n := NewCatalogTextNormalizer(IndexPolicy)

	assert.Equal(t, "huawei mate 60 pro", n.StripForModel("HUAWEI Mate 60 Pro 华为", []string{"华为", "HUAWEI"}))
	assert.Equal(t, "mate 60 pro", n.StripForModel("HUAWEI Mate 60 Pro", []string{"华为", "HUAWEI"}))
	assert.Equal(t, "mate 60 华为", n.StripForModel("华为 Mate 60 华为", []string{"华为"}))
	assert.Equal(t, "index", n.Policy().String())
}

func TestNormalizeModelView(t *testing.T) {
	t.Parallel()
	cases := map[string]string{
		"mate60pro":      "mate 60 pro",
		"iphone15promax": "iphone 15 pro max",
		"y50":            "y 50",
		"redminote13":    "redmi note 13",
		"x 100  pro":     "x 100 pro",
		"galaxyfold5":    "galaxy fold 5",
		"k70promax":      "k 70 pro max",
	}
	for in, want := range cases {
		assert.Equal(t, want, NormalizeModelView(in), in)
	}
}

func TestNormalizeModelView_KeepsOrdinaryWords(t *testing.T) {
	t.Parallel()
	for _, w := range []string{"satellite", "repair", "maxwell", "proton", "airpods"} {
		assert.Equal(t, w, NormalizeModelView(w), w)
	}
	assert.Equal(t, "satellite 60 pro", NormalizeModelView("satellite60pro"))
}

func TestRunModelPipeline_TierPrecedence(t *testing.T) {
	t.Parallel()

	cases := []struct {
		stripped string
		value    string
		conf     float64
		tier     string
	}{
		{"mate 60 pro", "mate60pro", 1.0, "complex"},
		{"mate60pro", "mate60pro", 1.0, "complex"},
		{"iphone 15 pro max", "iphone15promax", 1.0, "complex"},
		{"redmi note 13 pro", "redminote13pro", 1.0, "complex"},
		{"x200 pro", "x200pro", 1.0, "complex"},
		{"watch gt 4", "watchgt4", 0.85, "word"},
		{"band 8", "band8", 0.85, "type"},
		{"y50", "y50", 0.9, "code"},
		{"k70", "k70", 0.9, "code"},
		{"magic 6", "magic6", 0.85, "numeric"},
		{"70", "70", 0.85, "numeric"},
	}
	for _, tc := range cases {
		m, ok := RunModelPipeline(tc.stripped)
		require.True(t, ok, tc.stripped)
		assert.Equal(t, tc.value, m.Value, tc.stripped)
		assert.Equal(t, tc.conf, m.Confidence, tc.stripped)
		assert.Equal(t, tc.tier, m.Tier, tc.stripped)
	}
}

func TestRunModelPipeline_Misses(t *testing.T) {
	t.Parallel()
	for _, s := range []string{"", "   ", "2024", "5", "雅川青"} {
		_, ok := RunModelPipeline(s)
		assert.False(t, ok, s)
	}
}

func TestCatalogTextNormalizer_ExtractModel(t *testing.T) {
	t.Parallel()
	n := NewCatalogTextNormalizer(QueryPolicy)

	m, ok := n.ExtractModel("vivo Y50 5G", []string{"vivo"})
	require.True(t, ok)
	assert.Equal(t, "y50", m.Value)
	assert.Equal(t, 0.9, m.Confidence)

	m, ok = n.ExtractModel("华为 Mate 60 Pro", []string{"华为"})
	require.True(t, ok)
	assert.Equal(t, "mate60pro", m.Value)
	assert.Equal(t, 1.0, m.Confidence)
}

func TestModelKeyHelpers(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "mate 60 pro", NormalizeModelKey("  Mate  60 Pro! "))
	assert.Equal(t, "mate-x5 8+256", NormalizeModelKey("Mate-X5 (8+256)"))
	assert.Equal(t, "mate60pro", CompactModel("Mate 60-Pro"))
	assert.Equal(t, "a b", CollapseSpaces(" a \t\n b "))
}

//Personal.AI order the ending
