// Package version_matcher scores compatibility between an input version and a
// catalog variant's version.
package version_matcher

import (
	"fmt"
	"strings"

	"github.com/turtacn/ProductMatch/internal/domain/attribute"
)

// ---------------------------------------------------------------------------
// Result
// ---------------------------------------------------------------------------

// MatchKind identifies which rule decided a MatchResult.
type MatchKind string

const (
	KindNone        MatchKind = "none"
	KindInputOnly   MatchKind = "input-only"
	KindCatalogOnly MatchKind = "catalog-only"
	KindExact       MatchKind = "exact"
	KindCompatible  MatchKind = "compatible"
	KindPriority    MatchKind = "priority"
)

// MatchResult is the outcome of comparing two versions.
type MatchResult struct {
	Matched bool      `json:"matched"`
	Score   float64   `json:"score"`
	Kind    MatchKind `json:"kind"`
	Reason  string    `json:"reason"`
}

// ---------------------------------------------------------------------------
// Config
// ---------------------------------------------------------------------------

// Category is the coarse grouping used by the priority rule.
type Category string

const (
	CategoryNetwork  Category = "network"
	CategoryStandard Category = "standard"
	CategoryPremium  Category = "premium"
)

// VersionMatcherConfig holds the score table and the relation tables.
type VersionMatcherConfig struct {
	NoVersionScore   float64
	InputOnlyScore   float64
	CatalogOnlyScore float64
	ExactScore       float64
	CompatibleScore  float64
	PriorityScore    float64
	MismatchScore    float64

	// Exclusive lists symmetric pairs that can never match.
	Exclusive [][2]string
	// Compatible maps a name to the names it accepts, checked in both directions.
	Compatible map[string][]string
	// Categories assigns names to a coarse category; missing names are standard.
	Categories map[string]Category
}

// DefaultExclusivePairs are the mutually exclusive versions.
var DefaultExclusivePairs = [][2]string{
	{"蓝牙版", "eSIM版"},
	{"WiFi版", "蜂窝版"},
	{"4G版", "5G版"},
	{"标准版", "尊享版"},
}

// DefaultCompatibility is the built-in compatibility table.
var DefaultCompatibility = map[string][]string{
	"全网通":   {"5G版", "4G版"},
	"蜂窝版":   {"eSIM版"},
	"WiFi版": {"WLAN版"},
}

// DefaultCategories is the built-in category table.
var DefaultCategories = map[string]Category{
	"5G版":    CategoryNetwork,
	"4G版":    CategoryNetwork,
	"全网通":    CategoryNetwork,
	"蓝牙版":    CategoryNetwork,
	"eSIM版":  CategoryNetwork,
	"WiFi版":  CategoryNetwork,
	"WLAN版":  CategoryNetwork,
	"蜂窝版":    CategoryNetwork,
	"标准版":    CategoryStandard,
	"青春版":    CategoryStandard,
	"活力版":    CategoryStandard,
	"Pro版":   CategoryStandard,
	"尊享版":    CategoryPremium,
	"典藏版":    CategoryPremium,
	"高配版":    CategoryPremium,
	"旗舰版":    CategoryPremium,
	"至尊版":    CategoryPremium,
	"限量版":    CategoryPremium,
	"纪念版":    CategoryPremium,
	"联名版":    CategoryPremium,
	"定制版":    CategoryPremium,
	"保时捷设计":  CategoryPremium,
	"非凡大师":   CategoryPremium,
}

// DefaultVersionMatcherConfig returns the built-in score and relation tables.
func DefaultVersionMatcherConfig() VersionMatcherConfig {
	return VersionMatcherConfig{
		NoVersionScore:   1.0,
		InputOnlyScore:   0.7,
		CatalogOnlyScore: 0.95,
		ExactScore:       1.0,
		CompatibleScore:  0.95,
		PriorityScore:    0.83,
		MismatchScore:    0.6,
		Exclusive:        DefaultExclusivePairs,
		Compatible:       DefaultCompatibility,
		Categories:       DefaultCategories,
	}
}

// ---------------------------------------------------------------------------
// Matcher
// ---------------------------------------------------------------------------

// VersionMatcher compares an input version with a catalog version.  A nil
// pointer means the side carries no version.
type VersionMatcher interface {
	Match(input, catalog *attribute.Version) MatchResult
	Score(input, catalog *attribute.Version) float64
	IsMatch(input, catalog *attribute.Version) bool
}

type versionMatcherImpl struct {
	cfg        VersionMatcherConfig
	exclusive  map[[2]string]struct{}
	compatible map[[2]string]struct{}
}

// NewVersionMatcher builds a matcher.  Nil relation tables fall back to the
// built-in ones.
func NewVersionMatcher(cfg VersionMatcherConfig) VersionMatcher {
	if cfg.Exclusive == nil {
		cfg.Exclusive = DefaultExclusivePairs
	}
	if cfg.Compatible == nil {
		cfg.Compatible = DefaultCompatibility
	}
	if cfg.Categories == nil {
		cfg.Categories = DefaultCategories
	}

	m := &versionMatcherImpl{
		cfg:        cfg,
		exclusive:  make(map[[2]string]struct{}, len(cfg.Exclusive)*2),
		compatible: make(map[[2]string]struct{}),
	}
	for _, p := range cfg.Exclusive {
		m.exclusive[[2]string{p[0], p[1]}] = struct{}{}
		m.exclusive[[2]string{p[1], p[0]}] = struct{}{}
	}
	for from, tos := range cfg.Compatible {
		for _, to := range tos {
			m.compatible[[2]string{from, to}] = struct{}{}
			m.compatible[[2]string{to, from}] = struct{}{}
		}
	}
	return m
}

func (m *versionMatcherImpl) Match(input, catalog *attribute.Version) MatchResult {
	in, cat := versionName(input), versionName(catalog)

	switch {
	case in == "" && cat == "":
		return MatchResult{Matched: true, Score: m.cfg.NoVersionScore, Kind: KindNone, Reason: "neither side has a version"}
	case cat == "":
		return MatchResult{Score: m.cfg.InputOnlyScore, Kind: KindInputOnly, Reason: fmt.Sprintf("catalog has no version, input has %s", in)}
	case in == "":
		return MatchResult{Score: m.cfg.CatalogOnlyScore, Kind: KindCatalogOnly, Reason: fmt.Sprintf("input has no version, catalog has %s", cat)}
	}

	if in == cat {
		return MatchResult{Matched: true, Score: m.cfg.ExactScore, Kind: KindExact, Reason: "identical version " + in}
	}
	if _, ok := m.exclusive[[2]string{in, cat}]; ok {
		return MatchResult{Score: m.cfg.MismatchScore, Kind: KindExact, Reason: fmt.Sprintf("%s and %s are mutually exclusive", in, cat)}
	}
	if _, ok := m.compatible[[2]string{in, cat}]; ok {
		return MatchResult{Matched: true, Score: m.cfg.CompatibleScore, Kind: KindCompatible, Reason: fmt.Sprintf("%s is compatible with %s", in, cat)}
	}
	if input.Priority == catalog.Priority && m.category(in) == m.category(cat) {
		return MatchResult{Score: m.cfg.PriorityScore, Kind: KindPriority,
			Reason: fmt.Sprintf("%s and %s share priority %d in category %s", in, cat, input.Priority, m.category(in))}
	}
	return MatchResult{Score: m.cfg.MismatchScore, Kind: KindExact, Reason: fmt.Sprintf("%s does not match %s", in, cat)}
}

func (m *versionMatcherImpl) Score(input, catalog *attribute.Version) float64 {
	return m.Match(input, catalog).Score
}

func (m *versionMatcherImpl) IsMatch(input, catalog *attribute.Version) bool {
	return m.Match(input, catalog).Matched
}

func (m *versionMatcherImpl) category(name string) Category {
	if c, ok := m.cfg.Categories[name]; ok {
		return c
	}
	return CategoryStandard
}

func versionName(v *attribute.Version) string {
	if v == nil {
		return ""
	}
	return strings.TrimSpace(v.Name)
}

//Personal.AI order the ending
