// Package attr_extractor pulls brand, model, color, capacity and version out
// of one free-form product description, each with a confidence and source.
package attr_extractor

import (
	"sort"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/turtacn/ProductMatch/internal/domain/attribute"
	"github.com/turtacn/ProductMatch/internal/domain/catalog"
	"github.com/turtacn/ProductMatch/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/ProductMatch/internal/intelligence/common"
)

// ---------------------------------------------------------------------------
// Interface
// ---------------------------------------------------------------------------

// AttributeExtractor extracts attributes from product text.  Extraction has
// no side effects; the Set* methods replace a table wholesale.
type AttributeExtractor interface {
	ExtractBrand(text string) attribute.Extraction[string]
	ExtractModel(text, brand string) attribute.Extraction[string]
	ExtractColor(text string) attribute.Extraction[string]
	ExtractCapacity(text string) attribute.Extraction[string]
	ExtractVersion(text string) attribute.Extraction[attribute.Version]

	// ExtractAll runs brand, model, color, capacity and version in that order
	// and then classifies the product type.
	ExtractAll(text string) *attribute.Attributes

	SetBrands(brands []catalog.Brand)
	SetColorVocabulary(colors []string)
	SetColorClusters(clusters map[string][]string)
	SetBasicColors(colors []common.BasicColor)

	// ClassifyProductType applies the product-type rules to text and an
	// already extracted model.
	ClassifyProductType(text, model string) attribute.ProductType

	// BrandForms returns the canonical and alternate forms for brand, looked
	// up case-insensitively in the brand table.
	BrandForms(brand string) []string
}

// ---------------------------------------------------------------------------
// Config
// ---------------------------------------------------------------------------

// ExtractorConfig holds the initial tables.
type ExtractorConfig struct {
	Brands          []catalog.Brand
	ColorVocabulary []string
	ColorClusters   map[string][]string
	BasicColors     []common.BasicColor
	VersionTiers    []common.VersionTier
	ProductTypes    []common.ProductTypeRule
}

// DefaultExtractorConfig returns the built-in tables and an empty brand table.
func DefaultExtractorConfig() ExtractorConfig {
	return ExtractorConfig{
		ColorVocabulary: common.DefaultColorVocabulary,
		ColorClusters:   common.DefaultColorClusters,
		BasicColors:     common.DefaultBasicColors,
		VersionTiers:    common.DefaultVersionTiers,
		ProductTypes:    common.DefaultProductTypeRules,
	}
}

// ---------------------------------------------------------------------------
// Implementation
// ---------------------------------------------------------------------------

type clusterMember struct {
	variant string
	primary string
}

type extractorImpl struct {
	mu sync.RWMutex

	brands   []catalog.Brand
	vocab    []string
	clusters []clusterMember
	basic    []common.BasicColor

	versions     []compiledTier
	productTypes []common.ProductTypeRule

	normalizer *common.CatalogTextNormalizer
	logger     logging.Logger
	metrics    common.MatchingMetrics
}

// NewAttributeExtractor builds an extractor from cfg.  Empty tables in cfg
// fall back to the built-in ones, except the brand table.
func NewAttributeExtractor(cfg ExtractorConfig, logger logging.Logger, metrics common.MatchingMetrics) AttributeExtractor {
	def := DefaultExtractorConfig()
	if cfg.ColorVocabulary == nil {
		cfg.ColorVocabulary = def.ColorVocabulary
	}
	if cfg.ColorClusters == nil {
		cfg.ColorClusters = def.ColorClusters
	}
	if cfg.BasicColors == nil {
		cfg.BasicColors = def.BasicColors
	}
	if cfg.VersionTiers == nil {
		cfg.VersionTiers = def.VersionTiers
	}
	if cfg.ProductTypes == nil {
		cfg.ProductTypes = def.ProductTypes
	}

	e := &extractorImpl{
		versions:     compileTiers(cfg.VersionTiers),
		productTypes: cfg.ProductTypes,
		normalizer:   common.NewCatalogTextNormalizer(common.QueryPolicy),
		logger:       logging.OrNop(logger).Named("extractor"),
		metrics:      common.OrNoopMetrics(metrics),
	}
	e.SetBrands(cfg.Brands)
	e.SetColorVocabulary(cfg.ColorVocabulary)
	e.SetColorClusters(cfg.ColorClusters)
	e.SetBasicColors(cfg.BasicColors)
	return e
}

// SortBrands orders brands by canonical-name rune length, longest first.
// Equal lengths keep table order.
func SortBrands(brands []catalog.Brand) []catalog.Brand {
	out := make([]catalog.Brand, len(brands))
	copy(out, brands)
	sort.SliceStable(out, func(i, j int) bool {
		return utf8.RuneCountInString(out[i].Name) > utf8.RuneCountInString(out[j].Name)
	})
	return out
}

func (e *extractorImpl) SetBrands(brands []catalog.Brand) {
	sorted := SortBrands(brands)
	e.mu.Lock()
	e.brands = sorted
	e.mu.Unlock()
}

func (e *extractorImpl) SetColorVocabulary(colors []string) {
	seen := make(map[string]struct{}, len(colors))
	uniq := make([]string, 0, len(colors))
	for _, c := range colors {
		c = strings.TrimSpace(c)
		if c == "" {
			continue
		}
		if _, dup := seen[c]; dup {
			continue
		}
		seen[c] = struct{}{}
		uniq = append(uniq, c)
	}
	sorted := common.SortLongestFirst(uniq)
	e.mu.Lock()
	e.vocab = sorted
	e.mu.Unlock()
}

func (e *extractorImpl) SetColorClusters(clusters map[string][]string) {
	primaries := make([]string, 0, len(clusters))
	for p := range clusters {
		primaries = append(primaries, p)
	}
	sort.Strings(primaries)

	members := make([]clusterMember, 0, len(clusters)*3)
	for _, p := range primaries {
		members = append(members, clusterMember{variant: p, primary: p})
		for _, v := range clusters[p] {
			if v = strings.TrimSpace(v); v != "" {
				members = append(members, clusterMember{variant: v, primary: p})
			}
		}
	}
	sort.SliceStable(members, func(i, j int) bool {
		return utf8.RuneCountInString(members[i].variant) > utf8.RuneCountInString(members[j].variant)
	})

	e.mu.Lock()
	e.clusters = members
	e.mu.Unlock()
}

func (e *extractorImpl) SetBasicColors(colors []common.BasicColor) {
	out := make([]common.BasicColor, len(colors))
	copy(out, colors)
	e.mu.Lock()
	e.basic = out
	e.mu.Unlock()
}

// ---------------------------------------------------------------------------
// Brand and model
// ---------------------------------------------------------------------------

func (e *extractorImpl) ExtractBrand(text string) attribute.Extraction[string] {
	e.mu.RLock()
	brands := e.brands
	e.mu.RUnlock()
	return MatchBrand(brands, text)
}

// MatchBrand scans brands in order: canonical name at 1.0, then alternate
// spelling at 0.95.  The first hit wins and always reports the canonical name.
// brands must already be sorted with SortBrands.
func MatchBrand(brands []catalog.Brand, text string) attribute.Extraction[string] {
	lower := strings.ToLower(text)
	if strings.TrimSpace(lower) == "" {
		return attribute.Miss[string]()
	}
	for _, b := range brands {
		if b.Name != "" && strings.Contains(lower, strings.ToLower(b.Name)) {
			return attribute.Hit(b.Name, 1.0, attribute.SourceExact)
		}
		if b.Spell != "" && strings.Contains(lower, strings.ToLower(b.Spell)) {
			return attribute.Hit(b.Name, 0.95, attribute.SourceExact)
		}
	}
	return attribute.Miss[string]()
}

func (e *extractorImpl) BrandForms(brand string) []string {
	brand = strings.TrimSpace(brand)
	if brand == "" {
		return nil
	}
	e.mu.RLock()
	defer e.mu.RUnlock()
	for _, b := range e.brands {
		if strings.EqualFold(b.Name, brand) || (b.Spell != "" && strings.EqualFold(b.Spell, brand)) {
			return b.Forms()
		}
	}
	return []string{brand}
}

func (e *extractorImpl) ExtractModel(text, brand string) attribute.Extraction[string] {
	m, ok := e.normalizer.ExtractModel(text, e.BrandForms(brand))
	if !ok {
		return attribute.Miss[string]()
	}
	return attribute.Hit(m.Value, m.Confidence, attribute.SourceFuzzy)
}

// ---------------------------------------------------------------------------
// ExtractAll
// ---------------------------------------------------------------------------

func (e *extractorImpl) ExtractAll(text string) *attribute.Attributes {
	attrs := &attribute.Attributes{
		Raw:        text,
		Normalized: common.CollapseSpaces(text),
	}

	attrs.Brand = e.ExtractBrand(text)
	attrs.Model = e.ExtractModel(text, attrs.Brand.Get())
	attrs.Color = e.ExtractColor(text)
	attrs.Capacity = e.ExtractCapacity(text)
	attrs.Version = e.ExtractVersion(text)
	attrs.ProductType = e.ClassifyProductType(text, attrs.Model.Get())

	e.metrics.RecordExtraction("brand", attrs.Brand.Found())
	e.metrics.RecordExtraction("model", attrs.Model.Found())
	e.metrics.RecordExtraction("color", attrs.Color.Found())
	e.metrics.RecordExtraction("capacity", attrs.Capacity.Found())
	e.metrics.RecordExtraction("version", attrs.Version.Found())

	e.logger.Debug("attributes extracted",
		logging.String("input", text),
		logging.String("brand", attrs.Brand.Get()),
		logging.String("model", attrs.Model.Get()),
		logging.String("color", attrs.Color.Get()),
		logging.String("capacity", attrs.Capacity.Get()),
		logging.String("version", attrs.Version.Get().Name),
		logging.String("product_type", string(attrs.ProductType)))
	return attrs
}

func (e *extractorImpl) ClassifyProductType(text, model string) attribute.ProductType {
	lower := strings.ToLower(text)
	model = strings.ToLower(model)
	t, idx := common.FirstMatch(e.productTypes, func(r common.ProductTypeRule) (attribute.ProductType, bool) {
		for _, kw := range r.Keywords {
			if strings.Contains(lower, kw) {
				return r.Type, true
			}
		}
		if model == "" {
			return "", false
		}
		for _, sub := range r.ModelContains {
			if strings.Contains(model, sub) {
				return r.Type, true
			}
		}
		return "", false
	})
	if idx < 0 {
		return attribute.ProductPhone
	}
	return t
}

//Personal.AI order the ending
