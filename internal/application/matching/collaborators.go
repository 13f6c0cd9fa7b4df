package matching

import (
	"context"
	"strings"
	"unicode"

	"github.com/turtacn/ProductMatch/internal/domain/attribute"
	"github.com/turtacn/ProductMatch/internal/domain/catalog"
	"github.com/turtacn/ProductMatch/internal/intelligence/version_matcher"
)

// ─────────────────────────────────────────────────────────────────────────────
// Collaborators
// ─────────────────────────────────────────────────────────────────────────────

// Preprocessor cleans raw input text before extraction.
type Preprocessor interface {
	Preprocess(ctx context.Context, text string) (string, error)
}

// SPUSelector picks the best catalog entry for the extracted attributes.  A
// nil candidate with a nil error means no entry qualified.
type SPUSelector interface {
	SelectSPU(ctx context.Context, attrs *attribute.Attributes, entries []*catalog.EnrichedEntry, cb *Callbacks) (*CandidateMatch, error)
}

// SKUSelector picks the best variant of the selected entry.  A nil variant
// with a nil error means no variant qualified.
type SKUSelector interface {
	SelectSKU(ctx context.Context, attrs *attribute.Attributes, entry *catalog.EnrichedEntry, cb *Callbacks) (*VariantMatch, error)
}

// ─────────────────────────────────────────────────────────────────────────────
// Callback bundle
// ─────────────────────────────────────────────────────────────────────────────

// Callbacks is handed to selectors on every call.  It is rebuilt on every
// Initialize/Reindex and is read-only in between.
type Callbacks struct {
	ExtractBrand   func(text string) attribute.Extraction[string]
	ExtractModel   func(text, brand string) attribute.Extraction[string]
	ExtractVersion func(text string) attribute.Extraction[attribute.Version]

	// ExtractSPUCore reduces a display name to its model-bearing core.
	ExtractSPUCore func(name string) string

	BrandsEqual func(a, b string) bool

	// FilterSPU reports whether entry is eligible for attrs.
	FilterSPU func(attrs *attribute.Attributes, entry *catalog.EnrichedEntry) bool

	// SPUPriority ranks equally scored entries; higher wins.
	SPUPriority func(entry *catalog.EnrichedEntry) int

	// EntriesByModel and EntriesByBrand read the catalog indexes and return
	// enriched entries in catalog order.  An empty result means the key is
	// not indexed.
	EntriesByModel func(model string) []*catalog.EnrichedEntry
	EntriesByBrand func(brand string) []*catalog.EnrichedEntry

	// VariantEvidence counts how many of the input's color, capacity and
	// version values the catalog indexes record for entry.
	VariantEvidence func(attrs *attribute.Attributes, entry *catalog.EnrichedEntry) int

	Tokenize      func(text string) []string
	NormalizeSpec func(raw string) string
	MatchVersion  func(input, catalog *attribute.Version) version_matcher.MatchResult
}

// SPUPriority favours entries whose name carries nothing beyond brand, model
// and variant values.
func SPUPriority(entry *catalog.EnrichedEntry) int {
	if entry == nil {
		return 0
	}
	switch s := entry.Simplicity; {
	case s == 0:
		return 3
	case s <= 5:
		return 2
	case s <= 15:
		return 1
	default:
		return 0
	}
}

// Tokenize lower-cases text and splits it on anything that is not a letter or
// digit.
func Tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})
}

//Personal.AI order the ending
