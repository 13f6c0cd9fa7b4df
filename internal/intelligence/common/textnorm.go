package common

import (
	"regexp"
	"strconv"
	"strings"
)

// ---------------------------------------------------------------------------
// Text policies
// ---------------------------------------------------------------------------

// TextPolicy selects how brand forms are removed before model extraction.
// The extractor and the model index use QueryPolicy; the enrichment pass uses
// IndexPolicy because catalog names carry the brand once, up front.
type TextPolicy int

const (
	// QueryPolicy removes every occurrence of every brand form.
	QueryPolicy TextPolicy = iota
	// IndexPolicy removes the first occurrence of the canonical name, or the
	// first occurrence of the alternate spelling when the canonical is absent.
	IndexPolicy
)

func (p TextPolicy) String() string {
	switch p {
	case QueryPolicy:
		return "query"
	case IndexPolicy:
		return "index"
	default:
		return "unknown"
	}
}

var (
	capacityComboRe   = regexp.MustCompile(`\d+\s*(?:gb|g|tb|t)?\s*\+\s*\d+\s*(?:gb|g|tb|t)?`)
	capacityUnitRe    = regexp.MustCompile(`\b\d+\s*(?:gb|tb)\b`)
	capacityShortRe   = regexp.MustCompile(`\b\d+(?:g|t)\b`)
	descriptorASCII   = regexp.MustCompile(`\b(?:` + strings.Join(DescriptorKeywordsASCII, "|") + `)\b`)
	colorRunRe        = regexp.MustCompile(`\p{Han}*[` + BasicColorGlyphs + `]\p{Han}*`)
	letterDigitRe     = regexp.MustCompile(`([a-z])(\d)`)
	digitLetterRe     = regexp.MustCompile(`(\d)([a-z])`)
	gluedPartRe       = regexp.MustCompile(`(?:` + strings.Join(SortLongestFirst(append(append([]string{}, ModelStems...), longSuffixes()...)), "|") + `)`)
	modelKeyStripRe   = regexp.MustCompile(`[^\p{L}\p{N} +\-]`)
	modelValueStripRe = regexp.MustCompile(`[\s\-_]+`)
)

func longSuffixes() []string {
	out := make([]string, 0, len(ModelSuffixes))
	for _, s := range SortLongestFirst(ModelSuffixes) {
		if len(s) >= 3 {
			out = append(out, s)
		}
	}
	return out
}

// CatalogTextNormalizer prepares product text for model extraction under one
// TextPolicy.
type CatalogTextNormalizer struct {
	policy TextPolicy
}

func NewCatalogTextNormalizer(policy TextPolicy) *CatalogTextNormalizer {
	return &CatalogTextNormalizer{policy: policy}
}

func (n *CatalogTextNormalizer) Policy() TextPolicy { return n.policy }

// StripForModel lower-cases text and removes brand forms, capacities,
// descriptor keywords and CJK color runs.  brandForms lists the canonical
// name first, then the alternate spelling.
func (n *CatalogTextNormalizer) StripForModel(text string, brandForms []string) string {
	s := strings.ToLower(text)
	s = n.removeBrand(s, brandForms)

	s = capacityComboRe.ReplaceAllString(s, " ")
	s = capacityUnitRe.ReplaceAllString(s, " ")
	s = capacityShortRe.ReplaceAllString(s, " ")

	s = descriptorASCII.ReplaceAllString(s, " ")
	for _, kw := range DescriptorKeywordsCJK {
		s = strings.ReplaceAll(s, kw, " ")
	}

	s = colorRunRe.ReplaceAllString(s, " ")
	return CollapseSpaces(s)
}

func (n *CatalogTextNormalizer) removeBrand(s string, forms []string) string {
	lowered := make([]string, 0, len(forms))
	for _, f := range forms {
		if f = strings.ToLower(strings.TrimSpace(f)); f != "" {
			lowered = append(lowered, f)
		}
	}
	if len(lowered) == 0 {
		return s
	}

	if n.policy == IndexPolicy {
		for _, f := range lowered {
			if i := strings.Index(s, f); i >= 0 {
				return s[:i] + " " + s[i+len(f):]
			}
		}
		return s
	}

	for _, f := range lowered {
		s = strings.ReplaceAll(s, f, " ")
	}
	return s
}

// ExtractModel strips text under the normalizer's policy and runs the model
// pipeline over the result.
func (n *CatalogTextNormalizer) ExtractModel(text string, brandForms []string) (ModelMatch, bool) {
	return RunModelPipeline(n.StripForModel(text, brandForms))
}

// CollapseSpaces trims s and folds every whitespace run into one space.
func CollapseSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// NormalizeModelKey is the model index key form: lower-case, whitespace
// collapsed, only letters, digits, space, hyphen and plus kept.
func NormalizeModelKey(model string) string {
	s := strings.ToLower(model)
	s = modelKeyStripRe.ReplaceAllString(s, "")
	return CollapseSpaces(s)
}

// CompactModel lower-cases model and removes spaces, hyphens and underscores.
func CompactModel(model string) string {
	return modelValueStripRe.ReplaceAllString(strings.ToLower(model), "")
}

// ---------------------------------------------------------------------------
// Model pipeline
// ---------------------------------------------------------------------------

// ModelView selects which form of the stripped text a tier reads.
type ModelView int

const (
	// ViewRaw is the stripped text before separator insertion.
	ViewRaw ModelView = iota
	// ViewNormalized has separators at digit/letter boundaries and before suffixes.
	ViewNormalized
)

// ModelTier is one step of the model pipeline.
type ModelTier struct {
	Name       string
	View       ModelView
	Confidence float64
	Pattern    *regexp.Regexp
	// Accept builds the value from one submatch, or rejects it.
	Accept func(groups []string) (string, bool)
}

// ModelMatch is the pipeline result.
type ModelMatch struct {
	Value      string
	Confidence float64
	Tier       string
}

func joinGroups(groups []string) (string, bool) {
	v := CompactModel(strings.Join(groups[1:], ""))
	return v, v != ""
}

// DefaultModelTiers run in this order.  The raw-view code tier sits between
// the normalized tiers so short codes such as "y50" survive intact, while
// suffixed models such as "mate 60 pro" are caught first by the complex tier.
var DefaultModelTiers = []ModelTier{
	{
		Name:       "complex",
		View:       ViewNormalized,
		Confidence: 1.0,
		Pattern: regexp.MustCompile(`\b((?:[a-z]+\s+)*)([a-z0-9]+)((?:\s+(?:` +
			strings.Join(ModelSuffixes, "|") + `)\b)+)`),
		Accept: joinGroups,
	},
	{
		Name:       "word",
		View:       ViewNormalized,
		Confidence: 0.85,
		Pattern:    regexp.MustCompile(`\b([a-z]+)\s+([a-z]+)(?:\s+(\d+))?\b`),
		Accept:     joinGroups,
	},
	{
		Name:       "type",
		View:       ViewNormalized,
		Confidence: 0.85,
		Pattern:    regexp.MustCompile(`\b(` + strings.Join(ModelTypeWords, "|") + `)\s*(\d+)\b`),
		Accept:     joinGroups,
	},
	{
		Name:       "code",
		View:       ViewRaw,
		Confidence: 0.9,
		Pattern:    regexp.MustCompile(`\b([a-z]+\d+[a-z0-9]*)\b`),
		Accept:     joinGroups,
	},
	{
		Name:       "numeric",
		View:       ViewNormalized,
		Confidence: 0.85,
		Pattern:    regexp.MustCompile(`\b([a-z]*)\s*(\d+)([a-z]*)\b`),
		Accept: func(groups []string) (string, bool) {
			if groups[1] == "" && groups[3] == "" {
				n, err := strconv.Atoi(groups[2])
				if err != nil || n < 10 || n > 999 {
					return "", false
				}
			}
			return joinGroups(groups)
		},
	},
}

// NormalizeModelView inserts separators at digit/letter boundaries and
// between suffix words glued to a series name or to another suffix.
func NormalizeModelView(s string) string {
	s = strings.ToLower(s)
	s = letterDigitRe.ReplaceAllString(s, "$1 $2")
	s = digitLetterRe.ReplaceAllString(s, "$1 $2")
	words := strings.Fields(s)
	for i, w := range words {
		words[i] = splitGluedSuffixes(w)
	}
	return strings.Join(words, " ")
}

// splitGluedSuffixes splits w only when it is entirely a stem or suffix
// followed by suffixes, so ordinary words such as "satellite" stay whole.
func splitGluedSuffixes(w string) string {
	parts := gluedPartRe.FindAllString(w, -1)
	if len(parts) < 2 || strings.Join(parts, "") != w {
		return w
	}
	for _, p := range parts[1:] {
		if !isLongSuffix(p) {
			return w
		}
	}
	return strings.Join(parts, " ")
}

func isLongSuffix(p string) bool {
	for _, s := range longSuffixes() {
		if s == p {
			return true
		}
	}
	return false
}

// RunModelPipeline evaluates DefaultModelTiers against stripped text.
func RunModelPipeline(stripped string) (ModelMatch, bool) {
	return RunModelTiers(DefaultModelTiers, stripped)
}

// RunModelTiers evaluates tiers in order against both views of stripped.
func RunModelTiers(tiers []ModelTier, stripped string) (ModelMatch, bool) {
	raw := CollapseSpaces(strings.ToLower(stripped))
	if raw == "" {
		return ModelMatch{}, false
	}
	normalized := NormalizeModelView(raw)

	m, idx := FirstMatch(tiers, func(t ModelTier) (ModelMatch, bool) {
		view := normalized
		if t.View == ViewRaw {
			view = raw
		}
		for _, groups := range t.Pattern.FindAllStringSubmatch(view, -1) {
			if v, ok := t.Accept(groups); ok {
				return ModelMatch{Value: v, Confidence: t.Confidence, Tier: t.Name}, true
			}
		}
		return ModelMatch{}, false
	})
	return m, idx >= 0
}

//Personal.AI order the ending
