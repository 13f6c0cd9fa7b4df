package matching

import (
	"context"
	"fmt"
	"strings"

	"github.com/turtacn/ProductMatch/internal/domain/attribute"
	"github.com/turtacn/ProductMatch/internal/domain/catalog"
)

// ─────────────────────────────────────────────────────────────────────────────
// SPU selector
// ─────────────────────────────────────────────────────────────────────────────

const (
	brandWeight = 0.3
	modelWeight = 0.7

	// unknownFieldScore is used when one side of a comparison is missing.
	unknownFieldScore = 0.5
)

// AttributeSPUSelector scores entries on brand and model equality.  Ties go
// to the higher SPUPriority, then to the entry with more variant evidence,
// then to catalog order.
//
// When the callbacks expose the catalog indexes, only the entries indexed
// under the input model (else the input brand) are scored; the full catalog
// is scanned when that narrowed set yields no candidate above MinScore.
type AttributeSPUSelector struct {
	MinScore float64
}

// NewAttributeSPUSelector returns a selector rejecting candidates below minScore.
func NewAttributeSPUSelector(minScore float64) *AttributeSPUSelector {
	return &AttributeSPUSelector{MinScore: minScore}
}

func (s *AttributeSPUSelector) SelectSPU(_ context.Context, attrs *attribute.Attributes, entries []*catalog.EnrichedEntry, cb *Callbacks) (*CandidateMatch, error) {
	if attrs == nil || !attrs.Model.Found() {
		return nil, nil
	}

	if narrowed := indexedCandidates(attrs, cb); len(narrowed) > 0 {
		if cand := s.best(attrs, narrowed, cb); cand != nil {
			return cand, nil
		}
	}
	return s.best(attrs, entries, cb), nil
}

// indexedCandidates returns the entries indexed under the input model, else
// under the input brand, else nil.
func indexedCandidates(attrs *attribute.Attributes, cb *Callbacks) []*catalog.EnrichedEntry {
	if cb == nil {
		return nil
	}
	if cb.EntriesByModel != nil {
		if hit := cb.EntriesByModel(attrs.Model.Get()); len(hit) > 0 {
			return hit
		}
	}
	if cb.EntriesByBrand != nil && attrs.Brand.Found() {
		if hit := cb.EntriesByBrand(attrs.Brand.Get()); len(hit) > 0 {
			return hit
		}
	}
	return nil
}

type scoredEntry struct {
	entry    *catalog.EnrichedEntry
	score    float64
	model    float64
	priority int
	evidence int
}

// outranks orders equally scored entries by priority, then evidence.  An
// entry that ranks equal on everything keeps its earlier catalog position.
func (a scoredEntry) outranks(b scoredEntry) bool {
	if a.score != b.score {
		return a.score > b.score
	}
	if a.priority != b.priority {
		return a.priority > b.priority
	}
	return a.evidence > b.evidence
}

func (s *AttributeSPUSelector) best(attrs *attribute.Attributes, entries []*catalog.EnrichedEntry, cb *Callbacks) *CandidateMatch {
	model := attrs.Model.Get()

	var top *scoredEntry
	for _, e := range entries {
		if e == nil {
			continue
		}
		if cb != nil && cb.FilterSPU != nil && !cb.FilterSPU(attrs, e) {
			continue
		}
		ms := modelScore(model, e.NormalizedModel)
		if ms == 0 {
			continue
		}
		cur := scoredEntry{
			entry: e,
			score: brandWeight*brandScore(attrs.Brand.Get(), e.ExtractedBrand, cb) + modelWeight*ms,
			model: ms,
		}
		if cb != nil && cb.SPUPriority != nil {
			cur.priority = cb.SPUPriority(e)
		}
		if cb != nil && cb.VariantEvidence != nil {
			cur.evidence = cb.VariantEvidence(attrs, e)
		}
		if top == nil || cur.outranks(*top) {
			c := cur
			top = &c
		}
	}

	if top == nil || top.score < s.MinScore {
		return nil
	}
	return &CandidateMatch{
		Entry: top.entry,
		Score: top.score,
		Explanation: fmt.Sprintf("brand=%q model=%q model_score=%.2f priority=%d",
			top.entry.ExtractedBrand, top.entry.NormalizedModel, top.model, top.priority),
	}
}

func brandScore(input, entry string, cb *Callbacks) float64 {
	if input == "" || entry == "" {
		return unknownFieldScore
	}
	equal := strings.EqualFold(input, entry)
	if !equal && cb != nil && cb.BrandsEqual != nil {
		equal = cb.BrandsEqual(input, entry)
	}
	if equal {
		return 1
	}
	return 0
}

// modelScore is 1 for identical compact models and 0.8 when one contains the
// other.
func modelScore(input, entry string) float64 {
	switch {
	case input == "" || entry == "":
		return 0
	case input == entry:
		return 1
	case strings.Contains(entry, input) || strings.Contains(input, entry):
		return 0.8
	default:
		return 0
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// SKU selector
// ─────────────────────────────────────────────────────────────────────────────

// AttributeSKUSelector scores variants on color, capacity and, when any
// variant of the entry carries a combo label, version.  The variant score is
// the mean of the field scores.
type AttributeSKUSelector struct {
	MinScore float64
}

// NewAttributeSKUSelector returns a selector rejecting variants below minScore.
func NewAttributeSKUSelector(minScore float64) *AttributeSKUSelector {
	return &AttributeSKUSelector{MinScore: minScore}
}

func (s *AttributeSKUSelector) SelectSKU(_ context.Context, attrs *attribute.Attributes, entry *catalog.EnrichedEntry, cb *Callbacks) (*VariantMatch, error) {
	if attrs == nil || entry == nil || len(entry.Variants) == 0 {
		return nil, nil
	}

	useVersion := false
	for _, v := range entry.Variants {
		if strings.TrimSpace(v.Combo) != "" {
			useVersion = true
			break
		}
	}

	var best *VariantMatch
	for _, v := range entry.Variants {
		fields := map[string]float64{
			"color":    colorScore(attrs.Color.Get(), v.Color),
			"capacity": capacityScore(attrs.Capacity.Get(), v.Spec, cb),
		}
		if useVersion {
			fields["version"] = versionScore(attrs, v.Combo, cb)
		}
		total := 0.0
		for _, f := range fields {
			total += f
		}
		score := total / float64(len(fields))
		if best == nil || score > best.Score {
			best = &VariantMatch{Variant: v, Score: score, PerFieldScores: fields}
		}
	}

	if best == nil || best.Score < s.MinScore {
		return nil, nil
	}
	return best, nil
}

func colorScore(input, variant string) float64 {
	variant = strings.TrimSpace(variant)
	switch {
	case input == "" || variant == "":
		return unknownFieldScore
	case input == variant:
		return 1
	case strings.Contains(variant, input) || strings.Contains(input, variant):
		return 0.8
	default:
		return 0
	}
}

func capacityScore(input, spec string, cb *Callbacks) float64 {
	if cb != nil && cb.NormalizeSpec != nil {
		spec = cb.NormalizeSpec(spec)
	}
	spec = strings.TrimSpace(spec)
	switch {
	case input == "" || spec == "":
		return unknownFieldScore
	case strings.EqualFold(input, spec):
		return 1
	case strings.HasSuffix(strings.ToUpper(spec), "+"+strings.ToUpper(input)):
		// storage alone matches the storage half of a combo
		return 0.8
	default:
		return 0
	}
}

func versionScore(attrs *attribute.Attributes, combo string, cb *Callbacks) float64 {
	if cb == nil || cb.MatchVersion == nil {
		return unknownFieldScore
	}
	var catalogVersion *attribute.Version
	if combo = strings.TrimSpace(combo); combo != "" {
		catalogVersion = &attribute.Version{Name: combo}
		if cb.ExtractVersion != nil {
			if ex := cb.ExtractVersion(combo); ex.Found() {
				catalogVersion = ex.Value
			}
		}
	}
	return cb.MatchVersion(attrs.VersionPtr(), catalogVersion).Score
}

//Personal.AI order the ending
