package matching

import (
	"github.com/turtacn/ProductMatch/internal/domain/attribute"
	"github.com/turtacn/ProductMatch/internal/domain/catalog"
)

// MatchStatus is the aggregate outcome of one input.
type MatchStatus string

const (
	// StatusMatched means a variant was selected.
	StatusMatched MatchStatus = "matched"
	// StatusSPUMatched means only a catalog entry was selected.
	StatusSPUMatched MatchStatus = "spu-matched"
	// StatusUnmatched means nothing was selected or the item failed.
	StatusUnmatched MatchStatus = "unmatched"
)

// CandidateMatch is the SPU-level selection.
type CandidateMatch struct {
	Entry       *catalog.EnrichedEntry `json:"entry"`
	Score       float64                `json:"score"`
	Explanation string                 `json:"explanation,omitempty"`
}

// VariantMatch is the SKU-level selection.
type VariantMatch struct {
	Variant        catalog.Variant    `json:"variant"`
	Score          float64            `json:"score"`
	PerFieldScores map[string]float64 `json:"per_field_scores,omitempty"`
}

// ExtractedAttributes is the flattened attribute view carried in results.
type ExtractedAttributes struct {
	Brand       string                `json:"brand,omitempty"`
	Model       string                `json:"model,omitempty"`
	Version     string                `json:"version,omitempty"`
	Capacity    string                `json:"capacity,omitempty"`
	Color       string                `json:"color,omitempty"`
	ProductType attribute.ProductType `json:"product_type,omitempty"`
}

func summarize(a *attribute.Attributes) ExtractedAttributes {
	if a == nil {
		return ExtractedAttributes{}
	}
	return ExtractedAttributes{
		Brand:       a.Brand.Get(),
		Model:       a.Model.Get(),
		Version:     a.Version.Get().Name,
		Capacity:    a.Capacity.Get(),
		Color:       a.Color.Get(),
		ProductType: a.ProductType,
	}
}

// MatchedIdentifiers names what the input resolved to.
type MatchedIdentifiers struct {
	EntryName     string   `json:"entry_name"`
	VariantID     string   `json:"variant_id,omitempty"`
	ExternalCodes []string `json:"external_codes,omitempty"`
}

// MatchResult is the per-input result.
type MatchResult struct {
	InputText           string                `json:"input_text"`
	CandidateMatch      *CandidateMatch       `json:"candidate_match,omitempty"`
	VariantMatch        *VariantMatch         `json:"variant_match,omitempty"`
	Status              MatchStatus           `json:"status"`
	Similarity          float64               `json:"similarity"`
	ExtractedAttributes ExtractedAttributes   `json:"extracted_attributes"`
	Attributes          *attribute.Attributes `json:"-"`
	MatchedIdentifiers  *MatchedIdentifiers   `json:"matched_identifiers,omitempty"`
	Error               string                `json:"error,omitempty"`
}

// BatchSummary tallies a batch.  Matched, CandidateOnly and Unmatched add up
// to Total; Failed counts the unmatched placeholders left by failed items.
type BatchSummary struct {
	Total         int     `json:"total"`
	Matched       int     `json:"matched"`
	CandidateOnly int     `json:"candidate_only"`
	Unmatched     int     `json:"unmatched"`
	Failed        int     `json:"failed"`
	MatchRate     float64 `json:"match_rate"`
	DurationMs    float64 `json:"duration_ms"`
}

// BatchResult is index-aligned with the batch input.
type BatchResult struct {
	RunID   string         `json:"run_id"`
	Results []*MatchResult `json:"results"`
	Summary BatchSummary   `json:"summary"`
}

//Personal.AI order the ending
