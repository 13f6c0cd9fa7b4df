// Package catalog holds the catalog snapshot types: SPU entries, their SKU
// variants, the brand table and enriched entries.
package catalog

import (
	"strings"
	"time"
)

// Variant is one sellable SKU of an Entry.
type Variant struct {
	ID    string   `json:"id,omitempty"`
	Color string   `json:"color,omitempty"`
	Spec  string   `json:"spec,omitempty"`
	Combo string   `json:"combo,omitempty"`
	Codes []string `json:"codes,omitempty"`
}

// Entry is an SPU.  Entries are immutable for the duration of a session.
type Entry struct {
	ID       string    `json:"id"`
	Name     string    `json:"name"`
	Brand    string    `json:"brand,omitempty"`
	Variants []Variant `json:"variants,omitempty"`
}

// HasName reports whether the display name has non-space content.
func (e Entry) HasName() bool {
	return strings.TrimSpace(e.Name) != ""
}

// Brand is one row of the brand table.
type Brand struct {
	Name  string `json:"name"`
	Spell string `json:"spell,omitempty"`
	Color string `json:"color,omitempty"`
	Order int    `json:"order,omitempty"`
}

// Forms returns the canonical name followed by the alternate spelling when set.
func (b Brand) Forms() []string {
	out := make([]string, 0, 2)
	if b.Name != "" {
		out = append(out, b.Name)
	}
	if b.Spell != "" && !strings.EqualFold(b.Spell, b.Name) {
		out = append(out, b.Spell)
	}
	return out
}

// EnrichedEntry is an Entry plus fields derived by one enrichment pass.
type EnrichedEntry struct {
	Entry
	ExtractedBrand  string    `json:"extracted_brand,omitempty"`
	ExtractedModel  string    `json:"extracted_model,omitempty"`
	NormalizedModel string    `json:"normalized_model,omitempty"`
	Simplicity      int       `json:"simplicity"`
	EnrichedAt      time.Time `json:"enriched_at"`
}

// VariantByID returns the variant with id, if any.
func (e *EnrichedEntry) VariantByID(id string) (Variant, bool) {
	for _, v := range e.Variants {
		if v.ID == id {
			return v, true
		}
	}
	return Variant{}, false
}

//Personal.AI order the ending
