// Package attribute holds the value types produced by attribute extraction:
// confidence-scored results, version descriptors and the per-input bundle.
package attribute

// Source is the provenance of an extracted value.
type Source string

const (
	// SourceExact means literal or alias containment.
	SourceExact Source = "exact"
	// SourceFuzzy means the value was derived from a pattern.
	SourceFuzzy Source = "fuzzy"
	// SourceInferred is the floor: nothing was found.
	SourceInferred Source = "inferred"
)

// Extraction is one confidence-scored result.  The zero value is the floor
// case: no value, confidence 0, source inferred once normalised by Miss.
type Extraction[T any] struct {
	Value      *T      `json:"value"`
	Confidence float64 `json:"confidence"`
	Source     Source  `json:"source"`
}

// Hit builds a found result.  A non-positive confidence yields Miss so a
// value never travels with confidence 0.
func Hit[T any](v T, confidence float64, src Source) Extraction[T] {
	if confidence <= 0 {
		return Miss[T]()
	}
	if confidence > 1 {
		confidence = 1
	}
	return Extraction[T]{Value: &v, Confidence: confidence, Source: src}
}

// Miss builds the floor result.
func Miss[T any]() Extraction[T] {
	return Extraction[T]{Source: SourceInferred}
}

// Found reports whether a value is present.
func (e Extraction[T]) Found() bool { return e.Value != nil }

// Get returns the value or T's zero value.
func (e Extraction[T]) Get() T {
	if e.Value == nil {
		var zero T
		return zero
	}
	return *e.Value
}

// IsFloor reports whether e satisfies the floor invariant exactly.
func (e Extraction[T]) IsFloor() bool {
	return e.Value == nil && e.Confidence == 0 && e.Source == SourceInferred
}

//Personal.AI order the ending
