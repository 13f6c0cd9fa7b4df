package catalog_indexer

import (
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/turtacn/ProductMatch/internal/domain/catalog"
	"github.com/turtacn/ProductMatch/internal/infrastructure/monitoring/logging"
)

// ---------------------------------------------------------------------------
// NormalizeSpec
// ---------------------------------------------------------------------------

var (
	specTBRe       = regexp.MustCompile(`(?i)tb`)
	specGBRe       = regexp.MustCompile(`(?i)gb`)
	specBareGRe    = regexp.MustCompile(`(?i)g(\+|$)`)
	specSeparators = strings.NewReplacer(" + ", "+", " +", "+", "+ ", "+")
)

// NormalizeSpec maps a raw capacity string to its canonical form: synonym
// table first (exact key, then case-insensitive), else a unit rewrite.  It
// never fails and is idempotent.
func (p *preparerImpl) NormalizeSpec(raw string) string {
	s := strings.TrimSpace(raw)
	if s == "" {
		return ""
	}

	p.mu.RLock()
	v, ok := p.synonyms[s]
	if !ok {
		v, ok = p.synLower[strings.ToLower(s)]
	}
	p.mu.RUnlock()
	if ok {
		return v
	}

	out := specTBRe.ReplaceAllString(s, "T")
	out = specGBRe.ReplaceAllString(out, "")
	out = specBareGRe.ReplaceAllString(out, "$1")
	out = specSeparators.Replace(out)
	out = strings.TrimSpace(out)
	if out != "" && out != s {
		return out
	}
	return s
}

// ---------------------------------------------------------------------------
// Spec index
// ---------------------------------------------------------------------------

// SpecKind names one of the three variant value indexes.
type SpecKind string

const (
	SpecColor SpecKind = "color"
	SpecSpec  SpecKind = "spec"
	SpecCombo SpecKind = "combo"
)

var specKinds = []SpecKind{SpecColor, SpecSpec, SpecCombo}

// ValueCount is one row of a frequency list.
type ValueCount struct {
	Value string `json:"value"`
	Count int    `json:"count"`
}

type specIndex struct {
	ids   map[string]map[string]struct{}
	count map[string]int
	order []string
}

func newSpecIndex() *specIndex {
	return &specIndex{
		ids:   make(map[string]map[string]struct{}),
		count: make(map[string]int),
	}
}

func newSpecIndexes() map[SpecKind]*specIndex {
	out := make(map[SpecKind]*specIndex, len(specKinds))
	for _, k := range specKinds {
		out[k] = newSpecIndex()
	}
	return out
}

func (s *specIndex) add(value, entryID string) {
	set, ok := s.ids[value]
	if !ok {
		set = make(map[string]struct{})
		s.ids[value] = set
		s.order = append(s.order, value)
	}
	set[entryID] = struct{}{}
	s.count[value]++
}

// frequency lists values by count descending; ties keep first-seen order.
func (s *specIndex) frequency() []ValueCount {
	out := make([]ValueCount, len(s.order))
	for i, v := range s.order {
		out[i] = ValueCount{Value: v, Count: s.count[v]}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Count > out[j].Count })
	return out
}

func (s *specIndex) entryIDs(value string) []string {
	if s == nil {
		return nil
	}
	set := s.ids[value]
	if len(set) == 0 {
		return nil
	}
	out := make([]string, 0, len(set))
	for id := range set {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// SpecIndexStats summarises one BuildSpecIndex call.
type SpecIndexStats struct {
	Entries        int           `json:"entries"`
	DistinctColors int           `json:"distinct_colors"`
	DistinctSpecs  int           `json:"distinct_specs"`
	DistinctCombos int           `json:"distinct_combos"`
	Duration       time.Duration `json:"duration"`
}

// variantValues is the entry-wide deduplicated value set per kind.
type variantValues map[SpecKind][]string

func (p *preparerImpl) collectValues(e catalog.Entry) variantValues {
	out := make(variantValues, len(specKinds))
	seen := make(map[SpecKind]map[string]struct{}, len(specKinds))
	for _, k := range specKinds {
		seen[k] = make(map[string]struct{})
	}
	add := func(k SpecKind, v string) {
		if v == "" {
			return
		}
		if _, dup := seen[k][v]; dup {
			return
		}
		seen[k][v] = struct{}{}
		out[k] = append(out[k], v)
	}
	for _, v := range e.Variants {
		add(SpecColor, strings.TrimSpace(v.Color))
		add(SpecSpec, p.NormalizeSpec(v.Spec))
		add(SpecCombo, strings.TrimSpace(v.Combo))
	}
	return out
}

func (p *preparerImpl) BuildSpecIndex(entries []catalog.Entry) SpecIndexStats {
	// NormalizeSpec takes the read lock, so values are resolved first.
	perEntry := make([]variantValues, len(entries))
	for i, e := range entries {
		if len(e.Variants) > 0 {
			perEntry[i] = p.collectValues(e)
		}
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	start := p.now()
	p.specs = newSpecIndexes()
	var stats SpecIndexStats
	for i, e := range entries {
		if perEntry[i] == nil {
			continue
		}
		stats.Entries++
		for _, k := range specKinds {
			for _, v := range perEntry[i][k] {
				p.specs[k].add(v, e.ID)
			}
		}
	}

	stats.DistinctColors = len(p.specs[SpecColor].order)
	stats.DistinctSpecs = len(p.specs[SpecSpec].order)
	stats.DistinctCombos = len(p.specs[SpecCombo].order)
	stats.Duration = p.now().Sub(start)
	p.stats.Spec = stats
	p.metrics.RecordIndexBuild("spec", stats.Entries, len(entries)-stats.Entries, float64(stats.Duration.Microseconds())/1000)
	p.logger.Info("spec index built",
		logging.Int("entries", stats.Entries),
		logging.Int("colors", stats.DistinctColors),
		logging.Int("specs", stats.DistinctSpecs),
		logging.Int("combos", stats.DistinctCombos),
		logging.Duration("duration", stats.Duration))
	return stats
}

func (p *preparerImpl) lookupSpec(kind SpecKind, value string) []string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.specs[kind].entryIDs(strings.TrimSpace(value))
}

func (p *preparerImpl) EntriesWithColor(color string) []string {
	return p.lookupSpec(SpecColor, color)
}

func (p *preparerImpl) EntriesWithSpec(spec string) []string {
	return p.lookupSpec(SpecSpec, p.NormalizeSpec(spec))
}

func (p *preparerImpl) EntriesWithCombo(combo string) []string {
	return p.lookupSpec(SpecCombo, combo)
}

// Frequency returns kind's values sorted by entry count descending.
func (p *preparerImpl) Frequency(kind SpecKind) []ValueCount {
	p.mu.RLock()
	defer p.mu.RUnlock()
	idx, ok := p.specs[kind]
	if !ok {
		return nil
	}
	return idx.frequency()
}

//Personal.AI order the ending
