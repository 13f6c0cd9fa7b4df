package attr_extractor

import (
	"strings"
	"unicode/utf8"

	"github.com/turtacn/ProductMatch/internal/domain/attribute"
	"github.com/turtacn/ProductMatch/internal/intelligence/common"
)

type versionKeyword struct {
	keyword string
	version attribute.Version
}

type compiledTier struct {
	name       string
	confidence float64
	guard      bool
	keywords   []versionKeyword
}

// compileTiers flattens every tier into (keyword, version) pairs ordered
// longest keyword first.
func compileTiers(tiers []common.VersionTier) []compiledTier {
	out := make([]compiledTier, 0, len(tiers))
	for _, t := range tiers {
		ct := compiledTier{name: t.Name, confidence: t.Confidence, guard: t.GuardSuffix}
		byKeyword := make(map[string]attribute.Version)
		var kws []string
		for _, rule := range t.Rules {
			for _, kw := range rule.Keywords {
				kw = strings.ToLower(kw)
				if _, dup := byKeyword[kw]; dup || kw == "" {
					continue
				}
				byKeyword[kw] = rule
				kws = append(kws, kw)
			}
		}
		for _, kw := range common.SortLongestFirst(kws) {
			ct.keywords = append(ct.keywords, versionKeyword{keyword: kw, version: byKeyword[kw]})
		}
		out = append(out, ct)
	}
	return out
}

func (e *extractorImpl) ExtractVersion(text string) attribute.Extraction[attribute.Version] {
	s := strings.ToLower(text)
	if strings.TrimSpace(s) == "" {
		return attribute.Miss[attribute.Version]()
	}

	hit, idx := common.FirstMatch(e.versions, func(t compiledTier) (attribute.Extraction[attribute.Version], bool) {
		for _, vk := range t.keywords {
			if keywordPresent(s, vk.keyword, t.guard) {
				return attribute.Hit(vk.version, t.confidence, attribute.SourceExact), true
			}
		}
		return attribute.Extraction[attribute.Version]{}, false
	})
	if idx < 0 {
		return attribute.Miss[attribute.Version]()
	}
	return hit
}

// keywordPresent reports whether kw occurs in s on ASCII boundaries.  With
// guard set, an all-letter keyword directly followed by a model-suffix word
// (e.g. "pro max") does not count.
func keywordPresent(s, kw string, guard bool) bool {
	for from := 0; from <= len(s)-len(kw); {
		i := strings.Index(s[from:], kw)
		if i < 0 {
			return false
		}
		start := from + i
		end := start + len(kw)
		from = start + 1

		if !asciiBoundary(s, start, end, kw) {
			continue
		}
		if guard && isASCIIWord(kw) && followedBySuffix(s[end:]) {
			continue
		}
		return true
	}
	return false
}

func asciiBoundary(s string, start, end int, kw string) bool {
	first, _ := utf8.DecodeRuneInString(kw)
	last, _ := utf8.DecodeLastRuneInString(kw)
	if isASCIIAlnum(first) && start > 0 {
		prev, _ := utf8.DecodeLastRuneInString(s[:start])
		if isASCIIAlnum(prev) {
			return false
		}
	}
	if isASCIIAlnum(last) && end < len(s) {
		next, _ := utf8.DecodeRuneInString(s[end:])
		if isASCIIAlnum(next) {
			return false
		}
	}
	return true
}

func followedBySuffix(rest string) bool {
	rest = strings.TrimLeft(rest, " \t")
	for _, suf := range common.VersionGuardSuffixes {
		if strings.HasPrefix(rest, suf) {
			return true
		}
	}
	return false
}

func isASCIIWord(s string) bool {
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c < 'a' || c > 'z' {
			return false
		}
	}
	return s != ""
}

func isASCIIAlnum(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')
}

//Personal.AI order the ending
