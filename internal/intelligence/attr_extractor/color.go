package attr_extractor

import (
	"regexp"
	"strings"

	"github.com/turtacn/ProductMatch/internal/domain/attribute"
	"github.com/turtacn/ProductMatch/internal/domain/catalog"
	"github.com/turtacn/ProductMatch/internal/intelligence/common"
)

// trailingHanRe captures a final run of 2–5 ideographs that stands alone.
var trailingHanRe = regexp.MustCompile(`(?:^|[^\p{Han}])(\p{Han}{2,5})$`)

var colorStripLists = [][]string{
	common.ColorMaterialKeywords,
	common.ColorAccessoryKeywords,
	common.ColorTechnicalKeywords,
	common.ColorProductTypeKeywords,
}

// stripColorNoise removes keywords that carry color glyphs without naming a
// color, such as 钛金属 or 表带.
func stripColorNoise(text string) string {
	s := strings.ToLower(text)
	for _, list := range colorStripLists {
		for _, kw := range list {
			s = strings.ReplaceAll(s, kw, " ")
		}
	}
	return strings.TrimSpace(s)
}

func (e *extractorImpl) ExtractColor(text string) attribute.Extraction[string] {
	s := stripColorNoise(text)
	if s == "" {
		return attribute.Miss[string]()
	}

	e.mu.RLock()
	clusters, vocab, basic, brands := e.clusters, e.vocab, e.basic, e.brands
	e.mu.RUnlock()

	for _, m := range clusters {
		if strings.Contains(s, strings.ToLower(m.variant)) {
			return attribute.Hit(m.primary, 1.0, attribute.SourceExact)
		}
	}
	for _, c := range vocab {
		if strings.Contains(s, strings.ToLower(c)) {
			return attribute.Hit(c, 0.95, attribute.SourceExact)
		}
	}

	if m := trailingHanRe.FindStringSubmatch(s); m != nil && !isVersionLike(m[1]) && !isBrandWord(m[1], brands) {
		return attribute.Hit(m[1], 0.85, attribute.SourceFuzzy)
	}

	for _, bc := range basic {
		if bc.Glyph != "" && strings.Contains(s, bc.Glyph) {
			return attribute.Hit(bc.Family, 0.7, attribute.SourceFuzzy)
		}
	}
	return attribute.Miss[string]()
}

func isVersionLike(run string) bool {
	if strings.HasSuffix(run, "版") {
		return true
	}
	for _, w := range common.VersionLikeWords {
		if strings.Contains(run, w) {
			return true
		}
	}
	for _, w := range common.DescriptorKeywordsCJK {
		if strings.Contains(run, w) {
			return true
		}
	}
	return false
}

func isBrandWord(run string, brands []catalog.Brand) bool {
	for _, b := range brands {
		for _, f := range b.Forms() {
			if strings.Contains(run, f) {
				return true
			}
		}
	}
	return false
}

//Personal.AI order the ending
