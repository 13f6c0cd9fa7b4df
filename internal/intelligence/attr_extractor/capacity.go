package attr_extractor

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/turtacn/ProductMatch/internal/domain/attribute"
	"github.com/turtacn/ProductMatch/internal/intelligence/common"
)

var (
	comboCapacityRe  = regexp.MustCompile(`(\d+)\s*(gb|g|tb|t)?\s*\+\s*(\d+)\s*(gb|g|tb|t)?`)
	singleCapacityRe = regexp.MustCompile(`\b(\d+)\s*(gb|tb|g|t)\b`)
	bareCapacityRe   = regexp.MustCompile(`\b(64|128|256|512|1024|2048)\b`)
)

// smallCapacityLimit is the largest GB value treated as ambiguous (RAM or a
// network token) rather than storage.
const smallCapacityLimit = 32

func (e *extractorImpl) ExtractCapacity(text string) attribute.Extraction[string] {
	return ExtractCapacity(text)
}

// ExtractCapacity is the table-free capacity extractor.
func ExtractCapacity(text string) attribute.Extraction[string] {
	s := strings.ToLower(text)

	if m := comboCapacityRe.FindStringSubmatch(s); m != nil {
		return attribute.Hit(m[1]+terabyteSuffix(m[2])+"+"+m[3]+terabyteSuffix(m[4]), 1.0, attribute.SourceExact)
	}

	hasContext := containsAny(s, common.CapacityContextKeywords)

	for _, m := range singleCapacityRe.FindAllStringSubmatch(s, -1) {
		n, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		unit := m[2]
		if unit == "g" && (n == 4 || n == 5) {
			continue
		}
		if unit == "tb" || unit == "t" {
			return attribute.Hit(m[1]+"T", 0.9, attribute.SourceFuzzy)
		}
		if n <= smallCapacityLimit {
			conf := 0.7
			if hasContext {
				conf = 0.8
			}
			return attribute.Hit(m[1], conf, attribute.SourceFuzzy)
		}
		return attribute.Hit(m[1], 0.9, attribute.SourceFuzzy)
	}

	if hasContext {
		if m := bareCapacityRe.FindStringSubmatch(s); m != nil {
			return attribute.Hit(common.BareCapacities[m[1]], 0.8, attribute.SourceFuzzy)
		}
	}
	return attribute.Miss[string]()
}

func terabyteSuffix(unit string) string {
	if unit == "tb" || unit == "t" {
		return "T"
	}
	return ""
}

func containsAny(s string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(s, kw) {
			return true
		}
	}
	return false
}

//Personal.AI order the ending
