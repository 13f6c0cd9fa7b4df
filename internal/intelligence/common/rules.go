package common

import (
	"sort"
	"unicode/utf8"

	"github.com/turtacn/ProductMatch/internal/domain/attribute"
)

// ---------------------------------------------------------------------------
// Rule evaluation
// ---------------------------------------------------------------------------

// FirstMatch evaluates rules in order and returns the first value try accepts
// together with the index of the rule that produced it.  It returns -1 when
// no rule matches.
func FirstMatch[R, V any](rules []R, try func(R) (V, bool)) (V, int) {
	for i, r := range rules {
		if v, ok := try(r); ok {
			return v, i
		}
	}
	var zero V
	return zero, -1
}

// SortLongestFirst sorts keywords by rune length, longest first.  The sort is
// stable so equal-length keywords keep table order.
func SortLongestFirst(keywords []string) []string {
	out := make([]string, len(keywords))
	copy(out, keywords)
	sort.SliceStable(out, func(i, j int) bool {
		return utf8.RuneCountInString(out[i]) > utf8.RuneCountInString(out[j])
	})
	return out
}

// ---------------------------------------------------------------------------
// Model tables
// ---------------------------------------------------------------------------

// ModelSuffixes are the words the normalized model view splits before.
var ModelSuffixes = []string{
	"pro", "max", "plus", "ultra", "mini", "se", "air", "lite", "note", "turbo", "fold", "flip",
}

// ModelStems are series names a suffix may be glued to, as in "redminote".
var ModelStems = []string{
	"redmi", "galaxy", "iphone", "ipad", "mate", "nova", "pura", "magic", "reno", "find",
}

// ModelTypeWords are the device words recognised by the word tier with digits.
var ModelTypeWords = []string{"band", "watch", "pad", "book", "buds", "fit"}

// DescriptorKeywordsASCII are removed on word boundaries before model extraction.
var DescriptorKeywordsASCII = []string{
	"5g", "4g", "wifi", "wlan", "lte", "esim", "nfc", "new", "official",
}

// DescriptorKeywordsCJK are removed by plain substring replacement.
var DescriptorKeywordsCJK = []string{
	"全网通", "双卡双待", "手机", "官方", "标配", "正品", "新品", "国行", "旗舰店", "现货", "智能",
}

// ---------------------------------------------------------------------------
// Color tables
// ---------------------------------------------------------------------------

// BasicColor maps a single glyph to its family label.
type BasicColor struct {
	Glyph  string
	Family string
}

// DefaultBasicColors is checked in order; the first glyph present wins.
var DefaultBasicColors = []BasicColor{
	{"黑", "黑色"}, {"白", "白色"}, {"红", "红色"}, {"蓝", "蓝色"}, {"绿", "绿色"},
	{"紫", "紫色"}, {"粉", "粉色"}, {"金", "金色"}, {"银", "银色"}, {"灰", "灰色"},
	{"青", "青色"}, {"黄", "黄色"}, {"橙", "橙色"},
}

// BasicColorGlyphs is the glyph class used to strip color runs from model text.
const BasicColorGlyphs = "黑白红蓝绿紫粉金银灰青黄橙"

// DefaultColorClusters maps a primary label to alternate spellings.
var DefaultColorClusters = map[string][]string{
	"黑色": {"曜石黑", "亮黑色", "幻夜黑", "black"},
	"白色": {"珍珠白", "冰霜白", "white"},
	"雅川青": {"雅川青色"},
	"曜金黑": {"耀金黑"},
}

// DefaultColorVocabulary seeds the exact color list.
var DefaultColorVocabulary = []string{
	"雅川青", "雅丹黑", "南糯紫", "白沙银", "曜金黑", "冰霜银", "远峰蓝", "星光色", "午夜色",
	"深空灰", "钛金属原色", "黑色", "白色", "蓝色", "绿色", "紫色", "粉色", "金色", "银色",
}

// ColorMaterialKeywords are stripped before color extraction.
var ColorMaterialKeywords = []string{
	"钛金属", "铝合金", "不锈钢", "氟橡胶", "玻璃", "素皮", "陶瓷", "真皮", "皮革", "金属", "硅胶", "尼龙",
}

// ColorAccessoryKeywords are stripped before color extraction.
var ColorAccessoryKeywords = []string{
	"充电器", "保护壳", "手机壳", "数据线", "表带", "表盘", "耳机", "贴膜", "套装", "礼盒",
}

// ColorTechnicalKeywords are stripped before color extraction.
var ColorTechnicalKeywords = []string{
	"双卡双待", "全网通", "快充", "蓝牙", "5g", "4g", "wifi", "esim", "nfc",
}

// ColorProductTypeKeywords are stripped before color extraction.
var ColorProductTypeKeywords = []string{
	"笔记本", "手机", "手表", "手环", "平板", "电脑",
}

// VersionLikeWords are never accepted as a trailing-run color.
var VersionLikeWords = []string{
	"全网通", "标准版", "青春版", "活力版", "尊享版", "典藏版", "高配版", "旗舰版", "至尊版",
	"限量版", "纪念版", "联名版", "定制版", "官方", "标配", "国行", "正品", "新品", "现货",
	"保时捷设计", "非凡大师",
}

// ---------------------------------------------------------------------------
// Capacity tables
// ---------------------------------------------------------------------------

// CapacityContextKeywords raise confidence of small GB values and enable bare numbers.
var CapacityContextKeywords = []string{"存储", "内存", "容量", "运存", "storage", "memory", "rom", "ram"}

// BareCapacities are the unit-less numbers accepted with a context keyword.
var BareCapacities = map[string]string{
	"64": "64", "128": "128", "256": "256", "512": "512", "1024": "1T", "2048": "2T",
}

// ---------------------------------------------------------------------------
// Version tiers
// ---------------------------------------------------------------------------

// VersionTier is one ordered group of version rules sharing a confidence.
type VersionTier struct {
	Name       string
	Confidence float64
	Rules      []attribute.Version
	// GuardSuffix skips keywords followed by a model-suffix word.
	GuardSuffix bool
}

// VersionGuardSuffixes follow a pro-style keyword when it is part of a model.
var VersionGuardSuffixes = []string{"mini", "max", "plus", "ultra", "air", "lite", "se"}

// DefaultVersionTiers are evaluated in order.
var DefaultVersionTiers = []VersionTier{
	{
		Name:       "network",
		Confidence: 1.0,
		Rules: []attribute.Version{
			{Name: "5G版", Keywords: []string{"5g版", "5g"}, Priority: 3},
			{Name: "4G版", Keywords: []string{"4g版", "4g"}, Priority: 3},
			{Name: "蓝牙版", Keywords: []string{"蓝牙版", "蓝牙"}, Priority: 3},
			{Name: "eSIM版", Keywords: []string{"esim版", "esim"}, Priority: 3},
			{Name: "WiFi版", Keywords: []string{"wifi版", "wifi", "wlan版"}, Priority: 3},
			{Name: "蜂窝版", Keywords: []string{"蜂窝版", "蜂窝", "lte"}, Priority: 3},
			{Name: "全网通", Keywords: []string{"全网通版", "全网通"}, Priority: 3},
		},
	},
	{
		Name:        "edition",
		Confidence:  0.95,
		GuardSuffix: true,
		Rules: []attribute.Version{
			{Name: "标准版", Keywords: []string{"标准版"}, Priority: 2},
			{Name: "青春版", Keywords: []string{"青春版"}, Priority: 2},
			{Name: "活力版", Keywords: []string{"活力版"}, Priority: 2},
			{Name: "尊享版", Keywords: []string{"尊享版"}, Priority: 2},
			{Name: "典藏版", Keywords: []string{"典藏版"}, Priority: 2},
			{Name: "高配版", Keywords: []string{"高配版"}, Priority: 2},
			{Name: "旗舰版", Keywords: []string{"旗舰版"}, Priority: 2},
			{Name: "至尊版", Keywords: []string{"至尊版"}, Priority: 2},
			{Name: "Pro版", Keywords: []string{"pro版", "pro"}, Priority: 2},
		},
	},
	{
		Name:       "premium",
		Confidence: 0.9,
		Rules: []attribute.Version{
			{Name: "限量版", Keywords: []string{"限量版"}, Priority: 1},
			{Name: "纪念版", Keywords: []string{"纪念版"}, Priority: 1},
			{Name: "联名版", Keywords: []string{"联名版"}, Priority: 1},
			{Name: "定制版", Keywords: []string{"定制版"}, Priority: 1},
			{Name: "保时捷设计", Keywords: []string{"保时捷设计"}, Priority: 1},
			{Name: "非凡大师", Keywords: []string{"非凡大师"}, Priority: 1},
		},
	},
}

// ---------------------------------------------------------------------------
// Product type
// ---------------------------------------------------------------------------

// ProductTypeRule classifies an input by keyword in the text or substring of
// the extracted model.
type ProductTypeRule struct {
	Type          attribute.ProductType
	Keywords      []string
	ModelContains []string
}

// DefaultProductTypeRules are evaluated in order; phone is the fallback.
var DefaultProductTypeRules = []ProductTypeRule{
	{Type: attribute.ProductWatch, Keywords: []string{"手表", "腕表", "watch"}, ModelContains: []string{"watch"}},
	{Type: attribute.ProductBand, Keywords: []string{"手环", "band"}, ModelContains: []string{"band"}},
	{Type: attribute.ProductEarbuds, Keywords: []string{"耳机", "buds", "airpods"}, ModelContains: []string{"buds", "pods"}},
	{Type: attribute.ProductTablet, Keywords: []string{"平板", "ipad", "matepad"}, ModelContains: []string{"pad", "tab"}},
	{Type: attribute.ProductLaptop, Keywords: []string{"笔记本", "电脑", "laptop", "macbook"}, ModelContains: []string{"book"}},
}

//Personal.AI order the ending
