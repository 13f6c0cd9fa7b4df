package testutil

import "github.com/turtacn/ProductMatch/internal/domain/catalog"

// SampleBrands is a small brand table covering canonical/alternate pairs.
func SampleBrands() []catalog.Brand {
	return []catalog.Brand{
		{Name: "华为", Spell: "HUAWEI", Color: "#C7000B", Order: 1},
		{Name: "小米", Spell: "Xiaomi", Color: "#FF6900", Order: 2},
		{Name: "vivo", Spell: "VIVO", Color: "#415FFF", Order: 3},
		{Name: "苹果", Spell: "Apple", Color: "#000000", Order: 4},
		{Name: "荣耀", Spell: "HONOR", Color: "#1A1A1A", Order: 5},
		{Name: "OPPO", Color: "#1BA784", Order: 6},
	}
}

// SampleCatalog is a catalog exercising brands given explicitly, brands found
// only in the name, bundles and a blank-name entry.
func SampleCatalog() []catalog.Entry {
	return []catalog.Entry{
		{
			ID: "spu-mate60pro", Name: "华为 Mate 60 Pro 12GB+512GB 雅川青", Brand: "华为",
			Variants: []catalog.Variant{
				{ID: "sku-1", Color: "雅川青", Spec: "12GB+512GB", Codes: []string{"EAN-6941487303"}},
				{ID: "sku-2", Color: "雅丹黑", Spec: "12GB+1TB"},
			},
		},
		{
			ID: "spu-y50", Name: "vivo Y50 5G",
			Variants: []catalog.Variant{
				{ID: "sku-3", Color: "星光色", Spec: "8GB+128GB", Combo: "5G版"},
				{ID: "sku-4", Color: "星光色", Spec: "8GB+256GB", Combo: "5G版"},
			},
		},
		{
			ID: "spu-watch4", Name: "HUAWEI WATCH 4 Pro 蓝牙版",
			Variants: []catalog.Variant{
				{ID: "sku-5", Color: "黑色", Combo: "蓝牙版"},
				{ID: "sku-6", Color: "黑色", Combo: "eSIM版"},
			},
		},
		{
			ID: "spu-xiaomi14", Name: "Xiaomi 14", Brand: "小米",
			Variants: []catalog.Variant{
				{ID: "sku-7", Color: "岩石灰", Spec: "16GB+1TB"},
			},
		},
		{ID: "spu-blank", Name: "   "},
	}
}

//Personal.AI order the ending
