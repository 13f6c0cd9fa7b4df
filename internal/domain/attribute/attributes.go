package attribute

// Version describes a version or edition label such as 5G版 or 尊享版.
type Version struct {
	Name     string   `json:"name"`
	Keywords []string `json:"keywords"`
	Priority int      `json:"priority"`
}

// ProductType is the coarse device class of an input.
type ProductType string

const (
	ProductPhone   ProductType = "phone"
	ProductWatch   ProductType = "watch"
	ProductBand    ProductType = "band"
	ProductTablet  ProductType = "tablet"
	ProductLaptop  ProductType = "laptop"
	ProductEarbuds ProductType = "earbuds"
)

// Attributes is everything extracted from one input string.
type Attributes struct {
	Raw         string              `json:"raw"`
	Normalized  string              `json:"normalized"`
	Brand       Extraction[string]  `json:"brand"`
	Model       Extraction[string]  `json:"model"`
	Color       Extraction[string]  `json:"color"`
	Capacity    Extraction[string]  `json:"capacity"`
	Version     Extraction[Version] `json:"version"`
	ProductType ProductType         `json:"product_type"`
}

// VersionPtr returns the extracted version or nil.
func (a *Attributes) VersionPtr() *Version {
	if a == nil {
		return nil
	}
	return a.Version.Value
}

//Personal.AI order the ending
