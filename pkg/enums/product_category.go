package enums

import "fmt"

// ProductCategory groups catalog items on the storefront and in revenue reports.
type ProductCategory string

const (
	ProductCategoryAudio       ProductCategory = "Audio"
	ProductCategoryElectronics ProductCategory = "Electronics"
	ProductCategoryAccessories ProductCategory = "Accessories"
	ProductCategoryComputers   ProductCategory = "Computers"
	ProductCategoryGaming      ProductCategory = "Gaming"
	ProductCategoryOther       ProductCategory = "Other"
)

var validProductCategories = []ProductCategory{
	ProductCategoryAudio,
	ProductCategoryElectronics,
	ProductCategoryAccessories,
	ProductCategoryComputers,
	ProductCategoryGaming,
	ProductCategoryOther,
}

// String implements fmt.Stringer.
func (c ProductCategory) String() string {
	return string(c)
}

// IsValid reports whether the value is a known ProductCategory.
func (c ProductCategory) IsValid() bool {
	for _, candidate := range validProductCategories {
		if candidate == c {
			return true
		}
	}
	return false
}

// ParseProductCategory converts raw input into a ProductCategory.
func ParseProductCategory(value string) (ProductCategory, error) {
	for _, candidate := range validProductCategories {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid product category %q", value)
}
