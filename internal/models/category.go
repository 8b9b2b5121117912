package models

import (
	"fmt"

	"auction-house/internal/biddingerrors"
)

// Category is the short code of a listing category
type Category string

const (
	CategoryElectronics Category = "EnG"
	CategoryFashion     Category = "FnA"
	CategoryHome        Category = "HnL"
	CategoryBeauty      Category = "BnP"
	CategorySports      Category = "SnF"
	CategoryBooks       Category = "BnS"
	CategoryToys        Category = "TnG"
	CategoryHealth      Category = "HnW"
	CategoryKitchen     Category = "KnD"
	CategoryJewelry     Category = "JnA"
)

var categoryLabels = map[Category]string{
	CategoryElectronics: "Electronics & Gadgets",
	CategoryFashion:     "Fashion & Apparel",
	CategoryHome:        "Home & Living",
	CategoryBeauty:      "Beauty & Personal Care",
	CategorySports:      "Sports & Fitness",
	CategoryBooks:       "Books & Stationery",
	CategoryToys:        "Toys & Games",
	CategoryHealth:      "Health & Wellness",
	CategoryKitchen:     "Kitchen & Dining",
	CategoryJewelry:     "Jewelry & Accessories",
}

// CategoryInfo pairs a category code with its display label
type CategoryInfo struct {
	Code  Category `json:"code"`
	Label string   `json:"label"`
}

// Categories returns the fixed category enumeration in display order
func Categories() []CategoryInfo {
	codes := []Category{
		CategoryElectronics, CategoryFashion, CategoryHome, CategoryBeauty, CategorySports,
		CategoryBooks, CategoryToys, CategoryHealth, CategoryKitchen, CategoryJewelry,
	}
	out := make([]CategoryInfo, 0, len(codes))
	for _, c := range codes {
		out = append(out, CategoryInfo{Code: c, Label: categoryLabels[c]})
	}
	return out
}

// ParseCategory resolves a category code. Codes are case sensitive.
func ParseCategory(code string) (Category, error) {
	c := Category(code)
	if _, ok := categoryLabels[c]; !ok {
		return "", fmt.Errorf("category %q: %w", code, biddingerrors.ErrInvalidCategory)
	}
	return c, nil
}

// Label returns the display label, or an empty string for an uncategorized listing
func (c Category) Label() string {
	return categoryLabels[c]
}

// Valid reports whether c is one of the fixed categories
func (c Category) Valid() bool {
	_, ok := categoryLabels[c]
	return ok
}
