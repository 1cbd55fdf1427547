package models

import (
	"sort"
	"strings"
)

const (
	ProductTypeRed       = "Red Wine"
	ProductTypeWhite     = "White Wine"
	ProductTypeRose      = "Rosé Wine"
	ProductTypeChampagne = "Champagne"
	ProductTypeSparkling = "Sparkling Wine"
	ProductTypeDessert   = "Dessert Wine"

	DefaultIngredientCategory = "Other"
)

var (
	productTypes = []string{
		ProductTypeRed,
		ProductTypeWhite,
		ProductTypeRose,
		ProductTypeChampagne,
		ProductTypeSparkling,
		ProductTypeDessert,
	}
	sugarContents        = []string{"Dry", "Semi-Dry", "Semi-Sweet", "Sweet", "Brut", "Extra Brut"}
	ingredientCategories = []string{
		"Preservative",
		"Antioxidant",
		"Colorant",
		"Flavoring",
		"Stabilizer",
		"Emulsifier",
		"Acidifier",
		"Fining Agent",
		DefaultIngredientCategory,
	}
	operatorTypes = []string{"Producer", "Distributor", "Importer", "Retailer"}
	allergens     = []string{
		"gluten", "nuts", "milk", "eggs", "fish", "shellfish",
		"soy", "sulfites", "sesame", "mustard", "celery", "lupin",
	}
)

// ProductTypes returns the wine styles a product may declare.
func ProductTypes() []string { return cloneStrings(productTypes) }

// SugarContents returns the accepted sweetness levels.
func SugarContents() []string { return cloneStrings(sugarContents) }

// IngredientCategories returns the accepted ingredient categories.
func IngredientCategories() []string { return cloneStrings(ingredientCategories) }

// OperatorTypes returns the accepted food business operator roles.
func OperatorTypes() []string { return cloneStrings(operatorTypes) }

// Allergens returns the allergen vocabulary.
func Allergens() []string { return cloneStrings(allergens) }

// CanonicalProductType matches value case-insensitively against the product types.
func CanonicalProductType(value string) (string, bool) {
	return canonical(productTypes, value)
}

// CanonicalSugarContent matches value case-insensitively against the sweetness levels.
func CanonicalSugarContent(value string) (string, bool) {
	return canonical(sugarContents, value)
}

// CanonicalIngredientCategory matches value case-insensitively against the categories.
func CanonicalIngredientCategory(value string) (string, bool) {
	return canonical(ingredientCategories, value)
}

// CanonicalOperatorType matches value case-insensitively against the operator roles.
func CanonicalOperatorType(value string) (string, bool) {
	return canonical(operatorTypes, value)
}

// ValidAllergen reports whether value belongs to the allergen vocabulary.
func ValidAllergen(value string) bool {
	_, ok := canonical(allergens, value)
	return ok
}

// NormalizeAllergens lower-cases, trims and de-duplicates values. Unknown tags are
// returned separately so callers can reject them.
func NormalizeAllergens(values []string) (normalized []string, unknown []string) {
	seen := make(map[string]struct{}, len(values))
	normalized = make([]string, 0, len(values))
	for _, value := range values {
		key := strings.ToLower(strings.TrimSpace(value))
		if key == "" {
			continue
		}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		if !ValidAllergen(key) {
			unknown = append(unknown, value)
			continue
		}
		normalized = append(normalized, key)
	}
	sort.Strings(normalized)
	return normalized, unknown
}

// ParseAllergenList splits a comma or semicolon separated allergen string.
func ParseAllergenList(value string) []string {
	value = strings.ReplaceAll(value, ";", ",")
	parts := strings.Split(value, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

func canonical(options []string, value string) (string, bool) {
	trimmed := strings.TrimSpace(value)
	for _, option := range options {
		if strings.EqualFold(option, trimmed) {
			return option, true
		}
	}
	return "", false
}

func cloneStrings(values []string) []string {
	result := make([]string, len(values))
	copy(result, values)
	return result
}
