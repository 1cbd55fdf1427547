package theme

import (
	"strings"

	"winelabel/models"
)

// LabelTheme contains the styling primitives for a printed label and the product
// badges that share its palette.
type LabelTheme struct {
	Key          string
	SurfaceClass string
	AccentClass  string
	BadgeClass   string
	RuleClass    string
}

const (
	// DefaultKey is used for products without a recognised style.
	DefaultKey = "neutral"
)

var catalogue = map[string]LabelTheme{
	"neutral": {
		Key:          "neutral",
		SurfaceClass: "bg-white text-stone-900",
		AccentClass:  "text-stone-900",
		BadgeClass:   "bg-stone-100 text-stone-700",
		RuleClass:    "border-stone-900",
	},
	"red": {
		Key:          "red",
		SurfaceClass: "bg-white text-stone-900",
		AccentClass:  "text-rose-900",
		BadgeClass:   "bg-rose-100 text-rose-900",
		RuleClass:    "border-rose-900",
	},
	"white": {
		Key:          "white",
		SurfaceClass: "bg-amber-50 text-stone-900",
		AccentClass:  "text-amber-800",
		BadgeClass:   "bg-amber-100 text-amber-900",
		RuleClass:    "border-amber-800",
	},
	"rose": {
		Key:          "rose",
		SurfaceClass: "bg-pink-50 text-stone-900",
		AccentClass:  "text-pink-700",
		BadgeClass:   "bg-pink-100 text-pink-800",
		RuleClass:    "border-pink-700",
	},
	"sparkling": {
		Key:          "sparkling",
		SurfaceClass: "bg-yellow-50 text-stone-900",
		AccentClass:  "text-yellow-800",
		BadgeClass:   "bg-yellow-100 text-yellow-900",
		RuleClass:    "border-yellow-700",
	},
	"dessert": {
		Key:          "dessert",
		SurfaceClass: "bg-orange-50 text-stone-900",
		AccentClass:  "text-orange-800",
		BadgeClass:   "bg-orange-100 text-orange-900",
		RuleClass:    "border-orange-800",
	},
}

var byProductType = map[string]string{
	models.ProductTypeRed:       "red",
	models.ProductTypeWhite:     "white",
	models.ProductTypeRose:      "rose",
	models.ProductTypeChampagne: "sparkling",
	models.ProductTypeSparkling: "sparkling",
	models.ProductTypeDessert:   "dessert",
}

// Resolve returns the registered theme for the provided key.
func Resolve(key string) LabelTheme {
	normalized := strings.ToLower(strings.TrimSpace(key))
	if value, ok := catalogue[normalized]; ok {
		return value
	}
	return catalogue[DefaultKey]
}

// ForProductType picks the palette of a wine style. Matching ignores case.
func ForProductType(productType string) LabelTheme {
	if canonical, ok := models.CanonicalProductType(productType); ok {
		return Resolve(byProductType[canonical])
	}
	return Resolve(DefaultKey)
}
