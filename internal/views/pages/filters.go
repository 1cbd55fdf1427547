package pages

import (
	"net/http"
	"strings"

	"winelabel/models"
)

// ListFilters capture the search box of the product and ingredient lists.
type ListFilters struct {
	Query string
}

// ListFiltersFromRequest reads the "q" query parameter.
func ListFiltersFromRequest(r *http.Request) ListFilters {
	return ListFilters{Query: strings.TrimSpace(r.URL.Query().Get("q"))}
}

// FilterProducts keeps products whose name, brand or SKU code contains the query,
// ignoring case.
func FilterProducts(all []models.Product, filters ListFilters) []models.Product {
	if filters.Query == "" {
		return all
	}
	query := strings.ToLower(filters.Query)
	filtered := make([]models.Product, 0, len(all))
	for _, product := range all {
		if containsFold(product.Name, query) ||
			containsFold(product.Brand, query) ||
			containsFold(product.SKUCode, query) {
			filtered = append(filtered, product)
		}
	}
	return filtered
}

// FilterIngredients keeps ingredients whose name, category or E-number contains the
// query, ignoring case.
func FilterIngredients(all []models.Ingredient, filters ListFilters) []models.Ingredient {
	if filters.Query == "" {
		return all
	}
	query := strings.ToLower(filters.Query)
	filtered := make([]models.Ingredient, 0, len(all))
	for _, ingredient := range all {
		if containsFold(ingredient.Name, query) ||
			containsFold(ingredient.Category, query) ||
			containsFold(ingredient.ENumber, query) {
			filtered = append(filtered, ingredient)
		}
	}
	return filtered
}

func containsFold(value, lowerQuery string) bool {
	return strings.Contains(strings.ToLower(value), lowerQuery)
}
