package dto

import "winelabel/models"

// IngredientInput is the body of an ingredient create request.
type IngredientInput struct {
	Name      string   `json:"name" validate:"required,max=255"`
	Category  string   `json:"category" validate:"ingredient_category"`
	ENumber   string   `json:"e_number" validate:"max=32"`
	Allergens []string `json:"allergens" validate:"omitempty,dive,allergen"`
}

// IngredientPatch is the body of an ingredient update request.
type IngredientPatch struct {
	Name      *string   `json:"name,omitempty" validate:"omitempty,min=1,max=255"`
	Category  *string   `json:"category,omitempty" validate:"omitempty,ingredient_category"`
	ENumber   *string   `json:"e_number,omitempty" validate:"omitempty,max=32"`
	Allergens *[]string `json:"allergens,omitempty" validate:"omitempty,dive,allergen"`
}

// IngredientInputFrom converts a stored ingredient back into a create input.
func IngredientInputFrom(ingredient models.Ingredient) IngredientInput {
	allergens := make([]string, len(ingredient.Allergens))
	copy(allergens, ingredient.Allergens)
	return IngredientInput{
		Name:      ingredient.Name,
		Category:  ingredient.Category,
		ENumber:   ingredient.ENumber,
		Allergens: allergens,
	}
}

type AppellationInput struct {
	Name        string `json:"name" validate:"required,max=255"`
	Description string `json:"description" validate:"max=2048"`
}

// ImportFailure describes one spreadsheet row the backend could not store.
type ImportFailure struct {
	Row   int    `json:"row"`
	Error string `json:"error"`
}

// ImportResult is returned by the spreadsheet import endpoints.
type ImportResult struct {
	Created  int             `json:"created"`
	Failures []ImportFailure `json:"failures,omitempty"`
}

// ImportRow is one parsed spreadsheet row with its 1-based row number.
type ImportRow[T any] struct {
	Row   int
	Input T
}
