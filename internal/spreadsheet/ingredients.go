package spreadsheet

import (
	"io"
	"strings"

	"winelabel/internal/dto"
	"winelabel/internal/validation"
	"winelabel/models"
)

var IngredientColumns = []string{"Name", "Category", "E Number", "Allergens"}

// ExportIngredients writes one "Ingredients" sheet; allergens are joined with ", ".
func ExportIngredients(w io.Writer, ingredients []models.Ingredient) error {
	records := make([][]any, 0, len(ingredients))
	for _, i := range ingredients {
		records = append(records, []any{i.Name, i.Category, i.ENumber, strings.Join(i.Allergens, ", ")})
	}
	return writeSheet(w, "Ingredients", IngredientColumns, records)
}

// IngredientInputs maps rows to create inputs. Allergen lists may be separated by
// commas or semicolons.
func IngredientInputs(rows []Row, v *validation.Validator) ([]dto.ImportRow[dto.IngredientInput], []RowError) {
	result := make([]dto.ImportRow[dto.IngredientInput], 0, len(rows))
	for _, row := range rows {
		input := dto.IngredientInput{
			Name:      row.Get("Name", "Ingredient"),
			Category:  canonicalOr(models.CanonicalIngredientCategory, row.Get("Category")),
			ENumber:   strings.ToUpper(row.Get("E Number", "E-Number", "ENumber")),
			Allergens: models.ParseAllergenList(row.Get("Allergens")),
		}
		result = append(result, dto.ImportRow[dto.IngredientInput]{Row: row.Number, Input: input})
	}
	return partition(result, v)
}
