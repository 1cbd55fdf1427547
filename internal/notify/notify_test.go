package notify

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"winelabel/internal/dto"
	"winelabel/internal/entities"
	"winelabel/internal/validation"
)

func TestMutationSuccessMessages(t *testing.T) {
	tests := []struct {
		result entities.MutationResult
		title  string
		desc   string
	}{
		{entities.MutationResult{Entity: entities.EntityProduct, Action: entities.ActionCreate}, "Product created", "Product has been successfully created."},
		{entities.MutationResult{Entity: entities.EntityProduct, Action: entities.ActionUpdate}, "Product updated", "Product has been successfully updated."},
		{entities.MutationResult{Entity: entities.EntityIngredient, Action: entities.ActionDelete}, "Ingredient deleted", "Ingredient has been successfully deleted."},
		{entities.MutationResult{Entity: entities.EntityIngredient, Action: entities.ActionDuplicate}, "Ingredient duplicated", "Ingredient has been successfully duplicated."},
	}

	for _, tt := range tests {
		n := Mutation(tt.result)
		assert.Equal(t, tt.title, n.Title)
		assert.Equal(t, tt.desc, n.Description)
		assert.False(t, n.Destructive())
	}
}

func TestMutationFailureHidesErrorDetail(t *testing.T) {
	n := Mutation(entities.MutationResult{
		Entity: entities.EntityProduct,
		Action: entities.ActionCreate,
		Err:    errors.New("client: HTTP error status 500: pq: duplicate key"),
	})

	assert.Equal(t, "Error", n.Title)
	assert.Equal(t, "Failed to create product. Please try again.", n.Description)
	assert.True(t, n.Destructive())
	assert.NotContains(t, n.Description, "pq")
}

func TestMutationValidationFailureNamesFields(t *testing.T) {
	n := Mutation(entities.MutationResult{
		Entity: entities.EntityIngredient,
		Action: entities.ActionUpdate,
		Err:    &validation.Error{Fields: map[string]string{"name": "is required", "category": "is invalid"}},
	})

	assert.Equal(t, "Invalid input", n.Title)
	assert.Equal(t, "Please check: category, name.", n.Description)
	assert.True(t, n.Destructive())
}

func TestImportSummary(t *testing.T) {
	assert.Equal(t, "No products found in the file.", Import(entities.ImportReport{Entity: entities.EntityProduct}).Description)

	partial := Import(entities.ImportReport{
		Entity:   entities.EntityIngredient,
		Total:    3,
		Created:  2,
		Failures: []dto.ImportFailure{{Row: 3, Error: "name is required"}},
	})
	assert.Equal(t, "Import complete", partial.Title)
	assert.Equal(t, "Imported 2 of 3 ingredients. 1 row failed.", partial.Description)
	assert.False(t, partial.Destructive())

	failed := Import(entities.ImportReport{
		Entity:   entities.EntityIngredient,
		Total:    1,
		Failures: []dto.ImportFailure{{Row: 2, Error: "boom"}},
	})
	assert.Equal(t, "Import failed", failed.Title)
	assert.True(t, failed.Destructive())

	several := Import(entities.ImportReport{
		Entity:   entities.EntityProduct,
		Total:    4,
		Created:  2,
		Failures: []dto.ImportFailure{{Row: 2, Error: "boom"}, {Row: 5, Error: "boom"}},
	})
	assert.Equal(t, "Imported 2 of 4 products. 2 rows failed.", several.Description)
}
