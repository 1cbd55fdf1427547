package dto

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"winelabel/models"
)

func TestUniqueIDsKeepsFirstPosition(t *testing.T) {
	got := UniqueIDs([]string{"b", " a ", "", "b", "c", "a"})
	assert.Equal(t, []string{"b", "a", "c"}, got)
}

func TestOrderedIngredientIDsSortsByOrderNumber(t *testing.T) {
	links := []models.ProductIngredient{
		{IngredientID: "third", OrderNumber: 3},
		{IngredientID: "first", OrderNumber: 1},
		{IngredientID: "second", OrderNumber: 2},
	}

	assert.Equal(t, []string{"first", "second", "third"}, OrderedIngredientIDs(links))
	assert.Equal(t, "third", links[0].IngredientID, "input must not be reordered")
	assert.Nil(t, OrderedIngredientIDs(nil))
}

func TestProductInputFromCopiesSubEntities(t *testing.T) {
	kcal := 76.0
	appellation := "app-1"
	product := models.Product{
		Name:          "Château Margaux",
		SKUCode:       "CM-2019-750",
		AppellationID: &appellation,
		Nutrition:     &models.NutritionInfo{EnergyKcal: &kcal},
		Certifications: &models.Certifications{
			Organic: true,
		},
		Operator:    &models.FoodBusinessOperator{Type: "Producer", Name: "Château Margaux SAS"},
		Consumption: &models.ResponsibleConsumption{Pregnancy: true},
		Ingredients: []models.ProductIngredient{
			{IngredientID: "so2", OrderNumber: 2},
			{IngredientID: "grapes", OrderNumber: 1},
		},
	}

	input := ProductInputFrom(product)

	assert.Equal(t, "Château Margaux", input.Name)
	assert.Equal(t, "CM-2019-750", input.SKUCode)
	require.NotNil(t, input.AppellationID)
	assert.Equal(t, "app-1", *input.AppellationID)
	require.NotNil(t, input.Nutrition)
	assert.Equal(t, 76.0, *input.Nutrition.EnergyKcal)
	assert.Nil(t, input.Nutrition.Fat)
	require.NotNil(t, input.Certifications)
	assert.True(t, input.Certifications.Organic)
	require.NotNil(t, input.Operator)
	assert.Equal(t, "Producer", input.Operator.Type)
	require.NotNil(t, input.Consumption)
	assert.True(t, input.Consumption.Pregnancy)
	assert.Equal(t, []string{"grapes", "so2"}, input.IngredientIDs)
}

func TestLabelFromProductOrdersIngredients(t *testing.T) {
	product := models.Product{
		Model:   models.Model{ID: "p1"},
		Name:    "Brut Réserve",
		Vintage: "",
		UserID:  "owner",
		Ingredients: []models.ProductIngredient{
			{OrderNumber: 2, Ingredient: &models.Ingredient{Name: "Sulfur Dioxide", ENumber: "E220", Allergens: []string{"sulfites"}}},
			{OrderNumber: 1, Ingredient: &models.Ingredient{Name: "Grapes"}},
			{OrderNumber: 3},
		},
	}

	label := LabelFromProduct(product)

	assert.Equal(t, "p1", label.ID)
	require.Len(t, label.Ingredients, 2)
	assert.Equal(t, "Grapes", label.Ingredients[0].Name)
	assert.Equal(t, "E220", label.Ingredients[1].ENumber)
	assert.Equal(t, []string{"sulfites"}, label.Ingredients[1].Allergens)
}
