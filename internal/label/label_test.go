package label

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"winelabel/internal/dto"
	"winelabel/models"
)

func f(v float64) *float64 { return &v }

func TestBuildUsesProductSubRecords(t *testing.T) {
	view := Build(dto.Label{
		ID:              "p1",
		Name:            "Château Margaux",
		Vintage:         "2019",
		Type:            models.ProductTypeRed,
		SugarContent:    "Dry",
		NetVolume:       "750 ml",
		Alcohol:         "13.5",
		CountryOfOrigin: "France",
		Appellation:     &models.Appellation{Name: "Margaux AOC"},
		Nutrition:       &models.NutritionInfo{EnergyKJ: f(318), EnergyKcal: f(76), Sugars: f(0.6)},
		Certifications:  &models.Certifications{Organic: true, Vegetarian: true},
		Consumption:     &models.ResponsibleConsumption{Age: true, Driving: true},
		Operator:        &models.FoodBusinessOperator{Type: "Producer", Name: "Château Margaux SAS", Address: "33460 Margaux"},
		Ingredients: []dto.LabelIngredient{
			{Name: "Grapes", OrderNumber: 1},
			{Name: "Sulfur Dioxide", ENumber: "E220", Allergens: []string{"Sulfites"}, OrderNumber: 2},
		},
	})

	assert.Equal(t, "WINE 2019", view.Heading)
	assert.Equal(t, "château margaux", view.Name)
	assert.Equal(t, "Margaux AOC", view.Appellation)
	assert.Equal(t, []string{"Red Wine", "Dry", "750 ml", "13.5% vol"}, view.Style)

	require.Len(t, view.Nutrition, 7)
	assert.Equal(t, []string{"318 kJ", "76 kcal"}, view.Nutrition[0].Values)
	assert.Equal(t, []string{Missing}, view.Nutrition[1].Values)
	assert.Equal(t, "of which Sugars", view.Nutrition[4].Label)
	assert.True(t, view.Nutrition[4].Indented)
	assert.Equal(t, []string{"0.6 g"}, view.Nutrition[4].Values)

	assert.Equal(t, []Warning{
		{Code: "18", Text: "Not for persons under the age of 18"},
		{Code: "driving", Text: "Do not drink and drive"},
	}, view.Warnings)
	assert.Equal(t, []string{"BIO", "VEGETARIAN"}, view.Certifications)
	assert.Equal(t, []Fact{
		{Label: "Producer", Value: "Château Margaux SAS, 33460 Margaux"},
		{Label: "Country", Value: "France"},
	}, view.Facts)

	require.Len(t, view.Ingredients, 2)
	assert.False(t, view.Ingredients[0].Allergen)
	assert.True(t, view.Ingredients[1].Allergen)
	assert.Equal(t, []string{"sulfites"}, view.Allergens)
}

func TestBuildWithoutSubRecords(t *testing.T) {
	view := Build(dto.Label{ID: "p2", Name: "Brut Réserve", Brand: "Maison Rémy"})

	assert.Equal(t, "WINE", view.Heading)
	for _, row := range view.Nutrition {
		for _, v := range row.Values {
			assert.Equal(t, Missing, v, row.Label)
		}
	}
	assert.Empty(t, view.Warnings)
	assert.Empty(t, view.Certifications)
	assert.Equal(t, []Fact{{Label: "Producer", Value: "Maison Rémy"}}, view.Facts)
}

func TestPublicLinks(t *testing.T) {
	assert.Equal(t, "https://labels.example.com/l/p1", PublicLink("https://labels.example.com/", "p1"))
	assert.Equal(t, "https://labels.example.com/s/ab23", ShortLink("https://labels.example.com", "ab23"))
}

func TestQRCodeURLEncodesLink(t *testing.T) {
	got := QRCodeURL("https://api.qrserver.com/v1/create-qr-code/", "https://labels.example.com/l/p1?x=1&y=2", 150)
	assert.Equal(t,
		"https://api.qrserver.com/v1/create-qr-code/?data=https%3A%2F%2Flabels.example.com%2Fl%2Fp1%3Fx%3D1%26y%3D2&size=150x150",
		got)

	assert.Contains(t, QRCodeURL("https://qr.example.com/render?format=svg", "x", 0), "?format=svg&data=x&size=200x200")
}
