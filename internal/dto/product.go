// Package dto holds the request and response shapes exchanged between the admin web
// app and the backend API. Stored records travel as the models types.
package dto

import (
	"sort"
	"strings"

	"winelabel/models"
)

// ProductInput is the body of a product create request.
type ProductInput struct {
	Name              string  `json:"name" validate:"required,max=255"`
	Brand             string  `json:"brand" validate:"max=255"`
	NetVolume         string  `json:"net_volume" validate:"max=32"`
	Vintage           string  `json:"vintage" validate:"omitempty,numeric,len=4"`
	Type              string  `json:"type" validate:"product_type"`
	SugarContent      string  `json:"sugar_content" validate:"sugar_content"`
	Alcohol           string  `json:"alcohol" validate:"max=16"`
	CountryOfOrigin   string  `json:"country_of_origin" validate:"max=128"`
	SKUCode           string  `json:"sku_code" validate:"max=64"`
	EANGTIN           string  `json:"ean_gtin" validate:"omitempty,numeric,min=8,max=14"`
	AppellationID     *string `json:"appellation_id,omitempty" validate:"omitempty,eq=|uuid"`
	Appellation       string  `json:"appellation,omitempty" validate:"max=255"`
	ImageURL          string  `json:"image_url" validate:"omitempty,url"`
	QRCodeURL         string  `json:"qr_code_url" validate:"omitempty,url"`
	ExternalShortLink string  `json:"external_short_link" validate:"omitempty,url"`
	RedirectLink      string  `json:"redirect_link" validate:"omitempty,url"`

	Nutrition      *NutritionInput      `json:"nutrition,omitempty"`
	Certifications *CertificationsInput `json:"certifications,omitempty"`
	Operator       *OperatorInput       `json:"operator,omitempty"`
	Consumption    *ConsumptionInput    `json:"consumption,omitempty"`
	IngredientIDs  []string             `json:"ingredient_ids,omitempty" validate:"omitempty,dive,required"`
}

// ProductPatch is the body of a product update request. Nil fields are left untouched;
// present fields follow the ProductInput rules and an empty string clears them.
type ProductPatch struct {
	Name              *string `json:"name,omitempty" validate:"omitempty,min=1,max=255"`
	Brand             *string `json:"brand,omitempty" validate:"omitempty,max=255"`
	NetVolume         *string `json:"net_volume,omitempty" validate:"omitempty,max=32"`
	Vintage           *string `json:"vintage,omitempty" validate:"omitempty,eq=|numeric,eq=|len=4"`
	Type              *string `json:"type,omitempty" validate:"omitempty,product_type"`
	SugarContent      *string `json:"sugar_content,omitempty" validate:"omitempty,sugar_content"`
	Alcohol           *string `json:"alcohol,omitempty" validate:"omitempty,max=16"`
	CountryOfOrigin   *string `json:"country_of_origin,omitempty" validate:"omitempty,max=128"`
	SKUCode           *string `json:"sku_code,omitempty" validate:"omitempty,max=64"`
	EANGTIN           *string `json:"ean_gtin,omitempty" validate:"omitempty,eq=|numeric,eq=|min=8,max=14"`
	AppellationID     *string `json:"appellation_id,omitempty" validate:"omitempty,eq=|uuid"`
	Appellation       *string `json:"appellation,omitempty" validate:"omitempty,max=255"`
	ImageURL          *string `json:"image_url,omitempty" validate:"omitempty,eq=|url"`
	QRCodeURL         *string `json:"qr_code_url,omitempty" validate:"omitempty,eq=|url"`
	ExternalShortLink *string `json:"external_short_link,omitempty" validate:"omitempty,eq=|url"`
	RedirectLink      *string `json:"redirect_link,omitempty" validate:"omitempty,eq=|url"`

	Nutrition      *NutritionInput      `json:"nutrition,omitempty"`
	Certifications *CertificationsInput `json:"certifications,omitempty"`
	Operator       *OperatorInput       `json:"operator,omitempty"`
	Consumption    *ConsumptionInput    `json:"consumption,omitempty"`
	IngredientIDs  *[]string            `json:"ingredient_ids,omitempty"`
}

// NutritionInput declares per-100ml values. Nil values are shown as not declared.
type NutritionInput struct {
	EnergyKJ     *float64 `json:"energy_kj" validate:"omitempty,gte=0"`
	EnergyKcal   *float64 `json:"energy_kcal" validate:"omitempty,gte=0"`
	Fat          *float64 `json:"fat" validate:"omitempty,gte=0"`
	Saturates    *float64 `json:"saturates" validate:"omitempty,gte=0"`
	Carbohydrate *float64 `json:"carbohydrate" validate:"omitempty,gte=0"`
	Sugars       *float64 `json:"sugars" validate:"omitempty,gte=0"`
	Protein      *float64 `json:"protein" validate:"omitempty,gte=0"`
	Salt         *float64 `json:"salt" validate:"omitempty,gte=0"`
}

type CertificationsInput struct {
	Organic    bool `json:"organic"`
	Vegan      bool `json:"vegan"`
	Vegetarian bool `json:"vegetarian"`
}

type OperatorInput struct {
	Type                  string `json:"type" validate:"operator_type"`
	Name                  string `json:"name" validate:"max=255"`
	Address               string `json:"address" validate:"max=1024"`
	AdditionalInformation string `json:"additional_information" validate:"max=2048"`
}

type ConsumptionInput struct {
	Age       bool `json:"age"`
	Driving   bool `json:"driving"`
	Pregnancy bool `json:"pregnancy"`
}

// ProductInputFrom converts a stored product back into a create input, keeping the
// ordered ingredient list and every sub-entity.
func ProductInputFrom(product models.Product) ProductInput {
	input := ProductInput{
		Name:              product.Name,
		Brand:             product.Brand,
		NetVolume:         product.NetVolume,
		Vintage:           product.Vintage,
		Type:              product.Type,
		SugarContent:      product.SugarContent,
		Alcohol:           product.Alcohol,
		CountryOfOrigin:   product.CountryOfOrigin,
		SKUCode:           product.SKUCode,
		EANGTIN:           product.EANGTIN,
		AppellationID:     product.AppellationID,
		ImageURL:          product.ImageURL,
		QRCodeURL:         product.QRCodeURL,
		ExternalShortLink: product.ExternalShortLink,
		RedirectLink:      product.RedirectLink,
		IngredientIDs:     OrderedIngredientIDs(product.Ingredients),
	}
	if n := product.Nutrition; n != nil {
		input.Nutrition = &NutritionInput{
			EnergyKJ:     n.EnergyKJ,
			EnergyKcal:   n.EnergyKcal,
			Fat:          n.Fat,
			Saturates:    n.Saturates,
			Carbohydrate: n.Carbohydrate,
			Sugars:       n.Sugars,
			Protein:      n.Protein,
			Salt:         n.Salt,
		}
	}
	if c := product.Certifications; c != nil {
		input.Certifications = &CertificationsInput{Organic: c.Organic, Vegan: c.Vegan, Vegetarian: c.Vegetarian}
	}
	if o := product.Operator; o != nil {
		input.Operator = &OperatorInput{
			Type:                  o.Type,
			Name:                  o.Name,
			Address:               o.Address,
			AdditionalInformation: o.AdditionalInformation,
		}
	}
	if c := product.Consumption; c != nil {
		input.Consumption = &ConsumptionInput{Age: c.Age, Driving: c.Driving, Pregnancy: c.Pregnancy}
	}
	return input
}

// OrderedIngredientIDs returns the ingredient ids of links sorted by order number.
func OrderedIngredientIDs(links []models.ProductIngredient) []string {
	if len(links) == 0 {
		return nil
	}
	sorted := make([]models.ProductIngredient, len(links))
	copy(sorted, links)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].OrderNumber < sorted[j].OrderNumber })
	ids := make([]string, 0, len(sorted))
	for _, link := range sorted {
		ids = append(ids, link.IngredientID)
	}
	return ids
}

// UniqueIDs trims ids, drops blanks and keeps the first position of repeated ids.
func UniqueIDs(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	result := make([]string, 0, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		result = append(result, id)
	}
	return result
}
