package handlers

import (
	"net/http"
	"sort"
	"strconv"
	"strings"

	"winelabel/internal/dto"
)

// productForm reads the product form. Numbers that do not parse are reported per
// field and left unset.
func productForm(r *http.Request) (dto.ProductInput, map[string]string) {
	value := func(name string) string { return strings.TrimSpace(r.PostFormValue(name)) }
	checked := func(name string) bool { return r.PostFormValue(name) == "true" }
	errs := map[string]string{}

	input := dto.ProductInput{
		Name:              value("name"),
		Brand:             value("brand"),
		NetVolume:         value("net_volume"),
		Vintage:           value("vintage"),
		Type:              value("type"),
		SugarContent:      value("sugar_content"),
		Alcohol:           value("alcohol"),
		CountryOfOrigin:   value("country_of_origin"),
		SKUCode:           value("sku_code"),
		EANGTIN:           value("ean_gtin"),
		ImageURL:          value("image_url"),
		ExternalShortLink: value("external_short_link"),
		RedirectLink:      value("redirect_link"),
	}
	if id := value("appellation_id"); id != "" {
		input.AppellationID = &id
	} else {
		input.Appellation = value("appellation")
	}

	number := func(name string) *float64 {
		raw := value(name)
		if raw == "" {
			return nil
		}
		parsed, err := strconv.ParseFloat(strings.ReplaceAll(raw, ",", "."), 64)
		if err != nil {
			errs[name] = "must be a number"
			return nil
		}
		return &parsed
	}
	nutrition := dto.NutritionInput{
		EnergyKJ:     number("nutrition.energy_kj"),
		EnergyKcal:   number("nutrition.energy_kcal"),
		Fat:          number("nutrition.fat"),
		Saturates:    number("nutrition.saturates"),
		Carbohydrate: number("nutrition.carbohydrate"),
		Sugars:       number("nutrition.sugars"),
		Protein:      number("nutrition.protein"),
		Salt:         number("nutrition.salt"),
	}
	input.Nutrition = &nutrition

	input.Certifications = &dto.CertificationsInput{
		Organic:    checked("organic"),
		Vegan:      checked("vegan"),
		Vegetarian: checked("vegetarian"),
	}
	input.Consumption = &dto.ConsumptionInput{
		Age:       checked("warning_age"),
		Driving:   checked("warning_driving"),
		Pregnancy: checked("warning_pregnancy"),
	}
	operator := dto.OperatorInput{
		Type:                  value("operator_type"),
		Name:                  value("operator_name"),
		Address:               value("operator_address"),
		AdditionalInformation: value("operator_information"),
	}
	if operator != (dto.OperatorInput{}) {
		input.Operator = &operator
	}

	input.IngredientIDs = orderedSelection(r)
	return input, errs
}

// orderedSelection returns the ticked ingredient ids sorted by their order inputs.
// Ids without a valid order keep their form position after the numbered ones.
func orderedSelection(r *http.Request) []string {
	ids := dto.UniqueIDs(r.PostForm["ingredient_ids"])
	type selected struct {
		id    string
		order int
	}
	items := make([]selected, 0, len(ids))
	for _, id := range ids {
		order, err := strconv.Atoi(strings.TrimSpace(r.PostFormValue("order_" + id)))
		if err != nil || order <= 0 {
			order = int(^uint(0) >> 1)
		}
		items = append(items, selected{id: id, order: order})
	}
	sort.SliceStable(items, func(i, j int) bool { return items[i].order < items[j].order })

	result := make([]string, 0, len(items))
	for _, item := range items {
		result = append(result, item.id)
	}
	return result
}

// productPatch turns a full form submission into an update that sets every field.
// A cleared appellation unlinks it.
func productPatch(input dto.ProductInput) dto.ProductPatch {
	ingredientIDs := input.IngredientIDs
	if ingredientIDs == nil {
		ingredientIDs = []string{}
	}
	patch := dto.ProductPatch{
		Name:              &input.Name,
		Brand:             &input.Brand,
		NetVolume:         &input.NetVolume,
		Vintage:           &input.Vintage,
		Type:              &input.Type,
		SugarContent:      &input.SugarContent,
		Alcohol:           &input.Alcohol,
		CountryOfOrigin:   &input.CountryOfOrigin,
		SKUCode:           &input.SKUCode,
		EANGTIN:           &input.EANGTIN,
		ImageURL:          &input.ImageURL,
		ExternalShortLink: &input.ExternalShortLink,
		RedirectLink:      &input.RedirectLink,
		Nutrition:         input.Nutrition,
		Certifications:    input.Certifications,
		Operator:          input.Operator,
		Consumption:       input.Consumption,
		IngredientIDs:     &ingredientIDs,
	}
	if patch.Operator == nil {
		patch.Operator = &dto.OperatorInput{}
	}
	switch {
	case input.AppellationID != nil:
		patch.AppellationID = input.AppellationID
	case input.Appellation != "":
		patch.Appellation = &input.Appellation
	default:
		cleared := ""
		patch.AppellationID = &cleared
	}
	return patch
}

func ingredientForm(r *http.Request) dto.IngredientInput {
	return dto.IngredientInput{
		Name:      strings.TrimSpace(r.PostFormValue("name")),
		Category:  strings.TrimSpace(r.PostFormValue("category")),
		ENumber:   strings.TrimSpace(r.PostFormValue("e_number")),
		Allergens: r.PostForm["allergens"],
	}
}

func ingredientPatch(input dto.IngredientInput) dto.IngredientPatch {
	allergens := input.Allergens
	if allergens == nil {
		allergens = []string{}
	}
	return dto.IngredientPatch{
		Name:      &input.Name,
		Category:  &input.Category,
		ENumber:   &input.ENumber,
		Allergens: &allergens,
	}
}
