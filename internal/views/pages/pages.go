// Package pages renders the admin screens and the public label.
package pages

import (
	"sort"
	"strconv"
	"strings"

	"winelabel/internal/dto"
	"winelabel/internal/label"
	"winelabel/internal/views/components"
	"winelabel/internal/views/theme"
	"winelabel/models"
)

func formatNumber(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

func orDash(value string) string {
	if value == "" {
		return "-"
	}
	return value
}

func badgeClass(productType string) string {
	return theme.ForProductType(productType).BadgeClass
}

func appellationName(p models.Product) string {
	if p.Appellation == nil {
		return ""
	}
	return p.Appellation.Name
}

// field is one labelled form input.
type field struct {
	Label    string
	Type     string
	Name     string
	Value    string
	Required bool
	Error    string
}

func (f field) inputType() string {
	if f.Type == "" {
		return "text"
	}
	return f.Type
}

// AuthForm carries the values echoed back on the login and registration screens.
type AuthForm struct {
	Email    string
	FullName string
	Error    string
}

// ProductsData is the product list. Query is the active search and Total counts the
// products before filtering.
type ProductsData struct {
	Products []models.Product
	Query    string
	Total    int
}

// IngredientOption is one selectable ingredient on the product form. Order is the
// 1-based position on the label, zero when the ingredient is not selected.
type IngredientOption struct {
	ID      string
	Name    string
	ENumber string
	Order   int
}

// NumberField is a numeric input of the nutrition block.
type NumberField struct {
	Name  string
	Label string
	Value string
}

type ProductFormData struct {
	Title      string
	Action     string
	Submit     string
	CancelPath string
	// FormPath is where the appellation form returns after a create.
	FormPath string
	Values   dto.ProductInput
	// AppellationID is the selected appellation, Appellation the free-text name.
	AppellationID string
	Appellation   string
	Appellations  []models.Appellation
	Ingredients   []IngredientOption
	Nutrition     []NumberField
	Errors        map[string]string
	ProductTypes  []string
	SugarContents []string
	OperatorTypes []string
}

// NewProductForm fills the option lists and the nutrition inputs from values.
func NewProductForm(values dto.ProductInput, appellations []models.Appellation, ingredients []models.Ingredient) ProductFormData {
	data := ProductFormData{
		Values:        values,
		Appellations:  appellations,
		ProductTypes:  models.ProductTypes(),
		SugarContents: models.SugarContents(),
		OperatorTypes: models.OperatorTypes(),
		Nutrition:     nutritionFields(values.Nutrition),
		Errors:        map[string]string{},
	}
	data.Appellation = values.Appellation
	if values.AppellationID != nil {
		for _, a := range appellations {
			if a.ID == *values.AppellationID {
				data.AppellationID = a.ID
				data.Appellation = ""
			}
		}
	}

	order := make(map[string]int, len(values.IngredientIDs))
	for i, id := range values.IngredientIDs {
		order[id] = i + 1
	}
	for _, ing := range ingredients {
		data.Ingredients = append(data.Ingredients, IngredientOption{
			ID:      ing.ID,
			Name:    ing.Name,
			ENumber: ing.ENumber,
			Order:   order[ing.ID],
		})
	}
	// Selected ingredients first, in label order.
	sort.SliceStable(data.Ingredients, func(i, j int) bool {
		a, b := data.Ingredients[i].Order, data.Ingredients[j].Order
		if a == 0 || b == 0 {
			return a != 0 && b == 0
		}
		return a < b
	})
	return data
}

func nutritionFields(n *dto.NutritionInput) []NumberField {
	if n == nil {
		n = &dto.NutritionInput{}
	}
	return []NumberField{
		{Name: "nutrition.energy_kj", Label: "Energy (kJ)", Value: formatNumber(n.EnergyKJ)},
		{Name: "nutrition.energy_kcal", Label: "Energy (kcal)", Value: formatNumber(n.EnergyKcal)},
		{Name: "nutrition.fat", Label: "Fat (g)", Value: formatNumber(n.Fat)},
		{Name: "nutrition.saturates", Label: "of which saturates (g)", Value: formatNumber(n.Saturates)},
		{Name: "nutrition.carbohydrate", Label: "Carbohydrate (g)", Value: formatNumber(n.Carbohydrate)},
		{Name: "nutrition.sugars", Label: "of which sugars (g)", Value: formatNumber(n.Sugars)},
		{Name: "nutrition.protein", Label: "Protein (g)", Value: formatNumber(n.Protein)},
		{Name: "nutrition.salt", Label: "Salt (g)", Value: formatNumber(n.Salt)},
	}
}

func (d ProductFormData) certifications() dto.CertificationsInput {
	if d.Values.Certifications == nil {
		return dto.CertificationsInput{}
	}
	return *d.Values.Certifications
}

func (d ProductFormData) consumption() dto.ConsumptionInput {
	if d.Values.Consumption == nil {
		return dto.ConsumptionInput{}
	}
	return *d.Values.Consumption
}

func (d ProductFormData) operator() dto.OperatorInput {
	if d.Values.Operator == nil {
		return dto.OperatorInput{}
	}
	return *d.Values.Operator
}

func orderValue(order int) string {
	if order == 0 {
		return ""
	}
	return strconv.Itoa(order)
}

type ProductDetailData struct {
	Product    models.Product
	PublicLink string
	ShortLink  string
	QRCodeURL  string
	Theme      theme.LabelTheme
}

func (d ProductDetailData) copyTarget() string {
	if d.ShortLink != "" {
		return d.ShortLink
	}
	return d.PublicLink
}

type IngredientsData struct {
	Ingredients []models.Ingredient
	Query       string
	Total       int
}

type IngredientDetailData struct {
	Ingredient models.Ingredient
}

type AllergenOption struct {
	Value   string
	Checked bool
}

type IngredientFormData struct {
	Title      string
	Action     string
	Submit     string
	CancelPath string
	Values     dto.IngredientInput
	Categories []string
	Allergens  []AllergenOption
	Errors     map[string]string
}

// NewIngredientForm fills the category and allergen options from values.
func NewIngredientForm(values dto.IngredientInput) IngredientFormData {
	checked := make(map[string]bool, len(values.Allergens))
	for _, a := range values.Allergens {
		checked[strings.ToLower(a)] = true
	}
	data := IngredientFormData{
		Values:     values,
		Categories: models.IngredientCategories(),
		Errors:     map[string]string{},
	}
	for _, a := range models.Allergens() {
		data.Allergens = append(data.Allergens, AllergenOption{Value: a, Checked: checked[a]})
	}
	return data
}

// ImportData drives the spreadsheet upload screen. Summary is set after an upload.
type ImportData struct {
	Entity        string
	Action        string
	BackPath      string
	Columns       []string
	TechSheetPath string
	Summary       *ImportSummary
}

type ImportSummary struct {
	Total    int
	Created  int
	Failures []dto.ImportFailure
}

func labelTheme(view label.View) theme.LabelTheme {
	return theme.ForProductType(labelType(view))
}

func labelType(view label.View) string {
	if len(view.Style) == 0 {
		return ""
	}
	return view.Style[0]
}

var labelNotFound = components.NotFound{
	Title:   "Label not found",
	Message: "This product label does not exist or is no longer available.",
}
