package dto

import (
	"sort"

	"winelabel/models"
)

// Label is the public projection of a product with every joined record needed to
// print its label. It carries no owner information.
type Label struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	Brand           string `json:"brand"`
	NetVolume       string `json:"net_volume"`
	Vintage         string `json:"vintage"`
	Type            string `json:"type"`
	SugarContent    string `json:"sugar_content"`
	Alcohol         string `json:"alcohol"`
	CountryOfOrigin string `json:"country_of_origin"`
	ImageURL        string `json:"image_url"`
	ShortCode       string `json:"short_code"`

	Appellation    *models.Appellation            `json:"appellation,omitempty"`
	Nutrition      *models.NutritionInfo          `json:"nutrition,omitempty"`
	Certifications *models.Certifications         `json:"certifications,omitempty"`
	Operator       *models.FoodBusinessOperator   `json:"operator,omitempty"`
	Consumption    *models.ResponsibleConsumption `json:"consumption,omitempty"`
	Ingredients    []LabelIngredient              `json:"ingredients"`
}

type LabelIngredient struct {
	Name        string   `json:"name"`
	Category    string   `json:"category"`
	ENumber     string   `json:"e_number"`
	Allergens   []string `json:"allergens"`
	OrderNumber int      `json:"order_number"`
}

// LabelFromProduct flattens a fully preloaded product. Links whose ingredient was not
// loaded are skipped.
func LabelFromProduct(product models.Product) Label {
	label := Label{
		ID:              product.ID,
		Name:            product.Name,
		Brand:           product.Brand,
		NetVolume:       product.NetVolume,
		Vintage:         product.Vintage,
		Type:            product.Type,
		SugarContent:    product.SugarContent,
		Alcohol:         product.Alcohol,
		CountryOfOrigin: product.CountryOfOrigin,
		ImageURL:        product.ImageURL,
		ShortCode:       product.ShortCode,
		Appellation:     product.Appellation,
		Nutrition:       product.Nutrition,
		Certifications:  product.Certifications,
		Operator:        product.Operator,
		Consumption:     product.Consumption,
		Ingredients:     make([]LabelIngredient, 0, len(product.Ingredients)),
	}
	for _, link := range product.Ingredients {
		if link.Ingredient == nil {
			continue
		}
		label.Ingredients = append(label.Ingredients, LabelIngredient{
			Name:        link.Ingredient.Name,
			Category:    link.Ingredient.Category,
			ENumber:     link.Ingredient.ENumber,
			Allergens:   link.Ingredient.Allergens,
			OrderNumber: link.OrderNumber,
		})
	}
	sort.SliceStable(label.Ingredients, func(i, j int) bool {
		return label.Ingredients[i].OrderNumber < label.Ingredients[j].OrderNumber
	})
	return label
}
