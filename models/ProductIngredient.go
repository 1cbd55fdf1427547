package models

// ProductIngredient links a product to an ingredient. OrderNumber is 1-based and
// fixes the position of the ingredient on the printed label.
type ProductIngredient struct {
	Model
	ProductID    string `gorm:"type:varchar(36);not null;uniqueIndex:idx_product_ingredient" json:"product_id"`
	IngredientID string `gorm:"type:varchar(36);not null;uniqueIndex:idx_product_ingredient" json:"ingredient_id"`
	OrderNumber  int    `gorm:"not null;default:0" json:"order_number"`

	Ingredient *Ingredient `gorm:"foreignKey:IngredientID" json:"ingredient,omitempty"`
}
