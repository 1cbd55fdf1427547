package models

type Ingredient struct {
	Model
	Name      string   `gorm:"not null;index" json:"name"`
	Category  string   `gorm:"type:varchar(32);not null;default:Other" json:"category"`
	ENumber   string   `gorm:"column:e_number" json:"e_number"`
	Allergens []string `gorm:"type:text;serializer:json" json:"allergens"`
}
