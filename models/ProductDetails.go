package models

// NutritionInfo holds the per-100ml nutrition declaration of a product.
type NutritionInfo struct {
	Model
	ProductID    string   `gorm:"type:varchar(36);not null;uniqueIndex" json:"product_id"`
	EnergyKJ     *float64 `gorm:"column:energy_kj" json:"energy_kj"`
	EnergyKcal   *float64 `gorm:"column:energy_kcal" json:"energy_kcal"`
	Fat          *float64 `json:"fat"`
	Saturates    *float64 `json:"saturates"`
	Carbohydrate *float64 `json:"carbohydrate"`
	Sugars       *float64 `json:"sugars"`
	Protein      *float64 `json:"protein"`
	Salt         *float64 `json:"salt"`
}

type Certifications struct {
	Model
	ProductID  string `gorm:"type:varchar(36);not null;uniqueIndex" json:"product_id"`
	Organic    bool   `gorm:"not null;default:false" json:"organic"`
	Vegan      bool   `gorm:"not null;default:false" json:"vegan"`
	Vegetarian bool   `gorm:"not null;default:false" json:"vegetarian"`
}

// FoodBusinessOperator identifies who is responsible for the product on the market.
type FoodBusinessOperator struct {
	Model
	ProductID             string `gorm:"type:varchar(36);not null;uniqueIndex" json:"product_id"`
	Type                  string `gorm:"type:varchar(32)" json:"type"`
	Name                  string `json:"name"`
	Address               string `gorm:"type:text" json:"address"`
	AdditionalInformation string `gorm:"type:text" json:"additional_information"`
}

// TableName keeps the singular table name used by existing deployments.
func (FoodBusinessOperator) TableName() string {
	return "food_business_operator"
}

type ResponsibleConsumption struct {
	Model
	ProductID string `gorm:"type:varchar(36);not null;uniqueIndex" json:"product_id"`
	Age       bool   `gorm:"not null;default:false" json:"age"`
	Driving   bool   `gorm:"not null;default:false" json:"driving"`
	Pregnancy bool   `gorm:"not null;default:false" json:"pregnancy"`
}

// TableName keeps the singular table name used by existing deployments.
func (NutritionInfo) TableName() string {
	return "nutrition_info"
}
