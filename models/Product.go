package models

import (
	"fmt"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"gorm.io/gorm"
)

const shortCodeAlphabet = "23456789abcdefghjkmnpqrstuvwxyz"

type Product struct {
	Model
	Name              string  `gorm:"not null" json:"name"`
	Brand             string  `json:"brand"`
	NetVolume         string  `json:"net_volume"`
	Vintage           string  `json:"vintage"`
	Type              string  `gorm:"type:varchar(32)" json:"type"`
	SugarContent      string  `gorm:"type:varchar(32)" json:"sugar_content"`
	Alcohol           string  `json:"alcohol"`
	CountryOfOrigin   string  `json:"country_of_origin"`
	SKUCode           string  `gorm:"column:sku_code;index" json:"sku_code"`
	EANGTIN           string  `gorm:"column:ean_gtin" json:"ean_gtin"`
	AppellationID     *string `gorm:"type:varchar(36);index" json:"appellation_id"`
	ImageURL          string  `gorm:"column:image_url" json:"image_url"`
	QRCodeURL         string  `gorm:"column:qr_code_url" json:"qr_code_url"`
	ExternalShortLink string  `json:"external_short_link"`
	RedirectLink      string  `json:"redirect_link"`
	ShortCode         string  `gorm:"type:varchar(16);uniqueIndex" json:"short_code"`
	UserID            string  `gorm:"type:varchar(36);not null;index" json:"user_id"`

	// --- Preloadable Data ---
	Appellation    *Appellation            `gorm:"foreignKey:AppellationID" json:"appellation,omitempty"`
	Nutrition      *NutritionInfo          `gorm:"foreignKey:ProductID" json:"nutrition,omitempty"`
	Certifications *Certifications         `gorm:"foreignKey:ProductID" json:"certifications,omitempty"`
	Operator       *FoodBusinessOperator   `gorm:"foreignKey:ProductID" json:"operator,omitempty"`
	Consumption    *ResponsibleConsumption `gorm:"foreignKey:ProductID" json:"consumption,omitempty"`
	Ingredients    []ProductIngredient     `gorm:"foreignKey:ProductID" json:"ingredients,omitempty"`
}

// BeforeCreate assigns the identifier and a public short code.
func (p *Product) BeforeCreate(tx *gorm.DB) error {
	if err := p.Model.BeforeCreate(tx); err != nil {
		return err
	}
	if p.ShortCode == "" {
		code, err := NewShortCode()
		if err != nil {
			return err
		}
		p.ShortCode = code
	}
	return nil
}

// NewShortCode returns a compact, unambiguous code for public label links.
func NewShortCode() (string, error) {
	code, err := gonanoid.Generate(shortCodeAlphabet, 10)
	if err != nil {
		return "", fmt.Errorf("generate short code: %w", err)
	}
	return code, nil
}
