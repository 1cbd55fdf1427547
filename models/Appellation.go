package models

// Appellation is a protected designation of origin a product may reference.
type Appellation struct {
	Model
	Name        string `gorm:"uniqueIndex;not null" json:"name"`
	Description string `gorm:"type:text" json:"description"`
}
