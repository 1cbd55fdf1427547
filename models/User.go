package models

// User represents an application account that can authenticate with the platform.
type User struct {
	Model
	Email        string `gorm:"uniqueIndex;not null"`
	PasswordHash string `gorm:"not null"`
}

// Profile carries the account metadata shown in the admin interface. Its ID is the
// owning user's ID.
type Profile struct {
	Model
	Email     string `gorm:"not null" json:"email"`
	FullName  string `json:"full_name"`
	AvatarURL string `json:"avatar_url"`
}
