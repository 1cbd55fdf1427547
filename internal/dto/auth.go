package dto

import "winelabel/models"

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,min=8,max=1024"`
	FullName string `json:"full_name" validate:"max=255"`
}

// AuthResponse carries the bearer token issued for the account and its profile.
type AuthResponse struct {
	Token   string         `json:"token"`
	Profile models.Profile `json:"profile"`
}

// ShortLink is the public resolution of a product short code.
type ShortLink struct {
	Code         string `json:"code"`
	ProductID    string `json:"product_id"`
	RedirectLink string `json:"redirect_link,omitempty"`
}

// ErrorResponse is the JSON body of every failed API call.
type ErrorResponse struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}
