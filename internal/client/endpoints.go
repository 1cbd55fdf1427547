package client

import (
	"context"
	"net/http"
	"net/url"

	"winelabel/internal/dto"
	"winelabel/models"
)

func path(collection, id string) string {
	return "/" + collection + "/" + url.PathEscape(id)
}

// Login exchanges credentials for a bearer token.
func (c *Client) Login(ctx context.Context, email, password string) (dto.AuthResponse, error) {
	return Request[dto.AuthResponse](ctx, c, "/auth/login", Options{
		Method: http.MethodPost,
		Body:   dto.LoginRequest{Email: email, Password: password},
	})
}

// Register creates an account and returns its first token.
func (c *Client) Register(ctx context.Context, input dto.RegisterRequest) (dto.AuthResponse, error) {
	return Request[dto.AuthResponse](ctx, c, "/auth/register", Options{
		Method: http.MethodPost,
		Body:   input,
	})
}

func (c *Client) Logout(ctx context.Context) error {
	_, err := Request[struct{}](ctx, c, "/auth/logout", Options{Method: http.MethodPost})
	return err
}

// Me returns the profile of the token's owner.
func (c *Client) Me(ctx context.Context) (models.Profile, error) {
	return Request[models.Profile](ctx, c, "/auth/me", Options{})
}

func (c *Client) ListProducts(ctx context.Context) ([]models.Product, error) {
	return Request[[]models.Product](ctx, c, "/products", Options{})
}

func (c *Client) GetProduct(ctx context.Context, id string) (models.Product, error) {
	return Request[models.Product](ctx, c, path("products", id), Options{})
}

func (c *Client) CreateProduct(ctx context.Context, input dto.ProductInput) (models.Product, error) {
	return Request[models.Product](ctx, c, "/products", Options{Method: http.MethodPost, Body: input})
}

func (c *Client) UpdateProduct(ctx context.Context, id string, patch dto.ProductPatch) (models.Product, error) {
	return Request[models.Product](ctx, c, path("products", id), Options{Method: http.MethodPut, Body: patch})
}

func (c *Client) DeleteProduct(ctx context.Context, id string) error {
	_, err := Request[struct{}](ctx, c, path("products", id), Options{Method: http.MethodDelete})
	return err
}

// ImportProducts uploads a spreadsheet to the backend importer.
func (c *Client) ImportProducts(ctx context.Context, upload Upload) (dto.ImportResult, error) {
	return Request[dto.ImportResult](ctx, c, "/products/import", Options{Method: http.MethodPost, Body: &upload})
}

func (c *Client) ListIngredients(ctx context.Context) ([]models.Ingredient, error) {
	return Request[[]models.Ingredient](ctx, c, "/ingredients", Options{})
}

func (c *Client) GetIngredient(ctx context.Context, id string) (models.Ingredient, error) {
	return Request[models.Ingredient](ctx, c, path("ingredients", id), Options{})
}

func (c *Client) CreateIngredient(ctx context.Context, input dto.IngredientInput) (models.Ingredient, error) {
	return Request[models.Ingredient](ctx, c, "/ingredients", Options{Method: http.MethodPost, Body: input})
}

func (c *Client) UpdateIngredient(ctx context.Context, id string, patch dto.IngredientPatch) (models.Ingredient, error) {
	return Request[models.Ingredient](ctx, c, path("ingredients", id), Options{Method: http.MethodPut, Body: patch})
}

func (c *Client) DeleteIngredient(ctx context.Context, id string) error {
	_, err := Request[struct{}](ctx, c, path("ingredients", id), Options{Method: http.MethodDelete})
	return err
}

func (c *Client) ImportIngredients(ctx context.Context, upload Upload) (dto.ImportResult, error) {
	return Request[dto.ImportResult](ctx, c, "/ingredients/import", Options{Method: http.MethodPost, Body: &upload})
}

func (c *Client) ListAppellations(ctx context.Context) ([]models.Appellation, error) {
	return Request[[]models.Appellation](ctx, c, "/appellations", Options{})
}

func (c *Client) CreateAppellation(ctx context.Context, input dto.AppellationInput) (models.Appellation, error) {
	return Request[models.Appellation](ctx, c, "/appellations", Options{Method: http.MethodPost, Body: input})
}

// GetLabel fetches the public label of a product. No token is required.
func (c *Client) GetLabel(ctx context.Context, id string) (dto.Label, error) {
	return Request[dto.Label](ctx, c, path("labels", id), Options{})
}

// ResolveShortLink looks up the product behind a public short code.
func (c *Client) ResolveShortLink(ctx context.Context, code string) (dto.ShortLink, error) {
	return Request[dto.ShortLink](ctx, c, path("links", code), Options{})
}
