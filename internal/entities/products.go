package entities

import (
	"context"
	"fmt"

	"winelabel/internal/cache"
	"winelabel/internal/dto"
	"winelabel/internal/validation"
	"winelabel/models"
)

// ProductAPI is the part of the API client the product layer needs.
type ProductAPI interface {
	ListProducts(ctx context.Context) ([]models.Product, error)
	GetProduct(ctx context.Context, id string) (models.Product, error)
	CreateProduct(ctx context.Context, input dto.ProductInput) (models.Product, error)
	UpdateProduct(ctx context.Context, id string, patch dto.ProductPatch) (models.Product, error)
	DeleteProduct(ctx context.Context, id string) error
}

// UpdateProductInput pairs a product id with the fields to change.
type UpdateProductInput struct {
	ID   string
	Data dto.ProductPatch
}

// Products reads and writes products. Reads are cached under "products" and
// "products/<id>".
type Products struct {
	collection[models.Product, dto.ProductInput, dto.ProductPatch]
}

func NewProducts(api ProductAPI, store cache.Store, validator *validation.Validator) *Products {
	if store == nil {
		store = cache.Nop{}
	}
	return &Products{collection[models.Product, dto.ProductInput, dto.ProductPatch]{
		entity:    EntityProduct,
		key:       "products",
		store:     store,
		validator: validator,
		list:      api.ListProducts,
		get:       api.GetProduct,
		create:    api.CreateProduct,
		put:       api.UpdateProduct,
		remove:    api.DeleteProduct,
	}}
}

func (p *Products) Update(ctx context.Context, input UpdateProductInput) MutationResult {
	return p.patch(ctx, input.ID, input.Data)
}

// Duplicate stores a copy of the product with " (Copy)" appended to the name and
// "-COPY" to the SKU. Sub-entities and the ingredient order are copied; public link
// fields are left for the copy to receive its own.
func (p *Products) Duplicate(ctx context.Context, id string) MutationResult {
	if id == "" {
		return p.failed(ctx, ActionDuplicate, ErrMissingID)
	}
	original, err := p.get(ctx, id)
	if err != nil {
		return p.failed(ctx, ActionDuplicate, fmt.Errorf("load product %s: %w", id, err))
	}

	record, err := p.create(ctx, DuplicateProductInput(original))
	if err != nil {
		return p.failed(ctx, ActionDuplicate, err)
	}
	return p.succeeded(ctx, ActionDuplicate, record)
}

// DuplicateProductInput builds the create input for a copy of product.
func DuplicateProductInput(product models.Product) dto.ProductInput {
	input := dto.ProductInputFrom(product)
	input.Name = product.Name + " (Copy)"
	input.SKUCode = product.SKUCode + "-COPY"
	input.QRCodeURL = ""
	input.ExternalShortLink = ""
	return input
}

// Import creates every row, at most importConcurrency at a time.
func (p *Products) Import(ctx context.Context, rows []dto.ImportRow[dto.ProductInput]) ImportReport {
	return runImport(ctx, &p.collection, rows)
}
