package entities

import (
	"context"
	"fmt"

	"winelabel/internal/cache"
	"winelabel/internal/dto"
	"winelabel/internal/validation"
	"winelabel/models"
)

type IngredientAPI interface {
	ListIngredients(ctx context.Context) ([]models.Ingredient, error)
	GetIngredient(ctx context.Context, id string) (models.Ingredient, error)
	CreateIngredient(ctx context.Context, input dto.IngredientInput) (models.Ingredient, error)
	UpdateIngredient(ctx context.Context, id string, patch dto.IngredientPatch) (models.Ingredient, error)
	DeleteIngredient(ctx context.Context, id string) error
}

type UpdateIngredientInput struct {
	ID   string
	Data dto.IngredientPatch
}

// Ingredients reads and writes ingredients. Reads are cached under "ingredients" and
// "ingredients/<id>".
type Ingredients struct {
	collection[models.Ingredient, dto.IngredientInput, dto.IngredientPatch]
}

func NewIngredients(api IngredientAPI, store cache.Store, validator *validation.Validator) *Ingredients {
	if store == nil {
		store = cache.Nop{}
	}
	return &Ingredients{collection[models.Ingredient, dto.IngredientInput, dto.IngredientPatch]{
		entity:    EntityIngredient,
		key:       "ingredients",
		store:     store,
		validator: validator,
		list:      api.ListIngredients,
		get:       api.GetIngredient,
		create:    api.CreateIngredient,
		put:       api.UpdateIngredient,
		remove:    api.DeleteIngredient,
	}}
}

func (i *Ingredients) Update(ctx context.Context, input UpdateIngredientInput) MutationResult {
	return i.patch(ctx, input.ID, input.Data)
}

// Duplicate stores a copy with " (Copy)" appended to the name and "-COPY" appended to
// a non-empty E-number.
func (i *Ingredients) Duplicate(ctx context.Context, id string) MutationResult {
	if id == "" {
		return i.failed(ctx, ActionDuplicate, ErrMissingID)
	}
	original, err := i.get(ctx, id)
	if err != nil {
		return i.failed(ctx, ActionDuplicate, fmt.Errorf("load ingredient %s: %w", id, err))
	}

	record, err := i.create(ctx, DuplicateIngredientInput(original))
	if err != nil {
		return i.failed(ctx, ActionDuplicate, err)
	}
	return i.succeeded(ctx, ActionDuplicate, record)
}

func DuplicateIngredientInput(ingredient models.Ingredient) dto.IngredientInput {
	input := dto.IngredientInputFrom(ingredient)
	input.Name = ingredient.Name + " (Copy)"
	if ingredient.ENumber != "" {
		input.ENumber = ingredient.ENumber + "-COPY"
	}
	return input
}

func (i *Ingredients) Import(ctx context.Context, rows []dto.ImportRow[dto.IngredientInput]) ImportReport {
	return runImport(ctx, &i.collection, rows)
}
