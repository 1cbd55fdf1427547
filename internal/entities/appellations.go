package entities

import (
	"context"
	"fmt"
	"strings"

	"winelabel/internal/cache"
	"winelabel/internal/dto"
	applog "winelabel/internal/log"
	"winelabel/internal/validation"
	"winelabel/models"
)

type AppellationAPI interface {
	ListAppellations(ctx context.Context) ([]models.Appellation, error)
	CreateAppellation(ctx context.Context, input dto.AppellationInput) (models.Appellation, error)
}

const appellationsKey = "appellations"

// Appellations lists and creates appellations. The API has no per-record routes, so
// only the list is cached.
type Appellations struct {
	api       AppellationAPI
	store     cache.Store
	validator *validation.Validator
}

func NewAppellations(api AppellationAPI, store cache.Store, validator *validation.Validator) *Appellations {
	if store == nil {
		store = cache.Nop{}
	}
	return &Appellations{api: api, store: store, validator: validator}
}

func (a *Appellations) List(ctx context.Context) ([]models.Appellation, error) {
	if cached, ok := a.store.Get(appellationsKey); ok {
		if records, ok := cached.([]models.Appellation); ok {
			return records, nil
		}
	}
	records, err := a.api.ListAppellations(ctx)
	if err != nil {
		return nil, fmt.Errorf("list appellations: %w", err)
	}
	a.store.Set(appellationsKey, records)
	return records, nil
}

func (a *Appellations) Create(ctx context.Context, input dto.AppellationInput) MutationResult {
	input.Name = strings.TrimSpace(input.Name)
	if a.validator != nil {
		if err := a.validator.Validate(input); err != nil {
			return a.failed(ctx, err)
		}
	}
	record, err := a.api.CreateAppellation(ctx, input)
	if err != nil {
		return a.failed(ctx, err)
	}
	a.Forget()
	applog.Debug(ctx, "mutation succeeded", "entity", EntityAppellation, "action", ActionCreate)
	return MutationResult{Entity: EntityAppellation, Action: ActionCreate, Record: record}
}

// Forget drops the cached list. Product saves that name a new appellation call it.
func (a *Appellations) Forget() {
	a.store.Invalidate(appellationsKey)
}

func (a *Appellations) failed(ctx context.Context, err error) MutationResult {
	applog.Error(ctx, "mutation failed", "entity", EntityAppellation, "action", ActionCreate, "error", err)
	return MutationResult{Entity: EntityAppellation, Action: ActionCreate, Err: err}
}
