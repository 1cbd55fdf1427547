// Package entities wraps the API client with read caching, cache invalidation after
// writes, and plain mutation results that callers turn into notifications.
package entities

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"winelabel/internal/cache"
	applog "winelabel/internal/log"
	"winelabel/internal/validation"
)

// ErrMissingID is returned by Get when called without an id. No request is made.
var ErrMissingID = errors.New("entities: id is required")

type Entity string

const (
	EntityProduct     Entity = "Product"
	EntityIngredient  Entity = "Ingredient"
	EntityAppellation Entity = "Appellation"
)

type Action string

const (
	ActionCreate    Action = "create"
	ActionUpdate    Action = "update"
	ActionDelete    Action = "delete"
	ActionDuplicate Action = "duplicate"
)

// MutationResult is the outcome of a single write.
type MutationResult struct {
	Entity Entity
	Action Action
	// Record is the stored record for create, update and duplicate.
	Record any
	Err    error
}

func (r MutationResult) OK() bool { return r.Err == nil }

// collection holds the cache and API plumbing shared by every entity type.
type collection[T, In, P any] struct {
	entity    Entity
	key       string
	store     cache.Store
	validator *validation.Validator

	list   func(context.Context) ([]T, error)
	get    func(context.Context, string) (T, error)
	create func(context.Context, In) (T, error)
	put    func(context.Context, string, P) (T, error)
	remove func(context.Context, string) error
}

func (c *collection[T, In, P]) List(ctx context.Context) ([]T, error) {
	if cached, ok := c.store.Get(c.key); ok {
		if records, ok := cached.([]T); ok {
			return records, nil
		}
	}

	records, err := c.list(ctx)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", c.key, err)
	}
	c.store.Set(c.key, records)
	return records, nil
}

func (c *collection[T, In, P]) Get(ctx context.Context, id string) (T, error) {
	var zero T
	id = strings.TrimSpace(id)
	if id == "" {
		return zero, ErrMissingID
	}

	key := cache.Key(c.key, id)
	if cached, ok := c.store.Get(key); ok {
		if record, ok := cached.(T); ok {
			return record, nil
		}
	}

	record, err := c.get(ctx, id)
	if err != nil {
		return zero, fmt.Errorf("get %s %s: %w", c.entity, id, err)
	}
	c.store.Set(key, record)
	return record, nil
}

func (c *collection[T, In, P]) Create(ctx context.Context, input In) MutationResult {
	if err := c.validate(input); err != nil {
		return c.failed(ctx, ActionCreate, err)
	}
	record, err := c.create(ctx, input)
	if err != nil {
		return c.failed(ctx, ActionCreate, err)
	}
	return c.succeeded(ctx, ActionCreate, record)
}

func (c *collection[T, In, P]) patch(ctx context.Context, id string, patch P) MutationResult {
	if strings.TrimSpace(id) == "" {
		return c.failed(ctx, ActionUpdate, ErrMissingID)
	}
	if err := c.validate(patch); err != nil {
		return c.failed(ctx, ActionUpdate, err)
	}
	record, err := c.put(ctx, id, patch)
	if err != nil {
		return c.failed(ctx, ActionUpdate, err)
	}
	return c.succeeded(ctx, ActionUpdate, record)
}

func (c *collection[T, In, P]) Delete(ctx context.Context, id string) MutationResult {
	if strings.TrimSpace(id) == "" {
		return c.failed(ctx, ActionDelete, ErrMissingID)
	}
	if err := c.remove(ctx, id); err != nil {
		return c.failed(ctx, ActionDelete, err)
	}
	return c.succeeded(ctx, ActionDelete, nil)
}

// Forget drops every cached read of the entity type. Callers use it when a change to
// another entity alters the embedded records.
func (c *collection[T, In, P]) Forget() {
	c.store.Invalidate(c.key)
}

func (c *collection[T, In, P]) validate(value any) error {
	if c.validator == nil {
		return nil
	}
	return c.validator.Validate(value)
}

// succeeded drops the cached list and every cached record of the entity type.
func (c *collection[T, In, P]) succeeded(ctx context.Context, action Action, record any) MutationResult {
	c.store.Invalidate(c.key)
	applog.Debug(ctx, "mutation succeeded", "entity", c.entity, "action", action)
	return MutationResult{Entity: c.entity, Action: action, Record: record}
}

func (c *collection[T, In, P]) failed(ctx context.Context, action Action, err error) MutationResult {
	applog.Error(ctx, "mutation failed", "entity", c.entity, "action", action, "error", err)
	return MutationResult{Entity: c.entity, Action: action, Err: err}
}
