package entities

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"winelabel/internal/cache"
	"winelabel/internal/dto"
	"winelabel/internal/validation"
	"winelabel/models"
)

type fakeAPI struct {
	mu          sync.Mutex
	calls       map[string]int
	products    map[string]models.Product
	ingredients map[string]models.Ingredient
	failCreate  error
	nextID      int
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{
		calls:       make(map[string]int),
		products:    make(map[string]models.Product),
		ingredients: make(map[string]models.Ingredient),
	}
}

func (f *fakeAPI) record(name string) {
	f.mu.Lock()
	f.calls[name]++
	f.mu.Unlock()
}

func (f *fakeAPI) count(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[name]
}

func (f *fakeAPI) id() string {
	f.nextID++
	return fmt.Sprintf("id-%d", f.nextID)
}

func (f *fakeAPI) ListProducts(context.Context) ([]models.Product, error) {
	f.record("ListProducts")
	f.mu.Lock()
	defer f.mu.Unlock()
	list := make([]models.Product, 0, len(f.products))
	for _, p := range f.products {
		list = append(list, p)
	}
	return list, nil
}

func (f *fakeAPI) GetProduct(_ context.Context, id string) (models.Product, error) {
	f.record("GetProduct")
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.products[id]
	if !ok {
		return models.Product{}, errors.New("not found")
	}
	return p, nil
}

func (f *fakeAPI) CreateProduct(_ context.Context, input dto.ProductInput) (models.Product, error) {
	f.record("CreateProduct")
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failCreate != nil {
		return models.Product{}, f.failCreate
	}
	p := models.Product{Model: models.Model{ID: f.id()}, Name: input.Name, SKUCode: input.SKUCode}
	for i, id := range input.IngredientIDs {
		p.Ingredients = append(p.Ingredients, models.ProductIngredient{IngredientID: id, OrderNumber: i + 1})
	}
	f.products[p.ID] = p
	return p, nil
}

func (f *fakeAPI) UpdateProduct(_ context.Context, id string, patch dto.ProductPatch) (models.Product, error) {
	f.record("UpdateProduct")
	f.mu.Lock()
	defer f.mu.Unlock()
	p := f.products[id]
	if patch.Name != nil {
		p.Name = *patch.Name
	}
	f.products[id] = p
	return p, nil
}

func (f *fakeAPI) DeleteProduct(_ context.Context, id string) error {
	f.record("DeleteProduct")
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.products, id)
	return nil
}

func (f *fakeAPI) ListIngredients(context.Context) ([]models.Ingredient, error) {
	f.record("ListIngredients")
	return nil, nil
}

func (f *fakeAPI) GetIngredient(_ context.Context, id string) (models.Ingredient, error) {
	f.record("GetIngredient")
	f.mu.Lock()
	defer f.mu.Unlock()
	i, ok := f.ingredients[id]
	if !ok {
		return models.Ingredient{}, errors.New("not found")
	}
	return i, nil
}

func (f *fakeAPI) CreateIngredient(_ context.Context, input dto.IngredientInput) (models.Ingredient, error) {
	f.record("CreateIngredient")
	f.mu.Lock()
	defer f.mu.Unlock()
	if input.Name == "Explode" {
		return models.Ingredient{}, errors.New("backend exploded")
	}
	i := models.Ingredient{Model: models.Model{ID: f.id()}, Name: input.Name, ENumber: input.ENumber, Allergens: input.Allergens}
	f.ingredients[i.ID] = i
	return i, nil
}

func (f *fakeAPI) UpdateIngredient(context.Context, string, dto.IngredientPatch) (models.Ingredient, error) {
	f.record("UpdateIngredient")
	return models.Ingredient{}, errors.New("unavailable")
}

func (f *fakeAPI) DeleteIngredient(context.Context, string) error {
	f.record("DeleteIngredient")
	return nil
}

func strPtr(s string) *string { return &s }

func TestProductsGetWithoutIDMakesNoCall(t *testing.T) {
	api := newFakeAPI()
	products := NewProducts(api, cache.NewMemory(0), validation.New())

	_, err := products.Get(context.Background(), "")
	assert.ErrorIs(t, err, ErrMissingID)
	_, err = products.Get(context.Background(), "   ")
	assert.ErrorIs(t, err, ErrMissingID)
	assert.Equal(t, 0, api.count("GetProduct"))
}

func TestProductsReadsAreCached(t *testing.T) {
	api := newFakeAPI()
	api.products["p1"] = models.Product{Model: models.Model{ID: "p1"}, Name: "Château Margaux"}
	products := NewProducts(api, cache.NewMemory(0), validation.New())
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := products.List(ctx)
		require.NoError(t, err)
		_, err = products.Get(ctx, "p1")
		require.NoError(t, err)
	}

	assert.Equal(t, 1, api.count("ListProducts"))
	assert.Equal(t, 1, api.count("GetProduct"))
}

func TestProductsMutationsInvalidateList(t *testing.T) {
	api := newFakeAPI()
	products := NewProducts(api, cache.NewMemory(0), validation.New())
	ctx := context.Background()

	list, err := products.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)

	created := products.Create(ctx, dto.ProductInput{Name: "Château Margaux", SKUCode: "CM-2019-750"})
	require.True(t, created.OK(), created.Err)
	assert.Equal(t, EntityProduct, created.Entity)
	assert.Equal(t, ActionCreate, created.Action)
	record := created.Record.(models.Product)

	list, err = products.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)
	assert.Equal(t, 2, api.count("ListProducts"))

	_, err = products.Get(ctx, record.ID)
	require.NoError(t, err)
	updated := products.Update(ctx, UpdateProductInput{ID: record.ID, Data: dto.ProductPatch{Name: strPtr("Pavillon Rouge")}})
	require.True(t, updated.OK(), updated.Err)

	fresh, err := products.Get(ctx, record.ID)
	require.NoError(t, err)
	assert.Equal(t, "Pavillon Rouge", fresh.Name)
	assert.Equal(t, 2, api.count("GetProduct"), "update must drop the cached record")

	deleted := products.Delete(ctx, record.ID)
	require.True(t, deleted.OK(), deleted.Err)
	list, err = products.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestProductsCreateValidatesBeforeCalling(t *testing.T) {
	api := newFakeAPI()
	products := NewProducts(api, cache.NewMemory(0), validation.New())

	result := products.Create(context.Background(), dto.ProductInput{Type: "Cider"})

	require.False(t, result.OK())
	var verr *validation.Error
	assert.True(t, errors.As(result.Err, &verr))
	assert.Equal(t, 0, api.count("CreateProduct"))
}

func TestProductsFailureKeepsCache(t *testing.T) {
	api := newFakeAPI()
	store := cache.NewMemory(0)
	products := NewProducts(api, store, validation.New())
	ctx := context.Background()

	_, err := products.List(ctx)
	require.NoError(t, err)

	api.failCreate = errors.New("status 500")
	result := products.Create(ctx, dto.ProductInput{Name: "Broken"})
	assert.False(t, result.OK())
	assert.Nil(t, result.Record)

	_, ok := store.Get("products")
	assert.True(t, ok, "failed mutation must not invalidate")
	assert.Equal(t, 1, api.count("CreateProduct"), "failed mutation must not retry")
}

func TestProductsDuplicate(t *testing.T) {
	api := newFakeAPI()
	api.products["p1"] = models.Product{
		Model:   models.Model{ID: "p1"},
		Name:    "Château Margaux",
		SKUCode: "CM-2019-750",
		Ingredients: []models.ProductIngredient{
			{IngredientID: "so2", OrderNumber: 2},
			{IngredientID: "grapes", OrderNumber: 1},
		},
	}
	products := NewProducts(api, cache.NewMemory(0), validation.New())

	result := products.Duplicate(context.Background(), "p1")

	require.True(t, result.OK(), result.Err)
	dup := result.Record.(models.Product)
	assert.NotEqual(t, "p1", dup.ID)
	assert.Equal(t, "Château Margaux (Copy)", dup.Name)
	assert.Equal(t, "CM-2019-750-COPY", dup.SKUCode)
	assert.Equal(t, []string{"grapes", "so2"}, dto.OrderedIngredientIDs(dup.Ingredients))

	original := api.products["p1"]
	assert.Equal(t, "Château Margaux", original.Name)
	assert.Equal(t, "CM-2019-750", original.SKUCode)
}

func TestIngredientsDuplicateSuffixesENumberOnlyWhenPresent(t *testing.T) {
	so2 := DuplicateIngredientInput(models.Ingredient{Name: "Sulfur Dioxide", ENumber: "E220", Allergens: []string{"sulfites"}})
	assert.Equal(t, "Sulfur Dioxide (Copy)", so2.Name)
	assert.Equal(t, "E220-COPY", so2.ENumber)
	assert.Equal(t, []string{"sulfites"}, so2.Allergens)

	grapes := DuplicateIngredientInput(models.Ingredient{Name: "Grapes"})
	assert.Equal(t, "", grapes.ENumber)
}

func TestIngredientsUpdateFailureIsReported(t *testing.T) {
	api := newFakeAPI()
	ingredients := NewIngredients(api, nil, validation.New())

	result := ingredients.Update(context.Background(), UpdateIngredientInput{ID: "i1", Data: dto.IngredientPatch{Name: strPtr("Tannin")}})

	assert.False(t, result.OK())
	assert.Equal(t, ActionUpdate, result.Action)
	assert.Equal(t, 1, api.count("UpdateIngredient"))
}

func TestIngredientsImportCollectsRowFailures(t *testing.T) {
	api := newFakeAPI()
	store := cache.NewMemory(0)
	ingredients := NewIngredients(api, store, validation.New())
	ctx := context.Background()
	store.Set("ingredients", []models.Ingredient{})

	rows := []dto.ImportRow[dto.IngredientInput]{
		{Row: 2, Input: dto.IngredientInput{Name: "Sulfur Dioxide", Category: "Preservative", ENumber: "E220", Allergens: []string{"sulfites"}}},
		{Row: 3, Input: dto.IngredientInput{Name: ""}},
		{Row: 4, Input: dto.IngredientInput{Name: "Explode"}},
		{Row: 5, Input: dto.IngredientInput{Name: "Tartaric Acid", Category: "Acidifier"}},
	}

	report := ingredients.Import(ctx, rows)

	assert.Equal(t, EntityIngredient, report.Entity)
	assert.Equal(t, 4, report.Total)
	assert.Equal(t, 2, report.Created)
	require.Len(t, report.Failures, 2)
	assert.Equal(t, 3, report.Failures[0].Row)
	assert.Equal(t, 4, report.Failures[1].Row)
	assert.Equal(t, 3, api.count("CreateIngredient"), "invalid rows are not submitted")

	_, ok := store.Get("ingredients")
	assert.False(t, ok)

	report.Merge(dto.ImportFailure{Row: 6, Error: "unreadable"})
	assert.Equal(t, 5, report.Total)
	assert.Equal(t, 3, report.Failed())
}

func TestProductsForgetDropsCachedReads(t *testing.T) {
	api := newFakeAPI()
	api.products["p1"] = models.Product{Model: models.Model{ID: "p1"}, Name: "Dolcetto"}
	products := NewProducts(api, cache.NewMemory(0), validation.New())
	ctx := context.Background()

	_, err := products.Get(ctx, "p1")
	require.NoError(t, err)
	products.Forget()
	_, err = products.Get(ctx, "p1")
	require.NoError(t, err)

	assert.Equal(t, 2, api.count("GetProduct"))
}

type fakeAppellationAPI struct {
	lists   int
	creates int
	records []models.Appellation
}

func (f *fakeAppellationAPI) ListAppellations(context.Context) ([]models.Appellation, error) {
	f.lists++
	return f.records, nil
}

func (f *fakeAppellationAPI) CreateAppellation(_ context.Context, input dto.AppellationInput) (models.Appellation, error) {
	f.creates++
	a := models.Appellation{Model: models.Model{ID: fmt.Sprintf("a-%d", f.creates)}, Name: input.Name}
	f.records = append(f.records, a)
	return a, nil
}

func TestAppellationsCreateRefreshesCachedList(t *testing.T) {
	api := &fakeAppellationAPI{records: []models.Appellation{{Name: "Margaux"}}}
	appellations := NewAppellations(api, cache.NewMemory(0), validation.New())
	ctx := context.Background()

	list, err := appellations.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	_, err = appellations.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, api.lists)

	result := appellations.Create(ctx, dto.AppellationInput{Name: " Pauillac "})
	require.True(t, result.OK())
	assert.Equal(t, EntityAppellation, result.Entity)
	assert.Equal(t, "Pauillac", result.Record.(models.Appellation).Name)

	list, err = appellations.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 2)
	assert.Equal(t, 2, api.lists)
}

func TestAppellationsCreateValidatesBeforeCalling(t *testing.T) {
	api := &fakeAppellationAPI{}
	appellations := NewAppellations(api, nil, validation.New())

	result := appellations.Create(context.Background(), dto.AppellationInput{Name: "   "})

	assert.False(t, result.OK())
	assert.Equal(t, ActionCreate, result.Action)
	assert.Equal(t, 0, api.creates)
}

func TestIngredientsDuplicateStoresCopy(t *testing.T) {
	api := newFakeAPI()
	api.ingredients["i2"] = models.Ingredient{Model: models.Model{ID: "i2"}, Name: "Sulfur Dioxide", ENumber: "E220", Allergens: []string{"sulfites"}}
	store := cache.NewMemory(0)
	ingredients := NewIngredients(api, store, validation.New())
	ctx := context.Background()
	store.Set("ingredients", []models.Ingredient{})

	result := ingredients.Duplicate(ctx, "i2")

	require.True(t, result.OK())
	assert.Equal(t, ActionDuplicate, result.Action)
	copied := result.Record.(models.Ingredient)
	assert.Equal(t, "Sulfur Dioxide (Copy)", copied.Name)
	assert.Equal(t, "E220-COPY", copied.ENumber)
	_, ok := store.Get("ingredients")
	assert.False(t, ok)

	missing := ingredients.Duplicate(ctx, "nope")
	assert.False(t, missing.OK())
	assert.Equal(t, 1, api.count("CreateIngredient"))
}
