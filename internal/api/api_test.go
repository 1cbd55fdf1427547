package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"winelabel/internal/auth"
	"winelabel/internal/db/mock"
	"winelabel/internal/dto"
	"winelabel/internal/spreadsheet"
	"winelabel/models"
)

type testAPI struct {
	db      *gorm.DB
	handler http.Handler
}

func newTestAPI(t *testing.T, opts Options) *testAPI {
	t.Helper()
	database, err := mock.New(context.Background())
	if err != nil {
		t.Fatalf("failed to open mock database: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := database.DB(); err == nil {
			sqlDB.Close()
		}
	})
	tokens, err := auth.NewIssuer("test-secret", time.Hour)
	if err != nil {
		t.Fatalf("failed to create issuer: %v", err)
	}
	return &testAPI{db: database, handler: New(database, tokens, nil, opts).Handler()}
}

func (ta *testAPI) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("failed to encode body: %v", err)
		}
		reader = bytes.NewReader(payload)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	ta.handler.ServeHTTP(w, req)
	return w
}

func (ta *testAPI) login(t *testing.T) string {
	t.Helper()
	w := ta.do(t, http.MethodPost, "/api/auth/login", "", dto.LoginRequest{Email: mock.Email, Password: mock.Password})
	if w.Code != http.StatusOK {
		t.Fatalf("expected login to succeed, got %d: %s", w.Code, w.Body.String())
	}
	var resp dto.AuthResponse
	decode(t, w, &resp)
	return resp.Token
}

func (ta *testAPI) productBySKU(t *testing.T, sku string) models.Product {
	t.Helper()
	var product models.Product
	if err := ta.db.Where("sku_code = ?", sku).First(&product).Error; err != nil {
		t.Fatalf("failed to load product %s: %v", sku, err)
	}
	return product
}

func (ta *testAPI) ingredientByName(t *testing.T, name string) models.Ingredient {
	t.Helper()
	var ingredient models.Ingredient
	if err := ta.db.Where("name = ?", name).First(&ingredient).Error; err != nil {
		t.Fatalf("failed to load ingredient %s: %v", name, err)
	}
	return ingredient
}

func decode(t *testing.T, w *httptest.ResponseRecorder, dst any) {
	t.Helper()
	if err := json.Unmarshal(w.Body.Bytes(), dst); err != nil {
		t.Fatalf("failed to decode response %q: %v", w.Body.String(), err)
	}
}

func strPtr(s string) *string { return &s }

func TestHealthz(t *testing.T) {
	ta := newTestAPI(t, Options{})
	for _, path := range []string{"/healthz", "/api/healthz"} {
		w := ta.do(t, http.MethodGet, path, "", nil)
		if w.Code != http.StatusOK {
			t.Fatalf("expected %s to return 200, got %d", path, w.Code)
		}
	}
}

func TestLogin(t *testing.T) {
	ta := newTestAPI(t, Options{})

	w := ta.do(t, http.MethodPost, "/api/auth/login", "", dto.LoginRequest{Email: mock.Email, Password: mock.Password})
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", w.Code, w.Body.String())
	}
	var resp dto.AuthResponse
	decode(t, w, &resp)
	if resp.Token == "" {
		t.Fatalf("expected a token")
	}
	if resp.Profile.FullName != "Camille Vigneron" {
		t.Fatalf("expected seeded profile, got %+v", resp.Profile)
	}

	w = ta.do(t, http.MethodPost, "/api/auth/login", "", dto.LoginRequest{Email: mock.Email, Password: "wrong"})
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected status 401 for wrong password, got %d", w.Code)
	}

	w = ta.do(t, http.MethodPost, "/api/auth/login", "", dto.LoginRequest{Email: "nobody@example.com", Password: "secret"})
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected status 401 for unknown user, got %d", w.Code)
	}

	w = ta.do(t, http.MethodPost, "/api/auth/login", "", dto.LoginRequest{Email: "not-an-email"})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400 for invalid payload, got %d", w.Code)
	}
}

func TestLoginRateLimited(t *testing.T) {
	ta := newTestAPI(t, Options{LoginRate: 0.001, LoginBurst: 2})

	for i := 0; i < 2; i++ {
		w := ta.do(t, http.MethodPost, "/api/auth/login", "", dto.LoginRequest{Email: mock.Email, Password: "wrong"})
		if w.Code != http.StatusUnauthorized {
			t.Fatalf("attempt %d: expected status 401, got %d", i+1, w.Code)
		}
	}
	w := ta.do(t, http.MethodPost, "/api/auth/login", "", dto.LoginRequest{Email: mock.Email, Password: mock.Password})
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("expected status 429 once the burst is spent, got %d", w.Code)
	}
}

func TestRegister(t *testing.T) {
	ta := newTestAPI(t, Options{})

	w := ta.do(t, http.MethodPost, "/api/auth/register", "", dto.RegisterRequest{Email: mock.Email, Password: "longenough"})
	if w.Code != http.StatusConflict {
		t.Fatalf("expected status 409 for taken email, got %d", w.Code)
	}

	w = ta.do(t, http.MethodPost, "/api/auth/register", "", dto.RegisterRequest{Email: "new@example.com", Password: "short"})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400 for short password, got %d", w.Code)
	}
	var errResp dto.ErrorResponse
	decode(t, w, &errResp)
	if _, ok := errResp.Fields["password"]; !ok {
		t.Fatalf("expected password field error, got %+v", errResp)
	}

	w = ta.do(t, http.MethodPost, "/api/auth/register", "", dto.RegisterRequest{Email: "New@Example.com", Password: "longenough", FullName: "Noa Winter"})
	if w.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d: %s", w.Code, w.Body.String())
	}
	var resp dto.AuthResponse
	decode(t, w, &resp)
	if resp.Profile.Email != "new@example.com" {
		t.Fatalf("expected lower-cased email, got %q", resp.Profile.Email)
	}

	w = ta.do(t, http.MethodGet, "/api/auth/me", resp.Token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200 from me, got %d", w.Code)
	}
	var profile models.Profile
	decode(t, w, &profile)
	if profile.FullName != "Noa Winter" || profile.ID != resp.Profile.ID {
		t.Fatalf("unexpected profile %+v", profile)
	}
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	ta := newTestAPI(t, Options{})

	cases := []struct {
		name  string
		token string
	}{
		{"missing", ""},
		{"garbage", "not-a-token"},
	}
	for _, tt := range cases {
		w := ta.do(t, http.MethodGet, "/api/products", tt.token, nil)
		if w.Code != http.StatusUnauthorized {
			t.Fatalf("%s: expected status 401, got %d", tt.name, w.Code)
		}
	}
}

func TestProductsAreScopedToOwner(t *testing.T) {
	ta := newTestAPI(t, Options{})
	token := ta.login(t)

	w := ta.do(t, http.MethodGet, "/api/products", token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}
	var products []models.Product
	decode(t, w, &products)
	if len(products) != 3 {
		t.Fatalf("expected 3 seeded products, got %d", len(products))
	}

	w = ta.do(t, http.MethodPost, "/api/auth/register", "", dto.RegisterRequest{Email: "other@example.com", Password: "longenough"})
	var other dto.AuthResponse
	decode(t, w, &other)

	w = ta.do(t, http.MethodGet, "/api/products", other.Token, nil)
	decode(t, w, &products)
	if len(products) != 0 {
		t.Fatalf("expected other user to see no products, got %d", len(products))
	}

	margaux := ta.productBySKU(t, "CM-2019-750")
	w = ta.do(t, http.MethodGet, "/api/products/"+margaux.ID, other.Token, nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected status 404 for a foreign product, got %d", w.Code)
	}
	w = ta.do(t, http.MethodDelete, "/api/products/"+margaux.ID, other.Token, nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected status 404 deleting a foreign product, got %d", w.Code)
	}
}

func TestShowProductPreloadsDetails(t *testing.T) {
	ta := newTestAPI(t, Options{})
	token := ta.login(t)
	margaux := ta.productBySKU(t, "CM-2019-750")

	w := ta.do(t, http.MethodGet, "/api/products/"+margaux.ID, token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}
	var product models.Product
	decode(t, w, &product)
	if product.Appellation == nil || product.Appellation.Name != "Margaux AOC" {
		t.Fatalf("expected appellation to be preloaded, got %+v", product.Appellation)
	}
	if product.Nutrition == nil || product.Nutrition.EnergyKcal == nil || *product.Nutrition.EnergyKcal != 76 {
		t.Fatalf("expected nutrition to be preloaded, got %+v", product.Nutrition)
	}
	if len(product.Ingredients) != 4 {
		t.Fatalf("expected 4 ingredient links, got %d", len(product.Ingredients))
	}
	for i, link := range product.Ingredients {
		if link.OrderNumber != i+1 || link.Ingredient == nil {
			t.Fatalf("unexpected link at %d: %+v", i, link)
		}
	}
	if product.Ingredients[0].Ingredient.Name != "Grapes" {
		t.Fatalf("expected grapes first, got %s", product.Ingredients[0].Ingredient.Name)
	}
}

func TestCreateProduct(t *testing.T) {
	ta := newTestAPI(t, Options{})
	token := ta.login(t)
	grapes := ta.ingredientByName(t, "Grapes")
	sulfites := ta.ingredientByName(t, "Sulfur Dioxide")
	kcal := 80.0

	input := dto.ProductInput{
		Name:           "Pauillac Grand Vin",
		Vintage:        "2018",
		Type:           "red wine",
		SugarContent:   "dry",
		Appellation:    "Pauillac AOC",
		Nutrition:      &dto.NutritionInput{EnergyKcal: &kcal},
		Certifications: &dto.CertificationsInput{Vegan: true},
		IngredientIDs:  []string{sulfites.ID, grapes.ID, sulfites.ID},
	}
	w := ta.do(t, http.MethodPost, "/api/products", token, input)
	if w.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d: %s", w.Code, w.Body.String())
	}

	var product models.Product
	decode(t, w, &product)
	if product.Type != models.ProductTypeRed || product.SugarContent != "Dry" {
		t.Fatalf("expected canonical enums, got %q %q", product.Type, product.SugarContent)
	}
	if product.ShortCode == "" {
		t.Fatalf("expected a short code to be assigned")
	}
	if product.Appellation == nil || product.Appellation.Name != "Pauillac AOC" {
		t.Fatalf("expected appellation to be created by name, got %+v", product.Appellation)
	}
	if product.Nutrition == nil || *product.Nutrition.EnergyKcal != 80 {
		t.Fatalf("expected nutrition to be stored, got %+v", product.Nutrition)
	}
	if got := dto.OrderedIngredientIDs(product.Ingredients); len(got) != 2 || got[0] != sulfites.ID || got[1] != grapes.ID {
		t.Fatalf("expected ingredients in submitted order without repeats, got %v", got)
	}
}

func TestConcurrentCreatesShareNewAppellation(t *testing.T) {
	ta := newTestAPI(t, Options{})
	token := ta.login(t)

	const n = 6
	codes := make([]int, n)
	bodies := make([]string, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			w := ta.do(t, http.MethodPost, "/api/products", token, dto.ProductInput{
				Name:        "Pomerol Cuvée",
				SKUCode:     "PM-" + string(rune('A'+i)),
				Appellation: "Pomerol AOC",
			})
			codes[i], bodies[i] = w.Code, w.Body.String()
		}(i)
	}
	wg.Wait()

	for i, code := range codes {
		if code != http.StatusCreated {
			t.Fatalf("create %d: expected status 201, got %d: %s", i, code, bodies[i])
		}
	}
	var count int64
	if err := ta.db.Model(&models.Appellation{}).Where("name = ?", "Pomerol AOC").Count(&count).Error; err != nil {
		t.Fatalf("count appellations: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected one Pomerol AOC appellation, got %d", count)
	}
}

func TestCreateProductValidation(t *testing.T) {
	ta := newTestAPI(t, Options{})
	token := ta.login(t)

	cases := []struct {
		name  string
		input dto.ProductInput
		field string
	}{
		{"missing name", dto.ProductInput{}, "name"},
		{"bad vintage", dto.ProductInput{Name: "Wine", Vintage: "19"}, "vintage"},
		{"bad type", dto.ProductInput{Name: "Wine", Type: "Cider"}, "type"},
		{"negative nutrition", dto.ProductInput{Name: "Wine", Nutrition: &dto.NutritionInput{Fat: func() *float64 { v := -1.0; return &v }()}}, "nutrition.fat"},
		{"unknown appellation", dto.ProductInput{Name: "Wine", AppellationID: strPtr(uuid.NewString())}, "appellation_id"},
		{"unknown ingredient", dto.ProductInput{Name: "Wine", IngredientIDs: []string{"missing"}}, "ingredient_ids"},
	}

	for _, tt := range cases {
		w := ta.do(t, http.MethodPost, "/api/products", token, tt.input)
		if w.Code != http.StatusBadRequest {
			t.Fatalf("%s: expected status 400, got %d: %s", tt.name, w.Code, w.Body.String())
		}
		var resp dto.ErrorResponse
		decode(t, w, &resp)
		if _, ok := resp.Fields[tt.field]; !ok {
			t.Fatalf("%s: expected field error for %s, got %+v", tt.name, tt.field, resp.Fields)
		}
	}
}

func TestUpdateProductAppliesOnlyPresentFields(t *testing.T) {
	ta := newTestAPI(t, Options{})
	token := ta.login(t)
	margaux := ta.productBySKU(t, "CM-2019-750")

	w := ta.do(t, http.MethodPut, "/api/products/"+margaux.ID, token, dto.ProductPatch{Brand: strPtr("Grand Vin de Château Margaux")})
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", w.Code, w.Body.String())
	}
	var product models.Product
	decode(t, w, &product)
	if product.Brand != "Grand Vin de Château Margaux" {
		t.Fatalf("expected brand to change, got %q", product.Brand)
	}
	if product.Name != "Château Margaux" || product.Vintage != "2019" {
		t.Fatalf("expected untouched fields to stay, got %+v", product)
	}
	if len(product.Ingredients) != 4 || product.Nutrition == nil || product.Appellation == nil {
		t.Fatalf("expected details to stay, got %+v", product)
	}

	grapes := ta.ingredientByName(t, "Grapes")
	ids := []string{grapes.ID}
	w = ta.do(t, http.MethodPut, "/api/products/"+margaux.ID, token, dto.ProductPatch{
		IngredientIDs: &ids,
		AppellationID: strPtr(""),
		Operator:      &dto.OperatorInput{Type: "importer", Name: "Cave Import"},
	})
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", w.Code, w.Body.String())
	}
	decode(t, w, &product)
	if len(product.Ingredients) != 1 || product.Ingredients[0].IngredientID != grapes.ID {
		t.Fatalf("expected ingredient list to be replaced, got %+v", product.Ingredients)
	}
	if product.Appellation != nil || product.AppellationID != nil {
		t.Fatalf("expected appellation to be cleared, got %+v", product.Appellation)
	}
	if product.Operator == nil || product.Operator.Type != "Importer" || product.Operator.Name != "Cave Import" {
		t.Fatalf("expected operator to be replaced, got %+v", product.Operator)
	}

	var operators int64
	ta.db.Model(&models.FoodBusinessOperator{}).Where("product_id = ?", margaux.ID).Count(&operators)
	if operators != 1 {
		t.Fatalf("expected a single operator row, got %d", operators)
	}

	w = ta.do(t, http.MethodPut, "/api/products/"+margaux.ID, token, dto.ProductPatch{Name: strPtr("  ")})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400 for a blank name, got %d", w.Code)
	}
}

func TestDeleteProductRemovesDetails(t *testing.T) {
	ta := newTestAPI(t, Options{})
	token := ta.login(t)
	margaux := ta.productBySKU(t, "CM-2019-750")

	w := ta.do(t, http.MethodDelete, "/api/products/"+margaux.ID, token, nil)
	if w.Code != http.StatusNoContent {
		t.Fatalf("expected status 204, got %d", w.Code)
	}

	for _, child := range productChildren() {
		var count int64
		ta.db.Model(child).Where("product_id = ?", margaux.ID).Count(&count)
		if count != 0 {
			t.Fatalf("expected %T rows to be removed, found %d", child, count)
		}
	}

	w = ta.do(t, http.MethodGet, "/api/products/"+margaux.ID, token, nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected status 404 after delete, got %d", w.Code)
	}
}

func TestIngredientLifecycle(t *testing.T) {
	ta := newTestAPI(t, Options{})
	token := ta.login(t)

	w := ta.do(t, http.MethodPost, "/api/ingredients", token, dto.IngredientInput{
		Name:      "Gum Arabic",
		Category:  "stabilizer",
		ENumber:   "e414",
		Allergens: []string{"Sulfites", "sulfites"},
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d: %s", w.Code, w.Body.String())
	}
	var ingredient models.Ingredient
	decode(t, w, &ingredient)
	if ingredient.Category != "Stabilizer" || ingredient.ENumber != "E414" {
		t.Fatalf("expected normalized ingredient, got %+v", ingredient)
	}
	if len(ingredient.Allergens) != 1 || ingredient.Allergens[0] != "sulfites" {
		t.Fatalf("expected de-duplicated allergens, got %v", ingredient.Allergens)
	}

	w = ta.do(t, http.MethodPost, "/api/ingredients", token, dto.IngredientInput{Name: "Plastic", Allergens: []string{"plastic"}})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400 for unknown allergen, got %d", w.Code)
	}

	allergens := []string{}
	w = ta.do(t, http.MethodPut, "/api/ingredients/"+ingredient.ID, token, dto.IngredientPatch{Allergens: &allergens})
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", w.Code, w.Body.String())
	}
	decode(t, w, &ingredient)
	if len(ingredient.Allergens) != 0 || ingredient.Name != "Gum Arabic" {
		t.Fatalf("expected only allergens to change, got %+v", ingredient)
	}

	w = ta.do(t, http.MethodGet, "/api/ingredients", token, nil)
	var ingredients []models.Ingredient
	decode(t, w, &ingredients)
	if len(ingredients) != 8 {
		t.Fatalf("expected 8 ingredients, got %d", len(ingredients))
	}
}

func TestDeleteIngredientRemovesLinks(t *testing.T) {
	ta := newTestAPI(t, Options{})
	token := ta.login(t)
	sulfites := ta.ingredientByName(t, "Sulfur Dioxide")

	w := ta.do(t, http.MethodDelete, "/api/ingredients/"+sulfites.ID, token, nil)
	if w.Code != http.StatusNoContent {
		t.Fatalf("expected status 204, got %d", w.Code)
	}
	var links int64
	ta.db.Model(&models.ProductIngredient{}).Where("ingredient_id = ?", sulfites.ID).Count(&links)
	if links != 0 {
		t.Fatalf("expected links to be removed, found %d", links)
	}

	w = ta.do(t, http.MethodGet, "/api/ingredients/"+sulfites.ID, token, nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected status 404 after delete, got %d", w.Code)
	}
}

func TestAppellations(t *testing.T) {
	ta := newTestAPI(t, Options{})
	token := ta.login(t)

	w := ta.do(t, http.MethodPost, "/api/appellations", token, dto.AppellationInput{Name: "margaux aoc"})
	if w.Code != http.StatusConflict {
		t.Fatalf("expected status 409 for a duplicate name, got %d", w.Code)
	}

	w = ta.do(t, http.MethodPost, "/api/appellations", token, dto.AppellationInput{Name: "Sancerre AOC"})
	if w.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d", w.Code)
	}

	w = ta.do(t, http.MethodGet, "/api/appellations", token, nil)
	var appellations []models.Appellation
	decode(t, w, &appellations)
	if len(appellations) != 4 || appellations[0].Name != "Chablis AOC" {
		t.Fatalf("expected 4 appellations sorted by name, got %+v", appellations)
	}
}

func TestLabelsArePublic(t *testing.T) {
	ta := newTestAPI(t, Options{})
	margaux := ta.productBySKU(t, "CM-2019-750")

	w := ta.do(t, http.MethodGet, "/api/labels/"+margaux.ID, "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}
	if bytes.Contains(w.Body.Bytes(), []byte("user_id")) {
		t.Fatalf("label must not expose the owner: %s", w.Body.String())
	}
	var label dto.Label
	decode(t, w, &label)
	if len(label.Ingredients) != 4 || label.Ingredients[0].Name != "Grapes" || label.Ingredients[3].Name != "Egg Albumin" {
		t.Fatalf("unexpected label ingredients %+v", label.Ingredients)
	}
	if label.Operator == nil || label.Operator.Name != "Château Margaux SAS" {
		t.Fatalf("expected operator on label, got %+v", label.Operator)
	}

	w = ta.do(t, http.MethodGet, "/api/labels/"+uuid.NewString(), "", nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected status 404 for unknown label, got %d", w.Code)
	}
}

func TestResolveLink(t *testing.T) {
	ta := newTestAPI(t, Options{})
	brut := ta.productBySKU(t, "MR-NV-750")

	w := ta.do(t, http.MethodGet, "/api/links/"+brut.ShortCode, "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}
	var link dto.ShortLink
	decode(t, w, &link)
	if link.ProductID != brut.ID || link.RedirectLink != "https://maison-remy.example/brut-reserve" {
		t.Fatalf("unexpected link %+v", link)
	}

	w = ta.do(t, http.MethodGet, "/api/links/unknown", "", nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d", w.Code)
	}
}

func uploadRequest(t *testing.T, path, token, contentType string, data []byte) *http.Request {
	t.Helper()
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", `form-data; name="file"; filename="upload.xlsx"`)
	header.Set("Content-Type", contentType)
	part, err := writer.CreatePart(header)
	if err != nil {
		t.Fatalf("failed to create part: %v", err)
	}
	if _, err := part.Write(data); err != nil {
		t.Fatalf("failed to write part: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("failed to close writer: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, path, &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)
	return req
}

func TestImportProducts(t *testing.T) {
	ta := newTestAPI(t, Options{})
	token := ta.login(t)

	var workbook bytes.Buffer
	err := spreadsheet.ExportProducts(&workbook, []models.Product{
		{Name: "Imported Red", Type: "red wine", Vintage: "2020", Appellation: &models.Appellation{Name: "Margaux AOC"}},
		{Brand: "Nameless"},
		{Name: "Imported Rosé", Type: "Rosé Wine", Appellation: &models.Appellation{Name: "Bandol AOC"}},
	})
	if err != nil {
		t.Fatalf("failed to build workbook: %v", err)
	}

	w := httptest.NewRecorder()
	ta.handler.ServeHTTP(w, uploadRequest(t, "/api/products/import", token, spreadsheet.MIMEXLSX, workbook.Bytes()))
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", w.Code, w.Body.String())
	}
	var result dto.ImportResult
	decode(t, w, &result)
	if result.Created != 2 {
		t.Fatalf("expected 2 created rows, got %d", result.Created)
	}
	if len(result.Failures) != 1 || result.Failures[0].Row != 3 {
		t.Fatalf("expected row 3 to fail, got %+v", result.Failures)
	}

	var imported models.Product
	if err := ta.db.Preload("Appellation").Where("name = ?", "Imported Red").First(&imported).Error; err != nil {
		t.Fatalf("expected imported product: %v", err)
	}
	if imported.Type != models.ProductTypeRed || imported.Appellation == nil || imported.Appellation.Name != "Margaux AOC" {
		t.Fatalf("unexpected imported product %+v", imported)
	}
	var appellations int64
	ta.db.Model(&models.Appellation{}).Count(&appellations)
	if appellations != 4 {
		t.Fatalf("expected the new appellation to be created once, got %d", appellations)
	}
}

func TestImportIngredients(t *testing.T) {
	ta := newTestAPI(t, Options{})
	token := ta.login(t)

	var workbook bytes.Buffer
	err := spreadsheet.ExportIngredients(&workbook, []models.Ingredient{
		{Name: "Bentonite", Category: "Fining Agent", ENumber: "E558"},
		{Name: "Lysozyme", Category: "Preservative", ENumber: "E1105", Allergens: []string{"eggs"}},
	})
	if err != nil {
		t.Fatalf("failed to build workbook: %v", err)
	}

	w := httptest.NewRecorder()
	ta.handler.ServeHTTP(w, uploadRequest(t, "/api/ingredients/import", token, spreadsheet.MIMEXLSX+"; charset=binary", workbook.Bytes()))
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", w.Code, w.Body.String())
	}
	var result dto.ImportResult
	decode(t, w, &result)
	if result.Created != 2 || len(result.Failures) != 0 {
		t.Fatalf("unexpected import result %+v", result)
	}
}

func TestImportRejectsNonSpreadsheet(t *testing.T) {
	ta := newTestAPI(t, Options{})
	token := ta.login(t)

	w := httptest.NewRecorder()
	ta.handler.ServeHTTP(w, uploadRequest(t, "/api/products/import", token, "text/csv", []byte("name\nwine\n")))
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", w.Code)
	}

	var count int64
	ta.db.Model(&models.Product{}).Count(&count)
	if count != 3 {
		t.Fatalf("expected no products to be created, got %d", count)
	}
}
