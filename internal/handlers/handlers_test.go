package handlers

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/textproto"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/alexedwards/scs/v2"

	"winelabel/internal/cache"
	"winelabel/internal/client"
	"winelabel/internal/dto"
	"winelabel/internal/session"
	"winelabel/internal/validation"
	"winelabel/models"
)

const (
	testEmail    = "sommelier@winelabel.app"
	testPassword = "cellar"
	testToken    = "token-u1"

	testAppellationID = "7b1e5a0c-3f2d-4c8e-9a61-2d4f5e6a7b8c"
)

// fakeBackend is an in-memory stand-in for the REST API.
type fakeBackend struct {
	mu           sync.Mutex
	calls        map[string]int
	tokens       []string
	products     map[string]models.Product
	ingredients  map[string]models.Ingredient
	appellations []models.Appellation
	labels       map[string]dto.Label
	links        map[string]dto.ShortLink
	nextID       int
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		calls: map[string]int{},
		products: map[string]models.Product{
			"p1": {Model: models.Model{ID: "p1"}, Name: "Château Margaux", SKUCode: "CM-2019-750", Type: models.ProductTypeRed, ShortCode: "cm2019"},
		},
		ingredients: map[string]models.Ingredient{
			"i1": {Model: models.Model{ID: "i1"}, Name: "Grapes", Category: "Other"},
			"i2": {Model: models.Model{ID: "i2"}, Name: "Sulfur Dioxide", Category: "Preservative", ENumber: "E220", Allergens: []string{"sulfites"}},
		},
		appellations: []models.Appellation{{Model: models.Model{ID: testAppellationID}, Name: "Margaux"}},
		labels: map[string]dto.Label{
			"p1": {ID: "p1", Name: "Château Margaux", Vintage: "2019", Type: models.ProductTypeRed},
		},
		links: map[string]dto.ShortLink{
			"cm2019": {Code: "cm2019", ProductID: "p1"},
			"promo":  {Code: "promo", ProductID: "p1", RedirectLink: "https://winery.test/margaux"},
		},
	}
}

func (f *fakeBackend) record(ctx context.Context, name string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[name]++
	f.tokens = append(f.tokens, client.TokenFrom(ctx))
}

func (f *fakeBackend) count(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[name]
}

func (f *fakeBackend) lastToken() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.tokens) == 0 {
		return ""
	}
	return f.tokens[len(f.tokens)-1]
}

func (f *fakeBackend) product(id string) models.Product {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.products[id]
}

func notFound() error { return &client.StatusError{StatusCode: http.StatusNotFound, Body: `{"error":"not found"}`} }

func (f *fakeBackend) Login(ctx context.Context, email, password string) (dto.AuthResponse, error) {
	f.record(ctx, "Login")
	if email != testEmail || password != testPassword {
		return dto.AuthResponse{}, &client.StatusError{StatusCode: http.StatusUnauthorized}
	}
	return dto.AuthResponse{Token: testToken, Profile: models.Profile{Model: models.Model{ID: "u1"}, Email: email, FullName: "Ana Sommelier"}}, nil
}

func (f *fakeBackend) Register(ctx context.Context, input dto.RegisterRequest) (dto.AuthResponse, error) {
	f.record(ctx, "Register")
	if strings.EqualFold(input.Email, testEmail) {
		return dto.AuthResponse{}, &client.StatusError{StatusCode: http.StatusConflict}
	}
	return dto.AuthResponse{Token: "token-u2", Profile: models.Profile{Model: models.Model{ID: "u2"}, Email: input.Email, FullName: input.FullName}}, nil
}

func (f *fakeBackend) Logout(ctx context.Context) error {
	f.record(ctx, "Logout")
	return nil
}

func (f *fakeBackend) Me(ctx context.Context) (models.Profile, error) {
	f.record(ctx, "Me")
	return models.Profile{Model: models.Model{ID: "u1"}, Email: testEmail, FullName: "Ana Sommelier"}, nil
}

func (f *fakeBackend) ListProducts(ctx context.Context) ([]models.Product, error) {
	f.record(ctx, "ListProducts")
	f.mu.Lock()
	defer f.mu.Unlock()
	list := make([]models.Product, 0, len(f.products))
	for _, p := range f.products {
		list = append(list, p)
	}
	return list, nil
}

func (f *fakeBackend) GetProduct(ctx context.Context, id string) (models.Product, error) {
	f.record(ctx, "GetProduct")
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.products[id]
	if !ok {
		return models.Product{}, notFound()
	}
	return p, nil
}

func (f *fakeBackend) CreateProduct(ctx context.Context, input dto.ProductInput) (models.Product, error) {
	f.record(ctx, "CreateProduct")
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	p := models.Product{
		Model:   models.Model{ID: fmt.Sprintf("new-%d", f.nextID)},
		Name:    input.Name,
		SKUCode: input.SKUCode,
		Type:    input.Type,
	}
	for i, id := range input.IngredientIDs {
		p.Ingredients = append(p.Ingredients, models.ProductIngredient{ProductID: p.ID, IngredientID: id, OrderNumber: i + 1})
	}
	f.products[p.ID] = p
	return p, nil
}

func (f *fakeBackend) UpdateProduct(ctx context.Context, id string, patch dto.ProductPatch) (models.Product, error) {
	f.record(ctx, "UpdateProduct")
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.products[id]
	if !ok {
		return models.Product{}, notFound()
	}
	if patch.Name != nil {
		p.Name = *patch.Name
	}
	if patch.AppellationID != nil {
		p.AppellationID = patch.AppellationID
	}
	if patch.IngredientIDs != nil {
		p.Ingredients = nil
		for i, ingredientID := range *patch.IngredientIDs {
			p.Ingredients = append(p.Ingredients, models.ProductIngredient{ProductID: id, IngredientID: ingredientID, OrderNumber: i + 1})
		}
	}
	f.products[id] = p
	return p, nil
}

func (f *fakeBackend) DeleteProduct(ctx context.Context, id string) error {
	f.record(ctx, "DeleteProduct")
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.products[id]; !ok {
		return notFound()
	}
	delete(f.products, id)
	return nil
}

func (f *fakeBackend) ListIngredients(ctx context.Context) ([]models.Ingredient, error) {
	f.record(ctx, "ListIngredients")
	f.mu.Lock()
	defer f.mu.Unlock()
	list := make([]models.Ingredient, 0, len(f.ingredients))
	for _, id := range []string{"i1", "i2"} {
		if i, ok := f.ingredients[id]; ok {
			list = append(list, i)
		}
	}
	for id, i := range f.ingredients {
		if id != "i1" && id != "i2" {
			list = append(list, i)
		}
	}
	return list, nil
}

func (f *fakeBackend) GetIngredient(ctx context.Context, id string) (models.Ingredient, error) {
	f.record(ctx, "GetIngredient")
	f.mu.Lock()
	defer f.mu.Unlock()
	i, ok := f.ingredients[id]
	if !ok {
		return models.Ingredient{}, notFound()
	}
	return i, nil
}

func (f *fakeBackend) CreateIngredient(ctx context.Context, input dto.IngredientInput) (models.Ingredient, error) {
	f.record(ctx, "CreateIngredient")
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	i := models.Ingredient{
		Model:     models.Model{ID: fmt.Sprintf("new-%d", f.nextID)},
		Name:      input.Name,
		Category:  input.Category,
		ENumber:   input.ENumber,
		Allergens: input.Allergens,
	}
	f.ingredients[i.ID] = i
	return i, nil
}

func (f *fakeBackend) UpdateIngredient(ctx context.Context, id string, patch dto.IngredientPatch) (models.Ingredient, error) {
	f.record(ctx, "UpdateIngredient")
	f.mu.Lock()
	defer f.mu.Unlock()
	i, ok := f.ingredients[id]
	if !ok {
		return models.Ingredient{}, notFound()
	}
	if patch.Name != nil {
		i.Name = *patch.Name
	}
	if patch.Allergens != nil {
		i.Allergens = *patch.Allergens
	}
	f.ingredients[id] = i
	return i, nil
}

func (f *fakeBackend) DeleteIngredient(ctx context.Context, id string) error {
	f.record(ctx, "DeleteIngredient")
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.ingredients, id)
	return nil
}

func (f *fakeBackend) ListAppellations(ctx context.Context) ([]models.Appellation, error) {
	f.record(ctx, "ListAppellations")
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]models.Appellation(nil), f.appellations...), nil
}

func (f *fakeBackend) CreateAppellation(ctx context.Context, input dto.AppellationInput) (models.Appellation, error) {
	f.record(ctx, "CreateAppellation")
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, a := range f.appellations {
		if strings.EqualFold(a.Name, input.Name) {
			return models.Appellation{}, &client.StatusError{StatusCode: http.StatusConflict, Body: `{"error":"appellation already exists"}`}
		}
	}
	f.nextID++
	a := models.Appellation{Model: models.Model{ID: fmt.Sprintf("a-%d", f.nextID)}, Name: input.Name, Description: input.Description}
	f.appellations = append(f.appellations, a)
	return a, nil
}

func (f *fakeBackend) GetLabel(ctx context.Context, id string) (dto.Label, error) {
	f.record(ctx, "GetLabel")
	l, ok := f.labels[id]
	if !ok {
		return dto.Label{}, notFound()
	}
	return l, nil
}

func (f *fakeBackend) ResolveShortLink(ctx context.Context, code string) (dto.ShortLink, error) {
	f.record(ctx, "ResolveShortLink")
	link, ok := f.links[code]
	if !ok {
		return dto.ShortLink{}, notFound()
	}
	return link, nil
}

type harness struct {
	t       *testing.T
	backend *fakeBackend
	server  *httptest.Server
	client  *http.Client
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	backend := newFakeBackend()
	sessions := session.New(backend, scs.New())
	h := New(sessions, backend, cache.NewMemory(time.Minute), validation.New(), Links{
		PublicBaseURL: "https://labels.test",
		QRService:     "https://qr.test/create",
		QRSize:        150,
	})

	mux := http.NewServeMux()
	mux.HandleFunc("/login", h.Login)
	mux.HandleFunc("/register", h.Register)
	mux.HandleFunc("POST /logout", h.Logout)
	mux.HandleFunc("GET /products", h.ListProducts)
	mux.HandleFunc("POST /products", h.CreateProduct)
	mux.HandleFunc("GET /products/new", h.NewProduct)
	mux.HandleFunc("GET /products/export", h.ExportProducts)
	mux.HandleFunc("GET /products/import", h.ProductImport)
	mux.HandleFunc("POST /products/import", h.ImportProducts)
	mux.HandleFunc("GET /products/{id}", h.ShowProduct)
	mux.HandleFunc("GET /products/{id}/edit", h.EditProduct)
	mux.HandleFunc("POST /products/{id}", h.UpdateProduct)
	mux.HandleFunc("POST /products/{id}/duplicate", h.DuplicateProduct)
	mux.HandleFunc("POST /products/{id}/delete", h.DeleteProduct)
	mux.HandleFunc("GET /ingredients", h.ListIngredients)
	mux.HandleFunc("POST /ingredients", h.CreateIngredient)
	mux.HandleFunc("GET /ingredients/{id}", h.ShowIngredient)
	mux.HandleFunc("GET /ingredients/{id}/edit", h.EditIngredient)
	mux.HandleFunc("POST /ingredients/{id}/duplicate", h.DuplicateIngredient)
	mux.HandleFunc("POST /ingredients/{id}", h.UpdateIngredient)
	mux.HandleFunc("POST /ingredients/{id}/delete", h.DeleteIngredient)
	mux.HandleFunc("GET /ingredients/export", h.ExportIngredients)
	mux.HandleFunc("POST /ingredients/import", h.ImportIngredients)
	mux.HandleFunc("POST /ingredients/techsheet", h.ImportTechSheet)
	mux.HandleFunc("POST /appellations", h.CreateAppellation)
	mux.HandleFunc("GET /l/{id}", h.LabelShell)
	mux.HandleFunc("GET /l/{id}/content", h.LabelContent)
	mux.HandleFunc("GET /s/{code}", h.ShortLink)

	server := httptest.NewServer(sessions.Sessions().LoadAndSave(mux))
	t.Cleanup(server.Close)

	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatalf("cookie jar: %v", err)
	}
	return &harness{
		t:       t,
		backend: backend,
		server:  server,
		client: &http.Client{
			Jar: jar,
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
	}
}

func (h *harness) do(req *http.Request) (*http.Response, string) {
	h.t.Helper()
	resp, err := h.client.Do(req)
	if err != nil {
		h.t.Fatalf("%s %s: %v", req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		h.t.Fatalf("read body: %v", err)
	}
	return resp, string(body)
}

func (h *harness) get(path string) (*http.Response, string) {
	h.t.Helper()
	req, err := http.NewRequest(http.MethodGet, h.server.URL+path, nil)
	if err != nil {
		h.t.Fatalf("new request: %v", err)
	}
	return h.do(req)
}

func (h *harness) post(path string, form url.Values) (*http.Response, string) {
	h.t.Helper()
	req, err := http.NewRequest(http.MethodPost, h.server.URL+path, strings.NewReader(form.Encode()))
	if err != nil {
		h.t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return h.do(req)
}

func (h *harness) upload(path, contentType string, data []byte) (*http.Response, string) {
	h.t.Helper()
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	header := textproto.MIMEHeader{}
	header.Set("Content-Disposition", `form-data; name="file"; filename="upload"`)
	header.Set("Content-Type", contentType)
	part, err := writer.CreatePart(header)
	if err != nil {
		h.t.Fatalf("create part: %v", err)
	}
	if _, err := part.Write(data); err != nil {
		h.t.Fatalf("write part: %v", err)
	}
	if err := writer.Close(); err != nil {
		h.t.Fatalf("close multipart: %v", err)
	}

	req, err := http.NewRequest(http.MethodPost, h.server.URL+path, &body)
	if err != nil {
		h.t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return h.do(req)
}

func (h *harness) login() {
	h.t.Helper()
	resp, _ := h.post("/login", url.Values{"email": {testEmail}, "password": {testPassword}})
	if resp.StatusCode != http.StatusSeeOther || resp.Header.Get("Location") != session.HomePath {
		h.t.Fatalf("expected login redirect to %s, got %d %q", session.HomePath, resp.StatusCode, resp.Header.Get("Location"))
	}
}

func expectContains(t *testing.T, body string, wants ...string) {
	t.Helper()
	for _, want := range wants {
		if !strings.Contains(body, want) {
			t.Fatalf("expected %q in body:\n%s", want, body)
		}
	}
}
