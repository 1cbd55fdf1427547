package pages

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/a-h/templ"

	"winelabel/internal/dto"
	"winelabel/internal/label"
	"winelabel/models"
)

func render(t *testing.T, c templ.Component) string {
	t.Helper()
	var buf bytes.Buffer
	if err := c.Render(context.Background(), &buf); err != nil {
		t.Fatalf("render: %v", err)
	}
	return buf.String()
}

func floatPtr(v float64) *float64 { return &v }

func TestLoginEchoesEmailAndError(t *testing.T) {
	out := render(t, Login(AuthForm{Email: "a@b.co", Error: "Invalid credentials"}))
	if !strings.Contains(out, `value="a@b.co"`) {
		t.Fatalf("expected email to be echoed: %s", out)
	}
	if !strings.Contains(out, "Invalid credentials") {
		t.Fatalf("expected error message: %s", out)
	}
	if strings.Count(out, `type="password"`) != 1 {
		t.Fatalf("expected one password input: %s", out)
	}
}

func TestRegisterHasConfirmation(t *testing.T) {
	out := render(t, Register(AuthForm{FullName: "Ana"}))
	if !strings.Contains(out, `name="confirm_password"`) || !strings.Contains(out, `value="Ana"`) {
		t.Fatalf("unexpected register form: %s", out)
	}
}

func TestProductsListAndEmptyState(t *testing.T) {
	out := render(t, Products(ProductsData{}))
	if !strings.Contains(out, `data-state="empty"`) {
		t.Fatalf("expected empty state: %s", out)
	}

	out = render(t, Products(ProductsData{Products: []models.Product{{
		Model: models.Model{ID: "p1"},
		Name:  "Château Margaux",
		Type:  models.ProductTypeRed,
	}}}))
	for _, want := range []string{`/products/p1/edit`, `/products/p1/duplicate`, `/products/p1/delete`, "bg-rose-100"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in products list: %s", want, out)
		}
	}
}

func TestNewProductFormOrdersSelectedIngredients(t *testing.T) {
	appellation := "a2"
	values := dto.ProductInput{
		Name:          "Rosé",
		AppellationID: &appellation,
		IngredientIDs: []string{"i3", "i1"},
		Nutrition:     &dto.NutritionInput{Fat: floatPtr(0)},
	}
	data := NewProductForm(values,
		[]models.Appellation{{Model: models.Model{ID: "a1"}, Name: "Bordeaux"}, {Model: models.Model{ID: "a2"}, Name: "Provence"}},
		[]models.Ingredient{
			{Model: models.Model{ID: "i1"}, Name: "Grapes"},
			{Model: models.Model{ID: "i2"}, Name: "Sugar"},
			{Model: models.Model{ID: "i3"}, Name: "Tartaric Acid"},
		})

	if data.AppellationID != "a2" {
		t.Fatalf("expected selected appellation a2, got %q", data.AppellationID)
	}
	got := []string{data.Ingredients[0].ID, data.Ingredients[1].ID, data.Ingredients[2].ID}
	if strings.Join(got, ",") != "i3,i1,i2" {
		t.Fatalf("unexpected ingredient order %v", got)
	}
	if data.Ingredients[0].Order != 1 || data.Ingredients[2].Order != 0 {
		t.Fatalf("unexpected order numbers %+v", data.Ingredients)
	}
	if data.Nutrition[2].Value != "0" || data.Nutrition[0].Value != "" {
		t.Fatalf("unexpected nutrition values %+v", data.Nutrition)
	}
}

func TestProductFormRendersErrorsAndSelections(t *testing.T) {
	data := NewProductForm(dto.ProductInput{
		Name:           "Test",
		Type:           models.ProductTypeWhite,
		Certifications: &dto.CertificationsInput{Vegan: true},
		IngredientIDs:  []string{"i1"},
	}, nil, []models.Ingredient{{Model: models.Model{ID: "i1"}, Name: "Grapes"}})
	data.Action = "/products"
	data.Errors["name"] = "Name is required"

	out := render(t, ProductForm(data))
	for _, want := range []string{
		`action="/products"`,
		"Name is required",
		`<option value="White Wine" selected>`,
		`name="vegan" value="true" checked`,
		`name="order_i1" value="1"`,
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in form: %s", want, out)
		}
	}
	if strings.Contains(out, `name="organic" value="true" checked`) {
		t.Fatalf("expected organic to be unchecked: %s", out)
	}
}

func TestProductDetailShowsLinks(t *testing.T) {
	out := render(t, ProductDetail(ProductDetailData{
		Product:    models.Product{Model: models.Model{ID: "p1"}, Name: "Dolcetto"},
		PublicLink: "https://labels.test/l/p1",
		ShortLink:  "https://labels.test/s/abc",
		QRCodeURL:  "https://qr.test/?data=x",
	}))
	for _, want := range []string{`data-copy="https://labels.test/s/abc"`, `src="https://qr.test/?data=x"`, "No ingredients"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in detail: %s", want, out)
		}
	}
}

func TestIngredientFormChecksAllergens(t *testing.T) {
	data := NewIngredientForm(dto.IngredientInput{Name: "Egg Albumin", Allergens: []string{"Eggs"}})
	var checked []string
	for _, a := range data.Allergens {
		if a.Checked {
			checked = append(checked, a.Value)
		}
	}
	if len(checked) != 1 || checked[0] != "eggs" {
		t.Fatalf("expected eggs to be checked, got %v", checked)
	}
	out := render(t, IngredientForm(data))
	if !strings.Contains(out, `value="eggs" checked`) {
		t.Fatalf("expected checked allergen in form: %s", out)
	}
}

func TestIngredientsListJoinsAllergens(t *testing.T) {
	out := render(t, Ingredients(IngredientsData{Ingredients: []models.Ingredient{{
		Model:     models.Model{ID: "i1"},
		Name:      "Casein",
		Allergens: []string{"milk", "eggs"},
	}}}))
	if !strings.Contains(out, "milk, eggs") {
		t.Fatalf("expected joined allergens: %s", out)
	}
}

func TestImportShowsSummary(t *testing.T) {
	out := render(t, Import(ImportData{
		Entity:        "ingredients",
		Action:        "/ingredients/import",
		Columns:       []string{"Name", "Category"},
		TechSheetPath: "/ingredients/techsheet",
		Summary:       &ImportSummary{Total: 3, Created: 2, Failures: []dto.ImportFailure{{Row: 3, Error: "name is required"}}},
	}))
	for _, want := range []string{`enctype="multipart/form-data"`, `data-section="techsheet"`, "Row 3: name is required", "Name, Category"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in import page: %s", want, out)
		}
	}
}

func TestLabelShellLoadsContent(t *testing.T) {
	out := render(t, LabelShell("p1"))
	if !strings.Contains(out, `hx-get="/l/p1/content"`) || !strings.Contains(out, `data-state="loading"`) {
		t.Fatalf("unexpected label shell: %s", out)
	}
}

func TestLabelContentUsesTheme(t *testing.T) {
	view := label.View{
		ID:        "p1",
		Heading:   "WINE 2019",
		Name:      "château margaux",
		Style:     []string{models.ProductTypeRed, "750ml"},
		Nutrition: []label.NutritionRow{{Label: "Energy", Values: []string{"300 kJ", "72 kcal"}}},
		Ingredients: []label.Ingredient{
			{Name: "Grapes"},
			{Name: "Egg Albumin", Allergen: true},
		},
		Allergens: []string{"eggs"},
		Warnings:  []label.Warning{{Code: "18", Text: "Not for persons under the age of 18"}},
	}
	out := render(t, LabelContent(view))
	for _, want := range []string{`data-theme="red"`, "300 kJ / 72 kcal", "Grapes, <strong>Egg Albumin</strong>", `data-warning="18"`} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in label: %s", want, out)
		}
	}
}

func TestLabelNotFound(t *testing.T) {
	out := render(t, LabelNotFound())
	if !strings.Contains(out, `data-state="not-found"`) {
		t.Fatalf("expected not found state: %s", out)
	}
}

func TestProductsSearchKeepsQueryAndShowsNoResults(t *testing.T) {
	out := render(t, Products(ProductsData{Query: "rioja", Total: 4}))
	for _, want := range []string{`name="q" value="rioja"`, `data-state="no-results"`} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in products list: %s", want, out)
		}
	}
	if strings.Contains(out, `data-state="empty"`) {
		t.Fatalf("expected no empty state while searching: %s", out)
	}
}

func TestProductFormOffersAppellationCreate(t *testing.T) {
	data := NewProductForm(dto.ProductInput{}, nil, nil)
	data.Action = "/products"
	data.FormPath = "/products/new"

	out := render(t, ProductForm(data))
	for _, want := range []string{`action="/appellations"`, `name="return_to" value="/products/new"`} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in product form: %s", want, out)
		}
	}
}

func TestIngredientDetailShowsActions(t *testing.T) {
	out := render(t, IngredientDetail(IngredientDetailData{Ingredient: models.Ingredient{
		Model:     models.Model{ID: "i2"},
		Name:      "Potassium Metabisulphite",
		Category:  "Preservative",
		ENumber:   "E224",
		Allergens: []string{"sulfites"},
	}}))
	for _, want := range []string{
		`data-ingredient-id="i2"`,
		"E224",
		"sulfites",
		`href="/ingredients/i2/edit"`,
		`action="/ingredients/i2/duplicate"`,
		`action="/ingredients/i2/delete"`,
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in ingredient detail: %s", want, out)
		}
	}

	out = render(t, IngredientDetail(IngredientDetailData{Ingredient: models.Ingredient{Model: models.Model{ID: "i3"}, Name: "Water"}}))
	if !strings.Contains(out, "None declared") {
		t.Fatalf("expected no allergens note: %s", out)
	}
}
