package api

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"winelabel/internal/dto"
	applog "winelabel/internal/log"
	"winelabel/internal/validation"
	"winelabel/models"
)

// withProductDetails preloads every record a product page or label needs.
func withProductDetails(tx *gorm.DB) *gorm.DB {
	return tx.
		Preload("Appellation").
		Preload("Nutrition").
		Preload("Certifications").
		Preload("Operator").
		Preload("Consumption").
		Preload("Ingredients", func(db *gorm.DB) *gorm.DB { return db.Order("order_number asc") }).
		Preload("Ingredients.Ingredient")
}

func (a *API) ownedProduct(ctx context.Context, userID, id string) (models.Product, error) {
	var product models.Product
	err := withProductDetails(a.db.WithContext(ctx)).
		Where("id = ? AND user_id = ?", id, userID).
		First(&product).Error
	return product, err
}

func (a *API) listProducts(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	products := make([]models.Product, 0)
	err := withProductDetails(a.db.WithContext(ctx)).
		Where("user_id = ?", userIDFrom(ctx)).
		Order("created_at desc").
		Find(&products).Error
	if err != nil {
		fail(w, r, err, "unable to load products")
		return
	}
	writeJSON(w, http.StatusOK, products)
}

func (a *API) showProduct(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := chi.URLParam(r, "id")
	product, err := a.ownedProduct(ctx, userIDFrom(ctx), id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			applog.Debug(ctx, "product not found or not owned", "id", id)
		}
		fail(w, r, err, "unable to load product")
		return
	}
	writeJSON(w, http.StatusOK, product)
}

func (a *API) createProduct(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var input dto.ProductInput
	if !a.decode(w, r, &input) {
		return
	}

	userID := userIDFrom(ctx)
	var id string
	err := a.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		id, err = insertProduct(tx, userID, input)
		return err
	})
	if err != nil {
		fail(w, r, err, "unable to create product")
		return
	}

	product, err := a.ownedProduct(ctx, userID, id)
	if err != nil {
		fail(w, r, err, "unable to load created product")
		return
	}
	writeJSON(w, http.StatusCreated, product)
}

func (a *API) updateProduct(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := userIDFrom(ctx)
	id := chi.URLParam(r, "id")

	if _, err := a.ownedProduct(ctx, userID, id); err != nil {
		fail(w, r, err, "unable to load product")
		return
	}

	var patch dto.ProductPatch
	if !a.decode(w, r, &patch) {
		return
	}

	err := a.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return patchProduct(tx, id, patch)
	})
	if err != nil {
		fail(w, r, err, "unable to update product")
		return
	}

	product, err := a.ownedProduct(ctx, userID, id)
	if err != nil {
		fail(w, r, err, "unable to load updated product")
		return
	}
	writeJSON(w, http.StatusOK, product)
}

func (a *API) deleteProduct(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := chi.URLParam(r, "id")
	if _, err := a.ownedProduct(ctx, userIDFrom(ctx), id); err != nil {
		fail(w, r, err, "unable to load product")
		return
	}

	err := a.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, child := range productChildren() {
			if err := tx.Where("product_id = ?", id).Delete(child).Error; err != nil {
				return err
			}
		}
		return tx.Delete(&models.Product{}, "id = ?", id).Error
	})
	if err != nil {
		fail(w, r, err, "unable to delete product")
		return
	}

	applog.Info(ctx, "product deleted", "id", id)
	w.WriteHeader(http.StatusNoContent)
}

func productChildren() []any {
	return []any{
		&models.ProductIngredient{},
		&models.NutritionInfo{},
		&models.Certifications{},
		&models.FoodBusinessOperator{},
		&models.ResponsibleConsumption{},
	}
}

// insertProduct stores a product with its details and ordered ingredient links and
// returns the new id.
func insertProduct(tx *gorm.DB, userID string, in dto.ProductInput) (string, error) {
	appellationID, err := resolveAppellation(tx, in.AppellationID, in.Appellation)
	if err != nil {
		return "", err
	}
	ingredientIDs, err := knownIngredients(tx, in.IngredientIDs)
	if err != nil {
		return "", err
	}

	product := models.Product{
		Name:              strings.TrimSpace(in.Name),
		Brand:             strings.TrimSpace(in.Brand),
		NetVolume:         strings.TrimSpace(in.NetVolume),
		Vintage:           strings.TrimSpace(in.Vintage),
		Type:              canonicalOr(models.CanonicalProductType, in.Type),
		SugarContent:      canonicalOr(models.CanonicalSugarContent, in.SugarContent),
		Alcohol:           strings.TrimSpace(in.Alcohol),
		CountryOfOrigin:   strings.TrimSpace(in.CountryOfOrigin),
		SKUCode:           strings.TrimSpace(in.SKUCode),
		EANGTIN:           strings.TrimSpace(in.EANGTIN),
		AppellationID:     appellationID,
		ImageURL:          strings.TrimSpace(in.ImageURL),
		QRCodeURL:         strings.TrimSpace(in.QRCodeURL),
		ExternalShortLink: strings.TrimSpace(in.ExternalShortLink),
		RedirectLink:      strings.TrimSpace(in.RedirectLink),
		UserID:            userID,
	}
	if err := tx.Omit(clause.Associations).Create(&product).Error; err != nil {
		return "", err
	}

	if err := saveDetails(tx, product.ID, in.Nutrition, in.Certifications, in.Operator, in.Consumption); err != nil {
		return "", err
	}
	if err := replaceLinks(tx, product.ID, ingredientIDs); err != nil {
		return "", err
	}
	return product.ID, nil
}

// patchProduct applies only the fields present in patch.
func patchProduct(tx *gorm.DB, id string, patch dto.ProductPatch) error {
	updates := map[string]any{}
	setString := func(column string, value *string) {
		if value != nil {
			updates[column] = strings.TrimSpace(*value)
		}
	}
	setString("name", patch.Name)
	setString("brand", patch.Brand)
	setString("net_volume", patch.NetVolume)
	setString("vintage", patch.Vintage)
	setString("alcohol", patch.Alcohol)
	setString("country_of_origin", patch.CountryOfOrigin)
	setString("sku_code", patch.SKUCode)
	setString("ean_gtin", patch.EANGTIN)
	setString("image_url", patch.ImageURL)
	setString("qr_code_url", patch.QRCodeURL)
	setString("external_short_link", patch.ExternalShortLink)
	setString("redirect_link", patch.RedirectLink)
	if patch.Type != nil {
		updates["type"] = canonicalOr(models.CanonicalProductType, *patch.Type)
	}
	if patch.SugarContent != nil {
		updates["sugar_content"] = canonicalOr(models.CanonicalSugarContent, *patch.SugarContent)
	}
	if name, ok := updates["name"]; ok && name == "" {
		return validation.Field("name", "is required")
	}

	if patch.AppellationID != nil || patch.Appellation != nil {
		name := ""
		if patch.AppellationID == nil {
			name = *patch.Appellation
		}
		appellationID, err := resolveAppellation(tx, patch.AppellationID, name)
		if err != nil {
			return err
		}
		if appellationID == nil {
			updates["appellation_id"] = nil
		} else {
			updates["appellation_id"] = *appellationID
		}
	}

	if len(updates) > 0 {
		if err := tx.Model(&models.Product{}).Where("id = ?", id).Updates(updates).Error; err != nil {
			return err
		}
	}

	if err := saveDetails(tx, id, patch.Nutrition, patch.Certifications, patch.Operator, patch.Consumption); err != nil {
		return err
	}

	if patch.IngredientIDs != nil {
		ingredientIDs, err := knownIngredients(tx, *patch.IngredientIDs)
		if err != nil {
			return err
		}
		if err := replaceLinks(tx, id, ingredientIDs); err != nil {
			return err
		}
	}
	return nil
}

// resolveAppellation returns the appellation to link. An id must exist; a name is
// matched without case and created when missing. Blank values clear the link.
func resolveAppellation(tx *gorm.DB, id *string, name string) (*string, error) {
	if id != nil {
		trimmed := strings.TrimSpace(*id)
		if trimmed == "" {
			return nil, nil
		}
		var count int64
		if err := tx.Model(&models.Appellation{}).Where("id = ?", trimmed).Count(&count).Error; err != nil {
			return nil, err
		}
		if count == 0 {
			return nil, validation.Field("appellation_id", "does not reference a known appellation")
		}
		return &trimmed, nil
	}

	name = strings.TrimSpace(name)
	if name == "" {
		return nil, nil
	}
	appellation, err := findAppellation(tx, name)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		// Concurrent imports may insert the same name; the loser reads the winner's row.
		created := models.Appellation{Name: name}
		err = tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&created).Error
		if err == nil {
			appellation, err = findAppellation(tx, name)
		}
	}
	if err != nil {
		return nil, err
	}
	return &appellation.ID, nil
}

func findAppellation(tx *gorm.DB, name string) (models.Appellation, error) {
	var appellation models.Appellation
	err := tx.Where("lower(name) = ?", strings.ToLower(name)).First(&appellation).Error
	return appellation, err
}

func knownIngredients(tx *gorm.DB, ids []string) ([]string, error) {
	ids = dto.UniqueIDs(ids)
	if len(ids) == 0 {
		return ids, nil
	}
	var count int64
	if err := tx.Model(&models.Ingredient{}).Where("id IN ?", ids).Count(&count).Error; err != nil {
		return nil, err
	}
	if int(count) != len(ids) {
		return nil, validation.Field("ingredient_ids", "references an unknown ingredient")
	}
	return ids, nil
}

// replaceLinks rewrites the ingredient list of a product. Order numbers follow the
// position in ids starting at 1.
func replaceLinks(tx *gorm.DB, productID string, ids []string) error {
	if err := tx.Where("product_id = ?", productID).Delete(&models.ProductIngredient{}).Error; err != nil {
		return err
	}
	if len(ids) == 0 {
		return nil
	}
	links := make([]models.ProductIngredient, 0, len(ids))
	for i, id := range ids {
		links = append(links, models.ProductIngredient{ProductID: productID, IngredientID: id, OrderNumber: i + 1})
	}
	return tx.Create(&links).Error
}

// saveDetails replaces each sub-entity that is present. Nil inputs leave the stored
// record untouched.
func saveDetails(tx *gorm.DB, productID string, n *dto.NutritionInput, c *dto.CertificationsInput, o *dto.OperatorInput, rc *dto.ConsumptionInput) error {
	var records []any
	if n != nil {
		records = append(records, &models.NutritionInfo{
			ProductID:    productID,
			EnergyKJ:     n.EnergyKJ,
			EnergyKcal:   n.EnergyKcal,
			Fat:          n.Fat,
			Saturates:    n.Saturates,
			Carbohydrate: n.Carbohydrate,
			Sugars:       n.Sugars,
			Protein:      n.Protein,
			Salt:         n.Salt,
		})
	}
	if c != nil {
		records = append(records, &models.Certifications{
			ProductID:  productID,
			Organic:    c.Organic,
			Vegan:      c.Vegan,
			Vegetarian: c.Vegetarian,
		})
	}
	if o != nil && *o == (dto.OperatorInput{}) {
		// A blank operator removes the declared one.
		if err := tx.Where("product_id = ?", productID).Delete(&models.FoodBusinessOperator{}).Error; err != nil {
			return err
		}
	} else if o != nil {
		records = append(records, &models.FoodBusinessOperator{
			ProductID:             productID,
			Type:                  canonicalOr(models.CanonicalOperatorType, o.Type),
			Name:                  strings.TrimSpace(o.Name),
			Address:               strings.TrimSpace(o.Address),
			AdditionalInformation: strings.TrimSpace(o.AdditionalInformation),
		})
	}
	if rc != nil {
		records = append(records, &models.ResponsibleConsumption{
			ProductID: productID,
			Age:       rc.Age,
			Driving:   rc.Driving,
			Pregnancy: rc.Pregnancy,
		})
	}

	for _, record := range records {
		if err := tx.Where("product_id = ?", productID).Delete(record).Error; err != nil {
			return err
		}
		if err := tx.Create(record).Error; err != nil {
			return err
		}
	}
	return nil
}

func canonicalOr(match func(string) (string, bool), value string) string {
	if canonical, ok := match(value); ok {
		return canonical
	}
	return strings.TrimSpace(value)
}
