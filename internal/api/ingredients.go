package api

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"gorm.io/gorm"

	"winelabel/internal/dto"
	applog "winelabel/internal/log"
	"winelabel/internal/validation"
	"winelabel/models"
)

func (a *API) listIngredients(w http.ResponseWriter, r *http.Request) {
	ingredients := make([]models.Ingredient, 0)
	if err := a.db.WithContext(r.Context()).Order("name asc").Find(&ingredients).Error; err != nil {
		fail(w, r, err, "unable to load ingredients")
		return
	}
	writeJSON(w, http.StatusOK, ingredients)
}

func (a *API) showIngredient(w http.ResponseWriter, r *http.Request) {
	var ingredient models.Ingredient
	if err := a.db.WithContext(r.Context()).First(&ingredient, "id = ?", chi.URLParam(r, "id")).Error; err != nil {
		fail(w, r, err, "unable to load ingredient")
		return
	}
	writeJSON(w, http.StatusOK, ingredient)
}

func (a *API) createIngredient(w http.ResponseWriter, r *http.Request) {
	var input dto.IngredientInput
	if !a.decode(w, r, &input) {
		return
	}
	ingredient, err := insertIngredient(a.db.WithContext(r.Context()), input)
	if err != nil {
		fail(w, r, err, "unable to create ingredient")
		return
	}
	writeJSON(w, http.StatusCreated, ingredient)
}

func (a *API) updateIngredient(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := chi.URLParam(r, "id")

	var ingredient models.Ingredient
	if err := a.db.WithContext(ctx).First(&ingredient, "id = ?", id).Error; err != nil {
		fail(w, r, err, "unable to load ingredient")
		return
	}

	var patch dto.IngredientPatch
	if !a.decode(w, r, &patch) {
		return
	}

	updates := map[string]any{}
	if patch.Name != nil {
		name := strings.TrimSpace(*patch.Name)
		if name == "" {
			fail(w, r, validation.Field("name", "is required"), "invalid request payload")
			return
		}
		updates["name"] = name
	}
	if patch.Category != nil {
		updates["category"] = ingredientCategory(*patch.Category)
	}
	if patch.ENumber != nil {
		updates["e_number"] = normalizeENumber(*patch.ENumber)
	}

	err := a.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if len(updates) > 0 {
			if err := tx.Model(&ingredient).Updates(updates).Error; err != nil {
				return err
			}
		}
		if patch.Allergens != nil {
			allergens, _ := models.NormalizeAllergens(*patch.Allergens)
			ingredient.Allergens = allergens
			if err := tx.Model(&ingredient).Select("allergens").Updates(&ingredient).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		fail(w, r, err, "unable to update ingredient")
		return
	}

	if err := a.db.WithContext(ctx).First(&ingredient, "id = ?", id).Error; err != nil {
		fail(w, r, err, "unable to load updated ingredient")
		return
	}
	writeJSON(w, http.StatusOK, ingredient)
}

// deleteIngredient also removes the ingredient from every product list.
func (a *API) deleteIngredient(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := chi.URLParam(r, "id")

	var ingredient models.Ingredient
	if err := a.db.WithContext(ctx).First(&ingredient, "id = ?", id).Error; err != nil {
		fail(w, r, err, "unable to load ingredient")
		return
	}

	err := a.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("ingredient_id = ?", id).Delete(&models.ProductIngredient{}).Error; err != nil {
			return err
		}
		return tx.Delete(&ingredient).Error
	})
	if err != nil {
		fail(w, r, err, "unable to delete ingredient")
		return
	}

	applog.Info(ctx, "ingredient deleted", "id", id)
	w.WriteHeader(http.StatusNoContent)
}

func insertIngredient(tx *gorm.DB, in dto.IngredientInput) (models.Ingredient, error) {
	allergens, _ := models.NormalizeAllergens(in.Allergens)
	ingredient := models.Ingredient{
		Name:      strings.TrimSpace(in.Name),
		Category:  ingredientCategory(in.Category),
		ENumber:   normalizeENumber(in.ENumber),
		Allergens: allergens,
	}
	if err := tx.Create(&ingredient).Error; err != nil {
		return models.Ingredient{}, err
	}
	return ingredient, nil
}

func ingredientCategory(value string) string {
	if category, ok := models.CanonicalIngredientCategory(value); ok {
		return category
	}
	return models.DefaultIngredientCategory
}

// normalizeENumber upper-cases the leading E and keeps suffixes like E150a.
func normalizeENumber(value string) string {
	value = strings.TrimSpace(value)
	if strings.HasPrefix(value, "e") {
		value = "E" + value[1:]
	}
	return value
}
