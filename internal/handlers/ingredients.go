package handlers

import (
	"bytes"
	"net/http"

	"winelabel/internal/dto"
	"winelabel/internal/entities"
	applog "winelabel/internal/log"
	"winelabel/internal/notify"
	"winelabel/internal/session"
	"winelabel/internal/spreadsheet"
	"winelabel/internal/views/components"
	"winelabel/internal/views/pages"
	"winelabel/models"
)

const ingredientsPath = "/ingredients"

var ingredientNotFound = components.NotFound{
	Title:     "Ingredient not found",
	Message:   "The ingredient you are looking for does not exist or has been deleted.",
	BackPath:  ingredientsPath,
	BackLabel: "Back to ingredients",
}

func (h *Handlers) ListIngredients(w http.ResponseWriter, r *http.Request) {
	ctx, ingredients := h.ingredients(r)
	records, err := ingredients.List(ctx)
	v := view{title: "Ingredients", section: "ingredients"}
	if err != nil {
		applog.Error(r.Context(), "failed to list ingredients", "error", err)
		flash := notify.Notification{
			Title:       "Error",
			Description: "Failed to load ingredients. Please try again.",
			Variant:     notify.VariantDestructive,
		}
		v.flash = &flash
	}
	filters := pages.ListFiltersFromRequest(r)
	v.content = pages.Ingredients(pages.IngredientsData{
		Ingredients: pages.FilterIngredients(records, filters),
		Query:       filters.Query,
		Total:       len(records),
	})
	h.render(w, r, v)
}

func (h *Handlers) ShowIngredient(w http.ResponseWriter, r *http.Request) {
	ctx, ingredients := h.ingredients(r)
	ingredient, err := ingredients.Get(ctx, r.PathValue("id"))
	if err != nil {
		h.loadFailed(w, r, err, "ingredients", ingredientNotFound)
		return
	}
	h.render(w, r, view{
		title:   ingredient.Name,
		section: "ingredients",
		content: pages.IngredientDetail(pages.IngredientDetailData{Ingredient: ingredient}),
	})
}

func (h *Handlers) NewIngredient(w http.ResponseWriter, r *http.Request) {
	h.renderIngredientForm(w, r, newIngredientForm(dto.IngredientInput{}), nil)
}

func (h *Handlers) CreateIngredient(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form submission", http.StatusBadRequest)
		return
	}
	input := ingredientForm(r)

	ctx, ingredients := h.ingredients(r)
	result := ingredients.Create(ctx, input)
	if !result.OK() {
		h.ingredientMutationFailed(w, r, newIngredientForm(input), result)
		return
	}
	h.sessions.Flash(r.Context(), notify.Mutation(result))
	session.Redirect(w, r, ingredientsPath)
}

func (h *Handlers) EditIngredient(w http.ResponseWriter, r *http.Request) {
	ctx, ingredients := h.ingredients(r)
	ingredient, err := ingredients.Get(ctx, r.PathValue("id"))
	if err != nil {
		h.loadFailed(w, r, err, "ingredients", ingredientNotFound)
		return
	}
	h.renderIngredientForm(w, r, editIngredientForm(ingredient.ID, dto.IngredientInputFrom(ingredient)), nil)
}

func (h *Handlers) UpdateIngredient(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form submission", http.StatusBadRequest)
		return
	}
	input := ingredientForm(r)

	ctx, ingredients := h.ingredients(r)
	result := ingredients.Update(ctx, entities.UpdateIngredientInput{ID: id, Data: ingredientPatch(input)})
	if !result.OK() {
		h.ingredientMutationFailed(w, r, editIngredientForm(id, input), result)
		return
	}
	// Product pages embed ingredient names.
	_, products := h.products(r)
	products.Forget()
	h.sessions.Flash(r.Context(), notify.Mutation(result))
	session.Redirect(w, r, ingredientsPath)
}

// DuplicateIngredient stores a copy and opens it for editing.
func (h *Handlers) DuplicateIngredient(w http.ResponseWriter, r *http.Request) {
	ctx, ingredients := h.ingredients(r)
	result := ingredients.Duplicate(ctx, r.PathValue("id"))
	h.sessions.Flash(r.Context(), notify.Mutation(result))
	if copied, ok := result.Record.(models.Ingredient); ok && result.OK() {
		session.Redirect(w, r, ingredientsPath+"/"+copied.ID+"/edit")
		return
	}
	session.Redirect(w, r, ingredientsPath)
}

func (h *Handlers) DeleteIngredient(w http.ResponseWriter, r *http.Request) {
	ctx, ingredients := h.ingredients(r)
	result := ingredients.Delete(ctx, r.PathValue("id"))
	if result.OK() {
		_, products := h.products(r)
		products.Forget()
	}
	h.sessions.Flash(r.Context(), notify.Mutation(result))
	session.Redirect(w, r, ingredientsPath)
}

// ExportIngredients downloads every ingredient as a workbook.
func (h *Handlers) ExportIngredients(w http.ResponseWriter, r *http.Request) {
	ctx, ingredients := h.ingredients(r)
	records, err := ingredients.List(ctx)
	if err != nil {
		applog.Error(r.Context(), "failed to load ingredients for export", "error", err)
		h.sessions.Flash(r.Context(), notify.Notification{
			Title:       "Export failed",
			Description: "Failed to export ingredients. Please try again.",
			Variant:     notify.VariantDestructive,
		})
		session.Redirect(w, r, ingredientsPath)
		return
	}

	var buf bytes.Buffer
	if err := spreadsheet.ExportIngredients(&buf, records); err != nil {
		applog.Error(r.Context(), "failed to write ingredients workbook", "error", err)
		http.Error(w, "failed to export ingredients", http.StatusInternalServerError)
		return
	}
	h.sessions.Flash(r.Context(), notify.Exported(entities.EntityIngredient, spreadsheet.IngredientsFilename))
	download(w, spreadsheet.IngredientsFilename, buf.Bytes())
}

func newIngredientForm(input dto.IngredientInput) pages.IngredientFormData {
	data := pages.NewIngredientForm(input)
	data.Title = "New ingredient"
	data.Action = ingredientsPath
	data.Submit = "Create ingredient"
	data.CancelPath = ingredientsPath
	return data
}

func editIngredientForm(id string, input dto.IngredientInput) pages.IngredientFormData {
	data := pages.NewIngredientForm(input)
	data.Title = "Edit ingredient"
	data.Action = ingredientsPath + "/" + id
	data.Submit = "Save changes"
	data.CancelPath = ingredientsPath + "/" + id
	return data
}

func (h *Handlers) renderIngredientForm(w http.ResponseWriter, r *http.Request, data pages.IngredientFormData, flash *notify.Notification) {
	h.render(w, r, view{title: data.Title, section: "ingredients", content: pages.IngredientForm(data), flash: flash})
}

func (h *Handlers) ingredientMutationFailed(w http.ResponseWriter, r *http.Request, data pages.IngredientFormData, result entities.MutationResult) {
	for field, msg := range fieldErrors(result.Err) {
		data.Errors[field] = msg
	}
	flash := notify.Mutation(result)
	h.renderIngredientForm(w, r, data, &flash)
}
