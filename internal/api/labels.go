package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"winelabel/internal/dto"
	"winelabel/models"
)

// showLabel is public. The projection carries no owner information.
func (a *API) showLabel(w http.ResponseWriter, r *http.Request) {
	var product models.Product
	err := withProductDetails(a.db.WithContext(r.Context())).
		First(&product, "id = ?", chi.URLParam(r, "id")).Error
	if err != nil {
		fail(w, r, err, "unable to load label")
		return
	}
	writeJSON(w, http.StatusOK, dto.LabelFromProduct(product))
}

func (a *API) resolveLink(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")
	var product models.Product
	err := a.db.WithContext(r.Context()).
		Select("id", "short_code", "redirect_link").
		First(&product, "short_code = ?", code).Error
	if err != nil {
		fail(w, r, err, "unable to resolve link")
		return
	}
	writeJSON(w, http.StatusOK, dto.ShortLink{
		Code:         product.ShortCode,
		ProductID:    product.ID,
		RedirectLink: product.RedirectLink,
	})
}
