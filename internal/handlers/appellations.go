package handlers

import (
	"net/http"
	"strings"

	"winelabel/internal/dto"
	"winelabel/internal/notify"
	"winelabel/internal/session"
)

// CreateAppellation adds an appellation from the product form and returns to it.
func (h *Handlers) CreateAppellation(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form submission", http.StatusBadRequest)
		return
	}
	target := productFormPath(r.PostFormValue("return_to"))

	ctx, appellations := h.appellations(r)
	result := appellations.Create(ctx, dto.AppellationInput{
		Name:        r.PostFormValue("name"),
		Description: strings.TrimSpace(r.PostFormValue("description")),
	})
	h.sessions.Flash(r.Context(), notify.Mutation(result))
	session.Redirect(w, r, target)
}

// productFormPath accepts only local product pages as a return target.
func productFormPath(raw string) string {
	if strings.HasPrefix(raw, productsPath+"/") && !strings.ContainsAny(raw, "\\?#") {
		return raw
	}
	return productsPath + "/new"
}
