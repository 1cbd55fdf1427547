package server

import (
	"context"
	"net/http"

	"winelabel/internal/handlers"
	applog "winelabel/internal/log"
	"winelabel/internal/session"
)

func newRouter(h *handlers.Handlers, sessions *session.Manager) http.Handler {
	mux := http.NewServeMux()
	applog.Debug(context.Background(), "registering http routes")

	mux.HandleFunc("/healthz", handlers.Health)
	mux.HandleFunc("GET /l/{id}", h.LabelShell)
	mux.HandleFunc("GET /l/{id}/content", h.LabelContent)
	mux.HandleFunc("GET /s/{code}", h.ShortLink)
	applog.Debug(context.Background(), "public routes registered")

	guest := sessions.RedirectAuthenticated
	mux.Handle("/login", guest(http.HandlerFunc(h.Login)))
	mux.Handle("/register", guest(http.HandlerFunc(h.Register)))
	mux.HandleFunc("POST /logout", h.Logout)

	protected := map[string]http.HandlerFunc{
		"GET /{$}": func(w http.ResponseWriter, r *http.Request) {
			http.Redirect(w, r, session.HomePath, http.StatusSeeOther)
		},

		"GET /products":                    h.ListProducts,
		"POST /products":                   h.CreateProduct,
		"GET /products/new":                h.NewProduct,
		"GET /products/export":             h.ExportProducts,
		"GET /products/import":             h.ProductImport,
		"POST /products/import":            h.ImportProducts,
		"GET /products/{id}":               h.ShowProduct,
		"GET /products/{id}/edit":          h.EditProduct,
		"POST /products/{id}":              h.UpdateProduct,
		"POST /products/{id}/duplicate":    h.DuplicateProduct,
		"POST /products/{id}/delete":       h.DeleteProduct,
		"GET /ingredients":                 h.ListIngredients,
		"POST /ingredients":                h.CreateIngredient,
		"GET /ingredients/new":             h.NewIngredient,
		"GET /ingredients/export":          h.ExportIngredients,
		"GET /ingredients/import":          h.IngredientImport,
		"POST /ingredients/import":         h.ImportIngredients,
		"POST /ingredients/techsheet":      h.ImportTechSheet,
		"GET /ingredients/{id}":            h.ShowIngredient,
		"GET /ingredients/{id}/edit":       h.EditIngredient,
		"POST /ingredients/{id}":           h.UpdateIngredient,
		"POST /ingredients/{id}/duplicate": h.DuplicateIngredient,
		"POST /ingredients/{id}/delete":    h.DeleteIngredient,
		"POST /appellations":               h.CreateAppellation,
	}
	for pattern, handler := range protected {
		mux.Handle(pattern, sessions.RequireAuthentication(handler))
	}
	applog.Debug(context.Background(), "route registered", "protected", len(protected))

	return mux
}
