// Package api is the JSON backend consumed by the admin web app. It owns the database
// and serves products, ingredients, appellations and public labels under /api.
package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"gorm.io/gorm"

	"winelabel/internal/auth"
	applog "winelabel/internal/log"
	"winelabel/internal/validation"
)

// Prefix is the path every endpoint is mounted under.
const Prefix = "/api"

const maxUploadSize = 10 << 20

// Options tunes the router.
type Options struct {
	AllowedOrigins []string
	LoginRate      float64
	LoginBurst     int
}

// API serves the backend endpoints.
type API struct {
	db        *gorm.DB
	tokens    *auth.Issuer
	validator *validation.Validator
	logins    *keyedLimiter
	origins   []string
}

// New builds the API. A nil validator gets the default one.
func New(database *gorm.DB, tokens *auth.Issuer, v *validation.Validator, opts Options) *API {
	if v == nil {
		v = validation.New()
	}
	rps := opts.LoginRate
	if rps <= 0 {
		rps = 1
	}
	burst := opts.LoginBurst
	if burst <= 0 {
		burst = 5
	}
	return &API{
		db:        database,
		tokens:    tokens,
		validator: v,
		logins:    newKeyedLimiter(rps, burst),
		origins:   opts.AllowedOrigins,
	}
}

// Handler returns the chi router with every route registered.
func (a *API) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)

	if len(a.origins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   a.origins,
			AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
			AllowCredentials: true,
			MaxAge:           300,
		}))
	}

	r.Get("/healthz", a.health)

	r.Route(Prefix, func(r chi.Router) {
		r.Get("/healthz", a.health)

		r.With(a.throttleLogins).Post("/auth/login", a.login)
		r.Post("/auth/register", a.register)

		r.Get("/labels/{id}", a.showLabel)
		r.Get("/links/{code}", a.resolveLink)

		r.Group(func(r chi.Router) {
			r.Use(a.requireToken)

			r.Post("/auth/logout", a.logout)
			r.Get("/auth/me", a.me)

			r.Get("/products", a.listProducts)
			r.Post("/products", a.createProduct)
			r.Post("/products/import", a.importProducts)
			r.Get("/products/{id}", a.showProduct)
			r.Put("/products/{id}", a.updateProduct)
			r.Delete("/products/{id}", a.deleteProduct)

			r.Get("/ingredients", a.listIngredients)
			r.Post("/ingredients", a.createIngredient)
			r.Post("/ingredients/import", a.importIngredients)
			r.Get("/ingredients/{id}", a.showIngredient)
			r.Put("/ingredients/{id}", a.updateIngredient)
			r.Delete("/ingredients/{id}", a.deleteIngredient)

			r.Get("/appellations", a.listAppellations)
			r.Post("/appellations", a.createAppellation)
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeJSONError(w, http.StatusNotFound, "not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeJSONError(w, http.StatusMethodNotAllowed, "method not allowed")
	})

	return r
}

func (a *API) health(w http.ResponseWriter, r *http.Request) {
	status := "ok"
	code := http.StatusOK
	if sqlDB, err := a.db.DB(); err != nil || sqlDB.PingContext(r.Context()) != nil {
		status = "degraded"
		code = http.StatusServiceUnavailable
	}
	writeJSON(w, code, map[string]string{"status": status})
}

type userKey struct{}

func withUserID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, userKey{}, id)
}

func userIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(userKey{}).(string)
	return id
}

func (a *API) requireToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := strings.TrimSpace(r.Header.Get("Authorization"))
		if header == "" {
			writeJSONError(w, http.StatusUnauthorized, "missing bearer token")
			return
		}
		claims, err := a.tokens.Verify(header)
		if err != nil {
			applog.Debug(r.Context(), "rejected bearer token", "error", err)
			writeJSONError(w, http.StatusUnauthorized, "invalid or expired token")
			return
		}
		next.ServeHTTP(w, r.WithContext(withUserID(r.Context(), claims.UserID)))
	})
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		applog.Debug(r.Context(), "api request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}
