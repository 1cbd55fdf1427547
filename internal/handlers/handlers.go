// Package handlers serves the admin web app. Every handler reaches the backend
// through the entity layer, scoped to the signed-in user's cache namespace and token.
package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/a-h/templ"

	"winelabel/internal/cache"
	"winelabel/internal/client"
	"winelabel/internal/dto"
	"winelabel/internal/entities"
	applog "winelabel/internal/log"
	"winelabel/internal/notify"
	"winelabel/internal/session"
	"winelabel/internal/validation"
	"winelabel/internal/views/components"
	"winelabel/internal/views/layout"
)

// API is the backend surface used by the web app. *client.Client satisfies it.
type API interface {
	entities.ProductAPI
	entities.IngredientAPI
	entities.AppellationAPI
	GetLabel(ctx context.Context, id string) (dto.Label, error)
	ResolveShortLink(ctx context.Context, code string) (dto.ShortLink, error)
}

var _ API = (*client.Client)(nil)

// Links configures the public label URLs shown on product pages.
type Links struct {
	PublicBaseURL string
	QRService     string
	QRSize        int
}

type Handlers struct {
	sessions  *session.Manager
	api       API
	store     cache.Store
	validator *validation.Validator
	links     Links
}

func New(sessions *session.Manager, api API, store cache.Store, v *validation.Validator, links Links) *Handlers {
	if store == nil {
		store = cache.Nop{}
	}
	if v == nil {
		v = validation.New()
	}
	return &Handlers{
		sessions:  sessions,
		api:       api,
		store:     store,
		validator: v,
		links:     links,
	}
}

// scope returns the request context carrying the user's token and the user's slice
// of the cache.
func (h *Handlers) scope(r *http.Request) (context.Context, cache.Store) {
	ctx := h.sessions.APIContext(r.Context())
	user, ok := h.sessions.Current(r.Context())
	if !ok {
		return ctx, cache.Nop{}
	}
	return ctx, cache.Namespace(h.store, user.ID)
}

func (h *Handlers) products(r *http.Request) (context.Context, *entities.Products) {
	ctx, store := h.scope(r)
	return ctx, entities.NewProducts(h.api, store, h.validator)
}

func (h *Handlers) ingredients(r *http.Request) (context.Context, *entities.Ingredients) {
	ctx, store := h.scope(r)
	return ctx, entities.NewIngredients(h.api, store, h.validator)
}

func (h *Handlers) appellations(r *http.Request) (context.Context, *entities.Appellations) {
	ctx, store := h.scope(r)
	return ctx, entities.NewAppellations(h.api, store, h.validator)
}

// view describes a full admin page.
type view struct {
	title   string
	section string
	content templ.Component
	// flash overrides the pending session notification.
	flash  *notify.Notification
	status int
}

// render writes the page inside the layout. The sidebar is shown to signed-in users.
func (h *Handlers) render(w http.ResponseWriter, r *http.Request, v view) {
	ctx := r.Context()
	user, authenticated := h.sessions.Current(ctx)

	flash := v.flash
	if pending, ok := h.sessions.PopFlash(ctx); ok && flash == nil {
		flash = &pending
	}

	sidebar := components.Sidebar(components.SidebarData{
		Active:   v.section,
		UserName: user.DisplayName(),
		Email:    user.Email,
		Features: components.Navigation(),
	})

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if v.status != 0 {
		w.WriteHeader(v.status)
	}
	if err := layout.Layout(v.title, sidebar, v.content, authenticated, flash).Render(ctx, w); err != nil {
		applog.Error(ctx, "failed to render page", "title", v.title, "error", err)
		http.Error(w, "failed to render page", http.StatusInternalServerError)
	}
}

// fragment writes a component without the layout, for HTMX swaps.
func fragment(w http.ResponseWriter, r *http.Request, c templ.Component) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := c.Render(r.Context(), w); err != nil {
		applog.Error(r.Context(), "failed to render fragment", "error", err)
		http.Error(w, "failed to render fragment", http.StatusInternalServerError)
	}
}

// notFound renders the in-page not-found state with a link back to the list.
func (h *Handlers) notFound(w http.ResponseWriter, r *http.Request, section string, state components.NotFound) {
	h.render(w, r, view{
		title:   state.Title,
		section: section,
		content: components.NotFoundState(state),
		status:  http.StatusNotFound,
	})
}

// loadFailed handles a failed read: 404 state for missing records, otherwise a generic
// error notification on the list page.
func (h *Handlers) loadFailed(w http.ResponseWriter, r *http.Request, err error, section string, state components.NotFound) {
	if client.IsNotFound(err) || errors.Is(err, entities.ErrMissingID) {
		h.notFound(w, r, section, state)
		return
	}
	applog.Error(r.Context(), "failed to load record", "section", section, "error", err)
	h.sessions.Flash(r.Context(), notify.Notification{
		Title:       "Error",
		Description: "Failed to load data. Please try again.",
		Variant:     notify.VariantDestructive,
	})
	session.Redirect(w, r, state.BackPath)
}

// fieldErrors returns the per-field messages of a validation failure.
func fieldErrors(err error) map[string]string {
	var verr *validation.Error
	if errors.As(err, &verr) {
		return verr.Fields
	}
	return nil
}
