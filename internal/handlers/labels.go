package handlers

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/a-h/templ"

	"winelabel/internal/label"
	applog "winelabel/internal/log"
	"winelabel/internal/views/layout"
	"winelabel/internal/views/pages"
)

// The label routes are public: they never read the session and call the backend
// without a token.

// LabelShell renders the public label page, which loads its content through HTMX.
func (h *Handlers) LabelShell(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSpace(r.PathValue("id"))
	if id == "" {
		publicPage(w, r, http.StatusNotFound, "Label not found", pages.LabelNotFound())
		return
	}
	publicPage(w, r, http.StatusOK, "Wine label", pages.LabelShell(url.PathEscape(id)))
}

// LabelContent renders the label itself. A missing product or a failed fetch renders
// the not-found state in place of the label.
func (h *Handlers) LabelContent(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSpace(r.PathValue("id"))
	if id == "" {
		fragment(w, r, pages.LabelNotFound())
		return
	}
	l, err := h.api.GetLabel(r.Context(), id)
	if err != nil {
		applog.Debug(r.Context(), "label unavailable", "productID", id, "error", err)
		fragment(w, r, pages.LabelNotFound())
		return
	}
	fragment(w, r, pages.LabelContent(label.Build(l)))
}

// ShortLink resolves a product short code to its redirect link or public label.
func (h *Handlers) ShortLink(w http.ResponseWriter, r *http.Request) {
	code := strings.TrimSpace(r.PathValue("code"))
	if code == "" {
		publicPage(w, r, http.StatusNotFound, "Label not found", pages.LabelNotFound())
		return
	}
	link, err := h.api.ResolveShortLink(r.Context(), code)
	if err != nil {
		applog.Debug(r.Context(), "short link unavailable", "code", code, "error", err)
		publicPage(w, r, http.StatusNotFound, "Label not found", pages.LabelNotFound())
		return
	}
	target := link.RedirectLink
	if target == "" {
		target = "/l/" + url.PathEscape(link.ProductID)
	}
	http.Redirect(w, r, target, http.StatusFound)
}

func publicPage(w http.ResponseWriter, r *http.Request, status int, title string, content templ.Component) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := layout.Layout(title, nil, content, false, nil).Render(r.Context(), w); err != nil {
		applog.Error(r.Context(), "failed to render public page", "error", err)
	}
}
