package server

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestRouterRegistersHealthRoute(t *testing.T) {
	srv := newTestServer(t, Config{})
	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	srv.Handler().ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected /healthz to return 200, got %d", rr.Code)
	}
	if ct := rr.Header().Get("Content-Type"); ct != "application/json" {
		t.Fatalf("expected application/json content type, got %q", ct)
	}
}

func TestRouterGuardsManagementRoutes(t *testing.T) {
	srv := newTestServer(t, Config{})

	for _, path := range []string{"/", "/products", "/products/new", "/ingredients", "/products/export"} {
		rr := httptest.NewRecorder()
		srv.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, path, nil))
		if rr.Code != http.StatusSeeOther || rr.Header().Get("Location") != "/login" {
			t.Fatalf("%s: expected redirect to /login, got %d %q", path, rr.Code, rr.Header().Get("Location"))
		}
	}
}

func TestRouterServesPublicLabels(t *testing.T) {
	srv := newTestServer(t, Config{})

	rr := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/l/any-id", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("expected the label shell without a session, got %d", rr.Code)
	}

	rr = httptest.NewRecorder()
	srv.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/s/missing", nil))
	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected unknown short codes to 404, got %d", rr.Code)
	}
}

func TestRouterGuardsHTMXWithHeader(t *testing.T) {
	srv := newTestServer(t, Config{})

	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/products", nil)
	req.Header.Set("HX-Request", "true")
	srv.Handler().ServeHTTP(rr, req)
	if rr.Header().Get("HX-Redirect") != "/login" {
		t.Fatalf("expected HX-Redirect to /login, got %q", rr.Header().Get("HX-Redirect"))
	}
}
