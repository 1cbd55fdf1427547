package server

import (
	"context"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"winelabel/internal/api"
	"winelabel/internal/auth"
	"winelabel/internal/cache"
	"winelabel/internal/client"
	"winelabel/internal/db/mock"
	"winelabel/internal/handlers"
)

// newBackend serves the API over a seeded in-memory database and returns a client
// pointed at it.
func newBackend(t *testing.T) *client.Client {
	t.Helper()
	database, err := mock.New(context.Background())
	if err != nil {
		t.Fatalf("failed to open mock database: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := database.DB(); err == nil {
			sqlDB.Close()
		}
	})
	tokens, err := auth.NewIssuer("server-test-secret", time.Hour)
	if err != nil {
		t.Fatalf("failed to create issuer: %v", err)
	}
	backend := httptest.NewServer(api.New(database, tokens, nil, api.Options{}).Handler())
	t.Cleanup(backend.Close)

	c, err := client.New(client.Config{BaseURL: backend.URL + api.Prefix})
	if err != nil {
		t.Fatalf("failed to create client: %v", err)
	}
	return c
}

func newTestServer(t *testing.T, cfg Config) *Server {
	t.Helper()
	if cfg.Backend == nil {
		cfg.Backend = newBackend(t)
	}
	srv, err := New(cfg)
	if err != nil {
		t.Fatalf("New() returned error: %v", err)
	}
	return srv
}

func TestNewRequiresBackend(t *testing.T) {
	if _, err := New(Config{Addr: ":8080"}); err == nil {
		t.Fatal("expected an error without a backend")
	}
}

func TestNewAppliesSessionDefaults(t *testing.T) {
	srv := newTestServer(t, Config{Addr: ":8080", Session: SessionConfig{CookieSecure: true}})

	if srv.httpServer.Addr != ":8080" {
		t.Fatalf("expected server addr :8080, got %q", srv.httpServer.Addr)
	}

	data := url.Values{}
	data.Set("email", mock.Email)
	data.Set("password", mock.Password)
	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(data.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	srv.Handler().ServeHTTP(rr, req)

	if rr.Code != http.StatusSeeOther {
		t.Fatalf("expected redirect after login, got %d", rr.Code)
	}
	cookies := rr.Result().Cookies()
	if len(cookies) == 0 {
		t.Fatal("expected session cookie to be set")
	}
	if cookies[0].Name != "winelabel_session" {
		t.Fatalf("expected default session cookie name, got %q", cookies[0].Name)
	}
	if !cookies[0].Secure || !cookies[0].HttpOnly {
		t.Fatal("expected cookie to be secure and http-only")
	}
}

func TestServerHandler(t *testing.T) {
	srv := newTestServer(t, Config{Addr: ":9090"})

	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	srv.Handler().ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected /healthz to return 200, got %d", rr.Code)
	}
}

func TestSignedInUserSeesSeededProducts(t *testing.T) {
	srv := newTestServer(t, Config{
		Cache: cache.NewMemory(time.Minute),
		Links: handlers.Links{PublicBaseURL: "https://labels.test"},
	})
	web := httptest.NewServer(srv.Handler())
	t.Cleanup(web.Close)

	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatalf("cookie jar: %v", err)
	}
	browser := &http.Client{
		Jar: jar,
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}

	resp, err := browser.PostForm(web.URL+"/login", url.Values{"email": {mock.Email}, "password": {mock.Password}})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusSeeOther {
		t.Fatalf("expected login redirect, got %d", resp.StatusCode)
	}

	resp, err = browser.Get(web.URL + "/products")
	if err != nil {
		t.Fatalf("list products: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	for _, sku := range []string{"CM-2019-750", "DL-2021-750", "MR-NV-750"} {
		if !strings.Contains(string(body), sku) {
			t.Fatalf("expected %s in product list", sku)
		}
	}

	resp, err = browser.Get(web.URL + "/login")
	if err != nil {
		t.Fatalf("login page: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusSeeOther || resp.Header.Get("Location") != "/products" {
		t.Fatalf("expected signed-in users to leave the login page, got %d %q", resp.StatusCode, resp.Header.Get("Location"))
	}
}
