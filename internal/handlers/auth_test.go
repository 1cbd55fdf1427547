package handlers

import (
	"net/http"
	"net/url"
	"strings"
	"testing"

	"winelabel/internal/session"
)

func TestLoginRejectsBadCredentials(t *testing.T) {
	h := newHarness(t)

	resp, body := h.post("/login", url.Values{"email": {testEmail}, "password": {"corked"}})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected login form to re-render with 200, got %d", resp.StatusCode)
	}
	expectContains(t, body, "Invalid email or password. Please try again.", `value="sommelier@winelabel.app"`)

	h.get("/products")
	if token := h.backend.lastToken(); token != "" {
		t.Fatalf("anonymous requests must not carry a token, got %q", token)
	}
}

func TestLoginRequiresBothFields(t *testing.T) {
	h := newHarness(t)

	_, body := h.post("/login", url.Values{"email": {testEmail}})
	expectContains(t, body, "Email and password are required.")
	if got := h.backend.count("Login"); got != 0 {
		t.Fatalf("expected no backend login, got %d", got)
	}
}

func TestLoginEstablishesSession(t *testing.T) {
	h := newHarness(t)
	h.login()

	resp, body := h.get("/products")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	expectContains(t, body, "Château Margaux", "Ana Sommelier")
	if token := h.backend.lastToken(); token != testToken {
		t.Fatalf("expected backend calls to carry the session token, got %q", token)
	}
}

func TestRegisterPasswordMismatchSkipsBackend(t *testing.T) {
	h := newHarness(t)

	_, body := h.post("/register", url.Values{
		"full_name":        {"New Taster"},
		"email":            {"taster@winelabel.app"},
		"password":         {"merlot"},
		"confirm_password": {"malbec"},
	})
	expectContains(t, body, "Passwords do not match.")
	if got := h.backend.count("Register"); got != 0 {
		t.Fatalf("expected no backend register call, got %d", got)
	}
}

func TestRegisterReportsTakenEmail(t *testing.T) {
	h := newHarness(t)

	_, body := h.post("/register", url.Values{
		"full_name":        {"Duplicate"},
		"email":            {testEmail},
		"password":         {"cellar"},
		"confirm_password": {"cellar"},
	})
	expectContains(t, body, "An account with that email already exists.")
}

func TestRegisterSignsIn(t *testing.T) {
	h := newHarness(t)

	resp, _ := h.post("/register", url.Values{
		"full_name":        {"New Taster"},
		"email":            {"taster@winelabel.app"},
		"password":         {"merlot"},
		"confirm_password": {"merlot"},
	})
	if resp.StatusCode != http.StatusSeeOther || resp.Header.Get("Location") != session.HomePath {
		t.Fatalf("expected redirect to %s, got %d %q", session.HomePath, resp.StatusCode, resp.Header.Get("Location"))
	}
	_, body := h.get("/products")
	expectContains(t, body, "New Taster")
}

func TestLogoutClearsSession(t *testing.T) {
	h := newHarness(t)
	h.login()

	resp, _ := h.post("/logout", nil)
	if resp.StatusCode != http.StatusSeeOther || resp.Header.Get("Location") != session.LoginPath {
		t.Fatalf("expected redirect to login, got %d %q", resp.StatusCode, resp.Header.Get("Location"))
	}
	if got := h.backend.count("Logout"); got != 1 {
		t.Fatalf("expected one backend logout, got %d", got)
	}

	h.get("/products")
	if token := h.backend.lastToken(); token != "" {
		t.Fatalf("expected no token after logout, got %q", token)
	}
}

func TestLoginUsesHXRedirectForHTMX(t *testing.T) {
	h := newHarness(t)

	form := url.Values{"email": {testEmail}, "password": {testPassword}}
	req, err := http.NewRequest(http.MethodPost, h.server.URL+"/login", strings.NewReader(form.Encode()))
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("HX-Request", "true")

	resp, _ := h.do(req)
	if got := resp.Header.Get("HX-Redirect"); got != session.HomePath {
		t.Fatalf("expected HX-Redirect %s, got %q", session.HomePath, got)
	}
}
