package components

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"winelabel/internal/notify"
)

func TestLinkState(t *testing.T) {
	if got := linkState("products", "products"); got != "active" {
		t.Fatalf("expected active state when sections match, got %q", got)
	}
	if got := linkState("ingredients", "products"); got != "inactive" {
		t.Fatalf("expected inactive state when sections differ, got %q", got)
	}
}

func TestSidebarRendersActiveSection(t *testing.T) {
	data := SidebarData{Active: "ingredients", UserName: "Camille", Email: "camille@example.com", Features: Navigation()}
	var buf bytes.Buffer
	if err := Sidebar(data).Render(context.Background(), &buf); err != nil {
		t.Fatalf("render sidebar: %v", err)
	}
	out := buf.String()
	if strings.Count(out, `data-state="active"`) != 1 {
		t.Fatalf("expected exactly one active link: %s", out)
	}
	if !strings.Contains(out, `action="/logout"`) {
		t.Fatalf("expected sign out form for a signed-in user: %s", out)
	}
}

func TestToastMarksDestructiveVariant(t *testing.T) {
	var buf bytes.Buffer
	if err := Toast(notify.ImportFailed()).Render(context.Background(), &buf); err != nil {
		t.Fatalf("render toast: %v", err)
	}
	if !strings.Contains(buf.String(), `data-variant="destructive"`) {
		t.Fatalf("expected destructive toast: %s", buf.String())
	}
}

func TestNotFoundStateLinksBack(t *testing.T) {
	var buf bytes.Buffer
	err := NotFoundState(NotFound{Title: "Product not found", BackPath: "/products", BackLabel: "Back to products"}).
		Render(context.Background(), &buf)
	if err != nil {
		t.Fatalf("render not found: %v", err)
	}
	out := buf.String()
	for _, token := range []string{"Product not found", `href="/products"`, "Back to products"} {
		if !strings.Contains(out, token) {
			t.Fatalf("expected output to contain %q: %s", token, out)
		}
	}
}

func TestLoadingShowsMessage(t *testing.T) {
	var buf bytes.Buffer
	if err := Loading("Loading label").Render(context.Background(), &buf); err != nil {
		t.Fatalf("render loading: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, `data-state="loading"`) || !strings.Contains(out, "Loading label") {
		t.Fatalf("expected loading indicator with message: %s", out)
	}
}
