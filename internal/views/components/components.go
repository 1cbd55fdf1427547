// Package components holds the small pieces shared by every admin page.
package components

import "winelabel/internal/notify"

// SidebarLink is one navigation entry.
type SidebarLink struct {
	Label   string
	Path    string
	Section string
}

type SidebarData struct {
	Active   string
	UserName string
	Email    string
	Features []SidebarLink
}

// Navigation lists the management sections.
func Navigation() []SidebarLink {
	return []SidebarLink{
		{Label: "Products", Path: "/products", Section: "products"},
		{Label: "Ingredients", Path: "/ingredients", Section: "ingredients"},
	}
}

// NotFound is the in-page state shown when a record cannot be loaded.
type NotFound struct {
	Title     string
	Message   string
	BackPath  string
	BackLabel string
}

func linkState(current, section string) string {
	if current == section {
		return "active"
	}
	return "inactive"
}

func toastClass(n notify.Notification) string {
	if n.Destructive() {
		return "border-red-300 bg-red-50 text-red-900"
	}
	return "border-stone-200 bg-white text-stone-900"
}
