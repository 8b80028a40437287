// Package common provides shared types and utilities for UI features.
package common

import "github.com/leapstack-labs/metacatalog/internal/ui/session"

// ShellData holds what the page shell needs: the header, navigation and the
// long-lived updates stream of the current page.
type ShellData struct {
	Title       string
	CurrentPath string
	// UpdatesPath is the SSE endpoint the page connects to on load.
	UpdatesPath string
	Owner       string
	ViewMode    bool
	// ViewModeLocked is set when the whole server runs read-only and the
	// per-browser toggle cannot turn editing back on.
	ViewModeLocked bool
	IsDev          bool
}

// NewShell builds the shell for a page from the request identity.
func NewShell(title, currentPath, updatesPath string, id session.Identity, serverReadOnly, isDev bool) ShellData {
	return ShellData{
		Title:          title,
		CurrentPath:    currentPath,
		UpdatesPath:    updatesPath,
		Owner:          id.ShortOwner(),
		ViewMode:       id.ViewMode || serverReadOnly,
		ViewModeLocked: serverReadOnly,
		IsDev:          isDev,
	}
}

// NavItem is a header navigation link.
type NavItem struct {
	Label string
	Path  string
}

// Nav lists the panels in header order.
var Nav = []NavItem{
	{Label: "Catalog", Path: "/"},
	{Label: "Lineage", Path: "/lineage"},
	{Label: "Fraud", Path: "/fraud"},
}

// ToastLevel selects the toast color.
type ToastLevel string

// Toast levels.
const (
	ToastSuccess ToastLevel = "success"
	ToastError   ToastLevel = "error"
)

// ToastData is a transient notification patched into the page.
type ToastData struct {
	Level   ToastLevel
	Message string
}
