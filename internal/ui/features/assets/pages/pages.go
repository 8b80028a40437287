// Package pages renders the catalog panel.
package pages

import (
	"embed"

	"github.com/a-h/templ"

	"github.com/leapstack-labs/metacatalog/internal/catalog"
	"github.com/leapstack-labs/metacatalog/internal/ui/features/common"
)

//go:embed templates/*.html
var templateFS embed.FS

var tmpl = common.MustParse(templateFS, "templates/*.html")

// PageData is the full catalog page.
type PageData struct {
	Shell common.ShellData
	// Signals is the initial filter signal store, as JSON.
	Signals string
	List    ListData
}

// ListData is the patchable asset list.
type ListData struct {
	Assets   []Card
	Total    int
	Filtered bool
	ReadOnly bool
}

// Card is one asset as displayed in the list.
type Card struct {
	ID          string
	Name        string
	Description string
	Kind        string
	KindClass   string
	RegTag      string
	PII         bool
	Owner       string
	Created     string

	IsClaim    bool
	Amount     string
	Status     string
	PolicyName string

	IsModel bool
	Sources []string
}

// FormData is the create/edit form.
type FormData struct {
	Editing bool
	ID      string
	Kind    string
	// Signals seeds the "form" signal namespace, as JSON.
	Signals string
	Options catalog.Options
}

// CatalogPage renders the full catalog page.
func CatalogPage(data PageData) templ.Component {
	return common.Component(tmpl, "layout", data)
}

// CatalogList renders the asset list, patched on every change.
func CatalogList(data ListData) templ.Component {
	return common.Component(tmpl, "catalog-list", data)
}

// AssetForm renders the editor.
func AssetForm(data FormData) templ.Component {
	return common.Component(tmpl, "asset-form", data)
}

// FormClosed renders the empty editor slot.
func FormClosed() templ.Component {
	return common.Component(tmpl, "asset-form-closed", nil)
}
