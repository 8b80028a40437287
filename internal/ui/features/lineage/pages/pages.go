// Package pages renders the lineage panel.
package pages

import (
	"embed"

	"github.com/a-h/templ"

	"github.com/leapstack-labs/metacatalog/internal/lineage"
	"github.com/leapstack-labs/metacatalog/internal/ui/features/common"
)

//go:embed templates/*.html
var templateFS embed.FS

var tmpl = common.MustParse(templateFS, "templates/*.html")

// PageData is the full lineage page.
type PageData struct {
	Shell common.ShellData
	View  ViewData
}

// ViewData is the patchable diagram.
type ViewData struct {
	Width      int
	Height     int
	NodeWidth  int
	NodeHeight int
	Nodes      []NodeView
	// Edges holds one SVG path per edge.
	Edges []string
}

// NodeView is a placed node as drawn.
type NodeView struct {
	ID    string
	Name  string
	Label string
	Kind  string
	Color string
	X     int
	Y     int
	PII   bool
}

// Right returns the x coordinate of the node's right edge.
func (n NodeView) Right() int { return n.X + lineage.NodeWidth }

// DetailData is the selected-node panel.
type DetailData struct {
	ID          string
	Name        string
	Description string
	Kind        string
	KindClass   string
	RegTag      string
	PII         bool
	Created     string
	Amount      string
	Status      string
	Upstream    []string
	Downstream  []string
}

// LineagePage renders the full lineage page.
func LineagePage(data PageData) templ.Component {
	return common.Component(tmpl, "layout", data)
}

// Diagram renders the diagram, patched on every change.
func Diagram(data ViewData) templ.Component {
	return common.Component(tmpl, "lineage-diagram", data)
}

// NodeDetail renders the detail panel of one node.
func NodeDetail(data DetailData) templ.Component {
	return common.Component(tmpl, "lineage-detail", data)
}
