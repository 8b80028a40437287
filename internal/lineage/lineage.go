package lineage

import (
	"fmt"

	"github.com/leapstack-labs/metacatalog/internal/dag"
	"github.com/leapstack-labs/metacatalog/pkg/core"
)

// Layout constants, in canvas units.
const (
	Margin     = 50
	ColumnGap  = 250
	RowGap     = 120
	NodeWidth  = 160
	NodeHeight = 80

	// LabelLimit is the number of characters kept in a node label before
	// it is shortened with an ellipsis.
	LabelLimit = 18
)

// CanvasWidth is fixed by the column count.
const CanvasWidth = Margin + 2*ColumnGap + NodeWidth + Margin

// MinCanvasHeight is the canvas height of an empty diagram.
const MinCanvasHeight = Margin + NodeHeight + Margin

// Node is a placed asset.
type Node struct {
	ID    string         `json:"id"`
	Name  string         `json:"name"`
	Label string         `json:"label"`
	Kind  core.AssetKind `json:"type"`
	X     int            `json:"x"`
	Y     int            `json:"y"`
	PII   bool           `json:"piiTag"`
}

// Edge is a "derived from" relationship, pointing from source to derived asset.
type Edge struct {
	Source string `json:"source"`
	Target string `json:"target"`
}

// Graph is the computed lineage diagram for one snapshot.
type Graph struct {
	Nodes  []Node `json:"nodes"`
	Edges  []Edge `json:"edges"`
	Width  int    `json:"width"`
	Height int    `json:"height"`

	byID   map[string]int
	assets map[string]core.Asset
	dag    *dag.Graph
}

// Detail is the read-only projection shown when a node is selected.
type Detail struct {
	Asset      core.Asset
	Upstream   []Node
	Downstream []Node
}

// column returns the fixed column index for a kind.
func column(k core.AssetKind) int {
	switch k {
	case core.KindPolicy:
		return 0
	case core.KindClaim:
		return 1
	case core.KindModel:
		return 2
	}
	return -1
}

// Build computes the lineage diagram for assets.
// The same input order always yields the same coordinates and edges.
func Build(assets []core.Asset) *Graph {
	g := &Graph{
		Nodes:  make([]Node, 0, len(assets)),
		Edges:  []Edge{},
		Width:  CanvasWidth,
		Height: MinCanvasHeight,
		byID:   make(map[string]int, len(assets)),
		assets: make(map[string]core.Asset, len(assets)),
		dag:    dag.NewGraph(),
	}

	policies, claims, models := core.Partition(assets)

	for _, group := range [][]core.Asset{policies, claims, models} {
		for i, a := range group {
			g.place(a, i)
		}
	}

	for _, c := range claims {
		data, _ := c.AsClaim()
		g.link(data.PolicyID, core.KindPolicy, c.ID)
	}
	for _, m := range models {
		data, _ := m.AsModel()
		for _, claimID := range data.SourceClaimIDs {
			g.link(claimID, core.KindClaim, m.ID)
		}
	}

	maxY := -1
	for _, n := range g.Nodes {
		if n.Y > maxY {
			maxY = n.Y
		}
	}
	if maxY >= 0 {
		g.Height = maxY + NodeHeight + Margin
	}

	return g
}

func (g *Graph) place(a core.Asset, row int) {
	n := Node{
		ID:    a.ID,
		Name:  a.Name,
		Label: Label(a.Name),
		Kind:  a.Kind(),
		X:     Margin + column(a.Kind())*ColumnGap,
		Y:     Margin + row*RowGap,
		PII:   a.PII,
	}
	g.Nodes = append(g.Nodes, n)

	// First occurrence wins if the snapshot violates ID uniqueness.
	if _, dup := g.byID[a.ID]; !dup {
		g.byID[a.ID] = len(g.Nodes) - 1
		g.assets[a.ID] = a
		g.dag.AddNode(a.ID, a.Kind())
	}
}

// link adds source → target when source resolves to a placed node of kind want.
func (g *Graph) link(sourceID string, want core.AssetKind, targetID string) {
	n, ok := g.Node(sourceID)
	if !ok || n.Kind != want {
		return
	}
	g.Edges = append(g.Edges, Edge{Source: sourceID, Target: targetID})
	_ = g.dag.AddEdge(sourceID, targetID)
}

// Node returns the placed node for id.
func (g *Graph) Node(id string) (Node, bool) {
	i, ok := g.byID[id]
	if !ok {
		return Node{}, false
	}
	return g.Nodes[i], true
}

// Lookup returns the full asset behind a node, for the detail panel.
func (g *Graph) Lookup(id string) (core.Asset, bool) {
	a, ok := g.assets[id]
	return a, ok
}

// Detail returns the asset behind id together with its transitive sources
// and derived assets.
func (g *Graph) Detail(id string) (Detail, bool) {
	a, ok := g.Lookup(id)
	if !ok {
		return Detail{}, false
	}
	return Detail{
		Asset:      a,
		Upstream:   g.nodes(g.dag.GetUpstreamNodes(id)),
		Downstream: g.nodes(g.dag.GetDownstreamNodes(id)),
	}, true
}

func (g *Graph) nodes(ids []string) []Node {
	out := make([]Node, 0, len(ids))
	for _, id := range ids {
		if n, ok := g.Node(id); ok {
			out = append(out, n)
		}
	}
	return out
}

// Empty reports whether the diagram has no nodes.
func (g *Graph) Empty() bool {
	return len(g.Nodes) == 0
}

// Label shortens name to LabelLimit characters plus an ellipsis.
func Label(name string) string {
	r := []rune(name)
	if len(r) <= LabelLimit {
		return name
	}
	return string(r[:LabelLimit]) + "..."
}

// Path returns the SVG path of e as a cubic Bezier curve from the right edge
// of the source node to the left edge of the target node. It reports false
// when either end is not placed.
func (g *Graph) Path(e Edge) (string, bool) {
	from, ok := g.Node(e.Source)
	if !ok {
		return "", false
	}
	to, ok := g.Node(e.Target)
	if !ok {
		return "", false
	}

	fromX := from.X + NodeWidth
	fromY := from.Y + NodeHeight/2
	toX := to.X
	toY := to.Y + NodeHeight/2
	midX := (fromX + toX) / 2

	return fmt.Sprintf("M %d %d C %d %d, %d %d, %d %d",
		fromX, fromY, midX, fromY, midX, toY, toX, toY), true
}
