// Package lineage builds the Policy → Claim → Model lineage diagram.
//
// Build is a pure function of an asset snapshot: it partitions the assets by
// kind, places each group in a fixed column, and connects every claim to the
// policy it references and every model to the claims it was derived from.
// References that do not resolve to a placed node of the expected kind are
// skipped; they are never reported as errors.
//
// # Layout
//
// Policies sit in the leftmost column, claims in the middle and models on
// the right. Within a column assets keep their input order and are spaced
// RowGap apart, offset by Margin:
//
//	x = Margin + column*ColumnGap
//	y = Margin + index*RowGap
//
// The layout does not try to avoid crowding across columns.
//
// # Basic Usage
//
//	g := lineage.Build(assets)
//	for _, e := range g.Edges {
//	    fmt.Printf("%s -> %s\n", e.Source, e.Target)
//	}
//	if a, ok := g.Lookup(clickedID); ok {
//	    fmt.Println(a.Name)
//	}
package lineage
