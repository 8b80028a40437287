package catalog

import (
	"strings"

	"github.com/leapstack-labs/metacatalog/pkg/core"
)

// All is the filter value that disables a Kind or RegTag constraint.
const All = "all"

// Filter narrows a snapshot for display. Zero value matches everything.
type Filter struct {
	// Search matches case-insensitively anywhere in the asset name.
	Search string `json:"search"`
	// Kind is an asset kind, or empty/"all".
	Kind string `json:"kind"`
	// RegTag is a regulatory tag, or empty/"all".
	RegTag string `json:"regTag"`
}

// Match reports whether a passes every constraint of f.
func (f Filter) Match(a core.Asset) bool {
	if term := strings.TrimSpace(f.Search); term != "" {
		if !strings.Contains(strings.ToLower(a.Name), strings.ToLower(term)) {
			return false
		}
	}
	if f.Kind != "" && f.Kind != All && string(a.Kind()) != f.Kind {
		return false
	}
	if f.RegTag != "" && f.RegTag != All && string(a.RegTag.OrNone()) != f.RegTag {
		return false
	}
	return true
}

// Apply returns the assets matching f, in input order.
func (f Filter) Apply(assets []core.Asset) []core.Asset {
	out := make([]core.Asset, 0, len(assets))
	for _, a := range assets {
		if f.Match(a) {
			out = append(out, a)
		}
	}
	return out
}

// IsZero reports whether f matches everything.
func (f Filter) IsZero() bool {
	return strings.TrimSpace(f.Search) == "" &&
		(f.Kind == "" || f.Kind == All) &&
		(f.RegTag == "" || f.RegTag == All)
}

// PickOption is an entry in an editor pick list.
type PickOption struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Options holds the pick lists the asset editor offers for references.
type Options struct {
	Policies []PickOption `json:"policies"`
	Claims   []PickOption `json:"claims"`
}

// OptionsFor builds editor pick lists from a snapshot, in snapshot order.
func OptionsFor(assets []core.Asset) Options {
	opts := Options{Policies: []PickOption{}, Claims: []PickOption{}}
	for _, a := range assets {
		switch a.Kind() {
		case core.KindPolicy:
			opts.Policies = append(opts.Policies, PickOption{ID: a.ID, Name: a.Name})
		case core.KindClaim:
			opts.Claims = append(opts.Claims, PickOption{ID: a.ID, Name: a.Name})
		}
	}
	return opts
}
