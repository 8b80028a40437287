// Package seed loads assets from YAML files.
//
// A seed file lists assets with optional symbolic refs, so claims can point
// at policies and models at claims before any store ID exists:
//
//	assets:
//	  - ref: auto
//	    type: Policy
//	    name: Auto Policy
//	    creationDate: 2024-01-01
//	  - ref: hail
//	    type: Claim
//	    name: Hail Damage
//	    claimAmount: 6000
//	    policy: auto
//	  - type: Model
//	    name: Severity Model
//	    sources: [hail]
//
// A reference that matches no ref is used verbatim as an asset ID.
package seed

import (
	"context"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/leapstack-labs/metacatalog/internal/catalog"
	"github.com/leapstack-labs/metacatalog/pkg/core"
)

// Document is the top-level seed file.
type Document struct {
	Assets []Entry `yaml:"assets"`
}

// Entry is one asset in a seed file.
type Entry struct {
	Ref          string   `yaml:"ref"`
	Type         string   `yaml:"type"`
	Name         string   `yaml:"name"`
	Description  string   `yaml:"description"`
	PII          bool     `yaml:"piiTag"`
	RegTag       string   `yaml:"regTag"`
	CreationDate string   `yaml:"creationDate"`
	ClaimAmount  string   `yaml:"claimAmount"`
	Status       string   `yaml:"status"`
	Policy       string   `yaml:"policy"`
	Sources      []string `yaml:"sources"`
}

// Parse decodes a seed document.
func Parse(r io.Reader) (*Document, error) {
	var doc Document
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		if err == io.EOF {
			return &doc, nil
		}
		return nil, fmt.Errorf("failed to parse seed: %w", err)
	}

	seen := make(map[string]bool)
	for i, e := range doc.Assets {
		if e.Ref == "" {
			continue
		}
		if seen[e.Ref] {
			return nil, fmt.Errorf("assets[%d]: duplicate ref %q", i, e.Ref)
		}
		seen[e.Ref] = true
	}
	return &doc, nil
}

// ParseFile reads and decodes the seed file at path.
func ParseFile(path string) (*Document, error) {
	f, err := os.Open(path) //nolint:gosec // path comes from user configuration
	if err != nil {
		return nil, fmt.Errorf("failed to open seed file: %w", err)
	}
	defer func() { _ = f.Close() }()
	return Parse(f)
}

// Result records what Apply created.
type Result struct {
	// IDs lists created asset IDs in creation order.
	IDs []string
	// Refs maps each seed ref to the ID it was assigned.
	Refs map[string]string
}

// kindOrder is the order entries are created in, so references resolve.
var kindOrder = []core.AssetKind{core.KindPolicy, core.KindClaim, core.KindModel}

// Apply creates every entry of doc through svc, owned by owner.
// Policies are created first, then claims, then models; file order is kept
// within each kind. On error, the assets created so far are reported in the
// returned Result.
func Apply(ctx context.Context, svc *catalog.Service, doc *Document, owner string) (*Result, error) {
	res := &Result{IDs: []string{}, Refs: make(map[string]string)}

	for i, e := range doc.Assets {
		if !core.AssetKind(e.Type).Valid() {
			return res, fmt.Errorf("assets[%d] %q: unknown type %q", i, e.Name, e.Type)
		}
	}

	for _, kind := range kindOrder {
		for i, e := range doc.Assets {
			if core.AssetKind(e.Type) != kind {
				continue
			}

			draft, err := e.draft(res.Refs)
			if err != nil {
				return res, fmt.Errorf("assets[%d] %q: %w", i, e.Name, err)
			}

			a, err := svc.Create(ctx, owner, draft)
			if err != nil {
				return res, fmt.Errorf("assets[%d] %q: %w", i, e.Name, err)
			}

			res.IDs = append(res.IDs, a.ID)
			if e.Ref != "" {
				res.Refs[e.Ref] = a.ID
			}
		}
	}

	return res, nil
}

func (e Entry) draft(refs map[string]string) (catalog.Draft, error) {
	d := catalog.Draft{
		Kind:        core.AssetKind(e.Type),
		Name:        e.Name,
		Description: e.Description,
		PII:         e.PII,
		RegTag:      core.RegTag(e.RegTag),
		Status:      core.ClaimStatus(e.Status),
		CreatedAt:   e.CreationDate,
	}

	switch d.Kind {
	case core.KindClaim:
		if amount := strings.TrimSpace(e.ClaimAmount); amount != "" {
			v, err := decimal.NewFromString(amount)
			if err != nil {
				return d, fmt.Errorf("invalid claimAmount %q", e.ClaimAmount)
			}
			d.ClaimAmount = v
		}
		d.PolicyID = resolve(refs, e.Policy)
	case core.KindModel:
		for _, src := range e.Sources {
			d.SourceClaimIDs = append(d.SourceClaimIDs, resolve(refs, src))
		}
	}
	return d, nil
}

func resolve(refs map[string]string, ref string) string {
	if id, ok := refs[ref]; ok {
		return id
	}
	return ref
}

// Remove deletes the given assets, ignoring ones that are already gone.
func Remove(ctx context.Context, svc *catalog.Service, ids []string) error {
	for _, id := range slices.Backward(ids) {
		if err := svc.Delete(ctx, id); err != nil && !isNotFound(err) {
			return fmt.Errorf("failed to remove seeded asset %s: %w", id, err)
		}
	}
	return nil
}
