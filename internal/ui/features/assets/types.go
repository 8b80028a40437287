package assets

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/leapstack-labs/metacatalog/internal/catalog"
	"github.com/leapstack-labs/metacatalog/pkg/core"
)

// Signals is the datastar signal store of the catalog page.
type Signals struct {
	Search string    `json:"search"`
	Kind   string    `json:"kind"`
	RegTag string    `json:"regTag"`
	Form   AssetForm `json:"form"`
}

// Filter returns the list filter described by the signals.
func (s Signals) Filter() catalog.Filter {
	return normalizeFilter(catalog.Filter{Search: s.Search, Kind: s.Kind, RegTag: s.RegTag})
}

func normalizeFilter(f catalog.Filter) catalog.Filter {
	f.Search = strings.TrimSpace(f.Search)
	if f.Kind == "" {
		f.Kind = catalog.All
	}
	if f.RegTag == "" {
		f.RegTag = catalog.All
	}
	return f
}

// AssetForm is the editor form as bound to signals under "form".
type AssetForm struct {
	Type           string      `json:"type"`
	Name           string      `json:"name"`
	Description    string      `json:"description"`
	PiiTag         bool        `json:"piiTag"`
	RegTag         string      `json:"regTag"`
	ClaimAmount    AmountField `json:"claimAmount"`
	Status         string      `json:"status"`
	PolicyID       string      `json:"policyId"`
	SourceClaimIDs []string    `json:"sourceClaimId"`
}

// AmountField holds a claim amount bound as either a JSON number or a
// string; number inputs report "" while empty.
type AmountField string

// UnmarshalJSON accepts numbers, strings and null.
func (a *AmountField) UnmarshalJSON(b []byte) error {
	s := strings.TrimSpace(string(b))
	if s == "null" {
		s = ""
	}
	*a = AmountField(strings.Trim(s, `"`))
	return nil
}

// FormFrom returns the form state that edits d.
func FormFrom(d catalog.Draft) AssetForm {
	ids := d.SourceClaimIDs
	if ids == nil {
		ids = []string{}
	}
	status := string(d.Status)
	if status == "" {
		status = string(core.ClaimStatusNew)
	}
	return AssetForm{
		Type:           string(d.Kind),
		Name:           d.Name,
		Description:    d.Description,
		PiiTag:         d.PII,
		RegTag:         string(d.RegTag.OrNone()),
		ClaimAmount:    AmountField(d.ClaimAmount.String()),
		Status:         status,
		PolicyID:       d.PolicyID,
		SourceClaimIDs: ids,
	}
}

// Draft converts the form into a catalog draft. An amount that is not a
// number is reported as a validation error on claimAmount.
func (f AssetForm) Draft() (catalog.Draft, error) {
	d := catalog.Draft{
		Kind:           core.AssetKind(f.Type),
		Name:           f.Name,
		Description:    f.Description,
		PII:            f.PiiTag,
		RegTag:         core.RegTag(f.RegTag),
		Status:         core.ClaimStatus(f.Status),
		PolicyID:       f.PolicyID,
		SourceClaimIDs: f.SourceClaimIDs,
	}

	if amount := strings.TrimSpace(string(f.ClaimAmount)); amount != "" {
		v, err := decimal.NewFromString(amount)
		if err != nil {
			return d, &core.ValidationError{Fields: map[string]string{"claimAmount": "number"}}
		}
		d.ClaimAmount = v
	}
	return d, nil
}
