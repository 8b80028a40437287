package catalog

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/leapstack-labs/metacatalog/pkg/core"
)

// Draft is the editable form of an asset. Fields that do not belong to
// Kind are ignored when the asset is built.
type Draft struct {
	Kind        core.AssetKind `json:"type" validate:"required,oneof=Policy Claim Model"`
	Name        string         `json:"name" validate:"required,max=200"`
	Description string         `json:"description" validate:"max=4000"`
	PII         bool           `json:"piiTag"`
	RegTag      core.RegTag    `json:"regTag" validate:"omitempty,oneof=None GDPR HIPAA CCPA"`

	ClaimAmount decimal.Decimal  `json:"claimAmount" validate:"gte=0"`
	Status      core.ClaimStatus `json:"status" validate:"omitempty,oneof=New 'In Review' Paid"`
	PolicyID    string           `json:"policyId"`

	SourceClaimIDs []string `json:"sourceClaimId" validate:"dive,required"`

	// CreatedAt backdates a new asset, for imports and seeds. It is ignored
	// by updates.
	CreatedAt string `json:"creationDate,omitempty" validate:"omitempty,timestamp"`
}

// DraftFrom returns the draft that reproduces a.
func DraftFrom(a core.Asset) Draft {
	d := Draft{
		Kind:        a.Kind(),
		Name:        a.Name,
		Description: a.Description,
		PII:         a.PII,
		RegTag:      a.RegTag.OrNone(),
		Status:      core.ClaimStatusNew,
	}
	switch p := a.Payload.(type) {
	case core.ClaimData:
		d.ClaimAmount = p.Amount
		d.Status = p.Status
		d.PolicyID = p.PolicyID
	case core.ModelData:
		d.SourceClaimIDs = append([]string(nil), p.SourceClaimIDs...)
	}
	return d
}

// normalize trims text fields and fills enumeration defaults.
func (d Draft) normalize() Draft {
	d.Name = strings.TrimSpace(d.Name)
	d.Description = strings.TrimSpace(d.Description)
	d.PolicyID = strings.TrimSpace(d.PolicyID)
	d.CreatedAt = strings.TrimSpace(d.CreatedAt)
	d.RegTag = d.RegTag.OrNone()
	if d.Kind == core.KindClaim && d.Status == "" {
		d.Status = core.ClaimStatusNew
	}

	ids := make([]string, 0, len(d.SourceClaimIDs))
	for _, id := range d.SourceClaimIDs {
		if id = strings.TrimSpace(id); id != "" {
			ids = append(ids, id)
		}
	}
	d.SourceClaimIDs = ids
	return d
}

// asset builds the asset described by d, without ID, owner or timestamp.
// The data kind markers are set from Kind.
func (d Draft) asset() core.Asset {
	a := core.Asset{
		Name:        d.Name,
		Description: d.Description,
		PII:         d.PII,
		RegTag:      d.RegTag.OrNone(),
	}
	switch d.Kind {
	case core.KindPolicy:
		a.Payload = core.PolicyData{DataKind: core.DataKindRecord}
	case core.KindClaim:
		a.Payload = core.ClaimData{Amount: d.ClaimAmount, Status: d.Status, PolicyID: d.PolicyID}
	case core.KindModel:
		a.Payload = core.ModelData{DataKind: core.DataKindResult, SourceClaimIDs: d.SourceClaimIDs}
	}
	return a
}

// newValidator returns a validator that reports JSON field names and
// understands decimal amounts and catalog timestamps.
func newValidator() *validator.Validate {
	v := validator.New()

	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})

	v.RegisterCustomTypeFunc(func(field reflect.Value) any {
		if d, ok := field.Interface().(decimal.Decimal); ok {
			f, _ := d.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})

	_ = v.RegisterValidation("timestamp", func(fl validator.FieldLevel) bool {
		_, err := core.ParseTimestamp(fl.Field().String())
		return err == nil
	})

	return v
}

// validationError converts validator output into a *core.ValidationError.
func validationError(err error) error {
	var ves validator.ValidationErrors
	if !errors.As(err, &ves) {
		return err
	}
	fields := make(map[string]string, len(ves))
	for _, ve := range ves {
		fields[ve.Field()] = ve.Tag()
	}
	return &core.ValidationError{Fields: fields}
}
