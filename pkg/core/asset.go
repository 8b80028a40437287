package core

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// AssetKind is the discriminant of the Asset sum type.
type AssetKind string

// Asset kinds, in lineage column order.
const (
	KindPolicy AssetKind = "Policy"
	KindClaim  AssetKind = "Claim"
	KindModel  AssetKind = "Model"
)

// AllKinds lists every asset kind in lineage column order.
var AllKinds = []AssetKind{KindPolicy, KindClaim, KindModel}

// Valid reports whether k is a known asset kind.
func (k AssetKind) Valid() bool {
	switch k {
	case KindPolicy, KindClaim, KindModel:
		return true
	}
	return false
}

// RegTag classifies an asset under a data-protection regime.
type RegTag string

// Regulatory tags.
const (
	RegTagNone  RegTag = "None"
	RegTagGDPR  RegTag = "GDPR"
	RegTagHIPAA RegTag = "HIPAA"
	RegTagCCPA  RegTag = "CCPA"
)

// AllRegTags lists every regulatory tag.
var AllRegTags = []RegTag{RegTagNone, RegTagGDPR, RegTagHIPAA, RegTagCCPA}

// OrNone returns RegTagNone for the empty tag.
func (t RegTag) OrNone() RegTag {
	if t == "" {
		return RegTagNone
	}
	return t
}

// ClaimStatus is the processing state of a claim.
type ClaimStatus string

// Claim statuses.
const (
	ClaimStatusNew      ClaimStatus = "New"
	ClaimStatusInReview ClaimStatus = "In Review"
	ClaimStatusPaid     ClaimStatus = "Paid"
)

// AllClaimStatuses lists every claim status.
var AllClaimStatuses = []ClaimStatus{ClaimStatusNew, ClaimStatusInReview, ClaimStatusPaid}

// DataKind is the fixed data marker carried by policies and models.
type DataKind string

// Data kind markers.
const (
	DataKindRecord DataKind = "Record"
	DataKindResult DataKind = "Result"
)

// Payload is the variant-specific part of an Asset.
// It is implemented only by PolicyData, ClaimData and ModelData.
type Payload interface {
	Kind() AssetKind
	isPayload()
}

// PolicyData is the payload of a Policy asset.
type PolicyData struct {
	DataKind DataKind
}

// Kind implements Payload.
func (PolicyData) Kind() AssetKind { return KindPolicy }
func (PolicyData) isPayload()      {}

// ClaimData is the payload of a Claim asset.
type ClaimData struct {
	Amount   decimal.Decimal
	Status   ClaimStatus
	PolicyID string
}

// Kind implements Payload.
func (ClaimData) Kind() AssetKind { return KindClaim }
func (ClaimData) isPayload()      {}

// ModelData is the payload of a Model asset.
type ModelData struct {
	DataKind       DataKind
	SourceClaimIDs []string
}

// Kind implements Payload.
func (ModelData) Kind() AssetKind { return KindModel }
func (ModelData) isPayload()      {}

// Asset is a catalog entry: common metadata plus exactly one payload.
type Asset struct {
	ID          string
	Name        string
	Description string
	OwnerID     string
	// CreatedAt is an ISO-8601 timestamp, assigned once at creation.
	CreatedAt string
	PII       bool
	RegTag    RegTag
	Payload   Payload
}

// NewPolicy returns a policy asset with the Record marker set.
func NewPolicy(name string) Asset {
	return Asset{Name: name, RegTag: RegTagNone, Payload: PolicyData{DataKind: DataKindRecord}}
}

// NewClaim returns a claim asset linked to policyID.
func NewClaim(name string, amount decimal.Decimal, status ClaimStatus, policyID string) Asset {
	return Asset{
		Name:    name,
		RegTag:  RegTagNone,
		Payload: ClaimData{Amount: amount, Status: status, PolicyID: policyID},
	}
}

// NewModel returns a model asset derived from the given claims.
func NewModel(name string, sourceClaimIDs ...string) Asset {
	return Asset{
		Name:    name,
		RegTag:  RegTagNone,
		Payload: ModelData{DataKind: DataKindResult, SourceClaimIDs: sourceClaimIDs},
	}
}

// Kind returns the asset's discriminant, or "" when no payload is set.
func (a Asset) Kind() AssetKind {
	if a.Payload == nil {
		return ""
	}
	return a.Payload.Kind()
}

// AsPolicy returns the policy payload if a is a Policy.
func (a Asset) AsPolicy() (PolicyData, bool) {
	p, ok := a.Payload.(PolicyData)
	return p, ok
}

// AsClaim returns the claim payload if a is a Claim.
func (a Asset) AsClaim() (ClaimData, bool) {
	c, ok := a.Payload.(ClaimData)
	return c, ok
}

// AsModel returns the model payload if a is a Model.
func (a Asset) AsModel() (ModelData, bool) {
	m, ok := a.Payload.(ModelData)
	return m, ok
}

// CreatedTime parses CreatedAt.
func (a Asset) CreatedTime() (time.Time, error) {
	return ParseTimestamp(a.CreatedAt)
}

// timestampLayouts are tried in order by ParseTimestamp.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// ParseTimestamp parses an ISO-8601 timestamp. Values without a zone,
// including date-only ones, are read as UTC.
func ParseTimestamp(s string) (time.Time, error) {
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid timestamp %q", s)
}

// FormatTimestamp renders t the way CreatedAt is stored.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

// Partition splits assets by kind, preserving input order within each group.
func Partition(assets []Asset) (policies, claims, models []Asset) {
	for _, a := range assets {
		switch a.Kind() {
		case KindPolicy:
			policies = append(policies, a)
		case KindClaim:
			claims = append(claims, a)
		case KindModel:
			models = append(models, a)
		}
	}
	return policies, claims, models
}

// assetJSON is the flat wire shape of an Asset.
type assetJSON struct {
	ID             string      `json:"id"`
	Type           AssetKind   `json:"type"`
	Name           string      `json:"name"`
	Description    string      `json:"description"`
	OwnerID        string      `json:"ownerId"`
	CreationDate   string      `json:"creationDate"`
	PIITag         bool        `json:"piiTag"`
	RegTag         RegTag      `json:"regTag"`
	DataType       DataKind    `json:"dataType,omitempty"`
	ClaimAmount    json.Number `json:"claimAmount,omitempty"`
	Status         ClaimStatus `json:"status,omitempty"`
	PolicyID       string      `json:"policyId,omitempty"`
	SourceClaimIDs []string    `json:"sourceClaimId,omitempty"`
}

// MarshalJSON encodes the asset with a "type" discriminant and flattened payload.
func (a Asset) MarshalJSON() ([]byte, error) {
	out := assetJSON{
		ID:           a.ID,
		Type:         a.Kind(),
		Name:         a.Name,
		Description:  a.Description,
		OwnerID:      a.OwnerID,
		CreationDate: a.CreatedAt,
		PIITag:       a.PII,
		RegTag:       a.RegTag.OrNone(),
	}
	switch p := a.Payload.(type) {
	case PolicyData:
		out.DataType = p.DataKind
	case ClaimData:
		out.ClaimAmount = json.Number(p.Amount.String())
		out.Status = p.Status
		out.PolicyID = p.PolicyID
	case ModelData:
		out.DataType = p.DataKind
		out.SourceClaimIDs = p.SourceClaimIDs
	case nil:
	default:
		return nil, fmt.Errorf("unknown payload type %T", p)
	}
	return json.Marshal(out)
}

// UnmarshalJSON decodes the flat wire shape, selecting the payload by "type".
func (a *Asset) UnmarshalJSON(data []byte) error {
	var in assetJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	*a = Asset{
		ID:          in.ID,
		Name:        in.Name,
		Description: in.Description,
		OwnerID:     in.OwnerID,
		CreatedAt:   in.CreationDate,
		PII:         in.PIITag,
		RegTag:      in.RegTag.OrNone(),
	}
	switch in.Type {
	case KindPolicy:
		a.Payload = PolicyData{DataKind: DataKindRecord}
	case KindClaim:
		c := ClaimData{Status: in.Status, PolicyID: in.PolicyID}
		if in.ClaimAmount != "" {
			amount, err := decimal.NewFromString(in.ClaimAmount.String())
			if err != nil {
				return fmt.Errorf("invalid claimAmount: %w", err)
			}
			c.Amount = amount
		}
		a.Payload = c
	case KindModel:
		a.Payload = ModelData{DataKind: DataKindResult, SourceClaimIDs: in.SourceClaimIDs}
	default:
		return fmt.Errorf("unknown asset type %q", in.Type)
	}
	return nil
}
