package core

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAsset_Kind(t *testing.T) {
	tests := []struct {
		name  string
		asset Asset
		want  AssetKind
	}{
		{"policy", NewPolicy("p"), KindPolicy},
		{"claim", NewClaim("c", decimal.NewFromInt(10), ClaimStatusNew, "p1"), KindClaim},
		{"model", NewModel("m", "c1"), KindModel},
		{"no payload", Asset{Name: "x"}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.asset.Kind())
		})
	}
}

func TestAsset_Accessors(t *testing.T) {
	claim := NewClaim("c", decimal.NewFromInt(6000), ClaimStatusPaid, "p1")

	c, ok := claim.AsClaim()
	require.True(t, ok)
	assert.True(t, c.Amount.Equal(decimal.NewFromInt(6000)))
	assert.Equal(t, "p1", c.PolicyID)

	_, ok = claim.AsPolicy()
	assert.False(t, ok)
	_, ok = claim.AsModel()
	assert.False(t, ok)
}

func TestAssetKind_Valid(t *testing.T) {
	for _, k := range AllKinds {
		assert.True(t, k.Valid(), "kind %q should be valid", k)
	}
	assert.False(t, AssetKind("Dataset").Valid())
	assert.False(t, AssetKind("").Valid())
}

func TestAsset_UnmarshalJSON_SelectsPayloadByType(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		check   func(t *testing.T, a Asset)
		wantErr string
	}{
		{
			name:  "claim with numeric amount",
			input: `{"id":"c1","type":"Claim","name":"Hail","claimAmount":6000.5,"status":"In Review","policyId":"p1","creationDate":"2024-02-01"}`,
			check: func(t *testing.T, a Asset) {
				c, ok := a.AsClaim()
				require.True(t, ok)
				assert.Equal(t, "6000.5", c.Amount.String())
				assert.Equal(t, ClaimStatusInReview, c.Status)
				assert.Equal(t, RegTagNone, a.RegTag)
			},
		},
		{
			name:  "claim with quoted amount",
			input: `{"id":"c2","type":"Claim","name":"Flood","claimAmount":"4000","policyId":"p1"}`,
			check: func(t *testing.T, a Asset) {
				c, ok := a.AsClaim()
				require.True(t, ok)
				assert.Equal(t, "4000", c.Amount.String())
			},
		},
		{
			name:  "model sets result marker",
			input: `{"id":"m1","type":"Model","name":"Scorer","sourceClaimId":["c1","c2"],"regTag":"GDPR","piiTag":true}`,
			check: func(t *testing.T, a Asset) {
				m, ok := a.AsModel()
				require.True(t, ok)
				assert.Equal(t, DataKindResult, m.DataKind)
				assert.Equal(t, []string{"c1", "c2"}, m.SourceClaimIDs)
				assert.Equal(t, RegTagGDPR, a.RegTag)
				assert.True(t, a.PII)
			},
		},
		{
			name:    "unknown type",
			input:   `{"id":"x","type":"Dataset","name":"X"}`,
			wantErr: "unknown asset type",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var a Asset
			err := json.Unmarshal([]byte(tt.input), &a)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			tt.check(t, a)
		})
	}
}

func TestAsset_MarshalJSON_FlattensPayload(t *testing.T) {
	a := NewClaim("Hail", decimal.NewFromInt(6000), ClaimStatusNew, "p1")
	a.ID = "c1"

	raw, err := json.Marshal(a)
	require.NoError(t, err)

	var m map[string]any
	require.NoError(t, json.Unmarshal(raw, &m))
	assert.Equal(t, "Claim", m["type"])
	assert.Equal(t, float64(6000), m["claimAmount"])
	assert.Equal(t, "p1", m["policyId"])
	assert.Equal(t, "None", m["regTag"])
	assert.NotContains(t, m, "sourceClaimId")
}

func TestParseTimestamp(t *testing.T) {
	tests := []struct {
		input   string
		want    time.Time
		wantErr bool
	}{
		{"2024-01-01", time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), false},
		{"2024-02-01T10:30:00Z", time.Date(2024, 2, 1, 10, 30, 0, 0, time.UTC), false},
		{"2024-02-01T10:30:00.123Z", time.Date(2024, 2, 1, 10, 30, 0, 123000000, time.UTC), false},
		{"2024-02-01T10:30:00", time.Date(2024, 2, 1, 10, 30, 0, 0, time.UTC), false},
		{"yesterday", time.Time{}, true},
		{"", time.Time{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseTimestamp(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(got), "got %s", got)
		})
	}
}

func TestPartition_PreservesOrder(t *testing.T) {
	assets := []Asset{
		NewModel("m1"),
		NewClaim("c1", decimal.Zero, ClaimStatusNew, ""),
		NewPolicy("p1"),
		NewClaim("c2", decimal.Zero, ClaimStatusNew, ""),
		NewPolicy("p2"),
		{Name: "orphan"},
	}

	policies, claims, models := Partition(assets)
	assert.Equal(t, []string{"p1", "p2"}, names(policies))
	assert.Equal(t, []string{"c1", "c2"}, names(claims))
	assert.Equal(t, []string{"m1"}, names(models))
}

func TestValidationError_Error(t *testing.T) {
	err := &ValidationError{Fields: map[string]string{"Name": "required", "Amount": "gte"}}
	assert.Equal(t, "invalid asset: Amount: gte, Name: required", err.Error())
}

func names(assets []Asset) []string {
	out := make([]string, 0, len(assets))
	for _, a := range assets {
		out = append(out, a.Name)
	}
	return out
}
