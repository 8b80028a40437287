package assets

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/metacatalog/internal/catalog"
	"github.com/leapstack-labs/metacatalog/pkg/core"
)

func TestAmountField_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		input string
		want  AmountField
	}{
		{`6000.5`, "6000.5"},
		{`"6000.5"`, "6000.5"},
		{`""`, ""},
		{`null`, ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			var got AmountField
			require.NoError(t, json.Unmarshal([]byte(tt.input), &got))
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestAssetForm_Draft(t *testing.T) {
	form := AssetForm{
		Type:           "Claim",
		Name:           "Hail",
		PiiTag:         true,
		RegTag:         "HIPAA",
		ClaimAmount:    "6000.50",
		Status:         "Paid",
		PolicyID:       "p1",
		SourceClaimIDs: []string{},
	}

	d, err := form.Draft()
	require.NoError(t, err)
	assert.Equal(t, core.KindClaim, d.Kind)
	assert.True(t, d.ClaimAmount.Equal(decimal.RequireFromString("6000.5")))
	assert.Equal(t, core.ClaimStatusPaid, d.Status)
	assert.Equal(t, core.RegTagHIPAA, d.RegTag)
	assert.True(t, d.PII)

	form.ClaimAmount = ""
	d, err = form.Draft()
	require.NoError(t, err)
	assert.True(t, d.ClaimAmount.IsZero())

	form.ClaimAmount = "12abc"
	_, err = form.Draft()
	var ve *core.ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, "number", ve.Fields["claimAmount"])
}

func TestFormFrom_RoundTrip(t *testing.T) {
	d := catalog.Draft{
		Kind:           core.KindModel,
		Name:           "Scorer",
		RegTag:         core.RegTagCCPA,
		SourceClaimIDs: []string{"c1", "c2"},
	}

	form := FormFrom(d)
	assert.Equal(t, "Model", form.Type)
	assert.Equal(t, "New", form.Status)
	assert.Equal(t, AmountField("0"), form.ClaimAmount)

	back, err := form.Draft()
	require.NoError(t, err)
	assert.Equal(t, d.SourceClaimIDs, back.SourceClaimIDs)
	assert.Equal(t, d.RegTag, back.RegTag)

	// A policy form still binds an empty list for model sources.
	assert.NotNil(t, FormFrom(catalog.Draft{Kind: core.KindPolicy}).SourceClaimIDs)
}

func TestSignals_Filter(t *testing.T) {
	f := Signals{Search: "  hail "}.Filter()
	assert.Equal(t, catalog.Filter{Search: "hail", Kind: catalog.All, RegTag: catalog.All}, f)
	assert.True(t, Signals{}.Filter().IsZero())
}
