package fraud

import (
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/metacatalog/pkg/core"
)

func policyAt(id, created string) core.Asset {
	p := core.NewPolicy("Policy " + id)
	p.ID = id
	p.CreatedAt = created
	return p
}

func claimAt(id, policyID string, amount int64, created string) core.Asset {
	c := core.NewClaim("Claim "+id, decimal.NewFromInt(amount), core.ClaimStatusNew, policyID)
	c.ID = id
	c.CreatedAt = created
	return c
}

func TestEvaluate_Rule(t *testing.T) {
	policies := []core.Asset{policyAt("p1", "2024-01-01")}

	tests := []struct {
		name  string
		claim core.Asset
		want  bool
	}{
		{"high amount inside window", claimAt("a", "p1", 6000, "2024-02-01"), true},
		{"amount below threshold", claimAt("b", "p1", 4000, "2024-02-01"), false},
		{"outside window", claimAt("c", "p1", 6000, "2024-06-01"), false},
		{"unknown policy", claimAt("d", "p9", 1_000_000, "2024-01-02"), false},
		{"amount equal to threshold", claimAt("e", "p1", 5000, "2024-01-02"), false},
		{"day 89 is inside window", claimAt("f", "p1", 6000, "2024-03-30"), true},
		{"day 90 is outside window", claimAt("g", "p1", 6000, "2024-03-31"), false},
		{"claim before policy", claimAt("h", "p1", 6000, "2023-12-01"), true},
		{"unparseable claim date", claimAt("i", "p1", 6000, "soon"), false},
		{"no policy reference", claimAt("j", "", 6000, "2024-01-02"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			report := Evaluate([]core.Asset{tt.claim}, policies)
			require.Len(t, report.Claims, 1)
			assert.Equal(t, tt.want, report.Claims[0].Suspicious)
		})
	}
}

func TestEvaluate_UnparseablePolicyDate(t *testing.T) {
	report := Evaluate(
		[]core.Asset{claimAt("c", "p1", 6000, "2024-02-01")},
		[]core.Asset{policyAt("p1", "")},
	)
	assert.False(t, report.Claims[0].Suspicious)
}

func TestEvaluate_Aggregate(t *testing.T) {
	policies := []core.Asset{policyAt("p1", "2024-01-01")}

	var claims []core.Asset
	for i := range 10 {
		amount := int64(1000)
		if i < 3 {
			amount = 9000
		}
		claims = append(claims, claimAt(fmt.Sprintf("c%d", i), "p1", amount, "2024-01-15"))
	}

	report := Evaluate(claims, policies)
	assert.Equal(t, 10, report.Total)
	assert.Equal(t, 3, report.Suspicious)
	assert.Equal(t, "30.0", report.RateString())
	assert.True(t, report.Rate.Equal(decimal.NewFromInt(30)))
	assert.True(t, report.Elevated())
}

func TestEvaluate_RateRounding(t *testing.T) {
	policies := []core.Asset{policyAt("p1", "2024-01-01")}
	claims := []core.Asset{
		claimAt("c1", "p1", 9000, "2024-01-02"),
		claimAt("c2", "p1", 10, "2024-01-02"),
		claimAt("c3", "p1", 10, "2024-01-02"),
	}

	report := Evaluate(claims, policies)
	assert.Equal(t, "33.3", report.RateString())

	claims[1] = claimAt("c2", "p1", 9000, "2024-01-02")
	report = Evaluate(claims, policies)
	assert.Equal(t, "66.7", report.RateString())
}

func TestEvaluate_Empty(t *testing.T) {
	report := Evaluate(nil, nil)

	assert.Equal(t, 0, report.Total)
	assert.Equal(t, 0, report.Suspicious)
	assert.True(t, report.Rate.IsZero())
	assert.Equal(t, "0", report.RateString())
	assert.False(t, report.Elevated())
	assert.NotNil(t, report.Claims)
}

func TestEvaluate_PreservesOrderAndSkipsOtherKinds(t *testing.T) {
	claims := []core.Asset{
		claimAt("z", "p1", 1, "2024-01-01"),
		policyAt("p1", "2024-01-01"),
		claimAt("a", "p1", 1, "2024-01-01"),
	}

	report := Evaluate(claims, nil)
	require.Len(t, report.Claims, 2)
	assert.Equal(t, "z", report.Claims[0].Claim.ID)
	assert.Equal(t, "a", report.Claims[1].Claim.ID)
}

func TestEvaluateAssets(t *testing.T) {
	assets := []core.Asset{
		core.NewModel("m", "a"),
		claimAt("a", "p1", 6000, "2024-02-01"),
		policyAt("p1", "2024-01-01"),
		claimAt("b", "p1", 4000, "2024-02-01"),
	}

	report := EvaluateAssets(assets)
	assert.Equal(t, 2, report.Total)
	assert.Equal(t, 1, report.Suspicious)
	assert.Equal(t, "50.0", report.RateString())
}

func TestDaysBetween(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		end  time.Time
		want int
	}{
		{"same instant", start, 0},
		{"almost a day", start.Add(23 * time.Hour), 0},
		{"31 days", time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC), 31},
		{"half a day earlier", start.Add(-12 * time.Hour), -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DaysBetween(start, tt.end))
		})
	}
}
