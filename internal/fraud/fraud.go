// Package fraud flags insurance claims that match a simple early-high-value
// heuristic: a large claim filed shortly after its policy was created.
//
// Evaluation is pure. It reads a snapshot of claims and policies and never
// fails; claims whose policy or timestamps cannot be resolved are reported
// as not suspicious.
package fraud

import (
	"math"
	"time"

	"github.com/shopspring/decimal"

	"github.com/leapstack-labs/metacatalog/pkg/core"
)

// AmountThreshold is the claim amount a claim must exceed to be considered.
var AmountThreshold = decimal.NewFromInt(5000)

// WindowDays is the number of whole days after policy creation during which
// a high-value claim is considered early.
const WindowDays = 90

// RateAlertThreshold is the suspicious percentage above which a report is
// considered elevated.
var RateAlertThreshold = decimal.NewFromInt(20)

// Rules describes the heuristic in the words shown to users.
var Rules = []string{
	"Claim amount exceeds $5,000",
	"Claim was filed within 90 days of policy creation",
}

// AssessedClaim is a claim together with its verdict.
type AssessedClaim struct {
	Claim      core.Asset `json:"claim"`
	Suspicious bool       `json:"isSuspicious"`
}

// Report summarizes a fraud evaluation.
type Report struct {
	Claims     []AssessedClaim `json:"claims"`
	Total      int             `json:"totalClaims"`
	Suspicious int             `json:"suspiciousClaims"`
	// Rate is the suspicious percentage rounded to one decimal place.
	Rate decimal.Decimal `json:"fraudPercentage"`
}

// Elevated reports whether the rate is above RateAlertThreshold.
func (r Report) Elevated() bool {
	return r.Rate.GreaterThan(RateAlertThreshold)
}

// RateString formats the rate with one decimal place, or "0" when there are
// no claims.
func (r Report) RateString() string {
	if r.Total == 0 {
		return "0"
	}
	return r.Rate.StringFixed(1)
}

// Evaluate assesses each claim against the policies it may reference.
// Non-claim entries in claims are ignored. Output order follows input order.
func Evaluate(claims, policies []core.Asset) Report {
	index := make(map[string]core.Asset, len(policies))
	for _, p := range policies {
		if p.Kind() != core.KindPolicy {
			continue
		}
		if _, dup := index[p.ID]; !dup {
			index[p.ID] = p
		}
	}

	report := Report{Claims: make([]AssessedClaim, 0, len(claims)), Rate: decimal.Zero}
	for _, c := range claims {
		if c.Kind() != core.KindClaim {
			continue
		}
		suspicious := isSuspicious(c, index)
		report.Claims = append(report.Claims, AssessedClaim{Claim: c, Suspicious: suspicious})
		if suspicious {
			report.Suspicious++
		}
	}
	report.Total = len(report.Claims)

	if report.Total > 0 {
		report.Rate = decimal.NewFromInt(int64(report.Suspicious)).
			Mul(decimal.NewFromInt(100)).
			Div(decimal.NewFromInt(int64(report.Total))).
			Round(1)
	}
	return report
}

// EvaluateAssets partitions a full collection and evaluates its claims.
func EvaluateAssets(assets []core.Asset) Report {
	policies, claims, _ := core.Partition(assets)
	return Evaluate(claims, policies)
}

func isSuspicious(claim core.Asset, policies map[string]core.Asset) bool {
	data, ok := claim.AsClaim()
	if !ok || !data.Amount.GreaterThan(AmountThreshold) {
		return false
	}

	policy, ok := policies[data.PolicyID]
	if !ok {
		return false
	}

	policyCreated, err := policy.CreatedTime()
	if err != nil {
		return false
	}
	claimCreated, err := claim.CreatedTime()
	if err != nil {
		return false
	}

	return DaysBetween(policyCreated, claimCreated) < WindowDays
}

// DaysBetween returns the whole days from start to end, rounded toward
// negative infinity. It is negative when end precedes start.
func DaysBetween(start, end time.Time) int {
	return int(math.Floor(end.Sub(start).Hours() / 24))
}
