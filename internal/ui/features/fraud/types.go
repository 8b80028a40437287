package fraud

import (
	"github.com/leapstack-labs/metacatalog/internal/fraud"
	"github.com/leapstack-labs/metacatalog/internal/ui/features/common"
	"github.com/leapstack-labs/metacatalog/internal/ui/features/fraud/pages"
	"github.com/leapstack-labs/metacatalog/pkg/core"
)

// newReport evaluates snapshot and shapes the result for display.
func newReport(snapshot []core.Asset) pages.ReportData {
	report := fraud.EvaluateAssets(snapshot)

	policies := make(map[string]string)
	for _, a := range snapshot {
		if a.Kind() == core.KindPolicy {
			if _, dup := policies[a.ID]; !dup {
				policies[a.ID] = a.Name
			}
		}
	}

	out := pages.ReportData{
		Total:      report.Total,
		Suspicious: report.Suspicious,
		Rate:       report.RateString(),
		Elevated:   report.Elevated(),
		Claims:     make([]pages.ClaimRow, 0, len(report.Claims)),
	}
	for _, c := range report.Claims {
		data, _ := c.Claim.AsClaim()
		out.Claims = append(out.Claims, pages.ClaimRow{
			ID:         c.Claim.ID,
			Name:       c.Claim.Name,
			Amount:     common.FormatAmount(data.Amount),
			Status:     string(data.Status),
			PolicyName: policies[data.PolicyID],
			Filed:      common.FormatDate(c.Claim.CreatedAt),
			Suspicious: c.Suspicious,
		})
	}
	return out
}
