package commands

import (
	"context"
	"encoding/json"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/metacatalog/internal/cli/output"
	"github.com/leapstack-labs/metacatalog/internal/fraud"
)

// FraudOptions holds options for the fraud command.
type FraudOptions struct {
	SuspiciousOnly bool
}

// NewFraudCommand creates the fraud command.
func NewFraudCommand() *cobra.Command {
	opts := &FraudOptions{}

	cmd := &cobra.Command{
		Use:   "fraud",
		Short: "Evaluate claims with the fraud heuristic",
		Long: `Evaluate every claim in the catalog and report which ones look suspicious.

A claim is suspicious when its amount is above $5,000 and it was filed
less than 90 days after the policy it references was created. The report
also shows the share of suspicious claims; a rate above 20% is flagged.`,
		Example: `  # Full report
  metacatalog fraud

  # Only the suspicious claims, as JSON
  metacatalog fraud --suspicious --output json`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmdCtx, cleanup, err := NewCommandContext(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			return showFraud(cmd.Context(), cmdCtx, opts)
		},
	}

	cmd.Flags().BoolVar(&opts.SuspiciousOnly, "suspicious", false, "Only list suspicious claims")

	return cmd
}

// FraudOutput is the JSON shape of the fraud command.
type FraudOutput struct {
	Claims     []fraud.AssessedClaim `json:"claims"`
	Total      int                   `json:"totalClaims"`
	Suspicious int                   `json:"suspiciousClaims"`
	Rate       json.Number           `json:"fraudPercentage"`
	Elevated   bool                  `json:"elevated"`
	Rules      []string              `json:"rules"`
}

func showFraud(ctx context.Context, cmdCtx *CommandContext, opts *FraudOptions) error {
	assets, err := cmdCtx.Service.Snapshot(ctx)
	if err != nil {
		return err
	}
	report := fraud.EvaluateAssets(assets)

	claims := report.Claims
	if opts.SuspiciousOnly {
		claims = make([]fraud.AssessedClaim, 0, report.Suspicious)
		for _, c := range report.Claims {
			if c.Suspicious {
				claims = append(claims, c)
			}
		}
	}

	r := cmdCtx.Renderer
	if r.EffectiveMode() == output.ModeJSON {
		return r.JSON(FraudOutput{
			Claims:     claims,
			Total:      report.Total,
			Suspicious: report.Suspicious,
			Rate:       json.Number(report.RateString()),
			Elevated:   report.Elevated(),
			Rules:      fraud.Rules,
		})
	}

	r.Header(1, "Fraud report")
	r.KeyValue("Total claims", r.Number(report.Total))
	r.KeyValue("Suspicious claims", r.Number(report.Suspicious))
	rate := report.RateString() + "%"
	if report.Elevated() && r.EffectiveMode() == output.ModeText {
		rate = r.Styles().Alert.Render(rate + " (elevated)")
	} else if report.Elevated() {
		rate += " (elevated)"
	}
	r.KeyValue("Fraud rate", rate)
	r.Println("")

	if report.Total == 0 {
		r.Muted("No claims to evaluate.")
		return nil
	}

	rows := make([][]string, 0, len(claims))
	for _, c := range claims {
		data, _ := c.Claim.AsClaim()
		verdict := "OK"
		if c.Suspicious {
			verdict = "Suspicious"
		}
		rows = append(rows, []string{
			c.Claim.ID,
			c.Claim.Name,
			r.Amount(data.Amount),
			data.PolicyID,
			c.Claim.CreatedAt,
			verdict,
		})
	}
	if len(rows) > 0 {
		r.Table([]string{"ID", "CLAIM", "AMOUNT", "POLICY", "FILED", "VERDICT"}, rows)
		r.Println("")
	}

	r.Header(2, "Rules")
	for i, rule := range fraud.Rules {
		r.Printf("%d. %s\n", i+1, rule)
	}
	return nil
}
