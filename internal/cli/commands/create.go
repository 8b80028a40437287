package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/leapstack-labs/metacatalog/internal/catalog"
	"github.com/leapstack-labs/metacatalog/internal/cli/output"
	"github.com/leapstack-labs/metacatalog/pkg/core"
)

// CreateOptions holds options for the create command.
type CreateOptions struct {
	Kind         string
	Name         string
	Description  string
	PII          bool
	RegTag       string
	Amount       string
	Status       string
	PolicyID     string
	SourceClaims []string
	Owner        string
	CreatedAt    string
}

// NewCreateCommand creates the create command.
func NewCreateCommand() *cobra.Command {
	opts := &CreateOptions{}

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a catalog asset",
		Long: `Create a policy, claim or model in the catalog.

Claims take an amount, a status and the ID of the policy they are filed
against. Models take the IDs of the claims they were trained on.
The store assigns the asset ID.`,
		Example: `  # A GDPR-tagged policy holding personal data
  metacatalog create --kind Policy --name "Homeowners Policy" --reg-tag GDPR --pii

  # A claim against that policy
  metacatalog create --kind Claim --name "Hail Damage" --amount 6000 --policy <policy-id>

  # A model built from two claims
  metacatalog create --kind Model --name "Severity Model" --source-claim <id1> --source-claim <id2>`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmdCtx, cleanup, err := NewCommandContext(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			return createAsset(cmd.Context(), cmdCtx, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.Kind, "kind", "k", "", "Asset type: Policy, Claim or Model (required)")
	cmd.Flags().StringVarP(&opts.Name, "name", "n", "", "Asset name (required)")
	cmd.Flags().StringVarP(&opts.Description, "description", "d", "", "Free-text description")
	cmd.Flags().BoolVar(&opts.PII, "pii", false, "Asset holds personally identifiable information")
	cmd.Flags().StringVar(&opts.RegTag, "reg-tag", string(core.RegTagNone), "Regulatory tag: None, GDPR, HIPAA, CCPA")
	cmd.Flags().StringVar(&opts.Amount, "amount", "0", "Claim amount")
	cmd.Flags().StringVar(&opts.Status, "status", string(core.ClaimStatusNew), "Claim status: New, In Review, Paid")
	cmd.Flags().StringVar(&opts.PolicyID, "policy", "", "Policy the claim is filed against")
	cmd.Flags().StringSliceVar(&opts.SourceClaims, "source-claim", nil, "Claim the model is derived from (repeatable)")
	cmd.Flags().StringVar(&opts.Owner, "owner", DefaultOwner, "Owner recorded on the asset")
	cmd.Flags().StringVar(&opts.CreatedAt, "created", "", "Creation timestamp (RFC 3339 or YYYY-MM-DD); default now")

	_ = cmd.MarkFlagRequired("kind")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.RegisterFlagCompletionFunc("kind", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return kindNames(), cobra.ShellCompDirectiveNoFileComp
	})
	_ = cmd.RegisterFlagCompletionFunc("reg-tag", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return regTagNames(), cobra.ShellCompDirectiveNoFileComp
	})
	_ = cmd.RegisterFlagCompletionFunc("status", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return statusNames(), cobra.ShellCompDirectiveNoFileComp
	})

	return cmd
}

// draft converts the flags into a catalog draft.
func (o *CreateOptions) draft() (catalog.Draft, error) {
	kind, err := exactChoice("kind", o.Kind, kindNames())
	if err != nil {
		return catalog.Draft{}, err
	}
	regTag, err := exactChoice("reg-tag", o.RegTag, regTagNames())
	if err != nil {
		return catalog.Draft{}, err
	}

	d := catalog.Draft{
		Kind:        core.AssetKind(kind),
		Name:        o.Name,
		Description: o.Description,
		PII:         o.PII,
		RegTag:      core.RegTag(regTag),
		CreatedAt:   o.CreatedAt,
	}

	switch d.Kind {
	case core.KindClaim:
		amount, err := decimal.NewFromString(strings.TrimSpace(o.Amount))
		if err != nil {
			return catalog.Draft{}, fmt.Errorf("invalid --amount %q: not a number", o.Amount)
		}
		status, err := exactChoice("status", o.Status, statusNames())
		if err != nil {
			return catalog.Draft{}, err
		}
		d.ClaimAmount = amount
		d.Status = core.ClaimStatus(status)
		d.PolicyID = o.PolicyID
	case core.KindModel:
		d.SourceClaimIDs = o.SourceClaims
	}
	return d, nil
}

func createAsset(ctx context.Context, cmdCtx *CommandContext, opts *CreateOptions) error {
	d, err := opts.draft()
	if err != nil {
		return err
	}

	a, err := cmdCtx.Service.Create(ctx, opts.Owner, d)
	if err != nil {
		return fmt.Errorf("failed to create asset: %w", err)
	}

	r := cmdCtx.Renderer
	if r.EffectiveMode() == output.ModeJSON {
		return r.JSON(a)
	}
	r.Success(fmt.Sprintf("Created %s %q", a.Kind(), a.Name))
	r.KeyValue("ID", r.ID(a.ID))
	r.KeyValue("Created", a.CreatedAt)
	return nil
}

// exactChoice is choice without the "all" wildcard.
func exactChoice(flag, value string, allowed []string) (string, error) {
	if v := strings.TrimSpace(value); v == "" || strings.EqualFold(v, catalog.All) {
		return "", fmt.Errorf("invalid --%s %q: must be one of %s", flag, value, strings.Join(allowed, ", "))
	}
	return choice(flag, value, allowed)
}
