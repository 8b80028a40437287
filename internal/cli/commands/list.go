package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/metacatalog/internal/catalog"
	"github.com/leapstack-labs/metacatalog/internal/cli/output"
	"github.com/leapstack-labs/metacatalog/pkg/core"
)

// ListOptions holds options for the list command.
type ListOptions struct {
	Search string
	Kind   string
	RegTag string
}

// NewListCommand creates the list command.
func NewListCommand() *cobra.Command {
	opts := &ListOptions{}

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List catalog assets",
		Long: `List the assets in the catalog, optionally filtered by name, type and
regulatory tag. Assets are shown in creation order.

Output adapts to environment:
  - Terminal: Styled table
  - Piped/Scripted: Markdown format (agent-friendly)

Use --output to override: auto, text, markdown, json`,
		Example: `  # List every asset
  metacatalog list

  # Claims whose name contains "flood"
  metacatalog list --kind Claim --search flood

  # GDPR-tagged assets as JSON
  metacatalog list --reg-tag GDPR --output json`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runList(cmd, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.Search, "search", "s", "", "Case-insensitive name filter")
	cmd.Flags().StringVarP(&opts.Kind, "kind", "k", catalog.All, "Asset type: Policy, Claim, Model or all")
	cmd.Flags().StringVar(&opts.RegTag, "reg-tag", catalog.All, "Regulatory tag: None, GDPR, HIPAA, CCPA or all")

	_ = cmd.RegisterFlagCompletionFunc("kind", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return append(kindNames(), catalog.All), cobra.ShellCompDirectiveNoFileComp
	})
	_ = cmd.RegisterFlagCompletionFunc("reg-tag", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return append(regTagNames(), catalog.All), cobra.ShellCompDirectiveNoFileComp
	})

	return cmd
}

func runList(cmd *cobra.Command, opts *ListOptions) error {
	cmdCtx, cleanup, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	return listAssets(cmd.Context(), cmdCtx, opts)
}

// ListOutput is the JSON shape of the list command.
type ListOutput struct {
	Total    int          `json:"total"`
	Filtered int          `json:"filtered"`
	Assets   []core.Asset `json:"assets"`
}

func listAssets(ctx context.Context, cmdCtx *CommandContext, opts *ListOptions) error {
	filter, err := opts.filter()
	if err != nil {
		return err
	}

	all, err := cmdCtx.Service.Snapshot(ctx)
	if err != nil {
		return err
	}
	assets := filter.Apply(all)

	r := cmdCtx.Renderer
	switch r.EffectiveMode() {
	case output.ModeJSON:
		return r.JSON(ListOutput{Total: len(all), Filtered: len(assets), Assets: assets})
	default:
		title := fmt.Sprintf("Assets (%d total)", len(all))
		if !filter.IsZero() {
			title = fmt.Sprintf("Assets (%d of %d)", len(assets), len(all))
		}
		r.Header(1, title)

		if len(assets) == 0 {
			if len(all) == 0 {
				r.Muted("No assets yet.")
			} else {
				r.Muted("No assets match the current filters.")
			}
			return nil
		}

		rows := make([][]string, 0, len(assets))
		for _, a := range assets {
			rows = append(rows, []string{
				a.ID,
				a.Name,
				string(a.Kind()),
				string(a.RegTag.OrNone()),
				yesNo(a.PII),
				details(r, a),
				a.CreatedAt,
			})
		}
		r.Table([]string{"ID", "NAME", "TYPE", "REG TAG", "PII", "DETAILS", "CREATED"}, rows)
	}

	return nil
}

// filter validates the options and converts them into a catalog filter.
func (o *ListOptions) filter() (catalog.Filter, error) {
	kind, err := choice("kind", o.Kind, kindNames())
	if err != nil {
		return catalog.Filter{}, err
	}
	regTag, err := choice("reg-tag", o.RegTag, regTagNames())
	if err != nil {
		return catalog.Filter{}, err
	}
	return catalog.Filter{Search: strings.TrimSpace(o.Search), Kind: kind, RegTag: regTag}, nil
}

// details summarizes the kind-specific payload of a.
func details(r *output.Renderer, a core.Asset) string {
	switch p := a.Payload.(type) {
	case core.ClaimData:
		parts := []string{r.Amount(p.Amount), string(p.Status)}
		if p.PolicyID != "" {
			parts = append(parts, "policy "+p.PolicyID)
		}
		return strings.Join(parts, ", ")
	case core.ModelData:
		if len(p.SourceClaimIDs) == 0 {
			return "no sources"
		}
		return "sources " + strings.Join(p.SourceClaimIDs, ", ")
	}
	return ""
}

// choice matches value case-insensitively against allowed, returning the
// canonical spelling. Empty and "all" select everything.
func choice(flag, value string, allowed []string) (string, error) {
	value = strings.TrimSpace(value)
	if value == "" || strings.EqualFold(value, catalog.All) {
		return catalog.All, nil
	}
	for _, a := range allowed {
		if strings.EqualFold(value, a) {
			return a, nil
		}
	}
	return "", fmt.Errorf("invalid --%s %q: must be one of %s", flag, value, strings.Join(allowed, ", "))
}

func kindNames() []string {
	out := make([]string, 0, len(core.AllKinds))
	for _, k := range core.AllKinds {
		out = append(out, string(k))
	}
	return out
}

func regTagNames() []string {
	out := make([]string, 0, len(core.AllRegTags))
	for _, t := range core.AllRegTags {
		out = append(out, string(t))
	}
	return out
}

func statusNames() []string {
	out := make([]string, 0, len(core.AllClaimStatuses))
	for _, s := range core.AllClaimStatuses {
		out = append(out, string(s))
	}
	return out
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
