package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/metacatalog/internal/cli/output"
)

// NewDeleteCommand creates the delete command.
func NewDeleteCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "delete <asset-id>...",
		Short: "Delete catalog assets",
		Long: `Delete one or more assets by ID.

Assets that referenced a deleted asset keep the reference; it simply no
longer resolves, so the lineage edge disappears.`,
		Example: `  # Delete one asset
  metacatalog delete 3f2a9c1e-...`,
		Aliases: []string{"rm"},
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmdCtx, cleanup, err := NewCommandContext(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			return deleteAssets(cmd.Context(), cmdCtx, args)
		},
	}

	return cmd
}

// DeleteOutput is the JSON shape of the delete command.
type DeleteOutput struct {
	Deleted []string `json:"deleted"`
}

func deleteAssets(ctx context.Context, cmdCtx *CommandContext, ids []string) error {
	deleted := make([]string, 0, len(ids))
	for _, id := range ids {
		if err := cmdCtx.Service.Delete(ctx, id); err != nil {
			return fmt.Errorf("failed to delete %s: %w", id, err)
		}
		deleted = append(deleted, id)
	}

	r := cmdCtx.Renderer
	if r.EffectiveMode() == output.ModeJSON {
		return r.JSON(DeleteOutput{Deleted: deleted})
	}
	for _, id := range deleted {
		r.Success("Deleted " + id)
	}
	return nil
}
