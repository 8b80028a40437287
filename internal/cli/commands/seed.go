package commands

import (
	"context"
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/metacatalog/internal/cli/output"
	"github.com/leapstack-labs/metacatalog/internal/seed"
)

// SeedOptions holds options for the seed command.
type SeedOptions struct {
	Owner string
}

// NewSeedCommand creates the seed command.
func NewSeedCommand() *cobra.Command {
	opts := &SeedOptions{}

	cmd := &cobra.Command{
		Use:   "seed [file]",
		Short: "Load assets from a YAML seed file",
		Long: `Create the assets listed in a YAML seed file.

Entries may carry a "ref" key; claims name their policy and models name
their source claims by ref, so a seed file can describe a linked catalog
before any IDs exist. Policies are created first, then claims, then models.

Without an argument, the file configured as seed.file is used.`,
		Example: `  # Load a seed file
  metacatalog seed testdata/seed.yaml

  # Show the assigned IDs as JSON
  metacatalog seed testdata/seed.yaml --output json`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmdCtx, cleanup, err := NewCommandContext(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			path := cmdCtx.Cfg.Seed.File
			if len(args) == 1 {
				path = args[0]
			}
			if path == "" {
				return fmt.Errorf("no seed file given\nHint: pass a file or set seed.file in metacatalog.yaml")
			}
			return runSeed(cmd.Context(), cmdCtx, path, opts.Owner)
		},
	}

	cmd.Flags().StringVar(&opts.Owner, "owner", DefaultOwner, "Owner recorded on the seeded assets")

	return cmd
}

// SeedOutput is the JSON shape of the seed command.
type SeedOutput struct {
	File    string            `json:"file"`
	Created int               `json:"created"`
	IDs     []string          `json:"ids"`
	Refs    map[string]string `json:"refs"`
}

func runSeed(ctx context.Context, cmdCtx *CommandContext, path, owner string) error {
	doc, err := seed.ParseFile(path)
	if err != nil {
		return err
	}

	res, err := seed.Apply(ctx, cmdCtx.Service, doc, owner)
	if err != nil {
		if res != nil && len(res.IDs) > 0 {
			cmdCtx.Logger.Warn("seed stopped early", "created", len(res.IDs))
		}
		return fmt.Errorf("failed to seed %s: %w", path, err)
	}

	r := cmdCtx.Renderer
	if r.EffectiveMode() == output.ModeJSON {
		return r.JSON(SeedOutput{File: path, Created: len(res.IDs), IDs: res.IDs, Refs: res.Refs})
	}

	r.Success(fmt.Sprintf("Seeded %d assets from %s", len(res.IDs), path))
	if len(res.Refs) == 0 {
		return nil
	}

	refs := make([]string, 0, len(res.Refs))
	for ref := range res.Refs {
		refs = append(refs, ref)
	}
	sort.Strings(refs)

	rows := make([][]string, 0, len(refs))
	for _, ref := range refs {
		rows = append(rows, []string{ref, res.Refs[ref]})
	}
	r.Println("")
	r.Table([]string{"REF", "ID"}, rows)
	return nil
}
