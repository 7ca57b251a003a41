package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/collaboreats/collaboreats/internal/debug"
	"github.com/collaboreats/collaboreats/internal/recipefile"
	"github.com/collaboreats/collaboreats/internal/ui"
)

var importDryRun bool

var importCmd = &cobra.Command{
	Use:     "import <file>",
	GroupID: "data",
	Short:   "Import recipes and forks from a TOML or YAML file",
	Long: `Import recipes from a .toml or .yaml file. Each entry has a key; an entry
with fork_of becomes a fork of the entry with that key, or of an existing
recipe when no entry matches. Entries may appear in any order.

  [[recipe]]
  key = "lasagna"
  title = "Lasagna"
  owner = "ana"

  [[recipe]]
  key = "vegan"
  fork_of = "lasagna"
  title = "Vegan lasagna"

The whole file is validated before anything is written.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := recipefile.Load(args[0])
		if err != nil {
			return err
		}
		if importDryRun {
			if jsonOutput {
				return outputJSON(map[string]any{"valid": true, "recipes": len(f.Recipes)})
			}
			fmt.Printf("%s %s is valid (%d recipes)\n", ui.RenderPass("✓"), args[0], len(f.Recipes))
			return nil
		}

		imported, err := recipefile.Import(rootCtx, store, f, getActor())
		for _, im := range imported {
			debug.LogEvent(dataDir(), debug.EventImport, im.ID, getActor(), "key="+im.Key)
		}
		if err != nil {
			return withHint(fmt.Errorf("import %s: %w", args[0], err),
				fmt.Sprintf("%d recipe(s) were created before the failure", len(imported)))
		}

		if jsonOutput {
			return outputJSON(imported)
		}
		for _, im := range imported {
			debug.PrintNormal("  %s %s\n", ui.RenderID(im.ID, im.ParentID == ""), ui.RenderMuted(im.Key))
		}
		fmt.Printf("%s Imported %d recipe(s) from %s\n", ui.RenderPass("✓"), len(imported), args[0])
		return nil
	},
}

func init() {
	importCmd.Flags().BoolVar(&importDryRun, "dry-run", false, "Validate the file without importing")
	rootCmd.AddCommand(importCmd)
}
