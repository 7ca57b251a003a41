package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/collaboreats/collaboreats/internal/debug"
	"github.com/collaboreats/collaboreats/internal/types"
	"github.com/collaboreats/collaboreats/internal/ui"
)

var (
	forkTitle        string
	forkDescription  string
	forkInstructions string
	forkFile         string
	forkIngredients  []string
	forkPhoto        string
	forkOwner        string
	forkID           string
)

var forkCmd = &cobra.Command{
	Use:     "fork <id>",
	GroupID: "recipes",
	Short:   "Create a new version of a recipe",
	Long: `Fork any version of a recipe. The new version starts as a copy of its
parent; flags replace individual fields. Ingredients given with -i replace
the whole list.

Examples:
  ce fork rc-1a2b3c --title "Vegan lasagna" -i "500 g pasta" -i "400 g tofu"
  ce fork rc-4d5e6f --instructions-file steps.md`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		draft := &types.Recipe{
			ID:           forkID,
			Title:        forkTitle,
			OwnerID:      forkOwner,
			Description:  forkDescription,
			Instructions: forkInstructions,
			Photo:        forkPhoto,
		}
		if forkFile != "" {
			text, err := readTextArg(forkFile)
			if err != nil {
				return err
			}
			draft.Instructions = text
		}
		if len(forkIngredients) > 0 {
			ingredients, err := parseIngredients(forkIngredients)
			if err != nil {
				return err
			}
			draft.Ingredients = ingredients
		}
		if draft.OwnerID == "" {
			draft.OwnerID = getActor()
		}

		child, err := store.ForkRecipe(rootCtx, args[0], draft, getActor())
		if err != nil {
			return fmt.Errorf("fork %s: %w", args[0], err)
		}
		debug.LogEvent(dataDir(), debug.EventFork, child.ID, getActor(), "parent="+child.ParentID)

		if jsonOutput {
			return outputJSON(child)
		}
		fmt.Printf("%s Forked %s as %s: %s %s\n", ui.RenderPass("✓"),
			ui.RenderID(child.ParentID, len(child.Path) == 1), ui.RenderID(child.ID, false),
			child.Title, ui.RenderDepth(child.Depth()))
		return nil
	},
}

func init() {
	forkCmd.Flags().StringVarP(&forkTitle, "title", "t", "", "New title (default: parent's)")
	forkCmd.Flags().StringVarP(&forkDescription, "description", "d", "", "New description")
	forkCmd.Flags().StringVar(&forkInstructions, "instructions", "", "New instructions")
	forkCmd.Flags().StringVar(&forkFile, "instructions-file", "", "Read instructions from a file (- for stdin)")
	forkCmd.Flags().StringArrayVarP(&forkIngredients, "ingredient", "i", nil, `Ingredient as "amount unit name" (repeatable; replaces the parent's list)`)
	forkCmd.Flags().StringVar(&forkPhoto, "photo", "", "Photo file name or URL")
	forkCmd.Flags().StringVar(&forkID, "id", "", "Explicit id for the new version (default: generated)")
	forkCmd.Flags().StringVar(&forkOwner, "owner", "", "Owner of the fork (default: actor)")
	rootCmd.AddCommand(forkCmd)
}
