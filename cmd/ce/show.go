package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/collaboreats/collaboreats/internal/types"
	"github.com/collaboreats/collaboreats/internal/ui"
)

var showNoPager bool

var showCmd = &cobra.Command{
	Use:     "show <id>",
	GroupID: "recipes",
	Short:   "Show a recipe version",
	Long: `Show one recipe version: its ancestry, ingredients, and instructions
rendered as markdown.

Examples:
  ce show rc-1a2b3c
  ce show rc-1a2b3c --json`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		r, err := store.GetRecipe(rootCtx, args[0])
		if err != nil {
			return fmt.Errorf("get recipe %s: %w", args[0], err)
		}
		if jsonOutput {
			return outputJSON(r)
		}

		var ancestors []*types.Recipe
		for _, id := range r.Path {
			a, err := store.GetRecipe(rootCtx, id)
			if err != nil {
				WarnError("ancestor %s: %v", id, err)
				continue
			}
			ancestors = append(ancestors, a)
		}
		return ui.ToPager(formatRecipe(r, ancestors), ui.PagerOptions{NoPager: showNoPager})
	},
}

func formatRecipe(r *types.Recipe, ancestors []*types.Recipe) string {
	var b strings.Builder

	fmt.Fprintf(&b, "%s %s\n", ui.RenderID(r.ID, r.IsRoot()), ui.RenderTitle(r.Title))
	fmt.Fprintf(&b, "%s %s  %s\n", ui.RenderOwner(r.OwnerID), ui.RenderDepth(r.Depth()), ui.RenderMuted(formatCreated(r)))
	if r.Description != "" {
		fmt.Fprintf(&b, "\n%s\n", r.Description)
	}

	if len(ancestors) > 0 {
		fmt.Fprintf(&b, "\n%s\n", ui.RenderCategory("Forked from"))
		for i := len(ancestors) - 1; i >= 0; i-- {
			a := ancestors[i]
			fmt.Fprintf(&b, "  %s %s %s\n", ui.RenderID(a.ID, a.IsRoot()), a.Title, ui.RenderOwner(a.OwnerID))
		}
	}

	if len(r.Ingredients) > 0 {
		fmt.Fprintf(&b, "\n%s\n", ui.RenderCategory("Ingredients"))
		for _, in := range r.Ingredients {
			fmt.Fprintf(&b, "  • %s\n", formatIngredient(in))
		}
	}

	if strings.TrimSpace(r.Instructions) != "" {
		fmt.Fprintf(&b, "\n%s\n", ui.RenderCategory("Instructions"))
		b.WriteString(strings.TrimRight(ui.RenderMarkdown(r.Instructions), "\n"))
		b.WriteString("\n")
	}
	if r.Photo != "" {
		fmt.Fprintf(&b, "\n%s %s\n", ui.RenderMuted("Photo:"), r.Photo)
	}
	return b.String()
}

func formatIngredient(in types.Ingredient) string {
	if in.Amount == 0 {
		return in.Ingredient
	}
	amount := strconv.FormatFloat(in.Amount, 'f', -1, 64)
	if in.UnitOfMeasure == "" {
		return amount + " " + in.Ingredient
	}
	return amount + " " + in.UnitOfMeasure + " " + in.Ingredient
}

func init() {
	showCmd.Flags().BoolVar(&showNoPager, "no-pager", false, "Do not pipe output through a pager")
	rootCmd.AddCommand(showCmd)
}
