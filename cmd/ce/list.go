package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/collaboreats/collaboreats/internal/timeparsing"
	"github.com/collaboreats/collaboreats/internal/types"
	"github.com/collaboreats/collaboreats/internal/ui"
)

var (
	listOwner string
	listSince string
	listAll   bool
	listTree  string
	listSort  string
	listLimit int
)

var listCmd = &cobra.Command{
	Use:     "list",
	GroupID: "recipes",
	Aliases: []string{"ls"},
	Short:   "List recipes",
	Long: `List recipes, newest first.

By default only root recipes are listed. --owner lists every version the
owner created, forks included; --all lists every version of every tree.

Examples:
  ce list
  ce list --owner ana
  ce list --since 7d
  ce list --since "last monday" --sort title
  ce list --tree rc-1a2b3c`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		filter := types.RecipeFilter{
			OwnerID:   listOwner,
			TreeID:    listTree,
			RootsOnly: !listAll && listOwner == "" && listTree == "",
			Sort:      types.DefaultRecipeSortOptions(),
			Limit:     listLimit,
		}
		if listSince != "" {
			t, err := timeparsing.ParseSince(listSince, time.Now())
			if err != nil {
				return withHint(fmt.Errorf("invalid --since: %w", err), `Try "7d", "2w", "2024-01-31" or "last monday"`)
			}
			filter.CreatedAfter = &t
		}
		if listSort != "" {
			opts := types.ParseRecipeSortOrder(listSort)
			if len(opts) == 0 {
				return fmt.Errorf("invalid --sort %q (fields: created, updated, title, depth)", listSort)
			}
			filter.Sort = opts
		}

		recipes, err := store.ListRecipes(rootCtx, filter)
		if err != nil {
			return fmt.Errorf("list recipes: %w", err)
		}
		if recipes == nil {
			recipes = []*types.Recipe{}
		}

		if jsonOutput {
			return outputJSON(recipes)
		}
		if len(recipes) == 0 {
			fmt.Println("No recipes found.")
			return nil
		}
		for _, r := range recipes {
			fmt.Println(formatRecipeLine(r))
		}
		if !quietFlag {
			fmt.Println(ui.RenderMuted(fmt.Sprintf("\n%d recipe(s)", len(recipes))))
		}
		return nil
	},
}

func init() {
	listCmd.Flags().StringVar(&listOwner, "owner", "", "Only recipes created by this owner (roots and forks)")
	listCmd.Flags().StringVar(&listSince, "since", "", `Only recipes created after this time ("7d", "2024-01-31", "yesterday")`)
	listCmd.Flags().BoolVarP(&listAll, "all", "a", false, "Include forks, not only roots")
	listCmd.Flags().StringVar(&listTree, "tree", "", "Only versions of the tree rooted at this id")
	listCmd.Flags().StringVar(&listSort, "sort", "", "Sort order, e.g. created-desc,title-asc")
	listCmd.Flags().IntVarP(&listLimit, "limit", "n", 0, "Maximum number of recipes (0 = all)")
	rootCmd.AddCommand(listCmd)
}
