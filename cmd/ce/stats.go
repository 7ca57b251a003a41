package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/collaboreats/collaboreats/internal/forktree"
	"github.com/collaboreats/collaboreats/internal/types"
	"github.com/collaboreats/collaboreats/internal/ui"
	"github.com/collaboreats/collaboreats/internal/versiontree"
)

var statsCmd = &cobra.Command{
	Use:     "stats [id]",
	GroupID: "views",
	Short:   "Show fork tree statistics",
	Long: `Show statistics for the tree a version belongs to: how many versions,
how deep and how wide it grew. Without an id, every tree is summarized.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var views []*forktree.View
		if len(args) == 1 {
			v, err := svc.TreeFor(rootCtx, args[0])
			if err != nil && !errors.Is(err, forktree.ErrIncomplete) {
				return fmt.Errorf("tree %s: %w", args[0], err)
			}
			views = []*forktree.View{v}
		} else {
			all, err := svc.AllTrees(rootCtx, types.RecipeFilter{Sort: types.DefaultRecipeSortOptions()})
			if err != nil {
				return err
			}
			views = all
		}

		stats := make([]versiontree.Stats, len(views))
		for i, v := range views {
			stats[i] = v.Stats
		}
		if jsonOutput {
			if len(args) == 1 {
				return outputJSON(stats[0])
			}
			return outputJSON(stats)
		}

		if len(stats) == 0 {
			fmt.Println("No recipes found.")
			return nil
		}
		for i, s := range stats {
			if i > 0 {
				fmt.Println(ui.RenderSeparator())
			}
			title := views[i].Set.Root.Title
			fmt.Printf("%s %s\n", ui.RenderID(s.RootID, true), ui.RenderTitle(title))
			fmt.Printf("  Versions:     %d\n", s.Versions)
			fmt.Printf("  Max depth:    %d\n", s.MaxDepth)
			fmt.Printf("  Leaves:       %d\n", s.Leaves)
			fmt.Printf("  Widest level: %d (%d versions)\n", s.WidestDepth, s.Width)
			if s.Skipped > 0 {
				fmt.Println("  " + ui.RenderWarnLine(fmt.Sprintf("Skipped:      %d", s.Skipped)))
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statsCmd)
}
