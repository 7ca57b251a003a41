package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/collaboreats/collaboreats/internal/types"
	"github.com/collaboreats/collaboreats/internal/ui"
)

var recentCmd = &cobra.Command{
	Use:     "recent <id>",
	GroupID: "views",
	Short:   "Show the newest version in a recipe's tree",
	Long: `Show the most recently created version in the tree that the given
version belongs to. The root counts too, so a tree without forks
returns its root.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rootID, err := resolveRoot(args[0])
		if err != nil {
			return err
		}
		r, err := store.MostRecentVersion(rootCtx, rootID)
		if err != nil {
			return fmt.Errorf("most recent version of %s: %w", rootID, err)
		}
		if jsonOutput {
			return outputJSON(r)
		}
		fmt.Printf("%s  %s\n", formatRecipeLine(r), ui.RenderMuted(formatCreated(r)))
		return nil
	},
}

var popularCmd = &cobra.Command{
	Use:     "popular <id>",
	GroupID: "views",
	Aliases: []string{"most-forked"},
	Short:   "Show the most forked version in a recipe's tree",
	Long: `Show the version with the most direct forks in the tree that the given
version belongs to. Ties go to the older version.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rootID, err := resolveRoot(args[0])
		if err != nil {
			return err
		}
		fc, err := store.MostForkedVersion(rootCtx, rootID)
		if err != nil {
			return fmt.Errorf("most forked version of %s: %w", rootID, err)
		}
		if jsonOutput {
			return outputJSON(fc)
		}
		fmt.Printf("%s  %s\n", formatRecipeLine(fc.Recipe), ui.RenderAccent(forkCountLabel(fc)))
		return nil
	},
}

func forkCountLabel(fc *types.ForkCount) string {
	if fc.Forks == 1 {
		return "1 fork"
	}
	return fmt.Sprintf("%d forks", fc.Forks)
}

// resolveRoot maps any version id to the root of its tree.
func resolveRoot(id string) (string, error) {
	r, err := store.GetRecipe(rootCtx, id)
	if err != nil {
		return "", fmt.Errorf("get recipe %s: %w", id, err)
	}
	return r.RootID(), nil
}

func init() {
	rootCmd.AddCommand(recentCmd)
	rootCmd.AddCommand(popularCmd)
}
