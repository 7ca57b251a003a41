package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/collaboreats/collaboreats/internal/debug"
	"github.com/collaboreats/collaboreats/internal/types"
	"github.com/collaboreats/collaboreats/internal/ui"
)

var (
	commentFile      string
	commentLocalTime bool
)

var commentsCmd = &cobra.Command{
	Use:     "comments <id>",
	GroupID: "recipes",
	Aliases: []string{"comment"},
	Short:   "View or add comments on a recipe version",
	Long: `View or add comments on a recipe version.

Examples:
  # List all comments on a version
  ce comments rc-1a2b3c

  # Add a comment
  ce comments add rc-1a2b3c "Needs more garlic"

  # Add a comment from a file
  ce comments add rc-1a2b3c -f notes.md`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		recipeID := args[0]
		if _, err := store.GetRecipe(rootCtx, recipeID); err != nil {
			return fmt.Errorf("get recipe %s: %w", recipeID, err)
		}
		comments, err := store.GetComments(rootCtx, recipeID)
		if err != nil {
			return fmt.Errorf("get comments: %w", err)
		}

		// Normalize nil to empty slice for consistent JSON output
		if comments == nil {
			comments = make([]*types.Comment, 0)
		}
		if jsonOutput {
			return outputJSON(comments)
		}

		if len(comments) == 0 {
			fmt.Printf("No comments on %s\n", recipeID)
			return nil
		}
		fmt.Printf("\nComments on %s:\n\n", recipeID)
		for _, c := range comments {
			ts := c.CreatedAt
			if commentLocalTime {
				ts = ts.Local()
			}
			fmt.Printf("[%s] at %s\n", ui.RenderOwner(c.Author), ts.Format("2006-01-02 15:04"))
			rendered := ui.RenderMarkdown(c.Text)
			for _, line := range strings.Split(strings.TrimRight(rendered, "\n"), "\n") {
				fmt.Printf("  %s\n", line)
			}
			fmt.Println()
		}
		return nil
	},
}

var commentsAddCmd = &cobra.Command{
	Use:   "add <id> [text]",
	Short: "Add a comment to a recipe version",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		recipeID := args[0]

		var text string
		switch {
		case commentFile != "":
			t, err := readTextArg(commentFile)
			if err != nil {
				return err
			}
			text = t
		case len(args) == 2:
			text = args[1]
		default:
			return withHint(fmt.Errorf("comment text is required"), "ce comments add <id> \"text\", or -f file")
		}

		c, err := store.AddComment(rootCtx, recipeID, getActor(), text)
		if err != nil {
			return fmt.Errorf("add comment: %w", err)
		}
		debug.LogEvent(dataDir(), debug.EventComment, recipeID, getActor(), fmt.Sprintf("comment=%d", c.ID))

		if jsonOutput {
			return outputJSON(c)
		}
		fmt.Printf("Comment added to %s\n", recipeID)
		return nil
	},
}

func init() {
	commentsCmd.Flags().BoolVar(&commentLocalTime, "local-time", false, "Show timestamps in local time")
	commentsAddCmd.Flags().StringVarP(&commentFile, "file", "f", "", "Read comment text from a file (- for stdin)")
	commentsCmd.AddCommand(commentsAddCmd)
	rootCmd.AddCommand(commentsCmd)
}
