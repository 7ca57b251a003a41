package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/collaboreats/collaboreats/internal/config"
	"github.com/collaboreats/collaboreats/internal/storage"
	"github.com/collaboreats/collaboreats/internal/ui"
)

var historyLimit int

var historyCmd = &cobra.Command{
	Use:     "history",
	GroupID: "views",
	Short:   "Show the database commit log (dolt backend)",
	Long: `Show the most recent commits of a versioned store. Every create, fork and
comment is its own commit on the dolt backend; other backends have no
history.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		vs, ok := storage.AsVersioned(store)
		if !ok {
			return withHint(fmt.Errorf("the %s backend keeps no history", backendName()), "Use --backend dolt, or set backend: dolt in config.yaml")
		}
		commits, err := vs.Log(rootCtx, historyLimit)
		if err != nil {
			return fmt.Errorf("read history: %w", err)
		}
		if jsonOutput {
			if commits == nil {
				commits = []storage.CommitInfo{}
			}
			return outputJSON(commits)
		}
		for _, c := range commits {
			hash := c.Hash
			if len(hash) > 8 {
				hash = hash[:8]
			}
			fmt.Printf("%s %s %s %s\n", ui.RenderAccent(hash), ui.RenderMuted(c.Date.Local().Format("2006-01-02 15:04")),
				ui.RenderOwner(c.Committer), ui.FirstLine(c.Message))
		}
		return nil
	},
}

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "Number of commits")
	rootCmd.AddCommand(historyCmd)
}

func backendName() string {
	if b := config.Store().Backend; b != "" {
		return b
	}
	return "sqlite"
}
