package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/collaboreats/collaboreats/internal/forktree"
	"github.com/collaboreats/collaboreats/internal/recipefile"
)

var (
	exportOutput string
	exportFormat string
)

var exportCmd = &cobra.Command{
	Use:     "export <id>",
	GroupID: "data",
	Short:   "Export a recipe's whole tree as TOML or YAML",
	Long: `Export every version of the tree a recipe belongs to in the format
ce import reads. Keys are the stored ids.

Examples:
  ce export rc-1a2b3c > lasagna.toml
  ce export rc-1a2b3c -o lasagna.yaml`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		format := recipefile.Format(exportFormat)
		if exportOutput != "" && !cmd.Flags().Changed("format") {
			f, err := recipefile.FormatFromPath(exportOutput)
			if err != nil {
				return err
			}
			format = f
		}

		view, err := svc.TreeFor(rootCtx, args[0])
		if err != nil && !errors.Is(err, forktree.ErrIncomplete) {
			return fmt.Errorf("tree %s: %w", args[0], err)
		}
		file := recipefile.FromVersionSet(view.Set)

		out := os.Stdout
		if exportOutput != "" {
			f, err := os.Create(exportOutput) // #nosec G304 -- user-supplied output path
			if err != nil {
				return fmt.Errorf("create %s: %w", exportOutput, err)
			}
			defer func() { _ = f.Close() }()
			out = f
		}
		if err := file.Encode(out, format); err != nil {
			return fmt.Errorf("encode %s: %w", format, err)
		}
		if exportOutput != "" && !jsonOutput {
			fmt.Fprintf(os.Stderr, "Exported %d version(s) to %s\n", len(file.Recipes), exportOutput)
		}
		return nil
	},
}

func init() {
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "Write to this file instead of stdout")
	exportCmd.Flags().StringVar(&exportFormat, "format", string(recipefile.FormatTOML), "toml or yaml")
	rootCmd.AddCommand(exportCmd)
}
