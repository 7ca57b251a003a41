package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/collaboreats/collaboreats/internal/config"
	"github.com/collaboreats/collaboreats/internal/debug"
	"github.com/collaboreats/collaboreats/internal/forktree"
	"github.com/collaboreats/collaboreats/internal/render"
	"github.com/collaboreats/collaboreats/internal/types"
	"github.com/collaboreats/collaboreats/internal/ui"
)

var (
	treeFormat   string
	treeStrict   bool
	treeMaxDepth int
	treeAll      bool
	treeNoOwner  bool
	treeDepths   bool
	treeWatch    bool
)

var treeCmd = &cobra.Command{
	Use:     "tree [id]",
	GroupID: "views",
	Short:   "Show the fork tree a recipe belongs to",
	Long: `Show the fork tree of a recipe. Any version id works; the whole tree
from its root is drawn.

Records whose ancestry cannot be resolved are skipped and reported as
warnings. With --strict (or tree.strict in config) they make the command
fail after the partial tree is printed.

Formats:
  text     box-drawing tree (default)
  mermaid  flowchart for markdown renderers
  json     {tree, diagnostics, placed}; the tree uses {id, name, children}
  yaml     same as json

Examples:
  ce tree rc-1a2b3c
  ce tree rc-1a2b3c --format mermaid > tree.mmd
  ce tree --all --max-depth 2
  ce tree rc-1a2b3c --watch`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		format, err := render.ParseFormat(treeFormat)
		if err != nil {
			return err
		}
		if jsonOutput && !cmd.Flags().Changed("format") {
			format = render.FormatJSON
		}
		if cmd.Flags().Changed("strict") {
			config.Set("tree.strict", treeStrict)
			svc = newService(store)
		}
		if !cmd.Flags().Changed("max-depth") {
			treeMaxDepth = config.GetInt("tree.max-depth")
		}

		switch {
		case treeAll && len(args) > 0:
			return fmt.Errorf("--all takes no recipe id")
		case treeAll:
			return showAllTrees(rootCtx, format)
		case len(args) == 0:
			return withHint(fmt.Errorf("a recipe id is required"), "ce tree <id>, or ce tree --all")
		case treeWatch:
			return watchTree(rootCtx, args[0], format)
		}
		return showTree(rootCtx, args[0], format)
	},
}

func treeRenderer() *render.TreeRenderer {
	return &render.TreeRenderer{
		MaxDepth:  treeMaxDepth,
		ShowOwner: !treeNoOwner,
		ShowDepth: treeDepths,
		Styles:    treeStyles(),
	}
}

// showTree builds and prints the tree containing id.
func showTree(ctx context.Context, id string, format render.Format) error {
	view, err := svc.TreeFor(ctx, id)
	if err != nil && !errors.Is(err, forktree.ErrIncomplete) {
		return fmt.Errorf("tree %s: %w", id, err)
	}
	if rerr := printView(view, format); rerr != nil {
		return rerr
	}
	return err
}

func printView(view *forktree.View, format render.Format) error {
	if err := render.Tree(os.Stdout, format, view.Result, treeRenderer()); err != nil {
		return err
	}
	reportDiagnostics(view)
	return nil
}

// reportDiagnostics warns about skipped records on stderr and logs them.
// JSON and YAML already carry them in the document.
func reportDiagnostics(view *forktree.View) {
	diags := view.Result.Diagnostics
	if len(diags) == 0 {
		return
	}
	for _, d := range diags {
		debug.LogEvent(dataDir(), debug.EventTree, view.Set.Root.ID, getActor(), fmt.Sprintf("skipped %s: %s", d.RecordID, d.Reason))
	}
	if jsonOutput || treeFormat == string(render.FormatJSON) || treeFormat == string(render.FormatYAML) {
		return
	}
	_ = render.Diagnostics(os.Stderr, diags, treeStyles())
}

func showAllTrees(ctx context.Context, format render.Format) error {
	// In strict mode the first incomplete tree fails the whole listing.
	views, err := svc.AllTrees(ctx, types.RecipeFilter{Sort: types.DefaultRecipeSortOptions()})
	if err != nil {
		return err
	}

	switch format {
	case render.FormatJSON:
		return render.JSON(os.Stdout, treeResults(views))
	case render.FormatYAML:
		return render.YAML(os.Stdout, treeResults(views))
	}

	if len(views) == 0 {
		fmt.Println("No recipes found.")
		return nil
	}
	for i, view := range views {
		if i > 0 {
			fmt.Println()
		}
		if perr := printView(view, format); perr != nil {
			return perr
		}
	}
	if !quietFlag && format == render.FormatText {
		fmt.Println(ui.RenderMuted(fmt.Sprintf("\n%d tree(s)", len(views))))
	}
	return nil
}

func treeResults(views []*forktree.View) []any {
	out := make([]any, len(views))
	for i, v := range views {
		out[i] = v.Result
	}
	return out
}

func init() {
	treeCmd.Flags().StringVarP(&treeFormat, "format", "f", "text", "Output format: text, mermaid, json, yaml")
	treeCmd.Flags().BoolVar(&treeStrict, "strict", false, "Fail when any record cannot be placed")
	treeCmd.Flags().IntVar(&treeMaxDepth, "max-depth", 0, "Do not draw versions deeper than this (0 = unlimited)")
	treeCmd.Flags().BoolVarP(&treeAll, "all", "a", false, "Show the tree of every root recipe")
	treeCmd.Flags().BoolVar(&treeNoOwner, "no-owner", false, "Hide owners")
	treeCmd.Flags().BoolVar(&treeDepths, "depth", false, "Show version depth badges")
	treeCmd.Flags().BoolVarP(&treeWatch, "watch", "w", false, "Redraw when the database changes")
	rootCmd.AddCommand(treeCmd)
}
