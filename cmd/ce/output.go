package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/collaboreats/collaboreats/internal/render"
	"github.com/collaboreats/collaboreats/internal/types"
	"github.com/collaboreats/collaboreats/internal/ui"
)

// outputJSON outputs data as pretty-printed JSON to stdout.
func outputJSON(v interface{}) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(v); err != nil {
		return fmt.Errorf("encoding JSON: %w", err)
	}
	return nil
}

// treeStyles colors text trees with the ui palette.
func treeStyles() render.Styles {
	return render.Styles{
		ID:    ui.RenderID,
		Owner: ui.RenderOwner,
		Depth: ui.RenderDepth,
		Muted: ui.RenderMuted,
		Warn:  ui.RenderWarn,
	}
}

// formatRecipeLine is the one-line listing form of a recipe.
func formatRecipeLine(r *types.Recipe) string {
	var b strings.Builder
	b.WriteString(ui.RenderID(r.ID, r.IsRoot()))
	b.WriteString(" ")
	b.WriteString(ui.TruncateSimple(r.Title, 60))
	b.WriteString(" ")
	b.WriteString(ui.RenderOwner(r.OwnerID))
	if !r.IsRoot() {
		b.WriteString(" ")
		b.WriteString(ui.RenderDepth(r.Depth()))
		b.WriteString(ui.RenderMuted(" of " + r.RootID()))
	}
	return b.String()
}

func formatCreated(r *types.Recipe) string {
	return r.CreatedAt.Local().Format("2006-01-02 15:04")
}
