// Package render writes fork trees as indented text, Mermaid flowcharts,
// JSON or YAML.
package render

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/collaboreats/collaboreats/internal/types"
	"github.com/collaboreats/collaboreats/internal/versiontree"
)

// Format names an output format.
type Format string

const (
	FormatText    Format = "text"
	FormatMermaid Format = "mermaid"
	FormatJSON    Format = "json"
	FormatYAML    Format = "yaml"
)

// Formats lists the accepted --format values.
var Formats = []Format{FormatText, FormatMermaid, FormatJSON, FormatYAML}

// ParseFormat validates a --format value. Empty means text.
func ParseFormat(s string) (Format, error) {
	if s == "" {
		return FormatText, nil
	}
	for _, f := range Formats {
		if strings.EqualFold(s, string(f)) {
			return f, nil
		}
	}
	names := make([]string, len(Formats))
	for i, f := range Formats {
		names[i] = string(f)
	}
	return "", fmt.Errorf("unknown format %q (want one of: %s)", s, strings.Join(names, ", "))
}

// Styles colors the parts of a text tree. Nil funcs leave text plain.
type Styles struct {
	ID    func(id string, root bool) string
	Owner func(owner string) string
	Depth func(depth int) string
	Muted func(string) string
	Warn  func(string) string
}

func (s Styles) id(id string, root bool) string {
	if s.ID == nil {
		return id
	}
	return s.ID(id, root)
}

func (s Styles) owner(o string) string {
	if s.Owner == nil {
		return "@" + o
	}
	return s.Owner(o)
}

func (s Styles) muted(v string) string {
	if s.Muted == nil {
		return v
	}
	return s.Muted(v)
}

func (s Styles) warn(v string) string {
	if s.Warn == nil {
		return v
	}
	return s.Warn(v)
}

// Tree writes res in format. Text and Mermaid render only the tree; JSON
// and YAML include the diagnostics as well.
func Tree(w io.Writer, format Format, res *versiontree.Result, tr *TreeRenderer) error {
	switch format {
	case FormatText, "":
		if tr == nil {
			tr = &TreeRenderer{}
		}
		return tr.Render(w, res.Tree)
	case FormatMermaid:
		return Mermaid(w, res.Tree)
	case FormatJSON:
		return JSON(w, res)
	case FormatYAML:
		return YAML(w, res)
	}
	return fmt.Errorf("unknown format %q", format)
}

// JSON writes v indented.
func JSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// YAML writes v as a YAML document.
func YAML(w io.Writer, v any) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return err
	}
	return enc.Close()
}

// Diagnostics writes one warning line per skipped record.
func Diagnostics(w io.Writer, diags []versiontree.Diagnostic, s Styles) error {
	for _, d := range diags {
		id := d.RecordID
		if id == "" {
			id = fmt.Sprintf("#%d", d.Position)
		}
		if _, err := fmt.Fprintf(w, "%s %s: %s\n", s.warn("skipped"), id, d.Reason); err != nil {
			return err
		}
	}
	return nil
}

// label is "ID: Title" for a node.
func label(n *types.TreeNode) string {
	if n.Label == "" {
		return n.ID
	}
	return n.ID + ": " + n.Label
}
