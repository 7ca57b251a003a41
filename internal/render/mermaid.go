package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/collaboreats/collaboreats/internal/types"
)

// Mermaid writes the tree as a Mermaid.js flowchart: one node statement per
// version in walk order, then one edge per fork.
func Mermaid(w io.Writer, root *types.TreeNode) error {
	var b strings.Builder
	b.WriteString("flowchart TD\n")
	if root == nil {
		_, err := io.WriteString(w, b.String())
		return err
	}

	var edges []string
	root.Walk(func(n *types.TreeNode) bool {
		fmt.Fprintf(&b, "  %s[\"%s\"]\n", mermaidID(n.ID), mermaidEscape(label(n)))
		for _, c := range n.Children {
			edges = append(edges, fmt.Sprintf("  %s --> %s\n", mermaidID(n.ID), mermaidID(c.ID)))
		}
		return true
	})
	if len(edges) > 0 {
		b.WriteString("\n")
		for _, e := range edges {
			b.WriteString(e)
		}
	}

	_, err := io.WriteString(w, b.String())
	return err
}

// mermaidID keeps letters, digits and underscores; anything else becomes _.
func mermaidID(id string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_':
			return r
		}
		return '_'
	}, id)
}

func mermaidEscape(s string) string {
	s = strings.ReplaceAll(s, "\"", "#quot;")
	return strings.ReplaceAll(s, "\n", " ")
}
