package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/collaboreats/collaboreats/internal/types"
)

// TreeRenderer draws a tree with box-drawing connectors:
//
//	rc-1a2b3c Lasagna @ana
//	├── rc-4d5e6f Vegan lasagna @bo
//	│   └── rc-7g8h9i Gluten-free vegan lasagna @cy
//	└── rc-0j1k2l Lasagna for two @ana
type TreeRenderer struct {
	// MaxDepth stops descending below this depth; 0 means unlimited.
	MaxDepth  int
	ShowOwner bool
	ShowDepth bool
	Styles    Styles
}

type frame struct {
	node        *types.TreeNode
	linePrefix  string
	childPrefix string
}

// Render writes the tree rooted at root. It walks with an explicit stack,
// so arbitrarily deep chains render without recursion.
func (r *TreeRenderer) Render(w io.Writer, root *types.TreeNode) error {
	if root == nil {
		return nil
	}

	stack := []frame{{node: root}}
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		line := r.formatNode(f.node)
		truncated := r.MaxDepth > 0 && f.node.Depth >= r.MaxDepth && len(f.node.Children) > 0
		if truncated {
			line += r.Styles.warn(fmt.Sprintf(" … (+%d)", f.node.Size()-1))
		}
		if _, err := fmt.Fprintf(w, "%s%s\n", f.linePrefix, line); err != nil {
			return err
		}
		if truncated {
			continue
		}

		kids := f.node.Children
		for i := len(kids) - 1; i >= 0; i-- {
			last := i == len(kids)-1
			conn, cont := "├── ", "│   "
			if last {
				conn, cont = "└── ", "    "
			}
			stack = append(stack, frame{
				node:        kids[i],
				linePrefix:  f.childPrefix + r.Styles.muted(conn),
				childPrefix: f.childPrefix + r.Styles.muted(cont),
			})
		}
	}
	return nil
}

func (r *TreeRenderer) formatNode(n *types.TreeNode) string {
	var b strings.Builder
	b.WriteString(r.Styles.id(n.ID, n.Depth == 0))
	if n.Label != "" {
		b.WriteString(" ")
		b.WriteString(n.Label)
	}
	if r.ShowOwner && n.Owner != "" {
		b.WriteString(" ")
		b.WriteString(r.Styles.owner(n.Owner))
	}
	if r.ShowDepth {
		b.WriteString(" ")
		if r.Styles.Depth != nil {
			b.WriteString(r.Styles.Depth(n.Depth))
		} else if n.Depth == 0 {
			b.WriteString("root")
		} else {
			fmt.Fprintf(&b, "v%d", n.Depth)
		}
	}
	return b.String()
}
