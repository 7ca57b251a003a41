package versiontree

import "github.com/collaboreats/collaboreats/internal/types"

// Stats summarizes the shape of a built tree.
type Stats struct {
	RootID      string `json:"root_id"`
	Versions    int    `json:"versions"` // placed nodes including the root
	Skipped     int    `json:"skipped"`
	MaxDepth    int    `json:"max_depth"`
	Leaves      int    `json:"leaves"`
	WidestDepth int    `json:"widest_depth"`
	Width       int    `json:"width"`
}

// Summarize computes Stats for a build result.
func Summarize(res *Result) Stats {
	s := Stats{Skipped: len(res.Diagnostics)}
	if res.Tree == nil {
		return s
	}
	s.RootID = res.Tree.ID

	// Depth and width are measured on placed nodes only; the depth index
	// also holds records that were later skipped.
	width := map[int]int{}
	res.Tree.Walk(func(n *types.TreeNode) bool {
		s.Versions++
		if len(n.Children) == 0 {
			s.Leaves++
		}
		if n.Depth > s.MaxDepth {
			s.MaxDepth = n.Depth
		}
		width[n.Depth]++
		return true
	})
	for d := 0; d <= s.MaxDepth; d++ {
		if width[d] > s.Width {
			s.WidestDepth, s.Width = d, width[d]
		}
	}
	return s
}
