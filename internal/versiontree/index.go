package versiontree

// slot identifies a record by the depth it was indexed at and its id.
type slot struct {
	depth int
	id    string
}

// DepthIndex maps each depth to the ids found at that depth, in the order
// they were registered. The root occupies depth 0.
type DepthIndex struct {
	levels [][]string
	rank   map[slot]int
}

func newDepthIndex(capacity int) *DepthIndex {
	return &DepthIndex{rank: make(map[slot]int, capacity)}
}

func (x *DepthIndex) add(depth int, id string) {
	for len(x.levels) <= depth {
		x.levels = append(x.levels, nil)
	}
	x.rank[slot{depth, id}] = len(x.levels[depth])
	x.levels[depth] = append(x.levels[depth], id)
}

// Depths returns the number of depth levels, including depth 0.
func (x *DepthIndex) Depths() int {
	if x == nil {
		return 0
	}
	return len(x.levels)
}

// At returns the ids registered at depth in discovery order. The returned
// slice must not be modified.
func (x *DepthIndex) At(depth int) []string {
	if x == nil || depth < 0 || depth >= len(x.levels) {
		return nil
	}
	return x.levels[depth]
}

// Rank returns the position of id among the ids registered at depth.
func (x *DepthIndex) Rank(depth int, id string) (int, bool) {
	if x == nil {
		return 0, false
	}
	r, ok := x.rank[slot{depth, id}]
	return r, ok
}

// Widest returns the depth with the most ids and how many it holds.
func (x *DepthIndex) Widest() (depth, width int) {
	if x == nil {
		return 0, 0
	}
	for d, ids := range x.levels {
		if len(ids) > width {
			depth, width = d, len(ids)
		}
	}
	return depth, width
}
