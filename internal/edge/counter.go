package edge

import "sort"

// Counter accumulates co-citation weights per canonical pair.
type Counter struct {
	weights map[Pair]int
}

// NewCounter returns an empty Counter.
func NewCounter() *Counter {
	return &Counter{weights: make(map[Pair]int)}
}

// AddRecord adds one record's resolved node IDs.
//
// IDs are deduplicated first, so a record contributes at most 1 to any pair
// no matter how many of its references resolve to the same nodes. IDs <= 0
// (absent) are ignored. Returns the number of pairs incremented, k(k-1)/2
// for k distinct IDs.
func (c *Counter) AddRecord(ids []int) int {
	set := make(map[int]struct{}, len(ids))
	for _, id := range ids {
		if id > 0 {
			set[id] = struct{}{}
		}
	}

	sorted := make([]int, 0, len(set))
	for id := range set {
		sorted = append(sorted, id)
	}
	sort.Ints(sorted)

	n := 0
	for i := 0; i < len(sorted); i++ {
		for j := i + 1; j < len(sorted); j++ {
			c.weights[Pair{Source: sorted[i], Target: sorted[j]}]++
			n++
		}
	}
	return n
}

// Len returns the number of distinct pairs seen.
func (c *Counter) Len() int {
	return len(c.weights)
}

// Edges returns all pairs as unsorted edges.
func (c *Counter) Edges() []Edge {
	out := make([]Edge, 0, len(c.weights))
	for p, w := range c.weights {
		out = append(out, Edge{Source: p.Source, Target: p.Target, Weight: w})
	}
	return out
}
