// Package edge defines weighted co-citation edges and aggregates them from
// per-record node sets.
package edge

import (
	"errors"
)

// Kind names the entity kind an edge connects.
type Kind string

const (
	KindAuthor      Kind = "author"
	KindInstitution Kind = "institution"
)

// Edge is an undirected co-citation edge between two nodes of one kind.
// Weight counts the records in which both nodes were cited.
type Edge struct {
	// Identity: (Source, Target) with Source < Target
	Source int `json:"source"`
	Target int `json:"target"`

	Weight int `json:"weight"`
}

// Validation errors.
var (
	ErrInvalidNodeID     = errors.New("node IDs must be positive")
	ErrSelfEdge          = errors.New("source and target cannot be the same")
	ErrNotCanonical      = errors.New("source must be less than target")
	ErrNonPositiveWeight = errors.New("weight must be positive")
	ErrDuplicateEdge     = errors.New("duplicate edge")
)

// Validate checks that the edge is in canonical orientation with a positive weight.
func (e *Edge) Validate() error {
	if e.Source <= 0 || e.Target <= 0 {
		return ErrInvalidNodeID
	}
	if e.Source == e.Target {
		return ErrSelfEdge
	}
	if e.Source > e.Target {
		return ErrNotCanonical
	}
	if e.Weight <= 0 {
		return ErrNonPositiveWeight
	}
	return nil
}

// Pair is an unordered node pair stored in canonical orientation.
type Pair struct {
	Source int
	Target int
}

// NewPair returns the canonical pair for u and v (smaller ID first).
func NewPair(u, v int) Pair {
	if u > v {
		u, v = v, u
	}
	return Pair{Source: u, Target: v}
}

// FindDuplicateEdges finds pairs that appear more than once in the list.
// Returns a map of Pair to count for pairs that appear more than once.
func FindDuplicateEdges(edges []Edge) map[Pair]int {
	counts := make(map[Pair]int)
	for _, e := range edges {
		counts[NewPair(e.Source, e.Target)]++
	}

	duplicates := make(map[Pair]int)
	for key, count := range counts {
		if count > 1 {
			duplicates[key] = count
		}
	}
	return duplicates
}
