// Package viz renders a co-citation network as a standalone Cytoscape.js page.
package viz

import "github.com/matsen/cocite/internal/edge"

// GraphData contains all data needed to render the visualization.
type GraphData struct {
	Kind  edge.Kind `json:"kind"`
	Nodes []Node    `json:"nodes"`
	Edges []Edge    `json:"edges"`
}

// Node is an author or institution in the graph.
type Node struct {
	ID   string `json:"id"` // "a3", "i7"
	Kind string `json:"kind"`

	// Display
	Label string `json:"label"`

	// Author-specific fields (for tooltips)
	ORCID string `json:"orcid,omitempty"`

	// Institution-specific fields (for tooltips)
	Country string `json:"country,omitempty"`
	Type    string `json:"type,omitempty"`

	// Sizing
	Degree   int `json:"degree"`
	Strength int `json:"strength"` // sum of incident edge weights
}

// Edge is a weighted co-citation edge between two graph nodes.
type Edge struct {
	Source string `json:"source"`
	Target string `json:"target"`
	Weight int    `json:"weight"`
}

// IsEmpty returns true if the graph has no nodes.
func (g *GraphData) IsEmpty() bool {
	return len(g.Nodes) == 0
}

// MaxStrength returns the largest node strength, at least 1.
func (g *GraphData) MaxStrength() int {
	m := 1
	for _, n := range g.Nodes {
		if n.Strength > m {
			m = n.Strength
		}
	}
	return m
}

// MaxWeight returns the largest edge weight, at least 1.
func (g *GraphData) MaxWeight() int {
	m := 1
	for _, e := range g.Edges {
		if e.Weight > m {
			m = e.Weight
		}
	}
	return m
}
