package viz

import (
	"fmt"
	"strconv"

	"github.com/matsen/cocite/internal/edge"
	"github.com/matsen/cocite/internal/node"
)

// GraphOptions controls which nodes and edges are drawn.
type GraphOptions struct {
	MinWeight    int  // edges lighter than this are dropped
	KeepIsolated bool // keep nodes without any drawn edge
}

// BuildAuthorGraph joins the author node table with its edge table.
func BuildAuthorGraph(authors []node.Author, edges []edge.Edge, opts GraphOptions) (*GraphData, error) {
	nodes := make(map[int]Node, len(authors))
	order := make([]int, 0, len(authors))
	for _, a := range authors {
		nodes[a.ID] = newAuthorNode(a)
		order = append(order, a.ID)
	}
	return assemble(edge.KindAuthor, nodes, order, edges, opts)
}

// BuildInstitutionGraph joins the institution node table with its edge table.
func BuildInstitutionGraph(institutions []node.Institution, edges []edge.Edge, opts GraphOptions) (*GraphData, error) {
	nodes := make(map[int]Node, len(institutions))
	order := make([]int, 0, len(institutions))
	for _, inst := range institutions {
		nodes[inst.ID] = newInstitutionNode(inst)
		order = append(order, inst.ID)
	}
	return assemble(edge.KindInstitution, nodes, order, edges, opts)
}

// assemble attaches edges to nodes, accumulating degree and strength.
func assemble(kind edge.Kind, nodes map[int]Node, order []int, edges []edge.Edge, opts GraphOptions) (*GraphData, error) {
	g := &GraphData{Kind: kind}
	connected := make(map[int]bool)

	for _, e := range edges {
		if e.Weight < opts.MinWeight {
			continue
		}
		src, ok := nodes[e.Source]
		if !ok {
			return nil, fmt.Errorf("data integrity error: edge references unknown %s node %d", kind, e.Source)
		}
		dst, ok := nodes[e.Target]
		if !ok {
			return nil, fmt.Errorf("data integrity error: edge references unknown %s node %d", kind, e.Target)
		}

		src.Degree++
		src.Strength += e.Weight
		dst.Degree++
		dst.Strength += e.Weight
		nodes[e.Source], nodes[e.Target] = src, dst
		connected[e.Source], connected[e.Target] = true, true

		g.Edges = append(g.Edges, Edge{Source: src.ID, Target: dst.ID, Weight: e.Weight})
	}

	for _, id := range order {
		if opts.KeepIsolated || connected[id] {
			g.Nodes = append(g.Nodes, nodes[id])
		}
	}
	return g, nil
}

// nodeID prefixes numeric IDs so that Cytoscape selectors stay valid.
func nodeID(kind edge.Kind, id int) string {
	return string(kind[0]) + strconv.Itoa(id)
}

// newAuthorNode creates a visualization node from an author row.
func newAuthorNode(a node.Author) Node {
	return Node{
		ID:    nodeID(edge.KindAuthor, a.ID),
		Kind:  string(edge.KindAuthor),
		Label: a.Name,
		ORCID: a.ORCID,
	}
}

// newInstitutionNode creates a visualization node from an institution row.
func newInstitutionNode(inst node.Institution) Node {
	return Node{
		ID:      nodeID(edge.KindInstitution, inst.ID),
		Kind:    string(edge.KindInstitution),
		Label:   inst.Name,
		Country: inst.Country,
		Type:    inst.Type,
	}
}
