// Package pipeline runs the node pass and the edge pass over a record corpus.
package pipeline

import (
	"context"
	"errors"
	"fmt"

	"github.com/matsen/cocite/internal/edge"
	"github.com/matsen/cocite/internal/logging"
	"github.com/matsen/cocite/internal/metrics"
	"github.com/matsen/cocite/internal/node"
	"github.com/matsen/cocite/internal/record"
	"github.com/matsen/cocite/internal/resolve"
	"github.com/matsen/cocite/internal/topic"
)

// ErrNoWorks is returned by the node pass when no record references any work.
var ErrNoWorks = errors.New("no referenced works found")

// Pipeline drives both passes through one shared resolver.
type Pipeline struct {
	resolver *resolve.Resolver
	logger   *logging.Logger
	metrics  *metrics.Recorder
	workers  int
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithLogger sets the logger for pass summaries.
func WithLogger(l *logging.Logger) Option {
	return func(p *Pipeline) {
		p.logger = l
	}
}

// WithMetrics sets the recorder for node and edge gauges.
func WithMetrics(m *metrics.Recorder) Option {
	return func(p *Pipeline) {
		p.metrics = m
	}
}

// WithWorkers prefetches works with n concurrent lookups before each pass.
// With n <= 1 works are fetched one by one as the pass reaches them.
func WithWorkers(n int) Option {
	return func(p *Pipeline) {
		p.workers = n
	}
}

// New creates a Pipeline around r.
func New(r *resolve.Resolver, opts ...Option) *Pipeline {
	p := &Pipeline{
		resolver: r,
		logger:   logging.Nop(),
		workers:  1,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Resolver returns the shared resolver.
func (p *Pipeline) Resolver() *resolve.Resolver {
	return p.resolver
}

// NodeResult is the output of the node pass.
type NodeResult struct {
	Works        int                `json:"works"`
	Authors      []node.Author      `json:"authors"`
	Institutions []node.Institution `json:"institutions"`
}

// BuildNodes resolves every unique referenced work in sorted order and
// assigns node IDs to representatives in first-seen order.
func (p *Pipeline) BuildNodes(ctx context.Context, records []record.Record) (*NodeResult, error) {
	ids := record.UniqueWorkIDs(records)
	if len(ids) == 0 {
		return nil, ErrNoWorks
	}
	p.logger.Info("node pass", "works", len(ids))

	if err := p.prefetch(ctx, ids); err != nil {
		return nil, err
	}

	b := node.NewBuilder()
	for _, id := range ids {
		reps, err := p.resolver.Lookup(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("resolving %s: %w", id, err)
		}
		if reps.Author != nil {
			b.AddAuthor(*reps.Author)
		}
		if reps.Institution != nil {
			b.AddInstitution(*reps.Institution)
		}
	}

	res := &NodeResult{
		Works:        len(ids),
		Authors:      b.Authors(),
		Institutions: b.Institutions(),
	}
	p.metrics.SetNodes(string(edge.KindAuthor), len(res.Authors))
	p.metrics.SetNodes(string(edge.KindInstitution), len(res.Institutions))
	p.logger.Info("nodes built", "authors", len(res.Authors), "institutions", len(res.Institutions))
	return res, nil
}

// EdgeResult is the output of the edge pass.
type EdgeResult struct {
	Records          int         `json:"records"`
	AuthorPairs      int         `json:"author_pairs"`
	InstitutionPairs int         `json:"institution_pairs"`
	AuthorEdges      []edge.Edge `json:"author_edges"`
	InstitutionEdges []edge.Edge `json:"institution_edges"`
}

// BuildEdges resolves each record's references to node IDs through reg and
// counts co-occurring pairs, then exports edges of at least minWeight.
func (p *Pipeline) BuildEdges(ctx context.Context, records []record.Record, reg *node.Registry, minWeight int) (*EdgeResult, error) {
	p.logger.Info("edge pass", "records", len(records), "min_weight", minWeight)

	if err := p.prefetch(ctx, record.UniqueWorkIDs(records)); err != nil {
		return nil, err
	}

	nr := p.resolver.Bind(reg)
	authors := edge.NewCounter()
	institutions := edge.NewCounter()

	for _, rec := range records {
		aIDs, iIDs, err := resolveRecord(ctx, nr, rec)
		if err != nil {
			return nil, err
		}
		authors.AddRecord(aIDs)
		institutions.AddRecord(iIDs)
	}

	res := &EdgeResult{
		Records:          len(records),
		AuthorPairs:      authors.Len(),
		InstitutionPairs: institutions.Len(),
		AuthorEdges:      edge.Export(authors, minWeight),
		InstitutionEdges: edge.Export(institutions, minWeight),
	}
	p.metrics.SetEdgesExported(string(edge.KindAuthor), len(res.AuthorEdges))
	p.metrics.SetEdgesExported(string(edge.KindInstitution), len(res.InstitutionEdges))
	p.logger.Info("edges built",
		"author_edges", len(res.AuthorEdges),
		"institution_edges", len(res.InstitutionEdges))
	return res, nil
}

// RunResult is the output of a full run.
type RunResult struct {
	Nodes *NodeResult `json:"nodes"`
	Edges *EdgeResult `json:"edges"`
}

// Run builds nodes, indexes them and builds edges, reusing every lookup of
// the node pass in the edge pass.
func (p *Pipeline) Run(ctx context.Context, records []record.Record, minWeight int) (*RunResult, error) {
	nodes, err := p.BuildNodes(ctx, records)
	if err != nil {
		return nil, err
	}
	reg, err := node.NewRegistry(nodes.Authors, nodes.Institutions)
	if err != nil {
		return nil, fmt.Errorf("indexing nodes: %w", err)
	}
	edges, err := p.BuildEdges(ctx, records, reg, minWeight)
	if err != nil {
		return nil, err
	}
	return &RunResult{Nodes: nodes, Edges: edges}, nil
}

// TopicResult holds per-node topic tallies for both kinds.
type TopicResult struct {
	Authors      *topic.Tally
	Institutions *topic.Tally
}

// AttributeTopics counts, for each node, the citing records of each topic.
// A record's topic is looked up by its ID; unassigned records count as Unknown.
func (p *Pipeline) AttributeTopics(ctx context.Context, records []record.Record, reg *node.Registry, assign topic.Assignments) (*TopicResult, error) {
	if err := p.prefetch(ctx, record.UniqueWorkIDs(records)); err != nil {
		return nil, err
	}

	nr := p.resolver.Bind(reg)
	res := &TopicResult{Authors: topic.NewTally(), Institutions: topic.NewTally()}
	for _, rec := range records {
		aIDs, iIDs, err := resolveRecord(ctx, nr, rec)
		if err != nil {
			return nil, err
		}
		t := assign.Topic(rec.ID)
		res.Authors.Add(t, aIDs)
		res.Institutions.Add(t, iIDs)
	}
	return res, nil
}

// resolveRecord returns the known author and institution node IDs of a
// record's references. Absent representatives are left out.
func resolveRecord(ctx context.Context, nr *resolve.NodeResolver, rec record.Record) (authors, institutions []int, err error) {
	for _, ref := range rec.References {
		res, err := nr.Resolve(ctx, ref)
		if err != nil {
			return nil, nil, fmt.Errorf("record %s: resolving %s: %w", rec.ID, ref, err)
		}
		if res.AuthorID > 0 {
			authors = append(authors, res.AuthorID)
		}
		if res.InstitutionID > 0 {
			institutions = append(institutions, res.InstitutionID)
		}
	}
	return authors, institutions, nil
}

func (p *Pipeline) prefetch(ctx context.Context, ids []string) error {
	if p.workers <= 1 {
		return nil
	}
	if err := p.resolver.Prefetch(ctx, ids, p.workers); err != nil {
		return fmt.Errorf("prefetching works: %w", err)
	}
	return nil
}
