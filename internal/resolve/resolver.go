// Package resolve turns referenced work IDs into representative authors and
// institutions, fetching each unique work at most once.
package resolve

import (
	"context"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/matsen/cocite/internal/identity"
	"github.com/matsen/cocite/internal/logging"
	"github.com/matsen/cocite/internal/metrics"
	"github.com/matsen/cocite/internal/node"
	"github.com/matsen/cocite/internal/openalex"
)

// DefaultProgressEvery is how many unique works are resolved between progress logs.
const DefaultProgressEvery = 100

// Fetcher retrieves one work record. *openalex.Client implements it.
type Fetcher interface {
	GetWork(ctx context.Context, workID string) (*openalex.Work, error)
}

// Stats counts lookups made through a Resolver.
type Stats struct {
	Lookups   int64 `json:"lookups"`
	CacheHits int64 `json:"cache_hits"`
	Fetched   int64 `json:"fetched"`
	Failed    int64 `json:"failed"`
}

// Resolver looks up works through a cache. Remote failures are cached as
// works without representatives and are never returned as errors; only
// context cancellation is.
type Resolver struct {
	fetcher       Fetcher
	cache         Cache
	logger        *logging.Logger
	metrics       *metrics.Recorder
	progressEvery int64

	group singleflight.Group

	lookups atomic.Int64
	hits    atomic.Int64
	fetched atomic.Int64
	failed  atomic.Int64
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithCache replaces the default in-memory cache.
func WithCache(c Cache) Option {
	return func(r *Resolver) {
		r.cache = c
	}
}

// WithLogger sets the logger used for failures and progress.
func WithLogger(l *logging.Logger) Option {
	return func(r *Resolver) {
		r.logger = l
	}
}

// WithMetrics records fetches, failures and cache hits.
func WithMetrics(m *metrics.Recorder) Option {
	return func(r *Resolver) {
		r.metrics = m
	}
}

// WithProgressEvery sets the progress log interval. Zero disables progress logs.
func WithProgressEvery(n int) Option {
	return func(r *Resolver) {
		r.progressEvery = int64(n)
	}
}

// New creates a Resolver backed by f.
func New(f Fetcher, opts ...Option) *Resolver {
	r := &Resolver{
		fetcher:       f,
		cache:         NewMemoryCache(),
		logger:        logging.Nop(),
		progressEvery: DefaultProgressEvery,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Lookup returns the representatives of a work. rawID may be a bare ID or
// an OpenAlex URL. A blank ID resolves to no representatives without a fetch.
func (r *Resolver) Lookup(ctx context.Context, rawID string) (Representatives, error) {
	id := identity.WorkID(rawID)
	if id == "" {
		return Representatives{}, nil
	}
	r.lookups.Add(1)

	if e, layer, ok := r.cache.Get(id); ok {
		r.hits.Add(1)
		r.metrics.CacheHit(string(layer))
		return e.Representatives, nil
	}

	v, err, _ := r.group.Do(id, func() (any, error) {
		if e, _, ok := r.cache.Get(id); ok {
			return e, nil
		}
		return r.fetch(ctx, id)
	})
	if err != nil {
		return Representatives{}, err
	}
	return v.(Entry).Representatives, nil
}

func (r *Resolver) fetch(ctx context.Context, id string) (Entry, error) {
	w, err := r.fetcher.GetWork(ctx, id)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return Entry{}, ctxErr
		}
		reason := openalex.FailureReason(err)
		r.failed.Add(1)
		r.metrics.FetchFailed(reason)
		r.logger.Debug("work lookup failed", "work", id, "reason", reason, "error", err)

		e := Entry{Failed: true}
		r.cache.Put(id, e)
		r.progress()
		return e, nil
	}

	e := Entry{Representatives: Select(w)}
	r.cache.Put(id, e)
	r.fetched.Add(1)
	r.metrics.WorkFetched()
	r.progress()
	return e, nil
}

func (r *Resolver) progress() {
	if r.progressEvery <= 0 {
		return
	}
	n := r.fetched.Load() + r.failed.Load()
	if n%r.progressEvery == 0 {
		r.logger.Info("fetched unique works", "count", n)
	}
}

// Prefetch looks up every ID with up to workers concurrent lookups, warming
// the cache. It stops at the first error, which can only be cancellation.
func (r *Resolver) Prefetch(ctx context.Context, ids []string, workers int) error {
	if workers <= 1 {
		for _, id := range ids {
			if _, err := r.Lookup(ctx, id); err != nil {
				return err
			}
		}
		return nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for _, id := range ids {
		g.Go(func() error {
			_, err := r.Lookup(gctx, id)
			return err
		})
	}
	return g.Wait()
}

// Stats returns a snapshot of the lookup counters.
func (r *Resolver) Stats() Stats {
	return Stats{
		Lookups:   r.lookups.Load(),
		CacheHits: r.hits.Load(),
		Fetched:   r.fetched.Load(),
		Failed:    r.failed.Load(),
	}
}

// CacheLen returns the number of works held in the cache.
func (r *Resolver) CacheLen() int {
	return r.cache.Len()
}

// Resolution holds the node IDs a work resolves to. Zero means absent.
type Resolution struct {
	AuthorID      int
	InstitutionID int
}

// NodeResolver maps works to node IDs of one registry and memoizes the result.
type NodeResolver struct {
	resolver *Resolver
	registry *node.Registry

	mu   sync.Mutex
	memo map[string]Resolution
}

// Bind returns a NodeResolver that maps representatives through reg.
func (r *Resolver) Bind(reg *node.Registry) *NodeResolver {
	return &NodeResolver{
		resolver: r,
		registry: reg,
		memo:     make(map[string]Resolution),
	}
}

// Resolve returns the author and institution node IDs for a work.
// Representatives whose keys are not in the registry resolve to 0.
func (b *NodeResolver) Resolve(ctx context.Context, rawID string) (Resolution, error) {
	id := identity.WorkID(rawID)
	if id == "" {
		return Resolution{}, nil
	}

	b.mu.Lock()
	res, ok := b.memo[id]
	b.mu.Unlock()
	if ok {
		return res, nil
	}

	reps, err := b.resolver.Lookup(ctx, id)
	if err != nil {
		return Resolution{}, err
	}
	if reps.Author != nil {
		res.AuthorID, _ = b.registry.AuthorID(reps.Author.Key())
	}
	if reps.Institution != nil {
		res.InstitutionID, _ = b.registry.InstitutionID(reps.Institution.Key())
	}

	b.mu.Lock()
	b.memo[id] = res
	b.mu.Unlock()
	return res, nil
}
