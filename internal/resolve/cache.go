package resolve

import (
	"sync"

	"github.com/matsen/cocite/internal/logging"
	"github.com/matsen/cocite/internal/storage"
)

// Entry is a cached lookup result. Failed entries stand for works whose fetch
// failed; they resolve to no representatives.
type Entry struct {
	Representatives
	Failed bool
}

// Layer names the cache level that answered a lookup.
type Layer string

const (
	LayerMemory Layer = "memory"
	LayerSQLite Layer = "sqlite"
)

// Cache stores lookup results by work ID. Implementations must be safe for
// concurrent use.
type Cache interface {
	Get(workID string) (Entry, Layer, bool)
	Put(workID string, e Entry)
	Len() int
}

// MemoryCache is an in-process Cache.
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[string]Entry
}

// NewMemoryCache returns an empty MemoryCache.
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{entries: make(map[string]Entry)}
}

func (c *MemoryCache) Get(workID string) (Entry, Layer, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.entries[workID]
	return e, LayerMemory, ok
}

func (c *MemoryCache) Put(workID string, e Entry) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[workID] = e
}

func (c *MemoryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// PersistentCache layers a MemoryCache over a SQLite works table.
// Successful lookups are written through; failures stay in memory so that a
// later run retries them.
type PersistentCache struct {
	mem    *MemoryCache
	db     *storage.DB
	logger *logging.Logger
}

// NewPersistentCache wraps db. A nil logger discards storage warnings.
func NewPersistentCache(db *storage.DB, logger *logging.Logger) *PersistentCache {
	if logger == nil {
		logger = logging.Nop()
	}
	return &PersistentCache{mem: NewMemoryCache(), db: db, logger: logger}
}

func (c *PersistentCache) Get(workID string) (Entry, Layer, bool) {
	if e, layer, ok := c.mem.Get(workID); ok {
		return e, layer, true
	}

	w, err := c.db.GetWork(workID)
	if err != nil {
		c.logger.Warn("cache read failed", "work", workID, "error", err)
		return Entry{}, "", false
	}
	if w == nil {
		return Entry{}, "", false
	}

	e := Entry{Representatives: Representatives{Author: w.Author, Institution: w.Institution}}
	c.mem.Put(workID, e)
	return e, LayerSQLite, true
}

func (c *PersistentCache) Put(workID string, e Entry) {
	c.mem.Put(workID, e)
	if e.Failed {
		return
	}
	err := c.db.PutWork(storage.CachedWork{
		WorkID:      workID,
		Author:      e.Author,
		Institution: e.Institution,
	})
	if err != nil {
		c.logger.Warn("cache write failed", "work", workID, "error", err)
	}
}

// Len returns the number of entries held in memory.
func (c *PersistentCache) Len() int {
	return c.mem.Len()
}
