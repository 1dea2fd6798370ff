// Package cache provides the on-disk store of extracted street graphs,
// keyed by quantized bounding box so that nearby requests reuse the same
// extraction instead of hitting the upstream data source again.
package cache

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"go.uber.org/zap"

	"github.com/citypath/service-routing/internal/domain/geo"
	"github.com/citypath/service-routing/internal/domain/streetgraph"
)

type entry struct {
	BBox     geo.BoundingBox    `json:"bbox"`
	CachedAt time.Time          `json:"cached_at"`
	Graph    *streetgraph.Graph `json:"graph"`
}

// GraphCache stores street graphs on disk with an in-memory index.
// Concurrent reads of the same key are safe; concurrent writes for the same
// key are last-writer-wins, which is acceptable because the content for a
// given key is idempotent.
type GraphCache struct {
	mu  sync.RWMutex
	dir string
	ttl time.Duration
	log *zap.Logger
	mem map[string]*entry
}

// NewGraphCache creates the cache directory if needed and returns a cache
// whose entries expire ttl after being written. A ttl of zero disables expiry.
func NewGraphCache(dir string, ttl time.Duration, log *zap.Logger) (*GraphCache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create cache dir %s: %w", dir, err)
	}
	return &GraphCache{
		dir: dir,
		ttl: ttl,
		log: log,
		mem: make(map[string]*entry),
	}, nil
}

// Get returns the cached graph for key if it is fresh and still covers the
// requested scope. A stale or non-covering entry is reported as a miss.
func (c *GraphCache) Get(key string, scope geo.BoundingBox) (*streetgraph.Graph, bool) {
	c.mu.RLock()
	e, ok := c.mem[key]
	c.mu.RUnlock()

	if !ok {
		e, ok = c.load(key)
		if !ok {
			return nil, false
		}
		c.mu.Lock()
		c.mem[key] = e
		c.mu.Unlock()
	}

	if c.expired(e) {
		c.log.Debug("cache entry expired", zap.String("key", key))
		return nil, false
	}
	if !e.Graph.Covers(scope) {
		c.log.Warn("cache entry does not cover requested scope",
			zap.String("key", key),
		)
		return nil, false
	}
	return e.Graph, true
}

// Put stores the graph under key, both in memory and on disk. Disk write
// failures are logged and do not fail the request; the in-memory entry still
// serves subsequent hits for this process.
func (c *GraphCache) Put(key string, g *streetgraph.Graph) {
	e := &entry{
		BBox:     g.BBox,
		CachedAt: time.Now().UTC(),
		Graph:    g,
	}

	c.mu.Lock()
	c.mem[key] = e
	c.mu.Unlock()

	data, err := json.Marshal(e)
	if err != nil {
		c.log.Error("failed to marshal cache entry", zap.String("key", key), zap.Error(err))
		return
	}
	if err := os.WriteFile(c.path(key), data, 0o644); err != nil {
		c.log.Error("failed to write cache entry", zap.String("key", key), zap.Error(err))
	}
}

func (c *GraphCache) load(key string) (*entry, bool) {
	data, err := os.ReadFile(c.path(key))
	if err != nil {
		return nil, false
	}
	var e entry
	if err := json.Unmarshal(data, &e); err != nil {
		c.log.Warn("discarding unreadable cache entry",
			zap.String("key", key),
			zap.Error(err),
		)
		return nil, false
	}
	if e.Graph == nil {
		return nil, false
	}
	return &e, true
}

func (c *GraphCache) expired(e *entry) bool {
	return c.ttl > 0 && time.Since(e.CachedAt) > c.ttl
}

func (c *GraphCache) path(key string) string {
	return filepath.Join(c.dir, "graph_"+key+".json")
}
