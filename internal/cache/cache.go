// Package cache provides a small generic LRU row cache with TTL, used
// opportunistically by single-row read paths. Multi-row query results are
// never cached. Keys are typed composite structs, not concatenated strings.
package cache

import (
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	cacheHitsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "drivedb_cache_hits_total",
		Help: "Row cache hits, by cache name.",
	}, []string{"cache"})
	cacheMissesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "drivedb_cache_misses_total",
		Help: "Row cache misses, by cache name.",
	}, []string{"cache"})
)

// Cache is an LRU cache with per-entry TTL. The zero value is not usable;
// construct with New.
type Cache[K comparable, V any] struct {
	lru    *expirable.LRU[K, V]
	hits   prometheus.Counter
	misses prometheus.Counter
}

// New creates a cache holding at most maxSize entries, each expiring ttl
// after insertion. The name labels the hit/miss metrics.
func New[K comparable, V any](name string, maxSize int, ttl time.Duration) *Cache[K, V] {
	return &Cache[K, V]{
		lru:    expirable.NewLRU[K, V](maxSize, nil, ttl),
		hits:   cacheHitsTotal.WithLabelValues(name),
		misses: cacheMissesTotal.WithLabelValues(name),
	}
}

// Get returns the cached value for k, if present.
func (c *Cache[K, V]) Get(k K) (V, bool) {
	v, ok := c.lru.Get(k)
	if ok {
		c.hits.Inc()
		return v, true
	}
	c.misses.Inc()
	var zero V
	return zero, false
}

// Set adds or updates the entry for k.
func (c *Cache[K, V]) Set(k K, v V) {
	c.lru.Add(k, v)
}

// Remove invalidates the entry for k.
func (c *Cache[K, V]) Remove(k K) {
	c.lru.Remove(k)
}

// Purge drops every entry.
func (c *Cache[K, V]) Purge() {
	c.lru.Purge()
}
