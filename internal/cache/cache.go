// Package cache implements the pluggable per-run result cache (spec §4.5).
//
// The interface is intentionally small: Get/Put keyed by the type-erased
// ast.CacheKey. InMemory and Forgetful are the two backends spec.md
// requires; LRU is an enrichment (see SPEC_FULL.md's DOMAIN STACK) for
// callers who want to bound memory on long-running processes that reuse
// one cache across many runs.
package cache

import (
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/fetchplan/fetchplan/internal/ast"
)

// Cache is consulted before a batch is compiled and updated before the
// next round is planned (spec §4.5). Implementations may be mutable
// internally as long as a Put is visible to a subsequent Get within the
// same run.
type Cache interface {
	Get(key ast.CacheKey) (any, bool)
	Put(key ast.CacheKey, value any)
}

// InMemory is a plain RWMutex-guarded map, pre-seedable by the caller.
// The default cache a run creates lives only for that run; an instance
// the caller supplies keeps its entries and can be reused by later runs.
type InMemory struct {
	mu sync.RWMutex
	m  map[ast.CacheKey]any
}

// NewInMemory returns an empty in-memory cache.
func NewInMemory() *InMemory {
	return &InMemory{m: make(map[ast.CacheKey]any)}
}

// NewInMemorySeeded returns an in-memory cache pre-populated with seed.
// The map is copied; mutating seed afterwards has no effect on the cache.
func NewInMemorySeeded(seed map[ast.CacheKey]any) *InMemory {
	m := make(map[ast.CacheKey]any, len(seed))
	for k, v := range seed {
		m[k] = v
	}
	return &InMemory{m: m}
}

func (c *InMemory) Get(key ast.CacheKey) (any, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	v, ok := c.m[key]
	return v, ok
}

func (c *InMemory) Put(key ast.CacheKey, value any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.m[key] = value
}

// Len reports how many entries are currently cached. Mainly useful from
// tests asserting on cache growth.
func (c *InMemory) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.m)
}

// Forgetful never remembers anything: Get always misses, Put is a no-op.
// Used to disable caching entirely for a run (spec §4.5).
type Forgetful struct{}

func (Forgetful) Get(ast.CacheKey) (any, bool) { return nil, false }
func (Forgetful) Put(ast.CacheKey, any)        {}

// LRU is a bounded alternative to InMemory, backed by
// hashicorp/golang-lru. Prefer this over InMemory when a cache instance
// is shared across many runs in a long-lived process and unbounded growth
// is not acceptable.
type LRU struct {
	c *lru.Cache[ast.CacheKey, any]
}

// NewLRU returns an LRU cache holding at most size entries. It panics if
// size is not positive, mirroring hashicorp/golang-lru's own constructor.
func NewLRU(size int) *LRU {
	c, err := lru.New[ast.CacheKey, any](size)
	if err != nil {
		panic(err)
	}
	return &LRU{c: c}
}

func (c *LRU) Get(key ast.CacheKey) (any, bool) {
	return c.c.Get(key)
}

func (c *LRU) Put(key ast.CacheKey, value any) {
	c.c.Add(key, value)
}
