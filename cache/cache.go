// Package cache implements the bounded free-list recyclers that back the
// interpreter's short-lived bookkeeping records.
//
// A Cache hands out records of a single concrete type and keeps up to a
// fixed number of released records on a last-in first-out free list, so a
// hot acquire/release cycle keeps reusing the same warm records instead of
// allocating. Each cache carries its own lock, so two caches never contend
// with each other.
package cache

import (
	"reflect"
	"sync"

	"github.com/rs/zerolog"

	"github.com/acpikit/acpikit/errz"
)

// Stats are the usage counters a cache maintains over its lifetime.
// MaxOccupied is the peak number of live records, counting records in use
// as well as records parked on the free list.
type Stats struct {
	Requests       uint64
	Hits           uint64
	TotalAllocated uint64
	TotalFreed     uint64
	MaxOccupied    uint64
}

// Option configures a Cache.
type Option[T any] func(*Cache[T])

// WithAllocator overrides how fresh records are obtained when the free list
// is empty. An allocator that returns nil models a refused allocation and
// surfaces as a no-memory status from Acquire.
func WithAllocator[T any](fn func() *T) Option[T] {
	return func(c *Cache[T]) {
		c.alloc = fn
	}
}

// WithLogger sets the logger used to report release anomalies.
func WithLogger[T any](log zerolog.Logger) Option[T] {
	return func(c *Cache[T]) {
		c.log = log
	}
}

// Cache is a bounded LIFO recycler for records of type T.
type Cache[T any] struct {
	name       string
	objectSize uintptr
	maxDepth   int
	alloc      func() *T
	log        zerolog.Logger

	mu        sync.Mutex
	freeList  []*T
	onList    map[*T]struct{}
	stats     Stats
	destroyed bool
}

// New creates a cache for records of type T that parks at most maxDepth
// released records.
func New[T any](name string, maxDepth int, opts ...Option[T]) (*Cache[T], error) {
	if name == "" {
		return nil, errz.New(errz.BadParameter, "cache name is required")
	}
	if maxDepth <= 0 {
		return nil, errz.Newf(errz.BadParameter,
			"cache %q: max depth %d is not positive", name, maxDepth)
	}
	size := reflect.TypeOf((*T)(nil)).Elem().Size()
	if size == 0 {
		return nil, errz.Newf(errz.BadParameter,
			"cache %q: zero-size object type", name)
	}
	c := &Cache[T]{
		name:       name,
		objectSize: size,
		maxDepth:   maxDepth,
		alloc:      func() *T { return new(T) },
		log:        zerolog.Nop(),
		freeList:   make([]*T, 0, maxDepth),
		onList:     make(map[*T]struct{}, maxDepth),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Acquire returns a cleared record, recycling the most recently released
// one when the free list is non-empty.
func (c *Cache[T]) Acquire() (*T, error) {
	c.mu.Lock()
	if c.destroyed {
		c.mu.Unlock()
		return nil, errz.Newf(errz.BadParameter, "cache %q is destroyed", c.name)
	}
	c.stats.Requests++

	if n := len(c.freeList); n > 0 {
		rec := c.freeList[n-1]
		c.freeList = c.freeList[:n-1]
		delete(c.onList, rec)
		c.stats.Hits++
		c.mu.Unlock()

		var zero T
		*rec = zero
		return rec, nil
	}
	c.mu.Unlock()

	// Fresh records are allocated with the lock released, so an allocator
	// that blocks cannot stall every other user of this cache.
	rec := c.alloc()
	if rec == nil {
		return nil, errz.Newf(errz.NoMemory, "cache %q: allocation failed", c.name)
	}

	c.mu.Lock()
	c.stats.TotalAllocated++
	if live := c.stats.TotalAllocated - c.stats.TotalFreed; live > c.stats.MaxOccupied {
		c.stats.MaxOccupied = live
	}
	c.mu.Unlock()
	return rec, nil
}

// Release returns a record to the cache. Once the free list holds maxDepth
// records any further release drops the record for the collector to
// reclaim. Releasing nil is a no-op; releasing a record that is already on
// the free list is logged and ignored.
func (c *Cache[T]) Release(rec *T) {
	if rec == nil {
		return
	}
	c.mu.Lock()
	if _, ok := c.onList[rec]; ok {
		c.mu.Unlock()
		c.log.Warn().Str("cache", c.name).Msg("record released twice; ignoring")
		return
	}
	if c.destroyed || len(c.freeList) >= c.maxDepth {
		c.stats.TotalFreed++
		c.mu.Unlock()
		return
	}

	// Clear before listing, so a parked record does not pin whatever it
	// referenced while it was in use.
	var zero T
	*rec = zero
	c.onList[rec] = struct{}{}
	c.freeList = append(c.freeList, rec)
	c.mu.Unlock()
}

// Purge frees every record parked on the free list.
func (c *Cache[T]) Purge() {
	c.mu.Lock()
	for _, rec := range c.freeList {
		delete(c.onList, rec)
		c.stats.TotalFreed++
	}
	c.freeList = c.freeList[:0]
	c.mu.Unlock()
}

// Destroy purges the cache and marks it unusable. Subsequent Acquire calls
// fail; subsequent Release calls count the record as freed.
func (c *Cache[T]) Destroy() {
	c.mu.Lock()
	for range c.freeList {
		c.stats.TotalFreed++
	}
	c.freeList = nil
	c.onList = nil
	c.destroyed = true
	c.mu.Unlock()
}

// Name returns the cache name.
func (c *Cache[T]) Name() string {
	return c.name
}

// ObjectSize returns the size in bytes of the record type.
func (c *Cache[T]) ObjectSize() uintptr {
	return c.objectSize
}

// MaxDepth returns the free list bound.
func (c *Cache[T]) MaxDepth() int {
	return c.maxDepth
}

// Depth returns the number of records currently parked on the free list.
func (c *Cache[T]) Depth() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.freeList)
}

// Outstanding returns the number of live records currently held by callers.
func (c *Cache[T]) Outstanding() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return int(c.stats.TotalAllocated-c.stats.TotalFreed) - len(c.freeList)
}

// Stats returns a snapshot of the usage counters.
func (c *Cache[T]) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stats
}
