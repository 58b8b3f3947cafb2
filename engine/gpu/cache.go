package gpu

import (
	"runtime"
	"sync"
	"sync/atomic"
)

type cacheEntry[H any] struct {
	handle     H
	err        error
	generation uint64
}

/**
 * @brief Maps an owner identity (pipeline or shader) to a native handle.
 *
 * The cache holds no reference to the owner. Storing an entry registers a GC
 * cleanup on the owner; once the owner is unreachable the entry is removed and
 * its handle queued for destruction, performed by Collect on the goroutine that
 * owns the device context. Invalidate forgets everything built so far without
 * destroying it, for use after the context is lost.
 */
type ObjectCache[T any, K comparable, H any] struct {
	destroy func(H)

	mu         sync.Mutex
	generation uint64
	entries    map[K]*cacheEntry[H]
	watched    map[K]struct{}
	released   []H

	hits      atomic.Uint64
	misses    atomic.Uint64
	evictions atomic.Uint64
}

// NewObjectCache creates a cache; destroy releases one native handle and is only
// called from Collect, Purge or Store.
func NewObjectCache[T any, K comparable, H any](destroy func(H)) *ObjectCache[T, K, H] {
	return &ObjectCache[T, K, H]{
		destroy:    destroy,
		generation: 1,
		entries:    make(map[K]*cacheEntry[H]),
		watched:    make(map[K]struct{}),
	}
}

// Lookup returns the cached handle, or the cached failure, for key.
func (c *ObjectCache[T, K, H]) Lookup(key K) (H, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		c.misses.Add(1)
		var zero H
		return zero, false, nil
	}
	c.hits.Add(1)
	return e.handle, true, e.err
}

// Store caches h for owner under key. The generation the handle was built in must be
// passed back; a handle built before an Invalidate is dropped instead of cached.
func (c *ObjectCache[T, K, H]) Store(owner *T, key K, h H, generation uint64) bool {
	return c.put(owner, key, &cacheEntry[H]{handle: h, generation: generation})
}

// StoreFailure remembers a failed build until the next Invalidate.
func (c *ObjectCache[T, K, H]) StoreFailure(owner *T, key K, err error, generation uint64) bool {
	return c.put(owner, key, &cacheEntry[H]{err: err, generation: generation})
}

func (c *ObjectCache[T, K, H]) put(owner *T, key K, e *cacheEntry[H]) bool {
	c.mu.Lock()
	if e.generation != c.generation {
		c.mu.Unlock()
		return false
	}
	var replaced *cacheEntry[H]
	if old, ok := c.entries[key]; ok && old.err == nil {
		replaced = old
	}
	c.entries[key] = e
	if _, ok := c.watched[key]; !ok {
		c.watched[key] = struct{}{}
		runtime.AddCleanup(owner, c.evict, key)
	}
	c.mu.Unlock()

	if replaced != nil {
		c.destroy(replaced.handle)
	}
	return true
}

// evict runs on the GC cleanup goroutine once the owner of key is unreachable.
func (c *ObjectCache[T, K, H]) evict(key K) {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.watched, key)
	e, ok := c.entries[key]
	if !ok {
		return
	}
	delete(c.entries, key)
	c.evictions.Add(1)
	if e.err == nil && e.generation == c.generation {
		c.released = append(c.released, e.handle)
	}
}

// Remove drops key and destroys its handle.
func (c *ObjectCache[T, K, H]) Remove(key K) bool {
	c.mu.Lock()
	e, ok := c.entries[key]
	if ok {
		delete(c.entries, key)
	}
	c.mu.Unlock()

	if ok && e.err == nil {
		c.destroy(e.handle)
	}
	return ok
}

// Generation is bumped by every Invalidate. Builds must capture it before starting.
func (c *ObjectCache[T, K, H]) Generation() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.generation
}

// Invalidate drops every entry and pending release without destroying them.
func (c *ObjectCache[T, K, H]) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.generation++
	c.entries = make(map[K]*cacheEntry[H])
	c.released = nil
}

// Collect destroys the handles of collected owners and returns how many were destroyed.
func (c *ObjectCache[T, K, H]) Collect() int {
	c.mu.Lock()
	released := c.released
	c.released = nil
	c.mu.Unlock()

	for _, h := range released {
		c.destroy(h)
	}
	return len(released)
}

// Purge destroys every cached and pending handle.
func (c *ObjectCache[T, K, H]) Purge() int {
	c.mu.Lock()
	handles := c.released
	c.released = nil
	for _, e := range c.entries {
		if e.err == nil {
			handles = append(handles, e.handle)
		}
	}
	c.entries = make(map[K]*cacheEntry[H])
	c.mu.Unlock()

	for _, h := range handles {
		c.destroy(h)
	}
	return len(handles)
}

func (c *ObjectCache[T, K, H]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Pending is the number of handles waiting for Collect.
func (c *ObjectCache[T, K, H]) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.released)
}

func (c *ObjectCache[T, K, H]) Hits() uint64      { return c.hits.Load() }
func (c *ObjectCache[T, K, H]) Misses() uint64    { return c.misses.Load() }
func (c *ObjectCache[T, K, H]) Evictions() uint64 { return c.evictions.Load() }
