package gpu

import (
	"errors"
	"runtime"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCache(destroyed *atomic.Int32) *ObjectCache[Pipeline, PipelineID, int] {
	return NewObjectCache[Pipeline, PipelineID, int](func(int) {
		destroyed.Add(1)
	})
}

func TestObjectCacheLookupAndStore(t *testing.T) {
	var destroyed atomic.Int32
	c := newTestCache(&destroyed)
	p, err := NewPipeline(newTestProgram(t), nil, nil)
	require.NoError(t, err)

	_, ok, _ := c.Lookup(p.ID())
	assert.False(t, ok)

	require.True(t, c.Store(p, p.ID(), 7, c.Generation()))
	h, ok, err := c.Lookup(p.ID())
	require.True(t, ok)
	require.NoError(t, err)
	assert.Equal(t, 7, h)
	assert.Equal(t, 1, c.Len())
	assert.EqualValues(t, 1, c.Hits())
	assert.EqualValues(t, 1, c.Misses())
	runtime.KeepAlive(p)
}

func TestObjectCacheInvalidate(t *testing.T) {
	var destroyed atomic.Int32
	c := newTestCache(&destroyed)
	p, err := NewPipeline(newTestProgram(t), nil, nil)
	require.NoError(t, err)

	gen := c.Generation()
	require.True(t, c.Store(p, p.ID(), 1, gen))
	c.Invalidate()

	assert.Zero(t, c.Len())
	assert.Greater(t, c.Generation(), gen)
	assert.False(t, c.Store(p, p.ID(), 2, gen), "stale build is not cached")
	assert.Zero(t, destroyed.Load(), "invalidation never calls into the lost context")
	runtime.KeepAlive(p)
}

func TestObjectCacheFailures(t *testing.T) {
	var destroyed atomic.Int32
	c := newTestCache(&destroyed)
	p, err := NewPipeline(newTestProgram(t), nil, nil)
	require.NoError(t, err)

	boom := errors.New("boom")
	require.True(t, c.StoreFailure(p, p.ID(), boom, c.Generation()))
	_, ok, err := c.Lookup(p.ID())
	require.True(t, ok)
	assert.ErrorIs(t, err, boom)

	assert.Equal(t, 0, c.Purge(), "failures own no native object")
	runtime.KeepAlive(p)
}

func TestObjectCacheEvictsCollectedOwner(t *testing.T) {
	var destroyed atomic.Int32
	c := newTestCache(&destroyed)
	program := newTestProgram(t)

	func() {
		p, err := NewPipeline(program, nil, nil)
		require.NoError(t, err)
		require.True(t, c.Store(p, p.ID(), 42, c.Generation()))
		require.Equal(t, 1, c.Len())
	}()

	require.Eventually(t, func() bool {
		runtime.GC()
		return c.Len() == 0
	}, 5*time.Second, 10*time.Millisecond)

	assert.Equal(t, 1, c.Pending())
	assert.Zero(t, destroyed.Load(), "destruction waits for Collect")
	assert.Equal(t, 1, c.Collect())
	assert.EqualValues(t, 1, destroyed.Load())
	assert.EqualValues(t, 1, c.Evictions())
}

func TestObjectCachePurge(t *testing.T) {
	var destroyed atomic.Int32
	c := newTestCache(&destroyed)
	program := newTestProgram(t)

	var keep []*Pipeline
	for i := 0; i < 3; i++ {
		p, err := NewPipeline(program, nil, nil)
		require.NoError(t, err)
		require.True(t, c.Store(p, p.ID(), i, c.Generation()))
		keep = append(keep, p)
	}
	assert.Equal(t, 3, c.Purge())
	assert.EqualValues(t, 3, destroyed.Load())
	assert.Zero(t, c.Len())
	runtime.KeepAlive(keep)
}

func TestObjectCacheRemove(t *testing.T) {
	var destroyed atomic.Int32
	c := newTestCache(&destroyed)
	p, err := NewPipeline(newTestProgram(t), nil, nil)
	require.NoError(t, err)

	require.True(t, c.Store(p, p.ID(), 1, c.Generation()))
	assert.True(t, c.Remove(p.ID()))
	assert.False(t, c.Remove(p.ID()))
	assert.EqualValues(t, 1, destroyed.Load())
	runtime.KeepAlive(p)
}
