package containers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRingQueueOrder(t *testing.T) {
	rq := NewRingQueue[int](3)
	require.True(t, rq.IsEmpty())

	for i := 1; i <= 3; i++ {
		require.NoError(t, rq.Enqueue(i))
	}
	assert.True(t, rq.IsFull())
	assert.ErrorIs(t, rq.Enqueue(4), ErrQueueFull)

	v, err := rq.Dequeue()
	require.NoError(t, err)
	assert.Equal(t, 1, v)

	require.NoError(t, rq.Enqueue(4))
	var seen []int
	rq.Each(func(v int) { seen = append(seen, v) })
	assert.Equal(t, []int{2, 3, 4}, seen)

	head, err := rq.Peek()
	require.NoError(t, err)
	assert.Equal(t, 2, head)
	assert.Equal(t, 3, rq.Len())
}

func TestRingQueueEmpty(t *testing.T) {
	rq := NewRingQueue[string](1)
	_, err := rq.Dequeue()
	assert.ErrorIs(t, err, ErrQueueEmpty)
	_, err = rq.Peek()
	assert.ErrorIs(t, err, ErrQueueEmpty)
}
