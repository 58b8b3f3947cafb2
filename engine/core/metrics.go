package core

import (
	"sync"
	"time"

	"github.com/spaghettifunk/prism/engine/containers"
)

const AVG_COUNT int = 30

// Metrics keeps a rolling average over the last AVG_COUNT samples, plus the
// total number of samples ever recorded.
type Metrics struct {
	mu      sync.Mutex
	samples *containers.RingQueue[time.Duration]
	total   time.Duration
	count   uint64
}

func NewMetrics() *Metrics {
	return &Metrics{
		samples: containers.NewRingQueue[time.Duration](AVG_COUNT),
	}
}

func (m *Metrics) Record(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.samples.IsFull() {
		oldest, _ := m.samples.Dequeue()
		m.total -= oldest
	}
	_ = m.samples.Enqueue(d)
	m.total += d
	m.count++
}

// Average returns the mean of the samples currently in the window.
func (m *Metrics) Average() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.samples.IsEmpty() {
		return 0
	}
	return m.total / time.Duration(m.samples.Len())
}

func (m *Metrics) Count() uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.count
}
