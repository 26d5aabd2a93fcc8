// Package metric provides in-process counters for streaming sessions.
package metric

import (
	"sync/atomic"
	"time"
)

// Meter accumulates transfer counters for a single streaming session.
// All methods are safe for concurrent use.
type Meter struct {
	chunks   uint64
	bytes    uint64
	dropped  uint64
	overruns uint64

	startedAt time.Time
}

// NewMeter returns a meter with the start time set to now.
func NewMeter() *Meter {
	return &Meter{startedAt: time.Now()}
}

// Chunk counts one delivered chunk of n bytes.
func (m *Meter) Chunk(n int) {
	atomic.AddUint64(&m.chunks, 1)
	atomic.AddUint64(&m.bytes, uint64(n))
}

// Drop counts one chunk evicted by the backpressure policy.
func (m *Meter) Drop() {
	atomic.AddUint64(&m.dropped, 1)
}

// Overrun counts one transfer discarded because no buffer slot was free.
func (m *Meter) Overrun() uint64 {
	return atomic.AddUint64(&m.overruns, 1)
}

// Measure is a snapshot of all meter counters.
type Measure struct {
	Chunks   uint64
	Bytes    uint64
	Dropped  uint64
	Overruns uint64
	Elapsed  time.Duration
}

// Measure returns a snapshot of the meter.
func (m *Meter) Measure() Measure {
	return Measure{
		Chunks:   atomic.LoadUint64(&m.chunks),
		Bytes:    atomic.LoadUint64(&m.bytes),
		Dropped:  atomic.LoadUint64(&m.dropped),
		Overruns: atomic.LoadUint64(&m.overruns),
		Elapsed:  time.Since(m.startedAt),
	}
}
