package radion

import (
	"sync/atomic"

	"github.com/dudk/radion/metric"
)

// Policy defines the backpressure behaviour of the sample channel when the
// consumer does not keep up with the transfer rate.
type Policy int

const (
	// DropOldest evicts the oldest queued chunk to admit the new one.
	// Recommended default: the consumer always sees the most recent data.
	DropOldest Policy = iota
	// DropNewest discards the incoming chunk and keeps the queued ones.
	DropNewest
	// Block makes the producer wait until the consumer frees space. Unsafe
	// for sustained high sample rates: it stalls the transfer goroutine and
	// with it the hardware pipeline.
	Block
)

// String returns policy name.
func (p Policy) String() string {
	switch p {
	case DropOldest:
		return "drop-oldest"
	case DropNewest:
		return "drop-newest"
	case Block:
		return "block"
	}
	return "unknown"
}

// channel is the bounded, ordered handoff path between the transfer
// goroutine and the consumer. Single producer, single consumer. Chunks
// evicted by policy are released back to the pool before the consumer
// ever sees them.
type channel struct {
	events  chan Event
	policy  Policy
	meter   *metric.Meter
	dropped uint64
}

func newChannel(capacity int, policy Policy, meter *metric.Meter) *channel {
	return &channel{
		events: make(chan Event, capacity),
		policy: policy,
		meter:  meter,
	}
}

func (c *channel) drop() {
	atomic.AddUint64(&c.dropped, 1)
	c.meter.Drop()
}

// push hands a chunk event to the consumer, applying the backpressure
// policy. Called from the transfer goroutine only. cancelc unblocks a
// blocked producer when the session is stopped.
func (c *channel) push(e Event, cancelc <-chan struct{}) {
	switch c.policy {
	case Block:
		select {
		case c.events <- e:
		case <-cancelc:
			e.Chunk.Release()
		}
	case DropNewest:
		select {
		case c.events <- e:
		default:
			e.Chunk.Release()
			c.drop()
		}
	default: // DropOldest
		for {
			select {
			case c.events <- e:
				return
			default:
			}
			select {
			case old := <-c.events:
				if old.Chunk != nil {
					old.Chunk.Release()
					c.drop()
				}
			default:
			}
		}
	}
}

// tryPush enqueues an event if the channel has room. Used for non-terminal
// notifications that must not evict chunks or block the producer.
func (c *channel) tryPush(e Event) bool {
	select {
	case c.events <- e:
		return true
	default:
		return false
	}
}

// pushError enqueues an error event. Errors are never dropped: if the
// channel is full the oldest chunk is evicted to make room, regardless of
// the configured policy.
func (c *channel) pushError(err error) {
	e := Event{Err: err}
	for {
		select {
		case c.events <- e:
			return
		default:
		}
		select {
		case old := <-c.events:
			if old.Chunk != nil {
				old.Chunk.Release()
				c.drop()
			}
		default:
		}
	}
}

// close marks the end of the stream. No push may happen afterwards.
func (c *channel) close() {
	close(c.events)
}

// droppedCount returns the number of chunks evicted by the policy.
func (c *channel) droppedCount() uint64 {
	return atomic.LoadUint64(&c.dropped)
}
