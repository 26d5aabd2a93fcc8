package radion

import "errors"

// ErrPoolExhausted is returned by Acquire when no slot is available.
var ErrPoolExhausted = errors.New("pool exhausted")

// Pool is a fixed arena of reusable fixed-size buffer slots. All slots are
// allocated when the pool is constructed; acquire and release only move
// slots between the pool and its borrowers, so the transfer callback never
// triggers a heap allocation.
//
// The availability set is a buffered channel: release is safe from the
// transport goroutine while the consumer releases chunks concurrently.
type Pool struct {
	slotSize int
	slots    chan []byte
}

// NewPool allocates a pool of slotCount slots of slotSize bytes each.
func NewPool(slotCount, slotSize int) *Pool {
	p := &Pool{
		slotSize: slotSize,
		slots:    make(chan []byte, slotCount),
	}
	for i := 0; i < slotCount; i++ {
		p.slots <- make([]byte, slotSize)
	}
	return p
}

// Acquire returns an available slot or ErrPoolExhausted. It never blocks.
func (p *Pool) Acquire() ([]byte, error) {
	select {
	case slot := <-p.slots:
		return slot, nil
	default:
		return nil, ErrPoolExhausted
	}
}

// release returns a slot to the available set.
func (p *Pool) release(slot []byte) {
	p.slots <- slot[:cap(slot)]
}

// Available returns the number of slots not currently borrowed.
func (p *Pool) Available() int {
	return len(p.slots)
}

// SlotSize returns the slot capacity in bytes.
func (p *Pool) SlotSize() int {
	return p.slotSize
}

// Size returns the total number of slots.
func (p *Pool) Size() int {
	return cap(p.slots)
}
