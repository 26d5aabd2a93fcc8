package radion

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPool(t *testing.T) {
	p := NewPool(4, 512)
	assert.Equal(t, 4, p.Size())
	assert.Equal(t, 4, p.Available())
	assert.Equal(t, 512, p.SlotSize())

	slots := make([][]byte, 0, 4)
	for i := 0; i < 4; i++ {
		slot, err := p.Acquire()
		assert.Nil(t, err)
		assert.Equal(t, 512, len(slot))
		slots = append(slots, slot)
	}
	assert.Equal(t, 0, p.Available())

	_, err := p.Acquire()
	assert.Equal(t, ErrPoolExhausted, err)

	for _, slot := range slots {
		// slots are recycled at full capacity even if they were sliced
		p.release(slot[:100])
	}
	assert.Equal(t, 4, p.Available())

	slot, err := p.Acquire()
	assert.Nil(t, err)
	assert.Equal(t, 512, len(slot))
	p.release(slot)
}

func TestPoolConcurrent(t *testing.T) {
	p := NewPool(8, 64)
	var wg sync.WaitGroup
	wg.Add(8)
	for i := 0; i < 8; i++ {
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				slot, err := p.Acquire()
				if err != nil {
					continue
				}
				p.release(slot)
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 8, p.Available())
}
