package radion

import (
	"fmt"
	"time"
)

// transfer is the boundary function registered with the transport. It runs
// on the transfer goroutine once per completed bulk transfer, one call at
// a time. The raw buffer is a borrowed view: its bytes are copied out into
// a pool slot before the call returns, so the transport can resubmit the
// buffer immediately.
//
// The boundary must hold regardless of what happens inside: a panic is
// converted into a session failure and the callback returns normally, and
// an exhausted pool discards the transfer instead of blocking the loop.
func (s *Session) transfer(buf []byte) {
	defer func() {
		if r := recover(); r != nil {
			s.fail(fmt.Errorf("transfer callback panic: %v", r))
		}
	}()

	// whole I/Q pairs only
	n := len(buf) &^ 1
	if n == 0 {
		return
	}

	slot, err := s.pool.Acquire()
	if err != nil {
		s.overrun()
		return
	}
	copied := copy(slot, buf[:n])

	chunk := &SampleChunk{
		Seq:  s.seq,
		Time: time.Now(),
		data: slot[:copied],
		pool: s.pool,
	}
	s.seq++
	s.meter.Chunk(copied)
	s.out.push(Event{Chunk: chunk}, s.cancelc)
}

// overrun records a discarded transfer. The notification is best effort:
// if the channel is full the consumer learns about the overrun from the
// counters instead. Once the configured limit is reached the session
// fails.
func (s *Session) overrun() {
	count := s.meter.Overrun()
	s.out.tryPush(Event{Err: ErrOverrun})
	if s.overrunLimit > 0 && count >= s.overrunLimit {
		s.fail(fmt.Errorf("%w: limit of %d reached", ErrOverrun, s.overrunLimit))
	}
}
