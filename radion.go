package radion

import (
	"sync/atomic"
	"time"

	"github.com/dudk/radion/device"
)

// TransferFunc is registered with a transport and invoked on the transport
// goroutine once per completed bulk transfer. The byte slice is a borrowed,
// read-only view valid only for the duration of the call: implementations
// must copy what they keep and must return without panicking.
type TransferFunc func(buf []byte)

// Transport is the asynchronous byte source of an opened dongle. It is
// opaque to the streaming engine: it delivers fixed-size buffers through a
// registered callback and can fail or disconnect at any time.
type Transport interface {
	// Configure applies front end parameters. Called once at session start.
	Configure(device.Config) error
	// BeginAsyncTransfer blocks on the transfer loop, invoking fn for every
	// received buffer, until CancelAsyncTransfer is called or the transfer
	// layer fails. A cancelled loop returns nil.
	BeginAsyncTransfer(bufferCount, bufferSize int, fn TransferFunc) error
	// CancelAsyncTransfer unblocks the transfer loop. Safe to call from any
	// goroutine and more than once.
	CancelAsyncTransfer() error
	// Connected reports whether the device is still reachable.
	Connected() bool
}

// Logger is a global interface for radion loggers.
type Logger interface {
	Debug(...interface{})
	Info(...interface{})
}

type silentLogger struct{}

func (silentLogger) Debug(args ...interface{}) {}

func (silentLogger) Info(args ...interface{}) {}

var defaultLogger silentLogger

// SampleChunk is an owned sequence of interleaved unsigned 8-bit I/Q sample
// pairs captured in a single transfer. Chunks are backed by pool slots:
// the consumer owns a chunk once received and returns the slot by calling
// Release. The data must not be used after Release.
type SampleChunk struct {
	// Seq is the chunk sequence number, strictly increasing within a
	// session with no gaps.
	Seq uint64
	// Time is the wall-clock arrival time of the transfer.
	Time time.Time

	data     []byte
	pool     *Pool
	released uint32
}

// Bytes returns the interleaved I/Q bytes. The slice is valid until Release.
func (c *SampleChunk) Bytes() []byte {
	return c.data
}

// Len returns the chunk length in bytes. Always an even, non-zero value.
func (c *SampleChunk) Len() int {
	return len(c.data)
}

// Release returns the backing slot to the pool. Consequent calls do nothing.
func (c *SampleChunk) Release() {
	if !atomic.CompareAndSwapUint32(&c.released, 0, 1) {
		return
	}
	c.pool.release(c.data)
	c.data = nil
}

// Event is delivered to the consumer through the session channel: either a
// sample chunk or a stream error. The channel is closed after a clean stop
// or after a single terminal error event, so consumers read until the
// channel is drained.
type Event struct {
	Chunk *SampleChunk
	Err   error
}
