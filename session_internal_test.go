package radion

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dudk/radion/device"
)

// rejectingTransport fails every Configure call.
type rejectingTransport struct{}

func (rejectingTransport) Configure(device.Config) error {
	return &device.ConfigError{Field: "SampleRate", Reason: "rejected"}
}

func (rejectingTransport) BeginAsyncTransfer(int, int, TransferFunc) error {
	return nil
}

func (rejectingTransport) CancelAsyncTransfer() error { return nil }

func (rejectingTransport) Connected() bool { return true }

// cancelRecorder only records cancellation.
type cancelRecorder struct {
	cancelled bool
}

func (*cancelRecorder) Configure(device.Config) error { return nil }

func (*cancelRecorder) BeginAsyncTransfer(int, int, TransferFunc) error { return nil }

func (t *cancelRecorder) CancelAsyncTransfer() error {
	t.cancelled = true
	return nil
}

func (*cancelRecorder) Connected() bool { return true }

func validConfig() device.Config {
	return device.Config{SampleRate: 2048000, CenterFreq: 100000000}
}

func TestRejectedStartLeavesPoolAvailable(t *testing.T) {
	s, err := NewSession(rejectingTransport{}, validConfig())
	assert.Nil(t, err)

	err = s.Start()
	assert.NotNil(t, err)
	assert.Equal(t, Idle, s.state)
	// no leaked borrows
	assert.Equal(t, s.pool.Size(), s.pool.Available())
}

func TestTransferPairAlignment(t *testing.T) {
	s, err := NewSession(&cancelRecorder{}, validConfig())
	assert.Nil(t, err)

	// empty transfers are ignored
	s.transfer(nil)
	_, ok := s.TryReceive()
	assert.False(t, ok)

	// a trailing odd byte is cut so chunks hold whole I/Q pairs
	s.transfer([]byte{1, 2, 3, 4, 5})
	e, ok := s.TryReceive()
	assert.True(t, ok)
	assert.Equal(t, 4, e.Chunk.Len())
	assert.Equal(t, []byte{1, 2, 3, 4}, e.Chunk.Bytes())
	e.Chunk.Release()
}

func TestTransferPanicContained(t *testing.T) {
	transport := &cancelRecorder{}
	s, err := NewSession(transport, validConfig())
	assert.Nil(t, err)

	// a nil meter makes the adapter panic internally: the panic must not
	// cross the callback boundary and must fail the session instead
	s.meter = nil
	assert.NotPanics(t, func() {
		s.transfer([]byte{1, 2})
	})

	s.mu.Lock()
	failure := s.failure
	s.mu.Unlock()
	assert.NotNil(t, failure)
	assert.True(t, transport.cancelled)
}

func TestChunkReleaseIdempotent(t *testing.T) {
	p := NewPool(2, 16)
	c := newTestChunk(t, p, 0)
	c.Release()
	c.Release()
	assert.Equal(t, 2, p.Available())
	assert.Nil(t, c.Bytes())
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "idle", Idle.String())
	assert.Equal(t, "starting", Starting.String())
	assert.Equal(t, "streaming", Streaming.String())
	assert.Equal(t, "stopping", Stopping.String())
	assert.Equal(t, "stopped", Stopped.String())
	assert.Equal(t, "failed", Failed.String())
	assert.Equal(t, "unknown", State(42).String())
}
