// Package mock provides a scripted transport to test streaming sessions
// without hardware.
package mock

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/dudk/radion"
	"github.com/dudk/radion/device"
)

const defaultBufferSize = 16384

// Transport is a mock implementation of radion.Transport. It delivers
// synthetic transfers from BeginAsyncTransfer and supports failure
// injection. Every transfer is filled with the transfer index truncated
// to a byte, so tests can tell chunks apart.
type Transport struct {
	// Limit is the number of transfers to deliver before the loop blocks
	// waiting for cancellation. Zero delivers until cancelled.
	Limit int
	// Interval paces transfers when set.
	Interval time.Duration
	// ErrorOnConfigure is returned by Configure when set.
	ErrorOnConfigure error
	// DisconnectAfter makes the transfer loop fail with
	// radion.ErrDeviceDisconnected after that many transfers when set.
	DisconnectAfter int

	delivered int64

	mu           sync.Mutex
	config       device.Config
	configured   bool
	cancelled    bool
	disconnected bool
	cancelc      chan struct{}
}

// Configure stores the config for later inspection.
func (t *Transport) Configure(config device.Config) error {
	if t.ErrorOnConfigure != nil {
		return t.ErrorOnConfigure
	}
	t.mu.Lock()
	t.config = config
	t.configured = true
	t.mu.Unlock()
	return nil
}

// BeginAsyncTransfer delivers synthetic buffers to fn until the limit is
// reached, then blocks until cancelled.
func (t *Transport) BeginAsyncTransfer(bufferCount, bufferSize int, fn radion.TransferFunc) error {
	t.mu.Lock()
	if t.cancelled {
		t.mu.Unlock()
		return nil
	}
	t.cancelc = make(chan struct{})
	cancelc := t.cancelc
	t.mu.Unlock()

	if bufferSize <= 0 {
		bufferSize = defaultBufferSize
	}
	buf := make([]byte, bufferSize)
	for i := 0; t.Limit == 0 || i < t.Limit; i++ {
		select {
		case <-cancelc:
			return nil
		default:
		}
		if t.Interval > 0 {
			select {
			case <-time.After(t.Interval):
			case <-cancelc:
				return nil
			}
		}
		if t.DisconnectAfter > 0 && i >= t.DisconnectAfter {
			t.mu.Lock()
			t.disconnected = true
			t.mu.Unlock()
			return radion.ErrDeviceDisconnected
		}
		for j := range buf {
			buf[j] = byte(i)
		}
		fn(buf)
		atomic.AddInt64(&t.delivered, 1)
	}
	<-cancelc
	return nil
}

// CancelAsyncTransfer unblocks the transfer loop. Consequent calls do
// nothing.
func (t *Transport) CancelAsyncTransfer() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.cancelled {
		return nil
	}
	t.cancelled = true
	if t.cancelc != nil {
		close(t.cancelc)
	}
	return nil
}

// Connected reports false once the mock disconnected.
func (t *Transport) Connected() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return !t.disconnected
}

// Delivered returns the number of transfers handed to the callback.
func (t *Transport) Delivered() int {
	return int(atomic.LoadInt64(&t.delivered))
}

// Configured returns the stored config and whether Configure was called.
func (t *Transport) Configured() (device.Config, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.config, t.configured
}
