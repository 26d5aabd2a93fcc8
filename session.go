package radion

import (
	"fmt"
	"runtime"
	"sync"

	"github.com/rs/xid"

	"github.com/dudk/radion/device"
	"github.com/dudk/radion/metric"
)

// State identifies one of the possible states a session can be in.
type State int

// Session states.
const (
	// Idle means that the session can be started.
	Idle State = iota
	// Starting means that Start was called and the transport is being
	// configured.
	Starting
	// Streaming means that the transfer loop is executing at the moment.
	Streaming
	// Stopping means that Stop was called, but the transfer loop has not
	// returned yet.
	Stopping
	// Stopped means that the session finished cleanly. Terminal.
	Stopped
	// Failed means that the session was terminated by an unrecoverable
	// transport or device error. Terminal.
	Failed
)

// String returns state name.
func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Starting:
		return "starting"
	case Streaming:
		return "streaming"
	case Stopping:
		return "stopping"
	case Stopped:
		return "stopped"
	case Failed:
		return "failed"
	}
	return "unknown"
}

// active keeps track of transports with a running session. At most one
// session may be active per device handle at a time.
var active = struct {
	sync.Mutex
	transports map[Transport]struct{}
}{
	transports: make(map[Transport]struct{}),
}

func register(t Transport) bool {
	active.Lock()
	defer active.Unlock()
	if _, ok := active.transports[t]; ok {
		return false
	}
	active.transports[t] = struct{}{}
	return true
}

func unregister(t Transport) {
	active.Lock()
	defer active.Unlock()
	delete(active.transports, t)
}

// Session streams I/Q sample chunks from a transport to consumer code.
// It owns the buffer pool and the sending side of the event channel and
// holds a non-owning reference to the transport: the caller keeps the
// device alive for the session's duration.
//
// A session runs at most once: Start from Idle, then Stop. The event
// channel is closed after a clean stop, or after a single terminal error
// event when the session fails.
type Session struct {
	uid  string
	name string

	transport Transport
	config    device.Config
	log       Logger
	meter     *metric.Meter

	bufferSize   int
	bufferCount  int
	capacity     int
	policy       Policy
	overrunLimit uint64

	pool *Pool
	out  *channel

	// seq is the next chunk sequence number. Touched only on the transfer
	// goroutine.
	seq uint64

	mu        sync.Mutex
	state     State
	started   bool
	cancelled bool
	failure   error
	cancelc   chan struct{}
	done      chan struct{}
}

// Option provides a way to set functional parameters to a session.
type Option func(s *Session) error

// NewSession creates a new streaming session for the transport with the
// given front end config. The returned session is in Idle state.
func NewSession(t Transport, config device.Config, options ...Option) (*Session, error) {
	s := &Session{
		uid:         newUID(),
		transport:   t,
		config:      config,
		log:         defaultLogger,
		meter:       metric.NewMeter(),
		bufferSize:  defaultBufferSize,
		bufferCount: defaultBufferCount,
		capacity:    defaultCapacity,
		policy:      DropOldest,
		cancelc:     make(chan struct{}),
		done:        make(chan struct{}),
	}
	for _, option := range options {
		if err := option(s); err != nil {
			return nil, err
		}
	}
	// The pool backs both the queue and the transfer in flight: a full
	// queue plus one outstanding transfer must never exhaust it.
	s.pool = NewPool(s.bufferCount+s.capacity+1, s.bufferSize)
	s.out = newChannel(s.capacity, s.policy, s.meter)
	return s, nil
}

// Default streaming parameters.
const (
	defaultBufferSize  = 16384
	defaultBufferCount = 8
	defaultCapacity    = 16
)

// newUID returns new unique id value.
func newUID() string {
	return xid.New().String()
}

// WithLogger sets logger to the session. If this option is not provided,
// silent logger is used.
func WithLogger(logger Logger) Option {
	return func(s *Session) error {
		s.log = logger
		return nil
	}
}

// WithName sets name to the session.
func WithName(n string) Option {
	return func(s *Session) error {
		s.name = n
		return nil
	}
}

// WithBufferSize sets the per-transfer byte count. Must be positive and
// even, so every transfer carries whole I/Q pairs.
func WithBufferSize(n int) Option {
	return func(s *Session) error {
		if n <= 0 || n%2 != 0 {
			return fmt.Errorf("buffer size must be positive and even, got %d", n)
		}
		s.bufferSize = n
		return nil
	}
}

// WithBufferCount sets the number of transfer buffers requested from the
// transport.
func WithBufferCount(n int) Option {
	return func(s *Session) error {
		if n <= 0 {
			return fmt.Errorf("buffer count must be positive, got %d", n)
		}
		s.bufferCount = n
		return nil
	}
}

// WithChannelCapacity sets the bound on queued chunks.
func WithChannelCapacity(n int) Option {
	return func(s *Session) error {
		if n <= 0 {
			return fmt.Errorf("channel capacity must be positive, got %d", n)
		}
		s.capacity = n
		return nil
	}
}

// WithPolicy sets the backpressure policy of the sample channel.
func WithPolicy(p Policy) Option {
	return func(s *Session) error {
		s.policy = p
		return nil
	}
}

// WithOverrunLimit makes the session fail after n overruns. Zero, the
// default, keeps overruns non-fatal.
func WithOverrunLimit(n uint64) Option {
	return func(s *Session) error {
		s.overrunLimit = n
		return nil
	}
}

// Start validates the config, applies it to the transport and spawns the
// dedicated goroutine running the blocking transfer loop. It returns
// without waiting for the first transfer.
//
// A rejected configuration is reported synchronously: the session stays
// Idle, no goroutine is spawned and the buffer pool remains untouched.
func (s *Session) Start() error {
	s.mu.Lock()
	if s.state != Idle {
		s.mu.Unlock()
		return ErrInvalidState
	}
	s.state = Starting
	s.mu.Unlock()

	if !register(s.transport) {
		s.setState(Idle)
		return ErrDeviceBusy
	}
	if err := s.config.Validate(); err != nil {
		unregister(s.transport)
		s.setState(Idle)
		return err
	}
	if err := s.transport.Configure(s.config); err != nil {
		unregister(s.transport)
		s.setState(Idle)
		return fmt.Errorf("configure transport: %w", err)
	}

	s.mu.Lock()
	s.started = true
	s.mu.Unlock()
	go s.stream()
	s.log.Debug(s, " is starting")
	return nil
}

// stream is the dedicated goroutine of the session. It enters the
// transport's blocking transfer loop and owns the terminal transition:
// the terminal event, the channel close and the state change all happen
// before done is closed, so after Stop returns nothing is delivered.
func (s *Session) stream() {
	defer close(s.done)
	// Native transfer loops are thread-bound.
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	s.transition(Starting, Streaming)
	err := s.transport.BeginAsyncTransfer(s.bufferCount, s.bufferSize, s.transfer)

	s.mu.Lock()
	failure := s.failure
	cancelled := s.cancelled
	s.mu.Unlock()

	switch {
	case failure != nil:
		s.out.pushError(failure)
		s.setState(Failed)
	case cancelled:
		if err != nil {
			s.log.Debug(s, " transfer loop returned after cancel: ", err)
		}
		s.setState(Stopped)
	case err != nil:
		s.out.pushError(err)
		s.setState(Failed)
	default:
		s.setState(Stopped)
	}
	s.out.close()
	unregister(s.transport)
	s.log.Debug(s, " is ", s.State())
}

// Stop cancels the transfer loop and waits until the dedicated goroutine
// has returned. After Stop returns no chunk or error event is delivered.
// Stopping an idle, stopped or failed session is a no-op.
func (s *Session) Stop() error {
	s.mu.Lock()
	switch s.state {
	case Idle, Stopped, Failed:
		s.mu.Unlock()
		return nil
	}
	if !s.started {
		s.mu.Unlock()
		return nil
	}
	if s.cancelled {
		// another Stop is already in flight, wait for it
		s.mu.Unlock()
		<-s.done
		return nil
	}
	s.cancelled = true
	s.state = Stopping
	s.mu.Unlock()

	close(s.cancelc)
	err := s.transport.CancelAsyncTransfer()
	<-s.done
	return err
}

// Events returns the receiving side of the sample channel. Consumers range
// over it: the channel is closed after a clean stop, or right after a
// single terminal error event when the session fails.
func (s *Session) Events() <-chan Event {
	return s.out.events
}

// TryReceive returns the next event without blocking. ok is false if no
// event is queued or the stream has ended.
func (s *Session) TryReceive() (e Event, ok bool) {
	select {
	case e, ok = <-s.out.events:
		return e, ok
	default:
		return Event{}, false
	}
}

// Dropped returns the number of chunks evicted by the backpressure policy.
func (s *Session) Dropped() uint64 {
	return s.out.droppedCount()
}

// State returns the current session state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Measure returns a snapshot of the session counters.
func (s *Session) Measure() metric.Measure {
	return s.meter.Measure()
}

// String returns session name if set, uid otherwise.
func (s *Session) String() string {
	if s.name == "" {
		return s.uid
	}
	return fmt.Sprintf("%v %v", s.name, s.uid)
}

func (s *Session) setState(state State) {
	s.mu.Lock()
	s.state = state
	s.mu.Unlock()
}

// transition sets the state only if the current state matches from. It
// keeps a racing Stop from being overwritten by the Starting-to-Streaming
// transition.
func (s *Session) transition(from, to State) {
	s.mu.Lock()
	if s.state == from {
		s.state = to
	}
	s.mu.Unlock()
}

// fail records the first internal failure and cancels the transfer loop.
// The terminal event is delivered by the stream goroutine.
func (s *Session) fail(err error) {
	s.mu.Lock()
	if s.failure == nil {
		s.failure = err
	}
	s.mu.Unlock()
	if cancelErr := s.transport.CancelAsyncTransfer(); cancelErr != nil {
		s.log.Info(s, " cancel after failure: ", cancelErr)
	}
}
