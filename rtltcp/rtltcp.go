// Package rtltcp implements the radion transport over the rtl_tcp
// network protocol, so a session can stream from a dongle served by the
// stock rtl_tcp tool instead of a locally attached device.
package rtltcp

import (
	"encoding/binary"
	"fmt"
	"io"
	"net"
	"sync"
	"sync/atomic"

	"github.com/dudk/radion"
	"github.com/dudk/radion/device"
)

// dongleMagic starts every rtl_tcp handshake.
var dongleMagic = [4]byte{'R', 'T', 'L', '0'}

const defaultBufferSize = 16384

// rtl_tcp command identifiers.
const (
	cmdCenterFreq = iota + 1
	cmdSampleRate
	cmdGainMode
	cmdGain
	cmdFreqCorrection
	cmdIFGain
	cmdTestMode
	cmdAGCMode
	cmdDirectSampling
	cmdOffsetTuning
	cmdRTLXtalFreq
	cmdTunerXtalFreq
	cmdGainByIndex
)

// DongleInfo is the fixed-size block the server sends on connect.
type DongleInfo struct {
	Magic     [4]byte
	Tuner     uint32
	GainCount uint32
}

// Valid checks the handshake magic.
func (d DongleInfo) Valid() bool {
	return d.Magic == dongleMagic
}

// TunerType returns the tuner chip behind the served dongle.
func (d DongleInfo) TunerType() device.TunerType {
	return device.TunerType(d.Tuner)
}

// String returns dongle info string.
func (d DongleInfo) String() string {
	return fmt.Sprintf("{Magic:%q Tuner:%s GainCount:%d}", d.Magic, d.TunerType(), d.GainCount)
}

// Transport is a radion transport backed by an rtl_tcp connection.
type Transport struct {
	conn net.Conn
	info DongleInfo

	writeMu      sync.Mutex
	cancelled    atomic.Bool
	disconnected atomic.Bool
}

// Dial connects to an rtl_tcp server and reads the dongle info handshake.
func Dial(addr string) (*Transport, error) {
	conn, err := net.Dial("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("rtltcp: dial %s: %w", addr, err)
	}
	t := &Transport{conn: conn}
	if err := binary.Read(conn, binary.BigEndian, &t.info); err != nil {
		conn.Close()
		return nil, fmt.Errorf("rtltcp: read dongle info: %w", err)
	}
	if !t.info.Valid() {
		conn.Close()
		return nil, fmt.Errorf("rtltcp: invalid magic number: expected %q received %q", dongleMagic, t.info.Magic)
	}
	return t, nil
}

// Info returns the dongle info received on connect.
func (t *Transport) Info() DongleInfo {
	return t.info
}

// command sends one 5-byte command record: id followed by a big-endian
// 32-bit parameter.
func (t *Transport) command(id uint8, param uint32) error {
	t.writeMu.Lock()
	defer t.writeMu.Unlock()
	var buf [5]byte
	buf[0] = id
	binary.BigEndian.PutUint32(buf[1:], param)
	if _, err := t.conn.Write(buf[:]); err != nil {
		return fmt.Errorf("rtltcp: command %d: %w", id, err)
	}
	return nil
}

func boolParam(on bool) uint32 {
	if on {
		return 1
	}
	return 0
}

// Configure applies the front end config to the served dongle. rtl_tcp
// offers no acknowledgement for commands: rejection surfaces as a closed
// connection on the next read.
func (t *Transport) Configure(config device.Config) error {
	if err := config.Validate(); err != nil {
		return err
	}
	type command struct {
		id    uint8
		param uint32
	}
	commands := []command{
		{cmdSampleRate, uint32(config.SampleRate)},
		{cmdCenterFreq, uint32(config.CenterFreq)},
		{cmdFreqCorrection, uint32(int32(config.FreqCorrection))},
		{cmdGainMode, boolParam(config.GainMode == device.GainManual)},
	}
	if config.GainMode == device.GainManual {
		commands = append(commands, command{cmdGain, uint32(int32(config.Gain))})
	}
	commands = append(commands,
		command{cmdAGCMode, boolParam(config.AGC)},
		command{cmdDirectSampling, boolParam(config.DirectSampling)},
		command{cmdOffsetTuning, boolParam(config.OffsetTuning)},
	)
	for _, c := range commands {
		if err := t.command(c.id, c.param); err != nil {
			return err
		}
	}
	return nil
}

// BeginAsyncTransfer blocks on the sample stream, invoking fn for every
// bufferSize bytes received, until cancelled or the connection fails.
func (t *Transport) BeginAsyncTransfer(bufferCount, bufferSize int, fn radion.TransferFunc) error {
	if bufferSize <= 0 {
		bufferSize = defaultBufferSize
	}
	if tcp, ok := t.conn.(*net.TCPConn); ok && bufferCount > 0 {
		// size the socket buffer to the transfer pipeline
		tcp.SetReadBuffer(bufferCount * bufferSize)
	}
	buf := make([]byte, bufferSize)
	for {
		if _, err := io.ReadFull(t.conn, buf); err != nil {
			return t.readError(err)
		}
		fn(buf)
	}
}

// readError classifies a failed read. A read failing after cancellation is
// the expected way the loop unblocks; anything else means the link to the
// dongle is gone.
func (t *Transport) readError(err error) error {
	if t.cancelled.Load() {
		return nil
	}
	t.disconnected.Store(true)
	return fmt.Errorf("%w: %v", radion.ErrDeviceDisconnected, err)
}

// CancelAsyncTransfer closes the connection, which unblocks the transfer
// loop. Consequent calls do nothing.
func (t *Transport) CancelAsyncTransfer() error {
	if !t.cancelled.CompareAndSwap(false, true) {
		return nil
	}
	return t.conn.Close()
}

// Close releases the connection. The transport cannot be reused.
func (t *Transport) Close() error {
	return t.CancelAsyncTransfer()
}

// Connected reports whether the link to the served dongle is alive.
func (t *Transport) Connected() bool {
	return !t.cancelled.Load() && !t.disconnected.Load()
}
