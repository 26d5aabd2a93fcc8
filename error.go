package radion

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidState is returned if a session method cannot be executed at
	// this moment.
	ErrInvalidState = errors.New("invalid state")
	// ErrDeviceBusy is returned by Start if another session is already
	// active on the same transport.
	ErrDeviceBusy = errors.New("device is busy")
	// ErrDeviceDisconnected is delivered when the device is removed while
	// streaming. It is terminal: the session fails and no more chunks
	// follow.
	ErrDeviceDisconnected = errors.New("device disconnected")
	// ErrOverrun is delivered when a transfer had to be discarded because
	// the consumer could not keep up. Non-terminal unless the session's
	// overrun limit is reached.
	ErrOverrun = errors.New("buffer overrun")
)

// Native transfer-layer error codes.
const (
	CodeIO           = -1
	CodeInvalidParam = -2
	CodeAccess       = -3
	CodeNoDevice     = -4
	CodeNotFound     = -5
	CodeBusy         = -6
	CodeTimeout      = -7
	CodeOverflow     = -8
	CodePipe         = -9
	CodeInterrupted  = -10
	CodeNoMem        = -11
	CodeNotSupported = -12
)

var codeNames = map[int]string{
	CodeIO:           "input/output error",
	CodeInvalidParam: "invalid parameter",
	CodeAccess:       "access denied",
	CodeNoDevice:     "no such device",
	CodeNotFound:     "not found",
	CodeBusy:         "resource busy",
	CodeTimeout:      "operation timed out",
	CodeOverflow:     "overflow",
	CodePipe:         "pipe error",
	CodeInterrupted:  "interrupted",
	CodeNoMem:        "out of memory",
	CodeNotSupported: "operation not supported",
}

// TransportError carries a native transfer-layer error code.
type TransportError struct {
	Code int
}

func (e *TransportError) Error() string {
	if name, ok := codeNames[e.Code]; ok {
		return fmt.Sprintf("transport: %s", name)
	}
	return fmt.Sprintf("transport: unknown error %d", e.Code)
}

// Is maps device removal and overflow codes onto the stream error
// sentinels, so consumers can match with errors.Is without inspecting
// native codes.
func (e *TransportError) Is(target error) bool {
	switch target {
	case ErrDeviceDisconnected:
		return e.Code == CodeNoDevice
	case ErrOverrun:
		return e.Code == CodeOverflow
	}
	return false
}
