package device

import (
	"encoding/binary"
	"errors"
	"unicode/utf16"
)

// EEPROMSize is the size of the dongle configuration EEPROM in bytes.
const EEPROMSize = 256

const (
	strOffset  = 0x09
	maxStrSize = 35

	headerByte0 = 0x28
	headerByte1 = 0x32
	serialFlag  = 0xA5

	remoteWakeupBit = 0x01
	enableIRBit     = 0x02
)

// EEPROM codec errors.
var (
	ErrInvalidHeader     = errors.New("device: no valid EEPROM header")
	ErrInvalidDescriptor = errors.New("device: invalid string descriptor")
	ErrStringTooLong     = errors.New("device: string value too long")
)

// HwInfo is the hardware identification block stored in the dongle EEPROM.
type HwInfo struct {
	VendorID     uint16
	ProductID    uint16
	Manufact     string
	Product      string
	Serial       string
	HaveSerial   bool
	EnableIR     bool
	RemoteWakeup bool
}

// ParseEEPROM decodes the hardware info block from a raw EEPROM image.
func ParseEEPROM(data []byte) (HwInfo, error) {
	var info HwInfo
	if len(data) < strOffset {
		return info, ErrInvalidHeader
	}
	if data[0] != headerByte0 || data[1] != headerByte1 {
		return info, ErrInvalidHeader
	}

	info.VendorID = binary.LittleEndian.Uint16(data[2:4])
	info.ProductID = binary.LittleEndian.Uint16(data[4:6])
	info.HaveSerial = data[6] == serialFlag
	info.RemoteWakeup = data[7]&remoteWakeupBit != 0
	info.EnableIR = data[7]&enableIRBit != 0

	pos := strOffset
	strs := make([]string, 0, 3)
	for i := 0; i < 3; i++ {
		if pos+2 > len(data) {
			return info, ErrInvalidDescriptor
		}
		length := int(data[pos])
		if length < 2 || pos+length > len(data) {
			return info, ErrInvalidDescriptor
		}
		// 0x03 marks a USB string descriptor.
		if data[pos+1] != 0x03 {
			return info, ErrInvalidDescriptor
		}
		units := make([]uint16, 0, (length-2)/2)
		for j := pos + 2; j+1 < pos+length; j += 2 {
			units = append(units, binary.LittleEndian.Uint16(data[j:j+2]))
		}
		strs = append(strs, string(utf16.Decode(units)))
		pos += length
	}
	info.Manufact, info.Product, info.Serial = strs[0], strs[1], strs[2]
	return info, nil
}

// MarshalEEPROM encodes the hardware info block into a fresh EEPROM image.
func (info HwInfo) MarshalEEPROM() ([]byte, error) {
	data := make([]byte, EEPROMSize)
	data[0] = headerByte0
	data[1] = headerByte1
	binary.LittleEndian.PutUint16(data[2:4], info.VendorID)
	binary.LittleEndian.PutUint16(data[4:6], info.ProductID)
	if info.HaveSerial {
		data[6] = serialFlag
	}
	if info.RemoteWakeup {
		data[7] |= remoteWakeupBit
	}
	if info.EnableIR {
		data[7] |= enableIRBit
	}

	pos := strOffset
	for _, s := range []string{info.Manufact, info.Product, info.Serial} {
		units := utf16.Encode([]rune(s))
		length := len(units)*2 + 2
		if length > maxStrSize*2+2 {
			return nil, ErrStringTooLong
		}
		if pos+length > len(data) {
			return nil, ErrStringTooLong
		}
		data[pos] = byte(length)
		data[pos+1] = 0x03
		for i, u := range units {
			binary.LittleEndian.PutUint16(data[pos+2+i*2:pos+4+i*2], u)
		}
		pos += length
	}
	return data, nil
}
