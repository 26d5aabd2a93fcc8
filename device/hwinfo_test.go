package device_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dudk/radion/device"
)

func TestEEPROMRoundTrip(t *testing.T) {
	info := device.HwInfo{
		VendorID:     0x0bda,
		ProductID:    0x2838,
		Manufact:     "Realtek",
		Product:      "RTL2838UHIDIR",
		Serial:       "00000001",
		HaveSerial:   true,
		EnableIR:     true,
		RemoteWakeup: false,
	}

	data, err := info.MarshalEEPROM()
	assert.Nil(t, err)
	assert.Equal(t, device.EEPROMSize, len(data))

	parsed, err := device.ParseEEPROM(data)
	assert.Nil(t, err)
	assert.Equal(t, info, parsed)
}

func TestEEPROMInvalidHeader(t *testing.T) {
	data := make([]byte, device.EEPROMSize)
	_, err := device.ParseEEPROM(data)
	assert.Equal(t, device.ErrInvalidHeader, err)

	_, err = device.ParseEEPROM(data[:4])
	assert.Equal(t, device.ErrInvalidHeader, err)
}

func TestEEPROMInvalidDescriptor(t *testing.T) {
	info := device.HwInfo{Manufact: "a", Product: "b", Serial: "c"}
	data, err := info.MarshalEEPROM()
	assert.Nil(t, err)

	// corrupt the descriptor type marker of the first string
	data[0x0a] = 0x04
	_, err = device.ParseEEPROM(data)
	assert.Equal(t, device.ErrInvalidDescriptor, err)

	// descriptor running past the end of the image
	data[0x0a] = 0x03
	data[0x09] = 0xff
	_, err = device.ParseEEPROM(data)
	assert.Equal(t, device.ErrInvalidDescriptor, err)
}

func TestEEPROMStringTooLong(t *testing.T) {
	long := make([]byte, 36)
	for i := range long {
		long[i] = 'x'
	}
	info := device.HwInfo{Manufact: string(long)}
	_, err := info.MarshalEEPROM()
	assert.Equal(t, device.ErrStringTooLong, err)
}

func TestNearestGain(t *testing.T) {
	gains := []int{0, 9, 14, 27, 37, 77, 87, 125, 144, 157, 166, 197,
		207, 229, 254, 280, 297, 328, 338, 364, 372, 386, 402, 421,
		434, 439, 445, 480, 496}
	tests := []struct {
		want    int
		nearest int
	}{
		{want: 0, nearest: 0},
		{want: 500, nearest: 496},
		{want: 100, nearest: 87},
		{want: 420, nearest: 421},
	}
	for _, test := range tests {
		assert.Equal(t, test.nearest, device.NearestGain(gains, test.want))
	}
	assert.Equal(t, 0, device.NearestGain(nil, 100))
}

func TestTunerString(t *testing.T) {
	assert.Equal(t, "R820T", device.TunerR820T.String())
	assert.Equal(t, "Unknown", device.TunerUnknown.String())
	assert.Equal(t, "Other", device.TunerType(42).String())
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name   string
		config device.Config
		field  string
	}{
		{
			name:   "valid",
			config: device.Config{SampleRate: 2048000, CenterFreq: 100000000},
		},
		{
			name:   "valid low range",
			config: device.Config{SampleRate: 250000, CenterFreq: 1090000000},
		},
		{
			name:   "rate too low",
			config: device.Config{SampleRate: 100000, CenterFreq: 100000000},
			field:  "SampleRate",
		},
		{
			name:   "rate in gap",
			config: device.Config{SampleRate: 500000, CenterFreq: 100000000},
			field:  "SampleRate",
		},
		{
			name:   "rate too high",
			config: device.Config{SampleRate: 4000000, CenterFreq: 100000000},
			field:  "SampleRate",
		},
		{
			name:   "missing frequency",
			config: device.Config{SampleRate: 2048000},
			field:  "CenterFreq",
		},
		{
			name: "negative manual gain",
			config: device.Config{
				SampleRate: 2048000,
				CenterFreq: 100000000,
				GainMode:   device.GainManual,
				Gain:       -10,
			},
			field: "Gain",
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			err := test.config.Validate()
			if test.field == "" {
				assert.Nil(t, err)
				return
			}
			var configErr *device.ConfigError
			assert.ErrorAs(t, err, &configErr)
			assert.Equal(t, test.field, configErr.Field)
		})
	}
}
