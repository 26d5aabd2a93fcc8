// Package wav saves raw I/Q sample streams to wav files. Each I/Q pair
// becomes one two-channel frame: I on the left channel, Q on the right,
// preserving the dongle's unsigned 8 bit sample format. Files written
// this way open directly in SDR tools that accept wav recordings.
package wav

import (
	"errors"
	"os"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

const (
	numChannels = 2
	bitDepth    = 8
	pcmFormat   = 1
)

// ErrOddLength is returned when a written buffer splits an I/Q pair.
var ErrOddLength = errors.New("wav: buffer length must be even")

// Sink writes interleaved I/Q bytes to a wav file.
type Sink struct {
	file    *os.File
	encoder *wav.Encoder
	ib      *audio.IntBuffer
}

// NewSink creates a wav file for an I/Q stream captured at the given
// sample rate.
func NewSink(path string, sampleRate int) (*Sink, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	return &Sink{
		file:    f,
		encoder: wav.NewEncoder(f, sampleRate, bitDepth, numChannels, pcmFormat),
		ib: &audio.IntBuffer{
			Format: &audio.Format{
				NumChannels: numChannels,
				SampleRate:  sampleRate,
			},
			SourceBitDepth: bitDepth,
		},
	}, nil
}

// Write appends interleaved I/Q bytes to the file. The buffer is free to
// reuse once Write returns.
func (s *Sink) Write(buf []byte) error {
	if len(buf)%2 != 0 {
		return ErrOddLength
	}
	if cap(s.ib.Data) < len(buf) {
		s.ib.Data = make([]int, len(buf))
	}
	s.ib.Data = s.ib.Data[:len(buf)]
	for i, b := range buf {
		s.ib.Data[i] = int(b)
	}
	return s.encoder.Write(s.ib)
}

// Close finalises the wav header and closes the file.
func (s *Sink) Close() error {
	if err := s.encoder.Close(); err != nil {
		s.file.Close()
		return err
	}
	return s.file.Close()
}
