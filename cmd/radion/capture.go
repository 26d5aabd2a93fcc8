package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/viper"

	"github.com/dudk/radion"
	"github.com/dudk/radion/device"
	"github.com/dudk/radion/log"
	"github.com/dudk/radion/rtltcp"
	"github.com/dudk/radion/wav"
)

type captureCommand struct {
	flags      *flag.FlagSet
	configPath string
}

// sink abstracts the capture output file.
type sink interface {
	Write(buf []byte) error
	Close() error
}

type rawSink struct {
	file *os.File
}

func (s rawSink) Write(buf []byte) error {
	_, err := s.file.Write(buf)
	return err
}

func (s rawSink) Close() error {
	return s.file.Close()
}

func (cmd *captureCommand) Name() string {
	return "capture"
}

func (cmd *captureCommand) Help() string {
	return "Stream I/Q samples from an rtl_tcp server into a file"
}

func (cmd *captureCommand) Register(fs *flag.FlagSet) {
	cmd.flags = fs
	fs.StringVar(&cmd.configPath, "config", "", "path to a config file, flags override its values")
	fs.String("server", "", "rtl_tcp server address")
	fs.Int("freq", 0, "center frequency in Hz (required)")
	fs.Int("rate", 0, "sample rate in Hz")
	fs.Int("ppm", 0, "frequency correction in parts per million")
	fs.Int("gain", 0, "tuner gain in tenths of dB, automatic gain if omitted")
	fs.Bool("agc", false, "enable RTL2832 automatic gain control")
	fs.String("out", "", "output file, .wav extension selects wav format")
	fs.Duration("duration", 0, "stop after this long, stream until interrupted if omitted")
	fs.String("policy", "", "backpressure policy: drop-oldest, drop-newest or block")
}

// settings resolves the effective capture parameters: built-in defaults,
// then the config file, then RADION_ environment variables, then flags
// set on the command line.
func (cmd *captureCommand) settings() (*viper.Viper, error) {
	v := viper.New()
	v.SetDefault("server", "127.0.0.1:1234")
	v.SetDefault("rate", 2048000)
	v.SetDefault("policy", "drop-oldest")
	v.SetEnvPrefix("radion")
	v.AutomaticEnv()
	if cmd.configPath != "" {
		v.SetConfigFile(cmd.configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}
	cmd.flags.Visit(func(f *flag.Flag) {
		v.Set(f.Name, f.Value.String())
	})
	return v, nil
}

func parsePolicy(name string) (radion.Policy, error) {
	switch name {
	case "drop-oldest":
		return radion.DropOldest, nil
	case "drop-newest":
		return radion.DropNewest, nil
	case "block":
		return radion.Block, nil
	}
	return 0, fmt.Errorf("unknown policy: %q", name)
}

func (cmd *captureCommand) Run() error {
	logger := log.GetLogger()
	v, err := cmd.settings()
	if err != nil {
		return err
	}
	if v.GetInt("freq") <= 0 {
		return errors.New("center frequency is required, set -freq")
	}
	policy, err := parsePolicy(v.GetString("policy"))
	if err != nil {
		return err
	}
	config := device.Config{
		SampleRate:     v.GetInt("rate"),
		CenterFreq:     v.GetInt("freq"),
		FreqCorrection: v.GetInt("ppm"),
		AGC:            v.GetBool("agc"),
	}
	if gain := v.GetInt("gain"); gain > 0 {
		config.GainMode = device.GainManual
		config.Gain = gain
	}

	transport, err := rtltcp.Dial(v.GetString("server"))
	if err != nil {
		return err
	}
	defer transport.Close()
	info := transport.Info()
	logger.Infof("connected to %s: tuner %s, %d gains", v.GetString("server"), info.TunerType(), info.GainCount)

	id := uuid.NewString()
	out := v.GetString("out")
	if out == "" {
		out = fmt.Sprintf("capture-%s.wav", id)
	}
	var output sink
	if strings.HasSuffix(out, ".wav") {
		output, err = wav.NewSink(out, config.SampleRate)
	} else {
		var f *os.File
		f, err = os.Create(out)
		output = rawSink{file: f}
	}
	if err != nil {
		return err
	}

	s, err := radion.NewSession(transport, config,
		radion.WithName("capture "+id),
		radion.WithLogger(logger),
		radion.WithPolicy(policy),
	)
	if err != nil {
		output.Close()
		return err
	}
	if err := s.Start(); err != nil {
		output.Close()
		return err
	}
	logger.Infof("capturing %d Hz at %d S/s into %s", config.CenterFreq, config.SampleRate, out)

	stopc := make(chan os.Signal, 1)
	signal.Notify(stopc, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(stopc)
	var timeoutc <-chan time.Time
	if d := v.GetDuration("duration"); d > 0 {
		timer := time.NewTimer(d)
		defer timer.Stop()
		timeoutc = timer.C
	}
	finished := make(chan struct{})
	go func() {
		select {
		case <-stopc:
			logger.Info("interrupted")
		case <-timeoutc:
			logger.Info("capture duration reached")
		case <-finished:
			return
		}
		s.Stop()
	}()

	var streamErr error
	for e := range s.Events() {
		if e.Err != nil {
			if errors.Is(e.Err, radion.ErrOverrun) {
				logger.Warn("sample overrun, consumer too slow")
				continue
			}
			streamErr = e.Err
			continue
		}
		writeErr := output.Write(e.Chunk.Bytes())
		e.Chunk.Release()
		if writeErr != nil {
			s.Stop()
			streamErr = writeErr
		}
	}
	close(finished)

	m := s.Measure()
	logger.Infof("captured %d chunks, %d bytes in %s, dropped %d, overruns %d",
		m.Chunks, m.Bytes, m.Elapsed.Round(time.Millisecond), s.Dropped(), m.Overruns)
	if err := output.Close(); err != nil {
		return err
	}
	return streamErr
}
