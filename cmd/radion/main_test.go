package main

import (
	"flag"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dudk/radion"
)

func TestInit(t *testing.T) {
	// check if commands are registered
	assert.Equal(t, 2, len(commands))
}

func TestParseArgs(t *testing.T) {
	name, args := parseArgs([]string{"radion"})
	assert.Equal(t, "", name)
	assert.Nil(t, args)

	name, args = parseArgs([]string{"radion", "capture", "-freq", "100000000"})
	assert.Equal(t, "capture", name)
	assert.Equal(t, []string{"-freq", "100000000"}, args)
}

func TestParsePolicy(t *testing.T) {
	var tests = []struct {
		name     string
		policy   radion.Policy
		negative bool
	}{
		{name: "drop-oldest", policy: radion.DropOldest},
		{name: "drop-newest", policy: radion.DropNewest},
		{name: "block", policy: radion.Block},
		{name: "latest", negative: true},
	}
	for _, test := range tests {
		policy, err := parsePolicy(test.name)
		if test.negative {
			assert.Error(t, err)
		} else {
			assert.NoError(t, err)
			assert.Equal(t, test.policy, policy)
		}
	}
}

func TestCaptureSettings(t *testing.T) {
	cmd := &captureCommand{}
	fs := flag.NewFlagSet("capture", flag.ContinueOnError)
	cmd.Register(fs)
	assert.NoError(t, fs.Parse([]string{"-freq", "104500000", "-policy", "block"}))

	v, err := cmd.settings()
	assert.NoError(t, err)
	assert.Equal(t, "127.0.0.1:1234", v.GetString("server"))
	assert.Equal(t, 2048000, v.GetInt("rate"))
	assert.Equal(t, 104500000, v.GetInt("freq"))
	assert.Equal(t, "block", v.GetString("policy"))
}

func TestCaptureSettingsBadConfig(t *testing.T) {
	cmd := &captureCommand{}
	fs := flag.NewFlagSet("capture", flag.ContinueOnError)
	cmd.Register(fs)
	assert.NoError(t, fs.Parse([]string{"-config", "does-not-exist.yaml"}))

	_, err := cmd.settings()
	assert.Error(t, err)
}
