package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingReturnsDefaults(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	cfg := DefaultConfig()
	cfg.Engine.Seed = 42
	cfg.Engine.ResetPolicy = "immediate"
	cfg.Serial.Device = "/dev/ttyACM0"
	require.NoError(t, cfg.Save())

	path, err := ConfigPath()
	require.NoError(t, err)
	assert.FileExists(t, path)

	got, err := Load()
	require.NoError(t, err)
	assert.Equal(t, cfg, got)
}

func TestPartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"timing":{"triggerMs":25}}`), 0644))

	cfg, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, 25, cfg.Timing.TriggerMs)
	assert.Equal(t, 600, cfg.Timing.HoldMs)
	assert.Equal(t, 6, cfg.Clock.Divider)
}

func TestBadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{`), 0644))
	_, err := LoadFile(path)
	assert.Error(t, err)
}

func TestControllers(t *testing.T) {
	cfg := DefaultConfig()
	assert.True(t, cfg.AllowController("Launchpad X LPX MIDI"))
	assert.True(t, cfg.AllowController("Launchpad Mini MK3 LPMiniMK3 MIDI"), "unknown controllers are used")

	cfg.AddController(ControllerConfig{PortName: "Launchpad X LPX MIDI", Type: ControllerLaunchpadX})
	assert.Len(t, cfg.Controllers, 1)
	assert.False(t, cfg.AllowController("Launchpad X LPX MIDI"))

	cfg.AddController(ControllerConfig{PortName: "LP Pro", Type: ControllerLaunchpadPro, AutoConnect: true})
	require.NotNil(t, cfg.FindController("LP Pro"))
	assert.Nil(t, cfg.FindController("nope"))
}

func TestScaleDegrees(t *testing.T) {
	out := DefaultConfig().Output
	assert.Equal(t, out.Scale, out.Degrees(), "no name keeps the explicit scale")

	out.ScaleName = "Dorian"
	assert.Equal(t, [8]uint8{0, 2, 3, 5, 7, 9, 10, 12}, out.Degrees())

	out.ScaleName = "nonesuch"
	assert.Equal(t, out.Scale, out.Degrees())

	for name, s := range Scales {
		assert.Zero(t, s[0], "%s starts on the root", name)
	}
}
