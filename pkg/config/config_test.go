package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, "COM3", cfg.Serial.Port)
	assert.Equal(t, 9600, cfg.Serial.BaudRate)
	assert.Equal(t, 100, cfg.Serial.BufferSize)
	assert.Equal(t, 10.0, cfg.Sampling.RateHz)
	assert.Equal(t, 33*time.Millisecond, cfg.Sampling.FlushInterval)
	assert.Equal(t, 20, cfg.Sampling.CaptureWindow)
	assert.Equal(t, 100000, cfg.Recording.MaxSamples)
	assert.Equal(t, "N", cfg.Display.Unit)
	assert.Equal(t, 1000, cfg.Display.MaxPoints)
	assert.Equal(t, 8400.0, cfg.Mock.Baseline)
	assert.Equal(t, 20*time.Second, cfg.Mock.PullPeriod)
}

func TestLoad_MissingFile(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "does-not-exist.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoad_ValidFile(t *testing.T) {
	content := `serial:
  port: /dev/ttyACM0
  baud_rate: 115200
sampling:
  rate_hz: 25
display:
  unit: kg
`
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "/dev/ttyACM0", cfg.Serial.Port)
	assert.Equal(t, 115200, cfg.Serial.BaudRate)
	assert.Equal(t, 25.0, cfg.Sampling.RateHz)
	assert.Equal(t, "kg", cfg.Display.Unit)

	// Fields absent from the file fall back to defaults
	assert.Equal(t, 100, cfg.Serial.BufferSize)
	assert.Equal(t, 33*time.Millisecond, cfg.Sampling.FlushInterval)
	assert.Equal(t, 100000, cfg.Recording.MaxSamples)
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("serial: [not: valid"), 0644))

	cfg, err := Load(path)
	assert.Error(t, err)
	assert.Nil(t, cfg)
}

func TestSaveLoad_RoundTrip(t *testing.T) {
	cfg := Default()
	cfg.Serial.Port = "/dev/ttyUSB0"
	cfg.Sampling.RateHz = 50
	cfg.Mock.PullPeriod = 5 * time.Second

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, cfg.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}
