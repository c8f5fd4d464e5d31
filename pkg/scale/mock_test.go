package scale

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mprt/gripscale/pkg/config"
)

func fastMockConfig() *config.MockConfig {
	return &config.MockConfig{
		Baseline:   8400,
		Noise:      100,
		PullHeight: 52000,
		PullPeriod: 20 * time.Second,
		SampleRate: time.Millisecond,
	}
}

func TestMock_ConnectClose(t *testing.T) {
	m := NewMock(fastMockConfig())
	assert.False(t, m.IsConnected())

	require.NoError(t, m.Connect())
	assert.True(t, m.IsConnected())

	assert.Error(t, m.Connect(), "double connect should fail")

	require.NoError(t, m.Close())
	assert.False(t, m.IsConnected())

	// Double close is a no-op
	assert.NoError(t, m.Close())
}

func TestMock_ProducesReadings(t *testing.T) {
	m := NewMock(fastMockConfig())
	require.NoError(t, m.Connect())
	defer m.Close()

	var readings []Reading
	timeout := time.After(5 * time.Second)
	for len(readings) < 5 {
		select {
		case r, ok := <-m.Readings():
			require.True(t, ok, "channel closed early")
			readings = append(readings, r)
		case <-timeout:
			t.Fatal("timed out waiting for readings")
		}
	}

	for i, r := range readings {
		// Raw counts are whole numbers, like the digitizer emits
		assert.Equal(t, r.Raw, float64(int64(r.Raw)))
		if i > 0 {
			assert.False(t, r.Timestamp.Before(readings[i-1].Timestamp), "timestamps must be non-decreasing")
		}
	}
}

func TestMock_NilConfigDefaults(t *testing.T) {
	m := NewMock(nil)
	require.NoError(t, m.Connect())
	defer m.Close()

	select {
	case r := <-m.Readings():
		// Resting signal stays near the baseline
		assert.InDelta(t, 8400, r.Raw, 30000)
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for reading")
	}
}

// TestMock_GracefulShutdown tests that the mock closes its readings channel
// when Close() is called.
func TestMock_GracefulShutdown(t *testing.T) {
	m := NewMock(fastMockConfig())
	require.NoError(t, m.Connect())

	readings := m.Readings()

	received := 0
	done := make(chan struct{})
	go func() {
		defer close(done)
		for range readings {
			received++
			if received >= 3 {
				m.Close()
			}
		}
	}()

	select {
	case <-done:
		// Channel closed successfully
	case <-time.After(5 * time.Second):
		t.Fatal("Readings channel did not close within timeout")
	}

	assert.GreaterOrEqual(t, received, 3)

	_, ok := <-readings
	assert.False(t, ok, "channel should be closed")
}
