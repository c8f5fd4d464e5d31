package scale

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/mprt/gripscale/pkg/config"
)

// Mock simulates a scale for testing and development without hardware.
// It generates noisy raw counts with periodic simulated pulls.
type Mock struct {
	cfg *config.MockConfig

	readings  chan Reading
	mu        sync.RWMutex
	ctx       context.Context
	cancel    context.CancelFunc
	connected bool
	genDone   chan struct{}
}

// NewMock creates a new mocked scale instance.
func NewMock(cfg *config.MockConfig) *Mock {
	if cfg == nil {
		cfg = &config.MockConfig{
			Baseline:   8400,
			Noise:      100,
			PullHeight: 52000,
			PullPeriod: 20 * time.Second,
			SampleRate: 12500 * time.Microsecond, // ~80 Hz, matches the firmware
		}
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Mock{
		cfg:       cfg,
		readings:  make(chan Reading, DefaultBufferSize),
		ctx:       ctx,
		cancel:    cancel,
		connected: false,
	}
}

// Connect simulates connecting to the scale.
func (m *Mock) Connect() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.connected {
		return fmt.Errorf("already connected")
	}

	m.connected = true
	m.genDone = make(chan struct{})

	go m.generateReadings(time.Now(), m.genDone)

	return nil
}

// Close stops the mocked scale.
func (m *Mock) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.connected {
		return nil
	}

	m.cancel()
	m.connected = false

	// Wait for the generator to stop before closing the channel so it can
	// never send on a closed channel.
	<-m.genDone
	close(m.readings)

	return nil
}

// Readings returns the channel for reading samples.
func (m *Mock) Readings() <-chan Reading {
	return m.readings
}

// IsConnected returns whether the scale is currently connected.
func (m *Mock) IsConnected() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.connected
}

// generateReadings generates simulated readings on a ticker.
func (m *Mock) generateReadings(start time.Time, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(m.cfg.SampleRate)
	defer ticker.Stop()

	for {
		select {
		case <-m.ctx.Done():
			return
		case now := <-ticker.C:
			reading := m.generateReading(start, now)
			select {
			case m.readings <- reading:
			case <-m.ctx.Done():
				return
			default:
				// Channel full, skip
			}
		}
	}
}

// generateReading generates a single simulated reading.
// The signal is a resting baseline with a raised-cosine "pull" once per
// period, plus deterministic pseudo-noise, rounded to integer counts the way
// the real digitizer would emit them.
func (m *Mock) generateReading(start, now time.Time) Reading {
	elapsed := now.Sub(start)

	raw := m.cfg.Baseline

	// Simulated pull: the first quarter of every period ramps up and back
	// down with a raised cosine.
	period := m.cfg.PullPeriod.Seconds()
	if period > 0 {
		phase := math.Mod(elapsed.Seconds(), period) / period
		if phase < 0.25 {
			raw += m.cfg.PullHeight * 0.5 * (1 - math.Cos(2*math.Pi*phase/0.25))
		}
	}

	// Deterministic pseudo-noise: two incommensurate sinusoids of the
	// elapsed time.
	noise := (math.Sin(float64(elapsed.Nanoseconds())*0.001) +
		math.Cos(float64(elapsed.Nanoseconds())*0.0013)) *
		m.cfg.Noise * 0.5
	raw += noise

	return Reading{Timestamp: now, Raw: math.Round(raw)}
}
