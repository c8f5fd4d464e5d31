// Package session ties one scale, one recording, and one calibration
// together for a single acquisition session. The session owns all three
// explicitly (no ambient globals): the stream-reading goroutine appends to
// the active recording through the regridder, while user actions (capture a
// calibration point, save, load, export) go through the session's methods.
package session

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/mprt/gripscale/pkg/calibration"
	"github.com/mprt/gripscale/pkg/config"
	"github.com/mprt/gripscale/pkg/recording"
	"github.com/mprt/gripscale/pkg/scale"
)

// ErrNoReadings is returned when a calibration point is captured before any
// readings have arrived.
var ErrNoReadings = errors.New("no readings received yet")

// Session owns the active scale, recording, and calibration.
type Session struct {
	cfg *config.Config

	mu    sync.Mutex
	scale scale.Scale
	rec   *recording.Recording
	cal   *calibration.Calibration
	grid  *recording.Regridder
	done  chan struct{}

	cbMu      sync.RWMutex
	callbacks []func(samples []recording.Sample)
}

// New creates a session with an empty recording and an empty calibration.
func New(cfg *config.Config) *Session {
	if cfg == nil {
		cfg = config.Default()
	}
	return &Session{
		cfg:  cfg,
		rec:  recording.NewBounded(cfg.Recording.MaxSamples),
		cal:  calibration.New(),
		grid: recording.NewRegridder(cfg.Sampling.RateHz),
	}
}

// Attach connects the scale and starts consuming its readings into the
// active recording. Only one scale can be attached at a time.
func (s *Session) Attach(sc scale.Scale) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.scale != nil {
		return fmt.Errorf("a scale is already attached")
	}

	if err := sc.Connect(); err != nil {
		return fmt.Errorf("failed to attach scale: %w", err)
	}

	s.scale = sc
	s.done = make(chan struct{})
	go s.consume(sc.Readings(), s.done)

	return nil
}

// Detach closes the attached scale and waits for the reader to drain.
// Detaching with no scale attached is a no-op.
func (s *Session) Detach() error {
	s.mu.Lock()
	sc := s.scale
	done := s.done
	s.scale = nil
	s.done = nil
	s.mu.Unlock()

	if sc == nil {
		return nil
	}

	err := sc.Close()
	if done != nil {
		<-done
	}
	return err
}

// IsAttached returns whether a scale is currently attached.
func (s *Session) IsAttached() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.scale != nil
}

// consume buffers readings and folds them into the recording on a flush
// ticker, so grid slots fill from whole bursts rather than single readings.
func (s *Session) consume(readings <-chan scale.Reading, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(s.cfg.Sampling.FlushInterval)
	defer ticker.Stop()

	var batch []recording.Sample
	for {
		select {
		case r, ok := <-readings:
			if !ok {
				s.flush(batch)
				return
			}
			batch = append(batch, recording.Sample{Timestamp: r.Timestamp, Raw: r.Raw})

		case <-ticker.C:
			if len(batch) > 0 {
				s.flush(batch)
				batch = batch[:0]
			}
		}
	}
}

func (s *Session) flush(batch []recording.Sample) {
	if len(batch) == 0 {
		return
	}

	s.mu.Lock()
	rec := s.rec
	s.grid.Push(rec, batch)
	s.mu.Unlock()

	s.notifyCallbacks(rec)
}

// Recording returns the active recording.
func (s *Session) Recording() *recording.Recording {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rec
}

// SetRecording replaces the active recording wholesale.
func (s *Session) SetRecording(r *recording.Recording) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rec = r
	s.grid.Reset()
}

// Calibration returns the active calibration.
func (s *Session) Calibration() *calibration.Calibration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cal
}

// SetCalibration replaces the active calibration wholesale.
func (s *Session) SetCalibration(c *calibration.Calibration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cal = c
}

// LoadCalibration loads a calibration file and swaps it in. On failure the
// current calibration is left untouched.
func (s *Session) LoadCalibration(path string) error {
	cal, err := calibration.LoadFile(path)
	if err != nil {
		return err
	}
	s.SetCalibration(cal)
	return nil
}

// SaveCalibration persists the active calibration.
func (s *Session) SaveCalibration(path string) error {
	return s.Calibration().SaveFile(path)
}

// LoadRecording loads a recording file and swaps it in for viewing. On
// failure the current recording is left untouched.
func (s *Session) LoadRecording(path string) error {
	rec, err := recording.LoadFile(path)
	if err != nil {
		return err
	}
	s.SetRecording(rec)
	return nil
}

// SaveRecording persists the active recording.
func (s *Session) SaveRecording(path string) error {
	return s.Recording().SaveFile(path)
}

// ForceSeries converts the active recording with the active calibration.
func (s *Session) ForceSeries() ([]recording.ForcePoint, error) {
	s.mu.Lock()
	rec, cal := s.rec, s.cal
	s.mu.Unlock()
	return rec.ForceSeries(cal)
}

// CapturePoint records a calibration point for a known applied weight: the
// raw side is the mean of the most recent capture-window samples, the force
// side is the given value in the given unit.
func (s *Session) CapturePoint(value float64, unit calibration.Unit) error {
	s.mu.Lock()
	rec, cal := s.rec, s.cal
	s.mu.Unlock()

	samples := rec.Samples()
	if len(samples) == 0 {
		return ErrNoReadings
	}

	window := s.cfg.Sampling.CaptureWindow
	if window < 1 {
		window = 1
	}
	if window > len(samples) {
		window = len(samples)
	}

	var sum float64
	for _, smp := range samples[len(samples)-window:] {
		sum += smp.Raw
	}
	raw := sum / float64(window)

	s.mu.Lock()
	defer s.mu.Unlock()
	return cal.AddPointIn(raw, value, unit)
}

// OnUpdate registers a callback invoked with a copy of the recording's
// samples after each flush of new readings. Callbacks should return quickly.
func (s *Session) OnUpdate(cb func(samples []recording.Sample)) {
	s.cbMu.Lock()
	defer s.cbMu.Unlock()
	s.callbacks = append(s.callbacks, cb)
}

func (s *Session) notifyCallbacks(rec *recording.Recording) {
	s.cbMu.RLock()
	callbacks := make([]func(samples []recording.Sample), len(s.callbacks))
	copy(callbacks, s.callbacks)
	s.cbMu.RUnlock()

	if len(callbacks) == 0 {
		return
	}

	samples := rec.Samples()
	for _, cb := range callbacks {
		if cb != nil {
			cb(samples)
		}
	}
}
