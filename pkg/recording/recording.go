// Package recording accumulates one session's raw-sample timeline and
// persists it as two-column CSV. A recording only becomes a force series
// when paired with a calibration at display or export time; the two stay
// independent so either can be swapped without touching the other.
package recording

import (
	"sync"
	"time"

	"github.com/mprt/gripscale/pkg/calibration"
)

// DefaultMaxSamples bounds the in-memory sample buffer. At 10 samples per
// second this is close to three hours of hangboarding.
const DefaultMaxSamples = 100000

// Sample is one raw reading with its receipt timestamp.
type Sample struct {
	Timestamp time.Time
	Raw       float64
}

// ForcePoint is one entry of a force series: a timestamp paired with force
// in newtons.
type ForcePoint struct {
	Timestamp time.Time
	Newtons   float64
}

// Recording is an ordered, append-only sequence of samples in receipt order.
// Appends happen on the stream-reading goroutine while saves and conversions
// happen on the caller's, so the sample sequence is mutex-guarded.
type Recording struct {
	mu         sync.Mutex
	samples    []Sample
	maxSamples int
}

// New returns an empty recording bounded at DefaultMaxSamples.
func New() *Recording {
	return NewBounded(DefaultMaxSamples)
}

// NewBounded returns an empty recording that keeps at most maxSamples
// samples, dropping the oldest beyond that. maxSamples <= 0 means unbounded.
func NewBounded(maxSamples int) *Recording {
	return &Recording{maxSamples: maxSamples}
}

// Append adds one sample to the end of the sequence. No deduplication, no
// reordering; receipt order is the order.
func (r *Recording) Append(t time.Time, raw float64) {
	r.AppendSample(Sample{Timestamp: t, Raw: raw})
}

// AppendSample adds one sample to the end of the sequence.
func (r *Recording) AppendSample(s Sample) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.samples = append(r.samples, s)
	if r.maxSamples > 0 && len(r.samples) > r.maxSamples {
		drop := len(r.samples) - r.maxSamples
		r.samples = append(r.samples[:0], r.samples[drop:]...)
	}
}

// Last returns the most recent sample, if any.
func (r *Recording) Last() (Sample, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.samples) == 0 {
		return Sample{}, false
	}
	return r.samples[len(r.samples)-1], true
}

// ReplaceLast overwrites the most recent sample. Used by the regridder when
// a new batch of readings lands in the same grid bucket as the last stored
// sample. No-op on an empty recording.
func (r *Recording) ReplaceLast(s Sample) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.samples) == 0 {
		return
	}
	r.samples[len(r.samples)-1] = s
}

// Samples returns a copy of the sample sequence in receipt order.
func (r *Recording) Samples() []Sample {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]Sample, len(r.samples))
	copy(out, r.samples)
	return out
}

// Len returns the number of samples.
func (r *Recording) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.samples)
}

// Clear empties the recording.
func (r *Recording) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.samples = r.samples[:0]
}

// ForceSeries applies the calibration to every sample, preserving order and
// timestamps. It is a pure projection: neither the recording nor the
// calibration is mutated, and calling it twice yields identical results. An
// unusable calibration fails with calibration.ErrNotEnoughPoints; an empty
// recording yields an empty series, not an error.
func (r *Recording) ForceSeries(cal *calibration.Calibration) ([]ForcePoint, error) {
	// Fit once, then evaluate the line per sample.
	slope, intercept, err := cal.Fit()
	if err != nil {
		return nil, err
	}

	samples := r.Samples()
	series := make([]ForcePoint, len(samples))
	for i, s := range samples {
		series[i] = ForcePoint{
			Timestamp: s.Timestamp,
			Newtons:   slope*s.Raw + intercept,
		}
	}
	return series, nil
}
