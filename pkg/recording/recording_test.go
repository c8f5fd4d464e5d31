package recording

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mprt/gripscale/pkg/calibration"
)

func twoPointCal(t *testing.T) *calibration.Calibration {
	t.Helper()
	c := calibration.New()
	c.AddPoint(100, 0.0)
	c.AddPoint(200, 10.0)
	return c
}

func TestAppend_Order(t *testing.T) {
	r := New()
	now := time.Now()

	r.Append(now, 100)
	r.Append(now.Add(100*time.Millisecond), 150)
	r.Append(now.Add(200*time.Millisecond), 150) // duplicates are kept

	samples := r.Samples()
	require.Len(t, samples, 3)
	assert.Equal(t, 100.0, samples[0].Raw)
	assert.Equal(t, 150.0, samples[1].Raw)
	assert.Equal(t, 150.0, samples[2].Raw)
	assert.True(t, samples[0].Timestamp.Before(samples[1].Timestamp))
}

func TestAppend_Bounded(t *testing.T) {
	r := NewBounded(3)
	now := time.Now()

	for i := 0; i < 5; i++ {
		r.Append(now.Add(time.Duration(i)*time.Second), float64(i))
	}

	samples := r.Samples()
	require.Len(t, samples, 3)
	// Oldest dropped
	assert.Equal(t, 2.0, samples[0].Raw)
	assert.Equal(t, 4.0, samples[2].Raw)
}

func TestLastAndReplaceLast(t *testing.T) {
	r := New()

	_, ok := r.Last()
	assert.False(t, ok)

	// ReplaceLast on empty is a no-op
	r.ReplaceLast(Sample{Raw: 1})
	assert.Equal(t, 0, r.Len())

	now := time.Now()
	r.Append(now, 100)
	r.Append(now.Add(time.Second), 200)

	last, ok := r.Last()
	require.True(t, ok)
	assert.Equal(t, 200.0, last.Raw)

	r.ReplaceLast(Sample{Timestamp: now.Add(time.Second), Raw: 250})
	last, _ = r.Last()
	assert.Equal(t, 250.0, last.Raw)
	assert.Equal(t, 2, r.Len())
}

func TestForceSeries(t *testing.T) {
	r := New()
	now := time.Now()
	r.Append(now, 100)
	r.Append(now.Add(time.Second), 150)
	r.Append(now.Add(2*time.Second), 300)

	series, err := r.ForceSeries(twoPointCal(t))
	require.NoError(t, err)
	require.Len(t, series, 3)

	assert.InDelta(t, 0.0, series[0].Newtons, 1e-9)
	assert.InDelta(t, 5.0, series[1].Newtons, 1e-9)
	assert.InDelta(t, 20.0, series[2].Newtons, 1e-9) // extrapolated
	assert.Equal(t, now, series[0].Timestamp)
}

func TestForceSeries_ReflectsNewAppends(t *testing.T) {
	r := New()
	cal := twoPointCal(t)
	now := time.Now()

	r.Append(now, 100)
	series, err := r.ForceSeries(cal)
	require.NoError(t, err)
	require.Len(t, series, 1)

	// A new append shows up without any save/load cycle.
	r.Append(now.Add(time.Second), 200)
	series, err = r.ForceSeries(cal)
	require.NoError(t, err)
	require.Len(t, series, 2)
	assert.InDelta(t, 10.0, series[1].Newtons, 1e-9)
}

func TestForceSeries_Idempotent(t *testing.T) {
	r := New()
	now := time.Now()
	r.Append(now, 123)
	r.Append(now.Add(time.Second), 456)
	cal := twoPointCal(t)

	first, err := r.ForceSeries(cal)
	require.NoError(t, err)
	second, err := r.ForceSeries(cal)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 2, r.Len())
	assert.Equal(t, 2, cal.Len())
}

func TestForceSeries_EmptyRecording(t *testing.T) {
	r := New()

	series, err := r.ForceSeries(twoPointCal(t))
	require.NoError(t, err)
	assert.Empty(t, series)
}

func TestForceSeries_InsufficientCalibration(t *testing.T) {
	r := New()
	r.Append(time.Now(), 100)

	_, err := r.ForceSeries(calibration.New())
	assert.ErrorIs(t, err, calibration.ErrNotEnoughPoints)

	one := calibration.New()
	one.AddPoint(100, 0)
	_, err = r.ForceSeries(one)
	assert.ErrorIs(t, err, calibration.ErrNotEnoughPoints)
}

func TestSamples_Copy(t *testing.T) {
	r := New()
	r.Append(time.Now(), 100)

	samples := r.Samples()
	samples[0].Raw = 999

	assert.Equal(t, 100.0, r.Samples()[0].Raw)
}

func TestClear(t *testing.T) {
	r := New()
	r.Append(time.Now(), 100)
	r.Clear()
	assert.Equal(t, 0, r.Len())
}
