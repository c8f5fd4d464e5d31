package recording

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegrid_Buckets(t *testing.T) {
	// Readings at t=1,3,4s on a 5s grid land in slots 0 and 5, the
	// latter averaging its two readings.
	interval := 5 * time.Second
	batch := []Sample{
		{Timestamp: time.Unix(1, 0), Raw: 4},
		{Timestamp: time.Unix(3, 0), Raw: 6},
		{Timestamp: time.Unix(4, 0), Raw: 8},
	}

	buckets := regrid(batch, interval)
	require.Len(t, buckets, 2)

	assert.Equal(t, time.Unix(0, 0), buckets[0].ts)
	assert.Equal(t, 4.0, buckets[0].raw)
	assert.Equal(t, 1, buckets[0].n)

	assert.Equal(t, time.Unix(5, 0), buckets[1].ts)
	assert.Equal(t, 7.0, buckets[1].raw)
	assert.Equal(t, 2, buckets[1].n)
}

func TestRegrid_SortsSlots(t *testing.T) {
	interval := time.Second
	batch := []Sample{
		{Timestamp: time.Unix(9, 0), Raw: 9},
		{Timestamp: time.Unix(3, 0), Raw: 3},
		{Timestamp: time.Unix(6, 0), Raw: 6},
	}

	buckets := regrid(batch, interval)
	require.Len(t, buckets, 3)
	assert.True(t, buckets[0].ts.Before(buckets[1].ts))
	assert.True(t, buckets[1].ts.Before(buckets[2].ts))
}

func TestRegridder_Push(t *testing.T) {
	g := NewRegridder(0.2) // 5 second grid
	rec := New()

	g.Push(rec, []Sample{
		{Timestamp: time.Unix(1, 0), Raw: 4},
		{Timestamp: time.Unix(3, 0), Raw: 6},
		{Timestamp: time.Unix(4, 0), Raw: 8},
	})

	samples := rec.Samples()
	require.Len(t, samples, 2)
	assert.Equal(t, 4.0, samples[0].Raw)
	assert.Equal(t, 7.0, samples[1].Raw)
}

func TestRegridder_MergesBoundaryBucket(t *testing.T) {
	g := NewRegridder(0.2) // 5 second grid
	rec := New()

	g.Push(rec, []Sample{
		{Timestamp: time.Unix(4, 0), Raw: 6},
		{Timestamp: time.Unix(6, 0), Raw: 8},
	})
	require.Equal(t, 1, rec.Len()) // both land in slot 5
	last, _ := rec.Last()
	assert.Equal(t, 7.0, last.Raw)

	// The next batch starts in the same slot: its readings merge into the
	// stored sample, weighted by how many readings each side averaged.
	g.Push(rec, []Sample{
		{Timestamp: time.Unix(7, 0), Raw: 13},
	})
	require.Equal(t, 1, rec.Len())
	last, _ = rec.Last()
	assert.InDelta(t, (7.0*2+13.0*1)/3, last.Raw, 1e-9)
}

func TestRegridder_NoMergeAcrossSlots(t *testing.T) {
	g := NewRegridder(1) // 1 second grid
	rec := New()

	g.Push(rec, []Sample{{Timestamp: time.Unix(1, 0), Raw: 10}})
	g.Push(rec, []Sample{{Timestamp: time.Unix(5, 0), Raw: 20}})

	samples := rec.Samples()
	require.Len(t, samples, 2)
	assert.Equal(t, 10.0, samples[0].Raw)
	assert.Equal(t, 20.0, samples[1].Raw)
}

func TestRegridder_MergeIntoLoadedRecording(t *testing.T) {
	// A fresh regridder has no count behind a pre-existing last sample, so
	// a merge replaces it with the new readings' average outright.
	g := NewRegridder(0.2)
	rec := New()
	rec.Append(time.Unix(5, 0), 100)

	g.Push(rec, []Sample{{Timestamp: time.Unix(6, 0), Raw: 40}})

	require.Equal(t, 1, rec.Len())
	last, _ := rec.Last()
	assert.Equal(t, 40.0, last.Raw)
}

func TestRegridder_EmptyBatch(t *testing.T) {
	g := NewRegridder(10)
	rec := New()
	g.Push(rec, nil)
	assert.Equal(t, 0, rec.Len())
}

func TestNewRegridder_Interval(t *testing.T) {
	assert.Equal(t, 100*time.Millisecond, NewRegridder(10).Interval())
	assert.Equal(t, time.Second, NewRegridder(1).Interval())
	// Nonsense rates fall back to 10 Hz
	assert.Equal(t, 100*time.Millisecond, NewRegridder(0).Interval())
	assert.Equal(t, 100*time.Millisecond, NewRegridder(-5).Interval())
}
