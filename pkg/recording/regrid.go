package recording

import (
	"sort"
	"time"
)

// Regridder folds bursts of incoming readings onto a fixed sample-interval
// grid before they enter a recording. The scale streams much faster than the
// recording rate, so readings landing in the same grid slot are averaged,
// and a batch whose first slot continues the recording's last slot is merged
// into it (weighted by how many readings each side already averaged).
//
// A Regridder carries the reading count behind the recording's last sample
// between batches, so use one Regridder per recording and feed it from a
// single goroutine.
type Regridder struct {
	interval  time.Duration
	lastCount int
}

// NewRegridder creates a regridder for the given grid rate in Hz.
func NewRegridder(rateHz float64) *Regridder {
	if rateHz <= 0 {
		rateHz = 10
	}
	return &Regridder{interval: time.Duration(float64(time.Second) / rateHz)}
}

// Interval returns the grid interval.
func (g *Regridder) Interval() time.Duration {
	return g.interval
}

// Reset forgets the merge state. Call when the target recording is cleared
// or swapped.
func (g *Regridder) Reset() {
	g.lastCount = 0
}

// Push regrids a batch of samples and appends the result to rec.
func (g *Regridder) Push(rec *Recording, batch []Sample) {
	if len(batch) == 0 {
		return
	}

	buckets := regrid(batch, g.interval)

	// The first new slot may overlap the recording's last stored slot.
	if last, ok := rec.Last(); ok {
		first := buckets[0]
		if absDuration(first.ts.Sub(last.Timestamp)) < g.interval {
			n := g.lastCount
			merged := Sample{
				Timestamp: laterTime(first.ts, last.Timestamp),
				Raw:       (last.Raw*float64(n) + first.raw*float64(first.n)) / float64(n+first.n),
			}
			rec.ReplaceLast(merged)
			g.lastCount = n + first.n
			buckets = buckets[1:]
		}
	}

	for _, b := range buckets {
		rec.Append(b.ts, b.raw)
		g.lastCount = b.n
	}
}

// gridBucket is one grid slot: the slot timestamp, the mean of the readings
// that fell into it, and how many there were.
type gridBucket struct {
	ts  time.Time
	raw float64
	n   int
}

// regrid rounds every sample's timestamp to the nearest multiple of
// interval, averages samples sharing a slot, and returns the slots in time
// order.
func regrid(batch []Sample, interval time.Duration) []gridBucket {
	slots := make(map[time.Time]*gridBucket)
	for _, s := range batch {
		ts := s.Timestamp.Round(interval)
		b := slots[ts]
		if b == nil {
			b = &gridBucket{ts: ts}
			slots[ts] = b
		}
		b.raw += s.Raw
		b.n++
	}

	out := make([]gridBucket, 0, len(slots))
	for _, b := range slots {
		b.raw /= float64(b.n)
		out = append(out, *b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ts.Before(out[j].ts) })
	return out
}

func absDuration(d time.Duration) time.Duration {
	if d < 0 {
		return -d
	}
	return d
}

func laterTime(a, b time.Time) time.Time {
	if a.After(b) {
		return a
	}
	return b
}
