package recording

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"time"
)

// ErrMalformed is returned when a persisted recording contains a row that
// does not parse as two numeric fields.
var ErrMalformed = errors.New("malformed recording file")

// Recording files are two-column CSV, one sample per row in receipt order:
// unix timestamp in seconds first, raw count second. Save writes a header
// row; Load tolerates it but does not require it.
var csvHeader = []string{"time", "raw reading"}

// Save serializes the full sample sequence to w.
func (r *Recording) Save(w io.Writer) error {
	return writeSamples(w, r.Samples())
}

// SaveRange serializes the samples whose timestamps fall in [from, to),
// so callers can persist just a region of interest.
func (r *Recording) SaveRange(w io.Writer, from, to time.Time) error {
	var inRange []Sample
	for _, s := range r.Samples() {
		if !s.Timestamp.Before(from) && s.Timestamp.Before(to) {
			inRange = append(inRange, s)
		}
	}
	return writeSamples(w, inRange)
}

func writeSamples(w io.Writer, samples []Sample) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("failed to write recording: %w", err)
	}
	for _, s := range samples {
		rec := []string{
			strconv.FormatFloat(timeToSeconds(s.Timestamp), 'f', 6, 64),
			strconv.FormatFloat(s.Raw, 'g', -1, 64),
		}
		if err := cw.Write(rec); err != nil {
			return fmt.Errorf("failed to write recording: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// Load deserializes a recording from r into a fresh Recording bounded at
// DefaultMaxSamples. Any existing recording is untouched, so a caller can
// keep displaying its current one when Load fails.
func Load(r io.Reader) (*Recording, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	rec := New()
	row := 0
	for {
		fields, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: row %d: %v", ErrMalformed, row+1, err)
		}
		row++

		if row == 1 && isHeader(fields) {
			continue
		}
		if len(fields) != 2 {
			return nil, fmt.Errorf("%w: row %d: want 2 fields, got %d", ErrMalformed, row, len(fields))
		}

		seconds, err := strconv.ParseFloat(fields[0], 64)
		if err != nil {
			return nil, fmt.Errorf("%w: row %d: bad timestamp %q", ErrMalformed, row, fields[0])
		}
		raw, err := strconv.ParseFloat(fields[1], 64)
		if err != nil {
			return nil, fmt.Errorf("%w: row %d: bad raw value %q", ErrMalformed, row, fields[1])
		}
		rec.Append(secondsToTime(seconds), raw)
	}
	return rec, nil
}

// SaveFile saves the recording to a file.
func (r *Recording) SaveFile(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create recording file: %w", err)
	}
	defer f.Close()

	if err := r.Save(f); err != nil {
		return err
	}
	return f.Close()
}

// LoadFile loads a recording from a file.
func LoadFile(path string) (*Recording, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open recording file: %w", err)
	}
	defer f.Close()

	return Load(f)
}

func isHeader(fields []string) bool {
	if len(fields) != len(csvHeader) {
		return false
	}
	for i, field := range fields {
		if field != csvHeader[i] {
			return false
		}
	}
	return true
}

// timeToSeconds converts a timestamp to unix seconds, the persisted form.
func timeToSeconds(t time.Time) float64 {
	return float64(t.UnixNano()) / float64(time.Second)
}

// secondsToTime is the inverse of timeToSeconds, good to about a
// microsecond at current epochs.
func secondsToTime(seconds float64) time.Time {
	return time.Unix(0, int64(math.Round(seconds*float64(time.Second))))
}
