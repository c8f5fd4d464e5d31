package calibration

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
)

// ErrMalformed is returned when a persisted calibration contains a row that
// does not parse as two numeric fields.
var ErrMalformed = errors.New("malformed calibration file")

// Calibration files are two-column CSV, one point per row in point order:
// raw count first, force in newtons second. Save writes a header row; Load
// tolerates it but does not require it.
var csvHeader = []string{"measured", "real"}

// Save serializes the point sequence to w.
func (c *Calibration) Save(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("failed to write calibration: %w", err)
	}
	for _, p := range c.pts {
		rec := []string{
			strconv.FormatFloat(p.Raw, 'g', -1, 64),
			strconv.FormatFloat(p.Newtons, 'g', -1, 64),
		}
		if err := cw.Write(rec); err != nil {
			return fmt.Errorf("failed to write calibration: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// Load deserializes a calibration from r. It returns a fresh Calibration and
// never touches any existing one, so a caller can keep its current
// calibration when Load fails.
func Load(r io.Reader) (*Calibration, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	c := New()
	row := 0
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: row %d: %v", ErrMalformed, row+1, err)
		}
		row++

		if row == 1 && isHeader(rec) {
			continue
		}
		if len(rec) != 2 {
			return nil, fmt.Errorf("%w: row %d: want 2 fields, got %d", ErrMalformed, row, len(rec))
		}

		raw, err := strconv.ParseFloat(rec[0], 64)
		if err != nil {
			return nil, fmt.Errorf("%w: row %d: bad raw value %q", ErrMalformed, row, rec[0])
		}
		newtons, err := strconv.ParseFloat(rec[1], 64)
		if err != nil {
			return nil, fmt.Errorf("%w: row %d: bad force value %q", ErrMalformed, row, rec[1])
		}
		c.AddPoint(raw, newtons)
	}
	return c, nil
}

// SaveFile saves the calibration to a file.
func (c *Calibration) SaveFile(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create calibration file: %w", err)
	}
	defer f.Close()

	if err := c.Save(f); err != nil {
		return err
	}
	return f.Close()
}

// LoadFile loads a calibration from a file.
func LoadFile(path string) (*Calibration, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open calibration file: %w", err)
	}
	defer f.Close()

	return Load(f)
}

func isHeader(rec []string) bool {
	if len(rec) != len(csvHeader) {
		return false
	}
	for i, field := range rec {
		if field != csvHeader[i] {
			return false
		}
	}
	return true
}
