// Package calibration maps raw scale counts to physical force. A calibration
// is a set of (raw count, known force) correspondence points gathered by
// loading the scale with known weights; the conversion is the least-squares
// line through all of them, so with exactly two distinct points it is the
// exact interpolating line, and extrapolation beyond the calibrated range is
// allowed (real pulls exceed calibration weights).
package calibration

import (
	"errors"
	"math"

	"gonum.org/v1/gonum/stat"
)

// ErrNotEnoughPoints is returned when a conversion is requested with fewer
// than two distinct calibration points. A line cannot be fit through less.
var ErrNotEnoughPoints = errors.New("calibration needs at least 2 points with distinct raw values")

// Point is one known correspondence between a raw digitizer count and the
// force, in newtons, that produced it.
type Point struct {
	Raw     float64
	Newtons float64
}

// Calibration is an ordered set of calibration points. Order is insertion
// order; points are not required to be sorted or unique. The zero value is
// an empty, unusable calibration.
//
// A Calibration is not safe for concurrent use; the session serializes
// access to it.
type Calibration struct {
	pts []Point
}

// New returns an empty calibration.
func New() *Calibration {
	return &Calibration{}
}

// FromPoints builds a calibration from a point slice, preserving order.
// The slice is copied.
func FromPoints(pts []Point) *Calibration {
	c := &Calibration{pts: make([]Point, len(pts))}
	copy(c.pts, pts)
	return c
}

// AddPoint appends a calibration point. Duplicates and out-of-order raw
// values are accepted; they simply all feed the fit.
func (c *Calibration) AddPoint(raw, newtons float64) {
	c.pts = append(c.pts, Point{Raw: raw, Newtons: newtons})
}

// AddPointIn appends a point whose force was measured in unit u, normalizing
// it to newtons first.
func (c *Calibration) AddPointIn(raw, value float64, u Unit) error {
	newtons, err := ConvertBetween(value, u, Newtons)
	if err != nil {
		return err
	}
	c.AddPoint(raw, newtons)
	return nil
}

// RemovePoint removes the first point equal to p and reports whether one was
// removed.
func (c *Calibration) RemovePoint(p Point) bool {
	for i, q := range c.pts {
		if q == p {
			c.pts = append(c.pts[:i], c.pts[i+1:]...)
			return true
		}
	}
	return false
}

// Points returns a copy of the point sequence in insertion order.
func (c *Calibration) Points() []Point {
	pts := make([]Point, len(c.pts))
	copy(pts, c.pts)
	return pts
}

// Len returns the number of calibration points.
func (c *Calibration) Len() int {
	return len(c.pts)
}

// Fit returns the slope and intercept of the least-squares line
// newtons = slope*raw + intercept through all points. The fit is computed
// on demand; it is cheap at calibration sizes (a handful of points).
func (c *Calibration) Fit() (slope, intercept float64, err error) {
	if !c.usable() {
		return 0, 0, ErrNotEnoughPoints
	}

	xs := make([]float64, len(c.pts))
	ys := make([]float64, len(c.pts))
	for i, p := range c.pts {
		xs[i] = p.Raw
		ys[i] = p.Newtons
	}

	intercept, slope = stat.LinearRegression(xs, ys, nil, false)
	if math.IsNaN(slope) || math.IsInf(slope, 0) {
		// Degenerate geometry (e.g. a vertical point set) slipped past the
		// distinct-raw check through rounding.
		return 0, 0, ErrNotEnoughPoints
	}
	return slope, intercept, nil
}

// Convert maps a raw count to force in newtons using the fitted line.
// It fails with ErrNotEnoughPoints when the calibration is unusable.
func (c *Calibration) Convert(raw float64) (float64, error) {
	slope, intercept, err := c.Fit()
	if err != nil {
		return 0, err
	}
	return slope*raw + intercept, nil
}

// ConvertIn is Convert with the result expressed in unit u.
func (c *Calibration) ConvertIn(raw float64, u Unit) (float64, error) {
	newtons, err := c.Convert(raw)
	if err != nil {
		return 0, err
	}
	return ConvertBetween(newtons, Newtons, u)
}

// RawFor inverts the fitted line, returning the raw count that would read as
// the given force. Used for annotating target forces on a raw trace.
func (c *Calibration) RawFor(newtons float64) (float64, error) {
	slope, intercept, err := c.Fit()
	if err != nil {
		return 0, err
	}
	if slope == 0 {
		return 0, ErrNotEnoughPoints
	}
	return (newtons - intercept) / slope, nil
}

// usable reports whether a line can be fit: at least two points with at
// least two distinct raw values.
func (c *Calibration) usable() bool {
	if len(c.pts) < 2 {
		return false
	}
	first := c.pts[0].Raw
	for _, p := range c.pts[1:] {
		if p.Raw != first {
			return true
		}
	}
	return false
}
