package calibration

import "fmt"

// Unit is a force unit the UI can show or accept weights in. Calibrations
// always store newtons internally.
type Unit string

const (
	Newtons   Unit = "N"
	Kilograms Unit = "kg"
	Pounds    Unit = "lbs"
)

// 1 N = .1019kg = .2248lbs
var perNewton = map[Unit]float64{
	Newtons:   1.0,
	Kilograms: 0.101971621298,
	Pounds:    0.2248089431,
}

// ParseUnit converts a configuration/flag string into a Unit.
func ParseUnit(s string) (Unit, error) {
	u := Unit(s)
	if _, ok := perNewton[u]; !ok {
		return "", fmt.Errorf("unknown force unit %q (want N, kg or lbs)", s)
	}
	return u, nil
}

// ConvertBetween converts a force value from one unit to another.
func ConvertBetween(x float64, from, to Unit) (float64, error) {
	a, ok := perNewton[to]
	if !ok {
		return 0, fmt.Errorf("unknown force unit %q", to)
	}
	b, ok := perNewton[from]
	if !ok {
		return 0, fmt.Errorf("unknown force unit %q", from)
	}
	return x * (a / b), nil
}
