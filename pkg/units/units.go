// Package units converts dimensional quantities between the SI and FPS
// unit systems. The external transient engine consumes FPS; the editor
// lets the user work in either system, so every numeric field that
// carries a dimension passes through here on a unit toggle and on export.
package units

import (
	"fmt"
	"math"
	"strings"
)

// Unit identifies a unit system.
type Unit int

const (
	// SI is metres / square metres / cubic metres per second.
	SI Unit = iota
	// FPS is feet / square feet / cubic feet per second.
	FPS
)

// String returns the string representation of a unit system.
func (u Unit) String() string {
	switch u {
	case SI:
		return "SI"
	case FPS:
		return "FPS"
	default:
		return "UNKNOWN"
	}
}

// Parse converts a string to a Unit.
func Parse(s string) (Unit, error) {
	switch s {
	case "SI", "si":
		return SI, nil
	case "FPS", "fps":
		return FPS, nil
	default:
		return SI, fmt.Errorf("unknown unit system %q", s)
	}
}

// MarshalJSON encodes the unit as its name.
func (u Unit) MarshalJSON() ([]byte, error) {
	return []byte(`"` + u.String() + `"`), nil
}

// UnmarshalJSON accepts the names produced by MarshalJSON.
func (u *Unit) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	parsed, err := Parse(s)
	if err != nil {
		return err
	}
	*u = parsed
	return nil
}

// Quantity identifies what kind of dimensional value is being converted.
// Length, diameter, elevation and celerity all scale by the same linear
// factor; area and flow each have their own constant.
type Quantity int

const (
	Length Quantity = iota
	Diameter
	Elevation
	Celerity
	Area
	Flow
)

const (
	// feetPerMetre is the shared linear factor.
	feetPerMetre = 3.28084
	// sqFeetPerSqMetre is the area factor.
	sqFeetPerSqMetre = 10.7639
	// cfsPerCms converts cubic metres per second to cubic feet per second.
	cfsPerCms = 35.3147

	// StoragePrecision is the decimal precision values are held at in
	// the model; ExportPrecision is what the domain file carries.
	StoragePrecision = 4
	ExportPrecision  = 2
)

func factor(q Quantity) float64 {
	switch q {
	case Area:
		return sqFeetPerSqMetre
	case Flow:
		return cfsPerCms
	default:
		return feetPerMetre
	}
}

// Round rounds v to the given number of decimal places.
func Round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}

// Convert maps v from one unit system to the other for the given
// quantity kind. Same-system conversion is the identity. The result is
// rounded to StoragePrecision so repeated round-trips do not drift.
func Convert(v float64, from, to Unit, q Quantity) float64 {
	if from == to {
		return v
	}
	f := factor(q)
	if to == FPS {
		return Round(v*f, StoragePrecision)
	}
	return Round(v/f, StoragePrecision)
}

// ConvertPtr converts an optional value in place, skipping nil. Missing
// values stay missing; they are never zero-filled.
func ConvertPtr(v *float64, from, to Unit, q Quantity) {
	if v == nil {
		return
	}
	*v = Convert(*v, from, to, q)
}
