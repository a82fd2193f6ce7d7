// Package solar estimates the energy yield of a fixed photovoltaic system.
//
// The estimate is a pipeline of three pure stages: Normalize validates and
// defaults the system parameters, an IrradianceSource derives the monthly
// plane-of-array irradiation for the location and panel geometry, and
// Aggregate converts that irradiation into monthly and annual energy.
// Nothing in this package performs I/O or keeps state between calls, so an
// Estimator may be shared freely between goroutines.
package solar

import (
	"math"

	"github.com/soniakeys/unit"
)

const (
	// solarConstant is the mean extraterrestrial irradiance in W/m²
	solarConstant = 1361.0

	// DefaultSystemKWp is used when the caller does not size the system
	DefaultSystemKWp = 5.0

	// DefaultLossesPercent covers inverter, wiring, soiling and mismatch losses
	DefaultLossesPercent = 14.0

	// Months in a year; every estimate is broken down January first
	Months = 12
)

// Ptr returns a pointer to v. It is a convenience for filling RawConfig.
func Ptr[T any](v T) *T {
	return &v
}

// fixAngle normalizes an angle in degrees to the range [0, 360)
func fixAngle(deg float64) float64 {
	return unit.PMod(deg, 360)
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
