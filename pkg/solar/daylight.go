package solar

import (
	"math"

	"github.com/soniakeys/unit"
)

// sunsetHourAngle returns the hour angle of sunset for the given latitude and
// solar declination. It is 0 during polar night and π during polar day.
func sunsetHourAngle(lat, decl unit.Angle) unit.Angle {
	// cos(ωs) = -tan(φ)·tan(δ); values outside [-1, 1] are polar conditions
	cosH := -lat.Tan() * decl.Tan()
	switch {
	case cosH >= 1:
		return 0
	case cosH <= -1:
		return unit.Angle(math.Pi)
	}
	return unit.Angle(math.Acos(cosH))
}

// DayLength returns the hours between sunrise and sunset.
func DayLength(latitude float64, decl unit.Angle) float64 {
	// 15° of hour angle per hour, on both sides of solar noon
	return 2 * sunsetHourAngle(unit.AngleFromDeg(latitude), decl).Deg() / 15
}
