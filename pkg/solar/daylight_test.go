package solar

import (
	"testing"

	"github.com/soniakeys/unit"
	"github.com/stretchr/testify/assert"
)

func TestSunForMonth(t *testing.T) {
	tests := []struct {
		name     string
		month    int
		wantDecl float64
	}{
		{"mid March, just before the equinox", 2, -1.9},
		{"June, near the solstice", 5, 23.1},
		{"December, near the solstice", 11, -22.9},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sun := sunForMonth(tt.month, 0)
			assert.InDelta(t, tt.wantDecl, sun.decl.Deg(), 0.5)
			assert.Equal(t, representativeDays[tt.month], dayOfMonth(sun.dayOfYear))
		})
	}

	jan := sunForMonth(0, 0)
	jul := sunForMonth(6, 0)
	assert.Less(t, jan.radiusAU, jul.radiusAU, "perihelion falls in January")
	assert.InDelta(t, 1.0, jan.radiusAU, 0.02)
	assert.Equal(t, 31, jan.days)
	assert.Equal(t, 28, sunForMonth(1, 0).days)
	assert.Equal(t, 31, sunForMonth(11, 0).days)
}

func TestDayLength(t *testing.T) {
	june := sunForMonth(5, 0).decl
	december := sunForMonth(11, 0).decl

	tests := []struct {
		name     string
		latitude float64
		decl     unit.Angle
		want     float64
		delta    float64
	}{
		{"equator is always twelve hours", 0, june, 12, 1e-9},
		{"London midsummer", 51.5, june, 16.3, 0.2},
		{"London midwinter", 51.5, december, 7.7, 0.2},
		{"arctic polar day", 70, june, 24, 1e-9},
		{"arctic polar night", 70, december, 0, 1e-9},
		{"antarctic polar day", -70, december, 24, 1e-9},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, DayLength(tt.latitude, tt.decl), tt.delta)
		})
	}
}

// dayOfMonth converts a day of the reference year back to a day of month.
func dayOfMonth(yearDay int) int {
	cum := 0
	for m := 0; m < Months; m++ {
		days := sunForMonth(m, 0).days
		if yearDay <= cum+days {
			return yearDay - cum
		}
		cum += days
	}
	return -1
}
