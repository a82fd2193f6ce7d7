package solar

import (
	"fmt"
	"math"
	"sort"
)

// Coefficients parameterize the clear-sky model. They are fixed for the
// lifetime of a model and never mutated after construction.
type Coefficients struct {
	// Turbidity scales atmospheric beam extinction (2 is a clean atmosphere).
	Turbidity float64
	// Albedo is the ground reflectance seen by tilted panels.
	Albedo float64
	// Climate optionally replaces the empirical clearness curve with
	// measured monthly normals per latitude band.
	Climate ClimateTable
}

// DefaultCoefficients returns a clean-atmosphere, grass-albedo parameter set
// with no climate table.
func DefaultCoefficients() Coefficients {
	return Coefficients{
		Turbidity: 2.0,
		Albedo:    0.2,
	}
}

// Validate checks that the coefficients describe a physical atmosphere.
func (c Coefficients) Validate() error {
	if !finite(c.Turbidity) || c.Turbidity <= 0 {
		return fmt.Errorf("turbidity must be positive, got %v", c.Turbidity)
	}
	if !finite(c.Albedo) || c.Albedo < 0 || c.Albedo > 1 {
		return fmt.Errorf("albedo must be within [0, 1], got %v", c.Albedo)
	}
	return nil
}

// ClimateBand holds the monthly sky clearness normals for the latitudes
// within HalfWidth degrees of LatitudeCenter.
type ClimateBand struct {
	LatitudeCenter float64
	HalfWidth      float64
	Clearness      [Months]float64
}

// ClimateTable is an immutable set of latitude bands. The zero value is an
// empty table that matches nothing.
type ClimateTable struct {
	bands []ClimateBand
}

// NewClimateTable validates and copies bands. Each clearness value must lie
// in (0, 1].
func NewClimateTable(bands []ClimateBand) (ClimateTable, error) {
	out := make([]ClimateBand, 0, len(bands))
	for i, b := range bands {
		if !finite(b.LatitudeCenter) || b.LatitudeCenter < -90 || b.LatitudeCenter > 90 {
			return ClimateTable{}, fmt.Errorf("band %d: latitude center %v out of range", i, b.LatitudeCenter)
		}
		if !finite(b.HalfWidth) || b.HalfWidth <= 0 {
			return ClimateTable{}, fmt.Errorf("band %d: half width must be positive, got %v", i, b.HalfWidth)
		}
		for m, k := range b.Clearness {
			if !finite(k) || k <= 0 || k > 1 {
				return ClimateTable{}, fmt.Errorf("band %d: clearness for month %d must be in (0, 1], got %v", i, m+1, k)
			}
		}
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].LatitudeCenter < out[j].LatitudeCenter })
	return ClimateTable{bands: out}, nil
}

// Len returns the number of bands.
func (t ClimateTable) Len() int { return len(t.bands) }

// Lookup returns the clearness normals of the band nearest to latitude, if
// latitude falls within that band's half width.
func (t ClimateTable) Lookup(latitude float64) ([Months]float64, bool) {
	best := -1
	bestDist := math.Inf(1)
	for i, b := range t.bands {
		d := math.Abs(latitude - b.LatitudeCenter)
		if d <= b.HalfWidth && d < bestDist {
			best, bestDist = i, d
		}
	}
	if best < 0 {
		return [Months]float64{}, false
	}
	return t.bands[best].Clearness, true
}

// clearness returns the fraction of clear-sky irradiation that survives
// cloud cover for the given month (0 = January). The empirical curve is
// sunniest in the subtropical belt around 25° of latitude, darkens toward
// the cloudier tropics and poles, and peaks in the local summer with a
// seasonal swing that grows with latitude.
func (c Coefficients) clearness(latitude float64, month int) float64 {
	if k, ok := c.Climate.Lookup(latitude); ok {
		return k[month]
	}

	absLat := math.Abs(latitude)
	base := clamp(0.72-0.006*math.Abs(absLat-25), 0.40, 0.72)
	amp := 0.10 * math.Min(absLat, 60) / 60

	peak := 5.0 // June
	if latitude < 0 {
		peak = 11.0 // December
	}
	k := base + amp*math.Cos(2*math.Pi*(float64(month)-peak)/Months)
	return clamp(k, 0.05, 1)
}
