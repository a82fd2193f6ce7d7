package solar

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func uniform(k float64) [Months]float64 {
	var c [Months]float64
	for m := range c {
		c[m] = k
	}
	return c
}

func TestClimateTableLookup(t *testing.T) {
	table, err := NewClimateTable([]ClimateBand{
		{LatitudeCenter: 60, HalfWidth: 5, Clearness: uniform(0.5)},
		{LatitudeCenter: 50, HalfWidth: 6, Clearness: uniform(0.6)},
		{LatitudeCenter: -30, HalfWidth: 10, Clearness: uniform(0.7)},
	})
	require.NoError(t, err)
	assert.Equal(t, 3, table.Len())

	tests := []struct {
		lat   float64
		want  float64
		found bool
	}{
		{60.1695, 0.5, true},
		{55.4, 0.5, true}, // inside both bands, 60 is nearer
		{54.6, 0.6, true},
		{-25, 0.7, true},
		{10, 0, false},
		{-45, 0, false},
	}
	for _, tt := range tests {
		k, ok := table.Lookup(tt.lat)
		assert.Equal(t, tt.found, ok, "lat %v", tt.lat)
		assert.Equal(t, tt.want, k[0], "lat %v", tt.lat)
	}

	var empty ClimateTable
	_, ok := empty.Lookup(0)
	assert.False(t, ok)
}

func TestNewClimateTableRejects(t *testing.T) {
	bad := []ClimateBand{
		{LatitudeCenter: 95, HalfWidth: 5, Clearness: uniform(0.5)},
		{LatitudeCenter: 10, HalfWidth: 0, Clearness: uniform(0.5)},
		{LatitudeCenter: 10, HalfWidth: 5, Clearness: uniform(0)},
		{LatitudeCenter: 10, HalfWidth: 5, Clearness: uniform(1.2)},
	}
	for i, b := range bad {
		_, err := NewClimateTable([]ClimateBand{b})
		assert.Error(t, err, "band %d", i)
	}
}

func TestClearnessCurve(t *testing.T) {
	c := DefaultCoefficients()
	require.NoError(t, c.Validate())

	for lat := -90.0; lat <= 90; lat += 5 {
		for m := 0; m < Months; m++ {
			k := c.clearness(lat, m)
			assert.Greater(t, k, 0.0)
			assert.LessOrEqual(t, k, 1.0)
		}
	}

	assert.Greater(t, c.clearness(60, 5), c.clearness(60, 11), "northern summer is clearer")
	assert.Greater(t, c.clearness(-60, 11), c.clearness(-60, 5), "southern summer is clearer")
	assert.Greater(t, c.clearness(25, 0), c.clearness(60, 0), "subtropics are sunnier")
	assert.Greater(t, c.clearness(25, 0), c.clearness(0, 0), "tropics are cloudier")
}

func TestCoefficientsValidate(t *testing.T) {
	c := DefaultCoefficients()
	c.Turbidity = 0
	assert.Error(t, c.Validate())

	c = DefaultCoefficients()
	c.Albedo = 1.5
	assert.Error(t, c.Validate())
}

func TestClearnessAnnualMean(t *testing.T) {
	c := DefaultCoefficients()

	// the seasonal term cancels over a year, leaving the latitude base
	tests := []struct {
		lat  float64
		base float64
	}{
		{0, 0.57},
		{25, 0.72},
		{-25, 0.72},
		{45, 0.60},
		{-60, 0.51},
		{80, 0.40},
		{-90, 0.40},
	}
	for _, tt := range tests {
		var sum float64
		for m := 0; m < Months; m++ {
			sum += c.clearness(tt.lat, m)
		}
		assert.InDelta(t, tt.base, sum/Months, 1e-9, "lat %v", tt.lat)
	}
}
