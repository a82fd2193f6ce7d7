package solar

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rampIrradiance(v float64) MonthlyIrradiance {
	var irr MonthlyIrradiance
	for m := range irr {
		irr[m] = v * float64(m+1)
	}
	return irr
}

func TestAggregate(t *testing.T) {
	cfg := SystemConfig{
		SystemKWp:     4,
		RoofTiltDeg:   30,
		RoofAspectDeg: 180,
		ShadingLevel:  ShadingNone,
	}
	est := Aggregate(rampIrradiance(10), cfg, 14)

	for m, v := range est.MonthlyKWh {
		assert.InDelta(t, 10*float64(m+1)*4*0.86, v, 1e-9, "month %d", m+1)
	}
	assert.InDelta(t, 780*4*0.86, est.AnnualKWh, 1e-9)
	assert.Equal(t, 4.0, est.Assumptions.SystemKWp)
	assert.Equal(t, 14.0, est.Assumptions.LossesPercent)
	assert.Equal(t, ShadingNone, est.Assumptions.ShadingLevel)
	assert.False(t, est.Assumptions.OptimalAngles)
	assert.Nil(t, est.Assumptions.RoofTiltDeg, "explicit tilt is not an assumption")
	assert.Nil(t, est.Assumptions.RoofAspectDeg)
	assert.Empty(t, est.Assumptions.DefaultsApplied)
}

func TestAggregateRecordsDefaultedAngles(t *testing.T) {
	cfg, err := Normalize(helsinki, RawConfig{SystemKWp: Ptr(3.0)})
	require.NoError(t, err)

	est := Aggregate(rampIrradiance(1), cfg, DefaultLossesPercent)
	require.NotNil(t, est.Assumptions.RoofTiltDeg)
	require.NotNil(t, est.Assumptions.RoofAspectDeg)
	assert.Equal(t, cfg.RoofTiltDeg, *est.Assumptions.RoofTiltDeg)
	assert.Equal(t, 180.0, *est.Assumptions.RoofAspectDeg)
	assert.True(t, est.Assumptions.OptimalAngles)
	assert.NotContains(t, est.Assumptions.DefaultsApplied, FieldSystemKWp)
}

func TestAggregateShadingIsMonotonic(t *testing.T) {
	irr := rampIrradiance(5)
	prev := Aggregate(irr, SystemConfig{SystemKWp: 5, ShadingLevel: ShadingNone}, 14)

	for _, level := range ShadingLevels()[1:] {
		cur := Aggregate(irr, SystemConfig{SystemKWp: 5, ShadingLevel: level}, 14)
		for m := range cur.MonthlyKWh {
			assert.Less(t, cur.MonthlyKWh[m], prev.MonthlyKWh[m], "%s month %d", level, m+1)
		}
		prev = cur
	}
}

func TestAggregateDoesNotAliasDefaults(t *testing.T) {
	cfg := SystemConfig{SystemKWp: 1, ShadingLevel: ShadingNone, Defaults: []string{FieldShadingLevel}}
	est := Aggregate(rampIrradiance(1), cfg, 14)

	cfg.Defaults[0] = "mutated"
	assert.Equal(t, []string{FieldShadingLevel}, est.Assumptions.DefaultsApplied)
}

func TestPerformanceFactor(t *testing.T) {
	assert.InDelta(t, 0.86, PerformanceFactor(14, ShadingNone), 1e-12)
	assert.InDelta(t, 0.86*0.75, PerformanceFactor(14, ShadingHeavy), 1e-12)
	assert.InDelta(t, 1.0, PerformanceFactor(0, ShadingNone), 1e-12)
}
