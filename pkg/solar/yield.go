package solar

import (
	"gonum.org/v1/gonum/floats"
)

// Assumptions records the effective parameters behind an Estimate. Tilt and
// aspect are only present when they were defaulted.
type Assumptions struct {
	SystemKWp       float64      `json:"system_kwp"`
	LossesPercent   float64      `json:"losses_percent"`
	ShadingLevel    ShadingLevel `json:"shading_level"`
	OptimalAngles   bool         `json:"optimal_angles"`
	RoofTiltDeg     *float64     `json:"roof_tilt_deg,omitempty"`
	RoofAspectDeg   *float64     `json:"roof_aspect_deg,omitempty"`
	DefaultsApplied []string     `json:"defaults_applied,omitempty"`
	IrradianceModel string       `json:"irradiance_model,omitempty"`
}

// Estimate is the yield of one system at one location. AnnualKWh is always
// the sum of MonthlyKWh.
type Estimate struct {
	AnnualKWh   float64         `json:"annual_kwh"`
	MonthlyKWh  [Months]float64 `json:"monthly_kwh"`
	Assumptions Assumptions     `json:"assumptions"`
}

// PerformanceFactor is the share of irradiation converted after losses and shading.
func PerformanceFactor(lossesPercent float64, shading ShadingLevel) float64 {
	return (1 - lossesPercent/100) * shading.Derate()
}

// Aggregate converts monthly irradiation into energy for cfg. One kWp yields
// one kWh per kWh/m² of plane-of-array irradiation at standard test
// conditions, before losses.
func Aggregate(irr MonthlyIrradiance, cfg SystemConfig, lossesPercent float64) Estimate {
	pf := PerformanceFactor(lossesPercent, cfg.ShadingLevel)

	var est Estimate
	for m, h := range irr {
		e := h * cfg.SystemKWp * pf
		if e < 0 {
			e = 0
		}
		est.MonthlyKWh[m] = e
	}
	est.AnnualKWh = floats.Sum(est.MonthlyKWh[:])

	est.Assumptions = Assumptions{
		SystemKWp:     cfg.SystemKWp,
		LossesPercent: lossesPercent,
		ShadingLevel:  cfg.ShadingLevel,
		OptimalAngles: cfg.OptimalAngles,
	}
	if cfg.Defaulted(FieldRoofTiltDeg) {
		est.Assumptions.RoofTiltDeg = Ptr(cfg.RoofTiltDeg)
	}
	if cfg.Defaulted(FieldRoofAspectDeg) {
		est.Assumptions.RoofAspectDeg = Ptr(cfg.RoofAspectDeg)
	}
	if len(cfg.Defaults) > 0 {
		est.Assumptions.DefaultsApplied = append([]string(nil), cfg.Defaults...)
	}
	return est
}
