package solar

import "fmt"

// Estimator runs the normalize, irradiance and aggregate stages. It holds
// only values fixed at construction and is safe for concurrent use.
type Estimator struct {
	source        IrradianceSource
	lossesPercent float64
}

// Option customizes an Estimator.
type Option func(*Estimator)

// WithLossesPercent overrides the system losses applied to every estimate.
func WithLossesPercent(p float64) Option {
	return func(e *Estimator) {
		e.lossesPercent = p
	}
}

// NewEstimator returns an Estimator backed by source.
func NewEstimator(source IrradianceSource, opts ...Option) (*Estimator, error) {
	if source == nil {
		return nil, fmt.Errorf("irradiance source is required")
	}
	e := &Estimator{
		source:        source,
		lossesPercent: DefaultLossesPercent,
	}
	for _, opt := range opts {
		opt(e)
	}
	if !finite(e.lossesPercent) || e.lossesPercent < 0 || e.lossesPercent >= 100 {
		return nil, fmt.Errorf("losses percent must be within [0, 100), got %v", e.lossesPercent)
	}
	return e, nil
}

// DefaultEstimator uses the clear-sky model with default coefficients and
// 14% system losses.
func DefaultEstimator() *Estimator {
	e, _ := NewEstimator(NewClearSkyModel(DefaultCoefficients()))
	return e
}

// LossesPercent returns the losses applied to every estimate.
func (e *Estimator) LossesPercent() float64 { return e.lossesPercent }

// ModelName returns the name of the irradiance source.
func (e *Estimator) ModelName() string { return e.source.Name() }

// Calculate estimates the yield of raw at loc. Validation failures are
// returned as *InvalidConfigError before any irradiance is computed.
func (e *Estimator) Calculate(loc Location, raw RawConfig) (Estimate, error) {
	cfg, err := Normalize(loc, raw)
	if err != nil {
		return Estimate{}, err
	}
	return e.estimate(loc, cfg), nil
}

// CalculateCoordinates is Calculate for unvalidated coordinates. Coordinate
// and configuration problems are reported together.
func (e *Estimator) CalculateCoordinates(latitude, longitude float64, raw RawConfig) (Estimate, error) {
	var fe fieldErrors
	validateCoordinates(&fe, latitude, longitude)
	cfg := normalize(&fe, latitude, raw)
	if err := fe.err(); err != nil {
		return Estimate{}, err
	}
	return e.estimate(Location{latitude: latitude, longitude: longitude}, cfg), nil
}

// Validate reports every problem with the coordinates and raw without
// computing any irradiance. It returns nil when CalculateCoordinates would
// succeed.
func Validate(latitude, longitude float64, raw RawConfig) error {
	var fe fieldErrors
	validateCoordinates(&fe, latitude, longitude)
	normalize(&fe, latitude, raw)
	return fe.err()
}

func (e *Estimator) estimate(loc Location, cfg SystemConfig) Estimate {
	irr := e.source.MonthlyIrradiance(loc, cfg.RoofTiltDeg, cfg.RoofAspectDeg)
	est := Aggregate(irr, cfg, e.lossesPercent)
	est.Assumptions.IrradianceModel = e.source.Name()
	return est
}
