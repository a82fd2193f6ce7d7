package solar

import (
	"math"
	"strings"
)

// RawConfig is the caller's partial system description. A nil field means
// the caller left it out and a default applies.
type RawConfig struct {
	SystemKWp     *float64 `json:"system_kwp,omitempty" yaml:"system_kwp,omitempty"`
	RoofTiltDeg   *float64 `json:"roof_tilt_deg,omitempty" yaml:"roof_tilt_deg,omitempty"`
	RoofAspectDeg *float64 `json:"roof_aspect_deg,omitempty" yaml:"roof_aspect_deg,omitempty"`
	ShadingLevel  *string  `json:"shading_level,omitempty" yaml:"shading_level,omitempty"`
}

// SystemConfig is the effective configuration after validation and defaulting.
type SystemConfig struct {
	SystemKWp     float64
	RoofTiltDeg   float64
	RoofAspectDeg float64
	ShadingLevel  ShadingLevel

	// OptimalAngles is true when both tilt and aspect were derived from the latitude.
	OptimalAngles bool

	// Defaults names every field that was filled in rather than supplied.
	Defaults []string
}

// Defaulted reports whether field was filled with a default.
func (c SystemConfig) Defaulted(field string) bool {
	for _, d := range c.Defaults {
		if d == field {
			return true
		}
	}
	return false
}

// OptimalTilt is the fixed tilt that maximizes annual irradiation at the given
// latitude, from a linear fit of 0.76·|lat| + 3.1 degrees.
func OptimalTilt(latitude float64) float64 {
	return clamp(0.76*math.Abs(latitude)+3.1, 0, 90)
}

// OptimalAspect faces the equator: south (180°) in the northern hemisphere
// and on the equator, north (0°) in the southern.
func OptimalAspect(latitude float64) float64 {
	if latitude < 0 {
		return 0
	}
	return 180
}

// Normalize validates raw against the location and fills in documented
// defaults. All offending fields are reported in a single *InvalidConfigError.
func Normalize(loc Location, raw RawConfig) (SystemConfig, error) {
	var fe fieldErrors
	cfg := normalize(&fe, loc.Latitude(), raw)
	if err := fe.err(); err != nil {
		return SystemConfig{}, err
	}
	return cfg, nil
}

func normalize(fe *fieldErrors, latitude float64, raw RawConfig) SystemConfig {
	var cfg SystemConfig

	if raw.SystemKWp == nil {
		cfg.SystemKWp = DefaultSystemKWp
		cfg.Defaults = append(cfg.Defaults, FieldSystemKWp)
	} else {
		kwp := *raw.SystemKWp
		if !finite(kwp) || kwp <= 0 {
			fe.add(FieldSystemKWp, "must be greater than 0, got %v", kwp)
		}
		cfg.SystemKWp = kwp
	}

	if raw.RoofTiltDeg == nil {
		cfg.RoofTiltDeg = OptimalTilt(latitude)
		cfg.Defaults = append(cfg.Defaults, FieldRoofTiltDeg)
	} else {
		tilt := *raw.RoofTiltDeg
		if !finite(tilt) || tilt < 0 || tilt > 90 {
			fe.add(FieldRoofTiltDeg, "must be between 0 and 90, got %v", tilt)
		}
		cfg.RoofTiltDeg = tilt
	}

	if raw.RoofAspectDeg == nil {
		cfg.RoofAspectDeg = OptimalAspect(latitude)
		cfg.Defaults = append(cfg.Defaults, FieldRoofAspectDeg)
	} else {
		aspect := *raw.RoofAspectDeg
		if !finite(aspect) || aspect < 0 || aspect >= 360 {
			fe.add(FieldRoofAspectDeg, "must be in [0, 360), got %v", aspect)
		}
		cfg.RoofAspectDeg = aspect
	}

	cfg.OptimalAngles = raw.RoofTiltDeg == nil && raw.RoofAspectDeg == nil

	if raw.ShadingLevel == nil || strings.TrimSpace(*raw.ShadingLevel) == "" {
		cfg.ShadingLevel = ShadingNone
		cfg.Defaults = append(cfg.Defaults, FieldShadingLevel)
	} else if level, ok := ParseShadingLevel(*raw.ShadingLevel); ok {
		cfg.ShadingLevel = level
	} else {
		fe.add(FieldShadingLevel, "must be one of %s, got %q", joinLevels(), *raw.ShadingLevel)
	}

	return cfg
}

func joinLevels() string {
	names := make([]string, 0, len(shadingTiers))
	for _, l := range ShadingLevels() {
		names = append(names, string(l))
	}
	return strings.Join(names, ", ")
}
