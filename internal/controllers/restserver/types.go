package restserver

import "github.com/chrissnell/pvestimate/pkg/solar"

// EstimateRequest is the POST body of /api/v1/solar-estimate. Coordinates
// are pointers so a missing value can be told apart from zero.
type EstimateRequest struct {
	Latitude      *float64 `json:"latitude"`
	Longitude     *float64 `json:"longitude"`
	SystemKWp     *float64 `json:"system_kwp"`
	RoofTiltDeg   *float64 `json:"roof_tilt_deg"`
	RoofAspectDeg *float64 `json:"roof_aspect_deg"`
	ShadingLevel  *string  `json:"shading_level"`
}

func (r EstimateRequest) rawConfig() solar.RawConfig {
	return solar.RawConfig{
		SystemKWp:     r.SystemKWp,
		RoofTiltDeg:   r.RoofTiltDeg,
		RoofAspectDeg: r.RoofAspectDeg,
		ShadingLevel:  r.ShadingLevel,
	}
}

// ShadingLevelInfo describes one shading tier
type ShadingLevelInfo struct {
	Level  string  `json:"level"`
	Derate float64 `json:"derate"`
}

// ShadingLevelsResponse is returned by /api/v1/shading-levels
type ShadingLevelsResponse struct {
	Default string             `json:"default"`
	Levels  []ShadingLevelInfo `json:"levels"`
}

// HealthResponse is returned by /healthz
type HealthResponse struct {
	Status          string  `json:"status"`
	IrradianceModel string  `json:"irradiance_model"`
	LossesPercent   float64 `json:"losses_percent"`
}
