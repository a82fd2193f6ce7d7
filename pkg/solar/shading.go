package solar

import "strings"

// ShadingLevel is an ordered severity tier of obstruction around the array.
type ShadingLevel string

const (
	ShadingNone  ShadingLevel = "none"
	ShadingLight ShadingLevel = "light"
	ShadingSome  ShadingLevel = "some"
	ShadingHeavy ShadingLevel = "heavy"
)

// shadingTiers is ordered from least to most severe.
var shadingTiers = []struct {
	level  ShadingLevel
	derate float64
}{
	{ShadingNone, 1.00},
	{ShadingLight, 0.95},
	{ShadingSome, 0.88},
	{ShadingHeavy, 0.75},
}

// ShadingLevels returns the recognized tiers, least severe first.
func ShadingLevels() []ShadingLevel {
	levels := make([]ShadingLevel, len(shadingTiers))
	for i, t := range shadingTiers {
		levels[i] = t.level
	}
	return levels
}

// ParseShadingLevel accepts a tier name, ignoring case and surrounding space.
func ParseShadingLevel(s string) (ShadingLevel, bool) {
	name := ShadingLevel(strings.ToLower(strings.TrimSpace(s)))
	for _, t := range shadingTiers {
		if t.level == name {
			return t.level, true
		}
	}
	return "", false
}

// Derate is the multiplier applied to the yield for this tier. Unknown tiers
// never reach the aggregator, but return 1 rather than zeroing a result.
func (s ShadingLevel) Derate() float64 {
	for _, t := range shadingTiers {
		if t.level == s {
			return t.derate
		}
	}
	return 1.0
}

func (s ShadingLevel) String() string { return string(s) }
