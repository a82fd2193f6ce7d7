package solar

// Field names used in validation errors and in the assumptions record.
const (
	FieldLatitude      = "latitude"
	FieldLongitude     = "longitude"
	FieldSystemKWp     = "system_kwp"
	FieldRoofTiltDeg   = "roof_tilt_deg"
	FieldRoofAspectDeg = "roof_aspect_deg"
	FieldShadingLevel  = "shading_level"
)

// Location is a validated geographic coordinate in decimal degrees.
type Location struct {
	latitude  float64
	longitude float64
}

// NewLocation returns a Location, or an *InvalidConfigError naming each
// coordinate that is out of range.
func NewLocation(latitude, longitude float64) (Location, error) {
	var fe fieldErrors
	validateCoordinates(&fe, latitude, longitude)
	if err := fe.err(); err != nil {
		return Location{}, err
	}
	return Location{latitude: latitude, longitude: longitude}, nil
}

// MustLocation is NewLocation for coordinates known to be valid. It panics otherwise.
func MustLocation(latitude, longitude float64) Location {
	loc, err := NewLocation(latitude, longitude)
	if err != nil {
		panic(err)
	}
	return loc
}

func (l Location) Latitude() float64  { return l.latitude }
func (l Location) Longitude() float64 { return l.longitude }

// Southern reports whether the location lies south of the equator.
func (l Location) Southern() bool { return l.latitude < 0 }

func validateCoordinates(fe *fieldErrors, latitude, longitude float64) {
	if !finite(latitude) || latitude < -90 || latitude > 90 {
		fe.add(FieldLatitude, "must be between -90 and 90, got %v", latitude)
	}
	if !finite(longitude) || longitude < -180 || longitude > 180 {
		fe.add(FieldLongitude, "must be between -180 and 180, got %v", longitude)
	}
}
