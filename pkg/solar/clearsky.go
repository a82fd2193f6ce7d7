package solar

import (
	"math"
	"time"

	"github.com/soniakeys/meeus/v3/base"
	"github.com/soniakeys/meeus/v3/julian"
	meeussolar "github.com/soniakeys/meeus/v3/solar"
	"github.com/soniakeys/unit"
)

// MonthlyIrradiance is the plane-of-array irradiation in kWh/m² for each
// calendar month, January first.
type MonthlyIrradiance [Months]float64

// IrradianceSource derives monthly irradiation on a tilted, oriented plane.
// Implementations must be safe for concurrent use and must not block one
// location on another.
type IrradianceSource interface {
	Name() string
	MonthlyIrradiance(loc Location, tiltDeg, aspectDeg float64) MonthlyIrradiance
}

const (
	// referenceYear is a non-leap year used to place the representative days
	referenceYear = 2023

	// integrationStepDeg is the hour angle step of the daily integral (4 minutes)
	integrationStepDeg = 1.0
)

// representativeDays are the days whose extraterrestrial irradiation best
// matches each month's mean (Klein, 1977).
var representativeDays = [Months]int{17, 16, 16, 15, 15, 11, 17, 16, 15, 15, 14, 10}

// ClearSkyModel integrates beam, diffuse and ground-reflected irradiance over
// the representative day of each month and scales it by a climatic clearness
// factor. It has no mutable state.
type ClearSkyModel struct {
	coeffs Coefficients
}

// NewClearSkyModel returns a model using coeffs.
func NewClearSkyModel(coeffs Coefficients) *ClearSkyModel {
	return &ClearSkyModel{coeffs: coeffs}
}

// Name identifies the model in the assumptions record.
func (m *ClearSkyModel) Name() string {
	if m.coeffs.Climate.Len() > 0 {
		return "clear-sky-geometric+climate-normals"
	}
	return "clear-sky-geometric"
}

// MonthlyIrradiance returns kWh/m² per month for a panel tilted tiltDeg from
// horizontal and facing aspectDeg clockwise from north.
func (m *ClearSkyModel) MonthlyIrradiance(loc Location, tiltDeg, aspectDeg float64) MonthlyIrradiance {
	var out MonthlyIrradiance
	p := newPlane(tiltDeg, aspectDeg)
	lat := unit.AngleFromDeg(loc.Latitude())

	for month := 0; month < Months; month++ {
		sun := sunForMonth(month, loc.Longitude())
		daily := m.dailyIrradiation(lat, sun, p) * m.coeffs.clearness(loc.Latitude(), month)
		out[month] = math.Max(0, daily/1000*float64(sun.days))
	}
	return out
}

// plane is a panel orientation as a unit normal in east/north/up coordinates.
type plane struct {
	east, north, up float64
	skyView         float64
	groundView      float64
}

func newPlane(tiltDeg, aspectDeg float64) plane {
	sinT, cosT := unit.AngleFromDeg(tiltDeg).Sincos()
	sinA, cosA := unit.AngleFromDeg(fixAngle(aspectDeg)).Sincos()
	return plane{
		east:       sinT * sinA,
		north:      sinT * cosA,
		up:         cosT,
		skyView:    (1 + cosT) / 2,
		groundView: (1 - cosT) / 2,
	}
}

// monthSun is the sun's geometry on a month's representative day.
type monthSun struct {
	dayOfYear int
	days      int
	decl      unit.Angle
	radiusAU  float64
}

// sunForMonth evaluates the sun at local solar noon of the representative day.
func sunForMonth(month int, longitude float64) monthSun {
	day := time.Date(referenceYear, time.Month(month+1), representativeDays[month], 12, 0, 0, 0, time.UTC)
	// 4 minutes of clock time per degree of longitude
	noon := day.Add(-time.Duration(longitude * 4 * float64(time.Minute)))

	jd := julian.TimeToJD(noon)
	_, decl := meeussolar.ApparentEquatorial(jd)
	r := meeussolar.Radius(base.J2000Century(jd))

	return monthSun{
		dayOfYear: day.YearDay(),
		days:      time.Date(referenceYear, time.Month(month+2), 0, 0, 0, 0, 0, time.UTC).Day(),
		decl:      decl,
		radiusAU:  r,
	}
}

// dailyIrradiation integrates clear-sky plane-of-array irradiance from
// sunrise to sunset and returns Wh/m².
func (m *ClearSkyModel) dailyIrradiation(lat unit.Angle, sun monthSun, p plane) float64 {
	ws := sunsetHourAngle(lat, sun.decl)
	if ws <= 0 {
		return 0
	}

	sinLat, cosLat := lat.Sincos()
	sinDec, cosDec := sun.decl.Sincos()
	i0 := solarConstant / (sun.radiusAU * sun.radiusAU)

	diffuseRatio := skyDiffuseRatio(sun.dayOfYear, lat < 0)

	steps := int(math.Ceil(2 * ws.Deg() / integrationStepDeg))
	dw := 2 * ws.Rad() / float64(steps)
	dtHours := unit.Angle(dw).Deg() / 15

	var wh float64
	for i := 0; i < steps; i++ {
		w := -ws.Rad() + (float64(i)+0.5)*dw
		sinW, cosW := math.Sincos(w)

		cosZ := sinLat*sinDec + cosLat*cosDec*cosW
		if cosZ <= 0 {
			continue
		}

		// sun direction in east/north/up; the hour angle is positive after noon
		sunEast := -cosDec * sinW
		sunNorth := sinDec*cosLat - cosDec*sinLat*cosW
		cosInc := sunEast*p.east + sunNorth*p.north + cosZ*p.up

		beam := i0 * m.beamTransmittance(cosZ)
		diffuse := diffuseRatio * beam
		global := beam*cosZ + diffuse

		g := beam*math.Max(cosInc, 0) + diffuse*p.skyView + m.coeffs.Albedo*global*p.groundView
		wh += g * dtHours
	}
	return wh
}

// skyDiffuseRatio is the ASHRAE ratio of sky diffuse to beam irradiance,
// larger in summer when the air is hazier. The fit is by northern day of
// year, so southern locations are read half a year out of phase.
func skyDiffuseRatio(dayOfYear int, southern bool) float64 {
	d := float64(dayOfYear)
	if southern {
		d += 365.0 / 2
	}
	return 0.095 + 0.04*math.Sin(2*math.Pi*(d-100)/365)
}

// beamTransmittance is the fraction of extraterrestrial beam irradiance that
// reaches the ground, following Bras (1990) with the Kasten air mass.
func (m *ClearSkyModel) beamTransmittance(cosZ float64) float64 {
	elevDeg := 90 - unit.Angle(math.Acos(cosZ)).Deg()
	airMass := 1.0 / (cosZ + 0.15*math.Pow(elevDeg+3.885, -1.253))
	a1 := 0.128 - 0.054*math.Log10(airMass)
	return math.Exp(-m.coeffs.Turbidity * a1 * airMass)
}
