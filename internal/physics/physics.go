package physics

import (
	"math"
	"time"

	"github.com/westphae/geomag/pkg/egm96"
	"github.com/westphae/geomag/pkg/wmm"
)

const FeetToMeters = 0.3048

// CalculateMagneticVariation calculates the magnetic declination for a given position and time
// Returns declination in degrees (+East, -West)
func CalculateMagneticVariation(lat, lon, altFt float64, date time.Time) (float64, error) {
	loc := egm96.NewLocationGeodetic(lat, lon, altFt*FeetToMeters)

	mag, err := wmm.CalculateWMMMagneticField(loc, date)
	if err != nil {
		return 0, err
	}
	return mag.D(), nil
}

// TrueToMagnetic converts a true direction to magnetic using an east-positive
// variation, rounded to whole degrees in 1..360
func TrueToMagnetic(trueDeg int, variation float64) int {
	mag := int(math.Round(float64(trueDeg) - variation))
	mag = ((mag % 360) + 360) % 360
	if mag == 0 {
		mag = 360
	}
	return mag
}
