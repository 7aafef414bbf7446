// Package runway rates runway ends green, yellow or red for each pilot
// proficiency tier from decoded surface weather.
package runway

import "math"

// Components are the wind vector projected onto a runway centreline, in
// knots. Positive crosswind is wind from the right of the runway heading.
type Components struct {
	Headwind  int `json:"headwind"`
	Crosswind int `json:"crosswind"`
}

// WindComponents projects a wind onto a runway heading. A variable or calm
// wind has no directional effect and yields zero components.
func WindComponents(runwayHeading, windDir, windSpeed int, variable bool) Components {
	if variable || windSpeed <= 0 {
		return Components{}
	}
	rad := NormalizeAngle(float64(windDir-runwayHeading)) * math.Pi / 180
	speed := float64(windSpeed)
	return Components{
		Headwind:  int(math.Round(speed * math.Cos(rad))),
		Crosswind: int(math.Round(speed * math.Sin(rad))),
	}
}

// NormalizeAngle maps an angle in degrees into (-180, 180]
func NormalizeAngle(deg float64) float64 {
	a := math.Mod(deg+180, 360)
	if a < 0 {
		a += 360
	}
	a -= 180
	if a == -180 {
		a = 180
	}
	return a
}
