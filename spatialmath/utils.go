package spatialmath

import (
	"math"

	"github.com/golang/geo/r2"
)

const twoPi = 2 * math.Pi

// NormalizeHeading maps theta into [0, 2π).
func NormalizeHeading(theta float64) float64 {
	theta = math.Mod(theta, twoPi)
	if theta < 0 {
		theta += twoPi
	}
	// -ε + 2π rounds to 2π.
	if theta >= twoPi {
		theta = 0
	}
	return theta
}

// HeadingDiff returns the signed smallest rotation taking a onto b, in [-π, π).
func HeadingDiff(a, b float64) float64 {
	return NormalizeHeading(b-a+math.Pi) - math.Pi
}

// Bearing returns the angle of the vector from one point to another, in (-π, π].
func Bearing(from, to r2.Point) float64 {
	d := to.Sub(from)
	return math.Atan2(d.Y, d.X)
}

// DegToRad converts degrees to radians.
func DegToRad(degrees float64) float64 {
	return degrees * math.Pi / 180
}

// RadToDeg converts radians to degrees.
func RadToDeg(radians float64) float64 {
	return radians * 180 / math.Pi
}
