// Package sun computes the direction of the sun for outdoor scenes.
package sun

import (
	"math"
	"time"

	"github.com/echoflaresat/raytrace/vectors"
	"github.com/soniakeys/meeus/v3/julian"
	"github.com/soniakeys/meeus/v3/sidereal"
	"github.com/soniakeys/meeus/v3/solar"
)

// DirectionECEF returns the unit vector from the Earth's center toward the
// sun at t, in Earth-centered Earth-fixed coordinates.
func DirectionECEF(t time.Time) vectors.Vec3 {
	jd := julian.TimeToJD(t.UTC())

	ra, dec := solar.ApparentEquatorial(jd)

	// Equatorial, inertial frame
	x := dec.Cos() * ra.Cos()
	y := dec.Cos() * ra.Sin()
	z := dec.Sin()

	// Rotate into the Earth-fixed frame by the sidereal angle
	gst := sidereal.Apparent(jd).Angle()
	cosG, sinG := gst.Cos(), gst.Sin()

	return vectors.New(
		x*cosG+y*sinG,
		-x*sinG+y*cosG,
		z,
	).Normalize()
}

// LocalDirection returns the direction toward the sun seen from latitude lat
// and longitude lon (degrees) in scene coordinates: x east, y up, -z north.
func LocalDirection(t time.Time, lat, lon float64) vectors.Vec3 {
	d := DirectionECEF(t)

	phi := lat * math.Pi / 180
	lambda := lon * math.Pi / 180
	sinPhi, cosPhi := math.Sincos(phi)
	sinLambda, cosLambda := math.Sincos(lambda)

	east := vectors.New(-sinLambda, cosLambda, 0)
	north := vectors.New(-sinPhi*cosLambda, -sinPhi*sinLambda, cosPhi)
	up := vectors.New(cosPhi*cosLambda, cosPhi*sinLambda, sinPhi)

	return vectors.New(d.Dot(east), d.Dot(up), -d.Dot(north))
}

// Elevation returns the sun's altitude above the horizon in degrees.
func Elevation(t time.Time, lat, lon float64) float64 {
	return math.Asin(LocalDirection(t, lat, lon).Y) * 180 / math.Pi
}
