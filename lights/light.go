// Package lights implements the light sources used by the Phong shader.
package lights

import (
	"math"

	"github.com/echoflaresat/raytrace/colors"
	"github.com/echoflaresat/raytrace/geom"
	"github.com/echoflaresat/raytrace/vectors"
)

// maxCrossings bounds the number of surfaces a shadow ray passes through.
const maxCrossings = 32

// Occluder finds the closest surface along a ray. *scene.Scene implements it.
type Occluder interface {
	Intersect(r *geom.Ray) (geom.Isect, bool)
}

// Light is a light source.
type Light interface {
	Color() colors.Color4

	// Direction returns the unit vector from p toward the light.
	Direction(p vectors.Vec3) vectors.Vec3

	// DistanceAttenuation returns the falloff factor in [0,1] at p.
	DistanceAttenuation(p vectors.Vec3) float64

	// ShadowAttenuation returns the fraction of light reaching p, per channel.
	ShadowAttenuation(occ Occluder, p vectors.Vec3) colors.Color4
}

// Directional is a light infinitely far away, shining along Orientation.
type Directional struct {
	Orientation vectors.Vec3
	Tint        colors.Color4
}

func NewDirectional(orientation vectors.Vec3, c colors.Color4) *Directional {
	return &Directional{Orientation: orientation.Normalize(), Tint: c}
}

func (l *Directional) Color() colors.Color4 { return l.Tint }

func (l *Directional) Direction(vectors.Vec3) vectors.Vec3 {
	return l.Orientation.Neg().Normalize()
}

// DistanceAttenuation is 1: the light is at infinity.
func (l *Directional) DistanceAttenuation(vectors.Vec3) float64 {
	return 1
}

func (l *Directional) ShadowAttenuation(occ Occluder, p vectors.Vec3) colors.Color4 {
	return transmittance(occ, p, l.Direction(p), math.Inf(1))
}

// Point is a positional light with f(d) = min(1, 1/(a + b·d + c·d²)) falloff.
type Point struct {
	Position  vectors.Vec3
	Tint      colors.Color4
	Constant  float64
	Linear    float64
	Quadratic float64
}

func NewPoint(pos vectors.Vec3, c colors.Color4) *Point {
	return &Point{Position: pos, Tint: c, Constant: 1}
}

func (l *Point) Color() colors.Color4 { return l.Tint }

func (l *Point) Direction(p vectors.Vec3) vectors.Vec3 {
	return l.Position.Sub(p).Normalize()
}

func (l *Point) DistanceAttenuation(p vectors.Vec3) float64 {
	d := vectors.Distance(l.Position, p)
	denom := l.Constant + l.Linear*d + l.Quadratic*d*d
	if denom <= 0 {
		return 1
	}
	return math.Min(1, 1/denom)
}

func (l *Point) ShadowAttenuation(occ Occluder, p vectors.Vec3) colors.Color4 {
	return transmittance(occ, p, l.Direction(p), vectors.Distance(l.Position, p))
}

// transmittance walks a shadow ray from p along dir for maxDist world units.
// Opaque surfaces block the light. Transmissive solids tint it by kt raised
// to the distance travelled inside them; open transmissive surfaces tint it
// by kt once.
func transmittance(occ Occluder, p, dir vectors.Vec3, maxDist float64) colors.Color4 {
	atten := colors.White()
	origin := p
	travelled := 0.0

	for i := 0; i < maxCrossings; i++ {
		r := geom.NewRay(origin.Add(dir.Scale(geom.SpawnEpsilon)), dir, atten, geom.Shadow)
		hit, ok := occ.Intersect(&r)
		if !ok {
			return atten
		}
		seg := hit.T + geom.SpawnEpsilon
		if travelled+seg >= maxDist {
			return atten
		}

		kt := hit.Material.Kt(hit.UV)
		if kt.IsBlack() {
			return colors.Black()
		}

		switch {
		case hit.Object != nil && !hit.Object.IsClosed():
			atten = atten.Mul(kt)
		case hit.N.Dot(dir) > 0:
			// Leaving a solid: the whole segment was inside it.
			atten = atten.Mul(kt.Pow(seg))
		}
		if atten.IsBlack() {
			return colors.Black()
		}

		origin = r.At(hit.T)
		travelled += seg
	}
	return atten
}
