package geom

import (
	"math"

	"github.com/echoflaresat/raytrace/vectors"
)

// Sphere is the unit sphere centered at the local origin.
type Sphere struct{}

func (Sphere) LocalBounds() (BoundingBox, bool) {
	return NewBox(vectors.Splat(-1), vectors.Splat(1)), true
}

// IntersectLocal solves |O + tD|² = 1 for the nearest root above RayEpsilon.
// D is unit length, so the quadratic's leading coefficient is 1.
func (Sphere) IntersectLocal(r Ray) (Isect, bool) {
	o, d := r.Position(), r.Direction()

	b := o.Dot(d)
	c := o.Dot(o) - 1
	disc := b*b - c
	if disc < 0 {
		return Isect{}, false
	}

	sq := math.Sqrt(disc)
	t := -b - sq
	if t <= RayEpsilon {
		t = -b + sq
		if t <= RayEpsilon {
			return Isect{}, false
		}
	}

	p := r.At(t)
	n := p.Normalize()
	return Isect{T: t, N: n, UV: sphereUV(n)}, true
}

// sphereUV maps a unit direction to longitude/latitude texture coordinates.
func sphereUV(n vectors.Vec3) [2]float64 {
	u := 0.5 + math.Atan2(n.Y, n.X)/(2*math.Pi)
	v := 0.5 - math.Asin(clampUnit(n.Z))/math.Pi
	return [2]float64{u, v}
}

func clampUnit(x float64) float64 {
	return math.Max(-1, math.Min(1, x))
}
