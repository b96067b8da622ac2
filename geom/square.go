package geom

import (
	"math"

	"github.com/echoflaresat/raytrace/vectors"
)

// Square is the unit square x, y in [-0.5, 0.5] lying in the z=0 plane.
// It is two-sided: the normal always faces the incoming ray.
type Square struct{}

func (Square) LocalBounds() (BoundingBox, bool) {
	return NewBox(vectors.New(-0.5, -0.5, 0), vectors.New(0.5, 0.5, 0)), true
}

func (Square) IntersectLocal(r Ray) (Isect, bool) {
	t, ok := intersectZPlane(r)
	if !ok {
		return Isect{}, false
	}
	p := r.At(t)
	if math.Abs(p.X) > 0.5 || math.Abs(p.Y) > 0.5 {
		return Isect{}, false
	}
	return Isect{
		T:  t,
		N:  facing(r.Direction()),
		UV: [2]float64{p.X + 0.5, p.Y + 0.5},
	}, true
}

// Plane is the infinite z=0 plane. It has no bounding box, so scenes test
// it against every ray.
type Plane struct{}

func (Plane) LocalBounds() (BoundingBox, bool) {
	return EmptyBox(), false
}

func (Plane) IntersectLocal(r Ray) (Isect, bool) {
	t, ok := intersectZPlane(r)
	if !ok {
		return Isect{}, false
	}
	p := r.At(t)
	u := p.X - math.Floor(p.X)
	v := p.Y - math.Floor(p.Y)
	return Isect{T: t, N: facing(r.Direction()), UV: [2]float64{u, v}}, true
}

func intersectZPlane(r Ray) (float64, bool) {
	dz := r.Direction().Z
	if dz == 0 {
		return 0, false
	}
	t := -r.Position().Z / dz
	if t <= RayEpsilon {
		return 0, false
	}
	return t, true
}

func facing(d vectors.Vec3) vectors.Vec3 {
	if d.Z > 0 {
		return vectors.New(0, 0, -1)
	}
	return vectors.New(0, 0, 1)
}
