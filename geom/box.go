package geom

import (
	"math"

	"github.com/echoflaresat/raytrace/vectors"
)

// Box is the axis-aligned unit cube [-0.5, 0.5]³.
type Box struct{}

var unitCube = NewBox(vectors.Splat(-0.5), vectors.Splat(0.5))

func (Box) LocalBounds() (BoundingBox, bool) {
	return unitCube, true
}

func (Box) IntersectLocal(r Ray) (Isect, bool) {
	hit, tmin, tmax := unitCube.Intersect(r)
	if !hit {
		return Isect{}, false
	}

	t := tmin
	if t <= RayEpsilon {
		t = tmax
		if t <= RayEpsilon {
			return Isect{}, false
		}
	}

	p := r.At(t)
	axis := 0
	best := math.Abs(p.X)
	if a := math.Abs(p.Y); a > best {
		axis, best = 1, a
	}
	if a := math.Abs(p.Z); a > best {
		axis = 2
	}

	var n vectors.Vec3
	var uv [2]float64
	switch axis {
	case 0:
		n = vectors.New(math.Copysign(1, p.X), 0, 0)
		uv = [2]float64{p.Y + 0.5, p.Z + 0.5}
	case 1:
		n = vectors.New(0, math.Copysign(1, p.Y), 0)
		uv = [2]float64{p.Z + 0.5, p.X + 0.5}
	default:
		n = vectors.New(0, 0, math.Copysign(1, p.Z))
		uv = [2]float64{p.X + 0.5, p.Y + 0.5}
	}
	return Isect{T: t, N: n, UV: uv}, true
}
