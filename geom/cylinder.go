package geom

import (
	"math"

	"github.com/echoflaresat/raytrace/vectors"
)

// Cylinder has radius 1 around the local z axis and spans z in [0, 1].
// Capped cylinders are closed solids.
type Cylinder struct {
	Capped bool
}

func (Cylinder) LocalBounds() (BoundingBox, bool) {
	return NewBox(vectors.New(-1, -1, 0), vectors.New(1, 1, 1)), true
}

func (c Cylinder) IntersectLocal(r Ray) (Isect, bool) {
	best := Isect{T: math.Inf(1)}
	found := false

	if i, ok := c.intersectBody(r); ok {
		best, found = i, true
	}
	if c.Capped {
		if i, ok := c.intersectCaps(r); ok && i.T < best.T {
			best, found = i, true
		}
	}
	return best, found
}

func (Cylinder) intersectBody(r Ray) (Isect, bool) {
	o, d := r.Position(), r.Direction()

	a := d.X*d.X + d.Y*d.Y
	if a == 0 {
		return Isect{}, false
	}
	b := 2 * (o.X*d.X + o.Y*d.Y)
	c := o.X*o.X + o.Y*o.Y - 1
	disc := b*b - 4*a*c
	if disc < 0 {
		return Isect{}, false
	}

	sq := math.Sqrt(disc)
	for _, t := range [2]float64{(-b - sq) / (2 * a), (-b + sq) / (2 * a)} {
		if t <= RayEpsilon {
			continue
		}
		p := r.At(t)
		if p.Z < 0 || p.Z > 1 {
			continue
		}
		n := vectors.New(p.X, p.Y, 0).Normalize()
		// Seen from outside the radius, the inner wall faces the ray.
		if n.Dot(d) > 0 && !insideRadius(o) {
			n = n.Neg()
		}
		u := 0.5 + math.Atan2(p.Y, p.X)/(2*math.Pi)
		return Isect{T: t, N: n, UV: [2]float64{u, p.Z}}, true
	}
	return Isect{}, false
}

func (Cylinder) intersectCaps(r Ray) (Isect, bool) {
	o, d := r.Position(), r.Direction()
	if d.Z == 0 {
		return Isect{}, false
	}

	best := Isect{T: math.Inf(1)}
	found := false
	for _, z := range [2]float64{0, 1} {
		t := (z - o.Z) / d.Z
		if t <= RayEpsilon || t >= best.T {
			continue
		}
		p := r.At(t)
		if p.X*p.X+p.Y*p.Y > 1 {
			continue
		}
		n := vectors.New(0, 0, 1)
		if z == 0 {
			n = n.Neg()
		}
		best = Isect{T: t, N: n, UV: [2]float64{(p.X + 1) / 2, (p.Y + 1) / 2}}
		found = true
	}
	return best, found
}

func insideRadius(p vectors.Vec3) bool {
	return p.X*p.X+p.Y*p.Y < 1
}
