package geom

import (
	"math"

	"github.com/echoflaresat/raytrace/vectors"
)

// BoundingBox is an axis-aligned box. The zero value is the degenerate box
// at the origin; EmptyBox is the identity for Merge.
type BoundingBox struct {
	Min, Max vectors.Vec3
}

func NewBox(min, max vectors.Vec3) BoundingBox {
	return BoundingBox{Min: min, Max: max}
}

// EmptyBox returns a box that contains nothing and intersects nothing.
func EmptyBox() BoundingBox {
	inf := math.Inf(1)
	return BoundingBox{
		Min: vectors.Splat(inf),
		Max: vectors.Splat(-inf),
	}
}

// BoxFromPoints returns the smallest box containing every point.
func BoxFromPoints(points ...vectors.Vec3) BoundingBox {
	b := EmptyBox()
	for _, p := range points {
		b.Min = b.Min.Min(p)
		b.Max = b.Max.Max(p)
	}
	return b
}

func (b BoundingBox) IsEmpty() bool {
	return b.Min.X > b.Max.X || b.Min.Y > b.Max.Y || b.Min.Z > b.Max.Z
}

// Intersect tests the ray against the box with the slab method and returns
// the parametric entry and exit distances. A zero direction component means
// the ray is parallel to that slab pair and misses unless its origin lies
// between them.
func (b BoundingBox) Intersect(r Ray) (hit bool, tmin, tmax float64) {
	if b.IsEmpty() {
		return false, 0, 0
	}
	pos, dir := r.Position(), r.Direction()
	tmin, tmax = math.Inf(-1), math.Inf(1)

	for axis := 0; axis < 3; axis++ {
		lo, hi := b.Min.Axis(axis), b.Max.Axis(axis)
		origin, d := pos.Axis(axis), dir.Axis(axis)

		if d == 0 {
			if origin < lo || origin > hi {
				return false, 0, 0
			}
			continue
		}

		inv := 1.0 / d
		t1 := (lo - origin) * inv
		t2 := (hi - origin) * inv
		if t1 > t2 {
			t1, t2 = t2, t1
		}
		if t1 > tmin {
			tmin = t1
		}
		if t2 < tmax {
			tmax = t2
		}
		if tmin > tmax {
			return false, 0, 0
		}
	}
	if tmax < 0 {
		return false, 0, 0
	}
	return true, tmin, tmax
}

// Merge returns the smallest box covering b and o.
func (b BoundingBox) Merge(o BoundingBox) BoundingBox {
	return BoundingBox{Min: b.Min.Min(o.Min), Max: b.Max.Max(o.Max)}
}

// Intersects reports whether the boxes overlap on all three axes. Touching
// faces count as overlap.
func (b BoundingBox) Intersects(o BoundingBox) bool {
	if b.IsEmpty() || o.IsEmpty() {
		return false
	}
	return b.Min.X <= o.Max.X && o.Min.X <= b.Max.X &&
		b.Min.Y <= o.Max.Y && o.Min.Y <= b.Max.Y &&
		b.Min.Z <= o.Max.Z && o.Min.Z <= b.Max.Z
}

// Contains reports whether p lies inside or on the box.
func (b BoundingBox) Contains(p vectors.Vec3) bool {
	return p.X >= b.Min.X && p.X <= b.Max.X &&
		p.Y >= b.Min.Y && p.Y <= b.Max.Y &&
		p.Z >= b.Min.Z && p.Z <= b.Max.Z
}

func (b BoundingBox) Extent() vectors.Vec3 {
	if b.IsEmpty() {
		return vectors.Zero()
	}
	return b.Max.Sub(b.Min)
}

func (b BoundingBox) Volume() float64 {
	e := b.Extent()
	return e.X * e.Y * e.Z
}

// MaxExtent returns the longest side of the box.
func (b BoundingBox) MaxExtent() float64 {
	e := b.Extent()
	return math.Max(e.X, math.Max(e.Y, e.Z))
}

func (b BoundingBox) Center() vectors.Vec3 {
	return b.Min.Add(b.Max).Scale(0.5)
}

// Octant returns one of the eight equal sub-boxes split at the midpoint of
// each axis. Bit 0 of i selects the upper X half, bit 1 Y and bit 2 Z.
func (b BoundingBox) Octant(i int) BoundingBox {
	c := b.Center()
	o := BoundingBox{Min: b.Min, Max: c}
	if i&1 != 0 {
		o.Min.X, o.Max.X = c.X, b.Max.X
	}
	if i&2 != 0 {
		o.Min.Y, o.Max.Y = c.Y, b.Max.Y
	}
	if i&4 != 0 {
		o.Min.Z, o.Max.Z = c.Z, b.Max.Z
	}
	return o
}

// Corners returns the eight corners in the same bit order as Octant.
func (b BoundingBox) Corners() [8]vectors.Vec3 {
	var out [8]vectors.Vec3
	for i := range out {
		p := b.Min
		if i&1 != 0 {
			p.X = b.Max.X
		}
		if i&2 != 0 {
			p.Y = b.Max.Y
		}
		if i&4 != 0 {
			p.Z = b.Max.Z
		}
		out[i] = p
	}
	return out
}
