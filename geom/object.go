package geom

import (
	"github.com/echoflaresat/raytrace/material"
	"github.com/echoflaresat/raytrace/vectors"
)

// Primitive is the capability interface implemented by every shape. Shapes
// live in their own local space; Object handles placement in the world.
type Primitive interface {
	// IntersectLocal intersects a ray with a unit-length direction given in
	// local coordinates. The returned normal is in local space.
	IntersectLocal(r Ray) (Isect, bool)

	// LocalBounds returns the local bounding box. ok is false for shapes
	// without bounding-box capability; those are tested against every ray.
	LocalBounds() (box BoundingBox, ok bool)
}

// Object places a Primitive in the world with a transform and a material.
type Object struct {
	Name      string
	Primitive Primitive
	Transform vectors.Transform
	Material  *material.Material

	bounds  BoundingBox
	bounded bool
}

func NewObject(name string, p Primitive, t vectors.Transform, m *material.Material) *Object {
	if m == nil {
		m = material.Default()
	}
	o := &Object{
		Name:      name,
		Primitive: p,
		Transform: t,
		Material:  m,
	}
	o.ComputeBoundingBox()
	return o
}

// ComputeBoundingBox transforms the eight corners of the local bounding box
// into world space and keeps their component-wise min/max.
func (o *Object) ComputeBoundingBox() {
	local, ok := o.Primitive.LocalBounds()
	o.bounded = ok
	if !ok {
		o.bounds = EmptyBox()
		return
	}

	corners := local.Corners()
	world := make([]vectors.Vec3, len(corners))
	for i, c := range corners {
		world[i] = o.Transform.LocalToGlobal(c)
	}
	o.bounds = BoxFromPoints(world...)
}

func (o *Object) HasBoundingBox() bool {
	return o.bounded
}

// BoundingBox returns the world-space bounds computed by ComputeBoundingBox.
func (o *Object) BoundingBox() BoundingBox {
	return o.bounds
}

// Intersect tests r against the object. The ray is switched to local space
// for the primitive test and always restored before returning.
func (o *Object) Intersect(r *Ray) (Isect, bool) {
	if o.bounded {
		if hit, _, _ := o.bounds.Intersect(*r); !hit {
			return Isect{}, false
		}
	}

	wpos, wdir := r.Position(), r.Direction()
	defer func() {
		r.SetPosition(wpos)
		r.SetDirection(wdir)
	}()

	pos := o.Transform.GlobalToLocal(wpos)
	dir := o.Transform.GlobalToLocal(wpos.Add(wdir)).Sub(pos)
	length := dir.Norm()
	if length == 0 {
		return Isect{}, false
	}
	r.SetPosition(pos)
	r.SetDirection(dir.Scale(1 / length))

	i, ok := o.Primitive.IntersectLocal(*r)
	if !ok {
		return Isect{}, false
	}
	i.N = o.Transform.LocalToGlobalNormal(i.N)
	i.T /= length
	i.Material = o.Material
	i.Object = o
	return i, true
}

// IsClosed reports whether the primitive encloses a volume, so that rays
// passing through it enter and later exit.
func (o *Object) IsClosed() bool {
	switch p := o.Primitive.(type) {
	case Sphere, Box:
		return true
	case Cylinder:
		return p.Capped
	}
	return false
}
