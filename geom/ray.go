package geom

import (
	"github.com/echoflaresat/raytrace/colors"
	"github.com/echoflaresat/raytrace/material"
	"github.com/echoflaresat/raytrace/vectors"
)

const (
	// MissDistance is the t reported for rays that hit nothing.
	MissDistance = 1000.0

	// RayEpsilon is the smallest accepted hit parameter.
	RayEpsilon = 1e-8

	// SpawnEpsilon offsets secondary ray origins off the surface.
	SpawnEpsilon = 1e-6
)

type RayKind uint8

const (
	Visibility RayKind = iota
	Reflection
	Refraction
	Shadow
)

func (k RayKind) String() string {
	switch k {
	case Visibility:
		return "visibility"
	case Reflection:
		return "reflection"
	case Refraction:
		return "refraction"
	case Shadow:
		return "shadow"
	}
	return "unknown"
}

// Ray is a half-line with an accumulated color weight.
type Ray struct {
	pos    vectors.Vec3
	dir    vectors.Vec3
	Weight colors.Color4
	Kind   RayKind
}

func NewRay(pos, dir vectors.Vec3, weight colors.Color4, kind RayKind) Ray {
	return Ray{pos: pos, dir: dir, Weight: weight, Kind: kind}
}

func (r Ray) Position() vectors.Vec3  { return r.pos }
func (r Ray) Direction() vectors.Vec3 { return r.dir }

// SetPosition and SetDirection override the ray in place. They exist for the
// local-space transform in Object.Intersect, which restores the originals.
func (r *Ray) SetPosition(p vectors.Vec3)  { r.pos = p }
func (r *Ray) SetDirection(d vectors.Vec3) { r.dir = d }

// At returns the point at parameter t along the ray.
func (r Ray) At(t float64) vectors.Vec3 {
	return r.pos.Add(r.dir.Scale(t))
}

// Isect is the result of a ray/geometry intersection query.
type Isect struct {
	T        float64
	N        vectors.Vec3
	UV       [2]float64
	Material *material.Material
	Object   *Object
}

// Miss returns the record used for rays that hit nothing.
func Miss() Isect {
	return Isect{T: MissDistance}
}
