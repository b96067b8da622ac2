package render

import (
	"math"

	"github.com/echoflaresat/raytrace/colors"
	"github.com/echoflaresat/raytrace/geom"
	"github.com/echoflaresat/raytrace/scene"
	"github.com/echoflaresat/raytrace/vectors"
)

// MaxRecursion caps the depth of reflection and refraction rays whatever the
// configured MaxDepth.
const MaxRecursion = 16

// Environment supplies the color of rays that leave the scene.
type Environment interface {
	Background(dir vectors.Vec3) colors.Color4
}

// Solid is a uniform background.
type Solid colors.Color4

func (s Solid) Background(vectors.Vec3) colors.Color4 {
	return colors.Color4(s)
}

// Sky blends from Horizon to Zenith with the height of the ray direction and
// shows Ground below the horizon.
type Sky struct {
	Zenith  colors.Color4
	Horizon colors.Color4
	Ground  colors.Color4
}

func (s Sky) Background(dir vectors.Vec3) colors.Color4 {
	if dir.Y < 0 {
		return s.Ground
	}
	return s.Horizon.Mix(s.Zenith, dir.Normalize().Y)
}

// Tracer follows a ray and its reflected and refracted descendants.
type Tracer struct {
	Scene       *scene.Scene
	MaxDepth    int
	Threshold   float64 // rays whose weight falls below this are dropped
	Environment Environment
}

// TraceRay returns the color seen along r. depth is the recursion level of
// r; child rays are spawned only while depth < MaxDepth.
func (t *Tracer) TraceRay(r geom.Ray, depth int) colors.Color4 {
	i, ok := t.Scene.Intersect(&r)
	if !ok {
		return t.background(r.Direction())
	}

	c := Shade(t.Scene, r, i)
	if depth >= t.MaxDepth || depth >= MaxRecursion {
		return c
	}

	m := i.Material
	p := r.At(i.T)
	d := r.Direction()

	if kr := m.Kr(i.UV); !kr.IsBlack() {
		c = c.Add(t.spawn(r, p, d.Reflect(i.N), kr, geom.Reflection, depth))
	}

	if kt := m.Kt(i.UV); !kt.IsBlack() {
		// Open surfaces have no inside; the ray passes through unbent.
		dir, kind := d, geom.Refraction
		if i.Object == nil || i.Object.IsClosed() {
			var refracted bool
			dir, refracted = refract(d, i.N, m.IndexAt(i.UV))
			if !refracted {
				kind = geom.Reflection
			}
		}
		c = c.Add(t.spawn(r, p, dir, kt, kind, depth))
	}

	c.A = 1
	return c
}

// spawn traces a child ray from p along dir and scales the result by k.
func (t *Tracer) spawn(parent geom.Ray, p, dir vectors.Vec3, k colors.Color4, kind geom.RayKind, depth int) colors.Color4 {
	dir = dir.Normalize()
	w := parent.Weight.Mul(k)
	if w.MaxComponent() < t.Threshold {
		return colors.Black()
	}
	child := geom.NewRay(p.Add(dir.Scale(geom.SpawnEpsilon)), dir, w, kind)
	return t.TraceRay(child, depth+1).Mul(k)
}

func (t *Tracer) background(dir vectors.Vec3) colors.Color4 {
	if t.Environment == nil {
		return colors.Black()
	}
	return t.Environment.Background(dir)
}

// refract bends unit direction d through a surface with outward normal n
// separating air from a medium of the given index. A ray with d·n < 0 is
// entering the medium. ok is false on total internal reflection, in which
// case the mirror direction is returned.
func refract(d, n vectors.Vec3, index float64) (dir vectors.Vec3, ok bool) {
	eta := 1 / index
	cosI := -d.Dot(n)
	if cosI < 0 {
		// Leaving the medium
		n = n.Neg()
		cosI = -cosI
		eta = index
	}

	k := 1 - eta*eta*(1-cosI*cosI)
	if k < 0 {
		return d.Reflect(n), false
	}
	return d.Scale(eta).Add(n.Scale(eta*cosI - math.Sqrt(k))), true
}
