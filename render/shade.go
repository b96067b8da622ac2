package render

import (
	"math"

	"github.com/echoflaresat/raytrace/colors"
	"github.com/echoflaresat/raytrace/geom"
	"github.com/echoflaresat/raytrace/scene"
)

// Shade returns the local Phong color at hit i along r: emission, ambient,
// and the diffuse and specular terms of every light, each scaled by the
// light's color and its distance and shadow attenuation.
func Shade(s *scene.Scene, r geom.Ray, i geom.Isect) colors.Color4 {
	m := i.Material
	uv := i.UV
	p := r.At(i.T)
	n := i.N
	view := r.Direction().Neg()

	c := m.Ke(uv).Add(m.Ka(uv).Mul(s.Ambient))

	kd := m.Kd(uv)
	ks := m.Ks(uv)
	shininess := m.ShininessAt(uv)

	for _, l := range s.Lights {
		dir := l.Direction(p)
		nl := n.Dot(dir)

		diffuse := math.Max(0, nl)
		refl := n.Scale(2 * nl).Sub(dir)
		specular := 0.0
		if rv := refl.Dot(view); rv > 0 {
			specular = math.Pow(rv, shininess)
		}

		local := kd.Scale(diffuse).Add(ks.Scale(specular))
		if local.IsBlack() {
			continue
		}

		dist := l.DistanceAttenuation(p)
		if dist == 0 {
			continue
		}
		shadow := l.ShadowAttenuation(s, p)
		if shadow.IsBlack() {
			continue
		}

		c = c.Add(l.Color().Mul(shadow).Scale(dist).Mul(local))
	}

	c.A = 1
	return c
}
