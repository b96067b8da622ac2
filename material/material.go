// Package material describes surface properties. Every coefficient is either
// a constant color or a texture sampled at the hit's UV coordinates.
package material

import "github.com/echoflaresat/raytrace/colors"

// TextureMap samples a texture at parametric coordinates in [0,1]x[0,1].
type TextureMap interface {
	MappedValue(u, v float64) colors.Color4
}

// Parameter is a single material coefficient.
type Parameter struct {
	value colors.Color4
	tex   TextureMap
}

func Const(c colors.Color4) Parameter {
	return Parameter{value: c}
}

func Scalar(v float64) Parameter {
	return Parameter{value: colors.Gray(v)}
}

func Mapped(t TextureMap) Parameter {
	return Parameter{tex: t}
}

func (p Parameter) IsMapped() bool {
	return p.tex != nil
}

// Value returns the coefficient at uv.
func (p Parameter) Value(uv [2]float64) colors.Color4 {
	if p.tex != nil {
		return p.tex.MappedValue(uv[0], uv[1])
	}
	return p.value
}

// Intensity returns the luma of Value, for scalar coefficients such as
// shininess and index of refraction. Gray values come back exactly.
func (p Parameter) Intensity(uv [2]float64) float64 {
	c := p.Value(uv)
	if c.R == c.G && c.G == c.B {
		return c.R
	}
	return c.Intensity()
}

// Material holds the Phong and recursive-tracing coefficients of a surface.
type Material struct {
	Name         string
	Emissive     Parameter // ke
	Ambient      Parameter // ka
	Diffuse      Parameter // kd
	Specular     Parameter // ks
	Reflective   Parameter // kr
	Transmissive Parameter // kt
	Shininess    Parameter
	Index        Parameter
}

// Default returns a matte gray material with a refraction index of 1.
func Default() *Material {
	return &Material{
		Name:      "default",
		Diffuse:   Scalar(0.8),
		Shininess: Scalar(0),
		Index:     Scalar(1),
	}
}

func (m *Material) Ke(uv [2]float64) colors.Color4 { return m.Emissive.Value(uv) }
func (m *Material) Ka(uv [2]float64) colors.Color4 { return m.Ambient.Value(uv) }
func (m *Material) Kd(uv [2]float64) colors.Color4 { return m.Diffuse.Value(uv) }
func (m *Material) Ks(uv [2]float64) colors.Color4 { return m.Specular.Value(uv) }
func (m *Material) Kr(uv [2]float64) colors.Color4 { return m.Reflective.Value(uv) }
func (m *Material) Kt(uv [2]float64) colors.Color4 { return m.Transmissive.Value(uv) }

func (m *Material) ShininessAt(uv [2]float64) float64 { return m.Shininess.Intensity(uv) }

// IndexAt returns the index of refraction; unset indices read as 1.
func (m *Material) IndexAt(uv [2]float64) float64 {
	n := m.Index.Intensity(uv)
	if n <= 0 {
		return 1
	}
	return n
}

func (m *Material) IsReflective(uv [2]float64) bool {
	return !m.Kr(uv).IsBlack()
}

func (m *Material) IsTransmissive(uv [2]float64) bool {
	return !m.Kt(uv).IsBlack()
}
