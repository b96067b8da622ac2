package material

import (
	"math"
	"testing"

	"github.com/echoflaresat/raytrace/colors"
)

type uvTexture struct{}

func (uvTexture) MappedValue(u, v float64) colors.Color4 {
	return colors.RGB(u, v, 0)
}

func TestParameterConstAndMapped(t *testing.T) {
	c := Const(colors.RGB(0.1, 0.2, 0.3))
	if c.IsMapped() {
		t.Error("constant parameter reports mapped")
	}
	if got := c.Value([2]float64{0.9, 0.9}); got != colors.RGB(0.1, 0.2, 0.3) {
		t.Errorf("const value = %+v", got)
	}

	m := Mapped(uvTexture{})
	if !m.IsMapped() {
		t.Error("mapped parameter reports constant")
	}
	if got := m.Value([2]float64{0.25, 0.75}); got.R != 0.25 || got.G != 0.75 {
		t.Errorf("mapped value = %+v", got)
	}
	want := 0.299*0.25 + 0.587*0.75
	if got := m.Intensity([2]float64{0.25, 0.75}); math.Abs(got-want) > 1e-12 {
		t.Errorf("mapped intensity = %v, want %v", got, want)
	}
}

func TestMaterialFlags(t *testing.T) {
	m := Default()
	uv := [2]float64{}
	if m.IsReflective(uv) || m.IsTransmissive(uv) {
		t.Error("default material should be neither reflective nor transmissive")
	}
	if m.IndexAt(uv) != 1 {
		t.Errorf("default index = %v", m.IndexAt(uv))
	}

	m.Reflective = Scalar(0.5)
	m.Transmissive = Const(colors.RGB(0, 0, 0.1))
	if !m.IsReflective(uv) || !m.IsTransmissive(uv) {
		t.Error("expected reflective and transmissive")
	}
}

func TestScalarIntensityIsExact(t *testing.T) {
	for _, v := range []float64{0, 1, 1.5, 2.4, 64} {
		if got := Scalar(v).Intensity([2]float64{}); got != v {
			t.Errorf("Scalar(%v).Intensity = %v", v, got)
		}
	}
}
