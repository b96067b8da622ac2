package colors

import (
	"image/color"
	"math"
)

// Color4 is a linear RGBA color with float64 components, nominally in [0,1].
// Shading sums may exceed 1; Clamp01 brings them back into range.
type Color4 struct {
	R, G, B, A float64
}

func New(r, g, b, a float64) Color4 {
	return Color4{R: r, G: g, B: b, A: a}
}

// RGB returns an opaque color.
func RGB(r, g, b float64) Color4 {
	return Color4{R: r, G: g, B: b, A: 1}
}

// Gray returns an opaque color with all three channels set to v.
func Gray(v float64) Color4 {
	return Color4{R: v, G: v, B: v, A: 1}
}

func (c Color4) RGBA() (r, g, b, a uint32) {
	rf := clamp01(c.R)
	gf := clamp01(c.G)
	bf := clamp01(c.B)
	af := clamp01(c.A)

	// Convert to pre-multiplied 16-bit values
	return uint32(rf * af * 65535),
		uint32(gf * af * 65535),
		uint32(bf * af * 65535),
		uint32(af * 65535)
}

func FromStandardColor(c color.Color) Color4 {
	// Fast path: already a Color4
	if c4, ok := c.(Color4); ok {
		return c4
	}

	r16, g16, b16, a16 := c.RGBA()
	if a16 == 0 {
		return Color4{R: 0, G: 0, B: 0, A: 0}
	}

	// De-premultiply and normalize to [0,1]
	invA := float64(0xFFFF) / float64(a16)
	return Color4{
		R: float64(r16) * invA / 65535.0,
		G: float64(g16) * invA / 65535.0,
		B: float64(b16) * invA / 65535.0,
		A: float64(a16) / 65535.0,
	}
}

func From8BitRgb(r, g, b, a byte) Color4 {
	return Color4{
		R: float64(r) / 255.0,
		G: float64(g) / 255.0,
		B: float64(b) / 255.0,
		A: float64(a) / 255.0,
	}
}

func White() Color4 {
	return Color4{R: 1, G: 1, B: 1, A: 1}
}

func Black() Color4 {
	return Color4{R: 0, G: 0, B: 0, A: 1}
}

// Add returns c + o (component-wise). Alpha is kept from c.
func (c Color4) Add(o Color4) Color4 {
	return Color4{c.R + o.R, c.G + o.G, c.B + o.B, c.A}
}

// Mul returns c * o (component-wise).
func (c Color4) Mul(o Color4) Color4 {
	return Color4{c.R * o.R, c.G * o.G, c.B * o.B, c.A * o.A}
}

// Scale returns c * s on the color channels.
func (c Color4) Scale(s float64) Color4 {
	return Color4{c.R * s, c.G * s, c.B * s, c.A}
}

func (c Color4) Pow(gamma float64) Color4 {
	return Color4{
		R: math.Pow(c.R, gamma),
		G: math.Pow(c.G, gamma),
		B: math.Pow(c.B, gamma),
		A: c.A, // leave alpha untouched
	}
}

// Mix returns lerp(c, o, t) = c*(1-t) + o*t.
func (c Color4) Mix(o Color4, t float64) Color4 {
	return Color4{
		R: c.R*(1-t) + o.R*t,
		G: c.G*(1-t) + o.G*t,
		B: c.B*(1-t) + o.B*t,
		A: c.A*(1-t) + o.A*t,
	}
}

// Intensity returns the Rec.601 luma of the color channels.
func (c Color4) Intensity() float64 {
	return 0.299*c.R + 0.587*c.G + 0.114*c.B
}

// MaxComponent returns the largest of R, G and B.
func (c Color4) MaxComponent() float64 {
	return math.Max(c.R, math.Max(c.G, c.B))
}

// IsBlack reports whether every color channel is zero or negative.
func (c Color4) IsBlack() bool {
	return c.R <= 0 && c.G <= 0 && c.B <= 0
}

// Clamp01 clamps each component into [0,1].
func (c Color4) Clamp01() Color4 {
	return Color4{
		R: clamp01(c.R),
		G: clamp01(c.G),
		B: clamp01(c.B),
		A: clamp01(c.A),
	}
}

// ToNRGBA converts to 8-bit channels, truncating toward zero.
func (c Color4) ToNRGBA() color.NRGBA {
	return color.NRGBA{
		To8bit(c.R),
		To8bit(c.G),
		To8bit(c.B),
		To8bit(c.A),
	}
}

// --- helpers ---

func clamp01(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}

// To8bit maps [0,1] to 0..255 as int(255 * clamp01(x)).
func To8bit(x float64) uint8 {
	return uint8(255.0 * clamp01(x))
}
