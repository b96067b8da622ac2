// Package texture loads image files into texture maps sampled by UV
// coordinate.
package texture

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"io"
	"io/fs"
	"log/slog"
	"math"
	"os"

	"github.com/echoflaresat/raytrace/colors"
	"github.com/echoflaresat/raytrace/texture/tiff"
	xtiff "github.com/echoflaresat/tiff"

	_ "image/jpeg" // register JPEG format with image.Decode
	_ "image/png"  // register PNG format with image.Decode
)

// ErrLoad is matched by every error returned from Load.
var ErrLoad = errors.New("unable to load texture map")

// LoadError reports the file that failed to load and why.
type LoadError struct {
	Path string
	Err  error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("unable to load texture map %q: %v", e.Path, e.Err)
}

func (e *LoadError) Unwrap() []error {
	return []error{ErrLoad, e.Err}
}

// Map is an RGB image sampled with bilinear interpolation.
type Map struct {
	Width  int
	Height int
	img    image.Image
	closer io.Closer
}

// FromImage wraps an already decoded image.
func FromImage(img image.Image) *Map {
	b := img.Bounds()
	m := &Map{Width: b.Dx(), Height: b.Dy(), img: img}
	if c, ok := img.(io.Closer); ok {
		m.closer = c
	}
	return m
}

// FromRGB builds a map from tightly packed row-major 8-bit RGB triples.
func FromRGB(width, height int, data []byte) (*Map, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("invalid texture size %dx%d", width, height)
	}
	if len(data) != width*height*3 {
		return nil, fmt.Errorf("texture data has %d bytes, want %d", len(data), width*height*3)
	}

	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	for i := 0; i < width*height; i++ {
		copy(img.Pix[i*4:], data[i*3:i*3+3])
		img.Pix[i*4+3] = 255
	}
	return FromImage(img), nil
}

// Load reads a texture from disk. Uncompressed striped and tiled TIFFs are
// memory-mapped; anything else is decoded into memory.
func Load(path string) (*Map, error) {
	img, err := loadImage(path)
	if err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}
	m := FromImage(img)
	if m.Width == 0 || m.Height == 0 {
		m.Close()
		return nil, &LoadError{Path: path, Err: errors.New("empty image")}
	}
	slog.Debug("texture loaded", "path", path, "width", m.Width, "height", m.Height)
	return m, nil
}

func loadImage(path string) (image.Image, error) {
	img, err := tiff.LoadStriped(path)
	if err == nil {
		return img, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}
	if !errors.Is(err, tiff.ErrInvalidTiffHeader) && !errors.Is(err, tiff.ErrUnsupported) {
		slog.Warn("failed to load striped TIFF", "path", path, "error", err)
	}

	img, err = tiff.LoadTiled(path)
	if err == nil {
		return img, nil
	}
	if !errors.Is(err, tiff.ErrInvalidTiffHeader) && !errors.Is(err, tiff.ErrUnsupported) {
		slog.Warn("failed to load tiled TIFF", "path", path, "error", err)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	if img, err := xtiff.Decode(f); err == nil {
		return img, nil
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return nil, err
	}
	dec, _, err := image.Decode(f)
	return dec, err
}

// Close releases the file mapping behind memory-mapped textures.
func (m *Map) Close() error {
	if m.closer == nil {
		return nil
	}
	return m.closer.Close()
}

// PixelAt returns the pixel at (x, y), clamped to the image edge.
func (m *Map) PixelAt(x, y int) colors.Color4 {
	x = min(max(x, 0), m.Width-1)
	y = min(max(y, 0), m.Height-1)
	b := m.img.Bounds()
	return fromColor(m.img.At(b.Min.X+x, b.Min.Y+y))
}

// MappedValue samples the map at (u, v) in [0,1]², u across and v down.
func (m *Map) MappedValue(u, v float64) colors.Color4 {
	x := clamp01(u) * float64(m.Width-1)
	y := clamp01(v) * float64(m.Height-1)

	x0, y0 := int(math.Floor(x)), int(math.Floor(y))
	fx, fy := x-float64(x0), y-float64(y0)

	c00 := m.PixelAt(x0, y0)
	c10 := m.PixelAt(x0+1, y0)
	c01 := m.PixelAt(x0, y0+1)
	c11 := m.PixelAt(x0+1, y0+1)

	top := c00.Scale(1 - fx).Add(c10.Scale(fx))
	bottom := c01.Scale(1 - fx).Add(c11.Scale(fx))
	return top.Scale(1 - fy).Add(bottom.Scale(fy))
}

func fromColor(c color.Color) colors.Color4 {
	col := colors.FromStandardColor(c)
	col.A = 1
	return col
}

func clamp01(x float64) float64 {
	if math.IsNaN(x) {
		return 0
	}
	return math.Min(1, math.Max(0, x))
}
