// Package scenes builds the named demo scenes the command line can render.
package scenes

import (
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/echoflaresat/raytrace/colors"
	"github.com/echoflaresat/raytrace/geom"
	"github.com/echoflaresat/raytrace/lights"
	"github.com/echoflaresat/raytrace/material"
	"github.com/echoflaresat/raytrace/octree"
	"github.com/echoflaresat/raytrace/scene"
	"github.com/echoflaresat/raytrace/sun"
	"github.com/echoflaresat/raytrace/texture"
	"github.com/echoflaresat/raytrace/vectors"
)

type Options struct {
	Octree octree.Config

	// Texture is an image file mapped onto the textured scene. A generated
	// checkerboard is used when empty.
	Texture string

	// When SunTime is set the scene's key light is replaced by the sun as
	// seen from Lat/Lon (degrees) at that time.
	SunTime time.Time
	Lat     float64
	Lon     float64

	// GridSize is the number of spheres along each axis of the grid scene.
	GridSize int
}

func DefaultOptions() Options {
	return Options{
		Octree:   octree.DefaultConfig(),
		GridSize: 8,
	}
}

type builder func(s *scene.Scene, opts Options) error

var builders = map[string]builder{
	"spheres":  buildSpheres,
	"mirror":   buildMirror,
	"glass":    buildGlass,
	"textured": buildTextured,
	"grid":     buildGrid,
}

// Names lists the available scenes in alphabetical order.
func Names() []string {
	names := make([]string, 0, len(builders))
	for name := range builders {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Build constructs the named scene. Texture failures are reported here,
// never during tracing.
func Build(name string, opts Options) (*scene.Scene, error) {
	b, ok := builders[name]
	if !ok {
		return nil, fmt.Errorf("unknown scene %q (have %v)", name, Names())
	}

	s := scene.New(opts.Octree)
	s.Camera = scene.NewCamera(vectors.New(0, 2, 8), vectors.New(0, 0.5, 0), vectors.New(0, 1, 0), 45, 1)
	s.Ambient = colors.Gray(0.1)
	if err := b(s, opts); err != nil {
		s.Close()
		return nil, fmt.Errorf("building scene %q: %w", name, err)
	}
	if !opts.SunTime.IsZero() {
		addSun(s, opts)
	}

	slog.Debug("scene built", "name", name, "objects", len(s.Objects()), "lights", len(s.Lights))
	return s, nil
}

// addSun replaces the directional lights with the sun.
func addSun(s *scene.Scene, opts Options) {
	kept := s.Lights[:0]
	for _, l := range s.Lights {
		if _, ok := l.(*lights.Directional); !ok {
			kept = append(kept, l)
		}
	}
	s.Lights = kept

	dir := sun.LocalDirection(opts.SunTime, opts.Lat, opts.Lon)
	if dir.Y <= 0 {
		slog.Warn("sun is below the horizon", "time", opts.SunTime, "lat", opts.Lat, "lon", opts.Lon,
			"elevation", sun.Elevation(opts.SunTime, opts.Lat, opts.Lon))
		return
	}
	s.AddLight(lights.NewDirectional(dir.Neg(), colors.RGB(1, 0.97, 0.9)))
}

func place(t vectors.Vec3, scale float64) vectors.Transform {
	return vectors.NewTransform(vectors.Translate(t).Mul(vectors.ScaleMat(vectors.Splat(scale))))
}

func floor(m *material.Material) *geom.Object {
	xf := vectors.Rotate(vectors.New(1, 0, 0), -90)
	return geom.NewObject("floor", geom.Plane{}, vectors.NewTransform(xf), m)
}

func plastic(c colors.Color4) *material.Material {
	return &material.Material{
		Name:      "plastic",
		Ambient:   material.Const(c),
		Diffuse:   material.Const(c),
		Specular:  material.Scalar(0.4),
		Shininess: material.Scalar(32),
		Index:     material.Scalar(1),
	}
}

func chrome() *material.Material {
	return &material.Material{
		Name:       "chrome",
		Diffuse:    material.Scalar(0.05),
		Specular:   material.Scalar(0.8),
		Reflective: material.Scalar(0.9),
		Shininess:  material.Scalar(128),
		Index:      material.Scalar(1),
	}
}

func glass() *material.Material {
	return &material.Material{
		Name:         "glass",
		Specular:     material.Scalar(0.6),
		Reflective:   material.Scalar(0.08),
		Transmissive: material.Const(colors.RGB(0.9, 0.95, 0.92)),
		Shininess:    material.Scalar(96),
		Index:        material.Scalar(1.5),
	}
}

func keyLights(s *scene.Scene) {
	s.AddLight(lights.NewDirectional(vectors.New(-1, -2, -1), colors.Gray(0.8)))
	p := lights.NewPoint(vectors.New(3, 5, 4), colors.Gray(0.6))
	p.Linear = 0.02
	p.Quadratic = 0.005
	s.AddLight(p)
}

func buildSpheres(s *scene.Scene, _ Options) error {
	s.Add(floor(plastic(colors.Gray(0.6))))
	s.Add(geom.NewObject("red", geom.Sphere{}, place(vectors.New(-1.6, 0.7, 0), 0.7), plastic(colors.RGB(0.8, 0.15, 0.1))))
	s.Add(geom.NewObject("green", geom.Sphere{}, place(vectors.New(0, 1, -0.5), 1), plastic(colors.RGB(0.2, 0.7, 0.25))))
	s.Add(geom.NewObject("blue", geom.Sphere{}, place(vectors.New(1.6, 0.5, 0.6), 0.5), plastic(colors.RGB(0.15, 0.3, 0.85))))
	keyLights(s)
	return nil
}

func buildMirror(s *scene.Scene, _ Options) error {
	m := chrome()
	m.Reflective = material.Scalar(1)
	s.Add(floor(m))
	s.Add(geom.NewObject("ball", geom.Sphere{}, place(vectors.New(0, 1, 0), 1), plastic(colors.RGB(0.9, 0.6, 0.1))))
	s.Add(geom.NewObject("cube", geom.Box{}, vectors.NewTransform(
		vectors.Translate(vectors.New(2, 0.5, -1)).Mul(vectors.Rotate(vectors.New(0, 1, 0), 30))),
		plastic(colors.RGB(0.3, 0.3, 0.9))))
	keyLights(s)
	return nil
}

func buildGlass(s *scene.Scene, _ Options) error {
	s.Add(floor(plastic(colors.Gray(0.7))))
	s.Add(geom.NewObject("lens", geom.Sphere{}, place(vectors.New(0, 1, 1), 1), glass()))
	s.Add(geom.NewObject("pillar", geom.Cylinder{Capped: true}, vectors.NewTransform(
		vectors.Translate(vectors.New(-1, 0, -2)).
			Mul(vectors.Rotate(vectors.New(1, 0, 0), -90)).
			Mul(vectors.ScaleMat(vectors.New(0.5, 0.5, 2.5)))),
		plastic(colors.RGB(0.85, 0.2, 0.2))))
	s.Add(geom.NewObject("block", geom.Box{}, vectors.NewTransform(
		vectors.Translate(vectors.New(1.2, 0.6, -2)).Mul(vectors.ScaleMat(vectors.Splat(1.2)))),
		chrome()))
	pane := glass()
	pane.Transmissive = material.Scalar(0.7)
	s.Add(geom.NewObject("pane", geom.Square{}, vectors.NewTransform(
		vectors.Translate(vectors.New(-2.2, 1, 0.5)).
			Mul(vectors.Rotate(vectors.New(0, 1, 0), 60)).
			Mul(vectors.ScaleMat(vectors.New(1.5, 2, 1)))),
		pane))
	keyLights(s)
	return nil
}

func buildTextured(s *scene.Scene, opts Options) error {
	var (
		tex *texture.Map
		err error
	)
	if opts.Texture != "" {
		tex, err = s.Texture(opts.Texture)
	} else {
		tex, err = checkerboard(8, colors.RGB(0.9, 0.9, 0.9), colors.RGB(0.2, 0.2, 0.6))
	}
	if err != nil {
		return err
	}

	globe := &material.Material{
		Name:      "globe",
		Ambient:   material.Mapped(tex),
		Diffuse:   material.Mapped(tex),
		Specular:  material.Scalar(0.2),
		Shininess: material.Scalar(20),
		Index:     material.Scalar(1),
	}
	s.Add(floor(plastic(colors.Gray(0.5))))
	s.Add(geom.NewObject("globe", geom.Sphere{}, vectors.NewTransform(
		vectors.Translate(vectors.New(0, 1.2, 0)).
			Mul(vectors.Rotate(vectors.New(1, 0, 0), -90)).
			Mul(vectors.ScaleMat(vectors.Splat(1.2)))),
		globe))

	banner := &material.Material{Name: "banner", Diffuse: material.Mapped(tex), Index: material.Scalar(1)}
	s.Add(geom.NewObject("banner", geom.Square{}, vectors.NewTransform(
		vectors.Translate(vectors.New(0, 1.5, -3)).Mul(vectors.ScaleMat(vectors.New(6, 3, 1)))),
		banner))
	keyLights(s)
	return nil
}

// checkerboard returns an n×n two-color texture.
func checkerboard(n int, a, b colors.Color4) (*texture.Map, error) {
	data := make([]byte, 0, n*n*3)
	for y := 0; y < n; y++ {
		for x := 0; x < n; x++ {
			c := a
			if (x+y)%2 == 1 {
				c = b
			}
			data = append(data, colors.To8bit(c.R), colors.To8bit(c.G), colors.To8bit(c.B))
		}
	}
	return texture.FromRGB(n, n, data)
}

func buildGrid(s *scene.Scene, opts Options) error {
	n := opts.GridSize
	if n <= 0 {
		n = DefaultOptions().GridSize
	}
	const spacing = 0.6
	offset := float64(n-1) * spacing / 2

	s.Add(floor(plastic(colors.Gray(0.4))))

	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			for k := 0; k < n; k++ {
				c := colors.RGB(float64(i+1)/float64(n), float64(j+1)/float64(n), float64(k+1)/float64(n))
				pos := vectors.New(float64(i)*spacing-offset, float64(j)*spacing+0.3, float64(k)*spacing-offset)
				s.Add(geom.NewObject(fmt.Sprintf("ball-%d-%d-%d", i, j, k), geom.Sphere{}, place(pos, 0.2), plastic(c)))
			}
		}
	}
	s.Camera = scene.NewCamera(vectors.New(offset*2.5, offset*2+2, offset*3+3), vectors.New(0, offset+0.3, 0), vectors.New(0, 1, 0), 45, 1)
	keyLights(s)
	return nil
}
