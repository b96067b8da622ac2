package render

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/echoflaresat/raytrace/colors"
	"github.com/echoflaresat/raytrace/geom"
	"github.com/echoflaresat/raytrace/lights"
	"github.com/echoflaresat/raytrace/material"
	"github.com/echoflaresat/raytrace/octree"
	"github.com/echoflaresat/raytrace/scene"
	"github.com/echoflaresat/raytrace/vectors"
)

func approxColor(t *testing.T, got, want colors.Color4) {
	t.Helper()
	const eps = 1e-6
	if math.Abs(got.R-want.R) > eps || math.Abs(got.G-want.G) > eps || math.Abs(got.B-want.B) > eps {
		t.Errorf("got %+v, want %+v", got, want)
	}
}

func approxVec(t *testing.T, got, want vectors.Vec3) {
	t.Helper()
	if got.Sub(want).Norm() > 1e-9 {
		t.Errorf("got %+v, want %+v", got, want)
	}
}

func sphereAt(center vectors.Vec3, radius float64, m *material.Material) *geom.Object {
	xf := vectors.Translate(center).Mul(vectors.ScaleMat(vectors.Splat(radius)))
	return geom.NewObject("sphere", geom.Sphere{}, vectors.NewTransform(xf), m)
}

// horizontalPlane returns the infinite plane y = height.
func horizontalPlane(height float64, m *material.Material) *geom.Object {
	xf := vectors.Translate(vectors.New(0, height, 0)).Mul(vectors.Rotate(vectors.New(1, 0, 0), -90))
	return geom.NewObject("plane", geom.Plane{}, vectors.NewTransform(xf), m)
}

func mirror() *material.Material {
	return &material.Material{
		Name:       "mirror",
		Ambient:    material.Scalar(0.1),
		Reflective: material.Scalar(1),
		Index:      material.Scalar(1),
	}
}

func emissive(c colors.Color4) *material.Material {
	return &material.Material{Name: "lamp", Emissive: material.Const(c), Index: material.Scalar(1)}
}

// singleSphere is a unit sphere at the origin lit from the camera side.
func singleSphere() *scene.Scene {
	s := scene.New(octree.DefaultConfig())
	s.Camera = scene.NewCamera(vectors.New(0, 0, 5), vectors.Zero(), vectors.New(0, 1, 0), 45, 1)
	s.Add(sphereAt(vectors.Zero(), 1, nil))
	s.AddLight(lights.NewDirectional(vectors.New(0, 0, -1), colors.White()))
	return s
}

func TestSingleSphereCenter(t *testing.T) {
	s := singleSphere()
	r := s.Camera.RayThrough(0.5, 0.5)
	i, ok := s.Intersect(&r)
	if !ok {
		t.Fatal("center ray missed the sphere")
	}
	if math.Abs(i.T-4) > 1e-9 {
		t.Errorf("t = %v, want 4", i.T)
	}
	approxVec(t, i.N, vectors.New(0, 0, 1))

	// Default material, light straight on: kd * N·L.
	approxColor(t, Shade(s, r, i), colors.Gray(0.8))
}

func TestShadeSpecularAndLightColor(t *testing.T) {
	s := singleSphere()
	s.Lights = nil
	s.AddLight(lights.NewDirectional(vectors.New(0, 0, -1), colors.RGB(1, 0.5, 0)))
	m := &material.Material{
		Diffuse:   material.Scalar(0.5),
		Specular:  material.Scalar(0.25),
		Shininess: material.Scalar(10),
		Ambient:   material.Scalar(1),
		Emissive:  material.Const(colors.RGB(0, 0, 0.1)),
	}
	s.Objects()[0].Material = m
	s.Ambient = colors.Gray(0.1)

	r := s.Camera.RayThrough(0.5, 0.5)
	i, _ := s.Intersect(&r)
	// ke + ka*ambient + light*(kd + ks), both terms at full strength.
	want := colors.RGB(0, 0, 0.1).Add(colors.Gray(0.1)).Add(colors.RGB(0.75, 0.375, 0))
	approxColor(t, Shade(s, r, i), want)
}

func TestShadeShadowed(t *testing.T) {
	s := singleSphere()
	s.Add(sphereAt(vectors.New(0, 0, 3), 0.5, nil))

	// The big sphere's pole sits in the small sphere's shadow. Query the big
	// sphere directly since the blocker hides it from the front.
	pole := geom.NewRay(vectors.New(0, 0, 10), vectors.New(0, 0, -1), colors.White(), geom.Visibility)
	hit, ok := s.Objects()[0].Intersect(&pole)
	if !ok {
		t.Fatal("pole ray missed")
	}
	approxColor(t, Shade(s, pole, hit), colors.Black())
}

func mirrorScene(depth int) (*scene.Scene, *Tracer, geom.Ray) {
	s := scene.New(octree.Config{})
	s.Ambient = colors.White()
	s.Add(horizontalPlane(-1, mirror()))
	s.Add(sphereAt(vectors.New(4, 2, 0), 1, emissive(colors.RGB(1, 0, 0))))

	tr := &Tracer{Scene: s, MaxDepth: depth}
	r := geom.NewRay(vectors.New(-2, 2, 0), vectors.New(1, -1, 0).Normalize(), colors.White(), geom.Visibility)
	return s, tr, r
}

func TestMirrorMaxDepthZero(t *testing.T) {
	s, tr, r := mirrorScene(0)
	s.SetDebug(true)

	approxColor(t, tr.TraceRay(r, 0), colors.Gray(0.1))
	if n := len(s.DebugCache()); n != 1 {
		t.Errorf("%d intersection queries, want 1", n)
	}
}

func TestMirrorReflects(t *testing.T) {
	s, tr, r := mirrorScene(1)
	s.SetDebug(true)

	approxColor(t, tr.TraceRay(r, 0), colors.RGB(1.1, 0.1, 0.1))

	cache := s.DebugCache()
	if len(cache) != 2 {
		t.Fatalf("%d intersection queries, want 2", len(cache))
	}
	if k := cache[1].Ray.Kind; k != geom.Reflection {
		t.Errorf("child ray kind = %v", k)
	}
	approxVec(t, cache[1].Ray.Direction(), vectors.New(1, 1, 0).Normalize())
}

func TestDepthBoundary(t *testing.T) {
	const max = 3
	tests := []struct {
		depth   int
		queries int
	}{
		{max - 1, 2},
		{max, 1},
		{max + 1, 1},
	}
	for _, tt := range tests {
		s, tr, r := mirrorScene(max)
		s.SetDebug(true)
		tr.TraceRay(r, tt.depth)
		if n := len(s.DebugCache()); n != tt.queries {
			t.Errorf("depth %d: %d queries, want %d", tt.depth, n, tt.queries)
		}
	}
}

func TestRecursionHardCap(t *testing.T) {
	s := scene.New(octree.Config{})
	s.Add(horizontalPlane(-1, mirror()))
	s.Add(horizontalPlane(1, mirror()))
	s.SetDebug(true)

	tr := &Tracer{Scene: s, MaxDepth: 1000}
	r := geom.NewRay(vectors.Zero(), vectors.New(0, -1, 0), colors.White(), geom.Visibility)
	tr.TraceRay(r, 0)
	if n := len(s.DebugCache()); n != MaxRecursion+1 {
		t.Errorf("%d queries, want %d", n, MaxRecursion+1)
	}
}

func TestThresholdPrunes(t *testing.T) {
	s, tr, r := mirrorScene(5)
	s.Objects()[0].Material.Reflective = material.Scalar(0.05)
	tr.Threshold = 0.1
	s.SetDebug(true)

	tr.TraceRay(r, 0)
	if n := len(s.DebugCache()); n != 1 {
		t.Errorf("%d queries, want 1", n)
	}
}

func TestMissUsesEnvironment(t *testing.T) {
	s := scene.New(octree.DefaultConfig())
	r := geom.NewRay(vectors.Zero(), vectors.New(0, 1, 0), colors.White(), geom.Visibility)

	tr := &Tracer{Scene: s}
	approxColor(t, tr.TraceRay(r, 0), colors.Black())

	tr.Environment = Sky{Zenith: colors.RGB(0, 0, 1), Horizon: colors.White(), Ground: colors.Gray(0.2)}
	approxColor(t, tr.TraceRay(r, 0), colors.RGB(0, 0, 1))
	down := geom.NewRay(vectors.Zero(), vectors.New(0, -1, 0), colors.White(), geom.Visibility)
	approxColor(t, tr.TraceRay(down, 0), colors.Gray(0.2))

	tr.Environment = Solid(colors.RGB(0.3, 0.2, 0.1))
	approxColor(t, tr.TraceRay(r, 0), colors.RGB(0.3, 0.2, 0.1))
}

func TestRefract(t *testing.T) {
	d := vectors.New(0, -1, 0)
	n := vectors.New(0, 1, 0)
	dir, ok := refract(d, n, 1.5)
	if !ok {
		t.Fatal("normal incidence reflected")
	}
	approxVec(t, dir, d)

	// Snell: sin(out) = sin(in) / 1.5 entering the medium.
	in := vectors.New(math.Sin(math.Pi/6), -math.Cos(math.Pi/6), 0)
	dir, ok = refract(in, n, 1.5)
	if !ok {
		t.Fatal("entering ray reflected")
	}
	if math.Abs(dir.Norm()-1) > 1e-12 || math.Abs(dir.X-0.5/1.5) > 1e-12 || dir.Y >= 0 {
		t.Errorf("refracted = %+v", dir)
	}

	// Leaving at 60° exceeds the critical angle of about 41.8°.
	out := vectors.New(math.Sin(math.Pi/3), math.Cos(math.Pi/3), 0)
	dir, ok = refract(out, n, 1.5)
	if ok {
		t.Fatal("expected total internal reflection")
	}
	approxVec(t, dir, vectors.New(math.Sin(math.Pi/3), -math.Cos(math.Pi/3), 0))

	// Matching index leaves the ray unchanged.
	dir, _ = refract(in, n, 1)
	approxVec(t, dir, in)
}

func TestGlassSphereTransmits(t *testing.T) {
	glass := &material.Material{
		Transmissive: material.Scalar(1),
		Index:        material.Scalar(1.5),
	}
	s := scene.New(octree.DefaultConfig())
	s.Add(sphereAt(vectors.Zero(), 1, glass))
	s.Add(sphereAt(vectors.New(0, 0, -5), 1, emissive(colors.RGB(0, 1, 0))))
	s.SetDebug(true)

	tr := &Tracer{Scene: s, MaxDepth: 4}
	r := geom.NewRay(vectors.New(0, 0, 5), vectors.New(0, 0, -1), colors.White(), geom.Visibility)
	approxColor(t, tr.TraceRay(r, 0), colors.RGB(0, 1, 0))

	cache := s.DebugCache()
	if len(cache) != 3 {
		t.Fatalf("%d queries, want 3", len(cache))
	}
	for k, rec := range cache[1:] {
		if rec.Ray.Kind != geom.Refraction {
			t.Errorf("query %d kind = %v", k+1, rec.Ray.Kind)
		}
	}
}

func TestTraceClamps(t *testing.T) {
	s := scene.New(octree.DefaultConfig())
	s.Camera = scene.NewCamera(vectors.New(0, 0, 5), vectors.Zero(), vectors.New(0, 1, 0), 45, 1)
	s.Add(sphereAt(vectors.Zero(), 1, emissive(colors.RGB(2, -1, 0.5))))

	rt := New(s, DefaultOptions())
	approxColor(t, rt.Trace(0.5, 0.5), colors.RGB(1, 0, 0.5))
}

func TestTraceClearsDebugCache(t *testing.T) {
	s := singleSphere()
	opts := DefaultOptions()
	opts.Debug = true
	rt := New(s, opts)
	if rt.Options().Workers != 1 {
		t.Errorf("debug renders use %d workers", rt.Options().Workers)
	}

	rt.Trace(0.5, 0.5)
	first := len(s.DebugCache())
	rt.Trace(0.5, 0.5)
	if n := len(s.DebugCache()); n != first || n == 0 {
		t.Errorf("cache holds %d records after the second trace, want %d", n, first)
	}
}

func TestTraceImage(t *testing.T) {
	s := singleSphere()
	opts := DefaultOptions()
	opts.Workers = 4
	rt := New(s, opts)

	const w, h = 16, 12
	if err := rt.TraceImage(context.Background(), w, h); err != nil {
		t.Fatal(err)
	}
	if gw, gh := rt.Size(); gw != w || gh != h {
		t.Fatalf("size = %dx%d", gw, gh)
	}
	if len(rt.Buffer()) != w*h*3 {
		t.Fatalf("buffer has %d bytes", len(rt.Buffer()))
	}
	if st, ok := s.Stats(); !ok || st.Unexpanded != 0 {
		t.Errorf("octree not frozen before tracing: %+v", st)
	}

	if c := rt.Pixel(w/2, h/2); c.IsBlack() {
		t.Error("center pixel is black")
	}
	if c := rt.Pixel(0, 0); !c.IsBlack() {
		t.Errorf("corner pixel = %+v, want background", c)
	}

	if err := rt.TraceImage(context.Background(), 0, 4); err == nil {
		t.Error("zero width accepted")
	}
}

func TestTraceImageCancelled(t *testing.T) {
	rt := New(singleSphere(), DefaultOptions())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := rt.TraceImage(ctx, 8, 8); !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}

func TestBufferAccessors(t *testing.T) {
	rt := New(singleSphere(), DefaultOptions())
	rt.SetSize(3, 2)

	rt.SetPixel(0, 0, colors.RGB(1, 0.5, 0))
	got := rt.Pixel(0, 0)
	approxColor(t, got, colors.RGB(1, 127.0/255, 0))
	if b := rt.Buffer(); b[0] != 255 || b[1] != 127 || b[2] != 0 {
		t.Errorf("buffer = %v", b[:3])
	}

	// Out-of-range writes are ignored.
	rt.SetPixel(3, 0, colors.White())
	rt.SetPixel(-1, 0, colors.White())
	if !rt.Pixel(3, 0).IsBlack() {
		t.Error("out-of-range pixel is not black")
	}

	// Buffer row 0 is the bottom of the image.
	img := rt.Image()
	if c := img.NRGBAAt(0, 1); c.R != 255 || c.G != 127 || c.A != 255 {
		t.Errorf("image bottom-left = %v", c)
	}
	if c := img.NRGBAAt(0, 0); c.R != 0 {
		t.Errorf("image top-left = %v", c)
	}
}

func TestThinPaneDoesNotBend(t *testing.T) {
	pane := &material.Material{
		Transmissive: material.Scalar(1),
		Index:        material.Scalar(1.5),
	}
	s := scene.New(octree.DefaultConfig())
	// 10x10 square in z = 0, lamp behind it on the unbent 45° line.
	s.Add(geom.NewObject("pane", geom.Square{}, vectors.NewTransform(vectors.ScaleMat(vectors.Splat(10))), pane))
	s.Add(sphereAt(vectors.New(2, 0, -2), 0.5, emissive(colors.White())))

	tr := &Tracer{Scene: s, MaxDepth: 3}
	r := geom.NewRay(vectors.New(-1, 0, 1), vectors.New(1, 0, -1).Normalize(), colors.White(), geom.Visibility)
	approxColor(t, tr.TraceRay(r, 0), colors.White())

	s.SetDebug(true)
	tr.TraceRay(r, 0)
	recs := s.DebugCache()
	if len(recs) < 2 || recs[1].Ray.Kind != geom.Refraction {
		t.Fatalf("want a refraction query after the pane, got %d records", len(recs))
	}
	approxVec(t, recs[1].Ray.Direction(), r.Direction())
}
