package scene

import (
	"errors"
	"math"
	"math/rand/v2"
	"path/filepath"
	"testing"

	"github.com/echoflaresat/raytrace/colors"
	"github.com/echoflaresat/raytrace/geom"
	"github.com/echoflaresat/raytrace/octree"
	"github.com/echoflaresat/raytrace/texture"
	"github.com/echoflaresat/raytrace/vectors"
)

func ray(pos, dir vectors.Vec3) geom.Ray {
	return geom.NewRay(pos, dir.Normalize(), colors.White(), geom.Visibility)
}

func sphere(center vectors.Vec3, radius float64) *geom.Object {
	m := vectors.Translate(center).Mul(vectors.ScaleMat(vectors.Splat(radius)))
	return geom.NewObject("sphere", geom.Sphere{}, vectors.NewTransform(m), nil)
}

func TestEmptySceneMiss(t *testing.T) {
	for _, depth := range []int{0, 3} {
		s := New(octree.Config{MaxDepth: depth, MinExtent: 1e-6})
		r := ray(vectors.Zero(), vectors.New(0, 0, -1))
		i, ok := s.Intersect(&r)
		if ok {
			t.Fatalf("depth %d: hit in an empty scene", depth)
		}
		if i.T != geom.MissDistance {
			t.Errorf("depth %d: miss T = %v, want %v", depth, i.T, geom.MissDistance)
		}
	}
}

func TestSingleSphere(t *testing.T) {
	s := New(octree.DefaultConfig())
	s.Add(sphere(vectors.Zero(), 1))

	r := ray(vectors.New(0, 0, 5), vectors.New(0, 0, -1))
	i, ok := s.Intersect(&r)
	if !ok {
		t.Fatal("expected a hit")
	}
	if math.Abs(i.T-4) > 1e-9 {
		t.Errorf("T = %v, want 4", i.T)
	}
	if d := i.N.Sub(vectors.New(0, 0, 1)).Norm(); d > 1e-9 {
		t.Errorf("N = %+v, want +z", i.N)
	}
}

func randomScene(rng *rand.Rand, cfg octree.Config, n int) *Scene {
	s := New(cfg)
	for k := 0; k < n; k++ {
		c := vectors.New(rng.Float64()*20-10, rng.Float64()*20-10, rng.Float64()*20-10)
		s.Add(sphere(c, 0.2+rng.Float64()))
	}
	plane := geom.NewObject("floor", geom.Plane{},
		vectors.NewTransform(vectors.Translate(vectors.New(0, -12, 0)).Mul(vectors.Rotate(vectors.New(1, 0, 0), -90))), nil)
	s.Add(plane)
	return s
}

func TestOctreeMatchesBruteForce(t *testing.T) {
	for _, depth := range []int{1, 3, 6} {
		rng := rand.New(rand.NewPCG(7, uint64(depth)))
		accel := randomScene(rng, octree.Config{MaxDepth: depth, MinExtent: 1e-6}, 40)
		brute := New(octree.Config{})
		for _, o := range accel.Objects() {
			brute.Add(o)
		}

		for k := 0; k < 300; k++ {
			pos := vectors.New(rng.Float64()*30-15, rng.Float64()*30-15, rng.Float64()*30-15)
			dir := vectors.New(rng.NormFloat64(), rng.NormFloat64(), rng.NormFloat64())
			r1, r2 := ray(pos, dir), ray(pos, dir)

			a, aok := accel.Intersect(&r1)
			b, bok := brute.Intersect(&r2)
			if aok != bok {
				t.Fatalf("depth %d ray %d: octree hit=%v brute hit=%v", depth, k, aok, bok)
			}
			if aok && (math.Abs(a.T-b.T) > 1e-9 || a.Object != b.Object) {
				t.Fatalf("depth %d ray %d: octree T=%v (%p), brute T=%v (%p)", depth, k, a.T, a.Object, b.T, b.Object)
			}
		}
	}
}

func TestAddInvalidatesTree(t *testing.T) {
	s := New(octree.DefaultConfig())
	s.Add(sphere(vectors.Zero(), 1))
	r := ray(vectors.New(10, 0, 0), vectors.New(0, 0, -1))
	if _, ok := s.Intersect(&r); ok {
		t.Fatal("unexpected hit before the second sphere exists")
	}

	s.Add(sphere(vectors.New(10, 0, -5), 1))
	r = ray(vectors.New(10, 0, 0), vectors.New(0, 0, -1))
	if _, ok := s.Intersect(&r); !ok {
		t.Fatal("sphere added after the first query is not visible")
	}
}

func TestFreezeAndStats(t *testing.T) {
	s := New(octree.Config{MaxDepth: 2, MinExtent: 1e-6})
	s.Add(sphere(vectors.New(-2, 0, 0), 1))
	s.Add(sphere(vectors.New(2, 0, 0), 1))

	st, ok := s.Stats()
	if !ok || st.Nodes != 1 || st.Unexpanded != 1 {
		t.Fatalf("lazy tree stats = %+v, ok=%v", st, ok)
	}

	s.Freeze()
	st, _ = s.Stats()
	if st.Unexpanded != 0 || st.Nodes != 1+8+64 {
		t.Errorf("frozen stats = %+v", st)
	}

	if _, ok := New(octree.Config{}).Stats(); ok {
		t.Error("brute-force scene reported octree stats")
	}
}

func TestDebugCache(t *testing.T) {
	s := New(octree.DefaultConfig())
	s.Add(sphere(vectors.Zero(), 1))

	r := ray(vectors.New(0, 0, 5), vectors.New(0, 0, -1))
	s.Intersect(&r)
	if n := len(s.DebugCache()); n != 0 {
		t.Fatalf("recorded %d rays with debug off", n)
	}

	s.SetDebug(true)
	hit := ray(vectors.New(0, 0, 5), vectors.New(0, 0, -1))
	miss := ray(vectors.New(0, 0, 5), vectors.New(0, 0, 1))
	s.Intersect(&hit)
	s.Intersect(&miss)

	cache := s.DebugCache()
	if len(cache) != 2 {
		t.Fatalf("recorded %d rays, want 2", len(cache))
	}
	if !cache[0].Hit || math.Abs(cache[0].Isect.T-4) > 1e-9 {
		t.Errorf("first record = %+v", cache[0])
	}
	if cache[1].Hit || cache[1].Isect.T != geom.MissDistance {
		t.Errorf("second record = %+v", cache[1])
	}

	s.ClearDebugCache()
	if len(s.DebugCache()) != 0 {
		t.Error("cache not cleared")
	}
}

func TestTextureErrors(t *testing.T) {
	s := New(octree.DefaultConfig())
	defer s.Close()
	_, err := s.Texture(filepath.Join(t.TempDir(), "nope.png"))
	if !errors.Is(err, texture.ErrLoad) {
		t.Errorf("err = %v, want texture.ErrLoad", err)
	}
}

func TestCameraRayThrough(t *testing.T) {
	c := NewCamera(vectors.New(0, 0, 5), vectors.Zero(), vectors.New(0, 1, 0), 90, 2)

	center := c.RayThrough(0.5, 0.5)
	if d := center.Direction().Sub(vectors.New(0, 0, -1)).Norm(); d > 1e-12 {
		t.Errorf("center direction = %+v", center.Direction())
	}
	if center.Position() != c.Eye || center.Kind != geom.Visibility {
		t.Errorf("center ray = %+v", center)
	}

	// tan(45°) = 1, so the top edge is 45° up and the right edge is
	// aspect times wider.
	top := c.RayThrough(0.5, 1).Direction()
	if d := top.Sub(vectors.New(0, 1, -1).Normalize()).Norm(); d > 1e-12 {
		t.Errorf("top direction = %+v", top)
	}
	right := c.RayThrough(1, 0.5).Direction()
	if d := right.Sub(vectors.New(2, 0, -1).Normalize()).Norm(); d > 1e-12 {
		t.Errorf("right direction = %+v", right)
	}
}

func TestCameraOrbit(t *testing.T) {
	c := NewCamera(vectors.Zero(), vectors.New(0, 0, -1), vectors.New(0, 1, 0), 60, 1)
	c.Orbit(90, 0)
	// Positive yaw turns the view counter-clockwise about +y.
	if d := c.Forward.Sub(vectors.New(-1, 0, 0)).Norm(); d > 1e-12 {
		t.Errorf("forward after yaw = %+v", c.Forward)
	}
	c.Orbit(0, 90)
	if d := c.Forward.Sub(vectors.New(0, 1, 0)).Norm(); d > 1e-12 {
		t.Errorf("forward after tilt = %+v", c.Forward)
	}
}
