package scenes

import (
	"errors"
	"path/filepath"
	"slices"
	"testing"
	"time"

	"github.com/echoflaresat/raytrace/lights"
	"github.com/echoflaresat/raytrace/texture"
)

func TestNames(t *testing.T) {
	want := []string{"glass", "grid", "mirror", "spheres", "textured"}
	if got := Names(); !slices.Equal(got, want) {
		t.Errorf("Names() = %v, want %v", got, want)
	}
}

func TestBuildAll(t *testing.T) {
	for _, name := range Names() {
		t.Run(name, func(t *testing.T) {
			s, err := Build(name, DefaultOptions())
			if err != nil {
				t.Fatal(err)
			}
			defer s.Close()
			if len(s.Objects()) == 0 || len(s.Lights) == 0 {
				t.Fatalf("%d objects, %d lights", len(s.Objects()), len(s.Lights))
			}

			// The camera looks at something.
			r := s.Camera.RayThrough(0.5, 0.5)
			if _, ok := s.Intersect(&r); !ok {
				t.Error("center ray hits nothing")
			}
		})
	}
}

func TestBuildUnknown(t *testing.T) {
	if _, err := Build("teapot", DefaultOptions()); err == nil {
		t.Error("unknown scene accepted")
	}
}

func TestTextureFailureSurfacesAtBuild(t *testing.T) {
	opts := DefaultOptions()
	opts.Texture = filepath.Join(t.TempDir(), "missing.png")
	_, err := Build("textured", opts)
	if !errors.Is(err, texture.ErrLoad) {
		t.Errorf("err = %v, want texture.ErrLoad", err)
	}
}

func TestGridSize(t *testing.T) {
	opts := DefaultOptions()
	opts.GridSize = 3
	s, err := Build("grid", opts)
	if err != nil {
		t.Fatal(err)
	}
	if n := len(s.Objects()); n != 27+1 {
		t.Errorf("%d objects, want 27 balls and the floor", n)
	}
	s.Freeze()
	st, ok := s.Stats()
	if !ok || st.Objects != 27 || st.Unbounded != 1 || st.Leaves == 0 {
		t.Errorf("stats = %+v", st)
	}
}

func directional(ls []lights.Light) []*lights.Directional {
	var out []*lights.Directional
	for _, l := range ls {
		if d, ok := l.(*lights.Directional); ok {
			out = append(out, d)
		}
	}
	return out
}

func TestSunLight(t *testing.T) {
	opts := DefaultOptions()
	opts.SunTime = time.Date(2024, 3, 20, 12, 0, 0, 0, time.UTC)
	s, err := Build("spheres", opts)
	if err != nil {
		t.Fatal(err)
	}
	d := directional(s.Lights)
	if len(d) != 1 {
		t.Fatalf("%d directional lights, want only the sun", len(d))
	}
	// Noon on the equator at the equinox: the sun shines straight down.
	if y := d[0].Orientation.Y; y > -0.99 {
		t.Errorf("sun orientation = %+v", d[0].Orientation)
	}

	opts.SunTime = time.Date(2024, 3, 20, 0, 0, 0, 0, time.UTC)
	s, err = Build("spheres", opts)
	if err != nil {
		t.Fatal(err)
	}
	if d := directional(s.Lights); len(d) != 0 {
		t.Errorf("night scene has %d directional lights", len(d))
	}
	if len(s.Lights) == 0 {
		t.Error("point light dropped along with the sun")
	}
}
