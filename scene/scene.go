// Package scene holds the objects, lights and camera of a ray-traced scene and
// answers closest-hit queries against them.
package scene

import (
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/echoflaresat/raytrace/colors"
	"github.com/echoflaresat/raytrace/geom"
	"github.com/echoflaresat/raytrace/lights"
	"github.com/echoflaresat/raytrace/octree"
	"github.com/echoflaresat/raytrace/texture"
)

// RayRecord is one entry of the debug ray cache.
type RayRecord struct {
	Ray   geom.Ray
	Isect geom.Isect
	Hit   bool
}

// Scene is safe for concurrent Intersect calls once it is no longer being
// modified.
type Scene struct {
	Camera  Camera
	Ambient colors.Color4
	Lights  []lights.Light

	objects []*geom.Object
	bounds  geom.BoundingBox
	cfg     octree.Config

	treeMu sync.Mutex
	tree   atomic.Pointer[octree.Tree]

	debug      atomic.Bool
	debugMu    sync.Mutex
	debugCache []RayRecord

	textures *texture.Cache
}

// New returns an empty scene. cfg.MaxDepth == 0 disables the octree and every
// object is tested against every ray.
func New(cfg octree.Config) *Scene {
	// lru only rejects non-positive sizes.
	textures, _ := texture.NewCache(texture.DefaultCacheSize)
	return &Scene{
		Ambient:  colors.Black(),
		bounds:   geom.EmptyBox(),
		cfg:      cfg,
		textures: textures,
	}
}

// Add places o in the scene and grows the scene bounds to include it.
func (s *Scene) Add(o *geom.Object) {
	o.ComputeBoundingBox()
	s.objects = append(s.objects, o)
	if o.HasBoundingBox() {
		s.bounds = s.bounds.Merge(o.BoundingBox())
	}
	s.tree.Store(nil)
}

func (s *Scene) AddLight(l lights.Light) {
	s.Lights = append(s.Lights, l)
}

func (s *Scene) Objects() []*geom.Object {
	return s.objects
}

// Bounds is the union of the bounded objects' world boxes.
func (s *Scene) Bounds() geom.BoundingBox {
	return s.bounds
}

func (s *Scene) OctreeConfig() octree.Config {
	return s.cfg
}

// SetOctreeConfig replaces the subdivision settings and drops any tree built
// so far.
func (s *Scene) SetOctreeConfig(cfg octree.Config) {
	s.cfg = cfg
	s.tree.Store(nil)
}

// Intersect returns the closest hit along r. On a miss the returned record
// has T set to geom.MissDistance.
func (s *Scene) Intersect(r *geom.Ray) (geom.Isect, bool) {
	var (
		i  geom.Isect
		ok bool
	)
	if t := s.accel(); t != nil {
		i, ok = t.Intersect(r)
	} else {
		i, ok = s.bruteForce(r)
	}
	if !ok {
		i = geom.Miss()
	}

	if s.debug.Load() {
		s.debugMu.Lock()
		s.debugCache = append(s.debugCache, RayRecord{Ray: *r, Isect: i, Hit: ok})
		s.debugMu.Unlock()
	}
	return i, ok
}

func (s *Scene) bruteForce(r *geom.Ray) (geom.Isect, bool) {
	var best geom.Isect
	found := false
	for _, o := range s.objects {
		if i, ok := o.Intersect(r); ok && (!found || i.T < best.T) {
			best, found = i, true
		}
	}
	return best, found
}

// accel returns the acceleration tree, building its root on first use, or
// nil when subdivision is disabled.
func (s *Scene) accel() *octree.Tree {
	if s.cfg.MaxDepth <= 0 {
		return nil
	}
	if t := s.tree.Load(); t != nil {
		return t
	}

	s.treeMu.Lock()
	defer s.treeMu.Unlock()
	if t := s.tree.Load(); t != nil {
		return t
	}
	t := octree.New(s.bounds, s.objects, s.cfg)
	s.tree.Store(t)
	slog.Debug("octree created", "objects", len(s.objects), "max_depth", s.cfg.MaxDepth, "bounds", s.bounds)
	return t
}

// Freeze expands the whole octree so concurrent traversal needs no locking.
func (s *Scene) Freeze() {
	if t := s.accel(); t != nil && !t.Frozen() {
		t.Freeze()
		st := t.Stats()
		slog.Debug("octree frozen", "nodes", st.Nodes, "leaves", st.Leaves, "empty", st.EmptyLeaf)
	}
}

// Stats describes the octree as built so far. ok is false when subdivision
// is disabled.
func (s *Scene) Stats() (st octree.Stats, ok bool) {
	t := s.accel()
	if t == nil {
		return octree.Stats{}, false
	}
	return t.Stats(), true
}

// SetDebug turns recording of every Intersect call on or off.
func (s *Scene) SetDebug(on bool) {
	s.debug.Store(on)
}

func (s *Scene) Debug() bool {
	return s.debug.Load()
}

func (s *Scene) ClearDebugCache() {
	s.debugMu.Lock()
	s.debugCache = s.debugCache[:0]
	s.debugMu.Unlock()
}

// DebugCache returns a copy of the recorded rays in call order.
func (s *Scene) DebugCache() []RayRecord {
	s.debugMu.Lock()
	defer s.debugMu.Unlock()
	return append([]RayRecord(nil), s.debugCache...)
}

// Texture loads the texture at path, sharing it between all materials that
// name the same file.
func (s *Scene) Texture(path string) (*texture.Map, error) {
	return s.textures.Get(path)
}

// Close releases every texture loaded through the scene.
func (s *Scene) Close() {
	s.textures.Purge()
}
