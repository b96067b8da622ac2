// Package octree implements a lazily built 8-way spatial subdivision used to
// prune ray/object intersection tests.
//
// Nodes live in an arena and refer to each other by index. A node starts out
// unexpanded and is expanded the first time a ray reaches it: above the
// maximum depth it is split into eight octants, at the maximum depth it
// collects every object whose world bounds overlap its box. Expansion happens
// under a mutex until Freeze builds the whole tree, after which traversal is
// read-only and safe for concurrent use without locking.
package octree

import (
	"sync"
	"sync/atomic"

	"github.com/echoflaresat/raytrace/geom"
)

type Config struct {
	// MaxDepth is the depth of the leaves; the root is at depth 0.
	MaxDepth int

	// MinExtent stops subdivision early once a node's longest side is
	// shorter than this, so degenerate scenes do not split forever.
	MinExtent float64
}

func DefaultConfig() Config {
	return Config{
		MaxDepth:  5,
		MinExtent: 1e-6,
	}
}

type state uint8

const (
	unexpanded state = iota
	internal
	leaf
	emptyLeaf // visited, no overlapping objects
)

func (s state) String() string {
	switch s {
	case unexpanded:
		return "unexpanded"
	case internal:
		return "internal"
	case leaf:
		return "leaf"
	case emptyLeaf:
		return "empty"
	}
	return "unknown"
}

type node struct {
	box      geom.BoundingBox
	depth    int
	state    state
	children int32   // index of the first of 8 contiguous children
	objects  []int32 // indices into Tree.objects
}

// Tree is an octree over a fixed set of objects.
type Tree struct {
	cfg       Config
	objects   []*geom.Object
	unbounded []*geom.Object
	nodes     []node

	mu     sync.Mutex
	frozen atomic.Bool
}

// New creates a tree whose root covers bounds. Objects without a bounding
// box cannot be placed in the tree and are tested against every ray.
func New(bounds geom.BoundingBox, objects []*geom.Object, cfg Config) *Tree {
	t := &Tree{cfg: cfg}
	for _, o := range objects {
		if o.HasBoundingBox() {
			t.objects = append(t.objects, o)
		} else {
			t.unbounded = append(t.unbounded, o)
		}
	}
	t.nodes = append(t.nodes, node{box: bounds, children: -1})
	return t
}

func (t *Tree) Config() Config {
	return t.cfg
}

// Bounds returns the root box.
func (t *Tree) Bounds() geom.BoundingBox {
	return t.nodes[0].box
}

// Intersect returns the closest hit along r.
func (t *Tree) Intersect(r *geom.Ray) (geom.Isect, bool) {
	if !t.frozen.Load() {
		t.mu.Lock()
		defer t.mu.Unlock()
	}

	var best geom.Isect
	found := false
	t.traverse(0, 0, r, &best, &found)

	for _, o := range t.unbounded {
		if i, ok := o.Intersect(r); ok && (!found || i.T < best.T) {
			best, found = i, true
		}
	}
	return best, found
}

// traverse merges hits below node idx into best. The running minimum is
// shared across the whole traversal so children whose box starts beyond it
// are skipped.
func (t *Tree) traverse(idx int32, depth int, r *geom.Ray, best *geom.Isect, found *bool) {
	if depth > t.cfg.MaxDepth {
		return
	}

	hit, tmin, _ := t.nodes[idx].box.Intersect(*r)
	if !hit || (*found && tmin > best.T) {
		return
	}

	switch t.nodes[idx].state {
	case unexpanded:
		t.expand(idx)
		t.traverse(idx, depth, r, best, found)

	case internal:
		first := t.nodes[idx].children
		for c := int32(0); c < 8; c++ {
			t.traverse(first+c, depth+1, r, best, found)
		}

	case leaf:
		for _, oi := range t.nodes[idx].objects {
			if i, ok := t.objects[oi].Intersect(r); ok && (!*found || i.T < best.T) {
				*best, *found = i, true
			}
		}

	case emptyLeaf:
	}
}

// expand applies the expansion rule to node idx. It is a no-op for nodes
// that were already expanded.
func (t *Tree) expand(idx int32) {
	n := t.nodes[idx]
	if n.state != unexpanded {
		return
	}

	if n.depth < t.cfg.MaxDepth && n.box.MaxExtent() >= t.cfg.MinExtent {
		first := int32(len(t.nodes))
		for i := 0; i < 8; i++ {
			t.nodes = append(t.nodes, node{
				box:      n.box.Octant(i),
				depth:    n.depth + 1,
				children: -1,
			})
		}
		t.nodes[idx].children = first
		t.nodes[idx].state = internal
		return
	}

	var objs []int32
	for i, o := range t.objects {
		if o.BoundingBox().Intersects(n.box) {
			objs = append(objs, int32(i))
		}
	}
	if len(objs) == 0 {
		t.nodes[idx].state = emptyLeaf
		return
	}
	t.nodes[idx].objects = objs
	t.nodes[idx].state = leaf
}

// Freeze expands every node and switches the tree to lock-free read-only
// traversal. It must complete before concurrent Intersect calls begin.
func (t *Tree) Freeze() {
	if t.frozen.Load() {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()

	queue := []int32{0}
	for len(queue) > 0 {
		idx := queue[0]
		queue = queue[1:]

		t.expand(idx)
		if t.nodes[idx].state == internal {
			first := t.nodes[idx].children
			for c := int32(0); c < 8; c++ {
				queue = append(queue, first+c)
			}
		}
	}
	t.frozen.Store(true)
}

func (t *Tree) Frozen() bool {
	return t.frozen.Load()
}
