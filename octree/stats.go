package octree

// Stats summarizes the current shape of a tree.
type Stats struct {
	Nodes      int
	Unexpanded int
	Internal   int
	Leaves     int
	EmptyLeaf  int
	MaxDepth   int // deepest expanded node
	ObjectRefs int // object references summed over leaves
	Objects    int
	Unbounded  int
}

// ObjectsPerLeaf returns the mean number of objects in non-empty leaves.
func (s Stats) ObjectsPerLeaf() float64 {
	if s.Leaves == 0 {
		return 0
	}
	return float64(s.ObjectRefs) / float64(s.Leaves)
}

func (t *Tree) Stats() Stats {
	if !t.frozen.Load() {
		t.mu.Lock()
		defer t.mu.Unlock()
	}

	s := Stats{
		Nodes:     len(t.nodes),
		Objects:   len(t.objects),
		Unbounded: len(t.unbounded),
	}
	for _, n := range t.nodes {
		switch n.state {
		case unexpanded:
			s.Unexpanded++
			continue
		case internal:
			s.Internal++
		case leaf:
			s.Leaves++
			s.ObjectRefs += len(n.objects)
		case emptyLeaf:
			s.EmptyLeaf++
		}
		if n.depth > s.MaxDepth {
			s.MaxDepth = n.depth
		}
	}
	return s
}
