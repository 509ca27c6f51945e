package motionplan

// TracingSmoother follows parent links from a search result without altering the nodes.
type TracingSmoother struct {
	path []Node3D
}

// NewTracingSmoother returns an empty smoother.
func NewTracingSmoother() *TracingSmoother {
	return &TracingSmoother{}
}

// TracePath replaces the stored path with copies of n and its ancestors, n first. A nil node
// leaves the path empty. Tracing stops at the first node already visited.
func (s *TracingSmoother) TracePath(n *Node3D) {
	s.path = s.path[:0]
	seen := map[*Node3D]struct{}{}
	for ; n != nil; n = n.Parent {
		if _, ok := seen[n]; ok {
			return
		}
		seen[n] = struct{}{}
		s.path = append(s.path, *n)
	}
}

// Path returns a copy of the traced nodes in goal-first order.
func (s *TracingSmoother) Path() []Node3D {
	out := make([]Node3D, len(s.path))
	copy(out, s.path)
	return out
}
