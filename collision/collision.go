// Package collision implements the configuration space used by the search: the current
// obstacle grid checked against the vehicle footprint.
package collision

import (
	"sync"

	"go.viam.com/laneplanner/motionplan"
	"go.viam.com/laneplanner/occupancy"
)

// Space is a motionplan.ConfigurationSpace backed by a binary obstacle grid.
type Space struct {
	mu      sync.RWMutex
	grid    *occupancy.BinaryGrid
	lookups *motionplan.LookupTables
}

var _ motionplan.ConfigurationSpace = (*Space)(nil)

// NewSpace returns a space with no grid. Until UpdateGrid is called nothing is free. When
// lookups is nil only the reference cell is checked.
func NewSpace(lookups *motionplan.LookupTables) *Space {
	return &Space{lookups: lookups}
}

// UpdateGrid replaces the obstacle grid.
func (s *Space) UpdateGrid(grid *occupancy.BinaryGrid) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.grid = grid
}

// IsFree reports whether a cell is on the grid and unoccupied.
func (s *Space) IsFree(x, y int) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.grid != nil && !s.grid.Occupied(x, y)
}

// IsTraversable reports whether every cell of the footprint at the node's heading is free.
func (s *Space) IsTraversable(n *motionplan.Node3D) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.grid == nil || n == nil {
		return false
	}
	width, height := s.grid.Size()
	if n.X < 0 || n.Y < 0 || n.X > float64(width) || n.Y > float64(height) {
		return false
	}
	x, y := n.Cell(width, height)

	table := s.lookups.Collision()
	bin := 0
	if table.Headings > 0 {
		bin = n.HeadingBin(table.Headings)
	}
	for _, offset := range table.Footprint(bin) {
		if s.grid.Occupied(x+offset.X, y+offset.Y) {
			return false
		}
	}
	return true
}
