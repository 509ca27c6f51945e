package planner

import (
	"go.viam.com/laneplanner/motionplan"
	"go.viam.com/laneplanner/occupancy"
)

// PathSynthesizer turns a search result into world-frame nodes in the order the smoother
// reports them, goal first.
type PathSynthesizer struct {
	NewSmoother func() motionplan.PathSmoother
}

// Trace walks the chain ending at end and converts every node into world coordinates on grid.
// The returned nodes carry no parent links. A nil end yields no nodes.
func (s PathSynthesizer) Trace(end *motionplan.Node3D, grid *occupancy.Grid) []motionplan.Node3D {
	if end == nil {
		return nil
	}
	newSmoother := s.NewSmoother
	if newSmoother == nil {
		newSmoother = func() motionplan.PathSmoother { return motionplan.NewTracingSmoother() }
	}
	smoother := newSmoother()
	smoother.TracePath(end)

	nodes := smoother.Path()
	out := make([]motionplan.Node3D, len(nodes))
	for i := range nodes {
		world := grid.GridToWorld(nodes[i].Pose())
		out[i] = motionplan.NewNode3D(world.X, world.Y, world.Theta, nodes[i].Cost, nil)
	}
	return out
}
