// Package motionplan defines the contracts between the lane planner and the search, smoothing,
// collision and map collaborators, along with the node types they exchange.
package motionplan

import (
	"context"

	"go.viam.com/laneplanner/logging"
	"go.viam.com/laneplanner/occupancy"
)

// ConfigurationSpace answers feasibility questions about grid-frame poses.
type ConfigurationSpace interface {
	// UpdateGrid replaces the obstacle grid. The space takes ownership of grid.
	UpdateGrid(grid *occupancy.BinaryGrid)
	// IsFree reports whether a single cell is free.
	IsFree(x, y int) bool
	// IsTraversable reports whether the vehicle fits at the node's pose.
	IsTraversable(n *Node3D) bool
}

// VoronoiMap is the clearance structure built from each new obstacle grid.
type VoronoiMap interface {
	InitializeMap(width, height int, grid *occupancy.BinaryGrid)
	Update()
	Visualize()
}

// Visualizer receives search progress.
type Visualizer interface {
	Clear()
	PublishNode3D(n *Node3D)
}

// PathExporter receives the world-frame result of a plan cycle.
type PathExporter interface {
	Clear()
	UpdatePath(nodes []Node3D)
	PublishPath()
	PublishPathNodes()
	PublishPathVehicles()
}

// SearchRequest bundles everything a single search may use. Start and Goal are in grid cells.
// The buffers belong to the caller and are only valid for the duration of Search.
type SearchRequest struct {
	Start      Node3D
	Goal       Node3D
	Buffers    *NodeBuffers
	Width      int
	Height     int
	Space      ConfigurationSpace
	Lookups    *LookupTables
	Visualizer Visualizer
	Logger     logging.Logger
}

// SearchEngine finds a chain of nodes from the request's start to its goal. It returns the
// node at the goal end of the chain; following Parent links leads back to the start. When no
// chain exists it returns ErrNoSolution, never a nil node with a nil error.
type SearchEngine interface {
	Search(ctx context.Context, req *SearchRequest) (*Node3D, error)
}

// PathSmoother walks a search result and exposes the resulting node sequence in goal-first
// order.
type PathSmoother interface {
	TracePath(n *Node3D)
	Path() []Node3D
}

// LookupTableBuilder precomputes tables consulted during search and collision checks.
type LookupTableBuilder interface {
	BuildDubinsLookup() DubinsTable
	BuildCollisionLookup() CollisionTable
}
