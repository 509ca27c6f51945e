package motionplan

import (
	"math"

	"go.viam.com/laneplanner/spatialmath"
)

// Node3D is a grid-frame pose in the search space. Cost is the accumulated cost from the start
// of the chain.
type Node3D struct {
	X      float64
	Y      float64
	Theta  float64
	Cost   float64
	Parent *Node3D

	Closed bool
}

// NewNode3D returns a node with its heading normalized.
func NewNode3D(x, y, theta, cost float64, parent *Node3D) Node3D {
	return Node3D{X: x, Y: y, Theta: spatialmath.NormalizeHeading(theta), Cost: cost, Parent: parent}
}

// NodeFromPose converts a pose into a parentless node.
func NodeFromPose(p spatialmath.Pose) Node3D {
	return NewNode3D(p.X, p.Y, p.Theta, 0, nil)
}

// Pose returns the node's pose.
func (n *Node3D) Pose() spatialmath.Pose {
	return spatialmath.NewPose(n.X, n.Y, n.Theta)
}

// Cell returns the grid cell holding the node, clamped to a width x height grid.
func (n *Node3D) Cell(width, height int) (int, int) {
	return clampCell(n.X, width), clampCell(n.Y, height)
}

// HeadingBin returns the heading slot of the node when the circle is split into headings
// equal slots.
func (n *Node3D) HeadingBin(headings int) int {
	return HeadingBin(n.Theta, headings)
}

// HeadingBin maps a heading onto one of headings equal slots.
func HeadingBin(theta float64, headings int) int {
	if headings <= 1 {
		return 0
	}
	width := 2 * math.Pi / float64(headings)
	return int(math.Floor(spatialmath.NormalizeHeading(theta)/width)) % headings
}

func clampCell(v float64, size int) int {
	c := int(math.Floor(v))
	if c < 0 {
		return 0
	}
	if c >= size {
		return size - 1
	}
	return c
}

// Node2D is a cell of the planar search.
type Node2D struct {
	X       int
	Y       int
	Cost    float64
	Parent  *Node2D
	Visited bool
}
