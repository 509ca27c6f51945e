// Package gridsearch is a motionplan.SearchEngine that runs A* over the free cells of the
// obstacle grid and lifts the cell path into a chain of headed nodes.
package gridsearch

import (
	"context"
	"math"

	"go.opencensus.io/trace"
	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/path"
	"gonum.org/v1/gonum/graph/simple"

	"go.viam.com/laneplanner/logging"
	"go.viam.com/laneplanner/motionplan"
	"go.viam.com/laneplanner/spatialmath"
)

// Engine searches an 8-connected cell graph. The zero value is ready to use.
type Engine struct {
	// CheckFootprint rejects paths whose intermediate nodes fail the vehicle footprint check.
	CheckFootprint bool
}

var _ motionplan.SearchEngine = (*Engine)(nil)

// New returns an engine.
func New() *Engine {
	return &Engine{}
}

var neighbors = [...][2]int{{1, 0}, {0, 1}, {1, 1}, {-1, 1}}

// Search implements motionplan.SearchEngine.
func (e *Engine) Search(ctx context.Context, req *motionplan.SearchRequest) (*motionplan.Node3D, error) {
	ctx, span := trace.StartSpan(ctx, "gridsearch::Search")
	defer span.End()
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	logger := req.Logger
	if logger == nil {
		logger = logging.NewBlankLogger("gridsearch")
	}
	width, height := req.Width, req.Height
	sx, sy := req.Start.Cell(width, height)
	gx, gy := req.Goal.Cell(width, height)
	if !req.Space.IsFree(sx, sy) || !req.Space.IsFree(gx, gy) {
		return nil, motionplan.ErrNoSolution
	}

	id := func(x, y int) int64 { return int64(y*width + x) }
	g := simple.NewWeightedUndirectedGraph(0, math.Inf(1))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			if !req.Space.IsFree(x, y) {
				continue
			}
			if g.Node(id(x, y)) == nil {
				g.AddNode(simple.Node(id(x, y)))
			}
			for _, d := range neighbors {
				nx, ny := x+d[0], y+d[1]
				if nx < 0 || ny < 0 || nx >= width || ny >= height || !req.Space.IsFree(nx, ny) {
					continue
				}
				if d[0] != 0 && d[1] != 0 && (!req.Space.IsFree(x+d[0], y) || !req.Space.IsFree(x, y+d[1])) {
					continue
				}
				w := 1.0
				if d[0] != 0 && d[1] != 0 {
					w = math.Sqrt2
				}
				g.SetWeightedEdge(g.NewWeightedEdge(simple.Node(id(x, y)), simple.Node(id(nx, ny)), w))
			}
		}
		if y%64 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
	}

	heuristic := func(a, b graph.Node) float64 {
		ax, ay := int(a.ID())%width, int(a.ID())/width
		bx, by := int(b.ID())%width, int(b.ID())/width
		return math.Hypot(float64(ax-bx), float64(ay-by))
	}
	start, goal := g.Node(id(sx, sy)), g.Node(id(gx, gy))
	shortest, expanded := path.AStar(start, goal, g, heuristic)
	cells, _ := shortest.To(goal.ID())
	logger.Debugw("grid search finished", "expanded", expanded, "cells", len(cells))
	if len(cells) == 0 {
		return nil, motionplan.ErrNoSolution
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	fill2D(req.Buffers, cells, width)
	return e.lift(req, cells, width)
}

func fill2D(bufs *motionplan.NodeBuffers, cells []graph.Node, width int) {
	if bufs == nil {
		return
	}
	var prev *motionplan.Node2D
	for _, c := range cells {
		x, y := int(c.ID())%width, int(c.ID())/width
		n := bufs.Node2DAt(x, y)
		if n == nil {
			continue
		}
		n.X, n.Y, n.Visited, n.Parent = x, y, true, prev
		if prev != nil {
			n.Cost = prev.Cost + math.Hypot(float64(x-prev.X), float64(y-prev.Y))
		}
		prev = n
	}
}

// lift turns the cell path into headed nodes: the exact start, the centers of the cells in
// between, and the exact goal.
func (e *Engine) lift(req *motionplan.SearchRequest, cells []graph.Node, width int) (*motionplan.Node3D, error) {
	pts := make([]spatialmath.Pose, 0, len(cells)+1)
	pts = append(pts, req.Start.Pose())
	for i := 1; i < len(cells)-1; i++ {
		x, y := int(cells[i].ID())%width, int(cells[i].ID())/width
		pts = append(pts, spatialmath.NewPose(float64(x)+0.5, float64(y)+0.5, 0))
	}
	pts = append(pts, req.Goal.Pose())
	for i := 1; i < len(pts)-1; i++ {
		pts[i].Theta = spatialmath.Bearing(pts[i].Point(), pts[i+1].Point())
	}

	headings := 1
	if req.Buffers != nil {
		headings = req.Buffers.Headings
	}
	dubins := req.Lookups.Dubins()

	var prev *motionplan.Node3D
	for i, p := range pts {
		node := motionplan.NodeFromPose(p)
		if prev != nil {
			node.Cost = prev.Cost + math.Hypot(p.X-prev.X, p.Y-prev.Y) +
				dubins.TurnCost(prev.HeadingBin(headings), node.HeadingBin(headings))
		}
		node.Parent = prev
		node.Closed = true
		if e.CheckFootprint && i > 0 && i < len(pts)-1 && !req.Space.IsTraversable(&node) {
			return nil, motionplan.ErrNoSolution
		}

		slot := nodeSlot(req, &node, headings)
		*slot = node
		if req.Visualizer != nil {
			req.Visualizer.PublishNode3D(slot)
		}
		prev = slot
	}
	return prev, nil
}

func nodeSlot(req *motionplan.SearchRequest, n *motionplan.Node3D, headings int) *motionplan.Node3D {
	if req.Buffers != nil {
		x, y := n.Cell(req.Width, req.Height)
		if slot := req.Buffers.Node3DAt(x, y, n.HeadingBin(headings)); slot != nil && !slot.Closed {
			return slot
		}
	}
	return &motionplan.Node3D{}
}
