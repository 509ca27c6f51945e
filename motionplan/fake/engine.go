// Package fake provides a scripted motionplan.SearchEngine for tests.
package fake

import (
	"context"
	"math"
	"sync"

	"go.viam.com/laneplanner/motionplan"
	"go.viam.com/laneplanner/spatialmath"
)

// Engine returns a fixed chain of nodes. With no Waypoints it connects the request's start
// straight to its goal.
type Engine struct {
	mu sync.Mutex

	// Waypoints are grid-frame poses visited between start and goal.
	Waypoints []spatialmath.Pose
	// Err, when set, is returned instead of a result.
	Err error
	// PanicWith, when set, is raised from Search.
	PanicWith interface{}
	// NoSolution makes Search report motionplan.ErrNoSolution.
	NoSolution bool

	calls    int
	requests []motionplan.SearchRequest
}

var _ motionplan.SearchEngine = (*Engine)(nil)

// Search implements motionplan.SearchEngine.
func (e *Engine) Search(ctx context.Context, req *motionplan.SearchRequest) (*motionplan.Node3D, error) {
	e.mu.Lock()
	e.calls++
	e.requests = append(e.requests, *req)
	e.mu.Unlock()

	if e.PanicWith != nil {
		panic(e.PanicWith)
	}
	if e.Err != nil {
		return nil, e.Err
	}
	if e.NoSolution {
		return nil, motionplan.ErrNoSolution
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	poses := append([]spatialmath.Pose{req.Start.Pose()}, e.Waypoints...)
	poses = append(poses, req.Goal.Pose())
	var prev *motionplan.Node3D
	for _, p := range poses {
		n := &motionplan.Node3D{}
		*n = motionplan.NodeFromPose(p)
		n.Parent = prev
		if prev != nil {
			n.Cost = prev.Cost + math.Hypot(p.X-prev.X, p.Y-prev.Y)
		}
		if req.Visualizer != nil {
			req.Visualizer.PublishNode3D(n)
		}
		prev = n
	}
	return prev, nil
}

// Calls returns how many searches have run.
func (e *Engine) Calls() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.calls
}

// Requests returns copies of every request seen, oldest first.
func (e *Engine) Requests() []motionplan.SearchRequest {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]motionplan.SearchRequest, len(e.requests))
	copy(out, e.requests)
	return out
}
