// Package planner runs the planning session: it validates start and goal poses against the
// current map, ingests maps, decides when to plan, and turns search results into lanes.
package planner

import (
	"go.viam.com/laneplanner/occupancy"
	"go.viam.com/laneplanner/spatialmath"
)

// State is where the session stands with respect to planning.
type State int

// The set of session states.
const (
	StateAwaitingInputs State = iota
	StateReady
	StatePlanning
)

func (s State) String() string {
	switch s {
	case StateAwaitingInputs:
		return "awaiting_inputs"
	case StateReady:
		return "ready"
	case StatePlanning:
		return "planning"
	default:
		return "unknown"
	}
}

// Session is the cached planning input. Its methods return updated copies.
type Session struct {
	Grid       *occupancy.Grid
	Start      spatialmath.Pose
	Goal       spatialmath.Pose
	ValidStart bool
	ValidGoal  bool
}

// ValidatePose reports whether a world pose lies on the grid, edges included. Without a grid
// nothing is valid.
func ValidatePose(p spatialmath.Pose, g *occupancy.Grid) bool {
	return g.Contains(p.Point())
}

// WithMap replaces the grid. Cached poses keep their validity.
func (s Session) WithMap(g *occupancy.Grid) Session {
	s.Grid = g
	return s
}

// WithStart validates p against the current grid and caches it when valid. The second result
// reports acceptance.
func (s Session) WithStart(p spatialmath.Pose) (Session, bool) {
	if !ValidatePose(p, s.Grid) {
		return s, false
	}
	s.Start, s.ValidStart = p, true
	return s, true
}

// WithDerivedStart records a start taken from the vehicle transform. Unlike WithStart, an
// out of bounds pose clears the start's validity.
func (s Session) WithDerivedStart(p spatialmath.Pose) Session {
	s.Start, s.ValidStart = p, ValidatePose(p, s.Grid)
	return s
}

// WithGoal validates p against the current grid and caches it when valid.
func (s Session) WithGoal(p spatialmath.Pose) (Session, bool) {
	if !ValidatePose(p, s.Grid) {
		return s, false
	}
	s.Goal, s.ValidGoal = p, true
	return s, true
}

// Ready reports whether a plan can be attempted.
func (s Session) Ready() bool {
	return s.ValidStart && s.ValidGoal && s.Grid != nil
}

// State returns StateReady or StateAwaitingInputs.
func (s Session) State() State {
	if s.Ready() {
		return StateReady
	}
	return StateAwaitingInputs
}
