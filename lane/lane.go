// Package lane defines the waypoint lanes handed to the trajectory follower and builds them
// from planned pose sequences.
package lane

import (
	"math"
	"time"

	"github.com/golang/geo/r3"
	"github.com/google/uuid"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/num/quat"

	"go.viam.com/laneplanner/spatialmath"
)

// State holds the behavior flags carried by every waypoint. The planner leaves them neutral.
type State struct {
	Steering int `json:"steering_state" bson:"steering_state"`
	Accel    int `json:"accel_state" bson:"accel_state"`
	Stop     int `json:"stop_state" bson:"stop_state"`
	Event    int `json:"event_state" bson:"event_state"`
}

// Waypoint is one drive target. Position.Z carries the out-of-plane marker rather than a height.
type Waypoint struct {
	Position r3.Vector `json:"position" bson:"position"`
	Yaw      float64   `json:"yaw" bson:"yaw"`
	// Speed is the forward speed in meters per second.
	Speed      float64 `json:"speed" bson:"speed"`
	ChangeFlag int     `json:"change_flag" bson:"change_flag"`
	State      State   `json:"state" bson:"state"`
}

// Orientation returns the waypoint heading as a rotation about z.
func (w Waypoint) Orientation() quat.Number {
	return spatialmath.QuaternionFromYaw(w.Yaw)
}

// Lane is an ordered sequence of waypoints from the start of the path to its goal.
type Lane struct {
	FrameID   string     `json:"frame_id" bson:"frame_id"`
	Stamp     time.Time  `json:"stamp" bson:"stamp"`
	Waypoints []Waypoint `json:"waypoints" bson:"waypoints"`
}

// Length returns the planar length of the lane.
func (l Lane) Length() float64 {
	if len(l.Waypoints) < 2 {
		return 0
	}
	segments := make([]float64, len(l.Waypoints)-1)
	for i := range segments {
		a, b := l.Waypoints[i].Position, l.Waypoints[i+1].Position
		segments[i] = math.Hypot(b.X-a.X, b.Y-a.Y)
	}
	return floats.Sum(segments)
}

// Empty reports whether the lane has no waypoints.
func (l Lane) Empty() bool {
	return len(l.Waypoints) == 0
}

// Collection is the published unit: a set of lanes, one per plan in this planner.
type Collection struct {
	ID    uuid.UUID `json:"id" bson:"_id"`
	Lanes []Lane    `json:"lanes" bson:"lanes"`
}

// Empty reports whether the collection carries no waypoints at all.
func (c *Collection) Empty() bool {
	if c == nil {
		return true
	}
	for _, l := range c.Lanes {
		if !l.Empty() {
			return false
		}
	}
	return true
}

// KmphToMps converts kilometers per hour to meters per second.
func KmphToMps(kmph float64) float64 {
	return kmph * 1000 / 3600
}
