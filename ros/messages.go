package ros

import (
	"time"

	"github.com/golang/geo/r2"
	"gonum.org/v1/gonum/num/quat"

	"go.viam.com/laneplanner/lane"
	"go.viam.com/laneplanner/occupancy"
	"go.viam.com/laneplanner/referenceframe"
	"go.viam.com/laneplanner/spatialmath"
)

// Time is a ROS timestamp.
type Time struct {
	Secs  int64 `json:"secs"`
	Nsecs int64 `json:"nsecs"`
}

// NewTime converts a time.
func NewTime(t time.Time) Time {
	return Time{Secs: t.Unix(), Nsecs: int64(t.Nanosecond())}
}

// Time converts to a time.Time in UTC.
func (t Time) Time() time.Time {
	return time.Unix(t.Secs, t.Nsecs).UTC()
}

// Header is std_msgs/Header.
type Header struct {
	Seq     uint32 `json:"seq"`
	Stamp   Time   `json:"stamp"`
	FrameID string `json:"frame_id"`
}

// Vector3 is geometry_msgs/Vector3 and geometry_msgs/Point.
type Vector3 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Quaternion is geometry_msgs/Quaternion.
type Quaternion struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
	W float64 `json:"w"`
}

// NewQuaternion converts a rotation.
func NewQuaternion(q quat.Number) Quaternion {
	return Quaternion{X: q.Imag, Y: q.Jmag, Z: q.Kmag, W: q.Real}
}

// Number converts to a gonum quaternion.
func (q Quaternion) Number() quat.Number {
	return quat.Number{Real: q.W, Imag: q.X, Jmag: q.Y, Kmag: q.Z}
}

// Pose is geometry_msgs/Pose.
type Pose struct {
	Position    Vector3    `json:"position"`
	Orientation Quaternion `json:"orientation"`
}

// NewPose converts a planar pose.
func NewPose(p spatialmath.Pose) Pose {
	return Pose{
		Position:    Vector3{X: p.X, Y: p.Y},
		Orientation: NewQuaternion(spatialmath.QuaternionFromYaw(p.Theta)),
	}
}

// Planar drops z and keeps the yaw.
func (p Pose) Planar() spatialmath.Pose {
	return spatialmath.NewPose(p.Position.X, p.Position.Y, spatialmath.YawFromQuaternion(p.Orientation.Number()))
}

// PoseStamped is geometry_msgs/PoseStamped.
type PoseStamped struct {
	Header Header `json:"header"`
	Pose   Pose   `json:"pose"`
}

// PoseWithCovarianceStamped is geometry_msgs/PoseWithCovarianceStamped.
type PoseWithCovarianceStamped struct {
	Header Header `json:"header"`
	Pose   struct {
		Pose       Pose        `json:"pose"`
		Covariance [36]float64 `json:"covariance"`
	} `json:"pose"`
}

// MapMetaData is nav_msgs/MapMetaData.
type MapMetaData struct {
	MapLoadTime Time    `json:"map_load_time"`
	Resolution  float64 `json:"resolution"`
	Width       int     `json:"width"`
	Height      int     `json:"height"`
	Origin      Pose    `json:"origin"`
}

// OccupancyGrid is nav_msgs/OccupancyGrid.
type OccupancyGrid struct {
	Header Header      `json:"header"`
	Info   MapMetaData `json:"info"`
	Data   []int8      `json:"data"`
}

// Grid converts the message. The origin's rotation is ignored.
func (m OccupancyGrid) Grid() (*occupancy.Grid, error) {
	return occupancy.NewGrid(
		m.Info.Width,
		m.Info.Height,
		m.Info.Resolution,
		r2.Point{X: m.Info.Origin.Position.X, Y: m.Info.Origin.Position.Y},
		m.Data,
	)
}

// NewOccupancyGrid converts a grid.
func NewOccupancyGrid(g *occupancy.Grid, frameID string) OccupancyGrid {
	return OccupancyGrid{
		Header: Header{FrameID: frameID},
		Info: MapMetaData{
			Resolution: g.CellSize,
			Width:      g.Width,
			Height:     g.Height,
			Origin:     NewPose(spatialmath.NewPoseFromPoint(g.Origin, 0)),
		},
		Data: g.Data,
	}
}

// Transform is geometry_msgs/Transform.
type Transform struct {
	Translation Vector3    `json:"translation"`
	Rotation    Quaternion `json:"rotation"`
}

// TransformStamped is geometry_msgs/TransformStamped.
type TransformStamped struct {
	Header       Header    `json:"header"`
	ChildFrameID string    `json:"child_frame_id"`
	Transform    Transform `json:"transform"`
}

// TFMessage is tf2_msgs/TFMessage.
type TFMessage struct {
	Transforms []TransformStamped `json:"transforms"`
}

// Planar converts every transform, stripping leading slashes from frame names.
func (m TFMessage) Planar() []referenceframe.Transform {
	out := make([]referenceframe.Transform, 0, len(m.Transforms))
	for _, tf := range m.Transforms {
		out = append(out, referenceframe.Transform{
			Parent: trimFrame(tf.Header.FrameID),
			Child:  trimFrame(tf.ChildFrameID),
			Pose: spatialmath.NewPose(
				tf.Transform.Translation.X,
				tf.Transform.Translation.Y,
				spatialmath.YawFromQuaternion(tf.Transform.Rotation.Number()),
			),
		})
	}
	return out
}

func trimFrame(name string) string {
	for len(name) > 0 && name[0] == '/' {
		name = name[1:]
	}
	return name
}

// WaypointState is autoware_msgs/WaypointState, reduced to the flags the planner sets.
type WaypointState struct {
	SteeringState int `json:"steering_state"`
	AccelState    int `json:"accel_state"`
	StopState     int `json:"stop_state"`
	EventState    int `json:"event_state"`
}

// Waypoint is autoware_msgs/Waypoint, reduced to the fields the planner sets.
type Waypoint struct {
	Pose  PoseStamped `json:"pose"`
	Twist struct {
		Twist struct {
			Linear  Vector3 `json:"linear"`
			Angular Vector3 `json:"angular"`
		} `json:"twist"`
	} `json:"twist"`
	ChangeFlag int           `json:"change_flag"`
	WPState    WaypointState `json:"wpstate"`
}

// Lane is autoware_msgs/Lane.
type Lane struct {
	Header    Header     `json:"header"`
	Waypoints []Waypoint `json:"waypoints"`
}

// LaneArray is autoware_msgs/LaneArray.
type LaneArray struct {
	ID    string `json:"id"`
	Lanes []Lane `json:"lanes"`
}

// NewLaneArray converts a lane collection.
func NewLaneArray(c *lane.Collection) LaneArray {
	out := LaneArray{ID: c.ID.String(), Lanes: make([]Lane, 0, len(c.Lanes))}
	for _, l := range c.Lanes {
		msg := Lane{
			Header:    Header{FrameID: l.FrameID, Stamp: NewTime(l.Stamp)},
			Waypoints: make([]Waypoint, 0, len(l.Waypoints)),
		}
		for _, wp := range l.Waypoints {
			var w Waypoint
			w.Pose.Header.FrameID = l.FrameID
			w.Pose.Pose.Position = Vector3{X: wp.Position.X, Y: wp.Position.Y, Z: wp.Position.Z}
			w.Pose.Pose.Orientation = NewQuaternion(wp.Orientation())
			w.Twist.Twist.Linear.X = wp.Speed
			w.ChangeFlag = wp.ChangeFlag
			w.WPState = WaypointState{
				SteeringState: wp.State.Steering,
				AccelState:    wp.State.Accel,
				StopState:     wp.State.Stop,
				EventState:    wp.State.Event,
			}
			msg.Waypoints = append(msg.Waypoints, w)
		}
		out.Lanes = append(out.Lanes, msg)
	}
	return out
}

// NewPoseStamped converts a planar pose reported in frameID at stamp.
func NewPoseStamped(p spatialmath.Pose, frameID string, stamp time.Time) PoseStamped {
	return PoseStamped{Header: Header{FrameID: frameID, Stamp: NewTime(stamp)}, Pose: NewPose(p)}
}
