package ros

import (
	"bytes"
	"encoding/json"
	"math"
	"testing"
	"time"

	"go.viam.com/test"

	"go.viam.com/laneplanner/lane"
	"go.viam.com/laneplanner/occupancy"
	"go.viam.com/laneplanner/referenceframe"
	"go.viam.com/laneplanner/spatialmath"
)

var testTopics = Topics{
	Map:        "/map",
	Goal:       "/move_base_simple/goal",
	Start:      "/astar/initialpose",
	Transforms: "/tf",
}

const mapJSON = `{"header":{"seq":1,"stamp":{"secs":5,"nsecs":0},"frame_id":"map"},
"info":{"resolution":0.5,"width":2,"height":2,"origin":{"position":{"x":-1,"y":2,"z":0},
"orientation":{"x":0,"y":0,"z":0,"w":1}}},"data":[0,100,-1,0]}`

const goalJSON = `{"header":{"frame_id":"map"},"pose":{"position":{"x":3,"y":4,"z":0},
"orientation":{"x":0,"y":0,"z":0.7071067811865476,"w":0.7071067811865476}}}`

const startJSON = `{"header":{"frame_id":"map"},"pose":{"pose":{"position":{"x":1,"y":2,"z":0},
"orientation":{"x":0,"y":0,"z":1,"w":0}},"covariance":[]}}`

const tfJSON = `{"transforms":[{"header":{"frame_id":"/map","stamp":{"secs":7,"nsecs":0}},
"child_frame_id":"base_link","transform":{"translation":{"x":1,"y":1,"z":0},
"rotation":{"x":0,"y":0,"z":0,"w":1}}}]}`

func TestDecode(t *testing.T) {
	d := Decoder{Topics: testTopics}

	events, err := d.Decode("/map", []byte(mapJSON))
	test.That(t, err, test.ShouldBeNil)
	test.That(t, events, test.ShouldHaveLength, 1)
	grid := events[0].Payload.(*occupancy.Grid)
	test.That(t, grid.Width, test.ShouldEqual, 2)
	test.That(t, grid.CellSize, test.ShouldEqual, 0.5)
	test.That(t, grid.Origin.X, test.ShouldEqual, -1.0)
	test.That(t, grid.Data, test.ShouldResemble, []int8{0, 100, -1, 0})
	test.That(t, events[0].Stamp.Secs, test.ShouldEqual, int64(5))

	events, err = d.Decode(testTopics.Goal, []byte(goalJSON))
	test.That(t, err, test.ShouldBeNil)
	goal := events[0].Payload.(spatialmath.Pose)
	test.That(t, goal.X, test.ShouldEqual, 3.0)
	test.That(t, goal.Theta, test.ShouldAlmostEqual, math.Pi/2)

	events, err = d.Decode(testTopics.Start, []byte(startJSON))
	test.That(t, err, test.ShouldBeNil)
	start := events[0].Payload.(spatialmath.Pose)
	test.That(t, start.Y, test.ShouldEqual, 2.0)
	test.That(t, start.Theta, test.ShouldAlmostEqual, math.Pi)

	events, err = d.Decode(testTopics.Transforms, []byte(tfJSON))
	test.That(t, err, test.ShouldBeNil)
	tf := events[0].Payload.(referenceframe.Transform)
	test.That(t, tf.Parent, test.ShouldEqual, "map")
	test.That(t, tf.Child, test.ShouldEqual, "base_link")
	test.That(t, tf.Pose.X, test.ShouldEqual, 1.0)

	_, err = d.Decode("/unknown", []byte(`{}`))
	test.That(t, err, test.ShouldNotBeNil)
	_, err = d.Decode("/map", []byte(`{"info":{"width":3,"height":3,"resolution":1},"data":[0]}`))
	test.That(t, err, test.ShouldNotBeNil)
}

func TestDecodeLine(t *testing.T) {
	d := Decoder{Topics: testTopics}
	line, err := json.Marshal(Envelope{Topic: testTopics.Goal, Msg: json.RawMessage(goalJSON)})
	test.That(t, err, test.ShouldBeNil)
	events, err := d.DecodeLine(line)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, events[0].Topic, test.ShouldEqual, testTopics.Goal)

	_, err = d.DecodeLine([]byte("not json"))
	test.That(t, err, test.ShouldNotBeNil)
}

func TestDecodeBagLines(t *testing.T) {
	d := Decoder{Topics: testTopics}
	var buf bytes.Buffer
	buf.WriteString(`{"meta": {"secs":11,"nsecs":5}, "data":` + goalJSON + "}\n")
	buf.WriteString(`{"meta": {"secs":12,"nsecs":0}, "data":` + goalJSON + "}\n")
	events, err := d.decodeLines(testTopics.Goal, &buf)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, events, test.ShouldHaveLength, 2)
	test.That(t, events[0].Stamp, test.ShouldResemble, Time{Secs: 11, Nsecs: 5})
}

func TestBagKey(t *testing.T) {
	test.That(t, bagKey("/move_base_simple/goal"), test.ShouldEqual, "move_base_simple_goal")
	test.That(t, bagKey("Map"), test.ShouldEqual, "map")
}

func TestNewLaneArray(t *testing.T) {
	c := lane.NewBuilder(nil).Build([]spatialmath.Pose{spatialmath.NewPose(1, 1, 0), spatialmath.NewPose(0, 0, 0)})
	msg := NewLaneArray(c)
	test.That(t, msg.ID, test.ShouldEqual, c.ID.String())
	test.That(t, msg.Lanes, test.ShouldHaveLength, 1)
	wps := msg.Lanes[0].Waypoints
	test.That(t, wps, test.ShouldHaveLength, 2)
	test.That(t, wps[0].Pose.Pose.Position.Z, test.ShouldEqual, lane.DefaultZSentinel)
	test.That(t, wps[0].Pose.Pose.Planar().Theta, test.ShouldAlmostEqual, math.Pi/4)
	test.That(t, wps[0].Twist.Twist.Linear.X, test.ShouldAlmostEqual, lane.KmphToMps(10))
	test.That(t, msg.Lanes[0].Header.FrameID, test.ShouldEqual, "map")
}

func TestPoseConversions(t *testing.T) {
	p := spatialmath.NewPose(2, -3, 3*math.Pi/2)
	back := NewPose(p).Planar()
	test.That(t, spatialmath.PoseAlmostEqual(p, back, 1e-9), test.ShouldBeTrue)

	stamp := time.Unix(100, 42).UTC()
	ps := NewPoseStamped(p, "map", stamp)
	test.That(t, ps.Header.Stamp.Time(), test.ShouldEqual, stamp)

	g, err := occupancy.NewGrid(1, 1, 2, spatialmath.NewPose(3, 4, 0).Point(), []int8{0})
	test.That(t, err, test.ShouldBeNil)
	rt, err := NewOccupancyGrid(g, "map").Grid()
	test.That(t, err, test.ShouldBeNil)
	test.That(t, rt, test.ShouldResemble, g)
}
