package lane

import (
	"math"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/samber/lo"
	"go.viam.com/test"

	"go.viam.com/laneplanner/spatialmath"
)

func TestBuildTwoPoses(t *testing.T) {
	clk := clock.NewMock()
	clk.Add(time.Hour)
	b := NewBuilder(clk)

	// goal first, as traced
	c := b.Build([]spatialmath.Pose{
		spatialmath.NewPose(8, 8, math.Pi/2),
		spatialmath.NewPose(1, 1, 0),
	})
	test.That(t, c.Lanes, test.ShouldHaveLength, 1)
	l := c.Lanes[0]
	test.That(t, l.FrameID, test.ShouldEqual, "map")
	test.That(t, l.Stamp, test.ShouldEqual, clk.Now())
	test.That(t, l.Waypoints, test.ShouldHaveLength, 2)

	test.That(t, l.Waypoints[0].Position.X, test.ShouldEqual, 1.0)
	test.That(t, l.Waypoints[0].Position.Y, test.ShouldEqual, 1.0)
	test.That(t, l.Waypoints[1].Position.X, test.ShouldEqual, 8.0)
	test.That(t, l.Waypoints[0].Yaw, test.ShouldAlmostEqual, math.Pi/4)
	test.That(t, l.Waypoints[1].Yaw, test.ShouldAlmostEqual, math.Pi/4)

	for _, w := range l.Waypoints {
		test.That(t, w.Position.Z, test.ShouldEqual, DefaultZSentinel)
		test.That(t, w.Speed, test.ShouldAlmostEqual, 10/3.6)
		test.That(t, w.State, test.ShouldResemble, State{})
	}
	test.That(t, l.Length(), test.ShouldAlmostEqual, 7*math.Sqrt2)
	test.That(t, c.Empty(), test.ShouldBeFalse)
}

func TestBuildOrderingAndHeadings(t *testing.T) {
	traced := []spatialmath.Pose{
		spatialmath.NewPose(3, 3, 0),
		spatialmath.NewPose(3, 1, 0),
		spatialmath.NewPose(1, 1, 0),
		spatialmath.NewPose(0, 0, 0),
	}
	l := NewBuilder(clock.NewMock()).Build(traced).Lanes[0]
	test.That(t, l.Waypoints, test.ShouldHaveLength, len(traced))

	for i, w := range l.Waypoints {
		src := traced[len(traced)-1-i]
		test.That(t, w.Position.X, test.ShouldEqual, src.X)
		test.That(t, w.Position.Y, test.ShouldEqual, src.Y)
	}
	n := len(l.Waypoints)
	for i := 0; i < n-1; i++ {
		a, b := l.Waypoints[i].Position, l.Waypoints[i+1].Position
		test.That(t, l.Waypoints[i].Yaw, test.ShouldAlmostEqual, math.Atan2(b.Y-a.Y, b.X-a.X))
	}
	test.That(t, l.Waypoints[n-1].Yaw, test.ShouldEqual, l.Waypoints[n-2].Yaw)
	test.That(t, l.Waypoints[n-1].Yaw, test.ShouldAlmostEqual, math.Pi/2)
}

func TestBuildDoesNotMutateInput(t *testing.T) {
	traced := []spatialmath.Pose{spatialmath.NewPose(2, 0, 0), spatialmath.NewPose(0, 0, 0)}
	NewBuilder(nil).Build(traced)
	test.That(t, traced[0].X, test.ShouldEqual, 2.0)
}

func TestBuildEdgeCases(t *testing.T) {
	b := NewBuilder(clock.NewMock())

	empty := b.Build(nil)
	test.That(t, empty.Lanes, test.ShouldHaveLength, 1)
	test.That(t, empty.Lanes[0].Waypoints, test.ShouldBeEmpty)
	test.That(t, empty.Lanes[0].Length(), test.ShouldEqual, 0.0)
	test.That(t, empty.Empty(), test.ShouldBeTrue)

	single := b.Build([]spatialmath.Pose{spatialmath.NewPose(4, 5, 1.25)})
	test.That(t, single.Lanes[0].Waypoints, test.ShouldHaveLength, 1)
	test.That(t, single.Lanes[0].Waypoints[0].Yaw, test.ShouldAlmostEqual, 1.25)
}

func TestBuildUniqueIDs(t *testing.T) {
	b := NewBuilder(clock.NewMock())
	path := []spatialmath.Pose{spatialmath.NewPose(1, 0, 0), spatialmath.NewPose(0, 0, 0)}
	ids := lo.Map([]int{0, 1, 2}, func(int, int) string { return b.Build(path).ID.String() })
	test.That(t, lo.Uniq(ids), test.ShouldHaveLength, 3)
}

func TestWaypointOrientation(t *testing.T) {
	w := Waypoint{Yaw: math.Pi / 2}
	test.That(t, spatialmath.YawFromQuaternion(w.Orientation()), test.ShouldAlmostEqual, math.Pi/2)
	test.That(t, KmphToMps(36), test.ShouldAlmostEqual, 10.0)
}

func TestCollectionNil(t *testing.T) {
	var c *Collection
	test.That(t, c.Empty(), test.ShouldBeTrue)
}
