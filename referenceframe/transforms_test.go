package referenceframe

import (
	"math"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/pkg/errors"
	"go.viam.com/test"

	"go.viam.com/laneplanner/spatialmath"
)

func TestTransformBufferDirect(t *testing.T) {
	buf := NewTransformBuffer(clock.NewMock(), 0)
	test.That(t, buf.CanTransform(MapFrame, BaseFrame), test.ShouldBeFalse)

	_, err := buf.Lookup(MapFrame, BaseFrame)
	test.That(t, errors.Is(err, ErrTransformUnavailable), test.ShouldBeTrue)

	buf.Update(MapFrame, BaseFrame, spatialmath.NewPose(3, 4, math.Pi/2))
	test.That(t, buf.CanTransform(MapFrame, BaseFrame), test.ShouldBeTrue)

	p, err := buf.Lookup(MapFrame, BaseFrame)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, spatialmath.PoseAlmostEqual(p, spatialmath.NewPose(3, 4, math.Pi/2), 1e-9), test.ShouldBeTrue)

	self, err := buf.Lookup(MapFrame, MapFrame)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, self, test.ShouldResemble, spatialmath.Pose{})
}

func TestTransformBufferInverse(t *testing.T) {
	buf := NewTransformBuffer(clock.NewMock(), 0)
	buf.Update(MapFrame, BaseFrame, spatialmath.NewPose(1, 0, 0))

	p, err := buf.Lookup(BaseFrame, MapFrame)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, p.X, test.ShouldAlmostEqual, -1.0)
	test.That(t, p.Y, test.ShouldAlmostEqual, 0.0)
}

func TestTransformBufferChain(t *testing.T) {
	buf := NewTransformBuffer(clock.NewMock(), 0)
	buf.Update(MapFrame, "odom", spatialmath.NewPose(10, 0, math.Pi/2))
	buf.Update("odom", BaseFrame, spatialmath.NewPose(2, 0, 0))

	p, err := buf.Lookup(MapFrame, BaseFrame)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, p.X, test.ShouldAlmostEqual, 10.0)
	test.That(t, p.Y, test.ShouldAlmostEqual, 2.0)
	test.That(t, p.Theta, test.ShouldAlmostEqual, math.Pi/2)
}

func TestTransformBufferStale(t *testing.T) {
	clk := clock.NewMock()
	buf := NewTransformBuffer(clk, time.Second)
	buf.Update(MapFrame, BaseFrame, spatialmath.NewPose(1, 1, 0))
	test.That(t, buf.CanTransform(MapFrame, BaseFrame), test.ShouldBeTrue)

	clk.Add(2 * time.Second)
	test.That(t, buf.CanTransform(MapFrame, BaseFrame), test.ShouldBeFalse)

	buf.Update(MapFrame, BaseFrame, spatialmath.NewPose(2, 2, 0))
	p, err := buf.Lookup(MapFrame, BaseFrame)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, p.X, test.ShouldAlmostEqual, 2.0)
}
