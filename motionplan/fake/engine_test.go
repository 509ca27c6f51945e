package fake

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"go.viam.com/test"

	"go.viam.com/laneplanner/motionplan"
	"go.viam.com/laneplanner/spatialmath"
)

func TestEngineDefaultChain(t *testing.T) {
	e := &Engine{Waypoints: []spatialmath.Pose{spatialmath.NewPose(2, 0, 0)}}
	req := &motionplan.SearchRequest{
		Start: motionplan.NewNode3D(0, 0, 0, 0, nil),
		Goal:  motionplan.NewNode3D(4, 0, 0, 0, nil),
	}
	end, err := e.Search(context.Background(), req)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, end.X, test.ShouldEqual, 4.0)
	test.That(t, end.Cost, test.ShouldAlmostEqual, 4.0)
	test.That(t, end.Parent.X, test.ShouldEqual, 2.0)
	test.That(t, end.Parent.Parent.X, test.ShouldEqual, 0.0)
	test.That(t, end.Parent.Parent.Parent, test.ShouldBeNil)
	test.That(t, e.Calls(), test.ShouldEqual, 1)
	test.That(t, e.Requests(), test.ShouldHaveLength, 1)
}

func TestEngineFailures(t *testing.T) {
	req := &motionplan.SearchRequest{}
	_, err := (&Engine{NoSolution: true}).Search(context.Background(), req)
	test.That(t, errors.Is(err, motionplan.ErrNoSolution), test.ShouldBeTrue)

	boom := errors.New("boom")
	_, err = (&Engine{Err: boom}).Search(context.Background(), req)
	test.That(t, err, test.ShouldEqual, boom)

	test.That(t, func() { (&Engine{PanicWith: "bad"}).Search(context.Background(), req) }, test.ShouldPanic)
}
