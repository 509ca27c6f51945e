package planner

import (
	"testing"

	"go.viam.com/test"

	"go.viam.com/laneplanner/motionplan/gridsearch"
)

func TestConfigDefaults(t *testing.T) {
	conf := Config{}.WithDefaults()
	test.That(t, conf.Headings, test.ShouldEqual, 72)
	test.That(t, conf.CruiseSpeedKph, test.ShouldEqual, 10.0)
	test.That(t, conf.ZSentinel, test.ShouldEqual, -3893.38)
	test.That(t, conf.FrameID, test.ShouldEqual, "map")
	test.That(t, conf.BaseFrame, test.ShouldEqual, "base_link")
	test.That(t, conf.Engine, test.ShouldEqual, EngineGrid)
	test.That(t, conf.Topics.Map, test.ShouldEqual, "/occ_map")
	test.That(t, conf.Topics.Lanes, test.ShouldEqual, "/based/lane_waypoints_raw")

	manual := Config{Manual: true, Topics: Topics{Goal: "/goal"}}.WithDefaults()
	test.That(t, manual.Topics.Map, test.ShouldEqual, "/map")
	test.That(t, manual.Topics.Goal, test.ShouldEqual, "/goal")
}

func TestConfigValidate(t *testing.T) {
	test.That(t, (&Config{}).Validate("planner"), test.ShouldBeNil)
	test.That(t, (&Config{Headings: -1}).Validate("planner"), test.ShouldNotBeNil)
	test.That(t, (&Config{Vehicle: VehicleConfig{Width: -1}}).Validate("planner"), test.ShouldNotBeNil)
	test.That(t, (&Config{Engine: "rrt"}).Validate("planner"), test.ShouldNotBeNil)

	err := (&Config{EngineAttributes: map[string]interface{}{"bogus": 1}}).Validate("planner")
	test.That(t, err, test.ShouldNotBeNil)
}

func TestNewEngine(t *testing.T) {
	engine, err := NewEngine(Config{EngineAttributes: map[string]interface{}{"check_footprint": true}})
	test.That(t, err, test.ShouldBeNil)
	grid, ok := engine.(*gridsearch.Engine)
	test.That(t, ok, test.ShouldBeTrue)
	test.That(t, grid.CheckFootprint, test.ShouldBeTrue)

	_, err = NewEngine(Config{Engine: "rrt"})
	test.That(t, err, test.ShouldNotBeNil)
}
