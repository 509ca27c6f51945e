package voronoi

import (
	"math"
	"testing"

	"go.viam.com/test"

	"go.viam.com/laneplanner/logging"
	"go.viam.com/laneplanner/occupancy"
)

func wallsGrid() *occupancy.BinaryGrid {
	// two vertical walls at x=0 and x=8 on a 9x5 grid
	grid := occupancy.NewBinaryGrid(9, 5)
	for y := 0; y < 5; y++ {
		grid.Set(0, y, true)
		grid.Set(8, y, true)
	}
	return grid
}

func TestClearance(t *testing.T) {
	d := New(logging.NewTestLogger(t))
	d.InitializeMap(9, 5, wallsGrid())
	d.Update()

	test.That(t, d.Distance(0, 2), test.ShouldEqual, 0.0)
	test.That(t, d.Distance(1, 2), test.ShouldAlmostEqual, 1.0)
	test.That(t, d.Distance(4, 2), test.ShouldAlmostEqual, 4.0)
	test.That(t, d.Distance(6, 0), test.ShouldAlmostEqual, 2.0)
	test.That(t, math.IsNaN(d.Distance(9, 0)), test.ShouldBeTrue)
}

func TestClearanceStats(t *testing.T) {
	d := New(logging.NewTestLogger(t))
	d.InitializeMap(9, 5, wallsGrid())
	d.Update()

	got := d.Clearance()
	test.That(t, got.Max, test.ShouldAlmostEqual, 4.0)
	test.That(t, got.Mean, test.ShouldAlmostEqual, 16.0/7)
	test.That(t, got.Median, test.ShouldAlmostEqual, 2.0)

	empty := New(logging.NewTestLogger(t))
	empty.InitializeMap(3, 3, occupancy.NewBinaryGrid(3, 3))
	empty.Update()
	test.That(t, math.IsInf(empty.Clearance().Median, 1), test.ShouldBeTrue)
}

func TestVoronoiBetweenWalls(t *testing.T) {
	d := New(logging.NewTestLogger(t))
	d.InitializeMap(9, 5, wallsGrid())
	d.Update()

	for y := 0; y < 5; y++ {
		onLine := d.IsVoronoi(4, y) || d.IsVoronoi(3, y) || d.IsVoronoi(5, y)
		test.That(t, onLine, test.ShouldBeTrue)
		test.That(t, d.IsVoronoi(1, y), test.ShouldBeFalse)
		test.That(t, d.IsVoronoi(7, y), test.ShouldBeFalse)
		test.That(t, d.IsVoronoi(0, y), test.ShouldBeFalse)
	}
}

func TestEmptyGrid(t *testing.T) {
	d := New(logging.NewTestLogger(t))
	var visualized int
	d.OnVisualize(func(*Diagram) { visualized++ })

	d.Update()
	d.InitializeMap(3, 3, occupancy.NewBinaryGrid(3, 3))
	d.Update()
	d.Visualize()

	test.That(t, visualized, test.ShouldEqual, 1)
	test.That(t, math.IsInf(d.Distance(1, 1), 1), test.ShouldBeTrue)
	test.That(t, d.IsVoronoi(1, 1), test.ShouldBeFalse)
	w, h := d.Size()
	test.That(t, w, test.ShouldEqual, 3)
	test.That(t, h, test.ShouldEqual, 3)
}
