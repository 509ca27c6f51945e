// Package voronoi computes obstacle clearance over a binary obstacle grid and the cells
// equidistant from distinct obstacles (a generalized Voronoi diagram), using a brushfire
// expansion from every obstacle cell.
package voronoi

import (
	"math"
	"sync"

	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/floats"

	"go.viam.com/laneplanner/logging"
	"go.viam.com/laneplanner/motionplan"
	"go.viam.com/laneplanner/occupancy"
)

const unset = -1

var (
	neighbors4 = [4][2]int{{1, 0}, {-1, 0}, {0, 1}, {0, -1}}
	neighbors8 = [8][2]int{{1, 0}, {-1, 0}, {0, 1}, {0, -1}, {1, 1}, {1, -1}, {-1, 1}, {-1, -1}}
)

// Diagram is a motionplan.VoronoiMap.
type Diagram struct {
	mu     sync.RWMutex
	logger logging.Logger

	width, height int
	grid          *occupancy.BinaryGrid

	dist    []float64
	nearest []int
	label   []int
	voronoi []bool

	onVisualize []func(*Diagram)
}

var _ motionplan.VoronoiMap = (*Diagram)(nil)

// New returns an empty diagram.
func New(logger logging.Logger) *Diagram {
	return &Diagram{logger: logger}
}

// OnVisualize registers a callback run by Visualize.
func (d *Diagram) OnVisualize(fn func(*Diagram)) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.onVisualize = append(d.onVisualize, fn)
}

// InitializeMap takes ownership of grid and clears any previous result.
func (d *Diagram) InitializeMap(width, height int, grid *occupancy.BinaryGrid) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.width, d.height, d.grid = width, height, grid
	n := width * height
	d.dist = make([]float64, n)
	d.nearest = make([]int, n)
	d.label = make([]int, n)
	d.voronoi = make([]bool, n)
}

// Update recomputes clearance and Voronoi cells for the current grid.
func (d *Diagram) Update() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.grid == nil {
		return
	}
	components := d.labelObstacles()
	d.brushfire()
	d.markVoronoi()
	d.logger.Debugw("voronoi diagram updated", "width", d.width, "height", d.height, "obstacles", components)
}

// ClearanceStats summarizes the obstacle distance of free cells that can see an obstacle, in
// cells.
type ClearanceStats struct {
	Max    float64
	Mean   float64
	Median float64
}

// Clearance returns the clearance summary. All fields are +Inf when no obstacle exists.
func (d *Diagram) Clearance() ClearanceStats {
	d.mu.RLock()
	finite := make([]float64, 0, len(d.dist))
	for _, v := range d.dist {
		if v > 0 && !math.IsInf(v, 1) {
			finite = append(finite, v)
		}
	}
	d.mu.RUnlock()

	if len(finite) == 0 {
		inf := math.Inf(1)
		return ClearanceStats{Max: inf, Mean: inf, Median: inf}
	}
	mean, err := stats.Mean(finite)
	if err != nil {
		mean = math.NaN()
	}
	median, err := stats.Median(finite)
	if err != nil {
		median = math.NaN()
	}
	return ClearanceStats{Max: floats.Max(finite), Mean: mean, Median: median}
}

// Visualize reports the diagram to the log and to registered callbacks.
func (d *Diagram) Visualize() {
	d.mu.RLock()
	var cells int
	for _, v := range d.voronoi {
		if v {
			cells++
		}
	}
	callbacks := append([]func(*Diagram){}, d.onVisualize...)
	d.mu.RUnlock()

	clearance := d.Clearance()
	d.logger.Debugw("voronoi diagram",
		"voronoi_cells", cells,
		"max_clearance_cells", clearance.Max,
		"median_clearance_cells", clearance.Median)
	for _, fn := range callbacks {
		fn(d)
	}
}

// Size returns the grid dimensions.
func (d *Diagram) Size() (int, int) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.width, d.height
}

// Distance returns the distance in cells from a cell to the closest obstacle. It is +Inf when
// the grid has no obstacles and NaN off the grid.
func (d *Diagram) Distance(x, y int) float64 {
	d.mu.RLock()
	defer d.mu.RUnlock()
	i, ok := d.index(x, y)
	if !ok {
		return math.NaN()
	}
	return d.dist[i]
}

// IsVoronoi reports whether a cell lies on the boundary between two obstacles' regions.
func (d *Diagram) IsVoronoi(x, y int) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	i, ok := d.index(x, y)
	return ok && d.voronoi[i]
}

func (d *Diagram) index(x, y int) (int, bool) {
	if x < 0 || y < 0 || x >= d.width || y >= d.height || len(d.dist) == 0 {
		return 0, false
	}
	return y*d.width + x, true
}

// labelObstacles numbers the 4-connected obstacle components and returns their count.
func (d *Diagram) labelObstacles() int {
	for i := range d.label {
		d.label[i] = unset
	}
	next := 0
	queue := make([]int, 0, 64)
	for start := range d.label {
		x, y := start%d.width, start/d.width
		if d.label[start] != unset || !d.grid.Occupied(x, y) {
			continue
		}
		d.label[start] = next
		queue = append(queue[:0], start)
		for len(queue) > 0 {
			cur := queue[0]
			queue = queue[1:]
			cx, cy := cur%d.width, cur/d.width
			for _, n := range neighbors4 {
				nx, ny := cx+n[0], cy+n[1]
				ni, ok := d.index(nx, ny)
				if !ok || d.label[ni] != unset || !d.grid.Occupied(nx, ny) {
					continue
				}
				d.label[ni] = next
				queue = append(queue, ni)
			}
		}
		next++
	}
	return next
}

// brushfire spreads the nearest obstacle cell outward from every obstacle.
func (d *Diagram) brushfire() {
	queue := make([]int, 0, len(d.dist))
	for i := range d.dist {
		d.dist[i] = math.Inf(1)
		d.nearest[i] = unset
		x, y := i%d.width, i/d.width
		if d.grid.Occupied(x, y) {
			d.dist[i] = 0
			d.nearest[i] = i
			queue = append(queue, i)
		}
	}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		cx, cy := cur%d.width, cur/d.width
		src := d.nearest[cur]
		sx, sy := src%d.width, src/d.width
		for _, n := range neighbors8 {
			nx, ny := cx+n[0], cy+n[1]
			ni, ok := d.index(nx, ny)
			if !ok {
				continue
			}
			cand := math.Hypot(float64(nx-sx), float64(ny-sy))
			if cand < d.dist[ni] {
				d.dist[ni] = cand
				d.nearest[ni] = src
				queue = append(queue, ni)
			}
		}
	}
}

// markVoronoi flags free cells whose nearest obstacle belongs to a different component than a
// neighbor's, keeping the side at least as close to its obstacle so the boundary stays thin.
func (d *Diagram) markVoronoi() {
	for i := range d.voronoi {
		d.voronoi[i] = false
		if d.dist[i] == 0 || d.nearest[i] == unset {
			continue
		}
		x, y := i%d.width, i/d.width
		own := d.label[d.nearest[i]]
		for _, n := range neighbors4 {
			ni, ok := d.index(x+n[0], y+n[1])
			if !ok || d.dist[ni] == 0 || d.nearest[ni] == unset {
				continue
			}
			if d.label[d.nearest[ni]] != own && d.dist[i] <= d.dist[ni] {
				d.voronoi[i] = true
				break
			}
		}
	}
}
