package motionplan

import (
	"image"
	"math"
	"sync"

	"github.com/samber/lo"
	"go.viam.com/utils"
	"golang.org/x/sync/errgroup"
)

// DubinsTable holds the cost of turning between heading slots at the minimum turning radius.
type DubinsTable struct {
	Headings      int
	TurningRadius float64
	// Costs is indexed by the absolute slot difference, 0..Headings/2.
	Costs []float64
}

// TurnCost returns the cost of turning from one heading slot to another.
func (t DubinsTable) TurnCost(fromBin, toBin int) float64 {
	if t.Headings <= 0 || len(t.Costs) == 0 {
		return 0
	}
	d := (toBin - fromBin) % t.Headings
	if d < 0 {
		d += t.Headings
	}
	if d > t.Headings/2 {
		d = t.Headings - d
	}
	return t.Costs[d]
}

// CollisionTable holds the cells covered by the vehicle footprint for each heading slot,
// relative to the cell of the vehicle's reference point.
type CollisionTable struct {
	Headings   int
	Footprints [][]image.Point
}

// Footprint returns the covered cell offsets for a heading slot. An empty table yields the
// reference cell alone.
func (t CollisionTable) Footprint(bin int) []image.Point {
	if bin < 0 || bin >= len(t.Footprints) {
		return []image.Point{{}}
	}
	return t.Footprints[bin]
}

// LookupParams describe the vehicle for the default table builder. Lengths are in cells.
type LookupParams struct {
	Headings      int
	TurningRadius float64
	VehicleLength float64
	VehicleWidth  float64
}

// DefaultLookupBuilder computes turning arc lengths and sampled rectangular footprints.
type DefaultLookupBuilder struct {
	Params LookupParams
}

// BuildDubinsLookup returns the arc length needed for each heading slot difference.
func (b DefaultLookupBuilder) BuildDubinsLookup() DubinsTable {
	headings := b.Params.Headings
	if headings <= 0 {
		return DubinsTable{}
	}
	costs := make([]float64, headings/2+1)
	for d := range costs {
		costs[d] = b.Params.TurningRadius * float64(d) * 2 * math.Pi / float64(headings)
	}
	return DubinsTable{Headings: headings, TurningRadius: b.Params.TurningRadius, Costs: costs}
}

// BuildCollisionLookup samples the vehicle rectangle, centered on the reference point, at each
// slot's heading.
func (b DefaultLookupBuilder) BuildCollisionLookup() CollisionTable {
	headings := b.Params.Headings
	if headings <= 0 {
		return CollisionTable{}
	}
	const step = 0.25
	length, width := math.Max(b.Params.VehicleLength, 0), math.Max(b.Params.VehicleWidth, 0)

	footprints := make([][]image.Point, headings)
	for bin := 0; bin < headings; bin++ {
		theta := float64(bin) * 2 * math.Pi / float64(headings)
		sin, cos := math.Sincos(theta)
		var cells []image.Point
		for u := -length / 2; u <= length/2+1e-9; u += step {
			for v := -width / 2; v <= width/2+1e-9; v += step {
				x := u*cos - v*sin
				y := u*sin + v*cos
				cells = append(cells, image.Point{X: int(math.Round(x)), Y: int(math.Round(y))})
			}
		}
		if len(cells) == 0 {
			cells = []image.Point{{}}
		}
		footprints[bin] = lo.Uniq(cells)
	}
	return CollisionTable{Headings: headings, Footprints: footprints}
}

// LookupTables builds each table on first use and keeps it for the life of the process.
type LookupTables struct {
	builder LookupTableBuilder

	dubinsOnce    sync.Once
	dubins        DubinsTable
	collisionOnce sync.Once
	collision     CollisionTable
}

// NewLookupTables returns tables that will be built by builder when first needed.
func NewLookupTables(builder LookupTableBuilder) *LookupTables {
	return &LookupTables{builder: builder}
}

// Dubins returns the turning cost table.
func (l *LookupTables) Dubins() DubinsTable {
	if l == nil || l.builder == nil {
		return DubinsTable{}
	}
	l.dubinsOnce.Do(func() {
		l.dubins = l.builder.BuildDubinsLookup()
	})
	return l.dubins
}

// Collision returns the footprint table.
func (l *LookupTables) Collision() CollisionTable {
	if l == nil || l.builder == nil {
		return CollisionTable{}
	}
	l.collisionOnce.Do(func() {
		l.collision = l.builder.BuildCollisionLookup()
	})
	return l.collision
}

// Warm builds both tables now, concurrently, rather than during the first search.
func (l *LookupTables) Warm() {
	var g errgroup.Group
	g.Go(func() error {
		l.Dubins()
		return nil
	})
	g.Go(func() error {
		l.Collision()
		return nil
	})
	utils.UncheckedError(g.Wait())
}
