// Package occupancy holds occupancy grids as received from perception and the binary obstacle
// grids derived from them.
package occupancy

import (
	"github.com/golang/geo/r2"
	"github.com/pkg/errors"

	"go.viam.com/laneplanner/spatialmath"
)

// Grid is an occupancy grid in row-major order. A cell value of zero is free; any other value,
// including -1 for unknown, is occupied. A Grid is not modified after construction.
type Grid struct {
	Width    int
	Height   int
	CellSize float64
	Origin   r2.Point
	Data     []int8
}

// NewGrid validates and returns a grid.
func NewGrid(width, height int, cellSize float64, origin r2.Point, data []int8) (*Grid, error) {
	g := &Grid{Width: width, Height: height, CellSize: cellSize, Origin: origin, Data: data}
	if err := g.Validate(); err != nil {
		return nil, err
	}
	return g, nil
}

// Validate checks that the dimensions agree with the data.
func (g *Grid) Validate() error {
	if g.Width <= 0 || g.Height <= 0 {
		return errors.Errorf("grid dimensions must be positive, got %dx%d", g.Width, g.Height)
	}
	if !(g.CellSize > 0) {
		return errors.Errorf("grid cell size must be positive, got %v", g.CellSize)
	}
	if len(g.Data) != g.Width*g.Height {
		return errors.Errorf("grid data has %d cells, expected %d", len(g.Data), g.Width*g.Height)
	}
	return nil
}

// Extent returns the world size of the grid.
func (g *Grid) Extent() r2.Point {
	return r2.Point{X: float64(g.Width) * g.CellSize, Y: float64(g.Height) * g.CellSize}
}

// Contains reports whether a world position falls on the grid. Both edges are inclusive.
func (g *Grid) Contains(pos r2.Point) bool {
	if g == nil {
		return false
	}
	rel := pos.Sub(g.Origin)
	extent := g.Extent()
	return rel.X >= 0 && rel.X <= extent.X && rel.Y >= 0 && rel.Y <= extent.Y
}

// At returns the raw value of a cell. Cells off the grid read as unknown.
func (g *Grid) At(x, y int) int8 {
	if x < 0 || y < 0 || x >= g.Width || y >= g.Height {
		return -1
	}
	return g.Data[y*g.Width+x]
}

// WorldToGrid converts a world pose into this grid's cell coordinates.
func (g *Grid) WorldToGrid(p spatialmath.Pose) spatialmath.Pose {
	return spatialmath.PoseWorldToGrid(p, g.Origin, g.CellSize)
}

// GridToWorld converts a pose in this grid's cell coordinates into the world frame.
func (g *Grid) GridToWorld(p spatialmath.Pose) spatialmath.Pose {
	return spatialmath.PoseGridToWorld(p, g.Origin, g.CellSize)
}

// Binary builds a fresh obstacle grid from this grid.
func (g *Grid) Binary() *BinaryGrid {
	b := NewBinaryGrid(g.Width, g.Height)
	for y := 0; y < g.Height; y++ {
		for x := 0; x < g.Width; x++ {
			b.Set(x, y, g.Data[y*g.Width+x] != 0)
		}
	}
	return b
}
