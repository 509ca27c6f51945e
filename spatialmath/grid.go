package spatialmath

import "github.com/golang/geo/r2"

// WorldToGrid converts a world position into continuous cell coordinates of a grid with the
// given origin and cell size.
func WorldToGrid(pos, origin r2.Point, cellSize float64) r2.Point {
	return pos.Sub(origin).Mul(1 / cellSize)
}

// GridToWorld is the inverse of WorldToGrid.
func GridToWorld(cell, origin r2.Point, cellSize float64) r2.Point {
	return origin.Add(cell.Mul(cellSize))
}

// PoseWorldToGrid converts a world pose into grid coordinates. The heading is unchanged apart
// from normalization.
func PoseWorldToGrid(p Pose, origin r2.Point, cellSize float64) Pose {
	return NewPoseFromPoint(WorldToGrid(p.Point(), origin, cellSize), p.Theta)
}

// PoseGridToWorld converts a grid pose back into world coordinates.
func PoseGridToWorld(p Pose, origin r2.Point, cellSize float64) Pose {
	return NewPoseFromPoint(GridToWorld(p.Point(), origin, cellSize), p.Theta)
}
