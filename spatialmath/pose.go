// Package spatialmath defines the planar poses used by the planner and the transforms between
// world coordinates and occupancy grid cells.
package spatialmath

import (
	"fmt"
	"math"

	"github.com/golang/geo/r2"
)

// Pose is a planar position with a heading. Poses built through NewPose always carry a heading
// in [0, 2π).
type Pose struct {
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Theta float64 `json:"theta"`
}

// NewPose returns a pose with its heading normalized.
func NewPose(x, y, theta float64) Pose {
	return Pose{X: x, Y: y, Theta: NormalizeHeading(theta)}
}

// NewPoseFromPoint returns a pose at the given point with the given heading.
func NewPoseFromPoint(pt r2.Point, theta float64) Pose {
	return NewPose(pt.X, pt.Y, theta)
}

// Point returns the position of the pose.
func (p Pose) Point() r2.Point {
	return r2.Point{X: p.X, Y: p.Y}
}

func (p Pose) String() string {
	return fmt.Sprintf("(%.3f, %.3f, %.1f°)", p.X, p.Y, RadToDeg(p.Theta))
}

// PoseAlmostEqual reports whether two poses match within tol on position and heading. Headings
// are compared on the circle, so 0 and 2π-ε are close.
func PoseAlmostEqual(a, b Pose, tol float64) bool {
	if math.Abs(a.X-b.X) > tol || math.Abs(a.Y-b.Y) > tol {
		return false
	}
	return math.Abs(HeadingDiff(a.Theta, b.Theta)) <= tol
}

// Compose returns b expressed in the frame a is expressed in, where b is given relative to a.
func Compose(a, b Pose) Pose {
	sin, cos := math.Sincos(a.Theta)
	return NewPose(
		a.X+cos*b.X-sin*b.Y,
		a.Y+sin*b.X+cos*b.Y,
		a.Theta+b.Theta,
	)
}

// Invert returns the pose that undoes p, so Compose(p, Invert(p)) is the identity.
func Invert(p Pose) Pose {
	sin, cos := math.Sincos(p.Theta)
	return NewPose(
		-(cos*p.X + sin*p.Y),
		sin*p.X-cos*p.Y,
		-p.Theta,
	)
}
