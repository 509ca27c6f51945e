package lane

import (
	"github.com/benbjohnson/clock"
	"github.com/golang/geo/r2"
	"github.com/golang/geo/r3"
	"github.com/google/uuid"
	"github.com/samber/lo"

	"go.viam.com/laneplanner/spatialmath"
)

// Defaults used by NewBuilder.
const (
	DefaultFrameID        = "map"
	DefaultCruiseSpeedKph = 10.0
	DefaultZSentinel      = -3893.38
)

// Builder turns a traced pose sequence into a lane collection.
type Builder struct {
	FrameID string
	// CruiseSpeed is in meters per second.
	CruiseSpeed float64
	ZSentinel   float64
	Clock       clock.Clock
}

// NewBuilder returns a builder with the default frame, speed and marker.
func NewBuilder(clk clock.Clock) *Builder {
	if clk == nil {
		clk = clock.New()
	}
	return &Builder{
		FrameID:     DefaultFrameID,
		CruiseSpeed: KmphToMps(DefaultCruiseSpeedKph),
		ZSentinel:   DefaultZSentinel,
		Clock:       clk,
	}
}

// Build converts a goal-first pose sequence, as traced from a search result, into a collection
// holding one start-first lane. Each waypoint faces the next one and the last faces the same
// way as its predecessor. A single pose keeps its own heading; no poses yields an empty lane.
func (b *Builder) Build(path []spatialmath.Pose) *Collection {
	waypoints := lo.Map(path, func(p spatialmath.Pose, _ int) Waypoint {
		return Waypoint{
			Position: r3.Vector{X: p.X, Y: p.Y, Z: b.ZSentinel},
			Speed:    b.CruiseSpeed,
		}
	})
	waypoints = lo.Reverse(waypoints)

	switch n := len(waypoints); {
	case n == 0:
	case n == 1:
		waypoints[0].Yaw = path[0].Theta
	default:
		for i := 0; i < n-1; i++ {
			waypoints[i].Yaw = spatialmath.Bearing(planar(waypoints[i]), planar(waypoints[i+1]))
		}
		waypoints[n-1].Yaw = waypoints[n-2].Yaw
	}

	clk := b.Clock
	if clk == nil {
		clk = clock.New()
	}
	return &Collection{
		ID: uuid.New(),
		Lanes: []Lane{{
			FrameID:   b.FrameID,
			Stamp:     clk.Now(),
			Waypoints: waypoints,
		}},
	}
}

func planar(w Waypoint) r2.Point {
	return r2.Point{X: w.Position.X, Y: w.Position.Y}
}
