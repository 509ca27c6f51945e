// Package visualization publishes search progress and planned paths for observers and renders
// plans as images.
package visualization

import (
	"math"
	"sync"

	"github.com/golang/geo/r2"
	"github.com/samber/lo"

	"go.viam.com/laneplanner/bus"
	"go.viam.com/laneplanner/logging"
	"go.viam.com/laneplanner/motionplan"
	"go.viam.com/laneplanner/spatialmath"
)

// Topics names the visualization topics.
type Topics struct {
	Path         string `json:"path"`
	PathNodes    string `json:"path_nodes"`
	PathVehicles string `json:"path_vehicles"`
	Nodes3D      string `json:"nodes_3d"`
}

// DefaultTopics returns the standard topic names.
func DefaultTopics() Topics {
	return Topics{
		Path:         "/path",
		PathNodes:    "/pathNodes",
		PathVehicles: "/pathVehicle",
		Nodes3D:      "/visualizeNodes3DPoses",
	}
}

// PathMessage is a sequence of poses in a frame.
type PathMessage struct {
	FrameID string             `json:"frame_id"`
	Poses   []spatialmath.Pose `json:"poses"`
}

// PointsMessage is a set of points in a frame.
type PointsMessage struct {
	FrameID string     `json:"frame_id"`
	Points  []r2.Point `json:"points"`
}

// FootprintsMessage is a set of vehicle outlines in a frame.
type FootprintsMessage struct {
	FrameID    string        `json:"frame_id"`
	Footprints [][4]r2.Point `json:"footprints"`
}

// Footprint returns the corners of a length x width rectangle centered on p and aligned with
// its heading, counter-clockwise from the rear right.
func Footprint(p spatialmath.Pose, length, width float64) [4]r2.Point {
	sin, cos := math.Sincos(p.Theta)
	corner := func(dx, dy float64) r2.Point {
		return r2.Point{X: p.X + dx*cos - dy*sin, Y: p.Y + dx*sin + dy*cos}
	}
	hl, hw := length/2, width/2
	return [4]r2.Point{corner(-hl, -hw), corner(hl, -hw), corner(hl, hw), corner(-hl, hw)}
}

// NodeVisualizer publishes every node the search reports. It is a motionplan.Visualizer.
type NodeVisualizer struct {
	bus     *bus.Bus
	topic   string
	frameID string
	logger  logging.Logger
}

var _ motionplan.Visualizer = (*NodeVisualizer)(nil)

// NewNodeVisualizer returns a visualizer publishing grid-frame nodes on topic.
func NewNodeVisualizer(b *bus.Bus, topic, frameID string, logger logging.Logger) *NodeVisualizer {
	return &NodeVisualizer{bus: b, topic: topic, frameID: frameID, logger: logger}
}

// Clear publishes an empty path so observers drop earlier nodes.
func (v *NodeVisualizer) Clear() {
	v.publish(PathMessage{FrameID: v.frameID})
}

// PublishNode3D publishes a single node.
func (v *NodeVisualizer) PublishNode3D(n *motionplan.Node3D) {
	if n == nil {
		return
	}
	v.publish(PathMessage{FrameID: v.frameID, Poses: []spatialmath.Pose{n.Pose()}})
}

func (v *NodeVisualizer) publish(msg PathMessage) {
	if err := v.bus.Publish(v.topic, msg); err != nil {
		v.logger.Debugw("dropping visualization", "topic", v.topic, "error", err)
	}
}

// PathExporter holds the latest world-frame path and publishes it in three forms. It is a
// motionplan.PathExporter.
type PathExporter struct {
	mu      sync.Mutex
	bus     *bus.Bus
	topics  Topics
	frameID string
	logger  logging.Logger

	// VehicleLength and VehicleWidth size the published footprints, in world units.
	VehicleLength float64
	VehicleWidth  float64

	path []motionplan.Node3D
}

var _ motionplan.PathExporter = (*PathExporter)(nil)

// NewPathExporter returns an exporter publishing on topics. The path topic is latched.
func NewPathExporter(b *bus.Bus, topics Topics, frameID string, logger logging.Logger) *PathExporter {
	b.Latch(topics.Path)
	return &PathExporter{bus: b, topics: topics, frameID: frameID, logger: logger, VehicleLength: 1, VehicleWidth: 1}
}

// Clear drops the held path and publishes empty messages.
func (e *PathExporter) Clear() {
	e.mu.Lock()
	e.path = nil
	e.mu.Unlock()
	e.PublishPath()
	e.PublishPathNodes()
	e.PublishPathVehicles()
}

// UpdatePath replaces the held path.
func (e *PathExporter) UpdatePath(nodes []motionplan.Node3D) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.path = append([]motionplan.Node3D(nil), nodes...)
}

func (e *PathExporter) poses() []spatialmath.Pose {
	e.mu.Lock()
	defer e.mu.Unlock()
	return lo.Map(e.path, func(n motionplan.Node3D, _ int) spatialmath.Pose { return n.Pose() })
}

// PublishPath publishes the held path as poses.
func (e *PathExporter) PublishPath() {
	e.publish(e.topics.Path, PathMessage{FrameID: e.frameID, Poses: e.poses()})
}

// PublishPathNodes publishes the held path as points.
func (e *PathExporter) PublishPathNodes() {
	points := lo.Map(e.poses(), func(p spatialmath.Pose, _ int) r2.Point { return p.Point() })
	e.publish(e.topics.PathNodes, PointsMessage{FrameID: e.frameID, Points: points})
}

// PublishPathVehicles publishes the vehicle outline at every node of the held path.
func (e *PathExporter) PublishPathVehicles() {
	footprints := lo.Map(e.poses(), func(p spatialmath.Pose, _ int) [4]r2.Point {
		return Footprint(p, e.VehicleLength, e.VehicleWidth)
	})
	e.publish(e.topics.PathVehicles, FootprintsMessage{FrameID: e.frameID, Footprints: footprints})
}

func (e *PathExporter) publish(topic string, msg interface{}) {
	if err := e.bus.Publish(topic, msg); err != nil {
		e.logger.Debugw("dropping visualization", "topic", topic, "error", err)
	}
}
