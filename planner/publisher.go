package planner

import (
	"time"

	"go.viam.com/laneplanner/bus"
	"go.viam.com/laneplanner/lane"
	"go.viam.com/laneplanner/spatialmath"
)

// StampedPose is a pose with the frame and time it was reported in.
type StampedPose struct {
	FrameID string           `json:"frame_id"`
	Stamp   time.Time        `json:"stamp"`
	Pose    spatialmath.Pose `json:"pose"`
}

// Publisher receives the planner's outputs.
type Publisher interface {
	// PublishStart echoes an accepted start pose for observers.
	PublishStart(start StampedPose) error
	// PublishLanes hands a planned lane collection to the trajectory follower.
	PublishLanes(lanes *lane.Collection) error
}

// BusPublisher publishes planner outputs on a bus. The lane topic is latched.
type BusPublisher struct {
	bus    *bus.Bus
	topics Topics
}

var _ Publisher = (*BusPublisher)(nil)

// NewBusPublisher returns a publisher writing to the given topics.
func NewBusPublisher(b *bus.Bus, topics Topics) *BusPublisher {
	b.Latch(topics.Lanes)
	return &BusPublisher{bus: b, topics: topics}
}

// PublishStart implements Publisher.
func (p *BusPublisher) PublishStart(start StampedPose) error {
	return p.bus.Publish(p.topics.StartEcho, start)
}

// PublishLanes implements Publisher.
func (p *BusPublisher) PublishLanes(lanes *lane.Collection) error {
	return p.bus.Publish(p.topics.Lanes, lanes)
}
