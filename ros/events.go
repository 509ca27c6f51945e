// Package ros translates between ROS-shaped JSON messages and planner events, including
// messages recorded in rosbags.
package ros

import (
	"encoding/json"

	"github.com/pkg/errors"
)

// Topics names the inbound topics and so decides how each message is decoded.
type Topics struct {
	Map        string
	Goal       string
	Start      string
	Transforms string
}

// Event is one decoded inbound message. Payload is a *occupancy.Grid, a spatialmath.Pose or a
// referenceframe.Transform.
type Event struct {
	Topic   string
	Stamp   Time
	Payload interface{}
}

// Decoder turns ROS JSON messages into events.
type Decoder struct {
	Topics Topics
}

// Decode parses the JSON body of a message published on topic. A transform message yields one
// event per transform.
func (d Decoder) Decode(topic string, data []byte) ([]Event, error) {
	switch topic {
	case d.Topics.Map:
		var msg OccupancyGrid
		if err := json.Unmarshal(data, &msg); err != nil {
			return nil, errors.Wrapf(err, "decoding %s", topic)
		}
		grid, err := msg.Grid()
		if err != nil {
			return nil, errors.Wrapf(err, "decoding %s", topic)
		}
		return []Event{{Topic: topic, Stamp: msg.Header.Stamp, Payload: grid}}, nil
	case d.Topics.Goal:
		var msg PoseStamped
		if err := json.Unmarshal(data, &msg); err != nil {
			return nil, errors.Wrapf(err, "decoding %s", topic)
		}
		return []Event{{Topic: topic, Stamp: msg.Header.Stamp, Payload: msg.Pose.Planar()}}, nil
	case d.Topics.Start:
		var msg PoseWithCovarianceStamped
		if err := json.Unmarshal(data, &msg); err != nil {
			return nil, errors.Wrapf(err, "decoding %s", topic)
		}
		return []Event{{Topic: topic, Stamp: msg.Header.Stamp, Payload: msg.Pose.Pose.Planar()}}, nil
	case d.Topics.Transforms:
		var msg TFMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			return nil, errors.Wrapf(err, "decoding %s", topic)
		}
		events := make([]Event, 0, len(msg.Transforms))
		for i, tf := range msg.Planar() {
			events = append(events, Event{Topic: topic, Stamp: msg.Transforms[i].Header.Stamp, Payload: tf})
		}
		return events, nil
	default:
		return nil, errors.Errorf("unknown topic %q", topic)
	}
}

// Envelope is one line of a JSON-lines event stream.
type Envelope struct {
	Topic string          `json:"topic"`
	Msg   json.RawMessage `json:"msg"`
}

// DecodeLine parses one JSON-lines envelope.
func (d Decoder) DecodeLine(line []byte) ([]Event, error) {
	var env Envelope
	if err := json.Unmarshal(line, &env); err != nil {
		return nil, errors.Wrap(err, "decoding envelope")
	}
	return d.Decode(env.Topic, env.Msg)
}
