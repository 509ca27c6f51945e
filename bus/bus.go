// Package bus distributes planner inputs and outputs between in-process publishers and
// subscribers by topic.
//
// Publish never blocks. A subscriber whose channel is full either loses the new message
// (DropNew) or has its oldest pending message replaced by the new one (DropOld), so a slow
// consumer only ever sees the most recent state. Latched topics retain their last message and
// hand it to subscribers that arrive later.
package bus

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/pkg/errors"
)

var (
	// ErrSubscriberExists is returned when Subscribe is called with a duplicate id.
	ErrSubscriberExists = errors.New("subscriber id already exists")
	// ErrSubscriberNotFound is returned when Unsubscribe is called with an unknown id.
	ErrSubscriberNotFound = errors.New("subscriber id not found")
	// ErrBusClosed is returned when operations are attempted on a closed bus.
	ErrBusClosed = errors.New("bus is closed")
	// ErrNilChannel is returned when Subscribe is given a nil channel.
	ErrNilChannel = errors.New("subscriber channel cannot be nil")
)

// Policy decides what happens when a subscriber's channel is full.
type Policy int

const (
	// DropNew discards the message being published.
	DropNew Policy = iota
	// DropOld discards the oldest pending message to make room.
	DropOld
)

// Message is one publication on a topic.
type Message struct {
	Topic   string
	Seq     uint64
	Stamp   time.Time
	Payload interface{}
}

// Stats is a snapshot of delivery counters.
type Stats struct {
	TotalPublished uint64
	TotalSent      uint64
	TotalDropped   uint64
	Subscribers    map[string]SubscriberStats
}

// SubscriberStats tracks delivery for one subscriber. For DropOld subscribers Dropped counts
// replaced messages.
type SubscriberStats struct {
	Topic   string
	Sent    uint64
	Dropped uint64
}

type subscriber struct {
	mu      sync.Mutex
	topic   string
	policy  Policy
	ch      chan Message
	sent    atomic.Uint64
	dropped atomic.Uint64
}

func (s *subscriber) deliver(msg Message) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for {
		select {
		case s.ch <- msg:
			s.sent.Add(1)
			return
		default:
		}
		if s.policy == DropNew {
			s.dropped.Add(1)
			return
		}
		select {
		case <-s.ch:
			s.dropped.Add(1)
		default:
		}
	}
}

// Bus is an in-process topic bus. All methods are safe for concurrent use.
type Bus struct {
	mu          sync.RWMutex
	clock       clock.Clock
	subscribers map[string]*subscriber
	latched     map[string]bool
	last        map[string]Message
	closed      bool

	seq            atomic.Uint64
	totalPublished atomic.Uint64
}

// New returns an open bus stamping messages with clk, or the wall clock when clk is nil.
func New(clk clock.Clock) *Bus {
	if clk == nil {
		clk = clock.New()
	}
	return &Bus{
		clock:       clk,
		subscribers: map[string]*subscriber{},
		latched:     map[string]bool{},
		last:        map[string]Message{},
	}
}

// Latch marks a topic as retaining its last message.
func (b *Bus) Latch(topic string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.latched[topic] = true
}

// Subscribe registers ch to receive messages on topic. If the topic is latched and has a
// retained message, it is delivered immediately.
func (b *Bus) Subscribe(id, topic string, ch chan Message, policy Policy) error {
	if ch == nil {
		return ErrNilChannel
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return ErrBusClosed
	}
	if _, exists := b.subscribers[id]; exists {
		return errors.Wrap(ErrSubscriberExists, id)
	}
	sub := &subscriber{topic: topic, policy: policy, ch: ch}
	b.subscribers[id] = sub
	if msg, ok := b.last[topic]; ok && b.latched[topic] {
		sub.deliver(msg)
	}
	return nil
}

// SubscribeLatest registers a DropOld subscriber with a single slot mailbox and returns the
// receiving end.
func (b *Bus) SubscribeLatest(id, topic string) (<-chan Message, error) {
	ch := make(chan Message, 1)
	if err := b.Subscribe(id, topic, ch, DropOld); err != nil {
		return nil, err
	}
	return ch, nil
}

// Unsubscribe removes a subscriber. Its channel is left open.
func (b *Bus) Unsubscribe(id string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return ErrBusClosed
	}
	if _, exists := b.subscribers[id]; !exists {
		return errors.Wrap(ErrSubscriberNotFound, id)
	}
	delete(b.subscribers, id)
	return nil
}

// Publish sends payload to every subscriber of topic without blocking.
func (b *Bus) Publish(topic string, payload interface{}) error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return ErrBusClosed
	}
	msg := Message{Topic: topic, Seq: b.seq.Add(1), Stamp: b.clock.Now(), Payload: payload}
	if b.latched[topic] {
		b.last[topic] = msg
	}
	var targets []*subscriber
	for _, sub := range b.subscribers {
		if sub.topic == topic {
			targets = append(targets, sub)
		}
	}
	b.mu.Unlock()

	b.totalPublished.Add(1)
	for _, sub := range targets {
		sub.deliver(msg)
	}
	return nil
}

// Last returns the retained message of a latched topic.
func (b *Bus) Last(topic string) (Message, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	msg, ok := b.last[topic]
	return msg, ok
}

// Stats returns a snapshot of the delivery counters.
func (b *Bus) Stats() Stats {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := Stats{
		TotalPublished: b.totalPublished.Load(),
		Subscribers:    make(map[string]SubscriberStats, len(b.subscribers)),
	}
	for id, sub := range b.subscribers {
		s := SubscriberStats{Topic: sub.topic, Sent: sub.sent.Load(), Dropped: sub.dropped.Load()}
		out.TotalSent += s.Sent
		out.TotalDropped += s.Dropped
		out.Subscribers[id] = s
	}
	return out
}

// Close stops the bus. Subscriber channels are not closed. Close is idempotent.
func (b *Bus) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = true
	return nil
}
