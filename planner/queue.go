package planner

import (
	"sync"

	"go.viam.com/laneplanner/bus"
)

type eventKind int

const (
	kindTransform eventKind = iota
	kindMap
	kindStart
	kindGoal
)

// eventQueue holds pending events in arrival order. A map, start or goal replaces the pending
// event of its own kind in place, so it is handled where the superseded one would have been.
// Transforms are all kept up to maxTransforms; beyond that the oldest pending transform is
// evicted.
type eventQueue struct {
	mu            sync.Mutex
	events        []queuedEvent
	transforms    int
	maxTransforms int
	closed        bool
	dropped       uint64

	ready chan struct{}
}

type queuedEvent struct {
	kind eventKind
	msg  bus.Message
}

func newEventQueue(maxTransforms int) *eventQueue {
	return &eventQueue{maxTransforms: maxTransforms, ready: make(chan struct{}, 1)}
}

func (q *eventQueue) push(kind eventKind, msg bus.Message) {
	q.mu.Lock()
	q.insert(kind, msg)
	q.mu.Unlock()
	q.signal()
}

func (q *eventQueue) insert(kind eventKind, msg bus.Message) {
	if kind != kindTransform {
		for i := range q.events {
			if q.events[i].kind == kind {
				q.events[i].msg = msg
				q.dropped++
				return
			}
		}
		q.events = append(q.events, queuedEvent{kind, msg})
		return
	}
	if q.maxTransforms > 0 && q.transforms >= q.maxTransforms {
		for i := range q.events {
			if q.events[i].kind == kindTransform {
				q.events = append(q.events[:i], q.events[i+1:]...)
				q.transforms--
				q.dropped++
				break
			}
		}
	}
	q.events = append(q.events, queuedEvent{kind, msg})
	q.transforms++
}

// pop returns the oldest pending event. When nothing is pending, closed reports whether more
// events can still arrive.
func (q *eventQueue) pop() (msg bus.Message, ok, closed bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.events) == 0 {
		return bus.Message{}, false, q.closed
	}
	ev := q.events[0]
	q.events[0] = queuedEvent{}
	q.events = q.events[1:]
	if ev.kind == kindTransform {
		q.transforms--
	}
	return ev.msg, true, false
}

// close marks the queue as complete. Pending events remain poppable.
func (q *eventQueue) close() {
	q.mu.Lock()
	q.closed = true
	q.mu.Unlock()
	q.signal()
}

func (q *eventQueue) len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.events)
}

func (q *eventQueue) signal() {
	select {
	case q.ready <- struct{}{}:
	default:
	}
}
