package planner

import (
	"context"
	"sync"

	"github.com/pkg/errors"
	"go.uber.org/multierr"
	"go.viam.com/utils"

	"go.viam.com/laneplanner/bus"
	"go.viam.com/laneplanner/logging"
	"go.viam.com/laneplanner/occupancy"
	"go.viam.com/laneplanner/referenceframe"
	"go.viam.com/laneplanner/spatialmath"
)

const (
	inboxSize          = 256
	transformQueueSize = 64
)

// Dispatcher feeds bus events into a planner from a single goroutine, in the order they were
// published. A pending map, start or goal is replaced by a newer one of the same kind;
// transforms are queued.
type Dispatcher struct {
	planner    *Planner
	bus        *bus.Bus
	topics     Topics
	transforms *referenceframe.TransformBuffer
	logger     logging.Logger

	ids      []string
	inbox    chan bus.Message
	queue    *eventQueue
	draining chan struct{}
	cancel   context.CancelFunc
	workers  sync.WaitGroup

	drainOnce sync.Once
	closeOnce sync.Once
}

// NewDispatcher subscribes to the planner's input topics. Transform events are applied to
// transforms when it is not nil.
func NewDispatcher(
	p *Planner,
	b *bus.Bus,
	topics Topics,
	transforms *referenceframe.TransformBuffer,
	logger logging.Logger,
) (*Dispatcher, error) {
	d := &Dispatcher{
		planner:    p,
		bus:        b,
		topics:     topics,
		transforms: transforms,
		logger:     logger,
		inbox:      make(chan bus.Message, inboxSize),
		queue:      newEventQueue(transformQueueSize),
		draining:   make(chan struct{}),
	}
	for _, sub := range []struct{ id, topic string }{
		{"planner.map", topics.Map},
		{"planner.start", topics.Start},
		{"planner.goal", topics.Goal},
		{"planner.tf", topics.Transforms},
	} {
		if err := b.Subscribe(sub.id, sub.topic, d.inbox, bus.DropNew); err != nil {
			return nil, multierr.Combine(err, d.unsubscribe())
		}
		d.ids = append(d.ids, sub.id)
	}
	return d, nil
}

// Start runs the event loop until ctx is done, Close is called, or Drain has handled every
// pending event.
func (d *Dispatcher) Start(ctx context.Context) {
	ctx, d.cancel = context.WithCancel(ctx)
	d.workers.Add(2)
	utils.PanicCapturingGo(func() {
		defer d.workers.Done()
		d.intake(ctx)
	})
	utils.PanicCapturingGo(func() {
		defer d.workers.Done()
		d.loop(ctx)
	})
}

// intake moves delivered messages into the ordered queue so coalescing never reorders them.
func (d *Dispatcher) intake(ctx context.Context) {
	defer d.queue.close()
	for {
		select {
		case <-ctx.Done():
			return
		case msg := <-d.inbox:
			d.enqueue(msg)
		case <-d.draining:
			for {
				select {
				case msg := <-d.inbox:
					d.enqueue(msg)
				default:
					return
				}
			}
		}
	}
}

func (d *Dispatcher) enqueue(msg bus.Message) {
	switch msg.Topic {
	case d.topics.Map:
		d.queue.push(kindMap, msg)
	case d.topics.Start:
		d.queue.push(kindStart, msg)
	case d.topics.Goal:
		d.queue.push(kindGoal, msg)
	case d.topics.Transforms:
		d.queue.push(kindTransform, msg)
	default:
		d.logger.Warnw("ignoring event on unexpected topic", "topic", msg.Topic)
	}
}

func (d *Dispatcher) loop(ctx context.Context) {
	for {
		msg, ok, closed := d.queue.pop()
		if !ok {
			if closed {
				return
			}
			select {
			case <-ctx.Done():
				return
			case <-d.queue.ready:
			}
			continue
		}
		if ctx.Err() != nil {
			return
		}
		if err := d.Handle(ctx, msg); err != nil {
			d.logger.Warnw("event failed", "topic", msg.Topic, "error", err)
		}
	}
}

// Handle applies one event synchronously.
func (d *Dispatcher) Handle(ctx context.Context, msg bus.Message) error {
	var err error
	switch payload := msg.Payload.(type) {
	case referenceframe.Transform:
		if d.transforms != nil {
			d.transforms.Apply(payload)
		}
	case *occupancy.Grid:
		_, err = d.planner.SetMap(ctx, payload)
	case spatialmath.Pose:
		switch msg.Topic {
		case d.topics.Start:
			_, err = d.planner.SetStart(ctx, payload)
		case d.topics.Goal:
			_, err = d.planner.SetGoal(ctx, payload)
		default:
			return errors.Errorf("unexpected pose on topic %q", msg.Topic)
		}
	default:
		return errors.Errorf("unexpected payload %T on topic %q", msg.Payload, msg.Topic)
	}
	return err
}

func (d *Dispatcher) unsubscribe() error {
	var err error
	for _, id := range d.ids {
		if e := d.bus.Unsubscribe(id); e != nil && !errors.Is(e, bus.ErrBusClosed) {
			err = multierr.Combine(err, e)
		}
	}
	d.ids = nil
	return err
}

// Drain stops taking new events, handles every event already received and then stops the
// loop. If ctx ends first the remaining events are abandoned.
func (d *Dispatcher) Drain(ctx context.Context) error {
	err := d.unsubscribe()
	d.drainOnce.Do(func() { close(d.draining) })
	if d.cancel == nil {
		return err
	}
	done := make(chan struct{})
	utils.PanicCapturingGo(func() {
		d.workers.Wait()
		close(done)
	})
	select {
	case <-done:
	case <-ctx.Done():
		d.cancel()
		<-done
		err = multierr.Combine(err, ctx.Err())
	}
	return err
}

// Close stops the event loop, abandoning pending events, and drops the subscriptions.
func (d *Dispatcher) Close() error {
	var err error
	d.closeOnce.Do(func() {
		if d.cancel != nil {
			d.cancel()
		}
		d.workers.Wait()
		err = d.unsubscribe()
	})
	return err
}
