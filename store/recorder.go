package store

import (
	"context"
	"sync"
	"time"

	"github.com/pkg/errors"
	"go.viam.com/utils"

	"go.viam.com/laneplanner/bus"
	"go.viam.com/laneplanner/lane"
	"go.viam.com/laneplanner/logging"
)

const recorderQueueSize = 16

// Recorder writes every lane collection published on a topic into a store.
type Recorder struct {
	bus    *bus.Bus
	id     string
	store  Store
	logger logging.Logger

	msgs    chan bus.Message
	cancel  context.CancelFunc
	workers sync.WaitGroup
}

// NewRecorder subscribes to topic and starts recording.
func NewRecorder(b *bus.Bus, topic string, s Store, logger logging.Logger) (*Recorder, error) {
	r := &Recorder{
		bus:    b,
		id:     "recorder." + topic,
		store:  s,
		logger: logger,
		msgs:   make(chan bus.Message, recorderQueueSize),
	}
	if err := b.Subscribe(r.id, topic, r.msgs, bus.DropNew); err != nil {
		return nil, err
	}
	var ctx context.Context
	ctx, r.cancel = context.WithCancel(context.Background())
	r.workers.Add(1)
	utils.PanicCapturingGo(func() {
		defer r.workers.Done()
		r.run(ctx)
	})
	return r, nil
}

func (r *Recorder) run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			r.drain()
			return
		case msg := <-r.msgs:
			r.record(ctx, msg)
		}
	}
}

// drain records whatever was queued before the subscription ended.
func (r *Recorder) drain() {
	for {
		select {
		case msg := <-r.msgs:
			r.record(context.Background(), msg)
		default:
			return
		}
	}
}

func (r *Recorder) record(ctx context.Context, msg bus.Message) {
	c, ok := msg.Payload.(*lane.Collection)
	if !ok || c == nil {
		r.logger.Warnw("ignoring unexpected payload", "topic", msg.Topic)
		return
	}
	insertCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := r.store.Insert(insertCtx, NewRecord(c, msg.Stamp)); err != nil {
		r.logger.Errorw("failed to record lanes", "id", c.ID.String(), "error", err)
	}
}

// Close stops recording after flushing queued collections. The store is left open.
func (r *Recorder) Close() error {
	err := r.bus.Unsubscribe(r.id)
	r.cancel()
	r.workers.Wait()
	if err != nil && !errors.Is(err, bus.ErrBusClosed) {
		return err
	}
	return nil
}
