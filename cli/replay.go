package cli

import (
	"context"

	"github.com/urfave/cli/v2"
	"go.uber.org/multierr"

	"go.viam.com/laneplanner/bus"
	"go.viam.com/laneplanner/ros"
)

// ReplayAction is the corresponding action for 'replay'.
func ReplayAction(c *cli.Context) (err error) {
	logger := newLogger(c)
	cfg, err := loadConfig(c, logger)
	if err != nil {
		return err
	}
	s, err := newSystem(c.Context, cfg, c.App.Writer, logger)
	if err != nil {
		return err
	}
	defer func() {
		err = multierr.Combine(err, s.Close(context.Background()))
	}()

	rb, err := ros.ReadBag(c.Path(bagFlag))
	if err != nil {
		return err
	}
	events, err := s.decoder.Events(rb)
	if err != nil {
		return err
	}
	logger.Infow("replaying bag", "events", len(events))
	return s.replay(c.Context, events)
}

// replay hands events to the dispatcher one at a time, in order.
func (s *system) replay(ctx context.Context, events []ros.Event) error {
	for _, ev := range events {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		msg := bus.Message{Topic: ev.Topic, Stamp: ev.Stamp.Time(), Payload: ev.Payload}
		if err := s.dispatcher.Handle(ctx, msg); err != nil {
			s.logger.Warnw("event failed", "topic", ev.Topic, "error", err)
		}
	}
	return nil
}
