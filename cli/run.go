package cli

import (
	"bufio"
	"bytes"
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"
	"go.uber.org/multierr"
	"go.viam.com/utils"

	"go.viam.com/laneplanner/config"
)

const maxEventLine = 64 << 20

// RunAction is the corresponding action for 'run'.
func RunAction(c *cli.Context) (err error) {
	logger := newLogger(c)
	cfg, err := loadConfig(c, logger)
	if err != nil {
		return err
	}
	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	s, err := newSystem(ctx, cfg, c.App.Writer, logger)
	if err != nil {
		return err
	}
	defer func() {
		err = multierr.Combine(err, s.Close(context.Background()))
	}()

	if cfg.ConfigFilePath != "" {
		w, err := config.Watch(cfg.ConfigFilePath, config.DefaultWatchDelay, logger.Sublogger("config"), s.reconfigure)
		if err != nil {
			return err
		}
		defer utils.UncheckedErrorFunc(w.Close)
	}

	s.dispatcher.Start(ctx)
	logger.Infow("planner running", "manual", cfg.Planner.Manual, "map", cfg.Planner.Topics.Map)

	in := c.App.Reader
	if in == nil {
		in = os.Stdin
	}
	done := make(chan error, 1)
	utils.PanicCapturingGo(func() {
		done <- s.pump(ctx, in)
	})
	select {
	case <-ctx.Done():
		return nil
	case err := <-done:
		if err != nil {
			return err
		}
	}
	logger.Info("input closed, handling pending events")
	if err := s.dispatcher.Drain(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// pump reads JSON-lines envelopes from r and publishes their events. Malformed lines are
// logged and skipped.
func (s *system) pump(ctx context.Context, r io.Reader) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64<<10), maxEventLine)
	for scanner.Scan() {
		if ctx.Err() != nil {
			return nil
		}
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		events, err := s.decoder.DecodeLine(line)
		if err != nil {
			s.logger.Warnw("skipping malformed event", "error", err)
			continue
		}
		if err := s.publish(events); err != nil {
			return err
		}
	}
	return scanner.Err()
}
