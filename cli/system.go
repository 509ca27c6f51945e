package cli

import (
	"context"
	"encoding/json"
	"io"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"
	"go.uber.org/multierr"
	"go.viam.com/utils"

	"go.viam.com/laneplanner/bus"
	"go.viam.com/laneplanner/config"
	"go.viam.com/laneplanner/lane"
	"go.viam.com/laneplanner/logging"
	"go.viam.com/laneplanner/planner"
	"go.viam.com/laneplanner/referenceframe"
	"go.viam.com/laneplanner/ros"
	"go.viam.com/laneplanner/store"
	"go.viam.com/laneplanner/visualization"
)

// transformMaxAge is how long a transform stays usable after it was last received.
const transformMaxAge = 10 * time.Second

func newLogger(c *cli.Context) logging.Logger {
	logger := logging.NewBlankLogger("laneplanner")
	logger.AddAppender(logging.NewWriterAppender(c.App.ErrWriter))
	logger.SetLevel(logging.INFO)
	if c.Bool(debugFlag) {
		logger.SetLevel(logging.DEBUG)
	}
	return logger
}

// loadConfig reads the --config file, or returns the defaults when none is given.
func loadConfig(c *cli.Context, logger logging.Logger) (*config.Config, error) {
	path := c.String(configFlag)
	if path == "" {
		cfg := config.Config{}.WithDefaults()
		return &cfg, nil
	}
	cfg, err := config.Read(path)
	if err != nil {
		return nil, err
	}
	if !c.Bool(debugFlag) {
		logger.SetLevel(cfg.Level())
	}
	if lf := cfg.LogFile; lf != nil {
		logger.AddAppender(logging.NewFileAppender(lf.Path, lf.MaxSizeMB, lf.MaxBackups))
	}
	return cfg, nil
}

func openStore(ctx context.Context, conf config.StoreConfig) (store.Store, error) {
	switch conf.Kind {
	case config.StoreMongoDB:
		s, err := store.NewMongoStore(ctx, conf.URI, conf.Database, conf.Collection)
		if err != nil {
			return nil, err
		}
		return s, nil
	case config.StoreSQLite:
		s, err := store.NewSQLiteStore(conf.Path)
		if err != nil {
			return nil, err
		}
		return s, nil
	default:
		return store.NewMemoryStore(conf.Capacity), nil
	}
}

// system is a planner wired to a bus with its dispatcher, recorder and lane printer.
type system struct {
	logger     logging.Logger
	bus        *bus.Bus
	transforms *referenceframe.TransformBuffer
	planner    *planner.Planner
	dispatcher *planner.Dispatcher
	store      store.Store
	recorder   *store.Recorder
	decoder    ros.Decoder

	printerID string
	lanes     chan bus.Message
	cancel    context.CancelFunc
	workers   sync.WaitGroup
}

func newSystem(ctx context.Context, cfg *config.Config, out io.Writer, logger logging.Logger) (_ *system, err error) {
	clk := clock.New()
	s := &system{
		logger:     logger,
		bus:        bus.New(clk),
		transforms: referenceframe.NewTransformBuffer(clk, transformMaxAge),
		printerID:  "cli.printer",
		lanes:      make(chan bus.Message, 64),
	}
	defer func() {
		if err != nil {
			err = multierr.Combine(err, s.Close(context.Background()))
		}
	}()

	topics := cfg.Planner.Topics
	opts := planner.Options{
		Transforms: s.transforms,
		Publisher:  planner.NewBusPublisher(s.bus, topics),
		Clock:      clk,
	}
	if cfg.Visualization.Enabled {
		vizLogger := logger.Sublogger("visualization")
		opts.Visualizer = visualization.NewNodeVisualizer(s.bus, cfg.Visualization.Topics.Nodes3D, cfg.Planner.FrameID, vizLogger)
		exporter := visualization.NewPathExporter(s.bus, cfg.Visualization.Topics, cfg.Planner.FrameID, vizLogger)
		exporter.VehicleLength = cfg.Planner.Vehicle.Length
		exporter.VehicleWidth = cfg.Planner.Vehicle.Width
		opts.Exporter = exporter
	}
	if s.planner, err = planner.New(cfg.Planner, opts, logger.Sublogger("planner")); err != nil {
		return nil, err
	}
	if s.dispatcher, err = planner.NewDispatcher(s.planner, s.bus, topics, s.transforms, logger.Sublogger("dispatcher")); err != nil {
		return nil, err
	}
	if s.store, err = openStore(ctx, cfg.Store); err != nil {
		return nil, errors.Wrap(err, "opening lane store")
	}
	if s.recorder, err = store.NewRecorder(s.bus, topics.Lanes, s.store, logger.Sublogger("recorder")); err != nil {
		return nil, err
	}
	s.decoder = ros.Decoder{Topics: ros.Topics{
		Map:        topics.Map,
		Goal:       topics.Goal,
		Start:      topics.Start,
		Transforms: topics.Transforms,
	}}

	if err := s.bus.Subscribe(s.printerID, topics.Lanes, s.lanes, bus.DropOld); err != nil {
		return nil, err
	}
	printCtx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.workers.Add(1)
	utils.PanicCapturingGo(func() {
		defer s.workers.Done()
		s.printLanes(printCtx, out)
	})
	return s, nil
}

// printLanes writes every published collection to out as one JSON lane array per line.
func (s *system) printLanes(ctx context.Context, out io.Writer) {
	enc := json.NewEncoder(out)
	write := func(msg bus.Message) {
		c, ok := msg.Payload.(*lane.Collection)
		if !ok || c == nil {
			return
		}
		if err := enc.Encode(ros.NewLaneArray(c)); err != nil {
			s.logger.Warnw("failed to write lanes", "error", err)
		}
	}
	for {
		select {
		case <-ctx.Done():
			for {
				select {
				case msg := <-s.lanes:
					write(msg)
				default:
					return
				}
			}
		case msg := <-s.lanes:
			write(msg)
		}
	}
}

// publish puts decoded events on the bus in order.
func (s *system) publish(events []ros.Event) error {
	for _, ev := range events {
		if err := s.bus.Publish(ev.Topic, ev.Payload); err != nil {
			return err
		}
	}
	return nil
}

// reconfigure applies a changed config file to the running system.
func (s *system) reconfigure(cfg *config.Config) {
	s.logger.SetLevel(cfg.Level())
	if err := s.planner.Reconfigure(cfg.Planner); err != nil {
		s.logger.Warnw("failed to reconfigure planner", "error", err)
	}
}

func (s *system) Close(ctx context.Context) error {
	var err error
	if s.dispatcher != nil {
		err = multierr.Combine(err, s.dispatcher.Close())
	}
	if s.recorder != nil {
		err = multierr.Combine(err, s.recorder.Close())
	}
	if s.cancel != nil {
		s.cancel()
		s.workers.Wait()
	}
	if s.store != nil {
		err = multierr.Combine(err, s.store.Close(ctx))
	}
	return multierr.Combine(err, s.bus.Close())
}
