package planner

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/benbjohnson/clock"
	"github.com/pkg/errors"
	"github.com/samber/lo"
	"go.opencensus.io/trace"

	"go.viam.com/laneplanner/collision"
	"go.viam.com/laneplanner/lane"
	"go.viam.com/laneplanner/logging"
	"go.viam.com/laneplanner/motionplan"
	"go.viam.com/laneplanner/occupancy"
	"go.viam.com/laneplanner/referenceframe"
	"go.viam.com/laneplanner/spatialmath"
	"go.viam.com/laneplanner/voronoi"
)

// Options are the collaborators of a Planner. Nil fields get defaults built from the config.
type Options struct {
	Engine     motionplan.SearchEngine
	Space      motionplan.ConfigurationSpace
	Voronoi    motionplan.VoronoiMap
	Transforms referenceframe.TransformProvider
	Visualizer motionplan.Visualizer
	Exporter   motionplan.PathExporter
	Lookups    *motionplan.LookupTables
	Publisher  Publisher
	Clock      clock.Clock
	// NewSmoother returns the smoother used for one plan cycle.
	NewSmoother func() motionplan.PathSmoother
}

// Planner owns a planning session. All methods are safe for concurrent use and run one at a
// time.
type Planner struct {
	mu     sync.Mutex
	logger logging.Logger
	conf   Config

	session  Session
	planning atomic.Bool

	engine      motionplan.SearchEngine
	ownsEngine  bool
	space       motionplan.ConfigurationSpace
	ownsSpace   bool
	voronoi     motionplan.VoronoiMap
	transforms  referenceframe.TransformProvider
	visualizer  motionplan.Visualizer
	exporter    motionplan.PathExporter
	lookups     *motionplan.LookupTables
	publisher   Publisher
	clock       clock.Clock
	synthesizer PathSynthesizer
	builder     *lane.Builder
}

// New returns a planner with an empty session.
func New(conf Config, opts Options, logger logging.Logger) (*Planner, error) {
	conf = conf.WithDefaults()
	if err := conf.Validate("planner"); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = logging.NewLogger("planner")
	}
	p := &Planner{
		logger:      logger,
		conf:        conf,
		engine:      opts.Engine,
		space:       opts.Space,
		voronoi:     opts.Voronoi,
		transforms:  opts.Transforms,
		visualizer:  opts.Visualizer,
		exporter:    opts.Exporter,
		lookups:     opts.Lookups,
		publisher:   opts.Publisher,
		clock:       opts.Clock,
		synthesizer: PathSynthesizer{NewSmoother: opts.NewSmoother},
	}
	if p.clock == nil {
		p.clock = clock.New()
	}
	if p.lookups == nil {
		p.lookups = motionplan.NewLookupTables(motionplan.DefaultLookupBuilder{Params: conf.lookupParams()})
	}
	if p.engine == nil {
		engine, err := NewEngine(conf)
		if err != nil {
			return nil, err
		}
		p.engine = engine
		p.ownsEngine = true
	}
	if p.space == nil {
		p.space = collision.NewSpace(p.lookups)
		p.ownsSpace = true
	}
	if p.voronoi == nil {
		p.voronoi = voronoi.New(logger.Sublogger("voronoi"))
	}
	if p.visualizer == nil {
		p.visualizer = noopVisualizer{}
	}
	if p.exporter == nil {
		p.exporter = noopExporter{}
	}
	if p.publisher == nil {
		p.publisher = noopPublisher{}
	}
	p.builder = p.newBuilder()
	if conf.WarmLookups {
		start := p.clock.Now()
		p.lookups.Warm()
		p.logger.Infow("lookup tables ready", "ms", p.clock.Since(start).Milliseconds())
	}
	return p, nil
}

func (p *Planner) newBuilder() *lane.Builder {
	b := lane.NewBuilder(p.clock)
	b.FrameID = p.conf.FrameID
	b.CruiseSpeed = lane.KmphToMps(p.conf.CruiseSpeedKph)
	b.ZSentinel = p.conf.ZSentinel
	return b
}

// Reconfigure applies a new config. The session is kept. When the vehicle or heading
// resolution changes, lookup tables owned by the planner are rebuilt lazily.
func (p *Planner) Reconfigure(conf Config) error {
	conf = conf.WithDefaults()
	if err := conf.Validate("planner"); err != nil {
		return err
	}
	engine, err := NewEngine(conf)
	if err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if conf.lookupParams() != p.conf.lookupParams() {
		p.lookups = motionplan.NewLookupTables(motionplan.DefaultLookupBuilder{Params: conf.lookupParams()})
		if p.ownsSpace {
			p.space = collision.NewSpace(p.lookups)
			if p.session.Grid != nil {
				p.space.UpdateGrid(p.session.Grid.Binary())
			}
		}
	}
	if p.ownsEngine {
		p.engine = engine
	}
	p.conf = conf
	p.builder = p.newBuilder()
	p.logger.Infow("planner reconfigured", "manual", conf.Manual, "headings", conf.Headings)
	return nil
}

// Session returns a copy of the current session.
func (p *Planner) Session() Session {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.session
}

// State reports the session state.
func (p *Planner) State() State {
	if p.planning.Load() {
		return StatePlanning
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.session.State()
}

// SetMap ingests a new occupancy grid. The obstacle grid is handed to the configuration space
// and the Voronoi map. In autonomous mode, when the vehicle transform is available the start
// is taken from it and a plan is attempted; its result is returned.
func (p *Planner) SetMap(ctx context.Context, grid *occupancy.Grid) (*lane.Collection, error) {
	if grid == nil {
		return nil, errors.New("nil map")
	}
	if err := grid.Validate(); err != nil {
		p.logger.Warnw("rejecting map", "error", err)
		return nil, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.logger.Debugw("received map", "width", grid.Width, "height", grid.Height, "cell_size", grid.CellSize)
	p.session = p.session.WithMap(grid)

	obstacles := grid.Binary()
	p.space.UpdateGrid(obstacles)
	p.voronoi.InitializeMap(grid.Width, grid.Height, obstacles)
	p.voronoi.Update()
	p.voronoi.Visualize()

	if p.conf.Manual || p.transforms == nil {
		return nil, nil
	}
	if !p.transforms.CanTransform(p.conf.FrameID, p.conf.BaseFrame) {
		p.logger.Debugw("vehicle transform unavailable", "target", p.conf.FrameID, "source", p.conf.BaseFrame)
		return nil, nil
	}
	start, err := p.transforms.Lookup(p.conf.FrameID, p.conf.BaseFrame)
	if err != nil {
		p.logger.Debugw("vehicle transform unavailable", "error", err)
		return nil, nil
	}
	p.session = p.session.WithDerivedStart(start)
	if !p.session.ValidStart {
		p.logger.Warnw("vehicle is outside the map", "start", start.String())
	}
	return p.plan(ctx)
}

// SetStart validates and caches a start pose. An accepted start is echoed to the publisher
// and, in manual mode, triggers a plan whose result is returned.
func (p *Planner) SetStart(ctx context.Context, start spatialmath.Pose) (*lane.Collection, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.logger.Infow("received start", "x", start.X, "y", start.Y, "deg", spatialmath.RadToDeg(start.Theta))

	session, ok := p.session.WithStart(start)
	if !ok {
		p.logger.Warnw("invalid start", "x", start.X, "y", start.Y, "deg", spatialmath.RadToDeg(start.Theta))
		return nil, nil
	}
	p.session = session

	var (
		lanes *lane.Collection
		err   error
	)
	if p.conf.Manual {
		lanes, err = p.plan(ctx)
	}
	echo := StampedPose{FrameID: p.conf.FrameID, Stamp: p.clock.Now(), Pose: start}
	if pubErr := p.publisher.PublishStart(echo); pubErr != nil {
		p.logger.Warnw("failed to publish start", "error", pubErr)
	}
	return lanes, err
}

// SetGoal validates and caches a goal pose. In manual mode an accepted goal triggers a plan
// whose result is returned.
func (p *Planner) SetGoal(ctx context.Context, goal spatialmath.Pose) (*lane.Collection, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.logger.Infow("received goal", "x", goal.X, "y", goal.Y, "deg", spatialmath.RadToDeg(goal.Theta))

	session, ok := p.session.WithGoal(goal)
	if !ok {
		p.logger.Warnw("invalid goal", "x", goal.X, "y", goal.Y, "deg", spatialmath.RadToDeg(goal.Theta))
		return nil, nil
	}
	p.session = session
	if p.conf.Manual {
		return p.plan(ctx)
	}
	return nil, nil
}

// Plan runs one plan cycle. Without a valid start, goal and map it does nothing and returns
// nil. When the search finds no path it returns nil and publishes nothing. Other failures,
// including a panicking search engine, are returned; the session stays ready either way.
func (p *Planner) Plan(ctx context.Context) (*lane.Collection, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.plan(ctx)
}

func (p *Planner) plan(ctx context.Context) (*lane.Collection, error) {
	if !p.session.Ready() {
		p.logger.Infow("missing goal or start",
			"valid_start", p.session.ValidStart, "valid_goal", p.session.ValidGoal, "has_map", p.session.Grid != nil)
		return nil, nil
	}
	ctx, span := trace.StartSpan(ctx, "planner::plan")
	defer span.End()
	p.planning.Store(true)
	defer p.planning.Store(false)
	started := p.clock.Now()

	grid := p.session.Grid
	start := motionplan.NodeFromPose(grid.WorldToGrid(p.session.Start))
	goal := motionplan.NodeFromPose(grid.WorldToGrid(p.session.Goal))
	p.logger.Debugw("planning", "start", start.Pose().String(), "goal", goal.Pose().String())

	p.visualizer.Clear()
	p.exporter.Clear()

	var nodes []motionplan.Node3D
	err := motionplan.WithNodeBuffers(grid.Width, grid.Height, p.conf.Headings, p.conf.MaxBufferNodes,
		func(bufs *motionplan.NodeBuffers) (err error) {
			defer func() {
				if r := recover(); r != nil {
					err = errors.Errorf("search engine panicked: %v", r)
				}
			}()
			end, err := p.engine.Search(ctx, &motionplan.SearchRequest{
				Start:      start,
				Goal:       goal,
				Buffers:    bufs,
				Width:      grid.Width,
				Height:     grid.Height,
				Space:      p.space,
				Lookups:    p.lookups,
				Visualizer: p.visualizer,
				Logger:     p.logger.Sublogger("search"),
			})
			if err != nil {
				return err
			}
			if end == nil {
				return motionplan.ErrNoSolution
			}
			nodes = p.synthesizer.Trace(end, grid)
			return nil
		})
	elapsed := p.clock.Since(started)
	switch {
	case errors.Is(err, motionplan.ErrNoSolution):
		p.logger.Warnw("no path found", "ms", elapsed.Milliseconds())
		return nil, nil
	case errors.Is(err, motionplan.ErrBufferTooLarge):
		p.logger.Errorw("cannot allocate search buffers", "error", err)
		return nil, err
	case err != nil:
		p.logger.Errorw("plan failed", "error", err)
		return nil, err
	}
	if len(nodes) == 0 {
		p.logger.Warnw("no path found", "ms", elapsed.Milliseconds())
		return nil, nil
	}

	p.exporter.UpdatePath(nodes)
	p.exporter.PublishPath()
	p.exporter.PublishPathNodes()
	p.exporter.PublishPathVehicles()

	poses := lo.Map(nodes, func(n motionplan.Node3D, _ int) spatialmath.Pose { return n.Pose() })
	lanes := p.builder.Build(poses)
	if err := p.publisher.PublishLanes(lanes); err != nil {
		return nil, errors.Wrap(err, "publishing lanes")
	}
	p.logger.Infow("plan published",
		"waypoints", len(lanes.Lanes[0].Waypoints),
		"length", fmt.Sprintf("%.2f", lanes.Lanes[0].Length()),
		"ms", elapsed.Milliseconds())
	return lanes, nil
}

type noopVisualizer struct{}

func (noopVisualizer) Clear() {}

func (noopVisualizer) PublishNode3D(*motionplan.Node3D) {}

type noopExporter struct{}

func (noopExporter) Clear() {}

func (noopExporter) UpdatePath([]motionplan.Node3D) {}

func (noopExporter) PublishPath() {}

func (noopExporter) PublishPathNodes() {}

func (noopExporter) PublishPathVehicles() {}

type noopPublisher struct{}

func (noopPublisher) PublishStart(StampedPose) error { return nil }

func (noopPublisher) PublishLanes(*lane.Collection) error { return nil }
