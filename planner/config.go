package planner

import (
	"github.com/go-viper/mapstructure/v2"
	"github.com/pkg/errors"
	"go.viam.com/utils"

	"go.viam.com/laneplanner/lane"
	"go.viam.com/laneplanner/motionplan"
	"go.viam.com/laneplanner/motionplan/gridsearch"
	"go.viam.com/laneplanner/referenceframe"
)

// Defaults for a zero Config.
const (
	DefaultHeadings      = 72
	DefaultTurningRadius = 6.0
	DefaultVehicleLength = 2.65
	DefaultVehicleWidth  = 1.75
	EngineGrid           = "grid"
)

// Topics names the bus topics the planner reads and writes.
type Topics struct {
	Map        string `json:"map"`
	Goal       string `json:"goal"`
	Start      string `json:"start"`
	Transforms string `json:"transforms"`
	StartEcho  string `json:"start_echo"`
	Lanes      string `json:"lanes"`
}

// DefaultTopics returns the standard topic names. The map topic depends on the mode.
func DefaultTopics(manual bool) Topics {
	t := Topics{
		Map:        "/occ_map",
		Goal:       "/move_base_simple/goal",
		Start:      "/astar/initialpose",
		Transforms: "/tf",
		StartEcho:  "/move_base_simple/start",
		Lanes:      "/based/lane_waypoints_raw",
	}
	if manual {
		t.Map = "/map"
	}
	return t
}

// VehicleConfig gives the vehicle footprint in grid cells.
type VehicleConfig struct {
	Length float64 `json:"length"`
	Width  float64 `json:"width"`
}

// Config describes how to configure the planner.
type Config struct {
	// Manual plans whenever a start or goal is accepted. Otherwise the planner plans on each
	// map update, taking the start from the vehicle transform.
	Manual         bool          `json:"manual"`
	Headings       int           `json:"headings,omitempty"`
	CruiseSpeedKph float64       `json:"cruise_speed_kph,omitempty"`
	ZSentinel      float64       `json:"z_sentinel,omitempty"`
	FrameID        string        `json:"frame_id,omitempty"`
	BaseFrame      string        `json:"base_frame,omitempty"`
	MaxBufferNodes int           `json:"max_buffer_nodes,omitempty"`
	Vehicle        VehicleConfig `json:"vehicle"`
	TurningRadius  float64       `json:"turning_radius,omitempty"`
	WarmLookups    bool          `json:"warm_lookups"`

	Engine           string                 `json:"engine,omitempty"`
	EngineAttributes map[string]interface{} `json:"engine_attributes,omitempty"`

	Topics Topics `json:"topics"`
}

// Validate ensures all parts of the config are valid.
func (conf *Config) Validate(path string) error {
	if conf.Headings < 0 {
		return utils.NewConfigValidationError(path, errors.New("headings must not be negative"))
	}
	if conf.CruiseSpeedKph < 0 {
		return utils.NewConfigValidationError(path, errors.New("cruise_speed_kph must not be negative"))
	}
	if conf.MaxBufferNodes < 0 {
		return utils.NewConfigValidationError(path, errors.New("max_buffer_nodes must not be negative"))
	}
	if conf.Vehicle.Length < 0 || conf.Vehicle.Width < 0 || conf.TurningRadius < 0 {
		return utils.NewConfigValidationError(path, errors.New("vehicle dimensions must not be negative"))
	}
	if conf.Engine != "" && conf.Engine != EngineGrid {
		return utils.NewConfigValidationError(path, errors.Errorf("unknown engine %q", conf.Engine))
	}
	if _, err := decodeGridAttributes(conf.EngineAttributes); err != nil {
		return utils.NewConfigValidationError(path, err)
	}
	return nil
}

// WithDefaults returns a copy of the config with every unset field filled in.
func (conf Config) WithDefaults() Config {
	if conf.Headings == 0 {
		conf.Headings = DefaultHeadings
	}
	if conf.CruiseSpeedKph == 0 {
		conf.CruiseSpeedKph = lane.DefaultCruiseSpeedKph
	}
	if conf.ZSentinel == 0 {
		conf.ZSentinel = lane.DefaultZSentinel
	}
	if conf.FrameID == "" {
		conf.FrameID = referenceframe.MapFrame
	}
	if conf.BaseFrame == "" {
		conf.BaseFrame = referenceframe.BaseFrame
	}
	if conf.MaxBufferNodes == 0 {
		conf.MaxBufferNodes = motionplan.DefaultMaxBufferNodes
	}
	if conf.Vehicle.Length == 0 {
		conf.Vehicle.Length = DefaultVehicleLength
	}
	if conf.Vehicle.Width == 0 {
		conf.Vehicle.Width = DefaultVehicleWidth
	}
	if conf.TurningRadius == 0 {
		conf.TurningRadius = DefaultTurningRadius
	}
	if conf.Engine == "" {
		conf.Engine = EngineGrid
	}
	defaults := DefaultTopics(conf.Manual)
	fill := func(v *string, def string) {
		if *v == "" {
			*v = def
		}
	}
	fill(&conf.Topics.Map, defaults.Map)
	fill(&conf.Topics.Goal, defaults.Goal)
	fill(&conf.Topics.Start, defaults.Start)
	fill(&conf.Topics.Transforms, defaults.Transforms)
	fill(&conf.Topics.StartEcho, defaults.StartEcho)
	fill(&conf.Topics.Lanes, defaults.Lanes)
	return conf
}

// GridAttributes are the engine attributes understood by the grid engine.
type GridAttributes struct {
	CheckFootprint bool `json:"check_footprint"`
}

func decodeGridAttributes(attrs map[string]interface{}) (GridAttributes, error) {
	var out GridAttributes
	if len(attrs) == 0 {
		return out, nil
	}
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:     "json",
		Result:      &out,
		ErrorUnused: true,
	})
	if err != nil {
		return out, err
	}
	if err := decoder.Decode(attrs); err != nil {
		return out, errors.Wrap(err, "engine_attributes")
	}
	return out, nil
}

// NewEngine builds the search engine named in the config.
func NewEngine(conf Config) (motionplan.SearchEngine, error) {
	switch conf.Engine {
	case "", EngineGrid:
		attrs, err := decodeGridAttributes(conf.EngineAttributes)
		if err != nil {
			return nil, err
		}
		return &gridsearch.Engine{CheckFootprint: attrs.CheckFootprint}, nil
	default:
		return nil, errors.Errorf("unknown engine %q", conf.Engine)
	}
}

func (conf Config) lookupParams() motionplan.LookupParams {
	return motionplan.LookupParams{
		Headings:      conf.Headings,
		TurningRadius: conf.TurningRadius,
		VehicleLength: conf.Vehicle.Length,
		VehicleWidth:  conf.Vehicle.Width,
	}
}
