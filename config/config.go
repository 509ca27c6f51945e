// Package config reads and watches the laneplanner configuration file.
package config

import (
	"github.com/invopop/jsonschema"
	"github.com/pkg/errors"
	"go.viam.com/utils"

	"go.viam.com/laneplanner/logging"
	"go.viam.com/laneplanner/planner"
	"go.viam.com/laneplanner/visualization"
)

// Store kinds.
const (
	StoreMemory  = "memory"
	StoreMongoDB = "mongodb"
	StoreSQLite  = "sqlite"
)

// StoreConfig selects where published lanes are recorded.
type StoreConfig struct {
	Kind       string `json:"kind,omitempty"`
	URI        string `json:"uri,omitempty"`
	Database   string `json:"database,omitempty"`
	Collection string `json:"collection,omitempty"`
	Path       string `json:"path,omitempty"`
	Capacity   int    `json:"capacity,omitempty"`
}

// Validate ensures all parts of the config are valid.
func (c *StoreConfig) Validate(path string) error {
	switch c.Kind {
	case "", StoreMemory:
	case StoreMongoDB:
		if c.URI == "" {
			return utils.NewConfigValidationFieldRequiredError(path, "uri")
		}
	case StoreSQLite:
		if c.Path == "" {
			return utils.NewConfigValidationFieldRequiredError(path, "path")
		}
	default:
		return utils.NewConfigValidationError(path, errors.Errorf("unknown store kind %q", c.Kind))
	}
	if c.Capacity < 0 {
		return utils.NewConfigValidationError(path, errors.New("capacity must not be negative"))
	}
	return nil
}

// Persistent reports whether records outlive the process.
func (c StoreConfig) Persistent() bool {
	return c.Kind == StoreMongoDB || c.Kind == StoreSQLite
}

// LogFileConfig adds a rotated log file next to the console output.
type LogFileConfig struct {
	Path       string `json:"path"`
	MaxSizeMB  int    `json:"max_size_mb,omitempty"`
	MaxBackups int    `json:"max_backups,omitempty"`
}

// Validate ensures all parts of the config are valid.
func (c *LogFileConfig) Validate(path string) error {
	if c.Path == "" {
		return utils.NewConfigValidationFieldRequiredError(path, "path")
	}
	if c.MaxSizeMB < 0 || c.MaxBackups < 0 {
		return utils.NewConfigValidationError(path, errors.New("rotation limits must not be negative"))
	}
	return nil
}

// VisualizationConfig controls the visualization topics.
type VisualizationConfig struct {
	Enabled bool                 `json:"enabled"`
	Topics  visualization.Topics `json:"topics"`
}

// Config is the whole laneplanner configuration.
type Config struct {
	ConfigFilePath string `json:"-"`

	LogLevel      string              `json:"log_level,omitempty"`
	LogFile       *LogFileConfig      `json:"log_file,omitempty"`
	Planner       planner.Config      `json:"planner"`
	Visualization VisualizationConfig `json:"visualization"`
	Store         StoreConfig         `json:"store"`
}

// Validate ensures all parts of the config are valid.
func (c *Config) Validate() error {
	if c.LogLevel != "" {
		if _, err := logging.LevelFromString(c.LogLevel); err != nil {
			return utils.NewConfigValidationError("log_level", err)
		}
	}
	if c.LogFile != nil {
		if err := c.LogFile.Validate("log_file"); err != nil {
			return err
		}
	}
	if err := c.Planner.Validate("planner"); err != nil {
		return err
	}
	return c.Store.Validate("store")
}

// Level returns the configured log level, INFO when unset.
func (c *Config) Level() logging.Level {
	level, err := logging.LevelFromString(c.LogLevel)
	if err != nil {
		return logging.INFO
	}
	return level
}

// WithDefaults returns a copy with every unset field filled in.
func (c Config) WithDefaults() Config {
	c.Planner = c.Planner.WithDefaults()
	if c.LogFile != nil {
		logFile := *c.LogFile
		if logFile.MaxSizeMB == 0 {
			logFile.MaxSizeMB = 100
		}
		c.LogFile = &logFile
	}
	if c.Store.Kind == "" {
		c.Store.Kind = StoreMemory
	}
	defaults := visualization.DefaultTopics()
	if c.Visualization.Topics.Path == "" {
		c.Visualization.Topics.Path = defaults.Path
	}
	if c.Visualization.Topics.PathNodes == "" {
		c.Visualization.Topics.PathNodes = defaults.PathNodes
	}
	if c.Visualization.Topics.PathVehicles == "" {
		c.Visualization.Topics.PathVehicles = defaults.PathVehicles
	}
	if c.Visualization.Topics.Nodes3D == "" {
		c.Visualization.Topics.Nodes3D = defaults.Nodes3D
	}
	return c
}

// Schema returns the JSON schema of the configuration file.
func Schema() *jsonschema.Schema {
	r := jsonschema.Reflector{DoNotReference: true}
	return r.Reflect(&Config{})
}
