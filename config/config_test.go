package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"go.viam.com/test"

	"go.viam.com/laneplanner/logging"
	"go.viam.com/laneplanner/planner"
	"go.viam.com/laneplanner/testutils"
)

func TestRead(t *testing.T) {
	t.Setenv("LANEPLANNER_TEST_DB", "lanes_db")
	path := testutils.WriteTempFile(t, "laneplanner.json", []byte(`{
		"log_level": "debug",
		"planner": {"manual": true, "cruise_speed_kph": 20},
		"store": {"kind": "mongodb", "uri": "mongodb://localhost", "database": "${LANEPLANNER_TEST_DB}"}
	}`))

	cfg, err := Read(path)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, cfg.ConfigFilePath, test.ShouldEqual, path)
	test.That(t, cfg.Level(), test.ShouldEqual, logging.DEBUG)
	test.That(t, cfg.Store.Database, test.ShouldEqual, "lanes_db")
	test.That(t, cfg.Planner.Manual, test.ShouldBeTrue)
	test.That(t, cfg.Planner.CruiseSpeedKph, test.ShouldEqual, 20.)
	test.That(t, cfg.Planner.Headings, test.ShouldEqual, planner.DefaultHeadings)
	test.That(t, cfg.Planner.Topics.Map, test.ShouldEqual, "/map")
	test.That(t, cfg.Visualization.Topics.Path, test.ShouldEqual, "/path")
}

func TestReadMissingFile(t *testing.T) {
	_, err := Read(filepath.Join(t.TempDir(), "missing.json"))
	test.That(t, err, test.ShouldNotBeNil)
}

func TestFromReader(t *testing.T) {
	t.Run("empty object gets defaults", func(t *testing.T) {
		cfg, err := FromReader("", strings.NewReader(`{}`))
		test.That(t, err, test.ShouldBeNil)
		test.That(t, cfg.Store.Kind, test.ShouldEqual, StoreMemory)
		test.That(t, cfg.Level(), test.ShouldEqual, logging.INFO)
		test.That(t, cfg.Planner.Topics.Map, test.ShouldEqual, "/occ_map")
	})

	t.Run("bad json", func(t *testing.T) {
		_, err := FromReader("", strings.NewReader(`{"planner":`))
		test.That(t, err, test.ShouldNotBeNil)
		test.That(t, err.Error(), test.ShouldContainSubstring, "failed to decode Config from json")
	})

	t.Run("unknown field", func(t *testing.T) {
		_, err := FromReader("", strings.NewReader(`{"planer": {}}`))
		test.That(t, err, test.ShouldNotBeNil)
	})

	t.Run("bad log level", func(t *testing.T) {
		_, err := FromReader("", strings.NewReader(`{"log_level": "loud"}`))
		test.That(t, err, test.ShouldNotBeNil)
		test.That(t, err.Error(), test.ShouldContainSubstring, "log_level")
	})

	t.Run("mongodb without uri", func(t *testing.T) {
		_, err := FromReader("", strings.NewReader(`{"store": {"kind": "mongodb"}}`))
		test.That(t, err, test.ShouldNotBeNil)
		test.That(t, err.Error(), test.ShouldContainSubstring, "uri")
	})

	t.Run("sqlite", func(t *testing.T) {
		cfg, err := FromReader("", strings.NewReader(`{"store": {"kind": "sqlite", "path": "lanes.db"}}`))
		test.That(t, err, test.ShouldBeNil)
		test.That(t, cfg.Store.Persistent(), test.ShouldBeTrue)

		_, err = FromReader("", strings.NewReader(`{"store": {"kind": "sqlite"}}`))
		test.That(t, err, test.ShouldNotBeNil)
		test.That(t, err.Error(), test.ShouldContainSubstring, "path")
	})

	t.Run("log file", func(t *testing.T) {
		cfg, err := FromReader("", strings.NewReader(`{"log_file": {"path": "/tmp/laneplanner.log"}}`))
		test.That(t, err, test.ShouldBeNil)
		test.That(t, cfg.LogFile.MaxSizeMB, test.ShouldEqual, 100)

		_, err = FromReader("", strings.NewReader(`{"log_file": {"max_backups": 2}}`))
		test.That(t, err, test.ShouldNotBeNil)
		test.That(t, err.Error(), test.ShouldContainSubstring, "path")
	})

	t.Run("unknown store", func(t *testing.T) {
		_, err := FromReader("", strings.NewReader(`{"store": {"kind": "redis"}}`))
		test.That(t, err, test.ShouldNotBeNil)
	})

	t.Run("invalid planner", func(t *testing.T) {
		_, err := FromReader("", strings.NewReader(`{"planner": {"headings": -1}}`))
		test.That(t, err, test.ShouldNotBeNil)
		test.That(t, err.Error(), test.ShouldContainSubstring, "planner")
	})
}

func TestWatch(t *testing.T) {
	logger := logging.NewTestLogger(t)
	path := testutils.WriteTempFile(t, "laneplanner.json", []byte(`{"log_level": "info"}`))

	changes := make(chan *Config, 4)
	w, err := Watch(path, 20*time.Millisecond, logger, func(cfg *Config) {
		changes <- cfg
	})
	test.That(t, err, test.ShouldBeNil)
	defer func() {
		test.That(t, w.Close(), test.ShouldBeNil)
	}()

	test.That(t, os.WriteFile(path, []byte(`{"log_level": "not a level"}`), 0o600), test.ShouldBeNil)
	test.That(t, os.WriteFile(path, []byte(`{"log_level": "warn"}`), 0o600), test.ShouldBeNil)

	select {
	case cfg := <-changes:
		test.That(t, cfg.Level(), test.ShouldEqual, logging.WARN)
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for config change")
	}
}

func TestSchema(t *testing.T) {
	schema := Schema()
	test.That(t, schema, test.ShouldNotBeNil)
	for _, field := range []string{"log_level", "planner", "store", "visualization"} {
		_, ok := schema.Properties.Get(field)
		test.That(t, ok, test.ShouldBeTrue)
	}
	_, ok := schema.Properties.Get("ConfigFilePath")
	test.That(t, ok, test.ShouldBeFalse)
}
