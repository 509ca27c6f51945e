package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"go.viam.com/test"
)

func TestObservedLevels(t *testing.T) {
	logger, logs := NewObservedTestLogger(t)

	logger.Debugw("debug line", "k", 1)
	logger.Infof("info %d", 2)
	logger.Warn("warn")
	test.That(t, logs.Len(), test.ShouldEqual, 3)

	logger.SetLevel(WARN)
	logger.Debug("dropped")
	logger.Info("dropped")
	logger.Errorw("kept", "err", "boom")
	test.That(t, logs.Len(), test.ShouldEqual, 4)
	test.That(t, logs.FilterMessage("dropped").Len(), test.ShouldEqual, 0)

	entry := logs.FilterMessage("kept").All()[0]
	test.That(t, entry.ContextMap()["err"], test.ShouldEqual, "boom")
}

func TestSubloggerSharesLevel(t *testing.T) {
	logger, logs := NewObservedTestLogger(t)
	sub := logger.Sublogger("planner")
	subsub := sub.Sublogger("search")

	logger.SetLevel(ERROR)
	subsub.Info("quiet")
	test.That(t, logs.Len(), test.ShouldEqual, 0)

	logger.SetLevel(DEBUG)
	subsub.Info("loud")
	test.That(t, logs.Len(), test.ShouldEqual, 1)
	test.That(t, logs.All()[0].LoggerName, test.ShouldEqual, "planner.search")
}

func TestUnpairedKey(t *testing.T) {
	logger, logs := NewObservedTestLogger(t)
	logger.Infow("odd", "lonely")
	test.That(t, logs.Len(), test.ShouldEqual, 1)
	_, ok := logs.All()[0].ContextMap()["lonely"]
	test.That(t, ok, test.ShouldBeTrue)
}

func TestLevelFromString(t *testing.T) {
	for name, want := range map[string]Level{"debug": DEBUG, "": INFO, "INFO": INFO, "warning": WARN, "Error": ERROR} {
		got, err := LevelFromString(name)
		test.That(t, err, test.ShouldBeNil)
		test.That(t, got, test.ShouldEqual, want)
	}
	_, err := LevelFromString("verbose")
	test.That(t, err, test.ShouldNotBeNil)
}

func TestWriterAppender(t *testing.T) {
	var buf bytes.Buffer
	logger := NewBlankLogger("laneplanner")
	logger.AddAppender(NewWriterAppender(&buf))
	logger.SetLevel(INFO)

	logger.Debug("hidden")
	logger.Sublogger("planner").Infow("plan published", "waypoints", 3)
	test.That(t, buf.String(), test.ShouldNotContainSubstring, "hidden")
	test.That(t, buf.String(), test.ShouldContainSubstring, "laneplanner.planner")
	test.That(t, buf.String(), test.ShouldContainSubstring, "waypoints")
}

func TestFileAppender(t *testing.T) {
	path := filepath.Join(t.TempDir(), "laneplanner.log")
	logger := NewBlankLogger("laneplanner")
	logger.AddAppender(NewFileAppender(path, 1, 1))

	logger.Warnw("invalid goal", "x", 100)
	test.That(t, logger.Sync(), test.ShouldBeNil)

	data, err := os.ReadFile(path)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, string(data), test.ShouldContainSubstring, "WARN")
	test.That(t, string(data), test.ShouldContainSubstring, "invalid goal")
}

func TestConstructorLevels(t *testing.T) {
	test.That(t, NewLogger("info").GetLevel(), test.ShouldEqual, INFO)
	test.That(t, NewDebugLogger("debug").GetLevel(), test.ShouldEqual, DEBUG)
	test.That(t, NewBlankLogger("blank").GetLevel(), test.ShouldEqual, DEBUG)
}
