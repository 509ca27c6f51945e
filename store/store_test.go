package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.viam.com/test"

	"go.viam.com/laneplanner/bus"
	"go.viam.com/laneplanner/lane"
	"go.viam.com/laneplanner/logging"
	"go.viam.com/laneplanner/spatialmath"
	"go.viam.com/laneplanner/testutils"
)

func record(at int64) Record {
	return Record{ID: uuid.NewString(), PublishedAt: time.Unix(at, 0).UTC()}
}

func testStore(t *testing.T, s Store) {
	t.Helper()
	ctx := context.Background()
	_, err := s.Latest(ctx)
	test.That(t, errors.Is(err, ErrNoLanes), test.ShouldBeTrue)

	a, b, c := record(10), record(30), record(20)
	for _, r := range []Record{a, b, c} {
		test.That(t, s.Insert(ctx, r), test.ShouldBeNil)
	}
	latest, err := s.Latest(ctx)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, latest.ID, test.ShouldEqual, b.ID)

	recs, err := s.List(ctx, 2)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, recs, test.ShouldHaveLength, 2)
	test.That(t, recs[0].ID, test.ShouldEqual, b.ID)
	test.That(t, recs[1].ID, test.ShouldEqual, c.ID)

	recs, err = s.List(ctx, 0)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, recs, test.ShouldHaveLength, 3)
}

func TestMemoryStore(t *testing.T) {
	testStore(t, NewMemoryStore(0))
}

func TestMemoryStoreCapacity(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore(2)
	for i := int64(0); i < 5; i++ {
		test.That(t, s.Insert(ctx, record(i)), test.ShouldBeNil)
	}
	recs, err := s.List(ctx, 0)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, recs, test.ShouldHaveLength, 2)
	test.That(t, recs[0].PublishedAt.Unix(), test.ShouldEqual, int64(4))
	test.That(t, s.Close(ctx), test.ShouldBeNil)
}

func TestMongoStore(t *testing.T) {
	uri := testutils.BackingMongoDBURI(t)
	ctx := context.Background()
	db, coll := testutils.NewMongoDBNamespace()
	s, err := NewMongoStore(ctx, uri, db, coll)
	test.That(t, err, test.ShouldBeNil)
	defer func() {
		test.That(t, s.Drop(ctx), test.ShouldBeNil)
		test.That(t, s.Close(ctx), test.ShouldBeNil)
	}()
	testStore(t, s)
}

func TestSQLiteStore(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "lanes.db")
	s, err := NewSQLiteStore(path)
	test.That(t, err, test.ShouldBeNil)
	testStore(t, s)

	c := lane.NewBuilder(nil).Build([]spatialmath.Pose{spatialmath.NewPose(3, 4, 0), spatialmath.NewPose(0, 0, 0)})
	rec := NewRecord(c, time.Unix(100, 0).UTC())
	test.That(t, s.Insert(ctx, rec), test.ShouldBeNil)
	test.That(t, s.Insert(ctx, rec), test.ShouldNotBeNil)
	test.That(t, s.Close(ctx), test.ShouldBeNil)

	reopened, err := NewSQLiteStore(path)
	test.That(t, err, test.ShouldBeNil)
	defer func() { test.That(t, reopened.Close(ctx), test.ShouldBeNil) }()
	latest, err := reopened.Latest(ctx)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, latest.ID, test.ShouldEqual, rec.ID)
	test.That(t, latest.PublishedAt.Equal(rec.PublishedAt), test.ShouldBeTrue)
	test.That(t, latest.Lanes, test.ShouldHaveLength, 1)
	test.That(t, latest.Lanes[0].Waypoints, test.ShouldResemble, c.Lanes[0].Waypoints)
	test.That(t, latest.Lanes[0].Length(), test.ShouldAlmostEqual, 5.0)
}

func TestRecorder(t *testing.T) {
	b := bus.New(nil)
	s := NewMemoryStore(0)
	r, err := NewRecorder(b, "/lanes", s, logging.NewTestLogger(t))
	test.That(t, err, test.ShouldBeNil)

	c := lane.NewBuilder(nil).Build([]spatialmath.Pose{spatialmath.NewPose(1, 0, 0), spatialmath.NewPose(0, 0, 0)})
	test.That(t, b.Publish("/lanes", "not lanes"), test.ShouldBeNil)
	test.That(t, b.Publish("/lanes", c), test.ShouldBeNil)

	var latest Record
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if latest, err = s.Latest(context.Background()); err == nil {
			break
		}
		time.Sleep(time.Millisecond)
	}
	test.That(t, err, test.ShouldBeNil)
	test.That(t, latest.ID, test.ShouldEqual, c.ID.String())
	test.That(t, latest.Lanes[0].Waypoints, test.ShouldHaveLength, 2)

	test.That(t, r.Close(), test.ShouldBeNil)
	test.That(t, b.Stats().Subscribers, test.ShouldBeEmpty)
}
