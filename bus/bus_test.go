package bus

import (
	"sync"
	"testing"

	"github.com/benbjohnson/clock"
	"github.com/pkg/errors"
	"go.viam.com/test"
)

func TestSubscribeErrors(t *testing.T) {
	b := New(nil)
	ch := make(chan Message, 1)
	test.That(t, b.Subscribe("a", "/map", ch, DropNew), test.ShouldBeNil)

	err := b.Subscribe("a", "/map", ch, DropNew)
	test.That(t, errors.Is(err, ErrSubscriberExists), test.ShouldBeTrue)
	test.That(t, b.Subscribe("b", "/map", nil, DropNew), test.ShouldEqual, ErrNilChannel)

	test.That(t, b.Unsubscribe("a"), test.ShouldBeNil)
	err = b.Unsubscribe("a")
	test.That(t, errors.Is(err, ErrSubscriberNotFound), test.ShouldBeTrue)

	test.That(t, b.Close(), test.ShouldBeNil)
	test.That(t, b.Close(), test.ShouldBeNil)
	test.That(t, b.Subscribe("c", "/map", ch, DropNew), test.ShouldEqual, ErrBusClosed)
	test.That(t, b.Publish("/map", 1), test.ShouldEqual, ErrBusClosed)
}

func TestPublishRoutesByTopic(t *testing.T) {
	clk := clock.NewMock()
	b := New(clk)
	maps := make(chan Message, 2)
	goals := make(chan Message, 2)
	test.That(t, b.Subscribe("maps", "/map", maps, DropNew), test.ShouldBeNil)
	test.That(t, b.Subscribe("goals", "/goal", goals, DropNew), test.ShouldBeNil)

	test.That(t, b.Publish("/map", "m1"), test.ShouldBeNil)
	test.That(t, b.Publish("/goal", "g1"), test.ShouldBeNil)

	msg := <-maps
	test.That(t, msg.Payload, test.ShouldEqual, "m1")
	test.That(t, msg.Topic, test.ShouldEqual, "/map")
	test.That(t, msg.Stamp, test.ShouldEqual, clk.Now())
	test.That(t, (<-goals).Payload, test.ShouldEqual, "g1")
	test.That(t, maps, test.ShouldHaveLength, 0)
}

func TestDropNew(t *testing.T) {
	b := New(nil)
	ch := make(chan Message, 1)
	test.That(t, b.Subscribe("slow", "/t", ch, DropNew), test.ShouldBeNil)
	for i := 0; i < 3; i++ {
		test.That(t, b.Publish("/t", i), test.ShouldBeNil)
	}
	test.That(t, (<-ch).Payload, test.ShouldEqual, 0)

	stats := b.Stats()
	test.That(t, stats.TotalPublished, test.ShouldEqual, uint64(3))
	test.That(t, stats.Subscribers["slow"].Sent, test.ShouldEqual, uint64(1))
	test.That(t, stats.Subscribers["slow"].Dropped, test.ShouldEqual, uint64(2))
}

func TestSubscribeLatest(t *testing.T) {
	b := New(nil)
	ch, err := b.SubscribeLatest("latest", "/t")
	test.That(t, err, test.ShouldBeNil)
	for i := 0; i < 5; i++ {
		test.That(t, b.Publish("/t", i), test.ShouldBeNil)
	}
	test.That(t, (<-ch).Payload, test.ShouldEqual, 4)
	test.That(t, ch, test.ShouldHaveLength, 0)

	stats := b.Stats()
	test.That(t, stats.TotalSent, test.ShouldEqual, uint64(5))
	test.That(t, stats.TotalDropped, test.ShouldEqual, uint64(4))
}

func TestLatched(t *testing.T) {
	b := New(nil)
	b.Latch("/lanes")
	test.That(t, b.Publish("/lanes", "first"), test.ShouldBeNil)
	test.That(t, b.Publish("/lanes", "second"), test.ShouldBeNil)
	test.That(t, b.Publish("/other", "x"), test.ShouldBeNil)

	late := make(chan Message, 1)
	test.That(t, b.Subscribe("late", "/lanes", late, DropNew), test.ShouldBeNil)
	test.That(t, (<-late).Payload, test.ShouldEqual, "second")

	msg, ok := b.Last("/lanes")
	test.That(t, ok, test.ShouldBeTrue)
	test.That(t, msg.Payload, test.ShouldEqual, "second")
	_, ok = b.Last("/other")
	test.That(t, ok, test.ShouldBeFalse)
}

func TestConcurrentPublish(t *testing.T) {
	b := New(nil)
	ch, err := b.SubscribeLatest("latest", "/t")
	test.That(t, err, test.ShouldBeNil)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				test.That(t, b.Publish("/t", i*100+j), test.ShouldBeNil)
			}
		}(i)
	}
	wg.Wait()
	test.That(t, ch, test.ShouldHaveLength, 1)
	test.That(t, b.Stats().TotalPublished, test.ShouldEqual, uint64(800))
}
