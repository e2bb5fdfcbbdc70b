package progress

import (
	"io"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newQuietBus() *Bus {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return NewBus(logger)
}

func TestPublishOrderPreserved(t *testing.T) {
	bus := newQuietBus()

	bus.Publish("first")
	bus.PublishFramed("second")
	bus.Publishf("third %d", 3)

	for _, want := range []string{"first", "second", "third 3"} {
		ev, ok := bus.Next(time.Second)
		require.True(t, ok)
		assert.Equal(t, want, ev.Text)
	}
}

func TestNextTimesOutWhenIdle(t *testing.T) {
	bus := newQuietBus()
	_, ok := bus.Next(10 * time.Millisecond)
	assert.False(t, ok)
}

func TestRenderedFraming(t *testing.T) {
	ev := Event{Time: time.Date(2025, 3, 1, 12, 30, 45, 0, time.UTC), Text: "milestone", Framed: true}
	rendered := ev.Rendered()

	assert.True(t, strings.HasPrefix(rendered, frameRule+"<br>"))
	assert.True(t, strings.HasSuffix(rendered, "<br>"+frameRule))
	assert.Contains(t, rendered, "[2025-03-01 12:30:45] milestone")
}

func TestRenderedPlain(t *testing.T) {
	ev := Event{Time: time.Date(2025, 3, 1, 12, 30, 45, 0, time.UTC), Text: "routine"}
	assert.Equal(t, "[2025-03-01 12:30:45] routine", ev.Rendered())
}

func TestHeartbeatMarked(t *testing.T) {
	bus := newQuietBus()
	bus.PublishHeartbeat("still here")

	ev, ok := bus.Next(time.Second)
	require.True(t, ok)
	assert.True(t, ev.Heartbeat)
	assert.False(t, ev.Framed)
}

func TestAnsiEscapesStripped(t *testing.T) {
	bus := newQuietBus()
	bus.Publish("\x1b[32mgreen\x1b[0m text")

	ev, ok := bus.Next(time.Second)
	require.True(t, ok)
	assert.Equal(t, "green text", ev.Text)
}

func TestPublishNeverBlocksProducer(t *testing.T) {
	bus := newQuietBus()

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 3000; i++ {
			bus.Publish("flood")
		}
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("publish blocked with no consumer")
	}
}
