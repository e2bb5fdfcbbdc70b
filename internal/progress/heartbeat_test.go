package progress

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestHeartbeatSilentDuringGracePeriod(t *testing.T) {
	bus := newQuietBus()

	stop := StartHeartbeat(bus, "retrieving")
	time.Sleep(50 * time.Millisecond)
	stop()

	_, ok := bus.Next(10 * time.Millisecond)
	assert.False(t, ok, "no heartbeat should fire before the grace period")
}

func TestHeartbeatStopJoins(t *testing.T) {
	bus := newQuietBus()

	stop := StartHeartbeat(bus, "working")
	stop()

	// after stop returns, no further events may appear
	bus.Publish("next phase")
	ev, ok := bus.Next(time.Second)
	assert.True(t, ok)
	assert.Equal(t, "next phase", ev.Text)

	_, ok = bus.Next(20 * time.Millisecond)
	assert.False(t, ok)
}

func TestHeartbeatStopIsIdempotentAcrossPhases(t *testing.T) {
	bus := newQuietBus()

	for i := 0; i < 3; i++ {
		stop := StartHeartbeat(bus, "working")
		stop()
	}

	_, ok := bus.Next(10 * time.Millisecond)
	assert.False(t, ok)
}
