package progress

import (
	"fmt"
	"time"
)

const (
	heartbeatGrace    = 5 * time.Second
	heartbeatInterval = 10 * time.Second
)

// StartHeartbeat publishes a periodic "still working" event for a phase that
// produces no progress of its own. The first beat only fires once the phase
// has been silent for more than the grace period, then every interval after
// that. The returned stop function cancels the emitter and waits for it to
// finish, so no heartbeat can interleave with the caller's next event.
func StartHeartbeat(bus *Bus, verb string) (stop func()) {
	done := make(chan struct{})
	finished := make(chan struct{})
	start := time.Now()

	go func() {
		defer close(finished)
		timer := time.NewTimer(heartbeatGrace)
		defer timer.Stop()
		for {
			select {
			case <-done:
				return
			case <-timer.C:
				elapsed := int(time.Since(start).Seconds())
				bus.PublishHeartbeat(fmt.Sprintf("⏳ Still %s... %ds elapsed", verb, elapsed))
				timer.Reset(heartbeatInterval)
			}
		}
	}()

	return func() {
		close(done)
		<-finished
	}
}
