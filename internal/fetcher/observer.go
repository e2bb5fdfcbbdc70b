package fetcher

import (
	"fmt"
	"sync"

	"github.com/w0lfzk1n/yt-dlp-WebGui/internal/progress"
	"github.com/w0lfzk1n/yt-dlp-WebGui/internal/provider"
)

// busObserver translates the provider's typed callbacks into progress-bus
// events and keeps the converting heartbeat alive while transcoding runs.
type busObserver struct {
	bus  *progress.Bus
	sess *session

	mu       sync.Mutex
	convStop func()
}

func newBusObserver(bus *progress.Bus, sess *session) *busObserver {
	return &busObserver{bus: bus, sess: sess}
}

func (o *busObserver) OnInfo(msg string) {
	o.bus.Publish(msg)
}

func (o *busObserver) OnProgress(p provider.Progress) {
	// a progress sample means downloading resumed, so the transcode phase
	// (and its heartbeat) is over
	o.stopConvertingHeartbeat()

	if !o.sess.observePercent(p.Percent) {
		return
	}
	done, pending := o.sess.counters()
	o.bus.Publishf("Download [%2d/%-2d] | %-6s of %-6s | %-6s", done, pending, p.Percent, p.Total, p.Rate)
}

func (o *busObserver) OnConverting() {
	o.sess.itemDone()
	o.bus.PublishFramed("Download of media finished. Start Converting...<br>⚠️ This could take a while, depending on size...")

	o.mu.Lock()
	defer o.mu.Unlock()
	if o.convStop == nil {
		o.convStop = progress.StartHeartbeat(o.bus, "working")
	}
}

func (o *busObserver) OnFailed(msg string) {
	o.bus.Publishf("Error: %s", msg)
}

// stopConvertingHeartbeat joins the heartbeat goroutine before returning,
// so no heartbeat event can land after the caller's next real event.
func (o *busObserver) stopConvertingHeartbeat() {
	o.mu.Lock()
	stop := o.convStop
	o.convStop = nil
	o.mu.Unlock()
	if stop != nil {
		stop()
	}
}

var _ provider.Observer = (*busObserver)(nil)

func progressBanner(index, total int, url string) string {
	return fmt.Sprintf("🔹 [%d/%d] Starting download for:<br>%s", index, total, url)
}
