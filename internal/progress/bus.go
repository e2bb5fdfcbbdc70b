package progress

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

const frameRule = "--------------------"

var ansiEscapes = regexp.MustCompile(`\x1b\[[0-9;]*m`)

// Event is one entry of the user-visible activity log. Events are consumed
// at most once by the live stream; there is no replay for late listeners.
type Event struct {
	Time      time.Time
	Text      string
	Heartbeat bool
	Framed    bool
}

// Rendered returns the event text with its timestamp prefix and, for framed
// events, the surrounding separator rules. Line breaks use <br> because the
// stream feeds a browser-side log pane.
func (e Event) Rendered() string {
	msg := fmt.Sprintf("[%s] %s", e.Time.Format("2006-01-02 15:04:05"), e.Text)
	if e.Framed {
		msg = frameRule + "<br>" + msg + "<br>" + frameRule
	}
	return msg
}

// Bus is the single ordered channel of status events connecting background
// workers to the streaming transport. Publishing never blocks the producer:
// if no consumer drains fast enough the oldest buffered events are dropped.
type Bus struct {
	events chan Event
	log    *logrus.Logger
}

func NewBus(log *logrus.Logger) *Bus {
	if log == nil {
		log = logrus.New()
	}
	return &Bus{
		events: make(chan Event, 1024),
		log:    log,
	}
}

// Publish emits a plain event.
func (b *Bus) Publish(text string) {
	b.emit(Event{Text: text})
}

// Publishf emits a plain event with fmt formatting.
func (b *Bus) Publishf(format string, args ...any) {
	b.emit(Event{Text: fmt.Sprintf(format, args...)})
}

// PublishFramed emits a framed event, used for user-significant milestones.
func (b *Bus) PublishFramed(text string) {
	b.emit(Event{Text: text, Framed: true})
}

// PublishHeartbeat emits a heartbeat-marked event. Heartbeats keep the log
// alive-looking during silent phases and are filtered from the client stream.
func (b *Bus) PublishHeartbeat(text string) {
	b.emit(Event{Text: text, Heartbeat: true})
}

func (b *Bus) emit(ev Event) {
	ev.Time = time.Now()
	ev.Text = ansiEscapes.ReplaceAllString(ev.Text, "")

	plain := strings.NewReplacer("<br>", "\n", "<strong>", "", "</strong>", "").Replace(ev.Rendered())
	b.log.Info(plain)

	select {
	case b.events <- ev:
	default:
		// consumer fell behind, drop the oldest event to keep ordering
		select {
		case <-b.events:
		default:
		}
		select {
		case b.events <- ev:
		default:
		}
	}
}

// Next blocks up to timeout for the next event. The second return value is
// false when the timeout elapsed with nothing to deliver.
func (b *Bus) Next(timeout time.Duration) (Event, bool) {
	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case ev := <-b.events:
		return ev, true
	case <-timer.C:
		return Event{}, false
	}
}
