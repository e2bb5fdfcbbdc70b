package fetcher

import (
	"sync"

	"github.com/w0lfzk1n/yt-dlp-WebGui/internal/provider"
)

// session is the fetch bookkeeping shared between the manager, the state
// machine and the progress observer: the active provider handle (so
// cancellation can reach it), the last seen download percentage, and the
// pending/done item counters. Exactly one job owns it at a time; every
// terminal state calls reset so the next job starts from a clean slate.
type session struct {
	mu          sync.Mutex
	active      provider.Session
	lastPercent string
	pending     int
	done        int
}

func newSession() *session {
	s := &session{}
	s.reset()
	return s
}

func (s *session) reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.active = nil
	s.lastPercent = ""
	s.pending = 0
	s.done = 1
}

func (s *session) setActive(ps provider.Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.active = ps
}

// cancelActive cancels the in-flight provider operation, if any, and clears
// the active reference. Returns whether there was anything to cancel.
func (s *session) cancelActive() bool {
	s.mu.Lock()
	active := s.active
	s.active = nil
	s.mu.Unlock()

	if active == nil {
		return false
	}
	active.Cancel()
	return true
}

func (s *session) hasActive() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active != nil
}

func (s *session) setCounters(pending int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending = pending
	s.done = 1
}

func (s *session) counters() (done, pending int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.done, s.pending
}

func (s *session) itemDone() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.done++
}

// observePercent records a progress sample and reports whether it differs
// from the previous one. Duplicate consecutive samples are not re-published.
func (s *session) observePercent(percent string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if percent == s.lastPercent {
		return false
	}
	s.lastPercent = percent
	return true
}
