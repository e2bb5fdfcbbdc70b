// Package retry classifies transient fetch failures and decides how long to
// back off before the provider tries again.
package retry

import (
	"fmt"
	"strings"
	"time"

	"github.com/w0lfzk1n/yt-dlp-WebGui/internal/progress"
)

// Category names the provider operation a retry hook is attached to.
type Category string

const (
	CategoryNetwork    Category = "http"
	CategoryFragment   Category = "fragment"
	CategoryFileAccess Category = "file_access"
	CategoryExtractor  Category = "extractor"
)

const (
	baseDelay = 10 * time.Second
	maxDelay  = 60 * time.Second

	addressExhaustionDelay = 30 * time.Second
	rateLimitDelay         = 60 * time.Second
	forbiddenDelay         = 5 * time.Second
)

// DelayFunc is the provider-side retry hook signature.
type DelayFunc func(category Category, attempt int, lastErr error) time.Duration

// Policy is stateless between calls; it only observes the attempt count and
// last error it is handed. Every decision is announced on the bus.
type Policy struct {
	bus *progress.Bus
}

func NewPolicy(bus *progress.Bus) *Policy {
	return &Policy{bus: bus}
}

// Delay returns how long to sleep before retry number attempt (1-based).
// Known error signatures override the exponential base value.
func (p *Policy) Delay(attempt int, lastErr error) time.Duration {
	sleep := baseFor(attempt)

	if lastErr == nil {
		p.announce(fmt.Sprintf("🔄 Retrying in %d seconds...", int(sleep.Seconds())))
		return sleep
	}

	text := strings.ToLower(lastErr.Error())
	switch {
	case strings.Contains(text, "cannot assign requested address"):
		sleep = addressExhaustionDelay
		p.announce(fmt.Sprintf("⚠️ Network issue detected. Retrying in %d seconds...", int(sleep.Seconds())))
	case strings.Contains(text, "429"), strings.Contains(text, "too many requests"):
		sleep = rateLimitDelay
		p.announce(fmt.Sprintf("🚨 Rate limit hit (HTTP 429). Retrying in %d seconds...", int(sleep.Seconds())))
	case strings.Contains(text, "http error 403"):
		sleep = forbiddenDelay
		p.announce(fmt.Sprintf("🔒 HTTP 403 Forbidden. Retrying in %d seconds...", int(sleep.Seconds())))
	default:
		p.announce(fmt.Sprintf("⚠️ Unknown error: %v. Retrying in %d seconds...", lastErr, int(sleep.Seconds())))
	}

	return sleep
}

// Hook adapts the policy to the provider's per-category retry callback. The
// category only matters to the provider; the backoff decision is the same.
func (p *Policy) Hook() DelayFunc {
	return func(_ Category, attempt int, lastErr error) time.Duration {
		return p.Delay(attempt, lastErr)
	}
}

func baseFor(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	sleep := baseDelay
	for i := 1; i < attempt; i++ {
		sleep *= 2
		if sleep >= maxDelay {
			return maxDelay
		}
	}
	if sleep > maxDelay {
		return maxDelay
	}
	return sleep
}

func (p *Policy) announce(msg string) {
	if p.bus != nil {
		p.bus.PublishFramed(msg)
	}
}
