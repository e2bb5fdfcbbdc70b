// Package provider defines the boundary to the external media
// fetch/transcode tool. The core never touches the tool directly; it builds
// a Session with typed callbacks and lets the implementation drive them.
package provider

import (
	"context"
	"errors"

	"github.com/w0lfzk1n/yt-dlp-WebGui/internal/domain"
	"github.com/w0lfzk1n/yt-dlp-WebGui/internal/retry"
)

// ErrCancelled reports that an in-flight session operation was aborted via
// Cancel. Every Session implementation returns it for that case so callers
// can tell a user-requested stop from a real failure.
var ErrCancelled = errors.New("fetch cancelled")

// Progress is one download progress sample as reported by the tool.
type Progress struct {
	Percent string
	Total   string
	Rate    string
}

// Observer receives typed status callbacks from an in-flight fetch.
// Implementations must be cheap; they run on the session's reader goroutine.
type Observer interface {
	// OnInfo carries free-form informational output worth surfacing.
	OnInfo(msg string)
	// OnProgress reports a download percentage sample. Samples arrive as the
	// tool prints them; consumers dedupe if they care.
	OnProgress(p Progress)
	// OnConverting fires when an item's raw download finished and local
	// transcoding started.
	OnConverting()
	// OnFailed reports a non-fatal per-item failure the tool skipped over.
	OnFailed(msg string)
}

// Options configures one provider session.
type Options struct {
	// OutputTemplate is the tool's naming template for produced files,
	// rooted in the job's staging directory.
	OutputTemplate string
	Format         domain.Format
	// CookiesFile is injected when non-empty.
	CookiesFile string
	// Retries bounds the attempts per retryable failure category.
	Retries int
	// RetryDelay is consulted on every retryable failure.
	RetryDelay retry.DelayFunc
	Observer   Observer
}

// Session is one configured handle onto the external tool. Probe and Fetch
// must not be called concurrently; Cancel may be called from any goroutine
// and aborts the in-flight operation best-effort.
type Session interface {
	// Probe retrieves the descriptive record for url without downloading.
	// Collections are enumerated flat, without recursing into children.
	Probe(ctx context.Context, url string) (*domain.RetrievedInfo, error)
	// Fetch downloads and transcodes the given locators into the staging
	// area, honoring the session's format and retry options.
	Fetch(ctx context.Context, urls []string) error
	// ExpectedFilename renders the output template for one probed item,
	// with the session format's final extension.
	ExpectedFilename(info *domain.RetrievedInfo) string
	Cancel()
}

// Provider builds sessions against the external tool.
type Provider interface {
	NewSession(opts Options) (Session, error)
}
