// Package ytdlp drives the yt-dlp binary as the media fetch/transcode tool.
package ytdlp

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/w0lfzk1n/yt-dlp-WebGui/internal/domain"
	"github.com/w0lfzk1n/yt-dlp-WebGui/internal/provider"
	"github.com/w0lfzk1n/yt-dlp-WebGui/internal/retry"
)

const socketTimeout = "60"

type ytDlp struct {
	binary string
	log    *logrus.Logger
}

// New returns a Provider backed by the yt-dlp executable at binary.
func New(binary string, log *logrus.Logger) provider.Provider {
	if binary == "" {
		binary = "yt-dlp"
	}
	if log == nil {
		log = logrus.New()
	}
	return &ytDlp{binary: binary, log: log}
}

func (y *ytDlp) NewSession(opts provider.Options) (provider.Session, error) {
	if opts.OutputTemplate == "" {
		return nil, errors.New("output template is required")
	}
	if !opts.Format.Valid() {
		return nil, fmt.Errorf("unsupported format %q", opts.Format)
	}
	if opts.Retries <= 0 {
		opts.Retries = 5
	}
	return &session{
		binary: y.binary,
		opts:   opts,
		log:    y.log.WithField("component", "ytdlp"),
	}, nil
}

type session struct {
	binary string
	opts   provider.Options
	log    *logrus.Entry

	mu        sync.Mutex
	cmd       *exec.Cmd
	cancelled atomic.Bool
}

func (s *session) Probe(ctx context.Context, url string) (*domain.RetrievedInfo, error) {
	args := []string{
		"--dump-single-json",
		"--flat-playlist",
		"--no-warnings",
		"--ignore-errors",
		"--no-cache-dir",
		"--socket-timeout", socketTimeout,
	}
	args = s.appendCookies(args)
	args = append(args, url)

	cmd := exec.CommandContext(ctx, s.binary, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	s.track(cmd)
	err := cmd.Run()
	s.track(nil)

	if s.cancelled.Load() {
		return nil, provider.ErrCancelled
	}
	if err != nil && stdout.Len() == 0 {
		return nil, fmt.Errorf("probe %s: %w: %s", url, err, firstErrorLine(stderr.String()))
	}

	info, perr := parseInfoJSON(stdout.Bytes())
	if perr != nil {
		return nil, fmt.Errorf("probe %s: %w", url, perr)
	}
	return info, nil
}

func (s *session) Fetch(ctx context.Context, urls []string) error {
	if len(urls) == 0 {
		return nil
	}

	attempt := 0
	for {
		if s.cancelled.Load() {
			return provider.ErrCancelled
		}

		lastErr := s.runFetch(ctx, urls)
		if lastErr == nil {
			return nil
		}
		if s.cancelled.Load() || ctx.Err() != nil {
			return provider.ErrCancelled
		}

		attempt++
		if attempt > s.opts.Retries {
			return lastErr
		}

		delay := 10 * time.Second
		if s.opts.RetryDelay != nil {
			delay = s.opts.RetryDelay(classify(lastErr), attempt, lastErr)
		}
		select {
		case <-ctx.Done():
			return provider.ErrCancelled
		case <-time.After(delay):
		}
	}
}

func (s *session) runFetch(ctx context.Context, urls []string) error {
	args := []string{
		"--newline",
		"--no-warnings",
		"--ignore-errors",
		"--no-cache-dir",
		"--socket-timeout", socketTimeout,
		"--write-thumbnail",
		"--embed-thumbnail",
		"--embed-metadata",
		"-o", s.opts.OutputTemplate,
	}

	switch s.opts.Format {
	case domain.FormatMP3:
		args = append(args,
			"-f", "bestaudio/best",
			"-x", "--audio-format", "mp3", "--audio-quality", "320K",
		)
	case domain.FormatMP4:
		args = append(args,
			"-f", "bestvideo[ext=mp4]+bestaudio[ext=m4a]/best[ext=mp4]/best",
			"--merge-output-format", "mp4",
		)
	}

	args = s.appendCookies(args)
	args = append(args, urls...)

	cmd := exec.CommandContext(ctx, s.binary, args...)
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("stdout pipe: %w", err)
	}
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start yt-dlp: %w", err)
	}
	s.track(cmd)

	scanner := bufio.NewScanner(stdout)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		s.dispatchLine(scanner.Text())
	}

	err = cmd.Wait()
	s.track(nil)

	if err != nil {
		if line := firstErrorLine(stderr.String()); line != "" {
			return errors.New(line)
		}
		return fmt.Errorf("yt-dlp: %w", err)
	}
	return nil
}

// titleSanitizer mirrors the character replacements yt-dlp applies when it
// writes output files, so a derived name matches the file the tool actually
// produces. Without this a title containing "/" would derive a path with an
// embedded separator that no produced file ever has.
var titleSanitizer = strings.NewReplacer(
	"/", "⧸",
	"\\", "⧹",
	"|", "｜",
	"<", "＜",
	">", "＞",
	":", "：",
	`"`, "＂",
	"?", "？",
	"*", "＊",
)

func (s *session) ExpectedFilename(info *domain.RetrievedInfo) string {
	title := titleSanitizer.Replace(strings.TrimSpace(info.DisplayTitle()))
	name := strings.ReplaceAll(s.opts.OutputTemplate, "%(title)s", title)
	return strings.ReplaceAll(name, "%(ext)s", s.opts.Format.Ext())
}

func (s *session) Cancel() {
	s.cancelled.Store(true)
	s.mu.Lock()
	cmd := s.cmd
	s.mu.Unlock()
	if cmd != nil && cmd.Process != nil {
		if err := cmd.Process.Kill(); err != nil {
			s.log.Warnf("kill yt-dlp process: %v", err)
		}
	}
}

func (s *session) track(cmd *exec.Cmd) {
	s.mu.Lock()
	s.cmd = cmd
	s.mu.Unlock()
}

func (s *session) appendCookies(args []string) []string {
	if s.opts.CookiesFile == "" {
		return args
	}
	if st, err := os.Stat(s.opts.CookiesFile); err != nil || st.Size() == 0 {
		return args
	}
	return append(args, "--cookies", s.opts.CookiesFile)
}

func (s *session) dispatchLine(line string) {
	obs := s.opts.Observer
	if obs == nil {
		return
	}

	switch kind, payload := parseOutputLine(line); kind {
	case lineProgress:
		obs.OnProgress(payload.(provider.Progress))
	case lineConverting:
		obs.OnConverting()
	case lineInfo:
		obs.OnInfo(payload.(string))
	case lineError:
		obs.OnFailed(payload.(string))
	}
}

func classify(err error) retry.Category {
	text := strings.ToLower(err.Error())
	switch {
	case strings.Contains(text, "fragment"):
		return retry.CategoryFragment
	case strings.Contains(text, "unable to open"), strings.Contains(text, "permission denied"):
		return retry.CategoryFileAccess
	case strings.Contains(text, "unable to extract"), strings.Contains(text, "unsupported url"):
		return retry.CategoryExtractor
	default:
		return retry.CategoryNetwork
	}
}

func firstErrorLine(stderr string) string {
	for _, line := range strings.Split(stderr, "\n") {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, "ERROR:") {
			return line
		}
	}
	return strings.TrimSpace(stderr)
}
