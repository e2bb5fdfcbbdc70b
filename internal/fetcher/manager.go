package fetcher

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/sirupsen/logrus"

	"github.com/w0lfzk1n/yt-dlp-WebGui/internal/cache"
	"github.com/w0lfzk1n/yt-dlp-WebGui/internal/config"
	"github.com/w0lfzk1n/yt-dlp-WebGui/internal/domain"
	"github.com/w0lfzk1n/yt-dlp-WebGui/internal/fsutil"
	"github.com/w0lfzk1n/yt-dlp-WebGui/internal/progress"
	"github.com/w0lfzk1n/yt-dlp-WebGui/internal/provider"
	"github.com/w0lfzk1n/yt-dlp-WebGui/internal/retry"
	"github.com/w0lfzk1n/yt-dlp-WebGui/internal/service"
	"github.com/w0lfzk1n/yt-dlp-WebGui/internal/tagger"
)

// Manager accepts download batches, runs them sequentially in the
// background, and owns the process-wide cancellation flag.
type Manager interface {
	Start(ctx context.Context) error
	Shutdown()
	// Submit accepts a batch and returns immediately; the work runs in a
	// background task that outlives the request.
	Submit(batch domain.Batch)
	// Cancel sets the cancellation flag and aborts the active fetch
	// best-effort. It never blocks on the fetch actually stopping.
	Cancel()
}

type Config struct {
	StagingRoot string
	CacheDir    string
	CookiesFile string
	Retries     int
	PermUser    string
	PermGroup   string
	Folders     config.Folders
	Logger      *logrus.Logger
}

type manager struct {
	cfg      Config
	provider provider.Provider
	bus      *progress.Bus
	cache    *cache.Store
	policy   *retry.Policy
	tagger   *tagger.Tagger
	history  service.HistoryService
	log      *logrus.Entry

	sess       *session
	cancelFlag atomic.Bool

	// runMu serializes batches: jobs of a newly submitted batch queue
	// behind whatever is already running, upholding the single active
	// download invariant across batches.
	runMu sync.Mutex

	wg     sync.WaitGroup
	ctx    context.Context
	cancel context.CancelFunc
}

func NewManager(cfg Config, prov provider.Provider, bus *progress.Bus, store *cache.Store, history service.HistoryService) Manager {
	if cfg.Retries <= 0 {
		cfg.Retries = 5
	}
	if cfg.Logger == nil {
		cfg.Logger = logrus.New()
	}
	return &manager{
		cfg:      cfg,
		provider: prov,
		bus:      bus,
		cache:    store,
		policy:   retry.NewPolicy(bus),
		tagger:   tagger.New(cfg.Logger, bus),
		history:  history,
		log:      cfg.Logger.WithField("component", "fetcher"),
		sess:     newSession(),
	}
}

func (m *manager) Start(ctx context.Context) error {
	for _, dir := range []string{m.cfg.StagingRoot, m.cfg.CacheDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create %s: %w", dir, err)
		}
	}
	// leftovers from a previous run are garbage, drop them at boot
	for _, err := range fsutil.ClearDir(m.cfg.StagingRoot) {
		m.log.Warnf("clear staging root: %v", err)
	}

	m.ctx, m.cancel = context.WithCancel(ctx)
	m.log.Infof("fetch manager started, staging root: %s", m.cfg.StagingRoot)
	return nil
}

func (m *manager) Shutdown() {
	if m.cancel != nil {
		m.cancel()
	}
	m.sess.cancelActive()
	m.wg.Wait()
	m.log.Info("fetch manager stopped")
}

func (m *manager) Submit(batch domain.Batch) {
	m.cancelFlag.Store(false)

	m.bus.Publishf("❇️ Received %d YouTube URLs", len(batch.Jobs))
	m.bus.PublishFramed("Preparing download...<br>⚠️ INFO ⚠️<br>Site can be closed, process will complete in background.")

	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		m.runBatch(batch)
	}()
}

func (m *manager) Cancel() {
	m.cancelFlag.Store(true)
	if m.sess.cancelActive() {
		m.bus.Publish("Download canceled (by yt-dlp).")
	} else {
		m.bus.Publish("No active download to cancel (But have set 'Cancel-Flag').")
	}
}

// runBatch drives the job state machine for each URL, one at a time, and
// publishes the accumulated summary when the last job terminates. One job's
// failure never aborts the batch.
func (m *manager) runBatch(batch domain.Batch) {
	m.runMu.Lock()
	defer m.runMu.Unlock()

	ctx := m.ctx
	var summary strings.Builder

	for i, job := range batch.Jobs {
		m.bus.PublishFramed(progressBanner(i+1, len(batch.Jobs), job.SourceURL))

		recordID := m.recordJobStart(ctx, batch.ID, job)
		outcome := m.runJob(ctx, job, m.phaseReporter(ctx, recordID))
		m.recordJobOutcome(ctx, recordID, outcome)

		appendSummary(&summary, outcome)
	}

	msg := summary.String()
	if msg == "" {
		msg = "Nothing to report."
	}
	m.bus.PublishFramed(msg)
}

func (m *manager) recordJobStart(ctx context.Context, batchID string, job domain.Job) int64 {
	if m.history == nil {
		return 0
	}
	record := &domain.JobRecord{
		BatchID:   batchID,
		SourceURL: job.SourceURL,
		Format:    job.Format,
		Status:    domain.JobStatusResolving,
	}
	id, err := m.history.RecordJob(ctx, record)
	if err != nil {
		m.log.Warnf("record job: %v", err)
		return 0
	}
	return id
}

// phaseReporter mirrors a job's non-terminal transitions into its history
// row. A nil history or failed insert yields a no-op reporter.
func (m *manager) phaseReporter(ctx context.Context, id int64) func(domain.JobStatus) {
	if m.history == nil || id == 0 {
		return nil
	}
	return func(status domain.JobStatus) {
		if err := m.history.JobStatus(ctx, id, status, ""); err != nil {
			m.log.Warnf("update job status: %v", err)
		}
	}
}

func (m *manager) recordJobOutcome(ctx context.Context, id int64, outcome domain.Outcome) {
	if m.history == nil || id == 0 {
		return
	}
	errText := ""
	if outcome.Err != nil {
		errText = outcome.Err.Error()
	}
	if err := m.history.JobStatus(ctx, id, outcome.Status, errText); err != nil {
		m.log.Warnf("update job status: %v", err)
	}
	if err := m.history.JobCounts(ctx, id, len(outcome.Moved), len(outcome.Missing), len(outcome.Unavailable)); err != nil {
		m.log.Warnf("update job counts: %v", err)
	}
}

func appendSummary(summary *strings.Builder, outcome domain.Outcome) {
	if len(outcome.Moved) > 0 {
		fmt.Fprintf(summary, "✅ Download completed:<br>%s<br>Total: %d<br>",
			strings.Join(outcome.Moved, "<br>"), len(outcome.Moved))
	}
	if len(outcome.Missing) > 0 {
		fmt.Fprintf(summary, "<br>❓ Download failed:<br>%s<br>Total: %d<br>",
			strings.Join(outcome.Missing, "<br>"), len(outcome.Missing))
	}
	if len(outcome.Unavailable) > 0 {
		fmt.Fprintf(summary, "<br>❌ There are <strong>%d</strong> Videos that cant be downloaded.", len(outcome.Unavailable))
	}
	if outcome.Status == domain.JobStatusComplete && len(outcome.Moved) == 0 && len(outcome.Missing) == 0 && len(outcome.Unavailable) == 0 {
		summary.WriteString("✅ All videos are already downloaded.<br>")
	}
}

var _ Manager = (*manager)(nil)
