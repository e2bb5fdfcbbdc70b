package fetcher

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/w0lfzk1n/yt-dlp-WebGui/internal/domain"
	"github.com/w0lfzk1n/yt-dlp-WebGui/internal/fsutil"
	"github.com/w0lfzk1n/yt-dlp-WebGui/internal/progress"
	"github.com/w0lfzk1n/yt-dlp-WebGui/internal/provider"
)

var errCancelled = errors.New("download cancelled by user")

var posterExtensions = []string{".jpg", ".png", ".webp"}

// runJob drives one job through resolve, plan, fetch and finalize. It never
// returns an error to the dispatcher; the outcome carries the terminal
// state. phase, when non-nil, is told about every non-terminal transition.
// The shared session bookkeeping is reset on every exit path.
func (m *manager) runJob(ctx context.Context, job domain.Job, phase func(domain.JobStatus)) (outcome domain.Outcome) {
	defer m.sess.reset()
	if phase == nil {
		phase = func(domain.JobStatus) {}
	}

	m.bus.Publishf("URL set: %s", job.SourceURL)

	basePath, ok := m.cfg.Folders.Path(job.FolderKey)
	if !ok {
		return m.failJob(fmt.Errorf("unknown folder key %q", job.FolderKey))
	}

	targetFolder := filepath.Join(basePath, "Others")
	if job.Subfolder != "" && job.Subfolder != "Others" {
		targetFolder = filepath.Join(basePath, job.Subfolder)
	}
	m.bus.Publishf("📂 Folder set: %s", targetFolder)

	staging := filepath.Join(m.cfg.StagingRoot, job.User)
	for _, dir := range []string{targetFolder, staging} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return m.failJob(fmt.Errorf("create %s: %w", dir, err))
		}
	}
	m.clearStaging(staging)
	// the staging area is cleared again on every exit path, success or not
	defer m.clearStaging(staging)
	m.bus.Publishf("Folder CHK/CLEAN for: '%s' complete!", job.User)

	existing, err := targetListing(targetFolder)
	if err != nil {
		return m.failJob(err)
	}

	template := filepath.Join(staging, "%(title)s.%(ext)s")
	if job.CustomFilename != "" {
		template = filepath.Join(staging, job.CustomFilename+".%(ext)s")
	}

	obs := newBusObserver(m.bus, m.sess)
	ps, err := m.provider.NewSession(provider.Options{
		OutputTemplate: template,
		Format:         job.Format,
		CookiesFile:    m.cfg.CookiesFile,
		Retries:        m.cfg.Retries,
		RetryDelay:     m.policy.Hook(),
		Observer:       obs,
	})
	if err != nil {
		return m.failJob(err)
	}
	m.sess.setActive(ps)

	// Resolving
	info, err := m.resolve(ctx, ps, job)
	if err != nil {
		return m.failJob(err)
	}

	// Planning
	phase(domain.JobStatusPlanning)
	if !info.IsCollection() && info.Availability == domain.AvailabilityUnavailable {
		m.bus.PublishFramed(fmt.Sprintf("❌ '%s' is unavailable and can not be downloaded.", info.DisplayTitle()))
		return domain.Outcome{Status: domain.JobStatusUnavailable, Unavailable: []string{info.DisplayTitle()}}
	}

	plan := buildPlan(ps, info, existing)
	m.sess.setCounters(progressUnits(plan, job.Format))

	if len(plan.ToFetch) == 0 {
		m.bus.PublishFramed("✅ All videos are already downloaded.")
		return domain.Outcome{
			Status:      domain.JobStatusComplete,
			Unavailable: plan.Unavailable,
		}
	}

	m.bus.PublishFramed(availabilityMessage(plan))

	// Fetching
	phase(domain.JobStatusFetching)
	if m.cancelFlag.Load() {
		m.bus.Publish("Download skipped, cancellation requested.")
		return domain.Outcome{Status: domain.JobStatusFailed, Err: errCancelled}
	}

	m.bus.Publish("⏬ Starting Download ⏬")

	locators := make([]string, len(plan.ToFetch))
	for i, item := range plan.ToFetch {
		locators[i] = item.Locator
	}

	err = ps.Fetch(ctx, locators)
	obs.stopConvertingHeartbeat()
	if err != nil {
		if errors.Is(err, provider.ErrCancelled) {
			m.bus.Publish("Download stopped before completion.")
			return domain.Outcome{Status: domain.JobStatusFailed, Err: errCancelled}
		}
		return m.failJob(err)
	}

	// Finalizing
	phase(domain.JobStatusFinalizing)
	moved, missing := m.finalize(job, plan, targetFolder, staging)

	m.bus.PublishFramed(fmt.Sprintf("Moved: %d | Missing: %d | Unavailable: %d",
		len(moved), len(missing), len(plan.Unavailable)))

	return domain.Outcome{
		Status:      domain.JobStatusComplete,
		Moved:       moved,
		Missing:     missing,
		Unavailable: plan.Unavailable,
	}
}

// resolve obtains the descriptive record for the job's source URL, from the
// fingerprint cache when allowed, otherwise from the provider. A fresh probe
// is always written back to the cache, whether or not the job asked for
// cached data.
func (m *manager) resolve(ctx context.Context, ps provider.Session, job domain.Job) (*domain.RetrievedInfo, error) {
	m.bus.Publish("♻️ Retrieving Video Details...<br>❗️ This could take a while, please wait...")

	if job.UseCache {
		if cached := m.cache.Get(job.SourceURL); cached != nil {
			m.bus.Publish("✅ Using cached info. Skipping retrieval.")
			return cached, nil
		}
		m.bus.Publish("♻️ No cache found. Retrieving info...")
	}

	stop := progress.StartHeartbeat(m.bus, "retrieving")
	info, err := ps.Probe(ctx, job.SourceURL)
	stop()
	if err != nil {
		return nil, err
	}

	if !job.UseCache {
		m.bus.Publish("♻️ Caching retrieved information...")
	}
	if err := m.cache.Put(job.SourceURL, info); err != nil {
		m.log.Warnf("cache write for %s: %v", job.SourceURL, err)
	}
	return info, nil
}

// finalize moves every produced file into the target folder under its
// normalized name, tags it, relocates leftover thumbnails as posters and
// normalizes ownership on the whole tree.
func (m *manager) finalize(job domain.Job, plan domain.Plan, targetFolder, staging string) (moved, missing []string) {
	album := filepath.Base(targetFolder)
	m.bus.Publish("⚒ Managing Metadata<br>--------------------<br>")

	for _, item := range plan.ToFetch {
		cleaned := fsutil.CleanFilename(filepath.Base(item.ExpectedPath))
		if _, err := os.Stat(item.ExpectedPath); err != nil {
			missing = append(missing, cleaned)
			continue
		}

		dest := filepath.Join(targetFolder, cleaned)
		if err := fsutil.MoveFile(item.ExpectedPath, dest); err != nil {
			m.bus.Publishf("Error: move of '%s' failed: %v", cleaned, err)
			missing = append(missing, cleaned)
			continue
		}
		moved = append(moved, cleaned)
		m.tagger.Tag(dest, job.User, album)
	}

	m.movePosters(staging, targetFolder)

	if err := fsutil.SetOwnerRecursive(targetFolder, m.cfg.PermUser, m.cfg.PermGroup); err != nil {
		m.log.Warnf("normalize ownership: %v", err)
	}
	return moved, missing
}

// movePosters relocates any thumbnail image the provider left behind in the
// staging area into the target folder as poster.<ext>.
func (m *manager) movePosters(staging, targetFolder string) {
	entries, err := os.ReadDir(staging)
	if err != nil {
		return
	}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(entry.Name()))
		for _, imageExt := range posterExtensions {
			if ext != imageExt {
				continue
			}
			dest := filepath.Join(targetFolder, "poster"+ext)
			if err := fsutil.MoveFile(filepath.Join(staging, entry.Name()), dest); err != nil {
				m.log.Warnf("move poster %s: %v", entry.Name(), err)
			}
			break
		}
	}
}

func (m *manager) clearStaging(staging string) {
	for _, err := range fsutil.ClearDir(staging) {
		m.bus.Publishf("Delete failed. Reason: %v", err)
	}
}

// failJob is the fatal-unclassified exit: the error is published as a framed
// user-facing message, with a cookies remediation hint when the failure
// points at a missing or malformed credential file. Unavailable sources are
// downgraded to the unavailable terminal state instead.
func (m *manager) failJob(err error) domain.Outcome {
	text := err.Error()

	if strings.Contains(text, "Video unavailable") || strings.Contains(text, "private") {
		m.bus.PublishFramed(fmt.Sprintf("⚠️ INFO ⚠️ Error:<br>%s", text))
		return domain.Outcome{Status: domain.JobStatusUnavailable, Err: err}
	}

	hint := ""
	if strings.Contains(text, "cookies file") {
		hint = "<br>🍪 Cookies are missing or invalid. Please check your data/cookies.txt file."
	}
	m.bus.PublishFramed(fmt.Sprintf("⚠️ INFO ⚠️ Error:<br>%s%s", text, hint))
	return domain.Outcome{Status: domain.JobStatusFailed, Err: err}
}

func availabilityMessage(plan domain.Plan) string {
	var b strings.Builder
	if len(plan.ToFetch) > 0 {
		titles := make([]string, len(plan.ToFetch))
		for i, item := range plan.ToFetch {
			titles[i] = item.Title
		}
		fmt.Fprintf(&b, "✅ The following videos are available for download:<br> - %s<br> Total: %d",
			strings.Join(titles, "<br> - "), len(titles))
	}
	if len(plan.Existing) > 0 {
		fmt.Fprintf(&b, "<br><br>🆗 There are <strong>%d</strong> Videos that are already downloaded.", len(plan.Existing))
	}
	if len(plan.Unavailable) > 0 {
		fmt.Fprintf(&b, "<br><br>❌ There are <strong>%d</strong> Videos that can not be downloaded.", len(plan.Unavailable))
	}
	return b.String()
}

func targetListing(dir string) (map[string]struct{}, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("list target folder: %w", err)
	}
	names := make([]string, len(entries))
	for i, entry := range entries {
		names[i] = entry.Name()
	}
	return listingSet(names), nil
}
