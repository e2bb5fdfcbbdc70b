package fetcher

import (
	"path/filepath"

	"github.com/w0lfzk1n/yt-dlp-WebGui/internal/domain"
	"github.com/w0lfzk1n/yt-dlp-WebGui/internal/fsutil"
)

// namer renders the expected staging filename for one probed item. Satisfied
// by provider sessions; narrowed here so planning is testable without a
// provider.
type namer interface {
	ExpectedFilename(info *domain.RetrievedInfo) string
}

// buildPlan expands retrieved info into the skip-vs-fetch decision for one
// job. existing must hold the names currently present in the target folder;
// those are compared against the normalized form of each derived name, which
// only works because finalize moves files under exactly that normalized
// form.
func buildPlan(n namer, info *domain.RetrievedInfo, existing map[string]struct{}) domain.Plan {
	var plan domain.Plan

	if info == nil {
		plan.Unavailable = append(plan.Unavailable, "Unknown Video")
		return plan
	}

	if info.IsCollection() {
		for i := range info.Entries {
			planEntry(n, &info.Entries[i], existing, &plan)
		}
		return plan
	}

	planEntry(n, info, existing, &plan)
	return plan
}

func planEntry(n namer, entry *domain.RetrievedInfo, existing map[string]struct{}, plan *domain.Plan) {
	if entry.Availability == domain.AvailabilityUnavailable {
		plan.Unavailable = append(plan.Unavailable, entry.DisplayTitle())
		return
	}

	expected := n.ExpectedFilename(entry)
	cleaned := fsutil.CleanFilename(filepath.Base(expected))
	if _, present := existing[cleaned]; present {
		plan.Existing = append(plan.Existing, cleaned)
		return
	}

	plan.ToFetch = append(plan.ToFetch, domain.PlanItem{
		Locator:      entry.Locator(),
		Title:        entry.DisplayTitle(),
		ExpectedPath: expected,
	})
}

// progressUnits is the expected total of per-item progress phases: video
// downloads transcode in a second pass, so each item counts twice.
func progressUnits(plan domain.Plan, format domain.Format) int {
	units := len(plan.ToFetch)
	if format == domain.FormatMP4 {
		units *= 2
	}
	return units
}

// listingSet snapshots a directory listing into a membership set.
func listingSet(names []string) map[string]struct{} {
	set := make(map[string]struct{}, len(names))
	for _, name := range names {
		set[name] = struct{}{}
	}
	return set
}
