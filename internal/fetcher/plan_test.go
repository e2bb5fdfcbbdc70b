package fetcher

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/w0lfzk1n/yt-dlp-WebGui/internal/domain"
)

type fakeNamer struct {
	ext string
}

func (f fakeNamer) ExpectedFilename(info *domain.RetrievedInfo) string {
	return filepath.Join("/staging/user", info.DisplayTitle()+"."+f.ext)
}

func TestBuildPlanCollection(t *testing.T) {
	info := &domain.RetrievedInfo{
		Title: "List",
		Entries: []domain.RetrievedInfo{
			{Title: "First", OriginalURL: "https://youtu.be/a1"},
			{Title: "Gone", OriginalURL: "https://youtu.be/a2", Availability: domain.AvailabilityUnavailable},
			{Title: "Third", OriginalURL: "https://youtu.be/a3"},
		},
	}

	plan := buildPlan(fakeNamer{ext: "mp3"}, info, map[string]struct{}{})

	require.Len(t, plan.ToFetch, 2)
	assert.Equal(t, "https://youtu.be/a1", plan.ToFetch[0].Locator)
	assert.Equal(t, "https://youtu.be/a3", plan.ToFetch[1].Locator)
	assert.Equal(t, []string{"Gone"}, plan.Unavailable)
	assert.Empty(t, plan.Existing)
}

func TestBuildPlanSkipsAlreadyPresent(t *testing.T) {
	info := &domain.RetrievedInfo{Title: "My Song?", OriginalURL: "https://youtu.be/x"}

	// the target folder holds the normalized rendition of the same name
	existing := map[string]struct{}{"My Song.mp3": {}}

	plan := buildPlan(fakeNamer{ext: "mp3"}, info, existing)

	assert.Empty(t, plan.ToFetch)
	assert.Equal(t, []string{"My Song.mp3"}, plan.Existing)
}

func TestBuildPlanSingleFetchable(t *testing.T) {
	info := &domain.RetrievedInfo{Title: "Fresh", OriginalURL: "https://youtu.be/f"}

	plan := buildPlan(fakeNamer{ext: "mp4"}, info, map[string]struct{}{})

	require.Len(t, plan.ToFetch, 1)
	assert.Equal(t, "Fresh", plan.ToFetch[0].Title)
	assert.Equal(t, "/staging/user/Fresh.mp4", plan.ToFetch[0].ExpectedPath)
}

func TestBuildPlanNilInfo(t *testing.T) {
	plan := buildPlan(fakeNamer{ext: "mp3"}, nil, map[string]struct{}{})
	assert.Empty(t, plan.ToFetch)
	assert.Equal(t, []string{"Unknown Video"}, plan.Unavailable)
}

func TestProgressUnitsDoubleForVideo(t *testing.T) {
	plan := domain.Plan{ToFetch: []domain.PlanItem{{}, {}}}

	assert.Equal(t, 2, progressUnits(plan, domain.FormatMP3))
	assert.Equal(t, 4, progressUnits(plan, domain.FormatMP4))
}
