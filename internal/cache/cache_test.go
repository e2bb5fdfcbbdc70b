package cache

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/w0lfzk1n/yt-dlp-WebGui/internal/domain"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	logger := logrus.New()
	logger.SetOutput(os.Stderr)
	return NewStore(t.TempDir(), logger, nil)
}

func TestFingerprintDeterministic(t *testing.T) {
	a := Fingerprint("https://youtube.com/watch?v=abc12345678")
	b := Fingerprint("https://youtube.com/watch?v=abc12345678")
	c := Fingerprint("https://youtube.com/watch?v=other000000")

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.Len(t, a, 10)
}

func TestRoundTrip(t *testing.T) {
	store := newTestStore(t)

	info := &domain.RetrievedInfo{
		ID:    "abc",
		Title: "A Song",
		Entries: []domain.RetrievedInfo{
			{ID: "c1", Title: "Child One", OriginalURL: "https://youtu.be/c1"},
			{ID: "c2", Title: "Child Two", Availability: domain.AvailabilityUnavailable},
		},
	}

	require.NoError(t, store.Put("https://example.test/playlist", info))

	got := store.Get("https://example.test/playlist")
	require.NotNil(t, got)
	assert.Equal(t, info, got)
}

func TestGetUnseenURL(t *testing.T) {
	store := newTestStore(t)
	assert.Nil(t, store.Get("https://example.test/never-seen"))
}

func TestPutOverwrites(t *testing.T) {
	store := newTestStore(t)
	url := "https://example.test/v"

	require.NoError(t, store.Put(url, &domain.RetrievedInfo{Title: "old"}))
	require.NoError(t, store.Put(url, &domain.RetrievedInfo{Title: "new"}))

	got := store.Get(url)
	require.NotNil(t, got)
	assert.Equal(t, "new", got.Title)
}

func TestCorruptRecordTreatedAsMiss(t *testing.T) {
	store := newTestStore(t)
	url := "https://example.test/corrupt"

	require.NoError(t, store.Put(url, &domain.RetrievedInfo{Title: "fine"}))

	path := filepath.Join(store.dir, Fingerprint(url)+".json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	assert.Nil(t, store.Get(url))
}
