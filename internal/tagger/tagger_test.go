package tagger

import (
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	id3v2 "github.com/bogem/id3v2/v2"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/w0lfzk1n/yt-dlp-WebGui/internal/progress"
)

func TestAlbumLabel(t *testing.T) {
	assert.Equal(t, "Alex - Road Trip", AlbumLabel("alex", "Road Trip"))
	assert.Equal(t, "Admin - Others", AlbumLabel("admin", "Others"))
	assert.Equal(t, " - Mix", AlbumLabel("", "Mix"))
}

func TestTagMP3WritesAlbumFrames(t *testing.T) {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	bus := progress.NewBus(logger)

	path := filepath.Join(t.TempDir(), "song.mp3")
	require.NoError(t, os.WriteFile(path, []byte("not really audio"), 0o644))

	New(logger, bus).Tag(path, "alex", "Mix")

	tag, err := id3v2.Open(path, id3v2.Options{Parse: true})
	require.NoError(t, err)
	defer tag.Close()
	assert.Equal(t, "Alex - Mix", tag.Album())

	ev, ok := bus.Next(100 * time.Millisecond)
	require.True(t, ok)
	assert.Contains(t, ev.Text, "Updated metadata")
}

func TestTagUnknownExtensionIsNoop(t *testing.T) {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	bus := progress.NewBus(logger)

	path := filepath.Join(t.TempDir(), "notes.txt")
	require.NoError(t, os.WriteFile(path, []byte("text"), 0o644))

	New(logger, bus).Tag(path, "alex", "Mix")

	_, ok := bus.Next(50 * time.Millisecond)
	assert.False(t, ok, "non-media files produce no events")

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "text", string(raw), "file must be untouched")
}
