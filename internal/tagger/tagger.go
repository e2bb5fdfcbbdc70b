// Package tagger rewrites album/artist-group tags on produced media files.
// Tag failures are never fatal to a job; they are logged and dropped.
package tagger

import (
	"fmt"
	"strings"
	"unicode"

	mp4tag "github.com/Sorrow446/go-mp4tag"
	id3v2 "github.com/bogem/id3v2/v2"
	"github.com/sirupsen/logrus"

	"github.com/w0lfzk1n/yt-dlp-WebGui/internal/progress"
)

type Tagger struct {
	log *logrus.Entry
	bus *progress.Bus
}

func New(log *logrus.Logger, bus *progress.Bus) *Tagger {
	return &Tagger{
		log: log.WithField("component", "tagger"),
		bus: bus,
	}
}

// AlbumLabel composes the album/artist-group value written to every file of
// a job: the owning user's name (capitalized) plus the target folder name.
func AlbumLabel(owner, album string) string {
	return fmt.Sprintf("%s - %s", capitalize(owner), album)
}

// Tag writes container tags appropriate to path's format. Errors are
// reported through the bus and swallowed; for MP3 one repair pass is
// attempted before giving up.
func (t *Tagger) Tag(path, owner, album string) {
	label := AlbumLabel(owner, album)

	var err error
	switch {
	case strings.HasSuffix(path, ".mp3"):
		err = tagMP3(path, label)
		if err != nil {
			t.log.Warnf("tag %s failed, attempting repair: %v", path, err)
			if repairErr := repairMP3(path); repairErr == nil {
				err = tagMP3(path, label)
			}
		}
	case strings.HasSuffix(path, ".mp4"):
		err = tagMP4(path, label)
	default:
		return
	}

	if err != nil {
		t.bus.Publishf("❌ Error while updating metadata for %s: %v", path, err)
		return
	}
	t.bus.Publishf("✅ Updated metadata for: %s", path)
}

func tagMP3(path, label string) error {
	tag, err := id3v2.Open(path, id3v2.Options{Parse: true})
	if err != nil {
		return fmt.Errorf("open id3 tags: %w", err)
	}
	defer tag.Close()

	tag.SetAlbum(label)
	tag.AddTextFrame("TPE2", tag.DefaultEncoding(), label)

	if err := tag.Save(); err != nil {
		return fmt.Errorf("save id3 tags: %w", err)
	}
	return nil
}

// repairMP3 rewrites a fresh tag header onto a file whose existing tags are
// unreadable, so the next tag write can succeed.
func repairMP3(path string) error {
	tag, err := id3v2.Open(path, id3v2.Options{Parse: false})
	if err != nil {
		return fmt.Errorf("reopen for repair: %w", err)
	}
	defer tag.Close()

	if err := tag.Save(); err != nil {
		return fmt.Errorf("rewrite tag header: %w", err)
	}
	return nil
}

func tagMP4(path, label string) error {
	mp4, err := mp4tag.Open(path)
	if err != nil {
		return fmt.Errorf("open mp4 container: %w", err)
	}
	defer mp4.Close()

	tags := &mp4tag.MP4Tags{
		Album:       label,
		AlbumArtist: label,
	}
	if err := mp4.Write(tags, nil); err != nil {
		return fmt.Errorf("write mp4 tags: %w", err)
	}
	return nil
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	runes := []rune(s)
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}
