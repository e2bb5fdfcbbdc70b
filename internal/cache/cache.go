// Package cache is the content-addressed store of previously retrieved
// source metadata, keyed by a short fingerprint of the source URL.
package cache

import (
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/w0lfzk1n/yt-dlp-WebGui/internal/domain"
	"github.com/w0lfzk1n/yt-dlp-WebGui/internal/progress"
)

const keyLen = 10

// Store keeps one JSON record per fingerprint under dir. Entries never
// expire; a Put for an existing fingerprint overwrites the record.
type Store struct {
	dir string
	log *logrus.Entry
	bus *progress.Bus
}

type record struct {
	URL      string                `json:"url"`
	Info     *domain.RetrievedInfo `json:"info"`
	StoredAt time.Time             `json:"stored_at"`
}

func NewStore(dir string, log *logrus.Logger, bus *progress.Bus) *Store {
	return &Store{
		dir: dir,
		log: log.WithField("component", "cache"),
		bus: bus,
	}
}

// Fingerprint derives the cache key for a source URL. Collisions at the
// expected scale are accepted as negligible.
func Fingerprint(url string) string {
	sum := md5.Sum([]byte(url))
	return hex.EncodeToString(sum[:])[:keyLen]
}

// Get returns the cached info for url, or nil when no usable record exists.
// A record that fails to parse is treated the same as a missing one.
func (s *Store) Get(url string) *domain.RetrievedInfo {
	key := Fingerprint(url)

	raw, err := os.ReadFile(s.path(key))
	if err != nil {
		return nil
	}
	s.announce(key)

	var rec record
	if err := json.Unmarshal(raw, &rec); err != nil {
		s.log.Warnf("cache record %s unreadable, treating as miss: %v", key, err)
		return nil
	}
	return rec.Info
}

// Put stores info for url, unconditionally replacing any previous record.
func (s *Store) Put(url string, info *domain.RetrievedInfo) error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("create cache dir: %w", err)
	}

	key := Fingerprint(url)
	s.announce(key)

	raw, err := json.MarshalIndent(record{URL: url, Info: info, StoredAt: time.Now().UTC()}, "", "    ")
	if err != nil {
		return fmt.Errorf("encode cache record: %w", err)
	}
	if err := os.WriteFile(s.path(key), raw, 0o644); err != nil {
		return fmt.Errorf("write cache record: %w", err)
	}
	return nil
}

func (s *Store) path(key string) string {
	return filepath.Join(s.dir, key+".json")
}

func (s *Store) announce(key string) {
	if s.bus != nil {
		s.bus.Publishf("💾 Cached Hash: %s", key)
	} else {
		s.log.Infof("cached hash: %s", key)
	}
}
