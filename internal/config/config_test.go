package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(dataDir string) Config {
	var cfg Config
	cfg.Download.DataDir = dataDir
	cfg.Download.DefaultDir = "/srv/library"
	return cfg
}

func TestLoadFoldersValidFile(t *testing.T) {
	dir := t.TempDir()
	payload := `{"folders": {"music": "/srv/music", "videos": "/srv/videos"}}`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "folders.json"), []byte(payload), 0o644))

	folders, err := LoadFolders(testConfig(dir))
	require.NoError(t, err)

	path, ok := folders.Path("music")
	assert.True(t, ok)
	assert.Equal(t, "/srv/music", path)
	assert.ElementsMatch(t, []string{"music", "videos"}, folders.Keys())
}

func TestLoadFoldersMissingFileFallsBack(t *testing.T) {
	folders, err := LoadFolders(testConfig(t.TempDir()))
	assert.Error(t, err)

	path, ok := folders.Path("admin")
	assert.True(t, ok, "fallback mapping must stay usable")
	assert.Equal(t, "/srv/library", path)
}

func TestLoadFoldersMalformedFileFallsBack(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "folders.json"), []byte("{nope"), 0o644))

	folders, err := LoadFolders(testConfig(dir))
	assert.Error(t, err)
	assert.Equal(t, Folders{"admin": "/srv/library"}, folders)
}

func TestLoadFoldersEmptyMapping(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "folders.json"), []byte(`{"folders": {}}`), 0o644))

	folders, err := LoadFolders(testConfig(dir))
	assert.Error(t, err)
	assert.Equal(t, Folders{"admin": "/srv/library"}, folders)
}

func TestPathUnknownKey(t *testing.T) {
	_, ok := Folders{"music": "/srv/music"}.Path("videos")
	assert.False(t, ok)
}
