package config

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Config holds application level configuration aggregated from env/config files.
type Config struct {
	Server struct {
		Addr string
	}
	Database struct {
		Path string
	}
	Download struct {
		StagingDir string
		CacheDir   string
		DataDir    string
		DefaultDir string
	}
	Provider struct {
		Binary      string
		CookiesFile string
		Retries     int
	}
	Permissions struct {
		User  string
		Group string
	}
	Log struct {
		Dir string
	}
}

// FoldersFile returns the path of the folder-key mapping file.
func (c Config) FoldersFile() string {
	return filepath.Join(c.Download.DataDir, "folders.json")
}

// Load reads configuration from environment variables and optional config files.
func Load() (Config, error) {
	loadDotEnv()

	v := viper.New()
	v.SetEnvPrefix("WEBGUI")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("server.addr", "0.0.0.0:3011")
	v.SetDefault("database.path", "data/webgui.db")
	v.SetDefault("download.stagingdir", "output")
	v.SetDefault("download.cachedir", "cache")
	v.SetDefault("download.datadir", "data")
	v.SetDefault("download.defaultdir", "final_output")
	v.SetDefault("provider.binary", "yt-dlp")
	v.SetDefault("provider.cookiesfile", "data/cookies.txt")
	v.SetDefault("provider.retries", 5)
	v.SetDefault("permissions.user", "")
	v.SetDefault("permissions.group", "")
	v.SetDefault("log.dir", "logs")

	v.SetConfigName("config")
	v.AddConfigPath(".")
	_ = v.ReadInConfig() // optional file

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return cfg, nil
}

// Folders maps a user-facing folder key to the physical base path of that
// library tree. The mapping is owned by data/folders.json, not computed here.
type Folders map[string]string

// LoadFolders reads the folder mapping file. A missing or unreadable file
// falls back to a single default mapping so the service stays usable.
func LoadFolders(cfg Config) (Folders, error) {
	raw, err := os.ReadFile(cfg.FoldersFile())
	if err != nil {
		return Folders{"admin": cfg.Download.DefaultDir}, fmt.Errorf("read folders file: %w", err)
	}

	var payload struct {
		Folders Folders `json:"folders"`
	}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return Folders{"admin": cfg.Download.DefaultDir}, fmt.Errorf("parse folders file: %w", err)
	}
	if len(payload.Folders) == 0 {
		return Folders{"admin": cfg.Download.DefaultDir}, fmt.Errorf("folders file has no entries")
	}
	return payload.Folders, nil
}

// Path resolves a folder key to its physical base path.
func (f Folders) Path(key string) (string, bool) {
	p, ok := f[key]
	return p, ok
}

// Keys returns the known folder keys.
func (f Folders) Keys() []string {
	keys := make([]string, 0, len(f))
	for k := range f {
		keys = append(keys, k)
	}
	return keys
}

func loadDotEnv() {
	file, err := os.Open(".env")
	if err != nil {
		return
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		partsIndex := strings.Index(line, "=")
		if partsIndex <= 0 {
			continue
		}

		key := strings.TrimSpace(line[:partsIndex])
		value := strings.TrimSpace(line[partsIndex+1:])
		value = strings.Trim(value, `"'`)
		if key == "" {
			continue
		}

		if _, exists := os.LookupEnv(key); !exists {
			_ = os.Setenv(key, value)
		}
	}
}
