package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Plex contains connection settings for the Plex media server that
// provides the library listing.
type Plex struct {
	URL               string `toml:"url"`
	Token             string `toml:"token"`
	Library           string `toml:"library"`
	ConnectRetries    int    `toml:"connect_retries"`
	ConnectRetryDelay int    `toml:"connect_retry_delay"`
	RequestTimeout    int    `toml:"request_timeout"`
}

// AniList contains settings for the AniList GraphQL API.
type AniList struct {
	Token          string   `toml:"token"`
	BaseURL        string   `toml:"base_url"`
	Formats        []string `toml:"formats"`
	RateLimitDelay int      `toml:"rate_limit_delay"`
	RequestTimeout int      `toml:"request_timeout"`
}

// Matching contains fuzzy matcher tuning.
type Matching struct {
	// MinConfidence is the similarity score below which a search result
	// is discarded instead of cached.
	MinConfidence float64 `toml:"min_confidence"`
	OverridesPath string  `toml:"overrides_path"`
}

// Cache contains settings for the persistent air-date cache.
type Cache struct {
	Path           string `toml:"path"`
	ExpiryHours    int    `toml:"expiry_hours"`
	ForceRefresh   bool   `toml:"force_refresh"`
	CleanupMissing bool   `toml:"cleanup_missing"`
}

// Overlays contains output settings for the generated Kometa overlay files.
type Overlays struct {
	WeekdayFile   string `toml:"weekday_file"`
	CountdownFile string `toml:"countdown_file"`
	MaxAirDays    int    `toml:"max_air_days"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format     string `toml:"format"`
	Level      string `toml:"level"`
	File       string `toml:"file"`
	MaxSizeMB  int    `toml:"max_size_mb"`
	MaxBackups int    `toml:"max_backups"`
}

// Daemon contains settings for periodic operation.
type Daemon struct {
	// Schedule is a cron expression controlling how often a full run
	// executes when the daemon is used.
	Schedule string `toml:"schedule"`
}

// Paths contains state directory configuration.
type Paths struct {
	StateDir string `toml:"state_dir"`
}

// Config encapsulates all configuration values for the overlay generator.
type Config struct {
	Timezone string   `toml:"timezone"`
	Plex     Plex     `toml:"plex"`
	AniList  AniList  `toml:"anilist"`
	Matching Matching `toml:"matching"`
	Cache    Cache    `toml:"cache"`
	Overlays Overlays `toml:"overlays"`
	Logging  Logging  `toml:"logging"`
	Daemon   Daemon   `toml:"daemon"`
	Paths    Paths    `toml:"paths"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/anilist-overlay/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned
// config has all path fields expanded and normalized. The boolean reports
// whether a config file was found.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("anilist-overlay.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the directories required for a run.
func (c *Config) EnsureDirectories() error {
	dirs := []string{
		c.Paths.StateDir,
		filepath.Dir(c.Cache.Path),
		filepath.Dir(c.Overlays.WeekdayFile),
		filepath.Dir(c.Overlays.CountdownFile),
	}
	for _, dir := range dirs {
		if dir == "" || dir == "." {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// Location resolves the configured timezone, falling back to the host's
// local zone when unset.
func (c *Config) Location() (*time.Location, error) {
	name := strings.TrimSpace(c.Timezone)
	if name == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("resolve timezone %q: %w", name, err)
	}
	return loc, nil
}

// CacheExpiry returns the cache expiry as a duration.
func (c *Config) CacheExpiry() time.Duration {
	return time.Duration(c.Cache.ExpiryHours) * time.Hour
}

// RateLimitDelay returns the minimum spacing between AniList calls.
func (c *Config) RateLimitDelay() time.Duration {
	return time.Duration(c.AniList.RateLimitDelay) * time.Second
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
