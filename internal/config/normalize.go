package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePlex(); err != nil {
		return err
	}
	if err := c.normalizeAniList(); err != nil {
		return err
	}
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeLogging()
	c.Daemon.Schedule = strings.TrimSpace(c.Daemon.Schedule)
	if c.Daemon.Schedule == "" {
		c.Daemon.Schedule = defaultDaemonSchedule
	}
	c.Timezone = strings.TrimSpace(c.Timezone)
	if c.Timezone == "" {
		if value, ok := os.LookupEnv("TZ"); ok {
			c.Timezone = strings.TrimSpace(value)
		}
	}
	return nil
}

func (c *Config) normalizePlex() error {
	c.Plex.URL = strings.TrimRight(strings.TrimSpace(c.Plex.URL), "/")
	if c.Plex.URL == "" {
		c.Plex.URL = defaultPlexURL
	}
	c.Plex.Token = strings.TrimSpace(c.Plex.Token)
	if c.Plex.Token == "" {
		if value, ok := os.LookupEnv("PLEX_TOKEN"); ok {
			c.Plex.Token = strings.TrimSpace(value)
		}
	}
	c.Plex.Library = strings.TrimSpace(c.Plex.Library)
	if c.Plex.Library == "" {
		c.Plex.Library = defaultPlexLibrary
	}
	if c.Plex.ConnectRetries <= 0 {
		c.Plex.ConnectRetries = defaultPlexRetries
	}
	if c.Plex.ConnectRetryDelay <= 0 {
		c.Plex.ConnectRetryDelay = defaultPlexRetryDelay
	}
	if c.Plex.RequestTimeout <= 0 {
		c.Plex.RequestTimeout = defaultPlexTimeout
	}
	return nil
}

func (c *Config) normalizeAniList() error {
	c.AniList.Token = strings.TrimSpace(c.AniList.Token)
	if c.AniList.Token == "" {
		if value, ok := os.LookupEnv("ANILIST_TOKEN"); ok {
			c.AniList.Token = strings.TrimSpace(value)
		}
	}
	c.AniList.BaseURL = strings.TrimSpace(c.AniList.BaseURL)
	if c.AniList.BaseURL == "" {
		c.AniList.BaseURL = defaultAniListBaseURL
	}
	if c.AniList.RateLimitDelay < 0 {
		c.AniList.RateLimitDelay = defaultRateLimitDelay
	}
	if c.AniList.RequestTimeout <= 0 {
		c.AniList.RequestTimeout = defaultAniListTimeout
	}

	formats := make([]string, 0, len(c.AniList.Formats))
	seen := make(map[string]struct{}, len(c.AniList.Formats))
	for _, format := range c.AniList.Formats {
		normalized := strings.ToUpper(strings.TrimSpace(format))
		if normalized == "" {
			continue
		}
		if _, exists := seen[normalized]; exists {
			continue
		}
		seen[normalized] = struct{}{}
		formats = append(formats, normalized)
	}
	if len(formats) == 0 {
		formats = defaultFormats()
	}
	c.AniList.Formats = formats
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Matching.OverridesPath) == "" {
		c.Matching.OverridesPath = defaultOverridesPath
	}
	if c.Matching.OverridesPath, err = expandPath(c.Matching.OverridesPath); err != nil {
		return fmt.Errorf("matching.overrides_path: %w", err)
	}
	if strings.TrimSpace(c.Cache.Path) == "" {
		c.Cache.Path = defaultCachePath
	}
	if c.Cache.Path, err = expandPath(c.Cache.Path); err != nil {
		return fmt.Errorf("cache.path: %w", err)
	}
	if strings.TrimSpace(c.Overlays.WeekdayFile) == "" {
		c.Overlays.WeekdayFile = defaultWeekdayFile
	}
	if c.Overlays.WeekdayFile, err = expandPath(c.Overlays.WeekdayFile); err != nil {
		return fmt.Errorf("overlays.weekday_file: %w", err)
	}
	if strings.TrimSpace(c.Overlays.CountdownFile) == "" {
		c.Overlays.CountdownFile = defaultCountdownFile
	}
	if c.Overlays.CountdownFile, err = expandPath(c.Overlays.CountdownFile); err != nil {
		return fmt.Errorf("overlays.countdown_file: %w", err)
	}
	if strings.TrimSpace(c.Paths.StateDir) == "" {
		c.Paths.StateDir = defaultStateDir
	}
	if c.Paths.StateDir, err = expandPath(c.Paths.StateDir); err != nil {
		return fmt.Errorf("paths.state_dir: %w", err)
	}
	if strings.TrimSpace(c.Logging.File) != "" {
		if c.Logging.File, err = expandPath(c.Logging.File); err != nil {
			return fmt.Errorf("logging.file: %w", err)
		}
	}
	return nil
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	if c.Logging.MaxSizeMB <= 0 {
		c.Logging.MaxSizeMB = defaultLogMaxSizeMB
	}
	if c.Logging.MaxBackups < 0 {
		c.Logging.MaxBackups = defaultLogMaxBackups
	}
}
