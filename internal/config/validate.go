package config

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePlex(); err != nil {
		return err
	}
	if err := c.validateAniList(); err != nil {
		return err
	}
	if err := c.validateMatching(); err != nil {
		return err
	}
	if err := c.validateCache(); err != nil {
		return err
	}
	if err := c.validateOverlays(); err != nil {
		return err
	}
	if c.Timezone != "" {
		if _, err := time.LoadLocation(c.Timezone); err != nil {
			return fmt.Errorf("timezone: unknown zone %q", c.Timezone)
		}
	}
	return nil
}

func (c *Config) validatePlex() error {
	if strings.TrimSpace(c.Plex.Token) == "" {
		defaultPath, err := DefaultConfigPath()
		if err != nil {
			defaultPath = "~/.config/anilist-overlay/config.toml"
		}
		return fmt.Errorf("plex.token is required. Set PLEX_TOKEN env var or edit %s (create with 'anilist-overlay config init')", defaultPath)
	}
	if strings.TrimSpace(c.Plex.Library) == "" {
		return errors.New("plex.library must be set")
	}
	return nil
}

func (c *Config) validateAniList() error {
	if strings.TrimSpace(c.AniList.BaseURL) == "" {
		return errors.New("anilist.base_url must be set")
	}
	if len(c.AniList.Formats) == 0 {
		return errors.New("anilist.formats must include at least one format")
	}
	return nil
}

func (c *Config) validateMatching() error {
	if c.Matching.MinConfidence < 0 || c.Matching.MinConfidence > 1 {
		return errors.New("matching.min_confidence must be between 0 and 1")
	}
	return nil
}

func (c *Config) validateCache() error {
	if c.Cache.ExpiryHours <= 0 {
		return errors.New("cache.expiry_hours must be positive")
	}
	return nil
}

func (c *Config) validateOverlays() error {
	if c.Overlays.MaxAirDays <= 0 {
		return errors.New("overlays.max_air_days must be positive")
	}
	return nil
}
