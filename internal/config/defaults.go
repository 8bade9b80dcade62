package config

const (
	defaultPlexURL            = "http://127.0.0.1:32400"
	defaultPlexLibrary        = "Anime"
	defaultPlexRetries        = 5
	defaultPlexRetryDelay     = 10
	defaultPlexTimeout        = 15
	defaultAniListBaseURL     = "https://graphql.anilist.co"
	defaultRateLimitDelay     = 5
	defaultAniListTimeout     = 10
	defaultMinConfidence      = 0.6
	defaultOverridesPath      = "~/.config/anilist-overlay/overrides.json"
	defaultCachePath          = "~/.local/share/anilist-overlay/anilist_cache.json"
	defaultCacheExpiryHours   = 24
	defaultWeekdayFile        = "~/.local/share/anilist-overlay/overlays/next_air_date.yml"
	defaultCountdownFile      = "~/.local/share/anilist-overlay/overlays/airing_day_overlays.yml"
	defaultMaxAirDays         = 14
	defaultLogFormat          = "console"
	defaultLogLevel           = "info"
	defaultLogMaxSizeMB       = 5
	defaultLogMaxBackups      = 7
	defaultDaemonSchedule     = "0 */6 * * *"
	defaultStateDir           = "~/.local/share/anilist-overlay"
)

func defaultFormats() []string {
	return []string{"TV", "TV_SHORT", "ONA", "OVA"}
}

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Plex: Plex{
			URL:               defaultPlexURL,
			Library:           defaultPlexLibrary,
			ConnectRetries:    defaultPlexRetries,
			ConnectRetryDelay: defaultPlexRetryDelay,
			RequestTimeout:    defaultPlexTimeout,
		},
		AniList: AniList{
			BaseURL:        defaultAniListBaseURL,
			Formats:        defaultFormats(),
			RateLimitDelay: defaultRateLimitDelay,
			RequestTimeout: defaultAniListTimeout,
		},
		Matching: Matching{
			MinConfidence: defaultMinConfidence,
			OverridesPath: defaultOverridesPath,
		},
		Cache: Cache{
			Path:        defaultCachePath,
			ExpiryHours: defaultCacheExpiryHours,
		},
		Overlays: Overlays{
			WeekdayFile:   defaultWeekdayFile,
			CountdownFile: defaultCountdownFile,
			MaxAirDays:    defaultMaxAirDays,
		},
		Logging: Logging{
			Format:     defaultLogFormat,
			Level:      defaultLogLevel,
			MaxSizeMB:  defaultLogMaxSizeMB,
			MaxBackups: defaultLogMaxBackups,
		},
		Daemon: Daemon{
			Schedule: defaultDaemonSchedule,
		},
		Paths: Paths{
			StateDir: defaultStateDir,
		},
	}
}
