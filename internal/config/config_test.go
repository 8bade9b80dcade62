package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := writeConfig(t, "[plex]\ntoken = \"abc\"\n")

	cfg, resolved, exists, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists {
		t.Fatal("expected config file to be found")
	}
	if resolved != path {
		t.Errorf("resolved path = %q, want %q", resolved, path)
	}
	if cfg.Plex.Library != "Anime" {
		t.Errorf("plex.library default = %q, want Anime", cfg.Plex.Library)
	}
	if cfg.AniList.RateLimitDelay != 5 {
		t.Errorf("anilist.rate_limit_delay default = %d, want 5", cfg.AniList.RateLimitDelay)
	}
	if cfg.Cache.ExpiryHours != 24 {
		t.Errorf("cache.expiry_hours default = %d, want 24", cfg.Cache.ExpiryHours)
	}
	if cfg.Overlays.MaxAirDays != 14 {
		t.Errorf("overlays.max_air_days default = %d, want 14", cfg.Overlays.MaxAirDays)
	}
	if cfg.Matching.MinConfidence != 0.6 {
		t.Errorf("matching.min_confidence default = %v, want 0.6", cfg.Matching.MinConfidence)
	}
	if len(cfg.AniList.Formats) != 4 {
		t.Errorf("anilist.formats default = %v", cfg.AniList.Formats)
	}
}

func TestLoadRequiresPlexToken(t *testing.T) {
	t.Setenv("PLEX_TOKEN", "")
	path := writeConfig(t, "")
	if _, _, _, err := Load(path); err == nil {
		t.Fatal("expected error when plex token missing")
	}
}

func TestLoadTokenFromEnvironment(t *testing.T) {
	t.Setenv("PLEX_TOKEN", "env-token")
	t.Setenv("ANILIST_TOKEN", "ani-token")
	path := writeConfig(t, "")

	cfg, _, _, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Plex.Token != "env-token" {
		t.Errorf("plex token = %q, want env-token", cfg.Plex.Token)
	}
	if cfg.AniList.Token != "ani-token" {
		t.Errorf("anilist token = %q, want ani-token", cfg.AniList.Token)
	}
}

func TestLoadNormalizesFormats(t *testing.T) {
	path := writeConfig(t, `
[plex]
token = "abc"

[anilist]
formats = ["tv", " ona ", "TV", ""]
`)
	cfg, _, _, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	want := []string{"TV", "ONA"}
	if len(cfg.AniList.Formats) != len(want) {
		t.Fatalf("formats = %v, want %v", cfg.AniList.Formats, want)
	}
	for i, format := range want {
		if cfg.AniList.Formats[i] != format {
			t.Errorf("formats[%d] = %q, want %q", i, cfg.AniList.Formats[i], format)
		}
	}
}

func TestLoadRejectsBadConfidence(t *testing.T) {
	path := writeConfig(t, `
[plex]
token = "abc"

[matching]
min_confidence = 1.5
`)
	if _, _, _, err := Load(path); err == nil {
		t.Fatal("expected error for out-of-range min_confidence")
	}
}

func TestLoadRejectsUnknownTimezone(t *testing.T) {
	path := writeConfig(t, `
timezone = "Mars/Olympus_Mons"

[plex]
token = "abc"
`)
	if _, _, _, err := Load(path); err == nil {
		t.Fatal("expected error for unknown timezone")
	}
}

func TestLocationDefaultsToLocal(t *testing.T) {
	cfg := Default()
	cfg.Timezone = ""
	loc, err := cfg.Location()
	if err != nil {
		t.Fatalf("Location returned error: %v", err)
	}
	if loc != time.Local {
		t.Errorf("expected time.Local, got %v", loc)
	}
}

func TestExpandPathHome(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skipf("no home directory: %v", err)
	}
	got, err := ExpandPath("~/cache.json")
	if err != nil {
		t.Fatalf("ExpandPath returned error: %v", err)
	}
	if !strings.HasPrefix(got, home) {
		t.Errorf("ExpandPath(~/cache.json) = %q, want prefix %q", got, home)
	}
}

func TestCreateSample(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	if err := CreateSample(path); err != nil {
		t.Fatalf("CreateSample returned error: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}
	if !strings.Contains(string(data), "[anilist]") {
		t.Error("sample config missing [anilist] section")
	}
}
