package schedcache

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/BulletTrain222/kometa-anilist-overlay/internal/airdate"
	"github.com/BulletTrain222/kometa-anilist-overlay/internal/logging"
)

func testStore(t *testing.T) (*Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "anilist_cache.json")
	return NewStore(path, logging.NewNop()), path
}

func sampleSchedule() *airdate.ResolvedSchedule {
	air := time.Date(2026, 1, 9, 22, 0, 0, 0, time.UTC)
	return &airdate.ResolvedSchedule{
		Weekday:      "friday",
		AirUTC:       air,
		AirLocal:     air,
		Episode:      5,
		HoursUntil:   26.2,
		AniListID:    185660,
		MatchedTitle: "Cat's Eye",
		Confidence:   1.0,
		AverageScore: 72,
	}
}

func TestStoreRoundTrip(t *testing.T) {
	store, path := testStore(t)

	refreshed := time.Date(2026, 1, 8, 19, 48, 0, 0, time.UTC)
	if err := store.Put("Cat's Eye", sampleSchedule(), refreshed); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	// Reload from disk through a fresh store.
	reloaded := NewStore(path, logging.NewNop())
	entry, found := reloaded.Get("Cat's Eye")
	if !found {
		t.Fatal("expected entry after reload")
	}
	if entry.Schedule == nil {
		t.Fatal("expected schedule, got no-schedule marker")
	}
	if entry.Schedule.AniListID != 185660 {
		t.Errorf("anilist id = %d, want 185660", entry.Schedule.AniListID)
	}
	if entry.Schedule.Episode != 5 {
		t.Errorf("episode = %d, want 5", entry.Schedule.Episode)
	}
	if !entry.RefreshedAt.Equal(refreshed) {
		t.Errorf("refreshed_at = %v, want %v", entry.RefreshedAt, refreshed)
	}
}

func TestStoreNoScheduleMarker(t *testing.T) {
	store, path := testStore(t)

	if err := store.Put("Obscure Show", nil, time.Now().UTC()); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	reloaded := NewStore(path, logging.NewNop())
	entry, found := reloaded.Get("Obscure Show")
	if !found {
		t.Fatal("no-schedule marker should persist")
	}
	if entry.Schedule != nil {
		t.Errorf("expected nil schedule, got %+v", entry.Schedule)
	}
}

func TestStoreGetUnknownTitle(t *testing.T) {
	store, _ := testStore(t)
	if _, found := store.Get("never cached"); found {
		t.Error("expected miss for unknown title")
	}
}

func TestValid(t *testing.T) {
	now := time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC)
	expiry := 24 * time.Hour

	tests := []struct {
		name         string
		refreshedAt  time.Time
		forceRefresh bool
		want         bool
	}{
		{"fresh", now.Add(-1 * time.Hour), false, true},
		{"just inside expiry", now.Add(-expiry + time.Second), false, true},
		{"exactly at expiry", now.Add(-expiry), false, false},
		{"stale", now.Add(-48 * time.Hour), false, false},
		{"force refresh overrides freshness", now.Add(-1 * time.Hour), true, false},
		{"zero timestamp", time.Time{}, false, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entry := Entry{RefreshedAt: tt.refreshedAt}
			if got := Valid(entry, now, expiry, tt.forceRefresh); got != tt.want {
				t.Errorf("Valid() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestStorePrune(t *testing.T) {
	store, path := testStore(t)

	now := time.Now().UTC()
	for _, title := range []string{"Keep Me", "Drop Me", "Also Dropped"} {
		if err := store.Put(title, nil, now); err != nil {
			t.Fatalf("Put failed: %v", err)
		}
	}

	removed, err := store.Prune(map[string]struct{}{"Keep Me": {}})
	if err != nil {
		t.Fatalf("Prune failed: %v", err)
	}
	if removed != 2 {
		t.Errorf("removed = %d, want 2", removed)
	}
	if store.Len() != 1 {
		t.Errorf("entry count = %d, want 1", store.Len())
	}

	reloaded := NewStore(path, logging.NewNop())
	if _, found := reloaded.Get("Drop Me"); found {
		t.Error("pruned entry survived reload")
	}
	if _, found := reloaded.Get("Keep Me"); !found {
		t.Error("retained entry missing after reload")
	}
}

func TestStorePruneNothingToRemove(t *testing.T) {
	store, _ := testStore(t)

	if err := store.Put("Keep Me", nil, time.Now().UTC()); err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	removed, err := store.Prune(map[string]struct{}{"Keep Me": {}})
	if err != nil {
		t.Fatalf("Prune failed: %v", err)
	}
	if removed != 0 {
		t.Errorf("removed = %d, want 0", removed)
	}
}

func TestStorePruneExpired(t *testing.T) {
	store, _ := testStore(t)

	now := time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC)
	if err := store.Put("Fresh", nil, now.Add(-1*time.Hour)); err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	if err := store.Put("Stale", nil, now.Add(-48*time.Hour)); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	removed, err := store.PruneExpired(now, 24*time.Hour)
	if err != nil {
		t.Fatalf("PruneExpired failed: %v", err)
	}
	if removed != 1 {
		t.Errorf("removed = %d, want 1", removed)
	}
	if _, found := store.Get("Fresh"); !found {
		t.Error("fresh entry should survive")
	}
	if _, found := store.Get("Stale"); found {
		t.Error("stale entry should be removed")
	}
}

func TestStoreDropsCorruptEntries(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "anilist_cache.json")

	raw := map[string]json.RawMessage{
		"Good Show": json.RawMessage(`{"schedule":null,"refreshed_at":"2026-01-08T19:48:00Z"}`),
		"Bad Shape": json.RawMessage(`{"schedule":"not an object","refreshed_at":"2026-01-08T19:48:00Z"}`),
		"No Stamp":  json.RawMessage(`{"schedule":null}`),
	}
	data, err := json.Marshal(raw)
	if err != nil {
		t.Fatalf("marshal fixture: %v", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	store := NewStore(path, logging.NewNop())
	if store.Len() != 1 {
		t.Errorf("entry count = %d, want 1", store.Len())
	}
	if _, found := store.Get("Good Show"); !found {
		t.Error("valid entry should survive corrupt siblings")
	}
}

func TestStoreMalformedFileStartsEmpty(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "anilist_cache.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	store := NewStore(path, logging.NewNop())
	if store.Len() != 0 {
		t.Errorf("entry count = %d, want 0", store.Len())
	}

	// The store must still be writable after a failed load.
	if err := store.Put("Fresh Start", nil, time.Now().UTC()); err != nil {
		t.Fatalf("Put after failed load: %v", err)
	}
}

func TestStoreClear(t *testing.T) {
	store, path := testStore(t)

	if err := store.Put("Anything", sampleSchedule(), time.Now().UTC()); err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	if err := store.Clear(); err != nil {
		t.Fatalf("Clear failed: %v", err)
	}

	reloaded := NewStore(path, logging.NewNop())
	if reloaded.Len() != 0 {
		t.Errorf("entry count after clear = %d, want 0", reloaded.Len())
	}
}

func TestStoreListSorted(t *testing.T) {
	store, _ := testStore(t)

	now := time.Now().UTC()
	for _, title := range []string{"Zeta Gundam", "Akira", "Monster"} {
		if err := store.Put(title, nil, now); err != nil {
			t.Fatalf("Put failed: %v", err)
		}
	}

	entries := store.List()
	want := []string{"Akira", "Monster", "Zeta Gundam"}
	if len(entries) != len(want) {
		t.Fatalf("entry count = %d, want %d", len(entries), len(want))
	}
	for i, title := range want {
		if entries[i].Title != title {
			t.Errorf("entries[%d].Title = %q, want %q", i, entries[i].Title, title)
		}
	}
}

func TestStoreEmptyPathIsNoop(t *testing.T) {
	store := NewStore("", logging.NewNop())
	if err := store.Put("Anything", nil, time.Now().UTC()); err != nil {
		t.Fatalf("Put on pathless store: %v", err)
	}
	if _, found := store.Get("Anything"); found {
		t.Error("pathless store should not retain entries")
	}
}
