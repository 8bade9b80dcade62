package schedcache

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/BulletTrain222/kometa-anilist-overlay/internal/airdate"
	"github.com/BulletTrain222/kometa-anilist-overlay/internal/logging"
)

// Entry is one cached resolution outcome. A nil Schedule is the
// explicit "no schedule" marker: the title was resolved but has no
// upcoming episode (or no acceptable match), and should not be
// re-queried until the entry expires.
type Entry struct {
	Title       string                    `json:"-"`
	Schedule    *airdate.ResolvedSchedule `json:"schedule"`
	RefreshedAt time.Time                 `json:"refreshed_at"`
}

// Valid reports whether the entry can be reused without re-querying:
// it must be younger than expiry and the run must not force a refresh.
func Valid(entry Entry, now time.Time, expiry time.Duration, forceRefresh bool) bool {
	if forceRefresh {
		return false
	}
	if entry.RefreshedAt.IsZero() {
		return false
	}
	return now.Sub(entry.RefreshedAt) < expiry
}

// Store provides access to the on-disk schedule cache. A single run has
// a single writer; the mutex only guards against concurrent CLI reads.
type Store struct {
	path    string
	logger  *slog.Logger
	mu      sync.RWMutex
	entries map[string]Entry
}

// NewStore creates a cache store backed by the given file. If path is
// empty all operations are no-ops. A missing or wholly malformed file
// starts the cache empty; individually corrupt entries are dropped with
// a warning so one bad record never discards the rest.
func NewStore(path string, logger *slog.Logger) *Store {
	logger = logging.NewComponentLogger(logger, "schedcache")

	s := &Store{
		path:    strings.TrimSpace(path),
		logger:  logger,
		entries: make(map[string]Entry),
	}
	if s.path == "" {
		return s
	}

	if err := s.load(); err != nil {
		logger.Warn("failed to load schedule cache, starting empty",
			logging.String("path", s.path),
			logging.Error(err))
		s.entries = make(map[string]Entry)
	}
	return s
}

// Get returns the cache entry for the given library title if present.
func (s *Store) Get(title string) (Entry, bool) {
	title = strings.TrimSpace(title)
	if title == "" || s.path == "" {
		return Entry{}, false
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	entry, found := s.entries[title]
	return entry, found
}

// Put records a resolution outcome for a title, overwriting any prior
// entry, and persists the store. A nil schedule stores the explicit
// "no schedule" marker.
func (s *Store) Put(title string, schedule *airdate.ResolvedSchedule, refreshedAt time.Time) error {
	title = strings.TrimSpace(title)
	if title == "" {
		return errors.New("cache title cannot be empty")
	}
	if s.path == "" {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries[title] = Entry{Title: title, Schedule: schedule, RefreshedAt: refreshedAt}
	if err := s.save(); err != nil {
		return fmt.Errorf("persist cache: %w", err)
	}

	s.logger.Debug("cached schedule",
		logging.String(logging.FieldTitle, title),
		logging.Bool("has_schedule", schedule != nil))
	return nil
}

// Prune deletes every entry whose title is not in validTitles and
// persists the result. Returns the number of entries removed.
func (s *Store) Prune(validTitles map[string]struct{}) (int, error) {
	if s.path == "" {
		return 0, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for title := range s.entries {
		if _, ok := validTitles[title]; ok {
			continue
		}
		delete(s.entries, title)
		removed++
		s.logger.Debug("pruned cache entry for missing title", logging.String(logging.FieldTitle, title))
	}
	if removed == 0 {
		return 0, nil
	}
	if err := s.save(); err != nil {
		return removed, fmt.Errorf("persist cache: %w", err)
	}
	return removed, nil
}

// PruneExpired deletes entries whose refresh timestamp is at or past
// the expiry horizon and persists the result. Returns the number of
// entries removed.
func (s *Store) PruneExpired(now time.Time, expiry time.Duration) (int, error) {
	if s.path == "" {
		return 0, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for title, entry := range s.entries {
		if Valid(entry, now, expiry, false) {
			continue
		}
		delete(s.entries, title)
		removed++
	}
	if removed == 0 {
		return 0, nil
	}
	if err := s.save(); err != nil {
		return removed, fmt.Errorf("persist cache: %w", err)
	}
	return removed, nil
}

// List returns all entries sorted by title.
func (s *Store) List() []Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries := make([]Entry, 0, len(s.entries))
	for _, entry := range s.entries {
		entries = append(entries, entry)
	}
	sortEntries(entries)
	return entries
}

// Len returns the number of cached entries.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// Clear removes all entries and persists the empty cache.
func (s *Store) Clear() error {
	if s.path == "" {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries = make(map[string]Entry)
	if err := s.save(); err != nil {
		return fmt.Errorf("persist cache: %w", err)
	}
	return nil
}

// Save flushes the store to disk. Put and Prune already persist
// incrementally; Save exists for run-end flushing after bulk edits.
func (s *Store) Save() error {
	if s.path == "" {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.save()
}

// load reads the cache file, validating each entry independently.
func (s *Store) load() error {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read cache file: %w", err)
	}
	if len(data) == 0 {
		return nil
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("parse cache file: %w", err)
	}

	s.entries = make(map[string]Entry, len(raw))
	for title, payload := range raw {
		title = strings.TrimSpace(title)
		if title == "" {
			continue
		}
		var entry Entry
		if err := json.Unmarshal(payload, &entry); err != nil {
			s.logger.Warn("dropping corrupt cache entry",
				logging.String(logging.FieldTitle, title),
				logging.Error(err))
			continue
		}
		if entry.RefreshedAt.IsZero() {
			s.logger.Warn("dropping cache entry without timestamp",
				logging.String(logging.FieldTitle, title))
			continue
		}
		entry.Title = title
		s.entries[title] = entry
	}

	s.logger.Debug("loaded schedule cache",
		logging.Int("entry_count", len(s.entries)),
		logging.String("path", s.path))
	return nil
}

// save writes the cache to disk atomically via a temp-file rename.
// JSON object keys serialize sorted, keeping output deterministic.
func (s *Store) save() error {
	data, err := json.MarshalIndent(s.entries, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal cache: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create cache directory: %w", err)
	}

	tmpPath := s.path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o644); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := os.Rename(tmpPath, s.path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("rename temp file: %w", err)
	}
	return nil
}

func sortEntries(entries []Entry) {
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Title < entries[j].Title
	})
}
