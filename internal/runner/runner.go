package runner

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/BulletTrain222/kometa-anilist-overlay/internal/airdate"
	"github.com/BulletTrain222/kometa-anilist-overlay/internal/anilist"
	"github.com/BulletTrain222/kometa-anilist-overlay/internal/config"
	"github.com/BulletTrain222/kometa-anilist-overlay/internal/logging"
	"github.com/BulletTrain222/kometa-anilist-overlay/internal/overlay"
	"github.com/BulletTrain222/kometa-anilist-overlay/internal/overrides"
	"github.com/BulletTrain222/kometa-anilist-overlay/internal/plex"
	"github.com/BulletTrain222/kometa-anilist-overlay/internal/resolver"
	"github.com/BulletTrain222/kometa-anilist-overlay/internal/runjournal"
	"github.com/BulletTrain222/kometa-anilist-overlay/internal/schedcache"
)

// ShowLister provides the library listing the run iterates over.
type ShowLister interface {
	ListShowTitles(ctx context.Context, library string) ([]string, error)
}

// Runner owns the components of an overlay update pass.
type Runner struct {
	cfg      *config.Config
	logger   *slog.Logger
	lister   ShowLister
	source   resolver.MediaSource
	resolver *resolver.Resolver
	cache    *schedcache.Store
	writer   *overlay.Writer
	journal  *runjournal.Journal
	location *time.Location
	now      func() time.Time

	journalSet bool
}

// Option overrides a component during construction.
type Option func(*Runner)

// WithLister replaces the Plex-backed library lister.
func WithLister(lister ShowLister) Option {
	return func(r *Runner) { r.lister = lister }
}

// WithMediaSource replaces the AniList-backed media source.
func WithMediaSource(source resolver.MediaSource) Option {
	return func(r *Runner) { r.source = source }
}

// WithJournal replaces the run journal. Passing nil disables journaling.
func WithJournal(journal *runjournal.Journal) Option {
	return func(r *Runner) {
		r.journal = journal
		r.journalSet = true
	}
}

// WithClock replaces the time source.
func WithClock(now func() time.Time) Option {
	return func(r *Runner) {
		if now != nil {
			r.now = now
		}
	}
}

// New wires a runner from configuration. Overrides, the cache, and the
// rate limiter are created fresh so each runner observes the state on
// disk at construction time.
func New(cfg *config.Config, logger *slog.Logger, opts ...Option) (*Runner, error) {
	location, err := cfg.Location()
	if err != nil {
		return nil, err
	}

	r := &Runner{
		cfg:      cfg,
		logger:   logger,
		location: location,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}

	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}

	if r.lister == nil {
		r.lister = plex.NewClient(cfg.Plex.URL, cfg.Plex.Token, logger,
			plex.WithRetries(cfg.Plex.ConnectRetries, time.Duration(cfg.Plex.ConnectRetryDelay)*time.Second),
			plex.WithHTTPClient(&http.Client{Timeout: time.Duration(cfg.Plex.RequestTimeout) * time.Second}),
		)
	}
	if r.source == nil {
		client, err := anilist.New(cfg.AniList.Token, cfg.AniList.BaseURL, cfg.AniList.Formats,
			anilist.WithTimeout(time.Duration(cfg.AniList.RequestTimeout)*time.Second))
		if err != nil {
			return nil, fmt.Errorf("build anilist client: %w", err)
		}
		r.source = client
	}
	if r.journal == nil && !r.journalSet {
		journal, err := runjournal.Open(filepath.Join(cfg.Paths.StateDir, "runs.db"))
		if err != nil {
			return nil, fmt.Errorf("open run journal: %w", err)
		}
		r.journal = journal
	}

	table, err := overrides.Load(cfg.Matching.OverridesPath, logger)
	if err != nil {
		return nil, fmt.Errorf("load overrides: %w", err)
	}

	r.cache = schedcache.NewStore(cfg.Cache.Path, logger)
	r.writer = overlay.NewWriter(cfg.Overlays.WeekdayFile, cfg.Overlays.CountdownFile, logger)
	r.resolver = resolver.New(r.source, r.cache, table, resolver.NewLimiter(cfg.RateLimitDelay()), logger, resolver.Options{
		MinConfidence:   cfg.Matching.MinConfidence,
		AcceptedFormats: cfg.AniList.Formats,
		MaxAirDays:      cfg.Overlays.MaxAirDays,
		CacheExpiry:     cfg.CacheExpiry(),
		ForceRefresh:    cfg.Cache.ForceRefresh,
		Location:        location,
	})
	return r, nil
}

// Close releases the run journal.
func (r *Runner) Close() error {
	if r.journal == nil {
		return nil
	}
	return r.journal.Close()
}

// Run executes one full pass. Listing and overlay-write failures abort
// the run; per-title resolution failures are counted and skipped.
// Cancellation of ctx is not observed once the pass has started:
// shutdown takes effect between passes, never mid-pass, so overlay
// files are only ever written from a complete label set.
func (r *Runner) Run(ctx context.Context) (runjournal.Summary, error) {
	ctx = context.WithoutCancel(ctx)
	started := r.now()
	runID := uuid.NewString()
	logger := r.logger.With(logging.String(logging.FieldRunID, runID))
	logger.Info("starting overlay update",
		logging.String("library", r.cfg.Plex.Library),
		logging.Int("cache_expiry_hours", r.cfg.Cache.ExpiryHours),
		logging.Bool("force_refresh", r.cfg.Cache.ForceRefresh))

	summary := runjournal.Summary{RunID: runID, StartedAt: started}

	titles, err := r.lister.ListShowTitles(ctx, r.cfg.Plex.Library)
	if err != nil {
		return summary, fmt.Errorf("list library shows: %w", err)
	}

	labels := make([]airdate.Label, 0, len(titles))
	for _, title := range titles {
		label, outcome := r.resolver.Resolve(ctx, title, r.now().In(r.location))
		summary.TotalShows++
		switch {
		case outcome.Err != nil:
			summary.Failures++
			continue
		case outcome.Ignored:
			continue
		case outcome.CacheHit:
			summary.CacheHits++
		}
		if outcome.RemoteCall {
			summary.RemoteCalls++
		}
		if outcome.AiringFound {
			summary.AiringFound++
		}
		labels = append(labels, label)
	}

	if err := r.writer.Write(labels); err != nil {
		return summary, err
	}

	if r.cfg.Cache.CleanupMissing {
		valid := make(map[string]struct{}, len(titles))
		for _, title := range titles {
			valid[title] = struct{}{}
		}
		removed, err := r.cache.Prune(valid)
		if err != nil {
			logger.Warn("cache prune failed", logging.Error(err))
		} else if removed > 0 {
			logger.Info("pruned stale cache entries", logging.Int("removed", removed))
		}
	}
	if err := r.cache.Save(); err != nil {
		logger.Warn("cache save failed", logging.Error(err))
	}

	summary.FinishedAt = r.now()
	if r.journal != nil {
		if err := r.journal.Record(ctx, summary); err != nil {
			logger.Warn("failed to record run summary", logging.Error(err))
		}
	}

	logger.Info("overlay update finished",
		logging.Int("total_shows", summary.TotalShows),
		logging.Int("cache_hits", summary.CacheHits),
		logging.Int("remote_calls", summary.RemoteCalls),
		logging.Int("airing_found", summary.AiringFound),
		logging.Int("failures", summary.Failures),
		logging.Duration("elapsed", summary.Duration()))
	return summary, nil
}
