package resolver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"

	"github.com/BulletTrain222/kometa-anilist-overlay/internal/airdate"
	"github.com/BulletTrain222/kometa-anilist-overlay/internal/anilist"
	"github.com/BulletTrain222/kometa-anilist-overlay/internal/logging"
	"github.com/BulletTrain222/kometa-anilist-overlay/internal/match"
	"github.com/BulletTrain222/kometa-anilist-overlay/internal/overrides"
	"github.com/BulletTrain222/kometa-anilist-overlay/internal/schedcache"
)

// MediaSource is the AniList surface the resolver depends on.
type MediaSource interface {
	Search(ctx context.Context, title string) ([]anilist.Media, error)
	Fetch(ctx context.Context, id int64) (*anilist.Media, error)
}

// Options tunes a resolver instance for one run.
type Options struct {
	MinConfidence   float64
	AcceptedFormats []string
	MaxAirDays      int
	CacheExpiry     time.Duration
	ForceRefresh    bool
	Location        *time.Location
}

// Outcome reports how a single title was handled, for run accounting.
type Outcome struct {
	Ignored     bool
	CacheHit    bool
	RemoteCall  bool
	AiringFound bool
	Err         error
}

// Resolver resolves library titles against AniList with caching,
// overrides, and rate limiting.
type Resolver struct {
	source    MediaSource
	cache     *schedcache.Store
	overrides *overrides.Table
	limiter   *Limiter
	logger    *slog.Logger
	opts      Options
}

// New creates a resolver. The limiter is owned by the resolver; every
// remote call made through Resolve honors its spacing.
func New(source MediaSource, cache *schedcache.Store, table *overrides.Table, limiter *Limiter, logger *slog.Logger, opts Options) *Resolver {
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	return &Resolver{
		source:    source,
		cache:     cache,
		overrides: table,
		limiter:   limiter,
		logger:    logging.NewComponentLogger(logger, "resolver"),
		opts:      opts,
	}
}

// Resolve produces the overlay label for one library title. Override
// ignores and valid cache entries short-circuit before any remote call.
// A remote failure leaves the prior cache entry untouched and returns
// an empty label with Outcome.Err set; the caller decides whether to
// continue the run.
func (r *Resolver) Resolve(ctx context.Context, title string, now time.Time) (airdate.Label, Outcome) {
	title = strings.TrimSpace(title)
	label := airdate.Label{Title: title}
	if title == "" {
		return label, Outcome{Err: errors.New("empty title")}
	}

	override, hasOverride := r.overrides.Lookup(title)
	if hasOverride && override.Action == overrides.ActionIgnore {
		r.logger.Debug("title ignored by override", logging.String(logging.FieldTitle, title))
		return label, Outcome{Ignored: true}
	}

	var (
		media      *anilist.Media
		confidence float64
		synonym    string
	)
	if hasOverride && override.Action == overrides.ActionForceID {
		// A forced identity bypasses both matching and cache reuse so
		// override edits take effect on the next run.
		r.limiter.Wait()
		fetched, err := r.source.Fetch(ctx, override.AniListID)
		if err != nil {
			if errors.Is(err, anilist.ErrNotFound) {
				r.logger.Warn("forced id does not exist, caching no schedule",
					logging.String(logging.FieldTitle, title),
					logging.Int64("anilist_id", override.AniListID))
				return label, r.cacheNoSchedule(title, now)
			}
			return label, r.remoteFailure(title, fmt.Errorf("fetch forced id %d: %w", override.AniListID, err))
		}
		media = fetched
		confidence = 1.0
	} else {
		if entry, found := r.cache.Get(title); found && schedcache.Valid(entry, now, r.opts.CacheExpiry, r.opts.ForceRefresh) {
			r.logger.Debug("using cached schedule", logging.String(logging.FieldTitle, title))
			label = airdate.DeriveLabel(title, entry.Schedule, now, r.opts.MaxAirDays)
			return label, Outcome{CacheHit: true, AiringFound: entry.Schedule != nil}
		}

		r.limiter.Wait()
		candidates, err := r.source.Search(ctx, title)
		if err != nil {
			return label, r.remoteFailure(title, fmt.Errorf("search: %w", err))
		}
		result := match.Select(r.logger, title, candidates, match.Options{
			MinConfidence:   r.opts.MinConfidence,
			AcceptedFormats: r.opts.AcceptedFormats,
		})
		if !result.Matched() {
			r.logger.Debug("no acceptable match, caching no schedule",
				logging.String(logging.FieldTitle, title),
				logging.Int("candidate_count", len(candidates)))
			return label, r.cacheNoSchedule(title, now)
		}
		media = result.Media
		confidence = result.Confidence
		synonym = result.MatchedSynonym
	}

	schedule := r.buildSchedule(media, confidence, synonym, now)
	if err := r.cache.Put(title, schedule, now); err != nil {
		r.logger.Warn("failed to persist cache entry",
			logging.String(logging.FieldTitle, title),
			logging.Error(err))
	}

	if schedule == nil {
		r.logger.Debug("match has no upcoming episode within horizon",
			logging.String(logging.FieldTitle, title),
			logging.Int64("anilist_id", media.ID))
		return label, Outcome{RemoteCall: true}
	}

	r.logger.Info("resolved schedule",
		logging.String(logging.FieldTitle, title),
		logging.Int64("anilist_id", schedule.AniListID),
		logging.String("matched_title", schedule.MatchedTitle),
		logging.Float64("confidence", schedule.Confidence),
		logging.Int("episode", schedule.Episode),
		logging.String("air_local", schedule.AirLocal.Format(time.RFC3339)))

	label = airdate.DeriveLabel(title, schedule, now, r.opts.MaxAirDays)
	return label, Outcome{RemoteCall: true, AiringFound: true}
}

// buildSchedule selects the first upcoming episode within the air-day
// horizon. Episodes arrive sorted by airing time, so the first one at
// or after now that falls inside the horizon wins; a first episode
// already beyond the horizon means nothing later can qualify.
func (r *Resolver) buildSchedule(media *anilist.Media, confidence float64, synonym string, now time.Time) *airdate.ResolvedSchedule {
	nowLocal := now.In(r.opts.Location)
	for _, episode := range media.UpcomingEpisodes {
		airUTC := episode.AirTime()
		if airUTC.Before(now) {
			continue
		}
		airLocal := airUTC.In(r.opts.Location)
		if airdate.DaysUntil(nowLocal, airLocal) > r.opts.MaxAirDays {
			break
		}
		return &airdate.ResolvedSchedule{
			Weekday:        strings.ToLower(airLocal.Weekday().String()),
			AirUTC:         airUTC,
			AirLocal:       airLocal,
			Episode:        episode.Episode,
			HoursUntil:     math.Round(airUTC.Sub(now).Hours()*10) / 10,
			AniListID:      media.ID,
			MatchedTitle:   media.Title.Preferred(),
			Confidence:     math.Round(confidence*1000) / 1000,
			AverageScore:   media.AverageScore,
			MatchedSynonym: synonym,
		}
	}
	return nil
}

func (r *Resolver) cacheNoSchedule(title string, now time.Time) Outcome {
	if err := r.cache.Put(title, nil, now); err != nil {
		r.logger.Warn("failed to persist no-schedule marker",
			logging.String(logging.FieldTitle, title),
			logging.Error(err))
	}
	return Outcome{RemoteCall: true}
}

func (r *Resolver) remoteFailure(title string, err error) Outcome {
	r.logger.Error("resolution failed",
		logging.String(logging.FieldTitle, title),
		logging.Error(err))
	return Outcome{RemoteCall: true, Err: err}
}
