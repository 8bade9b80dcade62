package match

import (
	"log/slog"
	"strings"

	"github.com/BulletTrain222/kometa-anilist-overlay/internal/anilist"
	"github.com/BulletTrain222/kometa-anilist-overlay/internal/logging"
	"github.com/BulletTrain222/kometa-anilist-overlay/internal/textutil"
)

// Options tunes candidate selection.
type Options struct {
	// MinConfidence is the lowest similarity ratio a candidate may score
	// and still be accepted.
	MinConfidence float64
	// AcceptedFormats lists the AniList format tags eligible to win a
	// tie. An empty list accepts every format.
	AcceptedFormats []string
}

// Result describes the winning candidate, if any.
type Result struct {
	Media      *anilist.Media
	Confidence float64
	// MatchedSynonym holds the synonym that produced the winning score
	// when it beat every primary title. Empty for primary-title wins.
	MatchedSynonym string
}

// Matched reports whether a candidate cleared the confidence floor.
func (r Result) Matched() bool {
	return r.Media != nil
}

// Score returns the best similarity between the library title and any
// of the candidate's names, and the synonym responsible when a synonym
// outscored every primary title.
func Score(libraryTitle string, media anilist.Media) (float64, string) {
	query := textutil.NormalizeTitle(libraryTitle)
	if query == "" {
		return 0, ""
	}

	best := 0.0
	for _, title := range media.Title.All() {
		if ratio := textutil.SimilarityRatio(query, textutil.NormalizeTitle(title)); ratio > best {
			best = ratio
		}
	}

	matchedSynonym := ""
	for _, synonym := range media.Synonyms {
		if strings.TrimSpace(synonym) == "" {
			continue
		}
		if ratio := textutil.SimilarityRatio(query, textutil.NormalizeTitle(synonym)); ratio > best {
			best = ratio
			matchedSynonym = synonym
		}
	}
	return best, matchedSynonym
}

// Select picks the best candidate for the library title. Candidates are
// scored independently; ties prefer an accepted format, then the lower
// AniList ID, keeping selection deterministic across runs.
func Select(logger *slog.Logger, libraryTitle string, candidates []anilist.Media, opts Options) Result {
	logger = logging.NewComponentLogger(logger, "match")

	var best Result
	for idx := range candidates {
		candidate := &candidates[idx]
		score, synonym := Score(libraryTitle, *candidate)

		logger.Debug("scored candidate",
			logging.String(logging.FieldTitle, libraryTitle),
			logging.Int64("anilist_id", candidate.ID),
			logging.String("candidate_title", candidate.Title.Preferred()),
			logging.Float64("score", score),
			logging.String("format", candidate.Format))

		if score < opts.MinConfidence {
			continue
		}
		if best.Media == nil || betterThan(score, candidate, best, opts.AcceptedFormats) {
			best = Result{Media: candidate, Confidence: score, MatchedSynonym: synonym}
		}
	}

	if best.Media == nil {
		logger.Debug("no candidate cleared confidence floor",
			logging.String(logging.FieldTitle, libraryTitle),
			logging.Float64("min_confidence", opts.MinConfidence),
			logging.Int("candidate_count", len(candidates)))
		return best
	}

	logger.Debug("selected candidate",
		logging.String(logging.FieldTitle, libraryTitle),
		logging.Int64("anilist_id", best.Media.ID),
		logging.String("matched_title", best.Media.Title.Preferred()),
		logging.Float64("confidence", best.Confidence),
		logging.String("matched_synonym", best.MatchedSynonym))
	return best
}

func betterThan(score float64, candidate *anilist.Media, current Result, acceptedFormats []string) bool {
	if score != current.Confidence {
		return score > current.Confidence
	}
	candidateAccepted := formatAccepted(candidate.Format, acceptedFormats)
	currentAccepted := formatAccepted(current.Media.Format, acceptedFormats)
	if candidateAccepted != currentAccepted {
		return candidateAccepted
	}
	return candidate.ID < current.Media.ID
}

func formatAccepted(format string, accepted []string) bool {
	if len(accepted) == 0 {
		return true
	}
	for _, f := range accepted {
		if strings.EqualFold(f, format) {
			return true
		}
	}
	return false
}
