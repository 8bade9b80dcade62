package anilist

import "time"

// Format tags recognized by AniList. The accepted set is configurable;
// these constants cover the values used in defaults and tests.
const (
	FormatTV      = "TV"
	FormatTVShort = "TV_SHORT"
	FormatONA     = "ONA"
	FormatOVA     = "OVA"
	FormatMovie   = "MOVIE"
)

// Title holds the alternate primary titles AniList tracks per media entry.
type Title struct {
	Romaji  string `json:"romaji"`
	English string `json:"english"`
	Native  string `json:"native"`
}

// Preferred returns the first non-empty primary title.
func (t Title) Preferred() string {
	if t.Romaji != "" {
		return t.Romaji
	}
	if t.English != "" {
		return t.English
	}
	return t.Native
}

// All returns the non-empty primary titles in a fixed order.
func (t Title) All() []string {
	titles := make([]string, 0, 3)
	for _, title := range []string{t.Romaji, t.English, t.Native} {
		if title != "" {
			titles = append(titles, title)
		}
	}
	return titles
}

// AiringEpisode is one upcoming episode in a media entry's airing schedule.
type AiringEpisode struct {
	AiringAt int64 `json:"airingAt"`
	Episode  int   `json:"episode"`
}

// AirTime returns the airing instant in UTC. AniList reports airing
// times as Unix timestamps.
func (a AiringEpisode) AirTime() time.Time {
	return time.Unix(a.AiringAt, 0).UTC()
}

// Media is a single AniList media entry returned by search or lookup.
type Media struct {
	ID           int64          `json:"id"`
	Title        Title          `json:"title"`
	Synonyms     []string       `json:"synonyms"`
	Format       string         `json:"format"`
	Status       string         `json:"status"`
	AverageScore int            `json:"averageScore"`
	NextAiring   *AiringEpisode `json:"nextAiringEpisode"`
	// UpcomingEpisodes holds the next few not-yet-aired schedule entries,
	// ordered by airing time.
	UpcomingEpisodes []AiringEpisode `json:"-"`
}
