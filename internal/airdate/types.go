package airdate

import "time"

// ResolvedSchedule captures everything known about a show's next
// episode after a successful AniList resolution.
type ResolvedSchedule struct {
	Weekday        string    `json:"weekday"`
	AirUTC         time.Time `json:"air_datetime_utc"`
	AirLocal       time.Time `json:"air_datetime_local"`
	Episode        int       `json:"episode_number"`
	HoursUntil     float64   `json:"time_until_hours"`
	AniListID      int64     `json:"anilist_id"`
	MatchedTitle   string    `json:"title"`
	Confidence     float64   `json:"match_score"`
	AverageScore   int       `json:"average_score"`
	MatchedSynonym string    `json:"matched_synonym,omitempty"`
}

// Label is the per-title overlay output for one run. Empty fields mean
// no overlay is emitted for that dimension.
type Label struct {
	Title     string
	Weekday   string
	Countdown string
}

// Empty reports whether the label carries no overlay at all.
func (l Label) Empty() bool {
	return l.Weekday == "" && l.Countdown == ""
}
