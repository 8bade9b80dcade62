package airdate

import (
	"fmt"
	"strings"
	"time"
)

// DaysUntil returns the whole-day difference between now's local date
// and the air instant's local date. The comparison is calendar-based:
// an episode airing at 00:10 tomorrow is one day away even if that is
// only 30 minutes from now.
func DaysUntil(now, air time.Time) int {
	nowDate := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	airDate := time.Date(air.Year(), air.Month(), air.Day(), 0, 0, 0, 0, time.UTC)
	return int(airDate.Sub(nowDate) / (24 * time.Hour))
}

// DeriveLabel converts a resolved schedule into overlay labels for the
// given instant. A nil schedule yields an empty label. The countdown
// bucket is "today", "tomorrow", or "in_N_days" up to and including
// maxAirDays; episodes already aired or beyond the horizon produce no
// countdown.
func DeriveLabel(title string, schedule *ResolvedSchedule, now time.Time, maxAirDays int) Label {
	label := Label{Title: title}
	if schedule == nil {
		return label
	}

	air := schedule.AirLocal
	label.Weekday = strings.ToLower(air.Weekday().String())

	days := DaysUntil(now.In(air.Location()), air)
	switch {
	case days < 0 || days > maxAirDays:
		label.Countdown = ""
	case days == 0:
		label.Countdown = "today"
	case days == 1:
		label.Countdown = "tomorrow"
	default:
		label.Countdown = fmt.Sprintf("in_%d_days", days)
	}
	return label
}
