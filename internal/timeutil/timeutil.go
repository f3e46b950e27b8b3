// Package timeutil provides calendar-aware date labels, relative time
// strings, and week bucketing for the activity feed and velocity charts.
// Every function takes an explicit reference time so callers stay
// deterministic in tests.
package timeutil

import (
	"fmt"
	"time"
)

// DateLabel returns "Today", "Yesterday", or a short date for ts relative to
// now. Buckets are computed by calendar date, not elapsed duration, so an
// event at 23:00 and one at 00:30 the next day land in different buckets.
func DateLabel(ts, now time.Time) string {
	ty, tm, td := ts.Date()
	ny, nm, nd := now.Date()
	if ty == ny && tm == nm && td == nd {
		return "Today"
	}
	yesterday := now.AddDate(0, 0, -1)
	yy, ym, yd := yesterday.Date()
	if ty == yy && tm == ym && td == yd {
		return "Yesterday"
	}
	return ShortDate(ts, now)
}

// RelativeTime returns a coarse human-readable distance from ts to now:
// "just now" under a minute, then minutes, hours, and days, falling back to
// a short date at a week or more.
func RelativeTime(ts, now time.Time) string {
	d := now.Sub(ts)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return plural(int(d.Minutes()), "minute")
	case d < 24*time.Hour:
		return plural(int(d.Hours()), "hour")
	case d < 7*24*time.Hour:
		return plural(int(d.Hours()/24), "day")
	default:
		return ShortDate(ts, now)
	}
}

// WeekKey returns the bucket label for the Sunday-starting calendar week
// containing ts. All timestamps within one such week share a key.
func WeekKey(ts time.Time) string {
	sunday := WeekStart(ts)
	return "Week of " + sunday.Format("Jan 2")
}

// WeekStart returns midnight of the Sunday starting the week containing ts.
func WeekStart(ts time.Time) time.Time {
	y, m, d := ts.Date()
	day := time.Date(y, m, d, 0, 0, 0, 0, ts.Location())
	return day.AddDate(0, 0, -int(day.Weekday()))
}

// ShortDate formats ts as "Jan 2" within now's year, "Jan 2, 2006" otherwise.
func ShortDate(ts, now time.Time) string {
	if ts.Year() == now.Year() {
		return ts.Format("Jan 2")
	}
	return ts.Format("Jan 2, 2006")
}

func plural(n int, unit string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s ago", unit)
	}
	return fmt.Sprintf("%d %ss ago", n, unit)
}
