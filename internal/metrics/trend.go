package metrics

import (
	"math"
	"slices"
	"time"

	"github.com/lensboard/lensboard/internal/activity"
	"github.com/lensboard/lensboard/internal/timeutil"
)

// Default windows for the rolling series and velocity buckets.
const (
	DefaultSeriesWindow    = 12
	DefaultVelocityBuckets = 8
)

// SeriesPoint is one rolling-series entry, ready for a chart axis.
type SeriesPoint struct {
	Date      string `json:"date"`
	Score     int    `json:"score"`
	Citations int    `json:"citations"`
	Prompts   int    `json:"prompts"`
}

// VelocityBucket counts checklist completions in one calendar week.
type VelocityBucket struct {
	Week  string `json:"week"`
	Count int    `json:"count"`
}

// Coverage reports how many tracked engines cite the project at all.
type Coverage struct {
	Citing int `json:"citing"`
	Total  int `json:"total"`
}

// Trend bundles everything the dashboard derives from the metrics history
// and activity log. DeltaKnown distinguishes "no prior snapshot" from a true
// zero-percent change.
type Trend struct {
	Series     []SeriesPoint    `json:"series"`
	Delta      float64          `json:"delta"`
	DeltaKnown bool             `json:"delta_known"`
	Velocity   []VelocityBucket `json:"velocity"`
	Coverage   Coverage         `json:"coverage"`
}

// Delta returns the percent change from prev to curr, rounded to one
// decimal. ok is false when prev is zero or absent; callers must treat that
// as "no trend", not 0%.
func Delta(curr, prev float64) (pct float64, ok bool) {
	if prev == 0 {
		return 0, false
	}
	pct = math.Round((curr-prev)/prev*1000) / 10
	return pct, true
}

// Series maps the last window snapshots to chart points, preserving
// chronological order. Fewer than two points is "insufficient for a trend
// line"; the caller sees the short slice and decides. Dates render relative
// to now so prior-year points carry the year.
func Series(history []Snapshot, window int, now time.Time) []SeriesPoint {
	if window <= 0 {
		window = DefaultSeriesWindow
	}
	if len(history) > window {
		history = history[len(history)-window:]
	}
	out := make([]SeriesPoint, 0, len(history))
	for _, s := range history {
		out = append(out, SeriesPoint{
			Date:      timeutil.ShortDate(s.Timestamp, now),
			Score:     s.OverallScore,
			Citations: s.Citations.Total,
			Prompts:   s.Prompts.Total,
		})
	}
	return out
}

// Velocity buckets checklist completions by calendar week and returns the
// last maxBuckets non-empty buckets in chronological order. No completions
// at all yields an empty list, a distinct state from a short series.
func Velocity(log []activity.Record, maxBuckets int) []VelocityBucket {
	if maxBuckets <= 0 {
		maxBuckets = DefaultVelocityBuckets
	}

	counts := make(map[int64]int)
	labels := make(map[int64]string)
	for _, rec := range log {
		if rec.Kind != activity.KindTaskCompleted {
			continue
		}
		start := timeutil.WeekStart(rec.Timestamp)
		key := start.Unix()
		counts[key]++
		labels[key] = timeutil.WeekKey(rec.Timestamp)
	}
	if len(counts) == 0 {
		return nil
	}

	keys := make([]int64, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	if len(keys) > maxBuckets {
		keys = keys[len(keys)-maxBuckets:]
	}

	out := make([]VelocityBucket, 0, len(keys))
	for _, k := range keys {
		out = append(out, VelocityBucket{Week: labels[k], Count: counts[k]})
	}
	return out
}

// EngineCoverage counts engines with at least one citation in the latest
// snapshot. No snapshots means (0, 0).
func EngineCoverage(history []Snapshot) Coverage {
	if len(history) == 0 {
		return Coverage{}
	}
	latest := history[len(history)-1]
	cov := Coverage{Total: len(latest.Citations.ByEngine)}
	for _, e := range latest.Citations.ByEngine {
		if e.Citations > 0 {
			cov.Citing++
		}
	}
	return cov
}

// ComputeTrend derives the full trend bundle from the metrics history and
// activity log. Pure; safe to call on every render.
func ComputeTrend(history []Snapshot, log []activity.Record, now time.Time) Trend {
	t := Trend{
		Series:   Series(history, DefaultSeriesWindow, now),
		Velocity: Velocity(log, DefaultVelocityBuckets),
		Coverage: EngineCoverage(history),
	}
	if len(history) >= 2 {
		curr := float64(history[len(history)-1].OverallScore)
		prev := float64(history[len(history)-2].OverallScore)
		t.Delta, t.DeltaKnown = Delta(curr, prev)
	}
	return t
}
