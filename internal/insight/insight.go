// Package insight turns precomputed project facts into a list of typed
// observations. Every applicable rule fires; the result is the full set, in
// stable rule order, recomputed on each evaluation and never persisted.
package insight

import (
	"fmt"

	"github.com/lensboard/lensboard/internal/health"
)

// Level classifies an insight for presentation.
type Level string

const (
	LevelSuccess Level = "success"
	LevelWarning Level = "warning"
	LevelInfo    Level = "info"
)

// Insight is one generated observation.
type Insight struct {
	Level  Level  `json:"level"`
	Text   string `json:"text"`
	Detail string `json:"detail,omitempty"`
}

// Facts are the already-derived values the rules inspect. They are computed
// once by the caller (from the health and trend engines plus raw project
// state); rules never recompute them, so every rule sees the same numbers.
type Facts struct {
	ChecklistDone  int
	ChecklistTotal int

	ScoreDelta      float64
	ScoreDeltaKnown bool

	EnginesCiting int
	EnginesTotal  int

	ContentCount int
	SchemaCount  int

	CompetitorCount int
	ProjectAgeDays  int
	SnapshotCount   int

	Features health.FeatureUsage
}

// stagnantAfterDays is how old a project may grow with fewer than two
// snapshots before measurement is flagged as stagnant.
const stagnantAfterDays = 30

// Generate evaluates every rule against the facts. Rules are independent
// predicates; any number of them may fire together.
func Generate(f Facts) []Insight {
	var out []Insight

	if f.ChecklistTotal > 0 {
		switch {
		case f.ChecklistDone == f.ChecklistTotal:
			out = append(out, Insight{
				Level: LevelSuccess,
				Text:  "Checklist complete",
				Detail: "Every optimization task is done. Keep an eye on your " +
					"re-checks to hold the position.",
			})
		case f.ChecklistDone > 0:
			remaining := f.ChecklistTotal - f.ChecklistDone
			out = append(out, Insight{
				Level:  LevelInfo,
				Text:   "Checklist in progress",
				Detail: fmt.Sprintf("%d item(s) remaining on your optimization checklist.", remaining),
			})
		}
	}

	if f.ScoreDeltaKnown {
		if f.ScoreDelta > 0 {
			out = append(out, Insight{
				Level:  LevelSuccess,
				Text:   "Visibility score is up",
				Detail: fmt.Sprintf("Your score improved %.1f%% since the previous analysis.", f.ScoreDelta),
			})
		} else if f.ScoreDelta < 0 {
			out = append(out, Insight{
				Level:  LevelWarning,
				Text:   "Visibility score dropped",
				Detail: fmt.Sprintf("Your score fell %.1f%% since the previous analysis.", -f.ScoreDelta),
			})
		}
	}

	if f.EnginesTotal > 0 && f.EnginesCiting < f.EnginesTotal {
		missing := f.EnginesTotal - f.EnginesCiting
		out = append(out, Insight{
			Level:  LevelInfo,
			Text:   "Not all engines cite you",
			Detail: fmt.Sprintf("%d engine(s) have not cited your project yet.", missing),
		})
	}

	if f.ContentCount == 0 && f.SchemaCount == 0 {
		out = append(out, Insight{
			Level:  LevelInfo,
			Text:   "No content artifacts yet",
			Detail: "Publish an optimized piece or generate schema markup to give engines something to cite.",
		})
	}

	if f.CompetitorCount == 0 {
		out = append(out, Insight{
			Level:  LevelInfo,
			Text:   "No competitors tracked",
			Detail: "Add competitors to see your citation share against them.",
		})
	}

	if f.ProjectAgeDays > stagnantAfterDays && f.SnapshotCount < 2 {
		out = append(out, Insight{
			Level:  LevelWarning,
			Text:   "Measurement has gone stale",
			Detail: "The project is over a month old with fewer than two analyses. Run one to refresh your baseline.",
		})
	}

	if f.Features.AllUsed() {
		out = append(out, Insight{
			Level:  LevelSuccess,
			Text:   "Full feature adoption",
			Detail: "You are using every Lensboard feature. Nice.",
		})
	}

	return out
}
