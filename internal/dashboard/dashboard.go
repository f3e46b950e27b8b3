// Package dashboard composes stored project state into the overview the API
// and CLI render: health breakdown, trend bundle, insights, and checklist
// progress, all derived in one pass so every surface sees the same numbers.
package dashboard

import (
	"time"

	"github.com/lensboard/lensboard/internal/activity"
	"github.com/lensboard/lensboard/internal/checklist"
	"github.com/lensboard/lensboard/internal/health"
	"github.com/lensboard/lensboard/internal/insight"
	"github.com/lensboard/lensboard/internal/metrics"
	"github.com/lensboard/lensboard/internal/store"
)

// ChecklistSummary is the progress header above the checklist.
type ChecklistSummary struct {
	Done    int `json:"done"`
	Total   int `json:"total"`
	Percent int `json:"percent"`
}

// Overview is the full dashboard payload for one project. Citations is the
// latest competitor brand-share snapshot, nil until the first citation check
// lands.
type Overview struct {
	Project   *store.Project                 `json:"project"`
	Health    health.Breakdown               `json:"health"`
	Trend     metrics.Trend                  `json:"trend"`
	Insights  []insight.Insight              `json:"insights"`
	Checklist ChecklistSummary               `json:"checklist"`
	Citations *metrics.CitationShareSnapshot `json:"citations,omitempty"`
}

// Usage derives feature adoption from the stored view. Booleans flip on the
// first matching log entry and never flip back; removing content later does
// not un-adopt the feature.
func Usage(view *store.View) health.FeatureUsage {
	f := health.FeatureUsage{
		CompetitorCount:   len(view.Competitors),
		QuestionnaireDone: view.Project.QuestionnaireDone,
	}
	for _, rec := range view.Activity {
		switch rec.Kind {
		case activity.KindMetricsRun:
			f.MetricsRun = true
		case activity.KindMonitorDue:
			f.MonitorRun = true
		case activity.KindContentCreated:
			f.ContentWritten = true
		case activity.KindSchemaGenerated:
			f.SchemaGenerated = true
		case activity.KindAnalyzerRun:
			f.AnalyzerRun = true
		}
	}
	return f
}

// Build derives the overview from one stored view. Pure given the view; the
// caller picks now so renders are reproducible.
func Build(view *store.View, phases []checklist.Phase, now time.Time) Overview {
	trend := metrics.ComputeTrend(view.History, view.Activity, now)
	usage := Usage(view)
	done, total := checklist.Progress(phases, view.Checklist)

	var analyzer *health.AnalyzerResult
	if view.Project.AnalyzerScore != nil {
		analyzer = &health.AnalyzerResult{OverallScore: *view.Project.AnalyzerScore}
	}

	breakdown := health.Compute(health.Inputs{
		Phases:   phases,
		State:    view.Checklist,
		History:  view.History,
		Analyzer: analyzer,
		Features: usage,
	})

	var contentCount, schemaCount int
	for _, rec := range view.Activity {
		switch rec.Kind {
		case activity.KindContentCreated:
			contentCount++
		case activity.KindSchemaGenerated:
			schemaCount++
		}
	}

	facts := insight.Facts{
		ChecklistDone:   done,
		ChecklistTotal:  total,
		ScoreDelta:      trend.Delta,
		ScoreDeltaKnown: trend.DeltaKnown,
		EnginesCiting:   trend.Coverage.Citing,
		EnginesTotal:    trend.Coverage.Total,
		ContentCount:    contentCount,
		SchemaCount:     schemaCount,
		CompetitorCount: len(view.Competitors),
		ProjectAgeDays:  int(now.Sub(view.Project.CreatedAt).Hours() / 24),
		SnapshotCount:   len(view.History),
		Features:        usage,
	}

	return Overview{
		Project:   view.Project,
		Health:    breakdown,
		Trend:     trend,
		Insights:  insight.Generate(facts),
		Checklist: ChecklistSummary{
			Done:    done,
			Total:   total,
			Percent: checklist.Percent(phases, view.Checklist),
		},
		Citations: view.Citations,
	}
}
