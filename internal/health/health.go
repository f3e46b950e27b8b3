// Package health computes the composite 0-100 project health score from up
// to four independently gated components.
package health

import (
	"math"

	"github.com/lensboard/lensboard/internal/checklist"
	"github.com/lensboard/lensboard/internal/metrics"
)

// Per-component ceilings and feature-adoption increments. The increments sum
// to 25 only when every feature is used; partial adoption scoring below the
// ceiling is intended weighting, not a rounding bug.
const (
	componentMax = 25.0

	pointsMetricsRun    = 4
	pointsMonitorRun    = 4
	pointsContent       = 4
	pointsSchema        = 4
	pointsAnalyzer      = 4
	pointsCompetitors   = 3
	pointsQuestionnaire = 2
)

// AnalyzerResult is the optional page-analyzer outcome.
type AnalyzerResult struct {
	OverallScore int `json:"overall_score"`
}

// FeatureUsage captures which product features a project has exercised.
type FeatureUsage struct {
	MetricsRun        bool `json:"metrics_run"`
	MonitorRun        bool `json:"monitor_run"`
	ContentWritten    bool `json:"content_written"`
	SchemaGenerated   bool `json:"schema_generated"`
	AnalyzerRun       bool `json:"analyzer_run"`
	CompetitorCount   int  `json:"competitor_count"`
	QuestionnaireDone bool `json:"questionnaire_done"`
}

// AllUsed reports full feature adoption: every boolean feature used and at
// least one competitor tracked.
func (f FeatureUsage) AllUsed() bool {
	return f.MetricsRun && f.MonitorRun && f.ContentWritten &&
		f.SchemaGenerated && f.AnalyzerRun &&
		f.CompetitorCount > 0 && f.QuestionnaireDone
}

// Inputs are the raw facts the score is derived from. Optional components
// are gated on presence: a nil phase tree skips the checklist component, an
// empty history skips the external score, a nil analyzer skips that slice.
type Inputs struct {
	Phases   []checklist.Phase
	State    checklist.State
	History  []metrics.Snapshot
	Analyzer *AnalyzerResult
	Features FeatureUsage
}

// Breakdown exposes the per-component contributions alongside the total,
// for the score tooltip.
type Breakdown struct {
	Total     int     `json:"total"`
	Checklist float64 `json:"checklist"`
	External  float64 `json:"external"`
	Analyzer  float64 `json:"analyzer"`
	Features  float64 `json:"features"`
}

// Score returns the composite health score.
func Score(in Inputs) int {
	return Compute(in).Total
}

// Compute returns the score with its component breakdown. Components are
// summed without normalizing by how many were included: a project with only
// checklist data simply has a lower ceiling.
func Compute(in Inputs) Breakdown {
	var b Breakdown

	if len(in.Phases) > 0 {
		done, total := checklist.Progress(in.Phases, in.State)
		if total > 0 {
			b.Checklist = float64(done) / float64(total) * componentMax
		}
	}

	if len(in.History) > 0 {
		latest := in.History[len(in.History)-1]
		b.External = float64(latest.OverallScore) / 100 * componentMax
	}

	if in.Analyzer != nil {
		b.Analyzer = float64(in.Analyzer.OverallScore) / 100 * componentMax
	}

	b.Features = featurePoints(in.Features)

	total := int(math.Round(b.Checklist + b.External + b.Analyzer + b.Features))
	b.Total = clamp(total, 0, 100)
	return b
}

func featurePoints(f FeatureUsage) float64 {
	pts := 0
	if f.MetricsRun {
		pts += pointsMetricsRun
	}
	if f.MonitorRun {
		pts += pointsMonitorRun
	}
	if f.ContentWritten {
		pts += pointsContent
	}
	if f.SchemaGenerated {
		pts += pointsSchema
	}
	if f.AnalyzerRun {
		pts += pointsAnalyzer
	}
	if f.CompetitorCount > 0 {
		pts += pointsCompetitors
	}
	if f.QuestionnaireDone {
		pts += pointsQuestionnaire
	}
	if pts > int(componentMax) {
		pts = int(componentMax)
	}
	return float64(pts)
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
