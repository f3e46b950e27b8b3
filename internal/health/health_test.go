package health

import (
	"testing"
	"time"

	"github.com/lensboard/lensboard/internal/checklist"
	"github.com/lensboard/lensboard/internal/metrics"
)

func tenItemTree() []checklist.Phase {
	items := make([]checklist.Item, 10)
	ids := []string{"a", "b", "c", "d", "e", "f", "g", "h", "i", "j"}
	for i, id := range ids {
		items[i] = checklist.Item{ID: id}
	}
	return []checklist.Phase{{
		ID:         "p",
		Categories: []checklist.Category{{ID: "c", Items: items}},
	}}
}

func allDone() checklist.State {
	st := checklist.State{}
	for _, id := range []string{"a", "b", "c", "d", "e", "f", "g", "h", "i", "j"} {
		st[id] = true
	}
	return st
}

func snapshot(score int) metrics.Snapshot {
	return metrics.Snapshot{Timestamp: time.Now(), OverallScore: score}
}

func TestScoreCompositeScenario(t *testing.T) {
	// Checklist 10/10 → 25, external 80 → 20, analyzer 60 → 15,
	// only metrics run used → 4. Total 64.
	in := Inputs{
		Phases:   tenItemTree(),
		State:    allDone(),
		History:  []metrics.Snapshot{snapshot(80)},
		Analyzer: &AnalyzerResult{OverallScore: 60},
		Features: FeatureUsage{MetricsRun: true},
	}
	b := Compute(in)
	if b.Checklist != 25 || b.External != 20 || b.Analyzer != 15 || b.Features != 4 {
		t.Errorf("breakdown = %+v, want 25/20/15/4", b)
	}
	if b.Total != 64 {
		t.Errorf("total = %d, want 64", b.Total)
	}
}

func TestScoreGating(t *testing.T) {
	// No phase tree, no history, no analyzer: only the feature component
	// contributes, with a zero floor.
	if got := Score(Inputs{}); got != 0 {
		t.Errorf("empty inputs: score = %d, want 0", got)
	}

	// A phase tree with zero items contributes 0, not a division fault.
	empty := []checklist.Phase{{ID: "p"}}
	if got := Score(Inputs{Phases: empty}); got != 0 {
		t.Errorf("zero-item tree: score = %d, want 0", got)
	}

	// Latest snapshot only: the older score must not matter.
	in := Inputs{History: []metrics.Snapshot{snapshot(0), snapshot(100)}}
	if got := Score(in); got != 25 {
		t.Errorf("latest-snapshot score = %d, want 25", got)
	}
}

func TestScoreMonotone(t *testing.T) {
	base := Inputs{
		Phases:   tenItemTree(),
		State:    checklist.State{"a": true},
		History:  []metrics.Snapshot{snapshot(40)},
		Features: FeatureUsage{MetricsRun: true},
	}
	before := Score(base)

	more := base
	more.State = checklist.State{"a": true, "b": true, "c": true}
	if Score(more) < before {
		t.Error("more checked items must not decrease the score")
	}

	higher := base
	higher.History = []metrics.Snapshot{snapshot(90)}
	if Score(higher) < before {
		t.Error("a higher external score must not decrease the total")
	}

	richer := base
	richer.Features = FeatureUsage{MetricsRun: true, MonitorRun: true, ContentWritten: true}
	if Score(richer) < before {
		t.Error("more feature adoption must not decrease the total")
	}
}

func TestFeaturePointsCapAndFullAdoption(t *testing.T) {
	full := FeatureUsage{
		MetricsRun: true, MonitorRun: true, ContentWritten: true,
		SchemaGenerated: true, AnalyzerRun: true,
		CompetitorCount: 3, QuestionnaireDone: true,
	}
	if !full.AllUsed() {
		t.Error("AllUsed() = false for full adoption")
	}
	// 4*5 + 3 + 2 = 25, exactly the ceiling.
	if got := featurePoints(full); got != 25 {
		t.Errorf("full adoption points = %v, want 25", got)
	}

	partial := FeatureUsage{MetricsRun: true, CompetitorCount: 1}
	if got := featurePoints(partial); got != 7 {
		t.Errorf("partial adoption points = %v, want 7", got)
	}
}

func TestScoreClamped(t *testing.T) {
	in := Inputs{
		Phases:   tenItemTree(),
		State:    allDone(),
		History:  []metrics.Snapshot{snapshot(200)}, // malformed upstream value
		Analyzer: &AnalyzerResult{OverallScore: 100},
		Features: FeatureUsage{MetricsRun: true, MonitorRun: true, ContentWritten: true, SchemaGenerated: true, AnalyzerRun: true, CompetitorCount: 1, QuestionnaireDone: true},
	}
	if got := Score(in); got != 100 {
		t.Errorf("score = %d, want clamped 100", got)
	}
}
