package insight

import (
	"testing"

	"github.com/lensboard/lensboard/internal/health"
)

// quietFacts produce no insights at all: checklist untouched, no delta,
// full coverage, artifacts and competitors present, fresh measurement.
func quietFacts() Facts {
	return Facts{
		ChecklistDone:   0,
		ChecklistTotal:  10,
		EnginesCiting:   3,
		EnginesTotal:    3,
		ContentCount:    1,
		SchemaCount:     0,
		CompetitorCount: 2,
		ProjectAgeDays:  10,
		SnapshotCount:   3,
	}
}

func levels(in []Insight) []Level {
	out := make([]Level, len(in))
	for i, ins := range in {
		out[i] = ins.Level
	}
	return out
}

func TestGenerateQuietProject(t *testing.T) {
	if got := Generate(quietFacts()); len(got) != 0 {
		t.Errorf("expected no insights, got %+v", got)
	}
}

func TestChecklistRule(t *testing.T) {
	f := quietFacts()
	f.ChecklistDone = 10
	got := Generate(f)
	if len(got) != 1 || got[0].Level != LevelSuccess {
		t.Fatalf("complete checklist: got %+v, want one success", got)
	}

	f.ChecklistDone = 4
	got = Generate(f)
	if len(got) != 1 || got[0].Level != LevelInfo {
		t.Fatalf("partial checklist: got %+v, want one info", got)
	}
	if got[0].Detail != "6 item(s) remaining on your optimization checklist." {
		t.Errorf("detail = %q", got[0].Detail)
	}

	// 0% fires nothing; a missing tree fires nothing either.
	f.ChecklistDone = 0
	if got := Generate(f); len(got) != 0 {
		t.Errorf("0%% checklist fired: %+v", got)
	}
	f.ChecklistTotal = 0
	if got := Generate(f); len(got) != 0 {
		t.Errorf("missing tree fired: %+v", got)
	}
}

func TestDeltaRule(t *testing.T) {
	f := quietFacts()
	f.ScoreDeltaKnown = true
	f.ScoreDelta = 12.5
	got := Generate(f)
	if len(got) != 1 || got[0].Level != LevelSuccess {
		t.Fatalf("positive delta: got %+v", got)
	}

	f.ScoreDelta = -3.2
	got = Generate(f)
	if len(got) != 1 || got[0].Level != LevelWarning {
		t.Fatalf("negative delta: got %+v", got)
	}

	// Zero delta and unknown delta both stay silent.
	f.ScoreDelta = 0
	if got := Generate(f); len(got) != 0 {
		t.Errorf("zero delta fired: %+v", got)
	}
	f.ScoreDeltaKnown = false
	f.ScoreDelta = 5
	if got := Generate(f); len(got) != 0 {
		t.Errorf("unknown delta fired: %+v", got)
	}
}

func TestCoverageRule(t *testing.T) {
	f := quietFacts()
	f.EnginesCiting = 1
	got := Generate(f)
	if len(got) != 1 || got[0].Level != LevelInfo {
		t.Fatalf("partial coverage: got %+v", got)
	}
	if got[0].Detail != "2 engine(s) have not cited your project yet." {
		t.Errorf("detail = %q", got[0].Detail)
	}

	// No engines tracked at all: rule does not apply.
	f.EnginesCiting = 0
	f.EnginesTotal = 0
	if got := Generate(f); len(got) != 0 {
		t.Errorf("zero engines fired: %+v", got)
	}
}

func TestStagnationRule(t *testing.T) {
	f := quietFacts()
	f.ProjectAgeDays = 45
	f.SnapshotCount = 1
	got := Generate(f)
	if len(got) != 1 || got[0].Level != LevelWarning {
		t.Fatalf("stagnant project: got %+v", got)
	}

	// Exactly 30 days is not yet stagnant.
	f.ProjectAgeDays = 30
	if got := Generate(f); len(got) != 0 {
		t.Errorf("30-day project fired: %+v", got)
	}
}

func TestRulesFireTogether(t *testing.T) {
	f := Facts{
		ChecklistDone:   2,
		ChecklistTotal:  10,
		ScoreDeltaKnown: true,
		ScoreDelta:      -5,
		EnginesCiting:   0,
		EnginesTotal:    3,
		ContentCount:    0,
		SchemaCount:     0,
		CompetitorCount: 0,
		ProjectAgeDays:  60,
		SnapshotCount:   1,
	}
	got := Generate(f)
	want := []Level{LevelInfo, LevelWarning, LevelInfo, LevelInfo, LevelInfo, LevelWarning}
	if len(got) != len(want) {
		t.Fatalf("got %d insights, want %d: %+v", len(got), len(want), got)
	}
	for i, lv := range levels(got) {
		if lv != want[i] {
			t.Errorf("insight %d level = %q, want %q", i, lv, want[i])
		}
	}
}

func TestFullAdoptionRule(t *testing.T) {
	f := quietFacts()
	f.Features = health.FeatureUsage{
		MetricsRun: true, MonitorRun: true, ContentWritten: true,
		SchemaGenerated: true, AnalyzerRun: true,
		CompetitorCount: 1, QuestionnaireDone: true,
	}
	got := Generate(f)
	if len(got) != 1 || got[0].Level != LevelSuccess {
		t.Fatalf("full adoption: got %+v", got)
	}
}
