package checklist

import "testing"

func miniTree() []Phase {
	return []Phase{
		{
			ID: "p1",
			Categories: []Category{
				{ID: "c1", Items: []Item{{ID: "a"}, {ID: "b"}}},
				{ID: "c2", Items: []Item{{ID: "c"}}},
			},
		},
		{
			ID: "p2",
			Categories: []Category{
				{ID: "c3", Items: []Item{{ID: "d"}}},
			},
		},
	}
}

func TestProgress(t *testing.T) {
	done, total := Progress(miniTree(), State{"a": true, "c": true, "d": false})
	if done != 2 || total != 4 {
		t.Errorf("Progress = (%d, %d), want (2, 4)", done, total)
	}
}

func TestProgressIgnoresUnknownIDs(t *testing.T) {
	done, total := Progress(miniTree(), State{"a": true, "ghost": true})
	if done != 1 || total != 4 {
		t.Errorf("unknown ids must not count: got (%d, %d), want (1, 4)", done, total)
	}
}

func TestPercent(t *testing.T) {
	if got := Percent(nil, State{"a": true}); got != 0 {
		t.Errorf("empty tree: Percent = %d, want 0", got)
	}
	if got := Percent(miniTree(), State{}); got != 0 {
		t.Errorf("nothing done: Percent = %d, want 0", got)
	}
	all := State{"a": true, "b": true, "c": true, "d": true}
	if got := Percent(miniTree(), all); got != 100 {
		t.Errorf("all done: Percent = %d, want 100", got)
	}
}

func TestDefaultPhasesHaveUniqueIDs(t *testing.T) {
	seen := make(map[string]bool)
	for _, p := range DefaultPhases() {
		for _, c := range p.Categories {
			for _, it := range c.Items {
				if seen[it.ID] {
					t.Errorf("duplicate item id %q", it.ID)
				}
				seen[it.ID] = true
			}
		}
	}
	if len(seen) == 0 {
		t.Fatal("default tree is empty")
	}
}
