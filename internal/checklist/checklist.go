// Package checklist defines the static phase/category/item tree and progress
// computation over a project's checked-item state.
package checklist

// Item is one actionable checklist entry with a stable id.
type Item struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

// Category groups related items inside a phase.
type Category struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Items []Item `json:"items"`
}

// Phase is the top level of the definition tree.
type Phase struct {
	ID         string     `json:"id"`
	Title      string     `json:"title"`
	Categories []Category `json:"categories"`
}

// State maps item ids to done flags. Ids not present in the phase tree are
// ignored, never errors: stale state must not break progress math.
type State map[string]bool

// Progress counts done and total items for the given phase tree. Only ids
// defined in the tree count; an empty tree yields (0, 0).
func Progress(phases []Phase, state State) (done, total int) {
	for _, p := range phases {
		for _, c := range p.Categories {
			for _, it := range c.Items {
				total++
				if state[it.ID] {
					done++
				}
			}
		}
	}
	return done, total
}

// Percent returns checklist completion as 0-100. Zero items is 0, not a
// division fault.
func Percent(phases []Phase, state State) int {
	done, total := Progress(phases, state)
	if total == 0 {
		return 0
	}
	return done * 100 / total
}

// DefaultPhases is the built-in definition tree used when a project has no
// custom phases configured.
func DefaultPhases() []Phase {
	return []Phase{
		{
			ID:    "foundation",
			Title: "Foundation",
			Categories: []Category{
				{
					ID:    "setup",
					Title: "Project setup",
					Items: []Item{
						{ID: "connect-site", Title: "Connect your site"},
						{ID: "add-competitors", Title: "Add competitors to track"},
						{ID: "complete-questionnaire", Title: "Complete the onboarding questionnaire"},
					},
				},
				{
					ID:    "baseline",
					Title: "Baseline measurement",
					Items: []Item{
						{ID: "first-metrics-run", Title: "Run your first visibility analysis"},
						{ID: "first-citation-check", Title: "Run a citation check"},
					},
				},
			},
		},
		{
			ID:    "optimization",
			Title: "Optimization",
			Categories: []Category{
				{
					ID:    "content",
					Title: "Content",
					Items: []Item{
						{ID: "write-content", Title: "Publish an optimized content piece"},
						{ID: "generate-schema", Title: "Generate schema markup"},
						{ID: "run-analyzer", Title: "Analyze an existing page"},
					},
				},
				{
					ID:    "monitoring",
					Title: "Monitoring",
					Items: []Item{
						{ID: "enable-monitor", Title: "Enable automatic re-checks"},
						{ID: "review-insights", Title: "Review your first insights"},
					},
				},
			},
		},
	}
}
