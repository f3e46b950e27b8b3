// Package metrics holds the snapshot history types and the trend engine:
// period-over-period deltas, rolling score series, weekly completion
// velocity, and AI-engine citation coverage.
package metrics

import "time"

// EngineCitations is the citation count for one tracked AI engine.
type EngineCitations struct {
	Engine    string `json:"engine"`
	Citations int    `json:"citations"`
}

// CitationStats is the citation section of a snapshot.
type CitationStats struct {
	Total    int               `json:"total"`
	ByEngine []EngineCitations `json:"by_engine"`
}

// CategoryCount is one prompt-category tally.
type CategoryCount struct {
	Category string `json:"category"`
	Count    int    `json:"count"`
}

// PromptStats is the prompt section of a snapshot.
type PromptStats struct {
	Total      int             `json:"total"`
	ByCategory []CategoryCount `json:"by_category"`
}

// Snapshot is one immutable analysis-run measurement. Snapshots accumulate
// append-only in capture order.
type Snapshot struct {
	Timestamp    time.Time     `json:"timestamp"`
	OverallScore int           `json:"overall_score"`
	Citations    CitationStats `json:"citations"`
	Prompts      PromptStats   `json:"prompts"`
}

// BrandShare is one brand's slice of a citation-share snapshot.
type BrandShare struct {
	Name          string         `json:"name"`
	IsOwn         bool           `json:"is_own"`
	TotalMentions int            `json:"total_mentions"`
	SharePercent  float64        `json:"share_percent"`
	ByEngine      map[string]int `json:"by_engine,omitempty"`
}

// CitationShareSnapshot is one competitor-comparison measurement, appended
// to its own ordered history by the re-check runner.
type CitationShareSnapshot struct {
	Timestamp    time.Time             `json:"timestamp"`
	Brands       map[string]BrandShare `json:"brands"`
	QueryResults []QueryResult         `json:"query_results,omitempty"`
}

// QueryResult records which brands one probe query surfaced.
type QueryResult struct {
	Query  string   `json:"query"`
	Brands []string `json:"brands,omitempty"`
}
