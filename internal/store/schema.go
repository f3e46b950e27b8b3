package store

import "time"

// Schema is applied on every open; statements are idempotent.
const Schema = `
CREATE TABLE IF NOT EXISTS projects (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	domain TEXT DEFAULT '',
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	monitor_enabled BOOLEAN NOT NULL DEFAULT 0,
	monitor_interval TEXT NOT NULL DEFAULT 'weekly',
	monitor_last_run DATETIME,
	questionnaire_done BOOLEAN NOT NULL DEFAULT 0,
	analyzer_score INTEGER
);

CREATE TABLE IF NOT EXISTS activity_log (
	id TEXT PRIMARY KEY,
	project_id TEXT NOT NULL,
	kind TEXT NOT NULL,
	timestamp DATETIME NOT NULL,
	actor_id TEXT DEFAULT '',
	actor_name TEXT DEFAULT '',
	task_title TEXT DEFAULT '',
	item_title TEXT DEFAULT '',
	competitor_name TEXT DEFAULT '',
	member_name TEXT DEFAULT '',
	role TEXT DEFAULT '',
	site_domain TEXT DEFAULT '',
	schema_type TEXT DEFAULT '',
	content_title TEXT DEFAULT ''
);
CREATE INDEX IF NOT EXISTS idx_activity_project ON activity_log(project_id, timestamp);
CREATE INDEX IF NOT EXISTS idx_activity_kind ON activity_log(kind);

CREATE TABLE IF NOT EXISTS metrics_snapshots (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	project_id TEXT NOT NULL,
	timestamp DATETIME NOT NULL,
	overall_score INTEGER NOT NULL DEFAULT 0,
	citations_total INTEGER NOT NULL DEFAULT 0,
	citations_by_engine TEXT DEFAULT '[]',
	prompts_total INTEGER NOT NULL DEFAULT 0,
	prompts_by_category TEXT DEFAULT '[]'
);
CREATE INDEX IF NOT EXISTS idx_metrics_project ON metrics_snapshots(project_id, timestamp);

CREATE TABLE IF NOT EXISTS citation_snapshots (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	project_id TEXT NOT NULL,
	timestamp DATETIME NOT NULL,
	brands TEXT DEFAULT '{}',
	query_results TEXT DEFAULT '[]'
);
CREATE INDEX IF NOT EXISTS idx_citations_project ON citation_snapshots(project_id, timestamp);

CREATE TABLE IF NOT EXISTS checklist_state (
	project_id TEXT NOT NULL,
	item_id TEXT NOT NULL,
	done BOOLEAN NOT NULL DEFAULT 0,
	updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	PRIMARY KEY (project_id, item_id)
);

CREATE TABLE IF NOT EXISTS competitors (
	project_id TEXT NOT NULL,
	name TEXT NOT NULL,
	added_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	PRIMARY KEY (project_id, name)
);

CREATE TABLE IF NOT EXISTS settings (
	key TEXT PRIMARY KEY,
	value TEXT NOT NULL DEFAULT '',
	updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);
`

// Project is the stored project record. The monitor columns hold the
// per-project re-check settings the scheduler reads.
type Project struct {
	ID                string     `json:"id"`
	Name              string     `json:"name"`
	Domain            string     `json:"domain,omitempty"`
	CreatedAt         time.Time  `json:"created_at"`
	MonitorEnabled    bool       `json:"monitor_enabled"`
	MonitorInterval   string     `json:"monitor_interval"`
	MonitorLastRun    *time.Time `json:"monitor_last_run,omitempty"`
	QuestionnaireDone bool       `json:"questionnaire_done"`
	AnalyzerScore     *int       `json:"analyzer_score,omitempty"`
}
