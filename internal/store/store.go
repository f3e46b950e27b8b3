// Package store persists project state in SQLite: the project roster, the
// append-only activity log, metrics and citation-share histories, checklist
// completion, and competitor lists.
package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/lensboard/lensboard/internal/activity"
	"github.com/lensboard/lensboard/internal/checklist"
	"github.com/lensboard/lensboard/internal/metrics"
	"github.com/lensboard/lensboard/internal/monitor"
)

// Store wraps the SQLite database.
type Store struct {
	db     *sql.DB
	logger *slog.Logger
}

// Open opens (creating if needed) the database at path and applies the
// schema.
func Open(path string, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}

	dsn := fmt.Sprintf("file:%s?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if _, err := db.Exec(Schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	migrate(db)

	logger.Info("store opened", "path", path)
	return &Store{db: db, logger: logger}, nil
}

// migrate applies additive column migrations. Errors are ignored: the
// column already existing is the usual case.
func migrate(db *sql.DB) {
	_, _ = db.Exec(`ALTER TABLE projects ADD COLUMN analyzer_score INTEGER`)
	_, _ = db.Exec(`ALTER TABLE projects ADD COLUMN questionnaire_done BOOLEAN NOT NULL DEFAULT 0`)
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// CreateProject inserts a new project and logs the creation event.
func (s *Store) CreateProject(name, domain string) (*Project, error) {
	p := &Project{
		ID:              uuid.NewString(),
		Name:            name,
		Domain:          domain,
		CreatedAt:       time.Now().UTC(),
		MonitorInterval: string(monitor.IntervalWeekly),
	}
	_, err := s.db.Exec(`
		INSERT INTO projects (id, name, domain, created_at, monitor_interval)
		VALUES (?, ?, ?, ?, ?)`,
		p.ID, p.Name, p.Domain, p.CreatedAt, p.MonitorInterval)
	if err != nil {
		return nil, fmt.Errorf("insert project: %w", err)
	}
	if err := s.AppendActivity(p.ID, activity.Record{
		Kind:      activity.KindProjectCreated,
		Timestamp: p.CreatedAt,
	}); err != nil {
		s.logger.Warn("log project creation", "error", err)
	}
	return p, nil
}

// GetProject loads one project by id.
func (s *Store) GetProject(id string) (*Project, error) {
	row := s.db.QueryRow(`
		SELECT id, name, COALESCE(domain, ''), created_at,
		       monitor_enabled, monitor_interval, monitor_last_run,
		       questionnaire_done, analyzer_score
		FROM projects WHERE id = ?`, id)
	return scanProject(row)
}

// ListProjects returns all projects, newest first.
func (s *Store) ListProjects() ([]*Project, error) {
	rows, err := s.db.Query(`
		SELECT id, name, COALESCE(domain, ''), created_at,
		       monitor_enabled, monitor_interval, monitor_last_run,
		       questionnaire_done, analyzer_score
		FROM projects ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	defer rows.Close()

	var out []*Project
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProject(row rowScanner) (*Project, error) {
	var p Project
	var lastRun sql.NullTime
	var score sql.NullInt64
	err := row.Scan(&p.ID, &p.Name, &p.Domain, &p.CreatedAt,
		&p.MonitorEnabled, &p.MonitorInterval, &lastRun,
		&p.QuestionnaireDone, &score)
	if err != nil {
		return nil, fmt.Errorf("scan project: %w", err)
	}
	if lastRun.Valid {
		t := lastRun.Time
		p.MonitorLastRun = &t
	}
	if score.Valid {
		v := int(score.Int64)
		p.AnalyzerScore = &v
	}
	return &p, nil
}

// SetMonitor updates a project's re-check settings.
func (s *Store) SetMonitor(projectID string, enabled bool, interval monitor.Interval) error {
	_, err := s.db.Exec(`
		UPDATE projects SET monitor_enabled = ?, monitor_interval = ?
		WHERE id = ?`, enabled, string(interval), projectID)
	if err != nil {
		return fmt.Errorf("update monitor settings: %w", err)
	}
	return nil
}

// SetMonitorLastRun records the completion time of a successful re-check.
func (s *Store) SetMonitorLastRun(projectID string, t time.Time) error {
	_, err := s.db.Exec(`UPDATE projects SET monitor_last_run = ? WHERE id = ?`,
		t.UTC(), projectID)
	if err != nil {
		return fmt.Errorf("update monitor last run: %w", err)
	}
	return nil
}

// SetQuestionnaireDone flags the onboarding questionnaire as completed.
func (s *Store) SetQuestionnaireDone(projectID string, done bool) error {
	_, err := s.db.Exec(`UPDATE projects SET questionnaire_done = ? WHERE id = ?`,
		done, projectID)
	return err
}

// SetAnalyzerScore stores the most recent analyzer result.
func (s *Store) SetAnalyzerScore(projectID string, score int) error {
	_, err := s.db.Exec(`UPDATE projects SET analyzer_score = ? WHERE id = ?`,
		score, projectID)
	return err
}

// AppendActivity inserts one activity record. A missing id is generated.
func (s *Store) AppendActivity(projectID string, rec activity.Record) error {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.Timestamp.IsZero() {
		rec.Timestamp = time.Now().UTC()
	}
	_, err := s.db.Exec(`
		INSERT INTO activity_log (id, project_id, kind, timestamp,
			actor_id, actor_name, task_title, item_title, competitor_name,
			member_name, role, site_domain, schema_type, content_title)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, projectID, string(rec.Kind), rec.Timestamp.UTC(),
		rec.ActorID, rec.ActorName, rec.TaskTitle, rec.ItemTitle,
		rec.CompetitorName, rec.MemberName, rec.Role, rec.SiteDomain,
		rec.SchemaType, rec.ContentTitle)
	if err != nil {
		return fmt.Errorf("insert activity: %w", err)
	}
	return nil
}

// ListActivity returns a project's activity log newest first. A limit of 0
// means no limit.
func (s *Store) ListActivity(projectID string, limit int) ([]activity.Record, error) {
	q := `
		SELECT id, kind, timestamp,
		       COALESCE(actor_id, ''), COALESCE(actor_name, ''),
		       COALESCE(task_title, ''), COALESCE(item_title, ''),
		       COALESCE(competitor_name, ''), COALESCE(member_name, ''),
		       COALESCE(role, ''), COALESCE(site_domain, ''),
		       COALESCE(schema_type, ''), COALESCE(content_title, '')
		FROM activity_log WHERE project_id = ?
		ORDER BY timestamp DESC, id DESC`
	args := []any{projectID}
	if limit > 0 {
		q += ` LIMIT ?`
		args = append(args, limit)
	}
	rows, err := s.db.Query(q, args...)
	if err != nil {
		return nil, fmt.Errorf("list activity: %w", err)
	}
	defer rows.Close()

	var out []activity.Record
	for rows.Next() {
		var r activity.Record
		var kind string
		err := rows.Scan(&r.ID, &kind, &r.Timestamp,
			&r.ActorID, &r.ActorName,
			&r.TaskTitle, &r.ItemTitle,
			&r.CompetitorName, &r.MemberName,
			&r.Role, &r.SiteDomain,
			&r.SchemaType, &r.ContentTitle)
		if err != nil {
			return nil, fmt.Errorf("scan activity: %w", err)
		}
		r.Kind = activity.Kind(kind)
		out = append(out, r)
	}
	return out, rows.Err()
}

// CountActivityByKind tallies log entries per kind for one project.
func (s *Store) CountActivityByKind(projectID string) (map[activity.Kind]int, error) {
	rows, err := s.db.Query(`
		SELECT kind, COUNT(*) FROM activity_log
		WHERE project_id = ? GROUP BY kind`, projectID)
	if err != nil {
		return nil, fmt.Errorf("count activity: %w", err)
	}
	defer rows.Close()

	counts := make(map[activity.Kind]int)
	for rows.Next() {
		var kind string
		var n int
		if err := rows.Scan(&kind, &n); err != nil {
			return nil, err
		}
		counts[activity.Kind(kind)] = n
	}
	return counts, rows.Err()
}

// AppendMetricsSnapshot appends one analysis-run measurement.
func (s *Store) AppendMetricsSnapshot(projectID string, snap metrics.Snapshot) error {
	byEngine, err := json.Marshal(snap.Citations.ByEngine)
	if err != nil {
		return fmt.Errorf("encode citations: %w", err)
	}
	byCategory, err := json.Marshal(snap.Prompts.ByCategory)
	if err != nil {
		return fmt.Errorf("encode prompts: %w", err)
	}
	_, err = s.db.Exec(`
		INSERT INTO metrics_snapshots (project_id, timestamp, overall_score,
			citations_total, citations_by_engine, prompts_total, prompts_by_category)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		projectID, snap.Timestamp.UTC(), snap.OverallScore,
		snap.Citations.Total, string(byEngine),
		snap.Prompts.Total, string(byCategory))
	if err != nil {
		return fmt.Errorf("insert snapshot: %w", err)
	}
	return nil
}

// ListMetricsSnapshots returns a project's snapshot history in capture order.
func (s *Store) ListMetricsSnapshots(projectID string) ([]metrics.Snapshot, error) {
	rows, err := s.db.Query(`
		SELECT timestamp, overall_score, citations_total,
		       COALESCE(citations_by_engine, '[]'),
		       prompts_total, COALESCE(prompts_by_category, '[]')
		FROM metrics_snapshots WHERE project_id = ?
		ORDER BY timestamp ASC, id ASC`, projectID)
	if err != nil {
		return nil, fmt.Errorf("list snapshots: %w", err)
	}
	defer rows.Close()

	var out []metrics.Snapshot
	for rows.Next() {
		var snap metrics.Snapshot
		var byEngine, byCategory string
		err := rows.Scan(&snap.Timestamp, &snap.OverallScore,
			&snap.Citations.Total, &byEngine,
			&snap.Prompts.Total, &byCategory)
		if err != nil {
			return nil, fmt.Errorf("scan snapshot: %w", err)
		}
		if err := json.Unmarshal([]byte(byEngine), &snap.Citations.ByEngine); err != nil {
			s.logger.Warn("decode citations", "error", err)
		}
		if err := json.Unmarshal([]byte(byCategory), &snap.Prompts.ByCategory); err != nil {
			s.logger.Warn("decode prompts", "error", err)
		}
		out = append(out, snap)
	}
	return out, rows.Err()
}

// AppendCitationSnapshot appends one competitor-comparison measurement.
func (s *Store) AppendCitationSnapshot(projectID string, snap metrics.CitationShareSnapshot) error {
	brands, err := json.Marshal(snap.Brands)
	if err != nil {
		return fmt.Errorf("encode brands: %w", err)
	}
	queries, err := json.Marshal(snap.QueryResults)
	if err != nil {
		return fmt.Errorf("encode query results: %w", err)
	}
	_, err = s.db.Exec(`
		INSERT INTO citation_snapshots (project_id, timestamp, brands, query_results)
		VALUES (?, ?, ?, ?)`,
		projectID, snap.Timestamp.UTC(), string(brands), string(queries))
	if err != nil {
		return fmt.Errorf("insert citation snapshot: %w", err)
	}
	return nil
}

// LatestCitationSnapshot returns the most recent competitor comparison, or
// nil when none has been captured.
func (s *Store) LatestCitationSnapshot(projectID string) (*metrics.CitationShareSnapshot, error) {
	row := s.db.QueryRow(`
		SELECT timestamp, COALESCE(brands, '{}'), COALESCE(query_results, '[]')
		FROM citation_snapshots WHERE project_id = ?
		ORDER BY timestamp DESC, id DESC LIMIT 1`, projectID)

	var snap metrics.CitationShareSnapshot
	var brands, queries string
	err := row.Scan(&snap.Timestamp, &brands, &queries)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan citation snapshot: %w", err)
	}
	if err := json.Unmarshal([]byte(brands), &snap.Brands); err != nil {
		s.logger.Warn("decode brands", "error", err)
	}
	if err := json.Unmarshal([]byte(queries), &snap.QueryResults); err != nil {
		s.logger.Warn("decode query results", "error", err)
	}
	return &snap, nil
}

// SetChecklistItem upserts one checklist completion flag.
func (s *Store) SetChecklistItem(projectID, itemID string, done bool) error {
	_, err := s.db.Exec(`
		INSERT INTO checklist_state (project_id, item_id, done, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(project_id, item_id)
		DO UPDATE SET done = excluded.done, updated_at = excluded.updated_at`,
		projectID, itemID, done, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("set checklist item: %w", err)
	}
	return nil
}

// ChecklistState loads a project's completion flags.
func (s *Store) ChecklistState(projectID string) (checklist.State, error) {
	rows, err := s.db.Query(`
		SELECT item_id, done FROM checklist_state WHERE project_id = ?`, projectID)
	if err != nil {
		return nil, fmt.Errorf("load checklist state: %w", err)
	}
	defer rows.Close()

	state := make(checklist.State)
	for rows.Next() {
		var id string
		var done bool
		if err := rows.Scan(&id, &done); err != nil {
			return nil, err
		}
		state[id] = done
	}
	return state, rows.Err()
}

// AddCompetitor registers a tracked competitor. Adding the same name twice
// is a no-op.
func (s *Store) AddCompetitor(projectID, name string) error {
	_, err := s.db.Exec(`
		INSERT INTO competitors (project_id, name, added_at)
		VALUES (?, ?, ?)
		ON CONFLICT(project_id, name) DO NOTHING`,
		projectID, name, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("add competitor: %w", err)
	}
	return nil
}

// RemoveCompetitor drops a tracked competitor.
func (s *Store) RemoveCompetitor(projectID, name string) error {
	_, err := s.db.Exec(`
		DELETE FROM competitors WHERE project_id = ? AND name = ?`,
		projectID, name)
	return err
}

// ListCompetitors returns competitor names in the order they were added.
func (s *Store) ListCompetitors(projectID string) ([]string, error) {
	rows, err := s.db.Query(`
		SELECT name FROM competitors WHERE project_id = ?
		ORDER BY added_at ASC, name ASC`, projectID)
	if err != nil {
		return nil, fmt.Errorf("list competitors: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		out = append(out, name)
	}
	return out, rows.Err()
}

// GetSetting reads one key from the settings table, "" when unset.
func (s *Store) GetSetting(key string) (string, error) {
	var value string
	err := s.db.QueryRow(`SELECT value FROM settings WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("get setting %s: %w", key, err)
	}
	return value, nil
}

// SetSetting upserts one settings key.
func (s *Store) SetSetting(key, value string) error {
	_, err := s.db.Exec(`
		INSERT INTO settings (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, value, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("set setting %s: %w", key, err)
	}
	return nil
}

// View is everything the dashboard needs for one project, loaded in a
// single pass.
type View struct {
	Project     *Project
	Activity    []activity.Record // newest first
	History     []metrics.Snapshot
	Citations   *metrics.CitationShareSnapshot
	Checklist   checklist.State
	Competitors []string
}

// ProjectView loads the full dashboard view for one project.
func (s *Store) ProjectView(projectID string) (*View, error) {
	p, err := s.GetProject(projectID)
	if err != nil {
		return nil, err
	}
	log, err := s.ListActivity(projectID, 0)
	if err != nil {
		return nil, err
	}
	history, err := s.ListMetricsSnapshots(projectID)
	if err != nil {
		return nil, err
	}
	citations, err := s.LatestCitationSnapshot(projectID)
	if err != nil {
		return nil, err
	}
	state, err := s.ChecklistState(projectID)
	if err != nil {
		return nil, err
	}
	competitors, err := s.ListCompetitors(projectID)
	if err != nil {
		return nil, err
	}
	return &View{
		Project:     p,
		Activity:    log,
		History:     history,
		Citations:   citations,
		Checklist:   state,
		Competitors: competitors,
	}, nil
}
