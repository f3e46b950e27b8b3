// Package api exposes the dashboard over HTTP: project CRUD, the activity
// feed, the overview bundle, checklist toggles, and monitor control.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/lensboard/lensboard/internal/activity"
	"github.com/lensboard/lensboard/internal/checklist"
	"github.com/lensboard/lensboard/internal/config"
	"github.com/lensboard/lensboard/internal/dashboard"
	"github.com/lensboard/lensboard/internal/monitor"
	"github.com/lensboard/lensboard/internal/store"
)

// Server wires the store and engines to HTTP handlers.
type Server struct {
	st        *store.Store
	phases    []checklist.Phase
	feed      config.FeedConfig
	authToken string
	logger    *slog.Logger
	now       func() time.Time
	inFlight  func() bool

	httpServer *http.Server
}

// New builds a server. inFlight reports whether a re-check is currently
// running; nil means never.
func New(st *store.Store, cfg *config.Config, inFlight func() bool, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if inFlight == nil {
		inFlight = func() bool { return false }
	}
	return &Server{
		st:        st,
		phases:    checklist.DefaultPhases(),
		feed:      cfg.Feed,
		authToken: strings.TrimSpace(cfg.Gateway.AuthToken),
		logger:    logger,
		now:       time.Now,
		inFlight:  inFlight,
	}
}

// Handler assembles the route table.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/v1/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	mux.HandleFunc("GET /api/v1/projects", s.auth(s.handleListProjects))
	mux.HandleFunc("POST /api/v1/projects", s.auth(s.handleCreateProject))
	mux.HandleFunc("GET /api/v1/projects/{id}/overview", s.auth(s.handleOverview))
	mux.HandleFunc("GET /api/v1/projects/{id}/feed", s.auth(s.handleFeed))
	mux.HandleFunc("GET /api/v1/feed/groups", s.auth(s.handleFeedGroups))
	mux.HandleFunc("GET /api/v1/projects/{id}/citations", s.auth(s.handleCitations))
	mux.HandleFunc("GET /api/v1/projects/{id}/checklist", s.auth(s.handleChecklist))
	mux.HandleFunc("POST /api/v1/projects/{id}/checklist", s.auth(s.handleChecklistToggle))
	mux.HandleFunc("POST /api/v1/projects/{id}/competitors", s.auth(s.handleCompetitorAdd))
	mux.HandleFunc("DELETE /api/v1/projects/{id}/competitors/{name}", s.auth(s.handleCompetitorRemove))
	mux.HandleFunc("GET /api/v1/projects/{id}/monitor", s.auth(s.handleMonitorStatus))
	mux.HandleFunc("POST /api/v1/projects/{id}/monitor", s.auth(s.handleMonitorUpdate))

	return mux
}

// auth enforces the bearer token when one is configured.
func (s *Server) auth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.authToken != "" {
			got := strings.TrimSpace(strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer "))
			if got != s.authToken {
				writeError(w, http.StatusUnauthorized, "invalid token")
				return
			}
		}
		next(w, r)
	}
}

// Run serves until ctx is canceled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	s.httpServer = &http.Server{Addr: addr, Handler: s.Handler()}

	errCh := make(chan error, 1)
	go func() { errCh <- s.httpServer.ListenAndServe() }()
	s.logger.Info("api listening", "addr", addr)

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.httpServer.Shutdown(shutdownCtx)
		return ctx.Err()
	case err := <-errCh:
		return err
	}
}

func (s *Server) handleListProjects(w http.ResponseWriter, r *http.Request) {
	projects, err := s.st.ListProjects()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if projects == nil {
		projects = []*store.Project{}
	}
	writeJSON(w, http.StatusOK, projects)
}

func (s *Server) handleCreateProject(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name   string `json:"name"`
		Domain string `json:"domain"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid body")
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}
	p, err := s.st.CreateProject(strings.TrimSpace(req.Name), strings.TrimSpace(req.Domain))
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

func (s *Server) handleOverview(w http.ResponseWriter, r *http.Request) {
	view, err := s.st.ProjectView(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusNotFound, "project not found")
		return
	}
	writeJSON(w, http.StatusOK, dashboard.Build(view, s.phases, s.now()))
}

func (s *Server) handleFeed(w http.ResponseWriter, r *http.Request) {
	log, err := s.st.ListActivity(r.PathValue("id"), 0)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	q := r.URL.Query()
	group := activity.FilterGroup(q.Get("group"))
	user := q.Get("user")
	visible := s.feed.PageSize
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		visible = n
	}
	viewer := q.Get("viewer")

	writeJSON(w, http.StatusOK, activity.BuildFeed(log, group, user, visible, viewer, s.now()))
}

// handleFeedGroups lists the selectable kind filters for the feed facet.
func (s *Server) handleFeedGroups(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"groups": activity.FilterGroups()})
}

// handleCitations returns the latest competitor brand-share snapshot.
func (s *Server) handleCitations(w http.ResponseWriter, r *http.Request) {
	snap, err := s.st.LatestCitationSnapshot(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if snap == nil {
		writeError(w, http.StatusNotFound, "no citation check has run yet")
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (s *Server) handleChecklist(w http.ResponseWriter, r *http.Request) {
	state, err := s.st.ChecklistState(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	done, total := checklist.Progress(s.phases, state)
	writeJSON(w, http.StatusOK, map[string]any{
		"phases":  s.phases,
		"state":   state,
		"done":    done,
		"total":   total,
		"percent": checklist.Percent(s.phases, state),
	})
}

func (s *Server) handleChecklistToggle(w http.ResponseWriter, r *http.Request) {
	projectID := r.PathValue("id")
	var req struct {
		ItemID    string `json:"item_id"`
		Done      bool   `json:"done"`
		ActorID   string `json:"actor_id"`
		ActorName string `json:"actor_name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.ItemID == "" {
		writeError(w, http.StatusBadRequest, "item_id is required")
		return
	}
	if err := s.st.SetChecklistItem(projectID, req.ItemID, req.Done); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	kind := activity.KindTaskCompleted
	if !req.Done {
		kind = activity.KindTaskUnchecked
	}
	rec := activity.Record{
		Kind:      kind,
		Timestamp: s.now(),
		ActorID:   req.ActorID,
		ActorName: req.ActorName,
		TaskTitle: itemTitle(s.phases, req.ItemID),
	}
	if err := s.st.AppendActivity(projectID, rec); err != nil {
		s.logger.Warn("log checklist toggle", "error", err)
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func (s *Server) handleCompetitorAdd(w http.ResponseWriter, r *http.Request) {
	projectID := r.PathValue("id")
	var req struct {
		Name      string `json:"name"`
		ActorID   string `json:"actor_id"`
		ActorName string `json:"actor_name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || strings.TrimSpace(req.Name) == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}
	name := strings.TrimSpace(req.Name)
	if err := s.st.AddCompetitor(projectID, name); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	_ = s.st.AppendActivity(projectID, activity.Record{
		Kind:           activity.KindCompetitorAdded,
		Timestamp:      s.now(),
		ActorID:        req.ActorID,
		ActorName:      req.ActorName,
		CompetitorName: name,
	})
	writeJSON(w, http.StatusCreated, map[string]any{"ok": true})
}

func (s *Server) handleCompetitorRemove(w http.ResponseWriter, r *http.Request) {
	projectID := r.PathValue("id")
	name := r.PathValue("name")
	if err := s.st.RemoveCompetitor(projectID, name); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	_ = s.st.AppendActivity(projectID, activity.Record{
		Kind:           activity.KindCompetitorRemoved,
		Timestamp:      s.now(),
		CompetitorName: name,
	})
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func (s *Server) handleMonitorStatus(w http.ResponseWriter, r *http.Request) {
	p, err := s.st.GetProject(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusNotFound, "project not found")
		return
	}
	st := s.monitorStatus(p)
	state, due := monitor.Evaluate(st, s.now())
	writeJSON(w, http.StatusOK, map[string]any{
		"enabled":  st.Enabled,
		"interval": st.Interval,
		"last_run": st.LastRun,
		"state":    state,
		"due":      due,
	})
}

func (s *Server) handleMonitorUpdate(w http.ResponseWriter, r *http.Request) {
	projectID := r.PathValue("id")
	var req struct {
		Enabled  bool   `json:"enabled"`
		Interval string `json:"interval"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid body")
		return
	}
	interval := monitor.ParseInterval(req.Interval)
	if err := s.st.SetMonitor(projectID, req.Enabled, interval); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"enabled":  req.Enabled,
		"interval": interval,
	})
}

// monitorStatus maps stored project fields to the scheduler's status shape.
// The prerequisite for re-checks is a connected site (a non-empty domain).
func (s *Server) monitorStatus(p *store.Project) monitor.Status {
	return monitor.Status{
		Enabled:   p.MonitorEnabled,
		PrereqMet: p.Domain != "",
		Interval:  monitor.ParseInterval(p.MonitorInterval),
		LastRun:   p.MonitorLastRun,
		InFlight:  s.inFlight(),
	}
}

func itemTitle(phases []checklist.Phase, itemID string) string {
	for _, p := range phases {
		for _, c := range p.Categories {
			for _, it := range c.Items {
				if it.ID == itemID {
					return it.Title
				}
			}
		}
	}
	return itemID
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// Addr formats the listen address from gateway config.
func Addr(cfg config.GatewayConfig) string {
	return fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)
}
