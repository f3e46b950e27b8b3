package cli

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/lensboard/lensboard/internal/activity"
	"github.com/lensboard/lensboard/internal/checklist"
	"github.com/lensboard/lensboard/internal/config"
	"github.com/lensboard/lensboard/internal/dashboard"
	"github.com/lensboard/lensboard/internal/monitor"
	"github.com/lensboard/lensboard/internal/notify"
	"github.com/lensboard/lensboard/internal/store"
)

// CheckRunner performs the citation re-scan for one project. The network and
// model work lives behind this interface; the built-in runner only records
// that the run happened and leaves snapshot production to the producers on
// the ingest topic.
type CheckRunner interface {
	RunCheck(ctx context.Context, projectID string) error
}

type recordingRunner struct {
	st *store.Store
}

func (r recordingRunner) RunCheck(ctx context.Context, projectID string) error {
	return r.st.AppendActivity(projectID, activity.Record{
		Kind:      activity.KindMonitorDue,
		Timestamp: time.Now().UTC(),
	})
}

// recheckFleet keeps one monitor.Scheduler per project. Settings are re-read
// from the store on every tick, so API toggles apply without restart; new
// projects are picked up on the next reconcile pass.
type recheckFleet struct {
	cfg      monitor.Config
	st       *store.Store
	runner   CheckRunner
	notifier *notify.Notifier
	logger   *slog.Logger

	mu     sync.Mutex
	scheds map[string]*monitor.Scheduler
}

func newRecheckFleet(cfg *config.Config, st *store.Store, runner CheckRunner, notifier *notify.Notifier, logger *slog.Logger) *recheckFleet {
	if logger == nil {
		logger = slog.Default()
	}
	if runner == nil {
		runner = recordingRunner{st: st}
	}
	return &recheckFleet{
		cfg: monitor.Config{
			TickInterval: cfg.Monitor.TickInterval,
			StartupDelay: cfg.Monitor.StartupDelay,
		},
		st:       st,
		runner:   runner,
		notifier: notifier,
		logger:   logger,
		scheds:   make(map[string]*monitor.Scheduler),
	}
}

// Run reconciles schedulers against the project roster until ctx is
// canceled. The reconcile period reuses the scheduler tick interval.
func (f *recheckFleet) Run(ctx context.Context) error {
	f.reconcile(ctx)
	ticker := time.NewTicker(f.cfg.TickInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			f.reconcile(ctx)
		}
	}
}

func (f *recheckFleet) reconcile(ctx context.Context) {
	projects, err := f.st.ListProjects()
	if err != nil {
		f.logger.Warn("list projects for recheck", "error", err)
		return
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range projects {
		if _, ok := f.scheds[p.ID]; ok {
			continue
		}
		s := f.newScheduler(p)
		f.scheds[p.ID] = s
		go func(id string) {
			if err := s.Run(ctx); err != nil && ctx.Err() == nil {
				f.logger.Warn("scheduler stopped", "project", id, "error", err)
			}
		}(p.ID)
		f.logger.Info("recheck scheduler started", "project", p.ID)
	}
}

func (f *recheckFleet) newScheduler(p *store.Project) *monitor.Scheduler {
	id := p.ID
	settings := func() monitor.Settings {
		proj, err := f.st.GetProject(id)
		if err != nil {
			return monitor.Settings{}
		}
		return monitor.Settings{
			Enabled:  proj.MonitorEnabled,
			Interval: monitor.ParseInterval(proj.MonitorInterval),
		}
	}
	prereq := func() bool {
		proj, err := f.st.GetProject(id)
		return err == nil && proj.Domain != ""
	}
	check := func(ctx context.Context) error {
		return f.runner.RunCheck(ctx, id)
	}
	onRun := func(t time.Time) {
		f.afterCheck(id, t)
	}
	return monitor.New(f.cfg, settings, prereq, p.MonitorLastRun, check, onRun)
}

// afterCheck persists the completion time and posts the digest.
func (f *recheckFleet) afterCheck(projectID string, t time.Time) {
	if err := f.st.SetMonitorLastRun(projectID, t); err != nil {
		f.logger.Warn("persist last run", "project", projectID, "error", err)
	}
	if f.notifier == nil || !f.notifier.Enabled() {
		return
	}
	view, err := f.st.ProjectView(projectID)
	if err != nil {
		f.logger.Warn("load view for digest", "project", projectID, "error", err)
		return
	}
	ov := dashboard.Build(view, checklist.DefaultPhases(), time.Now())
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := f.notifier.PostDigest(ctx, ov); err != nil {
		f.logger.Warn("post digest", "project", projectID, "error", err)
	}
}

// InFlight reports whether any project's check is currently running.
func (f *recheckFleet) InFlight() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, s := range f.scheds {
		if s.Status().InFlight {
			return true
		}
	}
	return false
}
