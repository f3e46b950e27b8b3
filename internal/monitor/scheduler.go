package monitor

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"
)

// Settings is the user-facing scheduler configuration, re-read on every
// tick so toggles take effect without restarting.
type Settings struct {
	Enabled  bool
	Interval Interval
}

// CheckFunc performs the actual re-check (network/LLM work owned by the
// caller). The scheduler only decides when to invoke it.
type CheckFunc func(ctx context.Context) error

// Config holds the scheduler's timing knobs. The tick interval is a short
// polling period, unrelated to the configured re-check cadence; the startup
// delay debounces the first tick after load.
type Config struct {
	TickInterval time.Duration `json:"tickInterval"`
	StartupDelay time.Duration `json:"startupDelay"`
}

// DefaultConfig returns sensible scheduler defaults.
func DefaultConfig() Config {
	return Config{
		TickInterval: 30 * time.Second,
		StartupDelay: 5 * time.Second,
	}
}

// Scheduler owns the tick loop and the in-flight guard. At most one check
// runs at a time; ticks that arrive while one is in flight are dropped, not
// queued.
type Scheduler struct {
	cfg      Config
	settings func() Settings
	prereq   func() bool
	check    CheckFunc
	onRun    func(t time.Time)
	now      func() time.Time

	mu      sync.Mutex
	lastRun *time.Time

	guard chan struct{}
}

// New creates a Scheduler. settings and prereq are consulted on every tick;
// onRun is called with the completion time after each successful check (for
// persistence) and may be nil. lastRun nil means never run.
func New(cfg Config, settings func() Settings, prereq func() bool, lastRun *time.Time, check CheckFunc, onRun func(time.Time)) *Scheduler {
	if cfg.TickInterval <= 0 {
		cfg.TickInterval = DefaultConfig().TickInterval
	}
	if cfg.StartupDelay < 0 {
		cfg.StartupDelay = 0
	}
	if settings == nil {
		settings = func() Settings { return Settings{} }
	}
	if prereq == nil {
		prereq = func() bool { return true }
	}
	if check == nil {
		check = func(context.Context) error { return errors.New("no check configured") }
	}
	return &Scheduler{
		cfg:      cfg,
		settings: settings,
		prereq:   prereq,
		check:    check,
		onRun:    onRun,
		now:      time.Now,
		lastRun:  lastRun,
		guard:    make(chan struct{}, 1),
	}
}

// Status snapshots the scheduler's current decision inputs.
func (s *Scheduler) Status() Status {
	set := s.settings()
	s.mu.Lock()
	last := s.lastRun
	s.mu.Unlock()
	return Status{
		Enabled:   set.Enabled,
		PrereqMet: s.prereq(),
		Interval:  set.Interval,
		LastRun:   last,
		InFlight:  len(s.guard) > 0,
	}
}

// State returns the current observable state.
func (s *Scheduler) State() State {
	st, _ := Evaluate(s.Status(), s.now())
	return st
}

// Run starts the tick loop after the startup delay and blocks until ctx is
// cancelled. Cancellation stops both the pending delay timer and the ticker
// deterministically; a check already in flight may finish, but its result is
// discarded once ctx is done.
func (s *Scheduler) Run(ctx context.Context) error {
	if s.cfg.StartupDelay > 0 {
		delay := time.NewTimer(s.cfg.StartupDelay)
		select {
		case <-ctx.Done():
			delay.Stop()
			return ctx.Err()
		case <-delay.C:
		}
	}

	slog.Info("Monitor scheduler started", "tick", s.cfg.TickInterval)
	ticker := time.NewTicker(s.cfg.TickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("Monitor scheduler stopped")
			return ctx.Err()
		case t := <-ticker.C:
			s.Tick(ctx, t)
		}
	}
}

// Tick evaluates the due predicate at now and starts the check if due and
// nothing is in flight. Returns the state seen and whether a check started.
// The in-flight slot is claimed before the goroutine launches, so a slow
// check suppresses every overlapping tick.
func (s *Scheduler) Tick(ctx context.Context, now time.Time) (State, bool) {
	st := s.Status()
	state, due := Evaluate(st, now)
	if !due {
		return state, false
	}

	select {
	case s.guard <- struct{}{}:
	default:
		// Lost the race with a check that just started.
		return StateRunning, false
	}

	slog.Info("Monitor re-check starting", "last_run", formatLastRun(st.LastRun))
	go s.runCheck(ctx)
	return StateRunning, true
}

func (s *Scheduler) runCheck(ctx context.Context) {
	defer func() { <-s.guard }()

	err := s.check(ctx)
	if ctx.Err() != nil {
		// Teardown raced the check; a stale result must not be applied.
		slog.Debug("Monitor re-check result discarded after shutdown")
		return
	}
	if err != nil {
		// lastRun stays put so the next due tick retries.
		slog.Warn("Monitor re-check failed", "error", err)
		return
	}

	done := s.now()
	s.mu.Lock()
	s.lastRun = &done
	s.mu.Unlock()
	if s.onRun != nil {
		s.onRun(done)
	}
	slog.Info("Monitor re-check completed", "at", done.Format(time.RFC3339))
}

func formatLastRun(t *time.Time) string {
	if t == nil {
		return "never"
	}
	return t.Format(time.RFC3339)
}
