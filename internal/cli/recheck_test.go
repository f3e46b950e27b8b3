package cli

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/lensboard/lensboard/internal/activity"
	"github.com/lensboard/lensboard/internal/config"
	"github.com/lensboard/lensboard/internal/monitor"
	"github.com/lensboard/lensboard/internal/notify"
	"github.com/lensboard/lensboard/internal/store"
)

func openTestStore(t *testing.T) *store.Store {
	t.Helper()
	st, err := store.Open(filepath.Join(t.TempDir(), "cli.db"), nil)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { st.Close() })
	return st
}

func fastConfig() config.Config {
	cfg := config.DefaultConfig()
	cfg.Monitor.TickInterval = 10 * time.Millisecond
	cfg.Monitor.StartupDelay = 0
	return cfg
}

func TestFleetRunsDueCheck(t *testing.T) {
	st := openTestStore(t)
	p, _ := st.CreateProject("p", "acme.example")
	if err := st.SetMonitor(p.ID, true, monitor.IntervalDaily); err != nil {
		t.Fatal(err)
	}

	cfg := fastConfig()
	f := newRecheckFleet(&cfg, st, nil, notify.New(cfg.Notify.Slack, nil), nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go f.Run(ctx)

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		got, err := st.GetProject(p.ID)
		if err == nil && got.MonitorLastRun != nil {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}

	got, err := st.GetProject(p.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.MonitorLastRun == nil {
		t.Fatal("due check never completed")
	}

	log, err := st.ListActivity(p.ID, 0)
	if err != nil {
		t.Fatal(err)
	}
	var ran bool
	for _, rec := range log {
		if rec.Kind == activity.KindMonitorDue {
			ran = true
		}
	}
	if !ran {
		t.Errorf("check run not logged: %+v", log)
	}
}

func TestFleetSkipsDisabledProject(t *testing.T) {
	st := openTestStore(t)
	p, _ := st.CreateProject("p", "acme.example")
	// Monitor stays disabled.

	cfg := fastConfig()
	f := newRecheckFleet(&cfg, st, nil, notify.New(cfg.Notify.Slack, nil), nil)

	ctx, cancel := context.WithCancel(context.Background())
	go f.Run(ctx)
	time.Sleep(100 * time.Millisecond)
	cancel()

	got, err := st.GetProject(p.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.MonitorLastRun != nil {
		t.Error("disabled project must never run a check")
	}
	if f.InFlight() {
		t.Error("nothing should be in flight")
	}
}

func TestFleetPrereqGate(t *testing.T) {
	st := openTestStore(t)
	p, _ := st.CreateProject("p", "") // no domain connected
	if err := st.SetMonitor(p.ID, true, monitor.IntervalDaily); err != nil {
		t.Fatal(err)
	}

	cfg := fastConfig()
	f := newRecheckFleet(&cfg, st, nil, notify.New(cfg.Notify.Slack, nil), nil)

	ctx, cancel := context.WithCancel(context.Background())
	go f.Run(ctx)
	time.Sleep(100 * time.Millisecond)
	cancel()

	got, _ := st.GetProject(p.ID)
	if got.MonitorLastRun != nil {
		t.Error("missing prerequisite must keep the check idle")
	}
}

func TestResolveProjectID(t *testing.T) {
	st := openTestStore(t)

	if _, err := resolveProjectID(st, nil); err == nil {
		t.Error("no projects must error")
	}

	p, _ := st.CreateProject("only", "")
	id, err := resolveProjectID(st, nil)
	if err != nil || id != p.ID {
		t.Errorf("sole project: id=%q err=%v", id, err)
	}

	if id, err := resolveProjectID(st, []string{"explicit"}); err != nil || id != "explicit" {
		t.Errorf("explicit arg: id=%q err=%v", id, err)
	}

	_, _ = st.CreateProject("second", "")
	if _, err := resolveProjectID(st, nil); err == nil {
		t.Error("ambiguous roster must error")
	}

	// The stored active project breaks the tie.
	if err := st.SetSetting(activeProjectKey, p.ID); err != nil {
		t.Fatal(err)
	}
	if id, err := resolveProjectID(st, nil); err != nil || id != p.ID {
		t.Errorf("active setting: id=%q err=%v", id, err)
	}

	// An explicit argument still wins over the setting.
	if id, _ := resolveProjectID(st, []string{"explicit"}); id != "explicit" {
		t.Errorf("explicit arg over setting: id=%q", id)
	}

	// A stale active id is ignored, not resolved.
	if err := st.SetSetting(activeProjectKey, "deleted-project"); err != nil {
		t.Fatal(err)
	}
	if _, err := resolveProjectID(st, nil); err == nil {
		t.Error("stale active id must not resolve")
	}
}
