package ingest

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/lensboard/lensboard/internal/activity"
	"github.com/lensboard/lensboard/internal/metrics"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type memorySink struct {
	mu        sync.Mutex
	records   map[string][]activity.Record
	snapshots map[string][]metrics.Snapshot
	citations map[string][]metrics.CitationShareSnapshot
}

func newMemorySink() *memorySink {
	return &memorySink{
		records:   make(map[string][]activity.Record),
		snapshots: make(map[string][]metrics.Snapshot),
		citations: make(map[string][]metrics.CitationShareSnapshot),
	}
}

func (m *memorySink) AppendActivity(projectID string, rec activity.Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records[projectID] = append(m.records[projectID], rec)
	return nil
}

func (m *memorySink) AppendMetricsSnapshot(projectID string, snap metrics.Snapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.snapshots[projectID] = append(m.snapshots[projectID], snap)
	return nil
}

func (m *memorySink) AppendCitationSnapshot(projectID string, snap metrics.CitationShareSnapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.citations[projectID] = append(m.citations[projectID], snap)
	return nil
}

func (m *memorySink) count(projectID string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.records[projectID])
}

func (m *memorySink) last(projectID string) activity.Record {
	m.mu.Lock()
	defer m.mu.Unlock()
	recs := m.records[projectID]
	return recs[len(recs)-1]
}

func runUntilDrained(t *testing.T, c *ChannelConsumer, sink *memorySink) {
	t.Helper()
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = NewRunner(c, sink, nil).Run(context.Background())
	}()
	_ = c.Close()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("runner did not drain the consumer")
	}
}

func TestRunnerAppendsEvents(t *testing.T) {
	c := NewChannelConsumer()
	sink := newMemorySink()

	c.Send(Message{Value: []byte(`{
		"project_id": "p1",
		"kind": "task_completed",
		"timestamp": "2026-03-18T10:00:00Z",
		"actor_id": "u1",
		"actor_name": "Dana",
		"task_title": "Connect your site"
	}`)})
	c.Send(Message{Value: []byte(`{"project_id": "p2", "kind": "metrics_run"}`)})

	runUntilDrained(t, c, sink)

	if sink.count("p1") != 1 || sink.count("p2") != 1 {
		t.Fatalf("counts = p1:%d p2:%d", sink.count("p1"), sink.count("p2"))
	}
	rec := sink.last("p1")
	if rec.Kind != activity.KindTaskCompleted || rec.TaskTitle != "Connect your site" {
		t.Errorf("decoded record = %+v", rec)
	}
	if rec.ActorName != "Dana" {
		t.Errorf("actor lost: %+v", rec)
	}
}

func TestRunnerSkipsMalformed(t *testing.T) {
	c := NewChannelConsumer()
	sink := newMemorySink()

	c.Send(Message{Value: []byte(`{not json`)})
	c.Send(Message{Value: []byte(`{"kind": "task_completed"}`)}) // no project id
	c.Send(Message{Value: []byte(`{"project_id": "p1", "kind": "unheard_of_kind"}`)})

	runUntilDrained(t, c, sink)

	// Unknown kinds are still stored; only undecodable or unroutable
	// events are dropped.
	if sink.count("p1") != 1 {
		t.Fatalf("p1 count = %d", sink.count("p1"))
	}
	if sink.last("p1").Kind != activity.Kind("unheard_of_kind") {
		t.Errorf("kind = %q", sink.last("p1").Kind)
	}
}

func TestRunnerRoutesSnapshotEvents(t *testing.T) {
	c := NewChannelConsumer()
	sink := newMemorySink()

	c.Send(Message{Value: []byte(`{
		"type": "metrics_snapshot",
		"project_id": "p1",
		"metrics": {"timestamp": "2026-03-18T10:00:00Z", "overall_score": 61,
			"citations": {"total": 3}, "prompts": {"total": 12}}
	}`)})
	c.Send(Message{Value: []byte(`{
		"type": "citation_snapshot",
		"project_id": "p1",
		"citations": {"timestamp": "2026-03-18T10:00:00Z",
			"brands": {"acme": {"name": "acme", "is_own": true, "total_mentions": 4, "share_percent": 40}}}
	}`)})
	// Snapshot event without a payload, then an unknown type: both dropped.
	c.Send(Message{Value: []byte(`{"type": "metrics_snapshot", "project_id": "p1"}`)})
	c.Send(Message{Value: []byte(`{"type": "telepathy", "project_id": "p1"}`)})

	runUntilDrained(t, c, sink)

	sink.mu.Lock()
	defer sink.mu.Unlock()
	if len(sink.snapshots["p1"]) != 1 || sink.snapshots["p1"][0].OverallScore != 61 {
		t.Errorf("metrics snapshots = %+v", sink.snapshots["p1"])
	}
	if len(sink.citations["p1"]) != 1 || sink.citations["p1"][0].Brands["acme"].TotalMentions != 4 {
		t.Errorf("citation snapshots = %+v", sink.citations["p1"])
	}
	if len(sink.records["p1"]) != 0 {
		t.Errorf("snapshot events must not land in the activity log: %+v", sink.records["p1"])
	}
}

func TestKafkaConsumerCloseBeforeStart(t *testing.T) {
	c := NewKafkaConsumer("127.0.0.1:1", "g", "t", discardLogger())
	if err := c.Close(); err != nil {
		t.Fatal(err)
	}
	if _, ok := <-c.Messages(); ok {
		t.Error("channel must be closed")
	}
}

func TestKafkaConsumerCancelClosesChannel(t *testing.T) {
	c := NewKafkaConsumer("127.0.0.1:1", "g", "t", discardLogger())
	ctx, cancel := context.WithCancel(context.Background())
	if err := c.Start(ctx); err != nil {
		t.Fatal(err)
	}
	cancel()

	select {
	case _, ok := <-c.Messages():
		if ok {
			t.Error("unexpected message from unreachable broker")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("message channel not closed after cancel")
	}
	if err := c.Close(); err != nil {
		t.Fatal(err)
	}
}

func TestKafkaConsumerCloseStopsReadLoop(t *testing.T) {
	c := NewKafkaConsumer("127.0.0.1:1", "g", "t", discardLogger())
	if err := c.Start(context.Background()); err != nil {
		t.Fatal(err)
	}
	if err := c.Close(); err != nil {
		t.Fatal(err)
	}

	select {
	case _, ok := <-c.Messages():
		if ok {
			t.Error("unexpected message from unreachable broker")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("message channel not closed after Close")
	}
}

func TestRunnerStopsOnCancel(t *testing.T) {
	c := NewChannelConsumer()
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- NewRunner(c, newMemorySink(), nil).Run(ctx) }()

	cancel()
	select {
	case err := <-done:
		if err != context.Canceled {
			t.Errorf("Run returned %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("runner did not stop on cancel")
	}
}
