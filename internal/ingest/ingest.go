// Package ingest consumes project events from Kafka and appends them to the
// store. Producers are the product surfaces (web app, content tools,
// analyzers); this side only validates and persists.
package ingest

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/lensboard/lensboard/internal/activity"
	"github.com/lensboard/lensboard/internal/metrics"
)

// Event types carried on the topic. An empty type means activity, the
// dominant producer.
const (
	TypeActivity         = "activity"
	TypeMetricsSnapshot  = "metrics_snapshot"
	TypeCitationSnapshot = "citation_snapshot"
)

// Event is the wire envelope. Exactly one payload section is read, selected
// by Type; activity record fields are inlined for producer convenience.
type Event struct {
	Type      string `json:"type,omitempty"`
	ProjectID string `json:"project_id"`
	activity.Record

	Metrics   *metrics.Snapshot              `json:"metrics,omitempty"`
	Citations *metrics.CitationShareSnapshot `json:"citations,omitempty"`
}

// Sink is the slice of the store the runner writes to.
type Sink interface {
	AppendActivity(projectID string, rec activity.Record) error
	AppendMetricsSnapshot(projectID string, snap metrics.Snapshot) error
	AppendCitationSnapshot(projectID string, snap metrics.CitationShareSnapshot) error
}

// Runner drains a Consumer into the store.
type Runner struct {
	consumer Consumer
	sink     Sink
	logger   *slog.Logger
}

// NewRunner wires a consumer to a sink.
func NewRunner(consumer Consumer, sink Sink, logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{consumer: consumer, sink: sink, logger: logger}
}

// Run starts the consumer and processes messages until ctx is canceled or
// the consumer closes its channel. Malformed events are logged and skipped;
// one bad producer must not stall the topic.
func (r *Runner) Run(ctx context.Context) error {
	if err := r.consumer.Start(ctx); err != nil {
		return err
	}
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-r.consumer.Messages():
			if !ok {
				return nil
			}
			r.handle(msg)
		}
	}
}

func (r *Runner) handle(msg Message) {
	var ev Event
	if err := json.Unmarshal(msg.Value, &ev); err != nil {
		r.logger.Warn("skip malformed event", "error", err)
		return
	}
	if ev.ProjectID == "" {
		r.logger.Warn("skip event without project id", "type", ev.Type, "kind", ev.Kind)
		return
	}

	var err error
	switch ev.Type {
	case TypeMetricsSnapshot:
		if ev.Metrics == nil {
			r.logger.Warn("skip snapshot event without payload", "project", ev.ProjectID)
			return
		}
		err = r.sink.AppendMetricsSnapshot(ev.ProjectID, *ev.Metrics)
	case TypeCitationSnapshot:
		if ev.Citations == nil {
			r.logger.Warn("skip citation event without payload", "project", ev.ProjectID)
			return
		}
		err = r.sink.AppendCitationSnapshot(ev.ProjectID, *ev.Citations)
	case TypeActivity, "":
		err = r.sink.AppendActivity(ev.ProjectID, ev.Record)
	default:
		r.logger.Warn("skip event of unknown type", "type", ev.Type)
		return
	}
	if err != nil {
		r.logger.Error("persist event", "project", ev.ProjectID, "type", ev.Type, "error", err)
		return
	}
	r.logger.Debug("event ingested", "project", ev.ProjectID, "type", ev.Type, "kind", ev.Kind)
}
