package notify

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/slack-go/slack"

	"github.com/lensboard/lensboard/internal/config"
	"github.com/lensboard/lensboard/internal/dashboard"
	"github.com/lensboard/lensboard/internal/health"
	"github.com/lensboard/lensboard/internal/insight"
	"github.com/lensboard/lensboard/internal/metrics"
	"github.com/lensboard/lensboard/internal/store"
)

type recordingPoster struct {
	channel string
	calls   int
}

func (r *recordingPoster) PostMessageContext(ctx context.Context, channelID string, options ...slack.MsgOption) (string, string, error) {
	r.channel = channelID
	r.calls++
	return channelID, "1", nil
}

func sampleOverview() dashboard.Overview {
	return dashboard.Overview{
		Project: &store.Project{Name: "Acme"},
		Health:  health.Breakdown{Total: 64},
		Trend:   metrics.Trend{Delta: -2.3, DeltaKnown: true},
		Insights: []insight.Insight{
			{Level: insight.LevelWarning, Text: "Visibility score dropped", Detail: "Your score fell 2.3% since the previous analysis."},
		},
		Checklist: dashboard.ChecklistSummary{Done: 4, Total: 10, Percent: 40},
	}
}

func TestFormatDigest(t *testing.T) {
	text := FormatDigest(sampleOverview())

	for _, want := range []string{"*Acme*", "64/100", "▼ 2.3%", "4/10 done", ":warning:"} {
		if !strings.Contains(text, want) {
			t.Errorf("digest missing %q:\n%s", want, text)
		}
	}
	if strings.Contains(text, "-2.3") {
		t.Errorf("delta must be shown as magnitude with arrow:\n%s", text)
	}
}

func TestFormatDigestUnknownDelta(t *testing.T) {
	ov := sampleOverview()
	ov.Trend.DeltaKnown = false

	text := FormatDigest(ov)
	if strings.Contains(text, "▼") || strings.Contains(text, "▲") {
		t.Errorf("unknown delta must not render an arrow:\n%s", text)
	}
}

func TestPostDigestDisabled(t *testing.T) {
	n := New(config.SlackConfig{Enabled: false, Token: "xoxb-test"}, nil)
	if n.Enabled() {
		t.Fatal("disabled config must yield an inert notifier")
	}
	if err := n.PostDigest(context.Background(), sampleOverview()); err != nil {
		t.Errorf("inert post errored: %v", err)
	}
}

func TestPostDigestSends(t *testing.T) {
	rec := &recordingPoster{}
	n := &Notifier{
		cfg:    config.SlackConfig{Enabled: true, Token: "xoxb-test", Channel: "#lensboard"},
		client: rec,
	}
	n.logger = discardLogger()

	if err := n.PostDigest(context.Background(), sampleOverview()); err != nil {
		t.Fatalf("post digest: %v", err)
	}
	if rec.calls != 1 || rec.channel != "#lensboard" {
		t.Errorf("poster calls=%d channel=%q", rec.calls, rec.channel)
	}
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
