// Package notify posts re-check digests to Slack. It is a one-way outbound
// channel; nothing is read back from the workspace.
package notify

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strings"

	"github.com/slack-go/slack"

	"github.com/lensboard/lensboard/internal/config"
	"github.com/lensboard/lensboard/internal/dashboard"
	"github.com/lensboard/lensboard/internal/insight"
)

// Poster is the slice of the Slack client the notifier uses. Tests swap in
// a recorder.
type Poster interface {
	PostMessageContext(ctx context.Context, channelID string, options ...slack.MsgOption) (string, string, error)
}

// Notifier sends project digests to one configured channel.
type Notifier struct {
	cfg    config.SlackConfig
	client Poster
	logger *slog.Logger
}

// New builds a notifier from config. With Slack disabled or no token set the
// notifier is inert and every Post is a no-op.
func New(cfg config.SlackConfig, logger *slog.Logger) *Notifier {
	if logger == nil {
		logger = slog.Default()
	}
	n := &Notifier{cfg: cfg, logger: logger}
	if cfg.Enabled && strings.TrimSpace(cfg.Token) != "" {
		n.client = slack.New(cfg.Token)
	}
	return n
}

// Enabled reports whether posts will actually be sent.
func (n *Notifier) Enabled() bool {
	return n.client != nil && strings.TrimSpace(n.cfg.Channel) != ""
}

// PostDigest sends the post-re-check summary for one project.
func (n *Notifier) PostDigest(ctx context.Context, ov dashboard.Overview) error {
	if !n.Enabled() {
		return nil
	}
	text := FormatDigest(ov)
	_, _, err := n.client.PostMessageContext(ctx, n.cfg.Channel,
		slack.MsgOptionText(text, false))
	if err != nil {
		return fmt.Errorf("post digest: %w", err)
	}
	n.logger.Info("digest posted", "channel", n.cfg.Channel, "project", ov.Project.Name)
	return nil
}

// FormatDigest renders the overview as Slack mrkdwn.
func FormatDigest(ov dashboard.Overview) string {
	var b strings.Builder
	fmt.Fprintf(&b, "*%s* health score: %d/100", ov.Project.Name, ov.Health.Total)
	if ov.Trend.DeltaKnown {
		arrow := "▲"
		if ov.Trend.Delta < 0 {
			arrow = "▼"
		}
		fmt.Fprintf(&b, " (%s %.1f%%)", arrow, math.Abs(ov.Trend.Delta))
	}
	fmt.Fprintf(&b, "\nChecklist: %d/%d done", ov.Checklist.Done, ov.Checklist.Total)

	for _, in := range ov.Insights {
		fmt.Fprintf(&b, "\n%s *%s* %s", levelEmoji(in.Level), in.Text, in.Detail)
	}
	return b.String()
}

func levelEmoji(l insight.Level) string {
	switch l {
	case insight.LevelSuccess:
		return ":white_check_mark:"
	case insight.LevelWarning:
		return ":warning:"
	default:
		return ":information_source:"
	}
}
