package notify

import (
	"context"
	"fmt"
	"strings"

	"github.com/mikey/inbox-clusterer/internal/core"
	"github.com/slack-go/slack"
	"go.uber.org/zap"
)

// maxSummaryRunes bounds each cluster summary in a Slack message
const maxSummaryRunes = 300

// SlackNotifier posts run results to a Slack channel
type SlackNotifier struct {
	api     *slack.Client
	channel string
	logger  *zap.Logger
}

// NewSlackNotifier creates a new Slack notifier
func NewSlackNotifier(api *slack.Client, channel string, logger *zap.Logger) *SlackNotifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SlackNotifier{api: api, channel: channel, logger: logger}
}

// NotifyRun posts a digest of the clusters of a run
func (n *SlackNotifier) NotifyRun(ctx context.Context, user *core.User, result *core.RunResult) error {
	text := FormatRun(user, result)
	_, ts, err := n.api.PostMessageContext(ctx, n.channel, slack.MsgOptionText(text, false))
	if err != nil {
		return fmt.Errorf("failed to post run digest to Slack: %w", err)
	}
	n.logger.Info("Posted run digest to Slack",
		zap.String("channel", n.channel),
		zap.String("run_id", result.RunID),
		zap.String("ts", ts))
	return nil
}

// FormatRun renders a run as a plain text digest
func FormatRun(user *core.User, result *core.RunResult) string {
	var sb strings.Builder
	emails := 0
	for _, c := range result.Clusters {
		emails += c.Count
	}
	fmt.Fprintf(&sb, "Inbox clustering run %s", result.RunID)
	if user != nil {
		fmt.Fprintf(&sb, " for %s", user.Email)
	}
	fmt.Fprintf(&sb, ": %d emails in %d clusters\n", emails, len(result.Clusters))

	for _, c := range result.Clusters {
		fmt.Fprintf(&sb, "• Cluster %d (%d emails)", c.ClusterID, c.Count)
		if len(c.Keywords) > 0 {
			fmt.Fprintf(&sb, " [%s]", strings.Join(c.Keywords, ", "))
		}
		if c.Summary != "" {
			fmt.Fprintf(&sb, ": %s", truncate(c.Summary, maxSummaryRunes))
		}
		sb.WriteString("\n")
	}
	return strings.TrimRight(sb.String(), "\n")
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "…"
}
