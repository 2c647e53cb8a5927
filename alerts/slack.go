// Package alerts pushes high-urgency social signals to an ops channel.
// Alerting is best-effort: failures are logged and never surface to the
// request that produced the signals.
package alerts

import (
	"fmt"
	"os"
	"strings"

	"github.com/disasterlabs/beacon/model"
	Logger "github.com/disasterlabs/beacon/utils/log"
	"github.com/slack-go/slack"
)

// Notifier receives the critical/high tier subset of a refreshed social
// batch.
type Notifier interface {
	NotifyPriorityPosts(disasterID string, posts []model.SocialPost)
}

// SlackNotifier posts alert summaries to a Slack incoming webhook.
type SlackNotifier struct {
	webhookURL string
}

// NewSlackNotifierFromEnv returns nil when no webhook is configured, which
// callers treat as alerting disabled.
func NewSlackNotifierFromEnv() *SlackNotifier {
	url := os.Getenv("SLACK_ALERT_WEBHOOK")
	if url == "" {
		return nil
	}
	return &SlackNotifier{webhookURL: url}
}

func (n *SlackNotifier) NotifyPriorityPosts(disasterID string, posts []model.SocialPost) {
	if len(posts) == 0 {
		return
	}

	lines := []string{fmt.Sprintf(":rotating_light: %d priority posts for disaster %s", len(posts), disasterID)}
	for _, post := range posts {
		lines = append(lines, fmt.Sprintf("[%s] %s: %s", post.ComputedPriority, post.Handle, post.Content))
	}

	webhookMsg := &slack.WebhookMessage{
		Text: strings.Join(lines, "\n"),
	}
	if err := slack.PostWebhook(n.webhookURL, webhookMsg); err != nil {
		Logger.Log.Errorf("failed to post alert webhook: %v", err)
	}
}
