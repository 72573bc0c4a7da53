// Package slackx delivers probability update notifications to a Slack
// incoming webhook.
package slackx

import (
	"context"
	"fmt"

	"github.com/m-mizutani/goerr/v2"
	"github.com/slack-go/slack"

	"github.com/prism-brain/prism/pkg/domain/interfaces"
	"github.com/prism-brain/prism/pkg/domain/model"
)

// Notifier posts update summaries to a Slack incoming webhook
type Notifier struct {
	webhookURL string
}

// New creates a Slack notifier for the given webhook URL
func New(webhookURL string) *Notifier {
	return &Notifier{webhookURL: webhookURL}
}

// NotifyUpdate posts a summary of one applied probability update
func (n *Notifier) NotifyUpdate(ctx context.Context, risk *model.Risk, update *model.ProbabilityUpdate) error {
	change := update.Change()
	direction := "⬆️"
	if change < 0 {
		direction = "⬇️"
	}

	msg := &slack.WebhookMessage{
		Blocks: &slack.Blocks{
			BlockSet: []slack.Block{
				slack.NewHeaderBlock(slack.NewTextBlockObject(
					slack.PlainTextType,
					fmt.Sprintf("%s Risk update: %s", direction, risk.Name),
					false, false,
				)),
				slack.NewSectionBlock(slack.NewTextBlockObject(
					slack.MarkdownType,
					fmt.Sprintf("*%s* (%s) moved from *%.1f%%* to *%.1f%%* (%+.1f points)",
						risk.ID, risk.Domain, update.ProbabilityBefore, update.ProbabilityAfter, change),
					false, false,
				), nil, nil),
				slack.NewContextBlock("",
					slack.NewTextBlockObject(slack.MarkdownType, update.UpdateReason, false, false),
				),
			},
		},
	}

	if err := slack.PostWebhookContext(ctx, n.webhookURL, msg); err != nil {
		return goerr.Wrap(err, "failed to post slack notification", goerr.V("risk_id", risk.ID))
	}
	return nil
}

var _ interfaces.Notifier = (*Notifier)(nil)
