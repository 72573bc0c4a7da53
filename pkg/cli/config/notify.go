package config

import "github.com/urfave/cli/v3"

// Notify holds notification and archive configuration
type Notify struct {
	SlackWebhookURL string `masq:"secret"`
	NotifyThreshold float64
	GCSBucket       string
}

// Flags returns CLI flags for notification configuration
func (c *Notify) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "slack-webhook-url",
			Usage:       "Slack incoming webhook for update notifications (empty disables)",
			Destination: &c.SlackWebhookURL,
			Sources:     cli.EnvVars("PRISM_SLACK_WEBHOOK_URL"),
		},
		&cli.FloatFlag{
			Name:        "notify-threshold",
			Usage:       "Minimum probability change (points) that triggers a notification",
			Value:       5.0,
			Destination: &c.NotifyThreshold,
			Sources:     cli.EnvVars("PRISM_NOTIFY_THRESHOLD"),
		},
		&cli.StringFlag{
			Name:        "signal-archive-bucket",
			Usage:       "GCS bucket for signal batch archives (empty disables)",
			Destination: &c.GCSBucket,
			Sources:     cli.EnvVars("PRISM_SIGNAL_ARCHIVE_BUCKET"),
		},
	}
}
