package config

import "github.com/urfave/cli/v3"

// Slack holds notification configuration. The webhook URL embeds a
// credential, so it is treated as a secret.
type Slack struct {
	WebhookURL string `masq:"secret"`
}

// Flags returns CLI flags for Slack configuration
func (c *Slack) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "slack-webhook-url",
			Usage:       "Slack incoming webhook URL for run notifications",
			Required:    true,
			Destination: &c.WebhookURL,
			Sources:     cli.EnvVars("TAGSHIP_SLACK_WEBHOOK_URL"),
		},
	}
}
