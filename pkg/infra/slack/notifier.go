package slack

import (
	"context"
	"fmt"
	"net/http"

	"github.com/m-mizutani/goerr/v2"
	"github.com/slack-go/slack"

	"github.com/m-mizutani/tagship/pkg/domain/model"
	"github.com/m-mizutani/tagship/pkg/domain/types"
)

const (
	colorSuccess = "good"
	colorFailure = "danger"

	iconFailure = ":rotating_light:"
	iconSuccess = ":tada:"
)

// Notifier posts run status messages to a Slack incoming webhook. Sends are
// best-effort: callers are expected to log and drop any returned error.
type Notifier struct {
	webhookURL string
	httpClient *http.Client
}

// Option is a functional option for Notifier configuration
type Option func(*Notifier)

// WithHTTPClient overrides the HTTP client used for webhook delivery.
func WithHTTPClient(client *http.Client) Option {
	return func(n *Notifier) {
		n.httpClient = client
	}
}

// NewNotifier creates a Notifier for the given incoming webhook URL.
func NewNotifier(webhookURL string, opts ...Option) (*Notifier, error) {
	if webhookURL == "" {
		return nil, goerr.New("slack webhook URL is empty")
	}

	n := &Notifier{
		webhookURL: webhookURL,
		httpClient: http.DefaultClient,
	}

	for _, opt := range opts {
		opt(n)
	}

	return n, nil
}

// NotifyJobFailure reports one failed matrix job. The message mentions the
// whole channel so build breakage on a release tag is never missed.
func (n *Notifier) NotifyJobFailure(ctx context.Context, trigger model.Trigger, result model.JobResult) error {
	msg := &slack.WebhookMessage{
		Username:  types.AppName + " - Failure",
		IconEmoji: iconFailure,
		Text:      fmt.Sprintf("<!channel> Release build failed for %s", result.Entry.Name()),
		Attachments: []slack.Attachment{
			{
				Color: colorFailure,
				Title: result.Entry.Name(),
				Fields: []slack.AttachmentField{
					{Title: "Tag", Value: trigger.Tag, Short: true},
					{Title: "State", Value: string(result.State), Short: true},
					{Title: "Asset", Value: result.Entry.Asset, Short: false},
				},
			},
		},
	}

	return n.post(ctx, msg)
}

// NotifyRunResult reports the aggregate outcome of a finished run. It fires
// for every run, success or failure.
func (n *Notifier) NotifyRunResult(ctx context.Context, summary *model.RunSummary) error {
	succeeded, failed := summary.Counts()

	username := types.AppName + " - Success"
	icon := iconSuccess
	color := colorSuccess
	if summary.Outcome() == model.OutcomeFailure {
		username = types.AppName + " - Failure"
		icon = iconFailure
		color = colorFailure
	}

	msg := &slack.WebhookMessage{
		Username:  username,
		IconEmoji: icon,
		Text:      fmt.Sprintf("Release %s finished: %s", summary.Trigger.Tag, summary.Outcome()),
		Attachments: []slack.Attachment{
			{
				Color: color,
				Fields: []slack.AttachmentField{
					{Title: "Tag", Value: summary.Trigger.Tag, Short: true},
					{Title: "Jobs", Value: fmt.Sprintf("%d succeeded / %d failed", succeeded, failed), Short: true},
				},
			},
		},
	}

	return n.post(ctx, msg)
}

func (n *Notifier) post(ctx context.Context, msg *slack.WebhookMessage) error {
	if err := slack.PostWebhookCustomHTTPContext(ctx, n.webhookURL, n.httpClient, msg); err != nil {
		return goerr.Wrap(err, "failed to post slack webhook",
			goerr.T(types.ErrTagNotify),
		)
	}
	return nil
}
