package slack_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/m-mizutani/gt"

	"github.com/m-mizutani/tagship/pkg/domain/model"
	slackinfra "github.com/m-mizutani/tagship/pkg/infra/slack"
)

type webhookPayload struct {
	Username    string `json:"username"`
	IconEmoji   string `json:"icon_emoji"`
	Text        string `json:"text"`
	Attachments []struct {
		Color  string `json:"color"`
		Title  string `json:"title"`
		Fields []struct {
			Title string `json:"title"`
			Value string `json:"value"`
		} `json:"fields"`
	} `json:"attachments"`
}

func newWebhookServer(t *testing.T) (*httptest.Server, func() []webhookPayload) {
	t.Helper()

	var mu sync.Mutex
	var payloads []webhookPayload

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		gt.NoError(t, err)

		var payload webhookPayload
		gt.NoError(t, json.Unmarshal(body, &payload))

		mu.Lock()
		payloads = append(payloads, payload)
		mu.Unlock()

		w.WriteHeader(http.StatusOK)
	}))

	return server, func() []webhookPayload {
		mu.Lock()
		defer mu.Unlock()
		return append([]webhookPayload{}, payloads...)
	}
}

func TestNotifier_NotifyJobFailure(t *testing.T) {
	server, received := newWebhookServer(t)
	defer server.Close()

	notifier, err := slackinfra.NewNotifier(server.URL)
	gt.NoError(t, err)

	trigger := model.NewTrigger("v1.0.0")
	result := model.JobResult{
		Entry: model.MatrixEntry{
			OS:       "linux",
			Target:   "x86_64-unknown-linux-gnu",
			Artifact: "diamant",
			Asset:    "diamant-x86_64-unknown-linux-gnu",
		},
		State:   model.JobBuildFailed,
		Outcome: model.OutcomeFailure,
	}

	gt.NoError(t, notifier.NotifyJobFailure(context.Background(), trigger, result))

	payloads := received()
	gt.Number(t, len(payloads)).Equal(1)

	msg := payloads[0]
	gt.String(t, msg.Username).Contains("Failure")
	gt.String(t, msg.Text).Contains("<!channel>")
	gt.String(t, msg.Text).Contains("linux/x86_64-unknown-linux-gnu")
	gt.Number(t, len(msg.Attachments)).Equal(1)
	gt.Value(t, msg.Attachments[0].Color).Equal("danger")
	gt.Value(t, msg.Attachments[0].Fields[0].Value).Equal("v1.0.0")
}

func TestNotifier_NotifyRunResult(t *testing.T) {
	server, received := newWebhookServer(t)
	defer server.Close()

	notifier, err := slackinfra.NewNotifier(server.URL)
	gt.NoError(t, err)

	trigger := model.NewTrigger("v1.0.0")

	t.Run("success run", func(t *testing.T) {
		summary := model.NewRunSummary(trigger, []model.JobResult{
			{Outcome: model.OutcomeSuccess},
			{Outcome: model.OutcomeSuccess},
		}, time.Now())

		gt.NoError(t, notifier.NotifyRunResult(context.Background(), summary))

		payloads := received()
		msg := payloads[len(payloads)-1]
		gt.String(t, msg.Username).Contains("Success")
		gt.Value(t, msg.Attachments[0].Color).Equal("good")
	})

	t.Run("failed run", func(t *testing.T) {
		summary := model.NewRunSummary(trigger, []model.JobResult{
			{Outcome: model.OutcomeSuccess},
			{Outcome: model.OutcomeFailure},
		}, time.Now())

		gt.NoError(t, notifier.NotifyRunResult(context.Background(), summary))

		payloads := received()
		msg := payloads[len(payloads)-1]
		gt.String(t, msg.Username).Contains("Failure")
		gt.Value(t, msg.Attachments[0].Color).Equal("danger")
		gt.String(t, msg.Attachments[0].Fields[1].Value).Contains("1 succeeded / 1 failed")
	})
}

func TestNotifier_SendFailureReturnsError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "channel_not_found", http.StatusNotFound)
	}))
	defer server.Close()

	notifier, err := slackinfra.NewNotifier(server.URL)
	gt.NoError(t, err)

	trigger := model.NewTrigger("v1.0.0")
	result := model.JobResult{Outcome: model.OutcomeFailure}

	gt.Error(t, notifier.NotifyJobFailure(context.Background(), trigger, result))
}

func TestNewNotifier_RequiresURL(t *testing.T) {
	_, err := slackinfra.NewNotifier("")
	gt.Error(t, err)
}
