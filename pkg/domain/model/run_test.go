package model_test

import (
	"errors"
	"testing"
	"time"

	"github.com/m-mizutani/gt"

	"github.com/m-mizutani/tagship/pkg/domain/model"
)

func TestNewTrigger(t *testing.T) {
	trigger := model.NewTrigger("v1.0.0")
	gt.Value(t, trigger.Tag).Equal("v1.0.0")
	gt.Value(t, trigger.RunID).NotEqual("")

	other := model.NewTrigger("v1.0.0")
	gt.Value(t, other.RunID).NotEqual(trigger.RunID)
}

func TestRunSummary_Outcome(t *testing.T) {
	trigger := model.NewTrigger("v1.0.0")

	t.Run("all jobs succeeded", func(t *testing.T) {
		summary := model.NewRunSummary(trigger, []model.JobResult{
			{Outcome: model.OutcomeSuccess},
			{Outcome: model.OutcomeSuccess},
		}, time.Now())

		gt.Value(t, summary.Outcome()).Equal(model.OutcomeSuccess)
		gt.NoError(t, summary.Err())

		succeeded, failed := summary.Counts()
		gt.Number(t, succeeded).Equal(2)
		gt.Number(t, failed).Equal(0)
	})

	t.Run("one job failed", func(t *testing.T) {
		summary := model.NewRunSummary(trigger, []model.JobResult{
			{Outcome: model.OutcomeSuccess},
			{Outcome: model.OutcomeFailure, Err: errors.New("build failed")},
		}, time.Now())

		gt.Value(t, summary.Outcome()).Equal(model.OutcomeFailure)
		gt.Error(t, summary.Err())

		succeeded, failed := summary.Counts()
		gt.Number(t, succeeded).Equal(1)
		gt.Number(t, failed).Equal(1)
	})

	t.Run("aggregated error includes every job error", func(t *testing.T) {
		summary := model.NewRunSummary(trigger, []model.JobResult{
			{Outcome: model.OutcomeFailure, Err: errors.New("first")},
			{Outcome: model.OutcomeFailure, Err: errors.New("second")},
		}, time.Now())

		err := summary.Err()
		gt.Error(t, err)
		gt.String(t, err.Error()).Contains("first")
		gt.String(t, err.Error()).Contains("second")
	})
}

func TestWebhookEvent_IsReleaseTrigger(t *testing.T) {
	tests := []struct {
		name  string
		event model.WebhookEvent
		want  bool
	}{
		{
			name:  "release published",
			event: model.WebhookEvent{Type: model.EventTypeRelease, Action: "published", Tag: "v1.0.0"},
			want:  true,
		},
		{
			name:  "release created",
			event: model.WebhookEvent{Type: model.EventTypeRelease, Action: "created", Tag: "v1.0.0"},
			want:  false,
		},
		{
			name:  "tag push",
			event: model.WebhookEvent{Type: model.EventTypePush, Ref: "refs/tags/v1.0.0", Tag: "v1.0.0"},
			want:  true,
		},
		{
			name:  "branch push",
			event: model.WebhookEvent{Type: model.EventTypePush, Ref: "refs/heads/main"},
			want:  false,
		},
		{
			name:  "unknown event",
			event: model.WebhookEvent{Type: model.EventTypeUnknown},
			want:  false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gt.Value(t, tt.event.IsReleaseTrigger()).Equal(tt.want)
		})
	}
}
