package usecase

import (
	"context"

	"github.com/m-mizutani/ctxlog"

	"github.com/m-mizutani/tagship/pkg/domain/interfaces"
	"github.com/m-mizutani/tagship/pkg/domain/model"
	"github.com/m-mizutani/tagship/pkg/utils/async"
)

type webhookUseCase struct {
	pipeline interfaces.Pipeline
	matrix   model.Matrix
}

// NewWebhook creates a WebhookUseCase that starts a release run for every
// qualifying tag event.
func NewWebhook(pipeline interfaces.Pipeline, matrix model.Matrix) interfaces.WebhookUseCase {
	return &webhookUseCase{
		pipeline: pipeline,
		matrix:   matrix,
	}
}

// ProcessEvent inspects a webhook event and, for release triggers, dispatches
// a pipeline run in the background. The webhook response does not wait for
// builds; run outcomes are reported through the notification hooks.
func (uc *webhookUseCase) ProcessEvent(ctx context.Context, event *model.WebhookEvent) error {
	logger := ctxlog.From(ctx)

	logger.Info("Processing webhook event",
		"id", event.ID,
		"type", event.Type,
		"action", event.Action,
		"repository", event.Repository,
		"sender", event.Sender,
		"tag", event.Tag,
	)

	if !event.IsReleaseTrigger() {
		logger.Info("Ignoring non-trigger event",
			"type", event.Type,
			"action", event.Action,
			"ref", event.Ref,
		)
		return nil
	}

	trigger := model.NewTrigger(event.Tag)

	async.Dispatch(ctx, func(ctx context.Context) error {
		_, err := uc.pipeline.Run(ctx, trigger, uc.matrix)
		return err
	})

	return nil
}
