package interfaces

import (
	"context"

	"github.com/m-mizutani/tagship/pkg/domain/model"
)

// Pipeline defines the release pipeline orchestration
type Pipeline interface {
	// Run executes one release run for the trigger: one independent job per
	// matrix entry, joined before the run summary is derived.
	Run(ctx context.Context, trigger model.Trigger, matrix model.Matrix) (*model.RunSummary, error)
}

// WebhookUseCase defines the interface for webhook event processing
type WebhookUseCase interface {
	// ProcessEvent processes a webhook event
	ProcessEvent(ctx context.Context, event *model.WebhookEvent) error
}
