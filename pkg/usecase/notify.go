package usecase

import (
	"context"

	"github.com/m-mizutani/ctxlog"

	"github.com/m-mizutani/tagship/pkg/domain/interfaces"
	"github.com/m-mizutani/tagship/pkg/domain/model"
)

// NotificationHooks adapts a Notifier into pipeline observers. The job hook
// fires only for failed jobs; the run hook fires for every run. Send errors
// are logged and dropped so a broken notification channel can never change a
// recorded outcome.
func NotificationHooks(notifier interfaces.Notifier) (JobHook, RunHook) {
	jobHook := func(ctx context.Context, trigger model.Trigger, result model.JobResult) {
		if result.Outcome == model.OutcomeSuccess {
			return
		}

		if err := notifier.NotifyJobFailure(ctx, trigger, result); err != nil {
			ctxlog.From(ctx).Warn("Failed to send job failure notification",
				"job", result.Entry.Name(),
				"error", err,
			)
		}
	}

	runHook := func(ctx context.Context, summary *model.RunSummary) {
		if err := notifier.NotifyRunResult(ctx, summary); err != nil {
			ctxlog.From(ctx).Warn("Failed to send run result notification",
				"tag", summary.Trigger.Tag,
				"error", err,
			)
		}
	}

	return jobHook, runHook
}
