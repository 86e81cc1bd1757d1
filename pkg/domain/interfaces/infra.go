package interfaces

import (
	"context"

	"github.com/m-mizutani/tagship/pkg/domain/model"
)

// BuildRunner cross-compiles the release binary for one matrix entry and
// returns the path of the produced artifact. The build is a long-running
// blocking operation; cancellation goes through ctx.
type BuildRunner interface {
	Build(ctx context.Context, entry model.MatrixEntry) (string, error)
}

// AssetStore publishes a built artifact to the release identified by the
// trigger. An existing asset with the same name is replaced unconditionally.
type AssetStore interface {
	UploadAsset(ctx context.Context, trigger model.Trigger, assetName, path string) error
}

// Notifier delivers run status messages. Both methods are best-effort: a
// send failure must never change a recorded job or run outcome.
type Notifier interface {
	// NotifyJobFailure reports a single failed job, naming its OS/target.
	NotifyJobFailure(ctx context.Context, trigger model.Trigger, result model.JobResult) error

	// NotifyRunResult reports the aggregate outcome of a finished run.
	NotifyRunResult(ctx context.Context, summary *model.RunSummary) error
}
