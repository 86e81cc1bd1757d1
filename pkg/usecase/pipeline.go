package usecase

import (
	"context"
	"sync"
	"time"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"

	"github.com/m-mizutani/tagship/pkg/domain/interfaces"
	"github.com/m-mizutani/tagship/pkg/domain/model"
)

// JobHook is invoked once per job when it reaches a terminal state.
type JobHook func(ctx context.Context, trigger model.Trigger, result model.JobResult)

// RunHook is invoked exactly once per run, after every job has terminated.
type RunHook func(ctx context.Context, summary *model.RunSummary)

type pipeline struct {
	builder  interfaces.BuildRunner
	store    interfaces.AssetStore
	jobHooks []JobHook
	runHooks []RunHook
}

// Option is a functional option for pipeline configuration
type Option func(*pipeline)

// WithJobHook registers an observer of job-terminal events.
func WithJobHook(hook JobHook) Option {
	return func(p *pipeline) {
		p.jobHooks = append(p.jobHooks, hook)
	}
}

// WithRunHook registers an observer of run-terminal events.
func WithRunHook(hook RunHook) Option {
	return func(p *pipeline) {
		p.runHooks = append(p.runHooks, hook)
	}
}

// NewPipeline creates the release pipeline use case.
func NewPipeline(builder interfaces.BuildRunner, store interfaces.AssetStore, opts ...Option) interfaces.Pipeline {
	p := &pipeline{
		builder: builder,
		store:   store,
	}

	for _, opt := range opts {
		opt(p)
	}

	return p
}

// Run expands the matrix into one independent job per entry, executes them in
// parallel, and joins them before deriving the run summary. Job failures stay
// local to their job; the summary reflects Failure if any job failed. Run
// hooks fire exactly once, after the join, even when jobs were cancelled.
func (p *pipeline) Run(ctx context.Context, trigger model.Trigger, matrix model.Matrix) (*model.RunSummary, error) {
	logger := ctxlog.From(ctx)

	if err := matrix.Validate(); err != nil {
		return nil, goerr.Wrap(err, "invalid build matrix")
	}

	logger.Info("Starting release run",
		"tag", trigger.Tag,
		"run_id", trigger.RunID,
		"jobs", len(matrix.Entries),
	)

	startedAt := time.Now()
	results := make([]model.JobResult, len(matrix.Entries))

	var wg sync.WaitGroup
	for i, entry := range matrix.Entries {
		wg.Add(1)
		go func(i int, entry model.MatrixEntry) {
			defer wg.Done()

			results[i] = p.runJob(ctx, trigger, entry)

			for _, hook := range p.jobHooks {
				hook(ctx, trigger, results[i])
			}
		}(i, entry)
	}
	wg.Wait()

	summary := model.NewRunSummary(trigger, results, startedAt)

	succeeded, failed := summary.Counts()
	logger.Info("Release run finished",
		"tag", trigger.Tag,
		"run_id", trigger.RunID,
		"outcome", summary.Outcome(),
		"succeeded", succeeded,
		"failed", failed,
	)

	for _, hook := range p.runHooks {
		hook(ctx, summary)
	}

	return summary, nil
}

// runJob drives one matrix entry through build then publish. Each step
// failure terminates the job without touching its siblings.
func (p *pipeline) runJob(ctx context.Context, trigger model.Trigger, entry model.MatrixEntry) model.JobResult {
	logger := ctxlog.From(ctx)

	result := model.JobResult{
		Entry:     entry,
		State:     model.JobBuilding,
		StartedAt: time.Now(),
	}

	artifact, err := p.builder.Build(ctx, entry)
	if err != nil {
		logger.Error("Build failed", "job", entry.Name(), "error", err)
		result.State = model.JobBuildFailed
		result.Outcome = model.OutcomeFailure
		result.Err = err
		result.FinishedAt = time.Now()
		return result
	}

	result.State = model.JobPublishing
	result.ArtifactPath = artifact

	if err := p.store.UploadAsset(ctx, trigger, entry.Asset, artifact); err != nil {
		logger.Error("Publish failed", "job", entry.Name(), "error", err)
		result.State = model.JobPublishFailed
		result.Outcome = model.OutcomeFailure
		result.Err = err
		result.FinishedAt = time.Now()
		return result
	}

	result.State = model.JobPublished
	result.Outcome = model.OutcomeSuccess
	result.FinishedAt = time.Now()
	return result
}
