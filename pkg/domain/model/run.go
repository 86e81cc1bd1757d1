package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/go-multierror"
)

// Trigger identifies the release that started a run. It is created once from
// the external event (tag push or CLI invocation) and treated as read-only by
// every component.
type Trigger struct {
	Tag        string    // Release tag (e.g. "v1.2.3")
	RunID      string    // Unique ID for this pipeline run
	ReceivedAt time.Time // Time the trigger was accepted
}

// NewTrigger creates a Trigger for the given tag.
func NewTrigger(tag string) Trigger {
	return Trigger{
		Tag:        tag,
		RunID:      uuid.NewString(),
		ReceivedAt: time.Now(),
	}
}

// JobState tracks where a job is in its lifecycle.
type JobState string

const (
	JobPending       JobState = "pending"
	JobBuilding      JobState = "building"
	JobBuildFailed   JobState = "build_failed"
	JobBuilt         JobState = "built"
	JobPublishing    JobState = "publishing"
	JobPublishFailed JobState = "publish_failed"
	JobPublished     JobState = "published"
)

// Outcome is the terminal result of a job or a run.
type Outcome string

const (
	OutcomeSuccess Outcome = "success"
	OutcomeFailure Outcome = "failure"
)

// JobResult is the terminal record of one matrix job.
type JobResult struct {
	Entry        MatrixEntry
	State        JobState
	Outcome      Outcome
	ArtifactPath string // Set when the build step produced a binary
	Err          error  // Set when Outcome is Failure
	StartedAt    time.Time
	FinishedAt   time.Time
}

// RunSummary aggregates the terminal results of all jobs in one run. It is
// derived after every job has finished and is never stored.
type RunSummary struct {
	Trigger    Trigger
	Results    []JobResult
	StartedAt  time.Time
	FinishedAt time.Time
}

// NewRunSummary builds the summary from terminal job results.
func NewRunSummary(trigger Trigger, results []JobResult, startedAt time.Time) *RunSummary {
	return &RunSummary{
		Trigger:    trigger,
		Results:    results,
		StartedAt:  startedAt,
		FinishedAt: time.Now(),
	}
}

// Outcome is Success only when every job succeeded.
func (s *RunSummary) Outcome() Outcome {
	for _, r := range s.Results {
		if r.Outcome != OutcomeSuccess {
			return OutcomeFailure
		}
	}
	return OutcomeSuccess
}

// Counts returns the number of succeeded and failed jobs.
func (s *RunSummary) Counts() (succeeded, failed int) {
	for _, r := range s.Results {
		if r.Outcome == OutcomeSuccess {
			succeeded++
		} else {
			failed++
		}
	}
	return succeeded, failed
}

// Err aggregates the errors of all failed jobs, or nil when the run
// succeeded.
func (s *RunSummary) Err() error {
	var merr *multierror.Error
	for _, r := range s.Results {
		if r.Err != nil {
			merr = multierror.Append(merr, r.Err)
		}
	}
	return merr.ErrorOrNil()
}
