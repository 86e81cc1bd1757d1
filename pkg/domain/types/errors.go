package types

import "github.com/m-mizutani/goerr/v2"

// Error tags classify job-level failures. Build and publish failures are
// terminal for the job that raised them; notification failures are
// best-effort and never propagate.
var (
	ErrTagBuild   = goerr.NewTag("build")
	ErrTagPublish = goerr.NewTag("publish")
	ErrTagNotify  = goerr.NewTag("notify")
)
