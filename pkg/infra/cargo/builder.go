package cargo

import (
	"bytes"
	"context"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/tagship/pkg/domain/model"
	"github.com/m-mizutani/tagship/pkg/domain/types"
)

// Builder runs cargo cross-compilation builds. Every job gets its own target
// directory under targetRoot, so parallel jobs never share build state.
type Builder struct {
	cargoPath  string
	projectDir string
	targetRoot string
}

// Option is a functional option for Builder configuration
type Option func(*Builder)

// WithCargoPath overrides the cargo executable (tests use a stub script).
func WithCargoPath(path string) Option {
	return func(b *Builder) {
		b.cargoPath = path
	}
}

// WithProjectDir sets the cargo project root to build in.
func WithProjectDir(dir string) Option {
	return func(b *Builder) {
		b.projectDir = dir
	}
}

// WithTargetRoot sets the base directory for per-job target directories.
func WithTargetRoot(dir string) Option {
	return func(b *Builder) {
		b.targetRoot = dir
	}
}

// New creates a Builder. When no target root is given, a temporary directory
// is created so artifacts stay out of the project tree.
func New(opts ...Option) (*Builder, error) {
	b := &Builder{
		cargoPath:  "cargo",
		projectDir: ".",
	}

	for _, opt := range opts {
		opt(b)
	}

	if b.targetRoot == "" {
		dir, err := os.MkdirTemp("", types.AppName+"-build-*")
		if err != nil {
			return nil, goerr.Wrap(err, "failed to create build target root")
		}
		b.targetRoot = dir
	}

	return b, nil
}

// Build compiles the release binary for the entry's target triple: release
// profile, all optional features enabled, verbose diagnostics. It returns
// the artifact path on success. A nonzero exit or a missing output binary is
// a build failure; the caller decides what that means for the run.
func (b *Builder) Build(ctx context.Context, entry model.MatrixEntry) (string, error) {
	logger := ctxlog.From(ctx)

	targetDir := filepath.Join(b.targetRoot, entry.Target)
	if err := os.MkdirAll(targetDir, 0o755); err != nil {
		return "", goerr.Wrap(err, "failed to create target directory",
			goerr.T(types.ErrTagBuild),
			goerr.V("dir", targetDir),
		)
	}

	cmd := exec.CommandContext(ctx, b.cargoPath,
		"build",
		"--release",
		"--all-features",
		"--verbose",
		"--target", entry.Target,
	)
	cmd.Dir = b.projectDir
	cmd.Env = append(os.Environ(), "CARGO_TARGET_DIR="+targetDir)

	var output bytes.Buffer
	cmd.Stdout = &output
	cmd.Stderr = &output

	logger.Info("Starting build",
		"target", entry.Target,
		"artifact", entry.Artifact,
		"target_dir", targetDir,
	)

	if err := cmd.Run(); err != nil {
		return "", goerr.Wrap(err, "build command failed",
			goerr.T(types.ErrTagBuild),
			goerr.V("target", entry.Target),
			goerr.V("output", tail(output.String(), 4096)),
		)
	}

	artifact := filepath.Join(targetDir, entry.Target, "release", entry.Artifact)
	info, err := os.Stat(artifact)
	if err != nil {
		return "", goerr.Wrap(err, "build succeeded but artifact is missing",
			goerr.T(types.ErrTagBuild),
			goerr.V("target", entry.Target),
			goerr.V("artifact", artifact),
		)
	}

	logger.Info("Build completed",
		"target", entry.Target,
		"artifact", artifact,
		"size_bytes", info.Size(),
	)
	logger.Debug("Build output", "output", output.String())

	return artifact, nil
}

// tail keeps the last n bytes of diagnostic output for error reports.
func tail(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[len(s)-n:]
}
