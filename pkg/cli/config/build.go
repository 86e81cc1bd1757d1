package config

import (
	"github.com/urfave/cli/v3"

	"github.com/m-mizutani/tagship/pkg/infra/cargo"
)

// Build holds cross-compilation toolchain configuration
type Build struct {
	CargoPath  string
	ProjectDir string
	TargetRoot string
	MatrixPath string
}

// Flags returns CLI flags for build configuration
func (c *Build) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "cargo-path",
			Usage:       "Path to the cargo executable",
			Value:       "cargo",
			Destination: &c.CargoPath,
			Sources:     cli.EnvVars("TAGSHIP_CARGO_PATH"),
		},
		&cli.StringFlag{
			Name:        "project-dir",
			Usage:       "Cargo project directory to build",
			Value:       ".",
			Destination: &c.ProjectDir,
			Sources:     cli.EnvVars("TAGSHIP_PROJECT_DIR"),
		},
		&cli.StringFlag{
			Name:        "target-root",
			Usage:       "Base directory for per-job build artifacts (default: temp dir)",
			Destination: &c.TargetRoot,
			Sources:     cli.EnvVars("TAGSHIP_TARGET_ROOT"),
		},
		&cli.StringFlag{
			Name:        "matrix",
			Usage:       "Path to a TOML build matrix file (default: built-in matrix)",
			Destination: &c.MatrixPath,
			Sources:     cli.EnvVars("TAGSHIP_MATRIX"),
		},
	}
}

// NewBuilder builds the cargo build runner from the configuration.
func (c *Build) NewBuilder() (*cargo.Builder, error) {
	opts := []cargo.Option{
		cargo.WithCargoPath(c.CargoPath),
		cargo.WithProjectDir(c.ProjectDir),
	}
	if c.TargetRoot != "" {
		opts = append(opts, cargo.WithTargetRoot(c.TargetRoot))
	}
	return cargo.New(opts...)
}
