package model

import (
	"os"

	"github.com/m-mizutani/goerr/v2"
	"github.com/pelletier/go-toml/v2"
)

// MatrixEntry describes one build target of the release matrix. Entries are
// fixed at definition time and never mutated during a run.
type MatrixEntry struct {
	OS       string `toml:"os"`       // Human-readable OS label (e.g. "linux")
	Target   string `toml:"target"`   // Toolchain target triple
	Artifact string `toml:"artifact"` // Binary name produced by the build
	Asset    string `toml:"asset"`    // Asset name on the release (unique per run)
}

// Name returns the human-readable job identifier used in logs and
// notifications.
func (e MatrixEntry) Name() string {
	return e.OS + "/" + e.Target
}

// Matrix is the declarative list of build targets for one release run.
type Matrix struct {
	Entries []MatrixEntry `toml:"entry"`
}

// DefaultMatrix returns the built-in target set used when no matrix file is
// given.
func DefaultMatrix(binary string) Matrix {
	return Matrix{
		Entries: []MatrixEntry{
			{
				OS:       "linux",
				Target:   "x86_64-unknown-linux-gnu",
				Artifact: binary,
				Asset:    binary + "-x86_64-unknown-linux-gnu",
			},
			{
				OS:       "windows",
				Target:   "x86_64-pc-windows-msvc",
				Artifact: binary + ".exe",
				Asset:    binary + "-x86_64-pc-windows-msvc",
			},
		},
	}
}

// LoadMatrix reads a matrix definition from a TOML file.
func LoadMatrix(path string) (Matrix, error) {
	var matrix Matrix

	data, err := os.ReadFile(path)
	if err != nil {
		return matrix, goerr.Wrap(err, "failed to read matrix file", goerr.V("path", path))
	}

	if err := toml.Unmarshal(data, &matrix); err != nil {
		return matrix, goerr.Wrap(err, "failed to parse matrix file", goerr.V("path", path))
	}

	return matrix, nil
}

// Validate rejects malformed matrices at definition time. Asset names must be
// pairwise distinct: they are the identity of the published artifact, and a
// duplicate would make two publishers race on the same release asset.
func (m Matrix) Validate() error {
	if len(m.Entries) == 0 {
		return goerr.New("matrix has no entries")
	}

	seen := make(map[string]MatrixEntry, len(m.Entries))
	for _, entry := range m.Entries {
		if entry.OS == "" || entry.Target == "" || entry.Artifact == "" || entry.Asset == "" {
			return goerr.New("matrix entry has empty field",
				goerr.V("entry", entry),
			)
		}

		if prev, ok := seen[entry.Asset]; ok {
			return goerr.New("duplicate asset name in matrix",
				goerr.V("asset", entry.Asset),
				goerr.V("first", prev.Name()),
				goerr.V("second", entry.Name()),
			)
		}
		seen[entry.Asset] = entry
	}

	return nil
}
