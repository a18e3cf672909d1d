// Package outdir derives and creates collision-safe per-run output
// directories.
//
// A run's artifacts are namespaced from unrelated files in the same folder
// by a fixed prefix (default "Imt_") followed by the run label, the input
// file's base name up to its first '.'. A pre-existing directory is never
// merged into or overwritten: the manager disambiguates with a bounded
// numeric suffix, so a caller can tell a fresh run apart from a re-run by
// comparing the returned path with the unsuffixed candidate.
package outdir

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/matteofrigo/imaging-transcriptomics/internal/errors"
)

// dirPerm is the permission mode for created run directories.
const dirPerm = 0o750

// RunLabel derives the run label from a scan path: the substring of the
// filename before the first '.', so "scan001.nii.gz" yields "scan001".
func RunLabel(path string) string {
	name := filepath.Base(path)
	if i := strings.IndexByte(name, '.'); i >= 0 {
		name = name[:i]
	}
	return name
}

// Manager creates run output directories under a naming and collision policy.
type Manager struct {
	// Prefix namespaces run directories, e.g. "Imt_".
	Prefix string
	// MaxSuffix bounds the numeric disambiguation suffix.
	MaxSuffix int
}

// NewManager returns a Manager with the given naming policy.
func NewManager(prefix string, maxSuffix int) *Manager {
	return &Manager{Prefix: prefix, MaxSuffix: maxSuffix}
}

// Candidate returns the unsuffixed directory path for a label under baseDir.
func (m *Manager) Candidate(baseDir, label string) string {
	return filepath.Join(baseDir, m.Prefix+label)
}

// Resolve creates and returns the output directory for a run.
//
// The first candidate is Prefix+label; if it already exists the manager
// tries Prefix+label_1 through Prefix+label_<MaxSuffix> in order and takes
// the first free name. The returned directory is guaranteed to exist and be
// writable by the current user. Exhausting the suffix space returns
// ErrOutputDirConflict; any other creation failure maps to ErrIO.
func (m *Manager) Resolve(baseDir, label string) (string, error) {
	for i := 0; i <= m.MaxSuffix; i++ {
		path := m.Candidate(baseDir, label)
		if i > 0 {
			path = fmt.Sprintf("%s_%d", path, i)
		}

		// os.Mkdir (not MkdirAll) so an existing directory is detected
		// atomically instead of silently reused.
		err := os.Mkdir(path, dirPerm)
		if err == nil {
			return path, nil
		}
		if os.IsExist(err) {
			continue
		}
		return "", errors.Wrapf(errors.ErrIO, "create output directory %s: %v", path, err)
	}

	return "", errors.Categorize(
		errors.Wrapf(errors.ErrOutputDirConflict, "no free name for %s under %s after %d attempts",
			m.Prefix+label, baseDir, m.MaxSuffix),
		errors.ErrIO)
}
