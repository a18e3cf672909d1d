// Package logging provides the run logger for the imaging transcriptomics
// pipeline.
//
// A Runtime is constructed once at process start from the resolved verbosity
// profile and passed by reference into the orchestrator; tests inject
// in-memory writers via NewWithWriter. Console verbosity is the only axis
// that varies between profiles: the rotating module-level log file always
// records full diagnostic detail, and so does the per-run sink attached once
// the output directory is known.
package logging

import (
	"io"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/matteofrigo/imaging-transcriptomics/internal/config"
	"github.com/matteofrigo/imaging-transcriptomics/internal/errors"
)

// Profile names a console verbosity profile.
type Profile string

// The three console verbosity profiles.
const (
	// ProfileVerbose emits all diagnostic levels to console.
	ProfileVerbose Profile = "verbose"
	// ProfileNormal emits informational-and-above to console.
	ProfileNormal Profile = "normal"
	// ProfileSuppressed emits warning-and-above only to console.
	ProfileSuppressed Profile = "suppressed"
)

// RunLogFileName is the per-run append-mode log file created inside each
// output directory.
const RunLogFileName = "run.log"

// ModuleLogFileName is the rotating log file shared across runs.
const ModuleLogFileName = "imgtx.log"

// consoleLevel maps a profile to its console threshold.
func consoleLevel(p Profile) zerolog.Level {
	switch p {
	case ProfileVerbose:
		return zerolog.DebugLevel
	case ProfileSuppressed:
		return zerolog.WarnLevel
	default:
		return zerolog.InfoLevel
	}
}

// Runtime holds the active logger and the file sinks backing it.
// It is not safe for concurrent reconfiguration; the pipeline is strictly
// sequential so none is needed.
type Runtime struct {
	logger  zerolog.Logger
	profile Profile
	console io.Writer
	module  io.WriteCloser
	runSink *os.File
}

// New creates a Runtime bound to the given profile.
//
// The console writer is chosen by terminal capability (pretty output on a
// TTY without NO_COLOR, JSON to stderr otherwise) and filtered to the
// profile's level. The rotating module log under $IMGTX_HOME/logs receives
// every level regardless of profile. If the module log cannot be created the
// Runtime continues with console-only output; the mandatory audit trail is
// the per-run sink, whose attachment failure is fatal.
func New(profile Profile, cfg config.LoggingConfig) (*Runtime, error) {
	r := &Runtime{console: selectOutput()}

	module, err := createModuleLogWriter(cfg)
	if err == nil {
		r.module = module
	}

	r.rebuild(profile)
	if err != nil {
		r.logger.Warn().Err(err).Msg("module log unavailable, console-only logging")
	}
	return r, nil
}

// NewWithWriter creates a Runtime that writes only to w, filtered to the
// profile's console level. Intended for tests.
func NewWithWriter(profile Profile, w io.Writer) *Runtime {
	r := &Runtime{console: w}
	r.rebuild(profile)
	return r
}

// rebuild recomposes the logger from the currently attached sinks.
// The logger itself stays at Debug so the file sinks see full detail; the
// console writer filters to its profile level.
func (r *Runtime) rebuild(profile Profile) {
	writers := []io.Writer{levelWriter{w: r.console, min: consoleLevel(profile)}}
	if r.module != nil {
		writers = append(writers, r.module)
	}
	if r.runSink != nil {
		writers = append(writers, r.runSink)
	}

	r.profile = profile
	r.logger = zerolog.New(zerolog.MultiLevelWriter(writers...)).
		Level(zerolog.DebugLevel).
		With().Timestamp().Logger()
}

// Logger returns the active logger.
func (r *Runtime) Logger() zerolog.Logger {
	return r.logger
}

// AttachRunSink opens the per-run log file inside dir (append mode, never
// rotated) and rebinds the logger to include it. It returns the sink path.
//
// The per-run sink is the run's audit trail: a failure here is fatal and the
// returned error carries both ErrRunSinkAttach and ErrIO.
func (r *Runtime) AttachRunSink(dir string) (string, error) {
	path := filepath.Join(dir, RunLogFileName)
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600) //nolint:gosec // path derived from validated run directory
	if err != nil {
		return "", errors.Wrapf(errors.Categorize(errors.ErrRunSinkAttach, errors.ErrIO),
			"open %s: %v", path, err)
	}

	r.runSink = f
	r.rebuild(r.profile)
	return path, nil
}

// Close releases the file sinks. Safe to call on every exit path, including
// before any sink was attached.
func (r *Runtime) Close() {
	if r.runSink != nil {
		_ = r.runSink.Close()
		r.runSink = nil
	}
	if r.module != nil {
		_ = r.module.Close()
		r.module = nil
	}
}
