package logging

import (
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/term"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/matteofrigo/imaging-transcriptomics/internal/config"
	"github.com/matteofrigo/imaging-transcriptomics/internal/errors"
)

// logsDirName is the module log directory under $IMGTX_HOME.
const logsDirName = "logs"

// dirPerm is the permission mode for created log directories.
const dirPerm = 0o750

// levelWriter filters events below min before they reach the wrapped writer.
// zerolog.MultiLevelWriter honors WriteLevel on its constituent writers, so
// one logger can feed sinks with different thresholds.
type levelWriter struct {
	w   io.Writer
	min zerolog.Level
}

// Write implements io.Writer for events without level information.
func (lw levelWriter) Write(p []byte) (n int, err error) {
	return lw.w.Write(p)
}

// WriteLevel implements zerolog.LevelWriter, dropping events below min.
func (lw levelWriter) WriteLevel(level zerolog.Level, p []byte) (n int, err error) {
	if level < lw.min {
		return len(p), nil
	}
	return lw.w.Write(p)
}

// selectOutput determines the appropriate console writer based on terminal
// capabilities and environment settings.
func selectOutput() io.Writer {
	// Use console writer for TTY without NO_COLOR
	if term.IsTerminal(int(os.Stderr.Fd())) && os.Getenv("NO_COLOR") == "" {
		return zerolog.ConsoleWriter{
			Out:        os.Stderr,
			TimeFormat: time.Kitchen,
		}
	}

	// Default to JSON output for non-TTY or when NO_COLOR is set
	return os.Stderr
}

// createModuleLogWriter creates the rotating writer for the shared module
// log under $IMGTX_HOME/logs. Rotation bounds come from configuration.
func createModuleLogWriter(cfg config.LoggingConfig) (io.WriteCloser, error) {
	home, err := config.Home()
	if err != nil {
		return nil, err
	}

	logDir := filepath.Join(home, logsDirName)
	if err := os.MkdirAll(logDir, dirPerm); err != nil {
		return nil, errors.Wrap(err, "failed to create log directory")
	}

	return &lumberjack.Logger{
		Filename:   filepath.Join(logDir, ModuleLogFileName),
		MaxSize:    cfg.MaxSizeMB,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAgeDays,
		Compress:   cfg.Compress,
	}, nil
}
