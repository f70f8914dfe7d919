// Package logging builds the zerolog logger shared by the application.
//
// The TUI owns the terminal, so the interactive program writes JSON lines to a
// file under the XDG state directory. Offline subcommands use a console writer
// on stderr instead.
package logging

import (
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"github.com/cockroachdb/errors"
	"github.com/rs/zerolog"
	zlog "github.com/rs/zerolog/log"
)

// Output selects where log lines go.
type Output string

const (
	OutputFile   Output = "file"
	OutputStderr Output = "stderr"
)

// Config configures New.
type Config struct {
	Level  string // "debug", "info", "warn", "error"
	Output Output // default: file
	File   string // empty means DefaultPath()
}

// DefaultPath returns $XDG_STATE_HOME/graphtime/graphtime.log, creating the
// parent directory.
func DefaultPath() (string, error) {
	path, err := xdg.StateFile(filepath.Join("graphtime", "graphtime.log"))
	if err != nil {
		return "", errors.Wrap(err, "resolve log path")
	}
	return path, nil
}

// New builds a logger and installs it as the zerolog global. The returned
// closer releases the log file, if any.
func New(cfg Config) (zerolog.Logger, io.Closer, error) {
	level := ParseLevel(cfg.Level)

	zerolog.TimeFieldFormat = time.RFC3339Nano
	zerolog.CallerMarshalFunc = shortCaller

	var logger zerolog.Logger
	var closer io.Closer = nopCloser{}

	switch cfg.Output {
	case OutputStderr:
		logger = zerolog.New(zerolog.ConsoleWriter{
			Out:        os.Stderr,
			TimeFormat: time.TimeOnly,
		}).With().Timestamp().Logger()
	default:
		path := cfg.File
		if path == "" {
			p, err := DefaultPath()
			if err != nil {
				return zerolog.Nop(), nil, err
			}
			path = p
		}
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return zerolog.Nop(), nil, errors.Wrapf(err, "create log dir for %s", path)
		}
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return zerolog.Nop(), nil, errors.Wrapf(err, "open log file %s", path)
		}
		closer = f

		ctx := zerolog.New(f).With().Timestamp()
		if level == zerolog.DebugLevel {
			ctx = ctx.Caller()
		}
		logger = ctx.Logger()
	}

	logger = logger.Level(level)
	zlog.Logger = logger
	zerolog.DefaultContextLogger = &logger

	return logger, closer, nil
}

// ParseLevel maps a level name to a zerolog level. Unknown names give info.
func ParseLevel(level string) zerolog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return zerolog.DebugLevel
	case "info", "":
		return zerolog.InfoLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

func shortCaller(_ uintptr, file string, line int) string {
	parts := strings.Split(file, string(filepath.Separator))
	if len(parts) > 1 {
		return filepath.Join(parts[len(parts)-2:]...) + ":" + strconv.Itoa(line)
	}
	return filepath.Base(file) + ":" + strconv.Itoa(line)
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
