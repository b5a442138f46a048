// Package logger configures the global zerolog logger for capcore.
package logger

import (
	"fmt"
	"io"
	"os"
	"path"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/rs/zerolog/pkgerrors"
	"gopkg.in/natefinch/lumberjack.v2"
)

// LevelWriter splits log output by level.
// See WriteLevel for the routing rules.
type LevelWriter struct {
	io.Writer
	ErrorWriter io.Writer
	InfoWriter  io.Writer
	TraceWriter io.Writer
	WarnWriter  io.Writer
}

// WriteLevel routes trace, warn and error (and above) to their own writers,
// debug and info go to InfoWriter.
func (lw *LevelWriter) WriteLevel(l zerolog.Level, p []byte) (n int, err error) {
	var w io.Writer

	if l == zerolog.Disabled {
		return 0, nil
	}

	switch {
	case l == zerolog.TraceLevel:
		w = lw.TraceWriter
	case l == zerolog.WarnLevel:
		w = lw.WarnWriter
	case l > zerolog.WarnLevel:
		w = lw.ErrorWriter
	default:
		w = lw.InfoWriter
	}

	if w == nil {
		return len(p), nil
	}

	return w.Write(p) //nolint:wrapcheck
}

// Init the zerolog logger.
// Depending on the config it enables console output, rolling files, both or nothing.
func Init(cfg Log) error {
	var (
		logLevel, err = zerolog.ParseLevel(cfg.LogLevel)
		writers       []io.Writer
		stack         bool
	)

	if err != nil {
		return errors.Wrap(err, fmt.Sprintf("loglevel %s is not supported", cfg.LogLevel))
	}

	if cfg.ServiceName == "" {
		return ErrServiceNameIsEmpty
	}

	if cfg.AppName == "" {
		return ErrAppNameIsEmpty
	}

	if cfg.File.Enabled && cfg.File.Path == "" {
		return ErrNoLogFilePath
	}

	if logLevel == zerolog.TraceLevel {
		zerolog.ErrorStackMarshaler = pkgerrors.MarshalStack //nolint:reassign
		stack = true
	}

	zerolog.SetGlobalLevel(logLevel)
	zerolog.ErrorHandler = ErrorHandler //nolint:reassign

	ph := NewPrometheusHook(cfg.ServiceName)

	if cfg.Console.Enabled {
		writers = append(writers, NewConsoleWriter(cfg))
	}

	if cfg.File.Enabled {
		fw, err := newRollingLevelFiles(cfg.File)
		if err != nil {
			return err
		}

		writers = append(writers, fw)
	}

	ctx := zerolog.New(zerolog.MultiLevelWriter(writers...)).
		Hook(ph).
		With().
		Timestamp().
		Str("service", cfg.ServiceName)

	if cfg.LogEnv != "" {
		ctx = ctx.Str("env", cfg.LogEnv)
	}

	switch {
	case cfg.ReportCaller && stack:
		ctx = ctx.Stack().Caller()
	case cfg.ReportCaller:
		ctx = ctx.Caller()
	case stack:
		ctx = ctx.Stack()
	}

	log.Logger = ctx.Logger()

	return nil
}

// NewRollingFile returns a lumberjack writer for one log target below dir.
func NewRollingFile(dir string, f RollingFile) io.Writer {
	return &lumberjack.Logger{
		Filename:   path.Join(dir, f.Name),
		MaxSize:    f.MaxSize,
		MaxAge:     f.MaxAge,
		MaxBackups: f.MaxBackups,
		LocalTime:  false,
		Compress:   false,
	}
}

// newRollingLevelFiles wires one rolling file per level group.
func newRollingLevelFiles(cfg LogFile) (io.Writer, error) {
	if err := os.MkdirAll(cfg.Path, 0o750); err != nil { //nolint:mnd
		return nil, errors.Wrapf(err, "can't create log directory %s", cfg.Path)
	}

	return &LevelWriter{
		ErrorWriter: NewRollingFile(cfg.Path, cfg.Error),
		InfoWriter:  NewRollingFile(cfg.Path, cfg.Info),
		TraceWriter: NewRollingFile(cfg.Path, cfg.Trace),
		WarnWriter:  NewRollingFile(cfg.Path, cfg.Warn),
	}, nil
}

// NewConsoleWriter sends info and debug to stdout and everything else to stderr.
func NewConsoleWriter(cfg Log) io.Writer {
	out := func(w io.Writer) io.Writer {
		if !cfg.Console.UseConsoleWriter {
			return w
		}

		return zerolog.ConsoleWriter{
			Out:        w,
			NoColor:    false,
			TimeFormat: zerolog.TimeFieldFormat,
		}
	}

	return &LevelWriter{
		ErrorWriter: out(os.Stderr),
		InfoWriter:  out(os.Stdout),
		TraceWriter: out(os.Stderr),
		WarnWriter:  out(os.Stderr),
	}
}
