// Package zlog adapts core.Logger to zerolog.
package zlog

import (
	"context"
	"io"
	"time"

	"github.com/Swind/go-render-thread/core"
	"github.com/rs/zerolog"
)

// Logger writes core log calls as zerolog events.
type Logger struct {
	Z zerolog.Logger
}

var _ core.Logger = (*Logger)(nil)

// New returns a JSON logger writing to w at level and above.
func New(w io.Writer, level zerolog.Level) *Logger {
	return &Logger{Z: zerolog.New(w).Level(level).With().Timestamp().Logger()}
}

// NewConsole returns a human-readable logger for terminals.
func NewConsole(w io.Writer, level zerolog.Level) *Logger {
	return New(zerolog.ConsoleWriter{Out: w, TimeFormat: time.TimeOnly}, level)
}

// ParseLevel parses a level name ("debug", "info", ...). An empty name means info.
func ParseLevel(name string) (zerolog.Level, error) {
	if name == "" {
		return zerolog.InfoLevel, nil
	}
	return zerolog.ParseLevel(name)
}

// With returns a child logger that adds fields to every event.
func (l *Logger) With(fields ...core.Field) *Logger {
	ctx := l.Z.With()
	for _, f := range fields {
		ctx = ctx.Interface(f.Key, f.Value)
	}
	return &Logger{Z: ctx.Logger()}
}

func (l *Logger) Debug(msg string, fields ...core.Field) { write(l.Z.Debug(), msg, fields) }
func (l *Logger) Info(msg string, fields ...core.Field)  { write(l.Z.Info(), msg, fields) }
func (l *Logger) Warn(msg string, fields ...core.Field)  { write(l.Z.Warn(), msg, fields) }
func (l *Logger) Error(msg string, fields ...core.Field) { write(l.Z.Error(), msg, fields) }

func write(e *zerolog.Event, msg string, fields []core.Field) {
	// nil when the level is disabled
	if e == nil {
		return
	}
	for _, f := range fields {
		switch v := f.Value.(type) {
		case error:
			e = e.AnErr(f.Key, v)
		case string:
			e = e.Str(f.Key, v)
		case int:
			e = e.Int(f.Key, v)
		case uint64:
			e = e.Uint64(f.Key, v)
		case bool:
			e = e.Bool(f.Key, v)
		case time.Duration:
			e = e.Dur(f.Key, v)
		default:
			e = e.Interface(f.Key, v)
		}
	}
	e.Msg(msg)
}

// PanicHandler reports task panics as error events with the stack attached.
type PanicHandler struct {
	Logger *Logger
}

var _ core.PanicHandler = PanicHandler{}

func (h PanicHandler) HandlePanic(ctx context.Context, workerName string, taskName string, panicInfo any, stackTrace []byte) {
	h.Logger.Z.Error().
		Str("worker", workerName).
		Str("task", taskName).
		Interface("panic", panicInfo).
		Bytes("stack", stackTrace).
		Msg("task panicked")
}
