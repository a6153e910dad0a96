// Package logging writes structured JSON-lines logs: one object per line with ts, level and msg.
// It is a thin layer over log/slog's JSON handler.
package logging

import (
	"context"
	"io"
	"log/slog"
	"maps"
	"os"
	"slices"
	"strings"
	"time"

	"go.opentelemetry.io/otel/trace"
)

// Level is the severity of a log entry.
type Level = slog.Level

const (
	LevelDebug = slog.LevelDebug
	LevelInfo  = slog.LevelInfo
	LevelWarn  = slog.LevelWarn
	LevelError = slog.LevelError
)

// ParseLevel maps debug/info/warn/error to a Level, defaulting to info.
func ParseLevel(s string) Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LevelDebug
	case "warn", "warning":
		return LevelWarn
	case "error":
		return LevelError
	default:
		return LevelInfo
	}
}

// Logger is safe for concurrent use. Derived loggers share the parent's handler output.
type Logger struct {
	logger *slog.Logger
}

// New creates a Logger writing to out. A nil out means stdout, a nil loc means UTC.
func New(out io.Writer, loc *time.Location, level string) *Logger {
	if out == nil {
		out = os.Stdout
	}
	if loc == nil {
		loc = time.UTC
	}
	handler := slog.NewJSONHandler(out, &slog.HandlerOptions{
		Level:       ParseLevel(level),
		ReplaceAttr: replaceAttr(loc),
	})
	return &Logger{logger: slog.New(handler)}
}

// replaceAttr renames slog's time key to ts in loc and lowercases the level.
func replaceAttr(loc *time.Location) func([]string, slog.Attr) slog.Attr {
	return func(groups []string, a slog.Attr) slog.Attr {
		if len(groups) > 0 {
			return a
		}
		switch a.Key {
		case slog.TimeKey:
			return slog.String("ts", a.Value.Time().In(loc).Format(time.RFC3339Nano))
		case slog.LevelKey:
			if lvl, ok := a.Value.Any().(slog.Level); ok {
				return slog.String(slog.LevelKey, strings.ToLower(lvl.String()))
			}
		}
		return a
	}
}

// Discard returns a Logger that drops everything.
func Discard() *Logger {
	return New(io.Discard, time.UTC, "error")
}

// With returns a child logger that adds fields to every entry.
func (l *Logger) With(fields map[string]any) *Logger {
	if len(fields) == 0 {
		return l
	}
	return &Logger{logger: l.logger.With(args(fields)...)}
}

// WithContext attaches request_id and trace_id carried by ctx, if any.
func (l *Logger) WithContext(ctx context.Context) *Logger {
	var extra []any
	if rid := RequestIDFromContext(ctx); rid != "" {
		extra = append(extra, "request_id", rid)
	}
	if ctx != nil {
		if sc := trace.SpanContextFromContext(ctx); sc.HasTraceID() {
			extra = append(extra, "trace_id", sc.TraceID().String())
		}
	}
	if len(extra) == 0 {
		return l
	}
	return &Logger{logger: l.logger.With(extra...)}
}

func (l *Logger) Debug(msg string, fields map[string]any) { l.logger.Debug(msg, args(fields)...) }
func (l *Logger) Info(msg string, fields map[string]any)  { l.logger.Info(msg, args(fields)...) }
func (l *Logger) Warn(msg string, fields map[string]any)  { l.logger.Warn(msg, args(fields)...) }

// Error logs at error level; err, when non-nil, is recorded under "error".
func (l *Logger) Error(msg string, fields map[string]any, err error) {
	a := args(fields)
	if err != nil {
		a = append(a, "error", err.Error())
	}
	l.logger.Error(msg, a...)
}

// args flattens fields into slog key/value pairs in key order.
func args(fields map[string]any) []any {
	out := make([]any, 0, 2*len(fields))
	for _, k := range slices.Sorted(maps.Keys(fields)) {
		out = append(out, k, fields[k])
	}
	return out
}

type ctxKey struct{}

// ContextWithRequestID stores a request ID for later retrieval by WithContext.
func ContextWithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

// RequestIDFromContext returns the request id if present.
func RequestIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	s, _ := ctx.Value(ctxKey{}).(string)
	return s
}
