package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
)

type ContextKey string

const (
	RequestIDKey ContextKey = "request_id"
	ProcedureKey ContextKey = "procedure"
)

var Logger = slog.Default()

func ParseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func InitLogger(level string) *slog.Logger {
	return initWith(os.Stdout, level)
}

func initWith(w io.Writer, level string) *slog.Logger {
	Logger = slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: ParseLevel(level)}))
	slog.SetDefault(Logger)
	return Logger
}

// WithContext returns Logger annotated with the request id and procedure
// stored in ctx.
func WithContext(ctx context.Context) *slog.Logger {
	args := make([]any, 0, 4)
	if v, ok := ctx.Value(RequestIDKey).(string); ok {
		args = append(args, string(RequestIDKey), v)
	}
	if v, ok := ctx.Value(ProcedureKey).(string); ok {
		args = append(args, string(ProcedureKey), v)
	}
	return Logger.With(args...)
}
