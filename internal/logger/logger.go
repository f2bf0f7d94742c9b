package logger

import (
	"log/slog"
	"os"
	"strings"
	"sync/atomic"
)

var current atomic.Pointer[slog.Logger]

func init() {
	current.Store(slog.New(slog.NewJSONHandler(os.Stdout, nil)))
}

// Init installs a JSON logger on stdout at the given level and makes it the
// slog default, so components handed *slog.Logger share the same output.
func Init(level string) *slog.Logger {
	l := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: ParseLevel(level)}))
	current.Store(l)
	slog.SetDefault(l)
	l.Info("logger initialized", "level", ParseLevel(level).String())
	return l
}

// L returns the process logger.
func L() *slog.Logger {
	return current.Load()
}

// ParseLevel maps debug/info/warn/error onto slog levels; anything else is info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
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

func Info(msg string, fields map[string]any) {
	L().Info(msg, attrs(fields)...)
}

func Warn(msg string, fields map[string]any) {
	L().Warn(msg, attrs(fields)...)
}

func Error(msg string, fields map[string]any) {
	L().Error(msg, attrs(fields)...)
}

func Fatal(msg string, fields map[string]any) {
	L().Error(msg, append(attrs(fields), slog.Bool("fatal", true))...)
	os.Exit(1)
}

func attrs(fields map[string]any) []any {
	out := make([]any, 0, len(fields))
	for k, v := range fields {
		if err, ok := v.(error); ok {
			v = err.Error()
		}
		out = append(out, slog.Any(k, v))
	}
	return out
}
