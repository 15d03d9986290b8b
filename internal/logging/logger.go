// Package logging configures the process-wide zerolog logger and derives
// request- and trace-scoped child loggers from a context.
package logging

import (
	"context"
	"io"
	"os"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/trace"
)

type Config struct {
	Level   string    // "debug", "info", ...; defaults to info
	Output  io.Writer // defaults to os.Stdout
	Service string
}

type ctxKey string

const requestIDKey ctxKey = "request_id"

var (
	mu   sync.RWMutex
	base = zerolog.New(os.Stdout).With().Timestamp().Logger()
)

// Configure replaces the base logger. It is meant to be called once from main
// before any component logger is derived.
func Configure(cfg Config) {
	level := zerolog.InfoLevel
	if cfg.Level != "" {
		if parsed, err := zerolog.ParseLevel(cfg.Level); err == nil {
			level = parsed
		}
	}
	zerolog.TimeFieldFormat = time.RFC3339

	writer := cfg.Output
	if writer == nil {
		writer = os.Stdout
	}

	logger := zerolog.New(writer).Level(level).With().Timestamp()
	if cfg.Service != "" {
		logger = logger.Str("service", cfg.Service)
	}

	mu.Lock()
	base = logger.Logger()
	mu.Unlock()
}

func Base() zerolog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return base
}

// WithComponent returns a child logger annotated with the component name.
func WithComponent(component string) zerolog.Logger {
	return Base().With().Str("component", component).Logger()
}

func ContextWithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey, id)
}

func RequestIDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(requestIDKey).(string); ok {
		return id
	}
	return ""
}

// FromContext enriches logger with the request ID and the active span, if any.
func FromContext(ctx context.Context, logger zerolog.Logger) *zerolog.Logger {
	lc := logger.With()
	if id := RequestIDFromContext(ctx); id != "" {
		lc = lc.Str("request_id", id)
	}
	if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
		lc = lc.Str("trace_id", sc.TraceID().String()).Str("span_id", sc.SpanID().String())
	}
	l := lc.Logger()
	return &l
}
