// Package logger builds the zerolog loggers shared by the storefront binaries
// and enriches them with request and trace ids taken from the context.
package logger

import (
	"context"
	"io"
	"os"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/trace"
)

type ctxKey int

const requestIDKey ctxKey = iota

var global atomic.Pointer[zerolog.Logger]

func init() {
	l := zerolog.New(os.Stdout).With().Timestamp().Logger()
	global.Store(&l)
}

// New returns a JSON logger tagged with the service name and environment. An
// unknown level falls back to info.
func New(w io.Writer, service, env, level string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}
	zerolog.TimeFieldFormat = time.RFC3339Nano

	return zerolog.New(w).
		Level(lvl).
		With().
		Timestamp().
		Str("service", service).
		Str("env", env).
		Logger()
}

// SetDefault replaces the logger returned by L and used by FromContext.
func SetDefault(l zerolog.Logger) {
	global.Store(&l)
}

func L() *zerolog.Logger {
	return global.Load()
}

func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey, id)
}

func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}

// FromContext returns the default logger with the request id and the active
// span's trace and span ids attached when present.
func FromContext(ctx context.Context) *zerolog.Logger {
	base := L()
	if ctx == nil {
		return base
	}

	lc := base.With()
	enriched := false

	if id := RequestID(ctx); id != "" {
		lc = lc.Str("request_id", id)
		enriched = true
	}
	if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
		lc = lc.Str("trace_id", sc.TraceID().String()).Str("span_id", sc.SpanID().String())
		enriched = true
	}

	if !enriched {
		return base
	}
	l := lc.Logger()
	return &l
}
