package logging

import (
	"context"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"

	"github.com/marketing-connect/mcp-services/internal/config"
)

// ConsoleTimeFormat is the timestamp layout of human-readable output.
const ConsoleTimeFormat = "2006-01-02 15:04:05.000"

// RequestIDField is the log field carrying the per-request identifier.
const RequestIDField = "request_id"

func init() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnixMs
}

// New builds the process logger from settings. JSON is written when the log
// format is json, otherwise console output, coloured only on a terminal.
// The returned logger carries its own level so several loggers can coexist.
func New(w io.Writer, settings *config.Settings) zerolog.Logger {
	level := ParseLevel(settings.EffectiveLogLevel())

	var out io.Writer = w
	if !settings.JSONLogs() {
		out = zerolog.ConsoleWriter{
			Out:        w,
			NoColor:    !isTerminal(w),
			TimeFormat: ConsoleTimeFormat,
			PartsOrder: []string{
				zerolog.TimestampFieldName,
				zerolog.LevelFieldName,
				zerolog.CallerFieldName,
				zerolog.MessageFieldName,
			},
		}
	}

	ctx := zerolog.New(out).Level(level).With().Timestamp()
	if settings.Debug {
		ctx = ctx.Caller()
	}
	return ctx.Logger()
}

// ParseLevel maps a configured level name onto a zerolog level.
// Unknown names fall back to info.
func ParseLevel(level string) zerolog.Level {
	switch strings.ToUpper(strings.TrimSpace(level)) {
	case "TRACE":
		return zerolog.TraceLevel
	case "DEBUG":
		return zerolog.DebugLevel
	case "INFO":
		return zerolog.InfoLevel
	case "WARNING", "WARN":
		return zerolog.WarnLevel
	case "ERROR":
		return zerolog.ErrorLevel
	case "CRITICAL":
		return zerolog.FatalLevel
	default:
		return zerolog.InfoLevel
	}
}

type requestIDKey struct{}

// WithRequestID returns a context carrying the request id and logger enriched
// with it. Handlers further down read them back with RequestID and FromContext.
func WithRequestID(ctx context.Context, logger zerolog.Logger, requestID string) context.Context {
	ctx = context.WithValue(ctx, requestIDKey{}, requestID)
	l := logger.With().Str(RequestIDField, requestID).Logger()
	return l.WithContext(ctx)
}

// RequestID returns the request id stored in ctx, or "".
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

// FromContext returns the logger stored in ctx, or fallback when there is none.
func FromContext(ctx context.Context, fallback zerolog.Logger) zerolog.Logger {
	if l := zerolog.Ctx(ctx); l != nil && l.GetLevel() != zerolog.Disabled {
		return *l
	}
	return fallback
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
