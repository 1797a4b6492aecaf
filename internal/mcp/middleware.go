package mcp

import (
	"context"
	"fmt"
	"time"

	"github.com/felixgeelhaar/fortify/ratelimit"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/marketing-connect/mcp-services/internal/logging"
	"github.com/marketing-connect/mcp-services/internal/telemetry"
)

// Outcomes recorded on the tool call counter.
const (
	outcomeOK        = "ok"
	outcomeToolError = "tool_error"
	outcomeError     = "error"
)

// loggingMiddleware logs every tool call with its duration and outcome. The
// request-scoped logger from the HTTP layer is used when present.
func loggingMiddleware(base zerolog.Logger) server.ToolHandlerMiddleware {
	return func(next server.ToolHandlerFunc) server.ToolHandlerFunc {
		return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			logger := logging.FromContext(ctx, base).With().Str("tool", request.Params.Name).Logger()
			logger.Debug().Msg("tool call started")

			start := time.Now()
			result, err := next(ctx, request)
			elapsed := time.Since(start)

			switch {
			case err != nil:
				logger.Error().Err(err).Dur("duration", elapsed).Msg("tool call failed")
			case result != nil && result.IsError:
				logger.Warn().Dur("duration", elapsed).Msg("tool call returned an error result")
			default:
				logger.Info().Dur("duration", elapsed).Msg("tool call completed")
			}
			return result, err
		}
	}
}

// telemetryMiddleware wraps every tool call in a span and records a call
// counter and a duration histogram, both keyed by tool and outcome.
func telemetryMiddleware(tp *telemetry.Provider) (server.ToolHandlerMiddleware, error) {
	tracer := tp.Tracer()
	meter := tp.Meter()

	calls, err := meter.Int64Counter(
		"mcp.tool.calls",
		metric.WithDescription("Total number of MCP tool calls"),
		metric.WithUnit("{call}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create tool call counter: %w", err)
	}
	duration, err := meter.Float64Histogram(
		"mcp.tool.duration",
		metric.WithDescription("Duration of MCP tool calls"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create tool duration histogram: %w", err)
	}

	return func(next server.ToolHandlerFunc) server.ToolHandlerFunc {
		return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			tool := request.Params.Name
			ctx, span := tracer.Start(ctx, "mcp.tools/call",
				trace.WithSpanKind(trace.SpanKindServer),
				trace.WithAttributes(attribute.String("mcp.tool", tool)),
			)
			defer span.End()

			if id := logging.RequestID(ctx); id != "" {
				span.SetAttributes(attribute.String("mcp.request_id", id))
			}

			start := time.Now()
			result, err := next(ctx, request)
			elapsed := float64(time.Since(start).Microseconds()) / 1000

			outcome := outcomeOK
			switch {
			case err != nil:
				outcome = outcomeError
				span.RecordError(err)
				span.SetStatus(codes.Error, err.Error())
			case result != nil && result.IsError:
				outcome = outcomeToolError
				span.SetStatus(codes.Error, "tool returned an error result")
			default:
				span.SetStatus(codes.Ok, "")
			}

			attrs := metric.WithAttributes(
				attribute.String("tool", tool),
				attribute.String("outcome", outcome),
			)
			calls.Add(ctx, 1, attrs)
			duration.Record(ctx, elapsed, attrs)

			return result, err
		}
	}, nil
}

// rateLimitMiddleware allows rate calls per second per tool with the given burst.
// Rejected calls get a tool error result.
func rateLimitMiddleware(rate, burst int, logger zerolog.Logger) server.ToolHandlerMiddleware {
	limiter := ratelimit.New(&ratelimit.Config{
		Rate:     rate,
		Burst:    burst,
		Interval: time.Second,
	})

	return func(next server.ToolHandlerFunc) server.ToolHandlerFunc {
		return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			tool := request.Params.Name
			if !limiter.Allow(ctx, tool) {
				logger.Warn().Str("tool", tool).Msg("rate limit exceeded")
				return errorResult(fmt.Sprintf("Rate limit exceeded for tool %q, try again later", tool)), nil
			}
			return next(ctx, request)
		}
	}
}
