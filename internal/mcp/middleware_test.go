package mcp

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/marketing-connect/mcp-services/internal/logging"
	"github.com/marketing-connect/mcp-services/internal/telemetry"
)

func okHandler(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return textResult("ok"), nil
}

func TestLoggingMiddleware(t *testing.T) {
	tests := []struct {
		name    string
		handler func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error)
		level   string
		message string
	}{
		{"success", okHandler, "info", "tool call completed"},
		{"tool error", func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return errorResult("bad input"), nil
		}, "warn", "tool call returned an error result"},
		{"handler error", func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return nil, errors.New("boom")
		}, "error", "tool call failed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytesBuffer
			logger := zerolog.New(&buf).Level(zerolog.InfoLevel)

			_, _ = loggingMiddleware(logger)(tt.handler)(t.Context(), toolRequest("echo", nil))

			lines := buf.lines()
			require.Len(t, lines, 1)
			assert.Equal(t, tt.level, lines[0]["level"])
			assert.Equal(t, tt.message, lines[0]["message"])
			assert.Equal(t, "echo", lines[0]["tool"])
			assert.Contains(t, lines[0], "duration")
		})
	}
}

func TestLoggingMiddleware_UsesRequestLogger(t *testing.T) {
	var base, scoped bytesBuffer
	ctx := logging.WithRequestID(t.Context(), zerolog.New(&scoped), "req-42")

	_, err := loggingMiddleware(zerolog.New(&base).Level(zerolog.InfoLevel))(okHandler)(ctx, toolRequest("echo", nil))
	require.NoError(t, err)

	assert.Empty(t, base.String())
	lines := scoped.lines()
	require.NotEmpty(t, lines)
	assert.Equal(t, "req-42", lines[len(lines)-1][logging.RequestIDField])
}

func TestTelemetryMiddleware(t *testing.T) {
	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })

	provider, err := telemetry.New("mcp-test", telemetry.WithTracerProvider(tp))
	require.NoError(t, err)
	t.Cleanup(func() { _ = provider.Shutdown(context.Background()) })

	mw, err := telemetryMiddleware(provider)
	require.NoError(t, err)

	ctx := logging.WithRequestID(t.Context(), zerolog.Nop(), "req-7")
	_, err = mw(okHandler)(ctx, toolRequest("echo", nil))
	require.NoError(t, err)
	_, err = mw(func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return errorResult("nope"), nil
	})(t.Context(), toolRequest("divide", nil))
	require.NoError(t, err)
	_, err = mw(func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return nil, errors.New("boom")
	})(t.Context(), toolRequest("calculate", nil))
	require.Error(t, err)

	spans := exporter.GetSpans()
	require.Len(t, spans, 3)
	for _, span := range spans {
		assert.Equal(t, "mcp.tools/call", span.Name)
	}
	assert.Contains(t, spans[0].Attributes, attribute.String("mcp.tool", "echo"))
	assert.Contains(t, spans[0].Attributes, attribute.String("mcp.request_id", "req-7"))
	assert.Equal(t, codes.Ok, spans[0].Status.Code)
	assert.Equal(t, codes.Error, spans[1].Status.Code)
	assert.Equal(t, codes.Error, spans[2].Status.Code)
	assert.NotEmpty(t, spans[2].Events)

	rec := httptest.NewRecorder()
	provider.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	metrics := string(body)
	assert.Contains(t, metrics, "mcp_tool_calls")
	assert.Contains(t, metrics, "mcp_tool_duration")
	assert.Contains(t, metrics, `outcome="ok"`)
	assert.Contains(t, metrics, `outcome="tool_error"`)
	assert.Contains(t, metrics, `outcome="error"`)
	assert.Contains(t, metrics, `tool="divide"`)
}

func TestRateLimitMiddleware(t *testing.T) {
	handler := rateLimitMiddleware(1, 2, zerolog.Nop())(okHandler)

	for i := 0; i < 2; i++ {
		res, err := handler(t.Context(), toolRequest("echo", nil))
		require.NoError(t, err)
		assert.False(t, res.IsError, "call %d should be allowed", i)
	}

	res, err := handler(t.Context(), toolRequest("echo", nil))
	require.NoError(t, err)
	assert.True(t, res.IsError)
	assert.Contains(t, resultText(t, res), "Rate limit exceeded")

	// limits are tracked per tool
	res, err = handler(t.Context(), toolRequest("calculate", nil))
	require.NoError(t, err)
	assert.False(t, res.IsError)
}

func TestRateLimit_WiredFromSettings(t *testing.T) {
	s := newTestServer(t, testServerOptions{env: map[string]string{"MCP_RATE_LIMIT": "1", "MCP_RATE_BURST": "1"}})
	initialize(t, s)

	assert.Equal(t, "Echo: one", rpcText(t, callToolRPC(t, s, "echo", map[string]any{"message": "one"}), "content"))

	resp := callToolRPC(t, s, "echo", map[string]any{"message": "two"})
	assert.Contains(t, rpcText(t, resp, "content"), "Rate limit exceeded")
	assert.Equal(t, true, resp["result"].(map[string]any)["isError"])
}

func TestRateLimit_DisabledByDefault(t *testing.T) {
	s := newTestServer(t, testServerOptions{})
	initialize(t, s)

	for i := 0; i < 50; i++ {
		resp := callToolRPC(t, s, "echo", map[string]any{"message": "x"})
		require.Equal(t, "Echo: x", rpcText(t, resp, "content"))
	}
}
