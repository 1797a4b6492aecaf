package mcp

import (
	"bufio"
	"bytes"
	"encoding/json"
	"sync"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/require"
)

// bytesBuffer is a goroutine-safe log sink that decodes JSON log lines.
type bytesBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *bytesBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *bytesBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func (b *bytesBuffer) lines() []map[string]any {
	var out []map[string]any
	scanner := bufio.NewScanner(bytes.NewBufferString(b.String()))
	for scanner.Scan() {
		var entry map[string]any
		if err := json.Unmarshal(scanner.Bytes(), &entry); err == nil {
			out = append(out, entry)
		}
	}
	return out
}

func toolRequest(name string, args map[string]any) mcp.CallToolRequest {
	var req mcp.CallToolRequest
	req.Params.Name = name
	req.Params.Arguments = args
	return req
}

// callTool invokes a registered tool handler directly, bypassing middleware.
func callTool(t *testing.T, s *MCPServer, name string, args map[string]any) *mcp.CallToolResult {
	t.Helper()
	for _, tool := range s.tools {
		if tool.Tool.Name == name {
			res, err := tool.Handler(t.Context(), toolRequest(name, args))
			require.NoError(t, err)
			require.NotNil(t, res)
			return res
		}
	}
	t.Fatalf("tool %q is not registered", name)
	return nil
}

func resultText(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	require.Len(t, res.Content, 1)
	text, ok := res.Content[0].(mcp.TextContent)
	require.True(t, ok, "expected text content, got %T", res.Content[0])
	return text.Text
}
