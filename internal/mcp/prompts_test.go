package mcp

import (
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func getPrompt(t *testing.T, s *MCPServer, name string, args map[string]string) (string, error) {
	t.Helper()
	var req mcp.GetPromptRequest
	req.Params.Name = name
	req.Params.Arguments = args

	handlers := map[string]func() (*mcp.GetPromptResult, error){
		"help_prompt":             func() (*mcp.GetPromptResult, error) { return s.handlePromptHelp(t.Context(), req) },
		"analyze_prompt":          func() (*mcp.GetPromptResult, error) { return s.handlePromptAnalyze(t.Context(), req) },
		"summarize_prompt":        func() (*mcp.GetPromptResult, error) { return s.handlePromptSummarize(t.Context(), req) },
		"data_exploration_prompt": func() (*mcp.GetPromptResult, error) { return s.handlePromptDataExploration(t.Context(), req) },
		"troubleshooting_prompt":  func() (*mcp.GetPromptResult, error) { return s.handlePromptTroubleshooting(t.Context(), req) },
	}
	handler, ok := handlers[name]
	require.True(t, ok, "unknown prompt %q", name)

	result, err := handler()
	if err != nil {
		return "", err
	}
	require.Len(t, result.Messages, 1)
	assert.Equal(t, mcp.RoleUser, result.Messages[0].Role)
	assert.NotEmpty(t, result.Description)
	text, ok := result.Messages[0].Content.(mcp.TextContent)
	require.True(t, ok)
	return text.Text, nil
}

func TestPrompts(t *testing.T) {
	s := newTestServer(t, testServerOptions{})

	tests := []struct {
		name     string
		prompt   string
		args     map[string]string
		contains []string
		excludes []string
	}{
		{
			name:     "help",
			prompt:   "help_prompt",
			contains: []string{"server://capabilities", "example of how to use each tool"},
		},
		{
			name:     "analyze default depth is brief",
			prompt:   "analyze_prompt",
			args:     map[string]string{"topic": "Q3 churn"},
			contains: []string{"Please analyze the following topic: Q3 churn", depthInstructions["brief"]},
		},
		{
			name:     "analyze comprehensive",
			prompt:   "analyze_prompt",
			args:     map[string]string{"topic": "pricing", "depth": "comprehensive"},
			contains: []string{depthInstructions["comprehensive"]},
		},
		{
			name:     "analyze unknown depth falls back to moderate",
			prompt:   "analyze_prompt",
			args:     map[string]string{"topic": "pricing", "depth": "exhaustive"},
			contains: []string{depthInstructions["moderate"]},
			excludes: []string{depthInstructions["brief"]},
		},
		{
			name:     "summarize default format is bullets",
			prompt:   "summarize_prompt",
			args:     map[string]string{"content_type": "article"},
			contains: []string{"Please summarize the article content.", formatInstructions["bullets"]},
		},
		{
			name:     "summarize outline",
			prompt:   "summarize_prompt",
			args:     map[string]string{"content_type": "conversation", "format": "outline"},
			contains: []string{formatInstructions["outline"]},
		},
		{
			name:     "summarize unknown format falls back to bullets",
			prompt:   "summarize_prompt",
			args:     map[string]string{"content_type": "data", "format": "haiku"},
			contains: []string{formatInstructions["bullets"]},
		},
		{
			name:     "data exploration",
			prompt:   "data_exploration_prompt",
			args:     map[string]string{"data_type": "order"},
			contains: []string{"Let's explore the order data structure", "data://schema/order", "summary of the order data structure"},
		},
		{
			name:     "troubleshooting",
			prompt:   "troubleshooting_prompt",
			args:     map[string]string{"issue": "tools time out"},
			contains: []string{"Help me troubleshoot this issue: tools time out", "check server://status", "Review server://capabilities"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			text, err := getPrompt(t, s, tt.prompt, tt.args)
			require.NoError(t, err)
			for _, want := range tt.contains {
				assert.Contains(t, text, want)
			}
			for _, unwanted := range tt.excludes {
				assert.NotContains(t, text, unwanted)
			}
		})
	}
}

func TestPrompts_MissingRequiredArguments(t *testing.T) {
	s := newTestServer(t, testServerOptions{})

	for prompt, arg := range map[string]string{
		"analyze_prompt":          "topic",
		"summarize_prompt":        "content_type",
		"data_exploration_prompt": "data_type",
		"troubleshooting_prompt":  "issue",
	} {
		t.Run(prompt, func(t *testing.T) {
			_, err := getPrompt(t, s, prompt, nil)
			require.Error(t, err)
			assert.Contains(t, err.Error(), arg)
		})
	}
}

func TestPrompts_ListThroughServer(t *testing.T) {
	s := newTestServer(t, testServerOptions{})
	initialize(t, s)

	resp := rpc(t, s, "prompts/list", map[string]any{})
	prompts := resp["result"].(map[string]any)["prompts"].([]any)
	var names []string
	for _, p := range prompts {
		names = append(names, p.(map[string]any)["name"].(string))
	}
	assert.ElementsMatch(t, []string{"help_prompt", "analyze_prompt", "summarize_prompt", "data_exploration_prompt", "troubleshooting_prompt"}, names)

	text := rpc(t, s, "prompts/get", map[string]any{"name": "analyze_prompt", "arguments": map[string]string{"topic": "growth"}})
	messages := text["result"].(map[string]any)["messages"].([]any)
	require.Len(t, messages, 1)
	content := messages[0].(map[string]any)["content"].(map[string]any)
	assert.Contains(t, content["text"], "growth")
}
