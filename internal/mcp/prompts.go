package mcp

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// Depth instructions for analyze_prompt; unknown depths use "moderate".
var depthInstructions = map[string]string{
	"brief":         "Provide a short, 2-3 sentence analysis.",
	"moderate":      "Provide a balanced analysis with key points.",
	"comprehensive": "Provide a detailed analysis covering all aspects.",
}

// Format instructions for summarize_prompt; unknown formats use "bullets".
var formatInstructions = map[string]string{
	"bullets":   "Present the summary as bullet points.",
	"paragraph": "Write the summary as a flowing paragraph.",
	"outline":   "Structure the summary as a hierarchical outline.",
}

func (s *MCPServer) registerPrompts() {
	s.addPrompt(
		mcp.NewPrompt("help_prompt",
			mcp.WithPromptDescription("Get help with using this MCP server"),
		),
		s.handlePromptHelp,
	)

	s.addPrompt(
		mcp.NewPrompt("analyze_prompt",
			mcp.WithPromptDescription("Template for analyzing a topic"),
			mcp.WithArgument("topic",
				mcp.ArgumentDescription("What to analyze"),
				mcp.RequiredArgument(),
			),
			mcp.WithArgument("depth",
				mcp.ArgumentDescription(`How detailed: "brief" (default), "moderate", or "comprehensive"`),
			),
		),
		s.handlePromptAnalyze,
	)

	s.addPrompt(
		mcp.NewPrompt("summarize_prompt",
			mcp.WithPromptDescription("Template for summarizing content"),
			mcp.WithArgument("content_type",
				mcp.ArgumentDescription("What kind of content (article, conversation, data)"),
				mcp.RequiredArgument(),
			),
			mcp.WithArgument("format",
				mcp.ArgumentDescription(`Output format: "bullets" (default), "paragraph", or "outline"`),
			),
		),
		s.handlePromptSummarize,
	)

	s.addPrompt(
		mcp.NewPrompt("data_exploration_prompt",
			mcp.WithPromptDescription("Step-by-step exploration of a data type"),
			mcp.WithArgument("data_type",
				mcp.ArgumentDescription("The type of data to explore (user, product, order)"),
				mcp.RequiredArgument(),
			),
		),
		s.handlePromptDataExploration,
	)

	s.addPrompt(
		mcp.NewPrompt("troubleshooting_prompt",
			mcp.WithPromptDescription("Guided troubleshooting of an issue"),
			mcp.WithArgument("issue",
				mcp.ArgumentDescription("Description of the problem"),
				mcp.RequiredArgument(),
			),
		),
		s.handlePromptTroubleshooting,
	)
}

func (s *MCPServer) addPrompt(prompt mcp.Prompt, handler server.PromptHandlerFunc) {
	s.mcpServer.AddPrompt(prompt, handler)
	s.prompts = append(s.prompts, catalogEntry{Name: prompt.Name, Description: prompt.Description})
}

func userPrompt(description, text string) *mcp.GetPromptResult {
	return mcp.NewGetPromptResult(description, []mcp.PromptMessage{
		mcp.NewPromptMessage(mcp.RoleUser, mcp.NewTextContent(text)),
	})
}

func requirePromptArg(request mcp.GetPromptRequest, key string) (string, error) {
	v := request.Params.Arguments[key]
	if v == "" {
		return "", fmt.Errorf("missing required argument %q", key)
	}
	return v, nil
}

func promptArgOr(request mcp.GetPromptRequest, key, defaultVal string) string {
	if v := request.Params.Arguments[key]; v != "" {
		return v
	}
	return defaultVal
}

func (s *MCPServer) handlePromptHelp(_ context.Context, _ mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	return userPrompt("Help with using this MCP server", `I need help understanding what this MCP server can do.

Please:
1. Read the server://capabilities resource to understand available tools
2. Summarize the main features
3. Give me an example of how to use each tool
`), nil
}

func (s *MCPServer) handlePromptAnalyze(_ context.Context, request mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	topic, err := requirePromptArg(request, "topic")
	if err != nil {
		return nil, err
	}
	instruction, ok := depthInstructions[promptArgOr(request, "depth", "brief")]
	if !ok {
		instruction = depthInstructions["moderate"]
	}

	return userPrompt("Analyze "+topic, fmt.Sprintf(`Please analyze the following topic: %s

%s

If relevant tools are available, use them to gather data.
Structure your response with clear sections.
`, topic, instruction)), nil
}

func (s *MCPServer) handlePromptSummarize(_ context.Context, request mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	contentType, err := requirePromptArg(request, "content_type")
	if err != nil {
		return nil, err
	}
	instruction, ok := formatInstructions[promptArgOr(request, "format", "bullets")]
	if !ok {
		instruction = formatInstructions["bullets"]
	}

	return userPrompt("Summarize "+contentType, fmt.Sprintf(`Please summarize the %s content.

%s

Focus on:
- Key points and main ideas
- Important details that shouldn't be missed
- Any actionable items or conclusions
`, contentType, instruction)), nil
}

func (s *MCPServer) handlePromptDataExploration(_ context.Context, request mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	dataType, err := requirePromptArg(request, "data_type")
	if err != nil {
		return nil, err
	}

	return userPrompt("Explore the "+dataType+" data structure", fmt.Sprintf(`Let's explore the %[1]s data structure systematically.

STEP 1: Understand the Schema
- Read the %[2]s%[1]s resource
- List all fields and their types
- Identify required vs optional fields

STEP 2: Examine Relationships
- Note any foreign key references
- Explain how this relates to other data types

STEP 3: Suggest Operations
- What common operations would be useful?
- What validations should be applied?

STEP 4: Summary
- Provide a brief summary of the %[1]s data structure
- Suggest any improvements or considerations
`, dataType, schemaURIPrefix)), nil
}

func (s *MCPServer) handlePromptTroubleshooting(_ context.Context, request mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	issue, err := requirePromptArg(request, "issue")
	if err != nil {
		return nil, err
	}

	return userPrompt("Troubleshoot an issue", fmt.Sprintf(`Help me troubleshoot this issue: %s

DIAGNOSTIC STEPS:
1. First, check %s to verify the server is healthy
2. Review %s to understand available tools
3. Identify which components might be involved

INVESTIGATION:
- What could cause this issue?
- What information do we need to diagnose it?
- What tools or resources should we check?

RESOLUTION:
- Suggest possible fixes
- Explain how to verify the fix worked
`, issue, URIServerStatus, URIServerCapabilities)), nil
}
