package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stoewer/go-strcase"

	"github.com/marketing-connect/mcp-services/internal/calc"
	"github.com/marketing-connect/mcp-services/internal/items"
	"github.com/marketing-connect/mcp-services/internal/logging"
)

// ReasonDivideByZero is the error reported by the divide tool for a zero denominator.
const ReasonDivideByZero = "Cannot divide by zero"

// Text cases accepted by format_text.
var textCases = map[string]func(string) string{
	"snake":       strcase.SnakeCase,
	"kebab":       strcase.KebabCase,
	"camel":       strcase.LowerCamelCase,
	"upper_camel": strcase.UpperCamelCase,
}

func (s *MCPServer) registerTools() {
	s.addTool(mcp.NewTool("echo",
		mcp.WithDescription("Echo back the provided message. Useful for testing connectivity."),
		mcp.WithString("message", mcp.Description("The text to echo back"), mcp.Required()),
	), s.handleEcho)

	s.addTool(mcp.NewTool("format_text",
		mcp.WithDescription("Format text with optional transformations: case conversion, uppercase, prefix, and suffix"),
		mcp.WithString("text", mcp.Description("The text to format"), mcp.Required()),
		mcp.WithBoolean("uppercase", mcp.Description("Convert to uppercase (default: false)")),
		mcp.WithString("prefix", mcp.Description("Add this before the text")),
		mcp.WithString("suffix", mcp.Description("Add this after the text")),
		mcp.WithString("case", mcp.Description("Convert the text case before other transformations"),
			mcp.Enum("snake", "kebab", "camel", "upper_camel")),
	), s.handleFormatText)

	s.addTool(mcp.NewTool("process_items",
		mcp.WithDescription("Process a list of items with optional configuration. Options: reverse (bool) reverses the list, limit (int) caps the number of items returned. Reverse is applied before limit."),
		mcp.WithArray("items", mcp.Description("List of items to process"), mcp.Required(),
			mcp.Items(map[string]any{"type": "string"})),
		mcp.WithObject("options", mcp.Description("Optional configuration"),
			mcp.Properties(map[string]any{
				"reverse": map[string]any{"type": "boolean", "description": "Reverse the list"},
				"limit":   map[string]any{"type": "integer", "description": "Max items to return"},
			})),
	), s.handleProcessItems)

	s.addTool(mcp.NewTool("divide",
		mcp.WithDescription("Divide two numbers. Division by zero is reported in the result instead of failing."),
		mcp.WithNumber("numerator", mcp.Description("The number to divide"), mcp.Required()),
		mcp.WithNumber("denominator", mcp.Description("The number to divide by"), mcp.Required()),
	), s.handleDivide)

	s.addTool(mcp.NewTool("calculate",
		mcp.WithDescription("Safely evaluate a mathematical expression. Supports +, -, *, /, //, **, parentheses, and numbers. Example: \"2 + 3 * 4\""),
		mcp.WithString("expression", mcp.Description("Mathematical expression, e.g. \"(10 - 3) * 2\""), mcp.Required()),
	), s.handleCalculate)

	s.addTool(mcp.NewTool("greet_user",
		mcp.WithDescription("Greet a user with their name and user SID"),
		mcp.WithObject("user", mcp.Description("User details"), mcp.Required(),
			mcp.Properties(map[string]any{
				"userSid": map[string]any{"type": "string", "description": "Unique user SID"},
				"name":    map[string]any{"type": "string", "description": "Display name"},
			}),
			requiredProperties("userSid", "name")),
	), s.handleGreetUser)
}

// requiredProperties marks nested object properties as required in the input schema.
func requiredProperties(names ...string) mcp.PropertyOption {
	return func(schema map[string]any) {
		schema["required"] = names
	}
}

func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{Type: "text", Text: text},
		},
	}
}

func errorResult(msg string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{Type: "text", Text: msg},
		},
		IsError: true,
	}
}

func jsonResult(v any) *mcp.CallToolResult {
	data, err := json.Marshal(v)
	if err != nil {
		return errorResult(fmt.Sprintf("Failed to marshal result: %v", err))
	}
	return textResult(string(data))
}

func missingArg(key string) *mcp.CallToolResult {
	return errorResult(fmt.Sprintf("Missing required argument %q", key))
}

func requireStringArg(args map[string]any, key string) (string, *mcp.CallToolResult) {
	v, ok := args[key]
	if !ok || v == nil {
		return "", missingArg(key)
	}
	s, ok := v.(string)
	if !ok {
		return "", errorResult(fmt.Sprintf("Argument %q must be a string", key))
	}
	return s, nil
}

func getStringArg(args map[string]any, key string) string {
	if v, ok := args[key]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

func getBoolArg(args map[string]any, key string, defaultVal bool) bool {
	if v, ok := args[key]; ok {
		if b, ok := v.(bool); ok {
			return b
		}
	}
	return defaultVal
}

func requireNumberArg(args map[string]any, key string) (float64, *mcp.CallToolResult) {
	v, ok := args[key]
	if !ok || v == nil {
		return 0, missingArg(key)
	}
	switch n := v.(type) {
	case float64:
		return n, nil
	case int:
		return float64(n), nil
	case json.Number:
		if f, err := n.Float64(); err == nil {
			return f, nil
		}
	}
	return 0, errorResult(fmt.Sprintf("Argument %q must be a number", key))
}

// --- Tool Handlers ---

func (s *MCPServer) handleEcho(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	message, errRes := requireStringArg(request.GetArguments(), "message")
	if errRes != nil {
		return errRes, nil
	}
	return textResult("Echo: " + message), nil
}

func (s *MCPServer) handleFormatText(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	text, errRes := requireStringArg(args, "text")
	if errRes != nil {
		return errRes, nil
	}

	if name := getStringArg(args, "case"); name != "" {
		convert, ok := textCases[name]
		if !ok {
			return errorResult(fmt.Sprintf("Unknown case %q (expected snake, kebab, camel, or upper_camel)", name)), nil
		}
		text = convert(text)
	}
	if getBoolArg(args, "uppercase", false) {
		text = strings.ToUpper(text)
	}
	return textResult(getStringArg(args, "prefix") + text + getStringArg(args, "suffix")), nil
}

func (s *MCPServer) handleProcessItems(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	raw, ok := args["items"]
	if !ok || raw == nil {
		return missingArg("items"), nil
	}
	list, ok := raw.([]any)
	if !ok {
		return errorResult(`Argument "items" must be a list of strings`), nil
	}
	values := make([]string, 0, len(list))
	for i, item := range list {
		str, ok := item.(string)
		if !ok {
			return errorResult(fmt.Sprintf("Item %d must be a string", i)), nil
		}
		values = append(values, str)
	}

	options, _ := args["options"].(map[string]any)
	return jsonResult(items.Transform(values, items.ParseOptions(options))), nil
}

type divideResult struct {
	Success bool         `json:"success"`
	Result  *calc.Number `json:"result,omitempty"`
	Error   string       `json:"error,omitempty"`
}

func (s *MCPServer) handleDivide(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	numerator, errRes := requireNumberArg(args, "numerator")
	if errRes != nil {
		return errRes, nil
	}
	denominator, errRes := requireNumberArg(args, "denominator")
	if errRes != nil {
		return errRes, nil
	}

	if denominator == 0 {
		return jsonResult(divideResult{Error: ReasonDivideByZero}), nil
	}
	quotient := numerator / denominator
	if math.IsInf(quotient, 0) || math.IsNaN(quotient) {
		return jsonResult(divideResult{Error: calc.ErrOutOfRange.Error()}), nil
	}
	v := calc.Float(quotient)
	return jsonResult(divideResult{Success: true, Result: &v}), nil
}

func (s *MCPServer) handleCalculate(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	expression, errRes := requireStringArg(request.GetArguments(), "expression")
	if errRes != nil {
		return errRes, nil
	}
	return jsonResult(calc.Evaluate(expression)), nil
}

func (s *MCPServer) handleGreetUser(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	raw, ok := request.GetArguments()["user"]
	if !ok || raw == nil {
		return missingArg("user"), nil
	}
	user, ok := raw.(map[string]any)
	if !ok {
		return errorResult(`Argument "user" must be an object with userSid and name`), nil
	}
	sid, errRes := requireStringArg(user, "userSid")
	if errRes != nil {
		return errRes, nil
	}
	name, errRes := requireStringArg(user, "name")
	if errRes != nil {
		return errRes, nil
	}

	logger := logging.FromContext(ctx, s.logger)
	logger.Info().Str("user_sid", sid).Str("name", name).Msg("greeting user")
	return textResult(fmt.Sprintf("Hello %s (%s)", name, sid)), nil
}
