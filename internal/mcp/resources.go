package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// Resource URIs.
const (
	URIServerInfo         = "server://info"
	URIServerCapabilities = "server://capabilities"
	URIServerStatus       = "server://status"
	URIGettingStarted     = "docs://getting-started"
	URISchemaTemplate     = "data://schema/{schema_name}"
	schemaURIPrefix       = "data://schema/"
)

const notConfigured = "Not configured"

func (s *MCPServer) registerResources() {
	s.addResource(
		mcp.NewResource(URIServerInfo, "Server information",
			mcp.WithResourceDescription("Basic server metadata: name, version, and configuration"),
			mcp.WithMIMEType("text/plain"),
		),
		s.handleResourceInfo,
	)
	s.addResource(
		mcp.NewResource(URIServerCapabilities, "Server capabilities",
			mcp.WithResourceDescription("The tools, resources, and prompts this server provides"),
			mcp.WithMIMEType("text/plain"),
		),
		s.handleResourceCapabilities,
	)
	s.addResource(
		mcp.NewResource(URIServerStatus, "Server status",
			mcp.WithResourceDescription("Current server status snapshot"),
			mcp.WithMIMEType("application/json"),
		),
		s.handleResourceStatus,
	)
	s.addResource(
		mcp.NewResource(URIGettingStarted, "Getting started",
			mcp.WithResourceDescription("Guide to using this MCP server"),
			mcp.WithMIMEType("text/markdown"),
		),
		s.handleResourceGettingStarted,
	)

	s.mcpServer.AddResourceTemplate(
		mcp.NewResourceTemplate(URISchemaTemplate, "Data schema",
			mcp.WithTemplateDescription(fmt.Sprintf("JSON schema for a data type (%s)", strings.Join(s.schemas.Names(), ", "))),
			mcp.WithTemplateMIMEType("application/json"),
		),
		s.handleResourceSchema,
	)
	s.resources = append(s.resources, catalogEntry{Name: URISchemaTemplate, Description: "Get schema for a data type"})
}

func (s *MCPServer) addResource(resource mcp.Resource, handler server.ResourceHandlerFunc) {
	s.mcpServer.AddResource(resource, handler)
	s.resources = append(s.resources, catalogEntry{Name: resource.URI, Description: resource.Name})
}

func textContents(uri, mimeType, text string) []mcp.ResourceContents {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      uri,
			MIMEType: mimeType,
			Text:     text,
		},
	}
}

func marshalToResourceContents(uri string, v any) ([]mcp.ResourceContents, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal: %w", err)
	}
	return textContents(uri, "application/json", string(data)), nil
}

func orNotConfigured(v string) string {
	if v == "" {
		return notConfigured
	}
	return v
}

func (s *MCPServer) handleResourceInfo(_ context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	var b strings.Builder
	b.WriteString("Marketing Connect MCP Server Information\n")
	b.WriteString("========================================\n")
	fmt.Fprintf(&b, "Name: %s\n", s.settings.ServerName)
	fmt.Fprintf(&b, "Version: %s\n", s.settings.ServerVersion)
	fmt.Fprintf(&b, "Debug Mode: %t\n", s.settings.Debug)
	fmt.Fprintf(&b, "Base URL: %s\n", orNotConfigured(s.settings.BaseURL))
	fmt.Fprintf(&b, "Region: %s\n", orNotConfigured(s.settings.Region))
	b.WriteString("\nThis is the Marketing Connect MCP server for AI integrations.\n")
	return textContents(request.Params.URI, "text/plain", b.String()), nil
}

func (s *MCPServer) handleResourceCapabilities(_ context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	var b strings.Builder
	b.WriteString("Server Capabilities\n")
	b.WriteString("===================\n")

	b.WriteString("\nTOOLS AVAILABLE:\n")
	for _, t := range s.tools {
		fmt.Fprintf(&b, "- %s: %s\n", t.Tool.Name, firstSentence(t.Tool.Description))
	}
	b.WriteString("\nRESOURCES AVAILABLE:\n")
	for _, r := range s.resources {
		fmt.Fprintf(&b, "- %s: %s\n", r.Name, r.Description)
	}
	b.WriteString("\nPROMPTS AVAILABLE:\n")
	for _, p := range s.prompts {
		fmt.Fprintf(&b, "- %s: %s\n", p.Name, p.Description)
	}
	return textContents(request.Params.URI, "text/plain", b.String()), nil
}

type statusConfig struct {
	BaseURL string `json:"base_url"`
	Region  string `json:"region"`
	Debug   bool   `json:"debug"`
}

type serverStatus struct {
	Status    string       `json:"status"`
	Timestamp string       `json:"timestamp"`
	Server    string       `json:"server"`
	Version   string       `json:"version"`
	Config    statusConfig `json:"config"`
}

func (s *MCPServer) handleResourceStatus(_ context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return marshalToResourceContents(request.Params.URI, serverStatus{
		Status:    "healthy",
		Timestamp: s.now().UTC().Format(time.RFC3339),
		Server:    s.settings.ServerName,
		Version:   s.settings.ServerVersion,
		Config: statusConfig{
			BaseURL: s.settings.BaseURL,
			Region:  s.settings.Region,
			Debug:   s.settings.Debug,
		},
	})
}

// handleResourceSchema serves a known schema as JSON and a plain text message
// listing the available names otherwise.
func (s *MCPServer) handleResourceSchema(_ context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	uri := request.Params.URI
	name, ok := strings.CutPrefix(uri, schemaURIPrefix)
	if !ok || name == "" {
		return nil, fmt.Errorf("schema name required in %q", uri)
	}

	if _, found := s.schemas.Get(name); !found {
		return textContents(uri, "text/plain", s.schemas.NotFoundMessage(name)), nil
	}
	body, err := s.schemas.JSON(name)
	if err != nil {
		return nil, err
	}
	return textContents(uri, "application/json", body), nil
}

func (s *MCPServer) handleResourceGettingStarted(_ context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return textContents(request.Params.URI, "text/markdown", gettingStarted), nil
}

func firstSentence(text string) string {
	if i := strings.Index(text, ". "); i >= 0 {
		return text[:i]
	}
	return strings.TrimSuffix(text, ".")
}

const gettingStarted = `# Getting Started with Marketing Connect MCP Server

This is the Marketing Connect MCP server for AI integrations.

## Available Tools

### echo
Simply echoes back your message. Good for testing.
Example: echo(message="Hello!")

### format_text
Formats text with options like case conversion, uppercase, prefix, suffix.
Example: format_text(text="hello", uppercase=true, prefix=">>> ")

### process_items
Reverses and/or limits a list of strings.
Example: process_items(items=["a", "b", "c"], options={"reverse": true, "limit": 2})

### divide
Divides two numbers, reporting division by zero in the result.
Example: divide(numerator=10, denominator=4)

### calculate
Evaluates mathematical expressions safely.
Example: calculate(expression="2 + 3 * 4")

### greet_user
Greets a user by name and user SID.
Example: greet_user(user={"userSid": "S-1", "name": "Ada"})

## Available Resources

- server://info - Basic server info
- server://capabilities - Tools, resources, and prompts
- server://status - Real-time status
- data://schema/{name} - Data schemas (user, product, order)

## Tips

1. Use the calculate tool for math operations
2. Check server://status if something seems wrong
3. Read data://schema/{name} to understand data structures
`
