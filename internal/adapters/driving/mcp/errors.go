// Package mcp provides an MCP (Model Context Protocol) server adapter for ragent.
// It exposes the tool registry, grounded question answering and the agent
// loop to MCP clients such as Claude Desktop.
package mcp

import "errors"

// ErrMissingToolService is returned when the tool service is not provided.
var ErrMissingToolService = errors.New("mcp: tool service is required")
