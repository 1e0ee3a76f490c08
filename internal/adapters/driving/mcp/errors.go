// Package mcp provides an MCP (Model Context Protocol) server adapter for docgap.
// It lets AI assistants analyse release notes against the help center,
// list documentation gaps and read articles.
package mcp

import "errors"

// ErrMissingAnalysisService is returned when the analysis service is not provided.
var ErrMissingAnalysisService = errors.New("mcp: analysis service is required")
