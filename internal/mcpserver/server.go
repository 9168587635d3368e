// Copyright 2026 The Gloss Authors
// SPDX-License-Identifier: MIT

package mcpserver

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/davetashner/gloss/internal/orchestrator"
)

// New creates a new MCP server with gloss's tools registered. Every tool is
// routed through d.
func New(version string, d orchestrator.Dispatcher) *mcp.Server {
	server := mcp.NewServer(&mcp.Implementation{
		Name:    "gloss",
		Title:   "Gloss: Selection Explainer",
		Version: version,
	}, nil)

	registerTools(server, &tools{d: d})
	return server
}

// Run creates an MCP server and runs it on the given transport.
// It blocks until the client disconnects or the context is cancelled.
func Run(ctx context.Context, version string, d orchestrator.Dispatcher, transport mcp.Transport) error {
	server := New(version, d)
	return server.Run(ctx, transport)
}
