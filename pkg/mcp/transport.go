package mcp

import (
	"context"
)

// TransportMode distinguishes the wire shape an HTTPTransport speaks, set by
// the fallback negotiation in client.go's connectHTTPWithFallback.
type TransportMode int

const (
	// TransportModeStreamableHTTP is the 2025-06-18 shape: a single /mcp
	// endpoint, a server-issued Mcp-Session-Id echoed on every subsequent
	// request, and an optional GET /mcp SSE stream for server-initiated
	// messages.
	TransportModeStreamableHTTP TransportMode = iota
	// TransportModeStreamableHTTPLegacy is the 2025-03-26 shape: the same
	// single endpoint and session header, without the SSE GET stream.
	TransportModeStreamableHTTPLegacy
	// TransportModePlainJSONRPC is the 2024-11-05 shape: one POST per call,
	// no session id, no SSE.
	TransportModePlainJSONRPC
)

// Transport defines the interface for MCP transport mechanisms
// Transports handle the low-level communication with MCP servers
type Transport interface {
	// Connect establishes a connection to the MCP server
	Connect(ctx context.Context) error

	// Close closes the connection to the MCP server
	Close() error

	// Send sends a message to the MCP server
	Send(ctx context.Context, message *MCPMessage) error

	// Receive receives a message from the MCP server
	// Returns io.EOF when the connection is closed
	Receive(ctx context.Context) (*MCPMessage, error)

	// IsConnected returns true if the transport is connected
	IsConnected() bool
}

// TransportConfig contains common configuration for all transports
type TransportConfig struct {
	// Timeout for operations (optional)
	TimeoutMS int

	// Headers for HTTP-based transports
	Headers map[string]string

	// EnableLogging enables transport-level logging
	EnableLogging bool
}
