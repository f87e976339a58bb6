package mcp

import (
	"strconv"

	"github.com/loomware/agentcore/pkg/aierrors"
)

// mapJSONRPCError classifies a JSON-RPC error response into the aierrors
// taxonomy, per §4.5's code table. Recognized MCP/JSON-RPC codes map to a
// dedicated KindMCP constructor; anything else falls back to a generic
// server error carrying the original code and message so callers still see
// what the server actually sent.
func mapJSONRPCError(e *MCPError) *aierrors.Error {
	switch e.Code {
	case ErrorCodeServerError:
		return aierrors.NewMCPServerError(e.Message)
	case ErrorCodeToolNotFound:
		return aierrors.NewMCPToolNotFound(e.Message)
	case ErrorCodeMethodNotFound:
		return aierrors.NewMCPMethodNotFound(e.Message)
	case ErrorCodeInvalidParams:
		return aierrors.NewMCPInvalidParams(e.Message)
	default:
		return aierrors.NewMCPServerError(e.Message).WithContext("jsonrpcCode", strconv.Itoa(e.Code))
	}
}
