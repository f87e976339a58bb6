package mcp_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/loomware/agentcore/pkg/aierrors"
	"github.com/loomware/agentcore/pkg/agent"
	"github.com/loomware/agentcore/pkg/convo"
	"github.com/loomware/agentcore/pkg/mcp"
	"github.com/loomware/agentcore/pkg/testutil"
	"github.com/loomware/agentcore/pkg/tool"
)

// remoteCalcServer is a minimal Streamable HTTP MCP server exposing a
// single "add" tool, standing in for a real MCP server an agent run would
// reach over the network.
func remoteCalcServer(t *testing.T) *httptest.Server {
	t.Helper()
	const sessionID = "wiring-sess"

	mux := http.NewServeMux()
	mux.HandleFunc("/mcp", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodDelete, http.MethodGet:
			w.WriteHeader(http.StatusOK)
			return
		}

		var req mcp.MCPMessage
		_ = json.NewDecoder(r.Body).Decode(&req)
		w.Header().Set("Content-Type", "application/json")

		switch req.Method {
		case "initialize":
			result := mcp.InitializeResult{
				ProtocolVersion: mcp.ProtocolVersion20250618,
				ServerInfo:      mcp.ServerInfo{Name: "calc-server", Version: "1.0.0"},
			}
			resultBytes, _ := json.Marshal(result)
			w.Header().Set("Mcp-Session-Id", sessionID)
			_ = json.NewEncoder(w).Encode(mcp.MCPMessage{JSONRpc: "2.0", ID: req.ID, Result: resultBytes})

		case "tools/list":
			result := mcp.ListToolsResult{Tools: []mcp.MCPTool{{
				Name:        "add",
				Description: "add two numbers",
				InputSchema: map[string]any{"type": "object"},
			}}}
			resultBytes, _ := json.Marshal(result)
			_ = json.NewEncoder(w).Encode(mcp.MCPMessage{JSONRpc: "2.0", ID: req.ID, Result: resultBytes})

		case "tools/call":
			var params mcp.CallToolParams
			_ = json.Unmarshal(req.Params, &params)
			a, _ := params.Arguments["a"].(float64)
			b, _ := params.Arguments["b"].(float64)
			result := mcp.CallToolResult{Content: []mcp.ToolResultContent{
				{Type: "text", Text: "sum is " + sumText(a+b)},
			}}
			resultBytes, _ := json.Marshal(result)
			_ = json.NewEncoder(w).Encode(mcp.MCPMessage{JSONRpc: "2.0", ID: req.ID, Result: resultBytes})

		default:
			w.WriteHeader(http.StatusOK)
		}
	})

	return httptest.NewServer(mux)
}

// sumText renders a whole-number float as plain digits, avoiding a
// strconv/fmt dependency for what the test server needs to echo back.
func sumText(sum float64) string {
	n := int(sum)
	if n == 0 {
		return "0"
	}
	neg := n < 0
	if neg {
		n = -n
	}
	var digits []byte
	for n > 0 {
		digits = append([]byte{byte('0' + n%10)}, digits...)
		n /= 10
	}
	if neg {
		return "-" + string(digits)
	}
	return string(digits)
}

// TestToolBridgeComposesLocalAndMCPToolsInAgentLoop drives a full agent.Loop
// run where Config.Tools is a mcp.ToolBridge: the model calls a tool that
// only the bridged MCP server exposes, alongside a local tool registered on
// the same bridge, exercising local and MCP tools listed through one Source
// end-to-end rather than against ToolBridge in isolation. The two tool
// names do not collide, so local precedence is not exercised here.
func TestToolBridgeComposesLocalAndMCPToolsInAgentLoop(t *testing.T) {
	server := remoteCalcServer(t)
	defer server.Close()

	transport := mcp.NewHTTPTransport(mcp.HTTPTransportConfig{URL: server.URL + "/mcp"})
	client := mcp.NewMCPClient(transport, mcp.MCPClientConfig{ClientName: "wiring-test"})
	require.NoError(t, client.Connect(context.Background()))
	defer client.Close()

	local := tool.NewRegistry()
	require.Nil(t, local.Register(tool.Definition{
		Name:        "greet",
		Description: "greet the caller",
		Schema:      tool.Object(nil, nil, "greet the caller"),
		Handler: func(ctx context.Context, args map[string]any) (any, error) {
			return "hello", nil
		},
	}))

	bridge := mcp.NewToolBridge(local, client, 0)
	names := bridge.Names()
	assert.Contains(t, names, "greet")
	assert.Contains(t, names, "add")

	calls := 0
	llm := &testutil.MockClient{
		CompleteFunc: func(ctx context.Context, conv convo.Conversation, opts convo.CompletionOptions) aierrors.Result[convo.Completion] {
			calls++
			if calls == 1 {
				return aierrors.Ok(convo.Completion{
					ToolCalls: []convo.ToolCall{
						{ID: "call-1", Name: "add", Arguments: map[string]any{"a": float64(2), "b": float64(3)}},
					},
					FinishReason: convo.FinishToolCalls,
				})
			}
			return aierrors.Ok(convo.Completion{Content: "done", FinishReason: convo.FinishStop})
		},
	}

	loop := agent.New(agent.Config{Client: llm, Tools: bridge})

	result := loop.Run(context.Background(), "add 2 and 3")
	require.True(t, result.IsOk())
	state := result.Value()
	assert.Equal(t, agent.StatusDone, state.Status)
	assert.Equal(t, "done", state.FinalText)

	var toolMsg convo.ToolMessage
	for _, m := range state.Conversation.Messages {
		if tm, ok := m.(convo.ToolMessage); ok {
			toolMsg = tm
		}
	}
	assert.Equal(t, "sum is 5", toolMsg.Content)
}
