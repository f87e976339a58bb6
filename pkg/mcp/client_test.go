package mcp

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/loomware/agentcore/pkg/aierrors"
)

// mockTransport implements Transport for testing the JSON-RPC call/response
// plumbing without a real server.
type mockTransport struct {
	messages  chan *MCPMessage
	connected bool
}

func newMockTransport() *mockTransport {
	return &mockTransport{messages: make(chan *MCPMessage, 10)}
}

func (m *mockTransport) Connect(ctx context.Context) error {
	m.connected = true
	return nil
}

func (m *mockTransport) Close() error {
	m.connected = false
	if m.messages != nil {
		close(m.messages)
	}
	return nil
}

func (m *mockTransport) IsConnected() bool { return m.connected }

func (m *mockTransport) Send(ctx context.Context, msg *MCPMessage) error {
	switch msg.Method {
	case "tools/list":
		result := ListToolsResult{
			Tools: []MCPTool{
				{
					Name:        "test-tool",
					Description: "A test tool",
					InputSchema: map[string]interface{}{
						"type": "object",
						"properties": map[string]interface{}{
							"input": map[string]interface{}{"type": "string"},
						},
					},
				},
			},
			NextCursor: "next-page-cursor",
		}
		resultBytes, _ := json.Marshal(result)
		m.reply(msg.ID, resultBytes, nil)

	case "initialize":
		result := InitializeResult{
			ProtocolVersion: ProtocolVersion20250618,
			ServerInfo:      ServerInfo{Name: "test-server", Version: "1.0.0"},
			Capabilities:    ServerCapabilities{Tools: &ToolsCapability{}},
		}
		resultBytes, _ := json.Marshal(result)
		m.reply(msg.ID, resultBytes, nil)

	case "tools/call":
		result := CallToolResult{Content: []ToolResultContent{{Type: "text", Text: "ok"}}}
		resultBytes, _ := json.Marshal(result)
		m.reply(msg.ID, resultBytes, nil)
	}

	return nil
}

func (m *mockTransport) reply(id interface{}, result json.RawMessage, rpcErr *MCPError) {
	response := &MCPMessage{JSONRpc: "2.0", ID: id, Result: result, Error: rpcErr}
	select {
	case m.messages <- response:
	default:
	}
}

func (m *mockTransport) Receive(ctx context.Context) (*MCPMessage, error) {
	select {
	case msg, ok := <-m.messages:
		if !ok {
			return nil, context.Canceled
		}
		return msg, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func newConnectedTestClient(t *testing.T) *MCPClient {
	t.Helper()
	transport := newMockTransport()
	client := NewMCPClient(transport, MCPClientConfig{ClientName: "test-client", ClientVersion: "1.0.0"})
	require.NoError(t, client.Connect(context.Background()))
	t.Cleanup(func() { client.Close() })
	return client
}

func TestConnectNegotiatesProtocolVersionOverNonHTTPTransport(t *testing.T) {
	client := newConnectedTestClient(t)
	assert.Equal(t, ProtocolVersion20250618, client.Session().ProtocolVersion)
}

func TestListTools(t *testing.T) {
	client := newConnectedTestClient(t)

	tools, err := client.ListTools(context.Background())
	require.NoError(t, err)
	require.Len(t, tools, 1)
	assert.Equal(t, "test-tool", tools[0].Name)
	assert.Equal(t, "A test tool", tools[0].Description)
}

func TestListToolsNotInitialized(t *testing.T) {
	transport := newMockTransport()
	client := NewMCPClient(transport, MCPClientConfig{ClientName: "test-client"})

	_, err := client.ListTools(context.Background())
	require.Error(t, err)
	assert.Equal(t, "client not initialized", err.Error())
}

func TestCallTool(t *testing.T) {
	client := newConnectedTestClient(t)

	result, err := client.CallTool(context.Background(), "test-tool", map[string]interface{}{"input": "hi"})
	require.NoError(t, err)
	require.Len(t, result.Content, 1)
	assert.Equal(t, "ok", result.Content[0].Text)
}

func TestGetErrorMapsJSONRPCErrorCodes(t *testing.T) {
	msg := &MCPMessage{Error: &MCPError{Code: ErrorCodeToolNotFound, Message: "no such tool"}}
	err := GetError(msg)

	var aerr *aierrors.Error
	require.ErrorAs(t, err, &aerr)
	assert.Equal(t, aierrors.KindMCP, aerr.Kind)
}

func TestGetErrorServerErrorCode(t *testing.T) {
	msg := &MCPMessage{Error: &MCPError{Code: ErrorCodeServerError, Message: "boom"}}
	err := GetError(msg)

	var aerr *aierrors.Error
	require.ErrorAs(t, err, &aerr)
	assert.Equal(t, aierrors.KindMCP, aerr.Kind)
	assert.Contains(t, aerr.Error(), "boom")
}

// streamableHTTPServer simulates a 2025-06-18 Streamable HTTP MCP server: a
// single /mcp endpoint, a session id minted on initialize and required on
// every later request, and DELETE to tear the session down.
func streamableHTTPServer(t *testing.T) *httptest.Server {
	t.Helper()
	const sessionID = "sess-123"
	var gotSessionID bool

	mux := http.NewServeMux()
	mux.HandleFunc("/mcp", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodDelete:
			assert.Equal(t, sessionID, r.Header.Get("Mcp-Session-Id"))
			w.WriteHeader(http.StatusOK)
			return
		case http.MethodGet:
			// No server-initiated notifications to push in this test.
			w.Header().Set("Content-Type", "text/event-stream")
			w.WriteHeader(http.StatusOK)
			return
		}

		var req MCPMessage
		_ = json.NewDecoder(r.Body).Decode(&req)

		if req.Method == "initialize" {
			result := InitializeResult{
				ProtocolVersion: ProtocolVersion20250618,
				ServerInfo:      ServerInfo{Name: "streamable-server", Version: "1.0.0"},
			}
			resultBytes, _ := json.Marshal(result)
			w.Header().Set("Mcp-Session-Id", sessionID)
			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(MCPMessage{JSONRpc: "2.0", ID: req.ID, Result: resultBytes})
			return
		}

		if r.Header.Get("Mcp-Session-Id") == sessionID {
			gotSessionID = true
		}

		if req.Method == "tools/list" {
			result := ListToolsResult{Tools: []MCPTool{{Name: "remote-tool"}}}
			resultBytes, _ := json.Marshal(result)
			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(MCPMessage{JSONRpc: "2.0", ID: req.ID, Result: resultBytes})
			return
		}

		w.WriteHeader(http.StatusOK)
	})

	server := httptest.NewServer(mux)
	t.Cleanup(func() { assert.True(t, gotSessionID, "expected a later request to echo the session id") })
	return server
}

func TestConnectNegotiatesStreamableHTTP(t *testing.T) {
	server := streamableHTTPServer(t)
	defer server.Close()

	transport := NewHTTPTransport(HTTPTransportConfig{URL: server.URL + "/mcp"})
	client := NewMCPClient(transport, MCPClientConfig{ClientName: "test-client"})

	require.NoError(t, client.Connect(context.Background()))
	defer client.Close()

	assert.Equal(t, ProtocolVersion20250618, client.Session().ProtocolVersion)
	assert.NotEmpty(t, client.Session().ID)

	tools, err := client.ListTools(context.Background())
	require.NoError(t, err)
	require.Len(t, tools, 1)
	assert.Equal(t, "remote-tool", tools[0].Name)
}

func TestConnectFallsBackToPlainJSONRPCWhenStreamableHTTPUnsupported(t *testing.T) {
	var sawProtocolVersions []string

	mux := http.NewServeMux()
	mux.HandleFunc("/mcp", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusNotFound)
			return
		}

		var req MCPMessage
		_ = json.NewDecoder(r.Body).Decode(&req)

		if req.Method == "initialize" {
			var params InitializeParams
			_ = json.Unmarshal(req.Params, &params)
			sawProtocolVersions = append(sawProtocolVersions, params.ProtocolVersion)

			// Reject every version newer than the legacy plain JSON-RPC one.
			if params.ProtocolVersion != ProtocolVersion20241105 {
				w.Header().Set("Content-Type", "application/json")
				_ = json.NewEncoder(w).Encode(MCPMessage{
					JSONRpc: "2.0",
					ID:      req.ID,
					Error:   &MCPError{Code: ErrorCodeInvalidParams, Message: "unsupported protocol version"},
				})
				return
			}

			result := InitializeResult{ProtocolVersion: ProtocolVersion20241105, ServerInfo: ServerInfo{Name: "legacy-server"}}
			resultBytes, _ := json.Marshal(result)
			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(MCPMessage{JSONRpc: "2.0", ID: req.ID, Result: resultBytes})
			return
		}

		w.WriteHeader(http.StatusOK)
	})

	server := httptest.NewServer(mux)
	defer server.Close()

	transport := NewHTTPTransport(HTTPTransportConfig{URL: server.URL + "/mcp"})
	client := NewMCPClient(transport, MCPClientConfig{ClientName: "test-client"})

	require.NoError(t, client.Connect(context.Background()))
	defer client.Close()

	assert.Equal(t, ProtocolVersion20241105, client.Session().ProtocolVersion)
	assert.Equal(t, []string{ProtocolVersion20250618, ProtocolVersion20250326, ProtocolVersion20241105}, sawProtocolVersions)
}
