package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/loomware/agentcore/internal/httpx"
	"github.com/loomware/agentcore/pkg/aierrors"
)

// HTTPTransport implements the Transport interface for HTTP-based
// communication. Its wire shape is governed by Mode, set by client.go's
// fallback negotiation before Connect is called: Streamable HTTP speaks a
// single /mcp endpoint with a server-issued session id and an optional SSE
// listen stream; the legacy variant drops the SSE stream; plain JSON-RPC
// drops both the session id and the stream, falling back to one POST per
// call against the same endpoint (the teacher's original shape).
type HTTPTransport struct {
	url  string
	mode TransportMode

	client *http.Client

	receiveMu    sync.Mutex
	receiveQueue []*MCPMessage

	connected bool
	mu        sync.Mutex

	sessionMu sync.RWMutex
	sessionID string

	sseCancel context.CancelFunc

	config TransportConfig
	oauth  *OAuthConfig
}

// HTTPTransportConfig contains configuration for HTTP transport
type HTTPTransportConfig struct {
	URL       string
	TimeoutMS int
	OAuth     *OAuthConfig
	Config    TransportConfig
}

// OAuthConfig contains OAuth configuration
type OAuthConfig struct {
	TokenURL     string
	ClientID     string
	ClientSecret string
	Scopes       []string
	AccessToken  string
	RefreshToken string
	ExpiresAt    time.Time
}

// NewHTTPTransport creates a new HTTP transport. It starts in
// TransportModeStreamableHTTP; client.go's connectHTTPWithFallback steps
// setMode down through the fallback sequence if negotiation at a richer
// mode fails.
func NewHTTPTransport(config HTTPTransportConfig) *HTTPTransport {
	timeout := time.Duration(config.TimeoutMS) * time.Millisecond
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	return &HTTPTransport{
		url:          config.URL,
		mode:         TransportModeStreamableHTTP,
		client:       &http.Client{Timeout: timeout},
		receiveQueue: make([]*MCPMessage, 0),
		config:       config.Config,
		oauth:        config.OAuth,
	}
}

// setMode selects the wire shape for the next Connect. Only valid before
// Connect is called; client.go only calls it between fallback attempts,
// each of which tears the transport back down via Close first.
func (t *HTTPTransport) setMode(mode TransportMode) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.mode = mode
}

// Connect establishes a connection to the HTTP server. For Streamable HTTP
// it also opens the optional GET /mcp SSE listen stream for server-pushed
// notifications; plain JSON-RPC and the legacy Streamable HTTP shape skip
// it.
func (t *HTTPTransport) Connect(ctx context.Context) error {
	t.mu.Lock()
	if t.connected {
		t.mu.Unlock()
		return fmt.Errorf("already connected")
	}
	mode := t.mode
	t.mu.Unlock()

	if t.oauth != nil && t.oauth.AccessToken == "" {
		if err := t.refreshOAuthToken(ctx); err != nil {
			return aierrors.NewMCPTransportError("failed to get OAuth token", err)
		}
	}

	t.mu.Lock()
	t.connected = true
	t.mu.Unlock()

	if mode == TransportModeStreamableHTTP {
		t.startSSEStream()
	}

	return nil
}

// Close closes the connection. For a Streamable HTTP session that was
// actually issued a session id, it also terminates the session
// server-side via DELETE /mcp per §4.5, and stops the SSE listen stream.
func (t *HTTPTransport) Close() error {
	t.mu.Lock()
	t.connected = false
	t.mu.Unlock()

	if t.sseCancel != nil {
		t.sseCancel()
		t.sseCancel = nil
	}

	sessionID := t.SessionID()
	if sessionID == "" {
		return nil
	}

	req, err := http.NewRequest(http.MethodDelete, t.url, nil)
	if err != nil {
		return nil
	}
	req.Header.Set("Mcp-Session-Id", sessionID)
	resp, err := t.client.Do(req)
	if err != nil {
		return nil
	}
	resp.Body.Close()
	return nil
}

// SessionID returns the session id captured from the server's initialize
// response, or "" if none was issued (plain JSON-RPC mode, or a legacy
// server that doesn't use sessions).
func (t *HTTPTransport) SessionID() string {
	t.sessionMu.RLock()
	defer t.sessionMu.RUnlock()
	return t.sessionID
}

// Send sends a message to the MCP server over the mode's wire shape.
func (t *HTTPTransport) Send(ctx context.Context, message *MCPMessage) error {
	t.mu.Lock()
	connected := t.connected
	mode := t.mode
	t.mu.Unlock()

	if !connected {
		return aierrors.NewMCPTransportError("not connected", nil)
	}

	data, err := json.Marshal(message)
	if err != nil {
		return aierrors.NewMCPTransportError("failed to marshal message", err)
	}

	if t.config.EnableLogging {
		fmt.Printf("MCP HTTP Send: %s\n", string(data))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.url, bytes.NewReader(data))
	if err != nil {
		return aierrors.NewMCPTransportError("failed to create request", err)
	}

	req.Header.Set("Content-Type", "application/json")
	if mode != TransportModePlainJSONRPC {
		req.Header.Set("Accept", "application/json, text/event-stream")
		req.Header.Set("MCP-Protocol-Version", ProtocolVersion20250618)
	} else {
		req.Header.Set("Accept", "application/json")
	}
	if sessionID := t.SessionID(); sessionID != "" {
		req.Header.Set("Mcp-Session-Id", sessionID)
	}
	for k, v := range t.config.Headers {
		req.Header.Set(k, v)
	}

	if t.oauth != nil && t.oauth.AccessToken != "" {
		if time.Now().After(t.oauth.ExpiresAt) {
			if err := t.refreshOAuthToken(ctx); err != nil {
				return aierrors.NewMCPTransportError("failed to refresh OAuth token", err)
			}
		}
		req.Header.Set("Authorization", "Bearer "+t.oauth.AccessToken)
	}

	resp, err := t.client.Do(req)
	if err != nil {
		return aierrors.NewMCPTransportError("failed to send request", err)
	}
	defer resp.Body.Close()

	if sessionID := resp.Header.Get("Mcp-Session-Id"); sessionID != "" {
		t.sessionMu.Lock()
		t.sessionID = sessionID
		t.sessionMu.Unlock()
	}

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusAccepted {
		body, _ := io.ReadAll(resp.Body)
		return aierrors.NewMCPTransportError(fmt.Sprintf("HTTP error %d: %s", resp.StatusCode, string(body)), nil)
	}

	return t.consumeResponse(resp)
}

// consumeResponse decodes a POST /mcp response body, which per mode is
// either a single JSON object or a short-lived SSE stream carrying one or
// more JSON-RPC messages, and queues every message it finds for Receive.
func (t *HTTPTransport) consumeResponse(resp *http.Response) error {
	contentType := resp.Header.Get("Content-Type")

	if isEventStream(contentType) {
		parser := httpx.NewSSEParser(resp.Body)
		for {
			event, err := parser.Next()
			if err != nil {
				if err == io.EOF {
					return nil
				}
				return aierrors.NewMCPTransportError("failed to read event stream", err)
			}
			if event.Data == "" {
				continue
			}
			var msg MCPMessage
			if err := json.Unmarshal([]byte(event.Data), &msg); err != nil {
				return aierrors.NewMCPTransportError("failed to unmarshal event", err)
			}
			t.enqueue(&msg)
		}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return aierrors.NewMCPTransportError("failed to read response", err)
	}
	if len(body) == 0 {
		return nil
	}

	if t.config.EnableLogging {
		fmt.Printf("MCP HTTP Receive: %s\n", string(body))
	}

	var responseMsg MCPMessage
	if err := json.Unmarshal(body, &responseMsg); err != nil {
		return aierrors.NewMCPTransportError("failed to unmarshal response", err)
	}
	t.enqueue(&responseMsg)
	return nil
}

func isEventStream(contentType string) bool {
	return strings.Contains(contentType, "text/event-stream")
}

func (t *HTTPTransport) enqueue(msg *MCPMessage) {
	t.receiveMu.Lock()
	t.receiveQueue = append(t.receiveQueue, msg)
	t.receiveMu.Unlock()
}

// startSSEStream opens a long-lived GET /mcp request with
// Accept: text/event-stream to receive server-initiated notifications
// (tool list changes, logging messages) outside of a request/response
// exchange. Grounded on internal/httpx.NewSSEParser, the same parser every
// provider client's StreamComplete uses for its own SSE stream.
func (t *HTTPTransport) startSSEStream() {
	ctx, cancel := context.WithCancel(context.Background())
	t.sseCancel = cancel

	go func() {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, t.url, nil)
		if err != nil {
			return
		}
		req.Header.Set("Accept", "text/event-stream")
		req.Header.Set("MCP-Protocol-Version", ProtocolVersion20250618)
		if sessionID := t.SessionID(); sessionID != "" {
			req.Header.Set("Mcp-Session-Id", sessionID)
		}

		resp, err := t.client.Do(req)
		if err != nil {
			return
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			return
		}

		parser := httpx.NewSSEParser(resp.Body)
		for {
			select {
			case <-ctx.Done():
				return
			default:
			}
			event, err := parser.Next()
			if err != nil {
				return
			}
			if event.Data == "" {
				continue
			}
			var msg MCPMessage
			if err := json.Unmarshal([]byte(event.Data), &msg); err != nil {
				continue
			}
			t.enqueue(&msg)
		}
	}()
}

// Receive receives a message from the MCP server. In HTTP transport,
// messages are queued by Send's response handling and by the SSE listen
// stream.
func (t *HTTPTransport) Receive(ctx context.Context) (*MCPMessage, error) {
	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		t.receiveMu.Lock()
		if len(t.receiveQueue) > 0 {
			msg := t.receiveQueue[0]
			t.receiveQueue = t.receiveQueue[1:]
			t.receiveMu.Unlock()
			return msg, nil
		}
		t.receiveMu.Unlock()

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(10 * time.Millisecond):
		}
	}
}

// IsConnected returns true if the transport is connected
func (t *HTTPTransport) IsConnected() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.connected
}

// refreshOAuthToken refreshes the OAuth access token. Left unimplemented
// beyond the manual SetAccessToken path: wiring a token refresh flow needs
// golang.org/x/oauth2, which nothing else in this module pulls in, so it
// isn't worth adding for one call site.
func (t *HTTPTransport) refreshOAuthToken(ctx context.Context) error {
	if t.oauth == nil {
		return fmt.Errorf("OAuth not configured")
	}
	return fmt.Errorf("OAuth refresh not yet implemented - please provide access token manually")
}

// SetAccessToken sets the OAuth access token manually
func (t *HTTPTransport) SetAccessToken(token string, expiresIn time.Duration) {
	if t.oauth != nil {
		t.oauth.AccessToken = token
		t.oauth.ExpiresAt = time.Now().Add(expiresIn)
	}
}
