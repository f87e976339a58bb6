package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/loomware/agentcore/pkg/aierrors"
)

// MCPClient represents an MCP client that can communicate with MCP servers
type MCPClient struct {
	transport   Transport
	idGen       *IDGenerator
	initialized bool

	pendingMu sync.RWMutex
	pending   map[interface{}]chan *MCPMessage

	serverInfo       ServerInfo
	serverCapability ServerCapabilities
	session          Session

	clientInfo ClientInfo

	ctx    context.Context
	cancel context.CancelFunc

	config MCPClientConfig
}

// MCPClientConfig contains configuration for the MCP client
type MCPClientConfig struct {
	ClientName       string
	ClientVersion    string
	RequestTimeoutMS int
	EnableLogging    bool
}

// NewMCPClient creates a new MCP client with the given transport
func NewMCPClient(transport Transport, config MCPClientConfig) *MCPClient {
	if config.ClientName == "" {
		config.ClientName = "agentcore-mcp-client"
	}
	if config.ClientVersion == "" {
		config.ClientVersion = "1.0.0"
	}
	if config.RequestTimeoutMS == 0 {
		config.RequestTimeoutMS = 30000
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &MCPClient{
		transport: transport,
		idGen:     NewIDGenerator(),
		pending:   make(map[interface{}]chan *MCPMessage),
		clientInfo: ClientInfo{
			Name:    config.ClientName,
			Version: config.ClientVersion,
		},
		ctx:    ctx,
		cancel: cancel,
		config: config,
	}
}

// httpFallbackStep is one rung of the Streamable HTTP negotiation ladder:
// a wire shape paired with the protocol version that shape was introduced
// with.
type httpFallbackStep struct {
	mode    TransportMode
	version string
}

// httpFallbackSequence implements §4.5's REDESIGN FLAG: negotiation must be
// an explicit state machine, not an exception cascade. Connect walks it in
// order — AttemptStreamableHTTP, AttemptStreamableHTTPLegacy,
// AttemptPlainJSONRPC — and FailInit is simply exhausting the list.
var httpFallbackSequence = []httpFallbackStep{
	{mode: TransportModeStreamableHTTP, version: ProtocolVersion20250618},
	{mode: TransportModeStreamableHTTPLegacy, version: ProtocolVersion20250326},
	{mode: TransportModePlainJSONRPC, version: ProtocolVersion20241105},
}

// Connect connects to the MCP server and initializes the connection. Over
// an HTTPTransport it drives the fallback state machine across
// httpFallbackSequence; any other transport (stdio) has no wire-shape
// ambiguity to negotiate and connects once at the newest protocol version.
func (c *MCPClient) Connect(ctx context.Context) error {
	if httpTransport, ok := c.transport.(*HTTPTransport); ok {
		return c.connectHTTPWithFallback(ctx, httpTransport)
	}
	return c.connectOnce(ctx, ProtocolVersion20250618)
}

func (c *MCPClient) connectHTTPWithFallback(ctx context.Context, t *HTTPTransport) error {
	var lastErr error
	for _, step := range httpFallbackSequence {
		t.setMode(step.mode)
		if err := c.connectOnce(ctx, step.version); err != nil {
			lastErr = err
			continue
		}
		return nil
	}
	return aierrors.NewMCPInvalidProtocolVersion(ProtocolVersion20250618, "").WithContext("cause", fmt.Sprint(lastErr))
}

func (c *MCPClient) connectOnce(ctx context.Context, version string) error {
	if err := c.transport.Connect(ctx); err != nil {
		return fmt.Errorf("failed to connect transport: %w", err)
	}

	go c.receiveLoop()

	if err := c.initialize(ctx, version); err != nil {
		c.transport.Close()
		return fmt.Errorf("failed to initialize: %w", err)
	}

	c.initialized = true
	return nil
}

// Close closes the connection to the MCP server
func (c *MCPClient) Close() error {
	c.cancel()

	c.pendingMu.Lock()
	for _, ch := range c.pending {
		close(ch)
	}
	c.pending = make(map[interface{}]chan *MCPMessage)
	c.pendingMu.Unlock()

	return c.transport.Close()
}

// initialize sends the initialize request to the server at the given
// protocol version and records the Session it negotiates (session id, if
// the transport captured one, plus the version the server actually
// accepted).
func (c *MCPClient) initialize(ctx context.Context, version string) error {
	params := InitializeParams{
		ProtocolVersion: version,
		Capabilities: ClientCapabilities{
			Experimental: make(map[string]interface{}),
			Roots:        &RootsCapability{ListChanged: false},
			Sampling:     &SamplingCapability{},
		},
		ClientInfo: c.clientInfo,
	}

	var result InitializeResult
	if err := c.call(ctx, "initialize", params, &result); err != nil {
		return fmt.Errorf("initialize failed: %w", err)
	}

	c.serverInfo = result.ServerInfo
	c.serverCapability = result.Capabilities

	sessionID := ""
	if httpTransport, ok := c.transport.(*HTTPTransport); ok {
		sessionID = httpTransport.SessionID()
	}
	c.session = Session{
		ID:              sessionID,
		ProtocolVersion: result.ProtocolVersion,
		CreatedAt:       currentTime(),
	}

	if err := c.notify(ctx, "notifications/initialized", nil); err != nil {
		return fmt.Errorf("failed to send initialized notification: %w", err)
	}

	return nil
}

// currentTime is a thin seam over time.Now so it reads clearly at the one
// call site that stamps Session.CreatedAt.
func currentTime() time.Time { return time.Now() }

// Session returns the negotiated protocol version and session id (the
// latter empty outside Streamable HTTP mode).
func (c *MCPClient) Session() Session { return c.session }

// ListTools lists all available tools from the MCP server
func (c *MCPClient) ListTools(ctx context.Context) ([]MCPTool, error) {
	if !c.initialized {
		return nil, fmt.Errorf("client not initialized")
	}

	var result ListToolsResult
	if err := c.call(ctx, "tools/list", ListToolsParams{}, &result); err != nil {
		return nil, fmt.Errorf("failed to list tools: %w", err)
	}

	// TODO: follow NextCursor to fetch subsequent pages.
	return result.Tools, nil
}

// CallTool calls a tool on the MCP server
func (c *MCPClient) CallTool(ctx context.Context, name string, arguments map[string]interface{}) (*CallToolResult, error) {
	if !c.initialized {
		return nil, fmt.Errorf("client not initialized")
	}

	params := CallToolParams{Name: name, Arguments: arguments}

	var result CallToolResult
	if err := c.call(ctx, "tools/call", params, &result); err != nil {
		return nil, fmt.Errorf("failed to call tool: %w", err)
	}

	return &result, nil
}

// ServerInfo returns information about the connected server
func (c *MCPClient) ServerInfo() ServerInfo { return c.serverInfo }

// ServerCapabilities returns the capabilities of the connected server
func (c *MCPClient) ServerCapabilities() ServerCapabilities { return c.serverCapability }

// call makes a JSON-RPC call and waits for the response
func (c *MCPClient) call(ctx context.Context, method string, params interface{}, result interface{}) error {
	id := c.idGen.Next()
	msg, err := CreateRequest(id, method, params)
	if err != nil {
		return err
	}

	responseCh := make(chan *MCPMessage, 1)
	c.pendingMu.Lock()
	c.pending[id] = responseCh
	c.pendingMu.Unlock()

	defer func() {
		c.pendingMu.Lock()
		delete(c.pending, id)
		c.pendingMu.Unlock()
	}()

	if err := c.transport.Send(ctx, msg); err != nil {
		return aierrors.NewMCPTransportError("failed to send request", err)
	}

	timeout := time.Duration(c.config.RequestTimeoutMS) * time.Millisecond
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case response := <-responseCh:
		if response == nil {
			return fmt.Errorf("connection closed")
		}
		if response.Error != nil {
			return GetError(response)
		}
		if result != nil && response.Result != nil {
			if err := json.Unmarshal(response.Result, result); err != nil {
				return fmt.Errorf("failed to unmarshal result: %w", err)
			}
		}
		return nil

	case <-timer.C:
		return aierrors.NewMCPTransportError("request timed out: "+method, nil)

	case <-ctx.Done():
		return ctx.Err()

	case <-c.ctx.Done():
		return fmt.Errorf("client closed")
	}
}

// notify sends a JSON-RPC notification (no response expected)
func (c *MCPClient) notify(ctx context.Context, method string, params interface{}) error {
	msg, err := CreateNotification(method, params)
	if err != nil {
		return err
	}
	return c.transport.Send(ctx, msg)
}

// receiveLoop continuously receives messages from the transport
func (c *MCPClient) receiveLoop() {
	for {
		select {
		case <-c.ctx.Done():
			return
		default:
		}

		msg, err := c.transport.Receive(c.ctx)
		if err != nil {
			if c.config.EnableLogging {
				fmt.Printf("MCP receive error: %v\n", err)
			}
			return
		}

		switch {
		case IsResponse(msg):
			c.pendingMu.RLock()
			ch, ok := c.pending[msg.ID]
			c.pendingMu.RUnlock()
			if ok {
				select {
				case ch <- msg:
				default:
				}
			}
		case IsNotification(msg):
			c.handleNotification(msg)
		case IsRequest(msg):
			c.handleRequest(msg)
		}
	}
}

func (c *MCPClient) handleNotification(msg *MCPMessage) {
	if c.config.EnableLogging {
		fmt.Printf("MCP notification: %s\n", msg.Method)
	}
}

func (c *MCPClient) handleRequest(msg *MCPMessage) {
	response := CreateErrorResponse(msg.ID, ErrorCodeMethodNotFound, "Method not found", nil)
	_ = c.transport.Send(c.ctx, response)
}
