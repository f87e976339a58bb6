// Package mcp implements the C8 Model Context Protocol client: JSON-RPC
// envelope helpers, stdio/Streamable-HTTP transports with the §4.5 fallback
// negotiation state machine, and ToolBridge, which exposes an MCP server's
// tools through the same tool.Source interface a plain tool.Registry
// satisfies so pkg/agent can drive either one interchangeably.
package mcp

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/loomware/agentcore/pkg/convo"
	"github.com/loomware/agentcore/pkg/tool"
)

// DefaultToolListTTL is §4.5's default cache lifetime for a ToolBridge's
// tools/list snapshot.
const DefaultToolListTTL = 5 * time.Minute

// ToolBridge composes a local tool.Registry with an MCP server's tools,
// satisfying tool.Source so pkg/agent can treat the pair as a single
// source. Local tools always take precedence on a name collision: Get and
// List consult the local registry first and only fall back to the cached
// MCP tool set. Grounded on pkg/rag.Scheduler's mutex-guarded cached-state
// pattern, generalized from a cron-pushed refresh to a lazy
// time.Since(cachedAt) < ttl check on each access.
type ToolBridge struct {
	local  *tool.Registry
	client *MCPClient
	ttl    time.Duration

	mu       sync.Mutex
	cachedAt time.Time
	cached   []tool.Definition
}

// NewToolBridge builds a ToolBridge over local (may be nil, treated as
// empty) and an already-Connect-ed client. ttl <= 0 uses DefaultToolListTTL.
func NewToolBridge(local *tool.Registry, client *MCPClient, ttl time.Duration) *ToolBridge {
	if local == nil {
		local = tool.NewRegistry()
	}
	if ttl <= 0 {
		ttl = DefaultToolListTTL
	}
	return &ToolBridge{local: local, client: client, ttl: ttl}
}

// Get resolves name, preferring the local registry; it only refreshes the
// MCP tool cache (inline, if stale) when name isn't a local tool.
func (b *ToolBridge) Get(name string) (tool.Definition, bool) {
	if def, ok := b.local.Get(name); ok {
		return def, true
	}
	defs := b.mcpDefinitions(context.Background())
	for _, def := range defs {
		if def.Name == name {
			return def, true
		}
	}
	return tool.Definition{}, false
}

// List returns every local definition followed by every MCP definition
// whose name doesn't collide with a local one.
func (b *ToolBridge) List() []tool.Definition {
	local := b.local.List()
	seen := make(map[string]bool, len(local))
	for _, d := range local {
		seen[d.Name] = true
	}

	out := append([]tool.Definition(nil), local...)
	for _, d := range b.mcpDefinitions(context.Background()) {
		if !seen[d.Name] {
			out = append(out, d)
		}
	}
	return out
}

// Names returns every name List would return.
func (b *ToolBridge) Names() []string {
	defs := b.List()
	out := make([]string, 0, len(defs))
	for _, d := range defs {
		out = append(out, d.Name)
	}
	return out
}

// mcpDefinitions returns the cached MCP tool set, refreshing it via
// tools/list first if the cache is empty or older than b.ttl. A refresh
// failure is swallowed and the (possibly stale, possibly empty) cache is
// returned as-is: a transient MCP outage shouldn't take local tools down
// with it.
func (b *ToolBridge) mcpDefinitions(ctx context.Context) []tool.Definition {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.client != nil && time.Since(b.cachedAt) >= b.ttl {
		if tools, err := b.client.ListTools(ctx); err == nil {
			defs := make([]tool.Definition, 0, len(tools))
			for _, t := range tools {
				defs = append(defs, b.toDefinition(t))
			}
			b.cached = defs
			b.cachedAt = time.Now()
		}
	}

	return b.cached
}

// toDefinition wraps an MCPTool as a tool.Definition whose Handler calls
// the tool through the live MCP client. InputSchema arrives as an
// already-rendered JSON Schema map, which is exactly what tool.Raw is for.
func (b *ToolBridge) toDefinition(t MCPTool) tool.Definition {
	return tool.Definition{
		Name:        t.Name,
		Description: t.Description,
		Schema:      tool.Raw(t.InputSchema, t.Description),
		Handler: func(ctx context.Context, arguments map[string]any) (any, error) {
			result, err := b.client.CallTool(ctx, t.Name, arguments)
			if err != nil {
				return nil, fmt.Errorf("mcp tool %q: %w", t.Name, err)
			}

			text, resources := foldContent(result.Content)
			if result.IsError {
				return nil, fmt.Errorf("mcp tool %q returned an error: %s", t.Name, text)
			}
			return mcpToolResult{text: text, resources: resources}, nil
		},
	}
}

// mcpToolResult implements tool.Annotated so an MCP tool's resource content
// blocks survive Execute and land on the resulting convo.ToolMessage's
// Annotations instead of being dropped or inlined as text.
type mcpToolResult struct {
	text      string
	resources []convo.ResourceContentBlock
}

func (r mcpToolResult) ToolValue() any                               { return r.text }
func (r mcpToolResult) ToolAnnotations() []convo.ResourceContentBlock { return r.resources }
