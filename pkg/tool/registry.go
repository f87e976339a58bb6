package tool

import (
	"sync"

	"github.com/loomware/agentcore/pkg/aierrors"
)

// Source is anything that can resolve a tool by name and enumerate its
// definitions: a plain local Registry, or a composite that also bridges in
// an MCP server's tools (pkg/mcp.ToolBridge). Execute and the agent loop
// depend only on this interface so either can stand in for Config.Tools.
type Source interface {
	Get(name string) (Definition, bool)
	List() []Definition
	Names() []string
}

// Registry holds a set of registered Definitions, keyed by name. Grounded on
// pkg/registry/registry.go's sync.RWMutex-guarded map pattern, generalized
// from a provider registry to a tool registry.
type Registry struct {
	mu    sync.RWMutex
	tools map[string]Definition
}

// NewRegistry builds an empty Registry.
func NewRegistry() *Registry {
	return &Registry{tools: make(map[string]Definition)}
}

// Register adds or replaces a Definition. It rejects an invalid tool name.
func (r *Registry) Register(def Definition) *aierrors.Error {
	if !ValidName(def.Name) {
		return aierrors.NewValidation("name", "tool name '"+def.Name+"' does not match ^[A-Za-z_][A-Za-z0-9_]*$")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tools[def.Name] = def
	return nil
}

// Get returns a registered Definition by name.
func (r *Registry) Get(name string) (Definition, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	d, ok := r.tools[name]
	return d, ok
}

// List returns every registered Definition, in no particular order.
func (r *Registry) List() []Definition {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Definition, 0, len(r.tools))
	for _, d := range r.tools {
		out = append(out, d)
	}
	return out
}

// Names returns the names of every registered Definition.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.tools))
	for name := range r.tools {
		out = append(out, name)
	}
	return out
}
