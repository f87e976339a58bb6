// Package registry resolves a "prefix/name" model string to a concrete
// provider.Client by dispatching through per-provider factory functions
// registered at startup. Grounded on the teacher's pkg/registry/registry.go
// sync.RWMutex-guarded map pattern, generalized from the teacher's
// Provider-with-five-model-kinds surface (language/embedding/image/speech/
// transcription/reranking) down to the single C5 provider.Client contract.
package registry

import (
	"sync"

	"github.com/loomware/agentcore/pkg/aierrors"
	"github.com/loomware/agentcore/pkg/provider"
)

// Factory constructs a provider.Client for the given model ID.
type Factory func(modelID string) provider.Client

// Global registry instance
var globalRegistry = NewRegistry()

// Registry maps provider prefixes to client factories and tracks aliases
// from a shorthand model name to a full "prefix/name" string.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
	aliases   map[string]string
}

// NewRegistry creates a new registry.
func NewRegistry() *Registry {
	return &Registry{
		factories: make(map[string]Factory),
		aliases:   make(map[string]string),
	}
}

// RegisterProvider registers the factory used to build clients routed
// through prefix (e.g. "openai", "anthropic").
func (r *Registry) RegisterProvider(prefix string, f Factory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[prefix] = f
}

// RegisterAlias registers a shorthand model name that expands to a full
// "prefix/name" model string.
// Example: RegisterAlias("gpt-4o", "openai/gpt-4o")
func (r *Registry) RegisterAlias(alias, target string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.aliases[alias] = target
}

// Resolve expands model through any registered alias, parses it as
// "prefix/name", applies the OpenRouter baseURL override, and invokes the
// matching provider's factory. baseURL is the caller's configured base URL
// for whatever provider prefix is ultimately resolved, used only to detect
// the OpenRouter routing override (provider.ResolvePrefix).
func (r *Registry) Resolve(model, baseURL string) (provider.Client, *aierrors.Error) {
	r.mu.RLock()
	if target, ok := r.aliases[model]; ok {
		model = target
	}
	r.mu.RUnlock()

	prefix, modelID, aerr := provider.ParseModelString(model)
	if aerr != nil {
		return nil, aerr
	}
	prefix = provider.ResolvePrefix(prefix, baseURL)

	r.mu.RLock()
	factory, ok := r.factories[prefix]
	r.mu.RUnlock()
	if !ok {
		return nil, aierrors.NewConfiguration(prefix, "provider '"+prefix+"' is not registered")
	}
	return factory(modelID), nil
}

// ListProviders returns every registered provider prefix.
func (r *Registry) ListProviders() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	return names
}

// ListAliases returns a copy of the registered aliases.
func (r *Registry) ListAliases() map[string]string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	aliases := make(map[string]string, len(r.aliases))
	for k, v := range r.aliases {
		aliases[k] = v
	}
	return aliases
}

// Global registry functions

// RegisterProvider registers a provider factory in the global registry.
func RegisterProvider(prefix string, f Factory) {
	globalRegistry.RegisterProvider(prefix, f)
}

// RegisterAlias registers a model alias in the global registry.
func RegisterAlias(alias, target string) {
	globalRegistry.RegisterAlias(alias, target)
}

// Resolve resolves a model string using the global registry.
func Resolve(model, baseURL string) (provider.Client, *aierrors.Error) {
	return globalRegistry.Resolve(model, baseURL)
}

// ListProviders lists every provider prefix registered in the global
// registry.
func ListProviders() []string {
	return globalRegistry.ListProviders()
}

// GetGlobalRegistry returns the global registry instance.
func GetGlobalRegistry() *Registry {
	return globalRegistry
}
