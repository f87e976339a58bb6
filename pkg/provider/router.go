package provider

import (
	"strings"

	"github.com/loomware/agentcore/pkg/aierrors"
)

// ParseModelString splits a "prefix/name" model string (e.g.
// "openai/gpt-4o", "anthropic/claude-3-7-sonnet") into its provider prefix
// and model id.
func ParseModelString(model string) (prefix, modelID string, aerr *aierrors.Error) {
	idx := strings.Index(model, "/")
	if idx <= 0 || idx == len(model)-1 {
		return "", "", aierrors.NewValidation("model",
			"invalid model string (expected 'prefix/name'): "+model)
	}
	return model[:idx], model[idx+1:], nil
}

// ResolvePrefix implements the routing override: when baseURL points at
// OpenRouter, every model routes to OpenRouter regardless of its own prefix.
func ResolvePrefix(prefix, baseURL string) string {
	if strings.Contains(baseURL, "openrouter.ai") {
		return "openrouter"
	}
	return prefix
}
