package provider_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/loomware/agentcore/pkg/provider"
)

func TestParseModelString(t *testing.T) {
	prefix, modelID, aerr := provider.ParseModelString("openai/gpt-4o")
	require.Nil(t, aerr)
	assert.Equal(t, "openai", prefix)
	assert.Equal(t, "gpt-4o", modelID)
}

func TestParseModelStringRejectsMissingPrefix(t *testing.T) {
	_, _, aerr := provider.ParseModelString("gpt-4o")
	require.NotNil(t, aerr)
}

func TestParseModelStringRejectsEmptyModelID(t *testing.T) {
	_, _, aerr := provider.ParseModelString("openai/")
	require.NotNil(t, aerr)
}

func TestResolvePrefixRoutesToOpenRouterOnBaseURL(t *testing.T) {
	prefix := provider.ResolvePrefix("openai", "https://openrouter.ai/api/v1")
	assert.Equal(t, "openrouter", prefix)
}

func TestResolvePrefixKeepsPrefixOtherwise(t *testing.T) {
	prefix := provider.ResolvePrefix("anthropic", "https://api.anthropic.com")
	assert.Equal(t, "anthropic", prefix)
}
