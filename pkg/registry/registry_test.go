package registry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/loomware/agentcore/pkg/provider"
	"github.com/loomware/agentcore/pkg/testutil"
)

func mockFactory(providerName string) Factory {
	return func(modelID string) provider.Client {
		return &testutil.MockClient{ProviderName: providerName, ModelName: modelID}
	}
}

func TestNewRegistry(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	require.NotNil(t, r)
	assert.NotNil(t, r.factories)
	assert.NotNil(t, r.aliases)
}

func TestRegistryResolveDirect(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	r.RegisterProvider("openai", mockFactory("openai"))

	client, aerr := r.Resolve("openai/gpt-4o", "")
	require.Nil(t, aerr)
	require.NotNil(t, client)
	assert.Equal(t, "openai", client.Provider())
	assert.Equal(t, "gpt-4o", client.ModelID())
}

func TestRegistryResolveProviderNotFound(t *testing.T) {
	t.Parallel()

	r := NewRegistry()

	_, aerr := r.Resolve("nonexistent/model", "")
	require.NotNil(t, aerr)
}

func TestRegistryResolveInvalidFormat(t *testing.T) {
	t.Parallel()

	r := NewRegistry()

	_, aerr := r.Resolve("invalid-format", "")
	require.NotNil(t, aerr)
}

func TestRegistryResolveAlias(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	r.RegisterProvider("openai", mockFactory("openai"))
	r.RegisterAlias("gpt-4o", "openai/gpt-4o")

	client, aerr := r.Resolve("gpt-4o", "")
	require.Nil(t, aerr)
	assert.Equal(t, "gpt-4o", client.ModelID())
}

func TestRegistryResolveAppliesOpenRouterOverride(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	r.RegisterProvider("openrouter", mockFactory("openrouter"))

	client, aerr := r.Resolve("anthropic/claude-sonnet-4-6", "https://openrouter.ai/api/v1")
	require.Nil(t, aerr)
	assert.Equal(t, "openrouter", client.Provider())
	assert.Equal(t, "claude-sonnet-4-6", client.ModelID())
}

func TestRegistryListProviders(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	r.RegisterProvider("openai", mockFactory("openai"))
	r.RegisterProvider("anthropic", mockFactory("anthropic"))

	providers := r.ListProviders()
	assert.ElementsMatch(t, []string{"openai", "anthropic"}, providers)
}

func TestRegistryListAliasesReturnsACopy(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	r.RegisterAlias("original", "provider/model")

	aliases := r.ListAliases()
	aliases["modified"] = "should-not-affect-registry"

	registryAliases := r.ListAliases()
	_, ok := registryAliases["modified"]
	assert.False(t, ok)
}

func TestRegistryOverwriteProvider(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	r.RegisterProvider("test", mockFactory("provider-v1"))
	r.RegisterProvider("test", mockFactory("provider-v2"))

	client, aerr := r.Resolve("test/model", "")
	require.Nil(t, aerr)
	assert.Equal(t, "provider-v2", client.Provider())
}

func TestRegistryConcurrentAccess(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	done := make(chan bool)

	for i := 0; i < 10; i++ {
		go func() {
			r.RegisterProvider("concurrent", mockFactory("concurrent"))
			done <- true
		}()
	}
	for i := 0; i < 10; i++ {
		go func() {
			_, _ = r.Resolve("concurrent/model", "")
			done <- true
		}()
	}
	for i := 0; i < 20; i++ {
		<-done
	}
}

func TestGlobalRegistryRegisterAndResolve(t *testing.T) {
	RegisterProvider("global-test", mockFactory("global-test"))

	client, aerr := Resolve("global-test/some-model", "")
	require.Nil(t, aerr)
	assert.Equal(t, "global-test", client.Provider())
}

func TestGlobalRegistryAlias(t *testing.T) {
	RegisterProvider("alias-provider", mockFactory("alias-provider"))
	RegisterAlias("my-model", "alias-provider/the-model")

	client, aerr := Resolve("my-model", "")
	require.Nil(t, aerr)
	assert.Equal(t, "the-model", client.ModelID())
}

func TestGetGlobalRegistry(t *testing.T) {
	t.Parallel()

	r := GetGlobalRegistry()
	assert.NotNil(t, r)
}
