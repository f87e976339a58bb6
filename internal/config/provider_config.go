package config

// ProviderConfig is the common shape read for OpenAI-compatible, Anthropic,
// Ollama, and OpenRouter clients: an API key and an optional base URL
// override.
type ProviderConfig struct {
	APIKey  string
	BaseURL string
}

// AzureConfig additionally carries the endpoint and API version Azure
// OpenAI deployments require.
type AzureConfig struct {
	APIKey     string
	Endpoint   string
	APIVersion string
	Deployment string
}

// OpenAIConfigFrom builds a ProviderConfig from r using the OpenAI env var
// names; a field whose variable is unset is left empty.
func OpenAIConfigFrom(r Reader) ProviderConfig {
	return ProviderConfig{
		APIKey:  GetOr(r, EnvOpenAIAPIKey, ""),
		BaseURL: GetOr(r, EnvOpenAIBaseURL, ""),
	}
}

// AnthropicConfigFrom builds a ProviderConfig from r using the Anthropic
// env var names.
func AnthropicConfigFrom(r Reader) ProviderConfig {
	return ProviderConfig{
		APIKey:  GetOr(r, EnvAnthropicAPIKey, ""),
		BaseURL: GetOr(r, EnvAnthropicBaseURL, ""),
	}
}

// OllamaConfigFrom builds a ProviderConfig from r using the Ollama env var
// names (Ollama has no API key by default).
func OllamaConfigFrom(r Reader) ProviderConfig {
	return ProviderConfig{
		BaseURL: GetOr(r, EnvOllamaBaseURL, "http://localhost:11434"),
	}
}

// OpenRouterConfigFrom builds a ProviderConfig from r using the OpenRouter
// env var names.
func OpenRouterConfigFrom(r Reader) ProviderConfig {
	return ProviderConfig{
		APIKey:  GetOr(r, EnvOpenRouterAPIKey, ""),
		BaseURL: GetOr(r, EnvOpenRouterBaseURL, "https://openrouter.ai/api/v1"),
	}
}

// GoogleConfigFrom builds a ProviderConfig from r using the Google env var
// names.
func GoogleConfigFrom(r Reader) ProviderConfig {
	return ProviderConfig{
		APIKey: GetOr(r, EnvGoogleAPIKey, ""),
	}
}

// AzureConfigFrom builds an AzureConfig from r using the Azure env var
// names.
func AzureConfigFrom(r Reader) AzureConfig {
	return AzureConfig{
		APIKey:     GetOr(r, EnvAzureAPIKey, ""),
		Endpoint:   GetOr(r, EnvAzureAPIEndpoint, ""),
		APIVersion: GetOr(r, EnvAzureAPIVersion, "2024-02-15-preview"),
	}
}
