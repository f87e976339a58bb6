package config

import "os"

// EnvReader backs Reader with os.LookupEnv. It is the default reader
// providers use when no explicit Reader is injected.
type EnvReader struct{}

func (EnvReader) Get(key string) (string, bool) {
	return os.LookupEnv(key)
}

// Known environment variable names for the provider families named in this
// module. Consumers build their provider Config structs from these via
// GetOr, never by calling os.Getenv directly outside this package.
const (
	EnvLLMModel = "LLM_MODEL"

	EnvOpenAIAPIKey  = "OPENAI_API_KEY"
	EnvOpenAIBaseURL = "OPENAI_BASE_URL"

	EnvAzureAPIKey      = "AZURE_API_KEY"
	EnvAzureAPIEndpoint = "AZURE_API_ENDPOINT"
	EnvAzureAPIVersion  = "AZURE_API_VERSION"

	EnvAnthropicAPIKey  = "ANTHROPIC_API_KEY"
	EnvAnthropicBaseURL = "ANTHROPIC_BASE_URL"

	EnvOllamaBaseURL = "OLLAMA_BASE_URL"

	EnvGoogleAPIKey = "GOOGLE_API_KEY"

	EnvOpenRouterAPIKey  = "OPENROUTER_API_KEY"
	EnvOpenRouterBaseURL = "OPENROUTER_BASE_URL"

	EnvLangfusePublicKey = "LANGFUSE_PUBLIC_KEY"
	EnvLangfuseSecretKey = "LANGFUSE_SECRET_KEY"
)
