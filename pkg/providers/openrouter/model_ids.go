package openrouter

// OpenRouter proxies hundreds of third-party models with no single catalog
// this client can enumerate, so context window isn't inferred from the
// model string the way the single-vendor clients do it; callers that need
// an accurate figure should look it up via OpenRouter's /models endpoint
// and configure reserveCompletion accordingly. This default matches the
// lowest common denominator across OpenRouter's major model families.
const defaultContextWindow = 128_000
