package azure

import "strings"

// Azure deployment names are operator-chosen, so context window is
// inferred from whichever well-known OpenAI model name the deployment
// name contains. Falls back to a conservative default when the deployment
// name gives no hint (e.g. a custom fine-tune).
var contextWindows = []struct {
	substr string
	tokens int
}{
	{"gpt-4o-mini", 128_000},
	{"gpt-4o", 128_000},
	{"gpt-4-turbo", 128_000},
	{"gpt-4-32k", 32_768},
	{"gpt-4", 8_192},
	{"gpt-35-turbo-16k", 16_384},
	{"gpt-35-turbo", 4_096},
}

const defaultContextWindow = 128_000

func contextWindowFor(deploymentID string) int {
	lower := strings.ToLower(deploymentID)
	best := -1
	tokens := defaultContextWindow
	for _, entry := range contextWindows {
		if strings.Contains(lower, entry.substr) && len(entry.substr) > best {
			best = len(entry.substr)
			tokens = entry.tokens
		}
	}
	return tokens
}
