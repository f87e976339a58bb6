package anthropic

import "strings"

// Every current Claude 3+ model shares a 200k-token context window; the
// lookup exists so a future shorter-context model doesn't silently inherit
// it.
var shortContextPrefixes = []string{
	"claude-2",
	"claude-instant",
}

const (
	defaultContextWindow = 200_000
	legacyContextWindow  = 100_000
)

func contextWindowFor(modelID string) int {
	for _, prefix := range shortContextPrefixes {
		if strings.HasPrefix(modelID, prefix) {
			return legacyContextWindow
		}
	}
	return defaultContextWindow
}
